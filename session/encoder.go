package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/MrEthical07/goVK/permission"
)

const recordFormatVersionCurrent = 1

var (
	// ErrInvalidVersion is returned by [Decode] for unknown format versions.
	ErrInvalidVersion = errors.New("invalid record version")
	// ErrFieldTooLong is returned by [Encode] when a field exceeds its length prefix.
	ErrFieldTooLong = errors.New("record field too long")
)

// Encode serializes rec into the versioned binary record format:
//
//	version(1) | userID(8) | tokenLen(2) token | emailLen(1) email |
//	maskLen(1) mask | createdAt(8) | expiresAt(8)
func Encode(rec *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionCurrent)

	if err := binary.Write(&buf, binary.BigEndian, rec.UserID); err != nil {
		return nil, err
	}

	if len(rec.AccessToken) > math.MaxUint16 {
		return nil, ErrFieldTooLong
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(rec.AccessToken))); err != nil {
		return nil, err
	}
	buf.WriteString(rec.AccessToken)

	if len(rec.Email) > 255 {
		return nil, ErrFieldTooLong
	}
	buf.WriteByte(byte(len(rec.Email)))
	buf.WriteString(rec.Email)

	maskBytes := permission.EncodeMask(rec.Scope)
	buf.WriteByte(byte(len(maskBytes)))
	buf.Write(maskBytes)

	if err := binary.Write(&buf, binary.BigEndian, rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, rec.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses the output of [Encode].
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionCurrent {
		return nil, ErrInvalidVersion
	}

	rec := &Record{}

	if err := binary.Read(reader, binary.BigEndian, &rec.UserID); err != nil {
		return nil, err
	}

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}
	rec.AccessToken = string(token)

	emailLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	email := make([]byte, emailLen)
	if _, err := io.ReadFull(reader, email); err != nil {
		return nil, err
	}
	rec.Email = string(email)

	maskLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	maskBytes := make([]byte, maskLen)
	if _, err := io.ReadFull(reader, maskBytes); err != nil {
		return nil, err
	}
	rec.Scope, err = permission.DecodeMask(maskBytes)
	if err != nil {
		return nil, err
	}

	if err := binary.Read(reader, binary.BigEndian, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &rec.ExpiresAt); err != nil {
		return nil, err
	}

	return rec, nil
}
