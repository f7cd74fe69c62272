package permission

import (
	"encoding/binary"
	"errors"
)

// maskSize is the encoded length of a [Mask].
const maskSize = 8

// ErrInvalidMaskSize is returned by [DecodeMask] for input that is not
// exactly eight bytes long.
var ErrInvalidMaskSize = errors.New("invalid mask size")

// EncodeMask serializes m as eight big-endian bytes.
func EncodeMask(m Mask) []byte {
	b := make([]byte, maskSize)
	binary.BigEndian.PutUint64(b, uint64(m))
	return b
}

// DecodeMask parses the output of [EncodeMask].
func DecodeMask(data []byte) (Mask, error) {
	if len(data) != maskSize {
		return 0, ErrInvalidMaskSize
	}
	return Mask(binary.BigEndian.Uint64(data)), nil
}
