package goVK

import (
	"crypto/md5" //nolint:gosec // VK request signatures are defined as MD5.
	"encoding/hex"
	"strings"
)

// SignatureDigest is the digest VK uses for request signatures: lowercase
// hex MD5 of payload.
func SignatureDigest(payload string) string {
	sum := md5.Sum([]byte(payload)) //nolint:gosec // wire format
	return hex.EncodeToString(sum[:])
}

// Sign returns the "sig" value for params: each key=value pair in key
// order, concatenated without separators, followed by secret, digested
// with [SignatureDigest]. A "sig" entry in params is ignored.
func Sign(params map[string]string, secret string) string {
	var b strings.Builder
	for _, k := range sortedKeys(params) {
		if k == "sig" {
			continue
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(secret)
	return SignatureDigest(b.String())
}
