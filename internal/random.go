package internal

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

// NonceMax is the inclusive upper bound of [Nonce].
const NonceMax = 10000

var nonceRange = big.NewInt(NonceMax + 1)

// Nonce returns a uniformly random integer in [0, NonceMax] for the
// "random" parameter of signed API calls.
func Nonce() (int, error) {
	n, err := rand.Int(rand.Reader, nonceRange)
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

// RandomToken returns n random bytes encoded as unpadded base64url.
func RandomToken(n int) (string, error) {
	if n <= 0 {
		n = 16
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
