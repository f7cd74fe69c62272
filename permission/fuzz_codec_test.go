package permission

import (
	"bytes"
	"testing"
)

// FuzzMaskCodecRoundTrip exercises the mask encode/decode path with arbitrary bytes.
// Goal: no panics; valid-length inputs should roundtrip.
func FuzzMaskCodecRoundTrip(f *testing.F) {
	f.Add(make([]byte, 8))
	f.Add([]byte{0, 0, 0, 0, 0x0f, 0xff, 0xff, 0xff})

	f.Add([]byte{})
	f.Add([]byte{1, 2, 3})
	f.Add(make([]byte, 7))
	f.Add(make([]byte, 9))

	f.Fuzz(func(t *testing.T, data []byte) {
		mask, err := DecodeMask(data)
		if err != nil {
			return
		}

		encoded := EncodeMask(mask)
		if !bytes.Equal(encoded, data) {
			t.Fatalf("roundtrip mismatch: %x vs %x", encoded, data)
		}
	})
}

// FuzzScopeAdd feeds arbitrary strings to Scope.Add.
// Goal: no panics, and only table bits are ever set.
func FuzzScopeAdd(f *testing.F) {
	f.Add("friends,photos")
	f.Add(" Wall , OFFLINE ,,")
	f.Add("unknown")
	f.Add("")

	all := All()
	f.Fuzz(func(t *testing.T, input string) {
		s := NewScope().Add(input)
		if s.Mask()&^all != 0 {
			t.Fatalf("scope %q set bits outside the table: %b", input, s.Mask())
		}
	})
}
