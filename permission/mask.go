package permission

import "strconv"

// MaxBits is the width of a [Mask].
const MaxBits = 64

// Mask is a permission bitmask. VK defines bits 0 through 27; the remaining
// bits are kept so that registries can be extended.
type Mask uint64

// Has reports whether bit is set. Out-of-range bits are never set.
func (m Mask) Has(bit int) bool {
	if bit < 0 || bit >= MaxBits {
		return false
	}
	return m&(1<<bit) != 0
}

// Set turns bit on. Out-of-range bits are ignored.
func (m *Mask) Set(bit int) {
	if bit < 0 || bit >= MaxBits {
		return
	}
	*m |= 1 << bit
}

// Clear turns bit off. Out-of-range bits are ignored.
func (m *Mask) Clear(bit int) {
	if bit < 0 || bit >= MaxBits {
		return
	}
	*m &^= 1 << bit
}

func (m Mask) Raw() uint64 {
	return uint64(m)
}

// String renders the mask in decimal, the form VK expects in the scope
// parameter of an authorization URL.
func (m Mask) String() string {
	return strconv.FormatUint(uint64(m), 10)
}
