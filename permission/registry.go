package permission

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrRegistryFrozen is returned when registering into a frozen [Registry].
	ErrRegistryFrozen = errors.New("registry frozen")
	// ErrEmptyName is returned for blank permission names.
	ErrEmptyName = errors.New("permission name cannot be empty")
	// ErrDuplicateName is returned when a name is registered twice.
	ErrDuplicateName = errors.New("permission already registered")
	// ErrBitTaken is returned when a bit is already named or reserved.
	ErrBitTaken = errors.New("permission bit already assigned")
	// ErrBitOutOfRange is returned for bits outside [0, MaxBits).
	ErrBitOutOfRange = errors.New("permission bit out of range")
)

// Registry maps permission names to bit positions within a [Mask].
//
// Names are stored uppercased and trimmed, so lookups are case-insensitive.
// Reserved bits take part in [Registry.All] but have no name and can never be
// resolved by [Registry.Bit].
//
//	Docs: docs/permission.md
type Registry struct {
	mu        sync.RWMutex
	nameToBit map[string]int
	bitToName map[int]string
	reserved  map[int]struct{}
	frozen    bool
}

// NewRegistry creates an empty, unfrozen [Registry].
func NewRegistry() *Registry {
	return &Registry{
		nameToBit: make(map[string]int),
		bitToName: make(map[int]string),
		reserved:  make(map[int]struct{}),
	}
}

// Register assigns bit to the named permission. Must be called before
// [Registry.Freeze].
func (r *Registry) Register(name string, bit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	name = normalizeName(name)
	if name == "" {
		return ErrEmptyName
	}
	if bit < 0 || bit >= MaxBits {
		return ErrBitOutOfRange
	}
	if _, exists := r.nameToBit[name]; exists {
		return ErrDuplicateName
	}
	if r.taken(bit) {
		return ErrBitTaken
	}

	r.nameToBit[name] = bit
	r.bitToName[bit] = name

	return nil
}

// Reserve claims bit without a name.
func (r *Registry) Reserve(bit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}
	if bit < 0 || bit >= MaxBits {
		return ErrBitOutOfRange
	}
	if r.taken(bit) {
		return ErrBitTaken
	}

	r.reserved[bit] = struct{}{}
	return nil
}

func (r *Registry) taken(bit int) bool {
	if _, ok := r.bitToName[bit]; ok {
		return true
	}
	_, ok := r.reserved[bit]
	return ok
}

// Bit returns the bit index for the named permission, or false if the name
// is unknown.
func (r *Registry) Bit(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[normalizeName(name)]
	return bit, ok
}

// Name returns the permission name for the given bit index, or false if the
// bit is unassigned or reserved.
func (r *Registry) Name(bit int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.bitToName[bit]
	return name, ok
}

// All returns the mask with every named and reserved bit set.
func (r *Registry) All() Mask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var m Mask
	for bit := range r.bitToName {
		m.Set(bit)
	}
	for bit := range r.reserved {
		m.Set(bit)
	}
	return m
}

// Names returns the names set in m, in ascending bit order.
func (r *Registry) Names(m Mask) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for bit := 0; bit < MaxBits; bit++ {
		if !m.Has(bit) {
			continue
		}
		if name, ok := r.bitToName[bit]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of named permissions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToBit)
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
