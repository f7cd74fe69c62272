package permission

import "strings"

// Scope accumulates access rights into a [Mask] for the scope parameter of
// an authorization URL.
//
// The zero value is ready to use and resolves names against
// [DefaultRegistry]. Rights can only be added, never removed.
type Scope struct {
	registry *Registry
	mask     Mask
}

// NewScope returns an empty scope backed by the VK table.
func NewScope() *Scope {
	return &Scope{registry: defaultRegistry}
}

// NewScopeWithRegistry returns an empty scope that resolves names against r.
func NewScopeWithRegistry(r *Registry) *Scope {
	if r == nil {
		r = defaultRegistry
	}
	return &Scope{registry: r}
}

// Add resolves each name and sets its bit. A name may itself be a
// comma-separated list; names are trimmed and matched case-insensitively.
// Unknown names are ignored. Add returns s for chaining.
//
//	NewScope().Add("friends,photos").Add(" Wall ", "offline")
func (s *Scope) Add(names ...string) *Scope {
	for _, name := range names {
		s.add(name)
	}
	return s
}

func (s *Scope) add(name string) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if strings.Contains(name, ",") {
		s.Add(strings.Split(name, ",")...)
		return
	}
	if bit, ok := s.lookup().Bit(name); ok {
		s.mask.Set(bit)
	}
}

// Grant sets the given permission flags directly.
func (s *Scope) Grant(perms ...Permission) *Scope {
	for _, p := range perms {
		s.mask |= Mask(p)
	}
	return s
}

// Has reports whether the named right is set.
func (s *Scope) Has(name string) bool {
	bit, ok := s.lookup().Bit(name)
	return ok && s.mask.Has(bit)
}

// Names lists the rights set in the scope.
func (s *Scope) Names() []string {
	return s.lookup().Names(s.mask)
}

func (s *Scope) Mask() Mask {
	return s.mask
}

func (s *Scope) Value() uint64 {
	return uint64(s.mask)
}

func (s *Scope) String() string {
	return s.mask.String()
}

func (s *Scope) lookup() *Registry {
	if s.registry == nil {
		return defaultRegistry
	}
	return s.registry
}
