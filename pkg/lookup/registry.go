package lookup

import (
	"fmt"
	"sync"

	"github.com/dmitrymomot/formguard/pkg/validator"
)

// Kind selects how a set answers a lookup.
type Kind string

const (
	KindUnique Kind = "unique"
	KindKnown  Kind = "known"
)

// Registry resolves lookup names to functions. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	lookups map[string]validator.Lookup
}

func NewRegistry() *Registry {
	return &Registry{lookups: make(map[string]validator.Lookup)}
}

// Register adds fn under name.
func (r *Registry) Register(name string, fn validator.Lookup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookups[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	r.lookups[name] = fn
	return nil
}

// RegisterSet adds a membership lookup of the given kind over set.
func (r *Registry) RegisterSet(name string, kind Kind, m Membership, set string) error {
	switch kind {
	case KindUnique:
		return r.Register(name, Unique(m, set))
	case KindKnown:
		return r.Register(name, Known(m, set))
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Get returns the lookup registered under name.
func (r *Registry) Get(name string) (validator.Lookup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.lookups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLookup, name)
	}
	return fn, nil
}
