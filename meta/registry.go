package meta

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/signadot/metagraph/text"
)

// TypeHandle identifies a registered type. The zero handle is invalid.
type TypeHandle uint32

// Identifier is implemented by values that know their registered type.
type Identifier interface {
	Identify() TypeHandle
}

// Type describes a type that Poly parameters can create.
type Type struct {
	Handle TypeHandle
	Name   string
	// Base is the handle of the parent type, or zero.
	Base TypeHandle
	// New returns a pointer to a new zero value of the type.
	New func() any
}

// Registry maps type handles and names to constructors. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byHandle map[TypeHandle]*Type
	byName   map[string]*Type
	byGo     map[reflect.Type]*Type
}

func NewRegistry() *Registry {
	return &Registry{
		byHandle: map[TypeHandle]*Type{},
		byName:   map[string]*Type{},
		byGo:     map[reflect.Type]*Type{},
	}
}

func (r *Registry) Register(t Type) error {
	switch {
	case t.Handle == 0:
		return fmt.Errorf("%w: type %q has no handle", text.ErrFail, t.Name)
	case t.Name == "":
		return fmt.Errorf("%w: type %d has no name", text.ErrFail, t.Handle)
	case t.New == nil:
		return fmt.Errorf("%w: type %q has no constructor", text.ErrFail, t.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHandle[t.Handle]; ok {
		return fmt.Errorf("%w: handle %d already registered", text.ErrFail, t.Handle)
	}
	if _, ok := r.byName[t.Name]; ok {
		return fmt.Errorf("%w: type %q already registered", text.ErrFail, t.Name)
	}
	rt := &t
	r.byHandle[t.Handle] = rt
	r.byName[t.Name] = rt
	r.byGo[reflect.TypeOf(t.New())] = rt
	return nil
}

func (r *Registry) Lookup(h TypeHandle) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byHandle[h]
	if !ok {
		return Type{}, false
	}
	return *t, true
}

func (r *Registry) ByName(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	if !ok {
		return Type{}, false
	}
	return *t, true
}

// TypeOf returns the registered type of v, asking v first if it is an
// Identifier.
func (r *Registry) TypeOf(v any) (Type, bool) {
	if id, ok := v.(Identifier); ok {
		return r.Lookup(id.Identify())
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byGo[reflect.TypeOf(v)]
	if !ok {
		return Type{}, false
	}
	return *t, true
}

// IsA reports whether h is base or derives from it.
func (r *Registry) IsA(h, base TypeHandle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isA(h, base)
}

func (r *Registry) isA(h, base TypeHandle) bool {
	seen := map[TypeHandle]bool{}
	for h != 0 && !seen[h] {
		if h == base {
			return true
		}
		seen[h] = true
		t, ok := r.byHandle[h]
		if !ok {
			return false
		}
		h = t.Base
	}
	return false
}

// Select returns the types deriving from base, base included, ordered by
// handle.
func (r *Registry) Select(base TypeHandle) []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []Type
	for h, t := range r.byHandle {
		if r.isA(h, base) {
			res = append(res, *t)
		}
	}
	slices.SortFunc(res, func(a, b Type) int {
		return cmp.Compare(a.Handle, b.Handle)
	})
	return res
}
