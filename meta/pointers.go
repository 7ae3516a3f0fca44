package meta

import (
	"fmt"
	"reflect"
	"weak"

	"github.com/signadot/metagraph/linkage"
)

type refParam[T any] struct {
	pp **T
}

// Ref manages a non-owning pointer. The target must be saved as a
// parameter of the same graph; the pointer is written as the target's id
// and bound once the whole graph is loaded.
func Ref[T any](pp **T) Parameter {
	return &refParam[T]{pp: pp}
}

func (r *refParam[T]) Address() uintptr { return addrOf(r.pp) }
func (r *refParam[T]) TypeName() string { return "ref" }
func (r *refParam[T]) Value() any       { return r.pp }

func (r *refParam[T]) Save(c *Controller) error {
	return c.WriteLink(r, addrOf(*r.pp))
}

func (r *refParam[T]) Load(c *Controller) error {
	*r.pp = nil
	return c.ReadLink(r)
}

func (r *refParam[T]) Link(target linkage.Parameter) error {
	return bind(r.pp, target)
}

// bind points *pp at the storage managed by target. Links are resolved
// by address, so target may be an enclosing struct or array whose
// leading field or element is the T the link was written for.
func bind[T any](pp **T, target linkage.Parameter) error {
	p, ok := target.(Parameter)
	if !ok {
		return fmt.Errorf("%w: cannot bind %T", ErrTypeMismatch, target)
	}
	v, ok := leading[T](p.Value())
	if !ok {
		return fmt.Errorf("%w: cannot bind %T to %T", ErrTypeMismatch, p.Value(), *pp)
	}
	*pp = v
	return nil
}

// leading returns v as a *T, or the address of the first T found by
// descending through the first field or element at offset 0.
func leading[T any](v any) (*T, bool) {
	if p, ok := v.(*T); ok {
		return p, p != nil
	}
	want := reflect.TypeFor[T]()
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, false
	}
	e := rv.Elem()
	for {
		switch {
		case e.Kind() == reflect.Struct && e.NumField() > 0:
			e = e.Field(0)
		case e.Kind() == reflect.Array && e.Len() > 0:
			e = e.Index(0)
		default:
			return nil, false
		}
		if e.Type() == want {
			return (*T)(e.Addr().UnsafePointer()), true
		}
	}
}

type ownParam[T any, PT interface {
	*T
	Reflective
}] struct {
	pp **T
}

// Own manages a pointer that owns its target. The target is saved in a
// "data" child and allocated on load.
func Own[T any, PT interface {
	*T
	Reflective
}](pp **T) Parameter {
	return &ownParam[T, PT]{pp: pp}
}

func (o *ownParam[T, PT]) Address() uintptr { return addrOf(o.pp) }
func (o *ownParam[T, PT]) TypeName() string { return "own" }
func (o *ownParam[T, PT]) Value() any       { return o.pp }

func (o *ownParam[T, PT]) Save(c *Controller) error {
	return c.WriteValue(*o.pp != nil)
}

func (o *ownParam[T, PT]) Load(c *Controller) error {
	var present bool
	if err := c.ReadValue(&present); err != nil {
		return err
	}
	switch {
	case !present:
		*o.pp = nil
	case *o.pp == nil:
		*o.pp = new(T)
	}
	return nil
}

func (o *ownParam[T, PT]) Reflect(s *Snapshot) error {
	if *o.pp != nil {
		s.Add(dataNode, Object(PT(*o.pp)))
	}
	return nil
}

type sharedParam[T any, PT interface {
	*T
	Reflective
}] struct {
	pp **T
}

// Shared manages a pointer whose target may be shared by several
// parameters. Each target is written once, in the shared objects section
// that follows the root.
func Shared[T any, PT interface {
	*T
	Reflective
}](pp **T) Parameter {
	return &sharedParam[T, PT]{pp: pp}
}

func (s *sharedParam[T, PT]) Address() uintptr { return addrOf(s.pp) }
func (s *sharedParam[T, PT]) TypeName() string { return "shared" }
func (s *sharedParam[T, PT]) Value() any       { return s.pp }

func (s *sharedParam[T, PT]) Save(c *Controller) error {
	if *s.pp == nil {
		return c.WriteLink(s, 0)
	}
	return c.WriteSharedLink(s, Object(PT(*s.pp)))
}

func (s *sharedParam[T, PT]) Load(c *Controller) error {
	*s.pp = nil
	return c.ReadSharedLink(s, func() Parameter {
		return Object(PT(new(T)))
	})
}

func (s *sharedParam[T, PT]) Link(target linkage.Parameter) error {
	return bind(s.pp, target)
}

type weakParam[T any] struct {
	pw *weak.Pointer[T]
}

// Weak manages a weak pointer to an object owned by a Shared parameter
// of the same graph. Only the link is written; the target is loaded by
// its owner.
func Weak[T any](pw *weak.Pointer[T]) Parameter {
	return &weakParam[T]{pw: pw}
}

func (w *weakParam[T]) Address() uintptr { return addrOf(w.pw) }
func (w *weakParam[T]) TypeName() string { return "weak" }
func (w *weakParam[T]) Value() any       { return w.pw }

func (w *weakParam[T]) Save(c *Controller) error {
	v := w.pw.Value()
	if v == nil {
		return c.WriteAttribute(valueTypeNode, voidType)
	}
	if err := c.WriteAttribute(valueTypeNode, typeNameFor[T]()); err != nil {
		return err
	}
	return c.WriteLink(w, addrOf(v))
}

func (w *weakParam[T]) Load(c *Controller) error {
	*w.pw = weak.Pointer[T]{}
	var vt string
	if err := c.ReadAttribute(valueTypeNode, &vt); err != nil {
		return err
	}
	if vt == voidType {
		return nil
	}
	if err := checkElemType(c, "weak pointer target", vt, typeNameFor[T]()); err != nil {
		return err
	}
	return c.ReadWeakLink(w)
}

func (w *weakParam[T]) Link(target linkage.Parameter) error {
	var v *T
	if err := bind(&v, target); err != nil {
		return err
	}
	*w.pw = weak.Make(v)
	return nil
}
