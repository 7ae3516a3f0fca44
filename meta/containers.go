package meta

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/signadot/metagraph/text"
)

// MaxElements bounds the element count accepted when loading a slice.
const MaxElements = 1 << 24

type sliceParam[T any] struct {
	ps   *[]T
	elem func(*T) Parameter
}

// Slice manages the slice at ps. Elements are children named by
// ElementName and managed by the parameters elem returns.
func Slice[T any](ps *[]T, elem func(*T) Parameter) Parameter {
	return &sliceParam[T]{ps: ps, elem: elem}
}

func (sp *sliceParam[T]) Address() uintptr { return addrOf(sp.ps) }
func (sp *sliceParam[T]) TypeName() string { return "slice" }
func (sp *sliceParam[T]) Value() any       { return sp.ps }

func typeNameFor[T any]() string {
	return typeNameOf(reflect.TypeFor[T]())
}

func checkElemType(c *Controller, what, got, want string) error {
	if got == want {
		return nil
	}
	msg := fmt.Sprintf("%s of type %q cannot be loaded as %q", what, got, want)
	c.LogMessage(msg)
	return fmt.Errorf("%w: %s", ErrTypeMismatch, msg)
}

// writeTypes writes the key_type (when key is not empty) and value_type
// attributes if the session carries type info.
func writeTypes(c *Controller, key, value string) error {
	if !c.Flags().Has(TypeInfo) {
		return nil
	}
	if key != "" {
		if err := c.WriteAttribute(keyTypeNode, key); err != nil {
			return err
		}
	}
	return c.WriteAttribute(valueTypeNode, value)
}

func readTypes(c *Controller, what, key, value string) error {
	if !c.Flags().Has(TypeInfo) {
		return nil
	}
	var vt string
	if key != "" {
		if err := c.ReadAttribute(keyTypeNode, &vt); err != nil {
			return err
		}
		if err := checkElemType(c, what+" keys", vt, key); err != nil {
			return err
		}
	}
	if err := c.ReadAttribute(valueTypeNode, &vt); err != nil {
		return err
	}
	return checkElemType(c, what+" values", vt, value)
}

func readCount(c *Controller, what string) (int, error) {
	var n uint32
	if err := c.ReadAttribute(countNode, &n); err != nil {
		return 0, err
	}
	if n > MaxElements {
		return 0, fmt.Errorf("%w: %d %s elements", text.ErrOutOfMemory, n, what)
	}
	return int(n), nil
}

func (sp *sliceParam[T]) Save(c *Controller) error {
	if err := writeTypes(c, "", typeNameFor[T]()); err != nil {
		return err
	}
	return c.WriteAttribute(countNode, uint32(len(*sp.ps)))
}

func (sp *sliceParam[T]) Load(c *Controller) error {
	if err := readTypes(c, "slice", "", typeNameFor[T]()); err != nil {
		return err
	}
	n, err := readCount(c, "slice")
	if err != nil {
		return err
	}
	*sp.ps = make([]T, n)
	return nil
}

func (sp *sliceParam[T]) Reflect(s *Snapshot) error {
	for i := range *sp.ps {
		s.Add(ElementName(i), sp.elem(&(*sp.ps)[i]))
	}
	return nil
}

// Pair holds two values saved as the children "first" and "second".
type Pair[A, B any] struct {
	First  A
	Second B
}

type pairParam[A, B any] struct {
	p      *Pair[A, B]
	first  func(*A) Parameter
	second func(*B) Parameter
}

// PairOf manages the pair at p with the parameters first and second
// return for its halves.
func PairOf[A, B any](p *Pair[A, B], first func(*A) Parameter, second func(*B) Parameter) Parameter {
	return &pairParam[A, B]{p: p, first: first, second: second}
}

func (pp *pairParam[A, B]) Address() uintptr { return addrOf(pp.p) }
func (pp *pairParam[A, B]) TypeName() string { return "pair" }
func (pp *pairParam[A, B]) Value() any       { return pp.p }

func (pp *pairParam[A, B]) Save(c *Controller) error {
	return writeTypes(c, typeNameFor[A](), typeNameFor[B]())
}

func (pp *pairParam[A, B]) Load(c *Controller) error {
	return readTypes(c, "pair", typeNameFor[A](), typeNameFor[B]())
}

func (pp *pairParam[A, B]) Reflect(s *Snapshot) error {
	s.Add(firstNode, pp.first(&pp.p.First))
	s.Add(secondNode, pp.second(&pp.p.Second))
	return nil
}

type mapEntry[K cmp.Ordered, V any] struct {
	key   K
	value V
	kp    func(*K) Parameter
	vp    func(*V) Parameter
}

func (e *mapEntry[K, V]) TypeName() string { return "entry" }

func (e *mapEntry[K, V]) Reflect(s *Snapshot) error {
	s.Add(keyNode, e.kp(&e.key))
	s.Add(valueNode, e.vp(&e.value))
	return nil
}

type mapParam[K cmp.Ordered, V any] struct {
	pm      *map[K]V
	key     func(*K) Parameter
	value   func(*V) Parameter
	entries []mapEntry[K, V]
	loading bool
}

// Map manages the map at pm. Entries are children named by ElementName in
// ascending key order, each with a "key" and a "value" child. Loaded
// entries are stored into the map once the graph is linked, so links
// inside values are bound before they are copied.
func Map[K cmp.Ordered, V any](pm *map[K]V, key func(*K) Parameter, value func(*V) Parameter) Parameter {
	return &mapParam[K, V]{pm: pm, key: key, value: value}
}

func (mp *mapParam[K, V]) Address() uintptr { return addrOf(mp.pm) }
func (mp *mapParam[K, V]) TypeName() string { return "map" }
func (mp *mapParam[K, V]) Value() any       { return mp.pm }

func (mp *mapParam[K, V]) Save(c *Controller) error {
	mp.loading = false
	if err := writeTypes(c, typeNameFor[K](), typeNameFor[V]()); err != nil {
		return err
	}
	return c.WriteAttribute(countNode, uint32(len(*mp.pm)))
}

func (mp *mapParam[K, V]) Load(c *Controller) error {
	if err := readTypes(c, "map", typeNameFor[K](), typeNameFor[V]()); err != nil {
		return err
	}
	n, err := readCount(c, "map")
	if err != nil {
		return err
	}
	mp.entries = make([]mapEntry[K, V], n)
	mp.loading = true
	c.OnLoaded(mp.store)
	return nil
}

func (mp *mapParam[K, V]) store() error {
	m := make(map[K]V, len(mp.entries))
	for i := range mp.entries {
		e := &mp.entries[i]
		if _, dup := m[e.key]; dup {
			return fmt.Errorf("%w: duplicate map key %v", text.ErrFail, e.key)
		}
		m[e.key] = e.value
	}
	*mp.pm = m
	mp.entries = nil
	mp.loading = false
	return nil
}

func (mp *mapParam[K, V]) Reflect(s *Snapshot) error {
	if !mp.loading {
		keys := make([]K, 0, len(*mp.pm))
		for k := range *mp.pm {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		mp.entries = make([]mapEntry[K, V], len(keys))
		for i, k := range keys {
			mp.entries[i].key = k
			mp.entries[i].value = (*mp.pm)[k]
		}
	}
	for i := range mp.entries {
		e := &mp.entries[i]
		e.kp, e.vp = mp.key, mp.value
		s.Add(ElementName(i), Object(e))
	}
	return nil
}

type polyParam[I any] struct {
	pi *I
}

// Poly manages an interface value whose dynamic type is registered in the
// session's Registry. The dynamic type must be a pointer to a Reflective
// type; its fields are saved in a "data" child.
func Poly[I any](pi *I) Parameter {
	return &polyParam[I]{pi: pi}
}

func (p *polyParam[I]) Address() uintptr { return addrOf(p.pi) }
func (p *polyParam[I]) TypeName() string { return "poly" }
func (p *polyParam[I]) Value() any       { return p.pi }

func (p *polyParam[I]) Save(c *Controller) error {
	v := any(*p.pi)
	if v == nil {
		return c.WriteAttribute(dynamicTypeNode, "")
	}
	reg := c.Info().Registry
	if reg == nil {
		return fmt.Errorf("%w: no registry for %T", text.ErrNotFound, v)
	}
	t, ok := reg.TypeOf(v)
	if !ok {
		return fmt.Errorf("%w: type %T is not registered", text.ErrNotFound, v)
	}
	return c.WriteAttribute(dynamicTypeNode, t.Name)
}

func (p *polyParam[I]) Load(c *Controller) error {
	var name string
	if err := c.ReadAttribute(dynamicTypeNode, &name); err != nil {
		return err
	}
	var zero I
	*p.pi = zero
	if name == "" {
		return nil
	}
	reg := c.Info().Registry
	if reg == nil {
		return fmt.Errorf("%w: no registry for type %q", text.ErrNotFound, name)
	}
	t, ok := reg.ByName(name)
	if !ok {
		return fmt.Errorf("%w: type %q is not registered", text.ErrNotFound, name)
	}
	v, ok := t.New().(I)
	if !ok {
		return fmt.Errorf("%w: registered type %q does not implement %s", ErrTypeMismatch, name, reflect.TypeFor[I]())
	}
	*p.pi = v
	return nil
}

func (p *polyParam[I]) Reflect(s *Snapshot) error {
	v := any(*p.pi)
	if v == nil {
		return nil
	}
	r, ok := v.(Reflective)
	if !ok {
		return fmt.Errorf("%w: %T is not reflective", text.ErrNotSupported, v)
	}
	s.Add(dataNode, Object(r))
	return nil
}
