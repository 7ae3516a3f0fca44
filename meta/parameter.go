package meta

import (
	"reflect"

	"github.com/signadot/metagraph/linkage"
)

// Parameter is one serializable field of an object graph.
type Parameter interface {
	linkage.Parameter
	// TypeName is written with the parameter when type info is enabled.
	TypeName() string
	// Value returns a pointer to the managed value.
	Value() any
	Save(c *Controller) error
	Load(c *Controller) error
}

// Reflective is implemented by types whose fields are parameters. Reflect
// is called again after the parameter holding the value has been loaded,
// so it must register parameters pointing at the current storage.
type Reflective interface {
	Reflect(s *Snapshot) error
}

// Named lets a Reflective type choose the type name written for it.
type Named interface {
	TypeName() string
}

func addrOf(p any) uintptr {
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return 0
	}
	return v.Pointer()
}

func typeNameOf(t reflect.Type) string {
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return "binary"
	}
	return t.Kind().String()
}

// Primitive lists the types a Value parameter can manage.
type Primitive interface {
	~bool | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string | ~[]byte
}

type valueParam[T Primitive] struct {
	p *T
}

// Value manages the primitive at p.
func Value[T Primitive](p *T) Parameter {
	return &valueParam[T]{p: p}
}

func Int(p *int) Parameter         { return Value(p) }
func Int64(p *int64) Parameter     { return Value(p) }
func Uint32(p *uint32) Parameter   { return Value(p) }
func Uint64(p *uint64) Parameter   { return Value(p) }
func Float64(p *float64) Parameter { return Value(p) }
func Bool(p *bool) Parameter       { return Value(p) }
func String(p *string) Parameter   { return Value(p) }
func Bytes(p *[]byte) Parameter    { return Value(p) }

func (v *valueParam[T]) Address() uintptr { return addrOf(v.p) }
func (v *valueParam[T]) TypeName() string { return typeNameOf(reflect.TypeFor[T]()) }
func (v *valueParam[T]) Value() any       { return v.p }

func (v *valueParam[T]) Save(c *Controller) error {
	return c.WriteValue(*v.p)
}

func (v *valueParam[T]) Load(c *Controller) error {
	return c.ReadValue(v.p)
}

type objectParam struct {
	r Reflective
}

// Object manages a Reflective value, which must be a non-nil pointer.
// Its own body is empty; its fields are its children.
func Object(r Reflective) Parameter {
	return &objectParam{r: r}
}

func (o *objectParam) Address() uintptr { return addrOf(o.r) }
func (o *objectParam) Value() any       { return o.r }

func (o *objectParam) TypeName() string {
	if n, ok := o.r.(Named); ok {
		return n.TypeName()
	}
	t := reflect.TypeOf(o.r)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func (o *objectParam) Save(*Controller) error { return nil }
func (o *objectParam) Load(*Controller) error { return nil }

func (o *objectParam) Reflect(s *Snapshot) error {
	return o.r.Reflect(s)
}
