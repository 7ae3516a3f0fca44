package meta

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/metagraph/stream"
	"github.com/signadot/metagraph/text"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type shape interface {
	Area() float64
}

type square struct {
	Side float64
}

func (s *square) Area() float64 { return s.Side * s.Side }

func (s *square) Reflect(sn *Snapshot) error {
	sn.Add("side", Float64(&s.Side))
	return nil
}

type circle struct {
	R float64
}

func (c *circle) Area() float64 { return 3 * c.R * c.R }

func (c *circle) Identify() TypeHandle { return circleType }

func (c *circle) Reflect(sn *Snapshot) error {
	sn.Add("r", Float64(&c.R))
	return nil
}

type canvas struct {
	Shapes []shape
}

func (c *canvas) Reflect(s *Snapshot) error {
	s.Add("shapes", Slice(&c.Shapes, func(p *shape) Parameter { return Poly(p) }))
	return nil
}

const (
	shapeType TypeHandle = iota + 1
	squareType
	circleType
	pointType
)

func shapes(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	types := []Type{
		{Handle: shapeType, Name: "shape", New: func() any { return new(any) }},
		{Handle: squareType, Name: "square", Base: shapeType, New: func() any { return &square{} }},
		{Handle: circleType, Name: "circle", Base: shapeType, New: func() any { return &circle{} }},
		{Handle: pointType, Name: "point", New: func() any { return &point{} }},
	}
	for _, ty := range types {
		if err := r.Register(ty); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func TestRegistry(t *testing.T) {
	r := shapes(t)
	bad := []Type{
		{Name: "zero", New: func() any { return nil }},
		{Handle: 10, New: func() any { return nil }},
		{Handle: 10, Name: "nonew"},
		{Handle: squareType, Name: "again", New: func() any { return &square{} }},
		{Handle: 11, Name: "circle", New: func() any { return &circle{} }},
	}
	for _, ty := range bad {
		if err := r.Register(ty); !errors.Is(err, text.ErrFail) {
			t.Errorf("register %+v: got %v", ty, err)
		}
	}
	if ty, ok := r.ByName("square"); !ok || ty.Handle != squareType {
		t.Errorf("by name: %+v %v", ty, ok)
	}
	if ty, ok := r.TypeOf(&square{}); !ok || ty.Name != "square" {
		t.Errorf("type of square: %+v %v", ty, ok)
	}
	if ty, ok := r.TypeOf(&circle{}); !ok || ty.Name != "circle" {
		t.Errorf("type of circle: %+v %v", ty, ok)
	}
	if _, ok := r.TypeOf(&canvas{}); ok {
		t.Errorf("canvas is registered")
	}
	if !r.IsA(circleType, shapeType) || r.IsA(pointType, shapeType) || !r.IsA(pointType, pointType) {
		t.Errorf("IsA")
	}
	var names []string
	for _, ty := range r.Select(shapeType) {
		names = append(names, ty.Name)
	}
	if diff := cmp.Diff([]string{"shape", "square", "circle"}, names); diff != "" {
		t.Errorf("select (-want +got):\n%s", diff)
	}
}

func TestPolyRoundTrip(t *testing.T) {
	info := Complete()
	info.Registry = shapes(t)
	in := &canvas{Shapes: []shape{&square{Side: 2}, nil, &circle{R: 0.5}}}

	buf := stream.NewBuffer(nil)
	s, err := Capture(Object(in), "canvas", info)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(buf); err != nil {
		t.Fatal(err)
	}
	doc, err := s.SaveDoc()
	if err != nil {
		t.Fatal(err)
	}

	check := func(got *canvas) {
		t.Helper()
		if len(got.Shapes) != 3 || got.Shapes[1] != nil {
			t.Fatalf("shapes: %#v", got.Shapes)
		}
		sq, ok := got.Shapes[0].(*square)
		if !ok || sq.Side != 2 {
			t.Errorf("shape 0: %#v", got.Shapes[0])
		}
		c, ok := got.Shapes[2].(*circle)
		if !ok || c.R != 0.5 {
			t.Errorf("shape 2: %#v", got.Shapes[2])
		}
	}

	buf.Seek(0, io.SeekStart)
	got := &canvas{}
	if err := captureAs(t, got, "canvas", info).Load(buf); err != nil {
		t.Fatal(err)
	}
	check(got)

	got = &canvas{}
	if err := captureAs(t, got, "canvas", info).LoadDoc(doc); err != nil {
		t.Fatal(err)
	}
	check(got)
}

func captureAs(t *testing.T, v Reflective, name string, info Info) *Snapshot {
	t.Helper()
	s, err := Capture(Object(v), name, info)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPolyUnregistered(t *testing.T) {
	info := Complete()
	info.Registry = NewRegistry()
	in := &canvas{Shapes: []shape{&square{Side: 1}}}
	err := captureAs(t, in, "canvas", info).Save(stream.NewBuffer(nil))
	if !errors.Is(err, text.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestInfoLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	info := Complete()
	info.Logger = zap.New(core)
	var slot []string
	info.ConnectLog(func(msg string) { slot = append(slot, msg) })
	info.LogMessage("something odd")
	if logs.Len() != 1 {
		t.Fatalf("%d log entries", logs.Len())
	}
	e := logs.All()[0]
	if e.Message != "something odd" || e.ContextMap()["flags"] != Complete().Flags.String() {
		t.Errorf("entry %+v", e)
	}
	if diff := cmp.Diff([]string{"something odd"}, slot); diff != "" {
		t.Errorf("slot (-want +got):\n%s", diff)
	}
}
