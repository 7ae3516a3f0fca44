package meta

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/metagraph/encode"
	"github.com/signadot/metagraph/format"
	"github.com/signadot/metagraph/parse"
	"github.com/signadot/metagraph/stream"
	"github.com/signadot/metagraph/text"
)

type point struct {
	X, Y int
}

func (p *point) Reflect(s *Snapshot) error {
	s.Add("x", Int(&p.X))
	s.Add("y", Int(&p.Y))
	return nil
}

type node struct {
	Name   string
	Weight float64
	Tags   []string
	Next   *node
	Prev   *node
	Child  *node
	Origin *point
	Alt    *point
	Data   []byte
	On     bool
}

func (n *node) Reflect(s *Snapshot) error {
	s.Add("name", String(&n.Name))
	s.Add("weight", Float64(&n.Weight))
	s.Add("tags", Slice(&n.Tags, String))
	s.Add("next", Ref(&n.Next))
	s.Add("prev", Ref(&n.Prev))
	s.Add("child", Own(&n.Child))
	s.Add("origin", Shared(&n.Origin))
	s.Add("alt", Shared(&n.Alt))
	s.Add("data", Bytes(&n.Data))
	s.Add("on", Bool(&n.On))
	return nil
}

func sampleGraph() *node {
	o := &point{X: 1, Y: 2}
	root := &node{
		Name:   "root",
		Weight: 1.5,
		Tags:   []string{"a", "b c"},
		Origin: o,
		Alt:    o,
		Data:   []byte{0, 1, 2},
		On:     true,
	}
	root.Child = &node{Name: "child", Weight: -3, Next: root, Origin: o}
	root.Next = root.Child
	return root
}

func checkGraph(t *testing.T, got *node) {
	t.Helper()
	if got.Name != "root" || got.Weight != 1.5 || !got.On {
		t.Errorf("root fields: %q %v %v", got.Name, got.Weight, got.On)
	}
	if diff := cmp.Diff([]string{"a", "b c"}, got.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
	if !bytes.Equal(got.Data, []byte{0, 1, 2}) {
		t.Errorf("data: %v", got.Data)
	}
	if got.Child == nil {
		t.Fatal("child not loaded")
	}
	if got.Child.Name != "child" || got.Child.Weight != -3 || got.Child.On {
		t.Errorf("child fields: %q %v %v", got.Child.Name, got.Child.Weight, got.Child.On)
	}
	if got.Next != got.Child {
		t.Errorf("next is not the child")
	}
	if got.Child.Next != got {
		t.Errorf("child next is not the root")
	}
	if got.Prev != nil || got.Child.Prev != nil || got.Child.Child != nil || got.Child.Alt != nil {
		t.Errorf("nil pointers were not preserved")
	}
	if got.Origin == nil || got.Origin != got.Alt || got.Child.Origin != got.Origin {
		t.Fatalf("shared origin not shared: %p %p %p", got.Origin, got.Alt, got.Child.Origin)
	}
	if diff := cmp.Diff(point{X: 1, Y: 2}, *got.Origin); diff != "" {
		t.Errorf("origin (-want +got):\n%s", diff)
	}
}

func capture(t *testing.T, v Reflective, info Info) *Snapshot {
	t.Helper()
	s, err := Capture(Object(v), "root", info)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBinaryRoundTrip(t *testing.T) {
	infos := map[string]Info{
		"complete":   Complete(),
		"minimal":    Minimal(),
		"big-endian": {Flags: Linkage | TypeInfo},
		"sized":      {Flags: LittleEndian | Linkage | SizeInfo},
	}
	for name, info := range infos {
		t.Run(name, func(t *testing.T) {
			buf := stream.NewBuffer(nil)
			if err := capture(t, sampleGraph(), info).Save(buf); err != nil {
				t.Fatal(err)
			}
			if _, err := buf.Seek(0, io.SeekStart); err != nil {
				t.Fatal(err)
			}
			got := &node{}
			if err := capture(t, got, info).Load(buf); err != nil {
				t.Fatal(err)
			}
			checkGraph(t, got)
		})
	}
}

func TestDocRoundTrip(t *testing.T) {
	for name, info := range map[string]Info{"complete": Complete(), "minimal": Minimal()} {
		t.Run(name, func(t *testing.T) {
			doc, err := capture(t, sampleGraph(), info).SaveDoc()
			if err != nil {
				t.Fatal(err)
			}
			got := &node{}
			if err := capture(t, got, info).LoadDoc(doc); err != nil {
				t.Fatal(err)
			}
			checkGraph(t, got)
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	formats := []format.Format{format.XMLFormat, format.JSONFormat}
	for _, f := range formats {
		for name, info := range map[string]Info{"complete": Complete(), "minimal": Minimal()} {
			t.Run(f.String()+"/"+name, func(t *testing.T) {
				b := &bytes.Buffer{}
				if err := capture(t, sampleGraph(), info).SaveText(b, encode.EncodeFormat(f)); err != nil {
					t.Fatal(err)
				}
				got := &node{}
				if err := capture(t, got, info).LoadText(bytes.NewReader(b.Bytes())); err != nil {
					t.Fatalf("%v\n%s", err, b.String())
				}
				checkGraph(t, got)
			})
		}
	}
}

type pair struct {
	First *int
	N     int
}

func (p *pair) Reflect(s *Snapshot) error {
	s.Add("first", Ref(&p.First))
	s.Add("n", Int(&p.N))
	return nil
}

func TestPlaceholderPatch(t *testing.T) {
	p := &pair{N: 42}
	p.First = &p.N
	buf := stream.NewBuffer(nil)
	if err := capture(t, p, Minimal()).Save(buf); err != nil {
		t.Fatal(err)
	}
	want := []byte("MGPH" +
		"\x00\x00\x00\x00" + "\x05\x00\x00\x00" +
		"\x00\x00\x00\x00" + "\x02\x00\x00\x00" +
		"\x01\x00\x00\x00" + "\x02\x00\x00\x00" + "\x00\x00\x00\x00" +
		"\x02\x00\x00\x00" + "\x2a\x00\x00\x00\x00\x00\x00\x00" + "\x00\x00\x00\x00" +
		"\x00\x00\x00\x00")
	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Fatalf("stream (-want +got):\n%s", diff)
	}
	if buf.Cursor() != int64(len(want)) {
		t.Errorf("cursor %d, want %d", buf.Cursor(), len(want))
	}
	buf.Seek(0, io.SeekStart)
	got := &pair{}
	if err := capture(t, got, Minimal()).Load(buf); err != nil {
		t.Fatal(err)
	}
	if got.N != 42 || got.First != &got.N {
		t.Errorf("got %+v", got)
	}
}

func TestTextPlaceholderPatch(t *testing.T) {
	p := &pair{N: 7}
	p.First = &p.N
	doc, err := capture(t, p, Minimal()).SaveDoc()
	if err != nil {
		t.Fatal(err)
	}
	first := text.FindChild(doc.Find("root"), "first")
	if first == nil {
		t.Fatal("no first node")
	}
	if got := first.Data.Str(); got != "2" {
		t.Errorf("link id %q, want 2", got)
	}
}

func TestSharedWrittenOnce(t *testing.T) {
	doc, err := capture(t, sampleGraph(), Complete()).SaveDoc()
	if err != nil {
		t.Fatal(err)
	}
	sh := doc.Find(sharedObjectsNode)
	if sh == nil {
		t.Fatal("no shared objects node")
	}
	if n, _ := text.Attr(sh, countNode); n != "1" {
		t.Errorf("shared count %q, want 1", n)
	}
	if els := text.Elements(sh); len(els) != 1 || els[0].Data.Name != "shared_0" {
		t.Errorf("shared nodes: %d", len(els))
	}
	xml := encode.MustString(doc)
	if !strings.Contains(xml, `<shared_objects count="1">`) {
		t.Errorf("missing shared objects in\n%s", xml)
	}
}

func TestLinkNeedsLinkage(t *testing.T) {
	p := &pair{}
	p.First = &p.N
	err := capture(t, p, Pure()).Save(stream.NewBuffer(nil))
	if !errors.Is(err, text.ErrFail) {
		t.Fatalf("got %v, want ErrFail", err)
	}
	var me *Error
	if !errors.As(err, &me) || me.Path != "/root/first" {
		t.Errorf("error path: %v", err)
	}
}

func TestPureValues(t *testing.T) {
	in := &point{X: -5, Y: 1 << 40}
	buf := stream.NewBuffer(nil)
	if err := capture(t, in, Pure()).Save(buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 12+4+8+4+8+4 {
		t.Errorf("pure stream has %d bytes", buf.Len())
	}
	buf.Seek(0, io.SeekStart)
	got := &point{}
	if err := capture(t, got, Pure()).Load(buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

type other struct {
	X int
}

func (o *other) Reflect(s *Snapshot) error {
	s.Add("x", Int(&o.X))
	return nil
}

func TestTypeMismatch(t *testing.T) {
	buf := stream.NewBuffer(nil)
	if err := capture(t, &point{X: 1}, Complete()).Save(buf); err != nil {
		t.Fatal(err)
	}
	buf.Seek(0, io.SeekStart)
	var logged []string
	info := Complete()
	info.ConnectLog(func(msg string) { logged = append(logged, msg) })
	err := capture(t, &other{}, info).Load(buf)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("got %v, want ErrTypeMismatch", err)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], `expected "other", found "point"`) {
		t.Errorf("logged %q", logged)
	}
}

type point3 struct {
	X, Y, Z int
}

func (p *point3) TypeName() string { return "point" }

func (p *point3) Reflect(s *Snapshot) error {
	s.Add("x", Int(&p.X))
	s.Add("y", Int(&p.Y))
	s.Add("z", Int(&p.Z))
	return nil
}

func TestSkipUnknown(t *testing.T) {
	var logged []string
	info := Complete()
	info.ConnectLog(func(msg string) { logged = append(logged, msg) })

	buf := stream.NewBuffer(nil)
	if err := capture(t, &point3{X: 1, Y: 2, Z: 3}, info).Save(buf); err != nil {
		t.Fatal(err)
	}
	buf.Seek(0, io.SeekStart)
	got := &point{}
	if err := capture(t, got, info).Load(buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&point{X: 1, Y: 2}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], `"z"`) {
		t.Errorf("logged %q", logged)
	}

	logged = nil
	doc, err := capture(t, &point{X: 4, Y: 5}, info).SaveDoc()
	if err != nil {
		t.Fatal(err)
	}
	got3 := &point3{Z: 9}
	if err := capture(t, got3, info).LoadDoc(doc); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&point3{X: 4, Y: 5, Z: 9}, got3); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "/root/z") {
		t.Errorf("logged %q", logged)
	}
}

func TestSkipUnknownWithoutSize(t *testing.T) {
	info := Info{Flags: LittleEndian | BinaryNames}
	buf := stream.NewBuffer(nil)
	if err := capture(t, &point3{}, info).Save(buf); err != nil {
		t.Fatal(err)
	}
	buf.Seek(0, io.SeekStart)
	err := capture(t, &point{}, info).Load(buf)
	if !errors.Is(err, text.ErrNotSupported) {
		t.Errorf("got %v, want ErrNotSupported", err)
	}
}

func TestLoadErrors(t *testing.T) {
	buf := stream.NewBuffer(nil)
	if err := capture(t, &point{}, Complete()).Save(buf); err != nil {
		t.Fatal(err)
	}
	d := buf.Bytes()
	cases := []struct {
		name string
		d    []byte
		want error
	}{
		{"bad magic", append([]byte("XXXX"), d[4:]...), text.ErrNotSupported},
		{"truncated", d[:len(d)-6], text.ErrFail},
		{"empty", nil, text.ErrFail},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := capture(t, &point{}, Complete()).Load(stream.NewBuffer(c.d))
			if !errors.Is(err, c.want) {
				t.Errorf("got %v, want %v", err, c.want)
			}
		})
	}
}

func TestLoadDocErrors(t *testing.T) {
	doc, err := parse.Parse([]byte(`<other />`))
	if err != nil {
		t.Fatal(err)
	}
	err = capture(t, &point{}, Minimal()).LoadDoc(doc)
	if !errors.Is(err, text.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	doc, err = parse.Parse([]byte(`<root><x>one</x><y>2</y></root>`))
	if err != nil {
		t.Fatal(err)
	}
	err = capture(t, &point{}, Pure()).LoadDoc(doc)
	if !errors.Is(err, text.ErrFail) {
		t.Errorf("got %v, want ErrFail", err)
	}
}

func TestHandWrittenDoc(t *testing.T) {
	doc, err := parse.Parse([]byte(`{"root": {"x": 3, "y": -4}}`))
	if err != nil {
		t.Fatal(err)
	}
	got := &point{}
	if err := capture(t, got, Pure()).LoadDoc(doc); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&point{X: 3, Y: -4}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSnapshot(t *testing.T) {
	s := capture(t, sampleGraph(), Complete())
	var paths []string
	s.Walk(func(s *Snapshot) (bool, error) {
		if strings.HasPrefix(s.Path(), "/root/child/data/") {
			paths = append(paths, s.Path())
		}
		return true, nil
	})
	want := []string{
		"/root/child/data/name",
		"/root/child/data/weight",
		"/root/child/data/tags",
		"/root/child/data/next",
		"/root/child/data/prev",
		"/root/child/data/child",
		"/root/child/data/origin",
		"/root/child/data/alt",
		"/root/child/data/data",
		"/root/child/data/on",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	tags := s.FindChild("tags")
	if tags == nil || tags.Count() != 2 || tags.Param().TypeName() != "slice" {
		t.Fatalf("tags: %v", tags)
	}
	if e := tags.FindChild(ElementName(1)); e == nil || *e.Param().Value().(*string) != "b c" {
		t.Errorf("element 1 not found")
	}
	if s.FindChild("missing") != nil {
		t.Errorf("found missing child")
	}
	if s.Param().TypeName() != "node" {
		t.Errorf("root type %q", s.Param().TypeName())
	}
}

func TestFlagsString(t *testing.T) {
	cases := map[Flags]string{
		0:                      "none",
		LittleEndian | Linkage: "little-endian|linkage",
		Complete().Flags:       "little-endian|type-info|linkage|binary-names|size-info|value-encapsulation",
	}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Errorf("%d: got %q want %q", f, got, want)
		}
	}
}
