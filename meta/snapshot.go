package meta

import (
	"github.com/signadot/metagraph/tree"
)

// Field is a named parameter.
type Field struct {
	Name  string
	Param Parameter
}

// Snapshot is a tree of the parameters of an object graph. The children
// of a node are the parameters its Reflective parameter registers.
type Snapshot struct {
	node *tree.Tree[Field]
	info *Info
}

// Capture builds the snapshot of p under the root name name.
func Capture(p Parameter, name string, info Info) (*Snapshot, error) {
	s := newSnapshot(p, name, &info)
	if err := s.capture(); err != nil {
		return nil, err
	}
	return s, nil
}

func newSnapshot(p Parameter, name string, info *Info) *Snapshot {
	return &Snapshot{node: tree.New(Field{Name: name, Param: p}), info: info}
}

func (s *Snapshot) capture() error {
	if err := s.refresh(); err != nil {
		return err
	}
	for _, c := range s.Children() {
		if err := c.capture(); err != nil {
			return err
		}
	}
	return nil
}

// refresh replaces the children of s by the parameters its parameter
// registers now.
func (s *Snapshot) refresh() error {
	s.node.Reset()
	r, ok := s.Param().(Reflective)
	if !ok {
		return nil
	}
	if err := r.Reflect(s); err != nil {
		return &Error{Path: s.Path(), Msg: "reflect failed", Err: err}
	}
	return nil
}

// Add registers a child parameter. It is called from Reflect.
func (s *Snapshot) Add(name string, p Parameter) {
	s.node.AddData(Field{Name: name, Param: p})
}

func (s *Snapshot) Name() string     { return s.node.Data.Name }
func (s *Snapshot) Param() Parameter { return s.node.Data.Param }
func (s *Snapshot) Info() *Info      { return s.info }
func (s *Snapshot) Count() int       { return s.node.Count() }

func (s *Snapshot) sub(t *tree.Tree[Field]) *Snapshot {
	return &Snapshot{node: t, info: s.info}
}

func (s *Snapshot) Parent() *Snapshot {
	if p := s.node.Parent(); p != nil {
		return s.sub(p)
	}
	return nil
}

func (s *Snapshot) Children() []*Snapshot {
	cs := s.node.Children()
	res := make([]*Snapshot, len(cs))
	for i, c := range cs {
		res[i] = s.sub(c)
	}
	return res
}

// FindChild returns the first child named name, or nil.
func (s *Snapshot) FindChild(name string) *Snapshot {
	for _, c := range s.node.Children() {
		if c.Data.Name == name {
			return s.sub(c)
		}
	}
	return nil
}

// Path returns the slash separated names from the root to s.
func (s *Snapshot) Path() string {
	if p := s.Parent(); p != nil {
		return p.Path() + "/" + s.Name()
	}
	return "/" + s.Name()
}

// Walk visits s and its descendants in pre-order.
func (s *Snapshot) Walk(fn func(*Snapshot) (bool, error)) error {
	return s.node.Walk(func(t *tree.Tree[Field]) (bool, error) {
		return fn(s.sub(t))
	})
}
