package text

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the environment a selection predicate is evaluated in.
type Env struct {
	Name        string
	Value       string
	HasValue    bool
	Type        string
	Kind        string
	IsAttribute bool
	IsArray     bool
	Depth       int
	Path        string
	Children    int

	node *Tree
}

// Attr returns the value of the named attribute child or "".
func (e Env) Attr(name string) string {
	v, _ := Attr(e.node, name)
	return v
}

// Has reports whether a child with the given name exists.
func (e Env) Has(name string) bool {
	for _, c := range e.node.Children() {
		if c.Data.Name == name {
			return true
		}
	}
	return false
}

func envFor(t *Tree) Env {
	return Env{
		Name:        t.Data.Name,
		Value:       t.Data.Str(),
		HasValue:    t.Data.Value != nil,
		Type:        t.Data.Type(),
		Kind:        t.Data.Kind.String(),
		IsAttribute: t.Data.IsAttribute,
		IsArray:     t.Data.IsArray,
		Depth:       t.Depth(),
		Path:        Path(t),
		Children:    t.Count(),
		node:        t,
	}
}

// Selector is a compiled node predicate.
type Selector struct {
	src string
	prg *vm.Program
}

// CompileSelector compiles a boolean expr-lang expression over Env.
func CompileSelector(src string) (*Selector, error) {
	prg, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", src, err)
	}
	return &Selector{src: src, prg: prg}, nil
}

func (s *Selector) Match(t *Tree) (bool, error) {
	res, err := expr.Run(s.prg, envFor(t))
	if err != nil {
		return false, fmt.Errorf("selector %q on %s: %w", s.src, Path(t), err)
	}
	b, _ := res.(bool)
	return b, nil
}

// Select returns the nodes of d, in document order, for which src
// evaluates to true.
func Select(d *Doc, src string) ([]*Tree, error) {
	s, err := CompileSelector(src)
	if err != nil {
		return nil, err
	}
	var res []*Tree
	err = d.Walk(func(t *Tree) (bool, error) {
		ok, err := s.Match(t)
		if err != nil {
			return false, err
		}
		if ok {
			res = append(res, t)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
