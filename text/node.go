package text

import (
	"github.com/signadot/metagraph/tree"
)

type Kind int

const (
	General Kind = iota
	Comment
	CData
	Doctype
	Declaration
	PI
)

var kindNames = [...]string{
	General:     "general",
	Comment:     "comment",
	CData:       "cdata",
	Doctype:     "doctype",
	Declaration: "declaration",
	PI:          "pi",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value types recorded by the JSON parser and consulted by the JSON
// writer.
const (
	BoolType   = "bool"
	IntType    = "int"
	UintType   = "uint"
	FloatType  = "float"
	DoubleType = "double"
)

// IsUnquoted reports whether values of type vt are written without
// quotes.
func IsUnquoted(vt string) bool {
	switch vt {
	case BoolType, IntType, UintType, FloatType, DoubleType:
		return true
	}
	return false
}

// Node is the payload of a document tree.
type Node struct {
	Name  string
	Value *string
	// ValueType optionally tags Value.
	ValueType *string
	// EncapsulationName names the synthetic child carrying Value when a
	// node has both a value and children.
	EncapsulationName *string

	IsArray     bool
	IsAttribute bool
	Kind        Kind
}

type Tree = tree.Tree[Node]

func Ptr(s string) *string { return &s }

func NewTree(n Node) *Tree { return tree.New(n) }

// Str returns the value of n or "".
func (n *Node) Str() string {
	if n.Value == nil {
		return ""
	}
	return *n.Value
}

func (n *Node) Type() string {
	if n.ValueType == nil {
		return ""
	}
	return *n.ValueType
}

// Attr returns the value of the attribute child of t named name.
func Attr(t *Tree, name string) (string, bool) {
	for _, c := range t.Children() {
		if c.Data.IsAttribute && c.Data.Name == name {
			return c.Data.Str(), true
		}
	}
	return "", false
}

// FindChild returns the first non-attribute child of t named name.
func FindChild(t *Tree, name string) *Tree {
	for _, c := range t.Children() {
		if !c.Data.IsAttribute && c.Data.Name == name {
			return c
		}
	}
	return nil
}

// Elements returns the non-attribute children of t.
func Elements(t *Tree) []*Tree {
	var res []*Tree
	for _, c := range t.Children() {
		if !c.Data.IsAttribute {
			res = append(res, c)
		}
	}
	return res
}

// Path returns the slash separated names from the root to t.
func Path(t *Tree) string {
	if t.Parent() == nil {
		return "/" + t.Data.Name
	}
	return Path(t.Parent()) + "/" + t.Data.Name
}

// Doc is an ordered list of top level nodes.
type Doc struct {
	Nodes []*Tree
	// RootArray records that a JSON document's root was an array.
	RootArray bool
}

func NewDoc() *Doc { return &Doc{} }

// Add appends a new top level node and returns it.
func (d *Doc) Add(n Node) *Tree {
	t := tree.New(n)
	d.Nodes = append(d.Nodes, t)
	return t
}

func (d *Doc) Find(name string) *Tree {
	for _, t := range d.Nodes {
		if t.Data.Name == name {
			return t
		}
	}
	return nil
}

// Walk visits every node of d in document order.
func (d *Doc) Walk(fn func(*Tree) (bool, error)) error {
	for _, t := range d.Nodes {
		if err := t.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}
