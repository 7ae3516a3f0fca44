// Package tree provides an ordered n-ary tree whose nodes own their
// children.
package tree

import (
	"errors"
	"fmt"
)

var (
	ErrCycle    = errors.New("child is the tree or one of its ancestors")
	ErrAttached = errors.New("child already has a parent")
	ErrRange    = errors.New("child index out of range")
)

// Tree is a node holding a payload and an ordered list of children.
// A child belongs to exactly one parent.
type Tree[T any] struct {
	Data T

	parent   *Tree[T]
	children []*Tree[T]
}

func New[T any](data T) *Tree[T] {
	return &Tree[T]{Data: data}
}

// Add appends child to t.
func (t *Tree[T]) Add(child *Tree[T]) error {
	if child == nil {
		return fmt.Errorf("%w: nil child", ErrRange)
	}
	if child.parent != nil {
		return ErrAttached
	}
	for p := t; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	child.parent = t
	t.children = append(t.children, child)
	return nil
}

// AddData creates a child holding data, appends it and returns it.
func (t *Tree[T]) AddData(data T) *Tree[T] {
	c := &Tree[T]{Data: data, parent: t}
	t.children = append(t.children, c)
	return c
}

func (t *Tree[T]) Child(i int) (*Tree[T], error) {
	if i < 0 || i >= len(t.children) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrRange, i, len(t.children))
	}
	return t.children[i], nil
}

// Children returns the children of t. The slice must not be modified.
func (t *Tree[T]) Children() []*Tree[T] { return t.children }
func (t *Tree[T]) Count() int           { return len(t.children) }
func (t *Tree[T]) Parent() *Tree[T]     { return t.parent }

// Root returns the topmost ancestor of t.
func (t *Tree[T]) Root() *Tree[T] {
	r := t
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Depth returns the number of ancestors of t.
func (t *Tree[T]) Depth() int {
	n := 0
	for p := t.parent; p != nil; p = p.parent {
		n++
	}
	return n
}

// Remove detaches and returns the i'th child.
func (t *Tree[T]) Remove(i int) (*Tree[T], error) {
	c, err := t.Child(i)
	if err != nil {
		return nil, err
	}
	t.children = append(t.children[:i], t.children[i+1:]...)
	c.parent = nil
	return c, nil
}

// Reset detaches all children and keeps the payload.
func (t *Tree[T]) Reset() {
	for _, c := range t.children {
		c.parent = nil
	}
	t.children = nil
}

// Empty detaches all children and zeroes the payload.
func (t *Tree[T]) Empty() {
	t.Reset()
	var zero T
	t.Data = zero
}

// Walk visits t and its descendants in pre-order. If fn returns false the
// descendants of that node are skipped. Walk stops at the first error.
func (t *Tree[T]) Walk(fn func(*Tree[T]) (bool, error)) error {
	descend, err := fn(t)
	if err != nil {
		return err
	}
	if !descend {
		return nil
	}
	for _, c := range t.children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a detached deep copy of t, copying payloads with fn.
// A nil fn copies payloads by assignment.
func (t *Tree[T]) Clone(fn func(T) T) *Tree[T] {
	res := &Tree[T]{Data: t.Data}
	if fn != nil {
		res.Data = fn(t.Data)
	}
	if len(t.children) != 0 {
		res.children = make([]*Tree[T], len(t.children))
		for i, c := range t.children {
			cc := c.Clone(fn)
			cc.parent = res
			res.children[i] = cc
		}
	}
	return res
}
