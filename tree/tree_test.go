package tree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collect(t *Tree[string]) []string {
	res := []string{}
	t.Walk(func(n *Tree[string]) (bool, error) {
		res = append(res, n.Data)
		return true, nil
	})
	return res
}

func TestAddOrder(t *testing.T) {
	r := New("r")
	a := New("a")
	if err := r.Add(a); err != nil {
		t.Fatal(err)
	}
	a.AddData("a1")
	r.AddData("b")
	got := collect(r)
	want := []string{"r", "a", "a1", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("walk order (-want +got):\n%s", diff)
	}
	if a.Parent() != r || r.Count() != 2 {
		t.Errorf("bad structure")
	}
	if r.Children()[1].Depth() != 1 || a.Children()[0].Root() != r {
		t.Errorf("bad depth or root")
	}
}

func TestAddCycle(t *testing.T) {
	r := New(1)
	c := r.AddData(2)
	g := c.AddData(3)
	if err := r.Add(r); !errors.Is(err, ErrCycle) {
		t.Errorf("self add: got %v", err)
	}
	if err := g.Add(New(4)); err != nil {
		t.Fatal(err)
	}
	detached, err := r.Remove(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Add(detached); !errors.Is(err, ErrCycle) {
		t.Errorf("ancestor add: got %v", err)
	}
	other := New(5)
	if err := other.Add(g); !errors.Is(err, ErrAttached) {
		t.Errorf("attached add: got %v", err)
	}
}

func TestChildRange(t *testing.T) {
	r := New("r")
	if _, err := r.Child(0); !errors.Is(err, ErrRange) {
		t.Errorf("got %v", err)
	}
	r.AddData("x")
	c, err := r.Child(0)
	if err != nil || c.Data != "x" {
		t.Errorf("got %v %v", c, err)
	}
}

func TestResetEmpty(t *testing.T) {
	r := New("r")
	c := r.AddData("c")
	r.Reset()
	if r.Count() != 0 || r.Data != "r" || c.Parent() != nil {
		t.Errorf("reset: %v", collect(r))
	}
	r.AddData("d")
	r.Empty()
	if r.Count() != 0 || r.Data != "" {
		t.Errorf("empty: %v", collect(r))
	}
}

func TestWalkSkip(t *testing.T) {
	r := New("r")
	a := r.AddData("a")
	a.AddData("hidden")
	r.AddData("b")
	res := []string{}
	r.Walk(func(n *Tree[string]) (bool, error) {
		res = append(res, n.Data)
		return n.Data != "a", nil
	})
	if diff := cmp.Diff([]string{"r", "a", "b"}, res); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	stop := errors.New("stop")
	if err := r.Walk(func(n *Tree[string]) (bool, error) { return true, stop }); err != stop {
		t.Errorf("got %v", err)
	}
}

func TestClone(t *testing.T) {
	r := New("r")
	r.AddData("a").AddData("b")
	c := r.Clone(func(s string) string { return s + "'" })
	if diff := cmp.Diff([]string{"r'", "a'", "b'"}, collect(c)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if c.Parent() != nil || c.Children()[0].Parent() != c {
		t.Errorf("bad clone parents")
	}
}
