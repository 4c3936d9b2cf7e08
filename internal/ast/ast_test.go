package ast

import (
	"testing"

	"github.com/rovelang/go-rove/internal/lexer"
)

func id(name string) *Node {
	return NewFromToken(lexer.NewToken(lexer.ID, name, lexer.Position{Line: 1, Column: 1}))
}

func TestAppendChild(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})
	a, b, c := id("a"), id("b"), id("c")

	n.AppendChild(a)
	n.AppendChild(b)
	n.AppendChild(c)

	if n.ChildCount() != 3 {
		t.Fatalf("child count = %d, want 3", n.ChildCount())
	}
	if n.Child() != a || a.Sibling() != b || b.Sibling() != c || c.Sibling() != nil {
		t.Error("sibling chain broken")
	}
	for i, want := range []*Node{a, b, c} {
		if n.ChildAt(i) != want {
			t.Errorf("ChildAt(%d) wrong", i)
		}
		if want.Parent() != n {
			t.Errorf("child %d parent link wrong", i)
		}
	}
	if n.ChildAt(3) != nil {
		t.Error("ChildAt past the end must be nil")
	}
}

func TestPrependChild(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})
	a, b := id("a"), id("b")

	n.AppendChild(a)
	n.PrependChild(b)

	if n.Child() != b || b.Sibling() != a {
		t.Error("prepend must put the child first")
	}

	// Append after prepend must still land at the end.
	c := id("c")
	n.AppendChild(c)
	if n.ChildAt(2) != c {
		t.Error("append after prepend broken")
	}
}

func TestReplace(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})
	a, b, c := id("a"), id("b"), id("c")
	n.AppendChild(a)
	n.AppendChild(b)

	Replace(a, c)
	if n.Child() != c || c.Sibling() != b || c.Parent() != n {
		t.Error("replace of first child broken")
	}

	d := id("d")
	Replace(b, d)
	if c.Sibling() != d || d.Parent() != n {
		t.Error("replace of last child broken")
	}

	// The list must still append correctly after replacing the last child.
	e := id("e")
	n.AppendChild(e)
	if n.ChildAt(2) != e {
		t.Error("append after replace broken")
	}
}

func TestSwap(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})
	a, b, c := id("a"), id("b"), id("c")
	n.AppendChild(a)
	n.AppendChild(b)
	n.AppendChild(c)

	Swap(a, c)
	if n.ChildAt(0) != c || n.ChildAt(1) != b || n.ChildAt(2) != a {
		t.Error("swap broken")
	}
}

func TestRemove(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})
	a, b, c := id("a"), id("b"), id("c")
	n.AppendChild(a)
	n.AppendChild(b)
	n.AppendChild(c)

	b.Remove()
	if n.ChildCount() != 2 || n.ChildAt(0) != a || n.ChildAt(1) != c {
		t.Error("remove of middle child broken")
	}
	if b.Parent() != nil {
		t.Error("removed node must have no parent")
	}

	c.Remove()
	d := id("d")
	n.AppendChild(d)
	if n.ChildAt(1) != d {
		t.Error("append after removing last child broken")
	}
}

func TestReorder(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})
	a, b, c, d := id("a"), id("b"), id("c"), id("d")
	for _, ch := range []*Node{a, b, c, d} {
		n.AppendChild(ch)
	}

	n.Reorder(2, 3, 1, 0)
	want := []*Node{c, d, b, a}
	for i, w := range want {
		if n.ChildAt(i) != w {
			t.Fatalf("ChildAt(%d) wrong after reorder", i)
		}
	}
	if n.ChildCount() != 4 {
		t.Errorf("child count after reorder = %d", n.ChildCount())
	}
}

func TestFlags(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})

	n.SetFlag(FlagInParens | FlagTestOnly)
	if !n.HasFlag(FlagInParens) || !n.HasFlag(FlagTestOnly) {
		t.Error("flags not set")
	}
	if n.HasFlag(FlagBadSemi) {
		t.Error("unset flag reported set")
	}

	n.ClearFlag(FlagTestOnly)
	if n.HasFlag(FlagTestOnly) {
		t.Error("flag not cleared")
	}
	if !n.HasFlag(FlagInParens) {
		t.Error("clear must not touch other flags")
	}
}

func TestSetKindRetagsToken(t *testing.T) {
	n := NewFromToken(lexer.NewToken(lexer.COMMA, ",", lexer.Position{}))
	n.SetKind(lexer.TUPLE)
	if n.Kind() != lexer.TUPLE || n.Token().Type != lexer.TUPLE {
		t.Error("SetKind must retag both node and token")
	}
}

func TestDup(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})
	a := id("a")
	n.AppendChild(a)
	n.SetFlag(FlagInParens)
	data := New(lexer.CLASS, lexer.Position{})
	a.SetData(data)

	d := n.Dup()
	if d == n || d.Child() == a {
		t.Error("dup must copy nodes")
	}
	if d.Parent() != nil || d.Sibling() != nil {
		t.Error("dup must be detached")
	}
	if !d.HasFlag(FlagInParens) {
		t.Error("dup must carry flags")
	}
	if d.Child().DataNode() != data {
		t.Error("dup must carry Data as a non-owning reference")
	}
	if d.Child().Name() != a.Name() {
		t.Error("dup must keep interned names")
	}

	// Mutating the copy must not affect the original.
	d.AppendChild(id("b"))
	if n.ChildCount() != 1 {
		t.Error("dup shares child list with original")
	}
}

func TestScopeLookup(t *testing.T) {
	outer := New(lexer.MODULE, lexer.Position{})
	inner := New(lexer.SEQ, lexer.Position{})
	outer.AppendChild(inner)
	leaf := id("x")
	inner.AppendChild(leaf)

	def := New(lexer.CLASS, lexer.Position{})
	outer.SetScope(NewScope())
	outer.Scope().Set(id("Foo").Name(), def)

	if got := leaf.Get(id("Foo").Name()); got != def {
		t.Error("Get must walk parent scopes")
	}
	if got := leaf.Get(id("Bar").Name()); got != nil {
		t.Error("Get of unknown name must be nil")
	}

	// Inner scopes shadow outer ones.
	def2 := New(lexer.ACTOR, lexer.Position{})
	inner.SetScope(NewScope())
	inner.Scope().Set(id("Foo").Name(), def2)
	if got := leaf.Get(id("Foo").Name()); got != def2 {
		t.Error("inner scope must shadow outer")
	}
}

func TestPrint(t *testing.T) {
	n := New(lexer.SEQ, lexer.Position{})
	n.AppendChild(id("a"))
	none := New(lexer.NONE, lexer.Position{})
	n.AppendChild(none)

	got := Print(n)
	want := "(seq (id a) x)"
	if got != want {
		t.Errorf("Print = %q, want %q", got, want)
	}
}
