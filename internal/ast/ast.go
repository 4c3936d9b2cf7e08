// Package ast defines the uniform abstract syntax tree for Rove.
//
// Every node carries the same shape: a kind tag, an optional lexical token,
// ordered children linked through first-child/next-sibling pointers, a parent
// back-link, a flag bitset, and two opaque back-references (Data, Type) that
// later passes fill in so the tree doubles as a symbol graph. Children are an
// ordered sequence and positional access is part of the contract: each kind
// has a fixed child schema and absent optional children hold a NONE
// placeholder rather than being omitted.
//
// The parent/child edges are a strict tree. Data, Type and Scope references
// may point at ancestors or siblings, so at the semantic level the structure
// is a DAG; those references never own their targets.
package ast

import "github.com/rovelang/go-rove/internal/lexer"

// Kind tags a node. The enumeration is shared with the lexical token types:
// token-bearing nodes use their token's type directly, abstract nodes use the
// structural values (SEQ, MEMBERS, NOMINAL, ...).
type Kind = lexer.TokenType

// Flags is the per-node flag bitset.
type Flags uint16

const (
	// FlagInParens marks an expression or type that was written in
	// parentheses; the syntax pass uses it to allow tuple-style forms.
	FlagInParens Flags = 1 << iota

	// FlagBadSemi marks an explicit ';' that appears at the end of a line.
	FlagBadSemi

	// FlagMissingSemi marks the second of two expressions on one line with
	// no separator.
	FlagMissingSemi

	// FlagTestOnly marks subtrees built from '$' test tokens. They must be
	// removed by normalization before semantic analysis.
	FlagTestOnly

	// FlagPreserve marks the lambda children that the grammar sets aside
	// from later processing. Reification does not consult it.
	FlagPreserve
)

// Node is a single AST node.
type Node struct {
	kind    Kind
	token   *lexer.Token
	parent  *Node
	child   *Node // first child
	last    *Node // last child, for O(1) append
	sibling *Node // next sibling
	flags   Flags
	data    any   // defining declaration or other pass-owned payload
	typ     *Node // inferred type of an expression node
	scope   *Scope
}

// New creates an empty node of the given kind at the given position.
func New(kind Kind, pos lexer.Position) *Node {
	tok := lexer.Token{Type: kind, Pos: pos}
	return &Node{kind: kind, token: &tok}
}

// NewFromToken creates a leaf node carrying the given token; the node kind is
// the token type.
func NewFromToken(tok lexer.Token) *Node {
	return &Node{kind: tok.Type, token: &tok}
}

// Kind returns the node's kind tag.
func (n *Node) Kind() Kind {
	return n.kind
}

// SetKind retags the node. Used by grammar rules that disambiguate a token
// after the fact (e.g. the COMMA that introduces a tuple becomes TUPLE).
func (n *Node) SetKind(kind Kind) {
	n.kind = kind
	if n.token != nil {
		n.token.Type = kind
	}
}

// Token returns the lexical payload, or nil for abstract nodes created
// without one.
func (n *Node) Token() *lexer.Token {
	return n.token
}

// Name returns the interned name carried by an identifier or string node,
// or nil.
func (n *Node) Name() *string {
	if n.token == nil {
		return nil
	}
	return n.token.Name
}

// Pos returns the node's source position.
func (n *Node) Pos() lexer.Position {
	if n.token == nil {
		return lexer.Position{}
	}
	return n.token.Pos
}

// Parent returns the parent node, or nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Child returns the first child, or nil.
func (n *Node) Child() *Node {
	return n.child
}

// Sibling returns the next sibling, or nil.
func (n *Node) Sibling() *Node {
	return n.sibling
}

// ChildAt returns the i-th child, or nil if there are fewer children.
func (n *Node) ChildAt(i int) *Node {
	c := n.child
	for ; c != nil && i > 0; i-- {
		c = c.sibling
	}
	return c
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.child; c != nil; c = c.sibling {
		count++
	}
	return count
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	child.parent = n
	child.sibling = nil
	if n.last == nil {
		n.child = child
	} else {
		n.last.sibling = child
	}
	n.last = child
}

// PrependChild adds child as the first child of n.
func (n *Node) PrependChild(child *Node) {
	child.parent = n
	child.sibling = n.child
	n.child = child
	if n.last == nil {
		n.last = child
	}
}

// Replace substitutes repl for old in old's parent's child list. old must be
// a child of a parent node.
func Replace(old, repl *Node) {
	p := old.parent
	if p == nil {
		panic("ast: replace of a root node")
	}

	repl.parent = p
	repl.sibling = old.sibling
	if p.child == old {
		p.child = repl
	} else {
		prev := p.child
		for prev.sibling != old {
			prev = prev.sibling
		}
		prev.sibling = repl
	}
	if p.last == old {
		p.last = repl
	}
	old.parent = nil
	old.sibling = nil
}

// Swap exchanges the positions of two children of the same parent.
func Swap(a, b *Node) {
	if a.parent == nil || a.parent != b.parent {
		panic("ast: swap of nodes with different parents")
	}

	p := a.parent
	children := p.Children()
	p.child, p.last = nil, nil
	for _, c := range children {
		switch c {
		case a:
			p.AppendChild(b)
		case b:
			p.AppendChild(a)
		default:
			p.AppendChild(c)
		}
	}
}

// Remove detaches n from its parent's child list.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}

	if p.child == n {
		p.child = n.sibling
	} else {
		prev := p.child
		for prev.sibling != n {
			prev = prev.sibling
		}
		prev.sibling = n.sibling
	}
	if p.last == n {
		p.last = nil
		for c := p.child; c != nil; c = c.sibling {
			p.last = c
		}
	}
	n.parent = nil
	n.sibling = nil
}

// Children returns the children as a slice.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.child; c != nil; c = c.sibling {
		out = append(out, c)
	}
	return out
}

// Reorder rebuilds the child list in the permuted order: the new i-th child
// is the old perm[i]-th child. perm must name every current child exactly
// once.
func (n *Node) Reorder(perm ...int) {
	children := n.Children()
	if len(perm) != len(children) {
		panic("ast: reorder permutation length mismatch")
	}

	n.child, n.last = nil, nil
	for _, idx := range perm {
		c := children[idx]
		c.parent, c.sibling = nil, nil
		n.AppendChild(c)
	}
}

// SetFlag sets the given flag bits.
func (n *Node) SetFlag(f Flags) {
	n.flags |= f
}

// ClearFlag clears the given flag bits.
func (n *Node) ClearFlag(f Flags) {
	n.flags &^= f
}

// HasFlag reports whether all the given flag bits are set.
func (n *Node) HasFlag(f Flags) bool {
	return n.flags&f == f
}

// Data returns the opaque back-reference set by a later pass, typically the
// defining declaration of a name or the canonical type definition.
func (n *Node) Data() any {
	return n.data
}

// SetData attaches the opaque back-reference.
func (n *Node) SetData(data any) {
	n.data = data
}

// DataNode returns Data as a node, or nil when unset.
func (n *Node) DataNode() *Node {
	if d, ok := n.data.(*Node); ok {
		return d
	}
	return nil
}

// Type returns the inferred type subtree attached to an expression node.
func (n *Node) Type() *Node {
	return n.typ
}

// SetType attaches the inferred type subtree.
func (n *Node) SetType(typ *Node) {
	n.typ = typ
}

// Scope returns the symbol table attached to a scope-bearing node.
func (n *Node) Scope() *Scope {
	return n.scope
}

// SetScope attaches a symbol table.
func (n *Node) SetScope(s *Scope) {
	n.scope = s
}

// Dup returns a deep copy of the subtree rooted at n. The copy has no parent
// and no sibling. Flags, Data and Type are carried over; Data and Type still
// reference the original targets (they are non-owning), and scopes are not
// copied.
func (n *Node) Dup() *Node {
	if n == nil {
		return nil
	}

	var tok *lexer.Token
	if n.token != nil {
		t := *n.token
		tok = &t
	}

	dup := &Node{
		kind:  n.kind,
		token: tok,
		flags: n.flags,
		data:  n.data,
		typ:   n.typ,
	}
	for c := n.child; c != nil; c = c.sibling {
		dup.AppendChild(c.Dup())
	}
	return dup
}

// Get resolves name in the nearest enclosing scope, walking parents. Returns
// nil if no scope defines it.
func (n *Node) Get(name *string) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.scope != nil {
			if def := cur.scope.Get(name); def != nil {
				return def
			}
		}
	}
	return nil
}
