// Package types provides structural queries over type AST nodes: the
// capability lattice, the subtype relation, well-known-type recognizers and
// member lookup. All functions are pure; they read the Data back-links set
// by the name-binding pass and never mutate the tree they are given.
package types

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/lexer"
)

// Nominal type child positions: package, id, typeargs, cap, ephemerality.
const (
	nominalPkg = iota
	nominalID
	nominalTypeArgs
	nominalCap
	nominalEph
)

// Entity definition child positions: id, typeparams, cap, provides, members.
const (
	defID = iota
	defTypeParams
	defCap
	defProvides
	defMembers
)

// CapSingle returns the effective capability of a nominal type: the explicit
// annotation if present, otherwise the definition's default, otherwise the
// conventional default for the entity kind (val for primitives, tag for
// actors, ref for everything else).
func CapSingle(t *ast.Node) ast.Kind {
	if t.Kind() != lexer.NOMINAL {
		return lexer.NONE
	}

	if c := t.ChildAt(nominalCap); c != nil && c.Kind() != lexer.NONE {
		return c.Kind()
	}

	def := t.DataNode()
	if def == nil {
		return lexer.REF
	}
	if c := def.ChildAt(defCap); c != nil && c.Kind() != lexer.NONE {
		return c.Kind()
	}

	switch def.Kind() {
	case lexer.PRIMITIVE:
		return lexer.VAL
	case lexer.ACTOR:
		return lexer.TAG
	}
	return lexer.REF
}

// ephOf returns the ephemerality marker of a nominal type, NONE when absent.
func ephOf(t *ast.Node) ast.Kind {
	if e := t.ChildAt(nominalEph); e != nil {
		return e.Kind()
	}
	return lexer.NONE
}

// SubCap reports sub <: super on the capability lattice, including the
// generic caps #read, #send, #share and #any as supertypes of their members.
func SubCap(sub, super ast.Kind) bool {
	if sub == super {
		return true
	}

	switch super {
	case lexer.CAP_READ:
		return sub == lexer.REF || sub == lexer.VAL || sub == lexer.BOX
	case lexer.CAP_SEND:
		return sub == lexer.ISO || sub == lexer.VAL || sub == lexer.TAG
	case lexer.CAP_SHARE:
		return sub == lexer.VAL || sub == lexer.TAG
	case lexer.CAP_ANY:
		return true
	}

	switch sub {
	case lexer.ISO:
		return true // iso is the bottom of the lattice
	case lexer.TRN:
		return super == lexer.REF || super == lexer.VAL ||
			super == lexer.BOX || super == lexer.TAG
	case lexer.REF, lexer.VAL:
		return super == lexer.BOX || super == lexer.TAG
	case lexer.BOX:
		return super == lexer.TAG
	}
	return false
}

// ViewCap composes capabilities for viewpoint adaptation: the capability
// seen when reading a field of capability field through a reference of
// capability origin.
func ViewCap(origin, field ast.Kind) ast.Kind {
	switch origin {
	case lexer.ISO:
		switch field {
		case lexer.ISO:
			return lexer.ISO
		case lexer.VAL:
			return lexer.VAL
		default:
			return lexer.TAG
		}
	case lexer.TRN:
		switch field {
		case lexer.ISO:
			return lexer.ISO
		case lexer.TRN:
			return lexer.TRN
		case lexer.VAL:
			return lexer.VAL
		case lexer.TAG:
			return lexer.TAG
		default:
			return lexer.BOX
		}
	case lexer.REF:
		return field
	case lexer.VAL:
		if field == lexer.TAG {
			return lexer.TAG
		}
		return lexer.VAL
	case lexer.BOX:
		switch field {
		case lexer.ISO, lexer.TAG:
			return lexer.TAG
		case lexer.VAL:
			return lexer.VAL
		default:
			return lexer.BOX
		}
	case lexer.TAG:
		return lexer.TAG
	}
	return lexer.NONE
}

// SetCapAndEphemeral returns a copy of t with every nominal leaf's
// capability and ephemerality replaced. Pass NONE to strip a marker. The
// reachability analyzer uses this to canonicalize interned types so that
// instances differing only in cap or ephemerality share one entry.
func SetCapAndEphemeral(t *ast.Node, cap, eph ast.Kind) *ast.Node {
	dup := t.Dup()
	setCapEph(dup, cap, eph)
	return dup
}

func setCapEph(t *ast.Node, cap, eph ast.Kind) {
	switch t.Kind() {
	case lexer.NOMINAL:
		t.ChildAt(nominalCap).SetKind(cap)
		t.ChildAt(nominalEph).SetKind(eph)
	case lexer.UNIONTYPE, lexer.ISECTTYPE, lexer.TUPLETYPE:
		for c := t.Child(); c != nil; c = c.Sibling() {
			setCapEph(c, cap, eph)
		}
	}
}
