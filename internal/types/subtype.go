package types

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/lexer"
)

// IsSubtype reports whether sub is a subtype of super. The relation is
// structural over unions, intersections and tuples, nominal over entity
// definitions (a concrete type provides its traits transitively), and
// includes capability subtyping on nominal leaves.
func IsSubtype(sub, super *ast.Node) bool {
	if sub == nil || super == nil {
		return false
	}

	switch sub.Kind() {
	case lexer.UNIONTYPE:
		// Every variant must be a subtype.
		for c := sub.Child(); c != nil; c = c.Sibling() {
			if !IsSubtype(c, super) {
				return false
			}
		}
		return true

	case lexer.ISECTTYPE:
		// One conjunct suffices.
		for c := sub.Child(); c != nil; c = c.Sibling() {
			if IsSubtype(c, super) {
				return true
			}
		}
		return false

	case lexer.TUPLETYPE:
		return tupleSub(sub, super)

	case lexer.NOMINAL:
		return nominalSub(sub, super)

	case lexer.ARROW:
		return IsSubtype(viewed(sub), super)
	}

	return false
}

// IsEqType reports mutual subtyping.
func IsEqType(a, b *ast.Node) bool {
	return IsSubtype(a, b) && IsSubtype(b, a)
}

func tupleSub(sub, super *ast.Node) bool {
	switch super.Kind() {
	case lexer.UNIONTYPE:
		for c := super.Child(); c != nil; c = c.Sibling() {
			if IsSubtype(sub, c) {
				return true
			}
		}
		return false

	case lexer.ISECTTYPE:
		for c := super.Child(); c != nil; c = c.Sibling() {
			if !IsSubtype(sub, c) {
				return false
			}
		}
		return true

	case lexer.TUPLETYPE:
		a, b := sub.Child(), super.Child()
		for a != nil && b != nil {
			if !IsSubtype(a, b) {
				return false
			}
			a, b = a.Sibling(), b.Sibling()
		}
		return a == nil && b == nil
	}

	return false
}

func nominalSub(sub, super *ast.Node) bool {
	switch super.Kind() {
	case lexer.UNIONTYPE:
		for c := super.Child(); c != nil; c = c.Sibling() {
			if IsSubtype(sub, c) {
				return true
			}
		}
		return false

	case lexer.ISECTTYPE:
		for c := super.Child(); c != nil; c = c.Sibling() {
			if !IsSubtype(sub, c) {
				return false
			}
		}
		return true

	case lexer.ARROW:
		return IsSubtype(sub, viewed(super))

	case lexer.NOMINAL:
		// Fall through to the nominal/nominal rules below.

	default:
		return false
	}

	if !subCapAndEphemeral(sub, super) {
		return false
	}

	subDef, superDef := sub.DataNode(), super.DataNode()
	if subDef == nil || superDef == nil {
		return false
	}

	if subDef == superDef {
		return sameTypeArgs(sub, super)
	}

	// A concrete or trait definition is a subtype of every trait or
	// interface it provides, transitively.
	switch superDef.Kind() {
	case lexer.INTERFACE, lexer.TRAIT:
		return providesType(subDef, super)
	}

	return false
}

// providesType walks def's provides list transitively, looking for a nominal
// that names super's definition with matching type arguments.
func providesType(def, super *ast.Node) bool {
	provides := def.ChildAt(defProvides)
	if provides == nil || provides.Kind() == lexer.NONE {
		return false
	}

	for p := provides.Child(); p != nil; p = p.Sibling() {
		for _, leaf := range typeLeaves(p) {
			leafDef := leaf.DataNode()
			if leafDef == nil {
				continue
			}
			if leafDef == super.DataNode() && sameTypeArgs(leaf, super) {
				return true
			}
			if providesType(leafDef, super) {
				return true
			}
		}
	}
	return false
}

// typeLeaves flattens unions and intersections into their nominal leaves.
func typeLeaves(t *ast.Node) []*ast.Node {
	switch t.Kind() {
	case lexer.UNIONTYPE, lexer.ISECTTYPE:
		var out []*ast.Node
		for c := t.Child(); c != nil; c = c.Sibling() {
			out = append(out, typeLeaves(c)...)
		}
		return out
	case lexer.NOMINAL:
		return []*ast.Node{t}
	}
	return nil
}

// sameTypeArgs compares type argument lists structurally. Generic types are
// invariant in their arguments.
func sameTypeArgs(a, b *ast.Node) bool {
	return structEq(a.ChildAt(nominalTypeArgs), b.ChildAt(nominalTypeArgs))
}

// structEq is structural equality on type subtrees: kind, carried name and
// children, ignoring source positions.
func structEq(a, b *ast.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() || a.Name() != b.Name() {
		return false
	}

	ca, cb := a.Child(), b.Child()
	for ca != nil && cb != nil {
		if !structEq(ca, cb) {
			return false
		}
		ca, cb = ca.Sibling(), cb.Sibling()
	}
	return ca == nil && cb == nil
}

func subCapAndEphemeral(sub, super *ast.Node) bool {
	if !SubCap(CapSingle(sub), CapSingle(super)) {
		return false
	}

	// An ephemeral supertype demands an ephemeral subtype; everything else
	// is compatible. Borrow markers do not affect subtyping.
	if ephOf(super) == lexer.EPHEMERAL {
		return ephOf(sub) == lexer.EPHEMERAL
	}
	return true
}

// viewed lowers a viewpoint type to its right-hand side.
func viewed(arrow *ast.Node) *ast.Node {
	return arrow.ChildAt(1)
}
