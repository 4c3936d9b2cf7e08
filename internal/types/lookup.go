package types

import (
	"fmt"

	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/lexer"
)

// Member definition child positions. Fields are (id, type, value, delegate);
// methods are (cap, id, typeparams, params, result, error, body, docstring).
const (
	fieldID = iota
	fieldType
)

const (
	methodCap = iota
	methodID
	methodTypeParams
	methodParams
	methodResult
	methodError
	methodBody
)

// LookupTry resolves a member name on a type, returning the field or method
// definition AST, or nil when the type has no such member. For a union the
// member must exist on every variant (the first variant's definition is
// returned); for an intersection any conjunct may supply it. Trait members
// are found transitively through provides lists.
func LookupTry(t *ast.Node, name *string) *ast.Node {
	if t == nil {
		return nil
	}

	switch t.Kind() {
	case lexer.NOMINAL:
		def := t.DataNode()
		if def == nil {
			return nil
		}
		return lookupDef(def, name)

	case lexer.UNIONTYPE:
		var found *ast.Node
		for c := t.Child(); c != nil; c = c.Sibling() {
			m := LookupTry(c, name)
			if m == nil {
				return nil
			}
			if found == nil {
				found = m
			}
		}
		return found

	case lexer.ISECTTYPE:
		for c := t.Child(); c != nil; c = c.Sibling() {
			if m := LookupTry(c, name); m != nil {
				return m
			}
		}
		return nil

	case lexer.ARROW:
		return LookupTry(viewed(t), name)
	}

	return nil
}

// Lookup is LookupTry for callers that require the member to exist; a
// missing member is a compiler bug at this stage.
func Lookup(t *ast.Node, name *string) *ast.Node {
	m := LookupTry(t, name)
	if m == nil {
		panic(fmt.Sprintf("types: no member %q on %s", deref(name), ast.Print(t)))
	}
	return m
}

func deref(name *string) string {
	if name == nil {
		return "<nil>"
	}
	return *name
}

// lookupDef scans an entity definition's member list, then its provided
// traits.
func lookupDef(def *ast.Node, name *string) *ast.Node {
	members := def.ChildAt(defMembers)
	if members != nil && members.Kind() == lexer.MEMBERS {
		for m := members.Child(); m != nil; m = m.Sibling() {
			if memberName(m) == name {
				return m
			}
		}
	}

	provides := def.ChildAt(defProvides)
	if provides == nil || provides.Kind() == lexer.NONE {
		return nil
	}
	for p := provides.Child(); p != nil; p = p.Sibling() {
		for _, leaf := range typeLeaves(p) {
			if leafDef := leaf.DataNode(); leafDef != nil {
				if m := lookupDef(leafDef, name); m != nil {
					return m
				}
			}
		}
	}
	return nil
}

// memberName returns the interned name of a field or method definition.
func memberName(m *ast.Node) *string {
	switch m.Kind() {
	case lexer.FVAR, lexer.FLET, lexer.EMBED:
		return m.ChildAt(fieldID).Name()
	case lexer.FUN, lexer.BE, lexer.NEW:
		return m.ChildAt(methodID).Name()
	}
	return nil
}
