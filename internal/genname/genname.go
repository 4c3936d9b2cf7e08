// Package genname derives the deterministic mangled names used as keys by
// the reachability analyzer and as symbol names by the codegen driver. All
// results are interned, so every name comparison downstream is a pointer
// comparison; both consumers must obtain names exclusively through this
// package for that identity to hold.
//
// Capability and ephemerality are deliberately not part of a type's mangled
// name: instances differing only in cap or ephemerality share one reachable
// type entry.
package genname

import (
	"strings"

	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/stringtab"
)

// Type returns the mangled name of a type AST.
func Type(t *ast.Node) *string {
	return stringtab.Intern(typeName(t))
}

func typeName(t *ast.Node) string {
	switch t.Kind() {
	case lexer.NOMINAL:
		var sb strings.Builder
		if pkg := t.ChildAt(0); pkg != nil && pkg.Kind() != lexer.NONE {
			sb.WriteString(pkg.Token().Literal)
			sb.WriteString("_")
		}
		sb.WriteString(t.ChildAt(1).Token().Literal)
		if args := t.ChildAt(2); args != nil && args.Kind() != lexer.NONE {
			for a := args.Child(); a != nil; a = a.Sibling() {
				sb.WriteString("_")
				sb.WriteString(typeName(a))
			}
		}
		return sb.String()

	case lexer.TUPLETYPE:
		return "$tup" + elementNames(t)

	case lexer.UNIONTYPE:
		return "$or" + elementNames(t)

	case lexer.ISECTTYPE:
		return "$and" + elementNames(t)

	case lexer.ARROW:
		return typeName(t.ChildAt(1))

	case lexer.THISTYPE:
		return "$this"
	}

	panic("genname: unexpected type kind " + t.Kind().String())
}

func elementNames(t *ast.Node) string {
	var sb strings.Builder
	for c := t.Child(); c != nil; c = c.Sibling() {
		sb.WriteString("_")
		sb.WriteString(typeName(c))
	}
	return sb.String()
}

// Fun returns the mangled name of a method instantiation: the method name
// alone for non-generic methods, otherwise the name extended with the
// mangled type arguments.
func Fun(name *string, typeargs *ast.Node) *string {
	if typeargs == nil || typeargs.Kind() == lexer.NONE {
		return stringtab.Intern(*name)
	}

	var sb strings.Builder
	sb.WriteString(*name)
	for a := typeargs.Child(); a != nil; a = a.Sibling() {
		sb.WriteString("_")
		sb.WriteString(typeName(a))
	}
	return stringtab.Intern(sb.String())
}

// Trace returns the trace function symbol for a mangled type name.
func Trace(typeName *string) *string {
	return stringtab.Intern(*typeName + "_$trace")
}

// TraceTuple returns the specialized tuple trace symbol for a mangled tuple
// type name.
func TraceTuple(typeName *string) *string {
	return stringtab.Intern(*typeName + "_$trace_tuple")
}
