package types

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/lexer"
)

// IsLiteral reports whether t is a nominal type with the given well-known
// name. Recognition is by name: the builtin package owns these definitions.
func IsLiteral(t *ast.Node, name string) bool {
	if t == nil || t.Kind() != lexer.NOMINAL {
		return false
	}
	id := t.ChildAt(nominalID)
	return id != nil && id.Name() != nil && *id.Name() == name
}

func nominalName(t *ast.Node) string {
	if t == nil || t.Kind() != lexer.NOMINAL {
		return ""
	}
	id := t.ChildAt(nominalID)
	if id == nil || id.Name() == nil {
		return ""
	}
	return *id.Name()
}

// IsBool reports whether t is the builtin Bool.
func IsBool(t *ast.Node) bool {
	return IsLiteral(t, "Bool")
}

// IsInteger reports whether t is a builtin integer type.
func IsInteger(t *ast.Node) bool {
	switch nominalName(t) {
	case "I8", "I16", "I32", "I64", "I128",
		"U8", "U16", "U32", "U64", "U128",
		"ISize", "USize":
		return true
	}
	return false
}

// IsSigned reports whether t is a builtin signed integer type.
func IsSigned(t *ast.Node) bool {
	switch nominalName(t) {
	case "I8", "I16", "I32", "I64", "I128", "ISize":
		return true
	}
	return false
}

// IsFloat reports whether t is a builtin floating point type.
func IsFloat(t *ast.Node) bool {
	switch nominalName(t) {
	case "F16", "F32", "F64":
		return true
	}
	return false
}

// IsMachineWord reports whether t lowers to a raw machine word: bool,
// integer or float. Machine-word fields are never traced.
func IsMachineWord(t *ast.Node) bool {
	return IsBool(t) || IsInteger(t) || IsFloat(t)
}

// IsMaybe reports whether t is the builtin nullable pointer wrapper.
func IsMaybe(t *ast.Node) bool {
	return IsLiteral(t, "Maybe")
}

// IsPointer reports whether t is the builtin raw pointer.
func IsPointer(t *ast.Node) bool {
	return IsLiteral(t, "Pointer")
}

// IsNone reports whether t is the builtin None.
func IsNone(t *ast.Node) bool {
	return IsLiteral(t, "None")
}

// IsEnv reports whether t is the builtin Env.
func IsEnv(t *ast.Node) bool {
	return IsLiteral(t, "Env")
}

// IsConcrete reports whether t's definition is instantiable: a primitive,
// struct, class or actor.
func IsConcrete(t *ast.Node) bool {
	if t == nil || t.Kind() != lexer.NOMINAL {
		return false
	}
	def := t.DataNode()
	if def == nil {
		return false
	}
	switch def.Kind() {
	case lexer.PRIMITIVE, lexer.STRUCT, lexer.CLASS, lexer.ACTOR:
		return true
	}
	return false
}

// IsKnown reports whether t's runtime representation is known statically,
// i.e. its referent is not an interface or trait.
func IsKnown(t *ast.Node) bool {
	if t == nil || t.Kind() != lexer.NOMINAL {
		return false
	}
	def := t.DataNode()
	if def == nil {
		return false
	}
	switch def.Kind() {
	case lexer.INTERFACE, lexer.TRAIT:
		return false
	}
	return true
}

// IsEntity reports whether t's definition has the given entity kind.
func IsEntity(t *ast.Node, kind ast.Kind) bool {
	if t == nil || t.Kind() != lexer.NOMINAL {
		return false
	}
	def := t.DataNode()
	return def != nil && def.Kind() == kind
}
