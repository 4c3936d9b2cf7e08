package codegen

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/genname"
	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/reach"
	"github.com/rovelang/go-rove/internal/types"
)

// Emit lowers every reachable type with a concrete nominal definition. The
// reachability set is closed, so anything a layout refers to is itself in
// the set.
func Emit(c *Context, r *reach.Types) bool {
	ok := true
	r.Each(func(t *reach.Type) {
		if t.AST.Kind() != lexer.NOMINAL {
			return
		}
		def := t.AST.DataNode()
		if def == nil {
			return
		}
		switch def.Kind() {
		case lexer.CLASS, lexer.ACTOR, lexer.STRUCT:
			if Type(c, t.AST) == nil {
				ok = false
			}
		}
	})
	return ok
}

// Type lowers a type AST to a backend type. Builtin numeric nominals
// short-circuit to primitive types; concrete nominals build their named
// aggregate on first use. Returns nil when the type cannot be lowered; the
// caller treats that as fail-fast.
func Type(c *Context, typ *ast.Node) TypeRef {
	switch typ.Kind() {
	case lexer.UNIONTYPE:
		return unionType(c, typ)

	case lexer.ISECTTYPE, lexer.TUPLETYPE:
		// Unboxed aggregate lowering is not implemented; values of these
		// types live behind object pointers.
		return c.objectPtr

	case lexer.NOMINAL:
		return nominalType(c, typ)

	case lexer.ARROW:
		return Type(c, typ.ChildAt(1))
	}

	panic("codegen: unexpected type kind " + typ.Kind().String())
}

func unionType(c *Context, typ *ast.Node) TypeRef {
	i1 := c.B.IntType(1)
	allBool := true

	for child := typ.Child(); child != nil; child = child.Sibling() {
		t := Type(c, child)
		if t == nil {
			return nil
		}
		if t != i1 {
			allBool = false
		}
	}

	// A union of machine booleans is itself a machine boolean.
	if allBool {
		return i1
	}
	return c.objectPtr
}

func nominalType(c *Context, typ *ast.Node) TypeRef {
	// Builtin machine words lower directly.
	switch nominalName(typ) {
	case "Bool", "True", "False":
		return c.B.IntType(1)
	case "I8", "U8":
		return c.B.IntType(8)
	case "I16", "U16":
		return c.B.IntType(16)
	case "I32", "U32":
		return c.B.IntType(32)
	case "I64", "U64", "ISize", "USize":
		return c.B.IntType(64)
	case "I128", "U128":
		return c.B.IntType(128)
	case "F16":
		return c.B.FloatType(16)
	case "F32":
		return c.B.FloatType(32)
	case "F64":
		return c.B.FloatType(64)
	}

	name := genname.Type(typ)
	if existing := c.B.NamedType(*name); existing != nil {
		return c.B.PointerType(existing)
	}

	def := typ.DataNode()
	if def == nil {
		return nil
	}

	var t TypeRef
	switch def.Kind() {
	case lexer.INTERFACE, lexer.TRAIT:
		// Traits have no layout of their own; values are object pointers.
		return c.objectPtr

	case lexer.PRIMITIVE:
		// A non-machine-word primitive is an empty aggregate with no trace
		// function.
		t = c.B.StructCreateNamed(*name)
		c.B.StructSetBody(t, nil)

	case lexer.CLASS, lexer.STRUCT, lexer.ACTOR:
		t = codegenStruct(c, name, def, typ.ChildAt(2))

	default:
		panic("codegen: unexpected definition kind " + def.Kind().String())
	}

	if t == nil {
		return nil
	}
	return c.B.PointerType(t)
}

func nominalName(typ *ast.Node) string {
	id := typ.ChildAt(1)
	if id == nil || id.Token() == nil {
		return ""
	}
	return id.Token().Literal
}

// codegenStruct builds the named aggregate of the reified field layout in
// declaration order and emits the type's trace function. Returns nil on the
// first field whose type cannot be lowered.
func codegenStruct(c *Context, name *string, def, typeargs *ast.Node) TypeRef {
	t := c.B.StructCreateNamed(*name)

	typeparams := def.ChildAt(1)
	members := def.ChildAt(4)

	var fields []TypeRef
	var ftypes []*ast.Node

	if members != nil && members.Kind() == lexer.MEMBERS {
		for m := members.Child(); m != nil; m = m.Sibling() {
			switch m.Kind() {
			case lexer.FVAR, lexer.FLET, lexer.EMBED:
				ftype := types.Reify(m.ChildAt(1), typeparams, typeargs)
				ltype := Type(c, ftype)
				if ltype == nil {
					return nil
				}
				fields = append(fields, ltype)
				ftypes = append(ftypes, ftype)
			}
		}
	}

	c.B.StructSetBody(t, fields)
	ptr := c.B.PointerType(t)

	emitTrace(c, name, ptr, ftypes)
	return t
}

// emitTrace builds the type's $trace function: (ctx, opaque object) -> void,
// tracing each field per its static type.
func emitTrace(c *Context, name *string, ptrType TypeRef, ftypes []*ast.Node) {
	traceName := genname.Trace(name)
	fn := c.B.AddFunction(*traceName, "ctx", "arg")

	prevFn := c.fn
	c.fn = fn
	defer func() { c.fn = prevFn }()

	block := c.B.AppendBlock(fn, "entry")
	c.B.PositionAtEnd(block)

	ctx := c.B.Param(fn, 0)
	object := c.B.BitCast(c.B.Param(fn, 1), ptrType, "object")

	for i, ftype := range ftypes {
		field := c.B.StructGEP(object, i, "")
		Trace(c, ctx, field, ftype)
	}

	c.B.RetVoid()
	c.B.FinishFunction(fn)
}
