package codegen

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/genname"
	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/types"
)

// Runtime trace ABI.
const (
	runtimeTrace           = "rove_trace"
	runtimeTraceTagOrActor = "rove_trace_tag_or_actor"
	runtimeTraceActor      = "rove_trace_actor"
	runtimeTraceKnown      = "rove_trace_known"
	runtimeTraceUnknown    = "rove_trace_unknown"
)

// TraceAsTag reports whether a value of this type is traced as an opaque
// tag: true iff every nominal leaf has the tag capability. Tuples are never
// tags; unions mixing tag and non-tag leaves are traced as unknown objects.
func TraceAsTag(typ *ast.Node) bool {
	switch typ.Kind() {
	case lexer.UNIONTYPE, lexer.ISECTTYPE:
		for c := typ.Child(); c != nil; c = c.Sibling() {
			if !TraceAsTag(c) {
				return false
			}
		}
		return true

	case lexer.TUPLETYPE:
		return false

	case lexer.NOMINAL:
		return types.CapSingle(typ) == lexer.TAG

	case lexer.ARROW:
		return TraceAsTag(typ.ChildAt(1))
	}

	panic("codegen: unexpected type in trace classification " + typ.Kind().String())
}

// Trace emits the runtime trace action for one value of static type typ.
// Returns false when the type needs no tracing.
func Trace(c *Context, ctx, value ValueRef, typ *ast.Node) bool {
	tag := TraceAsTag(typ)

	switch typ.Kind() {
	case lexer.UNIONTYPE, lexer.ISECTTYPE:
		if tag {
			traceTagOrActor(c, ctx, value)
		} else {
			traceUnknown(c, ctx, value)
		}
		return true

	case lexer.TUPLETYPE:
		return traceTuple(c, ctx, value, typ)

	case lexer.NOMINAL:
		def := typ.DataNode()
		if def == nil {
			break
		}
		switch def.Kind() {
		case lexer.INTERFACE, lexer.TRAIT:
			if tag {
				traceTagOrActor(c, ctx, value)
			} else {
				traceUnknown(c, ctx, value)
			}
			return true

		case lexer.PRIMITIVE:
			// Machine words and singleton primitives hold no references.
			return false

		case lexer.STRUCT, lexer.CLASS:
			if tag {
				if types.IsMaybe(typ) {
					traceMaybe(c, ctx, value, typ, true)
				} else {
					traceTag(c, ctx, value)
				}
				return true
			}

			if types.IsMaybe(typ) {
				traceMaybe(c, ctx, value, typ, false)
				return true
			}

			return traceKnown(c, ctx, value, typ)

		case lexer.ACTOR:
			traceActor(c, ctx, value)
			return true
		}

	case lexer.ARROW:
		return Trace(c, ctx, value, typ.ChildAt(1))
	}

	panic("codegen: untraceable type " + ast.Print(typ))
}

func traceTag(c *Context, ctx, value ValueRef) {
	// Pointer-only trace: the referent is opaque.
	cast := c.B.BitCast(value, c.voidPtr, "")
	c.callRuntime(runtimeTrace, []ValueRef{ctx, cast})
}

func traceTagOrActor(c *Context, ctx, value ValueRef) {
	c.callRuntime(runtimeTraceTagOrActor, []ValueRef{ctx, value})
}

func traceActor(c *Context, ctx, value ValueRef) {
	cast := c.B.BitCast(value, c.objectPtr, "")
	c.callRuntime(runtimeTraceActor, []ValueRef{ctx, cast})
}

func traceUnknown(c *Context, ctx, value ValueRef) {
	// Runtime descriptor dispatch.
	c.callRuntime(runtimeTraceUnknown, []ValueRef{ctx, value})
}

// traceKnown traces a statically known class or struct referent: through
// its trace function when it has one, as a bare pointer otherwise.
func traceKnown(c *Context, ctx, value ValueRef, typ *ast.Node) bool {
	if Type(c, typ) == nil {
		return false
	}

	traceName := genname.Trace(genname.Type(typ))
	traceFn := c.B.NamedFunction(*traceName)

	if traceFn != nil {
		cast := c.B.BitCast(value, c.objectPtr, "")
		c.callRuntime(runtimeTraceKnown, []ValueRef{ctx, cast, traceFn})
	} else {
		cast := c.B.BitCast(value, c.voidPtr, "")
		c.callRuntime(runtimeTrace, []ValueRef{ctx, cast})
	}
	return true
}

// traceTuple invokes the tuple's specialized trace function directly; the
// tuple itself is unboxed, so its address is never traced.
func traceTuple(c *Context, ctx, value ValueRef, typ *ast.Node) bool {
	traceName := genname.TraceTuple(genname.Type(typ))
	traceFn := c.B.NamedFunction(*traceName)

	// No trace function means the tuple holds nothing traceable.
	if traceFn == nil {
		return false
	}

	c.B.Call(traceFn, []ValueRef{ctx, value}, "")
	return true
}

// traceMaybe traces a nullable pointer: a null test guards the trace of the
// non-null branch.
func traceMaybe(c *Context, ctx, value ValueRef, typ *ast.Node, tag bool) {
	elem := maybeElem(typ)
	if types.IsMachineWord(elem) {
		return
	}

	test := c.B.IsNull(value, "")
	isFalse := c.B.AppendBlock(c.fn, "")
	isTrue := c.B.AppendBlock(c.fn, "")
	c.B.CondBr(test, isTrue, isFalse)

	c.B.PositionAtEnd(isFalse)
	if tag {
		traceTag(c, ctx, value)
	} else {
		Trace(c, ctx, value, elem)
	}
	c.B.Br(isTrue)
	c.B.PositionAtEnd(isTrue)
}
