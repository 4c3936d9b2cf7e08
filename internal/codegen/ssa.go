// Package codegen maps reachable types onto backend struct layouts and
// emits the per-type trace functions that drive the garbage collector's
// traversal. The SSA emission itself lives behind the Builder interface:
// the driver does not depend on a specific IR dialect, any builder
// satisfying these primitives suffices.
package codegen

import "github.com/rovelang/go-rove/internal/ast"

// TypeRef, ValueRef and BlockRef are opaque handles owned by the Builder.
type (
	TypeRef  any
	ValueRef any
	BlockRef any
)

// Builder is the SSA construction contract the driver emits against.
type Builder interface {
	// Types
	StructCreateNamed(name string) TypeRef
	StructSetBody(t TypeRef, fields []TypeRef)
	PointerType(t TypeRef) TypeRef
	IntType(bits int) TypeRef
	FloatType(bits int) TypeRef
	// NamedType returns the named struct previously created with the given
	// name, or nil.
	NamedType(name string) TypeRef

	// Functions and blocks
	AddFunction(name string, params ...string) ValueRef
	// NamedFunction returns the function previously added with the given
	// name, or nil.
	NamedFunction(name string) ValueRef
	Param(fn ValueRef, i int) ValueRef
	AppendBlock(fn ValueRef, name string) BlockRef
	PositionAtEnd(b BlockRef)
	FinishFunction(fn ValueRef) bool

	// Instructions
	BitCast(v ValueRef, t TypeRef, name string) ValueRef
	StructGEP(v ValueRef, i int, name string) ValueRef
	IsNull(v ValueRef, name string) ValueRef
	Br(b BlockRef)
	CondBr(cond ValueRef, then, els BlockRef)
	Call(fn ValueRef, args []ValueRef, name string) ValueRef
	RetVoid()
}

// Context carries the builder plus the handles shared by every emission.
type Context struct {
	B Builder

	voidPtr   TypeRef // i8*
	objectPtr TypeRef // opaque object header pointer

	fn ValueRef // function currently under construction
}

// NewContext prepares a codegen context over the given builder.
func NewContext(b Builder) *Context {
	return &Context{
		B:         b,
		voidPtr:   b.PointerType(b.IntType(8)),
		objectPtr: b.PointerType(b.IntType(8)),
	}
}

// callRuntime calls a runtime hook by name, declaring it on first use.
func (c *Context) callRuntime(name string, args []ValueRef) {
	fn := c.B.NamedFunction(name)
	if fn == nil {
		params := make([]string, len(args))
		for i := range params {
			params[i] = ""
		}
		fn = c.B.AddFunction(name, params...)
	}
	c.B.Call(fn, args, "")
}

// maybeElem returns the element type of a Maybe[T] nominal.
func maybeElem(typ *ast.Node) *ast.Node {
	return typ.ChildAt(2).Child()
}
