package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/parser"
	"github.com/rovelang/go-rove/internal/reach"
	"github.com/rovelang/go-rove/internal/semantic"
)

const prelude = `primitive None
primitive Bool
primitive U64
primitive F64
class String
  new create()
class OutStream
  fun print(s: String): None
class Env
  let out: OutStream
class Maybe[A]
  var v: A
`

func compile(t *testing.T, source string) *ast.Node {
	t.Helper()

	full := prelude + source
	module, diags := parser.Parse("test.rove", full)
	require.NotNil(t, module)
	require.False(t, diags.HasErrors(), "parse errors: %v", diags.All())

	semantic.Analyze(module, diags, full, "test.rove")
	require.False(t, diags.HasErrors(), "semantic errors: %v", diags.All())
	return module
}

func lower(t *testing.T, module *ast.Node, name string) (*fakeBuilder, *Context) {
	t.Helper()

	b := newFakeBuilder()
	c := NewContext(b)
	require.NotNil(t, Type(c, semantic.BuiltinType(module, name)), "lowering %s failed", name)
	return b, c
}

func traceOf(t *testing.T, b *fakeBuilder, name string) *fakeFunc {
	t.Helper()
	fn := b.funcs[name+"_$trace"]
	require.NotNil(t, fn, "no trace function for %s", name)
	return fn
}

func TestBuiltinShortcuts(t *testing.T) {
	module := compile(t, "")
	b := newFakeBuilder()
	c := NewContext(b)

	assert.Same(t, b.IntType(1), Type(c, semantic.BuiltinType(module, "Bool")))
	assert.Same(t, b.IntType(64), Type(c, semantic.BuiltinType(module, "U64")))
	assert.Same(t, b.FloatType(64), Type(c, semantic.BuiltinType(module, "F64")))

	// No aggregate is built for a machine word.
	assert.NotContains(t, b.structs, "U64")
}

func TestMachineWordFieldsTraceNothing(t *testing.T) {
	module := compile(t, `class Point
  var x: U64
  var y: F64
  var flag: Bool
`)
	b, _ := lower(t, module, "Point")

	s := b.structs["Point"]
	require.NotNil(t, s)
	require.Len(t, s.fields, 3, "field layout in declaration order")
	assert.Equal(t, b.IntType(64), s.fields[0])
	assert.Equal(t, b.FloatType(64), s.fields[1])
	assert.Equal(t, b.IntType(1), s.fields[2])

	// The trace function exists but calls no runtime hook.
	assert.Empty(t, traceOf(t, b, "Point").calls())
}

func TestTagFieldTracesPointerOnly(t *testing.T) {
	module := compile(t, `class Opaque
  var n: U64
class Holder
  var o: Opaque tag
`)
	b, _ := lower(t, module, "Holder")
	assert.Equal(t, []string{runtimeTrace}, traceOf(t, b, "Holder").calls())
}

func TestActorFieldTracesActor(t *testing.T) {
	module := compile(t, `actor Worker
class Holder
  var w: Worker ref
`)
	b, _ := lower(t, module, "Holder")
	assert.Equal(t, []string{runtimeTraceActor}, traceOf(t, b, "Holder").calls())
}

func TestKnownClassFieldTracesKnown(t *testing.T) {
	module := compile(t, `class Inner
  var n: U64
class Outer
  var i: Inner
`)
	b, _ := lower(t, module, "Outer")

	calls := traceOf(t, b, "Outer").calls()
	require.Len(t, calls, 1)
	assert.Equal(t, runtimeTraceKnown, calls[0])

	// The referent's own trace function was emitted and is what gets passed.
	assert.Contains(t, b.funcs, "Inner_$trace")
}

func TestTraitFieldTracesUnknown(t *testing.T) {
	module := compile(t, `trait Shape
  fun area(): U64
class Holder
  var s: Shape
  var st: Shape tag
`)
	b, _ := lower(t, module, "Holder")
	assert.Equal(t, []string{runtimeTraceUnknown, runtimeTraceTagOrActor},
		traceOf(t, b, "Holder").calls())
}

func TestUnionFieldTraceClassification(t *testing.T) {
	module := compile(t, `class A
  var n: U64
class B
  var n: U64
class AllTags
  var u: (A tag | B tag)
class Mixed
  var u: (A tag | B)
`)
	b, _ := lower(t, module, "AllTags")
	assert.Equal(t, []string{runtimeTraceTagOrActor}, traceOf(t, b, "AllTags").calls())

	b2, _ := lower(t, module, "Mixed")
	assert.Equal(t, []string{runtimeTraceUnknown}, traceOf(t, b2, "Mixed").calls())
}

func TestMaybeEmitsNullTest(t *testing.T) {
	module := compile(t, `class Target
  var n: U64
class Holder
  var m: Maybe[Target]
`)
	b, _ := lower(t, module, "Holder")

	fn := traceOf(t, b, "Holder")
	ops := fn.ops

	// A null test and branch guard the recursion into the element.
	var idxNull, idxCond, idxKnown, idxBr = -1, -1, -1, -1
	for i, op := range ops {
		switch op {
		case "isnull":
			idxNull = i
		case "condbr":
			idxCond = i
		case "call " + runtimeTraceKnown:
			idxKnown = i
		case "br":
			idxBr = i
		}
	}
	require.GreaterOrEqual(t, idxNull, 0, "missing null test: %v", ops)
	require.GreaterOrEqual(t, idxCond, 0)
	require.GreaterOrEqual(t, idxKnown, 0, "non-null branch must trace the element: %v", ops)
	require.GreaterOrEqual(t, idxBr, 0)
	assert.Less(t, idxNull, idxCond)
	assert.Less(t, idxCond, idxKnown)
	assert.Less(t, idxKnown, idxBr)
}

func TestMaybeOfMachineWordTracesNothing(t *testing.T) {
	module := compile(t, `class Holder
  var m: Maybe[U64]
`)
	b, _ := lower(t, module, "Holder")
	assert.Empty(t, traceOf(t, b, "Holder").calls())
}

func TestPrimitiveHasNoTrace(t *testing.T) {
	module := compile(t, "")
	b := newFakeBuilder()
	c := NewContext(b)

	require.NotNil(t, Type(c, semantic.BuiltinType(module, "None")))
	assert.Contains(t, b.structs, "None", "a singleton primitive still gets an empty aggregate")
	assert.Empty(t, b.structs["None"].fields)
	assert.NotContains(t, b.funcs, "None_$trace", "no trace function for a primitive")
}

func TestSelfReferentialClass(t *testing.T) {
	module := compile(t, `class Node
  var next: Node
`)
	b, _ := lower(t, module, "Node")

	s := b.structs["Node"]
	require.NotNil(t, s)
	require.Len(t, s.fields, 1)
	ptr, ok := s.fields[0].(*fakePtr)
	require.True(t, ok, "self reference must lower to a pointer")
	assert.Same(t, s, ptr.elem)

	// The trace function passes itself for the recursive field.
	assert.Equal(t, []string{runtimeTraceKnown}, traceOf(t, b, "Node").calls())
}

func TestGenericReifiedLayout(t *testing.T) {
	module := compile(t, `class Target
  var n: U64
class Holder
  var m: Maybe[Target]
`)
	b, _ := lower(t, module, "Holder")

	// Maybe[Target]'s layout reifies the field v: A to Target.
	s := b.structs["Maybe_Target"]
	require.NotNil(t, s, "generic instantiation must be laid out under its mangled name")
	require.Len(t, s.fields, 1)
	ptr, ok := s.fields[0].(*fakePtr)
	require.True(t, ok)
	assert.Same(t, b.structs["Target"], ptr.elem)
}

func TestEmitWholeProgram(t *testing.T) {
	module := compile(t, `actor Main
  new create(env: Env) =>
    env.out.print("hi")
`)

	r := reach.New(module)
	defer r.Free()
	r.Primitives()
	r.Reach(semantic.BuiltinType(module, "Main"), "create", nil)

	b := newFakeBuilder()
	c := NewContext(b)
	assert.True(t, Emit(c, r))

	for _, name := range []string{"Main", "Env", "OutStream", "String"} {
		assert.Contains(t, b.structs, name, "reachable concrete type must be laid out")
	}
	// Env's only field is an OutStream reference.
	require.Len(t, b.structs["Env"].fields, 1)
	assert.Equal(t, []string{runtimeTraceKnown}, traceOf(t, b, "Env").calls())
}
