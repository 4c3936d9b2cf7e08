package reach

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/parser"
	"github.com/rovelang/go-rove/internal/semantic"
	"github.com/rovelang/go-rove/internal/types"
)

const prelude = `primitive None
primitive Bool
  new create()
primitive U8
primitive U32
  new create()
primitive U64
  new create()
  fun eq(o: U64): Bool
primitive I32
primitive F64
  new create()
primitive USize
class String
  new create()
class OutStream
  fun print(s: String): None
class Env
  let out: OutStream
class Pointer[A]
`

// compile parses and analyzes a program on top of the test prelude.
func compile(t *testing.T, source string) *ast.Node {
	t.Helper()
	return compileFull(t, prelude+source)
}

// compileFull parses and analyzes a complete program.
func compileFull(t *testing.T, full string) *ast.Node {
	t.Helper()

	module, diags := parser.Parse("test.rove", full)
	require.NotNil(t, module, "parse returned no module")
	require.False(t, diags.HasErrors(), "parse errors: %v", diags.All())

	semantic.Analyze(module, diags, full, "test.rove")
	require.False(t, diags.HasErrors(), "semantic errors: %v", diags.All())
	return module
}

// reachMain runs the standard root set: builtin primitives plus the entry
// actor's constructor.
func reachMain(t *testing.T, module *ast.Node) *Types {
	t.Helper()

	r := New(module)
	r.Primitives()
	r.Reach(semantic.BuiltinType(module, "Main"), "create", nil)
	return r
}

func TestPrimitivesReachable(t *testing.T) {
	module := compile(t, "")
	r := New(module)
	r.Primitives()

	for _, name := range []string{"Bool", "U8", "U32", "U64", "F64", "None"} {
		assert.NotNil(t, r.Lookup(name), "%s must be reachable after Primitives", name)
	}
	assert.Nil(t, r.Lookup("String"), "String is not a root primitive")
}

func TestHelloWorldReachability(t *testing.T) {
	module := compile(t, `actor Main
  new create(env: Env) =>
    env.out.print("hi")
`)
	r := reachMain(t, module)

	for _, name := range []string{"Main", "Env", "OutStream", "String"} {
		require.NotNil(t, r.Lookup(name), "%s must be reachable", name)
	}

	assert.NotNil(t, r.Lookup("Main").Method("create"))
	assert.NotNil(t, r.Lookup("Env").Method("out"), "field access must reach Env.out")
	assert.NotNil(t, r.Lookup("OutStream").Method("print"))
	assert.NotNil(t, r.Lookup("String").Method("create"), "string literal must reach String.create")
}

func TestClosureOverCalls(t *testing.T) {
	module := compile(t, `class Gadget
  fun bar(): None
class Widget
  fun foo(g: Gadget): None => g.bar()
actor Main
  new create(env: Env, w: Widget, g: Gadget) => w.foo(g)
`)
	r := reachMain(t, module)

	// Every method called by a reachable method's body is reachable.
	require.NotNil(t, r.Lookup("Widget"))
	require.NotNil(t, r.Lookup("Gadget"))
	assert.NotNil(t, r.Lookup("Widget").Method("foo"))
	assert.NotNil(t, r.Lookup("Gadget").Method("bar"))
}

func TestTraitPropagation(t *testing.T) {
	module := compile(t, `trait Hashable
  fun hash(): U64
class Key is Hashable
  fun hash(): U64 => 0
class Value
class HashMap[A, B]
  fun size(): U64 => 0
actor Main
  new create(env: Env, h: Hashable, m: HashMap[Key, Value]) =>
    h.hash()
    m.size()
`)
	r := reachMain(t, module)

	hashable := r.Lookup("Hashable")
	key := r.Lookup("Key")
	require.NotNil(t, hashable)
	require.NotNil(t, key, "Key must be reachable through HashMap's type arguments")

	// Key.hash is reachable purely through trait-to-subtype propagation.
	assert.NotNil(t, key.Method("hash"))

	// Cross-linking is symmetric.
	assert.Contains(t, hashable.Subtypes, key.Name)
	assert.Contains(t, key.Subtypes, hashable.Name)

	// methods(trait) ⊆ methods(concrete subtype), as (name, typeargs) sets.
	for name, mn := range hashable.Methods {
		onKey := key.Methods[name]
		require.NotNil(t, onKey, "method %s missing on Key", *name)
		for inst := range mn.Methods {
			assert.Contains(t, onKey.Methods, inst)
		}
	}
}

func TestTraitPropagationEitherOrder(t *testing.T) {
	// The concrete type becomes reachable before the trait here: size() runs
	// first and drags Key in through the type arguments, hash() reaches the
	// trait afterwards.
	module := compile(t, `trait Hashable
  fun hash(): U64
class Key is Hashable
  fun hash(): U64 => 0
class HashMap[A]
  fun size(): U64 => 0
actor Main
  new create(env: Env, h: Hashable, m: HashMap[Key]) =>
    m.size()
    h.hash()
`)
	r := reachMain(t, module)

	key := r.Lookup("Key")
	require.NotNil(t, key)
	assert.NotNil(t, key.Method("hash"),
		"propagation must run whichever side becomes reachable first")
}

func TestIfReachesBothBranches(t *testing.T) {
	module := compile(t, `actor Main
  new create(env: Env) =>
    if true then 1 else "x" end
`)
	r := reachMain(t, module)

	assert.NotNil(t, r.Lookup("U64").Method("create"))
	assert.NotNil(t, r.Lookup("String").Method("create"))
	assert.NotNil(t, r.Lookup("Bool").Method("create"))
}

func TestCanonicalCapabilities(t *testing.T) {
	module := compile(t, `class Counter
  fun poke(): None
actor Main
  new create(env: Env, a: Counter ref, b: Counter val, c: Counter iso, d: Counter^) =>
    a.poke()
    b.poke()
    c.poke()
    d.poke()
`)
	r := reachMain(t, module)

	count := 0
	r.Each(func(rt *Type) {
		if rt.AST.Kind() == lexer.NOMINAL && *rt.AST.ChildAt(1).Name() == "Counter" {
			count++
		}
	})
	assert.Equal(t, 1, count, "cap/ephemerality variants must share one entry")

	counter := r.Lookup("Counter")
	require.NotNil(t, counter)
	assert.Equal(t, lexer.REF, types.CapSingle(counter.AST), "canonical capability is ref")
	assert.Equal(t, 1, MethodCount(counter))
}

func TestFFIDeclarationWins(t *testing.T) {
	// use directives come before the type declarations, so this one goes
	// ahead of the prelude.
	module := compileFull(t, "use @write[I32](fd: I32, buf: Pointer[U8], len: USize)\n"+prelude+`actor Main
  new create(env: Env) => @write[F64](1, 2, 3)
`)

	r := New(module)
	r.Reach(semantic.BuiltinType(module, "Main"), "create", nil)

	// The declaration's signature is what becomes reachable.
	assert.NotNil(t, r.Lookup("I32"), "declared return type must be reachable")
	assert.NotNil(t, r.Lookup("Pointer_U8"), "declared parameter types must be reachable")
	assert.NotNil(t, r.Lookup("USize"))
	assert.Nil(t, r.Lookup("F64"), "call-site annotation must not win over the declaration")
}

func TestFFIWithoutDeclaration(t *testing.T) {
	module := compile(t, `actor Main
  new create(env: Env) => @getpid[I32]()
`)
	r := New(module)
	r.Reach(semantic.BuiltinType(module, "Main"), "create", nil)

	assert.NotNil(t, r.Lookup("I32"), "without a declaration the call-site type is used")
}

func TestCasePatterns(t *testing.T) {
	module := compile(t, `actor Main
  new create(env: Env, x: U64) =>
    match x
    | 7 => true
    | let n: U64 => false
    end
`)
	r := reachMain(t, module)

	// A literal pattern reaches eq on its type; a binding pattern reaches
	// the declared type.
	u64 := r.Lookup("U64")
	require.NotNil(t, u64)
	assert.NotNil(t, u64.Method("eq"))
}

func TestGenericMethodReified(t *testing.T) {
	module := compile(t, `class Cell
  fun put[A](x: A): None
actor Main
  new create(env: Env, c: Cell) => c.put[U32](1)
`)
	r := reachMain(t, module)

	cell := r.Lookup("Cell")
	require.NotNil(t, cell)
	put := cell.Method("put")
	require.NotNil(t, put)

	var inst *Method
	for _, m := range put.Methods {
		inst = m
	}
	require.NotNil(t, inst)
	assert.Equal(t, "put_U32", *inst.Name, "instantiation key is the mangled name")

	// The stored function is reified: its parameter type is U32, not A.
	param := inst.Fun.ChildAt(3).Child()
	require.Equal(t, lexer.PARAM, param.Kind())
	assert.Equal(t, "U32", *param.ChildAt(1).ChildAt(1).Name())
	assert.Equal(t, -1, inst.VTableIndex, "vtable index starts as a placeholder")
}

func TestSpecialHooks(t *testing.T) {
	module := compile(t, `primitive Settings
  fun go(): None
  fun _init(): None
  fun _final(): None
actor Main
  new create(env: Env, s: Settings) => s.go()
`)
	r := reachMain(t, module)

	settings := r.Lookup("Settings")
	require.NotNil(t, settings)
	assert.NotNil(t, settings.Method("_init"))
	assert.NotNil(t, settings.Method("_final"))

	// Main defines no hooks, so none are added.
	assert.Nil(t, r.Lookup("Main").Method("_final"))
}

func TestRecursionTerminates(t *testing.T) {
	module := compile(t, `class Looper
  fun spin(): None => this.spin()
actor Main
  new create(env: Env, l: Looper) => l.spin()
`)
	r := reachMain(t, module)

	looper := r.Lookup("Looper")
	require.NotNil(t, looper)
	assert.Equal(t, 1, MethodCount(looper), "recursion must not duplicate instantiations")
}

func TestAddressOfFunction(t *testing.T) {
	module := compile(t, `class Callback
  fun invoke(): None
actor Main
  new create(env: Env, cb: Callback) => &cb.invoke
`)
	r := reachMain(t, module)

	cb := r.Lookup("Callback")
	require.NotNil(t, cb, "address-of must reach the referenced method's type")
	assert.NotNil(t, cb.Method("invoke"), "address-of must reach the method for runtime callbacks")
}

func TestUnionReceiver(t *testing.T) {
	module := compile(t, `class Cat
  fun speak(): None
class Dog
  fun speak(): None
actor Main
  new create(env: Env, pet: (Cat | Dog)) => pet.speak()
`)
	r := reachMain(t, module)

	require.NotNil(t, r.Lookup("Cat"))
	require.NotNil(t, r.Lookup("Dog"))
	assert.NotNil(t, r.Lookup("Cat").Method("speak"))
	assert.NotNil(t, r.Lookup("Dog").Method("speak"))
}

func TestDumpAndFree(t *testing.T) {
	module := compile(t, `actor Main
  new create(env: Env) => 1
`)
	r := reachMain(t, module)

	var buf bytes.Buffer
	r.Dump(&buf)
	assert.Contains(t, buf.String(), "REACH")
	assert.Contains(t, buf.String(), "Main")

	r.Free()
	assert.Equal(t, 0, r.Len())
}
