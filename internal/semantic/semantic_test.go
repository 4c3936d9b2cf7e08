package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/errors"
	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/parser"
	"github.com/rovelang/go-rove/internal/types"
)

const prelude = `primitive None
primitive Bool
primitive U64
primitive F64
class String
class OutStream
  fun print(s: String): None
class Env
  let out: OutStream
`

func analyzed(t *testing.T, source string, opts ...parser.Option) (*ast.Node, *errors.DiagnosticList) {
	t.Helper()

	module, diags := parser.Parse("test.rove", source, opts...)
	require.NotNil(t, module, "parse returned no module")
	require.False(t, diags.HasErrors(), "parse errors: %v", diags.All())

	Analyze(module, diags, source, "test.rove")
	return module, diags
}

func findKind(n *ast.Node, kind ast.Kind) *ast.Node {
	if n == nil {
		return nil
	}
	if n.Kind() == kind {
		return n
	}
	for c := n.Child(); c != nil; c = c.Sibling() {
		if found := findKind(c, kind); found != nil {
			return found
		}
	}
	return nil
}

func TestNormalizeSplicesSequences(t *testing.T) {
	source := "class C\n  fun f() =>\n    a\n    b\n    c"
	module, diags := parser.Parse("test.rove", source)
	require.False(t, diags.HasErrors())

	Normalize(module, diags, source, "test.rove")

	body := findKind(module, lexer.FUN).ChildAt(6)
	require.Equal(t, lexer.SEQ, body.Kind())
	assert.Equal(t, 3, body.ChildCount(), "three statements: %s", ast.Print(body))
	assert.Nil(t, findKind(module, lexer.FLATTEN), "no FLATTEN may survive")
	assert.Nil(t, findKind(module, lexer.SEMI), "no semicolon node may survive")
}

func TestNormalizeDropsSemicolons(t *testing.T) {
	source := "class C\n  fun f() => a; b"
	module, diags := parser.Parse("test.rove", source)
	require.False(t, diags.HasErrors())

	Normalize(module, diags, source, "test.rove")

	body := findKind(module, lexer.FUN).ChildAt(6)
	assert.Equal(t, 2, body.ChildCount())
	assert.Nil(t, findKind(module, lexer.SEMI))
	// A semicolon inside a line is fine: no warnings.
	assert.Empty(t, diags.All())
}

func TestNormalizeStyleWarnings(t *testing.T) {
	source := "class C\n  fun f() => a;\n    b"
	module, diags := parser.Parse("test.rove", source)
	require.False(t, diags.HasErrors())

	Normalize(module, diags, source, "test.rove")

	require.Len(t, diags.All(), 1)
	assert.Equal(t, errors.Warning, diags.All()[0].Severity)
	assert.False(t, diags.HasErrors(), "style findings are warnings, not errors")

	source = "class C\n  fun f() => a b"
	module, diags = parser.Parse("test.rove", source)
	require.False(t, diags.HasErrors())
	Normalize(module, diags, source, "test.rove")
	require.Len(t, diags.All(), 1)
	assert.Contains(t, diags.All()[0].Message, "semicolon")
}

func TestNormalizeDropsTestOnly(t *testing.T) {
	source := "class C\n  fun f() => $seq(1)"
	module, diags := parser.Parse("test.rove", source, parser.WithTestSymbols(true))
	require.False(t, diags.HasErrors())

	Normalize(module, diags, source, "test.rove")

	body := findKind(module, lexer.FUN).ChildAt(6)
	assert.Equal(t, 0, body.ChildCount(), "test-only subtree must be deleted")
	assert.NotPanics(t, func() { CheckNoTestOnly(module) })
}

func TestResolveBindsDefinitions(t *testing.T) {
	source := prelude + "actor Main\n  new create(env: Env) => env"
	module, diags := analyzed(t, source)
	require.False(t, diags.HasErrors(), "diags: %v", diags.All())

	envDef := Definition(module, "Env")
	require.NotNil(t, envDef)
	assert.Equal(t, lexer.CLASS, envDef.Kind())

	// The param's type nominal must point at the Env class.
	main := Definition(module, "Main")
	param := findKind(main, lexer.PARAM)
	require.NotNil(t, param)
	nom := param.ChildAt(1)
	require.Equal(t, lexer.NOMINAL, nom.Kind())
	assert.Same(t, envDef, nom.DataNode())

	// The body reference resolves to the param.
	ref := findKind(main.ChildAt(4), lexer.REFERENCE)
	require.NotNil(t, ref)
	assert.Same(t, param, ref.DataNode())
	assert.True(t, types.IsEnv(ref.Type()), "env reference must be typed Env")
}

func TestResolveUndefinedName(t *testing.T) {
	source := "class C\n  fun f() => mystery"
	module, diags := parser.Parse("test.rove", source)
	require.False(t, diags.HasErrors())

	Analyze(module, diags, source, "test.rove")
	assert.True(t, diags.HasErrors(), "undefined name must be an error")
}

func TestAnnotateLiterals(t *testing.T) {
	source := prelude + "class C\n  fun f() =>\n    true\n    1\n    2.5\n    \"s\""
	module, diags := analyzed(t, source)
	require.False(t, diags.HasErrors(), "diags: %v", diags.All())

	body := findKind(Definition(module, "C"), lexer.FUN).ChildAt(6)

	wantTypes := []string{"Bool", "U64", "F64", "String"}
	require.Equal(t, len(wantTypes), body.ChildCount())
	for i, want := range wantTypes {
		typ := body.ChildAt(i).Type()
		require.NotNil(t, typ, "statement %d untyped", i)
		assert.True(t, types.IsLiteral(typ, want), "statement %d: want %s", i, want)
	}
}

func TestAnnotateMemberAccess(t *testing.T) {
	source := prelude + "actor Main\n  new create(env: Env) =>\n    env.out.print(\"hi\")"
	module, diags := analyzed(t, source)
	require.False(t, diags.HasErrors(), "diags: %v", diags.All())

	main := Definition(module, "Main")
	body := findKind(main, lexer.NEW).ChildAt(6)

	fvarref := findKind(body, lexer.FLETREF)
	require.NotNil(t, fvarref, "env.out must resolve to a field reference: %s", ast.Print(body))
	assert.True(t, types.IsLiteral(fvarref.Type(), "OutStream"))

	funref := findKind(body, lexer.FUNREF)
	require.NotNil(t, funref, "out.print must resolve to a fun reference")
	printDef := funref.DataNode()
	require.NotNil(t, printDef)
	assert.Equal(t, lexer.FUN, printDef.Kind())

	call := findKind(body, lexer.CALL)
	require.NotNil(t, call)
	require.NotNil(t, call.Type(), "call result must carry the declared return type")
	assert.True(t, types.IsNone(call.Type()))
}

func TestAnnotateConstructorReference(t *testing.T) {
	source := prelude + "class Pair\n  new create()\nactor Main\n  new create(env: Env) => Pair.create()"
	module, diags := analyzed(t, source)
	require.False(t, diags.HasErrors(), "diags: %v", diags.All())

	body := findKind(Definition(module, "Main"), lexer.NEW).ChildAt(6)
	newref := findKind(body, lexer.NEWREF)
	require.NotNil(t, newref, "Pair.create must resolve to a constructor reference")
	recv := newref.ChildAt(0)
	assert.True(t, types.IsLiteral(recv.Type(), "Pair"))
}

func TestAnnotateBehaviourReference(t *testing.T) {
	source := prelude + `actor Worker
  be run(): None
actor Main
  new create(env: Env, w: Worker) => w.run()
`
	module, diags := analyzed(t, source)
	require.False(t, diags.HasErrors(), "diags: %v", diags.All())

	body := findKind(Definition(module, "Main"), lexer.NEW).ChildAt(6)
	assert.NotNil(t, findKind(body, lexer.BEREF), "w.run must resolve to a behaviour reference")
}
