package parser

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/rovelang/go-rove/internal/ast"
)

// TestParseSnapshots pins the exact parse tree of representative programs
// using go-snaps. The dump is the canonical parenthesized form; any change
// to the grammar's output shape shows up as a snapshot diff.
func TestParseSnapshots(t *testing.T) {
	programs := []struct {
		name  string
		input string
	}{
		{
			name:  "HelloMain",
			input: "actor Main\n  new create(env: Env) =>\n    env.out.print(\"hi\")",
		},
		{
			name: "TraitAndClass",
			input: `trait Hashable
  fun hash(): U64

class K is Hashable
  fun hash(): U64 => 0
`,
		},
		{
			name: "TypesAndFields",
			input: `class Box
  var a: (U32 | F64, Bool)
  let b: Foo->Bar
  embed c: Baz iso^
`,
		},
		{
			name: "ControlFlow",
			input: `class C
  fun f(): U64 =>
    if a then 1 else 2 end
    match x
    | 1 => 2
    | let n: U64 => n
    end
    while p do q end
`,
		},
		{
			name:  "UseAndFFI",
			input: "use \"collections\"\nuse @write[I32](fd: I32, buf: Pointer[U8], len: USize)\nclass C\n  fun f() => @write(1, 2, 3)",
		},
	}

	for _, tt := range programs {
		t.Run(tt.name, func(t *testing.T) {
			module, diags := Parse(tt.name+".rove", tt.input)
			if module == nil || diags.HasErrors() {
				t.Fatalf("parse failed: %v", diagMessages(diags))
			}
			snaps.MatchSnapshot(t, ast.Print(module))
		})
	}
}
