// Package semantic runs the post-parse passes that prepare a module AST for
// the reachability analyzer: syntax normalization, scope and name binding,
// and a limited expression annotation that types literals and resolves
// member accesses to their definitions.
package semantic

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/errors"
	"github.com/rovelang/go-rove/internal/lexer"
)

// Analyze runs normalization, binding and annotation on a parsed module.
// Diagnostics accumulate in diags; the module is usable by the reachability
// analyzer iff no errors were reported.
func Analyze(module *ast.Node, diags *errors.DiagnosticList, source, file string) {
	Normalize(module, diags, source, file)
	Resolve(module, diags, source, file)
	Annotate(module, diags, source, file)
}

// Normalize splices FLATTEN wrappers into their parents, drops semicolon
// nodes after emitting their stylistic warnings, and deletes every subtree
// built from test-only tokens. After this pass a surviving TEST_ONLY node is
// a compiler bug.
func Normalize(module *ast.Node, diags *errors.DiagnosticList, source, file string) {
	warnStyle(module, diags, source, file)
	splice(module)
}

// warnStyle reports the statement-separator style flags the parser left
// behind. A flag is reported once per region: on the outermost node that
// carries it.
func warnStyle(n *ast.Node, diags *errors.DiagnosticList, source, file string) {
	parent := n.Parent()

	if n.HasFlag(ast.FlagBadSemi) && (parent == nil || !parent.HasFlag(ast.FlagBadSemi)) {
		diags.Warnf(n.Pos(), source, file, "unnecessary semicolon at end of line")
	}
	if n.HasFlag(ast.FlagMissingSemi) && (parent == nil || !parent.HasFlag(ast.FlagMissingSemi)) {
		diags.Warnf(n.Pos(), source, file, "expressions on the same line must be separated by a semicolon")
	}

	for c := n.Child(); c != nil; c = c.Sibling() {
		warnStyle(c, diags, source, file)
	}
}

func splice(n *ast.Node) {
	old := n.Children()
	for _, c := range old {
		c.Remove()
	}

	for _, c := range old {
		splice(c)

		switch {
		case c.HasFlag(ast.FlagTestOnly):
			// Dropped: test-only constructs never reach semantic analysis.
		case c.Kind() == lexer.FLATTEN:
			for _, gc := range c.Children() {
				n.AppendChild(gc)
			}
		case c.Kind() == lexer.SEMI:
			// Separator only; the style warnings were already emitted.
		default:
			n.AppendChild(c)
		}
	}
}

// CheckNoTestOnly panics if a TEST_ONLY node survived normalization.
func CheckNoTestOnly(n *ast.Node) {
	if n.HasFlag(ast.FlagTestOnly) {
		panic("semantic: TEST_ONLY node survived normalization")
	}
	for c := n.Child(); c != nil; c = c.Sibling() {
		CheckNoTestOnly(c)
	}
}
