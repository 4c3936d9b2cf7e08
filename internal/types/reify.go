package types

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/lexer"
)

// Reify instantiates a generic declaration: it returns a deep copy of node
// in which every unqualified nominal reference to one of typeparams is
// replaced by a copy of the corresponding entry in typeargs. node itself is
// not modified. typeparams and typeargs may be nil or NONE, in which case
// the result is a plain copy.
func Reify(node, typeparams, typeargs *ast.Node) *ast.Node {
	dup := node.Dup()
	if typeparams == nil || typeparams.Kind() == lexer.NONE ||
		typeargs == nil || typeargs.Kind() == lexer.NONE {
		return dup
	}

	names := paramNames(typeparams)
	args := typeargs.Children()
	if repl := substitute(dup, names, args); repl != nil {
		return repl
	}
	reifyNode(dup, names, args)
	return dup
}

func paramNames(typeparams *ast.Node) []*string {
	var names []*string
	for tp := typeparams.Child(); tp != nil; tp = tp.Sibling() {
		names = append(names, tp.ChildAt(0).Name())
	}
	return names
}

func reifyNode(n *ast.Node, names []*string, args []*ast.Node) {
	for c := n.Child(); c != nil; c = c.Sibling() {
		if repl := substitute(c, names, args); repl != nil {
			ast.Replace(c, repl)
			c = repl
			continue
		}
		reifyNode(c, names, args)
	}
}

// substitute returns the replacement subtree when n is a nominal reference
// to a type parameter, nil otherwise.
func substitute(n *ast.Node, names []*string, args []*ast.Node) *ast.Node {
	if n.Kind() != lexer.NOMINAL {
		return nil
	}
	if pkg := n.ChildAt(nominalPkg); pkg != nil && pkg.Kind() != lexer.NONE {
		return nil
	}

	name := n.ChildAt(nominalID).Name()
	for i, pn := range names {
		if pn == name && i < len(args) {
			return args[i].Dup()
		}
	}
	return nil
}
