package semantic

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/errors"
	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/types"
)

// Annotate types literal expressions and resolves member accesses: every
// resolved DOT is retagged to its reference kind (FVARREF, FLETREF, FUNREF,
// BEREF, NEWREF, NEWBEREF) with Data pointing at the member definition, and
// expression nodes the reachability analyzer inspects get their Type link.
// Constructs outside this subset are left untyped; full inference belongs to
// the type-checking passes.
func Annotate(module *ast.Node, diags *errors.DiagnosticList, source, file string) {
	c := &annotator{module: module, diags: diags, source: source, file: file}

	for d := module.Child(); d != nil; d = d.Sibling() {
		switch d.Kind() {
		case lexer.TYPE, lexer.INTERFACE, lexer.TRAIT, lexer.PRIMITIVE,
			lexer.STRUCT, lexer.CLASS, lexer.ACTOR:
			c.entity = d
			c.annotateMembers(d)
		}
	}
}

type annotator struct {
	module *ast.Node
	entity *ast.Node
	diags  *errors.DiagnosticList
	source string
	file   string
}

func (c *annotator) annotateMembers(def *ast.Node) {
	members := def.ChildAt(4)
	if members == nil || members.Kind() != lexer.MEMBERS {
		return
	}

	for m := members.Child(); m != nil; m = m.Sibling() {
		switch m.Kind() {
		case lexer.FVAR, lexer.FLET, lexer.EMBED:
			if v := m.ChildAt(2); v != nil && v.Kind() != lexer.NONE {
				c.annotate(v)
			}
		case lexer.FUN, lexer.BE, lexer.NEW:
			if body := m.ChildAt(6); body != nil && body.Kind() != lexer.NONE {
				c.annotate(body)
			}
		}
	}
}

func (c *annotator) annotate(n *ast.Node) {
	switch n.Kind() {
	case lexer.DOT:
		c.annotate(n.ChildAt(0))
		c.resolveMember(n)
		return

	case lexer.CALL:
		for ch := n.Child(); ch != nil; ch = ch.Sibling() {
			c.annotate(ch)
		}
		c.typeCall(n)
		return
	}

	for ch := n.Child(); ch != nil; ch = ch.Sibling() {
		c.annotate(ch)
	}

	switch n.Kind() {
	case lexer.TRUE, lexer.FALSE:
		n.SetType(BuiltinType(c.module, "Bool"))
	case lexer.INT:
		n.SetType(BuiltinType(c.module, "U64"))
	case lexer.FLOAT:
		n.SetType(BuiltinType(c.module, "F64"))
	case lexer.STRING:
		n.SetType(BuiltinType(c.module, "String"))
	case lexer.THIS:
		if c.entity != nil {
			n.SetType(BuiltinType(c.module, *c.entity.ChildAt(0).Name()))
		}
	case lexer.REFERENCE:
		c.typeReference(n)
	}
}

func (c *annotator) typeReference(n *ast.Node) {
	def := n.DataNode()
	if def == nil {
		return
	}

	switch def.Kind() {
	case lexer.PARAM, lexer.FVAR, lexer.FLET, lexer.EMBED:
		n.SetType(def.ChildAt(1))

	case lexer.VAR, lexer.LET:
		if t := def.ChildAt(1); t != nil && t.Kind() != lexer.NONE {
			n.SetType(t)
		}

	case lexer.TYPE, lexer.INTERFACE, lexer.TRAIT, lexer.PRIMITIVE,
		lexer.STRUCT, lexer.CLASS, lexer.ACTOR:
		n.SetType(BuiltinType(c.module, *def.ChildAt(0).Name()))
	}
}

// resolveMember resolves recv.name, retagging the DOT node to the member's
// reference kind.
func (c *annotator) resolveMember(n *ast.Node) {
	recv, id := n.ChildAt(0), n.ChildAt(1)

	rtype := recv.Type()
	if rtype == nil {
		return
	}

	member := types.LookupTry(rtype, id.Name())
	if member == nil {
		c.diags.Errorf(n.Pos(), c.source, c.file,
			"no member %q on this type", *id.Name())
		return
	}

	n.SetData(member)
	switch member.Kind() {
	case lexer.FVAR:
		n.SetKind(lexer.FVARREF)
		n.SetType(member.ChildAt(1))
	case lexer.FLET, lexer.EMBED:
		n.SetKind(lexer.FLETREF)
		n.SetType(member.ChildAt(1))
	case lexer.FUN:
		n.SetKind(lexer.FUNREF)
	case lexer.BE:
		n.SetKind(lexer.BEREF)
	case lexer.NEW:
		if member.Parent() != nil && member.Parent().Parent() != nil &&
			member.Parent().Parent().Kind() == lexer.ACTOR {
			n.SetKind(lexer.NEWBEREF)
		} else {
			n.SetKind(lexer.NEWREF)
		}
	}
}

// typeCall sets a call node's result type from the resolved method's
// declared return type.
func (c *annotator) typeCall(n *ast.Node) {
	fun := n.ChildAt(2)
	if fun == nil {
		return
	}
	if fun.Kind() == lexer.QUALIFY {
		fun = fun.ChildAt(0)
	}

	def := fun.DataNode()
	if def == nil {
		return
	}
	switch def.Kind() {
	case lexer.FUN, lexer.BE, lexer.NEW:
		if result := def.ChildAt(4); result != nil && result.Kind() != lexer.NONE {
			n.SetType(result)
		}
	}
}
