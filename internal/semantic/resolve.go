package semantic

import (
	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/errors"
	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/stringtab"
)

// Resolve populates the symbol tables of scope-bearing nodes and sets the
// Data back-link of every nominal type and reference to its defining
// declaration. Definitions are bound module-wide first, so forward
// references resolve.
func Resolve(module *ast.Node, diags *errors.DiagnosticList, source, file string) {
	bindModule(module, diags, source, file)
	resolveNames(module, diags, source, file)
}

func bindModule(module *ast.Node, diags *errors.DiagnosticList, source, file string) {
	scope := module.Scope()
	if scope == nil {
		scope = ast.NewScope()
		module.SetScope(scope)
	}

	for c := module.Child(); c != nil; c = c.Sibling() {
		switch c.Kind() {
		case lexer.TYPE, lexer.INTERFACE, lexer.TRAIT, lexer.PRIMITIVE,
			lexer.STRUCT, lexer.CLASS, lexer.ACTOR:
			bindEntity(scope, c, diags, source, file)

		case lexer.USE:
			if decl := c.ChildAt(1); decl != nil && decl.Kind() == lexer.FFIDECL {
				name := decl.ChildAt(0).Name()
				if name != nil && !scope.Set(name, decl) {
					diags.Errorf(decl.Pos(), source, file,
						"FFI declaration %q shadows an earlier declaration", *name)
				}
			}
		}
	}
}

func bindEntity(moduleScope *ast.Scope, def *ast.Node, diags *errors.DiagnosticList, source, file string) {
	name := def.ChildAt(0).Name()
	if name == nil {
		return
	}
	if !moduleScope.Set(name, def) {
		diags.Errorf(def.Pos(), source, file, "redefinition of %q", *name)
	}

	scope := def.Scope()
	if scope == nil {
		scope = ast.NewScope()
		def.SetScope(scope)
	}

	if tps := def.ChildAt(1); tps != nil && tps.Kind() == lexer.TYPEPARAMS {
		for tp := tps.Child(); tp != nil; tp = tp.Sibling() {
			scope.Set(tp.ChildAt(0).Name(), tp)
		}
	}

	members := def.ChildAt(4)
	if members == nil || members.Kind() != lexer.MEMBERS {
		return
	}
	for m := members.Child(); m != nil; m = m.Sibling() {
		switch m.Kind() {
		case lexer.FVAR, lexer.FLET, lexer.EMBED:
			scope.Set(m.ChildAt(0).Name(), m)
		case lexer.FUN, lexer.BE, lexer.NEW:
			scope.Set(m.ChildAt(1).Name(), m)
			bindMethod(m)
		}
	}
}

func bindMethod(m *ast.Node) {
	scope := m.Scope()
	if scope == nil {
		scope = ast.NewScope()
		m.SetScope(scope)
	}

	if tps := m.ChildAt(2); tps != nil && tps.Kind() == lexer.TYPEPARAMS {
		for tp := tps.Child(); tp != nil; tp = tp.Sibling() {
			scope.Set(tp.ChildAt(0).Name(), tp)
		}
	}
	if params := m.ChildAt(3); params != nil && params.Kind() == lexer.PARAMS {
		for p := params.Child(); p != nil; p = p.Sibling() {
			if p.Kind() == lexer.PARAM {
				scope.Set(p.ChildAt(0).Name(), p)
			}
		}
	}
}

// resolveNames walks the whole tree: locals are bound into the nearest
// enclosing scope as they are declared, nominal types and references get
// their Data link set.
func resolveNames(n *ast.Node, diags *errors.DiagnosticList, source, file string) {
	switch n.Kind() {
	case lexer.VAR, lexer.LET, lexer.EMBED:
		// Local declaration: (id, type). var and let fields were retagged
		// FVAR/FLET by the parser; an embed field keeps EMBED and lands here
		// too, but its entity scope already binds the name, so it is unchanged.
		if id := n.ChildAt(0); id != nil && id.Name() != nil {
			bindLocal(n, id.Name())
		}

	case lexer.NOMINAL:
		resolveNominal(n, diags, source, file)

	case lexer.REFERENCE:
		id := n.ChildAt(0)
		if def := n.Get(id.Name()); def != nil {
			n.SetData(def)
		} else {
			diags.Errorf(n.Pos(), source, file, "undefined name %q", *id.Name())
		}
	}

	for c := n.Child(); c != nil; c = c.Sibling() {
		resolveNames(c, diags, source, file)
	}
}

func bindLocal(decl *ast.Node, name *string) {
	for cur := decl.Parent(); cur != nil; cur = cur.Parent() {
		if scope := cur.Scope(); scope != nil {
			scope.Set(name, decl)
			return
		}
	}
}

func resolveNominal(n *ast.Node, diags *errors.DiagnosticList, source, file string) {
	// Package-qualified names resolve in the named package; single names in
	// the enclosing scopes. Packages other than the current module are not
	// modelled here, so qualified names resolve module-locally as well.
	id := n.ChildAt(1)
	if id == nil || id.Name() == nil {
		return
	}

	if def := n.Get(id.Name()); def != nil {
		n.SetData(def)
		return
	}
	diags.Errorf(n.Pos(), source, file, "undefined type %q", *id.Name())
}

// Definition returns the module-level definition with the given name, or
// nil.
func Definition(module *ast.Node, name string) *ast.Node {
	h := stringtab.Intern(name)
	if scope := module.Scope(); scope != nil {
		return scope.Get(h)
	}
	return nil
}

// BuiltinType builds a resolved nominal type node naming a well-known
// definition in the module. It is how the reachability roots and the
// literal-typing rules refer to the builtin types.
func BuiltinType(module *ast.Node, name string) *ast.Node {
	def := Definition(module, name)

	pos := module.Pos()
	nom := ast.New(lexer.NOMINAL, pos)
	nom.AppendChild(ast.New(lexer.NONE, pos))
	nom.AppendChild(ast.NewFromToken(lexer.NewToken(lexer.ID, name, pos)))
	nom.AppendChild(ast.New(lexer.NONE, pos))
	nom.AppendChild(ast.New(lexer.NONE, pos))
	nom.AppendChild(ast.New(lexer.NONE, pos))
	if def != nil {
		nom.SetData(def)
	}
	return nom
}
