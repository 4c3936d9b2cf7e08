// Package reach computes the reachability closure of a program: the set of
// concrete types and monomorphized methods actually used, starting from the
// program entry points. The closure is what the codegen driver walks; a
// type or method outside it is never emitted.
//
// The engine is a worklist: reaching a method reifies and records it, then
// queues it; draining the queue walks each recorded body and induces further
// reachability from the expressions found there. Interning bounds the work:
// every (type, method, typeargs) triple is processed at most once, so the
// worklist drains in bounded steps on any finite program.
//
// All keys are interned strings from genname; equality is pointer identity.
package reach

import (
	"fmt"
	"io"

	"github.com/rovelang/go-rove/internal/ast"
	"github.com/rovelang/go-rove/internal/genname"
	"github.com/rovelang/go-rove/internal/lexer"
	"github.com/rovelang/go-rove/internal/semantic"
	"github.com/rovelang/go-rove/internal/stringtab"
	"github.com/rovelang/go-rove/internal/types"
)

// Type is a reachable type. AST holds the canonical type: capability
// normalized to ref with no ephemerality, so instances differing only in
// cap or ephemerality share one entry.
type Type struct {
	Name       *string
	AST        *ast.Node
	Methods    map[*string]*MethodName
	Subtypes   map[*string]*Type
	VTableSize int
}

// MethodName groups the reachable instantiations of one method name.
type MethodName struct {
	Name    *string
	Methods map[*string]*Method
}

// Method is one reachable method instantiation.
type Method struct {
	Name        *string
	TypeArgs    *ast.Node
	Fun         *ast.Node
	VTableIndex int
}

// Types is the reachable-type set for one program. It keeps a reference to
// the program's module: method bodies are walked as detached copies, so
// module-scoped lookups (FFI declarations) resolve through it.
type Types struct {
	module *ast.Node
	types  map[*string]*Type
	work   []*Method
}

// New creates an empty reachable set for the given program module.
func New(module *ast.Node) *Types {
	return &Types{module: module, types: make(map[*string]*Type)}
}

// Free discards the set. The maps are dropped for early reclamation; the
// AST they referenced is owned by the package, not by the set.
func (r *Types) Free() {
	r.types = nil
	r.work = nil
}

// builtinPrimitives are the types reachable in every program regardless of
// entry points: the machine-word primitives plus None.
var builtinPrimitives = []string{
	"Bool",
	"I8", "I16", "I32", "I64", "I128",
	"U8", "U16", "U32", "U64", "U128",
	"F32", "F64",
	"None",
}

// Primitives makes the builtin primitive types reachable. Builtins the
// module does not define are skipped.
func (r *Types) Primitives() {
	for _, name := range builtinPrimitives {
		if semantic.Definition(r.module, name) == nil {
			continue
		}
		r.addType(semantic.BuiltinType(r.module, name))
	}
	r.handleStack()
}

// Reach makes (type, method, typeargs) reachable and drains the worklist.
func (r *Types) Reach(typ *ast.Node, name string, typeargs *ast.Node) {
	r.reachMethod(typ, stringtab.Intern(name), typeargs)
	r.handleStack()
}

// TypeByName returns the reachable type with the given mangled name, or nil.
func (r *Types) TypeByName(name *string) *Type {
	return r.types[name]
}

// Lookup returns the reachable type with the given source-level name, or
// nil.
func (r *Types) Lookup(name string) *Type {
	h := stringtab.Get(name)
	if h == nil {
		return nil
	}
	return r.types[h]
}

// Len returns the number of reachable types.
func (r *Types) Len() int {
	return len(r.types)
}

// Each calls f for every reachable type. Iteration order is unspecified;
// observable output must not depend on it.
func (r *Types) Each(f func(*Type)) {
	for _, t := range r.types {
		f(t)
	}
}

// MethodCount returns the number of reachable method instantiations on t.
func MethodCount(t *Type) int {
	count := 0
	for _, n := range t.Methods {
		count += len(n.Methods)
	}
	return count
}

// Method returns the reachable instantiation set for a method name on t, or
// nil.
func (t *Type) Method(name string) *MethodName {
	h := stringtab.Get(name)
	if h == nil {
		return nil
	}
	return t.Methods[h]
}

// Dump writes a debug listing. Iteration order over the hash maps is
// unspecified; nothing may depend on this output beyond debugging.
func (r *Types) Dump(w io.Writer) {
	fmt.Fprintln(w, "REACH")

	for _, t := range r.types {
		fmt.Fprintf(w, "  %s vtable size %d\n", *t.Name, t.VTableSize)
		for _, n := range t.Methods {
			for _, m := range n.Methods {
				fmt.Fprintf(w, "    %s vtable index %d\n", *m.Name, m.VTableIndex)
			}
		}
	}
}

func (r *Types) handleStack() {
	for len(r.work) > 0 {
		m := r.work[len(r.work)-1]
		r.work = r.work[:len(r.work)-1]
		r.reachBody(m.Fun)
	}
}

func (r *Types) addReachableType(typ *ast.Node, name *string) *Type {
	t := &Type{
		Name:     name,
		AST:      types.SetCapAndEphemeral(typ, lexer.REF, lexer.NONE),
		Methods:  make(map[*string]*MethodName),
		Subtypes: make(map[*string]*Type),
	}
	r.types[name] = t
	return t
}

func (r *Types) addType(typ *ast.Node) *Type {
	switch typ.Kind() {
	case lexer.UNIONTYPE, lexer.ISECTTYPE:
		for c := typ.Child(); c != nil; c = c.Sibling() {
			r.addType(c)
		}
		return nil

	case lexer.TUPLETYPE:
		return r.addTuple(typ)

	case lexer.NOMINAL:
		return r.addNominal(typ)

	case lexer.ARROW:
		return r.addType(typ.ChildAt(1))
	}

	panic("reach: unexpected type kind " + typ.Kind().String())
}

func (r *Types) addTuple(typ *ast.Node) *Type {
	name := genname.Type(typ)
	if t := r.types[name]; t != nil {
		return t
	}

	t := r.addReachableType(typ, name)
	for c := typ.Child(); c != nil; c = c.Sibling() {
		r.addType(c)
	}
	return t
}

func (r *Types) addNominal(typ *ast.Node) *Type {
	name := genname.Type(typ)
	if t := r.types[name]; t != nil {
		return t
	}

	t := r.addReachableType(typ, name)

	if args := typ.ChildAt(2); args != nil && args.Kind() != lexer.NONE {
		for a := args.Child(); a != nil; a = a.Sibling() {
			r.addType(a)
		}
	}

	def := typ.DataNode()
	if def == nil {
		return t
	}

	switch def.Kind() {
	case lexer.INTERFACE, lexer.TRAIT:
		r.addTypesToTrait(t)

	case lexer.PRIMITIVE:
		r.addTraitsToType(t)
		r.addSpecial(t, "_init")
		r.addSpecial(t, "_final")

	case lexer.STRUCT, lexer.CLASS:
		r.addTraitsToType(t)
		r.addSpecial(t, "_final")

	case lexer.ACTOR:
		r.addTraitsToType(t)
		r.addSpecial(t, "_event_notify")
		r.addSpecial(t, "_final")
	}

	return t
}

// addTypesToTrait links a newly reached trait to every already-reached
// concrete subtype and propagates the trait's reached methods to each.
func (r *Types) addTypesToTrait(t *Type) {
	for _, t2 := range r.types {
		if t2.AST.Kind() == lexer.TUPLETYPE {
			continue
		}
		def := t2.AST.DataNode()
		if def == nil {
			continue
		}

		switch def.Kind() {
		case lexer.PRIMITIVE, lexer.CLASS, lexer.STRUCT, lexer.ACTOR:
			if types.IsSubtype(t2.AST, t.AST) {
				t.Subtypes[t2.Name] = t2
				t2.Subtypes[t.Name] = t
				r.addMethodsToType(t, t2)
			}
		}
	}
}

// addTraitsToType links a newly reached concrete type to every
// already-reached trait it implements and pulls the traits' reached methods
// onto it.
func (r *Types) addTraitsToType(t *Type) {
	for _, t2 := range r.types {
		if t2.AST.Kind() == lexer.TUPLETYPE {
			continue
		}
		def := t2.AST.DataNode()
		if def == nil {
			continue
		}

		switch def.Kind() {
		case lexer.INTERFACE, lexer.TRAIT:
			if types.IsSubtype(t.AST, t2.AST) {
				t.Subtypes[t2.Name] = t2
				t2.Subtypes[t.Name] = t
				r.addMethodsToType(t2, t)
			}
		}
	}
}

func (r *Types) addMethodsToType(from, to *Type) {
	for _, n := range from.Methods {
		for _, m := range n.Methods {
			r.addMethod(to, n.Name, m.TypeArgs)
		}
	}
}

// addSpecial makes a hook method reachable when the type defines it.
func (r *Types) addSpecial(t *Type, special string) {
	name := stringtab.Intern(special)
	if types.LookupTry(t.AST, name) != nil {
		r.addMethod(t, name, nil)
	}
}

func (r *Types) addMethod(t *Type, name *string, typeargs *ast.Node) {
	n := t.Methods[name]
	if n == nil {
		n = &MethodName{Name: name, Methods: make(map[*string]*Method)}
		t.Methods[name] = n
	}

	r.addRMethod(t, n, typeargs)

	// A method reached on a trait is reached on every concrete subtype.
	def := t.AST.DataNode()
	if def == nil {
		return
	}
	switch def.Kind() {
	case lexer.INTERFACE, lexer.TRAIT:
		for _, t2 := range t.Subtypes {
			r.addMethod(t2, name, typeargs)
		}
	}
}

func (r *Types) addRMethod(t *Type, n *MethodName, typeargs *ast.Node) {
	name := genname.Fun(n.Name, typeargs)
	if n.Methods[name] != nil {
		return
	}

	m := &Method{
		Name:        name,
		TypeArgs:    dup(typeargs),
		VTableIndex: -1,
	}

	fun := types.Lookup(t.AST, n.Name)
	if typeargs != nil && typeargs.Kind() != lexer.NONE {
		// Reify the method with its own type parameters.
		fun = types.Reify(fun, fun.ChildAt(2), typeargs)
	}
	m.Fun = fun.Dup()

	n.Methods[name] = m
	r.work = append(r.work, m)
}

func dup(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	return n.Dup()
}

func (r *Types) reachMethod(typ *ast.Node, name *string, typeargs *ast.Node) {
	switch typ.Kind() {
	case lexer.NOMINAL:
		t := r.addType(typ)
		r.addMethod(t, name, typeargs)

	case lexer.UNIONTYPE, lexer.ISECTTYPE:
		for c := typ.Child(); c != nil; c = c.Sibling() {
			if types.LookupTry(c, name) != nil {
				r.reachMethod(c, name, typeargs)
			}
		}

	case lexer.ARROW:
		r.reachMethod(typ.ChildAt(1), name, typeargs)

	default:
		panic("reach: unexpected receiver type " + typ.Kind().String())
	}
}

func (r *Types) reachBody(fun *ast.Node) {
	switch fun.Kind() {
	case lexer.FUN, lexer.BE, lexer.NEW:
		if body := fun.ChildAt(6); body != nil && body.Kind() != lexer.NONE {
			r.reachExpr(body)
		}
	}
	// Fields queued through field references have no body to walk.
}

func (r *Types) reachExpr(n *ast.Node) {
	// If this expression uses a method or constructor, mark it reachable.
	switch n.Kind() {
	case lexer.TRUE, lexer.FALSE, lexer.INT, lexer.FLOAT, lexer.STRING:
		if typ := n.Type(); typ != nil {
			r.reachMethod(typ, stringtab.Intern("create"), nil)
		}

	case lexer.CASE:
		r.reachPattern(n.ChildAt(0))
		r.reachExpr(n.ChildAt(1))
		r.reachExpr(n.ChildAt(2))

	case lexer.CALL:
		r.reachFun(n.ChildAt(2))

	case lexer.FFICALL:
		r.reachFFI(n)

	case lexer.ADDRESS:
		r.reachAddressOf(n)

	case lexer.FVARREF, lexer.FLETREF:
		r.reachFieldRef(n)
	}

	// Traverse all child expressions looking for uses.
	for c := n.Child(); c != nil; c = c.Sibling() {
		r.reachExpr(c)
	}
}

func (r *Types) reachPattern(n *ast.Node) {
	switch n.Kind() {
	case lexer.DONTCARE, lexer.NONE:

	case lexer.VAR, lexer.LET:
		if typ := n.ChildAt(1); typ != nil && typ.Kind() != lexer.NONE {
			r.addType(typ)
		}

	case lexer.TUPLE, lexer.SEQ:
		for c := n.Child(); c != nil; c = c.Sibling() {
			r.reachPattern(c)
		}

	default:
		// Matching against a value calls eq on it.
		if typ := n.Type(); typ != nil {
			r.reachMethod(typ, stringtab.Intern("eq"), nil)
		}
		r.reachExpr(n)
	}
}

// reachFun resolves a post-method-reference node to (receiver type, method
// name, typeargs) and reaches it. A qualified reference wraps the method
// reference, so one level of digging recovers the type arguments.
func (r *Types) reachFun(n *ast.Node) {
	receiver, method := n.ChildAt(0), n.ChildAt(1)
	var typeargs *ast.Node

	switch receiver.Kind() {
	case lexer.NEWREF, lexer.NEWBEREF, lexer.BEREF, lexer.FUNREF:
		typeargs = method
		receiver, method = receiver.ChildAt(0), receiver.ChildAt(1)
	}

	typ := receiver.Type()
	if typ == nil {
		panic("reach: method receiver has no type")
	}
	r.reachMethod(typ, method.Name(), typeargs)
}

// reachFieldRef reaches a field access: the field joins the owner's
// reachable member set and the owner type itself becomes reachable.
func (r *Types) reachFieldRef(n *ast.Node) {
	receiver, id := n.ChildAt(0), n.ChildAt(1)
	if typ := receiver.Type(); typ != nil {
		r.reachMethod(typ, id.Name(), nil)
	}
}

// reachFFI reaches the types of an FFI call. When the package carries a
// matching FFI declaration, the declaration's signature wins over the call
// site's: its return type replaces the call-site annotation and its
// parameter types become reachable as well.
func (r *Types) reachFFI(n *ast.Node) {
	name, typeargs := n.ChildAt(0), n.ChildAt(1)

	if decl := r.ffiDecl(n, name.Name()); decl != nil {
		typeargs = decl.ChildAt(1)

		if params := decl.ChildAt(2); params != nil && params.Kind() == lexer.PARAMS {
			for p := params.Child(); p != nil; p = p.Sibling() {
				if p.Kind() == lexer.PARAM {
					r.addType(p.ChildAt(1))
				}
			}
		}
	}

	if typeargs == nil || typeargs.Kind() == lexer.NONE {
		return
	}
	if ret := typeargs.Child(); ret != nil {
		r.addType(ret)
	}
}

// ffiDecl resolves an FFI name: through the enclosing scopes when the node
// is still attached, through the module scope otherwise (bodies on the
// worklist are detached copies).
func (r *Types) ffiDecl(n *ast.Node, name *string) *ast.Node {
	if decl := n.Get(name); decl != nil {
		return decl
	}
	if r.module != nil {
		if scope := r.module.Scope(); scope != nil {
			return scope.Get(name)
		}
	}
	return nil
}

func (r *Types) reachAddressOf(n *ast.Node) {
	expr := n.Child()
	switch expr.Kind() {
	case lexer.FUNREF, lexer.BEREF:
		r.reachFun(expr)
	}
}
