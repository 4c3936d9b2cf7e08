package codegen

import "fmt"

// fakeBuilder records emission as data so tests can assert on layouts and
// on the exact runtime hooks a trace function calls.
type fakeBuilder struct {
	structs map[string]*fakeStruct
	funcs   map[string]*fakeFunc
	ints    map[int]TypeRef
	floats  map[int]TypeRef
	cur     *fakeFunc
}

type fakeStruct struct {
	name   string
	fields []TypeRef
}

type fakePtr struct {
	elem TypeRef
}

type fakeInt struct {
	bits int
}

type fakeFloat struct {
	bits int
}

type fakeFunc struct {
	name   string
	params []string
	ops    []string
	blocks int
}

type fakeBlock struct {
	fn *fakeFunc
	id int
}

type fakeValue struct {
	name string
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{
		structs: make(map[string]*fakeStruct),
		funcs:   make(map[string]*fakeFunc),
		ints:    make(map[int]TypeRef),
		floats:  make(map[int]TypeRef),
	}
}

func (b *fakeBuilder) op(format string, args ...any) {
	if b.cur == nil {
		panic("fake builder: instruction outside a function")
	}
	b.cur.ops = append(b.cur.ops, fmt.Sprintf(format, args...))
}

func (b *fakeBuilder) StructCreateNamed(name string) TypeRef {
	s := &fakeStruct{name: name}
	b.structs[name] = s
	return s
}

func (b *fakeBuilder) StructSetBody(t TypeRef, fields []TypeRef) {
	t.(*fakeStruct).fields = fields
}

func (b *fakeBuilder) PointerType(t TypeRef) TypeRef {
	return &fakePtr{elem: t}
}

func (b *fakeBuilder) IntType(bits int) TypeRef {
	if t, ok := b.ints[bits]; ok {
		return t
	}
	t := &fakeInt{bits: bits}
	b.ints[bits] = t
	return t
}

func (b *fakeBuilder) FloatType(bits int) TypeRef {
	if t, ok := b.floats[bits]; ok {
		return t
	}
	t := &fakeFloat{bits: bits}
	b.floats[bits] = t
	return t
}

func (b *fakeBuilder) NamedType(name string) TypeRef {
	if s, ok := b.structs[name]; ok {
		return s
	}
	return nil
}

func (b *fakeBuilder) AddFunction(name string, params ...string) ValueRef {
	f := &fakeFunc{name: name, params: params}
	b.funcs[name] = f
	return f
}

func (b *fakeBuilder) NamedFunction(name string) ValueRef {
	if f, ok := b.funcs[name]; ok {
		return f
	}
	return nil
}

func (b *fakeBuilder) Param(fn ValueRef, i int) ValueRef {
	f := fn.(*fakeFunc)
	return &fakeValue{name: fmt.Sprintf("%s.param%d", f.name, i)}
}

func (b *fakeBuilder) AppendBlock(fn ValueRef, name string) BlockRef {
	f := fn.(*fakeFunc)
	f.blocks++
	return &fakeBlock{fn: f, id: f.blocks}
}

func (b *fakeBuilder) PositionAtEnd(block BlockRef) {
	b.cur = block.(*fakeBlock).fn
}

func (b *fakeBuilder) FinishFunction(fn ValueRef) bool {
	return true
}

func (b *fakeBuilder) BitCast(v ValueRef, t TypeRef, name string) ValueRef {
	b.op("bitcast")
	return v
}

func (b *fakeBuilder) StructGEP(v ValueRef, i int, name string) ValueRef {
	b.op("gep %d", i)
	return &fakeValue{name: fmt.Sprintf("field%d", i)}
}

func (b *fakeBuilder) IsNull(v ValueRef, name string) ValueRef {
	b.op("isnull")
	return &fakeValue{name: "isnull"}
}

func (b *fakeBuilder) Br(block BlockRef) {
	b.op("br")
}

func (b *fakeBuilder) CondBr(cond ValueRef, then, els BlockRef) {
	b.op("condbr")
}

func (b *fakeBuilder) Call(fn ValueRef, args []ValueRef, name string) ValueRef {
	b.op("call %s", fn.(*fakeFunc).name)
	return &fakeValue{name: "callresult"}
}

func (b *fakeBuilder) RetVoid() {
	b.op("ret")
}

// calls returns the callee names recorded in a function, in order.
func (f *fakeFunc) calls() []string {
	var out []string
	for _, op := range f.ops {
		if len(op) > 5 && op[:5] == "call " {
			out = append(out, op[5:])
		}
	}
	return out
}
