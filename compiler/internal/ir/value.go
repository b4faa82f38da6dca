package ir

import (
	"strconv"
	"strings"

	"github.com/p-maje/inz-wasm-compiler/errors"
)

// Value is an expression node producing exactly one typed stack value.
//
// resolve type-checks the node against the context and caches the
// result; checkUse enforces use rules (initialization, index types,
// call signatures) at the reference site; emit produces instruction
// lines leaving one value of the resolved type on the stack, with depth
// controlling indentation only. emit must only run after a successful
// check phase.
type Value interface {
	value()
	resolve(ctx *LocalContext) (ValType, error)
	checkUse(ctx *LocalContext) error
	emit(ctx *LocalContext, depth int) []string
}

// Storable is a Value that can also be assigned: a scalar local or an
// array element.
type Storable interface {
	Value
	checkTarget(ctx *LocalContext) error
	markStored(ctx *LocalContext)
	emitStore(ctx *LocalContext, depth int, v Value) []string
}

// Const is an integer or float literal.
type Const struct {
	Line int
	ival int32
	fval float32
	typ  ValType
}

func NewIntConst(line int, v int32) *Const {
	return &Const{Line: line, ival: v, typ: I32}
}

func NewFloatConst(line int, v float32) *Const {
	return &Const{Line: line, fval: v, typ: F32}
}

func (c *Const) value() {}

func (c *Const) resolve(*LocalContext) (ValType, error) { return c.typ, nil }

func (c *Const) checkUse(*LocalContext) error { return nil }

func (c *Const) literal() string {
	if c.typ == I32 {
		return strconv.FormatInt(int64(c.ival), 10)
	}
	return strconv.FormatFloat(float64(c.fval), 'g', -1, 32)
}

func (c *Const) emit(_ *LocalContext, depth int) []string {
	return []string{indent(depth, string(c.typ)+".const "+c.literal())}
}

// Local is a named function-scoped slot: a parameter, a declared local
// or an active loop iterator. Reference nodes resolve their type from
// the declaration in the context; iterators resolve to i32.
type Local struct {
	Name        string
	Line        int
	typ         ValType
	initialized bool
}

// NewLocal builds a reference whose type resolves from the context.
func NewLocal(line int, name string) *Local {
	return &Local{Line: line, Name: name}
}

// NewTypedLocal builds a declaration with an explicit type.
func NewTypedLocal(line int, name string, typ ValType) *Local {
	return &Local{Line: line, Name: name, typ: typ}
}

func (l *Local) value() {}

func (l *Local) resolve(ctx *LocalContext) (ValType, error) {
	if l.typ != "" {
		return l.typ, nil
	}
	if ctx.isActiveIterator(l.Name) {
		l.typ = I32
		return l.typ, nil
	}
	decl, ok := ctx.locals[l.Name]
	if !ok {
		return "", errors.UndeclaredVariable(l.Line, l.Name)
	}
	l.typ = decl.typ
	return l.typ, nil
}

func (l *Local) checkUse(ctx *LocalContext) error {
	if l.initialized || ctx.isActiveIterator(l.Name) {
		return nil
	}
	if decl, ok := ctx.locals[l.Name]; ok {
		if !decl.initialized {
			return errors.NotInitialized(l.Line, l.Name)
		}
		l.initialized = true
	}
	return nil
}

func (l *Local) checkTarget(*LocalContext) error { return nil }

func (l *Local) markStored(ctx *LocalContext) {
	if decl, ok := ctx.locals[l.Name]; ok {
		decl.initialized = true
	}
	l.initialized = true
}

func (l *Local) emit(_ *LocalContext, depth int) []string {
	return []string{indent(depth, "local.get $"+l.Name)}
}

func (l *Local) emitStore(ctx *LocalContext, depth int, v Value) []string {
	return append(v.emit(ctx, depth), indent(depth, "local.set $"+l.Name))
}

// ArrayValue is one element of a declared array, addressed by an i32
// index. A constant index folds to a single address constant.
type ArrayValue struct {
	Name  string
	Index Value
	Line  int
	arr   *Array
}

func NewArrayValue(line int, name string, index Value) *ArrayValue {
	return &ArrayValue{Line: line, Name: name, Index: index}
}

func (a *ArrayValue) value() {}

func (a *ArrayValue) resolve(ctx *LocalContext) (ValType, error) {
	if a.arr == nil {
		arr, ok := ctx.global.arrays[a.Name]
		if !ok {
			return "", errors.UndeclaredArray(a.Line, a.Name)
		}
		a.arr = arr
	}
	return a.arr.Typ, nil
}

func (a *ArrayValue) checkUse(ctx *LocalContext) error {
	return a.checkTarget(ctx)
}

func (a *ArrayValue) checkTarget(ctx *LocalContext) error {
	it, err := a.Index.resolve(ctx)
	if err != nil {
		return err
	}
	if it != I32 {
		return errors.NonIntegerIndex(a.Line)
	}
	return a.Index.checkUse(ctx)
}

func (a *ArrayValue) markStored(*LocalContext) {}

// address emits instructions leaving the element's byte address on the
// stack: index, times element size, plus the array's start offset when
// nonzero.
func (a *ArrayValue) address(ctx *LocalContext, depth int) []string {
	if c, ok := a.Index.(*Const); ok {
		folded := NewIntConst(c.Line, c.ival*numberSize+int32(a.arr.start))
		return folded.emit(ctx, depth)
	}
	instrs := a.Index.emit(ctx, depth)
	instrs = append(instrs,
		indent(depth, "i32.const "+strconv.Itoa(numberSize)),
		indent(depth, "i32.mul"),
	)
	if a.arr.start != 0 {
		instrs = append(instrs,
			indent(depth, "i32.const "+strconv.Itoa(a.arr.start)),
			indent(depth, "i32.add"),
		)
	}
	return instrs
}

func (a *ArrayValue) emit(ctx *LocalContext, depth int) []string {
	return append(a.address(ctx, depth), indent(depth, string(a.arr.Typ)+".load"))
}

func (a *ArrayValue) emitStore(ctx *LocalContext, depth int, v Value) []string {
	instrs := a.address(ctx, depth)
	instrs = append(instrs, v.emit(ctx, depth)...)
	return append(instrs, indent(depth, string(a.arr.Typ)+".store"))
}

// FunctionCall invokes a function from the program's function table.
// Its type is the callee's declared result; void for procedures.
type FunctionCall struct {
	Callee string
	Args   []Value
	Line   int
	fn     *Function
}

func NewFunctionCall(line int, callee string, args []Value) *FunctionCall {
	return &FunctionCall{Line: line, Callee: callee, Args: args}
}

func (f *FunctionCall) value() {}

func (f *FunctionCall) resolve(ctx *LocalContext) (ValType, error) {
	if f.fn == nil {
		fn, ok := ctx.global.functions[f.Callee]
		if !ok {
			return "", errors.UnknownFunction(f.Line, f.Callee)
		}
		f.fn = fn
	}
	return f.fn.ReturnType, nil
}

func (f *FunctionCall) checkUse(ctx *LocalContext) error {
	if _, err := f.resolve(ctx); err != nil {
		return err
	}
	if len(f.fn.Params) != len(f.Args) {
		return errors.ArityMismatch(f.Line, f.Callee, len(f.fn.Params), len(f.Args))
	}
	for i, arg := range f.Args {
		at, err := arg.resolve(ctx)
		if err != nil {
			return err
		}
		if param := f.fn.Params[i]; at != param.typ {
			return errors.ArgumentType(f.Line, param.Name, string(param.typ), string(at))
		}
	}
	for _, arg := range f.Args {
		if err := arg.checkUse(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (f *FunctionCall) emit(ctx *LocalContext, depth int) []string {
	var instrs []string
	for _, arg := range f.Args {
		instrs = append(instrs, arg.emit(ctx, depth)...)
	}
	return append(instrs, indent(depth, "call $"+f.Callee))
}

// Expression is a binary operation over two operands of identical type.
// Float operands strip the signedness suffix from the opcode; a float
// remainder has no instruction and fails.
type Expression struct {
	LHS, RHS Value
	op       string
	Line     int
	typ      ValType
}

func NewExpression(line int, lhs, rhs Value, op string) *Expression {
	return &Expression{Line: line, LHS: lhs, RHS: rhs, op: op}
}

func (e *Expression) value() {}

func (e *Expression) resolve(ctx *LocalContext) (ValType, error) {
	if e.typ != "" {
		return e.typ, nil
	}
	lt, err := e.LHS.resolve(ctx)
	if err != nil {
		return "", err
	}
	rt, err := e.RHS.resolve(ctx)
	if err != nil {
		return "", err
	}
	if lt == "" || rt == "" {
		return "", errors.VoidExpression(e.Line)
	}
	if lt != rt {
		return "", errors.TypeMismatch(e.Line)
	}
	if lt == F32 {
		if stripped := strings.TrimSuffix(strings.TrimSuffix(e.op, "_s"), "_u"); stripped != e.op {
			e.op = stripped
			if e.op == "rem" {
				return "", errors.FloatRem(e.Line)
			}
		}
	}
	e.typ = lt
	return e.typ, nil
}

func (e *Expression) checkUse(ctx *LocalContext) error {
	if err := e.LHS.checkUse(ctx); err != nil {
		return err
	}
	return e.RHS.checkUse(ctx)
}

func (e *Expression) emit(ctx *LocalContext, depth int) []string {
	instrs := e.LHS.emit(ctx, depth)
	instrs = append(instrs, e.RHS.emit(ctx, depth)...)
	return append(instrs, indent(depth, string(e.typ)+"."+e.op))
}

// readValue is the intrinsic behind the read command: a bare call to
// the typed read import. It replaces the pseudo function call the read
// lowering would otherwise have to special-case.
type readValue struct {
	typ ValType
}

func (r *readValue) value() {}

func (r *readValue) resolve(*LocalContext) (ValType, error) { return r.typ, nil }

func (r *readValue) checkUse(*LocalContext) error { return nil }

func (r *readValue) emit(_ *LocalContext, depth int) []string {
	return []string{indent(depth, "call $~read_"+string(r.typ))}
}
