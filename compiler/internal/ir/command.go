package ir

import (
	"fmt"

	"github.com/p-maje/inz-wasm-compiler/errors"
)

// Command is a statement node. check validates the node and annotates
// its values during the check phase; emit produces instruction lines
// leaving nothing on the stack.
type Command interface {
	command()
	check(ctx *LocalContext) error
	emit(ctx *LocalContext, depth int) []string
}

// checkBody checks a statement list, dropping the siblings that follow
// a return; they would never execute and are never emitted.
func checkBody(ctx *LocalContext, cmds []Command) error {
	for _, cmd := range cmds {
		if err := cmd.check(ctx); err != nil {
			return err
		}
		if _, ok := cmd.(*Return); ok {
			break
		}
	}
	return nil
}

func emitBody(ctx *LocalContext, cmds []Command, depth int) []string {
	var instrs []string
	for _, cmd := range cmds {
		instrs = append(instrs, cmd.emit(ctx, depth)...)
		if _, ok := cmd.(*Return); ok {
			break
		}
	}
	return instrs
}

// Write prints a value through the typed write import.
type Write struct {
	Value Value
	Line  int
	typ   ValType
}

func NewWrite(line int, value Value) *Write {
	return &Write{Line: line, Value: value}
}

func (w *Write) command() {}

func (w *Write) check(ctx *LocalContext) error {
	t, err := w.Value.resolve(ctx)
	if err != nil {
		return err
	}
	if t == "" {
		return errors.VoidExpression(w.Line)
	}
	w.typ = t
	return w.Value.checkUse(ctx)
}

func (w *Write) emit(ctx *LocalContext, depth int) []string {
	return append(w.Value.emit(ctx, depth), indent(depth, "call $~write_"+string(w.typ)))
}

// Read stores a value from the typed read import into its target.
// Reading into an active iterator is an assignment to it and fails.
type Read struct {
	Target Storable
	Line   int
	src    *readValue
}

func NewRead(line int, target Storable) *Read {
	return &Read{Line: line, Target: target}
}

func (r *Read) command() {}

func (r *Read) check(ctx *LocalContext) error {
	t, err := r.Target.resolve(ctx)
	if err != nil {
		return err
	}
	if l, ok := r.Target.(*Local); ok && ctx.isActiveIterator(l.Name) {
		return errors.IteratorAssignment(r.Line)
	}
	if err := r.Target.checkTarget(ctx); err != nil {
		return err
	}
	r.Target.markStored(ctx)
	r.src = &readValue{typ: t}
	return nil
}

func (r *Read) emit(ctx *LocalContext, depth int) []string {
	return r.Target.emitStore(ctx, depth, r.src)
}

// Assign stores a value into a local or array element. Target and value
// types must match; an active iterator is off-limits except to the
// for-loop lowering itself, which reuses Assign for iterator init and
// update.
type Assign struct {
	Target Storable
	Value  Value
	Line   int
	loopOp bool
}

func NewAssign(line int, target Storable, value Value) *Assign {
	return &Assign{Line: line, Target: target, Value: value}
}

func newLoopAssign(line int, target Storable, value Value) *Assign {
	return &Assign{Line: line, Target: target, Value: value, loopOp: true}
}

func (a *Assign) command() {}

func (a *Assign) check(ctx *LocalContext) error {
	tt, err := a.Target.resolve(ctx)
	if err != nil {
		return err
	}
	vt, err := a.Value.resolve(ctx)
	if err != nil {
		return err
	}
	if tt != vt {
		return errors.TypeMismatch(a.Line)
	}
	if !a.loopOp {
		if l, ok := a.Target.(*Local); ok && ctx.isActiveIterator(l.Name) {
			return errors.IteratorAssignment(a.Line)
		}
	}
	if err := a.Target.checkTarget(ctx); err != nil {
		return err
	}
	// The store begins before the value loads, so `x = x + 1` marks x
	// initialized ahead of the right-hand side's use check.
	a.Target.markStored(ctx)
	return a.Value.checkUse(ctx)
}

func (a *Assign) emit(ctx *LocalContext, depth int) []string {
	return a.Target.emitStore(ctx, depth, a.Value)
}

// Return leaves the current function, optionally with a value matching
// the declared result type. Sibling statements after it are dropped.
type Return struct {
	Value Value
	Line  int
}

func NewReturn(line int, value Value) *Return {
	return &Return{Line: line, Value: value}
}

func (r *Return) command() {}

func (r *Return) check(ctx *LocalContext) error {
	var vt ValType
	if r.Value != nil {
		t, err := r.Value.resolve(ctx)
		if err != nil {
			return err
		}
		vt = t
	}
	if ctx.fn.ReturnType != vt {
		return errors.ReturnTypeMismatch(r.Line, ctx.fn.Name, string(ctx.fn.ReturnType), string(vt))
	}
	if r.Value != nil {
		return r.Value.checkUse(ctx)
	}
	return nil
}

func (r *Return) emit(ctx *LocalContext, depth int) []string {
	var instrs []string
	if r.Value != nil {
		instrs = r.Value.emit(ctx, depth)
	}
	return append(instrs, indent(depth, "return"))
}

// Call invokes a function in statement position, dropping its result
// when the callee declares one.
type Call struct {
	Call *FunctionCall
	Line int
}

func NewCall(line int, call *FunctionCall) *Call {
	return &Call{Line: line, Call: call}
}

func (c *Call) command() {}

func (c *Call) check(ctx *LocalContext) error {
	return c.Call.checkUse(ctx)
}

func (c *Call) emit(ctx *LocalContext, depth int) []string {
	instrs := c.Call.emit(ctx, depth)
	if c.Call.fn.ReturnType != "" {
		instrs = append(instrs, indent(depth, "drop"))
	}
	return instrs
}

// If emits the condition, the then-branch and an optional else-branch
// as a structured if/else/end.
type If struct {
	Cond       *Expression
	Then, Else []Command
	Line       int
}

func NewIf(line int, cond *Expression, then, els []Command) *If {
	return &If{Line: line, Cond: cond, Then: then, Else: els}
}

func (i *If) command() {}

func (i *If) check(ctx *LocalContext) error {
	if _, err := i.Cond.resolve(ctx); err != nil {
		return err
	}
	if err := i.Cond.checkUse(ctx); err != nil {
		return err
	}
	if err := checkBody(ctx, i.Then); err != nil {
		return err
	}
	return checkBody(ctx, i.Else)
}

func (i *If) emit(ctx *LocalContext, depth int) []string {
	instrs := i.Cond.emit(ctx, depth)
	instrs = append(instrs, indent(depth, "if"))
	instrs = append(instrs, emitBody(ctx, i.Then, depth+1)...)
	if len(i.Else) > 0 {
		instrs = append(instrs, indent(depth, "else"))
		instrs = append(instrs, emitBody(ctx, i.Else, depth+1)...)
	}
	return append(instrs, indent(depth, "end"))
}

// inverseOp is the fixed comparison inversion table applied to a while
// condition at construction: the lowered loop branches out when the
// inverted condition holds.
var inverseOp = map[string]string{
	"eq":   "ne",
	"ne":   "eq",
	"lt_s": "ge_s",
	"ge_s": "lt_s",
	"gt_s": "le_s",
	"le_s": "gt_s",
}

// While lowers to a loop/block pair labeled by the current
// while-nesting depth: test the inverted condition, branch out on true,
// run the body, branch back.
type While struct {
	Cond *Expression
	Body []Command
	Line int
}

// NewWhile inverts the condition's comparison once, at construction.
func NewWhile(line int, cond *Expression, body []Command) *While {
	if inv, ok := inverseOp[cond.op]; ok {
		cond.op = inv
	}
	return &While{Line: line, Cond: cond, Body: body}
}

func (w *While) command() {}

func (w *While) check(ctx *LocalContext) error {
	if _, err := w.Cond.resolve(ctx); err != nil {
		return err
	}
	if err := w.Cond.checkUse(ctx); err != nil {
		return err
	}
	return checkBody(ctx, w.Body)
}

func (w *While) emit(ctx *LocalContext, depth int) []string {
	ctx.loopDepth++
	name := fmt.Sprintf("$~while%d", ctx.loopDepth)
	instrs := []string{indent(depth, "(loop "+name+" (block "+name+"~block")}
	instrs = append(instrs, w.Cond.emit(ctx, depth+1)...)
	instrs = append(instrs, indent(depth+1, "br_if "+name+"~block"))
	instrs = append(instrs, emitBody(ctx, w.Body, depth+1)...)
	instrs = append(instrs, indent(depth+1, "br "+name), indent(depth, "))"))
	ctx.loopDepth--
	return instrs
}

// Direction is a for loop's iteration direction.
type Direction int

const (
	Up Direction = iota
	Down
)

// For introduces an implicit i32 iterator and lowers to: store the
// start value, then a loop/block labeled by the iterator name that
// exits once the iterator passes the stop value, stepping by one each
// pass. The iterator leaves the active set on exit but stays declared
// as a function local.
type For struct {
	Iterator string
	Start    Value
	Stop     Value
	Body     []Command
	Dir      Direction
	Line     int

	// lowering pieces, materialized during check
	init *Assign
	test *Expression
	step *Assign
}

func NewFor(line int, iterator string, start, stop Value, dir Direction, body []Command) *For {
	return &For{Line: line, Iterator: iterator, Start: start, Stop: stop, Dir: dir, Body: body}
}

func (f *For) command() {}

func (f *For) check(ctx *LocalContext) error {
	if _, ok := ctx.locals[f.Iterator]; ok {
		return errors.IteratorShadowsLocal(f.Line, f.Iterator)
	}
	if ctx.isActiveIterator(f.Iterator) {
		return errors.IteratorShadowsIterator(f.Line, f.Iterator)
	}
	ctx.declareIterator(f.Iterator)

	iter := NewTypedLocal(f.Line, f.Iterator, I32)
	f.init = newLoopAssign(f.Line, iter, f.Start)
	if err := f.init.check(ctx); err != nil {
		return err
	}

	cmp := "gt_s"
	if f.Dir == Down {
		cmp = "lt_s"
	}
	f.test = NewExpression(f.Line, iter, f.Stop, cmp)
	if _, err := f.test.resolve(ctx); err != nil {
		return err
	}
	if err := f.test.checkUse(ctx); err != nil {
		return err
	}

	if err := checkBody(ctx, f.Body); err != nil {
		return err
	}

	op := "add"
	if f.Dir == Down {
		op = "sub"
	}
	f.step = newLoopAssign(f.Line, iter, NewExpression(f.Line, iter, NewIntConst(f.Line, 1), op))
	if err := f.step.check(ctx); err != nil {
		return err
	}

	ctx.deactivateIterator(f.Iterator)
	return nil
}

func (f *For) emit(ctx *LocalContext, depth int) []string {
	name := "$~" + f.Iterator
	instrs := f.init.emit(ctx, depth)
	instrs = append(instrs, indent(depth, "(loop "+name+" (block "+name+"~block"))
	instrs = append(instrs, f.test.emit(ctx, depth+1)...)
	instrs = append(instrs, indent(depth+1, "br_if "+name+"~block"))
	instrs = append(instrs, emitBody(ctx, f.Body, depth+1)...)
	instrs = append(instrs, f.step.emit(ctx, depth+1)...)
	instrs = append(instrs, indent(depth+1, "br "+name), indent(depth, "))"))
	return instrs
}
