package ir

import (
	"strings"

	"github.com/p-maje/inz-wasm-compiler/errors"
)

// Function is one source function: ordered parameters, ordered local
// declarations, a statement body and an optional result type ("" for
// procedures).
type Function struct {
	Name       string
	Params     []*Local
	Locals     []*Local
	Body       []Command
	ReturnType ValType
	Line       int
}

func NewFunction(line int, name string, params, locals []*Local, body []Command, returnType ValType) *Function {
	return &Function{
		Line:       line,
		Name:       name,
		Params:     params,
		Locals:     locals,
		Body:       body,
		ReturnType: returnType,
	}
}

func (f *Function) declare(ctx *LocalContext, vars []*Local) error {
	for _, v := range vars {
		if _, ok := ctx.locals[v.Name]; ok {
			return errors.Redeclaration(v.Line, v.Name)
		}
		ctx.locals[v.Name] = v
	}
	return nil
}

// Generate builds a fresh local context, checks the body and emits the
// function's WAT lines, indented for module level. The header declares
// parameters (pre-initialized), the result, explicit locals, and the
// implicit i32 iterator locals collected during the check phase.
// Emission of the top-level body stops at its first return; a function
// with a declared result whose top level never returns fails.
func (f *Function) Generate(global *GlobalContext) ([]string, error) {
	ctx := newLocalContext(global, f)

	if err := f.declare(ctx, f.Params); err != nil {
		return nil, err
	}
	for _, p := range f.Params {
		p.initialized = true
	}
	if err := f.declare(ctx, f.Locals); err != nil {
		return nil, err
	}

	returned := false
	for _, cmd := range f.Body {
		if err := cmd.check(ctx); err != nil {
			return nil, err
		}
		if _, ok := cmd.(*Return); ok {
			returned = true
			break
		}
	}
	if !returned && f.ReturnType != "" {
		return nil, errors.MissingReturn(f.Line)
	}

	header := []string{"(func $" + f.Name}
	if len(f.Params) > 0 {
		parts := make([]string, len(f.Params))
		for i, p := range f.Params {
			parts[i] = "(param $" + p.Name + " " + string(p.typ) + ")"
		}
		header = append(header, tab+strings.Join(parts, " "))
	}
	if f.ReturnType != "" {
		header = append(header, tab+"(result "+string(f.ReturnType)+")")
	}
	if len(f.Locals) > 0 {
		parts := make([]string, len(f.Locals))
		for i, l := range f.Locals {
			parts[i] = "(local $" + l.Name + " " + string(l.typ) + ")"
		}
		header = append(header, tab+strings.Join(parts, " "))
	}
	if len(ctx.iteratorOrder) > 0 {
		parts := make([]string, len(ctx.iteratorOrder))
		for i, name := range ctx.iteratorOrder {
			parts[i] = "(local $" + name + " i32)"
		}
		header = append(header, tab+strings.Join(parts, " "))
	}

	lines := append(header, emitBody(ctx, f.Body, 1)...)
	lines = append(lines, ")")
	for i := range lines {
		lines[i] = tab + lines[i]
	}
	return lines, nil
}
