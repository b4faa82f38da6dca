package ir

import (
	"strings"

	"github.com/p-maje/inz-wasm-compiler/errors"
)

// Module is a parsed program: ordered array declarations and ordered
// functions, one of them named main.
type Module struct {
	Arrays    []*Array
	Functions []*Function
}

func NewModule(arrays []*Array, functions []*Function) *Module {
	return &Module{Arrays: arrays, Functions: functions}
}

// moduleHeader is the fixed boilerplate every compiled module starts
// with: the overloaded write import, the typed read imports and one
// page of linear memory.
var moduleHeader = []string{
	"(module",
	tab + `(func $~write_i32 (import "imports" "write") (param i32))`,
	tab + `(func $~read_i32 (import "imports" "readInt") (result i32))`,
	tab + `(func $~write_f32 (import "imports" "write") (param f32))`,
	tab + `(func $~read_f32 (import "imports" "readFloat") (result f32))`,
	tab + "(memory 1)",
}

// Generate resolves the array layout and function table into a fresh
// global context, emits every function in declaration order and exports
// main. It returns the complete WAT module text.
func (m *Module) Generate() (string, error) {
	global, err := NewGlobalContext(m.Functions, m.Arrays)
	if err != nil {
		return "", err
	}
	if _, ok := global.functions["main"]; !ok {
		return "", errors.NoMain()
	}

	lines := append([]string(nil), moduleHeader...)
	for _, fn := range m.Functions {
		body, err := fn.Generate(global)
		if err != nil {
			return "", err
		}
		lines = append(lines, body...)
	}
	lines = append(lines, tab+`(export "main" (func $main))`, ")")
	return strings.Join(lines, "\n"), nil
}
