package ir

import (
	"strings"

	"github.com/p-maje/inz-wasm-compiler/errors"
)

// ValType is a WebAssembly value type. The source language maps int to
// i32 and float to f32.
type ValType string

const (
	I32 ValType = "i32"
	F32 ValType = "f32"
)

const tab = "  "

// numberSize is the byte width shared by both element types.
const numberSize = 4

func indent(depth int, instr string) string {
	return strings.Repeat(tab, depth) + instr
}

// Array is a program-wide array declaration occupying a fixed byte
// range of the module's linear memory.
type Array struct {
	Name  string
	Typ   ValType
	Size  int
	Line  int
	start int
}

func NewArray(line int, name string, typ ValType, size int) *Array {
	return &Array{Line: line, Name: name, Typ: typ, Size: size}
}

// StartPointer returns the array's byte offset into linear memory.
// Valid once the array has been through NewGlobalContext.
func (a *Array) StartPointer() int {
	return a.start
}

// GlobalContext holds one compilation's symbol tables. A fresh instance
// must be built per compilation; concurrent compilations must never
// share one.
type GlobalContext struct {
	functions map[string]*Function
	arrays    map[string]*Array
}

// NewGlobalContext builds the function table and resolves the array
// layout: arrays occupy consecutive byte ranges in declaration order,
// each starting at 4 times the summed sizes of its predecessors.
// Duplicate array or function names fail here.
func NewGlobalContext(functions []*Function, arrays []*Array) (*GlobalContext, error) {
	g := &GlobalContext{
		functions: make(map[string]*Function, len(functions)),
		arrays:    make(map[string]*Array, len(arrays)),
	}
	offset := 0
	for _, arr := range arrays {
		if _, ok := g.arrays[arr.Name]; ok {
			return nil, errors.RepeatedArray(arr.Line, arr.Name)
		}
		arr.start = offset
		offset += arr.Size * numberSize
		g.arrays[arr.Name] = arr
	}
	for _, fn := range functions {
		if _, ok := g.functions[fn.Name]; ok {
			return nil, errors.RepeatedFunction(fn.Line, fn.Name)
		}
		g.functions[fn.Name] = fn
	}
	return g, nil
}

// LocalContext holds one function's symbol state during code
// generation: declared locals, the set of iterator names ever
// introduced (they become implicit i32 locals), the subset currently
// active, and the while-nesting depth used for loop labels.
type LocalContext struct {
	global          *GlobalContext
	fn              *Function
	locals          map[string]*Local
	iterators       map[string]struct{}
	activeIterators map[string]struct{}
	iteratorOrder   []string
	loopDepth       int
}

func newLocalContext(global *GlobalContext, fn *Function) *LocalContext {
	return &LocalContext{
		global:          global,
		fn:              fn,
		locals:          make(map[string]*Local),
		iterators:       make(map[string]struct{}),
		activeIterators: make(map[string]struct{}),
	}
}

func (c *LocalContext) isActiveIterator(name string) bool {
	_, ok := c.activeIterators[name]
	return ok
}

// declareIterator introduces a loop iterator: it joins the active set
// for the loop's extent and stays a declared function local for good.
func (c *LocalContext) declareIterator(name string) {
	if _, ok := c.iterators[name]; !ok {
		c.iterators[name] = struct{}{}
		c.iteratorOrder = append(c.iteratorOrder, name)
	}
	c.activeIterators[name] = struct{}{}
}

func (c *LocalContext) deactivateIterator(name string) {
	delete(c.activeIterators, name)
}
