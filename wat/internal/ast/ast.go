// Package ast holds the module structure the assembler's parser builds
// and its encoder serializes.
package ast

type ValType byte

const (
	I32 ValType = 0x7F
	F32 ValType = 0x7D
)

// Name returns the text-format spelling of the type.
func (v ValType) Name() string {
	switch v {
	case I32:
		return "i32"
	case F32:
		return "f32"
	}
	return "unknown"
}

type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) Equal(other FuncType) bool {
	if len(ft.Params) != len(other.Params) || len(ft.Results) != len(other.Results) {
		return false
	}
	for i, p := range ft.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range ft.Results {
		if r != other.Results[i] {
			return false
		}
	}
	return true
}

// Import is a host function import. Imports precede defined functions
// in the function index space.
type Import struct {
	Module  string
	Name    string
	TypeIdx uint32
}

type Func struct {
	TypeIdx uint32
	Locals  []ValType
	Body    []Instr
}

type Export struct {
	Name    string
	FuncIdx uint32
}

type Module struct {
	Types     []FuncType
	Imports   []Import
	Funcs     []Func
	Exports   []Export
	MemPages  uint32
	HasMemory bool
}

// FindOrAddType returns the index of ft in the type section, appending
// it when new.
func (m *Module) FindOrAddType(ft FuncType) uint32 {
	for i, t := range m.Types {
		if t.Equal(ft) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}

// Instr is one instruction with its immediate: nil, uint32 (indices,
// branch depths), int32/float32 (constants), byte (block type) or
// Memarg (loads and stores).
type Instr struct {
	Imm    any
	Opcode byte
}

type Memarg struct {
	Align  uint32
	Offset uint32
}
