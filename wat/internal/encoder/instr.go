package encoder

import (
	"github.com/p-maje/inz-wasm-compiler/wat/internal/ast"
)

func encodeInstr(buf *Buffer, instr ast.Instr) {
	buf.AppendByte(instr.Opcode)
	switch imm := instr.Imm.(type) {
	case nil:
	case byte:
		buf.AppendByte(imm)
	case uint32:
		buf.WriteU32(imm)
	case int32:
		buf.WriteI32(imm)
	case float32:
		buf.WriteF32(imm)
	case ast.Memarg:
		buf.WriteU32(imm.Align)
		buf.WriteU32(imm.Offset)
	}
}
