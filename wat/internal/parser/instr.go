package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/p-maje/inz-wasm-compiler/wat/internal/ast"
	"github.com/p-maje/inz-wasm-compiler/wat/internal/token"
)

const (
	opBlock    = 0x02
	opLoop     = 0x03
	opIf       = 0x04
	opElse     = 0x05
	opEnd      = 0x0B
	opBr       = 0x0C
	opBrIf     = 0x0D
	opReturn   = 0x0F
	opCall     = 0x10
	opDrop     = 0x1A
	opLocalGet = 0x20
	opLocalSet = 0x21
	opI32Load  = 0x28
	opF32Load  = 0x2A
	opI32Store = 0x36
	opF32Store = 0x38
	opI32Const = 0x41
	opF32Const = 0x43

	blockTypeEmpty = 0x40
)

// plainOps are instructions with no immediate.
var plainOps = map[string]byte{
	"return": opReturn,
	"drop":   opDrop,

	"i32.eqz":   0x45,
	"i32.eq":    0x46,
	"i32.ne":    0x47,
	"i32.lt_s":  0x48,
	"i32.lt_u":  0x49,
	"i32.gt_s":  0x4A,
	"i32.gt_u":  0x4B,
	"i32.le_s":  0x4C,
	"i32.le_u":  0x4D,
	"i32.ge_s":  0x4E,
	"i32.ge_u":  0x4F,
	"i32.add":   0x6A,
	"i32.sub":   0x6B,
	"i32.mul":   0x6C,
	"i32.div_s": 0x6D,
	"i32.div_u": 0x6E,
	"i32.rem_s": 0x6F,
	"i32.rem_u": 0x70,

	"f32.eq":  0x5B,
	"f32.ne":  0x5C,
	"f32.lt":  0x5D,
	"f32.gt":  0x5E,
	"f32.le":  0x5F,
	"f32.ge":  0x60,
	"f32.add": 0x92,
	"f32.sub": 0x93,
	"f32.mul": 0x94,
	"f32.div": 0x95,
}

// memOps load and store with the natural 4-byte alignment.
var memOps = map[string]byte{
	"i32.load":  opI32Load,
	"f32.load":  opF32Load,
	"i32.store": opI32Store,
	"f32.store": opF32Store,
}

// parseBody reads instructions until the closing paren of the function,
// which is left unconsumed.
func (p *Parser) parseBody() ([]ast.Instr, error) {
	var body []ast.Instr
	for {
		t := p.peek()
		if t == nil {
			return nil, fmt.Errorf("unexpected end of input in function body")
		}
		if t.Type == token.RParen {
			return body, nil
		}
		instrs, err := p.parseInstr()
		if err != nil {
			return nil, err
		}
		body = append(body, instrs...)
	}
}

func (p *Parser) parseInstr() ([]ast.Instr, error) {
	t := p.next()

	// Folded block and loop: the label scopes over the nested
	// instructions and closes at the matching paren.
	if t.Type == token.LParen {
		kw, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		var op byte
		switch kw.Value {
		case "block":
			op = opBlock
		case "loop":
			op = opLoop
		default:
			return nil, fmt.Errorf("line %d: unsupported folded instruction %q", kw.Line, kw.Value)
		}

		label := ""
		if n := p.peek(); n != nil && n.Type == token.Ident && strings.HasPrefix(n.Value, "$") {
			label = n.Value
			p.next()
		}
		p.pushLabel(label)

		instrs := []ast.Instr{{Opcode: op, Imm: byte(blockTypeEmpty)}}
		for {
			n := p.peek()
			if n == nil {
				return nil, fmt.Errorf("unexpected end of input in %s", kw.Value)
			}
			if n.Type == token.RParen {
				p.next()
				break
			}
			nested, err := p.parseInstr()
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, nested...)
		}
		p.popLabel()
		return append(instrs, ast.Instr{Opcode: opEnd}), nil
	}

	if t.Type != token.Ident {
		return nil, fmt.Errorf("line %d: expected instruction, got %q", t.Line, t.Value)
	}

	switch t.Value {
	case "i32.const":
		n, err := p.expect(token.Number)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseInt(n.Value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad i32 constant %q", n.Line, n.Value)
		}
		return []ast.Instr{{Opcode: opI32Const, Imm: int32(v)}}, nil

	case "f32.const":
		n, err := p.expect(token.Number)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(n.Value, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad f32 constant %q", n.Line, n.Value)
		}
		return []ast.Instr{{Opcode: opF32Const, Imm: float32(v)}}, nil

	case "local.get", "local.set":
		op := byte(opLocalGet)
		if t.Value == "local.set" {
			op = opLocalSet
		}
		idx, err := p.parseLocalIdx()
		if err != nil {
			return nil, err
		}
		return []ast.Instr{{Opcode: op, Imm: idx}}, nil

	case "call":
		idx, err := p.parseFuncIdx()
		if err != nil {
			return nil, err
		}
		return []ast.Instr{{Opcode: opCall, Imm: idx}}, nil

	case "br", "br_if":
		op := byte(opBr)
		if t.Value == "br_if" {
			op = opBrIf
		}
		depth, err := p.parseBranchTarget()
		if err != nil {
			return nil, err
		}
		return []ast.Instr{{Opcode: op, Imm: depth}}, nil

	case "if":
		p.pushLabel("")
		return []ast.Instr{{Opcode: opIf, Imm: byte(blockTypeEmpty)}}, nil

	case "else":
		return []ast.Instr{{Opcode: opElse}}, nil

	case "end":
		p.popLabel()
		return []ast.Instr{{Opcode: opEnd}}, nil
	}

	if op, ok := memOps[t.Value]; ok {
		return []ast.Instr{{Opcode: op, Imm: ast.Memarg{Align: 2, Offset: 0}}}, nil
	}
	if op, ok := plainOps[t.Value]; ok {
		return []ast.Instr{{Opcode: op}}, nil
	}
	return nil, fmt.Errorf("line %d: unknown instruction %q", t.Line, t.Value)
}

func (p *Parser) parseLocalIdx() (uint32, error) {
	t := p.next()
	if t == nil {
		return 0, fmt.Errorf("unexpected end of input, expected local index")
	}
	if t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		idx, ok := p.localMap[t.Value]
		if !ok {
			return 0, fmt.Errorf("line %d: unknown local %s", t.Line, t.Value)
		}
		return idx, nil
	}
	if t.Type == token.Number {
		n, err := strconv.ParseUint(t.Value, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("line %d: bad local index %q", t.Line, t.Value)
		}
		return uint32(n), nil
	}
	return 0, fmt.Errorf("line %d: expected local index, got %q", t.Line, t.Value)
}

func (p *Parser) parseBranchTarget() (uint32, error) {
	t := p.next()
	if t == nil {
		return 0, fmt.Errorf("unexpected end of input, expected branch target")
	}
	if t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		depth, ok := p.resolveLabel(t.Value)
		if !ok {
			return 0, fmt.Errorf("line %d: unknown label %s", t.Line, t.Value)
		}
		return depth, nil
	}
	if t.Type == token.Number {
		n, err := strconv.ParseUint(t.Value, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("line %d: bad branch depth %q", t.Line, t.Value)
		}
		return uint32(n), nil
	}
	return 0, fmt.Errorf("line %d: expected branch target, got %q", t.Line, t.Value)
}
