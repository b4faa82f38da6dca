// Package parser builds the compiler's node graph from a token stream.
//
// The grammar: an optional arrays section, then function definitions
// with with-prefixed parameter lists, brace-delimited blocks that open
// with local declarations, and read/write/return/if/else/while/for
// statements. Any violation fails with a line-numbered syntax error.
package parser

import (
	"strconv"

	"github.com/p-maje/inz-wasm-compiler/compiler/internal/ir"
	"github.com/p-maje/inz-wasm-compiler/compiler/internal/token"
	"github.com/p-maje/inz-wasm-compiler/errors"
)

var keywords = map[string]bool{
	"arrays": true, "function": true, "with": true,
	"int": true, "float": true,
	"read": true, "write": true, "return": true,
	"if": true, "else": true, "while": true,
	"for": true, "from": true, "to": true, "downto": true,
}

// binaryOps maps source arithmetic operators to their signed opcode
// names; the expression node strips the suffix for float operands.
var binaryOps = map[string]string{
	"+": "add", "-": "sub", "*": "mul", "/": "div_s", "%": "rem_s",
}

var compareOps = map[string]string{
	"==": "eq", "!=": "ne",
	"<": "lt_s", ">": "gt_s", "<=": "le_s", ">=": "ge_s",
}

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream into a module.
func (p *Parser) Parse() (*ir.Module, error) {
	var arrays []*ir.Array
	if t := p.peek(); t != nil && t.Value == "arrays" {
		a, err := p.parseArrays()
		if err != nil {
			return nil, err
		}
		arrays = a
	}

	var functions []*ir.Function
	for p.peek() != nil {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		functions = append(functions, fn)
	}
	if len(functions) == 0 {
		return nil, errors.Syntax(p.line(), "Expected a function definition")
	}
	return ir.NewModule(arrays, functions), nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

// line is the best line number for an error at the current position.
func (p *Parser) line() int {
	if t := p.peek(); t != nil {
		return t.Line
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Line
	}
	return 0
}

func (p *Parser) expect(value string) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, errors.Syntax(p.line(), "Unexpected end of input, expected '%s'", value)
	}
	if t.Value != value {
		return nil, errors.Syntax(t.Line, "Expected '%s', got '%s'", value, t.Value)
	}
	return t, nil
}

// accept consumes the next token when it matches value.
func (p *Parser) accept(value string) bool {
	if t := p.peek(); t != nil && t.Value == value {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expectIdent() (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, errors.Syntax(p.line(), "Unexpected end of input, expected identifier")
	}
	if t.Type != token.Ident || keywords[t.Value] {
		return nil, errors.Syntax(t.Line, "Expected identifier, got '%s'", t.Value)
	}
	return t, nil
}

func (p *Parser) parseType() (ir.ValType, error) {
	t := p.next()
	if t == nil {
		return "", errors.Syntax(p.line(), "Unexpected end of input, expected type")
	}
	switch t.Value {
	case "int":
		return ir.I32, nil
	case "float":
		return ir.F32, nil
	}
	return "", errors.Syntax(t.Line, "Expected 'int' or 'float', got '%s'", t.Value)
}

// parseArrays reads the arrays section: `arrays { int a[3]; ... }`.
func (p *Parser) parseArrays() ([]*ir.Array, error) {
	if _, err := p.expect("arrays"); err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	var arrays []*ir.Array
	for !p.accept("}") {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("["); err != nil {
			return nil, err
		}
		size, err := p.parseIntLit()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		arrays = append(arrays, ir.NewArray(name.Line, name.Value, typ, size))
	}
	return arrays, nil
}

func (p *Parser) parseIntLit() (int, error) {
	t := p.next()
	if t == nil {
		return 0, errors.Syntax(p.line(), "Unexpected end of input, expected number")
	}
	if t.Type != token.Int {
		return 0, errors.Syntax(t.Line, "Expected number, got '%s'", t.Value)
	}
	v, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, errors.Syntax(t.Line, "Number '%s' out of range", t.Value)
	}
	return v, nil
}

// parseFunction reads one definition:
// `function name with int a, float b : int { ... }`.
func (p *Parser) parseFunction() (*ir.Function, error) {
	if _, err := p.expect("function"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var params []*ir.Local
	if p.accept("with") {
		for {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			pn, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			params = append(params, ir.NewTypedLocal(pn.Line, pn.Value, typ))
			if !p.accept(",") {
				break
			}
		}
	}

	var returnType ir.ValType
	if p.accept(":") {
		rt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		returnType = rt
	}

	if _, err := p.expect("{"); err != nil {
		return nil, err
	}

	var locals []*ir.Local
	for {
		t := p.peek()
		if t == nil || (t.Value != "int" && t.Value != "float") {
			break
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ln, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		locals = append(locals, ir.NewTypedLocal(ln.Line, ln.Value, typ))
	}

	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return ir.NewFunction(name.Line, name.Value, params, locals, body, returnType), nil
}

// parseBlock reads a brace-delimited statement list (no declarations;
// those only open a function body).
func (p *Parser) parseBlock() ([]ir.Command, error) {
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseStatements() ([]ir.Command, error) {
	var cmds []ir.Command
	for {
		t := p.peek()
		if t == nil || t.Value == "}" {
			return cmds, nil
		}
		cmd, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
}

func (p *Parser) parseStatement() (ir.Command, error) {
	t := p.peek()
	switch t.Value {
	case "read":
		return p.parseRead()
	case "write":
		return p.parseWrite()
	case "return":
		return p.parseReturn()
	case "if":
		return p.parseIf()
	case "while":
		return p.parseWhile()
	case "for":
		return p.parseFor()
	}
	if t.Type == token.Ident && !keywords[t.Value] {
		return p.parseAssignOrCall()
	}
	return nil, errors.Syntax(t.Line, "Syntax error: unexpected '%s'", t.Value)
}

func (p *Parser) parseRead() (ir.Command, error) {
	kw := p.next()
	target, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return ir.NewRead(kw.Line, target), nil
}

func (p *Parser) parseWrite() (ir.Command, error) {
	kw := p.next()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return ir.NewWrite(kw.Line, value), nil
}

func (p *Parser) parseReturn() (ir.Command, error) {
	kw := p.next()
	if p.accept(";") {
		return ir.NewReturn(kw.Line, nil), nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return ir.NewReturn(kw.Line, value), nil
}

func (p *Parser) parseIf() (ir.Command, error) {
	kw := p.next()
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els []ir.Command
	if p.accept("else") {
		els, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return ir.NewIf(kw.Line, cond, then, els), nil
}

func (p *Parser) parseWhile() (ir.Command, error) {
	kw := p.next()
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ir.NewWhile(kw.Line, cond, body), nil
}

func (p *Parser) parseFor() (ir.Command, error) {
	kw := p.next()
	iter, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("from"); err != nil {
		return nil, err
	}
	start, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	dir := ir.Up
	switch d := p.next(); {
	case d == nil:
		return nil, errors.Syntax(p.line(), "Unexpected end of input, expected 'to' or 'downto'")
	case d.Value == "to":
	case d.Value == "downto":
		dir = ir.Down
	default:
		return nil, errors.Syntax(d.Line, "Expected 'to' or 'downto', got '%s'", d.Value)
	}

	stop, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ir.NewFor(kw.Line, iter.Value, start, stop, dir, body), nil
}

// parseAssignOrCall disambiguates statements opening with an
// identifier: `x = ...`, `a[i] = ...` or `f(...)`.
func (p *Parser) parseAssignOrCall() (ir.Command, error) {
	name := p.next()

	if p.accept("(") {
		call, err := p.parseCallArgs(name)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		return ir.NewCall(name.Line, call), nil
	}

	var target ir.Storable = ir.NewLocal(name.Line, name.Value)
	if p.accept("[") {
		index, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		target = ir.NewArrayValue(name.Line, name.Value, index)
	}

	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return ir.NewAssign(name.Line, target, value), nil
}

// parseTarget reads a store destination: a local or an array element.
func (p *Parser) parseTarget() (ir.Storable, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.accept("[") {
		index, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		return ir.NewArrayValue(name.Line, name.Value, index), nil
	}
	return ir.NewLocal(name.Line, name.Value), nil
}

// parseExpression reads a value or a single binary operation.
func (p *Parser) parseExpression() (ir.Value, error) {
	lhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t == nil {
		return lhs, nil
	}
	op, ok := binaryOps[t.Value]
	if !ok {
		return lhs, nil
	}
	p.next()
	rhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return ir.NewExpression(t.Line, lhs, rhs, op), nil
}

func (p *Parser) parseCondition() (*ir.Expression, error) {
	lhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	t := p.next()
	if t == nil {
		return nil, errors.Syntax(p.line(), "Unexpected end of input, expected comparison")
	}
	op, ok := compareOps[t.Value]
	if !ok {
		return nil, errors.Syntax(t.Line, "Expected comparison, got '%s'", t.Value)
	}
	rhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return ir.NewExpression(t.Line, lhs, rhs, op), nil
}

func (p *Parser) parseValue() (ir.Value, error) {
	t := p.next()
	if t == nil {
		return nil, errors.Syntax(p.line(), "Unexpected end of input, expected value")
	}
	switch t.Type {
	case token.Int:
		v, err := strconv.ParseInt(t.Value, 10, 32)
		if err != nil {
			return nil, errors.Syntax(t.Line, "Number '%s' out of range", t.Value)
		}
		return ir.NewIntConst(t.Line, int32(v)), nil
	case token.Float:
		v, err := strconv.ParseFloat(t.Value, 32)
		if err != nil {
			return nil, errors.Syntax(t.Line, "Number '%s' out of range", t.Value)
		}
		return ir.NewFloatConst(t.Line, float32(v)), nil
	case token.Ident:
		if keywords[t.Value] {
			return nil, errors.Syntax(t.Line, "Syntax error: unexpected '%s'", t.Value)
		}
		if p.accept("(") {
			return p.parseCallArgs(t)
		}
		if p.accept("[") {
			index, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			return ir.NewArrayValue(t.Line, t.Value, index), nil
		}
		return ir.NewLocal(t.Line, t.Value), nil
	}
	return nil, errors.Syntax(t.Line, "Syntax error: unexpected '%s'", t.Value)
}

// parseCallArgs reads the argument list after the opening paren.
func (p *Parser) parseCallArgs(name *token.Token) (*ir.FunctionCall, error) {
	var args []ir.Value
	if !p.accept(")") {
		for {
			arg, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.accept(")") {
				break
			}
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	return ir.NewFunctionCall(name.Line, name.Value, args), nil
}
