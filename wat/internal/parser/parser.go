// Package parser builds an ast.Module from a WAT token stream.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/p-maje/inz-wasm-compiler/wat/internal/ast"
	"github.com/p-maje/inz-wasm-compiler/wat/internal/token"
)

type Parser struct {
	mod      *ast.Module
	funcMap  map[string]uint32
	localMap map[string]uint32
	tokens   []token.Token
	labels   []string
	pos      int
}

func New(tokens []token.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		funcMap: make(map[string]uint32),
	}
}

func (p *Parser) Parse() (*ast.Module, error) {
	p.mod = &ast.Module{}
	p.scanFuncNames()
	if err := p.parseModule(); err != nil {
		return nil, err
	}
	return p.mod, nil
}

// scanFuncNames assigns every named function its index before parsing,
// so calls may reference functions declared later. Imported functions
// occupy the front of the index space.
func (p *Parser) scanFuncNames() {
	var imports, defined []string
	for i := 0; i+2 < len(p.tokens); i++ {
		if p.tokens[i].Type != token.LParen || p.tokens[i+1].Value != "func" {
			continue
		}
		name := p.tokens[i+2]
		if name.Type != token.Ident || !strings.HasPrefix(name.Value, "$") {
			continue
		}
		if i+4 < len(p.tokens) && p.tokens[i+3].Type == token.LParen && p.tokens[i+4].Value == "import" {
			imports = append(imports, name.Value)
		} else {
			defined = append(defined, name.Value)
		}
	}
	idx := uint32(0)
	for _, name := range imports {
		p.funcMap[name] = idx
		idx++
	}
	for _, name := range defined {
		p.funcMap[name] = idx
		idx++
	}
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

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if t.Type != typ {
		return nil, fmt.Errorf("line %d: expected %v, got %q", t.Line, typ, t.Value)
	}
	return t, nil
}

func (p *Parser) expectKeyword(kw string) error {
	t, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if t.Value != kw {
		return fmt.Errorf("line %d: expected %q, got %q", t.Line, kw, t.Value)
	}
	return nil
}

func (p *Parser) pushLabel(name string) {
	p.labels = append(p.labels, name)
}

func (p *Parser) popLabel() {
	if len(p.labels) > 0 {
		p.labels = p.labels[:len(p.labels)-1]
	}
}

// resolveLabel returns the relative branch depth of a named label,
// counted from the innermost enclosing block outward.
func (p *Parser) resolveLabel(name string) (uint32, bool) {
	for i := len(p.labels) - 1; i >= 0; i-- {
		if p.labels[i] == name {
			return uint32(len(p.labels) - 1 - i), true
		}
	}
	return 0, false
}

func (p *Parser) parseValType() (ast.ValType, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return 0, err
	}
	switch t.Value {
	case "i32":
		return ast.I32, nil
	case "f32":
		return ast.F32, nil
	default:
		return 0, fmt.Errorf("line %d: unknown value type %q", t.Line, t.Value)
	}
}

// parseFuncIdx resolves $name through the function index space, or
// accepts a raw numeric index.
func (p *Parser) parseFuncIdx() (uint32, error) {
	t := p.next()
	if t == nil {
		return 0, fmt.Errorf("unexpected end of input, expected function index")
	}
	if t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		idx, ok := p.funcMap[t.Value]
		if !ok {
			return 0, fmt.Errorf("line %d: unknown function %s", t.Line, t.Value)
		}
		return idx, nil
	}
	if t.Type == token.Number {
		n, err := strconv.ParseUint(t.Value, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("line %d: bad function index %q", t.Line, t.Value)
		}
		return uint32(n), nil
	}
	return 0, fmt.Errorf("line %d: expected function index, got %q", t.Line, t.Value)
}
