package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/p-maje/inz-wasm-compiler/wat/internal/ast"
	"github.com/p-maje/inz-wasm-compiler/wat/internal/token"
)

func (p *Parser) parseModule() error {
	if _, err := p.expect(token.LParen); err != nil {
		return err
	}
	if err := p.expectKeyword("module"); err != nil {
		return err
	}

	for {
		t := p.peek()
		if t == nil {
			return fmt.Errorf("unexpected end of input, module not closed")
		}
		if t.Type == token.RParen {
			p.next()
			return nil
		}
		if _, err := p.expect(token.LParen); err != nil {
			return err
		}
		kw, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		switch kw.Value {
		case "func":
			err = p.parseFunc()
		case "memory":
			err = p.parseMemory()
		case "export":
			err = p.parseExport()
		default:
			err = fmt.Errorf("line %d: unsupported module field %q", kw.Line, kw.Value)
		}
		if err != nil {
			return err
		}
	}
}

// parseFunc handles both defined functions and inline-import functions
// of the form (func $name (import "mod" "name") (param ...) (result ...)).
func (p *Parser) parseFunc() error {
	if t := p.peek(); t != nil && t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		p.next()
	}

	var (
		imported   bool
		impModule  string
		impName    string
		params     []ast.ValType
		results    []ast.ValType
		locals     []ast.ValType
		paramNames []string
		localNames []string
	)

	// Signature fields come first, in order: import, params, result, locals.
signature:
	for {
		t := p.peek()
		if t == nil {
			return fmt.Errorf("unexpected end of input in function")
		}
		if t.Type != token.LParen || p.pos+1 >= len(p.tokens) {
			break
		}
		switch p.tokens[p.pos+1].Value {
		case "import":
			p.next()
			p.next()
			mod, err := p.expect(token.String)
			if err != nil {
				return err
			}
			name, err := p.expect(token.String)
			if err != nil {
				return err
			}
			if _, err := p.expect(token.RParen); err != nil {
				return err
			}
			imported, impModule, impName = true, mod.Value, name.Value
		case "param":
			p.next()
			p.next()
			names, types, err := p.parseTypedFields()
			if err != nil {
				return err
			}
			paramNames = append(paramNames, names...)
			params = append(params, types...)
		case "result":
			p.next()
			p.next()
			for p.peek() != nil && p.peek().Type != token.RParen {
				vt, err := p.parseValType()
				if err != nil {
					return err
				}
				results = append(results, vt)
			}
			p.next()
		case "local":
			p.next()
			p.next()
			names, types, err := p.parseTypedFields()
			if err != nil {
				return err
			}
			localNames = append(localNames, names...)
			locals = append(locals, types...)
		default:
			break signature
		}
	}

	typeIdx := p.mod.FindOrAddType(ast.FuncType{Params: params, Results: results})

	if imported {
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		p.mod.Imports = append(p.mod.Imports, ast.Import{
			Module:  impModule,
			Name:    impName,
			TypeIdx: typeIdx,
		})
		return nil
	}

	p.localMap = make(map[string]uint32)
	for i, name := range paramNames {
		if name != "" {
			p.localMap[name] = uint32(i)
		}
	}
	for i, name := range localNames {
		if name != "" {
			p.localMap[name] = uint32(len(paramNames) + i)
		}
	}

	body, err := p.parseBody()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	p.mod.Funcs = append(p.mod.Funcs, ast.Func{
		TypeIdx: typeIdx,
		Locals:  locals,
		Body:    body,
	})
	return nil
}

// parseTypedFields reads the interior of a (param ...) or (local ...)
// group: either one $name followed by its type, or a bare list of
// types. Returns parallel name and type slices.
func (p *Parser) parseTypedFields() ([]string, []ast.ValType, error) {
	var names []string
	var types []ast.ValType

	if t := p.peek(); t != nil && t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		p.next()
		vt, err := p.parseValType()
		if err != nil {
			return nil, nil, err
		}
		names = append(names, t.Value)
		types = append(types, vt)
	} else {
		for p.peek() != nil && p.peek().Type != token.RParen {
			vt, err := p.parseValType()
			if err != nil {
				return nil, nil, err
			}
			names = append(names, "")
			types = append(types, vt)
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, nil, err
	}
	return names, types, nil
}

func (p *Parser) parseMemory() error {
	t, err := p.expect(token.Number)
	if err != nil {
		return err
	}
	pages, err := strconv.ParseUint(t.Value, 10, 32)
	if err != nil {
		return fmt.Errorf("line %d: bad memory size %q", t.Line, t.Value)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	p.mod.MemPages = uint32(pages)
	p.mod.HasMemory = true
	return nil
}

func (p *Parser) parseExport() error {
	name, err := p.expect(token.String)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return err
	}
	if err := p.expectKeyword("func"); err != nil {
		return err
	}
	idx, err := p.parseFuncIdx()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	p.mod.Exports = append(p.mod.Exports, ast.Export{Name: name.Value, FuncIdx: idx})
	return nil
}
