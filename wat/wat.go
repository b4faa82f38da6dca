package wat

import (
	"github.com/p-maje/inz-wasm-compiler/wat/internal/ast"
	"github.com/p-maje/inz-wasm-compiler/wat/internal/encoder"
	"github.com/p-maje/inz-wasm-compiler/wat/internal/parser"
	"github.com/p-maje/inz-wasm-compiler/wat/internal/token"
)

type options struct {
	uniqueImportNames bool
}

type Option func(*options)

// UniqueImportNames renames imports that share a module/name pair by
// appending the type of their first parameter (or result), e.g. two
// "write" imports become "write_i32" and "write_f32". Hosts that key
// exported functions by name alone cannot satisfy an overloaded
// import; this option makes such modules instantiable.
func UniqueImportNames() Option {
	return func(o *options) {
		o.uniqueImportNames = true
	}
}

func Compile(source string, opts ...Option) ([]byte, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	mod, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if o.uniqueImportNames {
		renameCollidingImports(mod)
	}
	return encoder.Encode(mod), nil
}

func renameCollidingImports(m *ast.Module) {
	seen := make(map[string]int)
	for _, imp := range m.Imports {
		seen[imp.Module+"\x00"+imp.Name]++
	}
	for i, imp := range m.Imports {
		if seen[imp.Module+"\x00"+imp.Name] < 2 {
			continue
		}
		ft := m.Types[imp.TypeIdx]
		suffix := ""
		if len(ft.Params) > 0 {
			suffix = ft.Params[0].Name()
		} else if len(ft.Results) > 0 {
			suffix = ft.Results[0].Name()
		}
		if suffix != "" {
			m.Imports[i].Name = imp.Name + "_" + suffix
		}
	}
}
