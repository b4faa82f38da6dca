package compiler

import (
	"github.com/p-maje/inz-wasm-compiler/compiler/internal/parser"
	"github.com/p-maje/inz-wasm-compiler/compiler/internal/token"
)

// Compile translates a source program into WAT module text.
func Compile(source string) (string, error) {
	tokens, err := token.Tokenize(source)
	if err != nil {
		return "", err
	}
	p := parser.New(tokens)
	mod, err := p.Parse()
	if err != nil {
		return "", err
	}
	return mod.Generate()
}
