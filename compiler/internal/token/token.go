// Package token turns source text into a flat token stream with line
// numbers for diagnostics.
package token

import (
	"unicode"

	"github.com/p-maje/inz-wasm-compiler/errors"
)

type Type int

const (
	Ident Type = iota
	Int
	Float
	Punct
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Int:
		return "integer"
	case Float:
		return "float"
	case Punct:
		return "symbol"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

// twoCharPuncts are the operators that must be matched before their
// one-character prefixes.
var twoCharPuncts = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true,
}

var oneCharPuncts = map[rune]bool{
	'{': true, '}': true, '(': true, ')': true, '[': true, ']': true,
	',': true, ';': true, ':': true, '=': true, '<': true, '>': true,
	'+': true, '-': true, '*': true, '/': true, '%': true,
}

// Tokenize scans the whole input. Comments run from '#' to end of line.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		if r == '#' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			i--
			continue
		}

		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
			i--
			continue
		}

		if unicode.IsDigit(r) {
			start := i
			typ := Int
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			if i+1 < len(runes) && runes[i] == '.' && unicode.IsDigit(runes[i+1]) {
				typ = Float
				i++
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			tokens = append(tokens, Token{string(runes[start:i]), typ, line})
			i--
			continue
		}

		if i+1 < len(runes) && twoCharPuncts[string(runes[i:i+2])] {
			tokens = append(tokens, Token{string(runes[i : i+2]), Punct, line})
			i++
			continue
		}
		if oneCharPuncts[r] {
			tokens = append(tokens, Token{string(r), Punct, line})
			continue
		}

		return nil, errors.Syntax(line, "Illegal character '%c'", r)
	}

	return tokens, nil
}
