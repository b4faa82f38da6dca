package parser

import (
	"testing"

	"github.com/p-maje/inz-wasm-compiler/compiler/internal/token"
)

func parse(t *testing.T, source string) error {
	t.Helper()
	tokens, err := token.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	_, err = New(tokens).Parse()
	return err
}

func TestParseFullProgram(t *testing.T) {
	tokens, err := token.Tokenize(`
arrays {
	int data[10];
	float weights[4];
}

function scale with int a, float f : float {
	float r;
	r = f * f;
	return r;
}

function main {
	int i;
	read i;
	if (i > 0) {
		write scale(i, 2.5);
	} else {
		write 0;
	}
	while (i < 10) {
		i = i + 1;
	}
	for j from 0 to 9 {
		data[j] = j;
	}
	for j from 9 downto 0 {
		write data[j];
	}
}
`)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	mod, err := New(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(mod.Arrays) != 2 {
		t.Errorf("arrays = %d, want 2", len(mod.Arrays))
	}
	if len(mod.Functions) != 2 {
		t.Errorf("functions = %d, want 2", len(mod.Functions))
	}
	if mod.Functions[0].Name != "scale" || mod.Functions[1].Name != "main" {
		t.Errorf("function order: %s, %s", mod.Functions[0].Name, mod.Functions[1].Name)
	}
	if len(mod.Functions[0].Params) != 2 {
		t.Errorf("scale params = %d, want 2", len(mod.Functions[0].Params))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "empty input",
			source: "",
			want:   "0: Expected a function definition",
		},
		{
			name:   "missing semicolon",
			source: "function main {\n\tint x;\n\tx = 1\n}",
			want:   "4: Expected ';', got '}'",
		},
		{
			name:   "keyword as identifier",
			source: "function while { }",
			want:   "1: Expected identifier, got 'while'",
		},
		{
			name:   "bad type",
			source: "function main with bool x { }",
			want:   "1: Expected 'int' or 'float', got 'bool'",
		},
		{
			name:   "condition needs comparison",
			source: "function main { if (1 + 2) { } }",
			want:   "1: Expected comparison, got '+'",
		},
		{
			name:   "for needs direction",
			source: "function main { for i from 0 until 9 { } }",
			want:   "1: Expected 'to' or 'downto', got 'until'",
		},
		{
			name:   "unexpected statement",
			source: "function main { else }",
			want:   "1: Syntax error: unexpected 'else'",
		},
		{
			name:   "unclosed call",
			source: "function main { f(1; }",
			want:   "1: Expected ',', got ';'",
		},
		{
			name:   "array size must be integer",
			source: "arrays { int a[2.5]; }\nfunction main { }",
			want:   "1: Expected number, got '2.5'",
		},
		{
			name:   "truncated input",
			source: "function main {",
			want:   "1: Unexpected end of input, expected '}'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parse(t, tt.source)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseExpressionIsSingleOperation(t *testing.T) {
	// The grammar admits at most one binary operator per expression;
	// a second operator ends the statement and fails on the semicolon.
	err := parse(t, "function main {\n\tint x;\n\tx = 1 + 2 + 3;\n}")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "3: Expected ';', got '+'" {
		t.Errorf("got %q", got)
	}
}

func TestParseReturnWithoutValue(t *testing.T) {
	if err := parse(t, "function main { return; }"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
}
