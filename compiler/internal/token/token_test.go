package token

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("x = 2 + 3.5;")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	want := []Token{
		{"x", Ident, 1},
		{"=", Punct, 1},
		{"2", Int, 1},
		{"+", Punct, 1},
		{"3.5", Float, 1},
		{";", Punct, 1},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i] != w {
			t.Errorf("token %d = %+v, want %+v", i, tokens[i], w)
		}
	}
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	tokens, err := Tokenize("a == b != c <= d >= e < f > g")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	var ops []string
	for _, tok := range tokens {
		if tok.Type == Punct {
			ops = append(ops, tok.Value)
		}
	}
	want := []string{"==", "!=", "<=", ">=", "<", ">"}
	if len(ops) != len(want) {
		t.Fatalf("got ops %v, want %v", ops, want)
	}
	for i, w := range want {
		if ops[i] != w {
			t.Errorf("op %d = %q, want %q", i, ops[i], w)
		}
	}
}

func TestTokenizeLines(t *testing.T) {
	tokens, err := Tokenize("a\nb\n\nc")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	lines := []int{1, 2, 4}
	for i, tok := range tokens {
		if tok.Line != lines[i] {
			t.Errorf("%q on line %d, want %d", tok.Value, tok.Line, lines[i])
		}
	}
}

func TestTokenizeComments(t *testing.T) {
	tokens, err := Tokenize("a # the rest vanishes = ; @\nb")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if len(tokens) != 2 || tokens[0].Value != "a" || tokens[1].Value != "b" {
		t.Errorf("got %v", tokens)
	}
	if tokens[1].Line != 2 {
		t.Errorf("token after comment on line %d, want 2", tokens[1].Line)
	}
}

func TestTokenizeFloatNeedsDigits(t *testing.T) {
	// A dot without a following digit is not part of the number, and a
	// bare dot is no token at all.
	_, err := Tokenize("2.")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "1: Illegal character '.'" {
		t.Errorf("got %q", got)
	}
}

func TestTokenizeIllegalCharacter(t *testing.T) {
	_, err := Tokenize("x = @")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "1: Illegal character '@'" {
		t.Errorf("got %q", got)
	}
}

func TestTokenizeUnderscoreIdents(t *testing.T) {
	tokens, err := Tokenize("_x x_1")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Value != "_x" || tokens[1].Value != "x_1" {
		t.Errorf("got %v", tokens)
	}
}
