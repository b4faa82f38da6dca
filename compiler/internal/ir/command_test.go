package ir

import (
	"strings"
	"testing"
)

func generate(t *testing.T, fn *Function, arrays ...*Array) string {
	t.Helper()
	global, err := NewGlobalContext([]*Function{fn}, arrays)
	if err != nil {
		t.Fatalf("NewGlobalContext failed: %v", err)
	}
	lines, err := fn.Generate(global)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return strings.Join(lines, "\n")
}

func TestWhileConditionInvertedOnce(t *testing.T) {
	cond := NewExpression(1, NewIntConst(1, 1), NewIntConst(1, 2), "lt_s")
	NewWhile(1, cond, nil)
	if cond.op != "ge_s" {
		t.Errorf("op = %q, want ge_s", cond.op)
	}
}

func TestWhileInverseTable(t *testing.T) {
	pairs := map[string]string{
		"eq": "ne", "ne": "eq",
		"lt_s": "ge_s", "ge_s": "lt_s",
		"gt_s": "le_s", "le_s": "gt_s",
	}
	for op, want := range pairs {
		cond := NewExpression(1, NewIntConst(1, 1), NewIntConst(1, 2), op)
		NewWhile(1, cond, nil)
		if cond.op != want {
			t.Errorf("inverse of %q = %q, want %q", op, cond.op, want)
		}
	}
}

func TestMissingReturnOnlyWithResult(t *testing.T) {
	withResult := NewFunction(3, "f", nil, nil, nil, I32)
	global, err := NewGlobalContext([]*Function{withResult}, nil)
	if err != nil {
		t.Fatalf("NewGlobalContext failed: %v", err)
	}
	if _, err := withResult.Generate(global); err == nil {
		t.Fatal("expected missing return error")
	} else if got := err.Error(); got != "3: Function needs to end with an explicit return statement" {
		t.Errorf("got %q", got)
	}

	procedure := NewFunction(3, "g", nil, nil, nil, "")
	global, err = NewGlobalContext([]*Function{procedure}, nil)
	if err != nil {
		t.Fatalf("NewGlobalContext failed: %v", err)
	}
	if _, err := procedure.Generate(global); err != nil {
		t.Fatalf("procedure without return must generate: %v", err)
	}
}

func TestIfEmitsStructuredBranches(t *testing.T) {
	cond := NewExpression(2, NewIntConst(2, 1), NewIntConst(2, 2), "eq")
	fn := NewFunction(1, "f", nil, nil, []Command{
		NewIf(2, cond,
			[]Command{NewWrite(3, NewIntConst(3, 1))},
			[]Command{NewWrite(5, NewIntConst(5, 2))}),
	}, "")
	out := generate(t, fn)

	for _, want := range []string{
		"i32.eq",
		"    if",
		"      i32.const 1",
		"    else",
		"      i32.const 2",
		"    end",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCallStatementDropsResult(t *testing.T) {
	callee := NewFunction(1, "g", nil, nil, []Command{NewReturn(1, NewIntConst(1, 1))}, I32)
	fn := NewFunction(2, "f", nil, nil, []Command{
		NewCall(3, NewFunctionCall(3, "g", nil)),
	}, "")
	global, err := NewGlobalContext([]*Function{callee, fn}, nil)
	if err != nil {
		t.Fatalf("NewGlobalContext failed: %v", err)
	}
	lines, err := fn.Generate(global)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	out := strings.Join(lines, "\n")
	if !strings.Contains(out, "call $g\n    drop") {
		t.Errorf("statement call must drop its result:\n%s", out)
	}
}

func TestConstIndexFoldsToAddress(t *testing.T) {
	arrays := []*Array{
		NewArray(1, "a", I32, 3),
		NewArray(1, "b", I32, 2),
	}
	fn := NewFunction(2, "f", nil, nil, []Command{
		NewWrite(3, NewArrayValue(3, "b", NewIntConst(3, 1))),
	}, "")
	out := generate(t, fn, arrays...)

	if !strings.Contains(out, "i32.const 16\n    i32.load") {
		t.Errorf("constant index must fold to 1*4+12:\n%s", out)
	}
	if strings.Contains(out, "i32.mul") {
		t.Errorf("folded address must not multiply:\n%s", out)
	}
}

func TestZeroStartSkipsOffsetAdd(t *testing.T) {
	arrays := []*Array{NewArray(1, "a", I32, 3)}
	idx := NewLocal(3, "i")
	fn := NewFunction(2, "f", nil, []*Local{NewTypedLocal(2, "i", I32)}, []Command{
		NewAssign(3, NewLocal(3, "i"), NewIntConst(3, 0)),
		NewWrite(4, NewArrayValue(4, "a", idx)),
	}, "")
	out := generate(t, fn, arrays...)

	if !strings.Contains(out, "i32.const 4\n    i32.mul\n    i32.load") {
		t.Errorf("first array must not add a zero start offset:\n%s", out)
	}
}
