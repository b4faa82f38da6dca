package runtime_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/p-maje/inz-wasm-compiler/compiler"
	"github.com/p-maje/inz-wasm-compiler/runtime"
)

func run(t *testing.T, source, stdin string) string {
	t.Helper()
	wat, err := compiler.Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	var out bytes.Buffer
	if err := runtime.New().Run(context.Background(), wat, strings.NewReader(stdin), &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String()
}

func TestRunArithmetic(t *testing.T) {
	out := run(t, `
function main {
	int x;
	x = 2 + 3;
	write x;
	write x * x;
}
`, "")
	if out != "5\n25\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunReadWrite(t *testing.T) {
	out := run(t, `
function main {
	int a;
	int b;
	read a;
	read b;
	write a + b;
}
`, "2 3")
	if out != "5\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunReadAtEOFYieldsZero(t *testing.T) {
	out := run(t, `
function main {
	int a;
	read a;
	write a + 1;
}
`, "")
	if out != "1\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunFloats(t *testing.T) {
	out := run(t, `
function main {
	float x;
	read x;
	write x / 2.0;
}
`, "5")
	if out != "2.5\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunFunctionCalls(t *testing.T) {
	out := run(t, `
function square with int n : int {
	return n * n;
}

function main {
	write square(7);
}
`, "")
	if out != "49\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunControlFlow(t *testing.T) {
	out := run(t, `
function main {
	int n;
	read n;
	if (n > 0) {
		write 1;
	} else {
		write 0;
	}
	while (n > 0) {
		write n;
		n = n - 1;
	}
}
`, "3")
	if out != "1\n3\n2\n1\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunForLoopsAndArrays(t *testing.T) {
	out := run(t, `
arrays {
	int data[5];
}

function main {
	for i from 0 to 4 {
		data[i] = i * i;
	}
	for i from 4 downto 0 {
		write data[i];
	}
}
`, "")
	if out != "16\n9\n4\n1\n0\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunDivisionIsSigned(t *testing.T) {
	out := run(t, `
function main {
	int a;
	a = 0 - 7;
	write a / 2;
	write a % 2;
}
`, "")
	if out != "-3\n-1\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunCanceledContext(t *testing.T) {
	wat, err := compiler.Compile(`
function main {
	int x;
	x = 0;
	while (x == 0) {
		x = 0;
	}
}
`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		var out bytes.Buffer
		done <- runtime.New().Run(ctx, wat, strings.NewReader(""), &out)
	}()
	cancel()
	if err := <-done; err == nil {
		t.Fatal("expected error from canceled run")
	}
}
