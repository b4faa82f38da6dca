package wat

import (
	"bytes"
	"strings"
	"testing"
)

// Integration tests for the public Compile() API.
// Unit tests are in internal packages.

func TestCompile(t *testing.T) {
	t.Run("empty_module", func(t *testing.T) {
		wasm, err := Compile("(module)")
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if len(wasm) != 8 {
			t.Errorf("expected 8 bytes, got %d", len(wasm))
		}
		if wasm[0] != 0x00 || wasm[1] != 0x61 || wasm[2] != 0x73 || wasm[3] != 0x6D {
			t.Error("invalid WASM magic")
		}
	})

	t.Run("simple_function", func(t *testing.T) {
		wasm, err := Compile(`(module
			(func $add (param $a i32) (param $b i32) (result i32)
				local.get $a
				local.get $b
				i32.add
				return)
			(export "add" (func $add)))`)
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if len(wasm) < 20 {
			t.Errorf("output too small: %d bytes", len(wasm))
		}
		if !bytes.Contains(wasm, []byte("add")) {
			t.Error("export name missing from binary")
		}
	})

	t.Run("compiler_module_shape", func(t *testing.T) {
		wasm, err := Compile(`(module
			(func $~write_i32 (import "imports" "write") (param i32))
			(func $~read_i32 (import "imports" "readInt") (result i32))
			(func $~write_f32 (import "imports" "write") (param f32))
			(func $~read_f32 (import "imports" "readFloat") (result f32))
			(memory 1)
			(func $main
				(local $x i32)
				call $~read_i32
				local.set $x
				local.get $x
				i32.const 0
				i32.store
				i32.const 0
				i32.load
				call $~write_i32
				return)
			(export "main" (func $main)))`)
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if !bytes.Contains(wasm, []byte("imports")) {
			t.Error("import module name missing from binary")
		}
	})

	t.Run("folded_loops", func(t *testing.T) {
		_, err := Compile(`(module
			(func $f
				(local $i i32)
				(loop $~while1 (block $~while1~block
					local.get $i
					i32.const 10
					i32.ge_s
					br_if $~while1~block
					(loop $~j (block $~j~block
						local.get $i
						i32.const 5
						i32.gt_s
						br_if $~j~block
						br $~j
					))
					br $~while1
				))))`)
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
	})

	t.Run("flat_if_else", func(t *testing.T) {
		_, err := Compile(`(module
			(func $f (result i32)
				i32.const 1
				if
					i32.const 1
					return
				else
					i32.const 2
					return
				end
				i32.const 0
				return))`)
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
	})

	t.Run("forward_call", func(t *testing.T) {
		_, err := Compile(`(module
			(func $a
				call $b)
			(func $b))`)
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
	})
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name, wat, wantErr string
	}{
		{"missing_module", "(func)", `expected "module"`},
		{"unclosed", "(module", "module not closed"},
		{"unknown_instr", "(module (func bogus))", "unknown instruction"},
		{"unknown_type", "(module (func (param $x bogus)))", "unknown value type"},
		{"unknown_label", "(module (func br $x))", "unknown label"},
		{"unknown_function", "(module (func call $missing))", "unknown function"},
		{"unknown_field", "(module (table 1))", "unsupported module field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.wat)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
		})
	}
}

func TestUniqueImportNames(t *testing.T) {
	src := `(module
		(func $~write_i32 (import "imports" "write") (param i32))
		(func $~write_f32 (import "imports" "write") (param f32))
		(func $~read_i32 (import "imports" "readInt") (result i32)))`

	plain, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if bytes.Contains(plain, []byte("write_i32")) {
		t.Error("import names must stay untouched without the option")
	}

	renamed, err := Compile(src, UniqueImportNames())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !bytes.Contains(renamed, []byte("write_i32")) || !bytes.Contains(renamed, []byte("write_f32")) {
		t.Error("colliding imports must get type-suffixed names")
	}
	// The non-colliding import keeps its name.
	if !bytes.Contains(renamed, []byte("readInt")) || bytes.Contains(renamed, []byte("readInt_i32")) {
		t.Error("unique imports must keep their names")
	}
}
