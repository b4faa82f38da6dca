// Package wat assembles WebAssembly Text format into binary WASM.
//
// The supported dialect covers the output of the compiler package:
// functions with named params, results and locals, inline function
// imports, one memory declaration, function exports, folded block and
// loop forms, flat if/else/end, and the i32/f32 numeric, comparison,
// memory and control instructions.
//
// Basic usage:
//
//	wasm, err := wat.Compile(`(module
//		(func $main (result i32)
//			i32.const 42
//			return)
//		(export "main" (func $main))
//	)`)
//
// Not supported: i64/f64, globals, tables, data segments, multi-value
// blocks, SIMD.
package wat
