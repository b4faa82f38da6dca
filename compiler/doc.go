// Package compiler translates programs in a small imperative language
// into WebAssembly Text format.
//
// The source language has int and float variables, module-level int
// arrays backed by linear memory, functions with typed parameters and
// results, assignment, read and write statements, if/else, while and
// counted for loops. Every program defines a main function, which the
// compiled module exports.
//
// Basic usage:
//
//	wat, err := compiler.Compile(`
//		function main {
//			int x;
//			x = 2 + 3;
//			write x;
//			return;
//		}
//	`)
//
// Compilation stops at the first error. Errors render as
// "<line>: <message>" and carry a Kind from the errors package.
package compiler
