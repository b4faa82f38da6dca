// Package inzwasm is the root of a compiler that translates a small
// imperative language into WebAssembly Text format, with an in-process
// assembler and runner.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	inz-wasm-compiler/
//	├── compiler/        Source language to WAT text
//	│   └── internal/    Tokenizer, parser and the code-generating node graph
//	├── wat/             WAT text to binary WASM for the emitted subset
//	├── runtime/         Executes compiled modules on wazero with host I/O
//	├── errors/          Line-numbered compile diagnostics
//	├── service/         HTTP endpoints for compiling and running programs
//	└── cmd/impc/        CLI: compile, run, serve, interactive TUI
//
// # Quick Start
//
// Compile a program and run it:
//
//	wat, err := compiler.Compile(source)
//	if err != nil {
//		// err renders as "<line>: <message>"
//	}
//	err = runtime.New().Run(ctx, wat, os.Stdin, os.Stdout)
//
// Every compiled module imports its I/O ("write", "readInt",
// "readFloat" under the "imports" namespace), claims one page of linear
// memory for program arrays, and exports main.
package inzwasm
