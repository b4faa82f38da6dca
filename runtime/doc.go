// Package runtime executes compiled WAT modules in-process on wazero.
//
// A Runner assembles the module text, instantiates a host module named
// "imports" that bridges read and write calls to an io.Reader and
// io.Writer, and invokes the exported main function. Each Run uses a
// fresh wazero runtime, so concurrent runs do not share state.
package runtime
