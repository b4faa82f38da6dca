// Package ir holds the compiler's intermediate representation and the
// WebAssembly text code generator.
//
// The node set is closed: Value variants (Const, Local, ArrayValue,
// FunctionCall, Expression and the read intrinsic) and Command variants
// (Assign, Read, Write, Return, Call, If, While, For) are sealed behind
// unexported interface methods, so the set cannot grow outside this
// package.
//
// Code generation runs in two phases over the same node graph. The
// check phase resolves and annotates every node's type and enforces
// declaration, initialization, scoping, arity and return rules,
// reporting the first violation top-to-bottom. The emit phase is
// infallible and produces indented WAT instruction lines.
//
// Symbol state lives in two context objects created fresh for every
// compilation: GlobalContext (function table, array layout) and
// LocalContext (one function's locals, iterator scopes, loop depth).
// Contexts are passed into every call and never stored on nodes.
package ir
