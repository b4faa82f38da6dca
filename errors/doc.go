// Package errors defines the structured diagnostics raised during
// compilation.
//
// Every failure carries the source line it was detected on and a Kind
// classifying the violated rule. The rendered form, "<line>: <message>",
// is the sole diagnostic channel exposed to callers; line 0 means the
// failure is not attributable to a single source line.
package errors
