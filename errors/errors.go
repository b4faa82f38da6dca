package errors

import "fmt"

// Kind categorizes the violated rule
type Kind string

const (
	KindSyntax         Kind = "syntax"          // lexing/parsing
	KindRedeclaration  Kind = "redeclaration"   // duplicate array/function/local name
	KindNotFound       Kind = "not_found"       // undeclared variable/array, unknown callee
	KindNotInitialized Kind = "not_initialized" // load before any store
	KindType           Kind = "type"            // operand/assignment/return/index type rules
	KindSignature      Kind = "signature"       // call arity or argument types
	KindIteratorScope  Kind = "iterator_scope"  // iterator shadowing or assignment
	KindStructure      Kind = "structure"       // declared-return body without a return
)

// Error is the diagnostic type used throughout the compiler.
// Detection stops compilation; errors never aggregate.
type Error struct {
	Detail string
	Kind   Kind
	Line   int
}

// Error renders the diagnostic as "<line>: <message>".
func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, e.Detail)
}

// Is reports whether target matches this error by Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error with a formatted detail message.
func New(line int, kind Kind, format string, args ...any) *Error {
	return &Error{
		Line:   line,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Convenience constructors for the compiler's rule set

// Syntax creates a lexing or parsing error.
func Syntax(line int, format string, args ...any) *Error {
	return New(line, KindSyntax, format, args...)
}

// RepeatedArray reports a duplicate array declaration.
func RepeatedArray(line int, name string) *Error {
	return New(line, KindRedeclaration, "Repeated declaration of array '%s'", name)
}

// RepeatedFunction reports a duplicate function definition.
func RepeatedFunction(line int, name string) *Error {
	return New(line, KindRedeclaration, "Repeated declaration of function '%s'", name)
}

// Redeclaration reports a duplicate parameter or local name within a function.
func Redeclaration(line int, name string) *Error {
	return New(line, KindRedeclaration, "Redeclaration of '%s'", name)
}

// UndeclaredVariable reports a reference to an unknown local.
func UndeclaredVariable(line int, name string) *Error {
	return New(line, KindNotFound, "Variable '%s' not declared", name)
}

// UndeclaredArray reports a reference to an unknown array.
func UndeclaredArray(line int, name string) *Error {
	return New(line, KindNotFound, "Array '%s' not declared", name)
}

// UnknownFunction reports a call to an unknown callee.
func UnknownFunction(line int, name string) *Error {
	return New(line, KindNotFound, "Function '%s' not found", name)
}

// NoMain reports a program without a main function. Not attributable to
// a line, so it renders with line 0.
func NoMain() *Error {
	return New(0, KindNotFound, "Function 'main' not found")
}

// NotInitialized reports a load from a local before any store.
func NotInitialized(line int, name string) *Error {
	return New(line, KindNotInitialized, "Variable '%s' not initialized", name)
}

// TypeMismatch reports mismatched operand, assignment or condition types.
func TypeMismatch(line int) *Error {
	return New(line, KindType, "Type mismatch")
}

// ReturnTypeMismatch reports a return whose value does not match the
// function's declared result. Void is rendered as "none".
func ReturnTypeMismatch(line int, function, want, got string) *Error {
	if want == "" {
		want = "none"
	}
	if got == "" {
		got = "none"
	}
	return New(line, KindType, "Return type of function '%s' should be %s, is %s", function, want, got)
}

// NonIntegerIndex reports an array index that is not i32.
func NonIntegerIndex(line int) *Error {
	return New(line, KindType, "Index must be an integer")
}

// FloatRem reports a remainder on float operands.
func FloatRem(line int) *Error {
	return New(line, KindType, "Operation '%%' is not defined for float values")
}

// VoidExpression reports a value position filled by a void call.
func VoidExpression(line int) *Error {
	return New(line, KindType, "Expression has no value")
}

// ArityMismatch reports a call with the wrong argument count.
func ArityMismatch(line int, callee string, want, got int) *Error {
	return New(line, KindSignature, "Function %s expected %d arguments, got %d", callee, want, got)
}

// ArgumentType reports a call argument whose type does not match the
// positional parameter.
func ArgumentType(line int, param, want, got string) *Error {
	return New(line, KindSignature, "Argument %s is of type %s, got %s", param, want, got)
}

// IteratorAssignment reports a read or assignment targeting an active
// loop iterator.
func IteratorAssignment(line int) *Error {
	return New(line, KindIteratorScope, "Assigning to an iterator")
}

// IteratorShadowsLocal reports a for iterator reusing a local's name.
func IteratorShadowsLocal(line int, name string) *Error {
	return New(line, KindIteratorScope, "Iterator shadows a local variable '%s'", name)
}

// IteratorShadowsIterator reports a for iterator reusing an enclosing
// iterator's name.
func IteratorShadowsIterator(line int, name string) *Error {
	return New(line, KindIteratorScope, "Iterator shadows a previous iterator '%s'", name)
}

// MissingReturn reports a declared-result function whose top-level body
// never reaches a return.
func MissingReturn(line int) *Error {
	return New(line, KindStructure, "Function needs to end with an explicit return statement")
}
