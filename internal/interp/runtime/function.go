package runtime

import "github.com/cwbudde/go-ecma/pkg/ast"

// Function is the callable shape shared by script and native functions
// (§3.5). Exactly one of Body/Native is set, except for bound
// functions which set BoundTarget instead.
type Function struct {
	Name  string
	Arity int

	// Script function fields.
	Params      []ast.Pattern
	Body        *ast.BlockStatement
	Closure     *Environment
	HomeObject  Handle // for `super` resolution inside methods; NoHandle if none
	HasHome     bool
	IsArrow     bool
	IsGenerator bool
	IsAsync     bool
	IsConstructor bool

	// Native function fields (§4.6 "For native functions, steps 1-3
	// are skipped").
	Native NativeFunc

	// Bound function fields: BoundTarget is the underlying callable
	// Value, BoundThis is the fixed `this`, BoundArgs is the prefix of
	// pre-bound arguments (§3.5 "Bound functions are modelled as
	// script functions with a target...").
	BoundTarget Value
	IsBound     bool
	BoundThis   Value
	BoundArgs   []Value

	// StateMachine, when non-nil, is the pre-lowered generator state
	// machine for this function, installed by the generator package at
	// function-creation time (§4.7). Declared as `any` here to avoid an
	// import cycle between runtime and generator; the generator
	// package and evaluator type-assert it back to their own type.
	StateMachine any
}

// NativeFunc is a host closure with the shape §3.5 mandates: given the
// interpreter-facing context, the receiver, and the arguments, produce
// a Completion directly.
type NativeFunc func(ctx NativeContext, this Value, newTarget Value, args []Value) Completion

// NativeContext is the narrow surface native functions and accessor
// callbacks need from the embedding interpreter (§6 "External
// Interfaces"). It is declared in runtime (rather than imported from
// realm) so property.go can invoke accessors without creating an
// import cycle; the realm package's Interpreter satisfies it.
type NativeContext interface {
	Store() *Store
	Call(fn Value, this Value, args []Value) Completion
	Construct(fn Value, newTarget Value, args []Value) Completion
	ToPrimitive(v Value, hint string) (Value, Completion)
	ThrowTypeError(format string, args ...any) Completion
	ThrowRangeError(format string, args ...any) Completion
	NewArray(values []Value) Value
	NewError(kind string, message string) Value
	SymbolKeyFor(name string) string
}

// NewNativeFunction allocates a callable Function record wrapping fn.
func NewNativeFunction(name string, arity int, fn NativeFunc) *Function {
	return &Function{Name: name, Arity: arity, Native: fn}
}

// NewScriptFunction allocates a callable Function record for a
// script-defined function or arrow (§3.5).
func NewScriptFunction(name string, params []ast.Pattern, body *ast.BlockStatement, closure *Environment) *Function {
	return &Function{
		Name:    name,
		Arity:   requiredArity(params),
		Params:  params,
		Body:    body,
		Closure: closure,
	}
}

// requiredArity counts leading parameters with neither a default nor a
// rest marker, matching `Function.prototype.length` semantics.
func requiredArity(params []ast.Pattern) int {
	n := 0
	for _, p := range params {
		switch p.(type) {
		case *ast.DefaultPattern, *ast.RestPattern:
			return n
		}
		n++
	}
	return n
}

// BindFunction produces the bound-function record for
// Function.prototype.bind (§3.5).
func BindFunction(target Value, this Value, boundArgs []Value, name string, arity int) *Function {
	remaining := arity - len(boundArgs)
	if remaining < 0 {
		remaining = 0
	}
	return &Function{
		Name:        "bound " + name,
		Arity:       remaining,
		IsBound:     true,
		BoundTarget: target,
		BoundThis:   this,
		BoundArgs:   boundArgs,
	}
}
