// Package evaluator implements the tree-walking evaluator (§4.5): the
// structural AST walk that threads Completions through expression and
// statement evaluation, resolves bindings through the Environment
// Model, and dispatches calls through the Function Machinery.
package evaluator

import (
	"fmt"

	"github.com/cwbudde/go-ecma/internal/interp/errors"
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
)

// Activation tracks the per-call state the evaluator needs to resolve
// `this`, `new.target`, and `super` (§4.5 "this", §4.6 step 3). Arrow
// functions do not push a new Activation; they read through to the
// nearest enclosing one (§4.5 "arrows inherit from the enclosing scope").
type Activation struct {
	This       runtime.Value
	NewTarget  runtime.Value
	HomeObject runtime.Handle
	HasHome    bool
	Arguments  runtime.Value // the `arguments` exotic object, or Undefined for arrows
	Outer      *Activation
}

// Context is the evaluator's per-evaluation state (§4.5), grounded on
// the teacher's context.go pattern of bundling environment/call-stack/
// control-flow into one struct threaded through the visitor methods.
// Context is passed by value; Fork-style helpers return a shallow copy
// with Env/Activation swapped, so entering a block or call never
// mutates the caller's Context.
type Context struct {
	Store      *runtime.Store
	Env        *runtime.Environment
	GlobalEnv  *runtime.Environment
	Activation *Activation
	CallStack  *runtime.CallStack
	Realm      runtime.NativeContext
	Conv       *runtime.Conversions
	Errors     errors.Prototypes

	ObjectPrototype    runtime.Handle
	ArrayPrototype     runtime.Handle
	FunctionPrototype  runtime.Handle
	GeneratorPrototype runtime.Handle

	// Generators bridges to the generator package without evaluator
	// importing it (see call.go's GeneratorFactory doc).
	Generators GeneratorFactory

	// LabelSet accumulates the labels directly wrapping the statement
	// currently being entered, consumed by loop/switch evaluation to
	// match labeled break/continue (§4.5 "switch", §3.6).
	LabelSet []string
}

// WithEnv returns a copy of c scoped to a new child environment —
// the per-block/per-call scope push of §4.3.
func (c Context) WithEnv(env *runtime.Environment) Context {
	c.Env = env
	c.LabelSet = nil
	return c
}

// ChildScope pushes a fresh lexical environment nested in c.Env.
func (c Context) ChildScope() Context {
	return c.WithEnv(runtime.NewChildEnvironment(c.Env))
}

// WithActivation returns a copy of c using a new Activation — pushed at
// every non-arrow function call (§4.6 step 3).
func (c Context) WithActivation(act *Activation) Context {
	c.Activation = act
	return c
}

// This returns the `this` binding of the current Activation, or
// Undefined when there is none. It does not walk any chain: arrows
// share their enclosing Activation pointer rather than chaining a new
// one, so the current Activation already holds the binding.
func (c Context) This() runtime.Value {
	if c.Activation == nil {
		return runtime.Undefined
	}
	return c.Activation.This
}

// NewTarget resolves the current `new.target` binding (§4.6 step 3).
func (c Context) NewTarget() runtime.Value {
	if c.Activation == nil {
		return runtime.Undefined
	}
	return c.Activation.NewTarget
}

// HomeObject resolves the current method's home object for `super`
// member resolution (§3.5 "home object").
func (c Context) HomeObject() (runtime.Handle, bool) {
	if c.Activation == nil {
		return runtime.NoHandle, false
	}
	return c.Activation.HomeObject, c.Activation.HasHome
}

// Throw builds a Throw completion carrying a constructed script Error
// (§7); a thin convenience over errors.NewScriptError bound to this
// context's prototypes.
func (c Context) Throw(name, format string, args ...any) runtime.Completion {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return runtime.ThrowCompletion(errors.NewScriptError(c.Store, c.Errors, name, msg))
}
