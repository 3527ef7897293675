// Package realm wires the runtime/evaluator/generator/errors/regex
// packages into one embeddable Interpreter (§5, §6): it owns the
// Object Store, the global Environment, and the intrinsic prototypes
// that must exist before any user code runs, and it satisfies
// runtime.NativeContext so native functions and the Property System's
// accessor calls can re-enter the evaluator.
package realm

import (
	"fmt"

	"github.com/cwbudde/go-ecma/internal/interp/errors"
	"github.com/cwbudde/go-ecma/internal/interp/evaluator"
	"github.com/cwbudde/go-ecma/internal/interp/generator"
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// Interpreter is one realm: a bundle of intrinsics and the global
// environment (GLOSSARY "Realm": "one realm per running program in
// this core").
type Interpreter struct {
	store     *runtime.Store
	globalEnv *runtime.Environment
	callStack *runtime.CallStack
	conv      *runtime.Conversions
	errProtos errors.Prototypes
	generators *generator.Factory
	config    Config

	ObjectPrototype    runtime.Handle
	FunctionPrototype  runtime.Handle
	ArrayPrototype     runtime.Handle
	StringPrototype    runtime.Handle
	NumberPrototype    runtime.Handle
	BooleanPrototype   runtime.Handle
	SymbolPrototype    runtime.Handle
	BigIntPrototype    runtime.Handle
	ErrorPrototype     runtime.Handle
	RegExpPrototype    runtime.Handle
	GeneratorPrototype runtime.Handle
	MapPrototype       runtime.Handle
	SetPrototype       runtime.Handle
	ArrayIterProto     runtime.Handle
	StringIterProto    runtime.Handle
	MapIterProto       runtime.Handle
	SetIterProto       runtime.Handle

	globalObject runtime.Handle

	wellKnownSymbols map[string]*runtime.Symbol
	symbolRegistry   map[string]*runtime.Symbol // Symbol.for registry, keyed by description
}

// New constructs a realm with every intrinsic installed and ready for
// Evaluate (§6 "pre-declare intrinsics... before any user code runs").
func New(cfg Config) *Interpreter {
	cfg = cfg.withDefaults()
	interp := &Interpreter{
		store:            runtime.NewStore(),
		callStack:        runtime.NewCallStack(cfg.MaxCallStackDepth),
		generators:       generator.NewFactory(),
		config:           cfg,
		wellKnownSymbols: make(map[string]*runtime.Symbol),
		symbolRegistry:   make(map[string]*runtime.Symbol),
	}
	interp.conv = runtime.NewConversions(interp)
	interp.globalEnv = runtime.NewGlobalEnvironment()
	interp.installIntrinsics()
	return interp
}

// Store returns the realm's Object Store (runtime.NativeContext).
func (r *Interpreter) Store() *runtime.Store { return r.store }

// GlobalEnvironment returns the realm's global lexical environment.
func (r *Interpreter) GlobalEnvironment() *runtime.Environment { return r.globalEnv }

// Errors returns the realm's Error-constructor prototype bundle, for
// building script-visible errors outside evaluator.Context (e.g. the
// regex package's native functions).
func (r *Interpreter) Errors() errors.Prototypes { return r.errProtos }

// Conversions returns the realm's bound primitive-coercion helpers.
func (r *Interpreter) Conversions() *runtime.Conversions { return r.conv }

// baseContext builds a fresh evaluator.Context scoped to the global
// environment, the entry point for every top-level evaluation and for
// NativeContext methods that must re-enter the evaluator.
func (r *Interpreter) baseContext() evaluator.Context {
	act := &evaluator.Activation{This: runtime.Object(r.globalObject)}
	return evaluator.Context{
		Store:              r.store,
		Env:                r.globalEnv,
		GlobalEnv:          r.globalEnv,
		Activation:         act,
		CallStack:          r.callStack,
		Realm:              r,
		Conv:               r.conv,
		Errors:             r.errProtos,
		ObjectPrototype:    r.ObjectPrototype,
		ArrayPrototype:     r.ArrayPrototype,
		FunctionPrototype:  r.FunctionPrototype,
		GeneratorPrototype: r.GeneratorPrototype,
		Generators:         r.generators,
	}
}

// Call implements runtime.NativeContext: invoke fn as a function
// (§6 "call(f, this, args) -> Completion").
func (r *Interpreter) Call(fn runtime.Value, this runtime.Value, args []runtime.Value) runtime.Completion {
	return evaluator.CallValue(r.baseContext(), fn, this, runtime.Undefined, args)
}

// Construct implements runtime.NativeContext (§6 "construct(f, args) ->
// Completion"). newTarget distinct from fn (Reflect.construct's
// cross-prototype form) is out of this core's built-in scope; every
// caller in this repository passes newTarget == fn.
func (r *Interpreter) Construct(fn runtime.Value, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
	return evaluator.ConstructValue(r.baseContext(), fn, args)
}

// ToPrimitive implements runtime.NativeContext (§6, §4.1).
func (r *Interpreter) ToPrimitive(v runtime.Value, hint string) (runtime.Value, runtime.Completion) {
	return r.conv.ToPrimitive(v, hint)
}

// ThrowTypeError implements runtime.NativeContext, building a
// script-visible TypeError (§7).
func (r *Interpreter) ThrowTypeError(format string, args ...any) runtime.Completion {
	return runtime.ThrowCompletion(errors.TypeError(r.store, r.errProtos, fmt.Sprintf(format, args...)))
}

// ThrowRangeError implements runtime.NativeContext (§7).
func (r *Interpreter) ThrowRangeError(format string, args ...any) runtime.Completion {
	return runtime.ThrowCompletion(errors.RangeError(r.store, r.errProtos, fmt.Sprintf(format, args...)))
}

// NewArray implements runtime.NativeContext (§6 "create_array(values)").
func (r *Interpreter) NewArray(values []runtime.Value) runtime.Value {
	return runtime.Object(r.store.NewArrayObject(values, r.ArrayPrototype))
}

// NewError implements runtime.NativeContext (§6 "create_error(kind,
// message)").
func (r *Interpreter) NewError(kind string, message string) runtime.Value {
	return errors.NewScriptError(r.store, r.errProtos, kind, message)
}

// SymbolKeyFor implements runtime.NativeContext (§6 "a symbol-key-for(name)
// helper so built-ins installing well-known-symbol methods agree on the
// string form"): well-known symbol names resolve to one shared Symbol
// per realm, created lazily on first use.
func (r *Interpreter) SymbolKeyFor(name string) string {
	sym, ok := r.wellKnownSymbols[name]
	if !ok {
		sym = runtime.NewSymbol(name)
		r.wellKnownSymbols[name] = sym
	}
	return sym.CanonicalKey()
}

// WellKnownSymbolValue returns the Value wrapping a well-known symbol,
// for installing it as a property of the Symbol constructor object
// (e.g. `Symbol.iterator`).
func (r *Interpreter) WellKnownSymbolValue(name string) runtime.Value {
	r.SymbolKeyFor(name) // ensure allocated
	return runtime.SymbolValue(r.wellKnownSymbols[name])
}

// AllocateObject implements the §6 embedding interface: allocate an
// arbitrary pre-built Object record, returning its handle.
func (r *Interpreter) AllocateObject(o *runtime.Object) runtime.Handle {
	return r.store.Allocate(o)
}

// GetObject implements the §6 embedding interface.
func (r *Interpreter) GetObject(h runtime.Handle) *runtime.Object {
	return r.store.Get(h)
}

// CreateFunction implements the §6 embedding interface: wraps a
// pre-built runtime.Function in a callable Object using Function.prototype.
func (r *Interpreter) CreateFunction(fn *runtime.Function) runtime.Value {
	h := r.store.Allocate(&runtime.Object{
		Class:      runtime.ClassFunction,
		Prototype:  r.FunctionPrototype,
		HasProto:   true,
		Extensible: true,
		Properties: runtime.NewPropertyMap(),
		Callable:   fn,
	})
	obj := r.store.Get(h)
	obj.Properties.Set("name", runtime.DataDescriptorPtr(runtime.String(fn.Name), false, false, true))
	obj.Properties.Set("length", runtime.DataDescriptorPtr(runtime.Number(float64(fn.Arity)), false, false, true))
	return runtime.Object(h)
}

// Evaluate implements the §6 embedding interface's top-level entry
// point: runs program against this realm's global environment.
func (r *Interpreter) Evaluate(program *ast.Program) runtime.Completion {
	c := evaluator.EvalFunctionBody(r.baseContext(), &ast.BlockStatement{Body: program.Body})
	if c.IsAbrupt() && c.Kind == runtime.Return {
		return runtime.NormalCompletion(c.Value)
	}
	return c
}

// EvaluateWithRealm implements the §6 embedding interface's realm-scoped
// overload: a new realm is built from cfg and program is run against it,
// returning both the completion and the realm for host inspection
// (e.g. reading globals after the script finishes).
func EvaluateWithRealm(cfg Config, program *ast.Program) (*Interpreter, runtime.Completion) {
	r := New(cfg)
	return r, r.Evaluate(program)
}
