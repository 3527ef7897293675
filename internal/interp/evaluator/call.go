package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// GeneratorFactory is the narrow seam the generator package hangs off
// of so the evaluator can create/transform generators without
// importing the generator package (which itself imports evaluator to
// drive a state machine's statements — see generator/runtime.go).
type GeneratorFactory interface {
	// Transform lowers a generator function's body into an opaque
	// state machine at function-definition time (§4.7).
	Transform(fn *ast.FunctionExpression) (any, error)
	// CreateGenerator constructs the generator object returned by
	// calling a generator function (§4.6 step 5, §4.7.3).
	CreateGenerator(ctx Context, fn *runtime.Function, this runtime.Value, args []runtime.Value) runtime.Completion
}

// NewFunctionValue allocates the callable Object for a function
// expression/declaration, closing over ctx.Env (§3.5, §4.6). Generator
// functions are lowered to a state machine immediately, matching the
// spec's "encoded, at function-definition time" requirement.
func NewFunctionValue(ctx Context, node *ast.FunctionExpression) (runtime.Value, runtime.Completion) {
	fn := runtime.NewScriptFunction(node.Name, node.Params, node.Body, ctx.Env)
	fn.IsArrow = node.IsArrow
	fn.IsGenerator = node.IsGenerator
	fn.IsAsync = node.IsAsync
	fn.IsConstructor = !node.IsArrow && !node.IsGenerator && !node.IsAsync
	if home, ok := ctx.HomeObject(); ok {
		fn.HomeObject, fn.HasHome = home, true
	}

	if node.IsGenerator && ctx.Generators != nil {
		sm, err := ctx.Generators.Transform(node)
		if err != nil {
			return runtime.Undefined, ctx.Throw("SyntaxError", "invalid generator body: %s", err.Error())
		}
		fn.StateMachine = sm
	}

	h := ctx.Store.Allocate(&runtime.Object{
		Class:      runtime.ClassFunction,
		Prototype:  ctx.FunctionPrototype,
		HasProto:   true,
		Extensible: true,
		Properties: runtime.NewPropertyMap(),
		Callable:   fn,
	})
	obj := ctx.Store.Get(h)
	obj.Properties.Set("name", runtime.DataDescriptorPtr(runtime.String(node.Name), false, false, true))
	obj.Properties.Set("length", runtime.DataDescriptorPtr(runtime.Number(float64(fn.Arity)), false, false, true))

	if fn.IsConstructor {
		protoHandle := ctx.Store.NewOrdinaryObject(ctx.ObjectPrototype, true)
		protoObj := ctx.Store.Get(protoHandle)
		protoObj.Properties.Set("constructor", runtime.DataDescriptorPtr(runtime.Object(h), true, false, true))
		obj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(protoHandle), true, false, false))
	}
	if node.IsGenerator {
		protoHandle := ctx.Store.NewOrdinaryObject(ctx.GeneratorPrototype, true)
		obj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(protoHandle), true, false, false))
	}
	return runtime.Object(h), runtime.NormalCompletion(runtime.Undefined)
}

// CallValue implements the Function Machinery's call path (§4.6): bound
// functions unwrap their target, native functions invoke their host
// closure directly, script functions create a fresh activation.
func CallValue(ctx Context, fnVal runtime.Value, this runtime.Value, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
	if !fnVal.IsObject() {
		return ctx.Throw("TypeError", "value is not a function")
	}
	obj := ctx.Store.Get(fnVal.AsObject())
	if obj == nil || obj.Callable == nil {
		return ctx.Throw("TypeError", "value is not a function")
	}
	fn := obj.Callable

	if fn.IsBound {
		merged := append(append([]runtime.Value{}, fn.BoundArgs...), args...)
		return CallValue(ctx, fn.BoundTarget, fn.BoundThis, newTarget, merged)
	}
	if fn.Native != nil {
		return fn.Native(ctx.Realm, this, newTarget, args)
	}
	if fn.IsGenerator {
		if ctx.Generators == nil {
			return ctx.Throw("TypeError", "generator functions are not supported by this realm")
		}
		return ctx.Generators.CreateGenerator(ctx, fn, this, args)
	}
	return callScriptFunction(ctx, fn, this, newTarget, args)
}

func callScriptFunction(ctx Context, fn *runtime.Function, this runtime.Value, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
	if !ctx.CallStack.Push(fn.Name, fn.Body.Pos()) {
		return ctx.Throw("RangeError", "Maximum call stack size exceeded")
	}
	defer ctx.CallStack.Pop()

	callEnv := runtime.NewChildEnvironment(fn.Closure)
	callCtx := ctx.WithEnv(callEnv)

	if fn.IsArrow {
		// Arrows inherit `this`/new.target/arguments from the
		// enclosing activation (§4.5 "this").
	} else {
		act := &Activation{This: this, NewTarget: newTarget}
		if fn.HasHome {
			act.HomeObject, act.HasHome = fn.HomeObject, true
		}
		callCtx = callCtx.WithActivation(act)
		argsObj := buildArgumentsObject(callCtx, args)
		act.Arguments = argsObj
		callEnv.DeclareInitialized("arguments", runtime.BindVar, argsObj)
	}

	if c := BindParameters(callCtx, fn.Params, args); c.IsAbrupt() {
		return c
	}

	result := EvalFunctionBody(callCtx, fn.Body)
	switch result.Kind {
	case runtime.Return:
		return runtime.NormalCompletion(result.Value)
	case runtime.Throw:
		return result
	default:
		return runtime.NormalCompletion(runtime.Undefined)
	}
}

// ConstructValue implements `new` (§4.5 "New"): a fresh object with the
// target's .prototype (or Object.prototype) is created, the target is
// called with that object as `this` and new.target set to itself; a
// returned object value supersedes the fresh one.
func ConstructValue(ctx Context, fnVal runtime.Value, args []runtime.Value) runtime.Completion {
	if !fnVal.IsObject() {
		return ctx.Throw("TypeError", "value is not a constructor")
	}
	obj := ctx.Store.Get(fnVal.AsObject())
	if obj == nil || obj.Callable == nil || (!obj.Callable.IsConstructor && !obj.Callable.IsBound && obj.Callable.Native == nil) {
		return ctx.Throw("TypeError", "value is not a constructor")
	}

	protoVal, completion := runtime.GetProperty(ctx.Store, ctx.Realm, fnVal.AsObject(), "prototype", fnVal)
	if completion.IsAbrupt() {
		return completion
	}
	protoHandle := ctx.ObjectPrototype
	if protoVal.IsObject() {
		protoHandle = protoVal.AsObject()
	}
	instHandle := ctx.Store.NewOrdinaryObject(protoHandle, true)
	instance := runtime.Object(instHandle)

	result := CallValue(ctx, fnVal, instance, fnVal, args)
	if result.IsAbrupt() {
		return result
	}
	if result.Value.IsObject() {
		return runtime.NormalCompletion(result.Value)
	}
	return runtime.NormalCompletion(instance)
}

// buildArgumentsObject materializes the `arguments` exotic for
// non-arrow function activations (§4.6 step 3).
func buildArgumentsObject(ctx Context, args []runtime.Value) runtime.Value {
	h := ctx.Store.NewArrayObject(args, ctx.ArrayPrototype)
	obj := ctx.Store.Get(h)
	obj.Class = runtime.ClassArguments
	return runtime.Object(h)
}

// BindParameters binds args against params in the current (callee)
// environment (§4.6 step 2): missing arguments fill with undefined, a
// rest parameter consumes the tail as an array, and default
// expressions evaluate lazily so they may reference earlier parameters.
func BindParameters(ctx Context, params []ast.Pattern, args []runtime.Value) runtime.Completion {
	for i, p := range params {
		if rest, ok := p.(*ast.RestPattern); ok {
			var tail []runtime.Value
			if i < len(args) {
				tail = append(tail, args[i:]...)
			}
			arr := runtime.Object(ctx.Store.NewArrayObject(tail, ctx.ArrayPrototype))
			if c := BindPattern(ctx, rest.Target, arr); c.IsAbrupt() {
				return c
			}
			continue
		}
		var value runtime.Value
		if i < len(args) {
			value = args[i]
		} else {
			value = runtime.Undefined
		}
		if c := BindPattern(ctx, p, value); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}
