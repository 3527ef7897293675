package realm

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// installFunction wires Function.prototype's call/apply/bind (§4.6
// "Function Machinery"). The Function constructor itself is not
// callable here: building a function from a source string needs a
// parser, which is out of this core's scope (§1 Non-goals), so calling
// it throws rather than silently returning a no-op.
func (r *Interpreter) installFunction() {
	r.method(r.FunctionPrototype, "call", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		thisArg := arg(args, 0)
		var rest []runtime.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return ctx.Call(this, thisArg, rest)
	})
	r.method(r.FunctionPrototype, "apply", 2, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		thisArg := arg(args, 0)
		argArray := arg(args, 1)
		var rest []runtime.Value
		if argArray.IsObject() {
			if obj := r.store.Get(argArray.AsObject()); obj != nil && obj.ArrayElements != nil {
				rest = append(rest, obj.ArrayElements...)
			}
		}
		return ctx.Call(this, thisArg, rest)
	})
	r.method(r.FunctionPrototype, "bind", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return r.ThrowTypeError("Function.prototype.bind called on non-function")
		}
		obj := r.store.Get(this.AsObject())
		if obj == nil || obj.Callable == nil {
			return r.ThrowTypeError("Function.prototype.bind called on non-function")
		}
		thisArg := arg(args, 0)
		var bound []runtime.Value
		if len(args) > 1 {
			bound = append(bound, args[1:]...)
		}
		boundFn := runtime.BindFunction(this, thisArg, bound, obj.Callable.Name, obj.Callable.Arity)
		return runtime.NormalCompletion(r.CreateFunction(boundFn))
	})
	r.method(r.FunctionPrototype, "toString", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		name := ""
		if this.IsObject() {
			if obj := r.store.Get(this.AsObject()); obj != nil && obj.Callable != nil {
				name = obj.Callable.Name
			}
		}
		return runtime.NormalCompletion(runtime.String("function " + name + "() { [native code] }"))
	})

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("Function", 1, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		return r.ThrowTypeError("Function constructor requires a parser, which this realm does not embed")
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.FunctionPrototype), false, false, false))
	r.store.Get(r.FunctionPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant("Function", ctorVal)
}
