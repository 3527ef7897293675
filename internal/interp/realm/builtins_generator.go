package realm

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// installGenerator wires Generator.prototype's next/return/throw to the
// runtime.GeneratorDriver stashed on IteratorState.Generator by
// generator.Factory.CreateGenerator (§4.7.3, Testable Properties 9/10).
// A generator object's own Symbol.iterator returns itself, matching
// script convention that generators are their own iterator.
func (r *Interpreter) installGenerator() {
	r.method(r.GeneratorPrototype, "next", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		driver, c := r.requireGenerator(this)
		if c.IsAbrupt() {
			return c
		}
		result, c := driver.Next(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(r.NewIterResult(result))
	})
	r.method(r.GeneratorPrototype, "return", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		driver, c := r.requireGenerator(this)
		if c.IsAbrupt() {
			return c
		}
		result, c := driver.Return(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(r.NewIterResult(result))
	})
	r.method(r.GeneratorPrototype, "throw", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		driver, c := r.requireGenerator(this)
		if c.IsAbrupt() {
			return c
		}
		result, c := driver.Throw(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(r.NewIterResult(result))
	})
	r.symbolMethod(r.GeneratorPrototype, "iterator", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalCompletion(this)
	})
}

func (r *Interpreter) requireGenerator(this runtime.Value) (runtime.GeneratorDriver, runtime.Completion) {
	if !this.IsObject() {
		return nil, r.ThrowTypeError("method called on non-generator receiver")
	}
	obj := r.store.Get(this.AsObject())
	if obj == nil || obj.IteratorState == nil || obj.IteratorState.Kind != runtime.IterGenerator || obj.IteratorState.Generator == nil {
		return nil, r.ThrowTypeError("method called on non-generator receiver")
	}
	return obj.IteratorState.Generator, runtime.NormalCompletion(runtime.Undefined)
}
