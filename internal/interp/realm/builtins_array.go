package realm

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// installArray wires Array.prototype's iteration helpers and the
// Array constructor's static helpers onto the array exotic built in
// runtime/array.go (§4.2 "array-exotic fast paths").
func (r *Interpreter) installArray() {
	r.method(r.ArrayPrototype, "push", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		if obj == nil {
			return r.ThrowTypeError("Array.prototype.push called on non-array")
		}
		obj.ArrayElements = append(obj.ArrayElements, args...)
		return runtime.NormalCompletion(runtime.Number(float64(len(obj.ArrayElements))))
	})
	r.method(r.ArrayPrototype, "pop", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		if obj == nil || len(obj.ArrayElements) == 0 {
			return runtime.NormalCompletion(runtime.Undefined)
		}
		last := obj.ArrayElements[len(obj.ArrayElements)-1]
		obj.ArrayElements = obj.ArrayElements[:len(obj.ArrayElements)-1]
		return runtime.NormalCompletion(last)
	})
	r.method(r.ArrayPrototype, "join", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		sep := ","
		if len(args) > 0 && !args[0].IsUndefined() {
			s, c := r.conv.ToString(args[0])
			if c.IsAbrupt() {
				return c
			}
			sep = s
		}
		var out []byte
		if obj != nil {
			for i, v := range obj.ArrayElements {
				if i > 0 {
					out = append(out, sep...)
				}
				if v.IsUndefined() || v.IsNull() {
					continue
				}
				s, c := r.conv.ToString(v)
				if c.IsAbrupt() {
					return c
				}
				out = append(out, s...)
			}
		}
		return runtime.NormalCompletion(runtime.String(string(out)))
	})
	r.method(r.ArrayPrototype, "indexOf", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		needle := arg(args, 0)
		if obj != nil {
			for i, v := range obj.ArrayElements {
				if runtime.StrictEquals(v, needle) {
					return runtime.NormalCompletion(runtime.Number(float64(i)))
				}
			}
		}
		return runtime.NormalCompletion(runtime.Number(-1))
	})
	r.method(r.ArrayPrototype, "includes", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		needle := arg(args, 0)
		if obj != nil {
			for _, v := range obj.ArrayElements {
				if runtime.SameValueZero(v, needle) {
					return runtime.NormalCompletion(runtime.Bool(true))
				}
			}
		}
		return runtime.NormalCompletion(runtime.Bool(false))
	})
	r.method(r.ArrayPrototype, "slice", 2, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		if obj == nil {
			return runtime.NormalCompletion(r.NewArray(nil))
		}
		n := len(obj.ArrayElements)
		start, end := 0, n
		if len(args) > 0 && !args[0].IsUndefined() {
			s, c := r.conv.ToIntegerOrInfinity(args[0])
			if c.IsAbrupt() {
				return c
			}
			start = clampIndex(s, n)
		}
		if len(args) > 1 && !args[1].IsUndefined() {
			e, c := r.conv.ToIntegerOrInfinity(args[1])
			if c.IsAbrupt() {
				return c
			}
			end = clampIndex(e, n)
		}
		if start > end {
			start = end
		}
		out := append([]runtime.Value{}, obj.ArrayElements[start:end]...)
		return runtime.NormalCompletion(r.NewArray(out))
	})
	r.method(r.ArrayPrototype, "concat", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		var out []runtime.Value
		if obj := r.arrayOf(this); obj != nil {
			out = append(out, obj.ArrayElements...)
		}
		for _, a := range args {
			if ao := r.arrayOf(a); ao != nil {
				out = append(out, ao.ArrayElements...)
			} else {
				out = append(out, a)
			}
		}
		return runtime.NormalCompletion(r.NewArray(out))
	})
	r.method(r.ArrayPrototype, "forEach", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		cb := arg(args, 0)
		if obj == nil {
			return runtime.NormalCompletion(runtime.Undefined)
		}
		for i, v := range obj.ArrayElements {
			if c := ctx.Call(cb, arg(args, 1), []runtime.Value{v, runtime.Number(float64(i)), this}); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalCompletion(runtime.Undefined)
	})
	r.method(r.ArrayPrototype, "map", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		cb := arg(args, 0)
		var out []runtime.Value
		if obj != nil {
			for i, v := range obj.ArrayElements {
				res := ctx.Call(cb, arg(args, 1), []runtime.Value{v, runtime.Number(float64(i)), this})
				if res.IsAbrupt() {
					return res
				}
				out = append(out, res.Value)
			}
		}
		return runtime.NormalCompletion(r.NewArray(out))
	})
	r.method(r.ArrayPrototype, "filter", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		cb := arg(args, 0)
		var out []runtime.Value
		if obj != nil {
			for i, v := range obj.ArrayElements {
				res := ctx.Call(cb, arg(args, 1), []runtime.Value{v, runtime.Number(float64(i)), this})
				if res.IsAbrupt() {
					return res
				}
				if runtime.ToBoolean(res.Value) {
					out = append(out, v)
				}
			}
		}
		return runtime.NormalCompletion(r.NewArray(out))
	})
	r.method(r.ArrayPrototype, "reduce", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		obj := r.arrayOf(this)
		cb := arg(args, 0)
		var acc runtime.Value
		start := 0
		if len(args) > 1 {
			acc = args[1]
		} else {
			if obj == nil || len(obj.ArrayElements) == 0 {
				return r.ThrowTypeError("Reduce of empty array with no initial value")
			}
			acc = obj.ArrayElements[0]
			start = 1
		}
		if obj != nil {
			for i := start; i < len(obj.ArrayElements); i++ {
				res := ctx.Call(cb, runtime.Undefined, []runtime.Value{acc, obj.ArrayElements[i], runtime.Number(float64(i)), this})
				if res.IsAbrupt() {
					return res
				}
				acc = res.Value
			}
		}
		return runtime.NormalCompletion(acc)
	})
	r.symbolMethod(r.ArrayPrototype, "iterator", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return r.ThrowTypeError("Array iterator requires an object receiver")
		}
		it := r.store.NewArrayIterator(this.AsObject(), runtime.ArrayIterValues, r.ArrayIterProto)
		return runtime.NormalCompletion(runtime.Object(it))
	})
	r.installArrayIteratorPrototype()

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("Array", 1, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		if len(args) == 1 && args[0].IsNumber() {
			n := int(args[0].AsNumber())
			return runtime.NormalCompletion(r.NewArray(make([]runtime.Value, n)))
		}
		return runtime.NormalCompletion(r.NewArray(args))
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.ArrayPrototype), false, false, false))
	r.store.Get(r.ArrayPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.method(ctorVal.AsObject(), "isArray", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		return runtime.NormalCompletion(runtime.Bool(r.arrayOf(v) != nil))
	})
	r.method(ctorVal.AsObject(), "of", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalCompletion(r.NewArray(args))
	})
	r.globalConstant("Array", ctorVal)
}

func (r *Interpreter) installArrayIteratorPrototype() {
	r.method(r.ArrayIterProto, "next", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return r.ThrowTypeError("Array Iterator.prototype.next called on incompatible receiver")
		}
		obj := r.store.Get(this.AsObject())
		if obj == nil || obj.IteratorState == nil || obj.IteratorState.Kind != runtime.IterArray {
			return r.ThrowTypeError("Array Iterator.prototype.next called on incompatible receiver")
		}
		result := runtime.AdvanceArrayIterator(r.store, obj.IteratorState)
		return runtime.NormalCompletion(r.NewIterResult(result))
	})
}

// arrayOf returns the Object record backing v if v is the Array
// exotic, or nil otherwise.
func (r *Interpreter) arrayOf(v runtime.Value) *runtime.Object {
	if !v.IsObject() {
		return nil
	}
	obj := r.store.Get(v.AsObject())
	if obj == nil || obj.ArrayElements == nil {
		return nil
	}
	return obj
}

func clampIndex(f float64, length int) int {
	if f < 0 {
		f += float64(length)
	}
	if f < 0 {
		f = 0
	}
	if f > float64(length) {
		f = float64(length)
	}
	return int(f)
}
