package realm

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// installObject wires Object.prototype and the Object constructor's
// static helpers onto the Property System built in runtime/property.go
// (§4.2). Enumeration order (keys/values/entries) reuses
// EnumerableOwnKeys, so S6's "integer keys ascending then insertion
// order" guarantee is inherited rather than re-implemented here.
func (r *Interpreter) installObject() {
	r.method(r.ObjectPrototype, "hasOwnProperty", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return runtime.NormalCompletion(runtime.Bool(false))
		}
		key, c := r.conv.ToPropertyKey(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Bool(runtime.HasOwnProperty(r.store, this.AsObject(), key)))
	})
	r.method(r.ObjectPrototype, "isPrototypeOf", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if !v.IsObject() || !this.IsObject() {
			return runtime.NormalCompletion(runtime.Bool(false))
		}
		h := v.AsObject()
		for {
			obj := r.store.Get(h)
			if obj == nil || !obj.HasProto || obj.Prototype == runtime.NoHandle {
				return runtime.NormalCompletion(runtime.Bool(false))
			}
			if obj.Prototype == this.AsObject() {
				return runtime.NormalCompletion(runtime.Bool(true))
			}
			h = obj.Prototype
		}
	})
	r.method(r.ObjectPrototype, "toString", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		tag := runtime.ClassObject
		if this.IsObject() {
			if obj := r.store.Get(this.AsObject()); obj != nil {
				tag = obj.Class
			}
		} else if this.IsUndefined() {
			tag = "Undefined"
		} else if this.IsNull() {
			tag = "Null"
		}
		return runtime.NormalCompletion(runtime.String("[object " + tag + "]"))
	})
	r.method(r.ObjectPrototype, "valueOf", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalCompletion(this)
	})

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("Object", 1, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if v.IsUndefined() || v.IsNull() {
			return runtime.NormalCompletion(runtime.Object(r.store.NewOrdinaryObject(r.ObjectPrototype, true)))
		}
		return runtime.NormalCompletion(v)
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.ObjectPrototype), false, false, false))
	r.store.Get(r.ObjectPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))

	r.method(ctorVal.AsObject(), "keys", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return r.objectKeysLike(arg(args, 0), 0)
	})
	r.method(ctorVal.AsObject(), "values", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return r.objectKeysLike(arg(args, 0), 1)
	})
	r.method(ctorVal.AsObject(), "entries", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return r.objectKeysLike(arg(args, 0), 2)
	})
	r.method(ctorVal.AsObject(), "assign", 2, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if len(args) == 0 || !args[0].IsObject() {
			return r.ThrowTypeError("Object.assign target must be an object")
		}
		target := args[0].AsObject()
		for _, src := range args[1:] {
			if !src.IsObject() {
				continue
			}
			keys := runtime.EnumerableOwnKeys(r.store, src.AsObject())
			for _, k := range keys {
				v, c := runtime.GetProperty(r.store, r, src.AsObject(), k, src)
				if c.IsAbrupt() {
					return c
				}
				if c := runtime.SetProperty(r.store, r, target, k, v, args[0]); c.IsAbrupt() {
					return c
				}
			}
		}
		return runtime.NormalCompletion(args[0])
	})
	r.method(ctorVal.AsObject(), "create", 2, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		protoVal := arg(args, 0)
		var proto runtime.Handle
		hasProto := false
		if protoVal.IsObject() {
			proto, hasProto = protoVal.AsObject(), true
		} else if !protoVal.IsNull() {
			return r.ThrowTypeError("Object prototype may only be an Object or null")
		}
		h := r.store.NewOrdinaryObject(proto, hasProto)
		return runtime.NormalCompletion(runtime.Object(h))
	})
	r.method(ctorVal.AsObject(), "getPrototypeOf", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if !v.IsObject() {
			return r.ThrowTypeError("Object.getPrototypeOf called on non-object")
		}
		obj := r.store.Get(v.AsObject())
		if obj == nil || !obj.HasProto || obj.Prototype == runtime.NoHandle {
			return runtime.NormalCompletion(runtime.Null)
		}
		return runtime.NormalCompletion(runtime.Object(obj.Prototype))
	})
	r.method(ctorVal.AsObject(), "setPrototypeOf", 2, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if !v.IsObject() {
			return r.ThrowTypeError("Object.setPrototypeOf called on non-object")
		}
		proto, isNull, c := r.toPrototypeArg(arg(args, 1))
		if c.IsAbrupt() {
			return c
		}
		if !r.setPrototypeOf(v.AsObject(), proto, isNull) {
			return r.ThrowTypeError("Cyclic __proto__ value")
		}
		return runtime.NormalCompletion(v)
	})
	r.method(ctorVal.AsObject(), "defineProperty", 3, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if !v.IsObject() {
			return r.ThrowTypeError("Object.defineProperty called on non-object")
		}
		key, c := r.conv.ToPropertyKey(arg(args, 1))
		if c.IsAbrupt() {
			return c
		}
		desc, c := r.toDescriptor(arg(args, 2))
		if c.IsAbrupt() {
			return c
		}
		if c := runtime.DefineProperty(r.store, r, v.AsObject(), key, *desc); c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(v)
	})
	r.method(ctorVal.AsObject(), "freeze", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		v := arg(args, 0)
		if v.IsObject() {
			if obj := r.store.Get(v.AsObject()); obj != nil {
				obj.Extensible = false
				for _, k := range obj.Properties.Keys() {
					d, _ := obj.Properties.Get(k)
					d.HasConfigurable, d.Configurable = true, false
					if d.HasValue {
						d.HasWritable, d.Writable = true, false
					}
				}
			}
		}
		return runtime.NormalCompletion(v)
	})

	r.installProtoAccessor()

	r.globalConstant("Object", ctorVal)
}

// installProtoAccessor wires the legacy Object.prototype.__proto__
// getter/setter pair onto the same [[SetPrototypeOf]] path as
// Object.setPrototypeOf, so assigning `obj.__proto__ = x` enforces the
// same acyclic-chain invariant (§3.2 invariant "prototype chain is
// acyclic, enforced on every write to prototype").
func (r *Interpreter) installProtoAccessor() {
	getter := r.CreateFunction(runtime.NewNativeFunction("get __proto__", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return runtime.NormalCompletion(runtime.Null)
		}
		obj := r.store.Get(this.AsObject())
		if obj == nil || !obj.HasProto || obj.Prototype == runtime.NoHandle {
			return runtime.NormalCompletion(runtime.Null)
		}
		return runtime.NormalCompletion(runtime.Object(obj.Prototype))
	}))
	setter := r.CreateFunction(runtime.NewNativeFunction("set __proto__", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return runtime.NormalCompletion(runtime.Undefined)
		}
		proto, isNull, c := r.toPrototypeArg(arg(args, 0))
		if c.IsAbrupt() {
			// Non-object, non-null values are silently ignored rather
			// than rejected (matches the setter's permissive legacy
			// behavior); only a genuine cycle throws.
			return runtime.NormalCompletion(runtime.Undefined)
		}
		if !r.setPrototypeOf(this.AsObject(), proto, isNull) {
			return r.ThrowTypeError("Cyclic __proto__ value")
		}
		return runtime.NormalCompletion(runtime.Undefined)
	}))
	r.store.Get(r.ObjectPrototype).Properties.Set("__proto__", &runtime.Descriptor{
		HasGet: true, Get: getter,
		HasSet: true, Set: setter,
		HasEnumerable: true, Enumerable: false,
		HasConfigurable: true, Configurable: true,
	})
}

// toPrototypeArg validates a candidate prototype value: an Object, or
// null. Anything else is a TypeError.
func (r *Interpreter) toPrototypeArg(v runtime.Value) (proto runtime.Handle, isNull bool, c runtime.Completion) {
	if v.IsObject() {
		return v.AsObject(), false, runtime.NormalCompletion(runtime.Undefined)
	}
	if v.IsNull() {
		return runtime.NoHandle, true, runtime.NormalCompletion(runtime.Undefined)
	}
	return runtime.NoHandle, false, r.ThrowTypeError("Object prototype may only be an Object or null")
}

// setPrototypeOf implements [[SetPrototypeOf]] (§3.2 invariant (c)):
// walking the candidate prototype's own chain must never reach back to
// target, and a non-extensible target rejects any change. Returns false
// when the assignment must fail; callers translate that into a thrown
// TypeError.
func (r *Interpreter) setPrototypeOf(target runtime.Handle, proto runtime.Handle, isNull bool) bool {
	obj := r.store.Get(target)
	if obj == nil {
		return false
	}
	current := runtime.NoHandle
	if obj.HasProto {
		current = obj.Prototype
	}
	newProto := runtime.NoHandle
	if !isNull {
		newProto = proto
	}
	if current == newProto {
		return true
	}
	if !obj.Extensible {
		return false
	}
	if !isNull {
		for h := proto; h != runtime.NoHandle; {
			if h == target {
				return false
			}
			p := r.store.Get(h)
			if p == nil || !p.HasProto {
				break
			}
			h = p.Prototype
		}
	}
	obj.HasProto = true
	obj.Prototype = newProto
	return true
}

// objectKeysLike backs Object.keys/values/entries (mode 0/1/2).
func (r *Interpreter) objectKeysLike(v runtime.Value, mode int) runtime.Completion {
	if !v.IsObject() {
		return r.ThrowTypeError("Object.keys called on non-object")
	}
	keys := runtime.EnumerableOwnKeys(r.store, v.AsObject())
	out := make([]runtime.Value, 0, len(keys))
	for _, k := range keys {
		switch mode {
		case 0:
			out = append(out, runtime.String(k))
		case 1:
			val, c := runtime.GetProperty(r.store, r, v.AsObject(), k, v)
			if c.IsAbrupt() {
				return c
			}
			out = append(out, val)
		default:
			val, c := runtime.GetProperty(r.store, r, v.AsObject(), k, v)
			if c.IsAbrupt() {
				return c
			}
			entry := r.store.NewArrayObject([]runtime.Value{runtime.String(k), val}, r.ArrayPrototype)
			out = append(out, runtime.Object(entry))
		}
	}
	return runtime.NormalCompletion(r.NewArray(out))
}

// toDescriptor reads a plain property-descriptor object the way
// Object.defineProperty's argument is interpreted (§3.3).
func (r *Interpreter) toDescriptor(v runtime.Value) (*runtime.Descriptor, runtime.Completion) {
	if !v.IsObject() {
		return nil, r.ThrowTypeError("property descriptor must be an object")
	}
	h := v.AsObject()
	d := &runtime.Descriptor{}
	if runtime.HasOwnProperty(r.store, h, "value") {
		val, c := runtime.GetProperty(r.store, r, h, "value", v)
		if c.IsAbrupt() {
			return nil, c
		}
		d.HasValue, d.Value = true, val
	}
	if runtime.HasOwnProperty(r.store, h, "get") {
		val, c := runtime.GetProperty(r.store, r, h, "get", v)
		if c.IsAbrupt() {
			return nil, c
		}
		d.HasGet, d.Get = true, val
	}
	if runtime.HasOwnProperty(r.store, h, "set") {
		val, c := runtime.GetProperty(r.store, r, h, "set", v)
		if c.IsAbrupt() {
			return nil, c
		}
		d.HasSet, d.Set = true, val
	}
	if runtime.HasOwnProperty(r.store, h, "writable") {
		val, c := runtime.GetProperty(r.store, r, h, "writable", v)
		if c.IsAbrupt() {
			return nil, c
		}
		d.HasWritable, d.Writable = true, runtime.ToBoolean(val)
	}
	if runtime.HasOwnProperty(r.store, h, "enumerable") {
		val, c := runtime.GetProperty(r.store, r, h, "enumerable", v)
		if c.IsAbrupt() {
			return nil, c
		}
		d.HasEnumerable, d.Enumerable = true, runtime.ToBoolean(val)
	}
	if runtime.HasOwnProperty(r.store, h, "configurable") {
		val, c := runtime.GetProperty(r.store, r, h, "configurable", v)
		if c.IsAbrupt() {
			return nil, c
		}
		d.HasConfigurable, d.Configurable = true, runtime.ToBoolean(val)
	}
	return d, runtime.NormalCompletion(runtime.Undefined)
}
