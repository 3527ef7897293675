package realm

import (
	"github.com/cwbudde/go-ecma/internal/interp/evaluator"
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
)

// installCollections wires Map/Set.prototype onto the insertion-ordered
// backing built in runtime/collections.go, and their constructors onto
// evaluator.GetIterator so `new Map(iterable)`/`new Set(iterable)` seed
// from any iterable, not just arrays.
func (r *Interpreter) installCollections() {
	r.installMap()
	r.installSet()
}

func (r *Interpreter) installMap() {
	r.method(r.MapPrototype, "get", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireMap(this)
		if c.IsAbrupt() {
			return c
		}
		v, _ := runtime.MapGet(d, arg(args, 0))
		return runtime.NormalCompletion(v)
	})
	r.method(r.MapPrototype, "set", 2, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireMap(this)
		if c.IsAbrupt() {
			return c
		}
		runtime.MapSet(d, arg(args, 0), arg(args, 1))
		return runtime.NormalCompletion(this)
	})
	r.method(r.MapPrototype, "has", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireMap(this)
		if c.IsAbrupt() {
			return c
		}
		_, ok := runtime.MapGet(d, arg(args, 0))
		return runtime.NormalCompletion(runtime.Bool(ok))
	})
	r.method(r.MapPrototype, "delete", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireMap(this)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Bool(runtime.MapDelete(d, arg(args, 0))))
	})
	r.method(r.MapPrototype, "clear", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireMap(this)
		if c.IsAbrupt() {
			return c
		}
		d.Keys, d.Values = nil, nil
		return runtime.NormalCompletion(runtime.Undefined)
	})
	r.method(r.MapPrototype, "forEach", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireMap(this)
		if c.IsAbrupt() {
			return c
		}
		cb := arg(args, 0)
		for i := 0; i < len(d.Keys); i++ {
			if c := ctx.Call(cb, arg(args, 1), []runtime.Value{d.Values[i], d.Keys[i], this}); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalCompletion(runtime.Undefined)
	})
	r.installMapIterMethod("keys", runtime.ArrayIterKeys)
	r.installMapIterMethod("values", runtime.ArrayIterValues)
	r.installMapIterMethod("entries", runtime.ArrayIterEntries)
	r.symbolMethod(r.MapPrototype, "iterator", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return r.mapIterator(this, runtime.ArrayIterEntries)
	})
	r.installSizeGetter(r.MapPrototype, func(obj *runtime.Object) int { return len(obj.MapData.Keys) })
	r.method(r.MapIterProto, "next", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return r.ThrowTypeError("Map Iterator.prototype.next called on incompatible receiver")
		}
		obj := r.store.Get(this.AsObject())
		if obj == nil || obj.IteratorState == nil || obj.IteratorState.Kind != runtime.IterMap {
			return r.ThrowTypeError("Map Iterator.prototype.next called on incompatible receiver")
		}
		return runtime.NormalCompletion(r.NewIterResult(runtime.AdvanceMapIterator(r.store, obj.IteratorState)))
	})

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("Map", 0, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		h := r.store.NewMapObject(r.MapPrototype)
		if this.IsObject() && !newTarget.IsUndefined() {
			target := r.store.Get(this.AsObject())
			target.Class = runtime.ClassMap
			target.MapData = r.store.Get(h).MapData
			h = this.AsObject()
		}
		if c := r.seedMap(h, arg(args, 0)); c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Object(h))
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.MapPrototype), false, false, false))
	r.store.Get(r.MapPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant("Map", ctorVal)
}

func (r *Interpreter) seedMap(h runtime.Handle, iterable runtime.Value) runtime.Completion {
	if iterable.IsUndefined() || iterable.IsNull() {
		return runtime.NormalCompletion(runtime.Undefined)
	}
	entries, c := evaluator.GetIterator(r.baseContext(), iterable, -1)
	if c.IsAbrupt() {
		return c
	}
	data := r.store.Get(h).MapData
	for _, entry := range entries {
		if pair := r.arrayOf(entry); pair != nil && len(pair.ArrayElements) >= 2 {
			runtime.MapSet(data, pair.ArrayElements[0], pair.ArrayElements[1])
		} else if pair != nil && len(pair.ArrayElements) == 1 {
			runtime.MapSet(data, pair.ArrayElements[0], runtime.Undefined)
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func (r *Interpreter) requireMap(this runtime.Value) (*runtime.MapData, runtime.Completion) {
	if !this.IsObject() {
		return nil, r.ThrowTypeError("method called on non-Map receiver")
	}
	obj := r.store.Get(this.AsObject())
	if obj == nil || obj.MapData == nil {
		return nil, r.ThrowTypeError("method called on non-Map receiver")
	}
	return obj.MapData, runtime.NormalCompletion(runtime.Undefined)
}

func (r *Interpreter) mapIterator(this runtime.Value, kind runtime.ArrayIterKind) runtime.Completion {
	if !this.IsObject() {
		return r.ThrowTypeError("Map iterator requires an object receiver")
	}
	it := r.store.NewMapIterator(this.AsObject(), kind, r.MapIterProto)
	return runtime.NormalCompletion(runtime.Object(it))
}

func (r *Interpreter) installMapIterMethod(name string, kind runtime.ArrayIterKind) {
	r.method(r.MapPrototype, name, 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return r.mapIterator(this, kind)
	})
}

func (r *Interpreter) installSizeGetter(target runtime.Handle, size func(*runtime.Object) int) {
	getter := r.CreateFunction(runtime.NewNativeFunction("get size", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return r.ThrowTypeError("size getter called on non-object receiver")
		}
		obj := r.store.Get(this.AsObject())
		if obj == nil {
			return r.ThrowTypeError("size getter called on non-object receiver")
		}
		return runtime.NormalCompletion(runtime.Number(float64(size(obj))))
	}))
	r.store.Get(target).Properties.Set("size", &runtime.Descriptor{
		HasGet: true, Get: getter,
		HasEnumerable: true, Enumerable: false,
		HasConfigurable: true, Configurable: true,
	})
}

func (r *Interpreter) installSet() {
	r.method(r.SetPrototype, "add", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireSet(this)
		if c.IsAbrupt() {
			return c
		}
		runtime.SetAdd(d, arg(args, 0))
		return runtime.NormalCompletion(this)
	})
	r.method(r.SetPrototype, "has", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireSet(this)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Bool(runtime.SetHas(d, arg(args, 0))))
	})
	r.method(r.SetPrototype, "delete", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireSet(this)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Bool(runtime.SetDelete(d, arg(args, 0))))
	})
	r.method(r.SetPrototype, "clear", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireSet(this)
		if c.IsAbrupt() {
			return c
		}
		d.Values = nil
		return runtime.NormalCompletion(runtime.Undefined)
	})
	r.method(r.SetPrototype, "forEach", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		d, c := r.requireSet(this)
		if c.IsAbrupt() {
			return c
		}
		cb := arg(args, 0)
		for _, v := range d.Values {
			if c := ctx.Call(cb, arg(args, 1), []runtime.Value{v, v, this}); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalCompletion(runtime.Undefined)
	})
	r.installSetIterMethod("values", runtime.ArrayIterValues)
	r.installSetIterMethod("keys", runtime.ArrayIterValues)
	r.installSetIterMethod("entries", runtime.ArrayIterEntries)
	r.symbolMethod(r.SetPrototype, "iterator", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return r.setIterator(this, runtime.ArrayIterValues)
	})
	r.installSizeGetter(r.SetPrototype, func(obj *runtime.Object) int { return len(obj.SetData.Values) })
	r.method(r.SetIterProto, "next", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return r.ThrowTypeError("Set Iterator.prototype.next called on incompatible receiver")
		}
		obj := r.store.Get(this.AsObject())
		if obj == nil || obj.IteratorState == nil || obj.IteratorState.Kind != runtime.IterSet {
			return r.ThrowTypeError("Set Iterator.prototype.next called on incompatible receiver")
		}
		return runtime.NormalCompletion(r.NewIterResult(runtime.AdvanceSetIterator(r.store, obj.IteratorState)))
	})

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("Set", 0, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		h := r.store.NewSetObject(r.SetPrototype)
		if this.IsObject() && !newTarget.IsUndefined() {
			target := r.store.Get(this.AsObject())
			target.Class = runtime.ClassSet
			target.SetData = r.store.Get(h).SetData
			h = this.AsObject()
		}
		if c := r.seedSet(h, arg(args, 0)); c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Object(h))
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.SetPrototype), false, false, false))
	r.store.Get(r.SetPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant("Set", ctorVal)
}

func (r *Interpreter) seedSet(h runtime.Handle, iterable runtime.Value) runtime.Completion {
	if iterable.IsUndefined() || iterable.IsNull() {
		return runtime.NormalCompletion(runtime.Undefined)
	}
	values, c := evaluator.GetIterator(r.baseContext(), iterable, -1)
	if c.IsAbrupt() {
		return c
	}
	data := r.store.Get(h).SetData
	for _, v := range values {
		runtime.SetAdd(data, v)
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func (r *Interpreter) requireSet(this runtime.Value) (*runtime.SetData, runtime.Completion) {
	if !this.IsObject() {
		return nil, r.ThrowTypeError("method called on non-Set receiver")
	}
	obj := r.store.Get(this.AsObject())
	if obj == nil || obj.SetData == nil {
		return nil, r.ThrowTypeError("method called on non-Set receiver")
	}
	return obj.SetData, runtime.NormalCompletion(runtime.Undefined)
}

func (r *Interpreter) setIterator(this runtime.Value, kind runtime.ArrayIterKind) runtime.Completion {
	if !this.IsObject() {
		return r.ThrowTypeError("Set iterator requires an object receiver")
	}
	it := r.store.NewSetIterator(this.AsObject(), kind, r.SetIterProto)
	return runtime.NormalCompletion(runtime.Object(it))
}

func (r *Interpreter) installSetIterMethod(name string, kind runtime.ArrayIterKind) {
	r.method(r.SetPrototype, name, 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return r.setIterator(this, kind)
	})
}
