package realm

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// installSymbol wires the Symbol function (not a constructor — `new
// Symbol()` is a TypeError per script semantics), its prototype, the
// global Symbol.for registry, and the well-known-symbol properties
// built-ins key their methods on (§6 "symbol-key-for(name) helper",
// §9 open question (b)).
func (r *Interpreter) installSymbol() {
	r.method(r.SymbolPrototype, "toString", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsSymbol() {
			return r.ThrowTypeError("Symbol.prototype.toString requires a symbol receiver")
		}
		return runtime.NormalCompletion(runtime.String(this.AsSymbol().String()))
	})
	r.method(r.SymbolPrototype, "valueOf", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalCompletion(this)
	})

	fnVal := r.CreateFunction(runtime.NewNativeFunction("Symbol", 0, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		if !newTarget.IsUndefined() {
			return r.ThrowTypeError("Symbol is not a constructor")
		}
		desc := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			s, c := r.conv.ToString(args[0])
			if c.IsAbrupt() {
				return c
			}
			desc = s
		}
		return runtime.NormalCompletion(runtime.SymbolValue(runtime.NewSymbol(desc)))
	}))
	fnObj := r.store.Get(fnVal.AsObject())
	fnObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.SymbolPrototype), false, false, false))

	for _, name := range []string{"iterator", "asyncIterator", "toPrimitive", "hasInstance", "toStringTag", "matchAll"} {
		fnObj.Properties.Set(name, runtime.DataDescriptorPtr(r.WellKnownSymbolValue(name), false, false, false))
	}

	r.method(fnVal.AsObject(), "for", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		key, c := r.conv.ToString(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		sym, ok := r.symbolRegistry[key]
		if !ok {
			sym = runtime.NewSymbol(key)
			r.symbolRegistry[key] = sym
		}
		return runtime.NormalCompletion(runtime.SymbolValue(sym))
	})

	r.globalConstant("Symbol", fnVal)
}
