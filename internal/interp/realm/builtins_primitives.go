package realm

import (
	"strings"
	"unicode/utf8"

	"github.com/cwbudde/go-ecma/internal/interp/runtime"
)

// installStringNumberBoolean wires the wrapper-object prototypes
// (§3.2 "primitive_value" backs Boolean/Number/String) and their
// constructors. Methods coerce `this` through ToString/ToNumber so
// they behave the same whether called on a primitive or a wrapper
// object, matching how script code actually uses them.
func (r *Interpreter) installStringNumberBoolean() {
	r.installStringPrototype()
	r.installNumberPrototype()
	r.installBooleanPrototype()
}

func (r *Interpreter) installStringPrototype() {
	r.method(r.StringPrototype, "toString", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.String(s))
	})
	r.method(r.StringPrototype, "charAt", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		units := runtime.StringToUTF16(s)
		idx, c := r.conv.ToIntegerOrInfinity(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		i := int(idx)
		if i < 0 || i >= len(units) {
			return runtime.NormalCompletion(runtime.String(""))
		}
		return runtime.NormalCompletion(runtime.String(runtime.UTF16ToString(units[i : i+1])))
	})
	r.method(r.StringPrototype, "indexOf", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		needle, c := r.conv.ToString(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Number(float64(utf16Index(s, strings.Index(s, needle)))))
	})
	r.method(r.StringPrototype, "slice", 2, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		units := runtime.StringToUTF16(s)
		n := len(units)
		start, end := 0, n
		if len(args) > 0 && !args[0].IsUndefined() {
			v, c := r.conv.ToIntegerOrInfinity(args[0])
			if c.IsAbrupt() {
				return c
			}
			start = clampIndex(v, n)
		}
		if len(args) > 1 && !args[1].IsUndefined() {
			v, c := r.conv.ToIntegerOrInfinity(args[1])
			if c.IsAbrupt() {
				return c
			}
			end = clampIndex(v, n)
		}
		if start > end {
			start = end
		}
		return runtime.NormalCompletion(runtime.String(runtime.UTF16ToString(units[start:end])))
	})
	r.method(r.StringPrototype, "toUpperCase", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.String(strings.ToUpper(s)))
	})
	r.method(r.StringPrototype, "toLowerCase", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.String(strings.ToLower(s)))
	})
	r.method(r.StringPrototype, "split", 2, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		if len(args) == 0 || args[0].IsUndefined() {
			return runtime.NormalCompletion(r.NewArray([]runtime.Value{runtime.String(s)}))
		}
		sep, c := r.conv.ToString(args[0])
		if c.IsAbrupt() {
			return c
		}
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]runtime.Value, len(parts))
		for i, p := range parts {
			out[i] = runtime.String(p)
		}
		return runtime.NormalCompletion(r.NewArray(out))
	})
	r.method(r.StringPrototype, "includes", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		needle, c := r.conv.ToString(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Bool(strings.Contains(s, needle)))
	})
	r.symbolMethod(r.StringPrototype, "iterator", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		s, c := r.thisString(this)
		if c.IsAbrupt() {
			return c
		}
		it := r.store.NewStringIterator(s, r.StringIterProto)
		return runtime.NormalCompletion(runtime.Object(it))
	})
	r.method(r.StringIterProto, "next", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		if !this.IsObject() {
			return r.ThrowTypeError("String Iterator.prototype.next called on incompatible receiver")
		}
		obj := r.store.Get(this.AsObject())
		if obj == nil || obj.IteratorState == nil {
			return r.ThrowTypeError("String Iterator.prototype.next called on incompatible receiver")
		}
		return runtime.NormalCompletion(r.NewIterResult(runtime.AdvanceStringIterator(obj.IteratorState)))
	})

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("String", 1, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		if len(args) == 0 {
			return runtime.NormalCompletion(runtime.String(""))
		}
		s, c := r.conv.ToString(args[0])
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.String(s))
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.StringPrototype), false, false, false))
	r.store.Get(r.StringPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant("String", ctorVal)
}

// thisString coerces `this` the way String.prototype methods treat
// their receiver: primitives convert directly, wrapper objects read
// their PrimitiveValue slot.
func (r *Interpreter) thisString(this runtime.Value) (string, runtime.Completion) {
	if this.IsObject() {
		if obj := r.store.Get(this.AsObject()); obj != nil && obj.HasPrimitiveValue {
			return r.conv.ToString(obj.PrimitiveValue)
		}
	}
	return r.conv.ToString(this)
}

// utf16Index converts a byte offset from strings.Index (-1 for "not
// found") into a UTF-16 code-unit offset; ASCII-only fast path covers
// the overwhelming majority of script strings, falling back to a rune
// walk only when the prefix contains multi-byte runes.
func utf16Index(s string, byteIdx int) int {
	if byteIdx <= 0 {
		return byteIdx
	}
	prefix := s[:byteIdx]
	if utf8.RuneCountInString(prefix) == len(prefix) {
		return byteIdx
	}
	return len(runtime.StringToUTF16(prefix))
}

func (r *Interpreter) installNumberPrototype() {
	r.method(r.NumberPrototype, "toString", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		n, c := r.thisNumber(this)
		if c.IsAbrupt() {
			return c
		}
		s, c := r.conv.ToString(runtime.Number(n))
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.String(s))
	})
	r.method(r.NumberPrototype, "valueOf", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		n, c := r.thisNumber(this)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Number(n))
	})

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("Number", 1, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		if len(args) == 0 {
			return runtime.NormalCompletion(runtime.Number(0))
		}
		n, c := r.conv.ToNumber(args[0])
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Number(n))
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.NumberPrototype), false, false, false))
	r.store.Get(r.NumberPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant("Number", ctorVal)
}

func (r *Interpreter) thisNumber(this runtime.Value) (float64, runtime.Completion) {
	if this.IsObject() {
		if obj := r.store.Get(this.AsObject()); obj != nil && obj.HasPrimitiveValue {
			return r.conv.ToNumber(obj.PrimitiveValue)
		}
	}
	return r.conv.ToNumber(this)
}

func (r *Interpreter) installBooleanPrototype() {
	r.method(r.BooleanPrototype, "toString", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		b := runtime.ToBoolean(this)
		if this.IsObject() {
			if obj := r.store.Get(this.AsObject()); obj != nil && obj.HasPrimitiveValue {
				b = runtime.ToBoolean(obj.PrimitiveValue)
			}
		}
		if b {
			return runtime.NormalCompletion(runtime.String("true"))
		}
		return runtime.NormalCompletion(runtime.String("false"))
	})

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("Boolean", 1, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalCompletion(runtime.Bool(runtime.ToBoolean(arg(args, 0))))
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.BooleanPrototype), false, false, false))
	r.store.Get(r.BooleanPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant("Boolean", ctorVal)
}
