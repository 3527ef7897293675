package realm

import (
	"github.com/cwbudde/go-ecma/internal/interp/regex"
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
)

// installRegExp wires RegExp.prototype's method surface (§4.9) onto
// the regex package's bridge (bridge.go/match.go/methods.go), and the
// RegExp constructor that compiles a pattern+flags pair eagerly so a
// bad pattern throws a SyntaxError at construction time rather than at
// first use.
func (r *Interpreter) installRegExp() {
	r.method(r.RegExpPrototype, "exec", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		h, c := r.requireRegExp(this)
		if c.IsAbrupt() {
			return c
		}
		input, c := r.conv.ToString(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		v, c := regex.Exec(r, h, r.ObjectPrototype, input)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(v)
	})
	r.method(r.RegExpPrototype, "test", 1, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		h, c := r.requireRegExp(this)
		if c.IsAbrupt() {
			return c
		}
		input, c := r.conv.ToString(arg(args, 0))
		if c.IsAbrupt() {
			return c
		}
		ok, c := regex.Test(r, h, r.ObjectPrototype, input)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.Bool(ok))
	})
	r.method(r.RegExpPrototype, "toString", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		h, c := r.requireRegExp(this)
		if c.IsAbrupt() {
			return c
		}
		data := r.store.Get(h).RegExpData
		return runtime.NormalCompletion(runtime.String("/" + data.Source + "/" + data.Flags))
	})
	r.installRegExpFlagGetter("global", func(p *regex.Pattern) bool { return p.Global })
	r.installRegExpFlagGetter("ignoreCase", func(p *regex.Pattern) bool { return p.IgnoreCase })
	r.installRegExpFlagGetter("multiline", func(p *regex.Pattern) bool { return p.Multiline })
	r.installRegExpFlagGetter("dotAll", func(p *regex.Pattern) bool { return p.DotAll })
	r.installRegExpFlagGetter("unicode", func(p *regex.Pattern) bool { return p.Unicode })
	r.installRegExpFlagGetter("sticky", func(p *regex.Pattern) bool { return p.Sticky })
	r.installRegExpFlagGetter("hasIndices", func(p *regex.Pattern) bool { return p.HasIndices })
	r.installRegExpStringGetter("source", func(obj *runtime.Object) string { return obj.RegExpData.Source })
	r.installRegExpStringGetter("flags", func(obj *runtime.Object) string {
		if p, err := regex.Compiled(r.store, obj.Handle()); err == nil && p != nil {
			return p.CanonicalFlags()
		}
		return obj.RegExpData.Flags
	})

	ctorVal := r.CreateFunction(runtime.NewNativeFunction("RegExp", 2, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		source, flags := "", ""
		first := arg(args, 0)
		if first.IsObject() {
			if obj := r.store.Get(first.AsObject()); obj != nil && obj.RegExpData != nil {
				source, flags = obj.RegExpData.Source, obj.RegExpData.Flags
			}
		} else if !first.IsUndefined() {
			s, c := r.conv.ToString(first)
			if c.IsAbrupt() {
				return c
			}
			source = s
		}
		if len(args) > 1 && !args[1].IsUndefined() {
			f, c := r.conv.ToString(args[1])
			if c.IsAbrupt() {
				return c
			}
			flags = f
		}
		if _, err := regex.Compile(source, flags); err != nil {
			return r.errProtoThrow("SyntaxError", "Invalid regular expression: "+err.Error())
		}
		h := r.store.NewOrdinaryObject(r.RegExpPrototype, true)
		obj := r.store.Get(h)
		obj.Class = runtime.ClassRegExp
		obj.RegExpData = &runtime.RegExpData{Source: source, Flags: flags}
		return runtime.NormalCompletion(runtime.Object(h))
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(r.RegExpPrototype), false, false, false))
	r.store.Get(r.RegExpPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant("RegExp", ctorVal)
}

func (r *Interpreter) requireRegExp(this runtime.Value) (runtime.Handle, runtime.Completion) {
	if !this.IsObject() {
		return runtime.NoHandle, r.ThrowTypeError("method called on non-RegExp receiver")
	}
	obj := r.store.Get(this.AsObject())
	if obj == nil || obj.RegExpData == nil {
		return runtime.NoHandle, r.ThrowTypeError("method called on non-RegExp receiver")
	}
	return this.AsObject(), runtime.NormalCompletion(runtime.Undefined)
}

func (r *Interpreter) installRegExpFlagGetter(name string, pick func(*regex.Pattern) bool) {
	getter := r.CreateFunction(runtime.NewNativeFunction("get "+name, 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		h, c := r.requireRegExp(this)
		if c.IsAbrupt() {
			return c
		}
		p, err := regex.Compiled(r.store, h)
		if err != nil || p == nil {
			return runtime.NormalCompletion(runtime.Bool(false))
		}
		return runtime.NormalCompletion(runtime.Bool(pick(p)))
	}))
	r.store.Get(r.RegExpPrototype).Properties.Set(name, &runtime.Descriptor{
		HasGet: true, Get: getter,
		HasEnumerable: true, Enumerable: false,
		HasConfigurable: true, Configurable: true,
	})
}

func (r *Interpreter) installRegExpStringGetter(name string, pick func(*runtime.Object) string) {
	getter := r.CreateFunction(runtime.NewNativeFunction("get "+name, 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		h, c := r.requireRegExp(this)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(runtime.String(pick(r.store.Get(h))))
	}))
	r.store.Get(r.RegExpPrototype).Properties.Set(name, &runtime.Descriptor{
		HasGet: true, Get: getter,
		HasEnumerable: true, Enumerable: false,
		HasConfigurable: true, Configurable: true,
	})
}

// errProtoThrow builds a Throw completion for one of the realm's own
// error prototypes, used during intrinsic installation helpers that
// don't have an evaluator.Context to call ctx.Throw on.
func (r *Interpreter) errProtoThrow(name, message string) runtime.Completion {
	return runtime.ThrowCompletion(r.NewError(name, message))
}
