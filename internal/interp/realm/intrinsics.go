package realm

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// installIntrinsics builds the prototype chain and global bindings
// every script needs before it runs (§6 "a hook to pre-declare
// intrinsics... and install their prototypes before any user code
// runs"). Order matters: ObjectPrototype has no prototype of its own,
// FunctionPrototype is itself an ordinary object whose prototype is
// ObjectPrototype, and every other prototype chains to one of those
// two.
func (r *Interpreter) installIntrinsics() {
	r.ObjectPrototype = r.store.Allocate(&runtime.Object{
		Class:      runtime.ClassObject,
		Extensible: true,
		Properties: runtime.NewPropertyMap(),
	})
	r.FunctionPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.store.Get(r.FunctionPrototype).Class = runtime.ClassFunction
	r.store.Get(r.FunctionPrototype).Callable = runtime.NewNativeFunction("", 0, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		return runtime.NormalCompletion(runtime.Undefined)
	})

	r.ArrayPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.store.Get(r.ArrayPrototype).ArrayElements = []runtime.Value{}
	r.StringPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.NumberPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.BooleanPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.SymbolPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.BigIntPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.ErrorPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.RegExpPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.GeneratorPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.MapPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.SetPrototype = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.ArrayIterProto = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.StringIterProto = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.MapIterProto = r.store.NewOrdinaryObject(r.ObjectPrototype, true)
	r.SetIterProto = r.store.NewOrdinaryObject(r.ObjectPrototype, true)

	r.globalObject = r.store.NewOrdinaryObject(r.ObjectPrototype, true)

	r.installObject()
	r.installFunction()
	r.installArray()
	r.installStringNumberBoolean()
	r.installSymbol()
	r.installErrors()
	r.installRegExp()
	r.installGenerator()
	r.installCollections()
}

// method wraps fn as a native Function Value and defines it as a
// non-enumerable own property of target — the shape every prototype
// method installer below shares (§3.5, §4.2 "built-in methods are
// non-enumerable").
func (r *Interpreter) method(target runtime.Handle, name string, arity int, fn runtime.NativeFunc) {
	val := r.CreateFunction(runtime.NewNativeFunction(name, arity, fn))
	obj := r.store.Get(target)
	obj.Properties.Set(name, runtime.DataDescriptorPtr(val, true, false, true))
}

// symbolMethod installs fn under the canonical string key for a
// well-known symbol (e.g. Symbol.iterator), still non-enumerable.
func (r *Interpreter) symbolMethod(target runtime.Handle, wellKnown string, arity int, fn runtime.NativeFunc) {
	key := r.SymbolKeyFor(wellKnown)
	val := r.CreateFunction(runtime.NewNativeFunction(wellKnown, arity, fn))
	obj := r.store.Get(target)
	obj.Properties.Set(key, runtime.DataDescriptorPtr(val, true, false, true))
}

// globalConstant binds name in the global environment as an
// initialized var binding (constructors, intrinsic objects).
func (r *Interpreter) globalConstant(name string, value runtime.Value) {
	r.globalEnv.DeclareInitialized(name, runtime.BindVar, value)
}

// arg returns args[i] or Undefined if the call was made with fewer
// arguments, matching the spec's "missing arguments are undefined"
// rule (§4.6 step 2) for native-function argument access.
func arg(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined
}
