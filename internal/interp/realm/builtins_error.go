package realm

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// installErrors wires Error and its four subclasses (§7 "Each has a
// constructor tag: TypeError, RangeError, SyntaxError, ReferenceError,
// Error"). Each subclass constructor builds an instance whose
// prototype chain reaches ErrorPrototype, and errors.Prototypes
// (already built by errors.NewScriptError's callers throughout the
// runtime/evaluator packages) is pointed at these same handles so a
// thrown RangeError from deep inside, say, the Property System shares
// its prototype with one a script constructs directly.
func (r *Interpreter) installErrors() {
	r.method(r.ErrorPrototype, "toString", 0, func(ctx runtime.NativeContext, this, _ runtime.Value, args []runtime.Value) runtime.Completion {
		name, message := "Error", ""
		if this.IsObject() {
			if obj := r.store.Get(this.AsObject()); obj != nil && obj.ErrorData != nil {
				name, message = obj.ErrorData.Name, obj.ErrorData.Message
			}
		}
		if message == "" {
			return runtime.NormalCompletion(runtime.String(name))
		}
		return runtime.NormalCompletion(runtime.String(name + ": " + message))
	})
	r.store.Get(r.ErrorPrototype).Properties.Set("name", runtime.DataDescriptorPtr(runtime.String("Error"), true, false, true))
	r.store.Get(r.ErrorPrototype).Properties.Set("message", runtime.DataDescriptorPtr(runtime.String(""), true, false, true))

	r.errProtos.Error = r.ErrorPrototype
	r.errProtos.TypeError = r.installErrorSubclass("TypeError")
	r.errProtos.RangeError = r.installErrorSubclass("RangeError")
	r.errProtos.ReferenceError = r.installErrorSubclass("ReferenceError")
	r.errProtos.SyntaxError = r.installErrorSubclass("SyntaxError")

	ctorVal := r.errorConstructor("Error", r.ErrorPrototype)
	r.store.Get(r.ErrorPrototype).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant("Error", ctorVal)
}

// installErrorSubclass builds one Error subclass's prototype (chained
// to Error.prototype) and global constructor, returning the prototype
// handle for errors.Prototypes.
func (r *Interpreter) installErrorSubclass(name string) runtime.Handle {
	proto := r.store.NewOrdinaryObject(r.ErrorPrototype, true)
	r.store.Get(proto).Properties.Set("name", runtime.DataDescriptorPtr(runtime.String(name), true, false, true))
	ctorVal := r.errorConstructor(name, proto)
	r.store.Get(proto).Properties.Set("constructor", runtime.DataDescriptorPtr(ctorVal, true, false, true))
	r.globalConstant(name, ctorVal)
	return proto
}

func (r *Interpreter) errorConstructor(name string, proto runtime.Handle) runtime.Value {
	ctorVal := r.CreateFunction(runtime.NewNativeFunction(name, 1, func(ctx runtime.NativeContext, this, newTarget runtime.Value, args []runtime.Value) runtime.Completion {
		message := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			s, c := r.conv.ToString(args[0])
			if c.IsAbrupt() {
				return c
			}
			message = s
		}
		// Constructed via `new`: stamp the fresh instance ConstructValue
		// already allocated with proto rather than allocating a second
		// object.
		if this.IsObject() {
			if obj := r.store.Get(this.AsObject()); obj != nil && !newTarget.IsUndefined() {
				obj.Class = runtime.ClassError
				obj.ErrorData = &runtime.ErrorData{Name: name, Message: message}
				obj.Properties.Set("message", runtime.DataDescriptorPtr(runtime.String(message), true, false, true))
				return runtime.NormalCompletion(this)
			}
		}
		// Called without `new`: build a standalone instance directly
		// against proto, matching script convention for Error-like
		// constructors called as plain functions.
		h := r.store.NewOrdinaryObject(proto, true)
		obj := r.store.Get(h)
		obj.Class = runtime.ClassError
		obj.ErrorData = &runtime.ErrorData{Name: name, Message: message}
		obj.Properties.Set("message", runtime.DataDescriptorPtr(runtime.String(message), true, false, true))
		return runtime.NormalCompletion(runtime.Object(h))
	}))
	ctorObj := r.store.Get(ctorVal.AsObject())
	ctorObj.Properties.Set("prototype", runtime.DataDescriptorPtr(runtime.Object(proto), false, false, false))
	return ctorVal
}
