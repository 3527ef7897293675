package realm

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// This file gathers the embedding surface (§6 "EXTERNAL INTERFACES")
// that a parser or a native built-in links against. Most of it is
// already satisfied by Interpreter's runtime.NativeContext methods in
// realm.go; what remains here are the handful of conveniences that
// don't belong to that interface (the iterator-result constructor,
// and a couple of read-only accessors a built-in needs to cooperate
// with intrinsic prototypes).

// NewIterResult builds the `{value, done}` object the iterator
// protocol's next()/return()/throw() methods return (§6 "an
// iterator-result constructor").
func (r *Interpreter) NewIterResult(result runtime.IterResult) runtime.Value {
	return runtime.Object(r.store.IterResultObject(result, r.ObjectPrototype))
}

// Prototype resolves a well-known intrinsic prototype handle by name,
// for built-ins that must stamp `obj.Prototype` without a direct field
// reference (e.g. a generic collection constructor shared across Map
// and Set installers).
func (r *Interpreter) Prototype(name string) (runtime.Handle, bool) {
	switch name {
	case "Object":
		return r.ObjectPrototype, true
	case "Function":
		return r.FunctionPrototype, true
	case "Array":
		return r.ArrayPrototype, true
	case "String":
		return r.StringPrototype, true
	case "Number":
		return r.NumberPrototype, true
	case "Boolean":
		return r.BooleanPrototype, true
	case "Symbol":
		return r.SymbolPrototype, true
	case "BigInt":
		return r.BigIntPrototype, true
	case "Error":
		return r.ErrorPrototype, true
	case "RegExp":
		return r.RegExpPrototype, true
	case "Generator":
		return r.GeneratorPrototype, true
	case "Map":
		return r.MapPrototype, true
	case "Set":
		return r.SetPrototype, true
	default:
		return runtime.NoHandle, false
	}
}
