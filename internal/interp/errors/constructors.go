package errors

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// Prototypes bundles the realm's per-constructor Error.prototype
// handles so NewScriptError can stamp the right prototype without this
// package importing the realm package (which would create a cycle:
// realm imports errors to build the initial globals).
type Prototypes struct {
	Error          runtime.Handle
	TypeError      runtime.Handle
	RangeError     runtime.Handle
	ReferenceError runtime.Handle
	SyntaxError    runtime.Handle
}

func (p Prototypes) forName(name string) runtime.Handle {
	switch name {
	case "TypeError":
		return p.TypeError
	case "RangeError":
		return p.RangeError
	case "ReferenceError":
		return p.ReferenceError
	case "SyntaxError":
		return p.SyntaxError
	default:
		return p.Error
	}
}

// NewScriptError builds a script-visible Error object (§7 "Each has a
// constructor tag... They carry a message property and a name matching
// the constructor"). The object's own `message` property is set, and
// `name`/`constructor` resolve through the stamped prototype.
func NewScriptError(store *runtime.Store, prototypes Prototypes, name, message string) runtime.Value {
	h := store.NewOrdinaryObject(prototypes.forName(name), true)
	obj := store.Get(h)
	obj.Class = runtime.ClassError
	obj.ErrorData = &runtime.ErrorData{Name: name, Message: message}
	obj.Properties.Set("message", &runtime.Descriptor{
		HasValue: true, Value: runtime.String(message),
		HasWritable: true, Writable: true,
		HasEnumerable: true, Enumerable: false,
		HasConfigurable: true, Configurable: true,
	})
	return runtime.Object(h)
}

// TypeError, RangeError, ReferenceError, and SyntaxError are
// convenience wrappers over NewScriptError naming the constructor tag
// §7 lists explicitly.

func TypeError(store *runtime.Store, prototypes Prototypes, message string) runtime.Value {
	return NewScriptError(store, prototypes, "TypeError", message)
}

func RangeError(store *runtime.Store, prototypes Prototypes, message string) runtime.Value {
	return NewScriptError(store, prototypes, "RangeError", message)
}

func ReferenceError(store *runtime.Store, prototypes Prototypes, message string) runtime.Value {
	return NewScriptError(store, prototypes, "ReferenceError", message)
}

func SyntaxError(store *runtime.Store, prototypes Prototypes, message string) runtime.Value {
	return NewScriptError(store, prototypes, "SyntaxError", message)
}

func GenericError(store *runtime.Store, prototypes Prototypes, message string) runtime.Value {
	return NewScriptError(store, prototypes, "Error", message)
}
