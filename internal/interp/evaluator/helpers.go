package evaluator

import "github.com/cwbudde/go-ecma/internal/interp/runtime"

// isCallable reports whether v names a callable object.
func isCallable(store *runtime.Store, v runtime.Value) bool {
	if !v.IsObject() {
		return false
	}
	obj := store.Get(v.AsObject())
	return obj != nil && obj.IsCallable()
}

// labelMatches reports whether an unlabeled break/continue (label=="")
// matches any enclosing construct, or a labeled one matches by name
// (§4.5 "break/continue... propagate outward until matched").
func labelMatches(target, label string) bool {
	return target == "" || target == label
}

// firstAbrupt returns the first non-Normal completion among cs and true,
// or the zero Completion and false if all are Normal — a small
// left-to-right sequencing helper used by argument lists, array/object
// literals, and sequence expressions (§4.5 "argument evaluation
// completes before the call", "left-to-right").
func firstAbrupt(cs ...runtime.Completion) (runtime.Completion, bool) {
	for _, c := range cs {
		if c.IsAbrupt() {
			return c, true
		}
	}
	return runtime.Completion{}, false
}

// evalList evaluates fn over each element in order, stopping at the
// first abrupt completion. It returns the collected values and, if
// evaluation was interrupted, the abrupt completion with ok=false.
func evalList[T any](items []T, fn func(T) (runtime.Value, runtime.Completion)) ([]runtime.Value, runtime.Completion, bool) {
	values := make([]runtime.Value, 0, len(items))
	for _, item := range items {
		v, c := fn(item)
		if c.IsAbrupt() {
			return nil, c, false
		}
		values = append(values, v)
	}
	return values, runtime.Completion{}, true
}
