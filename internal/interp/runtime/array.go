package runtime

import "math"

// NewArrayObject allocates an Array-exotic object seeded with values
// (§3.2 "array_elements"). prototype is the realm's Array.prototype.
func (s *Store) NewArrayObject(values []Value, prototype Handle) Handle {
	o := newObject(ClassArray)
	o.Prototype = prototype
	o.HasProto = true
	o.ArrayElements = append([]Value{}, values...)
	return s.Allocate(o)
}

// setArrayElement writes v at idx, extending the dense element slice
// with `undefined` holes as needed and monotonically raising `length`
// (§4.2 "Array exotic").
func setArrayElement(obj *Object, idx int, v Value) {
	if idx < len(obj.ArrayElements) {
		obj.ArrayElements[idx] = v
		return
	}
	for len(obj.ArrayElements) < idx {
		obj.ArrayElements = append(obj.ArrayElements, Undefined)
	}
	obj.ArrayElements = append(obj.ArrayElements, v)
}

// setArrayLength implements the `length` magic setter (§4.2 "the length
// property is a magic setter that truncates... and extends with
// undefined when raised").
func setArrayLength(obj *Object, v Value, ctx NativeContext) Completion {
	n := v.AsNumber()
	if v.Kind() != KindNumber || n != math.Trunc(n) || n < 0 || n > math.MaxUint32 {
		if ctx != nil {
			return ctx.ThrowRangeError("Invalid array length")
		}
		return NormalCompletion(Undefined)
	}
	newLen := int(n)
	switch {
	case newLen < len(obj.ArrayElements):
		obj.ArrayElements = obj.ArrayElements[:newLen]
	case newLen > len(obj.ArrayElements):
		for len(obj.ArrayElements) < newLen {
			obj.ArrayElements = append(obj.ArrayElements, Undefined)
		}
	}
	return NormalCompletion(Undefined)
}

// ArrayLength returns the object's array length, or 0 if it is not an
// Array exotic.
func (o *Object) ArrayLength() int {
	return len(o.ArrayElements)
}

// Push appends values to the end of the array and returns the new
// length, the same effect Array.prototype.push (realm/builtins_array.go)
// has on ArrayElements.
func (o *Object) Push(values ...Value) int {
	o.ArrayElements = append(o.ArrayElements, values...)
	return len(o.ArrayElements)
}
