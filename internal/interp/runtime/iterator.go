package runtime

// NewArrayIterator allocates an Array Iterator object (§4.8) over
// target, yielding values/keys/entries per kind.
func (s *Store) NewArrayIterator(target Handle, kind ArrayIterKind, prototype Handle) Handle {
	o := newObject("Array Iterator")
	o.Prototype = prototype
	o.HasProto = true
	o.IteratorState = &IteratorState{Kind: IterArray, Target: target, ArrayKind: kind}
	return s.Allocate(o)
}

// NewStringIterator allocates a String Iterator (§4.8) walking code
// points (not code units) of s, surrogate-pair aware.
func (st *Store) NewStringIterator(s string, prototype Handle) Handle {
	o := newObject("String Iterator")
	o.Prototype = prototype
	o.HasProto = true
	o.IteratorState = &IteratorState{Kind: IterString, SourceString: []rune(s)}
	return st.Allocate(o)
}

// AdvanceArrayIterator produces the next {value, done} result for an
// Array Iterator, reading live array state so concurrent mutation
// during iteration is observed the way the spec mandates.
func AdvanceArrayIterator(store *Store, state *IteratorState) IterResult {
	obj := store.Get(state.Target)
	if obj == nil || state.Index >= len(obj.ArrayElements) {
		return IterResult{Value: Undefined, Done: true}
	}
	idx := state.Index
	state.Index++
	switch state.ArrayKind {
	case ArrayIterKeys:
		return IterResult{Value: Number(float64(idx))}
	case ArrayIterEntries:
		entry := store.NewArrayObject([]Value{Number(float64(idx)), obj.ArrayElements[idx]}, obj.Prototype)
		return IterResult{Value: Object(entry)}
	default:
		return IterResult{Value: obj.ArrayElements[idx]}
	}
}

// AdvanceStringIterator produces the next code-point result for a
// String Iterator.
func AdvanceStringIterator(state *IteratorState) IterResult {
	if state.RunePos >= len(state.SourceString) {
		return IterResult{Value: Undefined, Done: true}
	}
	r := state.SourceString[state.RunePos]
	state.RunePos++
	return IterResult{Value: String(string(r))}
}

// IterResultObject allocates the `{value, done}` object the iterator
// protocol's next()/return()/throw() methods return (§6 "an
// iterator-result constructor"). objectPrototype is the realm's
// Object.prototype handle.
func (s *Store) IterResultObject(result IterResult, objectPrototype Handle) Handle {
	h := s.NewOrdinaryObject(objectPrototype, true)
	obj := s.Get(h)
	obj.Properties.Set("value", &Descriptor{
		HasValue: true, Value: result.Value,
		HasWritable: true, Writable: true,
		HasEnumerable: true, Enumerable: true,
		HasConfigurable: true, Configurable: true,
	})
	obj.Properties.Set("done", &Descriptor{
		HasValue: true, Value: Bool(result.Done),
		HasWritable: true, Writable: true,
		HasEnumerable: true, Enumerable: true,
		HasConfigurable: true, Configurable: true,
	})
	return h
}
