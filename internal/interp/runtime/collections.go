package runtime

// NewMapObject allocates a Map-exotic object (§2 "Map") with empty,
// insertion-ordered entries.
func (s *Store) NewMapObject(prototype Handle) Handle {
	o := newObject(ClassMap)
	o.Prototype = prototype
	o.HasProto = true
	o.MapData = &MapData{}
	return s.Allocate(o)
}

// NewSetObject allocates a Set-exotic object (§2 "Set") with empty,
// insertion-ordered values.
func (s *Store) NewSetObject(prototype Handle) Handle {
	o := newObject(ClassSet)
	o.Prototype = prototype
	o.HasProto = true
	o.SetData = &SetData{}
	return s.Allocate(o)
}

// MapGet returns the value stored under key, using SameValueZero
// comparison (the Map/Set key-equality algorithm the spec mandates so
// that NaN is its own key and +0/-0 collide).
func MapGet(d *MapData, key Value) (Value, bool) {
	for i, k := range d.Keys {
		if SameValueZero(k, key) {
			return d.Values[i], true
		}
	}
	return Undefined, false
}

// MapSet inserts or updates key's entry, preserving key's original
// insertion position on update (§4.8 "insertion order").
func MapSet(d *MapData, key, value Value) {
	for i, k := range d.Keys {
		if SameValueZero(k, key) {
			d.Values[i] = value
			return
		}
	}
	d.Keys = append(d.Keys, key)
	d.Values = append(d.Values, value)
}

// MapDelete removes key's entry, reporting whether it was present.
func MapDelete(d *MapData, key Value) bool {
	for i, k := range d.Keys {
		if SameValueZero(k, key) {
			d.Keys = append(d.Keys[:i], d.Keys[i+1:]...)
			d.Values = append(d.Values[:i], d.Values[i+1:]...)
			return true
		}
	}
	return false
}

// SetAdd inserts value if not already present (SameValueZero), keeping
// insertion order.
func SetAdd(d *SetData, value Value) {
	for _, v := range d.Values {
		if SameValueZero(v, value) {
			return
		}
	}
	d.Values = append(d.Values, value)
}

// SetHas reports whether value is a member, by SameValueZero.
func SetHas(d *SetData, value Value) bool {
	for _, v := range d.Values {
		if SameValueZero(v, value) {
			return true
		}
	}
	return false
}

// SetDelete removes value, reporting whether it was present.
func SetDelete(d *SetData, value Value) bool {
	for i, v := range d.Values {
		if SameValueZero(v, value) {
			d.Values = append(d.Values[:i], d.Values[i+1:]...)
			return true
		}
	}
	return false
}

// NewMapIterator allocates a Map Iterator object (§4.8) over target,
// yielding keys/values/entries per kind.
func (s *Store) NewMapIterator(target Handle, kind ArrayIterKind, prototype Handle) Handle {
	o := newObject("Map Iterator")
	o.Prototype = prototype
	o.HasProto = true
	o.IteratorState = &IteratorState{Kind: IterMap, Target: target, MapKind: kind}
	return s.Allocate(o)
}

// NewSetIterator allocates a Set Iterator object (§4.8) over target.
// Set has no separate key space, so ArrayIterKeys and ArrayIterValues
// both yield the element and ArrayIterEntries yields [value, value].
func (s *Store) NewSetIterator(target Handle, kind ArrayIterKind, prototype Handle) Handle {
	o := newObject("Set Iterator")
	o.Prototype = prototype
	o.HasProto = true
	o.IteratorState = &IteratorState{Kind: IterSet, Target: target, MapKind: kind}
	return s.Allocate(o)
}

// AdvanceMapIterator produces the next {value, done} result for a Map
// Iterator, reading the live MapData so mutation mid-iteration matches
// the spec's "read live array state" treatment for arrays.
func AdvanceMapIterator(store *Store, state *IteratorState) IterResult {
	obj := store.Get(state.Target)
	if obj == nil || obj.MapData == nil || state.Index >= len(obj.MapData.Keys) {
		return IterResult{Value: Undefined, Done: true}
	}
	idx := state.Index
	state.Index++
	k, v := obj.MapData.Keys[idx], obj.MapData.Values[idx]
	switch state.MapKind {
	case ArrayIterKeys:
		return IterResult{Value: k}
	case ArrayIterValues:
		return IterResult{Value: v}
	default:
		entry := store.NewArrayObject([]Value{k, v}, obj.Prototype)
		return IterResult{Value: Object(entry)}
	}
}

// AdvanceSetIterator produces the next {value, done} result for a Set
// Iterator.
func AdvanceSetIterator(store *Store, state *IteratorState) IterResult {
	obj := store.Get(state.Target)
	if obj == nil || obj.SetData == nil || state.Index >= len(obj.SetData.Values) {
		return IterResult{Value: Undefined, Done: true}
	}
	idx := state.Index
	state.Index++
	v := obj.SetData.Values[idx]
	if state.MapKind == ArrayIterEntries {
		entry := store.NewArrayObject([]Value{v, v}, obj.Prototype)
		return IterResult{Value: Object(entry)}
	}
	return IterResult{Value: v}
}
