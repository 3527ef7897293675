package runtime

import (
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Descriptor is a property descriptor (§3.3): each attribute is
// optional so "specified" and "absent" stay distinguishable, matching
// the spec's attribute model. A Data descriptor carries Value/Writable;
// an Accessor descriptor carries Get/Set; the two are mutually
// exclusive (§3.2 invariant (a)).
type Descriptor struct {
	HasValue bool
	Value    Value

	HasWritable bool
	Writable    bool

	HasGet bool
	Get    Value // callable or Undefined

	HasSet bool
	Set    Value // callable or Undefined

	HasEnumerable bool
	Enumerable    bool

	HasConfigurable bool
	Configurable    bool
}

// IsAccessor reports whether d describes an accessor property.
func (d Descriptor) IsAccessor() bool { return d.HasGet || d.HasSet }

// IsData reports whether d describes a data property (the default for
// a zero-value Descriptor with HasValue set).
func (d Descriptor) IsData() bool { return !d.IsAccessor() }

// DataDescriptor builds a fully-specified data descriptor, the shape
// ordinary property creation uses (§4.2 "create/update an own data
// property... with attributes {writable, enumerable, configurable}").
func DataDescriptor(v Value, writable, enumerable, configurable bool) Descriptor {
	return Descriptor{
		HasValue: true, Value: v,
		HasWritable: true, Writable: writable,
		HasEnumerable: true, Enumerable: enumerable,
		HasConfigurable: true, Configurable: configurable,
	}
}

// DataDescriptorPtr is DataDescriptor returning a pointer, the shape
// PropertyMap.Set expects.
func DataDescriptorPtr(v Value, writable, enumerable, configurable bool) *Descriptor {
	d := DataDescriptor(v, writable, enumerable, configurable)
	return &d
}

// AccessorDescriptor builds a fully-specified accessor descriptor.
func AccessorDescriptor(get, set Value, enumerable, configurable bool) Descriptor {
	return Descriptor{
		HasGet: true, Get: get,
		HasSet: true, Set: set,
		HasEnumerable: true, Enumerable: enumerable,
		HasConfigurable: true, Configurable: configurable,
	}
}

// PropertyMap is the insertion-ordered own-property table backing an
// Object record (§3.2 "properties... preserving insertion order").
type PropertyMap struct {
	entries *orderedmap.OrderedMap[string, *Descriptor]
}

// NewPropertyMap creates an empty property map.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{entries: orderedmap.New[string, *Descriptor]()}
}

// Get returns the own descriptor for key, if any.
func (m *PropertyMap) Get(key string) (*Descriptor, bool) {
	return m.entries.Get(key)
}

// Set installs or replaces the own descriptor for key, preserving its
// original insertion position when key already existed.
func (m *PropertyMap) Set(key string, d *Descriptor) {
	m.entries.Set(key, d)
}

// Delete removes key's own descriptor, reporting whether it was present.
func (m *PropertyMap) Delete(key string) bool {
	_, ok := m.entries.Delete(key)
	return ok
}

// Has reports whether key has an own descriptor.
func (m *PropertyMap) Has(key string) bool {
	_, ok := m.entries.Get(key)
	return ok
}

// Keys returns own property keys in insertion order (before the
// integer-key reordering enumeration applies — see OrderedKeys).
func (m *PropertyMap) Keys() []string {
	keys := make([]string, 0, m.entries.Len())
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// isArrayIndexKey reports whether key is a canonical non-negative
// integer string eligible for the §4.2 "integer keys in ascending
// numeric order first" enumeration rule. Symbol-encoded keys (which
// start with "@@symbol:") never qualify.
func isArrayIndexKey(key string) (uint32, bool) {
	if key == "" || (key[0] == '0' && len(key) > 1) {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// isSymbolKey reports whether key is the canonical string form of a
// symbol (§3.2 "symbol keys are encoded as the canonical string form").
func isSymbolKey(key string) bool {
	return len(key) >= 9 && key[:9] == "@@symbol:"
}

// OrderedKeys returns own string/symbol property keys reordered per the
// enumeration rule tested by Testable Property 3 and S6: ascending
// integer keys first, then string keys in insertion order, then symbol
// keys in insertion order.
func (m *PropertyMap) OrderedKeys() (integerKeys, stringKeys, symbolKeys []string) {
	type idxKey struct {
		n   uint32
		key string
	}
	var indices []idxKey
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		switch {
		case isSymbolKey(key):
			symbolKeys = append(symbolKeys, key)
		default:
			if n, ok := isArrayIndexKey(key); ok {
				indices = append(indices, idxKey{n, key})
			} else {
				stringKeys = append(stringKeys, key)
			}
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i].n < indices[j].n })
	for _, ik := range indices {
		integerKeys = append(integerKeys, ik.key)
	}
	return
}

// --- Get/Set/Define/Has/Delete algorithm (§4.2) ---

// GetProperty implements [[Get]] (§4.2 "Get"): array-element fast
// path, own-property lookup (running an accessor's getter with
// `this = receiver`), then prototype-chain walk.
func GetProperty(store *Store, ctx NativeContext, target Handle, key string, receiver Value) (Value, Completion) {
	cur := target
	for cur != NoHandle {
		obj := store.Get(cur)
		if obj == nil {
			return Undefined, NormalCompletion(Undefined)
		}
		if obj.IsArray() {
			if idx, ok := isArrayIndexKey(key); ok {
				if int(idx) < len(obj.ArrayElements) {
					return obj.ArrayElements[idx], NormalCompletion(Undefined)
				}
			}
			if key == "length" {
				return Number(float64(len(obj.ArrayElements))), NormalCompletion(Undefined)
			}
		}
		if desc, ok := obj.Properties.Get(key); ok {
			if desc.IsAccessor() {
				if !desc.HasGet || desc.Get.IsUndefined() {
					return Undefined, NormalCompletion(Undefined)
				}
				if ctx == nil {
					return Undefined, NormalCompletion(Undefined)
				}
				result := ctx.Call(desc.Get, receiver, nil)
				return result.Value, result
			}
			return desc.Value, NormalCompletion(Undefined)
		}
		if !obj.HasProto {
			return Undefined, NormalCompletion(Undefined)
		}
		cur = obj.Prototype
	}
	return Undefined, NormalCompletion(Undefined)
}

// HasProperty implements [[Has]] (§4.2 "Has"): like Get but never runs
// accessors, returning only whether the chain reaches key.
func HasProperty(store *Store, target Handle, key string) bool {
	cur := target
	for cur != NoHandle {
		obj := store.Get(cur)
		if obj == nil {
			return false
		}
		if obj.IsArray() {
			if idx, ok := isArrayIndexKey(key); ok && int(idx) < len(obj.ArrayElements) {
				return true
			}
			if key == "length" {
				return true
			}
		}
		if obj.Properties.Has(key) {
			return true
		}
		if !obj.HasProto {
			return false
		}
		cur = obj.Prototype
	}
	return false
}

// HasOwnProperty reports whether target itself (not its prototype
// chain) declares key.
func HasOwnProperty(store *Store, target Handle, key string) bool {
	obj := store.Get(target)
	if obj == nil {
		return false
	}
	if obj.IsArray() {
		if idx, ok := isArrayIndexKey(key); ok && int(idx) < len(obj.ArrayElements) {
			return true
		}
		if key == "length" {
			return true
		}
	}
	return obj.Properties.Has(key)
}

// SetProperty implements [[Set]] (§4.2 "Set"): walks the chain for a
// setter or a non-writable data property, otherwise creates/updates an
// own data property on receiver. The evaluator always acts strict, so a
// non-writable data property produces a TypeError completion rather
// than silently failing.
func SetProperty(store *Store, ctx NativeContext, target Handle, key string, v Value, receiver Value) Completion {
	cur := target
	for cur != NoHandle {
		obj := store.Get(cur)
		if obj == nil {
			break
		}
		if desc, ok := obj.Properties.Get(key); ok {
			if desc.IsAccessor() {
				if !desc.HasSet || desc.Set.IsUndefined() {
					if ctx != nil {
						return ctx.ThrowTypeError("Cannot set property %s which has only a getter", key)
					}
					return NormalCompletion(Undefined)
				}
				if ctx == nil {
					return NormalCompletion(Undefined)
				}
				return ctx.Call(desc.Set, receiver, []Value{v})
			}
			if cur == target {
				if desc.HasWritable && !desc.Writable {
					if ctx != nil {
						return ctx.ThrowTypeError("Cannot assign to read only property %s", key)
					}
					return NormalCompletion(Undefined)
				}
				desc.Value = v
				return NormalCompletion(Undefined)
			}
			if desc.HasWritable && !desc.Writable {
				if ctx != nil {
					return ctx.ThrowTypeError("Cannot assign to read only property %s", key)
				}
				return NormalCompletion(Undefined)
			}
			break
		}
		if !obj.HasProto {
			break
		}
		cur = obj.Prototype
	}

	recvObj := store.Get(target)
	if recvObj == nil {
		return NormalCompletion(Undefined)
	}
	if recvObj.IsArray() {
		if idx, ok := isArrayIndexKey(key); ok {
			setArrayElement(recvObj, int(idx), v)
			return NormalCompletion(Undefined)
		}
		if key == "length" {
			return setArrayLength(recvObj, v, ctx)
		}
	}
	if !recvObj.Extensible && !recvObj.Properties.Has(key) {
		return NormalCompletion(Undefined)
	}
	recvObj.Properties.Set(key, &Descriptor{
		HasValue: true, Value: v,
		HasWritable: true, Writable: true,
		HasEnumerable: true, Enumerable: true,
		HasConfigurable: true, Configurable: true,
	})
	return NormalCompletion(Undefined)
}

// DefineProperty implements [[DefineOwnProperty]] (§4.2
// "Define-property"). It honours the descriptor-merge algorithm: a
// non-configurable existing descriptor may only be redefined in the
// narrow ways the spec allows.
func DefineProperty(store *Store, ctx NativeContext, target Handle, key string, desc Descriptor) Completion {
	obj := store.Get(target)
	if obj == nil {
		return NormalCompletion(Undefined)
	}
	if obj.IsArray() {
		if idx, ok := isArrayIndexKey(key); ok && desc.HasValue {
			setArrayElement(obj, int(idx), desc.Value)
			return NormalCompletion(Undefined)
		}
	}
	existing, has := obj.Properties.Get(key)
	if !has {
		if !obj.Extensible {
			if ctx != nil {
				return ctx.ThrowTypeError("Cannot define property %s, object is not extensible", key)
			}
			return NormalCompletion(Undefined)
		}
		filled := fillDescriptorDefaults(desc)
		obj.Properties.Set(key, &filled)
		return NormalCompletion(Undefined)
	}
	if existing.HasConfigurable && !existing.Configurable {
		if desc.HasConfigurable && desc.Configurable {
			if ctx != nil {
				return ctx.ThrowTypeError("Cannot redefine property: %s", key)
			}
			return NormalCompletion(Undefined)
		}
		if desc.IsAccessor() != existing.IsAccessor() {
			if ctx != nil {
				return ctx.ThrowTypeError("Cannot redefine property: %s", key)
			}
			return NormalCompletion(Undefined)
		}
		if existing.IsData() && existing.HasWritable && !existing.Writable {
			if desc.HasWritable && desc.Writable {
				if ctx != nil {
					return ctx.ThrowTypeError("Cannot redefine property: %s", key)
				}
				return NormalCompletion(Undefined)
			}
			if desc.HasValue && !SameValue(desc.Value, existing.Value) {
				if ctx != nil {
					return ctx.ThrowTypeError("Cannot redefine property: %s", key)
				}
				return NormalCompletion(Undefined)
			}
		}
	}
	merged := mergeDescriptor(*existing, desc)
	obj.Properties.Set(key, &merged)
	return NormalCompletion(Undefined)
}

func fillDescriptorDefaults(d Descriptor) Descriptor {
	if !d.HasEnumerable {
		d.HasEnumerable, d.Enumerable = true, false
	}
	if !d.HasConfigurable {
		d.HasConfigurable, d.Configurable = true, false
	}
	if d.IsAccessor() {
		if !d.HasGet {
			d.HasGet, d.Get = true, Undefined
		}
		if !d.HasSet {
			d.HasSet, d.Set = true, Undefined
		}
		return d
	}
	if !d.HasValue {
		d.HasValue, d.Value = true, Undefined
	}
	if !d.HasWritable {
		d.HasWritable, d.Writable = true, false
	}
	return d
}

func mergeDescriptor(existing, patch Descriptor) Descriptor {
	out := existing
	if patch.HasValue {
		out.HasValue, out.Value = true, patch.Value
		out.HasGet, out.HasSet = false, false
	}
	if patch.HasWritable {
		out.HasWritable, out.Writable = true, patch.Writable
	}
	if patch.HasGet {
		out.HasGet, out.Get = true, patch.Get
		out.HasValue, out.HasWritable = false, false
	}
	if patch.HasSet {
		out.HasSet, out.Set = true, patch.Set
		out.HasValue, out.HasWritable = false, false
	}
	if patch.HasEnumerable {
		out.HasEnumerable, out.Enumerable = true, patch.Enumerable
	}
	if patch.HasConfigurable {
		out.HasConfigurable, out.Configurable = true, patch.Configurable
	}
	return out
}

// DeleteProperty implements [[Delete]] (§4.2 "Delete"): only
// configurable own properties may be removed.
func DeleteProperty(store *Store, ctx NativeContext, target Handle, key string) (bool, Completion) {
	obj := store.Get(target)
	if obj == nil {
		return true, NormalCompletion(Undefined)
	}
	if obj.IsArray() {
		if idx, ok := isArrayIndexKey(key); ok && int(idx) < len(obj.ArrayElements) {
			obj.ArrayElements[idx] = Undefined
			return true, NormalCompletion(Undefined)
		}
	}
	desc, ok := obj.Properties.Get(key)
	if !ok {
		return true, NormalCompletion(Undefined)
	}
	if desc.HasConfigurable && !desc.Configurable {
		if ctx != nil {
			return false, ctx.ThrowTypeError("Cannot delete property %s", key)
		}
		return false, NormalCompletion(Undefined)
	}
	obj.Properties.Delete(key)
	return true, NormalCompletion(Undefined)
}

// EnumerableOwnKeys returns target's own enumerable string keys in the
// §4.2 enumeration order (integers ascending, then strings in
// insertion order); symbol keys are never enumerable-for-in/of.
func EnumerableOwnKeys(store *Store, target Handle) []string {
	obj := store.Get(target)
	if obj == nil {
		return nil
	}
	var keys []string
	if obj.IsArray() {
		for i := range obj.ArrayElements {
			keys = append(keys, strconv.Itoa(i))
		}
	}
	integers, strs, _ := obj.Properties.OrderedKeys()
	for _, k := range integers {
		desc, _ := obj.Properties.Get(k)
		if desc.HasEnumerable && !desc.Enumerable {
			continue
		}
		keys = append(keys, k)
	}
	for _, k := range strs {
		desc, _ := obj.Properties.Get(k)
		if desc.HasEnumerable && !desc.Enumerable {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// OwnPropertyKeys returns every own key (§4.2 "Ownership of ordering"):
// integer keys ascending, then string keys in insertion order, then
// symbol keys in insertion order, matching Reflect.ownKeys order.
func OwnPropertyKeys(store *Store, target Handle) []string {
	obj := store.Get(target)
	if obj == nil {
		return nil
	}
	var keys []string
	if obj.IsArray() {
		for i := range obj.ArrayElements {
			keys = append(keys, strconv.Itoa(i))
		}
	}
	integers, strs, syms := obj.Properties.OrderedKeys()
	keys = append(keys, integers...)
	keys = append(keys, strs...)
	keys = append(keys, syms...)
	return keys
}

// ForInKeys walks target's own keys then its prototype chain, skipping
// keys already seen (shadowing) per SPEC_FULL.md's Open Question (a)
// resolution: own properties first in their enumeration order, then
// each prototype's own enumerable keys not already yielded.
func ForInKeys(store *Store, target Handle) []string {
	seen := make(map[string]bool)
	var result []string
	cur := target
	for cur != NoHandle {
		obj := store.Get(cur)
		if obj == nil {
			break
		}
		for _, k := range EnumerableOwnKeys(store, cur) {
			if seen[k] {
				continue
			}
			seen[k] = true
			result = append(result, k)
		}
		if !obj.HasProto {
			break
		}
		cur = obj.Prototype
	}
	return result
}
