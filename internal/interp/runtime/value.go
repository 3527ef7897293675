// Package runtime implements the interpreter's value model and object
// store (§3, §4.1, §4.2): the tagged Value sum, the Object Store,
// property descriptors, the environment chain, and the completion
// protocol that every evaluator step returns.
package runtime

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

// Kind discriminates the variant a Value currently holds.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindSymbol
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the tagged sum of script values (§3.1). It is deliberately a
// small struct rather than an interface: Object handles are plain
// integers, so Values stay comparable with `==` for the handle/primitive
// cases callers care about (SameValue/StrictEquals build on that).
type Value struct {
	kind Kind
	num  float64
	big  *big.Int
	str  string
	sym  *Symbol
	obj  Handle
}

// Symbol is a unique token with an optional description (§3.1). Identity
// is the pointer; description is informational only. Two symbols with
// the same description are never equal, matching script semantics.
type Symbol struct {
	id          string
	Description string
}

// NewSymbol allocates a fresh Symbol. Uniqueness is backed by a UUID
// rather than a counter so symbols stay unique across realms created in
// the same process (Open Question (b) in SPEC_FULL.md leans toward a
// richer key type; NewSymbol is that richer type, used internally, with
// CanonicalKey below providing the string form the Property System
// stores keys as).
func NewSymbol(description string) *Symbol {
	return &Symbol{id: uuid.New().String(), Description: description}
}

// CanonicalKey returns the string form used to store a symbol-keyed
// property in an Object's property map (§3.2 "Keys used by the spec are
// strings; symbol keys are encoded as the canonical string form").
func (s *Symbol) CanonicalKey() string {
	return "@@symbol:" + s.id + ":" + s.Description
}

func (s *Symbol) String() string {
	return "Symbol(" + s.Description + ")"
}

// Handle is an opaque index into the Object Store (§3.1: "never raw
// pointers at the surface").
type Handle uint32

// NoHandle is the zero value, never returned by Store.Allocate.
const NoHandle Handle = 0

// Constructors for each variant.

var Undefined = Value{kind: KindUndefined}
var Null = Value{kind: KindNull}

func Bool(b bool) Value {
	n := 0.0
	if b {
		n = 1.0
	}
	return Value{kind: KindBoolean, num: n}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func BigInt(i *big.Int) Value {
	return Value{kind: KindBigInt, big: i}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func SymbolValue(s *Symbol) Value {
	return Value{kind: KindSymbol, sym: s}
}

func Object(h Handle) Value {
	return Value{kind: KindObject, obj: h}
}

// Kind predicates (§4.1).

func (v Value) Kind() Kind          { return v.kind }
func (v Value) IsUndefined() bool   { return v.kind == KindUndefined }
func (v Value) IsNull() bool        { return v.kind == KindNull }
func (v Value) IsNullish() bool     { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsBoolean() bool     { return v.kind == KindBoolean }
func (v Value) IsNumber() bool      { return v.kind == KindNumber }
func (v Value) IsBigInt() bool      { return v.kind == KindBigInt }
func (v Value) IsString() bool      { return v.kind == KindString }
func (v Value) IsSymbol() bool      { return v.kind == KindSymbol }
func (v Value) IsObject() bool      { return v.kind == KindObject }

func (v Value) IsNaN() bool {
	return v.kind == KindNumber && math.IsNaN(v.num)
}

func (v Value) AsBool() bool       { return v.num != 0 }
func (v Value) AsNumber() float64  { return v.num }
func (v Value) AsBigInt() *big.Int { return v.big }
func (v Value) AsString() string   { return v.str }
func (v Value) AsSymbol() *Symbol  { return v.sym }
func (v Value) AsObject() Handle   { return v.obj }

// TypeOf implements the `typeof` operator (§4.5), consulting store to
// distinguish callable objects ("function") from ordinary ones
// ("object"). store may be nil only for non-object values.
func (v Value) TypeOf(store *Store) string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object" // historical quirk, preserved faithfully
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		if store != nil {
			if rec := store.Get(v.obj); rec != nil && rec.Callable != nil {
				return "function"
			}
		}
		return "object"
	default:
		return "undefined"
	}
}

// GoString renders a debug-oriented representation; never used for
// script-visible string conversion (that is conversion.go's ToString).
func (v Value) GoString() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return strconv.FormatBool(v.AsBool())
	case KindNumber:
		return formatNumber(v.num)
	case KindBigInt:
		return v.big.String() + "n"
	case KindString:
		return strconv.Quote(v.str)
	case KindSymbol:
		return v.sym.String()
	case KindObject:
		return fmt.Sprintf("Object(#%d)", v.obj)
	default:
		return "<invalid>"
	}
}

// formatNumber implements the spec's shortest-round-trip double-to-
// string algorithm closely enough for interpreter diagnostics and
// ToString (§4.1): integral values print without a decimal point,
// NaN/Infinity print their literal names, and other values use Go's
// shortest round-trip formatting (strconv's 'g'-style -1 precision
// matches ECMA-262's intent in practice for the doubles scripts produce).
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		if math.Signbit(n) {
			return "0" // -0 prints as "0" per ToString, unlike JSON.stringify
		}
		return "0"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
