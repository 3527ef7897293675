package runtime

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/spf13/cast"
)

// Conversions bundles the primitive coercions of §4.1 with the
// NativeContext they need to invoke script callbacks
// (Symbol.toPrimitive/valueOf/toString) during ToPrimitive. A nil ctx
// is valid for conversions that never touch an object value.
type Conversions struct {
	ctx NativeContext
}

// NewConversions builds a Conversions bound to ctx (used by the
// evaluator; ctx is the realm's Interpreter satisfying
// runtime.NativeContext).
func NewConversions(ctx NativeContext) *Conversions {
	return &Conversions{ctx: ctx}
}

// ToBoolean implements spec truthiness (§4.1).
func ToBoolean(v Value) bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.AsBool()
	case KindNumber:
		return v.num != 0 && !v.IsNaN()
	case KindBigInt:
		return v.big.Sign() != 0
	case KindString:
		return v.str != ""
	default:
		return true
	}
}

// ToPrimitive implements §4.1 ToPrimitive(hint): hint is one of
// "string", "number", "default". Objects first try
// `Symbol.toPrimitive`, then fall back to the valueOf/toString pair in
// the order the hint dictates.
func (c *Conversions) ToPrimitive(v Value, hint string) (Value, Completion) {
	if v.kind != KindObject {
		return v, NormalCompletion(Undefined)
	}
	if c.ctx == nil {
		return Undefined, NormalCompletion(Undefined)
	}
	store := c.ctx.Store()
	symKey := c.ctx.SymbolKeyFor("Symbol.toPrimitive")
	exotic, completion := GetProperty(store, c.ctx, v.obj, symKey, v)
	if completion.IsAbrupt() {
		return Undefined, completion
	}
	if store.Get(v.obj) != nil && !exotic.IsUndefined() {
		result := c.ctx.Call(exotic, v, []Value{String(hint)})
		if result.IsAbrupt() {
			return Undefined, result
		}
		if result.Value.kind == KindObject {
			return Undefined, c.ctx.ThrowTypeError("Cannot convert object to primitive value")
		}
		return result.Value, NormalCompletion(Undefined)
	}

	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		fn, completion := GetProperty(store, c.ctx, v.obj, name, v)
		if completion.IsAbrupt() {
			return Undefined, completion
		}
		if fn.kind == KindObject {
			if rec := store.Get(fn.obj); rec != nil && rec.IsCallable() {
				result := c.ctx.Call(fn, v, nil)
				if result.IsAbrupt() {
					return Undefined, result
				}
				if result.Value.kind != KindObject {
					return result.Value, NormalCompletion(Undefined)
				}
			}
		}
	}
	return Undefined, c.ctx.ThrowTypeError("Cannot convert object to primitive value")
}

// ToNumber implements §4.1 ToNumber, including IEEE-754 string parsing.
func (c *Conversions) ToNumber(v Value) (float64, Completion) {
	switch v.kind {
	case KindUndefined:
		return math.NaN(), NormalCompletion(Undefined)
	case KindNull:
		return 0, NormalCompletion(Undefined)
	case KindBoolean:
		if v.AsBool() {
			return 1, NormalCompletion(Undefined)
		}
		return 0, NormalCompletion(Undefined)
	case KindNumber:
		return v.num, NormalCompletion(Undefined)
	case KindString:
		return stringToNumber(v.str), NormalCompletion(Undefined)
	case KindBigInt:
		if c.ctx != nil {
			return 0, c.ctx.ThrowTypeError("Cannot convert a BigInt value to a number")
		}
		return math.NaN(), NormalCompletion(Undefined)
	case KindSymbol:
		if c.ctx != nil {
			return 0, c.ctx.ThrowTypeError("Cannot convert a Symbol value to a number")
		}
		return math.NaN(), NormalCompletion(Undefined)
	case KindObject:
		prim, completion := c.ToPrimitive(v, "number")
		if completion.IsAbrupt() {
			return 0, completion
		}
		return c.ToNumber(prim)
	default:
		return math.NaN(), NormalCompletion(Undefined)
	}
}

// stringToNumber trims whitespace and parses the spec's StringNumericLiteral
// grammar, including hex/octal/binary prefixes, Infinity, and the empty
// string (which converts to 0).
func stringToNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	switch {
	case strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X"):
		n, err := strconv.ParseUint(t[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	case strings.HasPrefix(t, "0o") || strings.HasPrefix(t, "0O"):
		n, err := strconv.ParseUint(t[2:], 8, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	case strings.HasPrefix(t, "0b") || strings.HasPrefix(t, "0B"):
		n, err := strconv.ParseUint(t[2:], 2, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	case t == "Infinity" || t == "+Infinity":
		return math.Inf(1)
	case t == "-Infinity":
		return math.Inf(-1)
	}
	n, err := cast.ToFloat64E(t)
	if err != nil {
		return math.NaN()
	}
	return n
}

// ToIntegerOrInfinity implements ToIntegerOrInfinity (§4.1
// "to_integer_with_truncation"): truncate toward zero, clamping NaN to 0.
func (c *Conversions) ToIntegerOrInfinity(v Value) (float64, Completion) {
	n, completion := c.ToNumber(v)
	if completion.IsAbrupt() {
		return 0, completion
	}
	if math.IsNaN(n) {
		return 0, NormalCompletion(Undefined)
	}
	if math.IsInf(n, 0) {
		return n, NormalCompletion(Undefined)
	}
	return math.Trunc(n), NormalCompletion(Undefined)
}

// ToInt32 implements ToInt32 for bitwise operators.
func (c *Conversions) ToInt32(v Value) (int32, Completion) {
	n, completion := c.ToNumber(v)
	if completion.IsAbrupt() {
		return 0, completion
	}
	return toInt32(n), NormalCompletion(Undefined)
}

// ToUint32 implements ToUint32 for `>>>` and array length checks.
func (c *Conversions) ToUint32(v Value) (uint32, Completion) {
	n, completion := c.ToNumber(v)
	if completion.IsAbrupt() {
		return 0, completion
	}
	return uint32(toInt32(n)), NormalCompletion(Undefined)
}

func toInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	m := math.Mod(math.Trunc(n), 4294967296)
	if m < 0 {
		m += 4294967296
	}
	if m >= 2147483648 {
		m -= 4294967296
	}
	return int32(m)
}

// ToString implements §4.1 ToString (IEEE-754 shortest-round-trip for
// numbers, using Go's equivalent formatting — see value.go's
// formatNumber).
func (c *Conversions) ToString(v Value) (string, Completion) {
	switch v.kind {
	case KindUndefined:
		return "undefined", NormalCompletion(Undefined)
	case KindNull:
		return "null", NormalCompletion(Undefined)
	case KindBoolean:
		return strconv.FormatBool(v.AsBool()), NormalCompletion(Undefined)
	case KindNumber:
		return formatNumber(v.num), NormalCompletion(Undefined)
	case KindBigInt:
		return v.big.String(), NormalCompletion(Undefined)
	case KindString:
		return v.str, NormalCompletion(Undefined)
	case KindSymbol:
		if c.ctx != nil {
			return "", c.ctx.ThrowTypeError("Cannot convert a Symbol value to a string")
		}
		return "", NormalCompletion(Undefined)
	case KindObject:
		prim, completion := c.ToPrimitive(v, "string")
		if completion.IsAbrupt() {
			return "", completion
		}
		return c.ToString(prim)
	default:
		return "", NormalCompletion(Undefined)
	}
}

// ToPropertyKey converts v to the string key form the Property System
// stores own properties under (§3.2 "Keys used by the spec are strings;
// symbol keys are encoded as the canonical string form").
func (c *Conversions) ToPropertyKey(v Value) (string, Completion) {
	if v.kind == KindSymbol {
		return v.sym.CanonicalKey(), NormalCompletion(Undefined)
	}
	return c.ToString(v)
}

// ToBigInt implements ToBigInt for BigInt-typed operators.
func (c *Conversions) ToBigInt(v Value) (*big.Int, Completion) {
	switch v.kind {
	case KindBigInt:
		return v.big, NormalCompletion(Undefined)
	case KindBoolean:
		if v.AsBool() {
			return big.NewInt(1), NormalCompletion(Undefined)
		}
		return big.NewInt(0), NormalCompletion(Undefined)
	case KindString:
		bi, ok := new(big.Int).SetString(strings.TrimSpace(v.str), 10)
		if !ok {
			if c.ctx != nil {
				return nil, c.ctx.ThrowRangeError("Cannot convert %s to a BigInt", v.str)
			}
			return nil, NormalCompletion(Undefined)
		}
		return bi, NormalCompletion(Undefined)
	default:
		if c.ctx != nil {
			return nil, c.ctx.ThrowTypeError("Cannot convert %s to a BigInt", v.kind)
		}
		return nil, NormalCompletion(Undefined)
	}
}

// StringToUTF16 converts a Go string (UTF-8) into the UTF-16 code-unit
// sequence the script-visible String type indexes over (§3.1 "Strings
// are immutable... sequence of code units"). No pack dependency exposes
// UTF-16 code-unit indexing (everything in the pack works in UTF-8
// runes or bytes); stdlib unicode/utf16 is the only primitive available
// for the spec-mandated semantics.
func StringToUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// UTF16ToString is the inverse of StringToUTF16.
func UTF16ToString(units []uint16) string {
	return string(utf16.Decode(units))
}

// UTF16Length returns the length a script sees for String.prototype.length.
func UTF16Length(s string) int {
	return len(StringToUTF16(s))
}
