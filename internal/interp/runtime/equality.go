package runtime

import (
	"math"
	"math/big"
)

// StrictEquals implements `===` (§4.1, Testable Property 5): NaN is
// never equal to anything including itself; +0 and -0 compare equal;
// objects compare only by handle identity.
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.num == b.num
	case KindNumber:
		if a.IsNaN() || b.IsNaN() {
			return false
		}
		return a.num == b.num
	case KindBigInt:
		return a.big.Cmp(b.big) == 0
	case KindString:
		return a.str == b.str
	case KindSymbol:
		return a.sym == b.sym
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// SameValue implements the SameValue algorithm (§4.1): like
// StrictEquals but NaN equals NaN and +0 does not equal -0.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == KindNumber {
		if a.IsNaN() && b.IsNaN() {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return isNegZero(a.num) == isNegZero(b.num)
		}
		return a.num == b.num
	}
	return StrictEquals(a, b)
}

// SameValueZero is SameValue except +0 and -0 compare equal; used by
// Array.prototype.includes and Map/Set key comparison.
func SameValueZero(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber {
		if a.IsNaN() && b.IsNaN() {
			return true
		}
		return a.num == b.num
	}
	return StrictEquals(a, b)
}

func isNegZero(n float64) bool {
	return n == 0 && math.Signbit(n)
}

// LooseEquals implements `==` (§4.1 "the spec coercion ladder,
// documented as a precise table"). conv provides the numeric/primitive
// coercions; its NativeContext is used only when ToPrimitive must
// invoke a script callback (Symbol.toPrimitive/valueOf/toString).
func LooseEquals(conv *Conversions, a, b Value) (bool, Completion) {
	if a.kind == b.kind {
		return StrictEquals(a, b), NormalCompletion(Undefined)
	}
	switch {
	case a.IsNullish() && b.IsNullish():
		return true, NormalCompletion(Undefined)
	case a.IsNullish() || b.IsNullish():
		return false, NormalCompletion(Undefined)
	case a.kind == KindNumber && b.kind == KindString:
		bn, c := conv.ToNumber(b)
		if c.IsAbrupt() {
			return false, c
		}
		return numEquals(a.num, bn), NormalCompletion(Undefined)
	case a.kind == KindString && b.kind == KindNumber:
		an, c := conv.ToNumber(a)
		if c.IsAbrupt() {
			return false, c
		}
		return numEquals(an, b.num), NormalCompletion(Undefined)
	case a.kind == KindBigInt && b.kind == KindString:
		bi, ok := parseBigIntString(b.str)
		if !ok {
			return false, NormalCompletion(Undefined)
		}
		return a.big.Cmp(bi) == 0, NormalCompletion(Undefined)
	case a.kind == KindString && b.kind == KindBigInt:
		return LooseEquals(conv, b, a)
	case a.kind == KindBoolean:
		an, c := conv.ToNumber(a)
		if c.IsAbrupt() {
			return false, c
		}
		return LooseEquals(conv, Number(an), b)
	case b.kind == KindBoolean:
		bn, c := conv.ToNumber(b)
		if c.IsAbrupt() {
			return false, c
		}
		return LooseEquals(conv, a, Number(bn))
	case (a.kind == KindNumber || a.kind == KindString || a.kind == KindBigInt || a.kind == KindSymbol) && b.kind == KindObject:
		bp, c := conv.ToPrimitive(b, "default")
		if c.IsAbrupt() {
			return false, c
		}
		return LooseEquals(conv, a, bp)
	case a.kind == KindObject && (b.kind == KindNumber || b.kind == KindString || b.kind == KindBigInt || b.kind == KindSymbol):
		ap, c := conv.ToPrimitive(a, "default")
		if c.IsAbrupt() {
			return false, c
		}
		return LooseEquals(conv, ap, b)
	case a.kind == KindBigInt && b.kind == KindNumber, a.kind == KindNumber && b.kind == KindBigInt:
		return bigIntNumberEquals(a, b), NormalCompletion(Undefined)
	default:
		return false, NormalCompletion(Undefined)
	}
}

func numEquals(a, b float64) bool {
	return a == b
}

func bigIntNumberEquals(a, b Value) bool {
	var bi *big.Int
	var n float64
	if a.kind == KindBigInt {
		bi, n = a.big, b.num
	} else {
		bi, n = b.big, a.num
	}
	if n != n || n != float64(int64(n)) {
		return false
	}
	return bi.Cmp(big.NewInt(int64(n))) == 0
}

func parseBigIntString(s string) (*big.Int, bool) {
	bi, ok := new(big.Int).SetString(s, 10)
	return bi, ok
}
