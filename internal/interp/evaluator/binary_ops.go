package evaluator

import (
	"math"
	"math/big"

	"github.com/cwbudde/go-ecma/internal/interp/runtime"
)

// applyBinaryOp implements the non-short-circuiting binary operators
// (§4.5 "Binary"): comparisons, `+`'s string/number duality, `in`,
// `instanceof`, and the arithmetic/bitwise operators dispatched to
// BigInt or Number arms depending on operand type.
func applyBinaryOp(ctx Context, op string, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	switch op {
	case "==":
		ok, c := runtime.LooseEquals(ctx.Conv, left, right)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Bool(ok), runtime.NormalCompletion(runtime.Undefined)
	case "!=":
		ok, c := runtime.LooseEquals(ctx.Conv, left, right)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Bool(!ok), runtime.NormalCompletion(runtime.Undefined)
	case "===":
		return runtime.Bool(runtime.StrictEquals(left, right)), runtime.NormalCompletion(runtime.Undefined)
	case "!==":
		return runtime.Bool(!runtime.StrictEquals(left, right)), runtime.NormalCompletion(runtime.Undefined)
	case "instanceof":
		return instanceOf(ctx, left, right)
	case "in":
		if !right.IsObject() {
			return runtime.Undefined, ctx.Throw("TypeError", "Cannot use 'in' operator to search for '%s' in a non-object", left.GoString())
		}
		key, c := ctx.Conv.ToPropertyKey(left)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Bool(runtime.HasProperty(ctx.Store, right.AsObject(), key)), runtime.NormalCompletion(runtime.Undefined)
	case "+":
		return addValues(ctx, left, right)
	case "<", ">", "<=", ">=":
		return compareValues(ctx, op, left, right)
	}

	if left.Kind() == runtime.KindBigInt || right.Kind() == runtime.KindBigInt {
		return bigintBinaryOp(ctx, op, left, right)
	}
	switch op {
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		return numericBinaryOp(ctx, op, left, right)
	}
	return runtime.Undefined, ctx.Throw("SyntaxError", "unsupported binary operator %s", op)
}

// addValues implements `+`'s ToPrimitive-then-branch rule: string
// concatenation wins if either primitive operand is a string, otherwise
// numeric (or BigInt) addition applies (§4.5 "+").
func addValues(ctx Context, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	lp, c := ctx.Conv.ToPrimitive(left, "default")
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	rp, c := ctx.Conv.ToPrimitive(right, "default")
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if lp.Kind() == runtime.KindString || rp.Kind() == runtime.KindString {
		ls, c := ctx.Conv.ToString(lp)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		rs, c := ctx.Conv.ToString(rp)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.String(ls + rs), runtime.NormalCompletion(runtime.Undefined)
	}
	if lp.Kind() == runtime.KindBigInt || rp.Kind() == runtime.KindBigInt {
		return bigintBinaryOp(ctx, "+", lp, rp)
	}
	ln, c := ctx.Conv.ToNumber(lp)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	rn, c := ctx.Conv.ToNumber(rp)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	return runtime.Number(ln + rn), runtime.NormalCompletion(runtime.Undefined)
}

// compareValues implements the relational operators (§4.5 "Relational"):
// string operands compare lexicographically; BigInt operands (possibly
// mixed with Number) compare as arbitrary precision; everything else
// compares as Number, with NaN making every relation false.
func compareValues(ctx Context, op string, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	lp, c := ctx.Conv.ToPrimitive(left, "number")
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	rp, c := ctx.Conv.ToPrimitive(right, "number")
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if lp.Kind() == runtime.KindString && rp.Kind() == runtime.KindString {
		return runtime.Bool(compareStrings(op, lp.AsString(), rp.AsString())), runtime.NormalCompletion(runtime.Undefined)
	}
	if lp.Kind() == runtime.KindBigInt || rp.Kind() == runtime.KindBigInt {
		lf, c := toBigFloat(ctx, lp)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		rf, c := toBigFloat(ctx, rp)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Bool(compareOrdering(op, lf.Cmp(rf))), runtime.NormalCompletion(runtime.Undefined)
	}
	ln, c := ctx.Conv.ToNumber(lp)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	rn, c := ctx.Conv.ToNumber(rp)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return runtime.Bool(false), runtime.NormalCompletion(runtime.Undefined)
	}
	switch op {
	case "<":
		return runtime.Bool(ln < rn), runtime.NormalCompletion(runtime.Undefined)
	case ">":
		return runtime.Bool(ln > rn), runtime.NormalCompletion(runtime.Undefined)
	case "<=":
		return runtime.Bool(ln <= rn), runtime.NormalCompletion(runtime.Undefined)
	default:
		return runtime.Bool(ln >= rn), runtime.NormalCompletion(runtime.Undefined)
	}
}

func compareStrings(op, l, r string) bool {
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	default:
		return l >= r
	}
}

func compareOrdering(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	default:
		return cmp >= 0
	}
}

func toBigFloat(ctx Context, v runtime.Value) (*big.Float, runtime.Completion) {
	if v.Kind() == runtime.KindBigInt {
		return new(big.Float).SetInt(v.AsBigInt()), runtime.NormalCompletion(runtime.Undefined)
	}
	n, c := ctx.Conv.ToNumber(v)
	if c.IsAbrupt() {
		return nil, c
	}
	return big.NewFloat(n), runtime.NormalCompletion(runtime.Undefined)
}

// numericBinaryOp implements the Number-typed arithmetic and bitwise
// operators (§4.5); bitwise operators go through ToInt32/ToUint32 per
// the spec's 32-bit wraparound semantics.
func numericBinaryOp(ctx Context, op string, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	switch op {
	case "&", "|", "^", "<<", ">>":
		li, c := ctx.Conv.ToInt32(left)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		ri, c := ctx.Conv.ToInt32(right)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		var result int32
		switch op {
		case "&":
			result = li & ri
		case "|":
			result = li | ri
		case "^":
			result = li ^ ri
		case "<<":
			result = li << (uint32(ri) & 31)
		case ">>":
			result = li >> (uint32(ri) & 31)
		}
		return runtime.Number(float64(result)), runtime.NormalCompletion(runtime.Undefined)
	case ">>>":
		lu, c := ctx.Conv.ToUint32(left)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		ru, c := ctx.Conv.ToUint32(right)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Number(float64(lu >> (ru & 31))), runtime.NormalCompletion(runtime.Undefined)
	}

	ln, c := ctx.Conv.ToNumber(left)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	rn, c := ctx.Conv.ToNumber(right)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	switch op {
	case "-":
		return runtime.Number(ln - rn), runtime.NormalCompletion(runtime.Undefined)
	case "*":
		return runtime.Number(ln * rn), runtime.NormalCompletion(runtime.Undefined)
	case "/":
		return runtime.Number(ln / rn), runtime.NormalCompletion(runtime.Undefined)
	case "%":
		return runtime.Number(math.Mod(ln, rn)), runtime.NormalCompletion(runtime.Undefined)
	case "**":
		return runtime.Number(math.Pow(ln, rn)), runtime.NormalCompletion(runtime.Undefined)
	}
	return runtime.Undefined, ctx.Throw("SyntaxError", "unsupported numeric operator %s", op)
}

// bigintBinaryOp implements the BigInt-typed arithmetic/bitwise
// operators (§4.5); mixing BigInt with any other type is a TypeError
// except for `+`'s string-concatenation branch, handled by the caller
// before reaching here.
func bigintBinaryOp(ctx Context, op string, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	if left.Kind() != runtime.KindBigInt || right.Kind() != runtime.KindBigInt {
		return runtime.Undefined, ctx.Throw("TypeError", "Cannot mix BigInt and other types, use explicit conversions")
	}
	l, r := left.AsBigInt(), right.AsBigInt()
	switch op {
	case "+":
		return runtime.BigInt(new(big.Int).Add(l, r)), runtime.NormalCompletion(runtime.Undefined)
	case "-":
		return runtime.BigInt(new(big.Int).Sub(l, r)), runtime.NormalCompletion(runtime.Undefined)
	case "*":
		return runtime.BigInt(new(big.Int).Mul(l, r)), runtime.NormalCompletion(runtime.Undefined)
	case "/":
		if r.Sign() == 0 {
			return runtime.Undefined, ctx.Throw("RangeError", "Division by zero")
		}
		return runtime.BigInt(new(big.Int).Quo(l, r)), runtime.NormalCompletion(runtime.Undefined)
	case "%":
		if r.Sign() == 0 {
			return runtime.Undefined, ctx.Throw("RangeError", "Division by zero")
		}
		return runtime.BigInt(new(big.Int).Rem(l, r)), runtime.NormalCompletion(runtime.Undefined)
	case "**":
		if r.Sign() < 0 {
			return runtime.Undefined, ctx.Throw("RangeError", "Exponent must be non-negative")
		}
		return runtime.BigInt(new(big.Int).Exp(l, r, nil)), runtime.NormalCompletion(runtime.Undefined)
	case "&":
		return runtime.BigInt(new(big.Int).And(l, r)), runtime.NormalCompletion(runtime.Undefined)
	case "|":
		return runtime.BigInt(new(big.Int).Or(l, r)), runtime.NormalCompletion(runtime.Undefined)
	case "^":
		return runtime.BigInt(new(big.Int).Xor(l, r)), runtime.NormalCompletion(runtime.Undefined)
	case "<<":
		return runtime.BigInt(new(big.Int).Lsh(l, uint(r.Int64()))), runtime.NormalCompletion(runtime.Undefined)
	case ">>":
		return runtime.BigInt(new(big.Int).Rsh(l, uint(r.Int64()))), runtime.NormalCompletion(runtime.Undefined)
	}
	return runtime.Undefined, ctx.Throw("SyntaxError", "unsupported BigInt operator %s", op)
}

// instanceOf implements the `instanceof` operator (§4.5): right must be
// callable, and left must be an object whose prototype chain contains
// right's `.prototype`.
func instanceOf(ctx Context, left, right runtime.Value) (runtime.Value, runtime.Completion) {
	if !right.IsObject() {
		return runtime.Undefined, ctx.Throw("TypeError", "Right-hand side of 'instanceof' is not callable")
	}
	rObj := ctx.Store.Get(right.AsObject())
	if rObj == nil || rObj.Callable == nil {
		return runtime.Undefined, ctx.Throw("TypeError", "Right-hand side of 'instanceof' is not callable")
	}
	if !left.IsObject() {
		return runtime.Bool(false), runtime.NormalCompletion(runtime.Undefined)
	}
	protoVal, c := runtime.GetProperty(ctx.Store, ctx.Realm, right.AsObject(), "prototype", right)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if !protoVal.IsObject() {
		return runtime.Undefined, ctx.Throw("TypeError", "Function has non-object prototype property in instanceof check")
	}
	target := ctx.Store.Get(left.AsObject())
	for target != nil && target.HasProto {
		if target.Prototype == protoVal.AsObject() {
			return runtime.Bool(true), runtime.NormalCompletion(runtime.Undefined)
		}
		target = ctx.Store.Get(target.Prototype)
	}
	return runtime.Bool(false), runtime.NormalCompletion(runtime.Undefined)
}
