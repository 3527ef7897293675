package evaluator

import (
	"math/big"

	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// EvalExpression is the structural dispatch for every expression node
// (§4.5). It returns the produced value alongside a Completion; callers
// should check Completion.IsAbrupt() before trusting the Value.
func EvalExpression(ctx Context, expr ast.Expression) (runtime.Value, runtime.Completion) {
	switch n := expr.(type) {
	case *ast.Literal:
		return evalLiteral(n), runtime.NormalCompletion(runtime.Undefined)
	case *ast.RegexLiteral:
		return evalRegexLiteral(ctx, n)
	case *ast.TemplateLiteral:
		return evalTemplateLiteral(ctx, n)
	case *ast.Identifier:
		return evalIdentifier(ctx, n)
	case *ast.ThisExpression:
		return ctx.This(), runtime.NormalCompletion(runtime.Undefined)
	case *ast.NewTargetExpression:
		return ctx.NewTarget(), runtime.NormalCompletion(runtime.Undefined)
	case *ast.ArrayLiteral:
		return evalArrayLiteral(ctx, n)
	case *ast.ObjectLiteral:
		return evalObjectLiteral(ctx, n)
	case *ast.FunctionExpression:
		return NewFunctionValue(ctx, n)
	case *ast.MemberExpression:
		v, _, c := EvalMemberExpression(ctx, n)
		return v, c
	case *ast.CallExpression:
		return EvalCallExpression(ctx, n)
	case *ast.NewExpression:
		return evalNewExpression(ctx, n)
	case *ast.UnaryExpression:
		return evalUnaryExpression(ctx, n)
	case *ast.UpdateExpression:
		return evalUpdateExpression(ctx, n)
	case *ast.BinaryExpression:
		return evalBinaryExpression(ctx, n)
	case *ast.LogicalExpression:
		return evalLogicalExpression(ctx, n)
	case *ast.AssignmentExpression:
		return evalAssignmentExpression(ctx, n)
	case *ast.ConditionalExpression:
		return evalConditionalExpression(ctx, n)
	case *ast.SequenceExpression:
		return evalSequenceExpression(ctx, n)
	case *ast.SpreadElement:
		return EvalExpression(ctx, n.Argument)
	case *ast.YieldExpression:
		// Generator bodies are always evaluated through their lowered
		// state machine (§4.7); a bare YieldExpression reaching here
		// means it escaped the transform.
		return runtime.Undefined, ctx.Throw("SyntaxError", "yield is only valid inside a generator function")
	default:
		return runtime.Undefined, ctx.Throw("SyntaxError", "unsupported expression node")
	}
}

func evalLiteral(n *ast.Literal) runtime.Value {
	switch n.Kind {
	case ast.NumberLiteral:
		return runtime.Number(n.Value.(float64))
	case ast.StringLiteral:
		return runtime.String(n.Value.(string))
	case ast.BooleanLiteral:
		return runtime.Bool(n.Value.(bool))
	case ast.NullLiteral:
		return runtime.Null
	case ast.BigIntLiteral:
		bi, _ := new(big.Int).SetString(n.Value.(string), 10)
		return runtime.BigInt(bi)
	default:
		return runtime.Undefined
	}
}

func evalRegexLiteral(ctx Context, n *ast.RegexLiteral) (runtime.Value, runtime.Completion) {
	if ctx.Realm == nil {
		return runtime.Undefined, ctx.Throw("SyntaxError", "regular expressions are unavailable in this realm")
	}
	if rc, ok := ctx.Realm.(RegExpConstructible); ok {
		return rc.NewRegExp(n.Pattern, n.Flags)
	}
	return runtime.Undefined, ctx.Throw("SyntaxError", "regular expressions are unavailable in this realm")
}

// RegExpConstructible is implemented by the realm so regex literals can
// be materialized without the evaluator importing the regex package.
type RegExpConstructible interface {
	NewRegExp(pattern, flags string) (runtime.Value, runtime.Completion)
}

func evalTemplateLiteral(ctx Context, n *ast.TemplateLiteral) (runtime.Value, runtime.Completion) {
	var b []byte
	b = append(b, n.Quasis[0]...)
	for i, expr := range n.Expressions {
		v, c := EvalExpression(ctx, expr)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		s, c := ctx.Conv.ToString(v)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		b = append(b, s...)
		b = append(b, n.Quasis[i+1]...)
	}
	return runtime.String(string(b)), runtime.NormalCompletion(runtime.Undefined)
}

func evalIdentifier(ctx Context, n *ast.Identifier) (runtime.Value, runtime.Completion) {
	v, err := ctx.Env.Get(n.Name)
	if err == runtime.ErrNone {
		return v, runtime.NormalCompletion(runtime.Undefined)
	}
	return runtime.Undefined, bindingErrorCompletion(ctx, n.Name, err)
}

func evalArrayLiteral(ctx Context, n *ast.ArrayLiteral) (runtime.Value, runtime.Completion) {
	var values []runtime.Value
	for _, el := range n.Elements {
		if el == nil {
			values = append(values, runtime.Undefined)
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			sv, c := EvalExpression(ctx, spread.Argument)
			if c.IsAbrupt() {
				return runtime.Undefined, c
			}
			items, c := iterateToSlice(ctx, sv, -1)
			if c.IsAbrupt() {
				return runtime.Undefined, c
			}
			values = append(values, items...)
			continue
		}
		v, c := EvalExpression(ctx, el)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		values = append(values, v)
	}
	return runtime.Object(ctx.Store.NewArrayObject(values, ctx.ArrayPrototype)), runtime.NormalCompletion(runtime.Undefined)
}

func evalObjectLiteral(ctx Context, n *ast.ObjectLiteral) (runtime.Value, runtime.Completion) {
	h := ctx.Store.NewOrdinaryObject(ctx.ObjectPrototype, true)
	obj := ctx.Store.Get(h)
	for _, prop := range n.Properties {
		if prop.Kind == ast.PropertySpread {
			sv, c := EvalExpression(ctx, prop.Value)
			if c.IsAbrupt() {
				return runtime.Undefined, c
			}
			if sv.IsObject() {
				for _, k := range runtime.EnumerableOwnKeys(ctx.Store, sv.AsObject()) {
					v, c := GetPropertyValue(ctx, sv, k)
					if c.IsAbrupt() {
						return runtime.Undefined, c
					}
					obj.Properties.Set(k, runtime.DataDescriptorPtr(v, true, true, true))
				}
			}
			continue
		}
		key, c := evalPropertyKey(ctx, prop.Key, prop.Computed)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		switch prop.Kind {
		case ast.PropertyGet, ast.PropertySet:
			fnExpr := prop.Value.(*ast.FunctionExpression)
			fnVal, c := NewFunctionValue(ctx, fnExpr)
			if c.IsAbrupt() {
				return runtime.Undefined, c
			}
			existing, _ := obj.Properties.Get(key)
			d := &runtime.Descriptor{HasEnumerable: true, Enumerable: true, HasConfigurable: true, Configurable: true}
			if existing != nil && existing.IsAccessor() {
				d.HasGet, d.Get = existing.HasGet, existing.Get
				d.HasSet, d.Set = existing.HasSet, existing.Set
			}
			if prop.Kind == ast.PropertyGet {
				d.HasGet, d.Get = true, fnVal
			} else {
				d.HasSet, d.Set = true, fnVal
			}
			if !d.HasGet {
				d.HasGet, d.Get = true, runtime.Undefined
			}
			if !d.HasSet {
				d.HasSet, d.Set = true, runtime.Undefined
			}
			obj.Properties.Set(key, d)
		default: // PropertyInit, PropertyMethod
			v, c := EvalExpression(ctx, prop.Value)
			if c.IsAbrupt() {
				return runtime.Undefined, c
			}
			obj.Properties.Set(key, runtime.DataDescriptorPtr(v, true, true, true))
		}
	}
	return runtime.Object(h), runtime.NormalCompletion(runtime.Undefined)
}

func evalPropertyKey(ctx Context, key ast.Expression, computed bool) (string, runtime.Completion) {
	if !computed {
		if id, ok := key.(*ast.Identifier); ok {
			return id.Name, runtime.NormalCompletion(runtime.Undefined)
		}
		if lit, ok := key.(*ast.Literal); ok {
			return ctx.Conv.ToPropertyKey(evalLiteral(lit))
		}
	}
	v, c := EvalExpression(ctx, key)
	if c.IsAbrupt() {
		return "", c
	}
	return ctx.Conv.ToPropertyKey(v)
}

func evalUnaryExpression(ctx Context, n *ast.UnaryExpression) (runtime.Value, runtime.Completion) {
	if n.Operator == ast.UnaryTypeof {
		if id, ok := n.Argument.(*ast.Identifier); ok && !ctx.Env.HasBinding(id.Name) {
			return runtime.String("undefined"), runtime.NormalCompletion(runtime.Undefined)
		}
	}
	if n.Operator == ast.UnaryDelete {
		return evalDelete(ctx, n.Argument)
	}
	v, c := EvalExpression(ctx, n.Argument)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	switch n.Operator {
	case ast.UnaryVoid:
		return runtime.Undefined, runtime.NormalCompletion(runtime.Undefined)
	case ast.UnaryTypeof:
		return runtime.String(v.TypeOf(ctx.Store)), runtime.NormalCompletion(runtime.Undefined)
	case ast.UnaryNot:
		return runtime.Bool(!runtime.ToBoolean(v)), runtime.NormalCompletion(runtime.Undefined)
	case ast.UnaryMinus:
		if v.Kind() == runtime.KindBigInt {
			return runtime.BigInt(new(big.Int).Neg(v.AsBigInt())), runtime.NormalCompletion(runtime.Undefined)
		}
		num, c := ctx.Conv.ToNumber(v)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Number(-num), runtime.NormalCompletion(runtime.Undefined)
	case ast.UnaryPlus:
		num, c := ctx.Conv.ToNumber(v)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Number(num), runtime.NormalCompletion(runtime.Undefined)
	case ast.UnaryBitNot:
		if v.Kind() == runtime.KindBigInt {
			return runtime.BigInt(new(big.Int).Not(v.AsBigInt())), runtime.NormalCompletion(runtime.Undefined)
		}
		i32, c := ctx.Conv.ToInt32(v)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return runtime.Number(float64(^i32)), runtime.NormalCompletion(runtime.Undefined)
	default:
		return runtime.Undefined, ctx.Throw("SyntaxError", "unsupported unary operator")
	}
}

func evalDelete(ctx Context, target ast.Expression) (runtime.Value, runtime.Completion) {
	member, ok := target.(*ast.MemberExpression)
	if !ok {
		return runtime.Bool(true), runtime.NormalCompletion(runtime.Undefined)
	}
	obj, c := EvalExpression(ctx, member.Object)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	key, c := memberKey(ctx, member)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if !obj.IsObject() {
		return runtime.Bool(true), runtime.NormalCompletion(runtime.Undefined)
	}
	ok2, c := runtime.DeleteProperty(ctx.Store, ctx.Realm, obj.AsObject(), key)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	return runtime.Bool(ok2), runtime.NormalCompletion(runtime.Undefined)
}

func evalUpdateExpression(ctx Context, n *ast.UpdateExpression) (runtime.Value, runtime.Completion) {
	// A MemberExpression operand resolves its object/key once so the Get
	// (old value) and Set (new value) share one reference instead of
	// re-evaluating a possibly side-effecting object/key expression twice.
	member, isMember := n.Argument.(*ast.MemberExpression)
	var ref memberRef
	var old runtime.Value
	var c runtime.Completion
	if isMember {
		ref, c = resolveMemberRef(ctx, member)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		old, c = ref.get(ctx)
	} else {
		old, c = EvalExpression(ctx, n.Argument)
	}
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	var newVal runtime.Value
	if old.Kind() == runtime.KindBigInt {
		delta := big.NewInt(1)
		if n.Operator == "--" {
			delta = big.NewInt(-1)
		}
		newVal = runtime.BigInt(new(big.Int).Add(old.AsBigInt(), delta))
	} else {
		num, c := ctx.Conv.ToNumber(old)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		old = runtime.Number(num)
		if n.Operator == "++" {
			newVal = runtime.Number(num + 1)
		} else {
			newVal = runtime.Number(num - 1)
		}
	}
	if isMember {
		c = ref.set(ctx, newVal)
	} else {
		c = AssignPattern(ctx, n.Argument, newVal)
	}
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if n.Prefix {
		return newVal, runtime.NormalCompletion(runtime.Undefined)
	}
	return old, runtime.NormalCompletion(runtime.Undefined)
}

func evalLogicalExpression(ctx Context, n *ast.LogicalExpression) (runtime.Value, runtime.Completion) {
	left, c := EvalExpression(ctx, n.Left)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	switch n.Operator {
	case "&&":
		if !runtime.ToBoolean(left) {
			return left, runtime.NormalCompletion(runtime.Undefined)
		}
	case "||":
		if runtime.ToBoolean(left) {
			return left, runtime.NormalCompletion(runtime.Undefined)
		}
	case "??":
		if !left.IsNullish() {
			return left, runtime.NormalCompletion(runtime.Undefined)
		}
	}
	return EvalExpression(ctx, n.Right)
}

func evalConditionalExpression(ctx Context, n *ast.ConditionalExpression) (runtime.Value, runtime.Completion) {
	test, c := EvalExpression(ctx, n.Test)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if runtime.ToBoolean(test) {
		return EvalExpression(ctx, n.Consequent)
	}
	return EvalExpression(ctx, n.Alternate)
}

func evalSequenceExpression(ctx Context, n *ast.SequenceExpression) (runtime.Value, runtime.Completion) {
	var last runtime.Value
	for _, expr := range n.Expressions {
		v, c := EvalExpression(ctx, expr)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		last = v
	}
	return last, runtime.NormalCompletion(runtime.Undefined)
}

func evalAssignmentExpression(ctx Context, n *ast.AssignmentExpression) (runtime.Value, runtime.Completion) {
	if n.Operator == "=" {
		v, c := EvalExpression(ctx, n.Value)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		if c := AssignPattern(ctx, n.Target, v); c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return v, runtime.NormalCompletion(runtime.Undefined)
	}

	targetExpr, ok := n.Target.(ast.Expression)
	if !ok {
		return runtime.Undefined, ctx.Throw("SyntaxError", "invalid compound assignment target")
	}

	// A MemberExpression target resolves its object/key once so every
	// compound form (`+=`, `&&=`, ...) shares one reference between the
	// Get (current value) and the eventual Set, instead of re-evaluating
	// a possibly side-effecting object/key expression twice.
	member, isMember := targetExpr.(*ast.MemberExpression)
	var ref memberRef
	if isMember {
		var c runtime.Completion
		ref, c = resolveMemberRef(ctx, member)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
	}
	readCurrent := func() (runtime.Value, runtime.Completion) {
		if isMember {
			return ref.get(ctx)
		}
		return EvalExpression(ctx, targetExpr)
	}
	writeResult := func(v runtime.Value) runtime.Completion {
		if isMember {
			return ref.set(ctx, v)
		}
		return AssignPattern(ctx, n.Target, v)
	}

	switch n.Operator {
	case "&&=", "||=", "??=":
		cur, c := readCurrent()
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		switch n.Operator {
		case "&&=":
			if !runtime.ToBoolean(cur) {
				return cur, runtime.NormalCompletion(runtime.Undefined)
			}
		case "||=":
			if runtime.ToBoolean(cur) {
				return cur, runtime.NormalCompletion(runtime.Undefined)
			}
		case "??=":
			if !cur.IsNullish() {
				return cur, runtime.NormalCompletion(runtime.Undefined)
			}
		}
		v, c := EvalExpression(ctx, n.Value)
		if c.IsAbrupt() {
			return runtime.Undefined, c
		}
		if c := writeResult(v); c.IsAbrupt() {
			return runtime.Undefined, c
		}
		return v, runtime.NormalCompletion(runtime.Undefined)
	}

	cur, c := readCurrent()
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	rhs, c := EvalExpression(ctx, n.Value)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	result, c := applyBinaryOp(ctx, compoundBaseOp(n.Operator), cur, rhs)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if c := writeResult(result); c.IsAbrupt() {
		return runtime.Undefined, c
	}
	return result, runtime.NormalCompletion(runtime.Undefined)
}

func compoundBaseOp(op string) string {
	if len(op) > 1 && op[len(op)-1] == '=' {
		return op[:len(op)-1]
	}
	return op
}

func evalBinaryExpression(ctx Context, n *ast.BinaryExpression) (runtime.Value, runtime.Completion) {
	left, c := EvalExpression(ctx, n.Left)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	right, c := EvalExpression(ctx, n.Right)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	return applyBinaryOp(ctx, n.Operator, left, right)
}

// iterateToSlice drains an iterable into a Go slice, used by spreads,
// array destructuring, and Array.from-style bridges. limit bounds how
// many items are pulled (-1 for unbounded, used by spreads); array
// values take a fast direct-copy path.
func iterateToSlice(ctx Context, v runtime.Value, limit int) ([]runtime.Value, runtime.Completion) {
	if v.IsObject() {
		if obj := ctx.Store.Get(v.AsObject()); obj != nil && obj.IsArray() {
			return append([]runtime.Value{}, obj.ArrayElements...), runtime.NormalCompletion(runtime.Undefined)
		}
	}
	if v.Kind() == runtime.KindString {
		runes := []rune(v.AsString())
		out := make([]runtime.Value, len(runes))
		for i, r := range runes {
			out[i] = runtime.String(string(r))
		}
		return out, runtime.NormalCompletion(runtime.Undefined)
	}
	return GetIterator(ctx, v, limit)
}
