package evaluator

import (
	"strconv"

	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// memberKey resolves a MemberExpression's property key: the literal
// name for `.name` access, or the computed expression's converted
// value for `[expr]` access (§4.5 "Member").
func memberKey(ctx Context, n *ast.MemberExpression) (string, runtime.Completion) {
	return evalPropertyKey(ctx, n.Property, n.Computed)
}

// GetPropertyValue reads key off v, boxing the narrow set of primitive
// property accesses the core supports directly (string length/index);
// everything else routes through the Property System (§4.2, §4.5).
func GetPropertyValue(ctx Context, v runtime.Value, key string) (runtime.Value, runtime.Completion) {
	if v.IsNullish() {
		return runtime.Undefined, ctx.Throw("TypeError", "Cannot read properties of %s (reading '%s')", v.Kind(), key)
	}
	if v.IsObject() {
		return runtime.GetProperty(ctx.Store, ctx.Realm, v.AsObject(), key, v)
	}
	if v.Kind() == runtime.KindString {
		s := v.AsString()
		if key == "length" {
			return runtime.Number(float64(runtime.UTF16Length(s))), runtime.NormalCompletion(runtime.Undefined)
		}
		if idx, err := strconv.Atoi(key); err == nil && idx >= 0 {
			units := runtime.StringToUTF16(s)
			if idx < len(units) {
				return runtime.String(runtime.UTF16ToString(units[idx : idx+1])), runtime.NormalCompletion(runtime.Undefined)
			}
			return runtime.Undefined, runtime.NormalCompletion(runtime.Undefined)
		}
	}
	return runtime.Undefined, runtime.NormalCompletion(runtime.Undefined)
}

// EvalMemberExpression evaluates n outside of an optional-chain context,
// collapsing an internal short-circuit to plain undefined (§4.5
// "optional chaining"). base is the evaluated object, handed back so
// call expressions can bind it as `this` for method calls.
func EvalMemberExpression(ctx Context, n *ast.MemberExpression) (runtime.Value, runtime.Value, runtime.Completion) {
	v, base, short, c := evalMemberChain(ctx, n)
	if short {
		return runtime.Undefined, base, runtime.NormalCompletion(runtime.Undefined)
	}
	return v, base, c
}

// EvalCallExpression evaluates n, again collapsing an internal optional-
// chain short-circuit to undefined.
func EvalCallExpression(ctx Context, n *ast.CallExpression) (runtime.Value, runtime.Completion) {
	v, short, c := evalCallChain(ctx, n)
	if short {
		return runtime.Undefined, runtime.NormalCompletion(runtime.Undefined)
	}
	return v, c
}

func evalMemberChain(ctx Context, n *ast.MemberExpression) (value, base runtime.Value, short bool, c runtime.Completion) {
	obj, short, c := evalChainOperand(ctx, n.Object)
	if c.IsAbrupt() {
		return runtime.Undefined, runtime.Undefined, false, c
	}
	if short {
		return runtime.Undefined, runtime.Undefined, true, runtime.NormalCompletion(runtime.Undefined)
	}
	if n.Optional && obj.IsNullish() {
		return runtime.Undefined, obj, true, runtime.NormalCompletion(runtime.Undefined)
	}
	key, c := memberKey(ctx, n)
	if c.IsAbrupt() {
		return runtime.Undefined, obj, false, c
	}
	v, c := GetPropertyValue(ctx, obj, key)
	return v, obj, false, c
}

func evalCallChain(ctx Context, n *ast.CallExpression) (runtime.Value, bool, runtime.Completion) {
	var thisVal, fnVal runtime.Value
	var short bool
	var c runtime.Completion
	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		fnVal, thisVal, short, c = evalMemberChain(ctx, member)
	} else {
		thisVal = runtime.Undefined
		fnVal, short, c = evalChainOperand(ctx, n.Callee)
	}
	if c.IsAbrupt() {
		return runtime.Undefined, false, c
	}
	if short {
		return runtime.Undefined, true, runtime.NormalCompletion(runtime.Undefined)
	}
	if n.Optional && fnVal.IsNullish() {
		return runtime.Undefined, true, runtime.NormalCompletion(runtime.Undefined)
	}
	args, c, ok := evalArguments(ctx, n.Arguments)
	if !ok {
		return runtime.Undefined, false, c
	}
	result := CallValue(ctx, fnVal, thisVal, runtime.Undefined, args)
	return result.Value, false, result
}

// evalChainOperand evaluates the object/callee of a member or call
// expression, propagating an optional-chain short-circuit up from a
// nested MemberExpression/CallExpression without re-evaluating it.
func evalChainOperand(ctx Context, expr ast.Expression) (runtime.Value, bool, runtime.Completion) {
	switch n := expr.(type) {
	case *ast.MemberExpression:
		v, _, short, c := evalMemberChain(ctx, n)
		return v, short, c
	case *ast.CallExpression:
		return evalCallChain(ctx, n)
	default:
		v, c := EvalExpression(ctx, expr)
		return v, false, c
	}
}

// evalArguments evaluates a call/new argument list left to right,
// splicing *ast.SpreadElement entries (§4.5 "Call", "argument
// evaluation completes before the call").
func evalArguments(ctx Context, args []ast.Expression) ([]runtime.Value, runtime.Completion, bool) {
	var out []runtime.Value
	for _, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok {
			v, c := EvalExpression(ctx, spread.Argument)
			if c.IsAbrupt() {
				return nil, c, false
			}
			items, c := iterateToSlice(ctx, v, -1)
			if c.IsAbrupt() {
				return nil, c, false
			}
			out = append(out, items...)
			continue
		}
		v, c := EvalExpression(ctx, a)
		if c.IsAbrupt() {
			return nil, c, false
		}
		out = append(out, v)
	}
	return out, runtime.Completion{}, true
}

func evalNewExpression(ctx Context, n *ast.NewExpression) (runtime.Value, runtime.Completion) {
	callee, c := EvalExpression(ctx, n.Callee)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	args, c, ok := evalArguments(ctx, n.Arguments)
	if !ok {
		return runtime.Undefined, c
	}
	result := ConstructValue(ctx, callee, args)
	return result.Value, result
}

func assignMember(ctx Context, n *ast.MemberExpression, value runtime.Value) runtime.Completion {
	ref, c := resolveMemberRef(ctx, n)
	if c.IsAbrupt() {
		return c
	}
	return ref.set(ctx, value)
}

// memberRef is a MemberExpression's object and key, resolved once so a
// compound assignment's Get and Set share the same reference instead of
// re-evaluating a possibly side-effecting object/key expression twice
// (§4.5 "compound assignments evaluate the object and key once").
type memberRef struct {
	obj runtime.Value
	key string
}

// resolveMemberRef evaluates n's object and key exactly once.
func resolveMemberRef(ctx Context, n *ast.MemberExpression) (memberRef, runtime.Completion) {
	obj, c := EvalExpression(ctx, n.Object)
	if c.IsAbrupt() {
		return memberRef{}, c
	}
	key, c := memberKey(ctx, n)
	if c.IsAbrupt() {
		return memberRef{}, c
	}
	return memberRef{obj: obj, key: key}, runtime.NormalCompletion(runtime.Undefined)
}

func (r memberRef) get(ctx Context) (runtime.Value, runtime.Completion) {
	return GetPropertyValue(ctx, r.obj, r.key)
}

func (r memberRef) set(ctx Context, value runtime.Value) runtime.Completion {
	if !r.obj.IsObject() {
		if r.obj.IsNullish() {
			return ctx.Throw("TypeError", "Cannot set properties of %s (setting '%s')", r.obj.Kind(), r.key)
		}
		return runtime.NormalCompletion(runtime.Undefined)
	}
	return runtime.SetProperty(ctx.Store, ctx.Realm, r.obj.AsObject(), r.key, value, r.obj)
}

// openIterator resolves v's Symbol.iterator method and invokes it,
// returning the iterator object (§4.8 "GetIterator").
func openIterator(ctx Context, v runtime.Value) (runtime.Value, runtime.Completion) {
	if !v.IsObject() || ctx.Realm == nil {
		return runtime.Undefined, ctx.Throw("TypeError", "value is not iterable")
	}
	symKey := ctx.Realm.SymbolKeyFor("Symbol.iterator")
	iterFn, c := runtime.GetProperty(ctx.Store, ctx.Realm, v.AsObject(), symKey, v)
	if c.IsAbrupt() {
		return runtime.Undefined, c
	}
	if !iterFn.IsObject() {
		return runtime.Undefined, ctx.Throw("TypeError", "value is not iterable")
	}
	result := ctx.Realm.Call(iterFn, v, nil)
	if result.IsAbrupt() {
		return runtime.Undefined, result
	}
	if !result.Value.IsObject() {
		return runtime.Undefined, ctx.Throw("TypeError", "Result of the Symbol.iterator method is not an object")
	}
	return result.Value, runtime.NormalCompletion(runtime.Undefined)
}

// iteratorStep calls iterator.next() and unpacks the {value, done}
// result (§4.8 "IteratorNext"/"IteratorComplete"/"IteratorValue").
func iteratorStep(ctx Context, iterator runtime.Value) (value runtime.Value, done bool, c runtime.Completion) {
	nextFn, c := runtime.GetProperty(ctx.Store, ctx.Realm, iterator.AsObject(), "next", iterator)
	if c.IsAbrupt() {
		return runtime.Undefined, false, c
	}
	stepResult := ctx.Realm.Call(nextFn, iterator, nil)
	if stepResult.IsAbrupt() {
		return runtime.Undefined, false, stepResult
	}
	step := stepResult.Value
	if !step.IsObject() {
		return runtime.Undefined, false, ctx.Throw("TypeError", "Iterator result is not an object")
	}
	doneVal, c := runtime.GetProperty(ctx.Store, ctx.Realm, step.AsObject(), "done", step)
	if c.IsAbrupt() {
		return runtime.Undefined, false, c
	}
	if runtime.ToBoolean(doneVal) {
		return runtime.Undefined, true, runtime.NormalCompletion(runtime.Undefined)
	}
	value, c = runtime.GetProperty(ctx.Store, ctx.Realm, step.AsObject(), "value", step)
	return value, false, c
}

// OpenIterator is the exported form of openIterator, used by the
// generator runtime's `yield*` delegation (§4.7.3) to resolve a
// delegated iterable without duplicating the Symbol.iterator lookup.
func OpenIterator(ctx Context, v runtime.Value) (runtime.Value, runtime.Completion) {
	return openIterator(ctx, v)
}

// IteratorStep is the exported form of iteratorStep, used by `yield*`
// delegation to pump the delegate iterator one step at a time (rather
// than draining it via GetIterator).
func IteratorStep(ctx Context, iterator runtime.Value) (runtime.Value, bool, runtime.Completion) {
	return iteratorStep(ctx, iterator)
}

// IteratorMethod looks up an optional method (`return`/`throw`) on an
// iterator without invoking it; ok is false when the method is absent,
// nullish, or not callable (§4.8 "if IteratorClose/Throw is absent").
func IteratorMethod(ctx Context, iterator runtime.Value, name string) (fn runtime.Value, ok bool, c runtime.Completion) {
	fn, c = runtime.GetProperty(ctx.Store, ctx.Realm, iterator.AsObject(), name, iterator)
	if c.IsAbrupt() {
		return runtime.Undefined, false, c
	}
	if !isCallable(ctx.Store, fn) {
		return runtime.Undefined, false, runtime.NormalCompletion(runtime.Undefined)
	}
	return fn, true, runtime.NormalCompletion(runtime.Undefined)
}

// IteratorClose runs the IteratorClose algorithm (§4.8): call the
// iterator's `return` method, if any, when a for-of loop (or any other
// iterator consumer) exits before the iterator reports done. completion
// is the loop's own completion (Normal on a matched break, Return,
// Throw, ...). A Throw completion wins over whatever `return()` does;
// any other completion is replaced by a failure to look up or call
// `return()`, and by a TypeError when `return()` yields a non-object.
func IteratorClose(ctx Context, iterator runtime.Value, completion runtime.Completion) runtime.Completion {
	fn, ok, c := IteratorMethod(ctx, iterator, "return")
	if c.IsAbrupt() {
		if completion.Kind == runtime.Throw {
			return completion
		}
		return c
	}
	if !ok {
		return completion
	}
	result := ctx.Realm.Call(fn, iterator, nil)
	if result.IsAbrupt() {
		if completion.Kind == runtime.Throw {
			return completion
		}
		return result
	}
	if completion.Kind != runtime.Throw && !result.Value.IsObject() {
		return ctx.Throw("TypeError", "Iterator result is not an object")
	}
	return completion
}

// GetIterator drains an object's iterator protocol (§4.8) into a slice:
// resolve Symbol.iterator, call it, then pump next() until done or limit
// is reached (limit<0 means unbounded).
func GetIterator(ctx Context, v runtime.Value, limit int) ([]runtime.Value, runtime.Completion) {
	iterator, c := openIterator(ctx, v)
	if c.IsAbrupt() {
		return nil, c
	}
	var out []runtime.Value
	for limit < 0 || len(out) < limit {
		value, done, c := iteratorStep(ctx, iterator)
		if c.IsAbrupt() {
			return nil, c
		}
		if done {
			break
		}
		out = append(out, value)
	}
	return out, runtime.NormalCompletion(runtime.Undefined)
}
