package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// BindPattern declares p as a parameter binding (§4.6 step 2); it is a
// thin wrapper over DeclarePattern fixed to BindParam.
func BindPattern(ctx Context, p ast.Pattern, value runtime.Value) runtime.Completion {
	return DeclarePattern(ctx, p, runtime.BindParam, value)
}

// DeclarePattern destructures value against p, introducing each leaf
// binding in ctx.Env with kind (§4.5 "Destructuring"): object/array
// patterns support defaults, rest elements, and nested patterns;
// side-effect order is left-to-right.
func DeclarePattern(ctx Context, p ast.Pattern, kind runtime.BindingKind, value runtime.Value) runtime.Completion {
	switch n := p.(type) {
	case *ast.Identifier:
		ctx.Env.DeclareInitialized(n.Name, kind, value)
		return runtime.NormalCompletion(runtime.Undefined)

	case *ast.DefaultPattern:
		if value.IsUndefined() {
			dv, c := EvalExpression(ctx, n.Default)
			if c.IsAbrupt() {
				return c
			}
			value = dv
		}
		return DeclarePattern(ctx, n.Target, kind, value)

	case *ast.RestPattern:
		return DeclarePattern(ctx, n.Target, kind, value)

	case *ast.ArrayPattern:
		values, c := iterateToSlice(ctx, value, len(n.Elements)+boolToInt(n.Rest != nil))
		if c.IsAbrupt() {
			return c
		}
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			var v runtime.Value
			if i < len(values) {
				v = values[i]
			} else {
				v = runtime.Undefined
			}
			if c := DeclarePattern(ctx, el, kind, v); c.IsAbrupt() {
				return c
			}
		}
		if n.Rest != nil {
			var tail []runtime.Value
			if len(n.Elements) < len(values) {
				tail = values[len(n.Elements):]
			}
			arr := runtime.Object(ctx.Store.NewArrayObject(tail, ctx.ArrayPrototype))
			if c := DeclarePattern(ctx, n.Rest, kind, arr); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalCompletion(runtime.Undefined)

	case *ast.ObjectPattern:
		if value.IsNullish() {
			return ctx.Throw("TypeError", "Cannot destructure %s as it is %s.", "value", value.Kind())
		}
		used := map[string]bool{}
		for _, prop := range n.Properties {
			key, c := evalPropertyKey(ctx, prop.Key, prop.Computed)
			if c.IsAbrupt() {
				return c
			}
			used[key] = true
			v, c := GetPropertyValue(ctx, value, key)
			if c.IsAbrupt() {
				return c
			}
			if c := DeclarePattern(ctx, prop.Value, kind, v); c.IsAbrupt() {
				return c
			}
		}
		if n.Rest != nil {
			restHandle := ctx.Store.NewOrdinaryObject(ctx.ObjectPrototype, true)
			if value.IsObject() {
				for _, k := range runtime.EnumerableOwnKeys(ctx.Store, value.AsObject()) {
					if used[k] {
						continue
					}
					v, c := GetPropertyValue(ctx, value, k)
					if c.IsAbrupt() {
						return c
					}
					ctx.Store.Get(restHandle).Properties.Set(k, runtime.DataDescriptorPtr(v, true, true, true))
				}
			}
			if c := DeclarePattern(ctx, n.Rest, kind, runtime.Object(restHandle)); c.IsAbrupt() {
				return c
			}
		}
		return runtime.NormalCompletion(runtime.Undefined)

	default:
		return runtime.NormalCompletion(runtime.Undefined)
	}
}

// AssignPattern destructures value against target, assigning to
// existing bindings and object/member properties rather than declaring
// new ones (§4.5 "Destructuring", used by plain `=` assignment).
func AssignPattern(ctx Context, target ast.Node, value runtime.Value) runtime.Completion {
	switch n := target.(type) {
	case *ast.Identifier:
		if err := ctx.Env.Set(n.Name, value); err != runtime.ErrNone {
			return bindingErrorCompletion(ctx, n.Name, err)
		}
		return runtime.NormalCompletion(runtime.Undefined)

	case *ast.MemberExpression:
		return assignMember(ctx, n, value)

	case *ast.MemberPattern:
		return assignMember(ctx, n.Target, value)

	case *ast.DefaultPattern:
		if value.IsUndefined() {
			dv, c := EvalExpression(ctx, n.Default)
			if c.IsAbrupt() {
				return c
			}
			value = dv
		}
		return AssignPattern(ctx, n.Target, value)

	case *ast.RestPattern:
		return AssignPattern(ctx, n.Target, value)

	case *ast.ArrayPattern:
		values, c := iterateToSlice(ctx, value, len(n.Elements)+boolToInt(n.Rest != nil))
		if c.IsAbrupt() {
			return c
		}
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			var v runtime.Value
			if i < len(values) {
				v = values[i]
			} else {
				v = runtime.Undefined
			}
			if c := AssignPattern(ctx, el, v); c.IsAbrupt() {
				return c
			}
		}
		if n.Rest != nil {
			var tail []runtime.Value
			if len(n.Elements) < len(values) {
				tail = values[len(n.Elements):]
			}
			arr := runtime.Object(ctx.Store.NewArrayObject(tail, ctx.ArrayPrototype))
			return AssignPattern(ctx, n.Rest, arr)
		}
		return runtime.NormalCompletion(runtime.Undefined)

	case *ast.ObjectPattern:
		used := map[string]bool{}
		for _, prop := range n.Properties {
			key, c := evalPropertyKey(ctx, prop.Key, prop.Computed)
			if c.IsAbrupt() {
				return c
			}
			used[key] = true
			v, c := GetPropertyValue(ctx, value, key)
			if c.IsAbrupt() {
				return c
			}
			if c := AssignPattern(ctx, prop.Value, v); c.IsAbrupt() {
				return c
			}
		}
		if n.Rest != nil {
			restHandle := ctx.Store.NewOrdinaryObject(ctx.ObjectPrototype, true)
			if value.IsObject() {
				for _, k := range runtime.EnumerableOwnKeys(ctx.Store, value.AsObject()) {
					if used[k] {
						continue
					}
					v, c := GetPropertyValue(ctx, value, k)
					if c.IsAbrupt() {
						return c
					}
					ctx.Store.Get(restHandle).Properties.Set(k, runtime.DataDescriptorPtr(v, true, true, true))
				}
			}
			return AssignPattern(ctx, n.Rest, runtime.Object(restHandle))
		}
		return runtime.NormalCompletion(runtime.Undefined)

	default:
		return runtime.NormalCompletion(runtime.Undefined)
	}
}

func bindingErrorCompletion(ctx Context, name string, err runtime.BindingError) runtime.Completion {
	switch err {
	case runtime.ErrTDZ:
		return ctx.Throw("ReferenceError", "Cannot access '%s' before initialization", name)
	case runtime.ErrConstAssign:
		return ctx.Throw("TypeError", "Assignment to constant variable.")
	case runtime.ErrNotDeclared:
		return ctx.Throw("ReferenceError", "%s is not defined", name)
	default:
		return runtime.NormalCompletion(runtime.Undefined)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
