package realm_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-ecma/internal/interp/realm"
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// TestPropertyEnumerationOrderSnapshot locks in the §4.2 enumeration
// rule (integer keys ascending, then insertion order) against a
// snapshot rather than a hand-maintained slice literal, the way the
// teacher's fixture suite snapshots interpreter output.
func TestPropertyEnumerationOrderSnapshot(t *testing.T) {
	program := &ast.Program{
		Body: []ast.Statement{
			&ast.VariableDeclaration{
				Kind: ast.BindLet,
				Declarations: []ast.VariableDeclarator{
					{
						Target: &ast.Identifier{Name: "obj"},
						Init: &ast.ObjectLiteral{
							Properties: []ast.ObjectLiteralProperty{
								{Key: &ast.Identifier{Name: "b"}, Value: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)}},
								{Key: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(2)}, Value: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)}, Computed: true},
								{Key: &ast.Identifier{Name: "a"}, Value: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)}},
								{Key: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(0)}, Value: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)}, Computed: true},
							},
						},
					},
				},
			},
			&ast.ExpressionStatement{
				Expression: &ast.CallExpression{
					Callee: &ast.MemberExpression{
						Object:   &ast.Identifier{Name: "Object"},
						Property: &ast.Identifier{Name: "keys"},
					},
					Arguments: []ast.Expression{&ast.Identifier{Name: "obj"}},
				},
			},
		},
	}

	interp, c := run(program)
	require.True(t, c.IsNormal())
	require.True(t, c.Value.IsObject())

	obj := interp.Store().Get(c.Value.AsObject())
	keys := make([]string, len(obj.ArrayElements))
	for i, v := range obj.ArrayElements {
		keys[i] = v.AsString()
	}

	snaps.MatchSnapshot(t, "property-enumeration-order", strings.Join(keys, ","))
}

// TestGeneratorStepSequenceSnapshot drives a generator through a
// yield* delegation to a second generator and snapshots the {value,
// done} sequence of all four next() calls, covering more of the state
// machine than a single next()/next() assertion would.
func TestGeneratorStepSequenceSnapshot(t *testing.T) {
	callNext := func(receiver string) ast.Expression {
		return &ast.CallExpression{
			Callee: &ast.MemberExpression{
				Object:   &ast.Identifier{Name: receiver},
				Property: &ast.Identifier{Name: "next"},
			},
		}
	}

	program := &ast.Program{
		Body: []ast.Statement{
			&ast.FunctionDeclaration{
				Function: &ast.FunctionExpression{
					Name:        "inner",
					IsGenerator: true,
					Body: &ast.BlockStatement{
						Body: []ast.Statement{
							&ast.ExpressionStatement{Expression: &ast.YieldExpression{Argument: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)}}},
							&ast.ExpressionStatement{Expression: &ast.YieldExpression{Argument: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(2)}}},
						},
					},
				},
			},
			&ast.FunctionDeclaration{
				Function: &ast.FunctionExpression{
					Name:        "outer",
					IsGenerator: true,
					Body: &ast.BlockStatement{
						Body: []ast.Statement{
							&ast.ExpressionStatement{Expression: &ast.YieldExpression{
								Argument:   &ast.CallExpression{Callee: &ast.Identifier{Name: "inner"}},
								IsDelegate: true,
							}},
							&ast.ExpressionStatement{Expression: &ast.YieldExpression{Argument: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(3)}}},
						},
					},
				},
			},
			&ast.VariableDeclaration{
				Kind: ast.BindLet,
				Declarations: []ast.VariableDeclarator{
					{Target: &ast.Identifier{Name: "it"}, Init: &ast.CallExpression{Callee: &ast.Identifier{Name: "outer"}}},
				},
			},
			&ast.ExpressionStatement{
				Expression: &ast.ArrayLiteral{
					Elements: []ast.Expression{
						callNext("it"),
						callNext("it"),
						callNext("it"),
						callNext("it"),
					},
				},
			},
		},
	}

	interp, c := run(program)
	require.True(t, c.IsNormal())
	require.True(t, c.Value.IsObject())

	steps := interp.Store().Get(c.Value.AsObject())
	descriptions := make([]string, len(steps.ArrayElements))
	for i, step := range steps.ArrayElements {
		descriptions[i] = describeIterResult(interp, step)
	}

	snaps.MatchSnapshot(t, "generator-step-sequence", strings.Join(descriptions, "\n"))
}

// describeIterResult renders a `{value, done}` iterator-result object
// as a stable, human-readable line for the snapshot.
func describeIterResult(interp *realm.Interpreter, v runtime.Value) string {
	if !v.IsObject() {
		return v.GoString()
	}
	obj := interp.Store().Get(v.AsObject())
	if obj == nil {
		return v.GoString()
	}
	value := runtime.Undefined
	if d, ok := obj.Properties.Get("value"); ok && d.HasValue {
		value = d.Value
	}
	done := false
	if d, ok := obj.Properties.Get("done"); ok && d.HasValue {
		done = runtime.ToBoolean(d.Value)
	}
	return fmt.Sprintf("{value: %s, done: %t}", value.GoString(), done)
}
