package realm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-ecma/internal/interp/realm"
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// run evaluates program against a fresh default-config realm.
func run(program *ast.Program) (*realm.Interpreter, runtime.Completion) {
	return realm.EvaluateWithRealm(realm.DefaultConfig(), program)
}

func TestEvaluateArithmeticExpressionStatement(t *testing.T) {
	program := &ast.Program{
		Body: []ast.Statement{
			&ast.ExpressionStatement{
				Expression: &ast.BinaryExpression{
					Operator: "+",
					Left:     &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)},
					Right:    &ast.Literal{Kind: ast.NumberLiteral, Value: float64(2)},
				},
			},
		},
	}

	_, c := run(program)
	require.True(t, c.IsNormal())
	assert.Equal(t, "3", c.Value.GoString())
}

// TestCallingUserFunction exercises function declaration, closure-free
// call dispatch, and a return value flowing back as the completion's
// value (the call is the program's last statement).
func TestCallingUserFunction(t *testing.T) {
	program := &ast.Program{
		Body: []ast.Statement{
			&ast.FunctionDeclaration{
				Function: &ast.FunctionExpression{
					Name:   "double",
					Params: []ast.Pattern{&ast.Identifier{Name: "n"}},
					Body: &ast.BlockStatement{
						Body: []ast.Statement{
							&ast.ReturnStatement{
								Argument: &ast.BinaryExpression{
									Operator: "*",
									Left:     &ast.Identifier{Name: "n"},
									Right:    &ast.Literal{Kind: ast.NumberLiteral, Value: float64(2)},
								},
							},
						},
					},
				},
			},
			&ast.ExpressionStatement{
				Expression: &ast.CallExpression{
					Callee:    &ast.Identifier{Name: "double"},
					Arguments: []ast.Expression{&ast.Literal{Kind: ast.NumberLiteral, Value: float64(21)}},
				},
			},
		},
	}

	_, c := run(program)
	require.True(t, c.IsNormal())
	assert.Equal(t, "42", c.Value.GoString())
}

// TestThrowUncaughtPropagatesAsThrowCompletion exercises the realm's
// TypeError construction path reached via a native call, here from
// calling a non-function value.
func TestThrowUncaughtPropagatesAsThrowCompletion(t *testing.T) {
	program := &ast.Program{
		Body: []ast.Statement{
			&ast.VariableDeclaration{
				Kind: ast.BindLet,
				Declarations: []ast.VariableDeclarator{
					{
						Target: &ast.Identifier{Name: "notAFunction"},
						Init:   &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)},
					},
				},
			},
			&ast.ExpressionStatement{
				Expression: &ast.CallExpression{Callee: &ast.Identifier{Name: "notAFunction"}},
			},
		},
	}

	interp, c := run(program)
	require.Equal(t, runtime.Throw, c.Kind)
	require.True(t, c.Value.IsObject())
	obj := interp.Store().Get(c.Value.AsObject())
	require.NotNil(t, obj.ErrorData)
	assert.Equal(t, "TypeError", obj.ErrorData.Name)
}

// TestTypeofUndeclaredIdentifierNeverThrows locks in Testable Property
// 7: `typeof` on a name with no binding anywhere yields "undefined"
// instead of a ReferenceError, the one place `typeof` suppresses the
// usual unresolved-reference failure.
func TestTypeofUndeclaredIdentifierNeverThrows(t *testing.T) {
	program := &ast.Program{
		Body: []ast.Statement{
			&ast.ExpressionStatement{
				Expression: &ast.UnaryExpression{
					Operator: ast.UnaryTypeof,
					Argument: &ast.Identifier{Name: "neverDeclared"},
				},
			},
		},
	}

	_, c := run(program)
	require.True(t, c.IsNormal())
	assert.Equal(t, `"undefined"`, c.Value.GoString())
}

func TestArrayLiteralAndIndexAccess(t *testing.T) {
	program := &ast.Program{
		Body: []ast.Statement{
			&ast.ExpressionStatement{
				Expression: &ast.MemberExpression{
					Object: &ast.ArrayLiteral{
						Elements: []ast.Expression{
							&ast.Literal{Kind: ast.NumberLiteral, Value: float64(10)},
							&ast.Literal{Kind: ast.NumberLiteral, Value: float64(20)},
						},
					},
					Property: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)},
					Computed: true,
				},
			},
		},
	}

	_, c := run(program)
	require.True(t, c.IsNormal())
	assert.Equal(t, "20", c.Value.GoString())
}

// TestGeneratorYieldsInOrder drives a generator function through two
// next() calls via the realm's method-call dispatch, exercising the
// whole path from FunctionExpression.IsGenerator through
// generator.Factory.CreateGenerator to Generator.prototype.next.
func TestGeneratorYieldsInOrder(t *testing.T) {
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
					Name:        "gen",
					IsGenerator: true,
					Body: &ast.BlockStatement{
						Body: []ast.Statement{
							&ast.ExpressionStatement{Expression: &ast.YieldExpression{Argument: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)}}},
							&ast.ExpressionStatement{Expression: &ast.YieldExpression{Argument: &ast.Literal{Kind: ast.NumberLiteral, Value: float64(2)}}},
						},
					},
				},
			},
			&ast.VariableDeclaration{
				Kind: ast.BindLet,
				Declarations: []ast.VariableDeclarator{
					{
						Target: &ast.Identifier{Name: "it"},
						Init:   &ast.CallExpression{Callee: &ast.Identifier{Name: "gen"}},
					},
				},
			},
			&ast.ExpressionStatement{Expression: callNext("it")},
			&ast.ExpressionStatement{
				Expression: &ast.MemberExpression{
					Object:   callNext("it"),
					Property: &ast.Identifier{Name: "value"},
				},
			},
		},
	}

	_, c := run(program)
	require.True(t, c.IsNormal())
	assert.Equal(t, "2", c.Value.GoString())
}
