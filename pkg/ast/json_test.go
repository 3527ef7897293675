package ast_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-ecma/pkg/ast"
)

// sampleProgram builds `let x = 1 + y; function f(a, ...rest) { return a; }`
// by hand, exercising declarations, binary expressions, a function
// with a rest parameter, and a return statement in one tree.
func sampleProgram() *ast.Program {
	return &ast.Program{
		Body: []ast.Statement{
			&ast.VariableDeclaration{
				Kind: ast.BindLet,
				Declarations: []ast.VariableDeclarator{
					{
						Target: &ast.Identifier{Name: "x"},
						Init: &ast.BinaryExpression{
							Operator: "+",
							Left:     &ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)},
							Right:    &ast.Identifier{Name: "y"},
						},
					},
				},
			},
			&ast.FunctionDeclaration{
				Function: &ast.FunctionExpression{
					Name: "f",
					Params: []ast.Pattern{
						&ast.Identifier{Name: "a"},
						&ast.RestPattern{Target: &ast.Identifier{Name: "rest"}},
					},
					Body: &ast.BlockStatement{
						Body: []ast.Statement{
							&ast.ReturnStatement{Argument: &ast.Identifier{Name: "a"}},
						},
					},
				},
			},
		},
	}
}

func TestProgramJSONRoundTrip(t *testing.T) {
	original := sampleProgram()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := ast.ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, decoded.Body, 2)

	decl, ok := decoded.Body[0].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, ast.BindLet, decl.Kind)
	require.Len(t, decl.Declarations, 1)

	target, ok := decl.Declarations[0].Target.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "x", target.Name)

	bin, ok := decl.Declarations[0].Init.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Operator)

	lit, ok := bin.Left.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, ast.NumberLiteral, lit.Kind)
	assert.Equal(t, float64(1), lit.Value)

	fnDecl, ok := decoded.Body[1].(*ast.FunctionDeclaration)
	require.True(t, ok)
	assert.Equal(t, "f", fnDecl.Function.Name)
	require.Len(t, fnDecl.Function.Params, 2)

	rest, ok := fnDecl.Function.Params[1].(*ast.RestPattern)
	require.True(t, ok)
	restTarget, ok := rest.Target.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "rest", restTarget.Name)

	require.Len(t, fnDecl.Function.Body.Body, 1)
	ret, ok := fnDecl.Function.Body.Body[0].(*ast.ReturnStatement)
	require.True(t, ok)
	arg, ok := ret.Argument.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "a", arg.Name)
}

func TestParseJSONRejectsUnknownType(t *testing.T) {
	_, err := ast.ParseJSON([]byte(`{"Body":[{"type":"NotARealNode"}]}`))
	assert.Error(t, err)
}

func TestArrayLiteralElisionRoundTrip(t *testing.T) {
	original := &ast.Program{
		Body: []ast.Statement{
			&ast.ExpressionStatement{
				Expression: &ast.ArrayLiteral{
					Elements: []ast.Expression{
						&ast.Literal{Kind: ast.NumberLiteral, Value: float64(1)},
						nil,
						&ast.Literal{Kind: ast.NumberLiteral, Value: float64(3)},
					},
				},
			},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := ast.ParseJSON(data)
	require.NoError(t, err)

	stmt := decoded.Body[0].(*ast.ExpressionStatement)
	arr := stmt.Expression.(*ast.ArrayLiteral)
	require.Len(t, arr.Elements, 3)
	assert.Nil(t, arr.Elements[1])
}

func TestTryStatementWithoutHandlerRoundTrip(t *testing.T) {
	original := &ast.Program{
		Body: []ast.Statement{
			&ast.TryStatement{
				Block: &ast.BlockStatement{Body: []ast.Statement{&ast.EmptyStatement{}}},
				Finalizer: &ast.BlockStatement{
					Body: []ast.Statement{&ast.EmptyStatement{}},
				},
			},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := ast.ParseJSON(data)
	require.NoError(t, err)

	try := decoded.Body[0].(*ast.TryStatement)
	assert.Nil(t, try.Handler)
	assert.NotNil(t, try.Finalizer)
}
