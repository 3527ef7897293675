// Package ast defines the abstract syntax tree consumed by the
// interpreter core. Producing this tree (lexing and parsing JavaScript
// source) is the job of an external collaborator; this package only
// describes the node shapes the evaluator walks.
package ast

import "github.com/cwbudde/go-ecma/pkg/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
	node()
}

// Statement is implemented by statement-level nodes.
type Statement interface {
	Node
	stmt()
}

// Expression is implemented by expression-level nodes.
type Expression interface {
	Node
	expr()
}

// base carries the position every concrete node embeds.
type base struct {
	Position token.Position
}

func (b base) Pos() token.Position { return b.Position }
func (base) node()                 {}

// Program is the root node: a script or function body's statement list.
type Program struct {
	base
	Body []Statement
}

// Identifier references a binding by name.
type Identifier struct {
	base
	Name string
}

func (*Identifier) expr() {}

// BindingKind distinguishes how a declared name may be read/written.
// Mirrors the binding kinds of §3.4: Var, Let, Const, Param, Function.
type BindingKind int

const (
	BindVar BindingKind = iota
	BindLet
	BindConst
	BindParam
	BindFunction
)

func (k BindingKind) String() string {
	switch k {
	case BindVar:
		return "var"
	case BindLet:
		return "let"
	case BindConst:
		return "const"
	case BindParam:
		return "param"
	case BindFunction:
		return "function"
	default:
		return "unknown"
	}
}
