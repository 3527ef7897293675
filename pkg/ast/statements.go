package ast

// Program is defined in ast.go; this file carries the remaining
// statement-level node shapes (§4.5).

// BlockStatement is a `{ ... }` statement list introducing a new lexical
// scope; `let`/`const` declared directly inside it are block-scoped.
type BlockStatement struct {
	base
	Body []Statement
}

func (*BlockStatement) stmt() {}

// ExpressionStatement evaluates Expression and discards the result.
type ExpressionStatement struct {
	base
	Expression Expression
}

func (*ExpressionStatement) stmt() {}

// EmptyStatement is a bare `;`.
type EmptyStatement struct{ base }

func (*EmptyStatement) stmt() {}

// VariableDeclarator pairs a binding pattern with its (optional) initializer.
type VariableDeclarator struct {
	base
	Target Pattern
	Init   Expression // nil if omitted (only legal for Var/Let)
}

// VariableDeclaration declares one or more bindings of a single kind
// (§3.4, §4.3 hoisting rules).
type VariableDeclaration struct {
	base
	Kind         BindingKind // BindVar, BindLet, or BindConst
	Declarations []VariableDeclarator
}

func (*VariableDeclaration) stmt() {}

// FunctionDeclaration installs a named function binding at the top of
// its enclosing scope (hoisted fully, per §4.3).
type FunctionDeclaration struct {
	base
	Function *FunctionExpression
}

func (*FunctionDeclaration) stmt() {}

// IfStatement is `if (Test) Consequent [else Alternate]`.
type IfStatement struct {
	base
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil if no else clause
}

func (*IfStatement) stmt() {}

// WhileStatement is `while (Test) Body`.
type WhileStatement struct {
	base
	Test Expression
	Body Statement
}

func (*WhileStatement) stmt() {}

// DoWhileStatement is `do Body while (Test);`.
type DoWhileStatement struct {
	base
	Body Statement
	Test Expression
}

func (*DoWhileStatement) stmt() {}

// ForStatement is the classic three-clause `for`; each clause is
// independently optional.
type ForStatement struct {
	base
	Init   Node // *VariableDeclaration or Expression, or nil
	Test   Expression
	Update Expression
	Body   Statement
}

func (*ForStatement) stmt() {}

// ForInStatement iterates the enumerable string keys of Right (§4.5,
// Open Question (a) for prototype-walk ordering).
type ForInStatement struct {
	base
	Left    Node // *VariableDeclaration (single declarator) or Pattern/Expression
	Right   Expression
	Body    Statement
	IsConst bool // true when Left declares `const`, for completeness of Kind tracking
}

func (*ForInStatement) stmt() {}

// ForOfStatement drives the iterator protocol over Right (§4.5, §4.8).
type ForOfStatement struct {
	base
	Left  Node // *VariableDeclaration (single declarator) or Pattern/Expression
	Right Expression
	Body  Statement
	Await bool // for-await-of; the core evaluates it synchronously per realm hook
}

func (*ForOfStatement) stmt() {}

// BreakStatement exits the nearest enclosing loop/switch, or the one
// carrying Label if present.
type BreakStatement struct {
	base
	Label string // empty if unlabeled
}

func (*BreakStatement) stmt() {}

// ContinueStatement restarts the nearest enclosing loop, or the one
// carrying Label if present.
type ContinueStatement struct {
	base
	Label string // empty if unlabeled
}

func (*ContinueStatement) stmt() {}

// ReturnStatement propagates a Return completion to the nearest
// function boundary.
type ReturnStatement struct {
	base
	Argument Expression // nil for bare `return;`
}

func (*ReturnStatement) stmt() {}

// ThrowStatement raises Argument as a Throw completion.
type ThrowStatement struct {
	base
	Argument Expression
}

func (*ThrowStatement) stmt() {}

// LabeledStatement attaches Label to Body so nested break/continue can
// target it by name.
type LabeledStatement struct {
	base
	Label string
	Body  Statement
}

func (*LabeledStatement) stmt() {}

// SwitchCase is one `case Test:`/`default:` clause of a SwitchStatement.
// Test is nil for the default clause.
type SwitchCase struct {
	Test       Expression
	Consequent []Statement
}

// SwitchStatement evaluates Discriminant once and tests Cases in source
// order with strict equality (§4.5 "switch").
type SwitchStatement struct {
	base
	Discriminant Expression
	Cases        []SwitchCase
}

func (*SwitchStatement) stmt() {}

// CatchClause binds a try block's thrown value to Param (optional in
// the "catch {}" form) and runs Body.
type CatchClause struct {
	Param Pattern // nil for a parameterless catch
	Body  *BlockStatement
}

// TryStatement runs Block, optionally dispatching a Throw completion to
// Handler, and always runs Finalizer last per the Completion-preservation
// rule of §4.4.
type TryStatement struct {
	base
	Block     *BlockStatement
	Handler   *CatchClause   // nil if no catch
	Finalizer *BlockStatement // nil if no finally
}

func (*TryStatement) stmt() {}
