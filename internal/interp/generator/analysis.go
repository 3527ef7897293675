// Package generator lowers a generator function's body into a closed
// state machine at function-definition time, then drives instances of
// that machine through next/return/throw (§4.7). It imports evaluator
// to run each state's non-yielding statement prefix with the ordinary
// tree-walking evaluator; evaluator never imports generator back,
// reaching it only through the GeneratorFactory seam in call.go.
package generator

import "github.com/cwbudde/go-ecma/pkg/ast"

// containsYield reports whether evaluating stmt could suspend the
// generator — the structural predicate that decides which statements
// the lowering must split across states (§4.7.2).
func containsYield(stmt ast.Statement) bool {
	switch n := stmt.(type) {
	case *ast.ExpressionStatement:
		return exprContainsYield(n.Expression)
	case *ast.BlockStatement:
		return anyContainsYield(n.Body)
	case *ast.VariableDeclaration:
		for _, d := range n.Declarations {
			if d.Init != nil && exprContainsYield(d.Init) {
				return true
			}
		}
		return false
	case *ast.IfStatement:
		return exprContainsYield(n.Test) || containsYield(n.Consequent) ||
			(n.Alternate != nil && containsYield(n.Alternate))
	case *ast.WhileStatement:
		return exprContainsYield(n.Test) || containsYield(n.Body)
	case *ast.DoWhileStatement:
		return exprContainsYield(n.Test) || containsYield(n.Body)
	case *ast.ForStatement:
		if decl, ok := n.Init.(*ast.VariableDeclaration); ok {
			for _, d := range decl.Declarations {
				if d.Init != nil && exprContainsYield(d.Init) {
					return true
				}
			}
		} else if expr, ok := n.Init.(ast.Expression); ok && expr != nil && exprContainsYield(expr) {
			return true
		}
		if n.Test != nil && exprContainsYield(n.Test) {
			return true
		}
		if n.Update != nil && exprContainsYield(n.Update) {
			return true
		}
		return containsYield(n.Body)
	case *ast.ForInStatement:
		return exprContainsYield(n.Right) || containsYield(n.Body)
	case *ast.ForOfStatement:
		return exprContainsYield(n.Right) || containsYield(n.Body)
	case *ast.ReturnStatement:
		return n.Argument != nil && exprContainsYield(n.Argument)
	case *ast.ThrowStatement:
		return exprContainsYield(n.Argument)
	case *ast.TryStatement:
		if anyContainsYield(n.Block.Body) {
			return true
		}
		if n.Handler != nil && anyContainsYield(n.Handler.Body.Body) {
			return true
		}
		if n.Finalizer != nil && anyContainsYield(n.Finalizer.Body) {
			return true
		}
		return false
	case *ast.SwitchStatement:
		if exprContainsYield(n.Discriminant) {
			return true
		}
		for _, c := range n.Cases {
			if c.Test != nil && exprContainsYield(c.Test) {
				return true
			}
			if anyContainsYield(c.Consequent) {
				return true
			}
		}
		return false
	case *ast.LabeledStatement:
		return containsYield(n.Body)
	default:
		return false
	}
}

func anyContainsYield(stmts []ast.Statement) bool {
	for _, s := range stmts {
		if containsYield(s) {
			return true
		}
	}
	return false
}

// exprContainsYield is the expression half of the predicate; it does
// not recurse into a nested (non-arrow or arrow) function body, since a
// `yield` there would belong to that function, not this generator.
func exprContainsYield(expr ast.Expression) bool {
	switch n := expr.(type) {
	case *ast.YieldExpression:
		return true
	case *ast.ConditionalExpression:
		return exprContainsYield(n.Test) || exprContainsYield(n.Consequent) || exprContainsYield(n.Alternate)
	case *ast.LogicalExpression:
		return exprContainsYield(n.Left) || exprContainsYield(n.Right)
	case *ast.BinaryExpression:
		return exprContainsYield(n.Left) || exprContainsYield(n.Right)
	case *ast.AssignmentExpression:
		if target, ok := n.Target.(ast.Expression); ok && exprContainsYield(target) {
			return true
		}
		return exprContainsYield(n.Value)
	case *ast.UnaryExpression:
		return exprContainsYield(n.Argument)
	case *ast.UpdateExpression:
		return exprContainsYield(n.Argument)
	case *ast.SequenceExpression:
		return anyExprContainsYield(n.Expressions)
	case *ast.CallExpression:
		if exprContainsYield(n.Callee) {
			return true
		}
		return anyExprContainsYield(n.Arguments)
	case *ast.NewExpression:
		if exprContainsYield(n.Callee) {
			return true
		}
		return anyExprContainsYield(n.Arguments)
	case *ast.MemberExpression:
		if exprContainsYield(n.Object) {
			return true
		}
		return n.Computed && exprContainsYield(n.Property)
	case *ast.SpreadElement:
		return exprContainsYield(n.Argument)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			if el != nil && exprContainsYield(el) {
				return true
			}
		}
		return false
	case *ast.ObjectLiteral:
		for _, p := range n.Properties {
			if p.Computed && p.Key != nil && exprContainsYield(p.Key) {
				return true
			}
			if p.Kind == ast.PropertyInit && p.Value != nil && exprContainsYield(p.Value) {
				return true
			}
		}
		return false
	case *ast.TemplateLiteral:
		return anyExprContainsYield(n.Expressions)
	default:
		return false
	}
}

func anyExprContainsYield(exprs []ast.Expression) bool {
	for _, e := range exprs {
		if e != nil && exprContainsYield(e) {
			return true
		}
	}
	return false
}

// analysis is the product of analyzing a generator body before
// transformation: every local name the runtime must materialize in the
// generator's activation and how many yield points exist (§4.7 "a set
// of local variable names... the number of yield points").
type analysis struct {
	localVars  []string
	yieldCount int
}

func analyzeGeneratorBody(body []ast.Statement, params []ast.Pattern) analysis {
	names := map[string]bool{}
	for _, p := range params {
		collectNames(p, names)
	}
	collectDeclaredNames(body, names)

	a := analysis{}
	for name := range names {
		a.localVars = append(a.localVars, name)
	}
	a.yieldCount = countYields(body)
	return a
}

// collectDeclaredNames walks every declaration reachable from stmts
// (var/let/const, function declarations by name) without crossing a
// nested function boundary — every name the generator's activation
// must hold a cell for, regardless of lexical nesting within the body.
func collectDeclaredNames(stmts []ast.Statement, out map[string]bool) {
	for _, s := range stmts {
		collectDeclaredNamesStmt(s, out)
	}
}

func collectDeclaredNamesStmt(s ast.Statement, out map[string]bool) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		for _, d := range n.Declarations {
			collectNames(d.Target, out)
		}
	case *ast.FunctionDeclaration:
		out[n.Function.Name] = true
	case *ast.BlockStatement:
		collectDeclaredNames(n.Body, out)
	case *ast.IfStatement:
		collectDeclaredNamesStmt(n.Consequent, out)
		if n.Alternate != nil {
			collectDeclaredNamesStmt(n.Alternate, out)
		}
	case *ast.WhileStatement:
		collectDeclaredNamesStmt(n.Body, out)
	case *ast.DoWhileStatement:
		collectDeclaredNamesStmt(n.Body, out)
	case *ast.ForStatement:
		if decl, ok := n.Init.(*ast.VariableDeclaration); ok {
			for _, d := range decl.Declarations {
				collectNames(d.Target, out)
			}
		}
		collectDeclaredNamesStmt(n.Body, out)
	case *ast.ForInStatement:
		if decl, ok := n.Left.(*ast.VariableDeclaration); ok {
			for _, d := range decl.Declarations {
				collectNames(d.Target, out)
			}
		}
		collectDeclaredNamesStmt(n.Body, out)
	case *ast.ForOfStatement:
		if decl, ok := n.Left.(*ast.VariableDeclaration); ok {
			for _, d := range decl.Declarations {
				collectNames(d.Target, out)
			}
		}
		collectDeclaredNamesStmt(n.Body, out)
	case *ast.TryStatement:
		collectDeclaredNames(n.Block.Body, out)
		if n.Handler != nil {
			if n.Handler.Param != nil {
				collectNames(n.Handler.Param, out)
			}
			collectDeclaredNames(n.Handler.Body.Body, out)
		}
		if n.Finalizer != nil {
			collectDeclaredNames(n.Finalizer.Body, out)
		}
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			collectDeclaredNames(c.Consequent, out)
		}
	case *ast.LabeledStatement:
		collectDeclaredNamesStmt(n.Body, out)
	}
}

func collectNames(p ast.Pattern, out map[string]bool) {
	switch n := p.(type) {
	case *ast.Identifier:
		out[n.Name] = true
	case *ast.ArrayPattern:
		for _, el := range n.Elements {
			if el != nil {
				collectNames(el, out)
			}
		}
		if n.Rest != nil {
			collectNames(n.Rest, out)
		}
	case *ast.ObjectPattern:
		for _, prop := range n.Properties {
			collectNames(prop.Value, out)
		}
		if n.Rest != nil {
			collectNames(n.Rest, out)
		}
	case *ast.DefaultPattern:
		collectNames(n.Target, out)
	case *ast.RestPattern:
		collectNames(n.Target, out)
	}
}

func countYields(stmts []ast.Statement) int {
	count := 0
	for _, s := range stmts {
		count += countYieldsStmt(s)
	}
	return count
}

func countYieldsStmt(s ast.Statement) int {
	// A precise count is only informational (§4.7); reusing the boolean
	// predicate per nested statement is sufficient fidelity without
	// duplicating a second full structural walk.
	if !containsYield(s) {
		return 0
	}
	switch n := s.(type) {
	case *ast.BlockStatement:
		return countYields(n.Body)
	case *ast.IfStatement:
		c := countYieldsStmt(n.Consequent)
		if n.Alternate != nil {
			c += countYieldsStmt(n.Alternate)
		}
		return c + countYieldsExpr(n.Test)
	case *ast.WhileStatement:
		return countYieldsExpr(n.Test) + countYieldsStmt(n.Body)
	case *ast.DoWhileStatement:
		return countYieldsExpr(n.Test) + countYieldsStmt(n.Body)
	case *ast.ForStatement:
		return countYieldsStmt(n.Body)
	case *ast.ForInStatement:
		return countYieldsStmt(n.Body)
	case *ast.ForOfStatement:
		return countYieldsStmt(n.Body)
	case *ast.TryStatement:
		c := countYields(n.Block.Body)
		if n.Handler != nil {
			c += countYields(n.Handler.Body.Body)
		}
		if n.Finalizer != nil {
			c += countYields(n.Finalizer.Body)
		}
		return c
	case *ast.SwitchStatement:
		c := 0
		for _, cs := range n.Cases {
			c += countYields(cs.Consequent)
		}
		return c
	case *ast.LabeledStatement:
		return countYieldsStmt(n.Body)
	case *ast.ExpressionStatement:
		return countYieldsExpr(n.Expression)
	case *ast.VariableDeclaration:
		c := 0
		for _, d := range n.Declarations {
			if d.Init != nil {
				c += countYieldsExpr(d.Init)
			}
		}
		return c
	case *ast.ReturnStatement:
		if n.Argument != nil {
			return countYieldsExpr(n.Argument)
		}
		return 0
	case *ast.ThrowStatement:
		return countYieldsExpr(n.Argument)
	default:
		return 0
	}
}

func countYieldsExpr(e ast.Expression) int {
	if e == nil {
		return 0
	}
	switch n := e.(type) {
	case *ast.YieldExpression:
		inner := 0
		if n.Argument != nil {
			inner = countYieldsExpr(n.Argument)
		}
		return 1 + inner
	case *ast.ConditionalExpression:
		return countYieldsExpr(n.Test) + countYieldsExpr(n.Consequent) + countYieldsExpr(n.Alternate)
	case *ast.LogicalExpression:
		return countYieldsExpr(n.Left) + countYieldsExpr(n.Right)
	case *ast.BinaryExpression:
		return countYieldsExpr(n.Left) + countYieldsExpr(n.Right)
	case *ast.AssignmentExpression:
		return countYieldsExpr(n.Value)
	case *ast.UnaryExpression:
		return countYieldsExpr(n.Argument)
	case *ast.SequenceExpression:
		c := 0
		for _, ex := range n.Expressions {
			c += countYieldsExpr(ex)
		}
		return c
	case *ast.CallExpression:
		c := countYieldsExpr(n.Callee)
		for _, a := range n.Arguments {
			c += countYieldsExpr(a)
		}
		return c
	case *ast.NewExpression:
		c := countYieldsExpr(n.Callee)
		for _, a := range n.Arguments {
			c += countYieldsExpr(a)
		}
		return c
	case *ast.ArrayLiteral:
		c := 0
		for _, el := range n.Elements {
			c += countYieldsExpr(el)
		}
		return c
	default:
		return 0
	}
}
