package evaluator

import "github.com/cwbudde/go-ecma/pkg/ast"

// collectVarNames walks stmts collecting every name a `var` declaration
// or pattern introduces, recursing into nested statements but never
// into a nested function/arrow body (§4.3 "Var declarations hoist to
// the nearest function/global environment").
func collectVarNames(stmts []ast.Statement, out map[string]bool) {
	for _, s := range stmts {
		collectVarNamesStmt(s, out)
	}
}

func collectVarNamesStmt(s ast.Statement, out map[string]bool) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		if n.Kind == ast.BindVar {
			for _, d := range n.Declarations {
				collectPatternNames(d.Target, out)
			}
		}
	case *ast.BlockStatement:
		collectVarNames(n.Body, out)
	case *ast.IfStatement:
		collectVarNamesStmt(n.Consequent, out)
		if n.Alternate != nil {
			collectVarNamesStmt(n.Alternate, out)
		}
	case *ast.WhileStatement:
		collectVarNamesStmt(n.Body, out)
	case *ast.DoWhileStatement:
		collectVarNamesStmt(n.Body, out)
	case *ast.ForStatement:
		if decl, ok := n.Init.(*ast.VariableDeclaration); ok && decl.Kind == ast.BindVar {
			for _, d := range decl.Declarations {
				collectPatternNames(d.Target, out)
			}
		}
		collectVarNamesStmt(n.Body, out)
	case *ast.ForInStatement:
		if decl, ok := n.Left.(*ast.VariableDeclaration); ok && decl.Kind == ast.BindVar {
			for _, d := range decl.Declarations {
				collectPatternNames(d.Target, out)
			}
		}
		collectVarNamesStmt(n.Body, out)
	case *ast.ForOfStatement:
		if decl, ok := n.Left.(*ast.VariableDeclaration); ok && decl.Kind == ast.BindVar {
			for _, d := range decl.Declarations {
				collectPatternNames(d.Target, out)
			}
		}
		collectVarNamesStmt(n.Body, out)
	case *ast.TryStatement:
		collectVarNames(n.Block.Body, out)
		if n.Handler != nil {
			collectVarNames(n.Handler.Body.Body, out)
		}
		if n.Finalizer != nil {
			collectVarNames(n.Finalizer.Body, out)
		}
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			collectVarNames(c.Consequent, out)
		}
	case *ast.LabeledStatement:
		collectVarNamesStmt(n.Body, out)
	}
}

// collectPatternNames collects every binding name introduced by a
// (possibly nested/destructuring) pattern.
func collectPatternNames(p ast.Pattern, out map[string]bool) {
	switch n := p.(type) {
	case *ast.Identifier:
		out[n.Name] = true
	case *ast.ArrayPattern:
		for _, el := range n.Elements {
			if el != nil {
				collectPatternNames(el, out)
			}
		}
		if n.Rest != nil {
			collectPatternNames(n.Rest, out)
		}
	case *ast.ObjectPattern:
		for _, prop := range n.Properties {
			collectPatternNames(prop.Value, out)
		}
		if n.Rest != nil {
			collectPatternNames(n.Rest, out)
		}
	case *ast.DefaultPattern:
		collectPatternNames(n.Target, out)
	case *ast.RestPattern:
		collectPatternNames(n.Target, out)
	}
}

// collectFunctionDeclarations returns the FunctionDeclaration nodes
// directly in stmts (not nested blocks) — these are installed fully at
// scope entry (§4.3 "function declarations are installed fully at the
// top of the scope").
func collectFunctionDeclarations(stmts []ast.Statement) []*ast.FunctionDeclaration {
	var out []*ast.FunctionDeclaration
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunctionDeclaration); ok {
			out = append(out, fd)
		}
	}
	return out
}

// collectLexicalDeclarations returns the let/const VariableDeclarators
// directly in stmts, paired with their declaring kind, for the
// uninitialized-at-scope-entry TDZ pass (§3.4, §4.3).
func collectLexicalDeclarations(stmts []ast.Statement) []*ast.VariableDeclaration {
	var out []*ast.VariableDeclaration
	for _, s := range stmts {
		if vd, ok := s.(*ast.VariableDeclaration); ok && vd.Kind != ast.BindVar {
			out = append(out, vd)
		}
	}
	return out
}
