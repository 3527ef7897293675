package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/interp/runtime"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// EvalFunctionBody runs a function's body statements in ctx.Env (the
// call's activation environment), hoisting var/function declarations
// first per §4.3's "installed fully at the top of the scope" rule.
func EvalFunctionBody(ctx Context, body *ast.BlockStatement) runtime.Completion {
	if c := hoistFunctionScope(ctx, body.Body); c.IsAbrupt() {
		return c
	}
	return evalStatementList(ctx, body.Body)
}

// hoistFunctionScope declares every `var` name reachable from stmts
// (without crossing a nested function boundary, per collectVarNames)
// directly in ctx.Env, then performs the block-level hoisting pass.
func hoistFunctionScope(ctx Context, stmts []ast.Statement) runtime.Completion {
	varNames := map[string]bool{}
	collectVarNames(stmts, varNames)
	for name := range varNames {
		if !ctx.Env.HasOwnBinding(name) {
			ctx.Env.Declare(name, runtime.BindVar)
		}
	}
	return hoistBlockScope(ctx, stmts)
}

// hoistBlockScope declares stmts' directly-nested let/const bindings
// (uninitialized, entering the TDZ) and installs its function
// declarations fully (§4.3 "function declarations are installed fully
// at the top of the scope").
func hoistBlockScope(ctx Context, stmts []ast.Statement) runtime.Completion {
	for _, vd := range collectLexicalDeclarations(stmts) {
		for _, d := range vd.Declarations {
			names := map[string]bool{}
			collectPatternNames(d.Target, names)
			for name := range names {
				ctx.Env.Declare(name, vd.Kind)
			}
		}
	}
	for _, fd := range collectFunctionDeclarations(stmts) {
		fnVal, c := NewFunctionValue(ctx, fd.Function)
		if c.IsAbrupt() {
			return c
		}
		ctx.Env.DeclareInitialized(fd.Function.Name, runtime.BindFunction, fnVal)
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func evalStatementList(ctx Context, stmts []ast.Statement) runtime.Completion {
	result := runtime.NormalCompletion(runtime.Undefined)
	for _, s := range stmts {
		c := EvalStatement(ctx, s)
		if c.IsAbrupt() {
			return c
		}
		result = c
	}
	return result
}

// EvalBlockStatement runs n in a fresh child scope, hoisting its
// directly-nested lexical/function declarations first (§4.3, §4.5
// "Block").
func EvalBlockStatement(ctx Context, n *ast.BlockStatement) runtime.Completion {
	blockCtx := ctx.ChildScope()
	if c := hoistBlockScope(blockCtx, n.Body); c.IsAbrupt() {
		return c
	}
	return evalStatementList(blockCtx, n.Body)
}

// EvalStatement is the structural dispatch for every statement node
// (§4.5).
func EvalStatement(ctx Context, stmt ast.Statement) runtime.Completion {
	switch n := stmt.(type) {
	case *ast.BlockStatement:
		return EvalBlockStatement(ctx, n)
	case *ast.ExpressionStatement:
		v, c := EvalExpression(ctx, n.Expression)
		if c.IsAbrupt() {
			return c
		}
		return runtime.NormalCompletion(v)
	case *ast.EmptyStatement:
		return runtime.NormalCompletion(runtime.Undefined)
	case *ast.VariableDeclaration:
		return evalVariableDeclaration(ctx, n)
	case *ast.FunctionDeclaration:
		// Installed by hoisting at scope entry; nothing to do at the
		// statement position itself.
		return runtime.NormalCompletion(runtime.Undefined)
	case *ast.IfStatement:
		return evalIfStatement(ctx, n)
	case *ast.WhileStatement:
		return evalWhileStatement(ctx, n)
	case *ast.DoWhileStatement:
		return evalDoWhileStatement(ctx, n)
	case *ast.ForStatement:
		return evalForStatement(ctx, n)
	case *ast.ForInStatement:
		return evalForInStatement(ctx, n)
	case *ast.ForOfStatement:
		return evalForOfStatement(ctx, n)
	case *ast.BreakStatement:
		return runtime.BreakCompletion(n.Label)
	case *ast.ContinueStatement:
		return runtime.ContinueCompletion(n.Label)
	case *ast.ReturnStatement:
		if n.Argument == nil {
			return runtime.ReturnCompletion(runtime.Undefined)
		}
		v, c := EvalExpression(ctx, n.Argument)
		if c.IsAbrupt() {
			return c
		}
		return runtime.ReturnCompletion(v)
	case *ast.ThrowStatement:
		v, c := EvalExpression(ctx, n.Argument)
		if c.IsAbrupt() {
			return c
		}
		return runtime.ThrowCompletion(v)
	case *ast.LabeledStatement:
		return evalLabeledStatement(ctx, n)
	case *ast.SwitchStatement:
		return evalSwitchStatement(ctx, n)
	case *ast.TryStatement:
		return evalTryStatement(ctx, n)
	default:
		return ctx.Throw("SyntaxError", "unsupported statement node")
	}
}

func evalVariableDeclaration(ctx Context, n *ast.VariableDeclaration) runtime.Completion {
	for _, d := range n.Declarations {
		value := runtime.Undefined
		if d.Init != nil {
			v, c := EvalExpression(ctx, d.Init)
			if c.IsAbrupt() {
				return c
			}
			value = v
		}
		if n.Kind == runtime.BindVar {
			if d.Init != nil {
				if c := AssignPattern(ctx, d.Target, value); c.IsAbrupt() {
					return c
				}
			}
			continue
		}
		// Let/Const: the binding already exists (in the TDZ) from
		// hoisting; DeclarePattern re-installs it initialized, which
		// is exactly the TDZ-exit the declaration statement performs.
		if c := DeclarePattern(ctx, d.Target, n.Kind, value); c.IsAbrupt() {
			return c
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func evalIfStatement(ctx Context, n *ast.IfStatement) runtime.Completion {
	test, c := EvalExpression(ctx, n.Test)
	if c.IsAbrupt() {
		return c
	}
	if runtime.ToBoolean(test) {
		return EvalStatement(ctx, n.Consequent)
	}
	if n.Alternate != nil {
		return EvalStatement(ctx, n.Alternate)
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

// containsLabel reports whether an unlabeled break/continue (label=="")
// or one matching a name in labels should be caught by the construct
// that owns labels (§4.5 "break/continue... match the nearest unlabeled
// construct, or the one carrying the named label").
func containsLabel(labels []string, label string) bool {
	if label == "" {
		return true
	}
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// handleLoopCompletion interprets one loop-body iteration's completion:
// done reports whether the loop should stop; when propagate is true the
// caller must return c unchanged (an unmatched break/continue, a Return,
// or a Throw).
func handleLoopCompletion(c runtime.Completion, labels []string) (done bool, propagate bool) {
	switch c.Kind {
	case runtime.Normal:
		return false, false
	case runtime.Break:
		return true, !containsLabel(labels, c.Label)
	case runtime.Continue:
		if containsLabel(labels, c.Label) {
			return false, false
		}
		return true, true
	default: // Return, Throw
		return true, true
	}
}

func evalWhileStatement(ctx Context, n *ast.WhileStatement) runtime.Completion {
	labels := ctx.LabelSet
	loopCtx := ctx.ChildScope()
	for {
		test, c := EvalExpression(loopCtx, n.Test)
		if c.IsAbrupt() {
			return c
		}
		if !runtime.ToBoolean(test) {
			break
		}
		bodyC := EvalStatement(loopCtx, n.Body)
		done, propagate := handleLoopCompletion(bodyC, labels)
		if propagate {
			return bodyC
		}
		if done {
			break
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func evalDoWhileStatement(ctx Context, n *ast.DoWhileStatement) runtime.Completion {
	labels := ctx.LabelSet
	loopCtx := ctx.ChildScope()
	for {
		bodyC := EvalStatement(loopCtx, n.Body)
		done, propagate := handleLoopCompletion(bodyC, labels)
		if propagate {
			return bodyC
		}
		if done {
			break
		}
		test, c := EvalExpression(loopCtx, n.Test)
		if c.IsAbrupt() {
			return c
		}
		if !runtime.ToBoolean(test) {
			break
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func evalForStatement(ctx Context, n *ast.ForStatement) runtime.Completion {
	labels := ctx.LabelSet
	loopCtx := ctx.ChildScope()
	if n.Init != nil {
		switch init := n.Init.(type) {
		case *ast.VariableDeclaration:
			if c := EvalStatement(loopCtx, init); c.IsAbrupt() {
				return c
			}
		case ast.Expression:
			if _, c := EvalExpression(loopCtx, init); c.IsAbrupt() {
				return c
			}
		}
	}
	for {
		if n.Test != nil {
			test, c := EvalExpression(loopCtx, n.Test)
			if c.IsAbrupt() {
				return c
			}
			if !runtime.ToBoolean(test) {
				break
			}
		}
		bodyC := EvalStatement(loopCtx, n.Body)
		done, propagate := handleLoopCompletion(bodyC, labels)
		if propagate {
			return bodyC
		}
		if done {
			break
		}
		if n.Update != nil {
			if _, c := EvalExpression(loopCtx, n.Update); c.IsAbrupt() {
				return c
			}
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

// bindForTarget assigns/declares value into n.Left for one iteration of
// a for-in/for-of loop (§4.5 "for-in", "for-of").
func bindForTarget(ctx Context, left ast.Node, value runtime.Value) runtime.Completion {
	if vd, ok := left.(*ast.VariableDeclaration); ok {
		d := vd.Declarations[0]
		if vd.Kind == runtime.BindVar {
			return AssignPattern(ctx, d.Target, value)
		}
		return DeclarePattern(ctx, d.Target, vd.Kind, value)
	}
	return AssignPattern(ctx, left, value)
}

func evalForInStatement(ctx Context, n *ast.ForInStatement) runtime.Completion {
	labels := ctx.LabelSet
	rightVal, c := EvalExpression(ctx, n.Right)
	if c.IsAbrupt() {
		return c
	}
	if !rightVal.IsObject() {
		return runtime.NormalCompletion(runtime.Undefined)
	}
	keys := runtime.ForInKeys(ctx.Store, rightVal.AsObject())
	for _, k := range keys {
		iterCtx := ctx.ChildScope()
		if c := bindForTarget(iterCtx, n.Left, runtime.String(k)); c.IsAbrupt() {
			return c
		}
		bodyC := EvalStatement(iterCtx, n.Body)
		done, propagate := handleLoopCompletion(bodyC, labels)
		if propagate {
			return bodyC
		}
		if done {
			break
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func evalForOfStatement(ctx Context, n *ast.ForOfStatement) runtime.Completion {
	labels := ctx.LabelSet
	rightVal, c := EvalExpression(ctx, n.Right)
	if c.IsAbrupt() {
		return c
	}
	iterator, c := openIterator(ctx, rightVal)
	if c.IsAbrupt() {
		return c
	}
	for {
		value, done, c := iteratorStep(ctx, iterator)
		if c.IsAbrupt() {
			return c
		}
		if done {
			break
		}
		iterCtx := ctx.ChildScope()
		if c := bindForTarget(iterCtx, n.Left, value); c.IsAbrupt() {
			return IteratorClose(ctx, iterator, c)
		}
		bodyC := EvalStatement(iterCtx, n.Body)
		loopDone, propagate := handleLoopCompletion(bodyC, labels)
		if propagate {
			return IteratorClose(ctx, iterator, bodyC)
		}
		if loopDone {
			return IteratorClose(ctx, iterator, runtime.NormalCompletion(runtime.Undefined))
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func evalLabeledStatement(ctx Context, n *ast.LabeledStatement) runtime.Completion {
	labelCtx := ctx
	labelCtx.LabelSet = append(append([]string{}, ctx.LabelSet...), n.Label)
	c := EvalStatement(labelCtx, n.Body)
	if c.Kind == runtime.Break && c.Label == n.Label {
		return runtime.NormalCompletion(runtime.Undefined)
	}
	return c
}

func evalSwitchStatement(ctx Context, n *ast.SwitchStatement) runtime.Completion {
	disc, c := EvalExpression(ctx, n.Discriminant)
	if c.IsAbrupt() {
		return c
	}
	switchCtx := ctx.ChildScope()
	var allStmts []ast.Statement
	for _, cs := range n.Cases {
		allStmts = append(allStmts, cs.Consequent...)
	}
	if c := hoistBlockScope(switchCtx, allStmts); c.IsAbrupt() {
		return c
	}

	matched := -1
	defaultIdx := -1
	for i, cs := range n.Cases {
		if cs.Test == nil {
			defaultIdx = i
			continue
		}
		testVal, c := EvalExpression(switchCtx, cs.Test)
		if c.IsAbrupt() {
			return c
		}
		if runtime.StrictEquals(disc, testVal) {
			matched = i
			break
		}
	}
	if matched == -1 {
		matched = defaultIdx
	}
	if matched == -1 {
		return runtime.NormalCompletion(runtime.Undefined)
	}

	for i := matched; i < len(n.Cases); i++ {
		for _, s := range n.Cases[i].Consequent {
			bodyC := EvalStatement(switchCtx, s)
			if bodyC.Kind == runtime.Break && containsLabel(ctx.LabelSet, bodyC.Label) {
				return runtime.NormalCompletion(runtime.Undefined)
			}
			if bodyC.IsAbrupt() {
				return bodyC
			}
		}
	}
	return runtime.NormalCompletion(runtime.Undefined)
}

func evalTryStatement(ctx Context, n *ast.TryStatement) runtime.Completion {
	result := EvalBlockStatement(ctx, n.Block)

	if result.Kind == runtime.Throw && n.Handler != nil {
		catchCtx := ctx.ChildScope()
		if n.Handler.Param != nil {
			if c := DeclarePattern(catchCtx, n.Handler.Param, runtime.BindLet, result.Value); c.IsAbrupt() {
				result = c
			} else {
				result = EvalBlockStatement(catchCtx, n.Handler.Body)
			}
		} else {
			result = EvalBlockStatement(catchCtx, n.Handler.Body)
		}
	}

	if n.Finalizer != nil {
		finallyResult := EvalBlockStatement(ctx, n.Finalizer)
		if finallyResult.IsAbrupt() {
			// §4.4: an abrupt finally completion supersedes whatever
			// try/catch produced.
			return finallyResult
		}
	}
	return result
}
