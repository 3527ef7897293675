package generator

import (
	"fmt"

	"github.com/cwbudde/go-ecma/pkg/ast"
)

// noState marks an "allocate one if the caller didn't supply one"
// after-state parameter, mirroring usize::MAX in the reference lowering.
const noState = -1

// transformContext accumulates state while lowering one generator body
// into a Machine (§4.7.2), a near-direct structural port of the
// reference TransformContext.
type transformContext struct {
	states       []state
	currentID    int
	currentStmts []ast.Statement

	yieldCounter int
	tempVars     []string

	breakTargets    map[string]int
	continueTargets map[string]int

	// pendingLabel carries a label from transformLabeledStatement down
	// into an immediately-nested loop transform, so `continue label`
	// resolves to the loop's continue point rather than only `break
	// label` working (the reference lowering never wires continue
	// through labels at all; a labeled loop is common enough in
	// practice to be worth the extra bookkeeping here).
	pendingLabel string
}

func (c *transformContext) newState() int {
	id := len(c.states)
	c.states = append(c.states, state{ID: id, Terminator: termCompleted{}})
	return id
}

func (c *transformContext) newTemp(prefix string) string {
	name := fmt.Sprintf("$%s_%d", prefix, c.yieldCounter)
	c.tempVars = append(c.tempVars, name)
	return name
}

func (c *transformContext) emit(s ast.Statement) {
	c.currentStmts = append(c.currentStmts, s)
}

// finalize fixes the current state's statement prefix and terminator,
// snapshotting the break/continue target table in effect (§4.7.1).
func (c *transformContext) finalize(t terminator) {
	if c.currentID >= 0 && c.currentID < len(c.states) {
		c.states[c.currentID].Statements = c.currentStmts
		c.states[c.currentID].Terminator = t
		c.states[c.currentID].BreakTargets = cloneTargets(c.breakTargets)
		c.states[c.currentID].ContinueTargets = cloneTargets(c.continueTargets)
	}
	c.currentStmts = nil
}

func cloneTargets(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// transformGenerator lowers a generator function's body into a closed
// state machine (§4.7). Bodies without a yield point compile to a
// single state holding the original statements unchanged (§4.7.2,
// testable property 1).
func transformGenerator(body []ast.Statement, params []ast.Pattern) *Machine {
	a := analyzeGeneratorBody(body, params)

	if a.yieldCount == 0 {
		return &Machine{
			states:    []state{{ID: 0, Statements: body, Terminator: termCompleted{}}},
			localVars: a.localVars,
			params:    params,
			numYields: 0,
		}
	}

	ctx := &transformContext{
		breakTargets:    map[string]int{},
		continueTargets: map[string]int{},
	}

	start := ctx.newState()
	ctx.currentID = start
	end := ctx.newState()

	transformStatements(body, ctx, end)

	switch ctx.states[ctx.currentID].Terminator.(type) {
	case termReturn, termThrow:
		// already terminal, leave as-is
	default:
		ctx.finalize(termGoto{State: end})
	}
	ctx.states[end].Terminator = termCompleted{}

	return &Machine{
		states:    ctx.states,
		localVars: a.localVars,
		params:    params,
		numYields: a.yieldCount,
		tempVars:  ctx.tempVars,
	}
}

// transformStatements lowers a statement list in order, splitting off
// any statement that itself crosses a yield; everything else is
// appended to the current state's statement prefix untouched.
func transformStatements(stmts []ast.Statement, ctx *transformContext, afterState int) {
	for i, s := range stmts {
		next := noState
		if i == len(stmts)-1 {
			next = afterState
		}
		if containsYield(s) {
			transformYieldingStatement(s, ctx, next)
		} else {
			ctx.emit(s)
		}
	}
}

func transformYieldingStatement(s ast.Statement, ctx *transformContext, afterState int) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		transformYieldingExpression(n.Expression, ctx, nil)

	case *ast.BlockStatement:
		transformStatements(n.Body, ctx, afterState)

	case *ast.VariableDeclaration:
		transformVariableDeclaration(n, ctx)

	case *ast.IfStatement:
		transformIfStatement(n, ctx, afterState)

	case *ast.WhileStatement:
		transformWhileStatement(n, ctx, afterState)

	case *ast.DoWhileStatement:
		transformDoWhileStatement(n, ctx, afterState)

	case *ast.ForStatement:
		transformForStatement(n, ctx, afterState)

	case *ast.ForInStatement:
		// For-in bodies that cross a yield are emitted intact and
		// evaluated step-by-step by the driver's ordinary statement
		// execution (§4.7.2, last paragraph; §9 flags the full
		// iterator-spanning lowering as optional).
		ctx.emit(n)

	case *ast.ForOfStatement:
		ctx.emit(n)

	case *ast.ReturnStatement:
		if n.Argument != nil && exprContainsYield(n.Argument) {
			tmp := ctx.newTemp("return")
			transformYieldingExpression(n.Argument, ctx, &sentBinding{kind: sentVariable, name: tmp})
			ctx.finalize(termReturn{Value: &ast.Identifier{Name: tmp}})
		} else {
			ctx.finalize(termReturn{Value: n.Argument})
		}

	case *ast.ThrowStatement:
		if exprContainsYield(n.Argument) {
			tmp := ctx.newTemp("throw")
			transformYieldingExpression(n.Argument, ctx, &sentBinding{kind: sentVariable, name: tmp})
			ctx.finalize(termThrow{Value: &ast.Identifier{Name: tmp}})
		} else {
			ctx.finalize(termThrow{Value: n.Argument})
		}

	case *ast.TryStatement:
		transformTryStatement(n, ctx, afterState)

	case *ast.SwitchStatement:
		transformSwitchStatement(n, ctx, afterState)

	case *ast.LabeledStatement:
		transformLabeledStatement(n, ctx, afterState)

	case *ast.BreakStatement:
		if target, ok := ctx.breakTargets[n.Label]; ok {
			ctx.finalize(termGoto{State: target})
		} else {
			ctx.emit(n)
		}

	case *ast.ContinueStatement:
		if target, ok := ctx.continueTargets[n.Label]; ok {
			ctx.finalize(termGoto{State: target})
		} else {
			ctx.emit(n)
		}

	default:
		ctx.emit(s)
	}
}

// transformYieldingExpression lowers an expression that crosses a
// yield, splitting yield-bearing sub-expressions into temporaries so
// evaluation order stays strictly left-to-right (§4.7.2 step 1) and
// carving a new state at every `yield` itself (step 2). binding says
// how the caller wants the expression's final value delivered; nil
// means the value is discarded (bare expression statement).
func transformYieldingExpression(expr ast.Expression, ctx *transformContext, binding *sentBinding) {
	switch n := expr.(type) {
	case *ast.YieldExpression:
		var value ast.Expression
		if n.Argument != nil {
			if exprContainsYield(n.Argument) {
				tmp := ctx.newTemp("yield_val")
				transformYieldingExpression(n.Argument, ctx, &sentBinding{kind: sentVariable, name: tmp})
				value = &ast.Identifier{Name: tmp}
			} else {
				value = n.Argument
			}
		}

		resume := ctx.newState()
		ctx.finalize(termYield{Value: value, IsDelegate: n.IsDelegate, Resume: resume, SentBinding: binding})
		ctx.currentID = resume
		ctx.yieldCounter++

	case *ast.ConditionalExpression:
		transformConditional(n, ctx, binding)

	case *ast.LogicalExpression:
		transformLogical(n, ctx, binding)

	case *ast.BinaryExpression:
		transformBinary(n, ctx, binding)

	case *ast.CallExpression:
		transformCall(n.Callee, n.Arguments, ctx, binding)

	case *ast.NewExpression:
		callee := n.Callee
		if exprContainsYield(callee) {
			tmp := ctx.newTemp("new_callee")
			transformYieldingExpression(callee, ctx, &sentBinding{kind: sentVariable, name: tmp})
			callee = &ast.Identifier{Name: tmp}
		}
		args := materializeArgs(n.Arguments, ctx, "new_arg")
		emitExpressionWithBinding(&ast.NewExpression{Callee: callee, Arguments: args}, binding, ctx)

	case *ast.AssignmentExpression:
		target := n.Target
		if targetExpr, ok := n.Target.(ast.Expression); ok && exprContainsYield(targetExpr) {
			if member, ok := targetExpr.(*ast.MemberExpression); ok {
				obj := member.Object
				if exprContainsYield(obj) {
					tmp := ctx.newTemp("assign_obj")
					transformYieldingExpression(obj, ctx, &sentBinding{kind: sentVariable, name: tmp})
					obj = &ast.Identifier{Name: tmp}
				}
				key := member.Property
				if member.Computed && exprContainsYield(key) {
					tmp := ctx.newTemp("assign_key")
					transformYieldingExpression(key, ctx, &sentBinding{kind: sentVariable, name: tmp})
					key = &ast.Identifier{Name: tmp}
				}
				target = &ast.MemberExpression{Object: obj, Property: key, Computed: member.Computed, Optional: member.Optional}
			}
		}
		value := n.Value
		if exprContainsYield(value) {
			tmp := ctx.newTemp("assign")
			transformYieldingExpression(value, ctx, &sentBinding{kind: sentVariable, name: tmp})
			value = &ast.Identifier{Name: tmp}
		}
		emitExpressionWithBinding(&ast.AssignmentExpression{
			Operator: n.Operator,
			Target:   target,
			Value:    value,
		}, binding, ctx)

	case *ast.SequenceExpression:
		for i, e := range n.Expressions {
			last := i == len(n.Expressions)-1
			switch {
			case exprContainsYield(e):
				var b *sentBinding
				if last {
					b = binding
				}
				transformYieldingExpression(e, ctx, b)
			case last:
				emitExpressionWithBinding(e, binding, ctx)
			default:
				ctx.emit(&ast.ExpressionStatement{Expression: e})
			}
		}

	case *ast.ArrayLiteral:
		elems := make([]ast.Expression, len(n.Elements))
		for i, e := range n.Elements {
			if e == nil {
				continue
			}
			if exprContainsYield(e) {
				tmp := ctx.newTemp(fmt.Sprintf("arr_elem_%d", i))
				transformYieldingExpression(e, ctx, &sentBinding{kind: sentVariable, name: tmp})
				elems[i] = &ast.Identifier{Name: tmp}
			} else {
				elems[i] = e
			}
		}
		emitExpressionWithBinding(&ast.ArrayLiteral{Elements: elems}, binding, ctx)

	case *ast.ObjectLiteral:
		props := make([]ast.ObjectLiteralProperty, len(n.Properties))
		for i, p := range n.Properties {
			key := p.Key
			if p.Computed && p.Key != nil && exprContainsYield(p.Key) {
				tmp := ctx.newTemp(fmt.Sprintf("obj_key_%d", i))
				transformYieldingExpression(p.Key, ctx, &sentBinding{kind: sentVariable, name: tmp})
				key = &ast.Identifier{Name: tmp}
			}
			value := p.Value
			if p.Value != nil && exprContainsYield(p.Value) {
				tmp := ctx.newTemp(fmt.Sprintf("obj_val_%d", i))
				transformYieldingExpression(p.Value, ctx, &sentBinding{kind: sentVariable, name: tmp})
				value = &ast.Identifier{Name: tmp}
			}
			props[i] = ast.ObjectLiteralProperty{Kind: p.Kind, Key: key, Computed: p.Computed, Value: value}
		}
		emitExpressionWithBinding(&ast.ObjectLiteral{Properties: props}, binding, ctx)

	case *ast.SpreadElement:
		if exprContainsYield(n.Argument) {
			tmp := ctx.newTemp("spread")
			transformYieldingExpression(n.Argument, ctx, &sentBinding{kind: sentVariable, name: tmp})
			emitExpressionWithBinding(&ast.SpreadElement{Argument: &ast.Identifier{Name: tmp}}, binding, ctx)
		} else {
			emitExpressionWithBinding(n, binding, ctx)
		}

	case *ast.UnaryExpression:
		if exprContainsYield(n.Argument) {
			tmp := ctx.newTemp("unary")
			transformYieldingExpression(n.Argument, ctx, &sentBinding{kind: sentVariable, name: tmp})
			emitExpressionWithBinding(&ast.UnaryExpression{Operator: n.Operator, Argument: &ast.Identifier{Name: tmp}}, binding, ctx)
		} else {
			emitExpressionWithBinding(n, binding, ctx)
		}

	case *ast.TemplateLiteral:
		exprs := make([]ast.Expression, len(n.Expressions))
		for i, e := range n.Expressions {
			if exprContainsYield(e) {
				tmp := ctx.newTemp(fmt.Sprintf("tmpl_%d", i))
				transformYieldingExpression(e, ctx, &sentBinding{kind: sentVariable, name: tmp})
				exprs[i] = &ast.Identifier{Name: tmp}
			} else {
				exprs[i] = e
			}
		}
		emitExpressionWithBinding(&ast.TemplateLiteral{Quasis: n.Quasis, Expressions: exprs}, binding, ctx)

	default:
		emitExpressionWithBinding(expr, binding, ctx)
	}
}

func materializeArgs(args []ast.Expression, ctx *transformContext, prefix string) []ast.Expression {
	out := make([]ast.Expression, len(args))
	for i, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok && exprContainsYield(spread.Argument) {
			tmp := ctx.newTemp(fmt.Sprintf("%s_%d", prefix, i))
			transformYieldingExpression(spread.Argument, ctx, &sentBinding{kind: sentVariable, name: tmp})
			out[i] = &ast.SpreadElement{Argument: &ast.Identifier{Name: tmp}}
		} else if exprContainsYield(a) {
			tmp := ctx.newTemp(fmt.Sprintf("%s_%d", prefix, i))
			transformYieldingExpression(a, ctx, &sentBinding{kind: sentVariable, name: tmp})
			out[i] = &ast.Identifier{Name: tmp}
		} else {
			out[i] = a
		}
	}
	return out
}

func transformCall(callee ast.Expression, args []ast.Expression, ctx *transformContext, binding *sentBinding) {
	newCallee := callee
	if exprContainsYield(callee) {
		tmp := ctx.newTemp("call_callee")
		transformYieldingExpression(callee, ctx, &sentBinding{kind: sentVariable, name: tmp})
		newCallee = &ast.Identifier{Name: tmp}
	}
	newArgs := materializeArgs(args, ctx, "call_arg")
	emitExpressionWithBinding(&ast.CallExpression{Callee: newCallee, Arguments: newArgs}, binding, ctx)
}

func transformConditional(n *ast.ConditionalExpression, ctx *transformContext, binding *sentBinding) {
	test := n.Test
	if exprContainsYield(test) {
		tmp := ctx.newTemp("cond_test")
		transformYieldingExpression(test, ctx, &sentBinding{kind: sentVariable, name: tmp})
		test = &ast.Identifier{Name: tmp}
	} else if !exprContainsYield(n.Consequent) && !exprContainsYield(n.Alternate) {
		return
	}

	after := ctx.newState()
	trueState := ctx.newState()
	falseState := ctx.newState()

	ctx.finalize(termConditionalGoto{Cond: test, TrueState: trueState, FalseState: falseState})

	ctx.currentID = trueState
	if exprContainsYield(n.Consequent) {
		transformYieldingExpression(n.Consequent, ctx, binding)
	} else {
		emitExpressionWithBinding(n.Consequent, binding, ctx)
	}
	ctx.finalize(termGoto{State: after})

	ctx.currentID = falseState
	if exprContainsYield(n.Alternate) {
		transformYieldingExpression(n.Alternate, ctx, binding)
	} else {
		emitExpressionWithBinding(n.Alternate, binding, ctx)
	}
	ctx.finalize(termGoto{State: after})

	ctx.currentID = after
}

func transformLogical(n *ast.LogicalExpression, ctx *transformContext, binding *sentBinding) {
	shortCircuitCond := func(v ast.Expression) ast.Expression {
		switch n.Operator {
		case "&&":
			return v
		case "||":
			return &ast.UnaryExpression{Operator: ast.UnaryNot, Argument: v}
		default: // "??"
			return &ast.BinaryExpression{Operator: "!==", Left: v, Right: &ast.Literal{Kind: ast.NullLiteral}}
		}
	}

	if exprContainsYield(n.Left) {
		tmp := ctx.newTemp("logical")
		transformYieldingExpression(n.Left, ctx, &sentBinding{kind: sentVariable, name: tmp})
		leftRef := &ast.Identifier{Name: tmp}

		if !exprContainsYield(n.Right) {
			emitExpressionWithBinding(&ast.LogicalExpression{Operator: n.Operator, Left: leftRef, Right: n.Right}, binding, ctx)
			return
		}

		after := ctx.newState()
		evalRight := ctx.newState()
		ctx.finalize(termConditionalGoto{Cond: shortCircuitCond(leftRef), TrueState: evalRight, FalseState: after})

		ctx.currentID = evalRight
		transformYieldingExpression(n.Right, ctx, binding)
		ctx.finalize(termGoto{State: after})
		ctx.currentID = after
		return
	}

	if !exprContainsYield(n.Right) {
		return
	}

	after := ctx.newState()
	evalRight := ctx.newState()
	ctx.finalize(termConditionalGoto{Cond: shortCircuitCond(n.Left), TrueState: evalRight, FalseState: after})

	emitExpressionWithBinding(n.Left, binding, ctx)

	ctx.currentID = evalRight
	transformYieldingExpression(n.Right, ctx, binding)
	ctx.finalize(termGoto{State: after})
	ctx.currentID = after
}

func transformBinary(n *ast.BinaryExpression, ctx *transformContext, binding *sentBinding) {
	left := n.Left
	if exprContainsYield(left) {
		tmp := ctx.newTemp("binary_left")
		transformYieldingExpression(left, ctx, &sentBinding{kind: sentVariable, name: tmp})
		left = &ast.Identifier{Name: tmp}
	}
	right := n.Right
	if exprContainsYield(right) {
		tmp := ctx.newTemp("binary_right")
		transformYieldingExpression(right, ctx, &sentBinding{kind: sentVariable, name: tmp})
		right = &ast.Identifier{Name: tmp}
	}
	emitExpressionWithBinding(&ast.BinaryExpression{Operator: n.Operator, Left: left, Right: right}, binding, ctx)
}

// emitExpressionWithBinding appends expr to the current state as a
// plain statement, wired to deliver its value per binding (§4.7.1
// "sent_binding"): assign to a variable, destructure through a
// pattern, or discard.
func emitExpressionWithBinding(expr ast.Expression, binding *sentBinding, ctx *transformContext) {
	if binding == nil {
		ctx.emit(&ast.ExpressionStatement{Expression: expr})
		return
	}
	switch binding.kind {
	case sentVariable:
		ctx.emit(&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
			Operator: "=",
			Target:   &ast.Identifier{Name: binding.name},
			Value:    expr,
		}})
	case sentPattern:
		ctx.emit(&ast.VariableDeclaration{
			Kind: ast.BindLet,
			Declarations: []ast.VariableDeclarator{
				{Target: binding.pat, Init: expr},
			},
		})
	default: // sentDiscard
		ctx.emit(&ast.ExpressionStatement{Expression: expr})
	}
}

func transformVariableDeclaration(decl *ast.VariableDeclaration, ctx *transformContext) {
	for _, d := range decl.Declarations {
		if d.Init != nil && exprContainsYield(d.Init) {
			binding := bindingFor(d.Target)
			transformYieldingExpression(d.Init, ctx, binding)
			continue
		}
		ctx.emit(&ast.VariableDeclaration{Kind: decl.Kind, Declarations: []ast.VariableDeclarator{d}})
	}
}

func bindingFor(p ast.Pattern) *sentBinding {
	if id, ok := p.(*ast.Identifier); ok {
		return &sentBinding{kind: sentVariable, name: id.Name}
	}
	return &sentBinding{kind: sentPattern, pat: p}
}

func transformIfStatement(n *ast.IfStatement, ctx *transformContext, afterState int) {
	afterIf := afterState
	if afterIf == noState {
		afterIf = ctx.newState()
	}

	test := n.Test
	if exprContainsYield(test) {
		tmp := ctx.newTemp("if_test")
		transformYieldingExpression(test, ctx, &sentBinding{kind: sentVariable, name: tmp})
		test = &ast.Identifier{Name: tmp}
	}

	trueState := ctx.newState()
	falseState := afterIf
	if n.Alternate != nil {
		falseState = ctx.newState()
	}

	ctx.finalize(termConditionalGoto{Cond: test, TrueState: trueState, FalseState: falseState})

	ctx.currentID = trueState
	if containsYield(n.Consequent) {
		transformYieldingStatement(n.Consequent, ctx, afterIf)
	} else {
		ctx.emit(n.Consequent)
	}
	ctx.finalize(termGoto{State: afterIf})

	if n.Alternate != nil {
		ctx.currentID = falseState
		if containsYield(n.Alternate) {
			transformYieldingStatement(n.Alternate, ctx, afterIf)
		} else {
			ctx.emit(n.Alternate)
		}
		ctx.finalize(termGoto{State: afterIf})
	}

	ctx.currentID = afterIf
}

// takeLabel consumes ctx.pendingLabel, returning "" if none is active.
func takeLabel(ctx *transformContext) string {
	label := ctx.pendingLabel
	ctx.pendingLabel = ""
	return label
}

func transformWhileStatement(n *ast.WhileStatement, ctx *transformContext, afterState int) {
	label := takeLabel(ctx)
	afterLoop := afterState
	if afterLoop == noState {
		afterLoop = ctx.newState()
	}
	testState := ctx.newState()
	bodyState := ctx.newState()

	ctx.finalize(termGoto{State: testState})

	setLoopTargets(ctx, label, afterLoop, testState)

	ctx.currentID = testState
	test := n.Test
	if exprContainsYield(test) {
		tmp := ctx.newTemp("while_test")
		transformYieldingExpression(test, ctx, &sentBinding{kind: sentVariable, name: tmp})
		test = &ast.Identifier{Name: tmp}
	}
	ctx.finalize(termConditionalGoto{Cond: test, TrueState: bodyState, FalseState: afterLoop})

	ctx.currentID = bodyState
	if containsYield(n.Body) {
		transformYieldingStatement(n.Body, ctx, testState)
	} else {
		ctx.emit(n.Body)
	}
	ctx.finalize(termGoto{State: testState})

	clearLoopTargets(ctx, label)
	ctx.currentID = afterLoop
}

func transformDoWhileStatement(n *ast.DoWhileStatement, ctx *transformContext, afterState int) {
	label := takeLabel(ctx)
	afterLoop := afterState
	if afterLoop == noState {
		afterLoop = ctx.newState()
	}
	bodyState := ctx.newState()
	testState := ctx.newState()

	ctx.finalize(termGoto{State: bodyState})

	setLoopTargets(ctx, label, afterLoop, testState)

	ctx.currentID = bodyState
	if containsYield(n.Body) {
		transformYieldingStatement(n.Body, ctx, testState)
	} else {
		ctx.emit(n.Body)
	}
	ctx.finalize(termGoto{State: testState})

	ctx.currentID = testState
	test := n.Test
	if exprContainsYield(test) {
		tmp := ctx.newTemp("dowhile_test")
		transformYieldingExpression(test, ctx, &sentBinding{kind: sentVariable, name: tmp})
		test = &ast.Identifier{Name: tmp}
	}
	ctx.finalize(termConditionalGoto{Cond: test, TrueState: bodyState, FalseState: afterLoop})

	clearLoopTargets(ctx, label)
	ctx.currentID = afterLoop
}

func transformForStatement(n *ast.ForStatement, ctx *transformContext, afterState int) {
	label := takeLabel(ctx)
	afterLoop := afterState
	if afterLoop == noState {
		afterLoop = ctx.newState()
	}

	switch init := n.Init.(type) {
	case *ast.VariableDeclaration:
		hasYield := false
		for _, d := range init.Declarations {
			if d.Init != nil && exprContainsYield(d.Init) {
				hasYield = true
			}
		}
		if hasYield {
			transformVariableDeclaration(init, ctx)
		} else if init != nil {
			ctx.emit(init)
		}
	case ast.Expression:
		if init != nil {
			if exprContainsYield(init) {
				transformYieldingExpression(init, ctx, nil)
			} else {
				ctx.emit(&ast.ExpressionStatement{Expression: init})
			}
		}
	}

	testState := ctx.newState()
	bodyState := ctx.newState()
	updateState := ctx.newState()

	ctx.finalize(termGoto{State: testState})

	setLoopTargets(ctx, label, afterLoop, updateState)

	ctx.currentID = testState
	if n.Test != nil {
		test := n.Test
		if exprContainsYield(test) {
			tmp := ctx.newTemp("for_test")
			transformYieldingExpression(test, ctx, &sentBinding{kind: sentVariable, name: tmp})
			test = &ast.Identifier{Name: tmp}
		}
		ctx.finalize(termConditionalGoto{Cond: test, TrueState: bodyState, FalseState: afterLoop})
	} else {
		ctx.finalize(termGoto{State: bodyState})
	}

	ctx.currentID = bodyState
	if containsYield(n.Body) {
		transformYieldingStatement(n.Body, ctx, updateState)
	} else {
		ctx.emit(n.Body)
	}
	ctx.finalize(termGoto{State: updateState})

	ctx.currentID = updateState
	if n.Update != nil {
		if exprContainsYield(n.Update) {
			transformYieldingExpression(n.Update, ctx, nil)
		} else {
			ctx.emit(&ast.ExpressionStatement{Expression: n.Update})
		}
	}
	ctx.finalize(termGoto{State: testState})

	clearLoopTargets(ctx, label)
	ctx.currentID = afterLoop
}

func setLoopTargets(ctx *transformContext, label string, breakState, continueState int) {
	ctx.breakTargets[""] = breakState
	ctx.continueTargets[""] = continueState
	if label != "" {
		ctx.breakTargets[label] = breakState
		ctx.continueTargets[label] = continueState
	}
}

func clearLoopTargets(ctx *transformContext, label string) {
	delete(ctx.breakTargets, "")
	delete(ctx.continueTargets, "")
	if label != "" {
		delete(ctx.breakTargets, label)
		delete(ctx.continueTargets, label)
	}
}

func transformTryStatement(n *ast.TryStatement, ctx *transformContext, afterState int) {
	afterTry := afterState
	if afterTry == noState {
		afterTry = ctx.newState()
	}

	tryBodyState := ctx.newState()

	var catch *catchInfo
	if n.Handler != nil {
		catch = &catchInfo{State: ctx.newState(), Param: n.Handler.Param}
	}

	finallyEntry := -1
	hasFinally := n.Finalizer != nil
	if hasFinally {
		finallyEntry = ctx.newState()
	}

	ctx.finalize(termTryEnter{
		TryState: tryBodyState, Catch: catch, FinallyState: finallyEntry,
		HasFinally: hasFinally, AfterState: afterTry,
	})

	ctx.currentID = tryBodyState
	transformStatements(n.Block.Body, ctx, afterTry)
	if hasFinally {
		ctx.finalize(termGoto{State: finallyEntry})
	} else {
		ctx.finalize(termTryExit{AfterState: afterTry})
	}

	if catch != nil {
		catchBody := ctx.newState()
		ctx.currentID = catch.State
		ctx.finalize(termEnterCatch{BodyState: catchBody, Param: catch.Param})

		ctx.currentID = catchBody
		transformStatements(n.Handler.Body.Body, ctx, afterTry)
		if hasFinally {
			ctx.finalize(termGoto{State: finallyEntry})
		} else {
			ctx.finalize(termTryExit{AfterState: afterTry})
		}
	}

	if hasFinally {
		finallyBody := ctx.newState()
		ctx.currentID = finallyEntry
		ctx.finalize(termEnterFinally{BodyState: finallyBody})

		ctx.currentID = finallyBody
		transformStatements(n.Finalizer.Body, ctx, afterTry)
		ctx.finalize(termTryExit{AfterState: afterTry})
	}

	ctx.currentID = afterTry
}

func transformSwitchStatement(n *ast.SwitchStatement, ctx *transformContext, afterState int) {
	afterSwitch := afterState
	if afterSwitch == noState {
		afterSwitch = ctx.newState()
	}

	prevBreak, hadBreak := ctx.breakTargets[""]
	ctx.breakTargets[""] = afterSwitch

	discriminant := n.Discriminant
	if exprContainsYield(discriminant) {
		tmp := ctx.newTemp("switch_disc")
		transformYieldingExpression(discriminant, ctx, &sentBinding{kind: sentVariable, name: tmp})
		discriminant = &ast.Identifier{Name: tmp}
	}

	caseStates := make([]int, len(n.Cases))
	var targets []switchCaseTarget
	defaultState := -1
	hasDefault := false
	for i, c := range n.Cases {
		s := ctx.newState()
		caseStates[i] = s
		if c.Test != nil {
			targets = append(targets, switchCaseTarget{Test: c.Test, State: s})
		} else {
			defaultState = s
			hasDefault = true
		}
	}

	ctx.finalize(termSwitchDispatch{
		Discriminant: discriminant, Cases: targets,
		DefaultState: defaultState, HasDefault: hasDefault, AfterState: afterSwitch,
	})

	for i, c := range n.Cases {
		ctx.currentID = caseStates[i]
		next := afterSwitch
		if i+1 < len(caseStates) {
			next = caseStates[i+1]
		}
		hasYield := false
		for _, stmt := range c.Consequent {
			if containsYield(stmt) {
				hasYield = true
				break
			}
		}
		if hasYield {
			transformStatements(c.Consequent, ctx, next)
		} else {
			for _, stmt := range c.Consequent {
				ctx.emit(stmt)
			}
		}
		ctx.finalize(termGoto{State: next})
	}

	if hadBreak {
		ctx.breakTargets[""] = prevBreak
	} else {
		delete(ctx.breakTargets, "")
	}
	ctx.currentID = afterSwitch
}

func transformLabeledStatement(n *ast.LabeledStatement, ctx *transformContext, afterState int) {
	switch n.Body.(type) {
	case *ast.WhileStatement, *ast.DoWhileStatement, *ast.ForStatement,
		*ast.ForInStatement, *ast.ForOfStatement:
		ctx.pendingLabel = n.Label
		transformYieldingStatement(n.Body, ctx, afterState)
		return
	}

	afterLabeled := afterState
	if afterLabeled == noState {
		afterLabeled = ctx.newState()
	}

	prev, had := ctx.breakTargets[n.Label]
	ctx.breakTargets[n.Label] = afterLabeled

	if containsYield(n.Body) {
		transformYieldingStatement(n.Body, ctx, afterLabeled)
	} else {
		ctx.emit(n.Body)
	}

	if had {
		ctx.breakTargets[n.Label] = prev
	} else {
		delete(ctx.breakTargets, n.Label)
	}
	ctx.finalize(termGoto{State: afterLabeled})
	ctx.currentID = afterLabeled
}
