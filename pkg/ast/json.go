package ast

import (
	"encoding/json"
	"fmt"
)

// This file is the serialization half of "producing this tree... is
// the job of an external collaborator" (package doc): a host that
// embeds the interpreter core without writing a Go-native parser can
// hand it a JSON document shaped like these wire structs instead.
// Every concrete node gets a "type" discriminator on the way out so
// the decoder, faced with an interface-typed field, knows which
// concrete struct to decode into on the way back in.

type typeTag struct {
	Type string `json:"type"`
}

func marshalTagged(typeName string, v any) ([]byte, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(buf, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", typeName))
	return json.Marshal(fields)
}

// ParseJSON decodes a Program from the wire format MarshalJSON
// produces, the entry point a host (e.g. cmd/ecma's `run` command)
// uses in place of a source-text parser.
func ParseJSON(data []byte) (*Program, error) {
	var wire struct {
		Body []json.RawMessage `json:"Body"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("ast: decode program: %w", err)
	}
	body, err := decodeStatements(wire.Body)
	if err != nil {
		return nil, err
	}
	return &Program{Body: body}, nil
}

func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Body []Statement `json:"Body"`
	}{p.Body})
}

func decodeNode(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("ast: decode node: %w", err)
	}
	fn, ok := nodeDecoders[tag.Type]
	if !ok {
		return nil, fmt.Errorf("ast: unknown node type %q", tag.Type)
	}
	return fn(raw)
}

func decodeStatement(raw json.RawMessage) (Statement, error) {
	n, err := decodeNode(raw)
	if err != nil || n == nil {
		return nil, err
	}
	s, ok := n.(Statement)
	if !ok {
		return nil, fmt.Errorf("ast: node is not a statement: %T", n)
	}
	return s, nil
}

func decodeExpression(raw json.RawMessage) (Expression, error) {
	n, err := decodeNode(raw)
	if err != nil || n == nil {
		return nil, err
	}
	e, ok := n.(Expression)
	if !ok {
		return nil, fmt.Errorf("ast: node is not an expression: %T", n)
	}
	return e, nil
}

func decodePattern(raw json.RawMessage) (Pattern, error) {
	n, err := decodeNode(raw)
	if err != nil || n == nil {
		return nil, err
	}
	p, ok := n.(Pattern)
	if !ok {
		return nil, fmt.Errorf("ast: node is not a pattern: %T", n)
	}
	return p, nil
}

func decodeBlock(raw json.RawMessage) (*BlockStatement, error) {
	s, err := decodeStatement(raw)
	if err != nil || s == nil {
		return nil, err
	}
	b, ok := s.(*BlockStatement)
	if !ok {
		return nil, fmt.Errorf("ast: expected BlockStatement, got %T", s)
	}
	return b, nil
}

func decodeStatements(raws []json.RawMessage) ([]Statement, error) {
	out := make([]Statement, len(raws))
	for i, raw := range raws {
		s, err := decodeStatement(raw)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeExpressions(raws []json.RawMessage) ([]Expression, error) {
	out := make([]Expression, len(raws))
	for i, raw := range raws {
		e, err := decodeExpression(raw)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodePatterns(raws []json.RawMessage) ([]Pattern, error) {
	out := make([]Pattern, len(raws))
	for i, raw := range raws {
		p, err := decodePattern(raw)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

var nodeDecoders map[string]func(json.RawMessage) (Node, error)

func init() {
	nodeDecoders = map[string]func(json.RawMessage) (Node, error){
		"Identifier":            decodeIdentifier,
		"Literal":               decodeLiteral,
		"RegexLiteral":          decodeRegexLiteral,
		"TemplateLiteral":       decodeTemplateLiteral,
		"ArrayLiteral":          decodeArrayLiteral,
		"SpreadElement":         decodeSpreadElement,
		"ObjectLiteral":         decodeObjectLiteral,
		"FunctionExpression":    decodeFunctionExpression,
		"ThisExpression":        decodeThisExpression,
		"NewTargetExpression":   decodeNewTargetExpression,
		"MemberExpression":      decodeMemberExpression,
		"CallExpression":        decodeCallExpression,
		"NewExpression":         decodeNewExpression,
		"UnaryExpression":       decodeUnaryExpression,
		"UpdateExpression":      decodeUpdateExpression,
		"BinaryExpression":      decodeBinaryExpression,
		"LogicalExpression":     decodeLogicalExpression,
		"AssignmentExpression":  decodeAssignmentExpression,
		"ConditionalExpression": decodeConditionalExpression,
		"SequenceExpression":    decodeSequenceExpression,
		"YieldExpression":       decodeYieldExpression,
		"ArrayPattern":          decodeArrayPattern,
		"ObjectPattern":         decodeObjectPattern,
		"DefaultPattern":        decodeDefaultPattern,
		"RestPattern":           decodeRestPattern,
		"MemberPattern":         decodeMemberPattern,
		"BlockStatement":        decodeBlockStatement,
		"ExpressionStatement":   decodeExpressionStatement,
		"EmptyStatement":        decodeEmptyStatement,
		"VariableDeclaration":   decodeVariableDeclaration,
		"FunctionDeclaration":   decodeFunctionDeclaration,
		"IfStatement":           decodeIfStatement,
		"WhileStatement":        decodeWhileStatement,
		"DoWhileStatement":      decodeDoWhileStatement,
		"ForStatement":          decodeForStatement,
		"ForInStatement":        decodeForInStatement,
		"ForOfStatement":        decodeForOfStatement,
		"BreakStatement":        decodeBreakStatement,
		"ContinueStatement":     decodeContinueStatement,
		"ReturnStatement":       decodeReturnStatement,
		"ThrowStatement":        decodeThrowStatement,
		"LabeledStatement":      decodeLabeledStatement,
		"SwitchStatement":       decodeSwitchStatement,
		"TryStatement":          decodeTryStatement,
	}
}

// --- Identifier ---

func (n *Identifier) MarshalJSON() ([]byte, error) {
	type wire Identifier
	return marshalTagged("Identifier", (*wire)(n))
}

func decodeIdentifier(raw json.RawMessage) (Node, error) {
	var w struct {
		Name string
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode Identifier: %w", err)
	}
	return &Identifier{Name: w.Name}, nil
}

// --- Literal ---

func (n *Literal) MarshalJSON() ([]byte, error) {
	type wire Literal
	return marshalTagged("Literal", (*wire)(n))
}

func decodeLiteral(raw json.RawMessage) (Node, error) {
	var w struct {
		Kind  LiteralKind
		Value any
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode Literal: %w", err)
	}
	return &Literal{Kind: w.Kind, Value: w.Value}, nil
}

// --- RegexLiteral ---

func (n *RegexLiteral) MarshalJSON() ([]byte, error) {
	type wire RegexLiteral
	return marshalTagged("RegexLiteral", (*wire)(n))
}

func decodeRegexLiteral(raw json.RawMessage) (Node, error) {
	var w struct {
		Pattern string
		Flags   string
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode RegexLiteral: %w", err)
	}
	return &RegexLiteral{Pattern: w.Pattern, Flags: w.Flags}, nil
}

// --- TemplateLiteral ---

func (n *TemplateLiteral) MarshalJSON() ([]byte, error) {
	type wire TemplateLiteral
	return marshalTagged("TemplateLiteral", (*wire)(n))
}

func decodeTemplateLiteral(raw json.RawMessage) (Node, error) {
	var w struct {
		Quasis      []string
		Expressions []json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode TemplateLiteral: %w", err)
	}
	exprs, err := decodeExpressions(w.Expressions)
	if err != nil {
		return nil, err
	}
	return &TemplateLiteral{Quasis: w.Quasis, Expressions: exprs}, nil
}

// --- ArrayLiteral ---

func (n *ArrayLiteral) MarshalJSON() ([]byte, error) {
	type wire ArrayLiteral
	return marshalTagged("ArrayLiteral", (*wire)(n))
}

func decodeArrayLiteral(raw json.RawMessage) (Node, error) {
	var w struct {
		Elements []json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ArrayLiteral: %w", err)
	}
	elems, err := decodeExpressions(w.Elements)
	if err != nil {
		return nil, err
	}
	return &ArrayLiteral{Elements: elems}, nil
}

// --- SpreadElement ---

func (n *SpreadElement) MarshalJSON() ([]byte, error) {
	type wire SpreadElement
	return marshalTagged("SpreadElement", (*wire)(n))
}

func decodeSpreadElement(raw json.RawMessage) (Node, error) {
	var w struct {
		Argument json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode SpreadElement: %w", err)
	}
	arg, err := decodeExpression(w.Argument)
	if err != nil {
		return nil, err
	}
	return &SpreadElement{Argument: arg}, nil
}

// --- ObjectLiteral ---

func (n *ObjectLiteral) MarshalJSON() ([]byte, error) {
	type wire ObjectLiteral
	return marshalTagged("ObjectLiteral", (*wire)(n))
}

func decodeObjectLiteral(raw json.RawMessage) (Node, error) {
	var w struct {
		Properties []struct {
			Kind     ObjectPropertyKind
			Key      json.RawMessage
			Computed bool
			Value    json.RawMessage
		}
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ObjectLiteral: %w", err)
	}
	props := make([]ObjectLiteralProperty, len(w.Properties))
	for i, p := range w.Properties {
		key, err := decodeExpression(p.Key)
		if err != nil {
			return nil, err
		}
		val, err := decodeExpression(p.Value)
		if err != nil {
			return nil, err
		}
		props[i] = ObjectLiteralProperty{Kind: p.Kind, Key: key, Computed: p.Computed, Value: val}
	}
	return &ObjectLiteral{Properties: props}, nil
}

// --- FunctionExpression ---

func (n *FunctionExpression) MarshalJSON() ([]byte, error) {
	type wire FunctionExpression
	return marshalTagged("FunctionExpression", (*wire)(n))
}

func decodeFunctionExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Name        string
		Params      []json.RawMessage
		Body        json.RawMessage
		IsArrow     bool
		IsGenerator bool
		IsAsync     bool
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode FunctionExpression: %w", err)
	}
	params, err := decodePatterns(w.Params)
	if err != nil {
		return nil, err
	}
	body, err := decodeBlock(w.Body)
	if err != nil {
		return nil, err
	}
	return &FunctionExpression{
		Name: w.Name, Params: params, Body: body,
		IsArrow: w.IsArrow, IsGenerator: w.IsGenerator, IsAsync: w.IsAsync,
	}, nil
}

// --- ThisExpression / NewTargetExpression ---

func (n *ThisExpression) MarshalJSON() ([]byte, error) {
	type wire ThisExpression
	return marshalTagged("ThisExpression", (*wire)(n))
}

func decodeThisExpression(raw json.RawMessage) (Node, error) { return &ThisExpression{}, nil }

func (n *NewTargetExpression) MarshalJSON() ([]byte, error) {
	type wire NewTargetExpression
	return marshalTagged("NewTargetExpression", (*wire)(n))
}

func decodeNewTargetExpression(raw json.RawMessage) (Node, error) { return &NewTargetExpression{}, nil }

// --- MemberExpression ---

func (n *MemberExpression) MarshalJSON() ([]byte, error) {
	type wire MemberExpression
	return marshalTagged("MemberExpression", (*wire)(n))
}

func decodeMemberExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Object   json.RawMessage
		Property json.RawMessage
		Computed bool
		Optional bool
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode MemberExpression: %w", err)
	}
	obj, err := decodeExpression(w.Object)
	if err != nil {
		return nil, err
	}
	prop, err := decodeExpression(w.Property)
	if err != nil {
		return nil, err
	}
	return &MemberExpression{Object: obj, Property: prop, Computed: w.Computed, Optional: w.Optional}, nil
}

// --- CallExpression ---

func (n *CallExpression) MarshalJSON() ([]byte, error) {
	type wire CallExpression
	return marshalTagged("CallExpression", (*wire)(n))
}

func decodeCallExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Callee    json.RawMessage
		Arguments []json.RawMessage
		Optional  bool
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode CallExpression: %w", err)
	}
	callee, err := decodeExpression(w.Callee)
	if err != nil {
		return nil, err
	}
	args, err := decodeExpressions(w.Arguments)
	if err != nil {
		return nil, err
	}
	return &CallExpression{Callee: callee, Arguments: args, Optional: w.Optional}, nil
}

// --- NewExpression ---

func (n *NewExpression) MarshalJSON() ([]byte, error) {
	type wire NewExpression
	return marshalTagged("NewExpression", (*wire)(n))
}

func decodeNewExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Callee    json.RawMessage
		Arguments []json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode NewExpression: %w", err)
	}
	callee, err := decodeExpression(w.Callee)
	if err != nil {
		return nil, err
	}
	args, err := decodeExpressions(w.Arguments)
	if err != nil {
		return nil, err
	}
	return &NewExpression{Callee: callee, Arguments: args}, nil
}

// --- UnaryExpression / UpdateExpression ---

func (n *UnaryExpression) MarshalJSON() ([]byte, error) {
	type wire UnaryExpression
	return marshalTagged("UnaryExpression", (*wire)(n))
}

func decodeUnaryExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Operator UnaryOperator
		Argument json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode UnaryExpression: %w", err)
	}
	arg, err := decodeExpression(w.Argument)
	if err != nil {
		return nil, err
	}
	return &UnaryExpression{Operator: w.Operator, Argument: arg}, nil
}

func (n *UpdateExpression) MarshalJSON() ([]byte, error) {
	type wire UpdateExpression
	return marshalTagged("UpdateExpression", (*wire)(n))
}

func decodeUpdateExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Operator string
		Argument json.RawMessage
		Prefix   bool
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode UpdateExpression: %w", err)
	}
	arg, err := decodeExpression(w.Argument)
	if err != nil {
		return nil, err
	}
	return &UpdateExpression{Operator: w.Operator, Argument: arg, Prefix: w.Prefix}, nil
}

// --- BinaryExpression / LogicalExpression ---

func (n *BinaryExpression) MarshalJSON() ([]byte, error) {
	type wire BinaryExpression
	return marshalTagged("BinaryExpression", (*wire)(n))
}

func decodeBinaryExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Operator    string
		Left, Right json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode BinaryExpression: %w", err)
	}
	left, err := decodeExpression(w.Left)
	if err != nil {
		return nil, err
	}
	right, err := decodeExpression(w.Right)
	if err != nil {
		return nil, err
	}
	return &BinaryExpression{Operator: w.Operator, Left: left, Right: right}, nil
}

func (n *LogicalExpression) MarshalJSON() ([]byte, error) {
	type wire LogicalExpression
	return marshalTagged("LogicalExpression", (*wire)(n))
}

func decodeLogicalExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Operator    string
		Left, Right json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode LogicalExpression: %w", err)
	}
	left, err := decodeExpression(w.Left)
	if err != nil {
		return nil, err
	}
	right, err := decodeExpression(w.Right)
	if err != nil {
		return nil, err
	}
	return &LogicalExpression{Operator: w.Operator, Left: left, Right: right}, nil
}

// --- AssignmentExpression ---

func (n *AssignmentExpression) MarshalJSON() ([]byte, error) {
	type wire AssignmentExpression
	return marshalTagged("AssignmentExpression", (*wire)(n))
}

func decodeAssignmentExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Operator string
		Target   json.RawMessage
		Value    json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode AssignmentExpression: %w", err)
	}
	target, err := decodeNode(w.Target)
	if err != nil {
		return nil, err
	}
	value, err := decodeExpression(w.Value)
	if err != nil {
		return nil, err
	}
	return &AssignmentExpression{Operator: w.Operator, Target: target, Value: value}, nil
}

// --- ConditionalExpression ---

func (n *ConditionalExpression) MarshalJSON() ([]byte, error) {
	type wire ConditionalExpression
	return marshalTagged("ConditionalExpression", (*wire)(n))
}

func decodeConditionalExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Test, Consequent, Alternate json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ConditionalExpression: %w", err)
	}
	test, err := decodeExpression(w.Test)
	if err != nil {
		return nil, err
	}
	cons, err := decodeExpression(w.Consequent)
	if err != nil {
		return nil, err
	}
	alt, err := decodeExpression(w.Alternate)
	if err != nil {
		return nil, err
	}
	return &ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}, nil
}

// --- SequenceExpression ---

func (n *SequenceExpression) MarshalJSON() ([]byte, error) {
	type wire SequenceExpression
	return marshalTagged("SequenceExpression", (*wire)(n))
}

func decodeSequenceExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Expressions []json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode SequenceExpression: %w", err)
	}
	exprs, err := decodeExpressions(w.Expressions)
	if err != nil {
		return nil, err
	}
	return &SequenceExpression{Expressions: exprs}, nil
}

// --- YieldExpression ---

func (n *YieldExpression) MarshalJSON() ([]byte, error) {
	type wire YieldExpression
	return marshalTagged("YieldExpression", (*wire)(n))
}

func decodeYieldExpression(raw json.RawMessage) (Node, error) {
	var w struct {
		Argument   json.RawMessage
		IsDelegate bool
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode YieldExpression: %w", err)
	}
	arg, err := decodeExpression(w.Argument)
	if err != nil {
		return nil, err
	}
	return &YieldExpression{Argument: arg, IsDelegate: w.IsDelegate}, nil
}

// --- ArrayPattern ---

func (n *ArrayPattern) MarshalJSON() ([]byte, error) {
	type wire ArrayPattern
	return marshalTagged("ArrayPattern", (*wire)(n))
}

func decodeArrayPattern(raw json.RawMessage) (Node, error) {
	var w struct {
		Elements []json.RawMessage
		Rest     json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ArrayPattern: %w", err)
	}
	elems, err := decodePatterns(w.Elements)
	if err != nil {
		return nil, err
	}
	rest, err := decodePattern(w.Rest)
	if err != nil {
		return nil, err
	}
	return &ArrayPattern{Elements: elems, Rest: rest}, nil
}

// --- ObjectPattern ---

func (n *ObjectPattern) MarshalJSON() ([]byte, error) {
	type wire ObjectPattern
	return marshalTagged("ObjectPattern", (*wire)(n))
}

func decodeObjectPattern(raw json.RawMessage) (Node, error) {
	var w struct {
		Properties []struct {
			Key      json.RawMessage
			Computed bool
			Value    json.RawMessage
		}
		Rest json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ObjectPattern: %w", err)
	}
	props := make([]ObjectPatternProperty, len(w.Properties))
	for i, p := range w.Properties {
		key, err := decodeExpression(p.Key)
		if err != nil {
			return nil, err
		}
		val, err := decodePattern(p.Value)
		if err != nil {
			return nil, err
		}
		props[i] = ObjectPatternProperty{Key: key, Computed: p.Computed, Value: val}
	}
	rest, err := decodePattern(w.Rest)
	if err != nil {
		return nil, err
	}
	return &ObjectPattern{Properties: props, Rest: rest}, nil
}

// --- DefaultPattern / RestPattern / MemberPattern ---

func (n *DefaultPattern) MarshalJSON() ([]byte, error) {
	type wire DefaultPattern
	return marshalTagged("DefaultPattern", (*wire)(n))
}

func decodeDefaultPattern(raw json.RawMessage) (Node, error) {
	var w struct {
		Target  json.RawMessage
		Default json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode DefaultPattern: %w", err)
	}
	target, err := decodePattern(w.Target)
	if err != nil {
		return nil, err
	}
	def, err := decodeExpression(w.Default)
	if err != nil {
		return nil, err
	}
	return &DefaultPattern{Target: target, Default: def}, nil
}

func (n *RestPattern) MarshalJSON() ([]byte, error) {
	type wire RestPattern
	return marshalTagged("RestPattern", (*wire)(n))
}

func decodeRestPattern(raw json.RawMessage) (Node, error) {
	var w struct {
		Target json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode RestPattern: %w", err)
	}
	target, err := decodePattern(w.Target)
	if err != nil {
		return nil, err
	}
	return &RestPattern{Target: target}, nil
}

func (n *MemberPattern) MarshalJSON() ([]byte, error) {
	type wire MemberPattern
	return marshalTagged("MemberPattern", (*wire)(n))
}

func decodeMemberPattern(raw json.RawMessage) (Node, error) {
	var w struct {
		Target json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode MemberPattern: %w", err)
	}
	target, err := decodeExpression(w.Target)
	if err != nil {
		return nil, err
	}
	member, ok := target.(*MemberExpression)
	if !ok {
		return nil, fmt.Errorf("ast: MemberPattern.Target must be a MemberExpression, got %T", target)
	}
	return &MemberPattern{Target: member}, nil
}

// --- BlockStatement / ExpressionStatement / EmptyStatement ---

func (n *BlockStatement) MarshalJSON() ([]byte, error) {
	type wire BlockStatement
	return marshalTagged("BlockStatement", (*wire)(n))
}

func decodeBlockStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Body []json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode BlockStatement: %w", err)
	}
	body, err := decodeStatements(w.Body)
	if err != nil {
		return nil, err
	}
	return &BlockStatement{Body: body}, nil
}

func (n *ExpressionStatement) MarshalJSON() ([]byte, error) {
	type wire ExpressionStatement
	return marshalTagged("ExpressionStatement", (*wire)(n))
}

func decodeExpressionStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Expression json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ExpressionStatement: %w", err)
	}
	expr, err := decodeExpression(w.Expression)
	if err != nil {
		return nil, err
	}
	return &ExpressionStatement{Expression: expr}, nil
}

func (n *EmptyStatement) MarshalJSON() ([]byte, error) {
	type wire EmptyStatement
	return marshalTagged("EmptyStatement", (*wire)(n))
}

func decodeEmptyStatement(raw json.RawMessage) (Node, error) { return &EmptyStatement{}, nil }

// --- VariableDeclaration ---

func (n *VariableDeclaration) MarshalJSON() ([]byte, error) {
	type wire VariableDeclaration
	return marshalTagged("VariableDeclaration", (*wire)(n))
}

func decodeVariableDeclaration(raw json.RawMessage) (Node, error) {
	var w struct {
		Kind         BindingKind
		Declarations []struct {
			Target json.RawMessage
			Init   json.RawMessage
		}
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode VariableDeclaration: %w", err)
	}
	decls := make([]VariableDeclarator, len(w.Declarations))
	for i, d := range w.Declarations {
		target, err := decodePattern(d.Target)
		if err != nil {
			return nil, err
		}
		init, err := decodeExpression(d.Init)
		if err != nil {
			return nil, err
		}
		decls[i] = VariableDeclarator{Target: target, Init: init}
	}
	return &VariableDeclaration{Kind: w.Kind, Declarations: decls}, nil
}

// --- FunctionDeclaration ---

func (n *FunctionDeclaration) MarshalJSON() ([]byte, error) {
	type wire FunctionDeclaration
	return marshalTagged("FunctionDeclaration", (*wire)(n))
}

func decodeFunctionDeclaration(raw json.RawMessage) (Node, error) {
	var w struct {
		Function json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode FunctionDeclaration: %w", err)
	}
	fn, err := decodeExpression(w.Function)
	if err != nil {
		return nil, err
	}
	fnExpr, ok := fn.(*FunctionExpression)
	if !ok {
		return nil, fmt.Errorf("ast: FunctionDeclaration.Function must be a FunctionExpression, got %T", fn)
	}
	return &FunctionDeclaration{Function: fnExpr}, nil
}

// --- IfStatement / WhileStatement / DoWhileStatement ---

func (n *IfStatement) MarshalJSON() ([]byte, error) {
	type wire IfStatement
	return marshalTagged("IfStatement", (*wire)(n))
}

func decodeIfStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Test       json.RawMessage
		Consequent json.RawMessage
		Alternate  json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode IfStatement: %w", err)
	}
	test, err := decodeExpression(w.Test)
	if err != nil {
		return nil, err
	}
	cons, err := decodeStatement(w.Consequent)
	if err != nil {
		return nil, err
	}
	alt, err := decodeStatement(w.Alternate)
	if err != nil {
		return nil, err
	}
	return &IfStatement{Test: test, Consequent: cons, Alternate: alt}, nil
}

func (n *WhileStatement) MarshalJSON() ([]byte, error) {
	type wire WhileStatement
	return marshalTagged("WhileStatement", (*wire)(n))
}

func decodeWhileStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Test json.RawMessage
		Body json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode WhileStatement: %w", err)
	}
	test, err := decodeExpression(w.Test)
	if err != nil {
		return nil, err
	}
	body, err := decodeStatement(w.Body)
	if err != nil {
		return nil, err
	}
	return &WhileStatement{Test: test, Body: body}, nil
}

func (n *DoWhileStatement) MarshalJSON() ([]byte, error) {
	type wire DoWhileStatement
	return marshalTagged("DoWhileStatement", (*wire)(n))
}

func decodeDoWhileStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Body json.RawMessage
		Test json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode DoWhileStatement: %w", err)
	}
	body, err := decodeStatement(w.Body)
	if err != nil {
		return nil, err
	}
	test, err := decodeExpression(w.Test)
	if err != nil {
		return nil, err
	}
	return &DoWhileStatement{Body: body, Test: test}, nil
}

// --- ForStatement / ForInStatement / ForOfStatement ---

func (n *ForStatement) MarshalJSON() ([]byte, error) {
	type wire ForStatement
	return marshalTagged("ForStatement", (*wire)(n))
}

func decodeForStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Init   json.RawMessage
		Test   json.RawMessage
		Update json.RawMessage
		Body   json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ForStatement: %w", err)
	}
	init, err := decodeNode(w.Init)
	if err != nil {
		return nil, err
	}
	test, err := decodeExpression(w.Test)
	if err != nil {
		return nil, err
	}
	update, err := decodeExpression(w.Update)
	if err != nil {
		return nil, err
	}
	body, err := decodeStatement(w.Body)
	if err != nil {
		return nil, err
	}
	return &ForStatement{Init: init, Test: test, Update: update, Body: body}, nil
}

func (n *ForInStatement) MarshalJSON() ([]byte, error) {
	type wire ForInStatement
	return marshalTagged("ForInStatement", (*wire)(n))
}

func decodeForInStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Left    json.RawMessage
		Right   json.RawMessage
		Body    json.RawMessage
		IsConst bool
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ForInStatement: %w", err)
	}
	left, err := decodeNode(w.Left)
	if err != nil {
		return nil, err
	}
	right, err := decodeExpression(w.Right)
	if err != nil {
		return nil, err
	}
	body, err := decodeStatement(w.Body)
	if err != nil {
		return nil, err
	}
	return &ForInStatement{Left: left, Right: right, Body: body, IsConst: w.IsConst}, nil
}

func (n *ForOfStatement) MarshalJSON() ([]byte, error) {
	type wire ForOfStatement
	return marshalTagged("ForOfStatement", (*wire)(n))
}

func decodeForOfStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Left  json.RawMessage
		Right json.RawMessage
		Body  json.RawMessage
		Await bool
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ForOfStatement: %w", err)
	}
	left, err := decodeNode(w.Left)
	if err != nil {
		return nil, err
	}
	right, err := decodeExpression(w.Right)
	if err != nil {
		return nil, err
	}
	body, err := decodeStatement(w.Body)
	if err != nil {
		return nil, err
	}
	return &ForOfStatement{Left: left, Right: right, Body: body, Await: w.Await}, nil
}

// --- BreakStatement / ContinueStatement ---

func (n *BreakStatement) MarshalJSON() ([]byte, error) {
	type wire BreakStatement
	return marshalTagged("BreakStatement", (*wire)(n))
}

func decodeBreakStatement(raw json.RawMessage) (Node, error) {
	var w struct{ Label string }
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode BreakStatement: %w", err)
	}
	return &BreakStatement{Label: w.Label}, nil
}

func (n *ContinueStatement) MarshalJSON() ([]byte, error) {
	type wire ContinueStatement
	return marshalTagged("ContinueStatement", (*wire)(n))
}

func decodeContinueStatement(raw json.RawMessage) (Node, error) {
	var w struct{ Label string }
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ContinueStatement: %w", err)
	}
	return &ContinueStatement{Label: w.Label}, nil
}

// --- ReturnStatement / ThrowStatement ---

func (n *ReturnStatement) MarshalJSON() ([]byte, error) {
	type wire ReturnStatement
	return marshalTagged("ReturnStatement", (*wire)(n))
}

func decodeReturnStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Argument json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ReturnStatement: %w", err)
	}
	arg, err := decodeExpression(w.Argument)
	if err != nil {
		return nil, err
	}
	return &ReturnStatement{Argument: arg}, nil
}

func (n *ThrowStatement) MarshalJSON() ([]byte, error) {
	type wire ThrowStatement
	return marshalTagged("ThrowStatement", (*wire)(n))
}

func decodeThrowStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Argument json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode ThrowStatement: %w", err)
	}
	arg, err := decodeExpression(w.Argument)
	if err != nil {
		return nil, err
	}
	return &ThrowStatement{Argument: arg}, nil
}

// --- LabeledStatement ---

func (n *LabeledStatement) MarshalJSON() ([]byte, error) {
	type wire LabeledStatement
	return marshalTagged("LabeledStatement", (*wire)(n))
}

func decodeLabeledStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Label string
		Body  json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode LabeledStatement: %w", err)
	}
	body, err := decodeStatement(w.Body)
	if err != nil {
		return nil, err
	}
	return &LabeledStatement{Label: w.Label, Body: body}, nil
}

// --- SwitchStatement ---

func (n *SwitchStatement) MarshalJSON() ([]byte, error) {
	type wire SwitchStatement
	return marshalTagged("SwitchStatement", (*wire)(n))
}

func decodeSwitchStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Discriminant json.RawMessage
		Cases        []struct {
			Test       json.RawMessage
			Consequent []json.RawMessage
		}
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode SwitchStatement: %w", err)
	}
	disc, err := decodeExpression(w.Discriminant)
	if err != nil {
		return nil, err
	}
	cases := make([]SwitchCase, len(w.Cases))
	for i, c := range w.Cases {
		test, err := decodeExpression(c.Test)
		if err != nil {
			return nil, err
		}
		consequent, err := decodeStatements(c.Consequent)
		if err != nil {
			return nil, err
		}
		cases[i] = SwitchCase{Test: test, Consequent: consequent}
	}
	return &SwitchStatement{Discriminant: disc, Cases: cases}, nil
}

// --- TryStatement ---

func (n *TryStatement) MarshalJSON() ([]byte, error) {
	type wire TryStatement
	return marshalTagged("TryStatement", (*wire)(n))
}

func decodeTryStatement(raw json.RawMessage) (Node, error) {
	var w struct {
		Block   json.RawMessage
		Handler *struct {
			Param json.RawMessage
			Body  json.RawMessage
		}
		Finalizer json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("ast: decode TryStatement: %w", err)
	}
	block, err := decodeBlock(w.Block)
	if err != nil {
		return nil, err
	}
	var handler *CatchClause
	if w.Handler != nil {
		param, err := decodePattern(w.Handler.Param)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(w.Handler.Body)
		if err != nil {
			return nil, err
		}
		handler = &CatchClause{Param: param, Body: body}
	}
	finalizer, err := decodeBlock(w.Finalizer)
	if err != nil {
		return nil, err
	}
	return &TryStatement{Block: block, Handler: handler, Finalizer: finalizer}, nil
}
