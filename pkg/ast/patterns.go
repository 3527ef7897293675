package ast

// Pattern is implemented by binding targets: identifiers and the
// destructuring forms that unpack arrays/objects (§4.5 "Destructuring").
type Pattern interface {
	Node
	pattern()
}

func (*Identifier) pattern() {}

// ArrayPattern destructures an iterable into elements, optionally with
// a trailing rest element. A nil entry represents an elided element
// (`[a, , b]`).
type ArrayPattern struct {
	base
	Elements []Pattern
	Rest     Pattern // nil if no rest element
}

func (*ArrayPattern) pattern() {}
func (*ArrayPattern) expr()    {}

// ObjectPattern destructures an object into named properties, optionally
// with a trailing rest pattern collecting the remaining own properties.
type ObjectPattern struct {
	base
	Properties []ObjectPatternProperty
	Rest       Pattern // nil if no rest element
}

func (*ObjectPattern) pattern() {}
func (*ObjectPattern) expr()    {}

// ObjectPatternProperty binds one destructured object property.
type ObjectPatternProperty struct {
	Key      Expression // Identifier for shorthand/plain keys, any Expression if Computed
	Computed bool
	Value    Pattern // the binding target, possibly a DefaultPattern
}

// DefaultPattern wraps a pattern with a default value used when the
// corresponding argument/property is undefined.
type DefaultPattern struct {
	base
	Target  Pattern
	Default Expression
}

func (*DefaultPattern) pattern() {}
func (*DefaultPattern) expr()    {}

// RestPattern marks the tail-collecting element of a parameter list or
// array/object pattern.
type RestPattern struct {
	base
	Target Pattern
}

func (*RestPattern) pattern() {}
func (*RestPattern) expr()    {}

// MemberPattern allows assignment patterns to target an existing
// property (`[a.b] = c`), not just a fresh binding.
type MemberPattern struct {
	base
	Target *MemberExpression
}

func (*MemberPattern) pattern() {}
func (*MemberPattern) expr()    {}
