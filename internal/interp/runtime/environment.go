package runtime

import "github.com/cwbudde/go-ecma/pkg/ast"

// BindingKind mirrors ast.BindingKind (§3.4): the evaluator decides the
// kind at declaration time and the environment enforces the resulting
// read/write rules (TDZ for Let/Const, immutability for Const).
type BindingKind = ast.BindingKind

const (
	BindVar      = ast.BindVar
	BindLet      = ast.BindLet
	BindConst    = ast.BindConst
	BindParam    = ast.BindParam
	BindFunction = ast.BindFunction
)

// binding is a single named cell in an Environment (§3.4 "a cell
// carries a Value plus an initialised flag").
type binding struct {
	kind        BindingKind
	value       Value
	initialized bool
}

// Environment is a lexically nested table of bindings (§3.4). Var
// declarations are expected to be Declare'd directly into the nearest
// function/global environment by the evaluator's hoisting pass; the
// Environment itself does not re-derive hoisting targets.
type Environment struct {
	parent   *Environment
	bindings map[string]*binding
	isGlobal bool
}

// NewGlobalEnvironment creates the realm's root environment.
func NewGlobalEnvironment() *Environment {
	return &Environment{bindings: make(map[string]*binding), isGlobal: true}
}

// NewChildEnvironment creates a new scope nested inside parent (block,
// function activation, catch clause, ...).
func NewChildEnvironment(parent *Environment) *Environment {
	return &Environment{bindings: make(map[string]*binding), parent: parent}
}

// Parent returns the enclosing environment, or nil for the global one.
func (e *Environment) Parent() *Environment { return e.parent }

// IsGlobal reports whether e is the realm's root environment.
func (e *Environment) IsGlobal() bool { return e.isGlobal }

// reason for a failed binding operation, surfaced to the evaluator so
// it can construct the matching script-visible error (§4.3).
type BindingError int

const (
	ErrNone BindingError = iota
	ErrNotDeclared
	ErrTDZ
	ErrConstAssign
	ErrAlreadyDeclared
)

// Declare introduces a binding named name in e with the given kind
// (§4.3 "Declare"). Var and Param bindings are installed already
// initialized to undefined; every other kind (Let, Const, Function) is
// installed uninitialized, entering the temporal dead zone until
// Initialize is called. Function declarations are hoisted through
// DeclareInitialized instead.
func (e *Environment) Declare(name string, kind BindingKind) {
	init := kind == BindVar || kind == BindParam
	e.bindings[name] = &binding{kind: kind, value: Undefined, initialized: init}
}

// DeclareInitialized introduces name already holding value and marked
// initialized — used for function-declaration hoisting (§4.3
// "function declarations are installed fully at the top of the
// scope") and parameter binding.
func (e *Environment) DeclareInitialized(name string, kind BindingKind, value Value) {
	e.bindings[name] = &binding{kind: kind, value: value, initialized: true}
}

// Initialize transitions a Let/Const binding out of the temporal dead
// zone, assigning its first value (§4.3 "let/const declarations...
// initialise on the declaration statement").
func (e *Environment) Initialize(name string, value Value) BindingError {
	b, ok := e.bindings[name]
	if !ok {
		return ErrNotDeclared
	}
	b.value = value
	b.initialized = true
	return ErrNone
}

// Get resolves name by walking outward from e (§4.3 "Get"). Reading an
// uninitialized Let/Const binding reports ErrTDZ; reading a name not
// declared in any enclosing scope reports ErrNotDeclared so the
// evaluator's `typeof` special case (§4.5) can distinguish it from TDZ.
func (e *Environment) Get(name string) (Value, BindingError) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.bindings[name]; ok {
			if !b.initialized {
				return Undefined, ErrTDZ
			}
			return b.value, ErrNone
		}
	}
	return Undefined, ErrNotDeclared
}

// Set assigns value to the nearest enclosing binding named name
// (§4.3 "Set"). Writing to an uninitialized Let/Const reports ErrTDZ;
// writing to an initialized Const reports ErrConstAssign; writing to an
// undeclared name reports ErrNotDeclared (strict-mode ReferenceError,
// since the evaluator always acts strict per §4.4).
func (e *Environment) Set(name string, value Value) BindingError {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.bindings[name]; ok {
			if !b.initialized {
				return ErrTDZ
			}
			if b.kind == BindConst {
				return ErrConstAssign
			}
			b.value = value
			return ErrNone
		}
	}
	return ErrNotDeclared
}

// HasBinding reports whether name is declared (initialized or not) in
// e or any enclosing scope; used by `typeof` and `delete` to
// distinguish "never declared" from "declared but TDZ".
func (e *Environment) HasBinding(name string) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.bindings[name]; ok {
			return true
		}
	}
	return false
}

// HasOwnBinding reports whether name is declared directly in e, without
// walking to parent scopes — used by hoisting to decide whether a `var`
// already has a binding it should leave alone.
func (e *Environment) HasOwnBinding(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// KindOf returns the binding kind of name's nearest declaration, and
// whether it was found at all.
func (e *Environment) KindOf(name string) (BindingKind, bool) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.bindings[name]; ok {
			return b.kind, true
		}
	}
	return BindVar, false
}
