package generator

import "github.com/cwbudde/go-ecma/pkg/ast"

// terminator is the closed set of state transitions a lowered generator
// body can end a state with (§4.7.1).
type terminator interface{ term() }

type termYield struct {
	Value       ast.Expression // nil for bare `yield`
	IsDelegate  bool
	Resume      int
	SentBinding *sentBinding
}

type termReturn struct{ Value ast.Expression } // nil for bare `return`
type termThrow struct{ Value ast.Expression }
type termGoto struct{ State int }

type termConditionalGoto struct {
	Cond                   ast.Expression
	TrueState, FalseState int
}

type catchInfo struct {
	State int
	Param ast.Pattern // nil for a parameterless catch
}

type termTryEnter struct {
	TryState     int
	Catch        *catchInfo
	FinallyState int
	HasFinally   bool
	AfterState   int
}

type termEnterCatch struct {
	BodyState int
	Param     ast.Pattern
}

type termEnterFinally struct{ BodyState int }
type termTryExit struct{ AfterState int }

type switchCaseTarget struct {
	Test  ast.Expression
	State int
}

type termSwitchDispatch struct {
	Discriminant ast.Expression
	Cases        []switchCaseTarget
	DefaultState int
	HasDefault   bool
	AfterState   int
}

type termCompleted struct{}

func (termYield) term()           {}
func (termReturn) term()          {}
func (termThrow) term()           {}
func (termGoto) term()            {}
func (termConditionalGoto) term() {}
func (termTryEnter) term()        {}
func (termEnterCatch) term()      {}
func (termEnterFinally) term()    {}
func (termTryExit) term()         {}
func (termSwitchDispatch) term()  {}
func (termCompleted) term()       {}

// sentBindingKind distinguishes how a resumed value (the argument to
// next()/a `yield` expression's value, or a delegated sub-iterator's
// final value) is installed back into the generator's activation
// (§4.7.1 "sent_binding").
type sentBindingKind int

const (
	sentDiscard sentBindingKind = iota
	sentVariable
	sentPattern
)

type sentBinding struct {
	kind sentBindingKind
	name string
	pat  ast.Pattern
}

// state is one node of the lowered state machine: a prefix of
// non-yielding statements that runs atomically, followed by terminator
// (§4.7.1).
type state struct {
	ID         int
	Statements []ast.Statement
	Terminator terminator

	// BreakTargets/ContinueTargets snapshot the label->state table that
	// was active while Statements was being accumulated (§4.7.2 "a
	// break-and-continue target table"). A literal, unlowered break or
	// continue can still appear inside Statements — nested inside an
	// if/switch/try that itself doesn't cross a yield — and surfaces as
	// an ordinary Completion when the driver runs Statements; the driver
	// consults these tables to redirect it to the right state instead of
	// letting it escape the state machine.
	BreakTargets    map[string]int
	ContinueTargets map[string]int
}

// Machine is the immutable, shared product of lowering a generator
// function's body (§4.7): resumable per instance via a fresh activation
// and current-state id, never mutated after transformGenerator returns.
type Machine struct {
	states     []state
	localVars  []string
	params     []ast.Pattern
	numYields  int
	tempVars   []string
}
