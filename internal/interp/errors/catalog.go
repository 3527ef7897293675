// Package errors distinguishes the two error axes of §7: script-visible
// errors (thrown as Values, built by constructors.go on top of
// runtime.Store) and internal interpreter errors (Go errors that
// indicate a broken invariant and must not be recoverable from script).
package errors

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/cwbudde/go-ecma/pkg/token"
)

// Category classifies an internal error for diagnostics (§7 "Internal
// errors... the host surfaces them as aborts"), ported from the
// teacher's constructor-per-category pattern and generalized to the
// categories this spec names.
type Category string

const (
	CategoryInvariant  Category = "Invariant"  // broken Object Store / Property System invariant
	CategoryInternal   Category = "Internal"   // interpreter-side bug, not script-triggerable
	CategoryGenerator  Category = "Generator"  // malformed state machine produced by the lowering
	CategoryEmbedding  Category = "Embedding"  // misuse of the §6 embedding interface by a host
)

// InternalError is a Go error describing an interpreter-side bug. It is
// never converted into a script Throw completion; the embedding host
// is expected to abort (§7).
type InternalError struct {
	Category Category
	Message  string
	Pos      *token.Position
	dump     string
}

func (e *InternalError) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s error at %s: %s", e.Category, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Dump returns the spew-formatted value snapshot attached by
// NewInvariantErrorWithValue, or the empty string if none was attached.
// Used only for interpreter-side diagnostics; script output never sees
// spew's output.
func (e *InternalError) Dump() string { return e.dump }

// NewInvariantError reports a broken Object Store/Property System
// invariant (§3.2 "Invariants").
func NewInvariantError(pos *token.Position, format string, args ...any) *InternalError {
	return &InternalError{Category: CategoryInvariant, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// NewInvariantErrorWithValue is NewInvariantError plus a spew dump of an
// offending value, for interpreter-maintainer diagnostics only.
func NewInvariantErrorWithValue(pos *token.Position, value any, format string, args ...any) *InternalError {
	e := NewInvariantError(pos, format, args...)
	e.dump = spew.Sdump(value)
	return e
}

// NewInternalError reports a generic interpreter bug.
func NewInternalError(pos *token.Position, format string, args ...any) *InternalError {
	return &InternalError{Category: CategoryInternal, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// NewGeneratorError reports a malformed generator state machine (§8
// Testable Property 2: "every terminator reachable from state 0
// references only ids in that range").
func NewGeneratorError(format string, args ...any) *InternalError {
	return &InternalError{Category: CategoryGenerator, Message: fmt.Sprintf(format, args...)}
}

// NewEmbeddingError reports a host misusing the §6 embedding interface
// (e.g. calling Construct with a non-constructor Function).
func NewEmbeddingError(format string, args ...any) *InternalError {
	return &InternalError{Category: CategoryEmbedding, Message: fmt.Sprintf(format, args...)}
}
