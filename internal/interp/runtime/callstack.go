package runtime

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// DefaultMaxCallDepth bounds recursion so a runaway script function
// fails with a catchable RangeError instead of exhausting the host
// stack (§7 "RangeError").
const DefaultMaxCallDepth = 2048

// StackFrame records one active call for diagnostics and
// Error().stack-style reporting.
type StackFrame struct {
	FunctionName string
	Position     token.Position
}

func (f StackFrame) String() string {
	if f.Position.IsValid() {
		return fmt.Sprintf("    at %s (%s)", f.FunctionName, f.Position)
	}
	return fmt.Sprintf("    at %s", f.FunctionName)
}

// CallStack tracks active function activations (§4.6), ported near-
// directly from the teacher's push/pop-with-max-depth-guard idiom.
type CallStack struct {
	frames   []StackFrame
	maxDepth int
}

// NewCallStack creates a call stack bounded at maxDepth frames. A
// non-positive maxDepth falls back to DefaultMaxCallDepth.
func NewCallStack(maxDepth int) *CallStack {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxCallDepth
	}
	return &CallStack{maxDepth: maxDepth}
}

// Push records a new activation. ok is false when this push would
// exceed maxDepth; the caller should surface a RangeError instead of
// recursing.
func (cs *CallStack) Push(functionName string, pos token.Position) (ok bool) {
	if len(cs.frames) >= cs.maxDepth {
		return false
	}
	cs.frames = append(cs.frames, StackFrame{FunctionName: functionName, Position: pos})
	return true
}

// Pop removes the most recent frame; a no-op on an empty stack.
func (cs *CallStack) Pop() {
	if len(cs.frames) > 0 {
		cs.frames = cs.frames[:len(cs.frames)-1]
	}
}

// Depth reports the current activation count.
func (cs *CallStack) Depth() int { return len(cs.frames) }

// WillOverflow reports whether one more Push would exceed maxDepth.
func (cs *CallStack) WillOverflow() bool { return len(cs.frames) >= cs.maxDepth }

// Current returns the innermost frame, or nil if the stack is empty.
func (cs *CallStack) Current() *StackFrame {
	if len(cs.frames) == 0 {
		return nil
	}
	return &cs.frames[len(cs.frames)-1]
}

// String renders the stack newest-to-oldest, one frame per line,
// matching the conventional "at fn (pos)" trace format.
func (cs *CallStack) String() string {
	var b strings.Builder
	for i := len(cs.frames) - 1; i >= 0; i-- {
		b.WriteString(cs.frames[i].String())
		if i > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
