// Package token carries source-position information for AST nodes.
// The front end that produces an AST (out of scope for this module) is
// expected to populate these positions; the evaluator only reads them,
// mainly to annotate thrown errors.
package token

import "fmt"

// Position identifies a single location in a source file.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, in UTF-16 code units
}

// String renders the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position was ever set.
func (p Position) IsValid() bool {
	return p.Line > 0
}
