// Package diag provides the diagnostic accumulator shared by every
// compiler phase: lexer/parser/symbol-table Errors fields that collect
// formatted strings instead of aborting on the first problem.
package diag

import (
	"fmt"
	"strings"
)

// List accumulates formatted diagnostic messages for a single phase.
// Phases never abort on the first error; the driver decides whether a
// non-empty List is fatal.
type List struct {
	messages []string
}

// Addf formats and appends a diagnostic.
func (l *List) Addf(phase string, line, col int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.messages = append(l.messages, fmt.Sprintf("%s error at %d:%d: %s", phase, line, col, msg))
}

// HasErrors reports whether any diagnostic was recorded.
func (l *List) HasErrors() bool {
	return len(l.messages) > 0
}

// All returns the recorded diagnostics in order.
func (l *List) All() []string {
	return l.messages
}

// String joins every diagnostic on its own line.
func (l *List) String() string {
	return strings.Join(l.messages, "\n")
}

// Merge appends another List's messages onto l.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.messages = append(l.messages, other.messages...)
}
