// ABOUTME: Invariant violation type raised by heap internals
// ABOUTME: Invariant errors signal collector defects, never mutator errors

package object

import "fmt"

// InvariantError describes a broken heap invariant. It is raised with panic.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "heap invariant violated: " + e.Msg
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// Invariantf builds an InvariantError for callers outside this package.
func Invariantf(format string, args ...any) *InvariantError {
	return invariantf(format, args...)
}
