// ABOUTME: Error values reported by the collector
// ABOUTME: All of them are fatal for the calling runtime

package gc

import "errors"

var (
	// ErrOutOfMemory is returned when an allocation cannot be satisfied even
	// after a collection
	ErrOutOfMemory = errors.New("out of memory")

	// ErrRootOverflow is returned when the root stack is full
	ErrRootOverflow = errors.New("out of space for roots")

	// ErrRootUnderflow is returned when popping an empty root stack
	ErrRootUnderflow = errors.New("root stack is empty")

	// ErrRootMismatch is returned in checked mode when roots are popped out of order
	ErrRootMismatch = errors.New("root popped out of order")

	// ErrNilRoot is returned when a nil slot is registered as a root
	ErrNilRoot = errors.New("nil root slot")

	// ErrInvalidSize is returned for allocation sizes that cannot hold an
	// object with at least one field
	ErrInvalidSize = errors.New("invalid allocation size")

	// ErrInvalidConfig is returned when the configuration cannot describe a heap
	ErrInvalidConfig = errors.New("invalid collector configuration")
)
