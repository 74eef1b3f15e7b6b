package types

import "errors"

// Mapping operation errors. Implementations wrap these with the offending
// key; callers match them with errors.Is.
var (
	ErrMissingKey     = errors.New("missing key")
	ErrUnmodifiable   = errors.New("mapping is unmodifiable")
	ErrNotSupported   = errors.New("operation not supported")
	ErrKeyNotAllowed  = errors.New("key not allowed")
	ErrEmptyContainer = errors.New("container is empty")
)

// Construction errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrInternalInconsistency marks a violated data structure invariant. It is
// raised with panic, never returned.
var ErrInternalInconsistency = errors.New("internal inconsistency")
