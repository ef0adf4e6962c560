package notes

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("notes: validation failed")
	ErrNotFound   = errors.New("notes: note not found")
	ErrCorrupt    = errors.New("notes: stored state is corrupt")
	ErrWrite      = errors.New("notes: persistence write failed")
)

// CorruptionError reports durable state that could not be decoded. The store
// recovers from it as an empty, unseeded collection.
type CorruptionError struct {
	Key string
	Err error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("notes: stored state under %q is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptionError) Unwrap() []error { return []error{ErrCorrupt, e.Err} }

// WriteError reports a failed write of the collection. Nothing is retried.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("notes: %s: write failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }
