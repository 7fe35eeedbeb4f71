package workflow

import (
	"errors"
	"fmt"
)

// ErrConflict means the organizer key already exists; registration has no
// update-in-place path.
var ErrConflict = errors.New("organizer with this email already exists")

// ErrNotFound means the referenced organizer has never registered.
var ErrNotFound = errors.New("organizer not found")

// ValidationError is a client-caused failure: missing required input or a
// failed semantic check. Details carries per-field verdicts when present.
type ValidationError struct {
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DependencyError is a downstream service failure (embedding, completion,
// or vector store). It aborts the workflow; nothing is retried.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
