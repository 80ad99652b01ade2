package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	ErrDuplicateMark = errors.New("attendance already marked")
	ErrPrecondition  = errors.New("attendance precondition not met")
	ErrTransient     = errors.New("transient portal error")
)

type MarkFailure string

const (
	MarkFailureDuplicate    MarkFailure = "duplicate"
	MarkFailurePrecondition MarkFailure = "precondition"
	MarkFailureTransient    MarkFailure = "transient"
	MarkFailureNotFound     MarkFailure = "not_found"
)

// MarkError is the structured failure returned by an attendance submission.
// Kind is one of ErrDuplicateMark, ErrPrecondition, ErrTransient or
// ErrSessionNotFound.
type MarkError struct {
	Kind   error
	Reason string
	Err    error
}

func NewMarkError(kind error, reason string, err error) *MarkError {
	return &MarkError{Kind: kind, Reason: reason, Err: err}
}

func (e *MarkError) Error() string {
	msg := e.Kind.Error()
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *MarkError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ClassifyMarkError maps any submission error to exactly one failure kind.
// Errors with no recognizable kind degrade to transient.
func ClassifyMarkError(err error) MarkFailure {
	switch {
	case errors.Is(err, ErrDuplicateMark):
		return MarkFailureDuplicate
	case errors.Is(err, ErrPrecondition):
		return MarkFailurePrecondition
	case errors.Is(err, ErrSessionNotFound):
		return MarkFailureNotFound
	default:
		return MarkFailureTransient
	}
}

func PreconditionReason(err error) string {
	var markErr *MarkError
	if errors.As(err, &markErr) && markErr.Reason != "" {
		return markErr.Reason
	}
	return "signature missing"
}
