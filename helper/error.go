package helper

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaboratorUnavailable marks a failed call to an external service
	// (LLM, embedding model or database). Callers degrade instead of aborting.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrInvalidRelation marks a relation whose endpoints are not known entities.
	ErrInvalidRelation = errors.New("invalid relation")
)

// Error wraps an error with a short trace of the operation that failed.
type Error struct {
	Trace    string
	Original error
}

// NewError wraps err with the given trace. It returns nil if err is nil.
func NewError(trace string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Trace: trace, Original: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Trace, e.Original)
}

func (e *Error) Unwrap() error {
	return e.Original
}

// ParseError is returned when a model response can not be repaired into valid JSON.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response as json: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err so that errors.Is(err, ErrCollaboratorUnavailable) holds.
func Unavailable(collaborator string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", collaborator, ErrCollaboratorUnavailable, err)
}
