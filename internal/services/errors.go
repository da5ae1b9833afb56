package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for broad classification; the typed errors below match them
// with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("hazard zone not found")
	ErrNoActiveEdit = errors.New("no edit in progress")
)

// ValidationError lists every problem found in a draft or import.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports an operation on an unknown zone id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
