package filter

import (
	"errors"
	"fmt"
)

// ErrPresetNotFound is returned when a named preset is not registered
var ErrPresetNotFound = errors.New("filter preset not found")

type (
	// CompilationError indicates a filter expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// EvaluationError indicates a filter could not be evaluated against a record
	EvaluationError struct {
		Expression string
		RecordID   string
		Err        error
	}
)

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation error in '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("evaluation error for '%s': %v", e.Expression, e.Err)
	}
	return fmt.Sprintf("evaluation error for '%s' on record '%s': %v", e.Expression, e.RecordID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
