package pipeline

import (
	"errors"
	"fmt"
)

// Pipeline errors.
var (
	// ErrStepFailure wraps any failure raised inside a step handler.
	ErrStepFailure = errors.New("pipeline step failed")

	// ErrNoSteps is returned by New when the step list is empty.
	ErrNoSteps = errors.New("pipeline has no steps")

	// ErrInvalidStep is returned by New for a step without name or handler.
	ErrInvalidStep = errors.New("invalid pipeline step")
)

// StepError reports which step failed and on which attempt.
type StepError struct {
	Step    string
	Index   int
	Attempt int
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed on attempt %d: %v", e.Index, e.Step, e.Attempt, e.Err)
}

// Unwrap exposes both ErrStepFailure and the underlying cause.
func (e *StepError) Unwrap() []error {
	return []error{ErrStepFailure, e.Err}
}
