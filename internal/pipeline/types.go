// Package pipeline runs a fixed, ordered list of named steps. Each step
// consumes the previous step's output together with a read-only run
// context. The first failing step terminates the run.
//
// A run has two states, RUNNING and TERMINATED; success or failure is an
// attribute of the terminal state. Steps never overlap.
package pipeline

import (
	"context"
	"time"

	"shapeshift/internal/types"
)

// RunContext is shared by every step of one run. It is passed by value so
// steps cannot change what later steps observe.
type RunContext struct {
	Complexity int
	StartTime  time.Time
	RunID      string
}

// Handler executes one step. A step fails if it returns an error or a
// Result whose Success is false.
type Handler func(ctx context.Context, input any, rc RunContext) (*types.Result, error)

// Step is one named unit of pipeline work.
type Step struct {
	Name    string
	Handler Handler
}

// Snapshot is handed to the error hook when a step fails.
type Snapshot struct {
	// LastResult is the input the failing step was given, i.e. the last
	// good output.
	LastResult any
	Step       string
	Attempt    int
}

// ErrorHook is told about every step failure. Returning true asks the
// orchestrator to retry the step; the request is honoured only while the
// retry budget lasts.
type ErrorHook func(err error, snap Snapshot) (retry bool)

// DeclineRetry is the default hook. It never retries.
func DeclineRetry(error, Snapshot) bool { return false }

// StepRecord is the timing entry kept for each completed step.
type StepRecord struct {
	Name     string        `json:"name" yaml:"name"`
	Attempts int           `json:"attempts" yaml:"attempts"`
	Metrics  types.Metrics `json:"metrics" yaml:"metrics"`
}

// Result is the outcome of a run. On failure Value is nil and
// PipelineSteps is empty.
type Result struct {
	types.Result
	Steps           int          `json:"steps" yaml:"steps"`
	TotalOperations int          `json:"totalOperations" yaml:"total_operations"`
	TotalTypeChecks int          `json:"totalTypeChecks" yaml:"total_type_checks"`
	PipelineSteps   []StepRecord `json:"pipelineSteps" yaml:"pipeline_steps"`
	RunID           string       `json:"runId" yaml:"run_id"`
}
