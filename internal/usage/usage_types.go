package usage

import "time"

// Event is a single completed unit of work: a tool call or a pipeline step.
type Event struct {
	Operation  string
	Success    bool
	Operations int
	TypeChecks int
	Duration   time.Duration
}

// AggregatedStats holds counters broken down by operation.
type AggregatedStats struct {
	Total        Counts            `json:"total"`
	ByOperation  map[string]Counts `json:"by_operation"`
	PipelineRuns Counts            `json:"pipeline_runs"`
}

// Counts holds sums for one dimension.
type Counts struct {
	Calls      int64         `json:"calls"`
	Failures   int64         `json:"failures"`
	Operations int64         `json:"operations"`
	TypeChecks int64         `json:"type_checks"`
	Duration   time.Duration `json:"duration"`
}

// Add folds an event into the counts.
func (c *Counts) Add(e Event) {
	c.Calls++
	if !e.Success {
		c.Failures++
	}
	c.Operations += int64(e.Operations)
	c.TypeChecks += int64(e.TypeChecks)
	c.Duration += e.Duration
}
