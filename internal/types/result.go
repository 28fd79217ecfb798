package types

import "time"

// Metrics records timing and work counters for one unit of work.
type Metrics struct {
	StartTime  time.Time     `json:"startTime" yaml:"start_time"`
	EndTime    time.Time     `json:"endTime" yaml:"end_time"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Operations int           `json:"operations" yaml:"operations"`
	TypeChecks int           `json:"typeChecks" yaml:"type_checks"`
}

// StartMetrics opens a metrics record at the current instant.
func StartMetrics() Metrics {
	return Metrics{StartTime: time.Now()}
}

// Finish closes the record and stores the elapsed time.
func (m *Metrics) Finish() {
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
}

// Result is the uniform shape returned by every tool invocation and pipeline
// step. A failed Result carries Err, a nil Value and zero work counters.
type Result struct {
	Success  bool           `json:"success" yaml:"success"`
	Value    any            `json:"result,omitempty" yaml:"result,omitempty"`
	Err      error          `json:"-" yaml:"-"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Metrics  Metrics        `json:"metrics" yaml:"metrics"`
}

// Succeeded builds a successful Result.
func Succeeded(value any, metadata map[string]any, metrics Metrics) *Result {
	return &Result{
		Success:  true,
		Value:    value,
		Metadata: metadata,
		Metrics:  metrics,
	}
}

// Failed builds a failed Result. Work counters are zeroed and only timing
// survives from metrics.
func Failed(err error, metrics Metrics) *Result {
	metrics.Operations = 0
	metrics.TypeChecks = 0
	return &Result{
		Success: false,
		Err:     err,
		Metrics: metrics,
	}
}

// ErrorMessage returns the failure message, or "" for a successful Result.
func (r *Result) ErrorMessage() string {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
