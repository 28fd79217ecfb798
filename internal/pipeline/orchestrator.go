package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shapeshift/internal/logging"
	"shapeshift/internal/types"
	"shapeshift/internal/usage"
)

// Orchestrator runs a fixed list of steps in order.
type Orchestrator struct {
	name       string
	steps      []Step
	hook       ErrorHook
	maxRetries int
	logger     *zap.Logger
	tracker    *usage.Tracker
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithName names the pipeline in logs.
func WithName(name string) Option {
	return func(o *Orchestrator) { o.name = name }
}

// WithErrorHook installs the hook consulted on step failure.
func WithErrorHook(h ErrorHook) Option {
	return func(o *Orchestrator) {
		if h != nil {
			o.hook = h
		}
	}
}

// WithMaxRetries bounds how many times a single step may be retried when
// the error hook asks for it. The default is 0.
func WithMaxRetries(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracker records every step and run in t.
func WithTracker(t *usage.Tracker) Option {
	return func(o *Orchestrator) { o.tracker = t }
}

// New validates steps and builds an orchestrator.
func New(steps []Step, opts ...Option) (*Orchestrator, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, s := range steps {
		if s.Name == "" || s.Handler == nil {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidStep, i)
		}
	}

	o := &Orchestrator{
		name:   "pipeline",
		steps:  append([]Step(nil), steps...),
		hook:   DeclineRetry,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Steps returns the step names in execution order.
func (o *Orchestrator) Steps() []string {
	names := make([]string, len(o.steps))
	for i, s := range o.steps {
		names[i] = s.Name
	}
	return names
}

// Run executes every step in order, feeding each step's output to the
// next. The first failure terminates the run after consulting the error
// hook. Run never panics on step failure and always returns a Result.
func (o *Orchestrator) Run(ctx context.Context, input any, complexity int) *Result {
	rc := RunContext{
		Complexity: complexity,
		StartTime:  o.now(),
		RunID:      uuid.NewString(),
	}
	log := o.logger.With(
		zap.String("pipeline", o.name),
		zap.String("run_id", rc.RunID),
	)
	if tracker := usage.FromContext(ctx); tracker != nil && o.tracker == nil {
		o = o.withTracker(tracker)
	}

	metrics := types.Metrics{StartTime: rc.StartTime}
	records := make([]StepRecord, 0, len(o.steps))
	current := input
	totalOps, totalChecks := 0, 0

	log.Debug("pipeline started", zap.Int("steps", len(o.steps)), zap.Int("complexity", complexity))
	logging.PipelineDebug("run %s: %s started with %d steps", rc.RunID, o.name, len(o.steps))

	for i, step := range o.steps {
		if err := ctx.Err(); err != nil {
			log.Warn("pipeline cancelled", zap.String("before_step", step.Name), zap.Error(err))
			return o.fail(err, metrics, rc)
		}

		res, attempts, err := o.runStep(ctx, i, step, current, rc, log)
		if err != nil {
			return o.fail(err, metrics, rc)
		}

		records = append(records, StepRecord{Name: step.Name, Attempts: attempts, Metrics: res.Metrics})
		totalOps += res.Metrics.Operations
		totalChecks += res.Metrics.TypeChecks
		current = res.Value
	}

	metrics.EndTime = o.now()
	metrics.Duration = metrics.EndTime.Sub(metrics.StartTime)
	metrics.Operations = totalOps
	metrics.TypeChecks = totalChecks

	log.Info("pipeline completed",
		zap.Int("steps", len(records)),
		zap.Int("operations", totalOps),
		zap.Duration("duration", metrics.Duration))
	o.tracker.TrackPipeline(usage.Event{
		Operation:  o.name,
		Success:    true,
		Operations: totalOps,
		TypeChecks: totalChecks,
		Duration:   metrics.Duration,
	})
	logging.AuditWithRun(rc.RunID).PipelineRun(o.name, len(records), metrics.Duration, true, "")
	logging.Pipeline("run %s: %s completed in %v", rc.RunID, o.name, metrics.Duration)
	if logging.IsCategoryEnabled(logging.CategoryPipeline) {
		logStepSummary(rc.RunID, records)
	}

	return &Result{
		Result: types.Result{
			Success: true,
			Value:   current,
			Metadata: map[string]any{
				"pipeline":   o.name,
				"complexity": complexity,
			},
			Metrics: metrics,
		},
		Steps:           len(records),
		TotalOperations: totalOps,
		TotalTypeChecks: totalChecks,
		PipelineSteps:   records,
		RunID:           rc.RunID,
	}
}

// runStep executes one step, retrying while the hook asks and the retry
// budget allows. It returns the successful result and the number of
// attempts, or the final StepError.
func (o *Orchestrator) runStep(ctx context.Context, index int, step Step, input any, rc RunContext, log *zap.Logger) (*types.Result, int, error) {
	for attempt := 1; ; attempt++ {
		res, err := o.invoke(ctx, step, input, rc)
		failed := err != nil || res == nil || !res.Success

		o.tracker.Track(usage.Event{
			Operation:  step.Name,
			Success:    !failed,
			Operations: operations(res, failed),
			TypeChecks: typeChecks(res, failed),
			Duration:   duration(res),
		})
		errMsg := ""
		if failed {
			errMsg = causeOf(res, err).Error()
		}
		logging.AuditWithRun(rc.RunID).PipelineStep(step.Name, attempt, duration(res), !failed, errMsg)

		if !failed {
			log.Debug("step completed",
				zap.String("step", step.Name),
				zap.Int("attempt", attempt),
				zap.Int("operations", res.Metrics.Operations))
			return res, attempt, nil
		}

		stepErr := &StepError{Step: step.Name, Index: index, Attempt: attempt, Err: causeOf(res, err)}
		log.Warn("step failed", zap.String("step", step.Name), zap.Int("attempt", attempt), zap.Error(stepErr.Err))
		logging.PipelineWarn("run %s: step %s failed on attempt %d: %v", rc.RunID, step.Name, attempt, stepErr.Err)

		retry := o.hook(stepErr, Snapshot{LastResult: input, Step: step.Name, Attempt: attempt})
		if !retry || attempt > o.maxRetries {
			return nil, attempt, stepErr
		}
		log.Info("retrying step", zap.String("step", step.Name), zap.Int("next_attempt", attempt+1))
	}
}

// invoke calls the handler, converting a panic into an error so a broken
// step terminates the run instead of the process.
func (o *Orchestrator) invoke(ctx context.Context, step Step, input any, rc RunContext) (res *types.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return step.Handler(ctx, input, rc)
}

func (o *Orchestrator) fail(err error, metrics types.Metrics, rc RunContext) *Result {
	metrics.EndTime = o.now()
	metrics.Duration = metrics.EndTime.Sub(metrics.StartTime)

	o.tracker.TrackPipeline(usage.Event{Operation: o.name, Success: false, Duration: metrics.Duration})
	logging.AuditWithRun(rc.RunID).PipelineRun(o.name, 0, metrics.Duration, false, err.Error())
	logging.PipelineError("run %s: %s failed: %v", rc.RunID, o.name, err)

	return &Result{
		Result:        *types.Failed(err, metrics),
		PipelineSteps: []StepRecord{},
		RunID:         rc.RunID,
	}
}

// logStepSummary writes one structured entry per completed step.
func logStepSummary(runID string, records []StepRecord) {
	l := logging.Get(logging.CategoryPipeline)
	for i, r := range records {
		l.StructuredLog("debug", "step summary", map[string]any{
			"run_id":      runID,
			"index":       i,
			"step":        r.Name,
			"attempts":    r.Attempts,
			"operations":  r.Metrics.Operations,
			"type_checks": r.Metrics.TypeChecks,
		})
	}
}

func (o *Orchestrator) withTracker(t *usage.Tracker) *Orchestrator {
	clone := *o
	clone.tracker = t
	return &clone
}

func causeOf(res *types.Result, err error) error {
	switch {
	case err != nil:
		return err
	case res == nil:
		return errors.New("step returned no result")
	case res.Err != nil:
		return res.Err
	default:
		return errors.New("step reported failure")
	}
}

func operations(res *types.Result, failed bool) int {
	if failed || res == nil {
		return 0
	}
	return res.Metrics.Operations
}

func typeChecks(res *types.Result, failed bool) int {
	if failed || res == nil {
		return 0
	}
	return res.Metrics.TypeChecks
}

func duration(res *types.Result) time.Duration {
	if res == nil {
		return 0
	}
	return res.Metrics.Duration
}
