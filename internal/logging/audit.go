package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names what an audit record describes.
type AuditEventType string

const (
	// Tool execution
	AuditToolComplete AuditEventType = "tool_complete"
	AuditToolError    AuditEventType = "tool_error"

	// Pipeline steps and runs
	AuditStepComplete     AuditEventType = "step_complete"
	AuditStepError        AuditEventType = "step_error"
	AuditPipelineComplete AuditEventType = "pipeline_complete"
	AuditPipelineError    AuditEventType = "pipeline_error"

	// Free-text resolution
	AuditInstructionResolved AuditEventType = "instruction_resolved"
)

// =============================================================================
// AUDIT EVENT STRUCTURE
// =============================================================================

// AuditEvent is one line of the audit trail. The json tags name the keys
// MarshalLogObject writes, so a line decodes back into an AuditEvent.
type AuditEvent struct {
	Timestamp  int64          `json:"ts"`     // Unix milliseconds
	EventType  AuditEventType `json:"event"`
	Category   string         `json:"cat"`    // Log category
	RunID      string         `json:"run"`    // Pipeline run correlation
	Target     string         `json:"target"` // Tool, step or pipeline name
	Action     string         `json:"action"` // What was done to the target
	Success    bool           `json:"success"`
	DurationMs int64          `json:"dur_ms"`
	Error      string         `json:"error"`
	Fields     map[string]any `json:"fields"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e AuditEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("ts", e.Timestamp)
	enc.AddString("event", string(e.EventType))
	enc.AddString("cat", e.Category)
	enc.AddString("run", e.RunID)
	enc.AddString("target", e.Target)
	enc.AddString("action", e.Action)
	enc.AddBool("success", e.Success)
	enc.AddInt64("dur_ms", e.DurationMs)
	enc.AddString("error", e.Error)
	return enc.AddReflected("fields", e.Fields)
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditMu    sync.Mutex
	auditSink  *zap.Logger
	auditClose func()
)

// AuditLogger writes audit events tagged with a category and an optional
// run ID.
type AuditLogger struct {
	runID    string
	category Category
}

// InitAudit opens path as a JSON-lines audit trail. An empty path leaves
// auditing off. The audit trail is independent of debug_mode.
func InitAudit(path string) error {
	auditMu.Lock()
	defer auditMu.Unlock()

	closeAuditLocked()
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}
	ws, closeFn, err := zap.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		LineEnding: zapcore.DefaultLineEnding,
	})
	auditSink = zap.New(zapcore.NewCore(enc, ws, zapcore.DebugLevel))
	auditClose = closeFn
	return nil
}

// CloseAudit flushes and closes the audit trail.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	closeAuditLocked()
}

func closeAuditLocked() {
	if auditSink != nil {
		_ = auditSink.Sync()
	}
	if auditClose != nil {
		auditClose()
	}
	auditSink = nil
	auditClose = nil
}

// Audit returns an audit logger with no run correlation.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithRun returns an audit logger that stamps events with runID.
func AuditWithRun(runID string) *AuditLogger {
	return &AuditLogger{runID: runID, category: CategoryPipeline}
}

// =============================================================================
// AUDIT LOGGING METHODS
// =============================================================================

// Log writes an audit event. It is a no-op when auditing is off.
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditSink == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.RunID == "" {
		event.RunID = a.runID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}
	if event.Fields == nil {
		event.Fields = map[string]any{}
	}

	// The encoder has no message key; every field comes from the event.
	auditSink.Info("", zap.Inline(event))
}

// ToolExec records one tool execution.
func (a *AuditLogger) ToolExec(tool string, duration time.Duration, success bool, errMsg string, operations int) {
	eventType := AuditToolComplete
	if !success {
		eventType = AuditToolError
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Category:   string(CategoryTools),
		Target:     tool,
		Action:     "execute",
		Success:    success,
		DurationMs: duration.Milliseconds(),
		Error:      errMsg,
		Fields:     map[string]any{"operations": operations},
	})
}

// PipelineStep records one attempt of a pipeline step.
func (a *AuditLogger) PipelineStep(step string, attempt int, duration time.Duration, success bool, errMsg string) {
	eventType := AuditStepComplete
	if !success {
		eventType = AuditStepError
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     step,
		Action:     "step",
		Success:    success,
		DurationMs: duration.Milliseconds(),
		Error:      errMsg,
		Fields:     map[string]any{"attempt": attempt},
	})
}

// PipelineRun records the terminal state of a pipeline run.
func (a *AuditLogger) PipelineRun(pipeline string, steps int, duration time.Duration, success bool, errMsg string) {
	eventType := AuditPipelineComplete
	if !success {
		eventType = AuditPipelineError
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     pipeline,
		Action:     "run",
		Success:    success,
		DurationMs: duration.Milliseconds(),
		Error:      errMsg,
		Fields:     map[string]any{"steps": steps},
	})
}

// InstructionResolved records how a free-text instruction was interpreted.
func (a *AuditLogger) InstructionResolved(transform string, matched bool, rule string) {
	a.Log(AuditEvent{
		EventType: AuditInstructionResolved,
		Category:  string(CategoryPerception),
		Target:    transform,
		Action:    "resolve",
		Success:   true,
		Fields:    map[string]any{"matched": matched, "rule": rule},
	})
}
