// Package logging provides config-driven categorized logging for shapeshift.
// Each category gets a named child of a single zap logger. Logging is
// controlled by debug_mode - when false, every category logger is a no-op.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and configuration
	CategoryTools      Category = "tools"      // Tool registration and execution
	CategoryPipeline   Category = "pipeline"   // Pipeline runs and step outcomes
	CategoryTransform  Category = "transform"  // Transform chains
	CategoryStructure  Category = "structure"  // Wrapping and type analysis
	CategoryPerception Category = "perception" // Free text -> task resolution
	CategoryUsage      Category = "usage"      // Operation accounting
)

// Config mirrors config.LoggingConfig to avoid circular imports.
type Config struct {
	DebugMode  bool
	Level      string
	JSONFormat bool
	File       string
	Categories map[string]bool
	// AuditFile enables the JSON-lines audit trail when set.
	AuditFile string
}

// Logger is a category-scoped printf-style logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    *zap.Logger
	cfg     Config
	loggers = make(map[Category]*Logger)
)

// Initialize builds the root zap logger from c. With DebugMode off no
// logger is built and every category stays silent.
func Initialize(c Config) error {
	if err := InitAudit(c.AuditFile); err != nil {
		return err
	}
	if !c.DebugMode {
		InitializeWithLogger(nil, c)
		return nil
	}

	zc := zap.NewProductionConfig()
	if !c.JSONFormat {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(parseLevel(c.Level))
	zc.Sampling = nil
	if c.File != "" {
		zc.OutputPaths = []string{c.File}
	} else {
		zc.OutputPaths = []string{"stderr"}
	}

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	InitializeWithLogger(l, c)

	boot := Get(CategoryBoot)
	boot.Info("logging initialized (level=%s, json=%v)", parseLevel(c.Level), c.JSONFormat)
	if len(c.Categories) > 0 {
		enabled := 0
		for _, on := range c.Categories {
			if on {
				enabled++
			}
		}
		boot.Debug("enabled categories: %d/%d", enabled, len(c.Categories))
	}
	return nil
}

// InitializeWithLogger installs l as the root logger. A nil l disables
// logging. Tests use this with an observer core.
func InitializeWithLogger(l *zap.Logger, c Config) {
	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		_ = base.Sync()
	}
	base = l
	cfg = c
	loggers = make(map[Category]*Logger)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether logging is enabled at all.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode && base != nil
}

// IsCategoryEnabled returns whether a specific category is enabled.
// Categories missing from the filter are enabled.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if !cfg.DebugMode || base == nil {
		return false
	}
	if cfg.Categories == nil {
		return true
	}
	enabled, exists := cfg.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	l := &Logger{sugar: zap.NewNop().Sugar()}
	if categoryEnabled(category) {
		l.sugar = base.Named(string(category)).Sugar()
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) { l.sugar.Debugf(format, args...) }

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) { l.sugar.Infof(format, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) { l.sugar.Warnf(format, args...) }

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) { l.sugar.Errorf(format, args...) }

// With returns a logger that attaches key-value pairs to every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// StructuredLog writes a message with structured fields at the given level.
func (l *Logger) StructuredLog(level string, msg string, fields map[string]any) {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch parseLevel(level) {
	case zapcore.DebugLevel:
		l.sugar.Debugw(msg, kv...)
	case zapcore.WarnLevel:
		l.sugar.Warnw(msg, kv...)
	case zapcore.ErrorLevel:
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// CloseAll flushes the root logger, closes the audit trail and resets
// every category logger.
func CloseAll() {
	CloseAudit()

	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		_ = base.Sync()
	}
	base = nil
	cfg = Config{}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...any) { Get(CategoryBoot).Info(format, args...) }

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...any) { Get(CategoryBoot).Debug(format, args...) }

// Tools logs to the tools category
func Tools(format string, args ...any) { Get(CategoryTools).Info(format, args...) }

// ToolsDebug logs debug to the tools category
func ToolsDebug(format string, args ...any) { Get(CategoryTools).Debug(format, args...) }

// ToolsWarn logs warning to the tools category
func ToolsWarn(format string, args ...any) { Get(CategoryTools).Warn(format, args...) }

// Pipeline logs to the pipeline category
func Pipeline(format string, args ...any) { Get(CategoryPipeline).Info(format, args...) }

// PipelineDebug logs debug to the pipeline category
func PipelineDebug(format string, args ...any) { Get(CategoryPipeline).Debug(format, args...) }

// PipelineWarn logs warning to the pipeline category
func PipelineWarn(format string, args ...any) { Get(CategoryPipeline).Warn(format, args...) }

// PipelineError logs error to the pipeline category
func PipelineError(format string, args ...any) { Get(CategoryPipeline).Error(format, args...) }

// TransformDebug logs debug to the transform category
func TransformDebug(format string, args ...any) { Get(CategoryTransform).Debug(format, args...) }

// StructureDebug logs debug to the structure category
func StructureDebug(format string, args ...any) { Get(CategoryStructure).Debug(format, args...) }

// PerceptionDebug logs debug to the perception category
func PerceptionDebug(format string, args ...any) { Get(CategoryPerception).Debug(format, args...) }

// UsageDebug logs debug to the usage category
func UsageDebug(format string, args ...any) { Get(CategoryUsage).Debug(format, args...) }
