package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, c Config) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	InitializeWithLogger(zap.New(core), c)
	t.Cleanup(CloseAll)
	return logs
}

func TestGet_DisabledWithoutDebugMode(t *testing.T) {
	logs := observe(t, Config{DebugMode: false})

	Get(CategoryTools).Info("should not appear")
	ToolsDebug("nor this")

	assert.False(t, IsDebugMode())
	assert.False(t, IsCategoryEnabled(CategoryTools))
	assert.Zero(t, logs.Len())
}

func TestGet_AllCategoriesWhenNoFilter(t *testing.T) {
	logs := observe(t, Config{DebugMode: true})

	for _, cat := range []Category{
		CategoryBoot, CategoryTools, CategoryPipeline, CategoryTransform,
		CategoryStructure, CategoryPerception, CategoryUsage,
	} {
		assert.True(t, IsCategoryEnabled(cat), "category %s", cat)
		Get(cat).Info("hello from %s", cat)
	}

	require.Equal(t, 7, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "boot", first.LoggerName)
	assert.Equal(t, "hello from boot", first.Message)
}

func TestGet_CategoryFilter(t *testing.T) {
	logs := observe(t, Config{
		DebugMode:  true,
		Categories: map[string]bool{"tools": false, "pipeline": true},
	})

	Tools("hidden")
	Pipeline("shown")
	BootDebug("unlisted categories default to enabled")

	assert.False(t, IsCategoryEnabled(CategoryTools))
	assert.True(t, IsCategoryEnabled(CategoryPipeline))
	assert.True(t, IsCategoryEnabled(CategoryBoot))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestGet_Cached(t *testing.T) {
	observe(t, Config{DebugMode: true})
	assert.Same(t, Get(CategoryUsage), Get(CategoryUsage))
}

func TestLogger_WithAndStructured(t *testing.T) {
	logs := observe(t, Config{DebugMode: true})

	Get(CategoryPipeline).With("run_id", "r1").Warn("step %d failed", 2)
	Get(CategoryPipeline).StructuredLog("error", "run aborted", map[string]any{"step": "wrap"})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "step 2 failed", entries[0].Message)
	assert.Equal(t, "r1", entries[0].ContextMap()["run_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "wrap", entries[1].ContextMap()["step"])
}

func TestInitialize_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapeshift.log")
	require.NoError(t, Initialize(Config{DebugMode: true, Level: "debug", JSONFormat: true, File: path}))
	t.Cleanup(CloseAll)

	assert.True(t, IsDebugMode())
	Pipeline("written")
	CloseAll()

	assert.FileExists(t, path)
}

func TestInitialize_DisabledIsSilent(t *testing.T) {
	require.NoError(t, Initialize(Config{DebugMode: false}))
	t.Cleanup(CloseAll)
	assert.False(t, IsDebugMode())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}
