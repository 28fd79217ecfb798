package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shapeshift/internal/pipeline"
	"shapeshift/internal/shape"
	"shapeshift/internal/tools"
	"shapeshift/internal/tools/core"
	"shapeshift/internal/transform"
	"shapeshift/internal/types"
	"shapeshift/internal/usage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func registry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, core.RegisterAll(reg))
	return reg
}

func TestStandardPipeline(t *testing.T) {
	reg := registry(t)
	tracker := usage.NewTracker(nil, "")
	reg.SetTracker(tracker)

	o, err := StandardPipeline(reg, StandardOptions{
		Transforms: []string{"uppercase", "reverse"},
		Depth:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{StepTransform, StepWrap, StepAnalyze}, o.Steps())

	res := o.Run(context.Background(), "abc", 2)
	require.True(t, res.Success, res.ErrorMessage())
	assert.Equal(t, 3, res.Steps)

	m, ok := res.Value.(shape.TypeMap)
	require.True(t, ok)
	assert.Equal(t, types.TagObject, m[""])
	assert.Equal(t, types.TagString, m["value"])
	assert.Equal(t, types.TagString, m["nested.nested.value"])
	_, deeper := m["nested.nested.nested"]
	assert.False(t, deeper)

	sum := 0
	for _, rec := range res.PipelineSteps {
		sum += rec.Metrics.Operations
	}
	assert.Equal(t, sum, res.TotalOperations)

	stats := tracker.Stats()
	assert.Equal(t, int64(1), stats.ByOperation[core.ToolCompose].Calls)
	assert.Equal(t, int64(1), stats.ByOperation[core.ToolWrap].Calls)
	assert.Equal(t, int64(1), stats.ByOperation[core.ToolAnalyzeTypes].Calls)
}

func TestStandardPipeline_TransformFailureStopsRun(t *testing.T) {
	reg := registry(t)

	var hookCalls int
	var snap pipeline.Snapshot
	o, err := StandardPipeline(reg, StandardOptions{
		Transforms: []string{"uppercase"},
		Depth:      1,
		Validate:   `value == "nope"`,
		ErrorHook: func(err error, s pipeline.Snapshot) bool {
			hookCalls++
			snap = s
			return false
		},
	})
	require.NoError(t, err)

	res := o.Run(context.Background(), "abc", 1)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, pipeline.ErrStepFailure)
	assert.ErrorIs(t, res.Err, transform.ErrValidationFailure)
	assert.Empty(t, res.PipelineSteps)
	assert.Equal(t, 1, hookCalls)
	assert.Equal(t, "abc", snap.LastResult)
	assert.Equal(t, StepTransform, snap.Step)
}

func TestStandardPipeline_UnknownTransform(t *testing.T) {
	reg := registry(t)

	o, err := StandardPipeline(reg, StandardOptions{Transforms: []string{"shout"}})
	require.NoError(t, err)

	res := o.Run(context.Background(), "x", 0)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, transform.ErrUnknownTransformType)
}

func TestToolStep_MissingTool(t *testing.T) {
	reg := tools.NewRegistry()
	step := ToolStep(reg, "ghost", "missing", func(any, pipeline.RunContext) map[string]any { return nil })

	o, err := pipeline.New([]pipeline.Step{step})
	require.NoError(t, err)

	res := o.Run(context.Background(), nil, 0)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, tools.ErrToolNotFound)
}
