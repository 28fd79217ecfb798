// Package harness assembles pipelines out of registered tools.
//
// A tool step calls one registry tool with arguments derived from the
// previous step's output, so any registered operation can take part in an
// orchestrated run.
package harness

import (
	"context"

	"go.uber.org/zap"

	"shapeshift/internal/pipeline"
	"shapeshift/internal/tools"
	"shapeshift/internal/tools/core"
	"shapeshift/internal/types"
)

// ArgsFunc builds a tool's arguments from the step input and run context.
type ArgsFunc func(input any, rc pipeline.RunContext) map[string]any

// ToolStep returns a pipeline step named name that executes tool through
// reg.
func ToolStep(reg *tools.Registry, name, tool string, args ArgsFunc) pipeline.Step {
	return pipeline.Step{
		Name: name,
		Handler: func(ctx context.Context, input any, rc pipeline.RunContext) (*types.Result, error) {
			return reg.Execute(ctx, tool, args(input, rc))
		},
	}
}

// StandardOptions configures StandardPipeline.
type StandardOptions struct {
	// Transforms applied by the transform step, in order.
	Transforms []string
	// Depth used by the wrap step.
	Depth int
	// Validate is an optional expression checked after the transforms.
	Validate   string
	MaxRetries int
	ErrorHook  pipeline.ErrorHook
	Logger     *zap.Logger
}

// Standard step names.
const (
	StepTransform = "transform"
	StepWrap      = "wrap"
	StepAnalyze   = "analyze"
)

// StandardPipeline builds the transform → wrap → analyze pipeline. The
// transform step runs a compose chain, the wrap step wraps its string output
// to Depth, and the analyze step flattens the wrapped chain into a type map.
func StandardPipeline(reg *tools.Registry, opts StandardOptions) (*pipeline.Orchestrator, error) {
	transforms := make([]any, len(opts.Transforms))
	for i, t := range opts.Transforms {
		transforms[i] = t
	}

	steps := []pipeline.Step{
		ToolStep(reg, StepTransform, core.ToolCompose, func(input any, rc pipeline.RunContext) map[string]any {
			args := map[string]any{
				"value":      input,
				"transforms": transforms,
				"name":       StepTransform,
				"complexity": rc.Complexity,
			}
			if opts.Validate != "" {
				args["validate"] = opts.Validate
			}
			return args
		}),
		ToolStep(reg, StepWrap, core.ToolWrap, func(input any, rc pipeline.RunContext) map[string]any {
			return map[string]any{"value": input, "depth": opts.Depth}
		}),
		ToolStep(reg, StepAnalyze, core.ToolAnalyzeTypes, func(input any, rc pipeline.RunContext) map[string]any {
			return map[string]any{"value": input}
		}),
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithName("standard"),
		pipeline.WithMaxRetries(opts.MaxRetries),
		pipeline.WithErrorHook(opts.ErrorHook),
		pipeline.WithLogger(opts.Logger),
	}
	return pipeline.New(steps, pipeOpts...)
}
