package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shapeshift/internal/harness"
	"shapeshift/internal/perception"
	"shapeshift/internal/pipeline"
	"shapeshift/internal/tools/core"
)

var (
	pipelineValue      string
	pipelineTransforms string
	pipelineDepth      int
	pipelineComplexity int
	pipelineValidate   string
)

// pipelineCmd runs the standard transform → wrap → analyze pipeline
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the transform, wrap and analyze steps over a value",
	Long: `Runs the standard pipeline: the value is passed through a transform chain,
the result is wrapped to --depth, and the wrapped chain is flattened into a
path-to-type map. The first failing step ends the run.

When pipeline.retry_on_failure is set in the config, a failing step is
retried up to pipeline.max_retries times.`,
	Example: `  shapeshift pipeline --value hello --transforms uppercase,reverse --depth 2
  shapeshift pipeline --value '{"a":1}' --transforms jsonify -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transforms := cfg.Engine.DefaultTransforms
		if cmd.Flags().Changed("transforms") {
			transforms = nil
			for _, t := range splitTransforms(pipelineTransforms) {
				transforms = append(transforms, t.(string))
			}
		}
		depth := cfg.Engine.DefaultDepth
		if cmd.Flags().Changed("depth") {
			depth = pipelineDepth
		}
		complexity := cfg.Engine.Complexity
		if cmd.Flags().Changed("complexity") {
			complexity = pipelineComplexity
		}

		log := logger.Named("pipeline")
		retryOnFailure := cfg.Pipeline.RetryOnFailure
		orch, err := harness.StandardPipeline(registry, harness.StandardOptions{
			Transforms: transforms,
			Depth:      cfg.ClampDepth(depth),
			Validate:   pipelineValidate,
			MaxRetries: cfg.Pipeline.MaxRetries,
			ErrorHook: func(err error, snap pipeline.Snapshot) bool {
				log.Info("step failure reported",
					zap.String("step", snap.Step),
					zap.Int("attempt", snap.Attempt),
					zap.Bool("retry", retryOnFailure),
					zap.Error(err))
				return retryOnFailure
			},
			Logger: log,
		})
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res := orch.Run(ctx, parseValue(pipelineValue), complexity)
		return emit(cmd.OutOrStdout(), newPipelineReport(cmd.Name(), res), res.Err)
	},
}

// runCmd resolves a free-text instruction into a single transform
var runCmd = &cobra.Command{
	Use:   "run <instruction>",
	Short: "Resolve a free-text instruction and apply the transform it names",
	Long: `Picks a transform from keywords in the instruction (upper, reverse, json,
base64; uppercase when none match) and extracts the payload: quoted text
first, then a {...} object, then true/false, then the remaining words.`,
	Example: `  shapeshift run "reverse 'hello world'"
  shapeshift run 'convert {"a": 1} to json'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := perception.Resolve(strings.Join(args, " "))
		if err != nil {
			return err
		}
		logger.Debug("instruction resolved",
			zap.String("transform", task.Transform.String()),
			zap.Bool("matched", task.Matched),
			zap.String("rule", string(task.Rule)))

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := registry.Execute(ctx, core.ToolDataTransform, map[string]any{
			"value": task.Payload,
			"type":  task.Transform.String(),
		})
		r := newReport(cmd.Name(), res)
		if r.Metadata == nil {
			r.Metadata = map[string]any{}
		}
		r.Metadata["task.transform"] = task.Transform.String()
		r.Metadata["task.matched"] = task.Matched
		r.Metadata["task.rule"] = string(task.Rule)
		return emit(cmd.OutOrStdout(), r, err)
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineValue, "value", "", "Input value (JSON, or a plain string)")
	_ = pipelineCmd.MarkFlagRequired("value")
	pipelineCmd.Flags().StringVar(&pipelineTransforms, "transforms", "", "Comma-separated transform names (defaults to engine.default_transforms)")
	pipelineCmd.Flags().IntVarP(&pipelineDepth, "depth", "d", core.DefaultDepth, "Wrap depth (defaults to engine.default_depth)")
	pipelineCmd.Flags().IntVar(&pipelineComplexity, "complexity", 1, "Run complexity (defaults to engine.complexity)")
	pipelineCmd.Flags().StringVar(&pipelineValidate, "validate", "", "Boolean expression checked after the transforms")
}
