package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shapeshift/internal/tools/core"
	"shapeshift/internal/types"
)

var (
	valueFlag     string
	fileFlag      string
	depthFlag     int
	typeFlag      string
	diffFlag      bool
	transformsCSV string
	validateFlag  string
	chainName     string
)

// wrapCmd wraps a value in a nested chain
var wrapCmd = &cobra.Command{
	Use:   "wrap",
	Short: "Wrap a value in a nested chain of metadata-bearing nodes",
	Example: `  shapeshift wrap --value 42 --depth 3
  shapeshift wrap --value '{"a":[1,2]}' -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, core.ToolWrap, map[string]any{
			"value": parsedValue(cmd),
			"depth": resolveDepth(cmd),
		})
	},
}

// complexCmd builds a composite structure around a primitive
var complexCmd = &cobra.Command{
	Use:   "complex",
	Short: "Build a composite of arrays, objects and unions around a value",
	Example: `  shapeshift complex --value hello --depth 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, core.ToolCreateComplex, map[string]any{
			"value": parsedValue(cmd),
			"depth": resolveDepth(cmd),
		})
	},
}

// analyzeCmd flattens a value into a path-to-type map
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Map every path in a value to its type",
	Example: `  shapeshift analyze --value '{"a":{"b":[true,null]}}'
  shapeshift analyze --file data.yaml -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var value any
		switch {
		case fileFlag != "":
			v, err := readValueFile(fileFlag)
			if err != nil {
				return err
			}
			value = v
		case cmd.Flags().Changed("value"):
			value = parseValue(valueFlag)
		default:
			return errors.New("one of --value or --file is required")
		}
		return runTool(cmd, core.ToolAnalyzeTypes, map[string]any{"value": value})
	},
}

// transformCmd applies a single transform
var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Apply one transform (uppercase, reverse, jsonify, base64)",
	Example: `  shapeshift transform --value hello --type reverse --diff
  shapeshift transform --value '{"a":1}' --type jsonify`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := parsedValue(cmd)

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := registry.Execute(ctx, core.ToolDataTransform, map[string]any{
			"value": input,
			"type":  typeFlag,
		})
		r := newReport(cmd.Name(), res)
		if res.Success && diffFlag {
			before, after := types.Stringify(input), types.Stringify(res.Value)
			ins, del := diffStats(before, after)
			if r.Metadata == nil {
				r.Metadata = map[string]any{}
			}
			r.Metadata["inserted"] = ins
			r.Metadata["deleted"] = del
			r.Diff = newStyles(detectTheme()).renderDiff(before, after)
		}
		return emit(cmd.OutOrStdout(), r, err)
	},
}

// composeCmd runs a chain of transforms
var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Run a chain of transforms and optionally validate the result",
	Example: `  shapeshift compose --value hello --transforms uppercase,reverse,base64
  shapeshift compose --value abc --transforms reverse --validate 'len(value) == 3'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		toolArgs := map[string]any{
			"value":      parsedValue(cmd),
			"transforms": splitTransforms(transformsCSV),
			"complexity": cfg.Engine.Complexity,
		}
		if validateFlag != "" {
			toolArgs["validate"] = validateFlag
		}
		if chainName != "" {
			toolArgs["name"] = chainName
		}
		return runTool(cmd, core.ToolCompose, toolArgs)
	},
}

func init() {
	for _, c := range []*cobra.Command{wrapCmd, complexCmd, analyzeCmd, transformCmd, composeCmd} {
		c.Flags().StringVar(&valueFlag, "value", "", "Input value (JSON, or a plain string)")
	}
	wrapCmd.Flags().IntVarP(&depthFlag, "depth", "d", core.DefaultDepth, "Nesting depth (defaults to engine.default_depth)")
	complexCmd.Flags().IntVarP(&depthFlag, "depth", "d", core.DefaultDepth, "Nesting depth (defaults to engine.default_depth)")

	for _, c := range []*cobra.Command{wrapCmd, complexCmd, transformCmd, composeCmd} {
		_ = c.MarkFlagRequired("value")
	}

	analyzeCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the value from a JSON or YAML file")

	transformCmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Transform name")
	_ = transformCmd.MarkFlagRequired("type")
	transformCmd.Flags().BoolVar(&diffFlag, "diff", false, "Show a character diff of input and output")

	composeCmd.Flags().StringVar(&transformsCSV, "transforms", "", "Comma-separated transform names")
	composeCmd.Flags().StringVar(&validateFlag, "validate", "", "Boolean expression checked against the final envelope")
	composeCmd.Flags().StringVar(&chainName, "name", "", "Chain name")
}

// runTool executes a registry tool and emits its report.
func runTool(cmd *cobra.Command, tool string, toolArgs map[string]any) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	logger.Debug("executing tool", zap.String("tool", tool), zap.Int("args", len(toolArgs)))
	res, err := registry.Execute(ctx, tool, toolArgs)
	return emit(cmd.OutOrStdout(), newReport(cmd.Name(), res), err)
}

// parsedValue returns the --value flag decoded by parseValue, or nil when
// the flag was not given.
func parsedValue(cmd *cobra.Command) any {
	if !cmd.Flags().Changed("value") {
		return nil
	}
	return parseValue(valueFlag)
}

// resolveDepth returns --depth when set, else the configured default,
// clamped to engine.max_depth.
func resolveDepth(cmd *cobra.Command) int {
	d := cfg.Engine.DefaultDepth
	if cmd.Flags().Changed("depth") {
		d = depthFlag
	}
	clamped := cfg.ClampDepth(d)
	if clamped != d {
		logger.Warn("depth clamped", zap.Int("requested", d), zap.Int("depth", clamped))
	}
	return clamped
}

func splitTransforms(csv string) []any {
	var out []any
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
