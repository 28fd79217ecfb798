package core

import (
	"context"
	"fmt"
	"strings"

	"shapeshift/internal/tools"
	"shapeshift/internal/types"
)

// Structural operations accepted by the structure tool.
const (
	OpAnalyze   = "analyze"
	OpTransform = "transform"
	OpWrap      = "wrap"
)

// StructureTool returns a tool that routes to analyze, transform or wrap
// based on its operation argument.
func StructureTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolStructure,
		Description: "Run a structural operation (analyze, transform, wrap) on a value",
		Category:    tools.CategoryGeneral,
		Priority:    60,
		Execute:     executeStructure,
		Schema: tools.ToolSchema{
			Required: []string{"operation", "value"},
			Properties: map[string]tools.Property{
				"operation": {
					Type:        "string",
					Description: "Operation to run",
					Enum:        []any{OpAnalyze, OpTransform, OpWrap},
				},
				"value": {
					Type:        "any",
					Description: "The value to operate on",
				},
				"type": {
					Type:        "string",
					Description: "Transform name for the transform operation",
				},
				"depth": {
					Type:        "integer",
					Description: "Depth for the wrap operation",
					Default:     DefaultDepth,
				},
			},
		},
	}
}

func executeStructure(ctx context.Context, args map[string]any) (*tools.Output, error) {
	op, _ := types.ExtractString(args["operation"])

	var (
		out *tools.Output
		err error
	)
	switch strings.ToLower(strings.TrimSpace(op)) {
	case OpAnalyze:
		out, err = executeAnalyzeTypes(ctx, args)
	case OpTransform:
		if _, ok := args["type"]; !ok {
			return nil, fmt.Errorf("%w: type", tools.ErrMissingRequiredArg)
		}
		out, err = executeDataTransform(ctx, args)
	case OpWrap:
		out, err = executeWrap(ctx, args)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	if err != nil {
		return nil, err
	}

	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	out.Metadata["operation"] = op
	return out, nil
}
