package core

import (
	"context"
	"fmt"

	"shapeshift/internal/logging"
	"shapeshift/internal/shape"
	"shapeshift/internal/tools"
	"shapeshift/internal/types"
)

// AnalyzeTypesTool returns a tool that flattens a value into a path-to-type
// map.
func AnalyzeTypesTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolAnalyzeTypes,
		Description: "Map every structural path of a value to the type found there",
		Category:    tools.CategoryAnalysis,
		Priority:    80,
		Execute:     executeAnalyzeTypes,
		Schema: tools.ToolSchema{
			Required: []string{"value"},
			Properties: map[string]tools.Property{
				"value": {
					Type:        "any",
					Description: "The value to analyze; wrapped nodes and composites are accepted",
				},
				"path": {
					Type:        "array",
					Description: "Root path segments prefixed to every key",
					Items:       &tools.PropertyItems{Type: "string"},
				},
			},
		},
	}
}

func executeAnalyzeTypes(ctx context.Context, args map[string]any) (*tools.Output, error) {
	var path []string
	if raw, ok := args["path"]; ok && raw != nil {
		p, ok := types.ExtractStrings(raw)
		if !ok {
			return nil, fmt.Errorf("%w: path must be a list of strings", tools.ErrInvalidArgType)
		}
		path = p
	}

	m := shape.AnalyzeTypes(args["value"], path...)
	logging.StructureDebug("analyze_types: %d paths", len(m))

	md := map[string]any{"paths": len(m)}
	for _, tag := range []types.Tag{types.TagString, types.TagNumber, types.TagBoolean, types.TagArray, types.TagObject} {
		if n := shape.Count(m, tag); n > 0 {
			md[string(tag)] = n
		}
	}

	return &tools.Output{
		Value:      m,
		Metadata:   md,
		Operations: len(m),
		TypeChecks: len(m),
	}, nil
}
