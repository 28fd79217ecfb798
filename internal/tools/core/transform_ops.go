package core

import (
	"context"
	"fmt"
	"maps"

	"shapeshift/internal/logging"
	"shapeshift/internal/tools"
	"shapeshift/internal/transform"
	"shapeshift/internal/types"
)

func kindNames() []any {
	names := make([]any, len(transform.Kinds))
	for i, k := range transform.Kinds {
		names[i] = k.String()
	}
	return names
}

// DataTransformTool returns a tool that applies one named transform.
func DataTransformTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolDataTransform,
		Description: "Apply a single transform (uppercase, reverse, jsonify, base64) to a value",
		Category:    tools.CategoryTransform,
		Priority:    80,
		Execute:     executeDataTransform,
		Schema: tools.ToolSchema{
			Required: []string{"value", "type"},
			Properties: map[string]tools.Property{
				"value": {
					Type:        "any",
					Description: "The value to transform",
				},
				"type": {
					Type:        "string",
					Description: "Transform name",
					Enum:        kindNames(),
				},
			},
		},
	}
}

func executeDataTransform(ctx context.Context, args map[string]any) (*tools.Output, error) {
	name, _ := types.ExtractString(args["type"])
	kind, err := transform.ParseKind(name)
	if err != nil {
		return nil, err
	}

	logging.TransformDebug("data_transform: %s", kind)

	out, err := kind.Apply(transform.NewEnvelope(args["value"]))
	if err != nil {
		return nil, err
	}
	return &tools.Output{
		Value:      out.Value,
		Metadata:   withType(out),
		Operations: 1,
		TypeChecks: 1,
	}, nil
}

// ComposeTool returns a tool that runs a transform chain.
func ComposeTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolCompose,
		Description: "Run an ordered chain of transforms over a value, then validate the result",
		Category:    tools.CategoryTransform,
		Priority:    70,
		Execute:     executeCompose,
		Schema: tools.ToolSchema{
			Required: []string{"value"},
			Properties: map[string]tools.Property{
				"value": {
					Type:        "any",
					Description: "The initial value",
				},
				"transforms": {
					Type:        "array",
					Description: "Transform names applied left to right",
					Items:       &tools.PropertyItems{Type: "string"},
				},
				"validate": {
					Type:        "string",
					Description: "Boolean expression over value, type and metadata",
				},
				"name": {
					Type:        "string",
					Description: "Chain name used in errors and metadata",
				},
				"complexity": {
					Type:        "integer",
					Description: "Complexity recorded on the chain",
				},
			},
		},
	}
}

func executeCompose(ctx context.Context, args map[string]any) (*tools.Output, error) {
	var names []string
	if raw, ok := args["transforms"]; ok && raw != nil {
		n, ok := types.ExtractStrings(raw)
		if !ok {
			return nil, fmt.Errorf("%w: transforms must be a list of strings", tools.ErrInvalidArgType)
		}
		names = n
	}

	var opts []transform.ChainOption
	if name, ok := types.ExtractString(args["name"]); ok && name != "" {
		opts = append(opts, transform.WithName(name))
	}
	if c, ok := types.ExtractInt(args["complexity"]); ok {
		opts = append(opts, transform.WithComplexity(c))
	}
	if src, ok := types.ExtractString(args["validate"]); ok && src != "" {
		v, err := transform.ExprValidator(src)
		if err != nil {
			return nil, err
		}
		opts = append(opts, transform.WithValidator(v))
	}

	chain, err := transform.BuildChain(names, transform.NewEnvelope(args["value"]), opts...)
	if err != nil {
		return nil, err
	}

	logging.TransformDebug("compose: chain=%s steps=%d validated=%v",
		chain.Metadata.Name, chain.Metadata.Steps, chain.Validation != nil)

	out, err := transform.Compose(chain)
	if err != nil {
		return nil, err
	}

	md := withType(out)
	md["chain"] = chain.Metadata.Name
	md["steps"] = chain.Metadata.Steps
	md["complexity"] = chain.Metadata.Complexity

	checks := 1
	if chain.Validation != nil {
		checks++
	}
	return &tools.Output{
		Value:      out.Value,
		Metadata:   md,
		Operations: len(chain.Transforms) + 1,
		TypeChecks: checks,
	}, nil
}

// withType returns the envelope metadata plus its final type tag.
func withType(e transform.Envelope) map[string]any {
	md := make(map[string]any, len(e.Metadata)+1)
	maps.Copy(md, e.Metadata)
	md["type"] = string(e.Type)
	return md
}
