package core

import (
	"context"
	"fmt"

	"shapeshift/internal/logging"
	"shapeshift/internal/structure"
	"shapeshift/internal/tools"
	"shapeshift/internal/types"
)

// DefaultDepth is used when a structure tool is called without a depth.
const DefaultDepth = 1

// WrapTool returns a tool that wraps a value in a nested chain.
func WrapTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolWrap,
		Description: "Wrap a value in a chain of depth+1 nested nodes",
		Category:    tools.CategoryStructure,
		Priority:    80,
		Execute:     executeWrap,
		Schema: tools.ToolSchema{
			Required: []string{"value"},
			Properties: map[string]tools.Property{
				"value": {
					Type:        "any",
					Description: "The value to wrap",
				},
				"depth": {
					Type:        "integer",
					Description: "Nesting depth (negative values are treated as 0)",
					Default:     DefaultDepth,
				},
				"path": {
					Type:        "array",
					Description: "Root path segments",
					Items:       &tools.PropertyItems{Type: "string"},
				},
			},
		},
	}
}

func executeWrap(ctx context.Context, args map[string]any) (*tools.Output, error) {
	depth := depthArg(args)
	var path []string
	if raw, ok := args["path"]; ok && raw != nil {
		p, ok := types.ExtractStrings(raw)
		if !ok {
			return nil, fmt.Errorf("%w: path must be a list of strings", tools.ErrInvalidArgType)
		}
		path = p
	}

	logging.StructureDebug("wrap: depth=%d path=%v", depth, path)

	node := structure.Wrap(args["value"], depth, path...)
	links := node.Len()
	return &tools.Output{
		Value: node,
		Metadata: map[string]any{
			"depth": node.Metadata.Depth,
			"links": links,
		},
		Operations: links,
		TypeChecks: links,
	}, nil
}

// CreateComplexTool returns a tool that builds a composite structure.
func CreateComplexTool() *tools.Tool {
	return &tools.Tool{
		Name:        ToolCreateComplex,
		Description: "Build a composite of wrapped arrays, objects and a union around a primitive",
		Category:    tools.CategoryStructure,
		Priority:    70,
		Execute:     executeCreateComplex,
		Schema: tools.ToolSchema{
			Required: []string{"value"},
			Properties: map[string]tools.Property{
				"value": {
					Type:        "any",
					Description: "The primitive to build around",
				},
				"depth": {
					Type:        "integer",
					Description: "Composite depth; the array member holds exactly this many chains",
					Default:     DefaultDepth,
				},
			},
		},
	}
}

func executeCreateComplex(ctx context.Context, args map[string]any) (*tools.Output, error) {
	depth := depthArg(args)
	logging.StructureDebug("create_complex: depth=%d", depth)

	c := structure.CreateComplex(args["value"], depth)
	nodes := c.Nodes()
	return &tools.Output{
		Value: c,
		Metadata: map[string]any{
			"depth":      len(c.Array),
			"arrayItems": len(c.Array),
			"nodes":      nodes,
		},
		Operations: nodes,
		TypeChecks: nodes,
	}, nil
}

// depthArg reads the optional depth argument. The registry has already
// checked its type.
func depthArg(args map[string]any) int {
	raw, ok := args["depth"]
	if !ok || raw == nil {
		return DefaultDepth
	}
	depth, _ := types.ExtractInt(raw)
	if depth < 0 {
		return 0
	}
	return depth
}
