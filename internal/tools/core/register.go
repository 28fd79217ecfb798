package core

import (
	"shapeshift/internal/tools"
)

// Tool names.
const (
	ToolWrap          = "wrap"
	ToolCreateComplex = "create_complex"
	ToolAnalyzeTypes  = "analyze_types"
	ToolDataTransform = "data_transform"
	ToolCompose       = "compose"
	ToolStructure     = "structure"
)

// RegisterAll registers all data tools with the given registry.
func RegisterAll(registry *tools.Registry) error {
	allTools := []*tools.Tool{
		// Structure building
		WrapTool(),
		CreateComplexTool(),

		// Analysis
		AnalyzeTypesTool(),

		// Transforms
		DataTransformTool(),
		ComposeTool(),

		// Dispatch
		StructureTool(),
	}

	for _, tool := range allTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	return nil
}
