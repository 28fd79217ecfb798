// Package tools provides the uniform tool contract shapeshift exposes its
// data operations through.
//
// Every operation (wrap, analyze, transform, compose) is a Tool whose
// Execute returns an Output. The Registry times each call, records usage,
// and converts failures into a types.Result with Success=false so callers
// never need operation-specific error handling.
//
//	caller → Registry.Execute(name, args) → Tool.Execute → *types.Result
package tools

import (
	"context"
	"fmt"
	"strings"
)

// ToolCategory classifies tools for listing and filtering.
type ToolCategory string

const (
	// CategoryStructure covers wrapping and composite construction.
	CategoryStructure ToolCategory = "/structure"

	// CategoryAnalysis covers type flattening.
	CategoryAnalysis ToolCategory = "/analysis"

	// CategoryTransform covers single transforms and chains.
	CategoryTransform ToolCategory = "/transform"

	// CategoryGeneral is for tools that dispatch across categories.
	CategoryGeneral ToolCategory = "/general"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// Output is what a tool produces on success. Operations and TypeChecks are
// the work counters folded into the call's metrics.
type Output struct {
	Value      any
	Metadata   map[string]any
	Operations int
	TypeChecks int
}

// ExecuteFunc is the signature for tool execution.
type ExecuteFunc func(ctx context.Context, args map[string]any) (*Output, error)

// Tool defines a named operation callable through the Registry.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description explains what the tool does.
	Description string

	// Category classifies the tool.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Priority orders tools within a category.
	// Higher priority tools are listed first (default 50).
	Priority int
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// Categories lists every tool category in display order.
func Categories() []ToolCategory {
	return []ToolCategory{CategoryStructure, CategoryAnalysis, CategoryTransform, CategoryGeneral}
}

// ParseCategory accepts a category with or without its leading slash.
func ParseCategory(s string) (ToolCategory, error) {
	want := "/" + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "/")
	for _, c := range Categories() {
		if string(c) == want {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
