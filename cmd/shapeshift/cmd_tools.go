package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"shapeshift/internal/tools"
)

var toolsCategory string

// toolInfo is the listed view of a registered tool.
type toolInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category" yaml:"category"`
	Priority    int      `json:"priority" yaml:"priority"`
	Description string   `json:"description" yaml:"description"`
	Required    []string `json:"required,omitempty" yaml:"required,omitempty"`
}

// toolsCmd lists the registered tools
var toolsCmd = &cobra.Command{
	Use:   "tools [name]",
	Short: "List registered tools by category and priority",
	Example: `  shapeshift tools
  shapeshift tools --category transform
  shapeshift tools analyze_types -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var listed []*tools.Tool
		switch {
		case len(args) == 1:
			if !registry.Has(args[0]) {
				return fmt.Errorf("%w: %s", tools.ErrToolNotFound, args[0])
			}
			listed = []*tools.Tool{registry.Get(args[0])}
		case toolsCategory != "":
			cat, err := tools.ParseCategory(toolsCategory)
			if err != nil {
				return err
			}
			listed = registry.GetByCategory(cat)
		default:
			for _, cat := range registeredCategories() {
				listed = append(listed, registry.GetByCategory(cat)...)
			}
		}

		infos := make([]toolInfo, 0, len(listed))
		for _, t := range listed {
			infos = append(infos, toolInfo{
				Name:        t.Name,
				Category:    string(t.Category),
				Priority:    t.Priority,
				Description: t.Description,
				Required:    t.Schema.Required,
			})
		}
		r := &report{
			Command:  cmd.Name(),
			Success:  true,
			Result:   infos,
			Metadata: map[string]any{"count": len(infos)},
		}
		return emit(cmd.OutOrStdout(), r, nil)
	},
}

func init() {
	toolsCmd.Flags().StringVar(&toolsCategory, "category", "", "Only list tools in this category (structure, analysis, transform, general)")
}

// registeredCategories returns the categories that hold at least one tool,
// known categories first in display order.
func registeredCategories() []tools.ToolCategory {
	seen := make(map[tools.ToolCategory]bool)
	for _, t := range registry.All() {
		seen[t.Category] = true
	}

	var out []tools.ToolCategory
	for _, c := range tools.Categories() {
		if seen[c] {
			out = append(out, c)
			delete(seen, c)
		}
	}
	var rest []tools.ToolCategory
	for c := range seen {
		rest = append(rest, c)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}
