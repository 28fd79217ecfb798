package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"shapeshift/internal/logging"
	"shapeshift/internal/types"
	"shapeshift/internal/usage"
)

// Registry holds all available tools and provides lookup functionality.
// It is thread-safe and supports registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	// byCategory provides fast lookup by category.
	byCategory map[ToolCategory][]*Tool

	tracker *usage.Tracker
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]*Tool),
		byCategory: make(map[ToolCategory][]*Tool),
	}
}

// SetTracker records every execution in t. Without a tracker the registry
// falls back to the one carried by the call's context, if any.
func (r *Registry) SetTracker(t *usage.Tracker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracker = t
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	if tool.Priority == 0 {
		tool.Priority = 50
	}

	r.tools[tool.Name] = tool
	r.byCategory[tool.Category] = append(r.byCategory[tool.Category], tool)

	logging.ToolsDebug("Registered tool: %s (category=%s, priority=%d)", tool.Name, tool.Category, tool.Priority)
	return nil
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// GetByCategory returns all tools in a category, sorted by priority (descending).
func (r *Registry) GetByCategory(category ToolCategory) []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, len(r.byCategory[category]))
	copy(tools, r.byCategory[category])

	sort.SliceStable(tools, func(i, j int) bool {
		return tools[i].Priority > tools[j].Priority
	})

	return tools
}

// All returns all registered tools sorted by name.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Names returns all registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs a tool by name with the given arguments.
// The returned Result is never nil; on failure it carries Success=false and
// the same error that is returned.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*types.Result, error) {
	tool := r.Get(name)
	if tool == nil {
		m := types.StartMetrics()
		m.Finish()
		res := types.Failed(fmt.Errorf("%w: %s", ErrToolNotFound, name), m)
		r.track(ctx, name, res)
		return res, res.Err
	}

	return r.ExecuteTool(ctx, tool, args)
}

// ExecuteTool runs a specific tool with the given arguments.
func (r *Registry) ExecuteTool(ctx context.Context, tool *Tool, args map[string]any) (*types.Result, error) {
	metrics := types.StartMetrics()

	if err := validateArgs(tool, args); err != nil {
		metrics.Finish()
		res := types.Failed(fmt.Errorf("%s: %w", tool.Name, err), metrics)
		r.track(ctx, tool.Name, res)
		return res, res.Err
	}

	logging.ToolsDebug("Executing tool: %s", tool.Name)
	out, err := tool.Execute(ctx, args)
	metrics.Finish()

	var res *types.Result
	if err != nil {
		res = types.Failed(fmt.Errorf("%s: %w", tool.Name, err), metrics)
		logging.ToolsWarn("Tool %s failed after %v: %v", tool.Name, metrics.Duration, err)
	} else {
		if out == nil {
			out = &Output{}
		}
		metrics.Operations = out.Operations
		metrics.TypeChecks = out.TypeChecks
		res = types.Succeeded(out.Value, out.Metadata, metrics)
		logging.ToolsDebug("Tool %s completed in %v (ops=%d, checks=%d)",
			tool.Name, metrics.Duration, out.Operations, out.TypeChecks)
	}

	r.track(ctx, tool.Name, res)
	return res, res.Err
}

func (r *Registry) track(ctx context.Context, name string, res *types.Result) {
	r.mu.RLock()
	tracker := r.tracker
	r.mu.RUnlock()
	if tracker == nil {
		tracker = usage.FromContext(ctx)
	}

	tracker.Track(usage.Event{
		Operation:  name,
		Success:    res.Success,
		Operations: res.Metrics.Operations,
		TypeChecks: res.Metrics.TypeChecks,
		Duration:   res.Metrics.Duration,
	})
	logging.Audit().ToolExec(name, res.Metrics.Duration, res.Success, res.ErrorMessage(), res.Metrics.Operations)
}

// validateArgs checks that all required arguments are present and that
// arguments with a declared schema type have a compatible value.
func validateArgs(tool *Tool, args map[string]any) error {
	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}

	for name, prop := range tool.Schema.Properties {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		if !matchesType(prop.Type, v) {
			return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidArgType, name, prop.Type, v)
		}
	}
	return nil
}

func matchesType(schemaType string, v any) bool {
	switch schemaType {
	case "string":
		_, ok := types.ExtractString(v)
		return ok
	case "integer":
		_, ok := types.ExtractInt(v)
		return ok
	case "number":
		return types.TagOf(v) == types.TagNumber
	case "boolean":
		_, ok := types.ExtractBool(v)
		return ok
	case "array":
		_, ok := types.Elements(v)
		return ok
	default:
		return true
	}
}
