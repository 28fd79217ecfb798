package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"shapeshift/internal/pipeline"
	"shapeshift/internal/shape"
	"shapeshift/internal/types"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// report is the rendered outcome of one command.
type report struct {
	Command  string         `json:"command" yaml:"command"`
	Success  bool           `json:"success" yaml:"success"`
	Result   any            `json:"result,omitempty" yaml:"result,omitempty"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Metrics  types.Metrics  `json:"metrics" yaml:"metrics"`
	Pipeline *pipelineInfo  `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
	// Diff is rendered in text mode only.
	Diff string `json:"-" yaml:"-"`
}

type pipelineInfo struct {
	RunID           string                `json:"runId" yaml:"run_id"`
	Steps           int                   `json:"steps" yaml:"steps"`
	TotalOperations int                   `json:"totalOperations" yaml:"total_operations"`
	TotalTypeChecks int                   `json:"totalTypeChecks" yaml:"total_type_checks"`
	PipelineSteps   []pipeline.StepRecord `json:"pipelineSteps" yaml:"pipeline_steps"`
}

func newReport(command string, res *types.Result) *report {
	return &report{
		Command:  command,
		Success:  res.Success,
		Result:   res.Value,
		Error:    res.ErrorMessage(),
		Metadata: res.Metadata,
		Metrics:  res.Metrics,
	}
}

func newPipelineReport(command string, res *pipeline.Result) *report {
	r := newReport(command, &res.Result)
	r.Pipeline = &pipelineInfo{
		RunID:           res.RunID,
		Steps:           res.Steps,
		TotalOperations: res.TotalOperations,
		TotalTypeChecks: res.TotalTypeChecks,
		PipelineSteps:   res.PipelineSteps,
	}
	return r
}

// emit writes r in the selected format and turns a failed report into an
// error so the process exits non-zero.
func emit(w io.Writer, r *report, cause error) error {
	var err error
	switch outputFormat {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		err = enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(r)
		if err == nil {
			err = enc.Close()
		}
	default:
		err = writeText(w, r)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !r.Success {
		if cause == nil {
			cause = fmt.Errorf("%s", r.Error)
		}
		return fmt.Errorf("%s failed: %w", r.Command, cause)
	}
	return nil
}

func writeText(w io.Writer, r *report) error {
	s := newStyles(detectTheme())
	var b strings.Builder

	status := s.Success.Render("ok")
	if !r.Success {
		status = s.Error.Render("failed")
	}
	fmt.Fprintf(&b, "%s %s\n", s.Title.Render(r.Command), status)

	if r.Error != "" {
		fmt.Fprintf(&b, "%s%s\n", s.Label.Render("error"), s.Error.Render(r.Error))
	}
	if r.Success {
		b.WriteString(s.Block.Render(renderValue(r.Result)))
		b.WriteString("\n")
	}
	if r.Diff != "" {
		fmt.Fprintf(&b, "%s%s\n", s.Label.Render("diff"), r.Diff)
	}

	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s%s\n", s.Label.Render(k), s.Muted.Render(types.Stringify(r.Metadata[k])))
	}

	if p := r.Pipeline; p != nil {
		fmt.Fprintf(&b, "%s%s\n", s.Label.Render("run"), s.Muted.Render(p.RunID))
		for i, step := range p.PipelineSteps {
			fmt.Fprintf(&b, "%s%s\n", s.Label.Render(fmt.Sprintf("step %d", i+1)),
				s.Info.Render(fmt.Sprintf("%s ops=%d checks=%d attempts=%d took=%s",
					step.Name, step.Metrics.Operations, step.Metrics.TypeChecks, step.Attempts, step.Metrics.Duration)))
		}
	}

	fmt.Fprintf(&b, "%s%s\n", s.Label.Render("metrics"), s.Muted.Render(fmt.Sprintf(
		"ops=%d checks=%d took=%s", r.Metrics.Operations, r.Metrics.TypeChecks, r.Metrics.Duration)))

	_, err := io.WriteString(w, b.String())
	return err
}

// renderValue renders a result for text output. Type maps become an
// aligned path table; other composites are indented JSON.
func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []toolInfo:
		var b strings.Builder
		for _, t := range val {
			fmt.Fprintf(&b, "%-12s %-18s %3d  %s\n", t.Category, t.Name, t.Priority, t.Description)
		}
		return strings.TrimRight(b.String(), "\n")
	case shape.TypeMap:
		var b strings.Builder
		for _, p := range shape.Paths(val) {
			label := p
			if label == "" {
				label = "(root)"
			}
			fmt.Fprintf(&b, "%-32s %s\n", label, val[p])
		}
		return strings.TrimRight(b.String(), "\n")
	}
	if types.IsPrimitive(v) || v == nil {
		return types.Stringify(v)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return types.Stringify(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// parseValue interprets a --value argument: valid JSON is decoded, anything
// else is kept as a string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// readValueFile decodes a JSON or YAML file. YAML is a superset of JSON so
// both go through the YAML decoder.
func readValueFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var v any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return v, nil
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}

// printStats writes the tracker totals and the collected metric families.
func printStats(w io.Writer) {
	if tracker == nil {
		fmt.Fprintln(w, "usage tracking disabled")
		return
	}
	s := newStyles(detectTheme())
	stats := tracker.Stats()

	fmt.Fprintln(w, s.Title.Render("usage"))
	names := make([]string, 0, len(stats.ByOperation))
	for name := range stats.ByOperation {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := stats.ByOperation[name]
		fmt.Fprintf(w, "%s%s\n", s.Label.Render(name), s.Muted.Render(fmt.Sprintf(
			"calls=%d failures=%d ops=%d checks=%d took=%s", c.Calls, c.Failures, c.Operations, c.TypeChecks, c.Duration)))
	}
	fmt.Fprintf(w, "%s%s\n", s.Label.Render("pipelines"), s.Muted.Render(fmt.Sprintf(
		"runs=%d failures=%d", stats.PipelineRuns.Calls, stats.PipelineRuns.Failures)))

	families, err := metricsRegistry.Gather()
	if err != nil {
		logger.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "%s%s\n", s.Label.Render("metric families"), s.Muted.Render(fmt.Sprint(len(families))))
}
