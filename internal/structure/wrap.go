// Package structure builds nested wrapper structures around a value.
//
// A wrapped value is a singly linked chain of WrappedNode links, one per
// depth level, each holding the same value. Depth strictly decreases along
// the chain so it can never contain a cycle.
package structure

import (
	"strconv"
	"time"

	"shapeshift/internal/types"
)

// NestedSegment is the path segment appended for each level of nesting.
const NestedSegment = "nested"

// NodeMetadata describes one link of a wrapped chain.
type NodeMetadata struct {
	Depth        int       `json:"depth" yaml:"depth"`
	Path         []string  `json:"path" yaml:"path"`
	Transforms   []string  `json:"transforms" yaml:"transforms"`
	OriginalType types.Tag `json:"originalType" yaml:"original_type"`
	InferredType types.Tag `json:"inferredType" yaml:"inferred_type"`
	Timestamp    int64     `json:"timestamp" yaml:"timestamp"`
}

// WrappedNode is one link of a wrapped chain. The deepest link has a nil
// Nested pointer.
type WrappedNode struct {
	Value    any          `json:"value" yaml:"value"`
	Nested   *WrappedNode `json:"nested,omitempty" yaml:"nested,omitempty"`
	Metadata NodeMetadata `json:"metadata" yaml:"metadata"`
}

// Wrap builds a chain of depth+1 links around value. Every link holds value
// unchanged; the child of a link at depth d>0 is wrapped at depth d-1 with
// "nested" appended to the path. Negative depths are clamped to 0.
func Wrap(value any, depth int, path ...string) *WrappedNode {
	if depth < 0 {
		depth = 0
	}
	return wrap(value, depth, append([]string{}, path...))
}

func wrap(value any, depth int, path []string) *WrappedNode {
	node := &WrappedNode{
		Value:    value,
		Metadata: newMetadata(value, depth, path),
	}
	if depth > 0 {
		node.Nested = wrap(value, depth-1, appendSegment(path, NestedSegment))
	}
	return node
}

func newMetadata(value any, depth int, path []string) NodeMetadata {
	// OriginalType does not distinguish sequences from mappings; the
	// inferred type does.
	inferred := types.TagOf(value)
	original := inferred
	if inferred == types.TagArray {
		original = types.TagObject
	}
	return NodeMetadata{
		Depth:        depth,
		Path:         path,
		Transforms:   []string{},
		OriginalType: original,
		InferredType: inferred,
		Timestamp:    time.Now().UnixMilli(),
	}
}

func appendSegment(path []string, seg string) []string {
	next := make([]string, len(path)+1)
	copy(next, path)
	next[len(path)] = seg
	return next
}

// Len returns the number of links in the chain starting at n.
func (n *WrappedNode) Len() int {
	count := 0
	for cur := n; cur != nil; cur = cur.Nested {
		count++
	}
	return count
}

// Values returns the value held by each link, outermost first.
func (n *WrappedNode) Values() []any {
	var out []any
	for cur := n; cur != nil; cur = cur.Nested {
		out = append(out, cur.Value)
	}
	return out
}

// Deepest returns the innermost link.
func (n *WrappedNode) Deepest() *WrappedNode {
	cur := n
	for cur != nil && cur.Nested != nil {
		cur = cur.Nested
	}
	return cur
}

// ToValue returns a JSON-shaped view of the chain. A missing Nested link is
// omitted rather than rendered as null.
func (n *WrappedNode) ToValue() any {
	if n == nil {
		return nil
	}
	m := map[string]any{
		"value":    n.Value,
		"metadata": n.Metadata.toValue(),
	}
	if n.Nested != nil {
		m["nested"] = n.Nested.ToValue()
	}
	return m
}

func (md NodeMetadata) toValue() map[string]any {
	path := make([]any, len(md.Path))
	for i, p := range md.Path {
		path[i] = p
	}
	transforms := make([]any, len(md.Transforms))
	for i, t := range md.Transforms {
		transforms[i] = t
	}
	return map[string]any{
		"depth":        md.Depth,
		"path":         path,
		"transforms":   transforms,
		"originalType": string(md.OriginalType),
		"inferredType": string(md.InferredType),
		"timestamp":    md.Timestamp,
	}
}

func indexSegment(i int) string {
	return strconv.Itoa(i)
}
