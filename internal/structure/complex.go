package structure

import "shapeshift/internal/types"

// TaggedUnion is the union variant used once a composite is deeper than one
// level.
type TaggedUnion struct {
	Type  types.Tag `json:"type" yaml:"type"`
	Value any       `json:"value" yaml:"value"`
}

// ObjectPair holds the two wrapped chains of a composite's object member.
type ObjectPair struct {
	Value  *WrappedNode `json:"value" yaml:"value"`
	Nested *WrappedNode `json:"nested" yaml:"nested"`
}

// CompositeStructure combines a primitive with arrays and maps of wrapped
// nodes built around it.
type CompositeStructure struct {
	Primitive any            `json:"primitive" yaml:"primitive"`
	Array     []*WrappedNode `json:"array" yaml:"array"`
	Object    ObjectPair     `json:"object" yaml:"object"`
	// Union is the raw primitive when depth <= 1, else a TaggedUnion.
	Union any `json:"union" yaml:"union"`
}

// CreateComplex builds a composite around primitive. Array holds exactly
// depth chains whose internal depths run depth-1 down to 0. The object
// member pairs a chain of the full depth with one a level shallower.
// Negative depths are clamped to 0.
func CreateComplex(primitive any, depth int) *CompositeStructure {
	if depth < 0 {
		depth = 0
	}

	array := make([]*WrappedNode, depth)
	for i := range array {
		array[i] = Wrap(primitive, depth-1-i, "array", indexSegment(i))
	}

	nestedDepth := depth - 1
	if nestedDepth < 0 {
		nestedDepth = 0
	}

	var union any = primitive
	if depth > 1 {
		union = TaggedUnion{Type: types.TagOf(primitive), Value: primitive}
	}

	return &CompositeStructure{
		Primitive: primitive,
		Array:     array,
		Object: ObjectPair{
			Value:  Wrap(primitive, depth, "object", "value"),
			Nested: Wrap(primitive, nestedDepth, "object", NestedSegment),
		},
		Union: union,
	}
}

// Nodes returns the total number of wrapped links in the composite.
func (c *CompositeStructure) Nodes() int {
	if c == nil {
		return 0
	}
	n := c.Object.Value.Len() + c.Object.Nested.Len()
	for _, node := range c.Array {
		n += node.Len()
	}
	return n
}

// ToValue returns a JSON-shaped view of the composite.
func (c *CompositeStructure) ToValue() any {
	if c == nil {
		return nil
	}
	array := make([]any, len(c.Array))
	for i, node := range c.Array {
		array[i] = node.ToValue()
	}
	union := c.Union
	if tu, ok := union.(TaggedUnion); ok {
		union = map[string]any{"type": string(tu.Type), "value": tu.Value}
	}
	return map[string]any{
		"primitive": c.Primitive,
		"array":     array,
		"object": map[string]any{
			"value":  c.Object.Value.ToValue(),
			"nested": c.Object.Nested.ToValue(),
		},
		"union": union,
	}
}
