package structure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shapeshift/internal/shape"
	"shapeshift/internal/types"
)

func TestWrap_ChainLength(t *testing.T) {
	for depth := 0; depth <= 6; depth++ {
		node := Wrap("v", depth)
		require.NotNil(t, node)
		assert.Equal(t, depth+1, node.Len(), "depth %d", depth)
		assert.Nil(t, node.Deepest().Nested)
	}
}

func TestWrap_SameValueAtEveryLink(t *testing.T) {
	value := map[string]any{"k": []any{1, 2}}
	node := Wrap(value, 3)
	for i, v := range node.Values() {
		assert.Equal(t, value, v, "link %d", i)
	}
}

func TestWrap_MetadataPerLink(t *testing.T) {
	node := Wrap(7, 2, "root")

	assert.Equal(t, 2, node.Metadata.Depth)
	assert.Equal(t, []string{"root"}, node.Metadata.Path)
	assert.Equal(t, 1, node.Nested.Metadata.Depth)
	assert.Equal(t, []string{"root", "nested"}, node.Nested.Metadata.Path)
	assert.Equal(t, 0, node.Nested.Nested.Metadata.Depth)
	assert.Equal(t, []string{"root", "nested", "nested"}, node.Nested.Nested.Metadata.Path)

	for cur := node; cur != nil; cur = cur.Nested {
		assert.Empty(t, cur.Metadata.Transforms)
		assert.NotNil(t, cur.Metadata.Transforms)
		assert.Equal(t, types.TagNumber, cur.Metadata.OriginalType)
		assert.Equal(t, types.TagNumber, cur.Metadata.InferredType)
		assert.Positive(t, cur.Metadata.Timestamp)
	}
}

func TestWrap_InferredTypeForSequences(t *testing.T) {
	node := Wrap([]any{"a"}, 0)
	assert.Equal(t, types.TagObject, node.Metadata.OriginalType)
	assert.Equal(t, types.TagArray, node.Metadata.InferredType)

	node = Wrap(map[string]any{}, 0)
	assert.Equal(t, types.TagObject, node.Metadata.OriginalType)
	assert.Equal(t, types.TagObject, node.Metadata.InferredType)
}

func TestWrap_NegativeDepthClamped(t *testing.T) {
	node := Wrap("v", -4)
	assert.Equal(t, 1, node.Len())
	assert.Equal(t, 0, node.Metadata.Depth)
}

func TestWrap_RootPathNotAliased(t *testing.T) {
	path := make([]string, 1, 4)
	path[0] = "a"
	node := Wrap("v", 2, path...)
	assert.Equal(t, []string{"a"}, node.Metadata.Path)
	assert.Equal(t, []string{"a"}, path)
}

func TestWrappedNode_AnalyzeView(t *testing.T) {
	got := shape.AnalyzeTypes(Wrap("x", 1))

	assert.Equal(t, types.TagObject, got[""])
	assert.Equal(t, types.TagString, got["value"])
	assert.Equal(t, types.TagObject, got["nested"])
	assert.Equal(t, types.TagString, got["nested.value"])
	assert.Equal(t, types.TagNumber, got["metadata.depth"])
	assert.Equal(t, types.TagArray, got["metadata.path"])
	assert.Equal(t, types.TagString, got["nested.metadata.path.0"])
	assert.Equal(t, types.TagArray, got["metadata.transforms"])
	assert.Equal(t, types.TagNumber, got["metadata.timestamp"])
	_, hasNestedNested := got["nested.nested"]
	assert.False(t, hasNestedNested)
}

func TestWrappedNode_NilReceiver(t *testing.T) {
	var n *WrappedNode
	assert.Equal(t, 0, n.Len())
	assert.Nil(t, n.Values())
	assert.Nil(t, n.ToValue())
	assert.Nil(t, n.Deepest())
}

func TestWrap_NoPathIsEmptyNotNil(t *testing.T) {
	node := Wrap("x", 1)
	require.NotNil(t, node.Metadata.Path)
	assert.Empty(t, node.Metadata.Path)

	data, err := json.Marshal(node)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":[]`)
	assert.NotContains(t, string(data), `"path":null`)
}
