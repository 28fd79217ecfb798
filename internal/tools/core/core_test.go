package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shapeshift/internal/shape"
	"shapeshift/internal/structure"
	"shapeshift/internal/tools"
	"shapeshift/internal/transform"
	"shapeshift/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, RegisterAll(reg))
	return reg
}

func TestRegisterAll(t *testing.T) {
	reg := newRegistry(t)

	assert.Equal(t, []string{
		ToolAnalyzeTypes, ToolCompose, ToolCreateComplex,
		ToolDataTransform, ToolStructure, ToolWrap,
	}, reg.Names())

	for _, tool := range reg.All() {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotNil(t, tool.Execute, tool.Name)
	}

	// Registering twice collides.
	assert.ErrorIs(t, RegisterAll(reg), tools.ErrToolAlreadyRegistered)
}

func TestWrap(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolWrap, map[string]any{"value": "x", "depth": 3})
	require.NoError(t, err)
	require.True(t, res.Success)

	node, ok := res.Value.(*structure.WrappedNode)
	require.True(t, ok)
	assert.Equal(t, 4, node.Len())
	assert.Equal(t, []any{"x", "x", "x", "x"}, node.Values())
	assert.Equal(t, 4, res.Metrics.Operations)
	assert.Equal(t, 4, res.Metadata["links"])
}

func TestWrap_DefaultsAndClamping(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolWrap, map[string]any{"value": 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultDepth+1, res.Value.(*structure.WrappedNode).Len())

	res, err = reg.Execute(context.Background(), ToolWrap, map[string]any{"value": 1, "depth": -4})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Value.(*structure.WrappedNode).Len())

	res, err = reg.Execute(context.Background(), ToolWrap, map[string]any{
		"value": 1, "depth": 1, "path": []any{"root"},
	})
	require.NoError(t, err)
	node := res.Value.(*structure.WrappedNode)
	assert.Equal(t, []string{"root"}, node.Metadata.Path)
	assert.Equal(t, []string{"root", "nested"}, node.Nested.Metadata.Path)
}

func TestWrap_InvalidDepth(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolWrap, map[string]any{"value": 1, "depth": "deep"})
	assert.ErrorIs(t, err, tools.ErrInvalidArgType)
	assert.False(t, res.Success)
	assert.Zero(t, res.Metrics.Operations)
}

func TestCreateComplex(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolCreateComplex, map[string]any{"value": true, "depth": 2})
	require.NoError(t, err)

	c := res.Value.(*structure.CompositeStructure)
	assert.Len(t, c.Array, 2)
	assert.Equal(t, structure.TaggedUnion{Type: types.TagBoolean, Value: true}, c.Union)
	assert.Equal(t, c.Nodes(), res.Metrics.Operations)
	assert.Equal(t, 2, res.Metadata["arrayItems"])
}

func TestAnalyzeTypes(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolAnalyzeTypes, map[string]any{
		"value": map[string]any{"a": 1, "b": "x"},
	})
	require.NoError(t, err)

	want := shape.TypeMap{"": types.TagObject, "a": types.TagNumber, "b": types.TagString}
	if diff := cmp.Diff(want, res.Value); diff != "" {
		t.Errorf("analyze_types mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, res.Metadata["paths"])
	assert.Equal(t, 1, res.Metadata["number"])
	assert.Equal(t, 3, res.Metrics.TypeChecks)
}

func TestAnalyzeTypes_WrappedInput(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolAnalyzeTypes, map[string]any{
		"value": structure.Wrap("v", 1),
	})
	require.NoError(t, err)

	m := res.Value.(shape.TypeMap)
	assert.Equal(t, types.TagObject, m[""])
	assert.Equal(t, types.TagString, m["value"])
	assert.Equal(t, types.TagString, m["nested.value"])
}

func TestAnalyzeTypes_Path(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolAnalyzeTypes, map[string]any{
		"value": map[string]any{"a": 1},
		"path":  []any{"root"},
	})
	require.NoError(t, err)
	assert.Equal(t, shape.TypeMap{"root": types.TagObject, "root.a": types.TagNumber}, res.Value)

	res, err = reg.Execute(context.Background(), ToolAnalyzeTypes, map[string]any{
		"value": map[string]any{"a": 1},
		"path":  []any{"root", 7},
	})
	assert.ErrorIs(t, err, tools.ErrInvalidArgType)
	assert.ErrorContains(t, err, "path must be a list of strings")
	assert.False(t, res.Success)
	assert.Nil(t, res.Value)
}

func TestDataTransform(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		kind string
		in   any
		want any
	}{
		{"uppercase", "abc", "ABC"},
		{"reverse", "abc", "cba"},
		{"base64", "hi", "aGk="},
		{"UPPERCASE", 12, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			res, err := reg.Execute(context.Background(), ToolDataTransform, map[string]any{
				"value": tt.in, "type": tt.kind,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, "string", res.Metadata["type"])
			assert.Equal(t, 1, res.Metrics.Operations)
		})
	}
}

func TestDataTransform_JSONify(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolDataTransform, map[string]any{
		"value": `{"a":1}`, "type": "jsonify",
	})
	require.NoError(t, err)
	assert.Equal(t, true, res.Metadata[transform.MetaWasJSON])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Value.(string)), &decoded))
	assert.Equal(t, map[string]any{"a": float64(1)}, decoded)
}

func TestDataTransform_UnknownType(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolDataTransform, map[string]any{
		"value": "x", "type": "rot13",
	})
	assert.ErrorIs(t, err, transform.ErrUnknownTransformType)
	assert.False(t, res.Success)
	assert.Nil(t, res.Value)
}

func TestCompose(t *testing.T) {
	reg := newRegistry(t)

	res, err := reg.Execute(context.Background(), ToolCompose, map[string]any{
		"value":      "abc",
		"transforms": []any{"reverse", "uppercase"},
		"name":       "demo",
		"complexity": 3,
		"validate":   `type == "string" && value == "CBA"`,
	})
	require.NoError(t, err)

	assert.Equal(t, "CBA", res.Value)
	assert.Equal(t, "demo", res.Metadata["chain"])
	assert.Equal(t, 2, res.Metadata["steps"])
	assert.Equal(t, 3, res.Metadata["complexity"])
	assert.Equal(t, true, res.Metadata[transform.MetaProcessed])
	assert.Equal(t, []string{"reverse", "uppercase"}, res.Metadata[transform.MetaHistory])
	assert.Equal(t, 3, res.Metrics.Operations)
	assert.Equal(t, 2, res.Metrics.TypeChecks)
}

func TestCompose_EmptyChainIsIdentity(t *testing.T) {
	reg := newRegistry(t)

	in := map[string]any{"k": "v"}
	res, err := reg.Execute(context.Background(), ToolCompose, map[string]any{"value": in})
	require.NoError(t, err)
	assert.Equal(t, in, res.Value)
	assert.Equal(t, "object", res.Metadata["type"])
}

func TestCompose_Failures(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		name    string
		args    map[string]any
		wantErr error
	}{
		{
			name:    "validation rejects",
			args:    map[string]any{"value": "a", "transforms": []any{"uppercase"}, "validate": `value == "a"`},
			wantErr: transform.ErrValidationFailure,
		},
		{
			name:    "bad expression",
			args:    map[string]any{"value": "a", "validate": `value ==`},
			wantErr: transform.ErrInvalidValidator,
		},
		{
			name:    "unknown transform",
			args:    map[string]any{"value": "a", "transforms": []any{"uppercase", "nope"}},
			wantErr: transform.ErrUnknownTransformType,
		},
		{
			name:    "non-string transform name",
			args:    map[string]any{"value": "a", "transforms": []any{1}},
			wantErr: tools.ErrInvalidArgType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := reg.Execute(context.Background(), ToolCompose, tt.args)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, res.Success)
			assert.Zero(t, res.Metrics.Operations)
		})
	}
}

func TestStructure_Dispatch(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	res, err := reg.Execute(ctx, ToolStructure, map[string]any{"operation": "wrap", "value": 1, "depth": 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Value.(*structure.WrappedNode).Len())
	assert.Equal(t, "wrap", res.Metadata["operation"])

	res, err = reg.Execute(ctx, ToolStructure, map[string]any{"operation": "analyze", "value": []any{1}})
	require.NoError(t, err)
	assert.Equal(t, shape.TypeMap{"": types.TagArray, "0": types.TagNumber}, res.Value)

	res, err = reg.Execute(ctx, ToolStructure, map[string]any{"operation": "transform", "value": "ab", "type": "reverse"})
	require.NoError(t, err)
	assert.Equal(t, "ba", res.Value)
}

func TestStructure_Errors(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	res, err := reg.Execute(ctx, ToolStructure, map[string]any{"operation": "explode", "value": 1})
	assert.ErrorIs(t, err, ErrUnknownOperation)
	assert.False(t, res.Success)

	_, err = reg.Execute(ctx, ToolStructure, map[string]any{"operation": "transform", "value": 1})
	assert.ErrorIs(t, err, tools.ErrMissingRequiredArg)
}
