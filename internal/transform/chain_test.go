package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shapeshift/internal/types"
)

func TestCompose_IdentityLaw(t *testing.T) {
	for _, v := range []any{"x", 3, []any{1, 2}, map[string]any{"a": true}} {
		out, err := Compose(Chain{Initial: NewEnvelope(v)})
		require.NoError(t, err)
		assert.Equal(t, v, out.Value)
		assert.Equal(t, types.TagOf(v), out.Type)
		assert.Equal(t, true, out.Metadata[MetaProcessed])
		assert.IsType(t, int64(0), out.Metadata[MetaCompletedAt])
	}
}

func TestCompose_LeftToRight(t *testing.T) {
	chain, err := BuildChain([]string{"uppercase", "reverse"}, NewEnvelope("abc"), WithName("ur"))
	require.NoError(t, err)

	out, err := Compose(chain)
	require.NoError(t, err)
	assert.Equal(t, "CBA", out.Value)
	assert.Equal(t, "reverse", out.Metadata[MetaTransformed])
	assert.Equal(t, []string{"uppercase", "reverse"}, out.History())
	assert.Equal(t, ChainMetadata{Name: "ur", Steps: 2}, chain.Metadata)
}

func TestCompose_MetadataAccumulates(t *testing.T) {
	chain, err := BuildChain([]string{"jsonify", "base64"}, NewEnvelope(`[1,2]`))
	require.NoError(t, err)

	out, err := Compose(chain)
	require.NoError(t, err)
	assert.Equal(t, true, out.Metadata[MetaWasJSON])
	assert.Equal(t, "base64", out.Metadata[MetaTransformed])
	assert.Equal(t, true, out.Metadata[MetaProcessed])
}

func TestCompose_PostprocessRunsLast(t *testing.T) {
	var sawProcessed bool
	probe := func(e Envelope) (Envelope, error) {
		_, sawProcessed = e.Metadata[MetaProcessed]
		return e, nil
	}
	_, err := Compose(Chain{Transforms: []Func{probe}, Initial: NewEnvelope("x")})
	require.NoError(t, err)
	assert.False(t, sawProcessed)
}

func TestCompose_Validation(t *testing.T) {
	chain, err := BuildChain([]string{"uppercase"}, NewEnvelope("abc"),
		WithValidator(func(e Envelope) bool { return e.Value == "ABC" }))
	require.NoError(t, err)
	_, err = Compose(chain)
	require.NoError(t, err)

	chain.Validation = func(Envelope) bool { return false }
	_, err = Compose(chain)
	assert.ErrorIs(t, err, ErrValidationFailure)
}

func TestCompose_TransformErrorStopsFold(t *testing.T) {
	calls := 0
	counting := func(e Envelope) (Envelope, error) {
		calls++
		return e, nil
	}
	broken := func(Envelope) (Envelope, error) {
		return Envelope{}, assert.AnError
	}
	_, err := Compose(Chain{
		Transforms: []Func{counting, broken, counting},
		Initial:    NewEnvelope("x"),
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestCompose_DoesNotAliasTransforms(t *testing.T) {
	fns := make([]Func, 1, 4)
	fns[0] = uppercase
	_, err := Compose(Chain{Transforms: fns, Initial: NewEnvelope("x")})
	require.NoError(t, err)
	assert.Nil(t, fns[:2][1])
}

func TestBuildChain_UnknownName(t *testing.T) {
	_, err := BuildChain([]string{"uppercase", "rot13"}, NewEnvelope("x"))
	assert.ErrorIs(t, err, ErrUnknownTransformType)
}

func TestBuildChain_Options(t *testing.T) {
	chain, err := BuildChain(nil, NewEnvelope("x"), WithName("n"), WithComplexity(3))
	require.NoError(t, err)
	assert.Equal(t, "n", chain.Metadata.Name)
	assert.Equal(t, 3, chain.Metadata.Complexity)
	assert.Equal(t, 0, chain.Metadata.Steps)
	assert.Nil(t, chain.Validation)
}
