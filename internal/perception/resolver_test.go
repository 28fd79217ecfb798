package perception

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shapeshift/internal/transform"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		transform transform.Kind
		matched   bool
		payload   any
		rule      PayloadRule
	}{
		{
			name:      "quoted literal",
			text:      `uppercase "hello world"`,
			transform: transform.Uppercase,
			matched:   true,
			payload:   "hello world",
			rule:      RuleQuoted,
		},
		{
			name:      "quoted json",
			text:      `jsonify "{"a": 1}" please`,
			transform: transform.JSONify,
			matched:   true,
			payload:   map[string]any{"a": float64(1)},
			rule:      RuleQuotedJSON,
		},
		{
			name:      "quoted braces that are not json",
			text:      `reverse '{not json}'`,
			transform: transform.Reverse,
			matched:   true,
			payload:   "{not json}",
			rule:      RuleQuoted,
		},
		{
			name:      "unquoted json slice",
			text:      `turn {"k": [1, 2]} into json`,
			transform: transform.JSONify,
			matched:   true,
			payload:   map[string]any{"k": []any{float64(1), float64(2)}},
			rule:      RuleBraceJSON,
		},
		{
			name:      "unquoted raw slice",
			text:      `base64 encode {oops`,
			transform: transform.Base64,
			matched:   true,
			payload:   "{oops",
			rule:      RuleBraceRaw,
		},
		{
			name:      "boolean keyword",
			text:      "reverse the value true",
			transform: transform.Reverse,
			matched:   true,
			payload:   true,
			rule:      RuleBoolean,
		},
		{
			name:      "false keyword",
			text:      "FALSE to upper case",
			transform: transform.Uppercase,
			matched:   true,
			payload:   false,
			rule:      RuleBoolean,
		},
		{
			name:      "stripped text",
			text:      "convert hello there to uppercase",
			transform: transform.Uppercase,
			matched:   true,
			payload:   "hello there",
			rule:      RuleText,
		},
		{
			name:      "trailing connectives",
			text:      "reverse abc using with",
			transform: transform.Reverse,
			matched:   true,
			payload:   "abc",
			rule:      RuleText,
		},
		{
			name:      "base 64 spelled apart",
			text:      "encode secret with base 64",
			transform: transform.Base64,
			matched:   true,
			payload:   "secret with base 64",
			rule:      RuleText,
		},
		{
			name:      "no keyword falls back",
			text:      "shout hello",
			transform: DefaultTransform,
			matched:   false,
			payload:   "shout hello",
			rule:      RuleText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := Resolve(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.transform, task.Transform)
			assert.Equal(t, tt.matched, task.Matched)
			assert.Equal(t, tt.payload, task.Payload)
			assert.Equal(t, tt.rule, task.Rule)
		})
	}
}

func TestResolve_KeywordInsidePayloadIgnored(t *testing.T) {
	task, err := Resolve(`reverse "make it uppercase"`)
	require.NoError(t, err)
	assert.Equal(t, transform.Reverse, task.Transform)
	assert.Equal(t, "make it uppercase", task.Payload)
}

func TestResolve_EarliestKeywordWins(t *testing.T) {
	task, err := Resolve("reverse then uppercase abc")
	require.NoError(t, err)
	assert.Equal(t, transform.Reverse, task.Transform)
}

func TestResolve_Empty(t *testing.T) {
	_, err := Resolve("   ")
	assert.ErrorIs(t, err, ErrEmptyInstruction)
}
