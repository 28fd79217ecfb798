// Package transform runs ordered chains of pure transformations over a typed
// envelope.
//
// Transforms are drawn from a closed registry (see Kind). Each one consumes
// a full Envelope and returns a new one, so metadata written by earlier
// steps is visible to later ones. Compose always appends a post-processing
// step that stamps the envelope as processed.
package transform

import (
	"maps"
	"slices"

	"shapeshift/internal/types"
)

// Metadata keys written by the built-in transforms.
const (
	MetaTransformed = "transformed"
	MetaHistory     = "history"
	MetaProcessed   = "processed"
	MetaCompletedAt = "completedAt"
	MetaWasJSON     = "wasJson"
	MetaParseError  = "parseError"
)

// Envelope is the unit every transform consumes and produces.
type Envelope struct {
	Value    any            `json:"value" yaml:"value"`
	Type     types.Tag      `json:"type" yaml:"type"`
	Metadata map[string]any `json:"metadata" yaml:"metadata"`
}

// NewEnvelope wraps v with its shape tag and empty metadata.
func NewEnvelope(v any) Envelope {
	return Envelope{
		Value:    v,
		Type:     types.TagOf(v),
		Metadata: map[string]any{},
	}
}

// With returns a copy of e holding value and tag. The metadata map is
// cloned so the receiver is never mutated.
func (e Envelope) With(value any, tag types.Tag) Envelope {
	return Envelope{
		Value:    value,
		Type:     tag,
		Metadata: e.cloneMetadata(),
	}
}

// WithMeta returns a copy of e with key set in its metadata.
func (e Envelope) WithMeta(key string, value any) Envelope {
	out := e.With(e.Value, e.Type)
	out.Metadata[key] = value
	return out
}

// History returns the names of transforms applied so far, in order.
func (e Envelope) History() []string {
	h, _ := e.Metadata[MetaHistory].([]string)
	return slices.Clone(h)
}

func (e Envelope) cloneMetadata() map[string]any {
	md := make(map[string]any, len(e.Metadata)+2)
	maps.Copy(md, e.Metadata)
	if h, ok := md[MetaHistory].([]string); ok {
		md[MetaHistory] = slices.Clone(h)
	}
	return md
}

// stamp records a transform name on the envelope.
func stamp(e Envelope, name string) Envelope {
	e.Metadata[MetaTransformed] = name
	h, _ := e.Metadata[MetaHistory].([]string)
	e.Metadata[MetaHistory] = append(h, name)
	return e
}
