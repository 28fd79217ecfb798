package transform

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"shapeshift/internal/types"
)

// Func is a pure envelope-to-envelope transformation.
type Func func(Envelope) (Envelope, error)

// Kind names a registered transform.
type Kind string

const (
	Uppercase Kind = "uppercase"
	Reverse   Kind = "reverse"
	JSONify   Kind = "jsonify"
	Base64    Kind = "base64"
)

// Kinds lists every registered transform in a stable order.
var Kinds = []Kind{Uppercase, Reverse, JSONify, Base64}

// ParseKind resolves a transform name. Names are matched case-insensitively
// after trimming whitespace.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	switch k {
	case Uppercase, Reverse, JSONify, Base64:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransformType, name)
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Func returns the transformation registered under k.
func (k Kind) Func() (Func, error) {
	switch k {
	case Uppercase:
		return uppercase, nil
	case Reverse:
		return reverse, nil
	case JSONify:
		return jsonify, nil
	case Base64:
		return encodeBase64, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTransformType, string(k))
}

// Apply runs the transform registered under k on e.
func (k Kind) Apply(e Envelope) (Envelope, error) {
	fn, err := k.Func()
	if err != nil {
		return Envelope{}, err
	}
	return fn(e)
}

func uppercase(e Envelope) (Envelope, error) {
	out := e.With(strings.ToUpper(types.Stringify(e.Value)), types.TagString)
	return stamp(out, string(Uppercase)), nil
}

func reverse(e Envelope) (Envelope, error) {
	r := []rune(types.Stringify(e.Value))
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	out := e.With(string(r), types.TagString)
	return stamp(out, string(Reverse)), nil
}

// jsonify pretty-prints the value as JSON. A string that looks like it
// embeds an object or array is decoded first; if decoding fails the
// original string is serialized and the parse error is recorded under
// parseError instead of being returned.
func jsonify(e Envelope) (Envelope, error) {
	value := e.Value
	wasJSON := false
	var parseErr error

	if s, ok := value.(string); ok && strings.ContainsAny(s, "{[") {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			parseErr = fmt.Errorf("%w: %v", ErrMalformedInput, err)
		} else {
			value = decoded
			wasJSON = true
		}
	}

	text, err := marshalIndent(value)
	if err != nil {
		return Envelope{}, fmt.Errorf("jsonify: %w", err)
	}

	out := e.With(text, types.TagString)
	out.Metadata[MetaWasJSON] = wasJSON
	if parseErr != nil {
		out.Metadata[MetaParseError] = parseErr.Error()
	}
	return stamp(out, string(JSONify)), nil
}

func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// encodeBase64 has no decoding counterpart.
func encodeBase64(e Envelope) (Envelope, error) {
	encoded := base64.StdEncoding.EncodeToString([]byte(types.Stringify(e.Value)))
	out := e.With(encoded, types.TagString)
	return stamp(out, string(Base64)), nil
}
