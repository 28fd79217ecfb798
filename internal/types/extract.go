package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// VALUE EXTRACTION UTILITIES
// =============================================================================
//
// Tool arguments and pipeline payloads arrive as loosely typed values. After
// JSON or YAML decoding they are one of:
//   - string
//   - float64 / json.Number (JSON), int (YAML), or any other Go numeric kind
//   - bool
//   - []any or any other slice
//   - map[string]any or any other string-keyed map
//   - nil
//
// The helpers below convert between those shapes without panicking on type
// mismatch.

// Stringify returns the string form of a value: strings verbatim, numbers in
// their shortest representation, booleans as true/false, nil as "null", and
// composites as compact JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "null"
	case json.Number:
		return x.String()
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x)
	case fmt.Stringer:
		return x.String()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return formatExponent(strconv.FormatFloat(f, 'e', -1, bits))
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// formatExponent drops exponent zero padding: 1e-07 becomes 1e-7.
func formatExponent(s string) string {
	mant, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + exp[:1] + digits
}

// ExtractString extracts a string argument. Non-string values are rejected
// so callers can report an invalid argument type.
func ExtractString(arg any) (string, bool) {
	s, ok := arg.(string)
	return s, ok
}

// ExtractInt extracts an integral argument from any numeric kind or a
// numeric string. Fractional values are rejected.
func ExtractInt(arg any) (int, bool) {
	switch v := arg.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case uint:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// ExtractBool extracts a boolean argument. The strings "true" and "false"
// are accepted as well.
func ExtractBool(arg any) (bool, bool) {
	switch v := arg.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

// ExtractStrings extracts a list of strings from []string or a sequence
// whose elements are all strings.
func ExtractStrings(arg any) ([]string, bool) {
	if ss, ok := arg.([]string); ok {
		out := make([]string, len(ss))
		copy(out, ss)
		return out, true
	}
	elems, ok := Elements(arg)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Elements returns the elements of a sequence value. The second result is
// false when v is not a slice or array.
func Elements(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Entry is a single key/value pair of a mapping value.
type Entry struct {
	Key   string
	Value any
}

// Entries returns the entries of a mapping sorted by key. Keys that are not
// strings are rendered with Stringify. The second result is false when v is
// not a mapping.
func Entries(v any) ([]Entry, bool) {
	var out []Entry
	switch m := v.(type) {
	case map[string]any:
		out = make([]Entry, 0, len(m))
		for k, val := range m {
			out = append(out, Entry{Key: k, Value: val})
		}
	case nil:
		return nil, false
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map {
			return nil, false
		}
		stringKeys := rv.Type().Key().Kind() == reflect.String
		out = make([]Entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key()
			name := ""
			if stringKeys {
				name = key.String()
			} else {
				name = Stringify(key.Interface())
			}
			out = append(out, Entry{Key: name, Value: iter.Value().Interface()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, true
}
