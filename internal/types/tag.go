// Package types holds the value model shared by every shapeshift component:
// the shape tags assigned to JSON-like values, the helpers that pull typed
// arguments out of loosely typed maps, and the uniform Result returned by
// tools and pipeline steps.
package types

import (
	"encoding/json"
	"reflect"
)

// Tag names the structural shape of a value.
type Tag string

const (
	TagString  Tag = "string"
	TagNumber  Tag = "number"
	TagBoolean Tag = "boolean"
	TagArray   Tag = "array"
	TagObject  Tag = "object"
)

// String implements fmt.Stringer.
func (t Tag) String() string { return string(t) }

// IsPrimitive reports whether the tag is string, number or boolean.
func (t Tag) IsPrimitive() bool {
	return t == TagString || t == TagNumber || t == TagBoolean
}

// TagOf classifies v. Strings, numbers and booleans are primitives, any
// slice or array is an array, and everything else (maps, structs, nil) is
// an object. TagOf never fails.
func TagOf(v any) Tag {
	switch v.(type) {
	case string:
		return TagString
	case bool:
		return TagBoolean
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return TagNumber
	case []any:
		return TagArray
	case map[string]any, nil:
		return TagObject
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.String:
		return TagString
	case reflect.Bool:
		return TagBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TagNumber
	case reflect.Slice, reflect.Array:
		return TagArray
	default:
		return TagObject
	}
}

// IsPrimitive reports whether v is a string, number or boolean.
func IsPrimitive(v any) bool {
	return TagOf(v).IsPrimitive()
}
