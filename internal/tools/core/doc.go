// Package core provides the data tools shapeshift registers by default.
//
// Each tool adapts one engine operation to the uniform tool contract so the
// pipeline and the CLI can call it by name.
//
// Tools:
//   - wrap: Wrap a value in a nested chain of the given depth
//   - create_complex: Build a composite structure around a primitive
//   - analyze_types: Flatten a value into a path-to-type map
//   - data_transform: Apply a single named transform
//   - compose: Run a chain of transforms with an optional validator
//   - structure: Dispatch to analyze, transform or wrap by operation name
package core
