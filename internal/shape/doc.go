// Package shape flattens arbitrary JSON-like values into a map from dotted
// structural path to the type observed at that path.
//
// Every visited node contributes exactly one entry: primitives are leaves,
// arrays and objects contribute their own entry and then recurse into their
// children with the extended path. The root is keyed by the empty string.
//
//	AnalyzeTypes(map[string]any{"a": 1, "b": []any{"x"}})
//	// "": object, "a": number, "b": array, "b.0": string
package shape
