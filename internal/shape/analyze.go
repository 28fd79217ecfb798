package shape

import (
	"sort"
	"strconv"
	"strings"

	"shapeshift/internal/types"
)

// PathSeparator joins path segments in TypeMap keys.
const PathSeparator = "."

// TypeMap maps a dotted structural path to the type observed there.
type TypeMap map[string]types.Tag

// Valuer is implemented by structured values that have a JSON-shaped view,
// such as wrapped nodes. AnalyzeTypes walks the view instead of the Go value.
type Valuer interface {
	ToValue() any
}

// AnalyzeTypes walks value and records the type of every node by path. The
// optional path is the prefix under which value lives. Inputs must be
// acyclic.
func AnalyzeTypes(value any, path ...string) TypeMap {
	out := make(TypeMap)
	analyze(value, append([]string(nil), path...), out)
	return out
}

func analyze(value any, path []string, out TypeMap) {
	if v, ok := value.(Valuer); ok {
		value = v.ToValue()
	}

	key := strings.Join(path, PathSeparator)
	tag := types.TagOf(value)
	out[key] = tag

	switch {
	case tag.IsPrimitive():
		return
	case tag == types.TagArray:
		elems, _ := types.Elements(value)
		for i, elem := range elems {
			analyze(elem, extend(path, strconv.Itoa(i)), out)
		}
	default:
		entries, _ := types.Entries(value)
		for _, e := range entries {
			analyze(e.Value, extend(path, e.Key), out)
		}
	}
}

// extend returns path+seg without aliasing the caller's backing array.
func extend(path []string, seg string) []string {
	next := make([]string, len(path)+1)
	copy(next, path)
	next[len(path)] = seg
	return next
}

// Paths returns the keys of m in lexical order.
func Paths(m TypeMap) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Count returns how many entries of m carry the given tag.
func Count(m TypeMap, tag types.Tag) int {
	n := 0
	for _, t := range m {
		if t == tag {
			n++
		}
	}
	return n
}
