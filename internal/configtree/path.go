package configtree

import (
	"strconv"
	"strings"
)

// GetPath looks up the value at a dot-delimited path like "goals.2.title".
// Numeric segments index into arrays. The second return is false when any
// segment is missing or traverses a scalar; GetPath never panics.
func GetPath(obj any, path string) (any, bool) {
	cur := obj
	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// SetPath returns a new document with value written at the dot-delimited
// path. The input is not mutated: every container along the path is copied,
// untouched siblings are shared. Missing intermediates become objects,
// except a purely numeric first segment over a non-container root, which
// creates an array (matching the array-patch heuristic in Merge). Numeric
// segments into existing arrays grow them with nil padding as needed.
func SetPath(obj any, path string, value any) any {
	return setSegments(obj, strings.Split(path, "."), value, true)
}

func setSegments(obj any, segs []string, value any, first bool) any {
	if len(segs) == 0 {
		return value
	}
	seg := segs[0]

	switch c := obj.(type) {
	case map[string]any:
		out := make(map[string]any, len(c)+1)
		for k, v := range c {
			out[k] = v
		}
		out[seg] = setSegments(out[seg], segs[1:], value, false)
		return out
	case []any:
		if idx, err := strconv.Atoi(seg); err == nil && idx >= 0 {
			out := make([]any, len(c))
			copy(out, c)
			for idx >= len(out) {
				out = append(out, nil)
			}
			out[idx] = setSegments(out[idx], segs[1:], value, false)
			return out
		}
		// Non-numeric key over an array replaces it with an object.
		return map[string]any{seg: setSegments(nil, segs[1:], value, false)}
	default:
		if idx, err := strconv.Atoi(seg); err == nil && idx >= 0 && first {
			out := make([]any, idx+1)
			out[idx] = setSegments(nil, segs[1:], value, false)
			return out
		}
		return map[string]any{seg: setSegments(nil, segs[1:], value, false)}
	}
}
