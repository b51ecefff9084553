package configtree

import "strconv"

// Merge applies an edit patch onto a base scene configuration and returns
// the merged document. Neither input is mutated; every container in the
// result is freshly allocated.
//
// Rules:
//   - a non-object source is a no-op patch, a non-object target is replaced
//     by the source wholesale
//   - array values in the source replace the target value wholesale
//   - an object value whose keys are all numeric strings, patching an array
//     in the target, is reinterpreted as a sparse array patch: each numeric
//     key merges into that index of the array. The edit UI serializes
//     "edit element 2 of array X" as {X: {"2": {...}}}, and this rule
//     translates that back into array mutation.
//   - object over object recurses, anything else replaces
//
// The all-keys-numeric heuristic cannot distinguish an array patch from a
// genuinely object-keyed map with numeric string keys; callers that need
// numeric object keys must not store them next to arrays.
func Merge(target, source any) any {
	src, ok := source.(map[string]any)
	if !ok {
		return target
	}
	dst, ok := target.(map[string]any)
	if !ok {
		return Clone(source)
	}

	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = Clone(v)
	}

	for k, v := range src {
		switch sv := v.(type) {
		case []any:
			out[k] = Clone(sv)
		case map[string]any:
			if arr, isArr := out[k].([]any); isArr && allNumericKeys(sv) {
				out[k] = mergeSparseArray(arr, sv)
				continue
			}
			out[k] = Merge(out[k], sv)
		default:
			out[k] = sv
		}
	}
	return out
}

// mergeSparseArray applies a numeric-keyed object patch to arr. arr must
// already be owned by the caller (Merge clones before calling). Indexes
// past the end of the array grow it with nil padding.
func mergeSparseArray(arr []any, patch map[string]any) []any {
	out := arr
	for key, pv := range patch {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			continue
		}
		for idx >= len(out) {
			out = append(out, nil)
		}
		switch elem := pv.(type) {
		case map[string]any:
			base := out[idx]
			if base == nil {
				base = map[string]any{}
			}
			out[idx] = Merge(base, elem)
		case []any:
			out[idx] = Clone(elem)
		default:
			out[idx] = elem
		}
	}
	return out
}

func allNumericKeys(m map[string]any) bool {
	for k := range m {
		if k == "" {
			return false
		}
		for _, r := range k {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
