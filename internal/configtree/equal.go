package configtree

import "encoding/json"

// Equal reports deep equality between two documents. Keys whose value is
// nil count as absent on both sides, so {"a": nil} equals {}. Arrays match
// only arrays of the same length. Numbers compare by value across int and
// float representations, since documents round-trip through encoding/json.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range av {
			if v == nil {
				continue
			}
			other, present := bv[k]
			if !present || other == nil || !Equal(v, other) {
				return false
			}
		}
		for k, v := range bv {
			if v == nil {
				continue
			}
			if existing, present := av[k]; !present || existing == nil {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		return scalarEqual(a, b)
	}
}

func scalarEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
