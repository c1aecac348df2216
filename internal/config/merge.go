package config

// Merge returns a new document equal to base with every defined, non-null
// field of overrides applied. Fields that are object-valued in both inputs
// are merged one level deep: sub-keys union with overrides winning, null
// override sub-keys ignored. Arrays are replaced wholesale, never
// concatenated. Neither input is mutated.
func Merge(base, overrides Document) Document {
	result := cloneMap(base)
	if result == nil {
		result = Document{}
	}

	for key, overrideVal := range overrides {
		if overrideVal == nil {
			continue
		}

		baseMap, baseIsMap := result[key].(map[string]any)
		overrideMap, overrideIsMap := overrideVal.(map[string]any)
		if baseIsMap && overrideIsMap {
			merged := cloneMap(baseMap)
			for subKey, subVal := range overrideMap {
				if subVal == nil {
					continue
				}
				merged[subKey] = cloneValue(subVal)
			}
			result[key] = merged
			continue
		}

		result[key] = cloneValue(overrideVal)
	}

	return result
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}
