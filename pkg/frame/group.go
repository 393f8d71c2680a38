package frame

// GroupedCumSum returns the running sum of values within each group of keys.
// Rows are partitioned by key preserving their input order and each
// partition is scanned independently. A row with a missing value or key gets
// a nil result and leaves its group's running sum unchanged.
func GroupedCumSum(values, keys []any) []any {
	out := make([]any, len(values))
	sums := make(map[any]float64)
	for i, v := range values {
		if i >= len(keys) || keys[i] == nil {
			continue
		}
		x, ok := AsFloat(v)
		if !ok {
			continue
		}
		sums[keys[i]] += x
		out[i] = sums[keys[i]]
	}
	return out
}
