package powerup

// Weighted pairs a candidate value with its selection weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// Pick maps a uniform draw in [0,1) onto weight-proportional buckets in list
// order and returns the selected value. Items with non-positive weight are
// never selected. The second return is false when the list holds no positive
// weight at all.
//
// Draw exactly 0 lands in the first positive-weight bucket; a draw
// approaching 1 lands in the last. The caller supplies the draw, so the
// function is fully deterministic.
func Pick[T any](items []Weighted[T], draw float64) (T, bool) {
	var zero T
	total := 0.0
	for _, item := range items {
		if item.Weight > 0 {
			total += item.Weight
		}
	}
	if total <= 0 {
		return zero, false
	}
	threshold := draw * total
	lastPositive := -1
	for i, item := range items {
		if item.Weight <= 0 {
			continue
		}
		threshold -= item.Weight
		if threshold <= 0 {
			return item.Value, true
		}
		lastPositive = i
	}
	// Rounding at the extreme upper edge can leave the threshold marginally
	// positive after the final bucket; selection must not fail once
	// total > 0, so fall back to the last positive-weight item.
	return items[lastPositive].Value, true
}
