package placement

import "github.com/talgya/antiquity/internal/entropy"

// PickIndex draws one index with probability proportional to its weight.
// Non-positive weights are never drawn unless every weight is non-positive,
// in which case index 0 is returned. Returns -1 for an empty slice.
func PickIndex(src entropy.Source, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}

	r := src.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		r -= w
		if r <= 0 {
			return i
		}
	}
	// Rounding left a sliver of r; the last positive weight absorbs it.
	return last
}

// Sample draws count items by weight. Without replacement each item is drawn
// at most once and the result is capped at len(items); the result is in draw
// order. count <= 0 or an empty slice yields nil.
func Sample[T any](src entropy.Source, items []T, weight func(T) float64, count int, replace bool) []T {
	if count <= 0 || len(items) == 0 {
		return nil
	}
	if !replace && count > len(items) {
		count = len(items)
	}

	pool := make([]T, len(items))
	copy(pool, items)
	weights := make([]float64, len(items))
	for i, it := range items {
		weights[i] = weight(it)
	}

	out := make([]T, 0, count)
	for len(out) < count && len(pool) > 0 {
		i := PickIndex(src, weights)
		out = append(out, pool[i])
		if !replace {
			pool = append(pool[:i], pool[i+1:]...)
			weights = append(weights[:i], weights[i+1:]...)
		}
	}
	return out
}

// SampleOne draws a single item by weight. ok is false for an empty slice.
func SampleOne[T any](src entropy.Source, items []T, weight func(T) float64) (item T, ok bool) {
	picked := Sample(src, items, weight, 1, false)
	if len(picked) == 0 {
		return item, false
	}
	return picked[0], true
}
