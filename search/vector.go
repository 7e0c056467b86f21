package search

import "math"

// L2Distance computes the Euclidean distance between two vectors.
// Returns ErrDimensionMismatch when the lengths differ.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
