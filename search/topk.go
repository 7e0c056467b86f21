package search

import (
	"sort"

	"github.com/poiesic/hnjobs/core"
)

// rankedPosting pairs a posting with its distance from the query vector.
type rankedPosting struct {
	posting  *core.Posting
	distance float64
}

// closerThan orders candidates by distance ascending, breaking ties on the
// smaller internal ID so equal-distance results rank deterministically.
func (r rankedPosting) closerThan(other rankedPosting) bool {
	if r.distance != other.distance {
		return r.distance < other.distance
	}
	return r.posting.Id < other.posting.Id
}

// topK selects the k closest candidates and returns them sorted from best
// to worst. The input slice is reordered in place.
func topK(candidates []rankedPosting, k int) []rankedPosting {
	if k <= 0 {
		return nil
	}
	if len(candidates) > k {
		quickselect(candidates, k)
		candidates = candidates[:k]
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].closerThan(candidates[j])
	})
	return candidates
}

// quickselect partitions candidates so the k best occupy the first k slots,
// in no particular order. Average O(n).
func quickselect(candidates []rankedPosting, k int) {
	lo, hi := 0, len(candidates)-1
	for lo < hi {
		p := partition(candidates, lo, hi)
		switch {
		case p == k-1:
			return
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partition(candidates []rankedPosting, lo, hi int) int {
	// Median-of-three pivot guards against sorted input.
	mid := lo + (hi-lo)/2
	if candidates[mid].closerThan(candidates[lo]) {
		candidates[lo], candidates[mid] = candidates[mid], candidates[lo]
	}
	if candidates[hi].closerThan(candidates[lo]) {
		candidates[lo], candidates[hi] = candidates[hi], candidates[lo]
	}
	if candidates[hi].closerThan(candidates[mid]) {
		candidates[mid], candidates[hi] = candidates[hi], candidates[mid]
	}
	pivot := candidates[mid]
	candidates[mid], candidates[hi] = candidates[hi], candidates[mid]

	i := lo
	for j := lo; j < hi; j++ {
		if candidates[j].closerThan(pivot) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
			i++
		}
	}
	candidates[i], candidates[hi] = candidates[hi], candidates[i]
	return i
}
