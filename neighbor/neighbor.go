// Package neighbor defines the nearest-neighbor contract consumed by the
// t-SNE core, together with the standalone symmetrization of externally
// supplied neighbor lists.
//
// The core never computes raw nearest neighbors itself. It consumes
// (index, distance) pairs, either precomputed by the caller or produced on
// demand through the Searcher interface.
package neighbor

import "sort"

// Neighbor is a single nearest-neighbor search hit.
type Neighbor struct {
	// Index identifies the neighboring point.
	Index int

	// Distance is the distance from the query point to the neighbor.
	Distance float64
}

// Searcher is a pluggable nearest-neighbor search capability.
//
// Implementations must return exactly k hits for every point, ordered by
// increasing distance and excluding the query point itself.
type Searcher interface {
	// Len returns the number of indexed points.
	Len() int

	// Search returns the k nearest neighbors of point i.
	Search(i, k int) ([]Neighbor, error)
}

// WeightedNeighbor is a neighbor carrying a conditional probability instead
// of a distance.
type WeightedNeighbor struct {
	Index       int
	Probability float64
}

// Symmetrize merges per-point conditional probability lists into a single
// undirected graph, in place.
//
// On return, the probability from i to j equals the probability from j to
// i, every list is sorted by neighbor index, and the probabilities across
// all lists sum to 1. Lists need not be pre-sorted and may have ragged
// lengths; missing reverse edges are inserted with the one-directional
// probability.
//
// The merge walks each neighbor's list linearly by index rather than
// searching it, so the whole pass is linear in the total number of edges.
func Symmetrize(lists [][]WeightedNeighbor) {
	n := len(lists)

	// Sort by index so each target list can be consumed with a single
	// monotone cursor, and capture the pre-merge list lengths: entries
	// appended during the merge must not be revisited.
	last := make([]int, n)
	original := make([]int, n)
	total := 0.0
	for i := range lists {
		current := lists[i]
		sort.Slice(current, func(a, b int) bool { return current[a].Index < current[b].Index })
		original[i] = len(current)
		for _, e := range current {
			total += e.Probability
		}
	}

	for i := 0; i < n; i++ {
		current := lists[i]
		for k := range current {
			j := current[k].Index
			target := lists[j]
			limit := original[j]
			for last[j] < limit && target[last[j]].Index < i {
				last[j]++
			}

			if last[j] < limit && target[last[j]].Index == i {
				if i < j {
					// Combine both directions exactly once; the i > j
					// case was already handled when i was the target.
					combined := current[k].Probability + target[last[j]].Probability
					current[k].Probability = combined
					target[last[j]].Probability = combined
				}
			} else {
				lists[j] = append(lists[j], WeightedNeighbor{Index: i, Probability: current[k].Probability})
			}
		}
	}

	// Each undirected edge was counted from both directions, so normalize
	// by twice the original grand total.
	total *= 2
	for i := range lists {
		current := lists[i]
		for k := range current {
			current[k].Probability /= total
		}
		sort.Slice(current, func(a, b int) bool { return current[a].Index < current[b].Index })
	}
}
