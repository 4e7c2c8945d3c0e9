package gotsne

import "sort"

// symmetrizeMatrix merges the per-point conditional distributions produced
// by the perplexity calibration into a single undirected graph stored in
// s.neighbors / s.probabilities.
//
// For each directed edge (i, j) the reverse direction is looked up in j's
// original K-nearest-neighbor list. A present reverse edge has both
// probabilities replaced by their sum, performed only when i < j so each
// pair is merged exactly once; an absent one is inserted into j's list with
// the one-directional probability. Every probability is then divided by
// twice the original grand total (the merge counted each undirected edge
// from both directions), leaving the whole graph summing to 1, and each
// list is sorted by neighbor index.
func symmetrizeMatrix(indices [][]int32, k int, s *Status) {
	n := len(indices)

	for i := 0; i < n; i++ {
		s.neighbors[i] = append(make([]int32, 0, k), indices[i]...)
	}

	for i := 0; i < n; i++ {
		mine := indices[i]
		for k1 := 0; k1 < k; k1++ {
			j := mine[k1]
			theirs := indices[j]

			present := false
			for k2 := 0; k2 < k; k2++ {
				if theirs[k2] != int32(i) {
					continue
				}
				if int32(i) < j {
					// The i > j half of this pair was already merged when
					// the roles were reversed.
					sum := s.probabilities[i][k1] + s.probabilities[j][k2]
					s.probabilities[i][k1] = sum
					s.probabilities[j][k2] = sum
				}
				present = true
				break
			}

			if !present {
				s.neighbors[j] = append(s.neighbors[j], int32(i))
				s.probabilities[j] = append(s.probabilities[j], s.probabilities[i][k1])
			}
		}
	}

	// Normalize so the probabilities across the entire graph sum to 1.
	total := 0.0
	for i := range s.probabilities {
		for k2 := range s.probabilities[i] {
			s.probabilities[i][k2] /= 2
			total += s.probabilities[i][k2]
		}
	}
	for i := range s.probabilities {
		for k2 := range s.probabilities[i] {
			s.probabilities[i][k2] /= total
		}
	}

	// Sort by neighbor index, keeping probabilities in lockstep. Increasing
	// indices make the edge-force pass friendlier to the cache.
	for i := range s.neighbors {
		sortPairs(s.neighbors[i], s.probabilities[i])
	}
}

// sortPairs sorts parallel index/probability slices by index.
func sortPairs(idx []int32, prob []float64) {
	sort.Sort(&pairSorter{idx: idx, prob: prob})
}

type pairSorter struct {
	idx  []int32
	prob []float64
}

func (p *pairSorter) Len() int           { return len(p.idx) }
func (p *pairSorter) Less(i, j int) bool { return p.idx[i] < p.idx[j] }
func (p *pairSorter) Swap(i, j int) {
	p.idx[i], p.idx[j] = p.idx[j], p.idx[i]
	p.prob[i], p.prob[j] = p.prob[j], p.prob[i]
}
