package testutil

import (
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/gotsne/neighbor"
)

// ExactSearcher is a brute-force Euclidean nearest-neighbor searcher over a
// flattened point-major dataset. It implements neighbor.Searcher with 100%
// recall and O(N) cost per query, which is plenty for tests and small
// examples.
type ExactSearcher struct {
	data []float64
	dim  int
	n    int
}

// NewExactSearcher indexes the given point-major data with dim values per
// point.
func NewExactSearcher(data []float64, dim int) *ExactSearcher {
	if dim < 1 || len(data)%dim != 0 {
		panic("testutil: data length must be a multiple of dim")
	}
	return &ExactSearcher{
		data: data,
		dim:  dim,
		n:    len(data) / dim,
	}
}

// Len returns the number of indexed points.
func (s *ExactSearcher) Len() int { return s.n }

// Search returns the k nearest neighbors of point i by Euclidean distance,
// ordered by increasing distance, excluding the point itself.
func (s *ExactSearcher) Search(i, k int) ([]neighbor.Neighbor, error) {
	if i < 0 || i >= s.n {
		return nil, fmt.Errorf("testutil: point index %d out of range [0, %d)", i, s.n)
	}
	if k < 1 || k > s.n-1 {
		return nil, fmt.Errorf("testutil: k %d out of range [1, %d]", k, s.n-1)
	}

	self := s.data[i*s.dim : (i+1)*s.dim]
	hits := make([]neighbor.Neighbor, 0, s.n-1)
	for j := 0; j < s.n; j++ {
		if j == i {
			continue
		}
		other := s.data[j*s.dim : (j+1)*s.dim]
		sqdist := 0.0
		for d := 0; d < s.dim; d++ {
			diff := self[d] - other[d]
			sqdist += diff * diff
		}
		hits = append(hits, neighbor.Neighbor{Index: j, Distance: math.Sqrt(sqdist)})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Index < hits[b].Index
	})
	return hits[:k], nil
}
