package gotsne

import "github.com/hupe1980/gotsne/sptree"

// Status holds the precomputed neighbor graph and the resumable
// optimization state threaded through every Run call.
//
// A Status is produced by Initialize or InitializeFromSearcher and is bound
// to a single embedding buffer for its lifetime. Callers may stop and
// resume the optimization by holding onto it between Run calls, but should
// otherwise refrain from interacting with its internals.
type Status struct {
	ndim int
	k    int

	// neighbors and probabilities form the symmetrized neighbor graph:
	// for each point, neighbor indices sorted in increasing order and the
	// matching joint probabilities, summing to 1 across the whole graph.
	neighbors     [][]int32
	probabilities [][]float64

	// Per-coordinate optimization state.
	dY    []float64
	uY    []float64
	gains []float64
	posF  []float64
	negF  []float64

	// sumQBuf holds per-point normalization contributions when the
	// repulsive pass runs in parallel; it is reduced in index order so the
	// rounding behavior matches the sequential path.
	sumQBuf []float64

	tree *sptree.Tree

	iter int
}

func newStatus(n, ndim, k, maxDepth int) *Status {
	s := &Status{
		ndim:          ndim,
		k:             k,
		neighbors:     make([][]int32, n),
		probabilities: make([][]float64, n),
		dY:            make([]float64, n*ndim),
		uY:            make([]float64, n*ndim),
		gains:         make([]float64, n*ndim),
		posF:          make([]float64, n*ndim),
		negF:          make([]float64, n*ndim),
		sumQBuf:       make([]float64, n),
		tree:          sptree.New(n, ndim, maxDepth),
	}
	for i := range s.gains {
		s.gains[i] = 1.0
	}
	return s
}

// N returns the number of observations.
func (s *Status) N() int { return len(s.neighbors) }

// Iteration returns the number of iterations performed on this Status so
// far.
func (s *Status) Iteration() int { return s.iter }
