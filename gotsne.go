package gotsne

import (
	"fmt"
	"math"

	"github.com/hupe1980/gotsne/neighbor"
	"github.com/hupe1980/gotsne/sptree"
	"golang.org/x/sync/errgroup"
)

// TSNE runs the Barnes-Hut t-SNE algorithm with a fixed, immutable
// configuration. A single instance may initialize and drive any number of
// independent embeddings.
type TSNE struct {
	opts options
}

// New creates a TSNE instance from the given options. Invalid combinations
// are rejected here so that later calls never observe partial
// configuration.
func New(optFns ...Option) (*TSNE, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ndim < 1 || opts.ndim > sptree.MaxDims {
		return nil, fmt.Errorf("output dimensions must be between 1 and %d, got %d", sptree.MaxDims, opts.ndim)
	}
	if opts.perplexity <= 0 {
		return nil, fmt.Errorf("perplexity must be positive, got %v", opts.perplexity)
	}
	if opts.theta < 0 {
		return nil, fmt.Errorf("theta must be non-negative, got %v", opts.theta)
	}
	if opts.maxDepth < 1 {
		return nil, fmt.Errorf("max depth must be positive, got %d", opts.maxDepth)
	}
	if opts.intervals > 0 && opts.ndim != 2 {
		return nil, &ErrUnsupportedDimension{
			Dimension: opts.ndim,
			cause:     fmt.Errorf("interpolation requires 2 output dimensions"),
		}
	}
	if opts.workers < 1 {
		opts.workers = 1
	}

	return &TSNE{opts: opts}, nil
}

// Initialize builds the symmetrized neighbor graph from precomputed
// nearest-neighbor results and returns the Status required by Run.
//
// indices and distances must have one row per point, each of the same
// length K, with distances matching indices element-wise. The effective
// perplexity is implicitly K/3; the configured perplexity is ignored in
// this mode. Validation failures produce no partial state.
func (t *TSNE) Initialize(indices [][]int, distances [][]float64) (*Status, error) {
	if len(indices) != len(distances) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrMismatchedLengths, len(indices), len(distances))
	}
	n := len(indices)
	if n == 0 {
		return nil, ErrNoPoints
	}

	k := len(indices[0])
	if k < 1 {
		return nil, fmt.Errorf("%w: empty neighbor list", ErrNoPoints)
	}
	if k >= n {
		return nil, &ErrTooManyNeighbors{K: k, N: n}
	}

	converted := make([][]int32, n)
	for i := 0; i < n; i++ {
		if len(indices[i]) != k {
			return nil, &ErrRaggedNeighbors{Point: i, Expected: k, Actual: len(indices[i])}
		}
		if len(distances[i]) != k {
			return nil, fmt.Errorf("%w: point %d has %d indices but %d distances", ErrMismatchedLengths, i, k, len(distances[i]))
		}
		row := make([]int32, k)
		for m, idx := range indices[i] {
			if idx < 0 || idx >= n {
				return nil, &ErrNeighborOutOfRange{Point: i, Index: idx, N: n}
			}
			row[m] = int32(idx)
		}
		converted[i] = row
	}

	logger := t.opts.logger.WithN(n).WithK(k)
	logger.Debug("calibrating neighbor probabilities")

	status := newStatus(n, t.opts.ndim, k, t.opts.maxDepth)
	t.computeGaussianPerplexity(distances, k, status)
	symmetrizeMatrix(converted, k, status)

	logger.Debug("initialization complete")
	return status, nil
}

// InitializeFromSearcher derives K = ceil(3 * perplexity), gathers every
// point's K nearest neighbors through the searcher, and initializes from
// the results. Searches for independent points fan out in parallel.
func (t *TSNE) InitializeFromSearcher(s neighbor.Searcher) (*Status, error) {
	n := s.Len()
	if n == 0 {
		return nil, ErrNoPoints
	}
	k := int(math.Ceil(3 * t.opts.perplexity))
	if k >= n {
		return nil, &ErrTooManyNeighbors{K: k, N: n}
	}

	indices := make([][]int, n)
	distances := make([][]float64, n)

	var g errgroup.Group
	g.SetLimit(t.opts.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			hits, err := s.Search(i, k)
			if err != nil {
				return fmt.Errorf("neighbor search for point %d: %w", i, err)
			}
			if len(hits) != k {
				return &ErrRaggedNeighbors{Point: i, Expected: k, Actual: len(hits)}
			}
			idx := make([]int, k)
			dist := make([]float64, k)
			for m, h := range hits {
				idx[m] = h.Index
				dist[m] = h.Distance
			}
			indices[i] = idx
			distances[i] = dist
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return t.Initialize(indices, distances)
}

// Run iterates the optimization until the configured iteration budget is
// exhausted. y is the caller-owned embedding buffer, point-major with ndim
// values per point; it is read as the current layout and overwritten in
// place.
//
// Run is resumable: on a Status that is already partway through, it
// continues from the stored iteration using the exaggeration and momentum
// values appropriate to it.
func (t *TSNE) Run(status *Status, y []float64) error {
	if len(y) != status.N()*status.ndim {
		return &ErrBufferSize{Expected: status.N() * status.ndim, Actual: len(y)}
	}

	multiplier := 1.0
	if status.iter < t.opts.stopLyingIter {
		multiplier = t.opts.exaggerationFactor
	}
	momentum := t.opts.finalMomentum
	if status.iter < t.opts.momSwitchIter {
		momentum = t.opts.startMomentum
	}

	logger := t.opts.logger.WithN(status.N())
	for ; status.iter < t.opts.maxIter; status.iter++ {
		if status.iter == t.opts.stopLyingIter {
			multiplier = 1
		}
		if status.iter == t.opts.momSwitchIter {
			momentum = t.opts.finalMomentum
		}

		if err := t.iterate(status, y, multiplier, momentum); err != nil {
			return fmt.Errorf("iteration %d: %w", status.iter, err)
		}

		if (status.iter+1)%100 == 0 {
			logger.Debug("iteration complete", "iteration", status.iter+1)
		}
	}
	return nil
}

// RunFull is shorthand for Initialize followed by Run.
func (t *TSNE) RunFull(indices [][]int, distances [][]float64, y []float64) (*Status, error) {
	status, err := t.Initialize(indices, distances)
	if err != nil {
		return nil, err
	}
	if err := t.Run(status, y); err != nil {
		return nil, err
	}
	return status, nil
}

// RunFullFromSearcher is shorthand for InitializeFromSearcher followed by
// Run.
func (t *TSNE) RunFullFromSearcher(s neighbor.Searcher, y []float64) (*Status, error) {
	status, err := t.InitializeFromSearcher(s)
	if err != nil {
		return nil, err
	}
	if err := t.Run(status, y); err != nil {
		return nil, err
	}
	return status, nil
}

// iterate performs a single optimization step: gradient, gain adaptation,
// momentum update, and re-centering.
func (t *TSNE) iterate(status *Status, y []float64, multiplier, momentum float64) error {
	if err := t.computeGradient(status, y, multiplier); err != nil {
		return err
	}

	applyUpdate(status, y, momentum, t.opts.eta)
	recenter(y, status.N(), status.ndim)
	return nil
}

// applyUpdate adapts the per-coordinate gains and applies the
// gain-and-momentum update rule to the velocities and positions.
//
// A gain grows when the gradient direction disagrees with the current
// velocity and shrinks when they agree, clamped below at 0.01. This is the
// adaptive step-size heuristic of the reference implementation.
func applyUpdate(status *Status, y []float64, momentum, eta float64) {
	for i := range status.gains {
		g := status.gains[i]
		if sign(status.dY[i]) != sign(status.uY[i]) {
			g += 0.2
		} else {
			g *= 0.8
		}
		status.gains[i] = math.Max(0.01, g)
	}

	for i := range status.uY {
		status.uY[i] = momentum*status.uY[i] - eta*status.gains[i]*status.dY[i]
		y[i] += status.uY[i]
	}
}

// recenter subtracts the per-dimension mean from every point, keeping the
// embedding's centroid at the origin. The objective is translation
// invariant, so without this the solution would drift unconstrained.
func recenter(y []float64, n, ndim int) {
	for d := 0; d < ndim; d++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += y[i*ndim+d]
		}
		mean := sum / float64(n)
		for i := 0; i < n; i++ {
			y[i*ndim+d] -= mean
		}
	}
}

func sign(x float64) float64 {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}
