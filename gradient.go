package gotsne

import "github.com/hupe1980/gotsne/interp"

// computeGradient rebuilds the spatial tree over the current embedding and
// combines attractive (edge) and repulsive (non-edge) forces into the
// per-coordinate gradient s.dY.
func (t *TSNE) computeGradient(s *Status, y []float64, multiplier float64) error {
	s.tree.Set(y)

	t.computeEdgeForces(s, y, multiplier)

	sumQ, err := t.computeNonEdgeForces(s, y)
	if err != nil {
		return err
	}

	for i := range s.dY {
		s.dY[i] = s.posF[i] - s.negF[i]/sumQ
	}
	return nil
}

// computeEdgeForces accumulates the attractive force on every point from
// its sparse neighbor list into s.posF. multiplier is the current early
// exaggeration scale. Points are independent, so the pass fans out freely.
func (t *TSNE) computeEdgeForces(s *Status, y []float64, multiplier float64) {
	ndim := s.ndim

	forEachChunk(t.opts.workers, s.N(), func(start, end int) {
		for i := start; i < end; i++ {
			self := y[i*ndim : (i+1)*ndim]
			out := s.posF[i*ndim : (i+1)*ndim]
			for d := range out {
				out[d] = 0
			}

			probs := s.probabilities[i]
			for k, j := range s.neighbors[i] {
				other := y[int(j)*ndim : (int(j)+1)*ndim]
				sqdist := 0.0
				for d := 0; d < ndim; d++ {
					diff := self[d] - other[d]
					sqdist += diff * diff
				}

				mult := multiplier * probs[k] / (1 + sqdist)
				for d := 0; d < ndim; d++ {
					out[d] += mult * (self[d] - other[d])
				}
			}
		}
	})
}

// computeNonEdgeForces fills s.negF with the approximate repulsive force on
// every point and returns the global normalization sum over all pairs.
//
// The per-point normalization contributions always land in fixed slots of
// s.sumQBuf and are reduced in index order on a single goroutine, so the
// floating-point rounding of the total is identical whether or not the
// pass ran in parallel.
func (t *TSNE) computeNonEdgeForces(s *Status, y []float64) (float64, error) {
	if t.opts.intervals > 0 {
		return interp.ComputeNonEdgeForces(s.tree, y, t.opts.theta, s.negF, t.opts.intervals, t.opts.workers)
	}

	ndim := s.ndim
	theta := t.opts.theta

	forEachChunk(t.opts.workers, s.N(), func(start, end int) {
		for i := start; i < end; i++ {
			out := s.negF[i*ndim : (i+1)*ndim]
			for d := range out {
				out[d] = 0
			}
			s.sumQBuf[i] = s.tree.ComputeNonEdgeForces(i, theta, out)
		}
	})

	sumQ := 0.0
	for _, q := range s.sumQBuf {
		sumQ += q
	}
	return sumQ, nil
}
