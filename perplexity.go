package gotsne

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// perplexityTol is the entropy tolerance for the bandwidth search.
	perplexityTol = 1e-5

	// perplexityMaxIter bounds the bandwidth search per point.
	perplexityMaxIter = 200
)

// computeGaussianPerplexity calibrates, for every point independently, a
// Gaussian kernel bandwidth beta (inverse variance) such that the entropy
// of the conditional distribution over the point's K neighbors equals
// log(K/3), i.e. the target perplexity is implicitly K/3. The row-normalized
// conditional probabilities are written into s.probabilities.
func (t *TSNE) computeGaussianPerplexity(distances [][]float64, k int, s *Status) {
	logPerplexity := math.Log(float64(k) / 3.0)

	forEachChunk(t.opts.workers, len(distances), func(start, end int) {
		squaredDelta := make([]float64, k)
		quadDelta := make([]float64, k)

		for i := start; i < end; i++ {
			out := make([]float64, k)
			s.probabilities[i] = out
			calibrateBandwidth(distances[i], squaredDelta, quadDelta, logPerplexity, out)
		}
	})
}

// calibrateBandwidth performs the bandwidth search for a single point,
// fills out with its row-normalized conditional probabilities, and returns
// the final beta.
//
// Distances are shifted by subtracting the nearest neighbor's squared
// distance before exponentiation. This avoids underflow when converting
// distances to probabilities and has no effect on the entropy or the final
// probabilities, since a uniform scaling cancels out under row
// normalization. The shift pins the first probability at exp(0) = 1.
func calibrateBandwidth(distances, squaredDelta, quadDelta []float64, logPerplexity float64, out []float64) float64 {
	k := len(distances)
	first := distances[0] * distances[0]
	for m := 1; m < k; m++ {
		squaredDelta[m] = distances[m]*distances[m] - first
		quadDelta[m] = squaredDelta[m] * squaredDelta[m]
	}
	out[0] = 1

	beta := 1.0
	minBeta, maxBeta := 0.0, math.MaxFloat64
	sumP := 1.0

	for iter := 0; iter < perplexityMaxIter; iter++ {
		for m := 1; m < k; m++ {
			out[m] = math.Exp(-beta * squaredDelta[m])
		}

		sumP = floats.Sum(out[1:]) + 1.0
		prod := floats.Dot(squaredDelta[1:], out[1:])
		entropy := beta*(prod/sumP) + math.Log(sumP)

		diff := entropy - logPerplexity
		if math.Abs(diff) < perplexityTol {
			break
		}

		// Attempt a Newton-Raphson step first.
		nrOK := false
		prod2 := floats.Dot(quadDelta[1:], out[1:])
		d1 := -beta / sumP * (prod2 - prod*prod/sumP)
		if d1 != 0 {
			// An overflowing step yields +-Inf, which the bracket check
			// rejects.
			altBeta := beta - diff/d1
			if altBeta > minBeta && altBeta < maxBeta {
				beta = altBeta
				nrOK = true
			}
		}

		// Otherwise bisect, doubling upward while the bracket is open.
		if !nrOK {
			if diff > 0 {
				minBeta = beta
				if maxBeta == math.MaxFloat64 {
					beta *= 2.0
				} else {
					beta = (beta + maxBeta) / 2.0
				}
			} else {
				maxBeta = beta
				beta = (beta + minBeta) / 2.0
			}
		}
	}

	floats.Scale(1.0/sumP, out)
	return beta
}
