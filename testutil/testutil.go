package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a normally distributed pseudo-random number with
// mean 0 and standard deviation 1.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// FillNormal fills dst with standard normal values.
// Locks only once per call (preferred over calling NormFloat64 in a loop).
func (r *RNG) FillNormal(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.NormFloat64()
	}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = minVal + (maxVal-minVal)*r.rand.Float64()
	}
}

// GaussianClusters generates perCluster points around each of the given
// cluster centers, with isotropic Gaussian noise of the given standard
// deviation. It returns the flattened point-major data and the cluster
// label of each point.
func GaussianClusters(rng *RNG, centers [][]float64, perCluster int, stddev float64) ([]float64, []int) {
	if len(centers) == 0 {
		return nil, nil
	}
	dim := len(centers[0])
	data := make([]float64, 0, len(centers)*perCluster*dim)
	labels := make([]int, 0, len(centers)*perCluster)

	for c, center := range centers {
		for i := 0; i < perCluster; i++ {
			for d := 0; d < dim; d++ {
				data = append(data, center[d]+stddev*rng.NormFloat64())
			}
			labels = append(labels, c)
		}
	}
	return data, labels
}
