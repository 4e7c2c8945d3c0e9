package gotsne

import "runtime"

// options holds the resolved configuration of a TSNE instance. It is built
// once by New and never mutated afterwards.
type options struct {
	ndim               int
	perplexity         float64
	theta              float64
	maxIter            int
	stopLyingIter      int
	momSwitchIter      int
	startMomentum      float64
	finalMomentum      float64
	eta                float64
	exaggerationFactor float64
	maxDepth           int
	intervals          int
	workers            int
	logger             *Logger
}

func defaultOptions() options {
	return options{
		ndim:               2,
		perplexity:         30,
		theta:              0.5,
		maxIter:            1000,
		stopLyingIter:      250,
		momSwitchIter:      250,
		startMomentum:      0.5,
		finalMomentum:      0.8,
		eta:                200,
		exaggerationFactor: 12,
		maxDepth:           7,
		intervals:          0,
		workers:            runtime.GOMAXPROCS(0),
		logger:             NoopLogger(),
	}
}

// Option configures a TSNE instance.
type Option func(*options)

// WithOutputDims sets the dimensionality of the embedding (1 to 3,
// default 2).
func WithOutputDims(ndim int) Option {
	return func(o *options) {
		o.ndim = ndim
	}
}

// WithPerplexity sets the perplexity, which determines the balance between
// local and global structure (default 30). Higher perplexities focus on
// global structure at the cost of runtime and local resolution.
//
// Perplexity only matters when the library derives the neighbor count
// itself via InitializeFromSearcher. When neighbors are supplied directly,
// the effective perplexity is implicitly K/3.
func WithPerplexity(p float64) Option {
	return func(o *options) {
		o.perplexity = p
	}
}

// WithTheta sets the accuracy/speed trade-off of the Barnes-Hut
// approximation (default 0.5). Lower values increase accuracy; 0 disables
// the approximation entirely.
func WithTheta(t float64) Option {
	return func(o *options) {
		o.theta = t
	}
}

// WithMaxIter sets the total iteration budget (default 1000).
func WithMaxIter(m int) Option {
	return func(o *options) {
		o.maxIter = m
	}
}

// WithStopLyingIter sets the number of iterations spent in the early
// exaggeration phase (default 250), during which attractive forces are
// inflated so neighbors form tight, well-separated clusters with room to
// find good global positions.
func WithStopLyingIter(s int) Option {
	return func(o *options) {
		o.stopLyingIter = s
	}
}

// WithMomSwitchIter sets the iteration at which the momentum switches from
// the starting to the final value (default 250).
func WithMomSwitchIter(m int) Option {
	return func(o *options) {
		o.momSwitchIter = m
	}
}

// WithStartMomentum sets the momentum used before the switch (default 0.5).
func WithStartMomentum(s float64) Option {
	return func(o *options) {
		o.startMomentum = s
	}
}

// WithFinalMomentum sets the momentum used after the switch (default 0.8).
func WithFinalMomentum(f float64) Option {
	return func(o *options) {
		o.finalMomentum = f
	}
}

// WithEta sets the learning rate used to scale the updates (default 200).
func WithEta(e float64) Option {
	return func(o *options) {
		o.eta = e
	}
}

// WithExaggerationFactor sets the factor applied to the probabilities
// during the early exaggeration phase (default 12).
func WithExaggerationFactor(e float64) Option {
	return func(o *options) {
		o.exaggerationFactor = e
	}
}

// WithMaxDepth sets the maximum depth of the Barnes-Hut tree (default 7).
// Larger values improve the quality of the repulsive-force approximation at
// the cost of computational time.
func WithMaxDepth(m int) Option {
	return func(o *options) {
		o.maxDepth = m
	}
}

// WithInterpolation enables the experimental grid-interpolation
// approximation of the repulsive forces, with the given number of grid
// intervals per dimension. It requires exactly 2 output dimensions.
// Zero (the default) keeps the per-point tree queries.
func WithInterpolation(intervals int) Option {
	return func(o *options) {
		o.intervals = intervals
	}
}

// WithWorkers bounds the parallel fan-out over points (default GOMAXPROCS).
// A value of 1 selects the strictly sequential path, which reproduces the
// ordered floating-point summation exactly.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger configures structured logging. The default discards all
// output.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}
