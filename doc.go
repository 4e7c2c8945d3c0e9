// Package gotsne implements Barnes-Hut t-distributed stochastic neighbor
// embedding (t-SNE) for visualizing high-dimensional datasets.
//
// t-SNE places each observation in a low-dimensional map (usually 2D) so
// that the identity of its nearest neighbors in the original space is
// preserved. Distances between neighbors in high-dimensional space are
// converted to probabilities via a Gaussian kernel; the low-dimensional
// counterpart uses a t-distribution; and gradient descent minimizes the
// Kullback-Leibler divergence between the two distributions. The gradient
// balances attractive forces along the sparse neighbor graph against
// repulsive forces between all pairs of points, with the repulsive term
// approximated in O(N log N) by a space-partitioning tree.
//
// Nearest-neighbor search is deliberately external: the core consumes
// (index, distance) pairs, either precomputed or produced through the
// pluggable neighbor.Searcher interface.
//
// # Quick start
//
//	tsne, err := gotsne.New(gotsne.WithPerplexity(30))
//	if err != nil {
//	    panic(err)
//	}
//
//	// indices and distances hold each point's K nearest neighbors.
//	status, err := tsne.Initialize(indices, distances)
//	if err != nil {
//	    panic(err)
//	}
//
//	// y is the caller-owned embedding buffer, point-major, filled with
//	// the initial layout (e.g. small random values).
//	if err := tsne.Run(status, y); err != nil {
//	    panic(err)
//	}
//
// The returned Status is resumable: Run may be called repeatedly with a
// smaller iteration budget to inspect intermediate embeddings, and picks up
// the exaggeration and momentum schedules wherever it left off.
//
// # References
//
// van der Maaten, L.J.P. and Hinton, G.E. (2008).
// Visualizing high-dimensional data using t-SNE.
// Journal of Machine Learning Research, 9, 2579-2605.
//
// van der Maaten, L.J.P. (2014).
// Accelerating t-SNE using tree-based algorithms.
// Journal of Machine Learning Research, 15, 3221-3245.
package gotsne
