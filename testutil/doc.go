// Package testutil provides shared utilities for tests and examples:
// a seeded thread-safe random number generator, synthetic cluster
// generation, and an exact brute-force nearest-neighbor searcher
// implementing the neighbor.Searcher contract.
package testutil
