package gotsne

import "golang.org/x/sync/errgroup"

// forEachChunk fans a half-open range [0, n) out over at most workers
// goroutines in contiguous chunks. Each chunk writes only to its own output
// slots, so no synchronization beyond the final Wait is needed. With
// workers <= 1 the function runs inline, preserving the sequential
// floating-point summation order.
func forEachChunk(workers, n int, fn func(start, end int)) {
	if workers <= 1 || n < 2 {
		fn(0, n)
		return
	}

	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		start := start
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	// Chunks are infallible; Wait only serves as the barrier.
	_ = g.Wait()
}
