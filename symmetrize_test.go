package gotsne

import (
	"math"
	"sort"
	"testing"

	"github.com/hupe1980/gotsne/testutil"
)

// buildStatus initializes a Status from random clustered data through the
// exact searcher.
func buildStatus(t *testing.T, tsne *TSNE, n, dim int, seed int64) *Status {
	t.Helper()
	rng := testutil.NewRNG(seed)
	data := make([]float64, n*dim)
	rng.FillNormal(data)

	status, err := tsne.InitializeFromSearcher(testutil.NewExactSearcher(data, dim))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return status
}

func TestSymmetrizedGraphIsUndirected(t *testing.T) {
	tsne, err := New(WithPerplexity(5))
	if err != nil {
		t.Fatal(err)
	}
	status := buildStatus(t, tsne, 80, 8, 3)

	probs := map[[2]int]float64{}
	for i := range status.neighbors {
		for k, j := range status.neighbors[i] {
			probs[[2]int{i, int(j)}] = status.probabilities[i][k]
		}
	}

	total := 0.0
	for key, p := range probs {
		reverse, ok := probs[[2]int{key[1], key[0]}]
		if !ok {
			t.Fatalf("edge %v has no reverse", key)
		}
		if math.Abs(p-reverse) > 1e-12 {
			t.Fatalf("edge %v asymmetric: %v vs %v", key, p, reverse)
		}
		if p < 0 {
			t.Fatalf("edge %v has negative probability %v", key, p)
		}
		total += p
	}

	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("graph probabilities sum to %v, want 1", total)
	}
}

func TestSymmetrizedGraphIsSorted(t *testing.T) {
	tsne, err := New(WithPerplexity(5))
	if err != nil {
		t.Fatal(err)
	}
	status := buildStatus(t, tsne, 60, 4, 4)

	for i, idx := range status.neighbors {
		if len(idx) != len(status.probabilities[i]) {
			t.Fatalf("point %d: %d indices but %d probabilities", i, len(idx), len(status.probabilities[i]))
		}
		sorted := sort.SliceIsSorted(idx, func(a, b int) bool { return idx[a] < idx[b] })
		if !sorted {
			t.Fatalf("point %d neighbor list not sorted by index", i)
		}
	}
}
