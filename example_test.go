package gotsne_test

import (
	"fmt"

	"github.com/hupe1980/gotsne"
	"github.com/hupe1980/gotsne/testutil"
)

func Example() {
	// Two Gaussian clusters in 16 dimensions.
	rng := testutil.NewRNG(1)
	centers := [][]float64{
		make([]float64, 16),
		{8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8},
	}
	data, _ := testutil.GaussianClusters(rng, centers, 40, 1.0)

	tsne, err := gotsne.New(
		gotsne.WithPerplexity(10),
		gotsne.WithMaxIter(500),
	)
	if err != nil {
		panic(err)
	}

	// The embedding buffer is caller-owned: seed it with a small random
	// layout and let Run overwrite it in place.
	y := make([]float64, 80*2)
	rng.FillNormal(y)
	for i := range y {
		y[i] *= 1e-4
	}

	status, err := tsne.RunFullFromSearcher(testutil.NewExactSearcher(data, 16), y)
	if err != nil {
		panic(err)
	}

	fmt.Println(status.Iteration())
	// Output: 500
}
