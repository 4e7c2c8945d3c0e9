package testutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactSearcher(t *testing.T) {
	// Four points on a line: distances are unambiguous.
	data := []float64{0, 0, 1, 0, 3, 0, 10, 0}
	s := NewExactSearcher(data, 2)

	require.Equal(t, 4, s.Len())

	hits, err := s.Search(0, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, 1, hits[0].Index)
	assert.Equal(t, 2, hits[1].Index)
	assert.Equal(t, 3, hits[2].Index)
	assert.InDelta(t, 1.0, hits[0].Distance, 1e-12)
	assert.InDelta(t, 3.0, hits[1].Distance, 1e-12)
	assert.InDelta(t, 10.0, hits[2].Distance, 1e-12)
}

func TestExactSearcherProperties(t *testing.T) {
	rng := NewRNG(7)
	const n, dim = 50, 5
	data := make([]float64, n*dim)
	rng.FillNormal(data)

	s := NewExactSearcher(data, dim)
	for i := 0; i < n; i += 7 {
		hits, err := s.Search(i, 10)
		require.NoError(t, err)
		require.Len(t, hits, 10)

		sorted := sort.SliceIsSorted(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })
		assert.True(t, sorted, "hits for point %d not sorted by distance", i)
		for _, h := range hits {
			assert.NotEqual(t, i, h.Index, "point %d returned itself", i)
		}
	}
}

func TestExactSearcherErrors(t *testing.T) {
	data := []float64{0, 0, 1, 1}
	s := NewExactSearcher(data, 2)

	_, err := s.Search(-1, 1)
	assert.Error(t, err)

	_, err = s.Search(0, 2) // only one other point exists
	assert.Error(t, err)
}
