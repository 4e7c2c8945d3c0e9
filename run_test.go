package gotsne

import (
	"math"
	"testing"

	"github.com/hupe1980/gotsne/testutil"
)

func TestRunKeepsEmbeddingZeroMean(t *testing.T) {
	tsne, err := New(WithPerplexity(5), WithMaxIter(50))
	if err != nil {
		t.Fatal(err)
	}
	status := buildStatus(t, tsne, 70, 6, 5)

	rng := testutil.NewRNG(6)
	y := make([]float64, status.N()*2)
	rng.FillNormal(y)
	for i := range y {
		y[i] *= 1e-4
	}

	if err := tsne.Run(status, y); err != nil {
		t.Fatal(err)
	}
	if got := status.Iteration(); got != 50 {
		t.Fatalf("iteration count %d, want 50", got)
	}

	for d := 0; d < 2; d++ {
		mean := 0.0
		for i := 0; i < status.N(); i++ {
			mean += y[i*2+d]
		}
		mean /= float64(status.N())
		if math.Abs(mean) > 1e-10 {
			t.Fatalf("dimension %d mean %v, want ~0", d, mean)
		}
	}
}

func TestRunIsResumable(t *testing.T) {
	const n, dim = 60, 6
	rng := testutil.NewRNG(8)
	data := make([]float64, n*dim)
	rng.FillNormal(data)
	searcher := testutil.NewExactSearcher(data, dim)

	y0 := make([]float64, n*2)
	rng.FillNormal(y0)
	for i := range y0 {
		y0[i] *= 1e-4
	}

	// Uninterrupted run. Sequential execution keeps the floating-point
	// summation order fixed, so the two runs must agree exactly.
	full, err := New(WithPerplexity(5), WithMaxIter(120), WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	yFull := append([]float64(nil), y0...)
	statusFull, err := full.InitializeFromSearcher(searcher)
	if err != nil {
		t.Fatal(err)
	}
	if err := full.Run(statusFull, yFull); err != nil {
		t.Fatal(err)
	}

	// Same optimization split into two Run calls.
	first, err := New(WithPerplexity(5), WithMaxIter(40), WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	yPart := append([]float64(nil), y0...)
	statusPart, err := first.InitializeFromSearcher(searcher)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Run(statusPart, yPart); err != nil {
		t.Fatal(err)
	}
	if got := statusPart.Iteration(); got != 40 {
		t.Fatalf("iteration count after first leg %d, want 40", got)
	}

	second, err := New(WithPerplexity(5), WithMaxIter(120), WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Run(statusPart, yPart); err != nil {
		t.Fatal(err)
	}

	if statusPart.Iteration() != statusFull.Iteration() {
		t.Fatalf("iteration counts diverge: %d vs %d", statusPart.Iteration(), statusFull.Iteration())
	}
	for i := range yFull {
		if yFull[i] != yPart[i] {
			t.Fatalf("coordinate %d diverges after resume: %v vs %v", i, yFull[i], yPart[i])
		}
	}
}

func TestRunSurvivesCoincidentPoints(t *testing.T) {
	// Every point identical: neighbor distances are all zero and the tree
	// bounding box collapses. The update must stay NaN-free.
	const n, k = 20, 5
	indices := make([][]int, n)
	distances := make([][]float64, n)
	for i := 0; i < n; i++ {
		indices[i] = make([]int, k)
		distances[i] = make([]float64, k)
		for m := 0; m < k; m++ {
			indices[i][m] = (i + m + 1) % n
		}
	}

	tsne, err := New(WithMaxIter(10))
	if err != nil {
		t.Fatal(err)
	}
	status, err := tsne.Initialize(indices, distances)
	if err != nil {
		t.Fatal(err)
	}

	y := make([]float64, n*2) // all points at the origin
	if err := tsne.Run(status, y); err != nil {
		t.Fatal(err)
	}

	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("coordinate %d is not finite: %v", i, v)
		}
	}
}

func TestGainAdaptation(t *testing.T) {
	status := newStatus(2, 1, 1, 7)
	y := []float64{0, 0}

	// Gradient direction disagreeing with the velocity grows the gain;
	// agreement shrinks it.
	status.dY = []float64{1, 1}
	status.uY = []float64{-1, 1}
	applyUpdate(status, y, 0, 0) // eta 0 isolates the gain update

	if got := status.gains[0]; got != 1.2 {
		t.Fatalf("gain after sign disagreement %v, want 1.2", got)
	}
	if got := status.gains[1]; got != 0.8 {
		t.Fatalf("gain after sign agreement %v, want 0.8", got)
	}
}

func TestGainClampedBelow(t *testing.T) {
	status := newStatus(1, 1, 1, 7)
	y := []float64{0}

	status.dY = []float64{1}
	status.uY = []float64{1}
	status.gains = []float64{0.011}
	applyUpdate(status, y, 0, 0)

	if got := status.gains[0]; got != 0.01 {
		t.Fatalf("gain %v, want clamp at 0.01", got)
	}
}

func TestVelocityUpdate(t *testing.T) {
	status := newStatus(1, 1, 1, 7)
	y := []float64{1}

	status.dY = []float64{0.5}
	status.uY = []float64{2}
	status.gains = []float64{1}
	applyUpdate(status, y, 0.5, 10)

	// uY = 0.5*2 - 10*0.8*0.5 = -3; gain shrank to 0.8 first since the
	// signs agree. y = 1 - 3 = -2.
	if got := status.uY[0]; math.Abs(got-(-3)) > 1e-12 {
		t.Fatalf("velocity %v, want -3", got)
	}
	if got := y[0]; math.Abs(got-(-2)) > 1e-12 {
		t.Fatalf("position %v, want -2", got)
	}
}

func TestRunBufferSizeMismatch(t *testing.T) {
	tsne, err := New(WithPerplexity(5), WithMaxIter(10))
	if err != nil {
		t.Fatal(err)
	}
	status := buildStatus(t, tsne, 40, 4, 11)

	err = tsne.Run(status, make([]float64, status.N()*2-1))
	if err == nil {
		t.Fatal("expected buffer size error")
	}
}

func TestRunWithInterpolation(t *testing.T) {
	tsne, err := New(WithPerplexity(5), WithMaxIter(20), WithInterpolation(50))
	if err != nil {
		t.Fatal(err)
	}
	status := buildStatus(t, tsne, 60, 4, 13)

	rng := testutil.NewRNG(14)
	y := make([]float64, status.N()*2)
	rng.FillNormal(y)
	for i := range y {
		y[i] *= 1e-4
	}

	if err := tsne.Run(status, y); err != nil {
		t.Fatal(err)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("coordinate %d is not finite: %v", i, v)
		}
	}
}

func TestEndToEndClusterSeparation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end optimization in short mode")
	}

	const (
		perCluster = 50
		dim        = 50
	)
	rng := testutil.NewRNG(99)

	centers := make([][]float64, 2)
	centers[0] = make([]float64, dim)
	centers[1] = make([]float64, dim)
	for d := 0; d < dim; d++ {
		centers[1][d] = 6
	}
	data, labels := testutil.GaussianClusters(rng, centers, perCluster, 1.0)
	n := len(labels)

	tsne, err := New(WithPerplexity(10), WithTheta(0.5), WithMaxIter(1000))
	if err != nil {
		t.Fatal(err)
	}

	y := make([]float64, n*2)
	rng.FillNormal(y)
	for i := range y {
		y[i] *= 1e-4
	}

	if _, err := tsne.RunFullFromSearcher(testutil.NewExactSearcher(data, dim), y); err != nil {
		t.Fatal(err)
	}

	// Nearest-centroid classification in the embedding should recover the
	// true clusters almost perfectly.
	var centroids [2][2]float64
	var counts [2]int
	for i := 0; i < n; i++ {
		c := labels[i]
		centroids[c][0] += y[i*2]
		centroids[c][1] += y[i*2+1]
		counts[c]++
	}
	for c := range centroids {
		centroids[c][0] /= float64(counts[c])
		centroids[c][1] /= float64(counts[c])
	}

	correct := 0
	for i := 0; i < n; i++ {
		best, bestDist := -1, math.Inf(1)
		for c := range centroids {
			dx := y[i*2] - centroids[c][0]
			dy := y[i*2+1] - centroids[c][1]
			if d := dx*dx + dy*dy; d < bestDist {
				best, bestDist = c, d
			}
		}
		if best == labels[i] {
			correct++
		}
	}

	accuracy := float64(correct) / float64(n)
	if accuracy < 0.95 {
		t.Fatalf("nearest-centroid accuracy %.2f, want >= 0.95", accuracy)
	}
}
