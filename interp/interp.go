// Package interp approximates the t-SNE repulsive forces by interpolating
// over a regular grid instead of querying the space-partitioning tree once
// per point.
//
// The embedding's bounding box is divided into a fixed number of intervals
// per dimension. Exact tree queries are performed only at the grid corners
// of occupied cells, and every point's force is then recovered by bilinear
// interpolation within its cell. For large N this replaces N tree walks
// with one walk per occupied corner.
//
// The interpolant is currently only defined for two-dimensional embeddings;
// callers must reject other dimensionalities up front.
package interp

import (
	"fmt"
	"sort"

	"github.com/hupe1980/gotsne/sptree"
	"golang.org/x/sync/errgroup"
)

// minStep substitutes for a collapsed grid dimension.
const minStep = 1e-8

// nvalues is the number of interpolated quantities per grid corner: the two
// force components plus the normalization contribution.
const nvalues = 3

// gridPoint addresses a corner of the interpolation grid.
type gridPoint struct {
	x, y int
}

// ComputeNonEdgeForces fills negF (length 2N, point-major) with the
// interpolated repulsive force for every point and returns the total
// normalization sum. The tree must already be built over positions.
//
// Unlike the per-point tree queries, the interpolated field cannot exclude
// a point's own contribution, so the normalization sum carries roughly one
// extra unit of mass per point. The self force is zero by symmetry and
// interpolates away.
//
// intervals sets the grid resolution per dimension; workers bounds the
// parallel fan-out over grid corners (1 means sequential). Unlike the
// per-point tree queries, negF entries are assigned rather than
// accumulated.
func ComputeNonEdgeForces(tree *sptree.Tree, positions []float64, theta float64, negF []float64, intervals, workers int) (float64, error) {
	if tree.Dims() != 2 {
		return 0, fmt.Errorf("interp: interpolation requires 2 output dimensions, got %d", tree.Dims())
	}
	if intervals < 1 {
		return 0, fmt.Errorf("interp: intervals must be positive, got %d", intervals)
	}
	n := len(positions) / 2

	// Grid geometry from the point bounding box.
	minX, maxX := positions[0], positions[0]
	minY, maxY := positions[1], positions[1]
	for i := 1; i < n; i++ {
		x, y := positions[i*2], positions[i*2+1]
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	stepX := (maxX - minX) / float64(intervals)
	stepY := (maxY - minY) / float64(intervals)
	if stepX == 0 {
		stepX = minStep
	}
	if stepY == 0 {
		stepY = minStep
	}

	encode := func(px, py float64) gridPoint {
		cx := int((px - minX) / stepX)
		cy := int((py - minY) / stepY)
		// Points sitting exactly on the max bound belong to the last cell.
		if cx > intervals-1 {
			cx = intervals - 1
		}
		if cy > intervals-1 {
			cy = intervals - 1
		}
		return gridPoint{cx, cy}
	}

	// First pass: find occupied cells and the corners they need.
	occupied := make(map[gridPoint]struct{})
	corners := make(map[gridPoint]int)
	for i := 0; i < n; i++ {
		cell := encode(positions[i*2], positions[i*2+1])
		if _, ok := occupied[cell]; ok {
			continue
		}
		occupied[cell] = struct{}{}
		for dx := 0; dx <= 1; dx++ {
			for dy := 0; dy <= 1; dy++ {
				c := gridPoint{cell.x + dx, cell.y + dy}
				if _, ok := corners[c]; !ok {
					corners[c] = len(corners)
				}
			}
		}
	}

	// Second pass: exact tree queries at every needed corner. Corner order
	// is fixed by the slot assignment above, so the values land in stable
	// positions regardless of worker count.
	keys := make([]gridPoint, len(corners))
	for c, slot := range corners {
		keys[slot] = c
	}
	vals := make([]float64, nvalues*len(keys))
	query := func(start, end int) {
		var coord [2]float64
		for s := start; s < end; s++ {
			c := keys[s]
			coord[0] = minX + float64(c.x)*stepX
			coord[1] = minY + float64(c.y)*stepY
			out := vals[s*nvalues : s*nvalues+nvalues]
			out[2] = tree.ComputeNonEdgeForcesAt(coord[:], theta, out[:2])
		}
	}
	if workers <= 1 || len(keys) < 2 {
		query(0, len(keys))
	} else {
		var g errgroup.Group
		chunk := (len(keys) + workers - 1) / workers
		for start := 0; start < len(keys); start += chunk {
			end := start + chunk
			if end > len(keys) {
				end = len(keys)
			}
			start := start
			g.Go(func() error {
				query(start, end)
				return nil
			})
		}
		// Workers write disjoint slots and never fail.
		_ = g.Wait()
	}

	// Third pass: bilinear interpolant coefficients per occupied cell. For
	// each quantity v with corner observations v00, v10, v01, v11:
	//
	//	slope(dy)     = ((v11-v01)/stepX - (v10-v00)/stepX) / stepY * dy + (v10-v00)/stepX
	//	intercept(dy) = (v01-v00)/stepY * dy + v00
	//	v(dx, dy)     = slope(dy) * dx + intercept(dy)
	cells := make([]gridPoint, 0, len(occupied))
	for cell := range occupied {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].x != cells[b].x {
			return cells[a].x < cells[b].x
		}
		return cells[a].y < cells[b].y
	})
	cellSlots := make(map[gridPoint]int, len(cells))
	const blocksize = 4 * nvalues
	coeffs := make([]float64, blocksize*len(cells))
	for slot, cell := range cells {
		cellSlots[cell] = slot
		v00 := vals[corners[gridPoint{cell.x, cell.y}]*nvalues:]
		v10 := vals[corners[gridPoint{cell.x + 1, cell.y}]*nvalues:]
		v01 := vals[corners[gridPoint{cell.x, cell.y + 1}]*nvalues:]
		v11 := vals[corners[gridPoint{cell.x + 1, cell.y + 1}]*nvalues:]
		for v := 0; v < nvalues; v++ {
			slope0 := (v10[v] - v00[v]) / stepX
			slope1 := (v11[v] - v01[v]) / stepX
			out := coeffs[slot*blocksize+v*4:]
			out[0] = (slope1 - slope0) / stepY
			out[1] = slope0
			out[2] = (v01[v] - v00[v]) / stepY
			out[3] = v00[v]
		}
	}

	// Final pass: evaluate the interpolant at every point. The per-point
	// normalization terms are summed in index order to keep the rounding
	// behavior reproducible.
	sumQ := 0.0
	for i := 0; i < n; i++ {
		px, py := positions[i*2], positions[i*2+1]
		cell := encode(px, py)
		dx := px - (minX + float64(cell.x)*stepX)
		dy := py - (minY + float64(cell.y)*stepY)
		block := coeffs[cellSlots[cell]*blocksize:]
		for v := 0; v < nvalues; v++ {
			c := block[v*4 : v*4+4]
			slope := c[0]*dy + c[1]
			intercept := c[2]*dy + c[3]
			value := slope*dx + intercept
			if v == 2 {
				sumQ += value
			} else {
				negF[i*2+v] = value
			}
		}
	}
	return sumQ, nil
}
