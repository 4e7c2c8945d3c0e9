// Package sptree implements the Barnes-Hut space-partitioning tree used to
// approximate the repulsive forces in t-SNE.
//
// The tree recursively bisects the bounding hypercube of the current
// embedding along every dimension at once (a quadtree in 2D, an octree in
// 3D). A repulsive-force query walks the tree and, whenever a node subtends
// a small enough angle from the query point, treats the node's entire mass
// as concentrated at its center of mass. This reduces the all-pairs force
// computation from O(N^2) to O(N log N) per iteration.
//
// Nodes live in a flat arena addressed by index, with children stored as
// fixed-size arrays of indices. Index 0 is the root; a child index of 0
// means "no child". The tree is a disposable per-iteration structure: call
// Set to rebuild it in place whenever the positions change.
package sptree

import "math"

// MaxDims is the largest supported embedding dimensionality.
const MaxDims = 3

// minHalfwidth substitutes for a collapsed bounding-box dimension so that
// coincident points do not produce zero-width nodes.
const minHalfwidth = 1e-8

// Node is a single hypercube region of the tree.
//
// A leaf holds one point, or several when the maximum depth forced a merge;
// an internal node holds up to 2^ndim children partitioning its region.
// CenterOfMass is the running mean position of all contained points and
// always lies within the node's own bounds.
type Node struct {
	// Midpoint and Halfwidth describe the node's hypercube region per
	// dimension. Only the first ndim entries are meaningful.
	Midpoint  [MaxDims]float64
	Halfwidth [MaxDims]float64

	// CenterOfMass is the mean position of the points below this node.
	CenterOfMass [MaxDims]float64

	// Children holds arena indices of the child octants, indexed by a
	// per-dimension sign bit: bit d is set when the child's midpoint is
	// greater than this node's midpoint along dimension d. Zero means no
	// child. Only the first 2^ndim slots are used.
	Children [1 << MaxDims]int32

	// Number is the count of points below this node. Always positive for
	// a node in use.
	Number int

	// IsLeaf reports whether this node holds points directly.
	IsLeaf bool

	// point is the index of the resident point for single-point leaves.
	// Needed to fix up the locations table when a leaf splits.
	point int32
}

// Tree is an arena-backed Barnes-Hut tree over n points in ndim dimensions.
//
// Tree is not safe for concurrent mutation; Set must not race with force
// queries. Queries on a built tree are read-only and may run concurrently.
type Tree struct {
	ndim     int
	maxDepth int

	store     []Node
	locations []int32
	data      []float64
}

// New creates an empty tree for n points in ndim dimensions (1 to 3).
// maxDepth bounds the recursion during insertion: beyond it, points are
// merged into the same leaf regardless of coincidence, trading per-point
// exactness for guaranteed termination.
func New(n, ndim, maxDepth int) *Tree {
	if ndim < 1 || ndim > MaxDims {
		panic("sptree: ndim must be between 1 and 3")
	}
	if maxDepth < 1 {
		panic("sptree: maxDepth must be positive")
	}
	return &Tree{
		ndim:      ndim,
		maxDepth:  maxDepth,
		store:     make([]Node, 0, 2*n+1),
		locations: make([]int32, n),
	}
}

// Dims returns the dimensionality of the tree.
func (t *Tree) Dims() int { return t.ndim }

// Store exposes the node arena for validation. Index 0 is the root.
func (t *Tree) Store() []Node { return t.store }

// Locations maps each point index to the arena index of the leaf currently
// containing it.
func (t *Tree) Locations() []int32 { return t.locations }

// Set rebuilds the tree over the given positions, which must hold
// len(locations) points in point-major layout. The tree keeps a reference
// to positions for subsequent force queries; the caller must not mutate the
// buffer until the next Set.
//
// Positions are assumed finite; NaN or Inf coordinates produce undefined
// node geometry.
func (t *Tree) Set(positions []float64) {
	n := len(t.locations)
	if len(positions) != n*t.ndim {
		panic("sptree: positions length does not match point count")
	}
	t.data = positions
	t.store = t.store[:0]

	root := t.push()
	t.setBounds(&t.store[root], positions, n)

	for i := 0; i < n; i++ {
		t.locations[i] = t.insert(int32(i), positions[i*t.ndim:(i+1)*t.ndim])
	}
}

// setBounds computes the root hypercube from the point bounding box. A
// dimension collapsed by coincident points gets a small non-zero width.
func (t *Tree) setBounds(root *Node, positions []float64, n int) {
	var mins, maxs [MaxDims]float64
	for d := 0; d < t.ndim; d++ {
		mins[d] = math.Inf(1)
		maxs[d] = math.Inf(-1)
	}
	for i := 0; i < n; i++ {
		p := positions[i*t.ndim:]
		for d := 0; d < t.ndim; d++ {
			mins[d] = math.Min(mins[d], p[d])
			maxs[d] = math.Max(maxs[d], p[d])
		}
	}
	for d := 0; d < t.ndim; d++ {
		root.Midpoint[d] = (mins[d] + maxs[d]) / 2
		hw := (maxs[d] - mins[d]) / 2
		if hw == 0 {
			hw = minHalfwidth
		} else {
			// Widen slightly so boundary points sit strictly inside.
			hw += hw * 1e-5
		}
		root.Halfwidth[d] = hw
	}
}

// push appends a zeroed node to the arena and returns its index.
func (t *Tree) push() int32 {
	t.store = append(t.store, Node{IsLeaf: true})
	return int32(len(t.store) - 1)
}

// newChild creates the child octant of parent selected by the sign bits k.
func (t *Tree) newChild(parent int32, k int) int32 {
	idx := t.push()
	p := &t.store[parent]
	c := &t.store[idx]
	for d := 0; d < t.ndim; d++ {
		c.Halfwidth[d] = p.Halfwidth[d] / 2
		if k&(1<<d) != 0 {
			c.Midpoint[d] = p.Midpoint[d] + c.Halfwidth[d]
		} else {
			c.Midpoint[d] = p.Midpoint[d] - c.Halfwidth[d]
		}
	}
	p.Children[k] = idx
	return idx
}

// childIndex selects the octant of node containing pos: bit d is set when
// pos lies on the greater side of the midpoint along dimension d.
func (t *Tree) childIndex(node *Node, pos []float64) int {
	k := 0
	for d := 0; d < t.ndim; d++ {
		if pos[d] > node.Midpoint[d] {
			k |= 1 << d
		}
	}
	return k
}

// addMass folds pos into the node's running center of mass.
func (t *Tree) addMass(node *Node, pos []float64) {
	f := float64(node.Number)
	for d := 0; d < t.ndim; d++ {
		node.CenterOfMass[d] = (node.CenterOfMass[d]*f + pos[d]) / (f + 1)
	}
	node.Number++
}

// insert descends one level at a time, returning the arena index of the
// leaf that received the point.
func (t *Tree) insert(point int32, pos []float64) int32 {
	cur := int32(0)
	depth := 0
	for {
		node := &t.store[cur]

		if !node.IsLeaf {
			t.addMass(node, pos)
			k := t.childIndex(node, pos)
			child := node.Children[k]
			if child == 0 {
				child = t.newChild(cur, k)
			}
			cur = child
			depth++
			continue
		}

		if node.Number == 0 {
			copy(node.CenterOfMass[:t.ndim], pos)
			node.Number = 1
			node.point = point
			return cur
		}

		if depth >= t.maxDepth {
			// Depth limit reached: merge into this leaf, averaging the
			// center of mass across all residents.
			t.addMass(node, pos)
			return cur
		}

		// Occupied leaf: convert to internal by pushing the resident
		// point down one level, then retry the insertion from here.
		k := t.childIndex(node, node.CenterOfMass[:t.ndim])
		child := t.newChild(cur, k)
		node = &t.store[cur]
		c := &t.store[child]
		copy(c.CenterOfMass[:t.ndim], node.CenterOfMass[:t.ndim])
		c.Number = node.Number
		c.point = node.point
		t.locations[node.point] = child
		node.IsLeaf = false
	}
}

// ComputeNonEdgeForces accumulates the approximate repulsive force on point
// i into negF (length ndim) and returns the point's contribution to the
// global normalization sum.
//
// theta trades accuracy for speed: a node is treated as a single body when
// its largest halfwidth divided by its distance from the query point falls
// below theta. theta == 0 disables the approximation and walks every leaf,
// giving the exact per-point result.
//
// negF is accumulated into, not reset; callers reusing buffers must zero
// them first.
func (t *Tree) ComputeNonEdgeForces(i int, theta float64, negF []float64) float64 {
	return t.walk(0, t.data[i*t.ndim:(i+1)*t.ndim], theta*theta, negF)
}

// ComputeNonEdgeForcesAt is the by-coordinate form of ComputeNonEdgeForces,
// used when querying the field at an arbitrary location rather than at one
// of the indexed points.
func (t *Tree) ComputeNonEdgeForcesAt(pos []float64, theta float64, negF []float64) float64 {
	return t.walk(0, pos, theta*theta, negF)
}

func (t *Tree) walk(cur int32, pos []float64, theta2 float64, negF []float64) float64 {
	node := &t.store[cur]

	var diff [MaxDims]float64
	sqdist := 0.0
	maxhw := 0.0
	for d := 0; d < t.ndim; d++ {
		diff[d] = pos[d] - node.CenterOfMass[d]
		sqdist += diff[d] * diff[d]
		if node.Halfwidth[d] > maxhw {
			maxhw = node.Halfwidth[d]
		}
	}

	if node.IsLeaf || maxhw*maxhw < theta2*sqdist {
		// Single-point leaf holding the query point itself: no
		// self-repulsion.
		if node.IsLeaf && node.Number == 1 && sqdist == 0 {
			return 0
		}
		q := 1.0 / (1.0 + sqdist)
		sum := float64(node.Number) * q
		mult := sum * q
		for d := 0; d < t.ndim; d++ {
			negF[d] += mult * diff[d]
		}
		return sum
	}

	sum := 0.0
	for k := 0; k < 1<<t.ndim; k++ {
		if node.Children[k] == 0 {
			continue
		}
		sum += t.walk(node.Children[k], pos, theta2, negF)
	}
	return sum
}
