package veb

import (
	"math"
)

// References:
// https://en.wikipedia.org/wiki/Van_Emde_Boas_tree
// Introduction to Algorithms (3rd), chapter 20.3.
//
// vEB node properties:
// p1. An empty node holds the sentinel pair min = MaxUint64, max = 0.
//     No key reaches MaxUint64 because a universe is at most MaxUint64.
// p2. A non-empty node holds min <= max < universe.
// p3. The min is cached at its own level only, it is never routed into a
//     cluster. Every other element, max included, lives in exactly one cluster.
// p4. The summary contains h if and only if cluster slot h is present,
//     and a present cluster is never empty.
// p5. A base node (universe <= 2) has neither clusters nor summary, its
//     min and max are the elements themselves.

const (
	vebEmptyMin uint64 = math.MaxUint64
	vebEmptyMax uint64 = 0
	vebBaseSize uint64 = 2
)

type vebNode struct {
	min      uint64
	max      uint64
	universe uint64
	// ceil(sqrt(universe)), both the number of cluster slots and the
	// universe of each cluster and of the summary. Zero for a base node.
	clusterSize uint64
	// Exactly one of dense and sparse is allocated for a non-base node.
	dense   []*vebNode
	sparse  map[uint64]*vebNode
	summary *vebNode
}

// vebNodeBuilder carries the per-tree allocation settings down the
// recursion and counts the live clusters.
type vebNodeBuilder struct {
	denseSlotsLimit uint64
	clusters        int64
}

func (b *vebNodeBuilder) newNode(universe uint64) *vebNode {
	node := &vebNode{
		min:      vebEmptyMin,
		max:      vebEmptyMax,
		universe: universe,
	}
	if universe <= vebBaseSize {
		return node
	}
	node.clusterSize = ceilSqrt(universe)
	if node.clusterSize <= b.denseSlotsLimit {
		node.dense = make([]*vebNode, node.clusterSize)
	} else {
		node.sparse = make(map[uint64]*vebNode)
	}
	node.summary = b.newNode(node.clusterSize)
	return node
}

func (b *vebNodeBuilder) newCluster(node *vebNode, h uint64) *vebNode {
	c := b.newNode(node.clusterSize)
	if node.dense != nil {
		node.dense[h] = c
	} else {
		node.sparse[h] = c
	}
	b.clusters++
	return c
}

func (b *vebNodeBuilder) releaseCluster(node *vebNode, h uint64) {
	c := node.cluster(h)
	if c == nil {
		return
	}
	if node.dense != nil {
		node.dense[h] = nil
	} else {
		delete(node.sparse, h)
	}
	b.clusters--
	b.release(c)
}

// release frees the owned children before the node itself.
func (b *vebNodeBuilder) release(node *vebNode) {
	if node == nil {
		return
	}
	for h, c := range node.dense {
		if c != nil {
			node.dense[h] = nil
			b.clusters--
			b.release(c)
		}
	}
	for h, c := range node.sparse {
		delete(node.sparse, h)
		b.clusters--
		b.release(c)
	}
	b.release(node.summary)
	node.dense, node.sparse, node.summary = nil, nil, nil
	node.min, node.max = vebEmptyMin, vebEmptyMax
}

// floorSqrt corrects the float64 estimate, which is off by one
// for universes close to MaxUint64.
func floorSqrt(u uint64) uint64 {
	r := uint64(math.Sqrt(float64(u)))
	for r > math.MaxUint32 || r*r > u {
		r--
	}
	for r < math.MaxUint32 && (r+1)*(r+1) <= u {
		r++
	}
	return r
}

func ceilSqrt(u uint64) uint64 {
	r := floorSqrt(u)
	if r*r < u {
		r++
	}
	return r
}

// vebLevels is the recursion depth of a universe, 1 for a base node.
func vebLevels(universe uint64) int {
	levels := 1
	for ; universe > vebBaseSize; universe = ceilSqrt(universe) {
		levels++
	}
	return levels
}

func (node *vebNode) isEmpty() bool {
	return node.min == vebEmptyMin
}

func (node *vebNode) isBase() bool {
	return node.universe <= vebBaseSize
}

func (node *vebNode) high(x uint64) uint64 {
	return x / node.clusterSize
}

func (node *vebNode) low(x uint64) uint64 {
	return x % node.clusterSize
}

func (node *vebNode) index(h, l uint64) uint64 {
	return h*node.clusterSize + l
}

func (node *vebNode) cluster(h uint64) *vebNode {
	if node.dense != nil {
		return node.dense[h]
	}
	return node.sparse[h]
}

func (node *vebNode) reset() {
	node.min, node.max = vebEmptyMin, vebEmptyMax
}

// insert reports whether x was absent.
func (node *vebNode) insert(b *vebNodeBuilder, x uint64) bool {
	if node.isEmpty() {
		node.min, node.max = x, x
		return true
	}
	if x == node.min || x == node.max {
		return false
	}
	if x < node.min {
		// The incoming key becomes the cached min and the previous
		// min is the one routed downward (p3).
		x, node.min = node.min, x
	}
	if x > node.max {
		node.max = x
	}
	if node.isBase() {
		return true
	}

	h, l := node.high(x), node.low(x)
	c := node.cluster(h)
	if c == nil {
		c = b.newCluster(node, h)
		node.summary.insert(b, h)
	}
	return c.insert(b, l)
}

func (node *vebNode) contains(x uint64) bool {
	if node.isEmpty() {
		return false
	}
	if x == node.min || x == node.max {
		return true
	}
	if node.isBase() {
		return false
	}
	c := node.cluster(node.high(x))
	return c != nil && c.contains(node.low(x))
}

func (node *vebNode) successor(x uint64) (uint64, bool) {
	if node.isEmpty() || x >= node.max {
		return 0, false
	}
	if x < node.min {
		return node.min, true
	}
	if node.isBase() {
		if x == 0 && node.max == 1 {
			return 1, true
		}
		return 0, false
	}

	h, l := node.high(x), node.low(x)
	if c := node.cluster(h); c != nil && l < c.max {
		offset, _ := c.successor(l)
		return node.index(h, offset), true
	}
	next, ok := node.summary.successor(h)
	if !ok {
		return 0, false
	}
	return node.index(next, node.cluster(next).min), true
}

func (node *vebNode) predecessor(x uint64) (uint64, bool) {
	if node.isEmpty() || x <= node.min {
		return 0, false
	}
	if x > node.max {
		return node.max, true
	}
	if node.isBase() {
		if x == 1 && node.min == 0 {
			return 0, true
		}
		return 0, false
	}

	h, l := node.high(x), node.low(x)
	if c := node.cluster(h); c != nil && l > c.min {
		offset, _ := c.predecessor(l)
		return node.index(h, offset), true
	}
	prev, ok := node.summary.predecessor(h)
	if !ok {
		// The cached min is in no cluster (p3), x > min here.
		return node.min, true
	}
	return node.index(prev, node.cluster(prev).max), true
}

// remove requires x to be present.
func (node *vebNode) remove(b *vebNodeBuilder, x uint64) {
	if node.min == node.max {
		node.reset()
		return
	}
	if node.isBase() {
		if x == 0 {
			node.min = 1
		} else {
			node.min = 0
		}
		node.max = node.min
		return
	}

	if x == node.min {
		// Promote the smallest clustered element to the cached min,
		// then remove it from its cluster.
		first := node.summary.min
		x = node.index(first, node.cluster(first).min)
		node.min = x
	}

	h, l := node.high(x), node.low(x)
	c := node.cluster(h)
	c.remove(b, l)
	if c.isEmpty() {
		node.summary.remove(b, h)
		b.releaseCluster(node, h)
	}
	if x == node.max {
		if node.summary.isEmpty() {
			node.max = node.min
		} else {
			last := node.summary.max
			node.max = node.index(last, node.cluster(last).max)
		}
	}
}
