package tree

import "math"

// RBTreeMaxSize is the node count bound of a single tree, index 0 and the
// sentinel are reserved.
const RBTreeMaxSize = int64(math.MaxUint32) - int64(firstNodeIdx)

// rbArena stores the nodes of one tree addressed by index.
// Freed slots are recycled before the slice grows.
type rbArena[V any] struct {
	nodes    []rbNode[V]
	recycled []nodeIdx
	used     int64 // live real nodes
	maxSize  int64
}

func newRBArena[V any](initCap, maxSize int64) *rbArena[V] {
	if maxSize <= 0 || maxSize > RBTreeMaxSize {
		maxSize = RBTreeMaxSize
	}
	if initCap < 0 {
		initCap = 0
	} else if initCap > maxSize {
		initCap = maxSize
	}
	a := &rbArena[V]{
		nodes:   make([]rbNode[V], firstNodeIdx, int64(firstNodeIdx)+initCap),
		maxSize: maxSize,
	}
	a.resetSentinel()
	return a
}

func (a *rbArena[V]) resetSentinel() {
	a.nodes[sentinelIdx] = rbNode[V]{
		parent: nilIdx,
		left:   sentinelIdx,
		right:  sentinelIdx,
		color:  Black,
		inUse:  true,
	}
}

// allocate reserves a node slot, it fails if the arena is full.
func (a *rbArena[V]) allocate() (nodeIdx, error) {
	if a.used >= a.maxSize {
		return nilIdx, ErrRBTreeIsFull
	}
	var x nodeIdx
	if l := len(a.recycled); l > 0 {
		x = a.recycled[l-1]
		a.recycled = a.recycled[:l-1]
	} else {
		x = nodeIdx(len(a.nodes))
		a.nodes = append(a.nodes, rbNode[V]{})
	}
	a.nodes[x].inUse = true
	a.used++
	return x, nil
}

// construct places val into an allocated slot as a detached red node.
func (a *rbArena[V]) construct(x nodeIdx, val V) {
	a.nodes[x] = rbNode[V]{
		val:   val,
		color: Red,
		inUse: true,
	}
}

// destroy runs the value destructor, the slot stays allocated.
func (a *rbArena[V]) destroy(x nodeIdx, destructor func(V)) {
	if destructor != nil {
		destructor(a.nodes[x].val)
	}
	a.nodes[x].val = *new(V)
}

func (a *rbArena[V]) deallocate(x nodeIdx) {
	if x < firstNodeIdx || !a.nodes[x].inUse {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] deallocate a free or reserved node")
	}
	a.nodes[x] = rbNode[V]{}
	a.recycled = append(a.recycled, x)
	a.used--
}

// reset drops every node at once. Only valid after all values are destroyed.
func (a *rbArena[V]) reset() {
	clear(a.nodes[firstNodeIdx:])
	a.nodes = a.nodes[:firstNodeIdx]
	a.recycled = a.recycled[:0]
	a.used = 0
	a.resetSentinel()
}

// shrink is reset plus giving the backing storage back.
func (a *rbArena[V]) shrink() {
	a.nodes = make([]rbNode[V], firstNodeIdx)
	a.recycled = nil
	a.used = 0
	a.resetSentinel()
}
