package tree

// nodeIdx addresses a node inside its tree's arena.
type nodeIdx uint32

const (
	// nilIdx is the absent link.
	nilIdx nodeIdx = iota
	// sentinelIdx is the header node: parent is the root, left is the
	// minimum and right is the maximum.
	sentinelIdx
	firstNodeIdx
)

type rbNode[V any] struct {
	val    V
	parent nodeIdx
	left   nodeIdx
	right  nodeIdx
	color  RBColor
	inUse  bool
}

func (a *rbArena[V]) root() nodeIdx {
	return a.nodes[sentinelIdx].parent
}

func (a *rbArena[V]) setRoot(x nodeIdx) {
	a.nodes[sentinelIdx].parent = x
}

func (a *rbArena[V]) leftmost() nodeIdx {
	return a.nodes[sentinelIdx].left
}

func (a *rbArena[V]) setLeftmost(x nodeIdx) {
	a.nodes[sentinelIdx].left = x
}

func (a *rbArena[V]) rightmost() nodeIdx {
	return a.nodes[sentinelIdx].right
}

func (a *rbArena[V]) setRightmost(x nodeIdx) {
	a.nodes[sentinelIdx].right = x
}

func (a *rbArena[V]) isRed(x nodeIdx) bool {
	return x != nilIdx && a.nodes[x].color == Red
}

func (a *rbArena[V]) isBlack(x nodeIdx) bool {
	return !a.isRed(x)
}

// isElement reports whether x is a live, non-sentinel node.
func (a *rbArena[V]) isElement(x nodeIdx) bool {
	return x >= firstNodeIdx && int(x) < len(a.nodes) && a.nodes[x].inUse
}

func (a *rbArena[V]) child(x nodeIdx, dir RBDirection) nodeIdx {
	if dir == Left {
		return a.nodes[x].left
	}
	return a.nodes[x].right
}

// direction tells on which side of its parent x hangs.
// The root hangs below the sentinel.
func (a *rbArena[V]) direction(x nodeIdx) RBDirection {
	p := a.nodes[x].parent
	if p == sentinelIdx {
		return Root
	}
	if a.nodes[p].left == x {
		return Left
	}
	return Right
}

// replaceChild puts y into the slot of x under x's parent.
func (a *rbArena[V]) replaceChild(x, y nodeIdx) {
	p := a.nodes[x].parent
	switch a.direction(x) {
	case Root:
		a.setRoot(y)
	case Left:
		a.nodes[p].left = y
	case Right:
		a.nodes[p].right = y
	default:
	}
}

func (a *rbArena[V]) minimum(x nodeIdx) nodeIdx {
	for x != nilIdx && a.nodes[x].left != nilIdx {
		x = a.nodes[x].left
	}
	return x
}

func (a *rbArena[V]) maximum(x nodeIdx) nodeIdx {
	for x != nilIdx && a.nodes[x].right != nilIdx {
		x = a.nodes[x].right
	}
	return x
}

// The succ node of the current node is its next node in sorted order.
// The maximum's succ is the sentinel, and the sentinel stays where it is.
func (a *rbArena[V]) succ(x nodeIdx) nodeIdx {
	if x == sentinelIdx {
		return sentinelIdx
	}
	if r := a.nodes[x].right; r != nilIdx {
		return a.minimum(r)
	}
	p := a.nodes[x].parent
	// Backtrack to father node that is the x's succ.
	for p != sentinelIdx && x == a.nodes[p].right {
		x = p
		p = a.nodes[p].parent
	}
	return p
}

// The pred node of the current node is its previous node in sorted order.
// The sentinel's pred is the cached maximum.
func (a *rbArena[V]) pred(x nodeIdx) nodeIdx {
	if x == sentinelIdx {
		return a.rightmost()
	}
	if l := a.nodes[x].left; l != nilIdx {
		return a.maximum(l)
	}
	p := a.nodes[x].parent
	// Backtrack to father node that is the x's pred.
	for p != sentinelIdx && x == a.nodes[p].left {
		x = p
		p = a.nodes[p].parent
	}
	return p
}
