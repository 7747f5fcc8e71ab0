package tree

func (tree *rbTree[K, V, X]) keyOf(x nodeIdx) K {
	return tree.kx.Key(tree.arena.nodes[x].val)
}

func (tree *rbTree[K, V, X]) less(k1, k2 K) bool {
	return tree.cmp(k1, k2) < 0
}

// insertUniquePos descends from the root to find the parent and the side
// where key can be linked. If an element with an equal key already exists,
// it is returned as dup and nothing may be linked.
func (tree *rbTree[K, V, X]) insertUniquePos(key K) (parent nodeIdx, addLeft bool, dup nodeIdx) {
	a := tree.arena
	x, y := a.root(), sentinelIdx
	addLeft = true
	for x != nilIdx {
		y = x
		if addLeft = tree.less(key, tree.keyOf(x)); addLeft {
			x = a.nodes[x].left
		} else {
			x = a.nodes[x].right
		}
	}

	// The only possible equal element is the in-order neighbor on the
	// smaller side of the empty slot.
	j := y
	if addLeft {
		if y == sentinelIdx || y == a.leftmost() {
			return y, true, nilIdx
		}
		j = a.pred(y)
	}
	if tree.less(tree.keyOf(j), key) {
		return y, addLeft, nilIdx
	}
	return y, addLeft, j
}

// insertMultiPos places equal keys after the existing ones.
func (tree *rbTree[K, V, X]) insertMultiPos(key K) (parent nodeIdx, addLeft bool) {
	a := tree.arena
	x, y := a.root(), sentinelIdx
	addLeft = true
	for x != nilIdx {
		y = x
		if addLeft = tree.less(key, tree.keyOf(x)); addLeft {
			x = a.nodes[x].left
		} else {
			x = a.nodes[x].right
		}
	}
	return y, addLeft
}

// insertHintPos checks in O(1) whether key fits between pred(hint) and hint.
// Unique keys must fit strictly, multi keys may equal either bound.
func (tree *rbTree[K, V, X]) insertHintPos(hint nodeIdx, key K, multi bool) (parent nodeIdx, addLeft, ok bool) {
	a := tree.arena
	if tree.count == 0 || (hint != sentinelIdx && !a.isElement(hint)) {
		return nilIdx, false, false
	}

	fitsAfter := func(before nodeIdx) bool {
		if multi {
			return !tree.less(key, tree.keyOf(before))
		}
		return tree.less(tree.keyOf(before), key)
	}
	fitsBefore := func(after nodeIdx) bool {
		if multi {
			return !tree.less(tree.keyOf(after), key)
		}
		return tree.less(key, tree.keyOf(after))
	}

	switch {
	case hint == sentinelIdx:
		if r := a.rightmost(); fitsAfter(r) {
			return r, false, true
		}
	case hint == a.leftmost():
		if fitsBefore(hint) {
			return hint, true, true
		}
	default:
		before := a.pred(hint)
		if !fitsAfter(before) || !fitsBefore(hint) {
			break
		}
		if a.nodes[before].right == nilIdx {
			return before, false, true
		}
		// before is not the max of hint's left subtree, so hint has no left child.
		if a.nodes[hint].left != nilIdx {
			// impossible run to here
			tree.fatal("[rbtree] hint and its pred both occupied")
		}
		return hint, true, true
	}
	return nilIdx, false, false
}

// linkAt links the detached red node z below parent and rebalances.
func (tree *rbTree[K, V, X]) linkAt(parent, z nodeIdx, addLeft bool) {
	a := tree.arena
	a.nodes[z].parent = parent
	a.nodes[z].left, a.nodes[z].right = nilIdx, nilIdx
	a.nodes[z].color = Red

	if parent == sentinelIdx {
		a.setRoot(z)
		a.setLeftmost(z)
		a.setRightmost(z)
	} else if addLeft {
		a.nodes[parent].left = z
		if a.leftmost() == parent {
			a.setLeftmost(z)
		}
	} else {
		a.nodes[parent].right = z
		if a.rightmost() == parent {
			a.setRightmost(z)
		}
	}

	tree.insertRebalance(z)
	tree.count++
	tree.stats.IncreaseInsertCount()
	tree.stats.RecordNodeCount(1)
}
