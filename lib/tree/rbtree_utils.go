package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	errRBTreeRedViolation      = errors.New("[rbtree] red violation")
	errRBTreeBlackViolation    = errors.New("[rbtree] black violation")
	errRBTreeSentinelViolation = errors.New("[rbtree] sentinel violation")
	errRBTreeOrderViolation    = errors.New("[rbtree] order violation")
)

// treeInspection is the read only view used by the validators.
type treeInspection[V any] struct {
	arena *rbArena[V]
	count int64
	cmp   func(x, y nodeIdx) int64
}

func blackDepthTo[V any](a *rbArena[V], target, to nodeIdx) int {
	depth := 0
	for aux := target; aux != to; aux = a.nodes[aux].parent {
		if a.isBlack(aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K, V any](tree RBTree[K, V]) error {
	in := tree.inspect()
	a := in.arena
	if a.isRed(sentinelIdx) || a.isRed(a.root()) {
		return fmt.Errorf("%w: red root or sentinel", errRBTreeRedViolation)
	}
	for x := a.leftmost(); x != sentinelIdx; x = a.succ(x) {
		if a.isRed(x) && (a.isRed(a.nodes[x].left) || a.isRed(a.nodes[x].right)) {
			return errRBTreeRedViolation
		}
	}
	return nil
}

// BFS traversal to load all nodes that own at least one NIL child.
func bfsLeaves[V any](a *rbArena[V]) []nodeIdx {
	root := a.root()
	if root == nilIdx {
		return nil
	}

	leaves := make([]nodeIdx, 0, 8)
	queue := []nodeIdx{root}
	for len(queue) > 0 {
		aux := queue[0]
		queue = queue[1:]
		l, r := a.nodes[aux].left, a.nodes[aux].right
		if /* nil leaves, keep one */ l == nilIdx || r == nilIdx {
			leaves = append(leaves, aux)
		}
		if l != nilIdx {
			queue = append(queue, l)
		}
		if r != nilIdx {
			queue = append(queue, r)
		}
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K, V any](tree RBTree[K, V]) error {
	a := tree.inspect().arena
	leaves := bfsLeaves[V](a)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[V](a, leaves[0], sentinelIdx)
	for i := 1; i < len(leaves); i++ {
		if d := blackDepthTo[V](a, leaves[i], sentinelIdx); d != blackDepth {
			return fmt.Errorf("%w: black depth %d and %d", errRBTreeBlackViolation, blackDepth, d)
		}
	}
	return nil
}

// SentinelValidate checks the header links, the parent back links and
// that the reachable node count equals the tree length.
func SentinelValidate[K, V any](tree RBTree[K, V]) error {
	in := tree.inspect()
	a := in.arena
	root := a.root()
	if root == nilIdx {
		if a.leftmost() != sentinelIdx || a.rightmost() != sentinelIdx || in.count != 0 {
			return fmt.Errorf("%w: empty tree header", errRBTreeSentinelViolation)
		}
		return nil
	}
	if a.nodes[root].parent != sentinelIdx {
		return fmt.Errorf("%w: root parent", errRBTreeSentinelViolation)
	}
	if a.leftmost() != a.minimum(root) || a.rightmost() != a.maximum(root) {
		return fmt.Errorf("%w: cached minimum or maximum", errRBTreeSentinelViolation)
	}

	reachable := int64(0)
	stack := []nodeIdx{root}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !a.isElement(x) {
			return fmt.Errorf("%w: dangling link %d", errRBTreeSentinelViolation, x)
		}
		reachable++
		for _, c := range [2]nodeIdx{a.nodes[x].left, a.nodes[x].right} {
			if c == nilIdx {
				continue
			}
			if a.nodes[c].parent != x {
				return fmt.Errorf("%w: parent link of %d", errRBTreeSentinelViolation, c)
			}
			stack = append(stack, c)
		}
	}
	if reachable != in.count || a.used != in.count {
		return fmt.Errorf("%w: reachable %d, used %d, len %d",
			errRBTreeSentinelViolation, reachable, a.used, in.count)
	}
	return nil
}

// OrderValidate checks the inorder sequence is non-decreasing, or strictly
// increasing for unique trees.
func OrderValidate[K, V any](tree RBTree[K, V], strict bool) error {
	in := tree.inspect()
	a := in.arena
	prev := nilIdx
	for x := a.leftmost(); x != sentinelIdx; x = a.succ(x) {
		if prev != nilIdx {
			if res := in.cmp(prev, x); res > 0 || (strict && res == 0) {
				return errRBTreeOrderViolation
			}
		}
		prev = x
	}
	return nil
}

func ValidateAll[K, V any](tree RBTree[K, V], strict bool) error {
	return multierr.Combine(
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		SentinelValidate[K, V](tree),
		OrderValidate[K, V](tree, strict),
	)
}
