package tree

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K, V, X]) leftRotate(x nodeIdx) {
	a := tree.arena
	if x < firstNodeIdx || a.nodes[x].right == nilIdx {
		tree.fatal("[rbtree] left rotate node x is nil or x.right is nil")
	}

	y := a.nodes[x].right
	a.replaceChild(x, y)
	a.nodes[y].parent = a.nodes[x].parent

	a.nodes[x].right = a.nodes[y].left
	if sc := a.nodes[x].right; sc != nilIdx {
		a.nodes[sc].parent = x
	}
	a.nodes[y].left = x
	a.nodes[x].parent = y
	tree.stats.IncreaseRotateCount(Left)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V, X]) rightRotate(x nodeIdx) {
	a := tree.arena
	if x < firstNodeIdx || a.nodes[x].left == nilIdx {
		tree.fatal("[rbtree] right rotate node x is nil or x.left is nil")
	}

	y := a.nodes[x].left
	a.replaceChild(x, y)
	a.nodes[y].parent = a.nodes[x].parent

	a.nodes[x].left = a.nodes[y].right
	if sc := a.nodes[x].left; sc != nilIdx {
		a.nodes[sc].parent = x
	}
	a.nodes[y].right = x
	a.nodes[x].parent = y
	tree.stats.IncreaseRotateCount(Right)
}

// rotate moves the pivot x one level down to the dir side.
func (tree *rbTree[K, V, X]) rotate(x nodeIdx, dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		tree.fatal("[rbtree] rotate without direction")
	}
}
