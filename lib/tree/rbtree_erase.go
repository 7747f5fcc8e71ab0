package tree

type eraseCase uint8

const (
	// x is the root or red, nothing to fix in the loop.
	eraseCaseDone eraseCase = iota
	eraseCaseSiblingRed
	eraseCaseNephewsBlack
	eraseCaseFarNephewBlack
	eraseCaseFarNephewRed
)

func (c eraseCase) String() string {
	switch c {
	case eraseCaseDone:
		return "done"
	case eraseCaseSiblingRed:
		return "sibling-red"
	case eraseCaseNephewsBlack:
		return "nephews-black"
	case eraseCaseFarNephewBlack:
		return "far-nephew-black"
	case eraseCaseFarNephewRed:
		return "far-nephew-red"
	default:
	}
	return "unknown"
}

/*
unlink detaches z from the tree structure.

Z has left and right node. Z's succ Y (min of the right subtree, no left
child) is relinked into Z's position and takes over Z's color, so the
iterators to Y are still valid. The removed color is Y's original one and
the phantom slot is Y's old position.

	  |                    |
	  Z                    Y
	 / \                  / \
	L  ..   relink(Y)    L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  Y  ..                X  ..
	   \
	    X

Otherwise Z has at most one child X, which takes Z's slot directly.

It returns the phantom slot (x, xp) and the color that left the tree.
*/
func (tree *rbTree[K, V, X]) unlink(z nodeIdx) (x, xp nodeIdx, removed RBColor) {
	a := tree.arena
	y := z
	if a.nodes[z].left == nilIdx {
		x = a.nodes[z].right
	} else if a.nodes[z].right == nilIdx {
		x = a.nodes[z].left
	} else {
		y = a.minimum(a.nodes[z].right)
		x = a.nodes[y].right
	}

	if y != z {
		zl := a.nodes[z].left
		a.nodes[zl].parent = y
		a.nodes[y].left = zl
		if zr := a.nodes[z].right; y != zr {
			xp = a.nodes[y].parent
			if x != nilIdx {
				a.nodes[x].parent = xp
			}
			a.nodes[xp].left = x // y is always a left child here
			a.nodes[y].right = zr
			a.nodes[zr].parent = y
		} else {
			xp = y
		}
		a.replaceChild(z, y)
		a.nodes[y].parent = a.nodes[z].parent
		removed = a.nodes[y].color
		a.nodes[y].color = a.nodes[z].color
		return x, xp, removed
	}

	xp = a.nodes[z].parent
	if x != nilIdx {
		a.nodes[x].parent = xp
	}
	a.replaceChild(z, x)
	if a.leftmost() == z {
		if a.nodes[z].right == nilIdx {
			// z.left is nil too, the parent (or the sentinel) is the new min.
			a.setLeftmost(xp)
		} else {
			a.setLeftmost(a.minimum(x))
		}
	}
	if a.rightmost() == z {
		if a.nodes[z].left == nilIdx {
			a.setRightmost(xp)
		} else {
			a.setRightmost(a.maximum(x))
		}
	}
	return x, xp, a.nodes[z].color
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries a black deficit. Sc is the near nephew (same direction as X) and
Sd is the far nephew.

sibling-red: X's sibling S is red, so P, Sc and Sd are black.
Rotate P toward X, repaint S into black and P into red.
Recompute the sibling, it is black now.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

nephews-black: S, Sc and Sd are black. Repaint S into red to balance
locally, the deficit moves up to P.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

far-nephew-black: S is black, Sc is red and Sd is black.
Rotate S away from X, repaint Sc into black and S into red.
Recompute the sibling, its far child is red now.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

far-nephew-red: S is black and Sd is red.
Rotate P toward X, S takes P's color, P and Sd are repainted into black.
The deficit is absorbed.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K, V, X]) eraseFixupStep(x, xp nodeIdx) (nodeIdx, nodeIdx, eraseCase) {
	a := tree.arena
	if x == a.root() || a.isRed(x) {
		return x, xp, eraseCaseDone
	}

	dir := Right
	if x == a.nodes[xp].left {
		dir = Left
	}
	s := a.child(xp, dir.opposite())
	if s == nilIdx {
		// impossible run to here
		tree.fatal("[rbtree] black deficit without sibling")
	}

	if a.isRed(s) {
		a.nodes[s].color = Black
		a.nodes[xp].color = Red
		tree.rotate(xp, dir)
		return x, xp, eraseCaseSiblingRed
	}

	sc, sd := a.child(s, dir), a.child(s, dir.opposite())
	if a.isBlack(sc) && a.isBlack(sd) {
		a.nodes[s].color = Red
		return xp, a.nodes[xp].parent, eraseCaseNephewsBlack
	}

	if a.isBlack(sd) {
		a.nodes[sc].color = Black
		a.nodes[s].color = Red
		tree.rotate(s, dir.opposite())
		return x, xp, eraseCaseFarNephewBlack
	}

	a.nodes[s].color = a.nodes[xp].color
	a.nodes[xp].color = Black
	a.nodes[sd].color = Black
	tree.rotate(xp, dir)
	return x, xp, eraseCaseFarNephewRed
}

func (tree *rbTree[K, V, X]) eraseRebalance(x, xp nodeIdx) {
	for {
		nx, nxp, c := tree.eraseFixupStep(x, xp)
		tree.stats.RecordRebalanceStep(c)
		if c == eraseCaseDone || c == eraseCaseFarNephewRed {
			break
		}
		x, xp = nx, nxp
	}
	if x != nilIdx {
		tree.arena.nodes[x].color = Black
	}
}

// eraseNode removes z from the tree, destroys its value and frees the slot.
func (tree *rbTree[K, V, X]) eraseNode(z nodeIdx) {
	x, xp, removed := tree.unlink(z)
	if removed == Black {
		tree.eraseRebalance(x, xp)
	}
	tree.destroyNode(z)
	tree.count--
	tree.stats.IncreaseEraseCount()
	tree.stats.RecordNodeCount(-1)
}
