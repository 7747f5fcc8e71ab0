package tree

type insertCase uint8

const (
	// x is the root or x's parent is black, nothing to fix.
	insertCaseDone insertCase = iota
	insertCaseUncleRed
	insertCaseInnerGrandchild
	insertCaseOuterGrandchild
)

func (c insertCase) String() string {
	switch c {
	case insertCaseDone:
		return "done"
	case insertCaseUncleRed:
		return "uncle-red"
	case insertCaseInnerGrandchild:
		return "inner-grandchild"
	case insertCaseOuterGrandchild:
		return "outer-grandchild"
	default:
	}
	return "unknown"
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

uncle-red: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Continue to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

inner-grandchild: The parent P is red but the uncle U is black.
X is opposite direction to P. Rotate P to opposite direction.
Still red-violation, P becomes the outer grandchild to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

outer-grandchild: X is the same direction as P.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V, X]) insertFixupStep(x nodeIdx) (nodeIdx, insertCase) {
	a := tree.arena
	p := a.nodes[x].parent
	if x == a.root() || a.isBlack(p) {
		return x, insertCaseDone
	}

	// A red parent is never the root, so the grandpa is a real node.
	g := a.nodes[p].parent
	pDir := a.direction(p)
	if pDir == Root {
		// impossible run to here
		tree.fatal("[rbtree] red root during insert rebalance")
	}

	if u := a.child(g, pDir.opposite()); a.isRed(u) {
		a.nodes[p].color = Black
		a.nodes[u].color = Black
		a.nodes[g].color = Red
		return g, insertCaseUncleRed
	}

	if a.direction(x) != pDir {
		tree.rotate(p, pDir)
		return p, insertCaseInnerGrandchild
	}

	a.nodes[p].color = Black
	a.nodes[g].color = Red
	tree.rotate(g, pDir.opposite())
	return x, insertCaseOuterGrandchild
}

func (tree *rbTree[K, V, X]) insertRebalance(x nodeIdx) {
	for {
		next, c := tree.insertFixupStep(x)
		tree.stats.RecordRebalanceStep(c)
		if c == insertCaseDone || c == insertCaseOuterGrandchild {
			break
		}
		x = next
	}
	if root := tree.arena.root(); root != nilIdx {
		tree.arena.nodes[root].color = Black
	}
}
