package tree

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benz9527/xordered/lib/infra"
)

var (
	ErrRBTreeIsFull          = errors.New("[rbtree] node count reaches the max size")
	ErrRBTreeConstruct       = errors.New("[rbtree] value construct failed")
	ErrRBTreeCopy            = errors.New("[rbtree] value copy failed")
	ErrRBTreeKeyMismatch     = errors.New("[rbtree] assigned value changes the key")
	ErrRBTreeInvalidIterator = errors.New("[rbtree] iterator does not point to an element of the tree")
	ErrRBTreeIncompatible    = errors.New("[rbtree] incompatible tree implementation")
)

// References:
// https://github.com/gcc-mirror/gcc/blob/master/libstdc%2B%2B-v3/include/bits/stl_tree.h
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root and the sentinel are black.
// So the longest path nodes' number is 2 * shortest path nodes' number.
type rbTree[K, V any, X KeyExtractor[K, V]] struct {
	arena  *rbArena[V]
	count  int64
	cmp    infra.KeyComparator[K]
	kx     X
	opts   *rbTreeOptions[V]
	logger *zap.Logger
	stats  *rbTreeStats
}

// NewRBTree creates an empty tree ordered by cmp. The key extractor X is
// bound per instantiation, Identity[K] for sets and PairFirst[K, M] for
// maps.
func NewRBTree[K, V any, X KeyExtractor[K, V]](cmp infra.KeyComparator[K], opts ...RBTreeOpt[V]) RBTree[K, V] {
	return newRBTree[K, V, X](cmp, opts...)
}

func newRBTree[K, V any, X KeyExtractor[K, V]](cmp infra.KeyComparator[K], opts ...RBTreeOpt[V]) *rbTree[K, V, X] {
	if cmp == nil {
		panic("[rbtree] nil key comparator")
	}
	o := &rbTreeOptions[V]{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.isDesc {
		cmp = infra.ReverseKeyCmp(cmp)
	}
	tree := &rbTree[K, V, X]{
		arena:  newRBArena[V](o.initCap, o.maxSize),
		cmp:    cmp,
		opts:   o,
		logger: o.logger,
	}
	if o.isStatsEnabled {
		tree.stats = newRBTreeStats(o.statsName)
	}
	return tree
}

// spawn creates an empty tree sharing the configuration.
func (tree *rbTree[K, V, X]) spawn() *rbTree[K, V, X] {
	return &rbTree[K, V, X]{
		arena:  newRBArena[V](tree.opts.initCap, tree.arena.maxSize),
		cmp:    tree.cmp,
		opts:   tree.opts,
		logger: tree.logger,
		stats:  tree.stats,
	}
}

func (tree *rbTree[K, V, X]) fatal(msg string, fields ...zap.Field) {
	tree.logger.Error(msg, append(fields, zap.Int64("len", tree.count))...)
	panic( /* debug assertion */ msg)
}

func (tree *rbTree[K, V, X]) iter(x nodeIdx) Iterator[V] {
	return Iterator[V]{arena: tree.arena, idx: x}
}

func (tree *rbTree[K, V, X]) owns(it Iterator[V]) bool {
	return it.arena == tree.arena
}

func (tree *rbTree[K, V, X]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V, X]) Empty() bool {
	return tree.count == 0
}

func (tree *rbTree[K, V, X]) MaxSize() int64 {
	return tree.arena.maxSize
}

func (tree *rbTree[K, V, X]) KeyCompare(i, j K) int64 {
	return tree.cmp(i, j)
}

func (tree *rbTree[K, V, X]) Root() Iterator[V] {
	if root := tree.arena.root(); root != nilIdx {
		return tree.iter(root)
	}
	return tree.End()
}

func (tree *rbTree[K, V, X]) Begin() Iterator[V] {
	return tree.iter(tree.arena.leftmost())
}

func (tree *rbTree[K, V, X]) End() Iterator[V] {
	return tree.iter(sentinelIdx)
}

func (tree *rbTree[K, V, X]) RBegin() ReverseIterator[V] {
	return ReverseIterator[V]{base: tree.End()}
}

func (tree *rbTree[K, V, X]) REnd() ReverseIterator[V] {
	return ReverseIterator[V]{base: tree.Begin()}
}

func (tree *rbTree[K, V, X]) lowerBound(key K) nodeIdx {
	a := tree.arena
	x, y := a.root(), sentinelIdx
	for x != nilIdx {
		if !tree.less(tree.keyOf(x), key) {
			y, x = x, a.nodes[x].left
		} else {
			x = a.nodes[x].right
		}
	}
	return y
}

func (tree *rbTree[K, V, X]) upperBound(key K) nodeIdx {
	a := tree.arena
	x, y := a.root(), sentinelIdx
	for x != nilIdx {
		if tree.less(key, tree.keyOf(x)) {
			y, x = x, a.nodes[x].left
		} else {
			x = a.nodes[x].right
		}
	}
	return y
}

func (tree *rbTree[K, V, X]) Find(key K) Iterator[V] {
	y := tree.lowerBound(key)
	if y == sentinelIdx || tree.less(key, tree.keyOf(y)) {
		return tree.End()
	}
	return tree.iter(y)
}

func (tree *rbTree[K, V, X]) Count(key K) int64 {
	n := int64(0)
	first, last := tree.lowerBound(key), tree.upperBound(key)
	for x := first; x != last; x = tree.arena.succ(x) {
		n++
	}
	return n
}

func (tree *rbTree[K, V, X]) LowerBound(key K) Iterator[V] {
	return tree.iter(tree.lowerBound(key))
}

func (tree *rbTree[K, V, X]) UpperBound(key K) Iterator[V] {
	return tree.iter(tree.upperBound(key))
}

func (tree *rbTree[K, V, X]) EqualRange(key K) (Iterator[V], Iterator[V]) {
	return tree.iter(tree.lowerBound(key)), tree.iter(tree.upperBound(key))
}

// newNode allocates a slot and places val into it.
func (tree *rbTree[K, V, X]) newNode(val V) (nodeIdx, error) {
	z, err := tree.arena.allocate()
	if err != nil {
		tree.logger.Debug("[rbtree] node allocate failed",
			zap.Int64("len", tree.count),
			zap.Int64("maxSize", tree.arena.maxSize),
		)
		return nilIdx, err
	}
	tree.arena.construct(z, val)
	return z, nil
}

// emplaceNode allocates a slot and constructs the value in place.
// The slot is given back if ctor fails, wrapped into kind.
func (tree *rbTree[K, V, X]) emplaceNode(ctor func() (V, error), kind error) (nodeIdx, error) {
	z, err := tree.arena.allocate()
	if err != nil {
		tree.logger.Debug("[rbtree] node allocate failed",
			zap.Int64("len", tree.count),
			zap.Int64("maxSize", tree.arena.maxSize),
		)
		return nilIdx, err
	}
	val, err := ctor()
	if err != nil {
		tree.arena.deallocate(z)
		tree.logger.Debug("[rbtree] node construct failed, rollback",
			zap.Int64("len", tree.count),
			zap.Error(err),
		)
		return nilIdx, fmt.Errorf("%w: %w", kind, err)
	}
	tree.arena.construct(z, val)
	return z, nil
}

func (tree *rbTree[K, V, X]) destroyNode(x nodeIdx) {
	tree.arena.destroy(x, tree.opts.destructor)
	tree.arena.deallocate(x)
}

func (tree *rbTree[K, V, X]) InsertUnique(val V) (Iterator[V], bool, error) {
	parent, addLeft, dup := tree.insertUniquePos(tree.kx.Key(val))
	if dup != nilIdx {
		return tree.iter(dup), false, nil
	}
	z, err := tree.newNode(val)
	if err != nil {
		return tree.End(), false, err
	}
	tree.linkAt(parent, z, addLeft)
	return tree.iter(z), true, nil
}

func (tree *rbTree[K, V, X]) InsertMulti(val V) (Iterator[V], error) {
	parent, addLeft := tree.insertMultiPos(tree.kx.Key(val))
	z, err := tree.newNode(val)
	if err != nil {
		return tree.End(), err
	}
	tree.linkAt(parent, z, addLeft)
	return tree.iter(z), nil
}

// InsertUniqueHint links val right before hint if it fits there,
// otherwise it behaves like InsertUnique. Foreign hints are ignored.
func (tree *rbTree[K, V, X]) InsertUniqueHint(hint Iterator[V], val V) (Iterator[V], bool, error) {
	if !tree.owns(hint) {
		return tree.InsertUnique(val)
	}
	parent, addLeft, ok := tree.insertHintPos(hint.idx, tree.kx.Key(val), false)
	if !ok {
		return tree.InsertUnique(val)
	}
	z, err := tree.newNode(val)
	if err != nil {
		return tree.End(), false, err
	}
	tree.linkAt(parent, z, addLeft)
	return tree.iter(z), true, nil
}

func (tree *rbTree[K, V, X]) InsertMultiHint(hint Iterator[V], val V) (Iterator[V], error) {
	if !tree.owns(hint) {
		return tree.InsertMulti(val)
	}
	parent, addLeft, ok := tree.insertHintPos(hint.idx, tree.kx.Key(val), true)
	if !ok {
		return tree.InsertMulti(val)
	}
	z, err := tree.newNode(val)
	if err != nil {
		return tree.End(), err
	}
	tree.linkAt(parent, z, addLeft)
	return tree.iter(z), nil
}

func (tree *rbTree[K, V, X]) EmplaceUnique(ctor func() (V, error)) (Iterator[V], bool, error) {
	z, err := tree.emplaceNode(ctor, ErrRBTreeConstruct)
	if err != nil {
		return tree.End(), false, err
	}
	parent, addLeft, dup := tree.insertUniquePos(tree.keyOf(z))
	if dup != nilIdx {
		tree.destroyNode(z)
		return tree.iter(dup), false, nil
	}
	tree.linkAt(parent, z, addLeft)
	return tree.iter(z), true, nil
}

func (tree *rbTree[K, V, X]) EmplaceMulti(ctor func() (V, error)) (Iterator[V], error) {
	z, err := tree.emplaceNode(ctor, ErrRBTreeConstruct)
	if err != nil {
		return tree.End(), err
	}
	parent, addLeft := tree.insertMultiPos(tree.keyOf(z))
	tree.linkAt(parent, z, addLeft)
	return tree.iter(z), nil
}

// Assign overwrites the value in place. The old value is not destroyed.
func (tree *rbTree[K, V, X]) Assign(pos Iterator[V], val V) error {
	if !tree.owns(pos) || !pos.Valid() {
		return ErrRBTreeInvalidIterator
	}
	if tree.cmp(tree.keyOf(pos.idx), tree.kx.Key(val)) != 0 {
		return ErrRBTreeKeyMismatch
	}
	tree.arena.nodes[pos.idx].val = val
	return nil
}

func (tree *rbTree[K, V, X]) Erase(pos Iterator[V]) Iterator[V] {
	if !tree.owns(pos) || !pos.Valid() {
		return tree.End()
	}
	next := tree.arena.succ(pos.idx)
	tree.eraseNode(pos.idx)
	return tree.iter(next)
}

func (tree *rbTree[K, V, X]) EraseKey(key K) int64 {
	first, last := tree.lowerBound(key), tree.upperBound(key)
	n := int64(0)
	for x := first; x != last; x = tree.arena.succ(x) {
		n++
	}
	if n > 0 {
		tree.EraseRange(tree.iter(first), tree.iter(last))
	}
	return n
}

// EraseRange removes [first, last) and returns last.
func (tree *rbTree[K, V, X]) EraseRange(first, last Iterator[V]) Iterator[V] {
	if !tree.owns(first) || !tree.owns(last) {
		return tree.End()
	}
	a := tree.arena
	if first.idx == a.leftmost() && last.idx == sentinelIdx {
		tree.Clear()
		return tree.End()
	}
	for x := first.idx; x != last.idx && a.isElement(x); {
		next := a.succ(x)
		tree.eraseNode(x)
		x = next
	}
	return tree.iter(last.idx)
}

// eraseSince destroys the subtree of x without rebalancing.
// Recursive on the right, iterative on the left.
func (tree *rbTree[K, V, X]) eraseSince(x nodeIdx) {
	tree.releaseSince(x, true)
}

// releaseSince frees the subtree of x. The values are only destroyed if
// destruct is set, shallow copies still belong to their source tree.
func (tree *rbTree[K, V, X]) releaseSince(x nodeIdx, destruct bool) {
	a := tree.arena
	for x != nilIdx {
		tree.releaseSince(a.nodes[x].right, destruct)
		l := a.nodes[x].left
		if destruct {
			tree.destroyNode(x)
		} else {
			a.deallocate(x)
		}
		x = l
	}
}

func (tree *rbTree[K, V, X]) Clear() {
	if tree.count == 0 {
		return
	}
	tree.eraseSince(tree.arena.root())
	tree.arena.reset()
	tree.stats.RecordNodeCount(-tree.count)
	tree.count = 0
}

func (tree *rbTree[K, V, X]) Release() {
	tree.Clear()
	tree.arena.shrink()
}

func (tree *rbTree[K, V, X]) cloneNode(src *rbArena[V], x nodeIdx, fn func(V) (V, error)) (nodeIdx, error) {
	var (
		z   nodeIdx
		err error
	)
	if fn == nil {
		z, err = tree.newNode(src.nodes[x].val)
	} else {
		z, err = tree.emplaceNode(func() (V, error) {
			return fn(src.nodes[x].val)
		}, ErrRBTreeCopy)
	}
	if err != nil {
		return nilIdx, err
	}
	tree.arena.nodes[z].color = src.nodes[x].color
	return z, nil
}

// copyFrom clones the subtree x of src below p and returns its top.
// Right subtrees are copied recursively and the left spine iteratively.
// Any failure frees the partial copy before returning. Only the values made
// by fn are destroyed.
func (tree *rbTree[K, V, X]) copyFrom(src *rbArena[V], x, p nodeIdx, fn func(V) (V, error)) (top nodeIdx, err error) {
	if top, err = tree.cloneNode(src, x, fn); err != nil {
		return nilIdx, err
	}
	a := tree.arena
	a.nodes[top].parent = p
	partial := top
	defer func() {
		if err != nil {
			tree.releaseSince(partial, fn != nil)
		}
	}()

	var r nodeIdx
	if sr := src.nodes[x].right; sr != nilIdx {
		if r, err = tree.copyFrom(src, sr, top, fn); err != nil {
			return nilIdx, err
		}
		a.nodes[top].right = r
	}

	p = top
	for x = src.nodes[x].left; x != nilIdx; x = src.nodes[x].left {
		var y nodeIdx
		if y, err = tree.cloneNode(src, x, fn); err != nil {
			return nilIdx, err
		}
		a.nodes[y].parent = p
		a.nodes[p].left = y
		if sr := src.nodes[x].right; sr != nilIdx {
			if r, err = tree.copyFrom(src, sr, y, fn); err != nil {
				return nilIdx, err
			}
			a.nodes[y].right = r
		}
		p = y
	}
	return top, nil
}

// copyTo builds the structural copy into the empty tree dst.
func (tree *rbTree[K, V, X]) copyTo(dst *rbTree[K, V, X], fn func(V) (V, error)) error {
	root := tree.arena.root()
	if root == nilIdx {
		return nil
	}
	top, err := dst.copyFrom(tree.arena, root, sentinelIdx, fn)
	if err != nil {
		dst.logger.Debug("[rbtree] copy failed, partial nodes destroyed",
			zap.Int64("srcLen", tree.count),
			zap.Error(err),
		)
		return err
	}
	da := dst.arena
	da.setRoot(top)
	da.setLeftmost(da.minimum(top))
	da.setRightmost(da.maximum(top))
	dst.count = tree.count
	dst.stats.RecordNodeCount(dst.count)
	return nil
}

func firstCopyFn[V any](copyFn []func(V) (V, error)) func(V) (V, error) {
	if len(copyFn) == 0 {
		return nil
	}
	return copyFn[0]
}

func (tree *rbTree[K, V, X]) Clone(copyFn ...func(V) (V, error)) (RBTree[K, V], error) {
	dst := tree.spawn()
	if err := tree.copyTo(dst, firstCopyFn(copyFn)); err != nil {
		return nil, err
	}
	return dst, nil
}

func (tree *rbTree[K, V, X]) Move() RBTree[K, V] {
	dst := tree.spawn()
	dst.arena, tree.arena = tree.arena, dst.arena
	dst.count, tree.count = tree.count, 0
	return dst
}

func (tree *rbTree[K, V, X]) compatible(other RBTree[K, V]) (*rbTree[K, V, X], error) {
	o, ok := other.(*rbTree[K, V, X])
	if !ok || o == nil {
		return nil, ErrRBTreeIncompatible
	}
	return o, nil
}

// CopyFrom replaces the contents with a copy of other and adopts its
// ordering. The contents are untouched if the copy fails.
func (tree *rbTree[K, V, X]) CopyFrom(other RBTree[K, V], copyFn ...func(V) (V, error)) error {
	o, err := tree.compatible(other)
	if err != nil {
		return err
	}
	if o == tree {
		return nil
	}
	dst := tree.spawn()
	dst.cmp = o.cmp
	if err = o.copyTo(dst, firstCopyFn(copyFn)); err != nil {
		return err
	}
	tree.Clear()
	tree.arena, tree.count, tree.cmp = dst.arena, dst.count, dst.cmp
	return nil
}

// MoveFrom takes every node of other, which is left empty.
func (tree *rbTree[K, V, X]) MoveFrom(other RBTree[K, V]) error {
	o, err := tree.compatible(other)
	if err != nil {
		return err
	}
	if o == tree {
		return nil
	}
	n := o.count
	tree.Clear()
	tree.arena, tree.count, tree.cmp = o.arena, n, o.cmp
	o.arena, o.count = newRBArena[V](o.opts.initCap, o.arena.maxSize), 0
	o.stats.RecordNodeCount(-n)
	tree.stats.RecordNodeCount(n)
	return nil
}

// Swap exchanges the contents, iterators follow their elements.
func (tree *rbTree[K, V, X]) Swap(other RBTree[K, V]) error {
	o, err := tree.compatible(other)
	if err != nil {
		return err
	}
	delta := o.count - tree.count
	tree.stats.RecordNodeCount(delta)
	o.stats.RecordNodeCount(-delta)
	tree.arena, o.arena = o.arena, tree.arena
	tree.count, o.count = o.count, tree.count
	tree.cmp, o.cmp = o.cmp, tree.cmp
	return nil
}

// Inorder traversal from the minimum.
func (tree *rbTree[K, V, X]) Foreach(action func(idx int64, color RBColor, val V) bool) {
	a := tree.arena
	idx := int64(0)
	for x := a.leftmost(); x != sentinelIdx; x = a.succ(x) {
		if !action(idx, a.nodes[x].color, a.nodes[x].val) {
			return
		}
		idx++
	}
}

// Reverse inorder traversal from the maximum.
func (tree *rbTree[K, V, X]) ReverseForeach(action func(idx int64, color RBColor, val V) bool) {
	a := tree.arena
	idx := int64(0)
	for x := a.rightmost(); x != sentinelIdx; x = a.pred(x) {
		if !action(idx, a.nodes[x].color, a.nodes[x].val) {
			return
		}
		idx++
	}
}

func (tree *rbTree[K, V, X]) inspect() treeInspection[V] {
	return treeInspection[V]{
		arena: tree.arena,
		count: tree.count,
		cmp: func(x, y nodeIdx) int64 {
			return tree.cmp(tree.keyOf(x), tree.keyOf(y))
		},
	}
}
