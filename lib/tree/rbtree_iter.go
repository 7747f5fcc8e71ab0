package tree

// Iterator is a bidirectional position inside a tree. It stays valid until
// the element it points to is erased, or the tree is cleared or released.
// The End position is stable for the whole lifetime of the tree.
type Iterator[V any] struct {
	arena *rbArena[V]
	idx   nodeIdx
}

// Valid reports whether the iterator points to an element.
func (it Iterator[V]) Valid() bool {
	return it.arena != nil && it.arena.isElement(it.idx)
}

func (it Iterator[V]) IsEnd() bool {
	return it.arena == nil || it.idx == sentinelIdx
}

func (it Iterator[V]) Value() V {
	if !it.Valid() {
		panic( /* debug assertion */ "[rbtree] dereference an invalid iterator")
	}
	return it.arena.nodes[it.idx].val
}

func (it Iterator[V]) Color() RBColor {
	if !it.Valid() {
		return Black
	}
	return it.arena.nodes[it.idx].color
}

// Next steps to the in-order successor, the last element steps to End.
// End stays End.
func (it Iterator[V]) Next() Iterator[V] {
	if it.arena == nil {
		return it
	}
	return Iterator[V]{arena: it.arena, idx: it.arena.succ(it.idx)}
}

// Prev steps to the in-order predecessor, End steps to the last element.
// Prev of the first element is End.
func (it Iterator[V]) Prev() Iterator[V] {
	if it.arena == nil {
		return it
	}
	if it.idx != sentinelIdx && it.idx == it.arena.leftmost() {
		return Iterator[V]{arena: it.arena, idx: sentinelIdx}
	}
	return Iterator[V]{arena: it.arena, idx: it.arena.pred(it.idx)}
}

func (it Iterator[V]) Equal(other Iterator[V]) bool {
	return it.arena == other.arena && it.idx == other.idx
}

// ReverseIterator walks the tree from the maximum down to the minimum.
// It points to the element before its base.
type ReverseIterator[V any] struct {
	base Iterator[V]
}

func (it ReverseIterator[V]) Base() Iterator[V] {
	return it.base
}

func (it ReverseIterator[V]) Valid() bool {
	return !it.IsEnd() && it.base.Prev().Valid()
}

// IsEnd reports whether the base reached the first element.
func (it ReverseIterator[V]) IsEnd() bool {
	if it.base.arena == nil {
		return true
	}
	// The leftmost of an empty tree is the sentinel.
	return it.base.idx == it.base.arena.leftmost()
}

func (it ReverseIterator[V]) Value() V {
	return it.base.Prev().Value()
}

func (it ReverseIterator[V]) Color() RBColor {
	return it.base.Prev().Color()
}

func (it ReverseIterator[V]) Next() ReverseIterator[V] {
	if it.IsEnd() {
		return it
	}
	return ReverseIterator[V]{base: it.base.Prev()}
}

func (it ReverseIterator[V]) Prev() ReverseIterator[V] {
	return ReverseIterator[V]{base: it.base.Next()}
}

func (it ReverseIterator[V]) Equal(other ReverseIterator[V]) bool {
	return it.base.Equal(other.base)
}
