package kv

import (
	"github.com/samber/lo"

	"github.com/benz9527/xordered/lib/infra"
	"github.com/benz9527/xordered/lib/tree"
)

// OrderedMap keeps unique keys in comparator order with a mapped value.
// Not thread safe, see NewThreadSafeOrderedMap.
type OrderedMap[K, M any] struct {
	tree tree.RBTree[K, tree.Pair[K, M]]
}

func NewOrderedMap[K infra.OrderedKey, M any](opts ...tree.RBTreeOpt[tree.Pair[K, M]]) *OrderedMap[K, M] {
	return NewOrderedMapFunc[K, M](infra.OrderedKeyCmp[K], opts...)
}

func NewOrderedMapFunc[K, M any](cmp infra.KeyComparator[K], opts ...tree.RBTreeOpt[tree.Pair[K, M]]) *OrderedMap[K, M] {
	return &OrderedMap[K, M]{
		tree: tree.NewRBTree[K, tree.Pair[K, M], tree.PairFirst[K, M]](cmp, opts...),
	}
}

// Put inserts or overwrites the mapped value. It returns the replaced value
// and true if the key was present.
func (m *OrderedMap[K, M]) Put(key K, val M) (M, bool, error) {
	it, ok, err := m.tree.InsertUnique(tree.MakePair(key, val))
	if err != nil || ok {
		return *new(M), false, err
	}
	old := it.Value().Second
	if err = m.tree.Assign(it, tree.MakePair(key, val)); err != nil {
		return *new(M), false, err
	}
	return old, true, nil
}

// PutIfAbsent reports false and keeps the present value if key exists.
func (m *OrderedMap[K, M]) PutIfAbsent(key K, val M) (bool, error) {
	_, ok, err := m.tree.InsertUnique(tree.MakePair(key, val))
	return ok, err
}

func (m *OrderedMap[K, M]) Get(key K) (M, bool) {
	if it := m.tree.Find(key); it.Valid() {
		return it.Value().Second, true
	}
	return *new(M), false
}

func (m *OrderedMap[K, M]) Contains(key K) bool {
	return m.tree.Find(key).Valid()
}

func (m *OrderedMap[K, M]) Delete(key K) (M, bool) {
	it := m.tree.Find(key)
	if !it.Valid() {
		return *new(M), false
	}
	val := it.Value().Second
	m.tree.Erase(it)
	return val, true
}

func (m *OrderedMap[K, M]) Len() int64 {
	return m.tree.Len()
}

func (m *OrderedMap[K, M]) Clear() {
	m.tree.Clear()
}

func (m *OrderedMap[K, M]) Min() (tree.Pair[K, M], bool) {
	return first(m.tree)
}

func (m *OrderedMap[K, M]) Max() (tree.Pair[K, M], bool) {
	return last(m.tree)
}

func (m *OrderedMap[K, M]) Entries() []tree.Pair[K, M] {
	return values(m.tree)
}

func (m *OrderedMap[K, M]) Keys() []K {
	return lo.Map(values(m.tree), func(e tree.Pair[K, M], _ int) K {
		return e.First
	})
}

func (m *OrderedMap[K, M]) Values() []M {
	return lo.Map(values(m.tree), func(e tree.Pair[K, M], _ int) M {
		return e.Second
	})
}

// Range visits the entries with keys in [from, to) until fn returns false.
func (m *OrderedMap[K, M]) Range(from, to K, fn func(key K, val M) bool) {
	rangeOf(m.tree, from, to, func(e tree.Pair[K, M]) bool {
		return fn(e.First, e.Second)
	})
}

func (m *OrderedMap[K, M]) Tree() tree.RBTree[K, tree.Pair[K, M]] {
	return m.tree
}

// OrderedMultiMap allows equal keys, their entries stay in insertion order.
// Not thread safe.
type OrderedMultiMap[K, M any] struct {
	tree tree.RBTree[K, tree.Pair[K, M]]
}

func NewOrderedMultiMap[K infra.OrderedKey, M any](opts ...tree.RBTreeOpt[tree.Pair[K, M]]) *OrderedMultiMap[K, M] {
	return NewOrderedMultiMapFunc[K, M](infra.OrderedKeyCmp[K], opts...)
}

func NewOrderedMultiMapFunc[K, M any](cmp infra.KeyComparator[K], opts ...tree.RBTreeOpt[tree.Pair[K, M]]) *OrderedMultiMap[K, M] {
	return &OrderedMultiMap[K, M]{
		tree: tree.NewRBTree[K, tree.Pair[K, M], tree.PairFirst[K, M]](cmp, opts...),
	}
}

func (m *OrderedMultiMap[K, M]) Put(key K, val M) error {
	_, err := m.tree.InsertMulti(tree.MakePair(key, val))
	return err
}

// GetAll returns the mapped values of key in insertion order.
func (m *OrderedMultiMap[K, M]) GetAll(key K) []M {
	first, last := m.tree.EqualRange(key)
	res := make([]M, 0, 4)
	for it := first; !it.Equal(last); it = it.Next() {
		res = append(res, it.Value().Second)
	}
	return res
}

func (m *OrderedMultiMap[K, M]) Count(key K) int64 {
	return m.tree.Count(key)
}

func (m *OrderedMultiMap[K, M]) Delete(key K) int64 {
	return m.tree.EraseKey(key)
}

func (m *OrderedMultiMap[K, M]) Len() int64 {
	return m.tree.Len()
}

func (m *OrderedMultiMap[K, M]) Clear() {
	m.tree.Clear()
}

func (m *OrderedMultiMap[K, M]) Min() (tree.Pair[K, M], bool) {
	return first(m.tree)
}

func (m *OrderedMultiMap[K, M]) Max() (tree.Pair[K, M], bool) {
	return last(m.tree)
}

func (m *OrderedMultiMap[K, M]) Entries() []tree.Pair[K, M] {
	return values(m.tree)
}

func (m *OrderedMultiMap[K, M]) Keys() []K {
	return lo.Map(values(m.tree), func(e tree.Pair[K, M], _ int) K {
		return e.First
	})
}

func (m *OrderedMultiMap[K, M]) Values() []M {
	return lo.Map(values(m.tree), func(e tree.Pair[K, M], _ int) M {
		return e.Second
	})
}

func (m *OrderedMultiMap[K, M]) Range(from, to K, fn func(key K, val M) bool) {
	rangeOf(m.tree, from, to, func(e tree.Pair[K, M]) bool {
		return fn(e.First, e.Second)
	})
}

func (m *OrderedMultiMap[K, M]) Tree() tree.RBTree[K, tree.Pair[K, M]] {
	return m.tree
}
