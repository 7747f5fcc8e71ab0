package kv

import (
	"github.com/benz9527/xordered/lib/infra"
	"github.com/benz9527/xordered/lib/tree"
)

// OrderedSet keeps unique keys in comparator order. Not thread safe.
type OrderedSet[K any] struct {
	tree tree.RBTree[K, K]
}

func NewOrderedSet[K infra.OrderedKey](opts ...tree.RBTreeOpt[K]) *OrderedSet[K] {
	return NewOrderedSetFunc[K](infra.OrderedKeyCmp[K], opts...)
}

func NewOrderedSetFunc[K any](cmp infra.KeyComparator[K], opts ...tree.RBTreeOpt[K]) *OrderedSet[K] {
	return &OrderedSet[K]{
		tree: tree.NewRBTree[K, K, tree.Identity[K]](cmp, opts...),
	}
}

// Insert reports false if the key is already present.
func (s *OrderedSet[K]) Insert(key K) (bool, error) {
	_, ok, err := s.tree.InsertUnique(key)
	return ok, err
}

func (s *OrderedSet[K]) Contains(key K) bool {
	return s.tree.Find(key).Valid()
}

func (s *OrderedSet[K]) Delete(key K) bool {
	return s.tree.EraseKey(key) > 0
}

func (s *OrderedSet[K]) Len() int64 {
	return s.tree.Len()
}

func (s *OrderedSet[K]) Clear() {
	s.tree.Clear()
}

func (s *OrderedSet[K]) Min() (K, bool) {
	return first(s.tree)
}

func (s *OrderedSet[K]) Max() (K, bool) {
	return last(s.tree)
}

func (s *OrderedSet[K]) Keys() []K {
	return values(s.tree)
}

// Range visits the keys in [from, to) until fn returns false.
func (s *OrderedSet[K]) Range(from, to K, fn func(key K) bool) {
	rangeOf(s.tree, from, to, fn)
}

func (s *OrderedSet[K]) Tree() tree.RBTree[K, K] {
	return s.tree
}

// OrderedMultiSet keeps duplicated keys in comparator order, equal keys
// in insertion order. Not thread safe.
type OrderedMultiSet[K any] struct {
	tree tree.RBTree[K, K]
}

func NewOrderedMultiSet[K infra.OrderedKey](opts ...tree.RBTreeOpt[K]) *OrderedMultiSet[K] {
	return NewOrderedMultiSetFunc[K](infra.OrderedKeyCmp[K], opts...)
}

func NewOrderedMultiSetFunc[K any](cmp infra.KeyComparator[K], opts ...tree.RBTreeOpt[K]) *OrderedMultiSet[K] {
	return &OrderedMultiSet[K]{
		tree: tree.NewRBTree[K, K, tree.Identity[K]](cmp, opts...),
	}
}

func (s *OrderedMultiSet[K]) Insert(key K) error {
	_, err := s.tree.InsertMulti(key)
	return err
}

func (s *OrderedMultiSet[K]) Count(key K) int64 {
	return s.tree.Count(key)
}

// Delete removes every equal key and returns how many were removed.
func (s *OrderedMultiSet[K]) Delete(key K) int64 {
	return s.tree.EraseKey(key)
}

func (s *OrderedMultiSet[K]) Len() int64 {
	return s.tree.Len()
}

func (s *OrderedMultiSet[K]) Clear() {
	s.tree.Clear()
}

func (s *OrderedMultiSet[K]) Min() (K, bool) {
	return first(s.tree)
}

func (s *OrderedMultiSet[K]) Max() (K, bool) {
	return last(s.tree)
}

func (s *OrderedMultiSet[K]) Keys() []K {
	return values(s.tree)
}

func (s *OrderedMultiSet[K]) Range(from, to K, fn func(key K) bool) {
	rangeOf(s.tree, from, to, fn)
}

func (s *OrderedMultiSet[K]) Tree() tree.RBTree[K, K] {
	return s.tree
}

func first[K, V any](t tree.RBTree[K, V]) (V, bool) {
	if it := t.Begin(); it.Valid() {
		return it.Value(), true
	}
	return *new(V), false
}

func last[K, V any](t tree.RBTree[K, V]) (V, bool) {
	if it := t.RBegin(); it.Valid() {
		return it.Value(), true
	}
	return *new(V), false
}

func values[K, V any](t tree.RBTree[K, V]) []V {
	res := make([]V, 0, t.Len())
	t.Foreach(func(idx int64, color tree.RBColor, val V) bool {
		res = append(res, val)
		return true
	})
	return res
}

func rangeOf[K, V any](t tree.RBTree[K, V], from, to K, fn func(val V) bool) {
	if t.KeyCompare(from, to) >= 0 {
		return
	}
	end := t.LowerBound(to)
	for it := t.LowerBound(from); it.Valid() && !it.Equal(end); it = it.Next() {
		if !fn(it.Value()) {
			return
		}
	}
}
