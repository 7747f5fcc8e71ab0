package kv

import (
	"io"
	"reflect"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xordered/lib/infra"
	"github.com/benz9527/xordered/lib/tree"
)

type threadSafeMap[K infra.OrderedKey, V any] struct {
	lock           sync.RWMutex
	items          *OrderedMap[K, V]
	treeOpts       []tree.RBTreeOpt[tree.Pair[K, V]]
	isClosableItem bool
	logger         *zap.Logger
}

func (t *threadSafeMap[K, V]) newItems() *OrderedMap[K, V] {
	return NewOrderedMap[K, V](t.treeOpts...)
}

func (t *threadSafeMap[K, V]) AddOrUpdate(key K, obj V) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	_, _, err := t.items.Put(key, obj)
	return err
}

// Replace swaps in a fresh store built from items and clears the old one.
// The current store is kept if building fails.
func (t *threadSafeMap[K, V]) Replace(items map[K]V) error {
	m := t.newItems()
	for key, obj := range items {
		if _, _, err := m.Put(key, obj); err != nil {
			m.Clear()
			return err
		}
	}

	t.lock.Lock()
	old := t.items
	t.items = m
	t.lock.Unlock()
	// Nothing else references the old store.
	old.Clear()
	return nil
}

func (t *threadSafeMap[K, V]) Delete(key K) (V, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if obj, exists := t.items.Delete(key); exists {
		return obj, nil
	}
	return *new(V), ErrThreadSafeMapKeyNotFound
}

func (t *threadSafeMap[K, V]) Get(key K) (item V, exists bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.items.Get(key)
}

func (t *threadSafeMap[K, V]) Len() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.items.Len()
}

func (t *threadSafeMap[K, V]) ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K {
	realFilters := make([]SafeStoreKeyFilterFunc[K], 0, len(filters))
	for _, filter := range filters {
		if filter != nil {
			realFilters = append(realFilters, filter)
		}
	}
	if len(realFilters) == 0 {
		realFilters = append(realFilters, defaultAllKeysFilter[K])
	}

	t.lock.RLock()
	defer t.lock.RUnlock()

	keys := make([]K, 0, t.items.Len())
	t.items.Tree().Foreach(func(idx int64, color tree.RBColor, e tree.Pair[K, V]) bool {
		for _, filter := range realFilters {
			if filter(e.First) {
				keys = append(keys, e.First)
				break
			}
		}
		return true
	})
	return keys
}

// ListValues returns all the values in key order, or the values of the
// present keys in the given order.
func (t *threadSafeMap[K, V]) ListValues(keys ...K) (items []V) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if len(keys) == 0 {
		return t.items.Values()
	}
	values := make([]V, 0, len(keys))
	for _, key := range keys {
		if obj, exists := t.items.Get(key); exists {
			values = append(values, obj)
		}
	}
	return values
}

func (t *threadSafeMap[K, V]) Range(from, to K, fn func(key K, obj V) bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	t.items.Range(from, to, fn)
}

// Purge closes every io.Closer value and empties the store.
// The close errors are combined.
func (t *threadSafeMap[K, V]) Purge() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	var merr error
	if t.isClosableItem {
		for _, item := range t.items.Values() {
			if isNilItem(item) {
				continue
			}
			closer, ok := any(item).(io.Closer)
			if !ok {
				continue
			}
			if err := closer.Close(); err != nil {
				t.logger.Error("[thread-safe-map] purge close item", zap.Error(err))
				merr = multierr.Append(merr, err)
			}
		}
	}

	t.items.Clear()
	return merr
}

func isNilItem(item any) bool {
	if item == nil {
		return true
	}
	v := reflect.ValueOf(item)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
	}
	return false
}

type ThreadSafeMapOption[K infra.OrderedKey, V any] func(*threadSafeMap[K, V])

func WithThreadSafeMapInitCap[K infra.OrderedKey, V any](initCap int64) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.treeOpts = append(m.treeOpts, tree.WithRBTreeInitCap[tree.Pair[K, V]](initCap))
	}
}

func WithThreadSafeMapDesc[K infra.OrderedKey, V any]() ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.treeOpts = append(m.treeOpts, tree.WithRBTreeDesc[tree.Pair[K, V]]())
	}
}

func WithThreadSafeMapStats[K infra.OrderedKey, V any](name string) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.treeOpts = append(m.treeOpts, tree.WithRBTreeStats[tree.Pair[K, V]](name))
	}
}

func WithThreadSafeMapLogger[K infra.OrderedKey, V any](logger *zap.Logger) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		if logger != nil {
			m.logger = logger
			m.treeOpts = append(m.treeOpts, tree.WithRBTreeLogger[tree.Pair[K, V]](logger))
		}
	}
}

// WithThreadSafeMapCloseableItemCheck makes Purge close every value whose
// dynamic type implements io.Closer, so a map over any or an interface
// type is covered too.
func WithThreadSafeMapCloseableItemCheck[K infra.OrderedKey, V any]() ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.isClosableItem = true
	}
}

func NewThreadSafeOrderedMap[K infra.OrderedKey, V any](opts ...ThreadSafeMapOption[K, V]) ThreadSafeStorer[K, V] {
	m := &threadSafeMap[K, V]{
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}
	m.items = m.newItems()
	return m
}
