package kv

import (
	"errors"

	"github.com/benz9527/xordered/lib/infra"
)

var (
	ErrThreadSafeMapKeyNotFound = errors.New("[thread-safe-map] key not found")
)

type SafeStoreKeyFilterFunc[K any] func(key K) bool

func defaultAllKeysFilter[K any](key K) bool {
	return true
}

// ThreadSafeStorer is an ordered key value store guarded by a RWMutex.
// Keys are listed in comparator order.
type ThreadSafeStorer[K infra.OrderedKey, V any] interface {
	Purge() error
	AddOrUpdate(key K, obj V) error
	Replace(items map[K]V) error
	Delete(key K) (V, error)
	Get(key K) (item V, exists bool)
	Len() int64
	ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K
	ListValues(keys ...K) (items []V)
	// Range visits the entries with keys in [from, to) under the read lock.
	Range(from, to K, fn func(key K, obj V) bool)
}
