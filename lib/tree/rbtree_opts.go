package tree

import "go.uber.org/zap"

type rbTreeOptions[V any] struct {
	isDesc         bool
	maxSize        int64
	initCap        int64
	destructor     func(V)
	logger         *zap.Logger
	isStatsEnabled bool
	statsName      string
}

type RBTreeOpt[V any] func(*rbTreeOptions[V])

// WithRBTreeDesc reverses the comparator, Begin() is the maximum.
func WithRBTreeDesc[V any]() RBTreeOpt[V] {
	return func(opts *rbTreeOptions[V]) {
		opts.isDesc = true
	}
}

// WithRBTreeMaxSize bounds the node count. Non-positive means RBTreeMaxSize.
func WithRBTreeMaxSize[V any](maxSize int64) RBTreeOpt[V] {
	return func(opts *rbTreeOptions[V]) {
		opts.maxSize = maxSize
	}
}

func WithRBTreeInitCap[V any](initCap int64) RBTreeOpt[V] {
	return func(opts *rbTreeOptions[V]) {
		opts.initCap = initCap
	}
}

// WithRBTreeValueDestructor runs fn exactly once on every value that
// leaves the tree (erase, clear, release, failed emplace).
func WithRBTreeValueDestructor[V any](fn func(V)) RBTreeOpt[V] {
	return func(opts *rbTreeOptions[V]) {
		opts.destructor = fn
	}
}

func WithRBTreeLogger[V any](logger *zap.Logger) RBTreeOpt[V] {
	return func(opts *rbTreeOptions[V]) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithRBTreeStats enables the otel instruments under the given name.
func WithRBTreeStats[V any](name string) RBTreeOpt[V] {
	return func(opts *rbTreeOptions[V]) {
		opts.isStatsEnabled = true
		opts.statsName = name
	}
}
