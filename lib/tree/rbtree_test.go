package tree

import (
	"context"
	"errors"
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/benz9527/xordered/lib/infra"
)

type checkData struct {
	color RBColor
	key   uint64
}

func newUint64Tree(opts ...RBTreeOpt[uint64]) *rbTree[uint64, uint64, Identity[uint64]] {
	return newRBTree[uint64, uint64, Identity[uint64]](infra.OrderedKeyCmp[uint64], opts...)
}

func requireInorder(t *testing.T, tree RBTree[uint64, uint64], expected []checkData) {
	require.Equal(t, int64(len(expected)), tree.Len())
	tree.Foreach(func(idx int64, color RBColor, val uint64) bool {
		require.Equal(t, expected[idx].color, color)
		require.Equal(t, expected[idx].key, val)
		return true
	})
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))
}

func collect[K, V any](tree RBTree[K, V]) []V {
	res := make([]V, 0, tree.Len())
	tree.Foreach(func(idx int64, color RBColor, val V) bool {
		res = append(res, val)
		return true
	})
	return res
}

func TestRBTreeLeftAndRightRotate_Pred(t *testing.T) {
	tree := newUint64Tree()

	steps := []struct {
		insert   uint64
		expected []checkData
	}{
		{52, []checkData{{Black, 52}}},
		{47, []checkData{{Red, 47}, {Black, 52}}},
		{3, []checkData{{Red, 3}, {Black, 47}, {Red, 52}}},
		{35, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}}},
		{24, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}}},
	}
	for _, step := range steps {
		_, ok, err := tree.InsertUnique(step.insert)
		require.NoError(t, err)
		require.True(t, ok)
		requireInorder(t, tree, step.expected)
	}

	erases := []struct {
		erase    uint64
		expected []checkData
	}{
		{24, []checkData{{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52}}},
		{47, []checkData{{Black, 3}, {Black, 35}, {Black, 52}}},
		{52, []checkData{{Red, 3}, {Black, 35}}},
		{3, []checkData{{Black, 35}}},
		{35, []checkData{}},
	}
	for _, step := range erases {
		require.Equal(t, int64(1), tree.EraseKey(step.erase))
		requireInorder(t, tree, step.expected)
	}
	require.True(t, tree.Begin().Equal(tree.End()))
}

func TestRBTree_Scenarios(t *testing.T) {
	testcases := []struct {
		name string
		run  func(tt *testing.T)
	}{
		{
			name: "unique ascending root stabilizes",
			run: func(tt *testing.T) {
				tree := newUint64Tree()
				for _, k := range []uint64{10, 20, 30} {
					_, ok, err := tree.InsertUnique(k)
					require.NoError(tt, err)
					require.True(tt, ok)
				}
				require.Equal(tt, []uint64{10, 20, 30}, collect[uint64, uint64](tree))
				require.Equal(tt, uint64(20), tree.Root().Value())
				require.NoError(tt, ValidateAll[uint64, uint64](tree, true))
			},
		},
		{
			name: "multi equal keys",
			run: func(tt *testing.T) {
				tree := newUint64Tree()
				for i := 0; i < 3; i++ {
					_, err := tree.InsertMulti(5)
					require.NoError(tt, err)
				}
				require.Equal(tt, int64(3), tree.Len())
				require.Equal(tt, []uint64{5, 5, 5}, collect[uint64, uint64](tree))
				require.Equal(tt, int64(3), tree.Count(5))
				require.NoError(tt, ValidateAll[uint64, uint64](tree, false))
			},
		},
		{
			name: "erase node with two children",
			run: func(tt *testing.T) {
				tree := newUint64Tree()
				for k := uint64(1); k <= 7; k++ {
					_, _, err := tree.InsertUnique(k)
					require.NoError(tt, err)
				}
				it := tree.Find(4)
				require.True(tt, it.Valid())
				require.Equal(tt, uint64(5), tree.Erase(it).Value())
				require.Equal(tt, []uint64{1, 2, 3, 5, 6, 7}, collect[uint64, uint64](tree))
				require.NoError(tt, ValidateAll[uint64, uint64](tree, true))
				require.Equal(tt, uint64(1), tree.Begin().Value())
				require.Equal(tt, uint64(7), tree.RBegin().Value())
			},
		},
		{
			name: "erase the sole element",
			run: func(tt *testing.T) {
				tree := newUint64Tree()
				_, _, err := tree.InsertUnique(42)
				require.NoError(tt, err)
				require.True(tt, tree.Erase(tree.Begin()).IsEnd())
				require.Equal(tt, int64(0), tree.Len())
				require.True(tt, tree.Begin().Equal(tree.End()))
				require.Equal(tt, sentinelIdx, tree.arena.leftmost())
				require.Equal(tt, sentinelIdx, tree.arena.rightmost())
				require.Equal(tt, nilIdx, tree.arena.root())
				require.NoError(tt, ValidateAll[uint64, uint64](tree, true))
			},
		},
		{
			name: "clear empty tree",
			run: func(tt *testing.T) {
				tree := newUint64Tree()
				tree.Clear()
				require.Equal(tt, int64(0), tree.Len())
				require.True(tt, tree.Empty())
				require.True(tt, tree.Begin().Equal(tree.End()))
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, tc.run)
	}
}

func TestRBTree_InsertUniqueDuplicate(t *testing.T) {
	tree := newRBTree[int, Pair[int, string], PairFirst[int, string]](infra.OrderedKeyCmp[int])
	first, ok, err := tree.InsertUnique(MakePair(1, "a"))
	require.NoError(t, err)
	require.True(t, ok)

	dup, ok, err := tree.InsertUnique(MakePair(1, "b"))
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, first.Equal(dup))
	require.Equal(t, "a", dup.Value().Second)
	require.Equal(t, int64(1), tree.Len())
}

func TestRBTree_MultiKeepsInsertionOrder(t *testing.T) {
	tree := newRBTree[int, Pair[int, string], PairFirst[int, string]](infra.OrderedKeyCmp[int])
	for _, p := range []Pair[int, string]{
		MakePair(2, "x"), MakePair(1, "a"), MakePair(1, "b"), MakePair(3, "y"), MakePair(1, "c"),
	} {
		_, err := tree.InsertMulti(p)
		require.NoError(t, err)
	}
	first, last := tree.EqualRange(1)
	seconds := make([]string, 0, 3)
	for it := first; !it.Equal(last); it = it.Next() {
		seconds = append(seconds, it.Value().Second)
	}
	require.Equal(t, []string{"a", "b", "c"}, seconds)
	require.Equal(t, int64(3), tree.EraseKey(1))
	require.Equal(t, int64(0), tree.Count(1))
	require.Equal(t, int64(2), tree.Len())
	require.NoError(t, ValidateAll[int, Pair[int, string]](tree, true))
}

func TestRBTree_Bounds(t *testing.T) {
	tree := newUint64Tree()
	for _, k := range []uint64{10, 20, 20, 30} {
		_, err := tree.InsertMulti(k)
		require.NoError(t, err)
	}

	testcases := []struct {
		name  string
		key   uint64
		lower uint64
		upper uint64
		isEnd bool
		count int64
	}{
		{name: "below min", key: 5, lower: 10, upper: 10},
		{name: "exact min", key: 10, lower: 10, upper: 20, count: 1},
		{name: "equal run", key: 20, lower: 20, upper: 30, count: 2},
		{name: "between", key: 25, lower: 30, upper: 30},
		{name: "max", key: 30, lower: 30, isEnd: true, count: 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.lower, tree.LowerBound(tc.key).Value())
			if tc.isEnd {
				require.True(tt, tree.UpperBound(tc.key).IsEnd())
			} else {
				require.Equal(tt, tc.upper, tree.UpperBound(tc.key).Value())
			}
			require.Equal(tt, tc.count, tree.Count(tc.key))
			require.Equal(tt, tc.count > 0, tree.Find(tc.key).Valid())
		})
	}
	require.True(t, tree.LowerBound(31).IsEnd())
	require.True(t, tree.Find(31).IsEnd())
}

func TestRBTree_IteratorNavigation(t *testing.T) {
	tree := newUint64Tree()
	for k := uint64(1); k <= 5; k++ {
		_, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
	}

	require.True(t, tree.End().Next().IsEnd())
	require.Equal(t, uint64(5), tree.End().Prev().Value())
	require.True(t, tree.Begin().Prev().IsEnd())
	require.True(t, tree.Find(5).Next().IsEnd())

	forward := make([]uint64, 0, 5)
	for it := tree.Begin(); !it.IsEnd(); it = it.Next() {
		forward = append(forward, it.Value())
	}
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, forward)

	backward := make([]uint64, 0, 5)
	for it := tree.RBegin(); !it.IsEnd(); it = it.Next() {
		backward = append(backward, it.Value())
	}
	require.Equal(t, []uint64{5, 4, 3, 2, 1}, backward)
	require.True(t, tree.RBegin().Next().Prev().Equal(tree.RBegin()))

	reverse := make([]uint64, 0, 5)
	tree.ReverseForeach(func(idx int64, color RBColor, val uint64) bool {
		reverse = append(reverse, val)
		return idx < 2
	})
	require.Equal(t, []uint64{5, 4, 3}, reverse)

	empty := newUint64Tree()
	require.True(t, empty.RBegin().IsEnd())
	require.True(t, empty.RBegin().Equal(empty.REnd()))
	require.True(t, empty.Root().IsEnd())
	require.Panics(t, func() {
		empty.End().Value()
	})
}

func TestRBTree_IteratorStability(t *testing.T) {
	tree := newUint64Tree()
	its := make(map[uint64]Iterator[uint64], 64)
	for k := uint64(0); k < 64; k++ {
		it, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
		its[k] = it
	}
	for k := uint64(0); k < 64; k += 3 {
		tree.Erase(its[k])
		delete(its, k)
	}
	for k, it := range its {
		require.True(t, it.Valid())
		require.Equal(t, k, it.Value())
	}
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))
}

func TestRBTree_InsertHint(t *testing.T) {
	testcases := []struct {
		name  string
		multi bool
		hint  func(tree RBTree[uint64, uint64], key uint64) Iterator[uint64]
	}{
		{
			name: "unique end hint",
			hint: func(tree RBTree[uint64, uint64], key uint64) Iterator[uint64] {
				return tree.End()
			},
		},
		{
			name: "unique begin hint",
			hint: func(tree RBTree[uint64, uint64], key uint64) Iterator[uint64] {
				return tree.Begin()
			},
		},
		{
			name: "unique upper bound hint",
			hint: func(tree RBTree[uint64, uint64], key uint64) Iterator[uint64] {
				return tree.UpperBound(key)
			},
		},
		{
			name:  "multi end hint",
			multi: true,
			hint: func(tree RBTree[uint64, uint64], key uint64) Iterator[uint64] {
				return tree.End()
			},
		},
		{
			name:  "multi lower bound hint",
			multi: true,
			hint: func(tree RBTree[uint64, uint64], key uint64) Iterator[uint64] {
				return tree.LowerBound(key)
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := newUint64Tree()
			keys := make([]uint64, 0, 512)
			for i := 0; i < 512; i++ {
				k := uint64(randv2.IntN(256))
				if tc.multi {
					it, err := tree.InsertMultiHint(tc.hint(tree, k), k)
					require.NoError(tt, err)
					require.Equal(tt, k, it.Value())
					keys = append(keys, k)
				} else {
					it, ok, err := tree.InsertUniqueHint(tc.hint(tree, k), k)
					require.NoError(tt, err)
					require.Equal(tt, k, it.Value())
					if ok {
						keys = append(keys, k)
					}
				}
				require.NoError(tt, ValidateAll[uint64, uint64](tree, !tc.multi))
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			require.Equal(tt, keys, collect[uint64, uint64](tree))
		})
	}
}

func TestRBTree_ForeignHintFallsBack(t *testing.T) {
	a, b := newUint64Tree(), newUint64Tree()
	_, _, err := b.InsertUnique(100)
	require.NoError(t, err)
	for _, k := range []uint64{3, 1, 2} {
		_, ok, err := a.InsertUniqueHint(b.Begin(), k)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, []uint64{1, 2, 3}, collect[uint64, uint64](a))
	require.Equal(t, []uint64{100}, collect[uint64, uint64](b))
}

func TestRBTree_EmplaceRollback(t *testing.T) {
	destroyed := 0
	tree := newUint64Tree(WithRBTreeValueDestructor(func(uint64) {
		destroyed++
	}))
	for k := uint64(0); k < 10; k++ {
		_, err := tree.EmplaceMulti(func() (uint64, error) {
			return k, nil
		})
		require.NoError(t, err)
	}
	before := collect[uint64, uint64](tree)

	boom := errors.New("boom")
	it, ok, err := tree.EmplaceUnique(func() (uint64, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, ErrRBTreeConstruct)
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
	require.True(t, it.IsEnd())
	require.Equal(t, before, collect[uint64, uint64](tree))
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))
	require.Equal(t, 0, destroyed)

	// Duplicate emplace destroys the freshly constructed value.
	it, ok, err = tree.EmplaceUnique(func() (uint64, error) {
		return 5, nil
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, uint64(5), it.Value())
	require.Equal(t, 1, destroyed)
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))

	tree.Clear()
	require.Equal(t, 11, destroyed)
}

func TestRBTree_MaxSize(t *testing.T) {
	tree := newUint64Tree(WithRBTreeMaxSize[uint64](3))
	require.Equal(t, int64(3), tree.MaxSize())
	for k := uint64(0); k < 3; k++ {
		_, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
	}
	_, _, err := tree.InsertUnique(10)
	require.ErrorIs(t, err, ErrRBTreeIsFull)
	_, err = tree.InsertMulti(1)
	require.ErrorIs(t, err, ErrRBTreeIsFull)

	// A duplicate is reported before any allocation.
	_, ok, err := tree.InsertUnique(1)
	require.NoError(t, err)
	require.False(t, ok)

	tree.Erase(tree.Begin())
	_, ok, err = tree.InsertUnique(10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []uint64{1, 2, 10}, collect[uint64, uint64](tree))
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))
}

func TestRBTree_Assign(t *testing.T) {
	tree := newRBTree[int, Pair[int, string], PairFirst[int, string]](infra.OrderedKeyCmp[int])
	it, _, err := tree.InsertUnique(MakePair(1, "a"))
	require.NoError(t, err)

	require.NoError(t, tree.Assign(it, MakePair(1, "b")))
	require.Equal(t, "b", tree.Find(1).Value().Second)
	require.ErrorIs(t, tree.Assign(it, MakePair(2, "c")), ErrRBTreeKeyMismatch)
	require.ErrorIs(t, tree.Assign(tree.End(), MakePair(1, "c")), ErrRBTreeInvalidIterator)
}

func TestRBTree_Desc(t *testing.T) {
	tree := newUint64Tree(WithRBTreeDesc[uint64]())
	for _, k := range []uint64{3, 1, 4, 1, 5, 9, 2, 6} {
		_, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
	}
	require.Equal(t, []uint64{9, 6, 5, 4, 3, 2, 1}, collect[uint64, uint64](tree))
	require.Equal(t, uint64(4), tree.LowerBound(4).Value())
	require.Equal(t, uint64(3), tree.UpperBound(4).Value())
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))
}

func TestRBTree_CloneIndependence(t *testing.T) {
	tree := newUint64Tree()
	for k := uint64(0); k < 100; k++ {
		_, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
	}
	colors := make([]RBColor, 0, 100)
	tree.Foreach(func(idx int64, color RBColor, val uint64) bool {
		colors = append(colors, color)
		return true
	})

	cp, err := tree.Clone()
	require.NoError(t, err)
	require.NoError(t, ValidateAll[uint64, uint64](cp, true))
	cp.Foreach(func(idx int64, color RBColor, val uint64) bool {
		require.Equal(t, colors[idx], color)
		require.Equal(t, uint64(idx), val)
		return true
	})

	for k := uint64(0); k < 100; k += 2 {
		require.Equal(t, int64(1), cp.EraseKey(k))
	}
	_, _, err = cp.InsertUnique(1000)
	require.NoError(t, err)

	require.Equal(t, int64(100), tree.Len())
	require.Equal(t, int64(51), cp.Len())
	tree.Foreach(func(idx int64, color RBColor, val uint64) bool {
		require.Equal(t, colors[idx], color)
		require.Equal(t, uint64(idx), val)
		return true
	})
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))
	require.NoError(t, ValidateAll[uint64, uint64](cp, true))
}

func TestRBTree_CloneUnwind(t *testing.T) {
	destroyed := 0
	tree := newUint64Tree(WithRBTreeValueDestructor(func(uint64) {
		destroyed++
	}))
	for k := uint64(0); k < 100; k++ {
		_, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
	}

	copied := 0
	boom := errors.New("copy boom")
	cp, err := tree.Clone(func(v uint64) (uint64, error) {
		if v == 0 {
			return 0, boom
		}
		copied++
		return v, nil
	})
	require.ErrorIs(t, err, ErrRBTreeCopy)
	require.ErrorIs(t, err, boom)
	require.Nil(t, cp)
	require.Positive(t, copied)
	require.Equal(t, copied, destroyed)
	require.Equal(t, int64(100), tree.Len())
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))

	other := newUint64Tree()
	_, _, err = other.InsertUnique(7)
	require.NoError(t, err)
	require.ErrorIs(t, other.CopyFrom(tree, func(v uint64) (uint64, error) {
		return 0, boom
	}), ErrRBTreeCopy)
	require.Equal(t, []uint64{7}, collect[uint64, uint64](other))
}

type ownedRes struct {
	key    int
	closed bool
}

type ownedResKey struct{}

func (ownedResKey) Key(r *ownedRes) int {
	return r.key
}

func TestRBTree_CopyUnwindKeepsSourceValues(t *testing.T) {
	destructor := WithRBTreeValueDestructor(func(r *ownedRes) {
		r.closed = true
	})
	src := newRBTree[int, *ownedRes, ownedResKey](infra.OrderedKeyCmp[int], destructor)
	for i := 0; i < 10; i++ {
		_, _, err := src.InsertUnique(&ownedRes{key: i})
		require.NoError(t, err)
	}
	requireSourceAlive := func(tt *testing.T) {
		require.Equal(tt, int64(10), src.Len())
		src.Foreach(func(idx int64, color RBColor, r *ownedRes) bool {
			require.False(tt, r.closed, "key %d", r.key)
			return true
		})
		require.NoError(tt, ValidateAll[int, *ownedRes](src, true))
	}

	testcases := []struct {
		name   string
		copyFn []func(*ownedRes) (*ownedRes, error)
		copies *[]*ownedRes
		errIs  error
	}{
		{
			name:  "shallow copy into a bounded tree",
			errIs: ErrRBTreeIsFull,
		},
		{
			name:   "deep copy into a bounded tree",
			copies: &[]*ownedRes{},
			errIs:  ErrRBTreeIsFull,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			if tc.copies != nil {
				tc.copyFn = append(tc.copyFn, func(r *ownedRes) (*ownedRes, error) {
					cp := &ownedRes{key: r.key}
					*tc.copies = append(*tc.copies, cp)
					return cp, nil
				})
			}
			dst := newRBTree[int, *ownedRes, ownedResKey](infra.OrderedKeyCmp[int],
				destructor,
				WithRBTreeMaxSize[*ownedRes](4),
			)
			require.ErrorIs(tt, dst.CopyFrom(src, tc.copyFn...), tc.errIs)
			require.True(tt, dst.Empty())
			require.Equal(tt, int64(0), dst.arena.used)
			requireSourceAlive(tt)
			if tc.copies != nil {
				require.Len(tt, *tc.copies, 4)
				for _, cp := range *tc.copies {
					require.True(tt, cp.closed)
				}
			}
		})
	}

	boom := errors.New("copy boom")
	cp, err := src.Clone(func(r *ownedRes) (*ownedRes, error) {
		if r.key == 0 {
			return nil, boom
		}
		return &ownedRes{key: r.key}, nil
	})
	require.ErrorIs(t, err, boom)
	require.Nil(t, cp)
	requireSourceAlive(t)
}

func TestRBTree_CopyMoveSwap(t *testing.T) {
	build := func(keys ...uint64) *rbTree[uint64, uint64, Identity[uint64]] {
		tree := newUint64Tree()
		for _, k := range keys {
			_, _, err := tree.InsertUnique(k)
			require.NoError(t, err)
		}
		return tree
	}

	t.Run("copy from", func(tt *testing.T) {
		a, b := build(1, 2, 3), build(9)
		require.NoError(tt, b.CopyFrom(a))
		require.Equal(tt, []uint64{1, 2, 3}, collect[uint64, uint64](b))
		require.Equal(tt, []uint64{1, 2, 3}, collect[uint64, uint64](a))
		require.NoError(tt, b.CopyFrom(b))
		require.Equal(tt, int64(3), b.Len())
	})
	t.Run("move", func(tt *testing.T) {
		a := build(1, 2, 3)
		it := a.Find(2)
		b := a.Move()
		require.True(tt, a.Empty())
		require.True(tt, a.Begin().Equal(a.End()))
		require.Equal(tt, []uint64{1, 2, 3}, collect[uint64, uint64](b))
		require.Equal(tt, uint64(3), b.Erase(it).Value())
		require.NoError(tt, ValidateAll[uint64, uint64](a, true))
		require.NoError(tt, ValidateAll[uint64, uint64](b, true))
	})
	t.Run("move from", func(tt *testing.T) {
		a, b := build(1, 2), build(5, 6, 7)
		require.NoError(tt, a.MoveFrom(b))
		require.Equal(tt, []uint64{5, 6, 7}, collect[uint64, uint64](a))
		require.True(tt, b.Empty())
		_, _, err := b.InsertUnique(8)
		require.NoError(tt, err)
		require.NoError(tt, ValidateAll[uint64, uint64](b, true))
	})
	t.Run("swap", func(tt *testing.T) {
		a, b := build(1, 2), build(5, 6, 7)
		it := a.Find(2)
		require.NoError(tt, a.Swap(b))
		require.Equal(tt, []uint64{5, 6, 7}, collect[uint64, uint64](a))
		require.Equal(tt, []uint64{1, 2}, collect[uint64, uint64](b))
		require.True(tt, b.Erase(it).IsEnd())
		require.Equal(tt, []uint64{1}, collect[uint64, uint64](b))
	})
	t.Run("incompatible", func(tt *testing.T) {
		a := build(1)
		desc := newRBTree[uint64, uint64, Identity[uint64]](infra.OrderedKeyCmp[uint64], WithRBTreeDesc[uint64]())
		require.NoError(tt, a.CopyFrom(desc))
		require.ErrorIs(tt, a.Swap(nil), ErrRBTreeIncompatible)
	})
}

func TestRBTree_EraseRange(t *testing.T) {
	tree := newUint64Tree()
	for k := uint64(0); k < 20; k++ {
		_, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
	}
	last := tree.EraseRange(tree.Find(5), tree.Find(15))
	require.Equal(t, uint64(15), last.Value())
	require.Equal(t, int64(10), tree.Len())
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))

	require.True(t, tree.EraseRange(tree.Begin(), tree.End()).IsEnd())
	require.True(t, tree.Empty())
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))
	require.Equal(t, int64(0), tree.EraseKey(3))
}

func TestRBTree_Release(t *testing.T) {
	tree := newUint64Tree(WithRBTreeInitCap[uint64](1024))
	for k := uint64(0); k < 1000; k++ {
		_, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
	}
	tree.Release()
	require.True(t, tree.Empty())
	require.Equal(t, int(firstNodeIdx), len(tree.arena.nodes))
	_, _, err := tree.InsertUnique(1)
	require.NoError(t, err)
	require.NoError(t, ValidateAll[uint64, uint64](tree, true))
}

func TestRBTree_InsertFixupStep(t *testing.T) {
	// link hangs a red node below parent without rebalancing.
	link := func(tree *rbTree[uint64, uint64, Identity[uint64]], parentKey, key uint64, addLeft bool) nodeIdx {
		p := tree.Find(parentKey).idx
		z, err := tree.newNode(key)
		require.NoError(t, err)
		a := tree.arena
		a.nodes[z].parent = p
		if addLeft {
			a.nodes[p].left = z
		} else {
			a.nodes[p].right = z
		}
		return z
	}

	t.Run("uncle red", func(tt *testing.T) {
		tree := newUint64Tree()
		for _, k := range []uint64{20, 10, 30} {
			_, _, err := tree.InsertUnique(k)
			require.NoError(tt, err)
		}
		z := link(tree, 10, 5, true)
		next, c := tree.insertFixupStep(z)
		require.Equal(tt, insertCaseUncleRed, c)
		require.Equal(tt, tree.Find(20).idx, next)
		require.Equal(tt, Red, tree.arena.nodes[next].color)
		_, c = tree.insertFixupStep(next)
		require.Equal(tt, insertCaseDone, c)
	})
	t.Run("inner then outer grandchild", func(tt *testing.T) {
		tree := newUint64Tree()
		for _, k := range []uint64{20, 10} {
			_, _, err := tree.InsertUnique(k)
			require.NoError(tt, err)
		}
		z := link(tree, 10, 15, false)
		next, c := tree.insertFixupStep(z)
		require.Equal(tt, insertCaseInnerGrandchild, c)
		require.Equal(tt, tree.Find(10).idx, next)
		_, c = tree.insertFixupStep(next)
		require.Equal(tt, insertCaseOuterGrandchild, c)
		require.Equal(tt, z, tree.arena.root())
		tree.count++
		tree.arena.setLeftmost(tree.arena.minimum(tree.arena.root()))
		requireInorder(tt, tree, []checkData{{Red, 10}, {Black, 15}, {Red, 20}})
	})
}

func TestRBTree_EraseFixupStep(t *testing.T) {
	build := func(tt *testing.T, inserts []uint64, erases []uint64) *rbTree[uint64, uint64, Identity[uint64]] {
		tree := newUint64Tree()
		for _, k := range inserts {
			_, _, err := tree.InsertUnique(k)
			require.NoError(tt, err)
		}
		for _, k := range erases {
			require.Equal(tt, int64(1), tree.EraseKey(k))
		}
		require.NoError(tt, ValidateAll[uint64, uint64](tree, true))
		return tree
	}

	testcases := []struct {
		name     string
		inserts  []uint64
		erases   []uint64
		target   uint64
		cases    []eraseCase
		expected []checkData
	}{
		{
			name:     "nephews black",
			inserts:  []uint64{35, 3, 52, 60},
			erases:   []uint64{60},
			target:   52,
			cases:    []eraseCase{eraseCaseNephewsBlack, eraseCaseDone},
			expected: []checkData{{Red, 3}, {Black, 35}},
		},
		{
			name:     "far nephew red",
			inserts:  []uint64{52, 47, 3, 35, 24},
			erases:   []uint64{24},
			target:   47,
			cases:    []eraseCase{eraseCaseFarNephewRed},
			expected: []checkData{{Black, 3}, {Black, 35}, {Black, 52}},
		},
		{
			name:     "far nephew black",
			inserts:  []uint64{20, 10, 30, 25},
			target:   10,
			cases:    []eraseCase{eraseCaseFarNephewBlack, eraseCaseFarNephewRed},
			expected: []checkData{{Black, 20}, {Black, 25}, {Black, 30}},
		},
		{
			name:     "sibling red",
			inserts:  []uint64{20, 10, 40, 30, 50, 60},
			erases:   []uint64{60},
			target:   10,
			cases:    []eraseCase{eraseCaseSiblingRed, eraseCaseNephewsBlack, eraseCaseDone},
			expected: []checkData{{Black, 20}, {Red, 30}, {Black, 40}, {Black, 50}},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := build(tt, tc.inserts, tc.erases)
			z := tree.Find(tc.target).idx
			x, xp, removed := tree.unlink(z)
			require.Equal(tt, Black, removed)

			got := make([]eraseCase, 0, len(tc.cases))
			for {
				nx, nxp, c := tree.eraseFixupStep(x, xp)
				got = append(got, c)
				if c == eraseCaseDone || c == eraseCaseFarNephewRed {
					break
				}
				x, xp = nx, nxp
			}
			if x != nilIdx {
				tree.arena.nodes[x].color = Black
			}
			require.Equal(tt, tc.cases, got)

			tree.destroyNode(z)
			tree.count--
			requireInorder(tt, tree, tc.expected)
		})
	}
}

func rbtreeRandomInsertAndEraseRunCore(t *testing.T, total int, violationCheck bool) {
	tree := newUint64Tree()
	keys := make([]uint64, 0, total)
	for i := 0; i < total; i++ {
		k := randv2.Uint64()
		_, ok, err := tree.InsertUnique(k)
		require.NoError(t, err)
		if ok {
			keys = append(keys, k)
		}
		if violationCheck {
			require.NoError(t, ValidateAll[uint64, uint64](tree, true))
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	require.Equal(t, keys, collect[uint64, uint64](tree))

	randv2.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	for i, k := range keys {
		require.Equal(t, int64(1), tree.EraseKey(k))
		require.True(t, tree.Find(k).IsEnd())
		require.Equal(t, int64(len(keys)-i-1), tree.Len())
		if violationCheck {
			require.NoError(t, ValidateAll[uint64, uint64](tree, true))
		}
	}
	require.True(t, tree.Empty())
}

func TestRBTreeRandomInsertAndErase(t *testing.T) {
	type testcase struct {
		name           string
		total          int
		violationCheck bool
	}
	testcases := []testcase{
		{
			name:  "random 100000",
			total: 100000,
		},
		{
			name:           "violation check random 2000",
			total:          2000,
			violationCheck: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndEraseRunCore(tt, tc.total, tc.violationCheck)
		})
	}
}

func TestRBTreeInsertAndErase_SequentialNumber(t *testing.T) {
	testcases := []struct {
		name    string
		reverse bool
	}{
		{name: "ascending"},
		{name: "descending", reverse: true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			total := uint64(1000)
			tree := newUint64Tree()
			for i := uint64(0); i < total; i++ {
				k := i
				if tc.reverse {
					k = total - 1 - i
				}
				_, ok, err := tree.InsertUnique(k)
				require.NoError(tt, err)
				require.True(tt, ok)
				require.NoError(tt, RedViolationValidate[uint64, uint64](tree))
				require.NoError(tt, BlackViolationValidate[uint64, uint64](tree))
			}
			tree.Foreach(func(idx int64, color RBColor, val uint64) bool {
				require.Equal(tt, uint64(idx), val)
				return true
			})
			for i := uint64(0); i < total; i += 2 {
				require.Equal(tt, int64(1), tree.EraseKey(i))
				require.NoError(tt, ValidateAll[uint64, uint64](tree, true))
			}
			tree.Foreach(func(idx int64, color RBColor, val uint64) bool {
				require.Equal(tt, uint64(2*idx+1), val)
				return true
			})
		})
	}
}

func metricSum(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			total := int64(0)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestRBTree_Stats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()

	tree := newUint64Tree(WithRBTreeStats[uint64]("test"))
	for k := uint64(0); k < 100; k++ {
		_, _, err := tree.InsertUnique(k)
		require.NoError(t, err)
	}
	for k := uint64(0); k < 40; k++ {
		require.Equal(t, int64(1), tree.EraseKey(k))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Equal(t, int64(60), metricSum(t, rm, "xrbtree.node.count"))
	require.Equal(t, int64(100), metricSum(t, rm, "xrbtree.insert.count"))
	require.Equal(t, int64(40), metricSum(t, rm, "xrbtree.erase.count"))
	require.Positive(t, metricSum(t, rm, "xrbtree.rotate.count"))
	require.Positive(t, metricSum(t, rm, "xrbtree.rebalance.steps"))

	tree.Clear()
	rm = metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Equal(t, int64(0), metricSum(t, rm, "xrbtree.node.count"))
}

func scopedMetricSum(t *testing.T, rm metricdata.ResourceMetrics, scope, name string) int64 {
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != scope {
			continue
		}
		return metricSum(t, metricdata.ResourceMetrics{ScopeMetrics: []metricdata.ScopeMetrics{sm}}, name)
	}
	return 0
}

func TestRBTree_StatsFollowMovedNodes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()

	build := func(name string, n uint64) *rbTree[uint64, uint64, Identity[uint64]] {
		tree := newUint64Tree(WithRBTreeStats[uint64](name))
		for k := uint64(0); k < n; k++ {
			_, _, err := tree.InsertUnique(k)
			require.NoError(t, err)
		}
		return tree
	}
	a, b := build("a", 10), build("b", 3)
	nodeCounts := func() (int64, int64) {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		return scopedMetricSum(t, rm, RBTreeStatsName+"/a", "xrbtree.node.count"),
			scopedMetricSum(t, rm, RBTreeStatsName+"/b", "xrbtree.node.count")
	}

	na, nb := nodeCounts()
	require.Equal(t, int64(10), na)
	require.Equal(t, int64(3), nb)

	require.NoError(t, a.MoveFrom(b))
	na, nb = nodeCounts()
	require.Equal(t, a.Len(), na)
	require.Equal(t, int64(3), na)
	require.Equal(t, int64(0), nb)

	require.NoError(t, a.Swap(b))
	na, nb = nodeCounts()
	require.Equal(t, int64(0), na)
	require.Equal(t, int64(3), nb)
}

func BenchmarkRBTree_Random(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewRBTree[int, Pair[int, []byte], PairFirst[int, []byte]](infra.OrderedKeyCmp[int])

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_, err := tree.InsertMulti(MakePair(rngArr[i], testByBytes))
		if err != nil {
			panic(err)
		}
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewRBTree[int, Pair[int, []byte], PairFirst[int, []byte]](infra.OrderedKeyCmp[int])

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = tree.InsertUniqueHint(tree.End(), MakePair(i, testByBytes))
	}
}
