package tree

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Unknown"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (dir RBDirection) String() string {
	switch dir {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Unknown"
}

func (dir RBDirection) opposite() RBDirection {
	return -dir
}

// RBTree is the ordered associative engine shared by the set and map
// containers. The value type V is projected to its ordering key K by the
// key extractor bound at construction.
//
// The tree is not thread safe.
type RBTree[K, V any] interface {
	Len() int64
	Empty() bool
	MaxSize() int64
	// KeyCompare orders two keys the way the tree does, options applied.
	KeyCompare(i, j K) int64

	// Root returns the iterator to the current root, End() if empty.
	Root() Iterator[V]
	Begin() Iterator[V]
	End() Iterator[V]
	RBegin() ReverseIterator[V]
	REnd() ReverseIterator[V]

	// Find returns the first element whose key equals key or End().
	Find(key K) Iterator[V]
	Count(key K) int64
	// LowerBound returns the first element whose key is not less than key.
	LowerBound(key K) Iterator[V]
	// UpperBound returns the first element whose key is greater than key.
	UpperBound(key K) Iterator[V]
	EqualRange(key K) (Iterator[V], Iterator[V])

	// InsertUnique links val unless an element with an equal key exists.
	// In that case it returns the existing element and false.
	InsertUnique(val V) (Iterator[V], bool, error)
	// InsertMulti always links val, after every element with an equal key.
	InsertMulti(val V) (Iterator[V], error)
	InsertUniqueHint(hint Iterator[V], val V) (Iterator[V], bool, error)
	InsertMultiHint(hint Iterator[V], val V) (Iterator[V], error)
	// EmplaceUnique constructs the value inside a freshly allocated node.
	// A constructor error leaves the tree unchanged.
	EmplaceUnique(ctor func() (V, error)) (Iterator[V], bool, error)
	EmplaceMulti(ctor func() (V, error)) (Iterator[V], error)
	// Assign replaces the value at pos if the ordering key is unchanged.
	Assign(pos Iterator[V], val V) error

	// Erase removes the element at pos and returns its successor.
	Erase(pos Iterator[V]) Iterator[V]
	// EraseKey removes every element with an equal key and returns the count.
	EraseKey(key K) int64
	EraseRange(first, last Iterator[V]) Iterator[V]
	Clear()

	// Clone returns a structural copy. copyFn, if present, deep copies
	// every value; its first error unwinds the partial copy.
	Clone(copyFn ...func(V) (V, error)) (RBTree[K, V], error)
	// Move transfers all the nodes into a new tree and leaves this one empty.
	Move() RBTree[K, V]
	CopyFrom(other RBTree[K, V], copyFn ...func(V) (V, error)) error
	MoveFrom(other RBTree[K, V]) error
	Swap(other RBTree[K, V]) error

	Foreach(action func(idx int64, color RBColor, val V) bool)
	ReverseForeach(action func(idx int64, color RBColor, val V) bool)
	// Release clears the tree and drops the node storage.
	Release()

	inspect() treeInspection[V]
}
