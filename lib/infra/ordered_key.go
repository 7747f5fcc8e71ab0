package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
// If future releases of Go add new predeclared unsigned integer types,
// this constraint will be modified to include them.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
// If future releases of Go add new predeclared integer types,
// this constraint will be modified to include them.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
// If future releases of Go add new predeclared floating-point types,
// this constraint will be modified to include them.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// KeyComparator defines a strict weak ordering on K.
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return positive), turn to right part.
//  3. i < j (return negative), turn to left part.
type KeyComparator[K any] func(i, j K) int64

// OrderedKeyCmp compares builtin ordered keys in ascending order.
// A NaN is ordered before every other float and equal to another NaN,
// otherwise the tree would lose the strict weak ordering.
func OrderedKeyCmp[K OrderedKey](i, j K) int64 {
	iNaN, jNaN := i != i, j != j
	if iNaN || jNaN {
		switch {
		case iNaN && jNaN:
			return 0
		case iNaN:
			return -1
		default:
			return 1
		}
	}
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// ReverseKeyCmp flips the order of cmp.
func ReverseKeyCmp[K any](cmp KeyComparator[K]) KeyComparator[K] {
	return func(i, j K) int64 {
		return cmp(j, i)
	}
}
