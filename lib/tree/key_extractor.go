package tree

// KeyExtractor projects a stored value to its ordering key.
// Implementations are stateless and bound once per tree as a type
// parameter, so the projection is resolved at compile time.
type KeyExtractor[K, V any] interface {
	Key(val V) K
}

// Identity is the set-like policy, the value is the key.
type Identity[K any] struct{}

func (Identity[K]) Key(val K) K {
	return val
}

type Pair[K, M any] struct {
	First  K
	Second M
}

func MakePair[K, M any](first K, second M) Pair[K, M] {
	return Pair[K, M]{First: first, Second: second}
}

// PairFirst is the map-like policy, the key is the first of the pair.
type PairFirst[K, M any] struct{}

func (PairFirst[K, M]) Key(val Pair[K, M]) K {
	return val.First
}
