package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

// Float values are ordered by Compare, NaN sorts before any other value.
type Float interface {
	~float32 | ~float64
}

// OrderedKey is any value type with a total order under < and ==.
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new value.
//  1. i == j, return 0, hit.
//  2. i > j, return 1, turn to right part.
//  3. i < j, return -1, turn to left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// Compare is the natural ascending OrderedKeyComparator.
// It is a total order like slices.Sort: NaN equals NaN and is
// less than any other value.
func Compare[K OrderedKey](i, j K) int64 {
	// x != x only holds for NaN.
	iNaN, jNaN := i != i, j != j
	switch {
	case iNaN && jNaN:
		return 0
	case iNaN:
		return -1
	case jNaN:
		return 1
	case i < j:
		return -1
	case i > j:
		return 1
	default:
	}
	return 0
}
