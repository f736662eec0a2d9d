package saggtree

import "math"

// Op is the aggregation a [Tree] maintains.
//
// Combine must be associative.
// Identity must satisfy Combine(Identity, x) == x for every x;
// it is the contribution of nodes outside a query range.
type Op[T any] struct {
	Name     string
	Combine  func(a, b T) T
	Identity T
}

// Min keeps the minimum of a range.
var Min = Op[int64]{
	Name:     "min",
	Combine:  func(a, b int64) int64 { return min(a, b) },
	Identity: math.MaxInt64,
}

// Max keeps the maximum of a range.
var Max = Op[int64]{
	Name:     "max",
	Combine:  func(a, b int64) int64 { return max(a, b) },
	Identity: math.MinInt64,
}

// Sum keeps the sum of a range.
// Sums wrap around on int64 overflow.
var Sum = Op[int64]{
	Name:     "sum",
	Combine:  func(a, b int64) int64 { return a + b },
	Identity: 0,
}
