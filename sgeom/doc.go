// Package sgeom (Segment GEOMetry) contains the index arithmetic
// for an array-backed segment tree.
//
// Types in this package deal only in int values,
// so that they remain decoupled from whatever is stored in the tree.
// Callers use the node indices as indices into their own slices
// holding aggregated values.
//
// The layout pads the input length n to the next power of two (the width)
// and stores 2*width-1 nodes, root first:
//
//	0                [0, 6)
//	1 2              [0, 4) [4, 6)
//	3 4 5 6          [0, 2) [2, 4) [4, 6) [6, 6)
//	7 8 9 10 11 12 13 14
//
// Leaves start at index width-1.
// Ranges are half-open and clipped to n,
// so padding nodes report the empty range [n, n).
package sgeom
