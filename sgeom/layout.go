package sgeom

import (
	"fmt"
	"math/bits"
)

// Range is a half-open span [Lo, Hi) of input positions.
type Range struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Len returns the number of positions in r.
func (r Range) Len() int {
	if r.Hi <= r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

// Empty reports whether r covers no positions.
func (r Range) Empty() bool {
	return r.Hi <= r.Lo
}

// Within reports whether r lies entirely inside outer.
// An empty r is never within anything.
func (r Range) Within(outer Range) bool {
	return !r.Empty() && r.Lo >= outer.Lo && r.Hi <= outer.Hi
}

// Disjoint reports whether r and o share no position.
func (r Range) Disjoint(o Range) bool {
	return r.Empty() || o.Empty() || r.Hi <= o.Lo || o.Hi <= r.Lo
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Lo, r.Hi)
}

// Layout is the shape of a segment tree over n inputs.
//
// The zero value has no nodes;
// use [NewLayout] to get a usable Layout.
type Layout struct {
	n int

	// Number of leaf slots, the smallest power of two >= n.
	width int
}

// NewLayout returns the Layout for an input of length n.
// It returns [ErrEmptyInput] if n < 1.
func NewLayout(n int) (Layout, error) {
	if n < 1 {
		return Layout{}, ErrEmptyInput
	}

	var width int
	if n&(n-1) == 0 {
		// Already a power of two, so just use that value directly.
		width = n
	} else {
		width = 1 << bits.Len(uint(n))
	}

	return Layout{n: n, width: width}, nil
}

// RangeOf is shorthand for building the layout for n
// and returning the range of the given node.
// When n is zero no node is in range, and the error is [ErrEmptyInput].
func RangeOf(node, n int) (Range, error) {
	l, err := NewLayout(n)
	if err != nil {
		return Range{}, err
	}
	return l.Range(node)
}

// Len returns the input length the layout covers.
func (l Layout) Len() int {
	return l.n
}

// Width returns the number of leaf slots, including padding.
func (l Layout) Width() int {
	return l.width
}

// NNodes returns the total number of node slots.
func (l Layout) NNodes() int {
	if l.width == 0 {
		return 0
	}
	return 2*l.width - 1
}

// Depth returns the depth of the leaf layer; the root is depth 0.
func (l Layout) Depth() int {
	if l.width == 0 {
		return 0
	}
	return bits.Len(uint(l.width)) - 1
}

// Root returns the root range, [0, n).
func (l Layout) Root() Range {
	return Range{Lo: 0, Hi: l.n}
}

// Children returns the left and right child indices of node.
// It does not check whether the children exist in any particular layout.
func Children(node int) (left, right int) {
	left = 2*node + 1
	return left, left + 1
}

// Parent returns the parent index of node.
// It returns -1 for the root.
func Parent(node int) int {
	if node <= 0 {
		return -1
	}
	return (node - 1) / 2
}

// NodeDepth returns the depth of node, with the root at depth 0.
// Like [Children] and [Parent], it uses unchecked math.
func NodeDepth(node int) int {
	return bits.Len(uint(node+1)) - 1
}

// CheckNode returns a [*NodeError] if node is not a slot in l.
func (l Layout) CheckNode(node int) error {
	if node < 0 || node >= l.NNodes() {
		return &NodeError{Node: node, NNodes: l.NNodes()}
	}
	return nil
}

// Range returns the half-open input range covered by node,
// clipped to the input length.
// Padding nodes return an empty range at [n, n).
func (l Layout) Range(node int) (Range, error) {
	if err := l.CheckNode(node); err != nil {
		return Range{}, err
	}
	return l.rangeOf(node), nil
}

func (l Layout) rangeOf(node int) Range {
	depth := NodeDepth(node)
	layerStart := (1 << depth) - 1
	span := l.width >> depth

	lo := (node - layerStart) * span
	return Range{
		Lo: min(lo, l.n),
		Hi: min(lo+span, l.n),
	}
}

// Present reports whether node covers at least one input position.
// Out of bounds nodes are not present.
func (l Layout) Present(node int) bool {
	if l.CheckNode(node) != nil {
		return false
	}
	return !l.rangeOf(node).Empty()
}

// IsLeaf reports whether node is in the leaf layer, including padding leaves.
func (l Layout) IsLeaf(node int) bool {
	return node >= l.width-1 && node < l.NNodes()
}

// Leaf returns the node index of the leaf holding input position pos.
// It returns an [*IndexError] if pos is outside [0, n).
func (l Layout) Leaf(pos int) (int, error) {
	if pos < 0 || pos >= l.n {
		return -1, &IndexError{Pos: pos, Len: l.n}
	}
	return l.width - 1 + pos, nil
}

// Position is the inverse of [Layout.Leaf].
// The ok value is false if node is not a non-padding leaf.
func (l Layout) Position(node int) (pos int, ok bool) {
	if !l.IsLeaf(node) {
		return -1, false
	}
	pos = node - (l.width - 1)
	if pos >= l.n {
		return -1, false
	}
	return pos, true
}

// CheckRange validates a query range against l.
// It returns a [*RangeError] if lo >= hi, lo < 0, or hi > n.
func (l Layout) CheckRange(lo, hi int) (Range, error) {
	if lo < 0 || lo >= hi || hi > l.n {
		return Range{}, &RangeError{Lo: lo, Hi: hi, Len: l.n}
	}
	return Range{Lo: lo, Hi: hi}, nil
}
