// Package saggtree contains the aggregate segment tree:
// a complete binary tree stored in a slice,
// where every node holds the aggregate of the input range it covers.
package saggtree

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/gsegtree/sgeom"
)

// Tree is an array-backed segment tree maintaining one [Op].
//
// A Tree starts unbuilt; every method other than Build and BuildLayout
// returns [sgeom.ErrNotBuilt] until a build succeeds.
// A Tree is not safe for concurrent use.
type Tree[T any] struct {
	op Op[T]

	layout sgeom.Layout

	// Indexed by node, sized layout.NNodes().
	// Nil until built.
	values []T

	// Bit i is set when node i covers at least one input position.
	// Padding nodes keep the identity value with their bit clear.
	present *bitset.BitSet
}

// Slot is one node value in the output of [Tree.Container].
type Slot[T any] struct {
	Value   T
	Present bool
}

// New returns an unbuilt Tree maintaining op.
func New[T any](op Op[T]) *Tree[T] {
	return &Tree[T]{op: op}
}

// Op returns the operation the tree maintains.
func (t *Tree[T]) Op() Op[T] {
	return t.op
}

// Built reports whether the tree has been successfully built.
func (t *Tree[T]) Built() bool {
	return t.values != nil
}

// Layout returns the layout of the built tree,
// or the zero Layout if the tree is unbuilt.
func (t *Tree[T]) Layout() sgeom.Layout {
	return t.layout
}

// Len returns the input length of the built tree, or zero.
func (t *Tree[T]) Len() int {
	return t.layout.Len()
}

// Build replaces the tree contents with input.
// It returns [sgeom.ErrEmptyInput] for an empty input,
// in which case any previously built state is kept.
func (t *Tree[T]) Build(input []T) error {
	l, err := sgeom.NewLayout(len(input))
	if err != nil {
		return err
	}
	return t.BuildLayout(l, input)
}

// BuildLayout is like [Tree.Build] but uses an already computed layout,
// so that several trees over the same input share one shape.
// The layout length must match len(input).
func (t *Tree[T]) BuildLayout(l sgeom.Layout, input []T) error {
	if len(input) == 0 {
		return sgeom.ErrEmptyInput
	}
	if l.Len() != len(input) {
		return fmt.Errorf(
			"layout covers %d positions but input has %d", l.Len(), len(input),
		)
	}

	nNodes := l.NNodes()
	values := make([]T, nNodes)
	for i := range values {
		values[i] = t.op.Identity
	}
	present := bitset.New(uint(nNodes))

	// Populate the leaf layer first.
	leafStart := l.Width() - 1
	for i, v := range input {
		values[leafStart+i] = v
		present.Set(uint(leafStart + i))
	}

	// Then every internal node, deepest first,
	// so both children are final before their parent.
	for node := leafStart - 1; node >= 0; node-- {
		combineChildren(t.op, values, present, node)
	}

	t.layout = l
	t.values = values
	t.present = present
	return nil
}

// combineChildren sets node from its two children,
// treating an absent child as the identity.
func combineChildren[T any](op Op[T], values []T, present *bitset.BitSet, node int) {
	left, right := sgeom.Children(node)
	lp, rp := present.Test(uint(left)), present.Test(uint(right))

	switch {
	case lp && rp:
		values[node] = op.Combine(values[left], values[right])
		present.Set(uint(node))
	case lp:
		values[node] = values[left]
		present.Set(uint(node))
	case rp:
		values[node] = values[right]
		present.Set(uint(node))
	default:
		values[node] = op.Identity
		present.Clear(uint(node))
	}
}

// Query returns the aggregate of input positions [lo, hi).
// It returns an [*sgeom.RangeError] if lo >= hi, lo < 0, or hi > Len.
func (t *Tree[T]) Query(lo, hi int) (T, error) {
	if !t.Built() {
		return t.op.Identity, sgeom.ErrNotBuilt
	}
	r, err := t.layout.CheckRange(lo, hi)
	if err != nil {
		return t.op.Identity, err
	}
	return t.Aggregate(r), nil
}

// Aggregate returns the aggregate over r without validating it.
// Callers must have checked r with [sgeom.Layout.CheckRange]
// against this tree's layout, and the tree must be built.
func (t *Tree[T]) Aggregate(r sgeom.Range) T {
	return t.aggregate(0, sgeom.Range{Lo: 0, Hi: t.layout.Width()}, r)
}

// aggregate descends from node, whose unclipped span is cur.
// Padding lies beyond Len, so a validated r is always disjoint from it.
func (t *Tree[T]) aggregate(node int, cur, r sgeom.Range) T {
	if cur.Disjoint(r) {
		return t.op.Identity
	}
	if cur.Within(r) {
		// Fully covered: no need to look further down.
		return t.values[node]
	}

	mid := cur.Lo + cur.Len()/2
	left, right := sgeom.Children(node)
	return t.op.Combine(
		t.aggregate(left, sgeom.Range{Lo: cur.Lo, Hi: mid}, r),
		t.aggregate(right, sgeom.Range{Lo: mid, Hi: cur.Hi}, r),
	)
}

// Update overwrites input position pos with v
// and recomputes every ancestor of its leaf.
// It returns an [*sgeom.IndexError] if pos is outside [0, Len),
// without modifying the tree.
func (t *Tree[T]) Update(pos int, v T) error {
	if !t.Built() {
		return sgeom.ErrNotBuilt
	}
	leaf, err := t.layout.Leaf(pos)
	if err != nil {
		return err
	}
	t.SetLeaf(leaf, v)
	return nil
}

// SetLeaf overwrites the leaf node with v and walks up to the root.
// Callers must have obtained leaf from [sgeom.Layout.Leaf]
// on this tree's layout.
func (t *Tree[T]) SetLeaf(leaf int, v T) {
	t.values[leaf] = v
	for node := sgeom.Parent(leaf); node >= 0; node = sgeom.Parent(node) {
		combineChildren(t.op, t.values, t.present, node)
	}
}

// Value returns the current input value at pos.
func (t *Tree[T]) Value(pos int) (T, error) {
	if !t.Built() {
		return t.op.Identity, sgeom.ErrNotBuilt
	}
	leaf, err := t.layout.Leaf(pos)
	if err != nil {
		return t.op.Identity, err
	}
	return t.values[leaf], nil
}

// Values returns a copy of the current input array.
func (t *Tree[T]) Values() ([]T, error) {
	if !t.Built() {
		return nil, sgeom.ErrNotBuilt
	}
	leafStart := t.layout.Width() - 1
	return slices.Clone(t.values[leafStart : leafStart+t.layout.Len()]), nil
}

// Container returns a snapshot of every node, indexed by node.
// Padding nodes are reported with Present false and a zero Value.
func (t *Tree[T]) Container() ([]Slot[T], error) {
	if !t.Built() {
		return nil, sgeom.ErrNotBuilt
	}
	out := make([]Slot[T], len(t.values))
	for i, v := range t.values {
		if t.present.Test(uint(i)) {
			out[i] = Slot[T]{Value: v, Present: true}
		}
	}
	return out, nil
}
