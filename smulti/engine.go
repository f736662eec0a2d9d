// Package smulti composes one min, one max and one sum segment tree
// over the same input, sharing a single layout,
// so that a single update or query fans out to the requested aggregates.
package smulti

import (
	"errors"
	"fmt"

	"github.com/gordian-engine/gsegtree/saggtree"
	"github.com/gordian-engine/gsegtree/sgeom"
)

// ErrNoKinds is returned when a query requests no aggregate kinds.
var ErrNoKinds = errors.New("no aggregate kinds requested")

// Engine holds three [saggtree.Tree] values built from one input.
//
// The zero value is not usable; use [New].
// Engine is not safe for concurrent use;
// callers sharing an Engine must serialize access themselves.
type Engine struct {
	layout sgeom.Layout

	// Nil until a build succeeds.
	trees map[Kind]*saggtree.Tree[int64]
}

// Assignment is one point update.
type Assignment struct {
	Pos   int
	Value int64
}

// New returns an unbuilt Engine.
func New() *Engine {
	return &Engine{}
}

func opFor(k Kind) saggtree.Op[int64] {
	switch k {
	case KindMin:
		return saggtree.Min
	case KindMax:
		return saggtree.Max
	case KindSum:
		return saggtree.Sum
	default:
		panic(fmt.Errorf("BUG: no operation for %s", k))
	}
}

// Built reports whether the engine has been successfully built.
func (e *Engine) Built() bool {
	return e.trees != nil
}

// Layout returns the shape shared by all three trees.
func (e *Engine) Layout() sgeom.Layout {
	return e.layout
}

// Len returns the input length, or zero if unbuilt.
func (e *Engine) Len() int {
	return e.layout.Len()
}

// Build constructs all three trees from input.
// If any build fails, the engine keeps its previous state.
func (e *Engine) Build(input []int64) error {
	l, err := sgeom.NewLayout(len(input))
	if err != nil {
		return err
	}

	trees := make(map[Kind]*saggtree.Tree[int64], len(kindOrder))
	for _, k := range kindOrder {
		t := saggtree.New(opFor(k))
		if err := t.BuildLayout(l, input); err != nil {
			return fmt.Errorf("build %s tree: %w", k, err)
		}
		trees[k] = t
	}

	e.layout = l
	e.trees = trees
	return nil
}

// Query returns the requested aggregates over [lo, hi).
// Kinds not in the set are not computed and are absent from the result.
func (e *Engine) Query(lo, hi int, kinds Kinds) (map[Kind]int64, error) {
	if !e.Built() {
		return nil, sgeom.ErrNotBuilt
	}
	if !kinds.Valid() {
		return nil, ErrNoKinds
	}
	r, err := e.layout.CheckRange(lo, hi)
	if err != nil {
		return nil, err
	}
	return e.aggregate(r, kinds), nil
}

// QueryBatch is like [Engine.Query] for several ranges at once.
// Every range is validated before any is computed.
func (e *Engine) QueryBatch(ranges []sgeom.Range, kinds Kinds) ([]map[Kind]int64, error) {
	if !e.Built() {
		return nil, sgeom.ErrNotBuilt
	}
	if !kinds.Valid() {
		return nil, ErrNoKinds
	}
	for i, r := range ranges {
		if _, err := e.layout.CheckRange(r.Lo, r.Hi); err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
	}

	out := make([]map[Kind]int64, len(ranges))
	for i, r := range ranges {
		out[i] = e.aggregate(r, kinds)
	}
	return out, nil
}

func (e *Engine) aggregate(r sgeom.Range, kinds Kinds) map[Kind]int64 {
	out := make(map[Kind]int64, 3)
	kinds.Each(func(k Kind) {
		out[k] = e.trees[k].Aggregate(r)
	})
	return out
}

// Update sets input position pos to v in every tree.
// If pos is out of bounds, no tree is modified.
func (e *Engine) Update(pos int, v int64) error {
	if !e.Built() {
		return sgeom.ErrNotBuilt
	}
	leaf, err := e.layout.Leaf(pos)
	if err != nil {
		return err
	}
	for _, t := range e.trees {
		t.SetLeaf(leaf, v)
	}
	return nil
}

// UpdateBatch applies the assignments in order.
// Every position is validated first,
// so a bad assignment leaves all trees unmodified.
func (e *Engine) UpdateBatch(as []Assignment) error {
	if !e.Built() {
		return sgeom.ErrNotBuilt
	}
	leaves := make([]int, len(as))
	for i, a := range as {
		leaf, err := e.layout.Leaf(a.Pos)
		if err != nil {
			return fmt.Errorf("assignment %d: %w", i, err)
		}
		leaves[i] = leaf
	}

	for i, a := range as {
		for _, t := range e.trees {
			t.SetLeaf(leaves[i], a.Value)
		}
	}
	return nil
}

// Values returns a copy of the current input array.
func (e *Engine) Values() ([]int64, error) {
	if !e.Built() {
		return nil, sgeom.ErrNotBuilt
	}
	// All trees hold the same leaves; any one will do.
	return e.trees[KindSum].Values()
}

// Container returns the node snapshot of the tree for kind k.
func (e *Engine) Container(k Kind) ([]saggtree.Slot[int64], error) {
	if !e.Built() {
		return nil, sgeom.ErrNotBuilt
	}
	t, ok := e.trees[k]
	if !ok {
		return nil, fmt.Errorf("unknown aggregate kind %s", k)
	}
	return t.Container()
}
