// Package svis renders read-only views of an [smulti.Engine].
//
// Nothing in this package mutates the engine;
// a [Snapshot] is a copy taken at one point in time,
// and renderers only consume snapshots.
package svis

import (
	"fmt"
	"strings"

	"github.com/gordian-engine/gsegtree/sgeom"
	"github.com/gordian-engine/gsegtree/smulti"
)

// Node is the view of one tree node.
type Node struct {
	Index int         `json:"index"`
	Depth int         `json:"depth"`
	Range sgeom.Range `json:"range"`

	// Padding nodes are not present and have no values.
	Present bool                  `json:"present"`
	Values  map[smulti.Kind]int64 `json:"values,omitempty"`
}

// Snapshot is a point-in-time copy of an engine's state.
type Snapshot struct {
	Values []int64 `json:"values"`
	Depth  int     `json:"depth"`
	Nodes  []Node  `json:"nodes"`
}

// NewSnapshot copies the current state of e.
func NewSnapshot(e *smulti.Engine) (Snapshot, error) {
	vals, err := e.Values()
	if err != nil {
		return Snapshot{}, err
	}

	l := e.Layout()
	s := Snapshot{
		Values: vals,
		Depth:  l.Depth(),
		Nodes:  make([]Node, l.NNodes()),
	}

	for i := range s.Nodes {
		r, err := l.Range(i)
		if err != nil {
			return Snapshot{}, fmt.Errorf("BUG: layout rejected its own node %d: %w", i, err)
		}
		s.Nodes[i] = Node{
			Index:   i,
			Depth:   sgeom.NodeDepth(i),
			Range:   r,
			Present: !r.Empty(),
		}
	}

	for _, k := range smulti.AllKinds.Slice() {
		slots, err := e.Container(k)
		if err != nil {
			return Snapshot{}, err
		}
		for i, slot := range slots {
			if !slot.Present {
				continue
			}
			n := &s.Nodes[i]
			if n.Values == nil {
				n.Values = make(map[smulti.Kind]int64, 3)
			}
			n.Values[k] = slot.Value
		}
	}

	return s, nil
}

// Layer returns the nodes at the given depth, left to right.
func (s Snapshot) Layer(depth int) []Node {
	start := (1 << depth) - 1
	end := min(2*start+1, len(s.Nodes))
	if start >= len(s.Nodes) {
		return nil
	}
	return s.Nodes[start:end]
}

// Label returns the display text for n,
// such as "[0, 6) sum=24 min=1 max=9".
func (n Node) Label() string {
	return strings.Join(n.labelParts(), " ")
}

func (n Node) labelParts() []string {
	if !n.Present {
		return []string{"·"}
	}
	parts := []string{n.Range.String()}
	smulti.AllKinds.Each(func(k smulti.Kind) {
		if v, ok := n.Values[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", k, v))
		}
	})
	return parts
}
