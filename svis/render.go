package svis

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gordian-engine/gsegtree/sgeom"
)

// RenderText writes the snapshot as one line per tree layer, root first.
// Padding nodes are drawn as a middle dot.
func RenderText(w io.Writer, s Snapshot) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "Array:")
	for _, v := range s.Values {
		fmt.Fprintf(bw, " %d", v)
	}
	fmt.Fprintln(bw)

	for d := 0; d <= s.Depth; d++ {
		layer := s.Layer(d)
		labels := make([]string, len(layer))
		for i, n := range layer {
			labels[i] = n.Label()
		}
		fmt.Fprintf(bw, "D%d: %s\n", d, strings.Join(labels, " | "))
	}

	return bw.Flush()
}

// RenderDOT writes the snapshot as a Graphviz digraph.
// Only present nodes and the edges between them are emitted.
func RenderDOT(w io.Writer, s Snapshot) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph segtree {")
	fmt.Fprintln(bw, "\tnode [shape=box];")

	for _, n := range s.Nodes {
		if !n.Present {
			continue
		}
		label := strings.Join(n.labelParts(), `\n`)
		fmt.Fprintf(bw, "\tn%d [label=\"%s\"];\n", n.Index, label)
	}

	for _, n := range s.Nodes {
		if !n.Present {
			continue
		}
		left, right := sgeom.Children(n.Index)
		for _, c := range [...]int{left, right} {
			if c < len(s.Nodes) && s.Nodes[c].Present {
				fmt.Fprintf(bw, "\tn%d -> n%d;\n", n.Index, c)
			}
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
