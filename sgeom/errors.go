package sgeom

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a layout or tree is requested
// for a zero-length input.
var ErrEmptyInput = errors.New("empty input")

// ErrNotBuilt is returned by tree operations called before a successful build.
var ErrNotBuilt = errors.New("tree not built")

// RangeError indicates a query range that is empty, negative,
// or extends past the end of the input.
type RangeError struct {
	Lo, Hi int

	// Len is the input length the range was checked against.
	Len int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range [%d, %d) for length %d", e.Lo, e.Hi, e.Len)
}

// IndexError indicates an input position outside [0, Len).
type IndexError struct {
	Pos, Len int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("position %d out of bounds for length %d", e.Pos, e.Len)
}

// NodeError indicates a node index outside the structural bound of a layout.
type NodeError struct {
	Node, NNodes int
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %d out of bounds for %d nodes", e.Node, e.NNodes)
}
