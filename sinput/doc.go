// Package sinput converts caller-supplied text into validated engine inputs.
//
// It is the boundary between user-facing layers (CLI flags, HTTP bodies, files)
// and [smulti.Engine]: nothing past this package deals in untyped strings.
package sinput
