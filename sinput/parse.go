package sinput

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gordian-engine/gsegtree/sgeom"
	"github.com/gordian-engine/gsegtree/smulti"
)

// ArrayColumn is the CSV header naming the column that holds the input array.
const ArrayColumn = "Array"

// ParseList parses a comma-separated list of integers such as "2, 5, 1".
// It returns [sgeom.ErrEmptyInput] if the list holds no values.
func ParseList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, sgeom.ErrEmptyInput
	}

	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		v, err := parseInt(p)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ReadCSV reads the [ArrayColumn] column of a CSV document with a header row.
func ReadCSV(r io.Reader) ([]int64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, sgeom.ErrEmptyInput
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.TrimSpace(h) == ArrayColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no %q column in header %q", ArrayColumn, header)
	}

	var out []int64
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}

		v, err := parseInt(rec[col])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(out)+1, err)
		}
		out = append(out, v)
	}

	if len(out) == 0 {
		return nil, sgeom.ErrEmptyInput
	}
	return out, nil
}

// ParseRange parses "lo:hi" into a half-open range.
// Bounds are not checked against any input length.
func ParseRange(s string) (sgeom.Range, error) {
	loS, hiS, ok := strings.Cut(s, ":")
	if !ok {
		return sgeom.Range{}, fmt.Errorf("range %q: want lo:hi", s)
	}
	lo, err := parseInt(loS)
	if err != nil {
		return sgeom.Range{}, fmt.Errorf("range %q lower bound: %w", s, err)
	}
	hi, err := parseInt(hiS)
	if err != nil {
		return sgeom.Range{}, fmt.Errorf("range %q upper bound: %w", s, err)
	}
	return sgeom.Range{Lo: int(lo), Hi: int(hi)}, nil
}

// ParseAssignment parses "pos=value" into a point update.
func ParseAssignment(s string) (smulti.Assignment, error) {
	posS, valS, ok := strings.Cut(s, "=")
	if !ok {
		return smulti.Assignment{}, fmt.Errorf("assignment %q: want pos=value", s)
	}
	pos, err := parseInt(posS)
	if err != nil {
		return smulti.Assignment{}, fmt.Errorf("assignment %q position: %w", s, err)
	}
	v, err := parseInt(valS)
	if err != nil {
		return smulti.Assignment{}, fmt.Errorf("assignment %q value: %w", s, err)
	}
	return smulti.Assignment{Pos: int(pos), Value: v}, nil
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}
