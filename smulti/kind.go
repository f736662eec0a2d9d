package smulti

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three aggregates an [Engine] maintains.
type Kind uint8

const (
	KindMin Kind = 1 << iota
	KindMax
	KindSum
)

// kindOrder is the iteration order for [Kinds.Each],
// matching the order the values are usually displayed in.
var kindOrder = [...]Kind{KindSum, KindMin, KindMax}

func (k Kind) String() string {
	switch k {
	case KindMin:
		return "min"
	case KindMax:
		return "max"
	case KindSum:
		return "sum"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind parses "min", "max" or "sum", ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min":
		return KindMin, nil
	case "max":
		return KindMax, nil
	case "sum":
		return KindSum, nil
	default:
		return 0, fmt.Errorf("unknown aggregate kind %q", s)
	}
}

// Kinds is a set of [Kind] values.
type Kinds uint8

// AllKinds contains min, max and sum.
const AllKinds = Kinds(KindMin | KindMax | KindSum)

// KindsOf returns the set containing ks.
func KindsOf(ks ...Kind) Kinds {
	var s Kinds
	for _, k := range ks {
		s = s.With(k)
	}
	return s
}

// ParseKinds parses a comma-separated list such as "min,sum".
// Duplicates are allowed; an empty list is an error.
func ParseKinds(s string) (Kinds, error) {
	var out Kinds
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := ParseKind(part)
		if err != nil {
			return 0, err
		}
		out = out.With(k)
	}
	if out == 0 {
		return 0, ErrNoKinds
	}
	return out, nil
}

// Has reports whether k is in the set.
func (s Kinds) Has(k Kind) bool {
	return s&Kinds(k) != 0
}

// With returns s with k added.
func (s Kinds) With(k Kind) Kinds {
	return s | Kinds(k)
}

// Valid reports whether s is non-empty and contains only known kinds.
func (s Kinds) Valid() bool {
	return s != 0 && s&^AllKinds == 0
}

// Each calls fn for every kind in s, in sum, min, max order.
func (s Kinds) Each(fn func(Kind)) {
	for _, k := range kindOrder {
		if s.Has(k) {
			fn(k)
		}
	}
}

// Slice returns the kinds in s in the same order as [Kinds.Each].
func (s Kinds) Slice() []Kind {
	out := make([]Kind, 0, len(kindOrder))
	s.Each(func(k Kind) { out = append(out, k) })
	return out
}

func (s Kinds) String() string {
	names := make([]string, 0, len(kindOrder))
	s.Each(func(k Kind) { names = append(names, k.String()) })
	return strings.Join(names, ",")
}

// MarshalText implements encoding.TextMarshaler,
// so that Kind works as a JSON map key.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindMin, KindMax, KindSum:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown aggregate kind %d", uint8(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
