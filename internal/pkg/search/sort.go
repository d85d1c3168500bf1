package search

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc"/"desc" in any case and defaults to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Sort returns a stably sorted copy of items ordered by the key field.
// Records missing the key always sort last. An empty key returns an
// unchanged copy.
func Sort[T Record](items []T, key string, dir Direction) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	if key == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		av, aok := a.Value(key)
		bv, bok := b.Value(key)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := compareValues(av, bv)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

func compareValues(a, b any) int {
	if an, ok := toFloat(a); ok {
		if bn, ok := toFloat(b); ok {
			return cmp.Compare(an, bn)
		}
	}
	if at, ok := toTime(a); ok {
		if bt, ok := toTime(b); ok {
			return at.Compare(bt)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(strings.ToLower(stringOf(a)), strings.ToLower(stringOf(b)))
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case []string:
		return strings.Join(t, ",")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
