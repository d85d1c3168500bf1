// Package search filters, sorts and paginates records that are already loaded
// into memory. Every function is pure and total: bad or empty input yields an
// empty (never nil-panicking) result instead of an error.
package search

import (
	"fmt"
	"strings"
	"time"
)

// Record is anything whose fields can be read by name.
type Record interface {
	// Value returns the value of the named field. ok is false for unknown fields
	// and for fields that are unset (nil pointers).
	Value(field string) (value any, ok bool)
	// SearchText returns the strings matched by a free-text query.
	SearchText() []string
}

// NumberRange is an inclusive numeric range. A nil bound is open.
type NumberRange struct {
	Field string
	Min   *float64
	Max   *float64
}

// DateRange is an inclusive time range. A nil bound is open.
type DateRange struct {
	Field string
	From  *time.Time
	To    *time.Time
}

// Criteria describes a filter. The zero value matches everything.
type Criteria struct {
	Query  string
	Equals map[string]string
	Ranges []NumberRange
	Dates  []DateRange
}

// inactive reports whether an equality filter value should be ignored.
func inactive(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// Active reports whether the criteria would exclude anything at all.
func (c Criteria) Active() bool {
	if strings.TrimSpace(c.Query) != "" {
		return true
	}
	for _, v := range c.Equals {
		if !inactive(v) {
			return true
		}
	}
	for _, r := range c.Ranges {
		if r.Min != nil || r.Max != nil {
			return true
		}
	}
	for _, d := range c.Dates {
		if d.From != nil || d.To != nil {
			return true
		}
	}
	return false
}

// Filter returns the items matching c, preserving their original order.
func Filter[T Record](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	if !c.Active() {
		return append(out, items...)
	}

	query := strings.ToLower(strings.TrimSpace(c.Query))
	for _, item := range items {
		if matches(item, query, c) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item Record, query string, c Criteria) bool {
	if query != "" && !matchesQuery(item, query) {
		return false
	}

	for field, want := range c.Equals {
		if inactive(want) {
			continue
		}
		got, ok := item.Value(field)
		if !ok || !equalFold(got, strings.TrimSpace(want)) {
			return false
		}
	}

	for _, r := range c.Ranges {
		if r.Min == nil && r.Max == nil {
			continue
		}
		v, ok := item.Value(r.Field)
		if !ok {
			return false
		}
		n, ok := toFloat(v)
		if !ok {
			return false
		}
		if r.Min != nil && n < *r.Min {
			return false
		}
		if r.Max != nil && n > *r.Max {
			return false
		}
	}

	for _, d := range c.Dates {
		if d.From == nil && d.To == nil {
			continue
		}
		v, ok := item.Value(d.Field)
		if !ok {
			return false
		}
		t, ok := toTime(v)
		if !ok {
			return false
		}
		if d.From != nil && t.Before(*d.From) {
			return false
		}
		if d.To != nil && t.After(*d.To) {
			return false
		}
	}

	return true
}

func matchesQuery(item Record, query string) bool {
	for _, s := range item.SearchText() {
		if strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	return false
}

// equalFold compares a field value against a filter string. Slices match when
// any element matches.
func equalFold(v any, want string) bool {
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if strings.EqualFold(s, want) {
				return true
			}
		}
		return false
	case string:
		return strings.EqualFold(t, want)
	case *string:
		return t != nil && strings.EqualFold(*t, want)
	case fmt.Stringer:
		return strings.EqualFold(t.String(), want)
	default:
		if n, ok := toFloat(v); ok {
			var w float64
			if _, err := fmt.Sscan(want, &w); err == nil {
				return n == w
			}
		}
		return strings.EqualFold(fmt.Sprint(v), want)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case *int64:
		if n == nil {
			return 0, false
		}
		return float64(*n), true
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	default:
		return time.Time{}, false
	}
}
