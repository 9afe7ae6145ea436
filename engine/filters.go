package engine

import (
	"strings"
	"time"
)

// ============================================================================
// FILTERS — Predicate Evaluation over a Rowset
// ============================================================================
// Single pass: every active predicate is checked per row against the
// original cells, so the result set is independent of predicate order and
// Apply is idempotent. Returns a sub-view (index list into the parent) —
// zero data copy, original row order preserved.
// ============================================================================

// Apply returns a view of the rows satisfying every active predicate.
// An empty FilterConfig returns the input unchanged. A predicate naming a
// column absent from the rowset's schema returns ErrUnknownColumn before
// any row is evaluated.
func Apply(rs Rowset, f FilterConfig) (Rowset, error) {
	for _, col := range f.columns() {
		if !hasColumn(rs, col) {
			return nil, unknownColumn(col)
		}
	}

	if f.IsEmpty() {
		return rs, nil
	}

	var term string
	if f.Search != nil {
		term = strings.ToLower(f.Search.Term)
	}

	n := rs.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if matchRow(rs, i, f, term) {
			indices = append(indices, i)
		}
	}

	return newSubRowset(rs, indices), nil
}

func matchRow(rs Rowset, row int, f FilterConfig, term string) bool {
	for _, e := range f.Equals {
		if !matchEquals(rs.Value(row, e.Column), e.Value) {
			return false
		}
	}

	for _, m := range f.Min {
		v := rs.Value(row, m.Column)
		if v.Null || v.Num < m.Threshold {
			return false
		}
	}

	for _, fl := range f.Flags {
		v := rs.Value(row, fl.Column)
		if v.Null || !v.Bool {
			return false
		}
	}

	if term != "" {
		if !matchSearch(rs, row, f.Search.Columns, term) {
			return false
		}
	}

	if f.Range != nil {
		if !matchDateRange(rs.Value(row, f.Range.Column), f.Range.Start, f.Range.End) {
			return false
		}
	}

	return true
}

// matchEquals compares exactly — no coercion. Null never equals anything.
func matchEquals(v, want Value) bool {
	if v.Null || want.Null || v.Kind != want.Kind {
		return false
	}
	switch want.Kind {
	case KindBool:
		return v.Bool == want.Bool
	case KindNumber:
		return v.Num == want.Num
	default:
		return v.Str == want.Str
	}
}

// matchSearch ORs the term across the designated columns. A null column
// never satisfies its own clause but cannot veto another column's match.
func matchSearch(rs Rowset, row int, cols []string, term string) bool {
	for _, col := range cols {
		v := rs.Value(row, col)
		if v.Null || v.Kind != KindString {
			continue
		}
		if strings.Contains(strings.ToLower(v.Str), term) {
			return true
		}
	}
	return false
}

// matchDateRange bounds the calendar date of a timestamp, inclusive.
// Null or non-timestamp cells fail. An inverted range matches nothing.
func matchDateRange(v Value, start, end time.Time) bool {
	if v.Null || v.Kind != KindTime {
		return false
	}
	d := dateOnly(v.Time)
	return !d.Before(dateOnly(start)) && !d.After(dateOnly(end))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
