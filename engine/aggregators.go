package engine

import (
	"fmt"
	"sort"
)

// ============================================================================
// AGGREGATORS — Summary Statistics over a Rowset
// ============================================================================
// Null cells are skipped, not treated as zero: Mean divides by the count of
// non-null cells. Top-level dashboard metrics read the FULL table; the
// "N of M" line pairs the filtered count with the full count — Summarize
// keeps the two inputs distinct.
// ============================================================================

// Sum totals a numeric column, skipping nulls.
func Sum(rs Rowset, col string) float64 {
	var total float64
	for i := 0; i < rs.Len(); i++ {
		if v := rs.Value(i, col); !v.Null {
			total += v.Num
		}
	}
	return total
}

// Mean averages a numeric column over its non-null cells.
// Returns 0 when every cell is null.
func Mean(rs Rowset, col string) float64 {
	var total float64
	var n int
	for i := 0; i < rs.Len(); i++ {
		if v := rs.Value(i, col); !v.Null {
			total += v.Num
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// Min returns the smallest non-null value of a numeric column.
func Min(rs Rowset, col string) float64 {
	var m float64
	found := false
	for i := 0; i < rs.Len(); i++ {
		v := rs.Value(i, col)
		if v.Null {
			continue
		}
		if !found || v.Num < m {
			m = v.Num
			found = true
		}
	}
	return m
}

// Max returns the largest non-null value of a numeric column.
func Max(rs Rowset, col string) float64 {
	var m float64
	found := false
	for i := 0; i < rs.Len(); i++ {
		v := rs.Value(i, col)
		if v.Null {
			continue
		}
		if !found || v.Num > m {
			m = v.Num
			found = true
		}
	}
	return m
}

// Median returns the middle non-null value of a numeric column
// (mean of the two middle values for an even count).
func Median(rs Rowset, col string) float64 {
	var vals []float64
	for i := 0; i < rs.Len(); i++ {
		if v := rs.Value(i, col); !v.Null {
			vals = append(vals, v.Num)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

// CountTrue counts rows where a boolean column is exactly true.
func CountTrue(rs Rowset, col string) int {
	var n int
	for i := 0; i < rs.Len(); i++ {
		if v := rs.Value(i, col); !v.Null && v.Bool {
			n++
		}
	}
	return n
}

// ============================================================================
// SUMMARY — the "N of M" line
// ============================================================================

// Summary pairs the filtered row count with the unfiltered total.
type Summary struct {
	Matched int `json:"matched"`
	Total   int `json:"total"`
}

// Summarize builds the "N of M" summary from the filtered view and the
// full table it was derived from.
func Summarize(filtered, full Rowset) Summary {
	return Summary{Matched: filtered.Len(), Total: full.Len()}
}

func (s Summary) String() string {
	return fmt.Sprintf("showing %d of %d", s.Matched, s.Total)
}

// ============================================================================
// GROUPING — distinct-value counts
// ============================================================================

// Group is one distinct value of a column and its row count.
type Group struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// GroupCount counts rows per distinct non-null value of a column, sorted
// by descending count (ties break on label). Limit 0 means all groups.
func GroupCount(rs Rowset, col string, limit int) []Group {
	counts := make(map[string]int)
	order := make([]string, 0)
	for i := 0; i < rs.Len(); i++ {
		v := rs.Value(i, col)
		if v.Null {
			continue
		}
		label := v.Render()
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	groups := make([]Group, 0, len(order))
	for _, label := range order {
		groups = append(groups, Group{Label: label, Count: counts[label]})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Label < groups[j].Label
	})

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// DistinctStrings returns the sorted distinct non-null values of a string
// column. Feeds selector options like the country dropdown.
func DistinctStrings(rs Rowset, col string) []string {
	seen := make(map[string]bool)
	var vals []string
	for i := 0; i < rs.Len(); i++ {
		v := rs.Value(i, col)
		if v.Null || v.Kind != KindString || v.Str == "" {
			continue
		}
		if !seen[v.Str] {
			seen[v.Str] = true
			vals = append(vals, v.Str)
		}
	}
	sort.Strings(vals)
	return vals
}
