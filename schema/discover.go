package schema

import (
	"github.com/lumen-org/lumen/engine"
)

// ============================================================================
// DISCOVERY — Infer a schema from a loaded rowset
// ============================================================================

// Columns with at most this many distinct string values get SampleValues,
// making them dropdown candidates. Matches the dashboard's country selector
// behavior: distinct values, nulls dropped, sorted.
const sampleValueLimit = 50

// Discover infers a dataset's schema from a loaded rowset.
// Kind and nullability come from the cells themselves; string columns are
// marked searchable, and low-cardinality string columns carry their
// distinct values as dropdown samples.
func Discover(name string, rs engine.Rowset) Config {
	cfg := Config{Name: name, Rows: rs.Len()}

	for _, key := range rs.Columns() {
		meta := ColumnMeta{
			Key:         key,
			DisplayName: toDisplayName(key),
			Kind:        columnKind(rs, key).String(),
			Nullable:    hasNull(rs, key),
			Filterable:  true,
		}

		if meta.Kind == engine.KindString.String() {
			meta.Searchable = true
			if vals := engine.DistinctStrings(rs, key); len(vals) > 0 && len(vals) <= sampleValueLimit {
				meta.SampleValues = vals
			}
		}

		cfg.Columns = append(cfg.Columns, meta)
	}

	return cfg
}

// columnKind reads the column's kind from its first cell. Tables are built
// with a uniform kind per column, null cells included, so one probe is
// enough; an empty table reports string.
func columnKind(rs engine.Rowset, key string) engine.Kind {
	if rs.Len() == 0 {
		return engine.KindString
	}
	return rs.Value(0, key).Kind
}

func hasNull(rs engine.Rowset, key string) bool {
	for i := 0; i < rs.Len(); i++ {
		if rs.Value(i, key).Null {
			return true
		}
	}
	return false
}

// ============================================================================
// DATASET DEFAULTS
// ============================================================================
// Default display columns per dataset, as shipped by the dashboard.
// Intersected against the discovered schema at use time — a default that
// the warehouse stopped producing is silently dropped, matching the
// dashboard's behavior.
// ============================================================================

var defaultColumns = map[string][]string{
	"people": {
		"fullName", "username", "email", "total_sessions",
		"avg_session_duration", "engagement_score", "country", "city",
		"businessUser", "first_session_date",
	},
	"sessions": {
		"session_id", "fullName", "username", "start_timestamp",
		"session_duration", "screen_count", "autocapture_count",
		"scroll_event_count", "country", "city",
		"created_event", "viewed_event", "joined_event", "completed_quiz",
	},
}

// DefaultColumns returns the dataset's default display columns, restricted
// to those the rowset actually has.
func DefaultColumns(dataset string, rs engine.Rowset) []string {
	have := make(map[string]bool)
	for _, c := range rs.Columns() {
		have[c] = true
	}
	var cols []string
	for _, c := range defaultColumns[dataset] {
		if have[c] {
			cols = append(cols, c)
		}
	}
	return cols
}
