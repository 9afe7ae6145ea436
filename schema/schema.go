package schema

import (
	"fmt"
	"strings"

	"github.com/lumen-org/lumen/engine"
)

// ============================================================================
// SCHEMA — Describes the shape of a loaded dataset
// ============================================================================
// Nothing here is statically declared: the warehouse decides what columns a
// dataset has, and the schema is discovered from whatever the loader
// returned. The server uses it to describe filter options (country
// dropdown values, searchable columns) and to detect drift between the
// warehouse result and the dashboard's expectations.
// ============================================================================

// Config describes one dataset's discovered shape.
type Config struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []ColumnMeta `json:"columns"`
}

// ColumnMeta describes a single column.
type ColumnMeta struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Kind        string   `json:"kind"` // "string", "bool", "number", "timestamp"
	Nullable    bool     `json:"nullable"`
	Filterable  bool     `json:"filterable"`
	Searchable  bool     `json:"searchable"`
	// SampleValues is populated for low-cardinality string columns and
	// feeds selector widgets like the country dropdown.
	SampleValues []string `json:"sampleValues,omitempty"`
}

// ColumnKeys returns all column keys in schema order.
func (c Config) ColumnKeys() []string {
	keys := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		keys[i] = col.Key
	}
	return keys
}

// Column looks up a column's metadata by key.
func (c Config) Column(key string) (ColumnMeta, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return ColumnMeta{}, false
}

// Validate checks a loaded rowset against this schema. A column the schema
// expects but the rowset lacks is schema drift — a configuration error
// surfaced before any filtering runs.
func (c Config) Validate(rs engine.Rowset) error {
	have := make(map[string]bool)
	for _, col := range rs.Columns() {
		have[col] = true
	}
	for _, col := range c.Columns {
		if !have[col.Key] {
			return fmt.Errorf("dataset %q: %w: %q", c.Name, engine.ErrUnknownColumn, col.Key)
		}
	}
	return nil
}

// toDisplayName converts "total_sessions" → "Total Sessions".
func toDisplayName(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
