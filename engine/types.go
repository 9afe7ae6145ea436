package engine

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ============================================================================
// ENGINE TYPES — Typed Cells and Filter Configuration
// ============================================================================

// Kind identifies the type of a cell value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNumber
	KindTime
)

// String returns the schema name for a kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindTime:
		return "timestamp"
	default:
		return "string"
	}
}

// Value is a single typed cell. Null is explicit — a null cell keeps its
// column's kind but carries no payload.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
	Null bool
}

// String creates a string cell.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool creates a boolean cell.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number creates a numeric cell.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Time creates a timestamp cell.
func Time(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// Null creates a null cell of the given kind.
func Null(k Kind) Value { return Value{Kind: k, Null: true} }

// Render returns the cell's CSV/text representation. Null renders empty.
func (v Value) Render() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Str
	}
}

// JSON returns the cell as a JSON-marshalable value. Null becomes nil.
func (v Value) JSON() any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Str
	}
}

// ============================================================================
// FILTER CONFIGURATION
// ============================================================================
// An immutable predicate set, built once per interaction and passed into
// Apply. An absent predicate contributes no constraint. Predicates are
// AND-combined; the columns of a SearchFilter are OR-combined.
// ============================================================================

// EqualsFilter requires a column to equal a literal exactly.
// Works for string and boolean columns; null cells never match.
type EqualsFilter struct {
	Column string
	Value  Value
}

// MinFilter requires a numeric column to be >= Threshold.
// Null cells fail the comparison.
type MinFilter struct {
	Column    string
	Threshold float64
}

// FlagFilter requires a boolean column to be exactly true.
// An unchecked flag is simply absent from the FilterConfig.
type FlagFilter struct {
	Column string
}

// SearchFilter matches a term case-insensitively as a substring of any of
// the listed string columns. A null column never satisfies its own clause
// but does not disqualify the row if another column matches.
type SearchFilter struct {
	Term    string
	Columns []string
}

// DateRangeFilter bounds the calendar date of a timestamp column,
// inclusive on both ends. Both bounds are always supplied together; an
// inverted range (Start after End) matches nothing, which is defined
// behavior rather than an error.
type DateRangeFilter struct {
	Column string
	Start  time.Time
	End    time.Time
}

// FilterConfig is the full predicate set for one filter pass.
// The zero value imposes no constraint.
type FilterConfig struct {
	Equals []EqualsFilter
	Min    []MinFilter
	Flags  []FlagFilter
	Search *SearchFilter
	Range  *DateRangeFilter
}

// IsEmpty reports whether no predicate is active.
func (f FilterConfig) IsEmpty() bool {
	return len(f.Equals) == 0 &&
		len(f.Min) == 0 &&
		len(f.Flags) == 0 &&
		(f.Search == nil || f.Search.Term == "") &&
		f.Range == nil
}

// columns returns every column any active predicate references.
func (f FilterConfig) columns() []string {
	var cols []string
	for _, e := range f.Equals {
		cols = append(cols, e.Column)
	}
	for _, m := range f.Min {
		cols = append(cols, m.Column)
	}
	for _, fl := range f.Flags {
		cols = append(cols, fl.Column)
	}
	if f.Search != nil && f.Search.Term != "" {
		cols = append(cols, f.Search.Columns...)
	}
	if f.Range != nil {
		cols = append(cols, f.Range.Column)
	}
	return cols
}

// ============================================================================
// ERRORS
// ============================================================================

// ErrUnknownColumn marks a predicate or projection referencing a column the
// table does not have. This is schema drift between the loader's result and
// the caller's expectations — it fails loudly instead of matching nothing.
var ErrUnknownColumn = errors.New("unknown column")

// ErrDuplicateColumn marks a table built with a repeated column name.
var ErrDuplicateColumn = errors.New("duplicate column")

// ErrRowWidth marks a row appended with the wrong number of cells.
var ErrRowWidth = errors.New("row width does not match schema")

func unknownColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

func duplicateColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
}
