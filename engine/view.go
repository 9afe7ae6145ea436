package engine

// ============================================================================
// ROWSET — Zero-Copy Data Access Interface
// ============================================================================
// The engine never copies row data. Filtering and projection return views
// that read through to the underlying table.
//
// Implementations:
//   Table      — materialized rows (warehouse loader, CSV helper)
//   subRowset  — filtered subset (indices into parent, zero-copy)
//   projection — column-narrowed view (zero-copy)
// ============================================================================

// Rowset provides indexed access to an ordered row-set with a named schema.
// Value is called in tight loops — keep implementations fast.
type Rowset interface {
	Len() int
	Columns() []string
	Value(row int, col string) Value
}

func hasColumn(rs Rowset, name string) bool {
	for _, c := range rs.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// ============================================================================
// TABLE — materialized rows
// ============================================================================

// Table is a materialized Rowset. It is immutable once handed to the
// engine; AppendRow is for construction only.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]Value
}

// NewTable creates an empty table with the given column schema.
func NewTable(cols []string) (*Table, error) {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; dup {
			return nil, duplicateColumn(c)
		}
		index[c] = i
	}
	return &Table{
		cols:  append([]string(nil), cols...),
		index: index,
	}, nil
}

// AppendRow adds a row. The cell count must match the schema width.
func (t *Table) AppendRow(cells ...Value) error {
	if len(cells) != len(t.cols) {
		return ErrRowWidth
	}
	t.rows = append(t.rows, append([]Value(nil), cells...))
	return nil
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Columns() []string { return t.cols }

func (t *Table) Value(row int, col string) Value {
	if row < 0 || row >= len(t.rows) {
		return Null(KindString)
	}
	i, ok := t.index[col]
	if !ok {
		return Null(KindString)
	}
	return t.rows[row][i]
}

// ============================================================================
// SUB ROWSET — filtered subset (zero-copy)
// ============================================================================

// subRowset is a filtered subset of a parent Rowset.
// Holds indices into the parent — no data copy, order preserved.
type subRowset struct {
	parent  Rowset
	indices []int
}

func newSubRowset(parent Rowset, indices []int) Rowset {
	return &subRowset{parent: parent, indices: indices}
}

func (v *subRowset) Len() int { return len(v.indices) }

func (v *subRowset) Columns() []string { return v.parent.Columns() }

func (v *subRowset) Value(row int, col string) Value {
	if row < 0 || row >= len(v.indices) {
		return Null(KindString)
	}
	return v.parent.Value(v.indices[row], col)
}

// ============================================================================
// PROJECTION — column-narrowed view (zero-copy)
// ============================================================================

// projection exposes a subset of the parent's columns in caller order.
// Rows and row order are untouched.
type projection struct {
	parent Rowset
	cols   []string
	keep   map[string]bool
}

func newProjection(parent Rowset, cols []string) Rowset {
	keep := make(map[string]bool, len(cols))
	for _, c := range cols {
		keep[c] = true
	}
	return &projection{
		parent: parent,
		cols:   append([]string(nil), cols...),
		keep:   keep,
	}
}

func (v *projection) Len() int { return v.parent.Len() }

func (v *projection) Columns() []string { return v.cols }

func (v *projection) Value(row int, col string) Value {
	if !v.keep[col] {
		return Null(KindString)
	}
	return v.parent.Value(row, col)
}
