package engine

// Project returns a view with exactly the named columns, in the given
// order, over the same rows as the input. An empty column list is valid
// and yields a zero-column view with the input's row count — warning the
// user about it is the presentation layer's job, not the engine's.
// A name absent from the schema returns ErrUnknownColumn.
func Project(rs Rowset, cols []string) (Rowset, error) {
	for _, col := range cols {
		if !hasColumn(rs, col) {
			return nil, unknownColumn(col)
		}
	}
	return newProjection(rs, cols), nil
}
