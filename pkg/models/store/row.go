package store

// RawRow is one source row keyed by physical column name.
type RawRow map[string]any

// RowSet is the tabular result of a backend fetch. Rows share the column
// order of Columns.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// EmptyRowSet returns a non-nil, zero-row set.
func EmptyRowSet(columns []string) RowSet {
	return RowSet{Columns: columns, Rows: [][]any{}}
}

func (s RowSet) Len() int {
	return len(s.Rows)
}

// Row returns the i-th row as a RawRow.
func (s RowSet) Row(i int) RawRow {
	row := make(RawRow, len(s.Columns))
	for j, col := range s.Columns {
		if j < len(s.Rows[i]) {
			row[col] = s.Rows[i][j]
		}
	}
	return row
}

// Append concatenates the rows of next, keeping the columns of the first
// non-empty set.
func (s RowSet) Append(next RowSet) RowSet {
	if len(s.Columns) == 0 {
		s.Columns = next.Columns
	}
	if s.Rows == nil {
		s.Rows = [][]any{}
	}
	s.Rows = append(s.Rows, next.Rows...)
	return s
}
