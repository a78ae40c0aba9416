package exporter

// Table is a named header plus rows of cell values. Cells may be string,
// any integer type, float64, *float64 (nil is an empty cell) or bool.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// NewTable creates an empty table with the given headers.
func NewTable(name string, headers ...string) *Table {
	return &Table{Name: name, Headers: headers, Rows: make([][]any, 0)}
}

// AddRow appends one row. Missing trailing cells are left empty.
func (t *Table) AddRow(values ...any) {
	t.Rows = append(t.Rows, values)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records renders every row as strings, padded to the header width.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		width := len(t.Headers)
		if len(row) > width {
			width = len(row)
		}
		rec := make([]string, width)
		for i, v := range row {
			rec[i] = formatValue(v)
		}
		out = append(out, rec)
	}
	return out
}
