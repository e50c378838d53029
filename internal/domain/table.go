package domain

import "fmt"

// Table is an in-memory columnar table. Columns keep their load order and
// every column holds exactly Len() values.
type Table struct {
	columns []string
	index   map[string]int
	data    [][]any
}

// NewTable creates an empty table with the given column names.
// Duplicate names are rejected.
func NewTable(columns []string) (*Table, error) {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if err := t.addColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) addColumn(name string) error {
	if _, ok := t.index[name]; ok {
		return fmt.Errorf("duplicate column %q", name)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	t.data = append(t.data, make([]any, t.Len()))
	return nil
}

// AppendRow appends one row. values must have one entry per column, in column order.
func (t *Table) AppendRow(values []any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	for i, v := range values {
		t.data[i] = append(t.data[i], v)
	}
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.data) == 0 {
		return 0
	}
	return len(t.data[0])
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]any, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.data[i], true
}

// Row returns row i as a column-name keyed record.
func (t *Table) Row(i int) map[string]any {
	rec := make(map[string]any, len(t.columns))
	for c, name := range t.columns {
		rec[name] = t.data[c][i]
	}
	return rec
}

// Records returns every row as a record.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// Record is a row object whose keys keep their source order.
type Record struct {
	Keys   []string
	Values map[string]any
}

// TableFromRecords builds a table from row objects. Columns are the union of
// keys in first-seen order; cells absent from a record are nil.
func TableFromRecords(records []Record) (*Table, error) {
	t, err := NewTable(nil)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		for _, k := range rec.Keys {
			if _, ok := t.index[k]; !ok {
				if err := t.addColumn(k); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, rec := range records {
		row := make([]any, len(t.columns))
		for i, name := range t.columns {
			row[i] = rec.Values[name]
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}
