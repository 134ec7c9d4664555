package database

import (
	"fmt"
)

// StaticRows is a materialized RowSet.
type StaticRows struct {
	columns []string
	rows    [][]interface{}
	pos     int
	closed  bool
}

// NewStaticRows creates a RowSet over rows.
func NewStaticRows(columns []string, rows [][]interface{}) *StaticRows {
	return &StaticRows{columns: columns, rows: rows}
}

// Materialize reads every row of rs and closes it.
func Materialize(rs RowSet) (*StaticRows, error) {
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	var rows [][]interface{}
	for rs.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		rows = append(rows, values)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return NewStaticRows(columns, rows), nil
}

// Len returns the number of rows.
func (s *StaticRows) Len() int {
	return len(s.rows)
}

// Columns returns the column names.
func (s *StaticRows) Columns() ([]string, error) {
	return s.columns, nil
}

// Next advances to the next row.
func (s *StaticRows) Next() bool {
	if s.closed || s.pos >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

// Scan copies the current row into dest, which must be *interface{} values.
func (s *StaticRows) Scan(dest ...interface{}) error {
	if s.pos == 0 || s.pos > len(s.rows) {
		return fmt.Errorf("scan called without a current row")
	}
	row := s.rows[s.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destination arguments, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		p, ok := d.(*interface{})
		if !ok {
			return fmt.Errorf("unsupported scan destination %T", d)
		}
		*p = row[i]
	}
	return nil
}

// Err always returns nil.
func (s *StaticRows) Err() error {
	return nil
}

// Close releases the set.
func (s *StaticRows) Close() error {
	s.closed = true
	return nil
}

var _ RowSet = (*StaticRows)(nil)
