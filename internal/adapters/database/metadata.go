package database

import (
	"strings"
)

// MetadataOperation names a catalog lookup.
type MetadataOperation string

const (
	// GetPrimaryKeys lists the primary key columns of a table.
	GetPrimaryKeys MetadataOperation = "getPrimaryKeys"
	// GetColumns lists columns, optionally filtered by table and column.
	GetColumns MetadataOperation = "getColumns"
	// GetTables lists tables, optionally filtered by type.
	GetTables MetadataOperation = "getTables"
)

// ParseMetadataOperation returns the operation named op.
func ParseMetadataOperation(op string) (MetadataOperation, bool) {
	switch m := MetadataOperation(op); m {
	case GetPrimaryKeys, GetColumns, GetTables:
		return m, true
	}
	return "", false
}

// MetadataRequest carries the arguments of a catalog lookup. Empty strings
// match everything.
type MetadataRequest struct {
	Operation MetadataOperation
	Catalog   string
	Schema    string
	Table     string
	Column    string
	Types     []string
}

// Pattern returns a LIKE pattern for s, matching everything when s is empty.
func Pattern(s string) string {
	if s == "" {
		return "%"
	}
	return s
}

// TypeFilter appends `AND <column> IN (?, ...)` for the requested table
// types, translated by mapType.
func TypeFilter(column string, types []string, mapType func(string) string) (string, []interface{}) {
	if len(types) == 0 {
		return "", nil
	}
	marks := make([]string, len(types))
	args := make([]interface{}, len(types))
	for i, t := range types {
		marks[i] = "?"
		args[i] = mapType(strings.ToUpper(t))
	}
	return " AND " + column + " IN (" + strings.Join(marks, ", ") + ")", args
}

// InformationSchemaType maps JDBC table types to information_schema values.
func InformationSchemaType(t string) string {
	if t == "TABLE" {
		return "BASE TABLE"
	}
	return t
}
