package compiler

import (
	"strings"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// CompileInsert builds a single INSERT. Parameters, when present, form the
// only row and the body is ignored; otherwise every record contributes one
// tuple in the field order of the first record.
func (c *SQLCompiler) CompileInsert(table domain.Table, params *domain.ParameterSet, records []domain.Record) (domain.Statement, error) {
	if params.Len() > 0 {
		return c.insertFromParams(table, params)
	}
	if len(records) == 0 {
		return domain.Statement{}, fault.New(fault.MissingBody)
	}

	columns := records[0].Names()
	if len(columns) == 0 {
		return domain.Statement{}, fault.New(fault.EmptyRecord)
	}
	for _, col := range columns {
		if err := domain.CheckIdentifier(col); err != nil {
			return domain.Statement{}, err
		}
	}

	args := make([]interface{}, 0, len(columns)*len(records))
	tuples := make([]string, 0, len(records))
	tuple := "(" + placeholders(len(columns)) + ")"
	for i, rec := range records {
		if len(rec) != len(columns) {
			return domain.Statement{}, fault.New(fault.RecordShapeMismatch, i, strings.Join(rec.Names(), ", "))
		}
		for _, col := range columns {
			v, ok := rec.Get(col)
			if !ok {
				return domain.Statement{}, fault.New(fault.RecordShapeMismatch, i, col)
			}
			args = append(args, v)
		}
		tuples = append(tuples, tuple)
	}

	return domain.Statement{
		SQL:  insertSQL(table, columns, tuples),
		Args: args,
	}, nil
}

func (c *SQLCompiler) insertFromParams(table domain.Table, params *domain.ParameterSet) (domain.Statement, error) {
	names := params.Names()
	args := make([]interface{}, 0, len(names))
	for _, name := range names {
		if err := domain.CheckIdentifier(name); err != nil {
			return domain.Statement{}, err
		}
		values := params.Values(name)
		if len(values) > 1 {
			return domain.Statement{}, fault.New(fault.AmbiguousInsertValue, name, values)
		}
		args = append(args, values[0])
	}

	return domain.Statement{
		SQL:  insertSQL(table, names, []string{"(" + placeholders(len(names)) + ")"}),
		Args: args,
	}, nil
}

func insertSQL(table domain.Table, columns, tuples []string) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table.String())
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")
	sb.WriteString(strings.Join(tuples, ", "))
	return sb.String()
}
