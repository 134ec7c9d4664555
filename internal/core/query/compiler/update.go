package compiler

import (
	"context"
	"strings"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// CompileUpdate builds `UPDATE table SET ... WHERE k1 = ? AND ...`.
//
// Key parameters select the row; a second value of a key parameter moves the
// key. SET values come from the body record or, without a body, from the
// non-key parameters. SET arguments always precede WHERE arguments.
func (c *SQLCompiler) CompileUpdate(ctx context.Context, table domain.Table, params *domain.ParameterSet, records []domain.Record) (domain.Statement, error) {
	if len(records) > 1 {
		return domain.Statement{}, fault.New(fault.TooManyUpdateRecords)
	}
	if params.Len() == 0 {
		return domain.Statement{}, fault.New(fault.MissingKeyValues)
	}

	keys, err := c.keys.Get(ctx, table)
	if err != nil {
		return domain.Statement{}, err
	}
	if len(keys) == 0 {
		return domain.Statement{}, fault.New(fault.NoPrimaryKey, table.String())
	}

	hasBody := len(records) == 1
	var (
		sets      []string
		setArgs   []interface{}
		where     []string
		whereArgs []interface{}
	)

	if hasBody {
		if len(records[0]) == 0 {
			return domain.Statement{}, fault.New(fault.EmptyRecord)
		}
		for _, f := range records[0] {
			if err := domain.CheckIdentifier(f.Name); err != nil {
				return domain.Statement{}, err
			}
			sets = append(sets, f.Name+" = ?")
			setArgs = append(setArgs, f.Value)
		}
	}

	bound := make(map[string]bool, len(keys))
	for _, name := range params.Names() {
		if err := domain.CheckIdentifier(name); err != nil {
			return domain.Statement{}, err
		}
		values := params.Values(name)

		if !keyColumn(keys, name) {
			if len(values) > 1 {
				return domain.Statement{}, fault.New(fault.AmbiguousNonKeyValue, name, values)
			}
			if hasBody {
				return domain.Statement{}, fault.New(fault.NonKeyFieldConflictsWithBody, name, values)
			}
			sets = append(sets, name+" = ?")
			setArgs = append(setArgs, values[0])
			continue
		}

		folded := strings.ToLower(name)
		if bound[folded] {
			return domain.Statement{}, fault.New(fault.DuplicateKeyValue, values, name)
		}
		switch len(values) {
		case 1:
		case 2:
			if hasBody {
				return domain.Statement{}, fault.New(fault.KeyValueConflictsWithBody, name, values)
			}
			sets = append(sets, name+" = ?")
			setArgs = append(setArgs, values[1])
		default:
			return domain.Statement{}, fault.New(fault.TooManyKeyValues, name, values)
		}
		where = append(where, name+" = ?")
		whereArgs = append(whereArgs, values[0])
		bound[folded] = true
	}

	if len(bound) != len(keys) {
		return domain.Statement{}, fault.New(fault.IncompleteKey, len(bound), len(keys), table.String())
	}
	if len(sets) == 0 {
		return domain.Statement{}, fault.New(fault.NothingToUpdate, table.String())
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table.String())
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(where, " AND "))

	return domain.Statement{
		SQL:  sb.String(),
		Args: append(setArgs, whereArgs...),
	}, nil
}
