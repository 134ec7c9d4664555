package compiler

import (
	"context"
	"strings"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// CompileDelete builds `DELETE FROM table WHERE k1 = ? AND ...`. The
// parameters must name every key column exactly once with a single value.
func (c *SQLCompiler) CompileDelete(ctx context.Context, table domain.Table, params *domain.ParameterSet) (domain.Statement, error) {
	keys, err := c.keys.Get(ctx, table)
	if err != nil {
		return domain.Statement{}, err
	}
	if len(keys) == 0 {
		return domain.Statement{}, fault.New(fault.NoPrimaryKey, table.String())
	}
	if params.Len() != len(keys) {
		return domain.Statement{}, fault.New(fault.KeyCountMismatch, params.Len(), len(keys), table.String())
	}

	where := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, name := range params.Names() {
		if err := domain.CheckIdentifier(name); err != nil {
			return domain.Statement{}, err
		}
		values := params.Values(name)
		if len(values) > 1 {
			return domain.Statement{}, fault.New(fault.AmbiguousKeyValue, name)
		}
		if !keyColumn(keys, name) {
			return domain.Statement{}, fault.New(fault.NonKeyFieldInDelete, name, table.String())
		}
		folded := strings.ToLower(name)
		if seen[folded] {
			return domain.Statement{}, fault.New(fault.DuplicateKeyValue, values, name)
		}
		seen[folded] = true
		where = append(where, name+" = ?")
		args = append(args, values[0])
	}

	return domain.Statement{
		SQL:  "DELETE FROM " + table.String() + " WHERE " + strings.Join(where, " AND "),
		Args: args,
	}, nil
}
