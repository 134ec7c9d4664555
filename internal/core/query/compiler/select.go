package compiler

import (
	"strings"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// CompileSelect builds `SELECT * FROM table WHERE ...` with one condition
// per parameter, in parameter order.
func (c *SQLCompiler) CompileSelect(table domain.Table, params *domain.ParameterSet) (domain.Statement, error) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table.String())

	if params.Len() == 0 {
		if !c.opts.AllowFullScan {
			return domain.Statement{}, fault.New(fault.AllRowsDisallowed)
		}
		return domain.Statement{SQL: sb.String()}, nil
	}

	var args []interface{}
	sb.WriteString(" WHERE ")
	for i, name := range params.Names() {
		if err := domain.CheckIdentifier(name); err != nil {
			return domain.Statement{}, err
		}
		if i > 0 {
			sb.WriteString(" AND ")
		}
		values := params.Values(name)
		sb.WriteString(name)
		switch {
		case len(values) > 1:
			sb.WriteString(" IN (")
			sb.WriteString(placeholders(len(values)))
			sb.WriteString(")")
		case strings.Contains(values[0], "%"):
			sb.WriteString(" LIKE ?")
		default:
			sb.WriteString(" = ?")
		}
		args = append(args, stringArgs(values)...)
	}

	return domain.Statement{SQL: sb.String(), Args: args}, nil
}
