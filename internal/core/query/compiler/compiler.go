// Package compiler translates table requests into parameterized SQL.
//
// Every statement uses `?` placeholders; adapters whose driver expects
// another bind style rebind before execution. Compilation never touches the
// database apart from the primary key lookup UPDATE and DELETE need.
package compiler

import (
	"context"
	"strings"

	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// KeyProvider returns the ordered primary key columns of a table.
type KeyProvider interface {
	Get(ctx context.Context, table domain.Table) ([]string, error)
}

// Options tune compilation.
type Options struct {
	// AllowFullScan permits a SELECT without any filter.
	AllowFullScan bool
}

// SQLCompiler builds SELECT, INSERT, UPDATE and DELETE statements.
type SQLCompiler struct {
	keys KeyProvider
	opts Options
}

// NewSQLCompiler creates a new SQL compiler.
func NewSQLCompiler(keys KeyProvider, opts Options) *SQLCompiler {
	return &SQLCompiler{
		keys: keys,
		opts: opts,
	}
}

// placeholders returns n comma separated markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// keyColumn reports whether name matches one of keys, ignoring case.
func keyColumn(keys []string, name string) bool {
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
