// Package postgres implements PostgreSQL database adapter.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/core/fault"
)

// PostgresAdapter implements the database.Adapter interface for PostgreSQL.
type PostgresAdapter struct {
	*database.Base
}

// NewPostgresAdapter creates a new PostgreSQL adapter.
func NewPostgresAdapter(config database.Config) (*PostgresAdapter, error) {
	return &PostgresAdapter{
		Base: database.NewBase("postgres", config, classify),
	}, nil
}

// NewWithDB creates an adapter over an already opened handle.
func NewWithDB(db *sql.DB, config database.Config) *PostgresAdapter {
	a, _ := NewPostgresAdapter(config)
	a.AttachDB(db)
	return a
}

// Connect establishes a connection to the PostgreSQL database.
func (a *PostgresAdapter) Connect(ctx context.Context) error {
	return a.Open(ctx, a.Config().PoolConfig())
}

// Execute executes a data-modifying statement. When returning keys are
// enabled, INSERT statements report the inserted rows.
func (a *PostgresAdapter) Execute(ctx context.Context, query string, args ...interface{}) (*database.ExecuteSet, error) {
	if a.Config().ReturningKeys && database.Returnable(query) {
		return a.ExecReturning(ctx, query, args...)
	}
	return a.Exec(ctx, database.NoInsertID, query, args...)
}

const primaryKeysQuery = `SELECT NULL AS "TABLE_CAT", kcu.table_schema AS "TABLE_SCHEM", kcu.table_name AS "TABLE_NAME", ` +
	`kcu.column_name AS "COLUMN_NAME", kcu.ordinal_position AS "KEY_SEQ", tc.constraint_name AS "PK_NAME" ` +
	`FROM information_schema.table_constraints tc ` +
	`JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name ` +
	`AND tc.table_schema = kcu.table_schema AND tc.table_name = kcu.table_name ` +
	`WHERE tc.constraint_type = 'PRIMARY KEY' AND kcu.table_name = ? AND (? = '' OR kcu.table_schema = ?) ` +
	`ORDER BY kcu.table_schema, kcu.ordinal_position`

const columnsQuery = `SELECT NULL AS "TABLE_CAT", table_schema AS "TABLE_SCHEM", table_name AS "TABLE_NAME", ` +
	`column_name AS "COLUMN_NAME", data_type AS "TYPE_NAME", character_maximum_length AS "COLUMN_SIZE", ` +
	`is_nullable AS "IS_NULLABLE", column_default AS "COLUMN_DEF", ordinal_position AS "ORDINAL_POSITION" ` +
	`FROM information_schema.columns ` +
	`WHERE table_schema LIKE ? AND table_name LIKE ? AND column_name LIKE ? ` +
	`ORDER BY table_schema, table_name, ordinal_position`

const tablesQuery = `SELECT NULL AS "TABLE_CAT", table_schema AS "TABLE_SCHEM", table_name AS "TABLE_NAME", ` +
	`table_type AS "TABLE_TYPE" FROM information_schema.tables ` +
	`WHERE table_schema LIKE ? AND table_name LIKE ?`

// Metadata runs a catalog lookup against information_schema.
func (a *PostgresAdapter) Metadata(ctx context.Context, req database.MetadataRequest) (database.RowSet, error) {
	switch req.Operation {
	case database.GetPrimaryKeys:
		return a.Query(ctx, primaryKeysQuery, req.Table, req.Schema, req.Schema)
	case database.GetColumns:
		return a.Query(ctx, columnsQuery,
			database.Pattern(req.Schema), database.Pattern(req.Table), database.Pattern(req.Column))
	case database.GetTables:
		filter, typeArgs := database.TypeFilter("table_type", req.Types, database.InformationSchemaType)
		args := append([]interface{}{database.Pattern(req.Schema), database.Pattern(req.Table)}, typeArgs...)
		return a.Query(ctx, tablesQuery+filter+" ORDER BY table_type, table_schema, table_name", args...)
	default:
		return nil, fmt.Errorf("unsupported metadata operation %q", req.Operation)
	}
}

// GetDialect returns the SQL dialect.
func (a *PostgresAdapter) GetDialect() database.SQLDialect {
	return database.PostgreSQL
}

func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23505":
		return fault.ErrUniqueConstraint
	case "23503":
		return fault.ErrForeignKeyConstraint
	case "23502":
		return fault.ErrNullConstraint
	}
	if pqErr.Code.Class() == "08" {
		return fault.ErrConnection
	}
	return nil
}

// Ensure PostgresAdapter implements Adapter interface.
var _ database.Adapter = (*PostgresAdapter)(nil)
