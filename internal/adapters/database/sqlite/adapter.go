// Package sqlite implements SQLite database adapter.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-version"
	"github.com/mattn/go-sqlite3"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/core/fault"
)

// minVersion is the oldest SQLite with multi-row VALUES and table-valued
// pragma functions.
var minVersion = version.Must(version.NewVersion("3.16.0"))

// returningVersion is the first SQLite with INSERT ... RETURNING.
var returningVersion = version.Must(version.NewVersion("3.35.0"))

// SQLiteAdapter implements the database.Adapter interface for SQLite.
type SQLiteAdapter struct {
	*database.Base

	mu      sync.RWMutex
	version *version.Version
}

// NewSQLiteAdapter creates a new SQLite adapter.
func NewSQLiteAdapter(config database.Config) (*SQLiteAdapter, error) {
	return &SQLiteAdapter{
		Base: database.NewBase("sqlite3", config, classify),
	}, nil
}

// NewWithDB creates an adapter over an already opened handle.
func NewWithDB(db *sql.DB, config database.Config) *SQLiteAdapter {
	a, _ := NewSQLiteAdapter(config)
	a.AttachDB(db)
	return a
}

// Connect establishes a connection to the SQLite database.
func (a *SQLiteAdapter) Connect(ctx context.Context) error {
	// A single connection keeps writes serialized and in-memory databases shared.
	pc := a.Config().PoolConfig()
	pc.MaxOpenConns = 1
	pc.MaxIdleConns = 1
	if err := a.Open(ctx, pc); err != nil {
		return err
	}

	if err := a.CheckVersion(ctx); err != nil {
		_ = a.Disconnect(ctx)
		return err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := a.Exec(ctx, database.NoInsertID, "PRAGMA foreign_keys = ON"); err != nil {
		_ = a.Disconnect(ctx)
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}

// CheckVersion reads sqlite_version() and rejects libraries older than the
// features the compiler relies on.
func (a *SQLiteAdapter) CheckVersion(ctx context.Context) error {
	rows, err := a.Query(ctx, "SELECT sqlite_version()")
	if err != nil {
		return fmt.Errorf("failed to read SQLite version: %w", err)
	}
	defer rows.Close()

	var raw string
	if rows.Next() {
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("failed to read SQLite version: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	v, err := supportedVersion(raw)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.version = v
	a.mu.Unlock()
	return nil
}

func supportedVersion(raw string) (*version.Version, error) {
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("unrecognized SQLite version %q: %w", raw, err)
	}
	if v.LessThan(minVersion) {
		return nil, fmt.Errorf("SQLite %s is older than the required %s", v, minVersion)
	}
	return v, nil
}

// Version returns the library version detected on Connect.
func (a *SQLiteAdapter) Version() *version.Version {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.version
}

// Execute executes a data-modifying statement. With returning keys enabled
// on a library that has RETURNING, an INSERT reports the inserted rows.
// Otherwise the last rowid is expanded backwards over the affected rows,
// which a single-connection pool assigns consecutively.
func (a *SQLiteAdapter) Execute(ctx context.Context, query string, args ...interface{}) (*database.ExecuteSet, error) {
	if a.Config().ReturningKeys && a.SupportsReturning() && database.Returnable(query) {
		return a.ExecReturning(ctx, query, args...)
	}
	return a.Exec(ctx, database.LastInsertID, query, args...)
}

// SupportsReturning reports whether the detected library accepts
// INSERT ... RETURNING.
func (a *SQLiteAdapter) SupportsReturning() bool {
	v := a.Version()
	return v != nil && !v.LessThan(returningVersion)
}

const primaryKeysQuery = "SELECT NULL AS TABLE_CAT, ? AS TABLE_SCHEM, ? AS TABLE_NAME, name AS COLUMN_NAME, " +
	"pk AS KEY_SEQ, NULL AS PK_NAME FROM pragma_table_info(?, ?) WHERE pk > 0 ORDER BY pk"

const columnsQuery = "SELECT NULL AS TABLE_CAT, ? AS TABLE_SCHEM, m.name AS TABLE_NAME, p.name AS COLUMN_NAME, " +
	"p.type AS TYPE_NAME, CASE p.\"notnull\" WHEN 0 THEN 'YES' ELSE 'NO' END AS IS_NULLABLE, " +
	"p.dflt_value AS COLUMN_DEF, p.cid + 1 AS ORDINAL_POSITION " +
	"FROM sqlite_master m JOIN pragma_table_info(m.name) p " +
	"WHERE m.type IN ('table', 'view') AND m.name LIKE ? AND p.name LIKE ? ORDER BY m.name, p.cid"

const tablesQuery = "SELECT NULL AS TABLE_CAT, ? AS TABLE_SCHEM, name AS TABLE_NAME, " +
	"UPPER(type) AS TABLE_TYPE FROM sqlite_master " +
	"WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' AND name LIKE ?"

// Metadata runs a catalog lookup against sqlite_master and table_info.
func (a *SQLiteAdapter) Metadata(ctx context.Context, req database.MetadataRequest) (database.RowSet, error) {
	schema := req.Schema
	if schema == "" {
		schema = "main"
	}
	switch req.Operation {
	case database.GetPrimaryKeys:
		return a.Query(ctx, primaryKeysQuery, schema, req.Table, req.Table, schema)
	case database.GetColumns:
		return a.Query(ctx, columnsQuery, schema, database.Pattern(req.Table), database.Pattern(req.Column))
	case database.GetTables:
		filter, typeArgs := database.TypeFilter("type", req.Types, strings.ToLower)
		args := append([]interface{}{schema, database.Pattern(req.Table)}, typeArgs...)
		return a.Query(ctx, tablesQuery+filter+" ORDER BY type, name", args...)
	default:
		return nil, fmt.Errorf("unsupported metadata operation %q", req.Operation)
	}
}

// GetDialect returns the SQL dialect.
func (a *SQLiteAdapter) GetDialect() database.SQLDialect {
	return database.SQLite
}

func classify(err error) error {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return nil
	}
	switch sqlErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fault.ErrUniqueConstraint
	case sqlite3.ErrConstraintForeignKey:
		return fault.ErrForeignKeyConstraint
	case sqlite3.ErrConstraintNotNull:
		return fault.ErrNullConstraint
	}
	if sqlErr.Code == sqlite3.ErrCantOpen {
		return fault.ErrConnection
	}
	return nil
}

// Ensure SQLiteAdapter implements Adapter interface.
var _ database.Adapter = (*SQLiteAdapter)(nil)
