// Package mysql implements MySQL database adapter.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/core/fault"
)

// MySQLAdapter implements the database.Adapter interface for MySQL.
type MySQLAdapter struct {
	*database.Base
}

// NewMySQLAdapter creates a new MySQL adapter.
func NewMySQLAdapter(config database.Config) (*MySQLAdapter, error) {
	if config.URL != "" {
		dsn, err := mysql.ParseDSN(config.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
		}
		// DATE and DATETIME columns scan as time.Time.
		dsn.ParseTime = true
		config.URL = dsn.FormatDSN()
	}
	return &MySQLAdapter{
		Base: database.NewBase("mysql", config, classify),
	}, nil
}

// NewWithDB creates an adapter over an already opened handle.
func NewWithDB(db *sql.DB, config database.Config) *MySQLAdapter {
	a := &MySQLAdapter{Base: database.NewBase("mysql", config, classify)}
	a.AttachDB(db)
	return a
}

// Connect establishes a connection to the MySQL database.
func (a *MySQLAdapter) Connect(ctx context.Context) error {
	return a.Open(ctx, a.Config().PoolConfig())
}

// Execute executes a data-modifying statement. LastInsertId is the first
// AUTO_INCREMENT value of a multi-row INSERT, and the keys of the following
// rows are taken as consecutive. That holds for simple inserts with
// auto_increment_increment = 1, the same assumption Connector/J makes.
func (a *MySQLAdapter) Execute(ctx context.Context, query string, args ...interface{}) (*database.ExecuteSet, error) {
	return a.Exec(ctx, database.FirstInsertID, query, args...)
}

const primaryKeysQuery = "SELECT NULL AS TABLE_CAT, kcu.table_schema AS TABLE_SCHEM, kcu.table_name AS TABLE_NAME, " +
	"kcu.column_name AS COLUMN_NAME, kcu.ordinal_position AS KEY_SEQ, tc.constraint_name AS PK_NAME " +
	"FROM information_schema.table_constraints tc " +
	"JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name " +
	"AND tc.table_schema = kcu.table_schema AND tc.table_name = kcu.table_name " +
	"WHERE tc.constraint_type = 'PRIMARY KEY' AND kcu.table_name = ? " +
	"AND kcu.table_schema = COALESCE(NULLIF(?, ''), DATABASE()) " +
	"ORDER BY kcu.ordinal_position"

const columnsQuery = "SELECT NULL AS TABLE_CAT, table_schema AS TABLE_SCHEM, table_name AS TABLE_NAME, " +
	"column_name AS COLUMN_NAME, data_type AS TYPE_NAME, character_maximum_length AS COLUMN_SIZE, " +
	"is_nullable AS IS_NULLABLE, column_default AS COLUMN_DEF, ordinal_position AS ORDINAL_POSITION " +
	"FROM information_schema.columns " +
	"WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_name LIKE ? AND column_name LIKE ? " +
	"ORDER BY table_name, ordinal_position"

const tablesQuery = "SELECT NULL AS TABLE_CAT, table_schema AS TABLE_SCHEM, table_name AS TABLE_NAME, " +
	"table_type AS TABLE_TYPE FROM information_schema.tables " +
	"WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_name LIKE ?"

// Metadata runs a catalog lookup against information_schema. An empty
// schema means the connection's current database.
func (a *MySQLAdapter) Metadata(ctx context.Context, req database.MetadataRequest) (database.RowSet, error) {
	switch req.Operation {
	case database.GetPrimaryKeys:
		return a.Query(ctx, primaryKeysQuery, req.Table, req.Schema)
	case database.GetColumns:
		return a.Query(ctx, columnsQuery, req.Schema, database.Pattern(req.Table), database.Pattern(req.Column))
	case database.GetTables:
		filter, typeArgs := database.TypeFilter("table_type", req.Types, database.InformationSchemaType)
		args := append([]interface{}{req.Schema, database.Pattern(req.Table)}, typeArgs...)
		return a.Query(ctx, tablesQuery+filter+" ORDER BY table_type, table_name", args...)
	default:
		return nil, fmt.Errorf("unsupported metadata operation %q", req.Operation)
	}
}

// GetDialect returns the SQL dialect.
func (a *MySQLAdapter) GetDialect() database.SQLDialect {
	return database.MySQL
}

func classify(err error) error {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return fault.ErrConnection
	}
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return nil
	}
	switch myErr.Number {
	case 1062:
		return fault.ErrUniqueConstraint
	case 1451, 1452:
		return fault.ErrForeignKeyConstraint
	case 1048, 1364:
		return fault.ErrNullConstraint
	}
	return nil
}

// Ensure MySQLAdapter implements Adapter interface.
var _ database.Adapter = (*MySQLAdapter)(nil)
