// Package database defines database adapter interfaces.
package database

import (
	"context"
	"time"

	"github.com/satishbabariya/restdb/internal/core/database/pool"
)

// Adapter defines the database adapter interface.
//
// Statements use `?` placeholders; adapters rebind them for their driver.
type Adapter interface {
	// Connect establishes a database connection.
	Connect(ctx context.Context) error

	// Disconnect closes the database connection.
	Disconnect(ctx context.Context) error

	// Query executes a query that returns rows. The caller closes the set.
	Query(ctx context.Context, query string, args ...interface{}) (RowSet, error)

	// Execute executes a data-modifying statement.
	Execute(ctx context.Context, query string, args ...interface{}) (*ExecuteSet, error)

	// Metadata runs a catalog lookup. The caller closes the set.
	Metadata(ctx context.Context, req MetadataRequest) (RowSet, error)

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Stats returns connection pool statistics.
	Stats() pool.Stats

	// GetDialect returns the SQL dialect.
	GetDialect() SQLDialect
}

// RowSet is a forward-only cursor over query results. *sql.Rows implements it.
type RowSet interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// ExecuteSet is the result of a data-modifying statement.
type ExecuteSet struct {
	// RowsAffected is the number of rows the statement changed.
	RowsAffected int64

	// Elapsed is the time spent in the database.
	Elapsed time.Duration

	// Keys holds generated keys, or nil when the driver reports none.
	Keys RowSet
}

// SQLDialect represents a SQL dialect.
type SQLDialect string

const (
	// PostgreSQL dialect.
	PostgreSQL SQLDialect = "postgres"
	// MySQL dialect.
	MySQL SQLDialect = "mysql"
	// SQLite dialect.
	SQLite SQLDialect = "sqlite"
)

// Config holds database connection configuration.
type Config struct {
	Provider       string
	URL            string
	MaxConnections int
	MaxIdleTime    int // seconds
	ConnectTimeout int // seconds

	// ReturningKeys appends RETURNING * to INSERT statements on dialects
	// that support it, reporting the inserted rows as generated keys.
	ReturningKeys bool
}

// PoolConfig derives the pool settings from the connection configuration.
func (c Config) PoolConfig() pool.Config {
	pc := pool.DefaultConfig()
	if c.MaxConnections > 0 {
		pc.MaxOpenConns = c.MaxConnections
		pc.MaxIdleConns = c.MaxConnections / 2
	}
	if c.MaxIdleTime > 0 {
		pc.ConnMaxIdleTime = time.Duration(c.MaxIdleTime) * time.Second
	}
	return pc
}

// Timeout returns the connect timeout, defaulting to ten seconds.
func (c Config) Timeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ConnectTimeout) * time.Second
}
