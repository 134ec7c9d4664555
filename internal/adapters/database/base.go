package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/satishbabariya/restdb/internal/core/database/pool"
	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// ErrNotConnected is returned when an adapter is used before Connect.
var ErrNotConnected = errors.New("database not connected")

// GeneratedKeyColumn names the key column built from LastInsertId.
const GeneratedKeyColumn = "GENERATED_KEY"

// Classifier maps a driver error to one of the fault sentinels, returning
// nil when the error is not recognized.
type Classifier func(err error) error

// Base implements the driver-independent part of an adapter on top of the
// shared pool. Dialect adapters embed it.
type Base struct {
	driver   string
	config   Config
	classify Classifier

	mu   sync.RWMutex
	pool *pool.Pool
}

// NewBase creates the shared adapter state for driver.
func NewBase(driver string, config Config, classify Classifier) *Base {
	return &Base{driver: driver, config: config, classify: classify}
}

// Config returns the connection configuration.
func (b *Base) Config() Config {
	return b.config
}

// Open opens the pool and pings the database within the connect timeout.
func (b *Base) Open(ctx context.Context, pc pool.Config) error {
	p, err := pool.New(b.driver, b.config.URL, pc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, b.config.Timeout())
	defer cancel()

	if err := p.DB().PingContext(ctx); err != nil {
		_ = p.Close()
		return fmt.Errorf("failed to ping database: %w", b.ClassifyError(err))
	}

	b.Attach(p)
	return nil
}

// Attach uses an already opened pool.
func (b *Base) Attach(p *pool.Pool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pool = p
}

// AttachDB wraps db in a pool without background health checks.
func (b *Base) AttachDB(db *sql.DB) {
	pc := b.config.PoolConfig()
	pc.HealthCheckInterval = 0
	b.Attach(pool.FromDB(sqlx.NewDb(db, b.driver), pc))
}

// Pool returns the connected pool.
func (b *Base) Pool() (*pool.Pool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.pool == nil {
		return nil, ErrNotConnected
	}
	return b.pool, nil
}

// Disconnect closes the database connection.
func (b *Base) Disconnect(ctx context.Context) error {
	b.mu.Lock()
	p := b.pool
	b.pool = nil
	b.mu.Unlock()

	if p != nil {
		return p.Close()
	}
	return nil
}

// Ping checks if the database connection is alive.
func (b *Base) Ping(ctx context.Context) error {
	p, err := b.Pool()
	if err != nil {
		return err
	}
	return p.HealthCheck(ctx)
}

// Stats returns pool statistics, or zero values when not connected.
func (b *Base) Stats() pool.Stats {
	p, err := b.Pool()
	if err != nil {
		return pool.Stats{}
	}
	return p.Stats()
}

// Query executes a query that returns rows.
func (b *Base) Query(ctx context.Context, query string, args ...interface{}) (RowSet, error) {
	p, err := b.Pool()
	if err != nil {
		return nil, err
	}
	rows, err := p.Query(ctx, query, args...)
	if err != nil {
		return nil, b.ClassifyError(err)
	}
	return rows, nil
}

// InsertIDOrder tells how a driver's LastInsertId relates to the rows of a
// multi-row INSERT.
type InsertIDOrder int

const (
	// NoInsertID reports no generated keys.
	NoInsertID InsertIDOrder = iota
	// FirstInsertID means LastInsertId is the id of the first inserted row.
	FirstInsertID
	// LastInsertID means LastInsertId is the rowid of the last inserted row.
	LastInsertID
)

// Exec executes a statement. An INSERT run with an InsertIDOrder other than
// NoInsertID reports one GENERATED_KEY row per affected row, derived from
// LastInsertId.
func (b *Base) Exec(ctx context.Context, order InsertIDOrder, query string, args ...interface{}) (*ExecuteSet, error) {
	p, err := b.Pool()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := p.Exec(ctx, query, args...)
	elapsed := time.Since(start)
	if err != nil {
		return nil, b.ClassifyError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, b.ClassifyError(err)
	}

	set := &ExecuteSet{RowsAffected: affected, Elapsed: elapsed}
	if order != NoInsertID && affected > 0 && domain.VerbOf(query) == domain.Insert {
		if id, err := res.LastInsertId(); err == nil && id > 0 {
			set.Keys = GeneratedKeys(id, affected, order)
		}
	}
	return set, nil
}

// GeneratedKeys expands a LastInsertId into the ids of n consecutive rows,
// first to last.
func GeneratedKeys(id, n int64, order InsertIDOrder) *StaticRows {
	first := id
	if order == LastInsertID {
		first = id - n + 1
	}
	if first < 1 {
		first, n = id, 1
	}
	rows := make([][]interface{}, 0, n)
	for i := int64(0); i < n; i++ {
		rows = append(rows, []interface{}{first + i})
	}
	return NewStaticRows([]string{GeneratedKeyColumn}, rows)
}

// Returnable reports whether RETURNING * can be appended to query.
func Returnable(query string) bool {
	return domain.VerbOf(query) == domain.Insert &&
		!strings.Contains(strings.ToUpper(query), "RETURNING")
}

// ExecReturning runs an INSERT with RETURNING * appended and reports the
// inserted rows as its keys.
func (b *Base) ExecReturning(ctx context.Context, query string, args ...interface{}) (*ExecuteSet, error) {
	start := time.Now()
	rows, err := b.Query(ctx, query+" RETURNING *", args...)
	if err != nil {
		return nil, err
	}
	keys, err := Materialize(rows)
	if err != nil {
		return nil, b.ClassifyError(err)
	}
	return &ExecuteSet{
		RowsAffected: int64(keys.Len()),
		Elapsed:      time.Since(start),
		Keys:         keys,
	}, nil
}

// ClassifyError wraps err with the matching fault sentinel, keeping the
// driver error reachable through errors.As.
func (b *Base) ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", fault.ErrConnection, err)
	}
	if b.classify != nil {
		if sentinel := b.classify(err); sentinel != nil {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
	}
	return err
}
