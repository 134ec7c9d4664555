// Package pool manages the shared database handle.
package pool

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/debug"
)

// Config holds connection pool configuration.
type Config struct {
	// MaxOpenConns is the maximum number of open connections (0 = unlimited).
	MaxOpenConns int
	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum lifetime of a connection.
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum idle time of a connection.
	ConnMaxIdleTime time.Duration
	// HealthCheckInterval is how often to ping the database (0 disables).
	HealthCheckInterval time.Duration
}

// DefaultConfig returns sensible default pool configuration.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:        25,
		MaxIdleConns:        5,
		ConnMaxLifetime:     30 * time.Minute,
		ConnMaxIdleTime:     10 * time.Minute,
		HealthCheckInterval: 1 * time.Minute,
	}
}

// Pool wraps a *sqlx.DB with health tracking.
type Pool struct {
	db     *sqlx.DB
	config Config

	mu              sync.RWMutex
	failedChecks    int64
	lastHealthCheck time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New opens a pool for the given driver. The driver name also selects the
// bind style sqlx uses when rebinding `?` placeholders.
func New(driverName, dataSourceName string, config Config) (*Pool, error) {
	db, err := sqlx.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return FromDB(db, config), nil
}

// FromDB wraps an already opened handle.
func FromDB(db *sqlx.DB, config Config) *Pool {
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		db:     db,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	if config.HealthCheckInterval > 0 {
		p.wg.Add(1)
		go p.healthCheckLoop()
	}
	return p
}

// DB returns the underlying handle.
func (p *Pool) DB() *sqlx.DB {
	return p.db
}

// Rebind converts `?` placeholders to the driver's bind style. Markers
// inside quoted literals are left alone on `$n` drivers, which sqlx's own
// Rebind would renumber.
func (p *Pool) Rebind(query string) string {
	if sqlx.BindType(p.db.DriverName()) == sqlx.DOLLAR {
		return domain.NumberPlaceholders(query)
	}
	return p.db.Rebind(query)
}

// Stats is the pool snapshot reported by the health endpoint.
type Stats struct {
	sql.DBStats
	FailedHealthChecks int64
	LastHealthCheck    time.Time
}

// Stats returns the driver counters plus health check results.
func (p *Pool) Stats() Stats {
	s := Stats{DBStats: p.db.Stats()}
	p.mu.RLock()
	s.FailedHealthChecks = p.failedChecks
	s.LastHealthCheck = p.lastHealthCheck
	p.mu.RUnlock()
	return s
}

// HealthCheck pings the database and records the result.
func (p *Pool) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)

	p.mu.Lock()
	p.lastHealthCheck = time.Now()
	if err != nil {
		p.failedChecks++
	}
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (p *Pool) healthCheckLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
			if err := p.HealthCheck(ctx); err != nil {
				debug.Warn("Database health check failed", "error", err)
			}
			cancel()
		}
	}
}

// Close stops the health checks and closes the handle.
func (p *Pool) Close() error {
	var err error
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
		err = p.db.Close()
	})
	return err
}

// Exec executes a statement after rebinding its placeholders.
func (p *Pool) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return p.db.ExecContext(ctx, p.Rebind(query), args...)
}

// Query executes a query after rebinding its placeholders.
func (p *Pool) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return p.db.QueryContext(ctx, p.Rebind(query), args...)
}
