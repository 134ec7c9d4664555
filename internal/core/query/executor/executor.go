// Package executor runs compiled statements against the database adapter.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/adapters/telemetry"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/core/query/projector"
	"github.com/satishbabariya/restdb/internal/debug"
)

// QueryExecutor executes statements and projects their results.
type QueryExecutor struct {
	db        database.Adapter
	projector *projector.ResultProjector
	telemetry telemetry.Telemetry
}

// NewQueryExecutor creates a new query executor.
func NewQueryExecutor(db database.Adapter, tel telemetry.Telemetry) *QueryExecutor {
	if tel == nil {
		tel = telemetry.NewNoopTelemetry()
	}
	return &QueryExecutor{
		db:        db,
		projector: projector.NewResultProjector(),
		telemetry: tel,
	}
}

// Select runs a row-returning statement. object labels the statement in
// logs and metrics.
func (e *QueryExecutor) Select(ctx context.Context, object string, stmt domain.Statement) ([]domain.Record, error) {
	if err := e.check(stmt); err != nil {
		return nil, err
	}
	debug.Debug("Executing query", "object", object, "sql", stmt.SQL)

	start := time.Now()
	records, err := e.selectRecords(ctx, stmt)
	e.record(ctx, object, stmt, time.Since(start), err, int64(len(records)))
	return records, err
}

func (e *QueryExecutor) selectRecords(ctx context.Context, stmt domain.Statement) ([]domain.Record, error) {
	rows, err := e.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	return e.projector.ToRecords(rows)
}

// Execute runs a data-modifying statement.
func (e *QueryExecutor) Execute(ctx context.Context, object string, stmt domain.Statement) (*domain.Outcome, error) {
	if err := e.check(stmt); err != nil {
		return nil, err
	}
	debug.Debug("Executing statement", "object", object, "sql", stmt.SQL)

	start := time.Now()
	outcome, err := e.execute(ctx, stmt)
	var affected int64
	if outcome != nil {
		affected = outcome.Result
	}
	e.record(ctx, object, stmt, time.Since(start), err, affected)
	return outcome, err
}

func (e *QueryExecutor) execute(ctx context.Context, stmt domain.Statement) (*domain.Outcome, error) {
	set, err := e.db.Execute(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	return e.projector.ToOutcome(stmt.SQL, set)
}

// Metadata runs a catalog lookup and returns its rows.
func (e *QueryExecutor) Metadata(ctx context.Context, req database.MetadataRequest) ([]domain.Record, error) {
	rows, err := e.db.Metadata(ctx, req)
	if err != nil {
		return nil, err
	}
	return e.projector.ToRecords(rows)
}

func (e *QueryExecutor) check(stmt domain.Statement) error {
	if e.db == nil {
		return fmt.Errorf("database adapter not initialized")
	}
	if !stmt.Balanced() {
		return fmt.Errorf("statement has %d placeholders for %d arguments", stmt.Placeholders(), len(stmt.Args))
	}
	return nil
}

func (e *QueryExecutor) record(ctx context.Context, object string, stmt domain.Statement, d time.Duration, err error, rows int64) {
	e.telemetry.RecordQuery(ctx, telemetry.QueryInfo{
		Object:   object,
		Verb:     string(stmt.Verb()),
		Duration: d,
		Success:  err == nil,
		Rows:     rows,
	})
}
