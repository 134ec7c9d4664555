// Package service implements the restdb use cases on top of the compiler,
// the generator registry and the executor.
package service

import (
	"context"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/compiler"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/core/query/executor"
)

// TableInput is a table request.
type TableInput struct {
	// Object is `schema.table` or `table`.
	Object string

	Params  *domain.ParameterSet
	Records []domain.Record
}

// TableService handles CRUD requests on named tables.
type TableService struct {
	compiler      *compiler.SQLCompiler
	executor      *executor.QueryExecutor
	defaultSchema string
}

// NewTableService creates a new table service.
func NewTableService(c *compiler.SQLCompiler, e *executor.QueryExecutor, defaultSchema string) *TableService {
	return &TableService{
		compiler:      c,
		executor:      e,
		defaultSchema: defaultSchema,
	}
}

// Get selects the rows matching the parameters.
func (s *TableService) Get(ctx context.Context, in TableInput) ([]domain.Record, error) {
	table, err := domain.ParseTable(in.Object, s.defaultSchema)
	if err != nil {
		return nil, err
	}
	stmt, err := s.compiler.CompileSelect(table, in.Params)
	if err != nil {
		return nil, err
	}

	records, err := s.executor.Select(ctx, table.String(), stmt)
	if err != nil {
		return nil, wrap(fault.SelectFailed, err, table.String())
	}
	return records, nil
}

// Post inserts one row from the parameters or every body record.
func (s *TableService) Post(ctx context.Context, in TableInput) (*domain.Outcome, error) {
	table, err := domain.ParseTable(in.Object, s.defaultSchema)
	if err != nil {
		return nil, err
	}
	stmt, err := s.compiler.CompileInsert(table, in.Params, in.Records)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, table, stmt, fault.InsertFailed, false)
}

// Put updates the row addressed by the primary key parameters.
func (s *TableService) Put(ctx context.Context, in TableInput) (*domain.Outcome, error) {
	table, err := domain.ParseTable(in.Object, s.defaultSchema)
	if err != nil {
		return nil, err
	}
	stmt, err := s.compiler.CompileUpdate(ctx, table, in.Params, in.Records)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, table, stmt, fault.UpdateFailed, true)
}

// Delete removes the row addressed by the primary key parameters.
func (s *TableService) Delete(ctx context.Context, in TableInput) (*domain.Outcome, error) {
	table, err := domain.ParseTable(in.Object, s.defaultSchema)
	if err != nil {
		return nil, err
	}
	stmt, err := s.compiler.CompileDelete(ctx, table, in.Params)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, table, stmt, fault.DeleteFailed, true)
}

func (s *TableService) execute(ctx context.Context, table domain.Table, stmt domain.Statement, failure fault.Kind, mustAffect bool) (*domain.Outcome, error) {
	outcome, err := s.executor.Execute(ctx, table.String(), stmt)
	if err != nil {
		return nil, wrap(failure, err, table.String())
	}
	if mustAffect && outcome.Result == 0 {
		return nil, fault.New(fault.RecordNotFound)
	}
	return outcome, nil
}

// wrap turns an execution error into a fault of kind, leaving faults
// raised further down untouched.
func wrap(kind fault.Kind, err error, args ...interface{}) error {
	if _, ok := fault.As(err); ok {
		return err
	}
	return fault.Wrap(kind, err, args...)
}
