package service

import (
	"context"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/generator"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/core/query/executor"
)

// QueryService runs generator operations addressed as
// `generator.operation`.
type QueryService struct {
	registry *generator.Registry
	executor *executor.QueryExecutor
}

// NewQueryService creates a new query service.
func NewQueryService(reg *generator.Registry, e *executor.QueryExecutor) *QueryService {
	return &QueryService{
		registry: reg,
		executor: e,
	}
}

// Select runs a query operation and returns its rows.
func (s *QueryService) Select(ctx context.Context, object string, in generator.Input) ([]domain.Record, error) {
	in.Records = nil
	stmt, err := s.registry.Invoke(ctx, object, generator.QueryKind, in)
	if err != nil {
		return nil, err
	}

	records, err := s.executor.Select(ctx, object, stmt)
	if err != nil {
		return nil, wrap(fault.QueryFailed, err, object)
	}
	return records, nil
}

// Execute runs an exec operation.
func (s *QueryService) Execute(ctx context.Context, object string, in generator.Input) (*domain.Outcome, error) {
	stmt, err := s.registry.Invoke(ctx, object, generator.ExecKind, in)
	if err != nil {
		return nil, err
	}

	outcome, err := s.executor.Execute(ctx, object, stmt)
	if err != nil {
		return nil, wrap(fault.ExecuteFailed, err, object)
	}
	return outcome, nil
}
