package service

import (
	"context"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/core/query/executor"
	"github.com/satishbabariya/restdb/internal/core/query/keys"
)

// KeyStore receives primary keys discovered through the info endpoint.
type KeyStore interface {
	Store(table domain.Table, keys []string)
}

// InfoService answers catalog metadata requests.
type InfoService struct {
	executor      *executor.QueryExecutor
	keys          KeyStore
	enabled       bool
	defaultSchema string
}

// NewInfoService creates a new info service. A disabled service rejects
// every request.
func NewInfoService(e *executor.QueryExecutor, store KeyStore, enabled bool, defaultSchema string) *InfoService {
	return &InfoService{
		executor:      e,
		keys:          store,
		enabled:       enabled,
		defaultSchema: defaultSchema,
	}
}

// Enabled reports whether metadata requests are served.
func (s *InfoService) Enabled() bool {
	return s.enabled
}

// Request builds the metadata request for operation from the catalog,
// schema, table, column and type parameters.
func (s *InfoService) Request(operation string, params *domain.ParameterSet) (database.MetadataRequest, error) {
	op, ok := database.ParseMetadataOperation(operation)
	if !ok {
		return database.MetadataRequest{}, fault.New(fault.UnsupportedMetadataOperation, operation)
	}

	first := func(name string) string {
		v, _ := params.First(name)
		return v
	}
	req := database.MetadataRequest{
		Operation: op,
		Catalog:   first("catalog"),
		Schema:    first("schema"),
		Table:     first("table"),
		Column:    first("column"),
		Types:     params.Values("type"),
	}
	if req.Schema == "" {
		req.Schema = s.defaultSchema
	}
	return req, nil
}

// Metadata runs operation and returns its rows. getPrimaryKeys results
// are stored in the key cache.
func (s *InfoService) Metadata(ctx context.Context, operation string, params *domain.ParameterSet) ([]domain.Record, error) {
	if !s.enabled {
		return nil, fault.New(fault.MetadataDisabled)
	}
	req, err := s.Request(operation, params)
	if err != nil {
		return nil, err
	}

	records, err := s.executor.Metadata(ctx, req)
	if err != nil {
		return nil, wrap(fault.MetadataFailed, err, operation)
	}

	if req.Operation == database.GetPrimaryKeys && s.keys != nil && req.Table != "" {
		table := domain.Table{Schema: req.Schema, Name: req.Table}
		if domain.ValidIdentifier(req.Table) && (req.Schema == "" || domain.ValidIdentifier(req.Schema)) {
			s.keys.Store(table, keys.ColumnNames(records))
		}
	}
	return records, nil
}
