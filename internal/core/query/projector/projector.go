// Package projector turns driver results into response models.
package projector

import (
	"fmt"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// ResultProjector maps row sets and execute results.
type ResultProjector struct{}

// NewResultProjector creates a new projector.
func NewResultProjector() *ResultProjector {
	return &ResultProjector{}
}

// ToRecords materializes every row as a Record whose fields follow the
// result's column order. Text returned as []byte becomes a string. The row
// set is closed.
func (p *ResultProjector) ToRecords(rows database.RowSet) ([]domain.Record, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	records := []domain.Record{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := make(domain.Record, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			rec[i] = domain.Field{Name: col, Value: val}
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}

// ToOutcome builds the response to a data-modifying statement.
func (p *ResultProjector) ToOutcome(sql string, set *database.ExecuteSet) (*domain.Outcome, error) {
	var keys []domain.Record
	if set.Keys != nil {
		var err error
		if keys, err = p.ToRecords(set.Keys); err != nil {
			return nil, fmt.Errorf("failed to read generated keys: %w", err)
		}
	}
	return domain.NewOutcome(sql, set.RowsAffected, set.Elapsed, keys), nil
}
