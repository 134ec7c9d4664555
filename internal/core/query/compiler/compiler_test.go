package compiler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/compiler"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

type staticKeys map[string][]string

func (s staticKeys) Get(_ context.Context, table domain.Table) ([]string, error) {
	keys, ok := s[table.String()]
	if !ok {
		return nil, fault.Wrap(fault.PrimaryKeyLookupFailed, errors.New("no such table"))
	}
	return keys, nil
}

var testKeys = staticKeys{
	"st":    {"st_id"},
	"pair":  {"a", "b"},
	"nokey": {},
}

func params(pairs ...string) *domain.ParameterSet {
	ps := domain.NewParameterSet()
	for i := 0; i+1 < len(pairs); i += 2 {
		ps.Add(pairs[i], pairs[i+1])
	}
	return ps
}

func table(name string) domain.Table {
	return domain.Table{Name: name}
}

func assertKind(t *testing.T, err error, kind fault.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, kind), "want %s, got %v", kind, err)
}

func TestCompileSelect(t *testing.T) {
	comp := compiler.NewSQLCompiler(testKeys, compiler.Options{})

	tests := []struct {
		name     string
		params   *domain.ParameterSet
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "single value",
			params:   params("st_id", "42"),
			wantSQL:  "SELECT * FROM st WHERE st_id = ?",
			wantArgs: []interface{}{"42"},
		},
		{
			name:     "multiple values",
			params:   params("st_id", "42", "st_id", "43"),
			wantSQL:  "SELECT * FROM st WHERE st_id IN (?, ?)",
			wantArgs: []interface{}{"42", "43"},
		},
		{
			name:     "wildcard",
			params:   params("st_name", "Te%"),
			wantSQL:  "SELECT * FROM st WHERE st_name LIKE ?",
			wantArgs: []interface{}{"Te%"},
		},
		{
			name:     "parameter order",
			params:   params("st_name", "x", "st_id", "1", "st_id", "2", "st_code", "%a"),
			wantSQL:  "SELECT * FROM st WHERE st_name = ? AND st_id IN (?, ?) AND st_code LIKE ?",
			wantArgs: []interface{}{"x", "1", "2", "%a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := comp.CompileSelect(table("st"), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			assert.Equal(t, tt.wantArgs, stmt.Args)
			assert.True(t, stmt.Balanced())
		})
	}
}

func TestCompileSelectFullScan(t *testing.T) {
	_, err := compiler.NewSQLCompiler(testKeys, compiler.Options{}).CompileSelect(table("st"), params())
	assertKind(t, err, fault.AllRowsDisallowed)

	stmt, err := compiler.NewSQLCompiler(testKeys, compiler.Options{AllowFullScan: true}).
		CompileSelect(domain.Table{Schema: "rp", Name: "st"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM rp.st", stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestCompileSelectRejectsBadIdentifier(t *testing.T) {
	_, err := compiler.NewSQLCompiler(testKeys, compiler.Options{}).
		CompileSelect(table("st"), params("1=1 OR x", "1"))
	assertKind(t, err, fault.InvalidIdentifier)
}

func TestCompileInsert(t *testing.T) {
	comp := compiler.NewSQLCompiler(testKeys, compiler.Options{})

	t.Run("from params ignores body", func(t *testing.T) {
		body := []domain.Record{{{Name: "ignored", Value: 1}}}
		stmt, err := comp.CompileInsert(table("st"), params("st_id", "1", "st_name", "x"), body)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO st (st_id, st_name) VALUES (?, ?)", stmt.SQL)
		assert.Equal(t, []interface{}{"1", "x"}, stmt.Args)
	})

	t.Run("from records", func(t *testing.T) {
		body := []domain.Record{
			{{Name: "st_name", Value: "a"}, {Name: "st_id", Value: int64(1)}},
			{{Name: "st_id", Value: int64(2)}, {Name: "st_name", Value: "b"}},
		}
		stmt, err := comp.CompileInsert(table("st"), params(), body)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO st (st_name, st_id) VALUES (?, ?), (?, ?)", stmt.SQL)
		assert.Equal(t, []interface{}{"a", int64(1), "b", int64(2)}, stmt.Args)
		assert.True(t, stmt.Balanced())
	})

	t.Run("ambiguous value", func(t *testing.T) {
		_, err := comp.CompileInsert(table("st"), params("st_id", "1", "st_id", "2"), nil)
		assertKind(t, err, fault.AmbiguousInsertValue)
	})

	t.Run("missing body", func(t *testing.T) {
		_, err := comp.CompileInsert(table("st"), params(), nil)
		assertKind(t, err, fault.MissingBody)
	})

	t.Run("empty record", func(t *testing.T) {
		_, err := comp.CompileInsert(table("st"), params(), []domain.Record{{}})
		assertKind(t, err, fault.EmptyRecord)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		body := []domain.Record{
			{{Name: "a", Value: 1}, {Name: "b", Value: 2}},
			{{Name: "a", Value: 1}, {Name: "c", Value: 2}},
		}
		_, err := comp.CompileInsert(table("st"), params(), body)
		assertKind(t, err, fault.RecordShapeMismatch)

		body[1] = domain.Record{{Name: "a", Value: 1}}
		_, err = comp.CompileInsert(table("st"), params(), body)
		assertKind(t, err, fault.RecordShapeMismatch)
	})
}

func TestCompileUpdate(t *testing.T) {
	comp := compiler.NewSQLCompiler(testKeys, compiler.Options{})
	ctx := context.Background()

	t.Run("key move without body", func(t *testing.T) {
		stmt, err := comp.CompileUpdate(ctx, table("st"), params("st_id", "101", "st_id", "1", "st_name", "Test101"), nil)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE st SET st_id = ?, st_name = ? WHERE st_id = ?", stmt.SQL)
		assert.Equal(t, []interface{}{"1", "Test101", "101"}, stmt.Args)
	})

	t.Run("body sets fields", func(t *testing.T) {
		body := []domain.Record{{{Name: "st_name", Value: "n"}, {Name: "st_code", Value: int64(3)}}}
		stmt, err := comp.CompileUpdate(ctx, table("st"), params("ST_ID", "7"), body)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE st SET st_name = ?, st_code = ? WHERE ST_ID = ?", stmt.SQL)
		assert.Equal(t, []interface{}{"n", int64(3), "7"}, stmt.Args)
	})

	t.Run("composite key", func(t *testing.T) {
		stmt, err := comp.CompileUpdate(ctx, table("pair"), params("b", "2", "c", "x", "a", "1"), nil)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE pair SET c = ? WHERE b = ? AND a = ?", stmt.SQL)
		assert.Equal(t, []interface{}{"x", "2", "1"}, stmt.Args)
	})

	errorCases := []struct {
		name   string
		table  string
		params *domain.ParameterSet
		body   []domain.Record
		want   fault.Kind
	}{
		{"too many records", "st", params("st_id", "1"), []domain.Record{{{Name: "a", Value: 1}}, {{Name: "a", Value: 2}}}, fault.TooManyUpdateRecords},
		{"no params", "st", params(), nil, fault.MissingKeyValues},
		{"duplicate key", "st", params("st_id", "1", "ST_ID", "2", "x", "y"), nil, fault.DuplicateKeyValue},
		{"key conflicts with body", "st", params("st_id", "1", "st_id", "2"), []domain.Record{{{Name: "a", Value: 1}}}, fault.KeyValueConflictsWithBody},
		{"too many key values", "st", params("st_id", "1", "st_id", "2", "st_id", "3"), nil, fault.TooManyKeyValues},
		{"non-key conflicts with body", "st", params("st_id", "1", "x", "y"), []domain.Record{{{Name: "a", Value: 1}}}, fault.NonKeyFieldConflictsWithBody},
		{"ambiguous non-key", "st", params("st_id", "1", "x", "y", "x", "z"), nil, fault.AmbiguousNonKeyValue},
		{"incomplete key", "pair", params("a", "1", "c", "x"), nil, fault.IncompleteKey},
		{"nothing to update", "st", params("st_id", "1"), nil, fault.NothingToUpdate},
		{"no primary key", "nokey", params("x", "1"), nil, fault.NoPrimaryKey},
		{"empty body record", "st", params("st_id", "1"), []domain.Record{{}}, fault.EmptyRecord},
		{"lookup failure", "missing", params("x", "1"), nil, fault.PrimaryKeyLookupFailed},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := comp.CompileUpdate(ctx, table(tt.table), tt.params, tt.body)
			assertKind(t, err, tt.want)
		})
	}
}

func TestCompileDelete(t *testing.T) {
	comp := compiler.NewSQLCompiler(testKeys, compiler.Options{})
	ctx := context.Background()

	stmt, err := comp.CompileDelete(ctx, table("st"), params("st_id", "43"))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM st WHERE st_id = ?", stmt.SQL)
	assert.Equal(t, []interface{}{"43"}, stmt.Args)

	stmt, err = comp.CompileDelete(ctx, table("pair"), params("B", "2", "a", "1"))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM pair WHERE B = ? AND a = ?", stmt.SQL)
	assert.Equal(t, []interface{}{"2", "1"}, stmt.Args)

	errorCases := []struct {
		name   string
		table  string
		params *domain.ParameterSet
		want   fault.Kind
	}{
		{"no params", "st", params(), fault.KeyCountMismatch},
		{"too many params", "st", params("st_id", "1", "x", "2"), fault.KeyCountMismatch},
		{"multi valued", "st", params("st_id", "1", "st_id", "2"), fault.AmbiguousKeyValue},
		{"non-key", "st", params("x", "1"), fault.NonKeyFieldInDelete},
		{"duplicate key", "pair", params("a", "1", "A", "2"), fault.DuplicateKeyValue},
		{"no primary key", "nokey", params(), fault.NoPrimaryKey},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := comp.CompileDelete(ctx, table(tt.table), tt.params)
			assertKind(t, err, tt.want)
		})
	}
}
