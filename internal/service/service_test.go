package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/adapters/database/mysql"
	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/generator"
	"github.com/satishbabariya/restdb/internal/core/query/compiler"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/core/query/executor"
	"github.com/satishbabariya/restdb/internal/core/query/keys"
	"github.com/satishbabariya/restdb/internal/service"

	_ "github.com/satishbabariya/restdb/internal/generators/sample"
)

type staticKeys map[string][]string

func (s staticKeys) Get(_ context.Context, table domain.Table) ([]string, error) {
	return s[table.String()], nil
}

func newExecutor(t *testing.T) (*executor.QueryExecutor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return executor.NewQueryExecutor(mysql.NewWithDB(db, database.Config{}), nil), mock
}

func newTableService(t *testing.T) (*service.TableService, sqlmock.Sqlmock) {
	t.Helper()
	exec, mock := newExecutor(t)
	c := compiler.NewSQLCompiler(staticKeys{"st": {"st_id"}}, compiler.Options{})
	return service.NewTableService(c, exec, ""), mock
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func params(pairs ...string) *domain.ParameterSet {
	p := domain.NewParameterSet()
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Add(pairs[i], pairs[i+1])
	}
	return p
}

func TestTableGet(t *testing.T) {
	svc, mock := newTableService(t)
	mock.ExpectQuery(q("SELECT * FROM st WHERE st_id IN (?, ?)")).
		WithArgs("42", "43").
		WillReturnRows(sqlmock.NewRows([]string{"st_id", "st_name"}).
			AddRow(int64(42), []byte("a")).
			AddRow(int64(43), []byte("b")))

	records, err := svc.Get(context.Background(), service.TableInput{
		Object: "st",
		Params: params("st_id", "42", "st_id", "43"),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	name, _ := records[0].Get("st_name")
	assert.Equal(t, "a", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableGetValidation(t *testing.T) {
	svc, _ := newTableService(t)

	_, err := svc.Get(context.Background(), service.TableInput{Object: "st", Params: domain.NewParameterSet()})
	assert.True(t, fault.IsKind(err, fault.AllRowsDisallowed))

	_, err = svc.Get(context.Background(), service.TableInput{Object: "a.b.c", Params: params("x", "1")})
	assert.True(t, fault.IsKind(err, fault.InvalidTableName))
}

func TestTableGetFailure(t *testing.T) {
	svc, mock := newTableService(t)
	mock.ExpectQuery(q("SELECT * FROM st WHERE st_id = ?")).WillReturnError(errors.New("boom"))

	_, err := svc.Get(context.Background(), service.TableInput{Object: "st", Params: params("st_id", "1")})
	assert.True(t, fault.IsKind(err, fault.SelectFailed))
	assert.ErrorContains(t, err, "boom")
}

func TestTablePost(t *testing.T) {
	svc, mock := newTableService(t)
	mock.ExpectExec(q("INSERT INTO st (st_id, st_name) VALUES (?, ?), (?, ?)")).
		WithArgs(int64(1), "a", int64(2), "b").
		WillReturnResult(sqlmock.NewResult(2, 2))

	out, err := svc.Post(context.Background(), service.TableInput{
		Object: "st",
		Params: domain.NewParameterSet(),
		Records: []domain.Record{
			{{Name: "st_id", Value: int64(1)}, {Name: "st_name", Value: "a"}},
			{{Name: "st_id", Value: int64(2)}, {Name: "st_name", Value: "b"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Insert, out.Query)
	assert.Equal(t, int64(2), out.Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTablePostUniqueViolation(t *testing.T) {
	svc, mock := newTableService(t)
	mock.ExpectExec(q("INSERT INTO st (st_id) VALUES (?)")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"})

	_, err := svc.Post(context.Background(), service.TableInput{Object: "st", Params: params("st_id", "1")})
	assert.True(t, fault.IsKind(err, fault.InsertFailed))
	assert.True(t, errors.Is(err, fault.ErrUniqueConstraint))
}

func TestTablePut(t *testing.T) {
	svc, mock := newTableService(t)
	mock.ExpectExec(q("UPDATE st SET st_id = ?, st_name = ? WHERE st_id = ?")).
		WithArgs("1", "Test101", "101").
		WillReturnResult(sqlmock.NewResult(0, 1))

	out, err := svc.Put(context.Background(), service.TableInput{
		Object: "st",
		Params: params("st_id", "101", "st_id", "1", "st_name", "Test101"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Update, out.Query)
	assert.Equal(t, int64(1), out.Result)
}

func TestTablePutAndDeleteNotFound(t *testing.T) {
	svc, mock := newTableService(t)
	mock.ExpectExec(q("UPDATE st SET st_name = ? WHERE st_id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM st WHERE st_id = ?")).
		WithArgs("43").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Put(context.Background(), service.TableInput{
		Object: "st",
		Params: params("st_id", "1", "st_name", "x"),
	})
	assert.True(t, fault.IsKind(err, fault.RecordNotFound))
	assert.True(t, fault.IsNotFound(err))

	_, err = svc.Delete(context.Background(), service.TableInput{Object: "st", Params: params("st_id", "43")})
	assert.True(t, fault.IsKind(err, fault.RecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableDelete(t *testing.T) {
	svc, mock := newTableService(t)
	mock.ExpectExec(q("DELETE FROM st WHERE st_id = ?")).
		WithArgs("43").
		WillReturnResult(sqlmock.NewResult(0, 1))

	out, err := svc.Delete(context.Background(), service.TableInput{Object: "st", Params: params("st_id", "43")})
	require.NoError(t, err)
	assert.Equal(t, domain.Delete, out.Query)

	_, err = svc.Delete(context.Background(), service.TableInput{Object: "st", Params: params("st_name", "x")})
	assert.True(t, fault.IsKind(err, fault.NonKeyFieldInDelete))
}

func TestQueryService(t *testing.T) {
	exec, mock := newExecutor(t)
	svc := service.NewQueryService(generator.NewRegistry([]string{"sample"}), exec)

	mock.ExpectQuery(q("SELECT * FROM rp.users WHERE us_name = ?")).
		WithArgs("ann").
		WillReturnRows(sqlmock.NewRows([]string{"us_name"}).AddRow("ann"))
	records, err := svc.Select(context.Background(), "users.select", generator.Input{Params: params("us_name", "ann")})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	mock.ExpectExec(q("DELETE FROM rp.users WHERE us_name = ? AND us_last = ?")).
		WithArgs("ann", "lee").
		WillReturnError(errors.New("locked"))
	_, err = svc.Execute(context.Background(), "users.delete", generator.Input{Params: params("us_name", "ann", "us_last", "lee")})
	assert.True(t, fault.IsKind(err, fault.ExecuteFailed))

	_, err = svc.Select(context.Background(), "reports.daily", generator.Input{Params: domain.NewParameterSet()})
	assert.True(t, fault.IsKind(err, fault.GeneratorNotFound))

	_, err = svc.Select(context.Background(), "users", generator.Input{Params: domain.NewParameterSet()})
	assert.True(t, fault.IsKind(err, fault.MalformedObjectName))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type noLookup struct{}

func (noLookup) PrimaryKeys(context.Context, domain.Table) ([]string, error) {
	return nil, errors.New("unexpected lookup")
}

func TestInfoService(t *testing.T) {
	exec, mock := newExecutor(t)
	cache := keys.NewCache(noLookup{})
	svc := service.NewInfoService(exec, cache, true, "app")

	mock.ExpectQuery("information_schema.table_constraints").
		WithArgs("st", "app").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_CAT", "TABLE_SCHEM", "TABLE_NAME", "COLUMN_NAME", "KEY_SEQ", "PK_NAME"}).
			AddRow(nil, "app", "st", "st_id", int64(1), "PRIMARY"))

	records, err := svc.Metadata(context.Background(), "getPrimaryKeys", params("table", "st"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	cached, err := cache.Get(context.Background(), domain.Table{Schema: "app", Name: "st"})
	require.NoError(t, err)
	assert.Equal(t, []string{"st_id"}, cached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInfoServiceErrors(t *testing.T) {
	exec, mock := newExecutor(t)

	disabled := service.NewInfoService(exec, nil, false, "")
	_, err := disabled.Metadata(context.Background(), "getTables", domain.NewParameterSet())
	assert.True(t, fault.IsKind(err, fault.MetadataDisabled))

	svc := service.NewInfoService(exec, nil, true, "")
	_, err = svc.Metadata(context.Background(), "getProcedures", domain.NewParameterSet())
	assert.True(t, fault.IsKind(err, fault.UnsupportedMetadataOperation))

	mock.ExpectQuery("information_schema.tables").WillReturnError(errors.New("denied"))
	_, err = svc.Metadata(context.Background(), "getTables", params("type", "TABLE", "type", "VIEW"))
	assert.True(t, fault.IsKind(err, fault.MetadataFailed))
}

func TestInfoRequest(t *testing.T) {
	svc := service.NewInfoService(nil, nil, true, "public")
	req, err := svc.Request("getColumns", params("table", "st", "column", "st_%", "catalog", "db"))
	require.NoError(t, err)
	assert.Equal(t, database.MetadataRequest{
		Operation: database.GetColumns,
		Catalog:   "db",
		Schema:    "public",
		Table:     "st",
		Column:    "st_%",
	}, req)
}
