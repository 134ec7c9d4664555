package rest_test

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/adapters/database/mysql"
	"github.com/satishbabariya/restdb/internal/adapters/rest"
	"github.com/satishbabariya/restdb/internal/adapters/telemetry"
	"github.com/satishbabariya/restdb/internal/core/generator"
	"github.com/satishbabariya/restdb/internal/core/query/compiler"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/core/query/executor"
	"github.com/satishbabariya/restdb/internal/i18n"
	"github.com/satishbabariya/restdb/internal/service"

	_ "github.com/satishbabariya/restdb/internal/generators/sample"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticKeys map[string][]string

func (s staticKeys) Get(_ context.Context, table domain.Table) ([]string, error) {
	return s[table.String()], nil
}

type fixture struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	tel    *telemetry.MemoryTelemetry
}

func newFixture(t *testing.T, infoEnabled bool) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	adapter := mysql.NewWithDB(db, database.Config{})
	tel := telemetry.NewMemoryTelemetry()
	exec := executor.NewQueryExecutor(adapter, tel)
	loc, err := i18n.New("ru")
	require.NoError(t, err)

	h := rest.NewHandler(
		service.NewTableService(compiler.NewSQLCompiler(staticKeys{"st": {"st_id"}}, compiler.Options{}), exec, ""),
		service.NewQueryService(generator.NewRegistry([]string{"sample"}), exec),
		service.NewInfoService(exec, nil, infoEnabled, ""),
		adapter,
		loc,
		tel,
	)
	return &fixture{router: rest.NewRouter(h, ""), mock: mock, tel: tel}
}

func (f *fixture) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func TestGetTable(t *testing.T) {
	f := newFixture(t, false)
	f.mock.ExpectQuery(q("SELECT * FROM st WHERE st_id IN (?, ?)")).
		WithArgs("42", "43").
		WillReturnRows(sqlmock.NewRows([]string{"st_id", "st_name"}).
			AddRow(int64(42), "a").
			AddRow(int64(43), "b"))

	w := f.do(http.MethodGet, "/data/table/st?st_id=42&st_id=43", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"st_id":42,"st_name":"a"},{"st_id":43,"st_name":"b"}]`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(rest.RequestIDHeader))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRequestIDEcho(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodGet, "/data/table/st", "", rest.RequestIDHeader, "req-1")
	assert.Equal(t, "req-1", w.Header().Get(rest.RequestIDHeader))
}

func TestErrorLocalization(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/data/table/st", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Выборка всех записей таблицы запрещена","code":"RST0020E","cause":null}`, w.Body.String())

	w = f.do(http.MethodGet, "/data/table/st", "", "Content-Language", "en")
	assert.JSONEq(t, `{"message":"Selecting all rows of a table is not allowed","code":"RST0020E","cause":null}`, w.Body.String())
}

func TestDeleteNotFound(t *testing.T) {
	f := newFixture(t, false)
	f.mock.ExpectExec(q("DELETE FROM st WHERE st_id = ?")).
		WithArgs("43").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := f.do(http.MethodDelete, "/data/table/st?st_id=43", "", "Content-Language", "en")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Record not found","code":"RST0019E","cause":null}`, w.Body.String())
	assert.Equal(t, int64(1), f.tel.Snapshot().Errors["RST0019E"])
}

func TestErrorCause(t *testing.T) {
	f := newFixture(t, false)
	f.mock.ExpectExec(q("UPDATE st SET st_name = ? WHERE st_id = ?")).
		WithArgs("x", "7").
		WillReturnError(errors.New("lock wait timeout"))

	w := f.do(http.MethodPut, "/data/table/st?st_id=7&st_name=x", "", "Content-Language", "en")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var bean map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bean))
	assert.Equal(t, "RST0013E", bean["code"])
	assert.Equal(t, "lock wait timeout", bean["cause"])

	w = f.do(http.MethodGet, "/data/table/st", "", "Accept", rest.MIMEMsgpack)
	var packed map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(w.Body.Bytes(), &packed))
	cause, present := packed["cause"]
	assert.True(t, present)
	assert.Nil(t, cause)
}

func TestPutWithSingleObjectBody(t *testing.T) {
	f := newFixture(t, false)
	f.mock.ExpectExec(q("UPDATE st SET st_name = ? WHERE st_id = ?")).
		WithArgs("renamed", "7").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := f.do(http.MethodPut, "/data/table/st?st_id=7", `{"st_name":"renamed"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"query":"UPDATE"`)
	assert.Contains(t, w.Body.String(), `"result":1`)
}

func TestPutMalformedBody(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodPut, "/data/table/st?st_id=7", `{"st_name": {"nested": 1}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"RST0029E"`)
}

func TestPostIgnoresBodyWhenParamsPresent(t *testing.T) {
	f := newFixture(t, false)
	f.mock.ExpectExec(q("INSERT INTO st (st_id, st_name) VALUES (?, ?)")).
		WithArgs("1", "a").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := f.do(http.MethodPost, "/data/table/st?st_id=1&st_name=a", `not json at all`, "Accept", "application/xml")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		XMLName xml.Name `xml:"beanResponse"`
		Query   string   `xml:"query"`
		Result  int64    `xml:"result"`
	}
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "INSERT", out.Query)
	assert.Equal(t, int64(1), out.Result)
	assert.Contains(t, w.Body.String(), `<field name="GENERATED_KEY">1</field>`)
}

func TestRecordsAsXML(t *testing.T) {
	f := newFixture(t, false)
	f.mock.ExpectQuery(q("SELECT * FROM st WHERE st_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"st_id", "st_name"}).AddRow(int64(1), nil))

	w := f.do(http.MethodGet, "/data/table/st?st_id=1", "", "Accept", "application/xml")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(),
		`<records><record><field name="st_id">1</field><field name="st_name" null="true"></field></record></records>`)
}

func TestRecordsAsMsgpack(t *testing.T) {
	f := newFixture(t, false)
	f.mock.ExpectQuery(q("SELECT * FROM st WHERE st_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"st_id", "st_name"}).AddRow(int64(1), "a"))

	w := f.do(http.MethodGet, "/data/table/st?st_id=1", "", "Accept", rest.MIMEMsgpack)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rest.MIMEMsgpack, w.Header().Get("Content-Type"))
	var out []map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0]["st_name"])
}

func TestQueryEndpoints(t *testing.T) {
	f := newFixture(t, false)
	f.mock.ExpectQuery(q("SELECT * FROM rp.users WHERE us_name = ? LIMIT ? OFFSET ?")).
		WithArgs("ann", 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"us_name"}).AddRow("ann"))
	f.mock.ExpectExec(q("INSERT INTO rp.users (us_name, us_last, us_email) VALUES (?, ?, ?)")).
		WithArgs("bob", "lee", "b@x").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := f.do(http.MethodGet, "/data/query/users.select?us_name=ann&page=1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[{"us_name":"ann"}]`, w.Body.String())

	w = f.do(http.MethodPost, "/data/query/users.insert", `[{"us_name":"bob","us_last":"lee","us_email":"b@x"}]`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"query":"INSERT"`)

	w = f.do(http.MethodGet, "/data/query/users.nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"RST0026E"`)

	w = f.do(http.MethodGet, "/data/query/reports.daily", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"RST0005E"`)

	w = f.do(http.MethodGet, "/data/query/users", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"RST0021E"`)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestInfoEndpoint(t *testing.T) {
	disabled := newFixture(t, false)
	w := disabled.do(http.MethodGet, "/data/info/getTables", "")
	assert.Contains(t, w.Body.String(), `"code":"RST0022E"`)

	f := newFixture(t, true)
	f.mock.ExpectQuery("information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_CAT", "TABLE_SCHEM", "TABLE_NAME", "TABLE_TYPE"}).
			AddRow(nil, "app", "st", "BASE TABLE"))

	w = f.do(http.MethodGet, "/data/info/getTables?type=TABLE", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[{"TABLE_CAT":null,"TABLE_SCHEM":"app","TABLE_NAME":"st","TABLE_TYPE":"BASE TABLE"}]`, w.Body.String())

	w = f.do(http.MethodGet, "/data/info/getProcedures", "")
	assert.Contains(t, w.Body.String(), `"code":"RST0024E"`)
}

func TestMalformedQueryString(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodGet, "/data/table/st?st_id=%zz", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"RST0034E"`)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"up"`)

	w = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"queries"`)
}

func TestRoutes(t *testing.T) {
	f := newFixture(t, false)
	routes := rest.Routes(f.router)
	assert.Contains(t, routes, rest.Route{Method: http.MethodPut, Path: "/data/table/:object"})
	assert.Contains(t, routes, rest.Route{Method: http.MethodGet, Path: "/data/info/:operation"})
	assert.Len(t, routes, 9)
}
