// Package rest exposes the table, query and info services over HTTP.
package rest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/satishbabariya/restdb/internal/adapters/database"
	"github.com/satishbabariya/restdb/internal/adapters/telemetry"
	"github.com/satishbabariya/restdb/internal/core/database/pool"
	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/generator"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/debug"
	"github.com/satishbabariya/restdb/internal/i18n"
	"github.com/satishbabariya/restdb/internal/service"
)

const langKey = "lang"

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
	Stats() pool.Stats
}

// Handler serves the restdb endpoints.
type Handler struct {
	tables    *service.TableService
	queries   *service.QueryService
	info      *service.InfoService
	db        Pinger
	localizer *i18n.Localizer
	telemetry telemetry.Telemetry
}

// NewHandler creates a new handler. db and tel may be nil.
func NewHandler(
	tables *service.TableService,
	queries *service.QueryService,
	info *service.InfoService,
	db Pinger,
	localizer *i18n.Localizer,
	tel telemetry.Telemetry,
) *Handler {
	if tel == nil {
		tel = telemetry.NewNoopTelemetry()
	}
	return &Handler{
		tables:    tables,
		queries:   queries,
		info:      info,
		db:        db,
		localizer: localizer,
		telemetry: tel,
	}
}

// Language resolves Content-Language for the rest of the chain.
func (h *Handler) Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(langKey, h.localizer.Match(c.GetHeader("Content-Language")))
		c.Next()
	}
}

func lang(c *gin.Context) language.Tag {
	if v, ok := c.Get(langKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return language.Russian
}

func params(c *gin.Context) (*domain.ParameterSet, error) {
	ps, err := domain.ParseParameters(c.Request.URL.RawQuery)
	if err != nil {
		return nil, fault.Wrap(fault.MalformedQuery, err, c.Request.URL.RawQuery)
	}
	return ps, nil
}

func body(c *gin.Context) ([]domain.Record, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fault.Wrap(fault.MalformedBody, err)
	}
	return domain.DecodeRecords(data)
}

func (h *Handler) tableInput(c *gin.Context, withBody bool) (service.TableInput, error) {
	in := service.TableInput{Object: c.Param("object")}
	var err error
	if in.Params, err = params(c); err != nil {
		return in, err
	}
	if withBody {
		if in.Records, err = body(c); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (h *Handler) getTable(c *gin.Context) {
	in, err := h.tableInput(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	records, err := h.tables.Get(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	renderRecords(c, records)
}

func (h *Handler) postTable(c *gin.Context) {
	in, err := h.tableInput(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	// Parameters, when present, are the row; the body is not read.
	if in.Params.Len() == 0 {
		if in.Records, err = body(c); err != nil {
			h.fail(c, err)
			return
		}
	}
	outcome, err := h.tables.Post(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	renderOutcome(c, outcome)
}

func (h *Handler) putTable(c *gin.Context) {
	in, err := h.tableInput(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	outcome, err := h.tables.Put(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	renderOutcome(c, outcome)
}

func (h *Handler) deleteTable(c *gin.Context) {
	in, err := h.tableInput(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	outcome, err := h.tables.Delete(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	renderOutcome(c, outcome)
}

func (h *Handler) generatorInput(c *gin.Context, withBody bool) (generator.Input, error) {
	in := generator.Input{Lang: lang(c).String()}
	var err error
	if in.Params, err = params(c); err != nil {
		return in, err
	}
	if withBody {
		if in.Records, err = body(c); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (h *Handler) getQuery(c *gin.Context) {
	in, err := h.generatorInput(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	records, err := h.queries.Select(c.Request.Context(), c.Param("object"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	renderRecords(c, records)
}

func (h *Handler) postQuery(c *gin.Context) {
	in, err := h.generatorInput(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	outcome, err := h.queries.Execute(c.Request.Context(), c.Param("object"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	renderOutcome(c, outcome)
}

func (h *Handler) getInfo(c *gin.Context) {
	ps, err := params(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	records, err := h.info.Metadata(c.Request.Context(), c.Param("operation"), ps)
	if err != nil {
		h.fail(c, err)
		return
	}
	renderRecords(c, records)
}

// Health is the /healthz body.
type Health struct {
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
	Pool   pool.Stats `json:"pool"`
}

func (h *Handler) health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, Health{Status: "down", Error: "no database"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res := Health{Status: "up", Pool: h.db.Stats()}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		res.Status, res.Error = "down", err.Error()
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, res)
}

func (h *Handler) metrics(c *gin.Context) {
	mem, ok := h.telemetry.(*telemetry.MemoryTelemetry)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, mem.Snapshot())
}

// fail renders err as an ErrorBean and stops the chain.
func (h *Handler) fail(c *gin.Context, err error) {
	fe, ok := fault.As(err)
	if !ok {
		fe = fault.Wrap(fault.Internal, err)
	}

	bean := ErrorBean{
		Message: h.localizer.Message(lang(c), fe),
		Code:    fe.Kind.Code(),
	}
	if fe.Cause != nil {
		cause := fe.Cause.Error()
		bean.Cause = &cause
	}

	object := c.Param("object")
	if object == "" {
		object = c.Param("operation")
	}
	h.telemetry.RecordError(c.Request.Context(), telemetry.ErrorInfo{Error: err, Code: bean.Code, Object: object})

	status := fe.Kind.Status()
	if status >= http.StatusInternalServerError && !isValidation(fe.Kind) {
		debug.Warn("Request error", "code", bean.Code, "object", object, "error", err, "request_id", c.GetString(requestIDKey))
	} else {
		debug.Debug("Request rejected", "code", bean.Code, "object", object, "error", err)
	}

	render(c, status, bean, nil)
	c.Abort()
}

// isValidation reports kinds caused by the request itself.
func isValidation(kind fault.Kind) bool {
	switch kind {
	case fault.Internal, fault.QueryFailed, fault.SelectFailed, fault.InsertFailed, fault.UpdateFailed,
		fault.DeleteFailed, fault.ExecuteFailed, fault.MetadataFailed, fault.PrimaryKeyLookupFailed:
		return false
	}
	return true
}

var _ Pinger = (database.Adapter)(nil)
