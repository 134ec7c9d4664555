package rest

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// Route is one registered endpoint.
type Route struct {
	Method string
	Path   string
}

// NewRouter builds the gin engine serving h under basePath.
func NewRouter(h *Handler, basePath string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog(), h.Recovery(), h.Language())
	r.HandleMethodNotAllowed = true

	base := r.Group(strings.TrimSuffix(basePath, "/"))
	base.GET("/healthz", h.health)
	base.GET("/metrics", h.metrics)

	data := base.Group("/data")
	data.GET("/table/:object", h.getTable)
	data.POST("/table/:object", h.postTable)
	data.PUT("/table/:object", h.putTable)
	data.DELETE("/table/:object", h.deleteTable)
	data.GET("/query/:object", h.getQuery)
	data.POST("/query/:object", h.postQuery)
	data.GET("/info/:operation", h.getInfo)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorBean{Message: "not found: " + c.Request.URL.Path, Code: "RST0000E"})
	})
	return r
}

// Routes lists the endpoints of engine, sorted by path then method.
func Routes(engine *gin.Engine) []Route {
	var out []Route
	for _, ri := range engine.Routes() {
		out = append(out, Route{Method: ri.Method, Path: ri.Path})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}
