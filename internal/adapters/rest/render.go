package rest

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// MIMEMsgpack is the MessagePack media type.
const MIMEMsgpack = "application/x-msgpack"

var offered = []string{binding.MIMEJSON, binding.MIMEXML, binding.MIMEXML2, MIMEMsgpack}

// msgpackRender writes a MessagePack body.
type msgpackRender struct {
	data interface{}
}

func (r msgpackRender) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	return msgpack.NewEncoder(w).Encode(r.data)
}

func (r msgpackRender) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", MIMEMsgpack)
}

// recordList is the XML form of a record array.
type recordList struct {
	XMLName xml.Name        `xml:"records"`
	Records []domain.Record `xml:"record"`
}

// ErrorBean is the body of every error response.
type ErrorBean struct {
	XMLName xml.Name `json:"-" xml:"errorBean" msgpack:"-"`
	Message string   `json:"message" xml:"message" msgpack:"message"`
	Code    string   `json:"code" xml:"code" msgpack:"code"`
	Cause   *string  `json:"cause" xml:"cause,omitempty" msgpack:"cause"`
}

// render writes body in the format the client accepts, JSON by default.
// xmlBody replaces body for XML when the two differ.
func render(c *gin.Context, status int, body, xmlBody interface{}) {
	switch c.NegotiateFormat(offered...) {
	case binding.MIMEXML, binding.MIMEXML2:
		if xmlBody == nil {
			xmlBody = body
		}
		c.XML(status, xmlBody)
	case MIMEMsgpack:
		c.Render(status, msgpackRender{data: body})
	default:
		c.JSON(status, body)
	}
}

func renderRecords(c *gin.Context, records []domain.Record) {
	if records == nil {
		records = []domain.Record{}
	}
	render(c, http.StatusOK, records, recordList{Records: records})
}

func renderOutcome(c *gin.Context, outcome *domain.Outcome) {
	render(c, http.StatusOK, outcome, nil)
}
