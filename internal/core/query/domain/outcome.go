package domain

import (
	"encoding/xml"
	"time"
)

// Outcome is the response to a data-modifying statement.
type Outcome struct {
	XMLName xml.Name `json:"-" xml:"beanResponse" msgpack:"-"`

	// Query is the verb of the executed statement.
	Query Verb `json:"query" xml:"query" msgpack:"query"`

	// Result is the number of affected rows.
	Result int64 `json:"result" xml:"result" msgpack:"result"`

	// Timer is the execution time in milliseconds.
	Timer int64 `json:"timer" xml:"timer" msgpack:"timer"`

	// Keys are the generated keys reported by the database, if any.
	Keys []Record `json:"keys,omitempty" xml:"keys>record,omitempty" msgpack:"keys,omitempty"`
}

// NewOutcome builds an outcome for sql.
func NewOutcome(sql string, affected int64, elapsed time.Duration, keys []Record) *Outcome {
	return &Outcome{
		Query:  VerbOf(sql),
		Result: affected,
		Timer:  elapsed.Milliseconds(),
		Keys:   keys,
	}
}
