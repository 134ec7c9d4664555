// Package telemetry records statement and connection events.
package telemetry

import (
	"context"
	"time"
)

// Telemetry defines the telemetry adapter interface.
type Telemetry interface {
	// RecordQuery records a statement execution.
	RecordQuery(ctx context.Context, info QueryInfo)

	// RecordError records a failed request.
	RecordError(ctx context.Context, info ErrorInfo)

	// RecordConnection records a connection event.
	RecordConnection(ctx context.Context, info ConnectionInfo)

	// Flush flushes any buffered telemetry data.
	Flush(ctx context.Context) error

	// Close closes the telemetry adapter.
	Close(ctx context.Context) error
}

// QueryInfo contains information about a statement.
type QueryInfo struct {
	// Object is the table or generator operation addressed.
	Object string

	// Verb is the SQL verb (SELECT, INSERT, ...).
	Verb string

	// Duration is how long the statement took.
	Duration time.Duration

	// Success indicates if the statement succeeded.
	Success bool

	// Rows is the number of rows read or affected.
	Rows int64
}

// ErrorInfo contains information about an error.
type ErrorInfo struct {
	// Error is the error that occurred.
	Error error

	// Code is the RSTnnnnE code reported to the caller.
	Code string

	// Object is the table or generator operation involved.
	Object string
}

// ConnectionInfo contains information about a connection event.
type ConnectionInfo struct {
	// Event is the event type (connect, disconnect, error).
	Event string

	// Duration is how long the operation took.
	Duration time.Duration

	// Success indicates if the operation succeeded.
	Success bool
}

// Config holds telemetry configuration.
type Config struct {
	// Type is the telemetry type (noop, memory).
	Type string
}
