package telemetry

import (
	"context"
	"sync"
	"time"
)

// Timing summarizes durations of one label.
type Timing struct {
	Count int64         `json:"count"`
	Total time.Duration `json:"totalNanos"`
	Max   time.Duration `json:"maxNanos"`
}

// Metrics is a snapshot of the in-process counters.
type Metrics struct {
	Queries     map[string]int64  `json:"queries"`
	Errors      map[string]int64  `json:"errors"`
	Durations   map[string]Timing `json:"durations"`
	Connections map[string]int64  `json:"connections"`
}

// MemoryTelemetry keeps counters in process for the /metrics endpoint.
type MemoryTelemetry struct {
	mu          sync.RWMutex
	queries     map[string]int64
	errors      map[string]int64
	durations   map[string]Timing
	connections map[string]int64
}

// NewMemoryTelemetry creates an empty collector.
func NewMemoryTelemetry() *MemoryTelemetry {
	return &MemoryTelemetry{
		queries:     make(map[string]int64),
		errors:      make(map[string]int64),
		durations:   make(map[string]Timing),
		connections: make(map[string]int64),
	}
}

// RecordQuery counts the statement under "object verb status".
func (m *MemoryTelemetry) RecordQuery(ctx context.Context, info QueryInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	label := info.Object + " " + info.Verb
	status := "success"
	if !info.Success {
		status = "error"
	}
	m.queries[label+" "+status]++

	t := m.durations[label]
	t.Count++
	t.Total += info.Duration
	if info.Duration > t.Max {
		t.Max = info.Duration
	}
	m.durations[label] = t
}

// RecordError counts the error under its code.
func (m *MemoryTelemetry) RecordError(ctx context.Context, info ErrorInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errors[info.Code]++
}

// RecordConnection counts the event.
func (m *MemoryTelemetry) RecordConnection(ctx context.Context, info ConnectionInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connections[info.Event]++
}

// Flush does nothing; counters are updated on each record.
func (m *MemoryTelemetry) Flush(ctx context.Context) error {
	return nil
}

// Close does nothing.
func (m *MemoryTelemetry) Close(ctx context.Context) error {
	return nil
}

// Snapshot returns a copy of the counters.
func (m *MemoryTelemetry) Snapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := Metrics{
		Queries:     make(map[string]int64, len(m.queries)),
		Errors:      make(map[string]int64, len(m.errors)),
		Durations:   make(map[string]Timing, len(m.durations)),
		Connections: make(map[string]int64, len(m.connections)),
	}
	for k, v := range m.queries {
		out.Queries[k] = v
	}
	for k, v := range m.errors {
		out.Errors[k] = v
	}
	for k, v := range m.durations {
		out.Durations[k] = v
	}
	for k, v := range m.connections {
		out.Connections[k] = v
	}
	return out
}

// Ensure MemoryTelemetry implements Telemetry interface.
var _ Telemetry = (*MemoryTelemetry)(nil)
