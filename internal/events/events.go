// Package events defines structured event types for reconciliation
// run lifecycle operations.
package events

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Type represents the kind of event.
type Type string

const (
	ProbeCompleted  Type = "probe.completed"
	PlanComputed    Type = "plan.computed"
	ApplyStarted    Type = "apply.started"
	ApplyAction     Type = "apply.action"
	ApplyCompleted  Type = "apply.completed"
	GateSkipped     Type = "gate.skipped"
	GateMintCreated Type = "gate.mint_initialized"
	GateFailed      Type = "gate.failed"
)

// Event is a structured event emitted during a reconciliation run.
type Event struct {
	Type          Type           `json:"type"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
	Data          map[string]any `json:"data,omitempty"`
}

// New creates a new event with the given type and correlation ID.
func New(eventType Type, correlationID string) *Event {
	return &Event{
		Type:          eventType,
		Timestamp:     time.Now(),
		CorrelationID: correlationID,
	}
}

// WithData adds a data field to the event and returns it for chaining.
func (e *Event) WithData(key string, value any) *Event {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// JSON returns the event serialized as JSON.
func (e *Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Emitter is the interface for event consumers.
type Emitter interface {
	Emit(event *Event)
}

// NoopEmitter discards all events.
type NoopEmitter struct{}

// Emit implements Emitter by discarding the event.
func (NoopEmitter) Emit(*Event) {}

// CollectorEmitter collects events in memory for testing.
type CollectorEmitter struct {
	Events []*Event
}

// Emit appends the event to the collector.
func (c *CollectorEmitter) Emit(event *Event) {
	c.Events = append(c.Events, event)
}

// LogEmitter writes events to a structured logger.
type LogEmitter struct {
	Logger *slog.Logger
}

// Emit implements Emitter by logging the event at info level.
func (l *LogEmitter) Emit(event *Event) {
	attrs := []any{slog.String("correlation_id", event.CorrelationID)}
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.Logger.Info(string(event.Type), attrs...)
}
