// Package telemetry provides structured logging and run metrics for
// the reconciliation CLI.
package telemetry

import (
	"io"
	"log/slog"
	"os"

	"github.com/oklog/ulid/v2"
)

// NewLogger creates a structured JSON logger with the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// NewCorrelationID mints a fresh correlation ID for a run.
func NewCorrelationID() string {
	return ulid.Make().String()
}

// RunLogger returns a logger with run-scoped fields.
func RunLogger(logger *slog.Logger, correlationID, address string) *slog.Logger {
	return logger.With(
		slog.String("correlation_id", correlationID),
		slog.String("address", address),
	)
}
