package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/arkhamnet/arkhamctl/internal/events"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
	"github.com/arkhamnet/arkhamctl/internal/spec"
	"github.com/arkhamnet/arkhamctl/internal/telemetry"
)

// runtime bundles the collaborators a command needs, built once from
// the global flags.
type runtime struct {
	client  ledger.Client
	keypair *ledger.Keypair
	desired *spec.Desired
	address ledger.Address
	logger  *slog.Logger
	emitter events.Emitter
	metrics *telemetry.Metrics
	corrID  string
}

// newRuntime resolves flags into a runtime. needsKey controls whether
// a keypair is required; probing commands work without one.
func newRuntime(needsKey bool) (*runtime, error) {
	if configAddr == "" {
		return nil, fmt.Errorf("--config-address is required")
	}
	addr, err := ledger.ParseAddress(configAddr)
	if err != nil {
		return nil, err
	}

	desired, err := spec.Load(specPath)
	if err != nil {
		return nil, err
	}

	var keypair *ledger.Keypair
	if needsKey {
		if keypairPath == "" {
			return nil, fmt.Errorf("--keypair is required")
		}
		keypair, err = ledger.LoadKeypair(keypairPath)
		if err != nil {
			return nil, err
		}
	}

	confirmTimeout, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("parsing --timeout: %w", err)
	}
	client := ledger.NewRPCClient(rpcURL)
	client.ConfirmTimeout = confirmTimeout

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := telemetry.NewLogger(os.Stderr, level)

	corrID := correlationID
	if corrID == "" {
		corrID = telemetry.NewCorrelationID()
	}

	var emitter events.Emitter = events.NoopEmitter{}
	if verbose {
		emitter = &events.LogEmitter{Logger: logger}
	}

	return &runtime{
		client:  client,
		keypair: keypair,
		desired: desired,
		address: addr,
		logger:  telemetry.RunLogger(logger, corrID, addr.String()),
		emitter: emitter,
		metrics: telemetry.NewMetrics(),
		corrID:  corrID,
	}, nil
}

// flushMetrics writes the run metrics file when requested.
func (rt *runtime) flushMetrics() {
	if metricsFile == "" {
		return
	}
	if err := rt.metrics.WriteFile(metricsFile); err != nil {
		rt.logger.Warn("writing metrics file", slog.String("path", metricsFile), slog.Any("error", err))
	}
}
