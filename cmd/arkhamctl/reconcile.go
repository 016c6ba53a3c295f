package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkhamnet/arkhamctl/internal/apply"
	"github.com/arkhamnet/arkhamctl/internal/events"
	"github.com/arkhamnet/arkhamctl/internal/plan"
	"github.com/arkhamnet/arkhamctl/internal/probe"
)

// fatalError marks failures where retrying the run cannot succeed:
// authority mismatches, stale links, sequencing violations, rejected
// transactions.
type fatalError struct{ err error }

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func fatal(err error) error { return &fatalError{err: err} }

func newReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Bring the protocol config and its token mint to the desired state",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(true)
			if err != nil {
				return err
			}
			defer rt.flushMetrics()

			ctx := cmd.Context()
			backoff := 2 * time.Second
			for attempt := 0; ; attempt++ {
				err = runReconcile(ctx, rt)
				if err == nil {
					rt.metrics.RecordRun("success")
					fmt.Println("Reconciliation complete: config and mint match the desired spec.")
					return nil
				}
				var fe *fatalError
				if errors.As(err, &fe) || attempt >= retries {
					break
				}
				rt.logger.Warn("run failed, retrying",
					slog.Int("attempt", attempt+1),
					slog.Any("error", err))
				select {
				case <-ctx.Done():
					err = ctx.Err()
				case <-time.After(backoff):
					backoff *= 2
					continue
				}
				break
			}
			rt.metrics.RecordRun("failure")
			return err
		},
	}
	return cmd
}

// runReconcile performs one full pass: probe, plan, execute, mint
// gate. It holds no state between invocations; a retry starts from a
// fresh probe.
func runReconcile(ctx context.Context, rt *runtime) error {
	prober := &probe.Prober{Client: rt.client}

	start := time.Now()
	observed, err := prober.Probe(ctx, rt.address)
	if err != nil {
		return err
	}
	rt.metrics.ObserveProbe(time.Since(start))
	rt.emitter.Emit(events.New(events.ProbeCompleted, rt.corrID).
		WithData("address", rt.address.String()).
		WithData("state", string(observed.Kind)))

	p := plan.Compute(rt.desired, observed, rt.keypair.Address())
	rt.emitter.Emit(events.New(events.PlanComputed, rt.corrID).
		WithData("address", rt.address.String()).
		WithData("spec_fingerprint", rt.desired.Fingerprint()).
		WithData("action_count", len(p.Actions)))
	rt.logger.Debug("plan computed",
		slog.Int("actions", len(p.Actions)),
		slog.Bool("has_changes", p.HasChanges))

	executor := &apply.Executor{
		Client:        rt.client,
		Keypair:       rt.keypair,
		ConfigAddress: rt.address,
		Emitter:       rt.emitter,
		CorrelationID: rt.corrID,
	}

	if p.HasChanges {
		results := executor.Execute(ctx, p)
		if err := checkResults(rt, results); err != nil {
			return err
		}
	}

	gate := &apply.MintGate{
		Prober:        prober,
		Executor:      executor,
		ConfigAddress: rt.address,
		Emitter:       rt.emitter,
		CorrelationID: rt.corrID,
	}
	outcome, results, err := gate.Provision(ctx)
	if rerr := checkResults(rt, results); rerr != nil {
		return rerr
	}
	if err != nil {
		var seq *apply.SequencingError
		var stale *apply.StaleLinkError
		if errors.As(err, &seq) || errors.As(err, &stale) {
			return fatal(err)
		}
		return err
	}
	rt.logger.Debug("mint gate passed", slog.String("outcome", string(outcome)))
	return nil
}

// checkResults records action metrics and converts the first failed
// result into an error, fatal when retrying cannot help.
func checkResults(rt *runtime, results []apply.Result) error {
	for _, r := range results {
		rt.metrics.RecordAction(string(r.Action), string(r.Status))
	}
	for _, r := range results {
		if r.Status != apply.StatusFailed {
			continue
		}
		err := fmt.Errorf("action %s on %s failed (%s): %s",
			r.Action, rt.address, r.Cause, r.Err)
		switch r.Cause {
		case apply.CauseAuthorityMismatch, apply.CauseRejected:
			return fatal(err)
		default:
			// Transient and timeout causes are retriable at whole-run
			// granularity: the next attempt re-probes and re-plans.
			return err
		}
	}
	return nil
}
