package apply

import (
	"context"
	"fmt"

	"github.com/arkhamnet/arkhamctl/internal/events"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
	"github.com/arkhamnet/arkhamctl/internal/plan"
	"github.com/arkhamnet/arkhamctl/internal/probe"
)

// GateOutcome summarizes a mint gate pass.
type GateOutcome string

const (
	// GateSkipped: the mint already exists and is healthy.
	GateSkipped GateOutcome = "skipped"
	// GateInitialized: the mint was freshly initialized this run.
	GateInitialized GateOutcome = "initialized"
	// GateFailed: the initialize_mint action was attempted and failed.
	GateFailed GateOutcome = "failed"
)

// MintGate authorizes and performs the dependent mint's provisioning
// pass. The config record's token-mint link is the sole signal: it is
// re-read from the ledger on every pass, never taken from memory,
// because memory cannot reflect a possibly failed prior run.
type MintGate struct {
	Prober        *probe.Prober
	Executor      *Executor
	ConfigAddress ledger.Address
	Emitter       events.Emitter
	CorrelationID string
}

// Provision re-probes the config and, if the mint link is still the
// null-identity sentinel, executes a single initialize_mint action.
// A set link is verified independently: a healthy mint is skipped, a
// missing one is a stale-link anomaly surfaced for manual inspection.
func (g *MintGate) Provision(ctx context.Context) (GateOutcome, []Result, error) {
	emitter := g.Emitter
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}

	// Fresh probe: a pre-execution snapshot may not reflect a just
	// confirmed initialize.
	st, err := g.Prober.Probe(ctx, g.ConfigAddress)
	if err != nil {
		return GateFailed, nil, err
	}
	if st.Kind != probe.Compatible {
		gateErr := &SequencingError{Address: g.ConfigAddress, Observed: st.Kind}
		emitter.Emit(events.New(events.GateFailed, g.CorrelationID).
			WithData("address", g.ConfigAddress.String()).
			WithData("error", gateErr.Error()))
		return GateFailed, nil, gateErr
	}

	link := st.Config.TokenMint
	if !link.IsZero() {
		mintState, err := g.Prober.ProbeMint(ctx, link)
		if err != nil {
			return GateFailed, nil, err
		}
		switch mintState.Kind {
		case probe.Compatible:
			emitter.Emit(events.New(events.GateSkipped, g.CorrelationID).
				WithData("address", g.ConfigAddress.String()).
				WithData("mint", link.String()))
			return GateSkipped, nil, nil
		case probe.Absent:
			gateErr := &StaleLinkError{Config: g.ConfigAddress, Mint: link}
			emitter.Emit(events.New(events.GateFailed, g.CorrelationID).
				WithData("address", g.ConfigAddress.String()).
				WithData("mint", link.String()).
				WithData("error", gateErr.Error()))
			return GateFailed, nil, gateErr
		default:
			gateErr := fmt.Errorf(
				"config %s links mint %s but its record is incompatible (%s); manual intervention required",
				g.ConfigAddress, link, mintState.Reason)
			emitter.Emit(events.New(events.GateFailed, g.CorrelationID).
				WithData("address", g.ConfigAddress.String()).
				WithData("mint", link.String()).
				WithData("error", gateErr.Error()))
			return GateFailed, nil, gateErr
		}
	}

	mintPlan := &plan.Plan{
		HasChanges: true,
		Actions: []plan.Action{{
			Type:   plan.ActionInitializeMint,
			Reason: "config has no mint linked",
		}},
	}
	results := g.Executor.Execute(ctx, mintPlan)
	if len(results) == 0 || results[0].Status != StatusConfirmed {
		detail := "no action attempted"
		if len(results) > 0 {
			detail = results[0].Err
		}
		return GateFailed, results, fmt.Errorf(
			"initializing mint for config %s: %s", g.ConfigAddress, detail)
	}

	emitter.Emit(events.New(events.GateMintCreated, g.CorrelationID).
		WithData("address", g.ConfigAddress.String()).
		WithData("mint", ledger.DeriveMintAddress(g.ConfigAddress).String()).
		WithData("tx_id", results[0].TxID))
	return GateInitialized, results, nil
}
