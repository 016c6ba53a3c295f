// Package plan implements the desired-state diff engine for the
// protocol config reconciler.
package plan

import (
	"slices"

	"github.com/arkhamnet/arkhamctl/internal/codec"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
	"github.com/arkhamnet/arkhamctl/internal/probe"
	"github.com/arkhamnet/arkhamctl/internal/spec"
)

// ActionType represents the kind of corrective action.
type ActionType string

const (
	ActionInitialize     ActionType = "initialize"
	ActionUpdate         ActionType = "update"
	ActionClose          ActionType = "close"
	ActionInitializeMint ActionType = "initialize_mint"
)

// Action describes a single planned change. It is pure data; nothing
// happens until the executor runs it.
type Action struct {
	Type   ActionType
	Reason string
	// Init carries the full resolved field set for ActionInitialize.
	Init *codec.ConfigState
	// Delta carries only the changed fields for ActionUpdate.
	Delta *codec.ConfigDelta
}

// Plan is an ordered set of actions derived from comparing desired
// against observed state.
type Plan struct {
	Actions    []Action
	HasChanges bool
}

// Compute compares the desired spec against the probed state of the
// config account and produces a plan. It is a pure function: no
// ledger access, no side effects. authority is the signing identity
// that would own a freshly initialized config.
//
// The incompatible path plans a destructive close-and-reinitialize.
// Callers must confirm no dependent mint references the account before
// executing it; Compute itself does not probe for dependents.
func Compute(desired *spec.Desired, observed probe.State, authority ledger.Address) *Plan {
	switch observed.Kind {
	case probe.Absent:
		full := desired.Resolve(authority)
		return &Plan{
			HasChanges: true,
			Actions: []Action{{
				Type:   ActionInitialize,
				Reason: "config account does not exist",
				Init:   &full,
			}},
		}

	case probe.Incompatible:
		full := desired.Resolve(authority)
		return &Plan{
			HasChanges: true,
			Actions: []Action{
				{
					Type:   ActionClose,
					Reason: "existing account is incompatible: " + observed.Reason,
				},
				{
					Type:   ActionInitialize,
					Reason: "reinitialize after closing incompatible account",
					Init:   &full,
				},
			},
		}

	case probe.Compatible:
		delta := computeDelta(desired, observed.Config)
		if delta == nil {
			return &Plan{}
		}
		return &Plan{
			HasChanges: true,
			Actions: []Action{{
				Type:   ActionUpdate,
				Reason: "config fields differ from desired",
				Delta:  delta,
			}},
		}
	}
	return &Plan{}
}

// computeDelta returns the per-field changes needed to move current to
// desired, or nil when nothing differs. Unset desired fields never
// enter the delta: on update they mean "leave unchanged", never "reset
// to default". The treasury is init-only and is never diffed.
func computeDelta(d *spec.Desired, current *codec.ConfigState) *codec.ConfigDelta {
	var delta codec.ConfigDelta

	if d.BaseRatePerMB != nil && *d.BaseRatePerMB != current.BaseRatePerMB {
		delta.BaseRatePerMB = d.BaseRatePerMB
	}
	if d.ProtocolFeeBps != nil && *d.ProtocolFeeBps != current.ProtocolFeeBps {
		delta.ProtocolFeeBps = d.ProtocolFeeBps
	}
	if d.TierThresholds != nil {
		sameThr := slices.Equal(d.TierThresholds, current.TierThresholds)
		sameMul := slices.Equal(d.TierMultipliers, current.TierMultipliers)
		// The tier table updates as a pair: the program keeps the two
		// vectors in lockstep.
		if !sameThr || !sameMul {
			delta.TierThresholds = d.TierThresholds
			delta.TierMultipliers = d.TierMultipliers
		}
	}
	if d.TokensPer5GB != nil && *d.TokensPer5GB != current.TokensPer5GB {
		delta.TokensPer5GB = d.TokensPer5GB
	}
	if d.GeoPremiums != nil {
		want := codec.SortedGeoPremiums(d.GeoPremiums)
		have := codec.SortedGeoPremiums(current.GeoPremiums)
		if !slices.Equal(want, have) {
			delta.GeoPremiums = want
		}
	}
	if d.OracleAuthority != "" {
		want, err := ledger.ParseAddress(d.OracleAuthority)
		if err == nil && want != current.OracleAuthority {
			delta.OracleAuthority = &want
		}
	}
	if d.ReputationUpdater != "" {
		want, err := ledger.ParseAddress(d.ReputationUpdater)
		if err == nil && want != current.ReputationUpdater {
			delta.ReputationUpdater = &want
		}
	}

	if delta.IsEmpty() {
		return nil
	}
	return &delta
}
