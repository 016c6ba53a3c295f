// Package probe reads and classifies the on-ledger state of protocol
// resources.
package probe

import (
	"context"
	"fmt"

	"github.com/arkhamnet/arkhamctl/internal/codec"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

// Kind classifies an observed resource state.
type Kind string

const (
	// Absent: no bytes are stored at the address.
	Absent Kind = "absent"
	// Incompatible: bytes exist but do not match a schema this engine
	// understands.
	Incompatible Kind = "incompatible"
	// Compatible: the record decoded cleanly.
	Compatible Kind = "compatible"
)

// State is the three-way result of probing a config address. A fresh
// State is produced on every probe; it is never cached across passes.
type State struct {
	Kind   Kind
	Reason string             // set when Kind is Incompatible
	Config *codec.ConfigState // set when Kind is Compatible
}

// Prober performs read-only probes against the ledger. Probing needs
// no authority and has no retry policy of its own; retrying is the
// caller's decision at whole-run granularity.
type Prober struct {
	Client ledger.Client
}

// Probe fetches and decodes the config record at addr. Transport
// failures are the only error path; undecodable bytes are data.
func (p *Prober) Probe(ctx context.Context, addr ledger.Address) (State, error) {
	data, found, err := p.Client.FetchRaw(ctx, addr)
	if err != nil {
		return State{}, fmt.Errorf("probing %s: %w", addr, err)
	}
	if !found {
		return State{Kind: Absent}, nil
	}
	cfg, reason := codec.DecodeConfig(data)
	if cfg == nil {
		return State{Kind: Incompatible, Reason: reason}, nil
	}
	return State{Kind: Compatible, Config: cfg}, nil
}

// ProbeMint fetches and decodes the mint record at addr using the same
// three-way classification.
func (p *Prober) ProbeMint(ctx context.Context, addr ledger.Address) (State, error) {
	data, found, err := p.Client.FetchRaw(ctx, addr)
	if err != nil {
		return State{}, fmt.Errorf("probing mint %s: %w", addr, err)
	}
	if !found {
		return State{Kind: Absent}, nil
	}
	if _, reason := codec.DecodeMint(data); reason != "" {
		return State{Kind: Incompatible, Reason: reason}, nil
	}
	return State{Kind: Compatible}, nil
}
