package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/arkhamnet/arkhamctl/internal/codec"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
	"github.com/arkhamnet/arkhamctl/internal/testutil"
)

func TestProbeAbsent(t *testing.T) {
	client := ledger.NewMemoryClient()
	p := &Prober{Client: client}

	st, err := p.Probe(context.Background(), testutil.Addr(1))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if st.Kind != Absent {
		t.Errorf("Kind = %s, want %s", st.Kind, Absent)
	}
}

func TestProbeIncompatible(t *testing.T) {
	addr := testutil.Addr(1)
	client := ledger.NewMemoryClient()
	client.SetAccount(addr, []byte{0xde, 0xad, 0xbe, 0xef})
	p := &Prober{Client: client}

	st, err := p.Probe(context.Background(), addr)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if st.Kind != Incompatible {
		t.Fatalf("Kind = %s, want %s", st.Kind, Incompatible)
	}
	if st.Reason == "" {
		t.Error("incompatible state should carry a reason")
	}
	if st.Config != nil {
		t.Error("incompatible state should not carry a config")
	}
}

func TestProbeCompatible(t *testing.T) {
	addr := testutil.Addr(1)
	state := codec.ConfigState{
		SchemaVersion:  codec.ConfigSchemaVersion,
		Authority:      testutil.Addr(2),
		ProtocolFeeBps: 250,
	}
	client := ledger.NewMemoryClient()
	client.SetAccount(addr, codec.EncodeConfig(state))
	p := &Prober{Client: client}

	st, err := p.Probe(context.Background(), addr)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if st.Kind != Compatible {
		t.Fatalf("Kind = %s, want %s", st.Kind, Compatible)
	}
	if st.Config.ProtocolFeeBps != 250 {
		t.Errorf("ProtocolFeeBps = %d", st.Config.ProtocolFeeBps)
	}
}

func TestProbePropagatesTransportErrors(t *testing.T) {
	client := ledger.NewMemoryClient()
	client.FetchErr = errors.New("connection refused")
	p := &Prober{Client: client}

	if _, err := p.Probe(context.Background(), testutil.Addr(1)); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestProbeMint(t *testing.T) {
	addr := testutil.Addr(5)
	client := ledger.NewMemoryClient()
	p := &Prober{Client: client}

	st, err := p.ProbeMint(context.Background(), addr)
	if err != nil {
		t.Fatalf("ProbeMint: %v", err)
	}
	if st.Kind != Absent {
		t.Errorf("Kind = %s, want %s", st.Kind, Absent)
	}

	client.SetAccount(addr, codec.EncodeMint(codec.MintState{
		SchemaVersion: codec.MintSchemaVersion,
		Authority:     testutil.Addr(2),
		Decimals:      9,
	}))
	st, err = p.ProbeMint(context.Background(), addr)
	if err != nil {
		t.Fatalf("ProbeMint: %v", err)
	}
	if st.Kind != Compatible {
		t.Errorf("Kind = %s, want %s", st.Kind, Compatible)
	}

	client.SetAccount(addr, []byte{1, 2, 3})
	st, err = p.ProbeMint(context.Background(), addr)
	if err != nil {
		t.Fatalf("ProbeMint: %v", err)
	}
	if st.Kind != Incompatible {
		t.Errorf("Kind = %s, want %s", st.Kind, Incompatible)
	}
}
