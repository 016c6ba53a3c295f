package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arkhamnet/arkhamctl/internal/codec"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

var (
	oracleAddr   = ledger.Address{0x11}
	treasuryAddr = ledger.Address{0x22}
)

func minimalSpec() *Desired {
	return &Desired{OracleAuthority: oracleAddr.String()}
}

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arkham.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeSpec(t, `
base_rate_per_mb: 5000
protocol_fee_bps: 250
tier_thresholds: [1000, 10000, 100000]
tier_multipliers: [10000, 12500, 15000]
geo_premiums:
  - region_code: 1
    premium_bps: 500
oracle_authority: `+oracleAddr.String()+`
treasury: `+treasuryAddr.String()+`
`)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.BaseRatePerMB == nil || *d.BaseRatePerMB != 5000 {
		t.Errorf("BaseRatePerMB = %v", d.BaseRatePerMB)
	}
	if d.TokensPer5GB != nil {
		t.Error("unset tokens_per_5gb decoded as set")
	}
	if len(d.GeoPremiums) != 1 || d.GeoPremiums[0].PremiumBps != 500 {
		t.Errorf("GeoPremiums = %v", d.GeoPremiums)
	}
}

func TestLoadRejectsInvalidSpec(t *testing.T) {
	path := writeSpec(t, `
protocol_fee_bps: 20000
oracle_authority: `+oracleAddr.String()+`
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for fee over 10000 bps")
	}
}

func TestValidate(t *testing.T) {
	fee := uint16(20000)
	mult := uint16(60000)
	cases := []struct {
		name   string
		mutate func(*Desired)
	}{
		{"missing oracle", func(d *Desired) { d.OracleAuthority = "" }},
		{"bad oracle address", func(d *Desired) { d.OracleAuthority = "not-base58-0OIl" }},
		{"fee too high", func(d *Desired) { d.ProtocolFeeBps = &fee }},
		{"thresholds without multipliers", func(d *Desired) { d.TierThresholds = []uint64{1} }},
		{"tier length mismatch", func(d *Desired) {
			d.TierThresholds = []uint64{1, 2}
			d.TierMultipliers = []uint16{100}
		}},
		{"descending thresholds", func(d *Desired) {
			d.TierThresholds = []uint64{10, 5}
			d.TierMultipliers = []uint16{100, 200}
		}},
		{"multiplier too high", func(d *Desired) {
			d.TierThresholds = []uint64{1}
			d.TierMultipliers = []uint16{mult}
		}},
		{"duplicate region", func(d *Desired) {
			d.GeoPremiums = []codec.GeoPremium{{RegionCode: 1}, {RegionCode: 1}}
		}},
		{"premium too high", func(d *Desired) {
			d.GeoPremiums = []codec.GeoPremium{{RegionCode: 1, PremiumBps: 60000}}
		}},
		{"too many regions", func(d *Desired) {
			for i := 0; i <= codec.MaxGeoPremiums; i++ {
				d.GeoPremiums = append(d.GeoPremiums, codec.GeoPremium{RegionCode: uint8(i)})
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := minimalSpec()
			tc.mutate(d)
			if err := d.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := minimalSpec().Validate(); err != nil {
		t.Errorf("minimal spec should validate: %v", err)
	}
}

func TestResolveAppliesDefaults(t *testing.T) {
	authority := ledger.Address{0x33}
	s := minimalSpec().Resolve(authority)

	if s.Authority != authority {
		t.Errorf("Authority = %v", s.Authority)
	}
	if s.Treasury != authority {
		t.Error("unset treasury should default to the authority")
	}
	if s.ReputationUpdater != authority {
		t.Error("unset reputation updater should default to the authority")
	}
	if !s.TokenMint.IsZero() {
		t.Error("fresh config must carry the null-identity mint link")
	}
	if s.BaseRatePerMB != DefaultBaseRatePerMB {
		t.Errorf("BaseRatePerMB = %d, want default %d", s.BaseRatePerMB, DefaultBaseRatePerMB)
	}
	if s.OracleAuthority != oracleAddr {
		t.Errorf("OracleAuthority = %v", s.OracleAuthority)
	}
}

func TestResolvePrefersExplicitValues(t *testing.T) {
	rate := uint64(42)
	d := minimalSpec()
	d.BaseRatePerMB = &rate
	d.Treasury = treasuryAddr.String()

	s := d.Resolve(ledger.Address{0x33})
	if s.BaseRatePerMB != 42 {
		t.Errorf("BaseRatePerMB = %d", s.BaseRatePerMB)
	}
	if s.Treasury != treasuryAddr {
		t.Errorf("Treasury = %v", s.Treasury)
	}
}

func TestFingerprint(t *testing.T) {
	a := minimalSpec()
	b := minimalSpec()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical specs should share a fingerprint")
	}
	rate := uint64(9)
	b.BaseRatePerMB = &rate
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("differing specs should not share a fingerprint")
	}
}
