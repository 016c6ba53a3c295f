// Package spec defines the desired protocol configuration supplied by
// the operator and loaded from a YAML file.
package spec

import (
	"fmt"
	"os"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/arkhamnet/arkhamctl/internal/codec"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

// Limits enforced by the on-ledger program. Specs violating them are
// rejected before any remote call.
const (
	MaxFeeBps        = 10000
	MaxMultiplierBps = 50000
	MaxPremiumBps    = 50000
)

// Defaults applied when a field is left unset. Defaults apply only
// when initializing a fresh config; on update an unset field always
// means "leave unchanged".
var (
	DefaultBaseRatePerMB  uint64 = 1000
	DefaultProtocolFeeBps uint16 = 250
	DefaultTierThresholds        = []uint64{1_000, 10_000, 100_000}
	DefaultTierMultipliers       = []uint16{10_000, 12_500, 15_000}
	DefaultTokensPer5GB   uint64 = 5_000_000_000
)

// Desired is the target protocol configuration. Pointer and slice
// fields distinguish "unset" from "set to a value": unset fields are
// defaulted on initialize and preserved on update.
type Desired struct {
	BaseRatePerMB     *uint64            `yaml:"base_rate_per_mb"`
	ProtocolFeeBps    *uint16            `yaml:"protocol_fee_bps"`
	TierThresholds    []uint64           `yaml:"tier_thresholds"`
	TierMultipliers   []uint16           `yaml:"tier_multipliers"`
	TokensPer5GB      *uint64            `yaml:"tokens_per_5gb"`
	GeoPremiums       []codec.GeoPremium `yaml:"geo_premiums"`
	OracleAuthority   string             `yaml:"oracle_authority"`
	Treasury          string             `yaml:"treasury"`
	ReputationUpdater string             `yaml:"reputation_updater"`
}

// Load reads and validates a desired spec from a YAML file.
func Load(path string) (*Desired, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading spec: %w", err)
	}
	var d Desired
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("loading spec %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("spec %s: %w", path, err)
	}
	return &d, nil
}

// Validate checks the spec against the program's limits.
func (d *Desired) Validate() error {
	if d.OracleAuthority == "" {
		return fmt.Errorf("oracle_authority is required")
	}
	if _, err := ledger.ParseAddress(d.OracleAuthority); err != nil {
		return fmt.Errorf("oracle_authority: %w", err)
	}
	if d.Treasury != "" {
		if _, err := ledger.ParseAddress(d.Treasury); err != nil {
			return fmt.Errorf("treasury: %w", err)
		}
	}
	if d.ReputationUpdater != "" {
		if _, err := ledger.ParseAddress(d.ReputationUpdater); err != nil {
			return fmt.Errorf("reputation_updater: %w", err)
		}
	}
	if d.ProtocolFeeBps != nil && *d.ProtocolFeeBps > MaxFeeBps {
		return fmt.Errorf("protocol_fee_bps %d exceeds maximum %d", *d.ProtocolFeeBps, MaxFeeBps)
	}
	if (d.TierThresholds == nil) != (d.TierMultipliers == nil) {
		return fmt.Errorf("tier_thresholds and tier_multipliers must be set together")
	}
	if d.TierThresholds != nil {
		if len(d.TierThresholds) != len(d.TierMultipliers) {
			return fmt.Errorf("tier table mismatch: %d thresholds, %d multipliers",
				len(d.TierThresholds), len(d.TierMultipliers))
		}
		for i := 1; i < len(d.TierThresholds); i++ {
			if d.TierThresholds[i] < d.TierThresholds[i-1] {
				return fmt.Errorf("tier_thresholds must be ascending")
			}
		}
		for _, m := range d.TierMultipliers {
			if m > MaxMultiplierBps {
				return fmt.Errorf("tier multiplier %d exceeds maximum %d", m, MaxMultiplierBps)
			}
		}
	}
	if len(d.GeoPremiums) > codec.MaxGeoPremiums {
		return fmt.Errorf("geo_premiums has %d entries, maximum is %d", len(d.GeoPremiums), codec.MaxGeoPremiums)
	}
	seen := make(map[uint8]bool)
	for _, g := range d.GeoPremiums {
		if seen[g.RegionCode] {
			return fmt.Errorf("duplicate region code %d in geo_premiums", g.RegionCode)
		}
		seen[g.RegionCode] = true
		if g.PremiumBps > MaxPremiumBps {
			return fmt.Errorf("geo premium %d exceeds maximum %d", g.PremiumBps, MaxPremiumBps)
		}
	}
	return nil
}

// Resolve produces the full field set an Initialize action carries,
// applying defaults for unset fields. The signing authority becomes
// the config authority and the fallback treasury and reputation
// updater, matching the program's initialization behavior.
func (d *Desired) Resolve(authority ledger.Address) codec.ConfigState {
	s := codec.ConfigState{
		SchemaVersion:   codec.ConfigSchemaVersion,
		Authority:       authority,
		TokenMint:       ledger.ZeroAddress,
		BaseRatePerMB:   DefaultBaseRatePerMB,
		ProtocolFeeBps:  DefaultProtocolFeeBps,
		TierThresholds:  append([]uint64(nil), DefaultTierThresholds...),
		TierMultipliers: append([]uint16(nil), DefaultTierMultipliers...),
		TokensPer5GB:    DefaultTokensPer5GB,
	}
	s.Treasury = authority
	s.ReputationUpdater = authority

	s.OracleAuthority, _ = ledger.ParseAddress(d.OracleAuthority)
	if d.Treasury != "" {
		s.Treasury, _ = ledger.ParseAddress(d.Treasury)
	}
	if d.ReputationUpdater != "" {
		s.ReputationUpdater, _ = ledger.ParseAddress(d.ReputationUpdater)
	}
	if d.BaseRatePerMB != nil {
		s.BaseRatePerMB = *d.BaseRatePerMB
	}
	if d.ProtocolFeeBps != nil {
		s.ProtocolFeeBps = *d.ProtocolFeeBps
	}
	if d.TierThresholds != nil {
		s.TierThresholds = append([]uint64(nil), d.TierThresholds...)
		s.TierMultipliers = append([]uint16(nil), d.TierMultipliers...)
	}
	if d.TokensPer5GB != nil {
		s.TokensPer5GB = *d.TokensPer5GB
	}
	s.GeoPremiums = codec.SortedGeoPremiums(d.GeoPremiums)
	return s
}

// Fingerprint returns a short blake3 digest of the spec, used in plan
// output and events to identify which desired configuration a run was
// driven by.
func (d *Desired) Fingerprint() string {
	data, err := yaml.Marshal(d)
	if err != nil {
		return "unknown"
	}
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:8])
}
