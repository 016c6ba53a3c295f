package codec

import (
	"testing"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

func addr(b byte) ledger.Address {
	var a ledger.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func sampleConfig() ConfigState {
	return ConfigState{
		SchemaVersion:     ConfigSchemaVersion,
		Authority:         addr(1),
		Treasury:          addr(2),
		TokenMint:         ledger.ZeroAddress,
		OracleAuthority:   addr(3),
		ReputationUpdater: addr(4),
		BaseRatePerMB:     5000,
		ProtocolFeeBps:    250,
		TierThresholds:    []uint64{1_000, 10_000, 100_000},
		TierMultipliers:   []uint16{10_000, 12_500, 15_000},
		TokensPer5GB:      5_000_000_000,
		GeoPremiums: []GeoPremium{
			{RegionCode: 7, PremiumBps: 500},
			{RegionCode: 2, PremiumBps: 250},
		},
	}
}

func TestConfigRoundTrip(t *testing.T) {
	original := sampleConfig()
	decoded, reason := DecodeConfig(EncodeConfig(original))
	if decoded == nil {
		t.Fatalf("decode failed: %s", reason)
	}

	if decoded.Authority != original.Authority {
		t.Errorf("Authority = %v, want %v", decoded.Authority, original.Authority)
	}
	if decoded.BaseRatePerMB != original.BaseRatePerMB {
		t.Errorf("BaseRatePerMB = %d, want %d", decoded.BaseRatePerMB, original.BaseRatePerMB)
	}
	if decoded.ProtocolFeeBps != original.ProtocolFeeBps {
		t.Errorf("ProtocolFeeBps = %d, want %d", decoded.ProtocolFeeBps, original.ProtocolFeeBps)
	}
	if len(decoded.TierThresholds) != 3 || decoded.TierThresholds[2] != 100_000 {
		t.Errorf("TierThresholds = %v", decoded.TierThresholds)
	}
	// Premiums come back in canonical region order.
	if len(decoded.GeoPremiums) != 2 || decoded.GeoPremiums[0].RegionCode != 2 {
		t.Errorf("GeoPremiums = %v, want sorted by region", decoded.GeoPremiums)
	}
}

func TestDecodeConfigNeverFaults(t *testing.T) {
	valid := EncodeConfig(sampleConfig())

	wrongTag := append([]byte(nil), valid...)
	wrongTag[0] ^= 0xff

	wrongVersion := append([]byte(nil), valid...)
	wrongVersion[8] = 99

	trailing := append(append([]byte(nil), valid...), 0x00)

	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "record shorter than tag"},
		{"short tag", valid[:4], "record shorter than tag"},
		{"wrong tag", wrongTag, "unrecognized record tag"},
		{"no version", valid[:8], "record truncated before schema version"},
		{"unknown version", wrongVersion, "unsupported schema version"},
		{"truncated body", valid[:40], "record truncated"},
		{"trailing bytes", trailing, "trailing bytes after record"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state, reason := DecodeConfig(tc.data)
			if state != nil {
				t.Fatalf("expected incompatible, got decoded state")
			}
			if reason != tc.want {
				t.Errorf("reason = %q, want %q", reason, tc.want)
			}
		})
	}
}

func TestDecodeConfigBoundsVectorLengths(t *testing.T) {
	// A corrupt length prefix must be rejected, not allocated.
	valid := EncodeConfig(sampleConfig())
	corrupt := append([]byte(nil), valid...)
	// The tier threshold count sits after tag+version+5 addresses+u64+u16.
	offset := 8 + 1 + 5*32 + 8 + 2
	corrupt[offset] = 0xff
	corrupt[offset+1] = 0xff
	corrupt[offset+2] = 0xff
	corrupt[offset+3] = 0xff

	state, reason := DecodeConfig(corrupt)
	if state != nil {
		t.Fatal("expected incompatible for corrupt vector length")
	}
	if reason != "malformed tier threshold table" {
		t.Errorf("reason = %q", reason)
	}
}

func TestMintRoundTrip(t *testing.T) {
	original := MintState{
		SchemaVersion: MintSchemaVersion,
		Authority:     addr(9),
		Decimals:      9,
		Supply:        0,
	}
	decoded, reason := DecodeMint(EncodeMint(original))
	if decoded == nil {
		t.Fatalf("decode failed: %s", reason)
	}
	if *decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}

	if state, _ := DecodeMint(EncodeConfig(sampleConfig())); state != nil {
		t.Error("config bytes decoded as mint")
	}
}
