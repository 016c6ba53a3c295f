// Package codec serializes and deserializes the binary account
// records and instruction payloads of the arkham protocol.
//
// Decoding is total: bytes that do not match the schema are reported
// as incompatible with a reason, never as an error or a panic. The
// reconciler's decision tree depends on separating "not provisioned
// with a schema we understand" from transport failures.
package codec

import (
	"bytes"
	"sort"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

// Record tags identify the account type; the schema version gates the
// field layout that follows. Unknown tags and versions decode as
// incompatible rather than being guessed at.
var (
	configRecordTag = [8]byte{0x9b, 0x1d, 0x5c, 0xa7, 0x33, 0x48, 0xe2, 0x0f}
	mintRecordTag   = [8]byte{0x41, 0x88, 0x07, 0xd3, 0x6e, 0xbc, 0x2a, 0x95}
)

const (
	// ConfigSchemaVersion is the protocol config layout this engine
	// reads and writes.
	ConfigSchemaVersion = 1
	// MintSchemaVersion is the token mint layout.
	MintSchemaVersion = 1

	// MaxGeoPremiums bounds the geo premium table, matching the space
	// reserved for the account on the ledger.
	MaxGeoPremiums = 10
)

// GeoPremium is a per-region bandwidth price premium in basis points.
type GeoPremium struct {
	RegionCode uint8  `yaml:"region_code" json:"region_code"`
	PremiumBps uint16 `yaml:"premium_bps" json:"premium_bps"`
}

// ConfigState is the decoded protocol configuration record.
type ConfigState struct {
	SchemaVersion     uint8
	Authority         ledger.Address
	Treasury          ledger.Address
	TokenMint         ledger.Address // ZeroAddress until the mint is initialized
	OracleAuthority   ledger.Address
	ReputationUpdater ledger.Address
	BaseRatePerMB     uint64
	ProtocolFeeBps    uint16
	TierThresholds    []uint64
	TierMultipliers   []uint16
	TokensPer5GB      uint64
	GeoPremiums       []GeoPremium
}

// MintState is the decoded token mint record.
type MintState struct {
	SchemaVersion uint8
	Authority     ledger.Address
	Decimals      uint8
	Supply        uint64
}

// EncodeConfig serializes a config record. Encoding is total and
// deterministic: geo premiums are written sorted by region code.
func EncodeConfig(s ConfigState) []byte {
	w := newWriter()
	w.bytes(configRecordTag[:])
	w.u8(ConfigSchemaVersion)
	w.address(s.Authority)
	w.address(s.Treasury)
	w.address(s.TokenMint)
	w.address(s.OracleAuthority)
	w.address(s.ReputationUpdater)
	w.u64(s.BaseRatePerMB)
	w.u16(s.ProtocolFeeBps)
	w.u32(uint32(len(s.TierThresholds)))
	for _, t := range s.TierThresholds {
		w.u64(t)
	}
	w.u32(uint32(len(s.TierMultipliers)))
	for _, m := range s.TierMultipliers {
		w.u16(m)
	}
	w.u64(s.TokensPer5GB)
	premiums := SortedGeoPremiums(s.GeoPremiums)
	w.u32(uint32(len(premiums)))
	for _, g := range premiums {
		w.u8(g.RegionCode)
		w.u16(g.PremiumBps)
	}
	return w.buf
}

// DecodeConfig deserializes a config record. On success the reason is
// empty; otherwise the state is nil and the reason names what made the
// bytes incompatible.
func DecodeConfig(data []byte) (*ConfigState, string) {
	r := newReader(data)

	tag := r.take(8)
	if r.short {
		return nil, "record shorter than tag"
	}
	if !bytes.Equal(tag, configRecordTag[:]) {
		return nil, "unrecognized record tag"
	}
	version := r.u8()
	if r.short {
		return nil, "record truncated before schema version"
	}
	if version != ConfigSchemaVersion {
		return nil, "unsupported schema version"
	}

	var s ConfigState
	s.SchemaVersion = version
	s.Authority = r.address()
	s.Treasury = r.address()
	s.TokenMint = r.address()
	s.OracleAuthority = r.address()
	s.ReputationUpdater = r.address()
	s.BaseRatePerMB = r.u64()
	s.ProtocolFeeBps = r.u16()
	if r.short {
		return nil, "record truncated"
	}

	nThr := r.u32()
	if r.short || nThr > maxVecLen {
		return nil, "malformed tier threshold table"
	}
	s.TierThresholds = make([]uint64, 0, nThr)
	for i := uint32(0); i < nThr; i++ {
		s.TierThresholds = append(s.TierThresholds, r.u64())
	}

	nMul := r.u32()
	if r.short || nMul > maxVecLen {
		return nil, "malformed tier multiplier table"
	}
	s.TierMultipliers = make([]uint16, 0, nMul)
	for i := uint32(0); i < nMul; i++ {
		s.TierMultipliers = append(s.TierMultipliers, r.u16())
	}

	s.TokensPer5GB = r.u64()

	nGeo := r.u32()
	if r.short || nGeo > MaxGeoPremiums {
		return nil, "malformed geo premium table"
	}
	s.GeoPremiums = make([]GeoPremium, 0, nGeo)
	for i := uint32(0); i < nGeo; i++ {
		s.GeoPremiums = append(s.GeoPremiums, GeoPremium{
			RegionCode: r.u8(),
			PremiumBps: r.u16(),
		})
	}

	if r.short {
		return nil, "record truncated"
	}
	if r.remaining() > 0 {
		return nil, "trailing bytes after record"
	}
	return &s, ""
}

// EncodeMint serializes a token mint record.
func EncodeMint(s MintState) []byte {
	w := newWriter()
	w.bytes(mintRecordTag[:])
	w.u8(MintSchemaVersion)
	w.address(s.Authority)
	w.u8(s.Decimals)
	w.u64(s.Supply)
	return w.buf
}

// DecodeMint deserializes a token mint record under the same totality
// rule as DecodeConfig.
func DecodeMint(data []byte) (*MintState, string) {
	r := newReader(data)

	tag := r.take(8)
	if r.short {
		return nil, "record shorter than tag"
	}
	if !bytes.Equal(tag, mintRecordTag[:]) {
		return nil, "unrecognized record tag"
	}
	version := r.u8()
	if r.short {
		return nil, "record truncated before schema version"
	}
	if version != MintSchemaVersion {
		return nil, "unsupported schema version"
	}

	var s MintState
	s.SchemaVersion = version
	s.Authority = r.address()
	s.Decimals = r.u8()
	s.Supply = r.u64()
	if r.short {
		return nil, "record truncated"
	}
	if r.remaining() > 0 {
		return nil, "trailing bytes after record"
	}
	return &s, ""
}

// SortedGeoPremiums returns the premiums sorted by region code. Both
// encoding and field comparison use this canonical order.
func SortedGeoPremiums(in []GeoPremium) []GeoPremium {
	out := append([]GeoPremium(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].RegionCode < out[j].RegionCode })
	return out
}
