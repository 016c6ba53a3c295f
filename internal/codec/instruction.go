package codec

import (
	"fmt"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

// Instruction opcodes. The opcode is the first byte of every action
// payload.
const (
	OpInitializeConfig byte = 0
	OpUpdateConfig     byte = 1
	OpCloseConfig      byte = 2
	OpInitializeMint   byte = 3
)

// ConfigDelta carries only the fields an update changes. A nil field
// is encoded as "no change", which the ledger program distinguishes
// from a field explicitly set to its current value, so concurrent
// mutations to unrelated fields are never clobbered.
//
// The treasury is fixed at initialization and has no delta field.
type ConfigDelta struct {
	BaseRatePerMB     *uint64
	ProtocolFeeBps    *uint16
	TierThresholds    []uint64
	TierMultipliers   []uint16
	TokensPer5GB      *uint64
	GeoPremiums       []GeoPremium
	OracleAuthority   *ledger.Address
	ReputationUpdater *ledger.Address
}

// IsEmpty reports whether the delta changes nothing.
func (d *ConfigDelta) IsEmpty() bool {
	return d.BaseRatePerMB == nil &&
		d.ProtocolFeeBps == nil &&
		d.TierThresholds == nil &&
		d.TierMultipliers == nil &&
		d.TokensPer5GB == nil &&
		d.GeoPremiums == nil &&
		d.OracleAuthority == nil &&
		d.ReputationUpdater == nil
}

// FieldNames lists the changed fields, for plan output and events.
func (d *ConfigDelta) FieldNames() []string {
	var names []string
	if d.BaseRatePerMB != nil {
		names = append(names, "base_rate_per_mb")
	}
	if d.ProtocolFeeBps != nil {
		names = append(names, "protocol_fee_bps")
	}
	if d.TierThresholds != nil {
		names = append(names, "tier_thresholds")
	}
	if d.TierMultipliers != nil {
		names = append(names, "tier_multipliers")
	}
	if d.TokensPer5GB != nil {
		names = append(names, "tokens_per_5gb")
	}
	if d.GeoPremiums != nil {
		names = append(names, "geo_premiums")
	}
	if d.OracleAuthority != nil {
		names = append(names, "oracle_authority")
	}
	if d.ReputationUpdater != nil {
		names = append(names, "reputation_updater")
	}
	return names
}

// Instruction is a decoded action payload, used by the in-memory
// ledger fake and by diagnostic tooling.
type Instruction struct {
	Op           byte
	Init         *ConfigState
	Update       *ConfigDelta
	MintAddress  ledger.Address
	MintDecimals uint8
}

// EncodeInitialize builds an InitializeConfig payload carrying the
// full resolved field set.
func EncodeInitialize(s ConfigState) []byte {
	w := newWriter()
	w.u8(OpInitializeConfig)
	w.address(s.Treasury)
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

// EncodeUpdate builds an UpdateConfig payload. Each field is prefixed
// with a presence byte so absent fields are distinguishable on the
// wire from fields set to any value.
func EncodeUpdate(d ConfigDelta) []byte {
	w := newWriter()
	w.u8(OpUpdateConfig)

	writeOptU64(w, d.BaseRatePerMB)
	writeOptU16(w, d.ProtocolFeeBps)

	if d.TierThresholds == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.u32(uint32(len(d.TierThresholds)))
		for _, t := range d.TierThresholds {
			w.u64(t)
		}
	}
	if d.TierMultipliers == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.u32(uint32(len(d.TierMultipliers)))
		for _, m := range d.TierMultipliers {
			w.u16(m)
		}
	}

	writeOptU64(w, d.TokensPer5GB)

	if d.GeoPremiums == nil {
		w.u8(0)
	} else {
		w.u8(1)
		premiums := SortedGeoPremiums(d.GeoPremiums)
		w.u32(uint32(len(premiums)))
		for _, g := range premiums {
			w.u8(g.RegionCode)
			w.u16(g.PremiumBps)
		}
	}

	writeOptAddress(w, d.OracleAuthority)
	writeOptAddress(w, d.ReputationUpdater)
	return w.buf
}

// EncodeClose builds a CloseConfig payload.
func EncodeClose() []byte {
	return []byte{OpCloseConfig}
}

// EncodeInitializeMint builds an InitializeMint payload for the mint
// at the given derived address.
func EncodeInitializeMint(mint ledger.Address, decimals uint8) []byte {
	w := newWriter()
	w.u8(OpInitializeMint)
	w.address(mint)
	w.u8(decimals)
	return w.buf
}

// DecodeInstruction parses an action payload. Unlike account decoding
// this returns an error: an unparseable instruction is a caller bug,
// not remote schema drift.
func DecodeInstruction(payload []byte) (*Instruction, error) {
	r := newReader(payload)
	op := r.u8()
	if r.short {
		return nil, fmt.Errorf("empty instruction payload")
	}

	inst := &Instruction{Op: op}
	switch op {
	case OpInitializeConfig:
		var s ConfigState
		s.SchemaVersion = ConfigSchemaVersion
		s.Treasury = r.address()
		s.OracleAuthority = r.address()
		s.ReputationUpdater = r.address()
		s.BaseRatePerMB = r.u64()
		s.ProtocolFeeBps = r.u16()
		n := r.u32()
		if r.short || n > maxVecLen {
			return nil, fmt.Errorf("malformed initialize payload")
		}
		for i := uint32(0); i < n; i++ {
			s.TierThresholds = append(s.TierThresholds, r.u64())
		}
		n = r.u32()
		if r.short || n > maxVecLen {
			return nil, fmt.Errorf("malformed initialize payload")
		}
		for i := uint32(0); i < n; i++ {
			s.TierMultipliers = append(s.TierMultipliers, r.u16())
		}
		s.TokensPer5GB = r.u64()
		n = r.u32()
		if r.short || n > MaxGeoPremiums {
			return nil, fmt.Errorf("malformed initialize payload")
		}
		for i := uint32(0); i < n; i++ {
			s.GeoPremiums = append(s.GeoPremiums, GeoPremium{RegionCode: r.u8(), PremiumBps: r.u16()})
		}
		inst.Init = &s

	case OpUpdateConfig:
		var d ConfigDelta
		d.BaseRatePerMB = readOptU64(r)
		d.ProtocolFeeBps = readOptU16(r)
		if r.u8() == 1 {
			n := r.u32()
			if r.short || n > maxVecLen {
				return nil, fmt.Errorf("malformed update payload")
			}
			d.TierThresholds = make([]uint64, 0, n)
			for i := uint32(0); i < n; i++ {
				d.TierThresholds = append(d.TierThresholds, r.u64())
			}
		}
		if r.u8() == 1 {
			n := r.u32()
			if r.short || n > maxVecLen {
				return nil, fmt.Errorf("malformed update payload")
			}
			d.TierMultipliers = make([]uint16, 0, n)
			for i := uint32(0); i < n; i++ {
				d.TierMultipliers = append(d.TierMultipliers, r.u16())
			}
		}
		d.TokensPer5GB = readOptU64(r)
		if r.u8() == 1 {
			n := r.u32()
			if r.short || n > MaxGeoPremiums {
				return nil, fmt.Errorf("malformed update payload")
			}
			d.GeoPremiums = make([]GeoPremium, 0, n)
			for i := uint32(0); i < n; i++ {
				d.GeoPremiums = append(d.GeoPremiums, GeoPremium{RegionCode: r.u8(), PremiumBps: r.u16()})
			}
		}
		d.OracleAuthority = readOptAddress(r)
		d.ReputationUpdater = readOptAddress(r)
		inst.Update = &d

	case OpCloseConfig:
		// no arguments

	case OpInitializeMint:
		inst.MintAddress = r.address()
		inst.MintDecimals = r.u8()

	default:
		return nil, fmt.Errorf("unknown instruction opcode %d", op)
	}

	if r.short {
		return nil, fmt.Errorf("truncated instruction payload (op %d)", op)
	}
	if r.remaining() > 0 {
		return nil, fmt.Errorf("trailing bytes in instruction payload (op %d)", op)
	}
	return inst, nil
}

func writeOptU64(w *writer, v *uint64) {
	if v == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.u64(*v)
}

func writeOptU16(w *writer, v *uint16) {
	if v == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.u16(*v)
}

func writeOptAddress(w *writer, a *ledger.Address) {
	if a == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.address(*a)
}

func readOptU64(r *reader) *uint64 {
	if r.u8() != 1 {
		return nil
	}
	v := r.u64()
	return &v
}

func readOptU16(r *reader) *uint16 {
	if r.u8() != 1 {
		return nil
	}
	v := r.u16()
	return &v
}

func readOptAddress(r *reader) *ledger.Address {
	if r.u8() != 1 {
		return nil
	}
	a := r.address()
	return &a
}
