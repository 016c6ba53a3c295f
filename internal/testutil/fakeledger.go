package testutil

import (
	"fmt"

	"github.com/arkhamnet/arkhamctl/internal/codec"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

// NewFakeLedger returns a MemoryClient whose interpreter applies
// submitted instructions to the stored accounts with the same
// semantics as the on-ledger program: initialize refuses occupied
// addresses, mutations check the stored authority, and mint
// initialization is gated on the null-identity link.
func NewFakeLedger(configAddr ledger.Address) *ledger.MemoryClient {
	client := ledger.NewMemoryClient()
	client.Interpreter = func(action ledger.SignedAction) error {
		inst, err := codec.DecodeInstruction(action.Payload)
		if err != nil {
			return err
		}
		switch inst.Op {
		case codec.OpInitializeConfig:
			if _, ok := client.Account(configAddr); ok {
				return fmt.Errorf("account %s already in use", configAddr)
			}
			state := *inst.Init
			state.Authority = action.Signer
			state.TokenMint = ledger.ZeroAddress
			client.SetAccount(configAddr, codec.EncodeConfig(state))

		case codec.OpUpdateConfig:
			state, err := loadConfig(client, configAddr, action.Signer)
			if err != nil {
				return err
			}
			applyDelta(state, inst.Update)
			client.SetAccount(configAddr, codec.EncodeConfig(*state))

		case codec.OpCloseConfig:
			data, ok := client.Account(configAddr)
			if !ok {
				return fmt.Errorf("account %s does not exist", configAddr)
			}
			// The program's force-close checks the raw authority bytes
			// even when the record no longer deserializes; the fake
			// only checks when it can decode.
			if state, reason := codec.DecodeConfig(data); reason == "" && state.Authority != action.Signer {
				return ledger.ErrAuthorityMismatch
			}
			client.DeleteAccount(configAddr)

		case codec.OpInitializeMint:
			state, err := loadConfig(client, configAddr, action.Signer)
			if err != nil {
				return err
			}
			if !state.TokenMint.IsZero() {
				return fmt.Errorf("mint already initialized for %s", configAddr)
			}
			client.SetAccount(inst.MintAddress, codec.EncodeMint(codec.MintState{
				SchemaVersion: codec.MintSchemaVersion,
				Authority:     action.Signer,
				Decimals:      inst.MintDecimals,
			}))
			state.TokenMint = inst.MintAddress
			client.SetAccount(configAddr, codec.EncodeConfig(*state))

		default:
			return fmt.Errorf("unknown opcode %d", inst.Op)
		}
		return nil
	}
	return client
}

func loadConfig(client *ledger.MemoryClient, addr ledger.Address, signer ledger.Address) (*codec.ConfigState, error) {
	data, ok := client.Account(addr)
	if !ok {
		return nil, fmt.Errorf("account %s does not exist", addr)
	}
	state, reason := codec.DecodeConfig(data)
	if state == nil {
		return nil, fmt.Errorf("account %s is not a config record: %s", addr, reason)
	}
	if state.Authority != signer {
		return nil, ledger.ErrAuthorityMismatch
	}
	return state, nil
}

func applyDelta(state *codec.ConfigState, d *codec.ConfigDelta) {
	if d.BaseRatePerMB != nil {
		state.BaseRatePerMB = *d.BaseRatePerMB
	}
	if d.ProtocolFeeBps != nil {
		state.ProtocolFeeBps = *d.ProtocolFeeBps
	}
	if d.TierThresholds != nil {
		state.TierThresholds = append([]uint64(nil), d.TierThresholds...)
	}
	if d.TierMultipliers != nil {
		state.TierMultipliers = append([]uint16(nil), d.TierMultipliers...)
	}
	if d.TokensPer5GB != nil {
		state.TokensPer5GB = *d.TokensPer5GB
	}
	if d.GeoPremiums != nil {
		state.GeoPremiums = append([]codec.GeoPremium(nil), d.GeoPremiums...)
	}
	if d.OracleAuthority != nil {
		state.OracleAuthority = *d.OracleAuthority
	}
	if d.ReputationUpdater != nil {
		state.ReputationUpdater = *d.ReputationUpdater
	}
}
