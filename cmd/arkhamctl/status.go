package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
	"github.com/arkhamnet/arkhamctl/internal/probe"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe and print the current config and mint state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configAddr == "" {
				return fmt.Errorf("--config-address is required")
			}
			addr, err := ledger.ParseAddress(configAddr)
			if err != nil {
				return err
			}

			client := ledger.NewRPCClient(rpcURL)
			prober := &probe.Prober{Client: client}

			observed, err := prober.Probe(cmd.Context(), addr)
			if err != nil {
				return err
			}

			fmt.Printf("Config %s: %s\n", addr, observed.Kind)
			switch observed.Kind {
			case probe.Incompatible:
				fmt.Printf("  reason: %s\n", observed.Reason)
			case probe.Compatible:
				c := observed.Config
				fmt.Printf("  authority:          %s\n", c.Authority)
				fmt.Printf("  treasury:           %s\n", c.Treasury)
				fmt.Printf("  oracle authority:   %s\n", c.OracleAuthority)
				fmt.Printf("  reputation updater: %s\n", c.ReputationUpdater)
				fmt.Printf("  base rate per MB:   %d\n", c.BaseRatePerMB)
				fmt.Printf("  protocol fee:       %d bps\n", c.ProtocolFeeBps)
				fmt.Printf("  tier thresholds:    %v\n", c.TierThresholds)
				fmt.Printf("  tier multipliers:   %v\n", c.TierMultipliers)
				fmt.Printf("  tokens per 5GB:     %d\n", c.TokensPer5GB)
				fmt.Printf("  geo premiums:       %v\n", c.GeoPremiums)
				if c.TokenMint.IsZero() {
					fmt.Println("  token mint:         (not initialized)")
				} else {
					fmt.Printf("  token mint:         %s\n", c.TokenMint)
					mint, err := prober.ProbeMint(cmd.Context(), c.TokenMint)
					if err != nil {
						return err
					}
					fmt.Printf("Mint %s: %s\n", c.TokenMint, mint.Kind)
					if mint.Kind == probe.Absent {
						fmt.Println("  WARNING: config links a mint that does not exist (stale link)")
					}
				}
			}
			return nil
		},
	}
	return cmd
}
