package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
	"github.com/arkhamnet/arkhamctl/internal/plan"
	"github.com/arkhamnet/arkhamctl/internal/probe"
)

func newPlanCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what changes would be made without applying",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(false)
			if err != nil {
				return err
			}

			prober := &probe.Prober{Client: rt.client}
			observed, err := prober.Probe(cmd.Context(), rt.address)
			if err != nil {
				return err
			}

			// Without a keypair the would-be authority is unknown; the
			// zero address stands in since plan output never submits.
			authority := ledger.ZeroAddress
			if keypairPath != "" {
				kp, err := ledger.LoadKeypair(keypairPath)
				if err != nil {
					return err
				}
				authority = kp.Address()
			}

			p := plan.Compute(rt.desired, observed, authority)

			var output string
			switch format {
			case "json":
				output, err = plan.FormatJSON(p)
				if err != nil {
					return err
				}
			default:
				output = plan.FormatText(p)
			}

			if out != "" {
				if err := os.WriteFile(out, []byte(output), 0644); err != nil {
					return err
				}
			} else {
				fmt.Print(output)
			}

			if p.HasChanges {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&out, "out", "", "Write plan to file")

	return cmd
}
