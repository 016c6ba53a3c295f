package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

func newKeygenCmd() *cobra.Command {
	var (
		out   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 key file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s already exists, pass --force to overwrite", out)
				}
			}
			kp, err := ledger.GenerateKeypair()
			if err != nil {
				return err
			}
			if err := kp.Save(out); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\nAddress: %s\n", out, kp.Address())
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "keypair.json", "Output key file path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing key file")

	return cmd
}
