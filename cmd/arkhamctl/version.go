package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkhamnet/arkhamctl/internal/codec"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("arkhamctl %s (config schema v%d)\n", version, codec.ConfigSchemaVersion)
		},
	}
}
