// Package main is the entry point for the arkhamctl CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "0.1.0"

// Global flags.
var (
	rpcURL        string
	keypairPath   string
	specPath      string
	configAddr    string
	timeout       string
	retries       int
	verbose       bool
	correlationID string
	metricsFile   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "arkhamctl",
		Short: "Provision and reconcile the arkham protocol config on the ledger",
		Long: `Arkhamctl probes the on-ledger protocol configuration, compares it
against a desired spec, and applies the minimal corrective actions:
initialize, per-field update, or close-and-reinitialize for accounts
with incompatible schemas. Once the config is confirmed compatible it
provisions the dependent token mint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rpcURL, "rpc-url", "http://127.0.0.1:8899", "Ledger RPC endpoint")
	root.PersistentFlags().StringVar(&keypairPath, "keypair", "", "Path to the authority key file")
	root.PersistentFlags().StringVar(&specPath, "spec", "arkham.yaml", "Path to the desired spec file")
	root.PersistentFlags().StringVar(&configAddr, "config-address", "", "Address of the protocol config account")
	root.PersistentFlags().StringVar(&timeout, "timeout", "60s", "Confirmation wait per submitted action")
	root.PersistentFlags().IntVar(&retries, "retries", 0, "Whole-run retries on transient failure")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	root.PersistentFlags().StringVar(&correlationID, "correlation-id", "", "Set explicit correlation ID")
	root.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this textfile-collector path")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newReconcileCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newKeygenCmd())

	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
