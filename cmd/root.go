package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"TreasuryDash/internal/config"
	"TreasuryDash/internal/ledger"
	"TreasuryDash/internal/logger"
	"TreasuryDash/internal/treasury"
)

var version = "1.0.0"

// settings are loaded in main; commands run from tests load them lazily.
var settings *config.Settings

var rootCmd = &cobra.Command{
	Use:   "treasury",
	Short: "Treasury cash-flow projection and aging",
	Long: `Projects daily cash positions from receivables, payables and recurring
commitments, classifies open documents by age and serves the treasury
dashboard over HTTP.

Ledger data comes from a JSON snapshot (bank balances, receivables and
payables) or from CSV/XLSX/XLS exports of the accounting system.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: applyGlobalFlags,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Cash-flow configuration file (.json or .yaml)")
	flags.String("ledger", "", "Ledger snapshot file (JSON)")
	flags.String("receivables", "", "Receivables export (.csv, .xlsx, .xls) replacing the snapshot's receivables")
	flags.String("payables", "", "Payables export (.csv, .xlsx, .xls) replacing the snapshot's payables")
	flags.String("services", "", "Service sequence file for serve")
	flags.String("output", "", "Output directory for snapshots and workbooks")
}

func applyGlobalFlags(cmd *cobra.Command, args []string) error {
	if settings == nil {
		s, err := config.Load()
		if err != nil {
			return err
		}
		settings = s
	}

	overrides := map[string]*string{
		"config":   &settings.ConfigPath,
		"ledger":   &settings.LedgerPath,
		"services": &settings.ServicesPath,
		"output":   &settings.OutputDir,
	}
	for name, target := range overrides {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			*target = v
		}
	}
	return nil
}

// buildEnv wires the shared state for a command run.
func buildEnv(cmd *cobra.Command) (*treasury.Env, error) {
	env, err := treasury.NewEnv(settings)
	if err != nil {
		return nil, err
	}
	receivables, _ := cmd.Flags().GetString("receivables")
	payables, _ := cmd.Flags().GetString("payables")
	env.Source = ledger.FileSource{
		SnapshotPath:    settings.LedgerPath,
		ReceivablesPath: receivables,
		PayablesPath:    payables,
	}
	return env, nil
}
