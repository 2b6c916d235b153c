package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"TreasuryDash/internal/config"
	"TreasuryDash/internal/export"
	"TreasuryDash/internal/logger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the 30-day projection, summary and aging to an Excel workbook",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out", "", "Workbook path (default: <output>/"+config.WorkbookFileName+")")
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(settings.OutputDir, config.WorkbookFileName)
	}

	env, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	d, err := env.BuildDashboard(cmd.Context())
	if err != nil {
		return err
	}
	if err := export.Save(out, export.FromDashboard(d)); err != nil {
		return err
	}

	logger.WithComponent("export").Info().Str("path", out).Str("id", d.ID).Msg("Workbook written")
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
