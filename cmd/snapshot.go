package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"TreasuryDash/internal/jobs"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Generate the dashboard snapshot and workbook once",
	Long: `Runs the scheduled report immediately: builds the dashboard, writes
dashboard_snapshot.json and the workbook into the output directory and
prints the alerts raised.`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	env, err := buildEnv(cmd)
	if err != nil {
		return err
	}

	rc := jobs.NewDefaultReportConfig()
	rc.OutputDir = settings.OutputDir
	rc.TimeZone = settings.TimeZone
	rc.MaxRetries = 0

	res, err := jobs.RunReportOnce(cmd.Context(), rc, env)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Snapshot %s\n", res.Dashboard.ID)
	fmt.Fprintf(out, "  %s\n  %s\n", res.SnapshotPath, res.WorkbookPath)
	for _, a := range env.Alerts.GetNotifications() {
		fmt.Fprintf(out, "  [%s] %s\n", a.Kind, a.Message)
	}
	return nil
}
