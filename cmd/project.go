package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/config"
	"TreasuryDash/internal/dashboard"
	"TreasuryDash/internal/logger"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Print the daily cash-flow projection",
	Example: `  # Two weeks from the snapshot date
  treasury project

  # 30 days from a given date with a known opening balance
  treasury project --horizon 30 --start 2024-06-03 --opening 85000000`,
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.Flags().Int("horizon", config.DefaultHorizonDays, "Number of days to project")
	projectCmd.Flags().String("start", "", "First projected day (format: YYYY-MM-DD, default: snapshot date, then today)")
	projectCmd.Flags().String("opening", "", "Opening balance (default: consolidated bank balances)")
	projectCmd.Flags().Bool("json", false, "Print projection and summary as JSON")
}

func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s. Use YYYY-MM-DD: %w", name, err)
	}
	return t, nil
}

func runProject(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("project")

	horizon, _ := cmd.Flags().GetInt("horizon")
	asJSON, _ := cmd.Flags().GetBool("json")
	openingRaw, _ := cmd.Flags().GetString("opening")

	if horizon < 0 || horizon > config.MaxHorizonDays {
		return fmt.Errorf("horizon must be between 0 and %d", config.MaxHorizonDays)
	}
	start, err := parseDateFlag(cmd, "start")
	if err != nil {
		return err
	}

	env, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	snapshot, err := env.LoadSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	opening := env.OpeningBalance(snapshot).Total
	if openingRaw != "" {
		if opening, err = decimal.NewFromString(openingRaw); err != nil {
			return fmt.Errorf("invalid --opening: %w", err)
		}
	}

	cfg := env.Store.Current()
	norm := dashboard.Normalize(snapshot, cfg, env.Sign)
	p := cashflow.Project(cashflow.ProjectionInput{
		Start:          env.StartFor(start, snapshot),
		HorizonDays:    horizon,
		OpeningBalance: opening,
		Receivables:    norm.Receivables,
		Payables:       norm.Payables,
	}, cfg)
	summary := cashflow.Summarize(p, cfg, cashflow.DefaultSummaryOptions())

	log.Info().
		Str("start", p.Start.String()).
		Int("horizon", horizon).
		Int("skipped", len(norm.Skipped)).
		Msg("Projection computed")

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Projection cashflow.Projection `json:"projection"`
			Summary    cashflow.Summary    `json:"summary"`
			Skipped    []cashflow.Skipped  `json:"skipped"`
		}{p, summary, norm.Skipped})
	}
	return printProjection(out, p, summary)
}

func money(d decimal.Decimal) string { return d.StringFixed(0) }

func printProjection(out io.Writer, p cashflow.Projection, s cashflow.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tInflows\tPayables\tRecurring\tNet flow\tBalance\t")
	for _, e := range p.Days {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.Date, money(e.Inflows), money(e.OutflowsFromPayables), money(e.OutflowsFromRecurring),
			money(e.NetFlow), money(e.RunningBalance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nOpening balance: %s\n", money(s.OpeningBalance))
	fmt.Fprintf(out, "Total inflows:   %s\n", money(s.TotalInflows))
	fmt.Fprintf(out, "Total outflows:  %s\n", money(s.TotalOutflows))
	fmt.Fprintf(out, "Closing balance: %s\n", money(s.ClosingBalance))
	if s.CriticalDay != nil {
		fmt.Fprintf(out, "Critical day:    %s (%s)\n", s.CriticalDay.Date, money(s.CriticalDay.NetFlow))
	}
	if s.HighPaymentAlert {
		fmt.Fprintf(out, "ALERT: outflows exceed %s\n", money(s.HighPaymentThreshold))
	}
	for _, d := range s.LowBalanceDays {
		fmt.Fprintf(out, "ALERT: balance %s on %s below %s\n", money(d.RunningBalance), d.Date, money(s.LowBalanceThreshold))
	}
	return nil
}
