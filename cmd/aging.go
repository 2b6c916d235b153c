package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/dashboard"
)

var agingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Print receivable and payable aging buckets",
	RunE:  runAging,
}

func init() {
	rootCmd.AddCommand(agingCmd)
	agingCmd.Flags().String("as-of", "", "Reference date (format: YYYY-MM-DD, default: snapshot date, then today)")
}

func runAging(cmd *cobra.Command, args []string) error {
	asOf, err := parseDateFlag(cmd, "as-of")
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

	asOf = env.StartFor(asOf, snapshot)
	norm := dashboard.Normalize(snapshot, env.Store.Current(), env.Sign)
	recs := cashflow.AgeReceivables(norm.Receivables, asOf)
	pays := cashflow.AgePayables(norm.Payables, asOf)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Aging as of %s\n\n", asOf.Format(time.DateOnly))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Bucket\tReceivables\tDocs\tPayables\tDocs\t")
	for _, b := range cashflow.AgingBuckets() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t\n", b, money(recs.Amount(b)), recs.Counts[b], money(pays.Amount(b)), pays.Counts[b])
	}
	fmt.Fprintf(tw, "Total\t%s\t%d\t%s\t%d\t\n", money(recs.Total), recs.Count, money(pays.Total), pays.Count)
	if err := tw.Flush(); err != nil {
		return err
	}
	if recs.Excluded+pays.Excluded > 0 {
		fmt.Fprintf(out, "\n%d documents without a reference date were left out\n", recs.Excluded+pays.Excluded)
	}
	return nil
}
