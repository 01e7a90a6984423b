package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"QuotePress/internal/app"
	"QuotePress/internal/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once",
	Long: `Run fetches tagged quote posts through the configured strategies, drops the
ones already in the ledger, and researches, composes and publishes up to the
per-run cap. With --dry-run it stops after selection and prints the batch.`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "fetch and select items without publishing")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if dryRun {
		report, batch, err := application.Plan(cmd.Context())
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), report, batch)
		return nil
	}

	report, err := application.Run(cmd.Context())
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printPlan(w io.Writer, report domain.RunReport, batch []domain.CandidateItem) {
	if len(batch) == 0 {
		fmt.Fprintln(w, "No new items.")
		return
	}
	fmt.Fprintf(w, "Source: %s, fetched %d, new %d, deferred %d\n", report.Source, report.Fetched, report.New, report.Deferred)
	for _, item := range batch {
		fmt.Fprintf(w, "%s\t%s\n", item.ID, item.URL)
	}
}

func printReport(w io.Writer, report domain.RunReport) {
	if report.New == 0 {
		fmt.Fprintln(w, "No new items.")
		return
	}
	fmt.Fprintf(w, "Published %d, failed %d, deferred %d\n", report.Published, report.Failed, report.Deferred)
	for _, location := range report.Locations {
		fmt.Fprintln(w, location)
	}
}
