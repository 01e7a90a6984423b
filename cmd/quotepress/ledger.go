package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"QuotePress/internal/app"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the processed-items ledger",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed item ids in the order they were recorded",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ledger, closeLedger, err := app.OpenLedger(cmd.Context(), cfg.Ledger)
		if err != nil {
			return err
		}
		defer closeLedger()

		records, err := ledger.Load(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPROCESSED AT")
		for _, rec := range records {
			stamp := "-"
			if !rec.ProcessedAt.IsZero() {
				stamp = rec.ProcessedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\t%s\n", rec.ID, stamp)
		}
		return tw.Flush()
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerListCmd)
	rootCmd.AddCommand(ledgerCmd)
}
