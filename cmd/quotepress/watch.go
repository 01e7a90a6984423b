package main

import (
	"github.com/spf13/cobra"

	"QuotePress/internal/app"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline on a schedule until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		application, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Watch(cmd.Context(), interval)
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "time between runs; overrides scheduler.cron (default from config, 1h)")
	rootCmd.AddCommand(watchCmd)
}
