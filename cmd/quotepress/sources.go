package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"QuotePress/internal/app"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show acquisition strategies and their priority",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry := app.NewRegistry(cfg, logger)
		out := cmd.OutOrStdout()

		for i, name := range cfg.Sources.Order {
			status := "ok"
			if _, err := registry.Resolve(name); err != nil {
				status = "unknown"
			}
			fmt.Fprintf(out, "%d. %s (%s)\n", i+1, name, status)
		}
		for _, name := range registry.Names() {
			if !slices.Contains(cfg.Sources.Order, name) {
				fmt.Fprintf(out, "-  %s (disabled)\n", name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
