// Package main is the entry point for the quotepress CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"QuotePress/internal/config"
	"QuotePress/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    config.Config
	logger *slog.Logger
)

// rootCmd runs a single pass when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "quotepress",
	Short: "Turn tagged quote posts into researched blog articles",
	Long: `quotepress watches one account for quote posts carrying a tag, researches the
quoted topic, asks a language model for a short article and publishes it to
WordPress or to a static site. Every published post is recorded in a ledger so
it is never published twice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		cfgFile, _ := cmd.Flags().GetString("config")
		cfg = config.Load(cfgFile)
		logger = logging.NewWithFormat(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
	RunE: runOnce,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file (default: $QUOTEPRESS_CONFIG)")
	rootCmd.Flags().Bool("dry-run", false, "fetch and select items without publishing")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
