// Package main is the judgmentscanner command: case pipeline, judge directory
// ingest and the read-only API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"JudgmentScanner/internal/app"
	"JudgmentScanner/internal/config"
	"JudgmentScanner/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "judgmentscanner",
	Short:         "Scrape UK court judgments into Postgres",
	Long:          "judgmentscanner walks the National Archives judgment listings, extracts case details from transcript PDFs, enriches them with an LLM and loads them into Postgres.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApplication loads configuration and connects the application to storage.
func newApplication(ctx context.Context) (*app.Application, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init application: %w", err)
	}
	return application, nil
}
