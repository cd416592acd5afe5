package main

import (
	"time"

	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Scrape new judgments and load them into the database",
	Long: `Walks the listing pages, skips titles already stored, downloads each new transcript,
extracts judge, case number and hearing date, enriches the record and loads it.

With --every the run repeats on that period until interrupted.`,
	RunE: runCases,
}

var runEvery time.Duration

func init() {
	runCommand.Flags().DurationVar(&runEvery, "every", 0, "Repeat the run on this period (e.g. 24h); zero runs once")
	rootCmd.AddCommand(runCommand)
}

func runCases(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	application, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.RunCases(ctx, runEvery)
}
