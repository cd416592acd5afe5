package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var judgesCmd = &cobra.Command{
	Use:   "judges",
	Short: "Load the judiciary directories into the judge tables",
	RunE:  runJudges,
}

func init() {
	rootCmd.AddCommand(judgesCmd)
}

func runJudges(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	application, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	inserted, err := application.IngestJudges(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d judges inserted\n", inserted)
	return nil
}
