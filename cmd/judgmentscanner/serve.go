package main

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored cases and judges as JSON",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	application, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Serve(ctx)
}
