package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"billgen/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "billgen",
	Short: "billgen - invoicing API server",
	Long: `billgen serves the invoicing API: accounts, clients, bills with
monthly bill numbering, and a revenue dashboard.

Running billgen without a subcommand starts the HTTP server.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
