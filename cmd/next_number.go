package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billgen/internal/config"
	"billgen/internal/server"
)

var nextNumberCmd = &cobra.Command{
	Use:   "next-number",
	Short: "Print the bill number the next bill would receive",
	Args:  cobra.NoArgs,
	RunE:  runNextNumber,
}

func init() {
	rootCmd.AddCommand(nextNumberCmd)
}

func runNextNumber(cmd *cobra.Command, args []string) error {
	app, err := server.NewApp(cmd.Context(), config.AppEnv)
	if err != nil {
		return err
	}
	defer app.Close(cmd.Context())

	number, err := app.Bills.PreviewBillNumber(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), number)
	return nil
}
