package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billgen/internal/config"
	"billgen/internal/models"
	"billgen/internal/server"
)

var promoteCmd = &cobra.Command{
	Use:   "promote [email]",
	Short: "Change a user's role",
	Long: `Set the role of an existing account. Roles cannot be changed through
the API, so this is the way to create the first admin.`,
	Example: `  # Make a user an admin
  billgen promote owner@example.com

  # Demote back to a regular user
  billgen promote owner@example.com --role user`,
	Args: cobra.ExactArgs(1),
	RunE: runPromote,
}

func init() {
	rootCmd.AddCommand(promoteCmd)

	promoteCmd.Flags().String("role", models.RoleAdmin, "Role to assign (admin or user)")
}

func runPromote(cmd *cobra.Command, args []string) error {
	role, _ := cmd.Flags().GetString("role")

	app, err := server.NewApp(cmd.Context(), config.AppEnv)
	if err != nil {
		return err
	}
	defer app.Close(cmd.Context())

	if err := app.Auth.Promote(cmd.Context(), args[0], role); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], role)
	return nil
}
