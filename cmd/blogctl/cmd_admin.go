package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"blogcms/internal/models"

	"github.com/spf13/cobra"
)

var (
	adminPassword string
	adminRole     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
	Long: `Manage admin accounts without going through the HTTP API.

Available subcommands:
  create         - Create an account
  list           - List every account
  reset-password - Replace an account's password
  set-role       - Change an account's role`,
}

var adminCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create an admin or editor account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCreate,
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every account",
	Args:  cobra.NoArgs,
	RunE:  runAdminList,
}

var adminResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username>",
	Short: "Replace an account's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminResetPassword,
}

var adminSetRoleCmd = &cobra.Command{
	Use:   "set-role <username> <admin|editor>",
	Short: "Change an account's role",
	Long: `Change an account's role. Tokens already issued keep their old role
until they expire or the account signs in again.`,
	Args: cobra.ExactArgs(2),
	RunE: runAdminSetRole,
}

func init() {
	adminCreateCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "Password for the new account (required)")
	adminCreateCmd.Flags().StringVarP(&adminRole, "role", "r", string(models.RoleAdmin), "Role: admin or editor")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminResetPasswordCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "New password (required)")
	_ = adminResetPasswordCmd.MarkFlagRequired("password")
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	role := models.Role(adminRole)
	if !role.Valid() {
		return errors.New("role must be admin or editor")
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	admin, err := rt.admins.CreateAccount(ctx, args[0], adminPassword, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (ID: %d)\n", admin.Role, admin.Username, admin.ID)
	return nil
}

func runAdminList(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	admins, err := rt.admins.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tCREATED")
	for _, a := range admins {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.Username, a.Role, a.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runAdminResetPassword(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := rt.admins.ResetPassword(ctx, args[0], adminPassword); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Password reset for %q\n", args[0])
	return nil
}

func runAdminSetRole(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	admin, err := rt.admins.SetRoleByUsername(ctx, args[0], models.Role(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s\n", admin.Username, admin.Role)
	return nil
}
