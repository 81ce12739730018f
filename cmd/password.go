package cmd

import (
	"github.com/spf13/cobra"
)

var (
	passwordEmail string
	passwordCode  string
)

// passwordCmd represents the password command group
var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Recover a forgotten password",
	Long: `Recover a forgotten password.

Examples:
  lobbyctl password recover --email me@example.com  # Request a reset mail
  lobbyctl password set --code <code>               # Choose a new password`,
}

var passwordRecoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Request a password reset mail",
	Args:  cobra.NoArgs,
	RunE:  runPasswordRecover,
}

var passwordSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set a new password with the code from the reset mail",
	Args:  cobra.NoArgs,
	RunE:  runPasswordSet,
}

func init() {
	passwordRecoverCmd.Flags().StringVar(&passwordEmail, "email", "", "Email address of the account")
	passwordSetCmd.Flags().StringVar(&passwordCode, "code", "", "Code from the reset mail")
	_ = passwordSetCmd.MarkFlagRequired("code")

	passwordCmd.AddCommand(passwordRecoverCmd, passwordSetCmd)
	rootCmd.AddCommand(passwordCmd)
}

func runPasswordRecover(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "/#passwordRecovery")
	if err != nil {
		return err
	}
	defer a.close()
	return a.drive(cmd.Context(), dialogInput{email: passwordEmail})
}

func runPasswordSet(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, location("#setNewPassword", nil, "code", passwordCode))
	if err != nil {
		return err
	}
	defer a.close()
	return a.drive(cmd.Context(), dialogInput{})
}
