package cmd

import (
	"fmt"

	"lobbyctl/internal/navigation"

	"github.com/spf13/cobra"
)

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:   "open <url>",
	Short: "Continue a lobby link from a mail",
	Long: `Continue a lobby link, such as the activation, password reset or gold
transfer link from a mail. The dialog the link points to is run in the
terminal.

Examples:
  lobbyctl open "https://lobby.example.com/?code=abc#activation"
  lobbyctl open "/?c=<code>#gtl"`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	loc, err := navigation.ParseLocation(args[0])
	if err != nil {
		return fmt.Errorf("invalid lobby link: %w", err)
	}

	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	a.nav.Set(loc)
	if !a.modals.Current().Open() {
		return fmt.Errorf("the link %s does not open a lobby dialog", args[0])
	}
	return a.drive(cmd.Context(), dialogInput{})
}
