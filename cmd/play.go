package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var playFlags playParams

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Enter a gameworld",
	Long: `Enter a gameworld with the current session.

--server picks a gameworld by uuid and --uc follows an invite from a
friend. --ad passes an advertisement code on. Without a gameworld the
lobby itself is opened. The command prints the URL to open in a browser.

Examples:
  lobbyctl play
  lobbyctl play --server 6c1e2d1a-0c4b-4c1a-9f3e-5b2b1c9d8e7f
  lobbyctl play --uc <invite code>`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playFlags.register(playCmd)
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, location("", playFlags.values()))
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	out := a.play.Run(ctx, a.nav.Current().Query)
	if out.Target == "" {
		return errors.New("no gameworld to enter")
	}
	if a.modals.Current().Open() {
		return a.drive(ctx, dialogInput{})
	}
	a.reportOutcome(&out)
	return nil
}
