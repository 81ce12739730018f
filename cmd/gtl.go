package cmd

import (
	"context"
	"errors"
	"fmt"

	"lobbyctl/internal/cli"
	"lobbyctl/internal/flows"

	"github.com/spf13/cobra"
)

var gtlCode string

// gtlCmd represents the gold transfer command
var gtlCmd = &cobra.Command{
	Use:   "gtl",
	Short: "Transfer the gold of a closed account to an avatar",
	Long: `Transfer the gold of a closed account to one of your avatars.

The transfer code is part of the link in the mail announcing the transfer.
You prove the ownership of the closed account with its email address, then
search the avatar that receives the gold and pick its gameworld.

Examples:
  lobbyctl gtl --code <code>
  lobbyctl open "https://lobby.example.com/?c=<code>#gtl"`,
	Args: cobra.NoArgs,
	RunE: runGTL,
}

func init() {
	gtlCmd.Flags().StringVar(&gtlCode, "code", "", "Transfer code from the mail")
	_ = gtlCmd.MarkFlagRequired("code")
	rootCmd.AddCommand(gtlCmd)
}

func runGTL(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, location("#gtl", nil, "c", gtlCode))
	if err != nil {
		return err
	}
	defer a.close()
	return a.drive(cmd.Context(), dialogInput{})
}

func (a *app) runGoldTransfer(ctx context.Context, code string) error {
	p, err := a.prompt()
	if err != nil {
		return err
	}

	gtl := flows.NewGoldTransfer(a.lobby, a.catalog, code)
	_ = a.progress.Run("Loading gameworlds...", func() error {
		gtl.LoadGameworlds(ctx)
		return nil
	})

	failures := 0
	for failures < maxAttempts {
		var err error
		switch gtl.Step() {
		case flows.GTLVerify:
			err = a.gtlVerify(ctx, p, gtl)
		case flows.GTLSearch:
			err = a.gtlSearch(ctx, p, gtl)
		case flows.GTLSelectGameworld:
			err = a.gtlSelect(p, gtl)
		case flows.GTLConfirm:
			err = a.gtlConfirm(ctx, p, gtl)
		case flows.GTLDone:
			a.say("%s", gtl.SuccessMessage())
			return nil
		}
		if err != nil {
			if err := a.formError(err); err != nil {
				return err
			}
			failures++
		}
	}
	return errors.New("gold transfer was not completed")
}

func (a *app) gtlVerify(ctx context.Context, p *cli.Prompter, gtl *flows.GoldTransfer) error {
	email, err := p.Line("Email address of the closed account", "")
	if err != nil {
		return err
	}
	err = a.progress.Run("Verifying...", func() error {
		return gtl.Verify(ctx, email)
	})
	if err == nil {
		a.say("%d gold can be transferred.", gtl.Amount())
	}
	return err
}

func (a *app) gtlSearch(ctx context.Context, p *cli.Prompter, gtl *flows.GoldTransfer) error {
	name, err := p.Required("Avatar name receiving the gold")
	if err != nil {
		return err
	}
	var notice string
	err = a.progress.Run("Searching...", func() error {
		var err error
		notice, err = gtl.Search(ctx, name)
		return err
	})
	if err != nil {
		return err
	}
	if notice != "" {
		a.say("%s", notice)
	}
	return nil
}

func (a *app) gtlSelect(p *cli.Prompter, gtl *flows.GoldTransfer) error {
	candidates := gtl.Candidates()
	if len(candidates) == 0 {
		gtl.ChangeAvatar()
		return nil
	}
	options := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		options = append(options, gameworldLabel(c.Gameworld.Name, c.Gameworld.Subtitle))
	}
	options = append(options, "Search another avatar")

	choice, err := p.Choose(fmt.Sprintf("%s plays on several gameworlds. Transfer to", gtl.TargetName()), options)
	if err != nil {
		return err
	}
	if choice == len(candidates) {
		gtl.ChangeAvatar()
		return nil
	}
	return gtl.Select(candidates[choice].Gameworld.UUID)
}

func (a *app) gtlConfirm(ctx context.Context, p *cli.Prompter, gtl *flows.GoldTransfer) error {
	target := gtl.Selected()
	a.say("Transfer %d gold to %s on %s.", gtl.Amount(), gtl.TargetName(),
		gameworldLabel(target.Gameworld.Name, target.Gameworld.Subtitle))
	if gtl.HasExcludedTargets() {
		a.say("Some gameworlds of this avatar cannot receive gold.")
	}

	options := []string{"Transfer", "Search another avatar"}
	if gtl.CanChangeGameworld() {
		options = append(options, "Choose another gameworld")
	}
	choice, err := p.Choose("Continue with", options)
	if err != nil {
		return err
	}
	switch choice {
	case 1:
		gtl.ChangeAvatar()
		return nil
	case 2:
		gtl.ChangeGameworld()
		return nil
	}
	return a.progress.Run("Transferring...", func() error {
		return gtl.Confirm(ctx)
	})
}

func gameworldLabel(name, subtitle string) string {
	if subtitle == "" {
		return name
	}
	return name + " (" + subtitle + ")"
}
