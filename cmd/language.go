package cmd

import (
	"fmt"

	"lobbyctl/internal/i18n"

	"github.com/spf13/cobra"
)

// languageCmd represents the language command group
var languageCmd = &cobra.Command{
	Use:   "language",
	Short: "List and choose the lobby language",
}

var languageListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List the available languages",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLanguageList,
}

var languageSelectCmd = &cobra.Command{
	Use:   "select [search]",
	Short: "Choose a language interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLanguageSelect,
}

func init() {
	languageCmd.AddCommand(languageListCmd, languageSelectCmd)
	rootCmd.AddCommand(languageCmd)
}

func runLanguageList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	locales := i18n.Search(query)
	if ok, err := a.printer.Data(locales); ok {
		return err
	}

	t := a.printer.Table("Key", "Language", "Country", "Active")
	for _, l := range locales {
		t.Append(l.Key, l.LangNative, l.CountryNative, l.Key == a.locale.Key)
	}
	if t.Len() == 0 {
		a.say("No language matches %q.", query)
		return nil
	}
	t.Render()
	return nil
}

func runLanguageSelect(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "/#languageSelection")
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) > 0 {
		return a.runLanguageSelection(args[0])
	}
	return a.drive(cmd.Context(), dialogInput{})
}

// runLanguageSelection lets the player pick a locale among those matching
// query and switches the texts of this invocation to it.
func (a *app) runLanguageSelection(query string) error {
	p, err := a.prompt()
	if err != nil {
		return err
	}

	a.say("Current language: %s (%s)", a.locale.LangNative, a.locale.Key)
	if query == "" {
		if query, err = p.Line("Search for a language or country", ""); err != nil {
			return err
		}
	}
	matches := i18n.Search(query)
	if len(matches) == 0 {
		a.say("No language matches your search.")
		return nil
	}

	options := make([]string, len(matches))
	for i, l := range matches {
		options[i] = fmt.Sprintf("%s (%s)", l.LangNative, l.CountryNative)
	}
	choice, err := p.Choose("Language", options)
	if err != nil {
		return err
	}

	chosen := matches[choice]
	if err := a.catalog.Reload(chosen.Key); err != nil {
		return err
	}
	a.locale = chosen
	a.say("Language switched to %s. Pass --locale %s or set locale: %s in config.yaml to keep it.",
		chosen.LangNative, chosen.Key, chosen.Key)
	return nil
}
