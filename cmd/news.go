package cmd

import (
	"time"

	"lobbyctl/internal/calendar"
	"lobbyctl/internal/cli"
	"lobbyctl/internal/lobby"
	lstrings "lobbyctl/pkg/strings"

	"github.com/spf13/cobra"
)

var (
	newsAfter  string
	newsAmount int
)

// newsCmd represents the news command group
var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Read the lobby news",
}

var newsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the latest news",
	Long: `List the latest news, newest first.

Use --after with the id of the last listed item to page further back.`,
	Args: cobra.NoArgs,
	RunE: runNewsList,
}

var newsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a news article",
	Args:  cobra.ExactArgs(1),
	RunE:  runNewsShow,
}

func init() {
	newsListCmd.Flags().StringVar(&newsAfter, "after", "", "List items older than the item with this id")
	newsListCmd.Flags().IntVar(&newsAmount, "amount", lobby.DefaultNewsAmount, "Number of items to list")

	newsCmd.AddCommand(newsListCmd, newsShowCmd)
	rootCmd.AddCommand(newsCmd)
}

func runNewsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	var items []lobby.NewsItem
	err = a.progress.Run("Loading news...", func() error {
		var err error
		items, err = a.lobby.GetNews(cmd.Context(), newsAfter, newsAmount)
		return err
	})
	if err != nil {
		return err
	}
	if ok, err := a.printer.Data(items); ok {
		return err
	}
	a.newsTable(items)
	return nil
}

func (a *app) newsTable(items []lobby.NewsItem) {
	if len(items) == 0 {
		a.say("No news.")
		return
	}
	t := a.printer.Table("ID", "Date", "Title", "Preview")
	for _, item := range items {
		t.Append(
			item.ID,
			calendar.NewStartDate(item.Date).Date(a.locale.Key),
			lstrings.Truncate(item.Title, 40),
			lstrings.Truncate(item.PreviewText, lstrings.PreviewWidth),
		)
	}
	t.Render()
}

func runNewsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	var item *lobby.NewsItem
	err = a.progress.Run("Loading article...", func() error {
		var err error
		item, err = a.lobby.GetArticle(cmd.Context(), args[0])
		return err
	})
	if err != nil {
		return err
	}
	if ok, err := a.printer.Data(item); ok {
		return err
	}

	body := item.FullHTMLText
	if body == "" {
		body = item.PreviewText
	}
	return cli.RenderTemplate(a.out, "article", map[string]any{
		"Title":     item.Title,
		"Published": time.Unix(item.Date, 0).UTC(),
		"Body":      cli.HTMLToText(body),
	})
}
