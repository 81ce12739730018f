package cmd

import (
	"time"

	"lobbyctl/internal/calendar"
	"lobbyctl/internal/lobby"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// homeNewsAmount is the number of news items on the overview.
const homeNewsAmount = 3

// homeCmd represents the home command
var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the session, the next gameworld and the latest news",
	Args:  cobra.NoArgs,
	RunE:  runHome,
}

func init() {
	rootCmd.AddCommand(homeCmd)
}

// homeView is the structured output of home.
type homeView struct {
	Account *lobby.Account       `json:"account" yaml:"account"`
	Next    *lobby.CalendarEntry `json:"nextGameworld,omitempty" yaml:"nextGameworld,omitempty"`
	News    []lobby.NewsItem     `json:"news" yaml:"news"`
}

func runHome(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	var view homeView
	var entries []lobby.CalendarEntry
	err = a.progress.Run("Loading lobby...", func() error {
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			a.sessionOnce.Do(func() { a.store.Init(ctx, nil) })
			return nil
		})
		g.Go(func() error {
			var err error
			view.News, err = a.lobby.GetNews(ctx, "", homeNewsAmount)
			return err
		})
		g.Go(func() error {
			var err error
			entries, err = a.lobby.GetCalendar(ctx)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return err
	}
	view.Account = a.store.Account()
	view.Next = calendar.NextGameworld(entries, time.Now())

	if ok, err := a.printer.Data(view); ok {
		return err
	}

	if view.Account != nil {
		a.say("Logged in as %s", view.Account.Name)
	} else {
		a.say(`Not logged in. Run "lobbyctl auth login" to log in.`)
	}
	if view.Next != nil {
		start := calendar.NewStartDate(view.Next.Start)
		a.say("Next gameworld: %s, starting %s (%s)",
			view.Next.DisplayName(), start.DateTimeShort(a.locale.Key), start.Zone())
	}
	a.say("")
	a.newsTable(view.News)
	return nil
}
