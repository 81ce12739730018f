package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/calendar"
	"lobbyctl/internal/cli"
	"lobbyctl/internal/flows"
	"lobbyctl/internal/lobby"
	"lobbyctl/pkg/logging"
	lstrings "lobbyctl/pkg/strings"

	"github.com/spf13/cobra"
)

var (
	calendarJoin   bool
	calendarParams playParams
)

// calendarCmd represents the calendar command group
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Browse upcoming and running gameworlds",
	Long: `Browse the gameworld calendar.

Examples:
  lobbyctl calendar list              # All announced gameworlds
  lobbyctl calendar next              # The next gameworld to start
  lobbyctl calendar show <id>         # Details of one gameworld
  lobbyctl calendar show <id> --join  # Join a running gameworld`,
}

var calendarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the gameworld calendar",
	Args:  cobra.NoArgs,
	RunE:  runCalendarList,
}

var calendarShowCmd = &cobra.Command{
	Use:   "show <id|uuid>",
	Short: "Show the details of a calendar gameworld",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarShow,
}

var calendarNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next gameworld to start",
	Args:  cobra.NoArgs,
	RunE:  runCalendarNext,
}

func init() {
	calendarShowCmd.Flags().BoolVar(&calendarJoin, "join", false, "Join the gameworld after showing it")
	calendarParams.register(calendarShowCmd)

	calendarCmd.AddCommand(calendarListCmd, calendarShowCmd, calendarNextCmd)
	rootCmd.AddCommand(calendarCmd)
}

// gameworldView is the data of the gameworld detail template.
type gameworldView struct {
	ID            string   `json:"id" yaml:"id"`
	UUID          string   `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Name          string   `json:"name" yaml:"name"`
	Subtitle      string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Start         string   `json:"start" yaml:"start"`
	Zone          string   `json:"zone" yaml:"zone"`
	Speed         float64  `json:"speed,omitempty" yaml:"speed,omitempty"`
	Tribes        []string `json:"tribes,omitempty" yaml:"tribes,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Indeterminate bool     `json:"indeterminate" yaml:"indeterminate"`
	Action        string   `json:"action" yaml:"action"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
}

func (a *app) loadCalendar(ctx context.Context) ([]lobby.CalendarEntry, error) {
	var entries []lobby.CalendarEntry
	err := a.progress.Run("Loading calendar...", func() error {
		var err error
		entries, err = a.lobby.GetCalendar(ctx)
		return err
	})
	return entries, err
}

func runCalendarList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.loadCalendar(cmd.Context())
	if err != nil {
		return err
	}
	if ok, err := a.printer.Data(entries); ok {
		return err
	}

	t := a.printer.Table("ID", "Name", "Start", "Speed", "Tags", "Status")
	now := time.Now()
	for _, e := range entries {
		start := calendar.NewStartDate(e.Start)
		t.Append(
			e.ID,
			lstrings.Truncate(e.DisplayName(), 32),
			start.DateTimeShort(a.locale.Key),
			speedLabel(e.Metadata.Speed),
			strings.Join(tagNames(calendar.Tags(e)), ","),
			entryStatus(e, now),
		)
	}
	if t.Len() == 0 {
		a.say("No gameworlds announced.")
		return nil
	}
	t.Render()
	return nil
}

func runCalendarShow(cmd *cobra.Command, args []string) error {
	start := ""
	if calendarJoin {
		start = location("#calendarGameworldDetails", calendarParams.values(), "calendar", args[0])
	}
	a, err := newApp(cmd, start)
	if err != nil {
		return err
	}
	defer a.close()

	if calendarJoin {
		return a.drive(cmd.Context(), dialogInput{})
	}
	return a.showCalendarEntry(cmd.Context(), args[0], false)
}

func runCalendarNext(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.loadCalendar(cmd.Context())
	if err != nil {
		return err
	}
	next := calendar.NextGameworld(entries, time.Now())
	if next == nil {
		a.say("No upcoming gameworld is announced.")
		return nil
	}
	return a.renderCalendarEntry(cmd.Context(), entries, *next)
}

// showCalendarEntry prints the details of the calendar entry with the given
// calendar id or gameworld uuid. With interactive set the player may act on
// it: join, enter an invitation code or register.
func (a *app) showCalendarEntry(ctx context.Context, id string, interactive bool) error {
	entries, err := a.loadCalendar(ctx)
	if err != nil {
		return err
	}
	entry := calendar.Find(entries, id)
	if entry == nil {
		entry = calendar.FindByUUID(entries, id)
	}
	if entry == nil {
		return fmt.Errorf("gameworld %q is not in the calendar", id)
	}

	if err := a.renderCalendarEntry(ctx, entries, *entry); err != nil {
		return err
	}
	if !interactive {
		return nil
	}
	return a.actOnCalendarEntry(ctx, entries, *entry)
}

func (a *app) calendarAction(entries []lobby.CalendarEntry, e lobby.CalendarEntry, loggedIn bool) calendar.Action {
	return calendar.ActionFor(e, calendar.FindByUUID(entries, e.UUID), loggedIn, time.Now())
}

func (a *app) renderCalendarEntry(ctx context.Context, entries []lobby.CalendarEntry, e lobby.CalendarEntry) error {
	loggedIn := a.session(ctx) != nil
	action := a.calendarAction(entries, e, loggedIn)
	start := calendar.NewStartDate(e.Start)

	view := gameworldView{
		ID:            e.ID,
		UUID:          e.UUID,
		Name:          e.DisplayName(),
		Subtitle:      e.Metadata.Subtitle,
		Start:         start.DateTimeShort(a.locale.Key),
		Zone:          start.Zone(),
		Speed:         e.Metadata.Speed,
		Tribes:        a.tribeNames(ctx, e),
		Tags:          tagNames(calendar.Tags(e)),
		Indeterminate: calendar.IsIndeterminate(e),
		Action:        action.String(),
	}
	if e.UUID != "" && action != calendar.ActionNone && action != calendar.ActionMobileOnly {
		view.URL = calendar.PlayURL(a.lobby.Host(), a.nav.Current().Query, e.UUID)
	}

	if ok, err := a.printer.Data(view); ok {
		return err
	}
	return cli.RenderTemplate(a.out, "gameworld", view)
}

// tribeNames lists the playable tribes of an entry. Running gameworlds
// publish them in their info document when the calendar has none.
func (a *app) tribeNames(ctx context.Context, e lobby.CalendarEntry) []string {
	var ids []int
	if e.Info != nil {
		ids = e.Info.Tribes
	}
	if len(ids) == 0 && e.UUID != "" {
		info, err := a.lobby.GetGameworldInfo(ctx, e.UUID)
		if err != nil {
			logging.Debug("CLI", "Gameworld info for %s unavailable: %v", e.UUID, err)
		} else {
			for _, t := range info.Tribes {
				if id, err := strconv.Atoi(t.ID); err == nil {
					ids = append(ids, id)
				}
			}
		}
	}

	names := make([]string, 0, len(ids))
	for _, id := range calendar.VisibleTribes(ids) {
		if name := calendar.TribeClass(id); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (a *app) actOnCalendarEntry(ctx context.Context, entries []lobby.CalendarEntry, e lobby.CalendarEntry) error {
	loggedIn := a.store.Account() != nil
	action := a.calendarAction(entries, e, loggedIn)
	switch action {
	case calendar.ActionNone:
		a.say("This gameworld cannot be joined right now.")
		return nil
	case calendar.ActionMobileOnly:
		a.say("This gameworld can only be played in the mobile app.")
		return nil
	}

	p, err := a.prompt()
	if err != nil {
		return err
	}
	ok, err := p.Confirm("Join "+e.DisplayName(), true)
	if err != nil || !ok {
		return err
	}
	a.pingTracking(ctx, e)

	params := a.nav.Current().Query
	switch action {
	case calendar.ActionJoin:
		params.Set("server", e.UUID)
		_, err := a.nav.Navigate(location("#registration", params))
		return err
	case calendar.ActionRegistrationKey:
		return a.joinWithRegistrationKey(ctx, p, e, params)
	default:
		params.Set("server", e.UUID)
		a.play.Run(ctx, params)
		return nil
	}
}

func (a *app) joinWithRegistrationKey(ctx context.Context, p *cli.Prompter, e lobby.CalendarEntry, params url.Values) error {
	join := flows.NewRegistrationKeyJoin(a.lobby, a.nav, a.catalog, e)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if wait := join.Cooldown(); wait > 0 {
			a.say("Please wait %d seconds before the next attempt.", wait)
			return nil
		}
		code, err := p.Required("Invitation code")
		if err != nil {
			return err
		}
		err = a.progress.Run("Joining...", func() error {
			_, err := join.Submit(ctx, code, params)
			return err
		})
		if err == nil {
			return nil
		}
		if err := a.formError(err); err != nil {
			return err
		}
	}
	return nil
}

// pingTracking notifies the tracking URL of an entry. Failures are logged.
func (a *app) pingTracking(ctx context.Context, e lobby.CalendarEntry) {
	if e.TrackingURL == "" {
		return
	}
	ping, err := calendar.TrackingPingURL(e.TrackingURL)
	if err == nil {
		err = a.lobbyHTTP.Get(ctx, ping, nil, api.WithoutCredentials())
	}
	if err != nil {
		logging.Debug("CLI", "Tracking ping failed: %v", err)
	}
}

func speedLabel(speed float64) string {
	if speed == 0 {
		return ""
	}
	return strconv.FormatFloat(speed, 'f', -1, 64) + "x"
}

func tagNames(tags []calendar.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func entryStatus(e lobby.CalendarEntry, now time.Time) string {
	switch {
	case calendar.HasStarted(e, now) && calendar.IsPlayable(e, now):
		return "running"
	case calendar.HasStarted(e, now):
		return "closed"
	case e.UUID != "":
		return "created"
	}
	return "announced"
}
