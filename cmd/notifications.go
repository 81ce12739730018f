package cmd

import (
	"context"

	"lobbyctl/internal/calendar"
	"lobbyctl/internal/lobby"
	"lobbyctl/pkg/logging"

	"github.com/spf13/cobra"
)

// notificationsCmd represents the notifications command group
var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show and dismiss calendar notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List unread calendar notifications",
	Args:  cobra.NoArgs,
	RunE:  runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Mark every calendar notification as read",
	Args:  cobra.NoArgs,
	RunE:  runNotificationsRead,
}

func init() {
	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd)
	rootCmd.AddCommand(notificationsCmd)
}

// notificationView is one unread notification with its calendar entry.
type notificationView struct {
	CalendarID string `json:"calendarId" yaml:"calendarId"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Start      string `json:"start,omitempty" yaml:"start,omitempty"`
}

func runNotificationsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	views := a.notifications(ctx)
	if ok, err := a.printer.Data(views); ok {
		return err
	}
	if len(views) == 0 {
		a.say("No unread notifications.")
		return nil
	}
	t := a.printer.Table("Calendar ID", "Gameworld", "Start")
	for _, v := range views {
		t.Append(v.CalendarID, v.Name, v.Start)
	}
	t.Render()
	return nil
}

// notifications loads the unread notifications and names their gameworlds.
// A missing calendar only leaves the names empty.
func (a *app) notifications(ctx context.Context) []notificationView {
	var n lobby.CalendarNotifications
	var entries []lobby.CalendarEntry
	_ = a.progress.Run("Loading notifications...", func() error {
		n = a.lobby.GetCalendarNotifications(ctx)
		if len(n.List) == 0 {
			return nil
		}
		var err error
		if entries, err = a.lobby.GetCalendar(ctx); err != nil {
			logging.Debug("CLI", "Calendar unavailable: %v", err)
		}
		return nil
	})

	views := make([]notificationView, 0, len(n.List))
	for _, item := range n.List {
		v := notificationView{CalendarID: item.CalendarGameworldID}
		if e := calendar.Find(entries, item.CalendarGameworldID); e != nil {
			v.Name = e.DisplayName()
			v.Start = calendar.NewStartDate(e.Start).DateTimeShort(a.locale.Key)
		}
		views = append(views, v)
	}
	return views
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	err = a.progress.Run("Marking notifications as read...", func() error {
		return a.lobby.ReadAllCalendarNotifications(ctx)
	})
	if err != nil {
		return err
	}
	a.say("All notifications marked as read.")
	return nil
}
