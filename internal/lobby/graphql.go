package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lobbyctl/pkg/logging"
)

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// GraphQL runs a query against the lobby GraphQL endpoint and decodes its
// data member into out. query is the selection set, e.g. "{session{identity{guid name}}}".
func (c *Client) GraphQL(ctx context.Context, query string, out any) error {
	var res graphqlResponse
	if err := c.http.Post(ctx, "/api/graphql", map[string]string{"query": "query" + query}, &res); err != nil {
		return err
	}

	if len(res.Errors) > 0 && (len(res.Data) == 0 || string(res.Data) == "null") {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if out == nil || len(res.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}

// GetSession returns the account of the current session, or nil when there
// is none. Any failure, including the check timeout, counts as no session.
func (c *Client) GetSession(ctx context.Context) *Account {
	ctx, cancel := context.WithTimeout(ctx, c.sessionTimeout)
	defer cancel()

	var data struct {
		Session *struct {
			Identity *Account `json:"identity"`
		} `json:"session"`
	}
	if err := c.GraphQL(ctx, "{session{identity{guid name}}}", &data); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Debug(subsystem, "Session check timed out after %s", c.sessionTimeout)
		} else {
			logging.Debug(subsystem, "Session check failed: %v", err)
		}
		return nil
	}
	if data.Session == nil {
		return nil
	}
	return data.Session.Identity
}

// GetAvatars lists the gameworlds the account has avatars on. Failures yield
// an empty list.
func (c *Client) GetAvatars(ctx context.Context) []Avatar {
	var data struct {
		Avatars []Avatar `json:"avatars"`
	}
	if err := c.GraphQL(ctx, "{avatars{gameworld{uuid}}}", &data); err != nil {
		logging.Debug(subsystem, "Avatar list unavailable: %v", err)
		return []Avatar{}
	}
	if data.Avatars == nil {
		return []Avatar{}
	}
	return data.Avatars
}

// AvatarOn returns the account's avatar on the gameworld with wuid that can
// start playing, or nil when there is none.
func (c *Client) AvatarOn(ctx context.Context, wuid string) (*Avatar, error) {
	quoted, err := json.Marshal(wuid)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("{avatars(wuid: %s, context: {type: StartPlaying}){uuid name}}", quoted)

	var data struct {
		Avatars []Avatar `json:"avatars"`
	}
	if err := c.GraphQL(ctx, query, &data); err != nil {
		return nil, err
	}
	if len(data.Avatars) == 0 {
		return nil, nil
	}
	return &data.Avatars[0], nil
}

// AccountInfo fetches the avatars and the identity name of the account.
func (c *Client) AccountInfo(ctx context.Context) (*AccountInfo, error) {
	var data struct {
		Avatars []Avatar `json:"avatars"`
		Session *struct {
			Identity *struct {
				Name string `json:"name"`
			} `json:"identity"`
		} `json:"session"`
	}
	if err := c.GraphQL(ctx, "{avatars{uuid name} session{identity{name}}}", &data); err != nil {
		return nil, err
	}

	info := &AccountInfo{Avatars: data.Avatars}
	if data.Session != nil && data.Session.Identity != nil {
		info.Name = data.Session.Identity.Name
	}
	return info, nil
}

// GetCalendarNotifications returns the unread calendar notifications.
// Failures yield an empty result.
func (c *Client) GetCalendarNotifications(ctx context.Context) CalendarNotifications {
	var data struct {
		Notification *CalendarNotifications `json:"notification"`
	}
	err := c.GraphQL(ctx, "{notification{unreadCount list{...on NotificationCalendarGameworld{calendarGameworldId}}}}", &data)
	if err != nil || data.Notification == nil {
		if err != nil {
			logging.Debug(subsystem, "Calendar notifications unavailable: %v", err)
		}
		return CalendarNotifications{List: []CalendarNotification{}}
	}
	if data.Notification.List == nil {
		data.Notification.List = []CalendarNotification{}
	}
	return *data.Notification
}
