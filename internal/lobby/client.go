// Package lobby is the client for the Lobby service: session exchange,
// account mutations, GraphQL queries, content feeds and gameworld joining.
//
// All account operations are credentialed through the session cookie jar of
// the underlying api.Client. Content feeds (metadata, news, calendar) are
// public and sent without cookies.
package lobby

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/config"
	"lobbyctl/pkg/logging"
)

const (
	subsystem = "Lobby"

	// DefaultNewsAmount is the page size of GetNews.
	DefaultNewsAmount = 10
)

// Client talks to the Lobby service.
type Client struct {
	http           *api.Client
	sessionTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithSessionTimeout bounds the silent session check.
func WithSessionTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.sessionTimeout = timeout
	}
}

// New creates a Lobby client.
func New(httpClient *api.Client, opts ...Option) *Client {
	c := &Client{
		http:           httpClient,
		sessionTimeout: config.DefaultSessionTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the lobby base URL.
func (c *Client) Host() *url.URL {
	return c.http.BaseURL()
}

// AuthorizeResult is the response of the code exchange.
type AuthorizeResult struct {
	Success bool `json:"success,omitempty"`
}

// Authorize exchanges an Identity authorization code and the verifier that
// produced it for a session cookie. extra is merged into the request body.
func (c *Client) Authorize(ctx context.Context, code, verifier string, extra map[string]any) (*AuthorizeResult, error) {
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		body[k] = v
	}
	body["code"] = code
	body["code_verifier"] = verifier

	var res AuthorizeResult
	if err := c.http.Post(ctx, "/api/auth/code", body, &res); err != nil {
		return nil, err
	}
	logging.Info(subsystem, "Session established")
	return &res, nil
}

// Logout ends the lobby session.
func (c *Client) Logout(ctx context.Context) error {
	return c.http.Post(ctx, "/api/auth/logout", struct{}{}, nil)
}

// PasswordChangeRequest sends a password reset mail. The service answers the
// same way for unknown logins.
func (c *Client) PasswordChangeRequest(ctx context.Context, login, locale string) error {
	body := map[string]string{"login": login, "locale": locale}
	return c.http.Do(ctx, http.MethodPut, "/api/identity/password", body, nil)
}

// PasswordChangeConfirm sets a new password using the code from a reset or
// activation mail.
func (c *Client) PasswordChangeConfirm(ctx context.Context, code, password string) error {
	endpoint := "/api/identity/password?" + url.Values{"code": {code}}.Encode()
	return c.http.Post(ctx, endpoint, map[string]string{"password": password}, nil)
}

// SetName sets the account name ("handle#TAG").
func (c *Client) SetName(ctx context.Context, name string) error {
	return c.http.Do(ctx, http.MethodPatch, "/api/account/name", map[string]string{"name": name}, nil)
}

// UpdateOptions patches account options.
func (c *Client) UpdateOptions(ctx context.Context, options map[string]any) error {
	return c.http.Do(ctx, http.MethodPatch, "/api/account/options", options, nil)
}

// UpdateConsent patches consent settings.
func (c *Client) UpdateConsent(ctx context.Context, consent map[string]bool) error {
	return c.http.Do(ctx, http.MethodPatch, "/api/account/consent", consent, nil)
}

// GetMetadata fetches the list of running gameworlds.
func (c *Client) GetMetadata(ctx context.Context) (*Metadata, error) {
	var md Metadata
	if err := c.http.Get(ctx, "/api/metadata", &md, api.WithoutCredentials()); err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	return &md, nil
}

// GetGameworldInfo fetches the public info document of a gameworld.
func (c *Client) GetGameworldInfo(ctx context.Context, id string) (*GameworldInfo, error) {
	var info GameworldInfo
	if err := c.http.Get(ctx, "/api/metadata/info/"+url.PathEscape(id), &info, api.WithoutCredentials()); err != nil {
		return nil, fmt.Errorf("failed to fetch gameworld info: %w", err)
	}
	return &info, nil
}

// GetNews fetches up to amount news items published after the item with id
// after. An empty after starts at the newest item; amount <= 0 means
// DefaultNewsAmount.
func (c *Client) GetNews(ctx context.Context, after string, amount int) ([]NewsItem, error) {
	if amount <= 0 {
		amount = DefaultNewsAmount
	}
	q := url.Values{"after": {after}, "amount": {strconv.Itoa(amount)}}

	var items []NewsItem
	if err := c.http.Get(ctx, "/api/news?"+q.Encode(), &items, api.WithoutCredentials()); err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	return items, nil
}

// GetArticle fetches one news article including its HTML body.
func (c *Client) GetArticle(ctx context.Context, id string) (*NewsItem, error) {
	var item NewsItem
	if err := c.http.Get(ctx, "/api/news/"+url.PathEscape(id), &item, api.WithoutCredentials()); err != nil {
		return nil, fmt.Errorf("failed to fetch article %s: %w", id, err)
	}
	return &item, nil
}

// GetCalendar fetches the gameworld calendar.
func (c *Client) GetCalendar(ctx context.Context) ([]CalendarEntry, error) {
	var entries []CalendarEntry
	if err := c.http.Get(ctx, "/api/calendar", &entries, api.WithoutCredentials()); err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	return entries, nil
}

// ReadAllCalendarNotifications marks every calendar notification as read.
func (c *Client) ReadAllCalendarNotifications(ctx context.Context) error {
	return c.http.Post(ctx, "/api/notification/readAll", struct{}{}, nil)
}

type redirectResponse struct {
	RedirectTo string `json:"redirectTo"`
}

// PlayAvatar asks to enter the game with an existing avatar. The returned
// path is relative to the gameworld URL.
func (c *Client) PlayAvatar(ctx context.Context, avatarUUID string) (string, error) {
	var res redirectResponse
	if err := c.http.Post(ctx, "/api/avatar/play/"+url.PathEscape(avatarUUID), struct{}{}, &res); err != nil {
		return "", err
	}
	return res.RedirectTo, nil
}

// RegisterAvatar creates an avatar on a gameworld. The returned path is
// relative to the gameworld URL.
func (c *Client) RegisterAvatar(ctx context.Context, req RegisterAvatarRequest) (string, error) {
	var res redirectResponse
	if err := c.http.Post(ctx, "/api/avatar/play", req, &res); err != nil {
		return "", err
	}
	logging.Info(subsystem, "Registered avatar on gameworld %s", req.WUID)
	return res.RedirectTo, nil
}

// ResolveRedirect resolves a redirect path chosen by the service against the
// gameworld's own URL.
func ResolveRedirect(gameworldURL, redirectTo string) (string, error) {
	base, err := url.Parse(gameworldURL)
	if err != nil {
		return "", fmt.Errorf("invalid gameworld URL %q: %w", gameworldURL, err)
	}
	ref, err := url.Parse(redirectTo)
	if err != nil {
		return "", fmt.Errorf("invalid redirect %q: %w", redirectTo, err)
	}
	return base.ResolveReference(ref).String(), nil
}
