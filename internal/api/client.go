package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lobbyctl/internal/config"
	"lobbyctl/pkg/logging"
)

const subsystem = "API"

// Client issues JSON requests against one base host.
type Client struct {
	base       *url.URL
	httpClient *http.Client

	// anonClient shares the transport of httpClient but never sends cookies.
	anonClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCookieJar makes the client send and store cookies through jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// RequestOption adjusts a single request.
type RequestOption func(*requestSettings)

type requestSettings struct {
	anonymous bool
	header    http.Header
}

// WithoutCredentials sends the request without the cookie jar.
func WithoutCredentials() RequestOption {
	return func(s *requestSettings) {
		s.anonymous = true
	}
}

// WithHeader adds a request header.
func WithHeader(key, value string) RequestOption {
	return func(s *requestSettings) {
		if s.header == nil {
			s.header = http.Header{}
		}
		s.header.Add(key, value)
	}
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: config.DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	anon := *c.httpClient
	anon.Jar = nil
	c.anonClient = &anon

	return c, nil
}

// NewLobby creates the credentialed client for the Lobby service.
func NewLobby(cfg *config.Config, jar http.CookieJar, opts ...Option) (*Client, error) {
	opts = append([]Option{WithTimeout(cfg.HTTPTimeout), WithCookieJar(jar)}, opts...)
	return New(cfg.Lobby.Host, opts...)
}

// NewIdentity creates the client for the Identity service. It never sends cookies.
func NewIdentity(cfg *config.Config, opts ...Option) (*Client, error) {
	opts = append([]Option{WithTimeout(cfg.HTTPTimeout)}, opts...)
	return New(cfg.Identity.Host, opts...)
}

// BaseURL returns a copy of the base host URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// ResolveURL resolves endpoint against the base host.
func (c *Client) ResolveURL(endpoint string) (*url.URL, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return c.base.ResolveReference(ref), nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out, opts...)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out, opts...)
}

// Do sends body as JSON (when non-nil) and decodes a JSON response into out
// (when non-nil). A non-2xx status is returned as *Error.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, opts ...RequestOption) error {
	settings := requestSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	target, err := c.ResolveURL(endpoint)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range settings.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	httpClient := c.httpClient
	if settings.anonymous {
		httpClient = c.anonClient
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		logging.Debug(subsystem, "%s %s failed after %s: %v", method, target.Path, logging.Since(start), err)
		return fmt.Errorf("%s %s: %w", method, target.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	logging.Debug(subsystem, "%s %s -> %d (%s)", method, target.Path, resp.StatusCode, logging.Since(start))

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json") && len(bytes.TrimSpace(data)) > 0

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody *ErrorBody
		if isJSON {
			var decoded ErrorBody
			if json.Unmarshal(data, &decoded) == nil {
				errBody = &decoded
			}
		}
		return newError(resp.StatusCode, errBody)
	}

	if out == nil || !isJSON {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", target.Path, err)
	}
	return nil
}
