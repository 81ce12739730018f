package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lobbyctl/pkg/logging"

	"golang.org/x/net/publicsuffix"
)

const cookieFileName = "cookies.json"

// CookieStore is an http.CookieJar that persists the cookies it receives so
// the lobby session survives between CLI invocations.
//
// SECURITY: cookies are session credentials.
//   - The file is written with 0600 permissions inside a 0700 directory
//   - Cookie values are never logged, only hosts and event names
//   - Expired cookies are dropped on load
type CookieStore struct {
	mu   sync.Mutex
	path string
	jar  *cookiejar.Jar

	// origin -> cookie key -> cookie
	cookies map[string]map[string]storedCookie
	now     func() time.Time
}

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (c storedCookie) key() string {
	return c.Name + "|" + c.Domain + "|" + c.Path
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c storedCookie) httpCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

// NewCookieStore opens the cookie store in dir, creating dir if needed.
// An empty dir keeps cookies in memory only.
func NewCookieStore(dir string) (*CookieStore, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	s := &CookieStore{
		jar:     jar,
		cookies: map[string]map[string]storedCookie{},
		now:     time.Now,
	}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	s.path = filepath.Join(dir, cookieFileName)

	if err := s.load(); err != nil {
		logging.Logger("CookieStore").Warn("SECURITY_AUDIT: session cookies could not be loaded",
			"event", "cookie_load_failed",
			"error", err.Error(),
		)
	}
	return s, nil
}

// SetCookies implements http.CookieJar.
func (s *CookieStore) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar.SetCookies(u, cookies)

	origin := originOf(u)
	now := s.now()
	for _, c := range cookies {
		stored := storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if c.MaxAge > 0 {
			stored.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}

		if c.MaxAge < 0 || stored.expired(now) {
			if byKey, ok := s.cookies[origin]; ok {
				delete(byKey, stored.key())
			}
			continue
		}
		if s.cookies[origin] == nil {
			s.cookies[origin] = map[string]storedCookie{}
		}
		s.cookies[origin][stored.key()] = stored
	}

	if err := s.persist(); err != nil {
		logging.Logger("CookieStore").Warn("SECURITY_AUDIT: session cookies could not be stored",
			"event", "cookie_store_failed",
			"host", u.Host,
			"error", err.Error(),
		)
		return
	}
	logging.Logger("CookieStore").Debug("SECURITY_AUDIT: session cookies stored",
		"event", "cookie_stored",
		"host", u.Host,
		"count", len(cookies),
	)
}

// Cookies implements http.CookieJar.
func (s *CookieStore) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	jar := s.jar
	s.mu.Unlock()
	return jar.Cookies(u)
}

// HasCookies reports whether any cookie would be sent to u.
func (s *CookieStore) HasCookies(u *url.URL) bool {
	return len(s.Cookies(u)) > 0
}

// Clear drops every cookie and removes the cookie file.
func (s *CookieStore) Clear() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar = jar
	s.cookies = map[string]map[string]storedCookie{}

	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Logger("CookieStore").Warn("SECURITY_AUDIT: session cookie deletion failed",
				"event", "cookie_delete_failed",
				"error", err.Error(),
			)
			return fmt.Errorf("failed to remove session cookies: %w", err)
		}
	}

	logging.Logger("CookieStore").Info("SECURITY_AUDIT: session cookies deleted", "event", "cookie_deleted")
	return nil
}

func (s *CookieStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var persisted map[string][]storedCookie
	if err := json.Unmarshal(data, &persisted); err != nil {
		return fmt.Errorf("invalid cookie file: %w", err)
	}

	now := s.now()
	for origin, list := range persisted {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}
		var live []*http.Cookie
		for _, c := range list {
			if c.expired(now) {
				continue
			}
			if s.cookies[origin] == nil {
				s.cookies[origin] = map[string]storedCookie{}
			}
			s.cookies[origin][c.key()] = c
			live = append(live, c.httpCookie())
		}
		if len(live) > 0 {
			s.jar.SetCookies(u, live)
		}
	}
	return nil
}

// persist writes the cookie file. The caller holds s.mu.
func (s *CookieStore) persist() error {
	if s.path == "" {
		return nil
	}

	out := make(map[string][]storedCookie, len(s.cookies))
	for origin, byKey := range s.cookies {
		for _, c := range byKey {
			out[origin] = append(out[origin], c)
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func originOf(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
