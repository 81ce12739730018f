// Package navigation models the client location (path, query, hash) and
// the navigator that moves between locations while carrying the referral
// parameters along.
package navigation

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// PreservedParams survive every navigation that does not set them itself.
var PreservedParams = []string{"server", "uc", "ad"}

// Location is a position inside the lobby site.
type Location struct {
	Path  string
	Query url.Values
	// Hash is the fragment including the leading '#', or "".
	Hash string
}

// ParseLocation parses a path-relative or absolute URL into a Location.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	return fromURL(u), nil
}

func fromURL(u *url.URL) Location {
	loc := Location{Path: u.Path, Query: u.Query()}
	if loc.Path == "" {
		loc.Path = "/"
	}
	if u.Fragment != "" {
		loc.Hash = "#" + u.Fragment
	}
	return loc
}

// HashName returns the hash without '#'.
func (l Location) HashName() string {
	return strings.TrimPrefix(l.Hash, "#")
}

// Get returns the first value of a query parameter.
func (l Location) Get(key string) string {
	if l.Query == nil {
		return ""
	}
	return l.Query.Get(key)
}

// String renders path, query and hash.
func (l Location) String() string {
	var b strings.Builder
	b.WriteString(l.Path)
	if q := l.Query.Encode(); q != "" {
		b.WriteString("?")
		b.WriteString(q)
	}
	b.WriteString(l.Hash)
	return b.String()
}

// WithoutHash returns a copy of l without the fragment.
func (l Location) WithoutHash() Location {
	l.Query = cloneValues(l.Query)
	l.Hash = ""
	return l
}

// Listener is notified after every navigation.
type Listener func(Location)

// Navigator holds the current location of one client.
type Navigator struct {
	origin *url.URL

	mu        sync.Mutex
	current   Location
	redirect  string
	listeners map[int]Listener
	nextID    int
}

// NewNavigator creates a navigator for the site at origin, starting at start
// (a path such as "/?server=X#loginLobby").
func NewNavigator(origin string, start string) (*Navigator, error) {
	o, err := url.Parse(origin)
	if err != nil || o.Scheme == "" || o.Host == "" {
		return nil, fmt.Errorf("invalid origin %q", origin)
	}
	loc, err := ParseLocation(start)
	if err != nil {
		return nil, err
	}
	if loc.Path == "" {
		loc.Path = "/"
	}
	return &Navigator{
		origin:    &url.URL{Scheme: o.Scheme, Host: o.Host},
		current:   loc,
		listeners: map[int]Listener{},
	}, nil
}

// Origin returns the site origin.
func (n *Navigator) Origin() string {
	return n.origin.String()
}

// Current returns the current location.
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	cur := n.current
	cur.Query = cloneValues(cur.Query)
	return cur
}

// Listen registers fn for every navigation and returns a function removing it.
func (n *Navigator) Listen(fn Listener) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// Resolve computes the location Navigate(to) would move to without moving.
//
// "?…" and "#…" are relative to the current path, "/…" and "./…" to the
// origin, anything else must be absolute. Preserved parameters of the
// current location are copied unless to sets them.
func (n *Navigator) Resolve(to string) (Location, error) {
	if to == "" {
		return Location{}, fmt.Errorf("empty navigation target")
	}

	cur := n.Current()

	var target *url.URL
	var err error
	switch to[0] {
	case '?', '#':
		target, err = n.origin.Parse(cur.Path + to)
	case '.', '/':
		target, err = n.origin.Parse(to)
	default:
		target, err = url.Parse(to)
		if err == nil && !target.IsAbs() {
			err = fmt.Errorf("navigation target %q is not absolute", to)
		}
	}
	if err != nil {
		return Location{}, err
	}

	loc := fromURL(target)
	for _, key := range PreservedParams {
		if _, set := loc.Query[key]; set {
			continue
		}
		if v, ok := cur.Query[key]; ok && len(v) > 0 {
			loc.Query.Set(key, v[0])
		}
	}
	return loc, nil
}

// Navigate moves to the location described by to and notifies listeners.
func (n *Navigator) Navigate(to string) (Location, error) {
	loc, err := n.Resolve(to)
	if err != nil {
		return Location{}, err
	}
	n.set(loc)
	return loc, nil
}

// Set replaces the current location, e.g. when the user opens a link.
func (n *Navigator) Set(loc Location) {
	loc.Query = cloneValues(loc.Query)
	n.set(loc)
}

// Redirect records a full navigation away from the site. It is terminal for
// the client; the location itself is left unchanged.
func (n *Navigator) Redirect(target string) {
	n.mu.Lock()
	n.redirect = target
	n.mu.Unlock()
}

// Redirected returns the last full navigation target, or "".
func (n *Navigator) Redirected() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirect
}

func (n *Navigator) set(loc Location) {
	n.mu.Lock()
	n.current = loc
	listeners := make([]Listener, 0, len(n.listeners))
	for _, fn := range n.listeners {
		listeners = append(listeners, fn)
	}
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
