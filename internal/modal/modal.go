// Package modal maps the lobby location to the modal window it opens.
//
// The hash fragment names the modal; some modals also need a query
// parameter. A hash whose parameter is missing opens nothing.
package modal

import (
	"sync"

	"lobbyctl/internal/navigation"
	"lobbyctl/pkg/logging"
)

const subsystem = "Modal"

// Kind identifies a modal window.
type Kind string

const (
	None              Kind = ""
	Login             Kind = "loginLobby"
	Registration      Kind = "registration"
	LanguageSelection Kind = "languageSelection"
	PasswordRecovery  Kind = "passwordRecovery"
	SetNewPassword    Kind = "setNewPassword"
	Activation        Kind = "activation"
	ActivationSocial  Kind = "activationSocial"
	ErrorSocial       Kind = "errorSocial"
	GoldTransfer      Kind = "gtl"
	CalendarGameworld Kind = "calendarGameworldDetails"
	ReferAFriend      Kind = "referAFriendForwarding"
)

// Modal is the resolved modal and the parameter it was opened with.
type Modal struct {
	Kind Kind
	// Param is the value of the required query parameter, if the modal has
	// one: code, c, calendar (or server) or uc.
	Param string
}

// Open reports whether m is an actual modal.
func (m Modal) Open() bool {
	return m.Kind != None
}

type route struct {
	kind   Kind
	params []string
}

var routes = map[string]route{
	"#loginLobby":               {kind: Login},
	"#registration":             {kind: Registration},
	"#language":                 {kind: LanguageSelection},
	"#languageSelection":        {kind: LanguageSelection},
	"#passwordRecovery":         {kind: PasswordRecovery},
	"#setNewPassword":           {kind: SetNewPassword, params: []string{"code"}},
	"#activation":               {kind: Activation, params: []string{"code"}},
	"#activationSocial":         {kind: ActivationSocial, params: []string{"code"}},
	"#errorSocial":              {kind: ErrorSocial, params: []string{"code"}},
	"#gtl":                      {kind: GoldTransfer, params: []string{"c"}},
	"#calendarGameworldDetails": {kind: CalendarGameworld, params: []string{"calendar", "server"}},
	"#referAFriendForwarding":   {kind: ReferAFriend, params: []string{"uc"}},
}

// Resolve returns the modal opened by loc.
func Resolve(loc navigation.Location) Modal {
	r, ok := routes[loc.Hash]
	if !ok {
		return Modal{}
	}
	if len(r.params) == 0 {
		return Modal{Kind: r.kind}
	}
	for _, p := range r.params {
		if v := loc.Get(p); v != "" {
			return Modal{Kind: r.kind, Param: v}
		}
	}
	return Modal{}
}

// Manager tracks the active modal of one navigator.
type Manager struct {
	mu        sync.Mutex
	nav       *navigation.Navigator
	current   Modal
	detach    func()
	listeners []func(Modal)
}

// NewManager creates a manager. Call Attach to follow a navigator.
func NewManager() *Manager {
	return &Manager{}
}

// Resolve returns the modal for loc without changing the manager.
func (m *Manager) Resolve(loc navigation.Location) Modal {
	return Resolve(loc)
}

// Attach follows nav, recomputing the active modal after every navigation.
// A previous navigator is released.
func (m *Manager) Attach(nav *navigation.Navigator) {
	m.mu.Lock()
	if m.detach != nil {
		m.detach()
	}
	m.nav = nav
	m.mu.Unlock()

	detach := nav.Listen(m.update)
	m.mu.Lock()
	m.detach = detach
	m.mu.Unlock()

	m.update(nav.Current())
}

// OnChange registers fn for every change of the active modal.
func (m *Manager) OnChange(fn func(Modal)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Current returns the active modal.
func (m *Manager) Current() Modal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close drops the hash from the location, closing the active modal.
func (m *Manager) Close() {
	m.mu.Lock()
	nav := m.nav
	m.mu.Unlock()
	if nav == nil {
		m.update(navigation.Location{})
		return
	}
	nav.Set(nav.Current().WithoutHash())
}

func (m *Manager) update(loc navigation.Location) {
	next := Resolve(loc)

	m.mu.Lock()
	changed := next != m.current
	m.current = next
	listeners := append([]func(Modal){}, m.listeners...)
	m.mu.Unlock()

	if !changed {
		return
	}
	logging.Debug(subsystem, "Active modal: %q", next.Kind)
	for _, fn := range listeners {
		fn(next)
	}
}
