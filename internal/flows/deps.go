package flows

import (
	"context"
	"net/url"
	"strings"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby"
	"lobbyctl/internal/navigation"
	"lobbyctl/internal/playflow"
	"lobbyctl/internal/session"
)

const subsystem = "Flows"

// Navigator performs client-side navigations. navigation.Navigator
// satisfies it.
type Navigator interface {
	Navigate(to string) (navigation.Location, error)
}

// Translator turns a message key into display text. i18n.Catalog
// satisfies it.
type Translator interface {
	Translate(key string, params map[string]string) string
}

// PlayFlow sends the player into a gameworld after authentication.
type PlayFlow interface {
	Run(ctx context.Context, params url.Values) playflow.Outcome
}

// SessionRefresher re-reads the lobby session into the auth store.
type SessionRefresher interface {
	RefreshSession(ctx context.Context)
}

// Registrar starts registrations.
type Registrar interface {
	Register(ctx context.Context, data session.RegisterData) (*session.RegisterResult, error)
}

// Authenticator logs in with credentials and exposes the current account.
type Authenticator interface {
	Login(ctx context.Context, creds session.Credentials) (*session.LoginResult, error)
	Account() *lobby.Account
}

// AccountService is the auth service used by activation and password flows.
type AccountService interface {
	Activate(ctx context.Context, data session.ActivationData) (string, error)
	ResendActivation(ctx context.Context, activationCode string) (time.Time, error)
	ConfirmPasswordChange(ctx context.Context, code, password string) error
	RequestPasswordRecovery(ctx context.Context, login, locale string)
}

// SocialAuthenticator exchanges a social provider payload for a session.
type SocialAuthenticator interface {
	SocialLogin(ctx context.Context, provider identity.Provider, payload map[string]any) error
}

// Profile is the part of the lobby client the username step uses.
type Profile interface {
	SetName(ctx context.Context, name string) error
	AccountInfo(ctx context.Context) (*lobby.AccountInfo, error)
}

// InlineError is a failure shown next to the form that caused it.
type InlineError struct {
	Message string
	// Code is the service error code behind the message, if any.
	Code string
}

func (e *InlineError) Error() string {
	return e.Message
}

// translator wraps an optional Translator. Without one, keys are shown as
// they are with their placeholders filled in.
type translator struct {
	tr Translator
}

func (t translator) T(key string, params map[string]string) string {
	if t.tr != nil {
		return t.tr.Translate(key, params)
	}
	if len(params) == 0 {
		return key
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(key)
}

// inline builds the InlineError for err: the server message when present,
// otherwise fallback.
func (t translator) inline(err error, fallback string) *InlineError {
	return &InlineError{Message: t.T(api.Message(err, fallback), nil), Code: api.Code(err)}
}

// inlineWithCode is inline but also accepts the bare error code as message.
func (t translator) inlineWithCode(err error, fallback string) *InlineError {
	msg := fallback
	if body := api.BodyOf(err); body != nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	return &InlineError{Message: t.T(msg, nil), Code: api.Code(err)}
}

func (t translator) message(key string, params map[string]string) *InlineError {
	return &InlineError{Message: t.T(key, params)}
}

// query builds a "?k=v&…" navigation target keeping the order of pairs.
func query(hash string, pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(pairs[i])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pairs[i+1]))
	}
	b.WriteString(hash)
	return b.String()
}

func navigate(nav Navigator, to string) {
	if nav == nil {
		return
	}
	if _, err := nav.Navigate(to); err != nil {
		logFailure("navigate", err)
	}
}
