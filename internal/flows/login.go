package flows

import (
	"context"
	"net/url"
	"strings"

	"lobbyctl/internal/navigation"
	"lobbyctl/internal/playflow"
	"lobbyctl/internal/session"
	"lobbyctl/pkg/logging"
)

// LoginResult tells the caller what a login did.
type LoginResult struct {
	// Outcome is the play flow destination after a successful login.
	Outcome *playflow.Outcome
	// Activation means the account is not activated and the flow moved on
	// to the activation modal.
	Activation bool
}

// Login is the email and password form of the login modal.
type Login struct {
	auth Authenticator
	play PlayFlow
	nav  Navigator
	tr   translator
}

// NewLogin creates the login form.
func NewLogin(auth Authenticator, play PlayFlow, nav Navigator, tr Translator) *Login {
	return &Login{auth: auth, play: play, nav: nav, tr: translator{tr}}
}

// Prefill returns the login to show initially: the email query parameter.
func (l *Login) Prefill(loc navigation.Location) string {
	return loc.Get("email")
}

// Mount runs the play flow right away when the player is already logged in
// and the link names a gameworld or an invite.
func (l *Login) Mount(ctx context.Context, loc navigation.Location) (*playflow.Outcome, bool) {
	if l.auth.Account() == nil {
		return nil, false
	}
	if loc.Get("server") == "" && loc.Get("uc") == "" {
		return nil, false
	}
	out := l.play.Run(ctx, loc.Query)
	return &out, true
}

// Submit logs in and hands over to the play flow with params.
func (l *Login) Submit(ctx context.Context, creds session.Credentials, params url.Values) (*LoginResult, error) {
	if strings.TrimSpace(creds.Login) == "" {
		return nil, l.tr.message(MsgEnterLogin, nil)
	}
	if creds.Password == "" {
		return nil, l.tr.message(MsgEnterPassword, nil)
	}

	result, err := l.auth.Login(ctx, creds)
	if err != nil {
		return nil, l.tr.inline(err, MsgUnexpectedError)
	}
	if result.NeedsActivation {
		logging.Info(subsystem, "Login continues with activation")
		navigate(l.nav, query("#activation", "code", result.ActivationCode, "email", creds.Login, "sign", result.Sign))
		return &LoginResult{Activation: true}, nil
	}

	out := l.play.Run(ctx, params)
	return &LoginResult{Outcome: &out}, nil
}
