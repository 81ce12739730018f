package flows

import (
	"context"
	"net/url"
	"sync"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/session"
	"lobbyctl/pkg/logging"
)

// RegistrationInput is one submission of the email form.
type RegistrationInput struct {
	Email      string
	Newsletter bool
	Captcha    string
	// Params is the query of the current location; server, ad and uc are
	// sent as the referral context.
	Params url.Values
}

// RegistrationResult tells the caller what the email step did.
type RegistrationResult struct {
	// Sent means the activation mail is on its way.
	Sent bool
	// Notice is shown when the address already has an account. Redirect
	// then moves to the login once its delay passes unless cancelled.
	Notice   string
	Redirect *PendingRedirect
	// Activation means the flow moved on to the activation modal.
	Activation bool
}

// Registration is the email step of the registration modal.
type Registration struct {
	auth   Registrar
	nav    Navigator
	tr     translator
	locale string

	// RedirectDelay overrides DefaultRedirectDelay.
	RedirectDelay time.Duration

	mu      sync.Mutex
	pending *PendingRedirect
}

// NewRegistration creates the email step. locale is sent with the
// registration.
func NewRegistration(auth Registrar, nav Navigator, tr Translator, locale string) *Registration {
	return &Registration{auth: auth, nav: nav, tr: translator{tr}, locale: locale, RedirectDelay: DefaultRedirectDelay}
}

// Submit registers in.Email. Validation and service failures are returned as
// *InlineError.
func (r *Registration) Submit(ctx context.Context, in RegistrationInput) (*RegistrationResult, error) {
	r.Cancel()

	if msg := ValidateEmail(in.Email); msg != "" {
		return nil, r.tr.message(msg, nil)
	}

	result, err := r.auth.Register(ctx, session.RegisterData{
		Email:      in.Email,
		Newsletter: in.Newsletter,
		Locale:     r.locale,
		Context: identity.Context{
			Server: in.Params.Get("server"),
			Ad:     in.Params.Get("ad"),
			UC:     in.Params.Get("uc"),
		},
		Captcha: in.Captcha,
	})
	switch {
	case err == nil && result.NeedsActivation:
		logging.Info(subsystem, "Registration continues with activation")
		navigate(r.nav, query("#activation", "code", result.ActivationCode, "email", in.Email, "sign", result.Sign))
		return &RegistrationResult{Activation: true}, nil
	case err == nil:
		return &RegistrationResult{Sent: true}, nil
	case api.IsCode(err, api.CodeIdentityExists):
		pending := r.scheduleLogin(in.Email)
		return &RegistrationResult{Notice: r.tr.T(MsgAccountExists, nil), Redirect: pending}, nil
	default:
		return nil, r.tr.inline(err, MsgUnexpectedError)
	}
}

// Cancel stops a pending redirect to the login, if any.
func (r *Registration) Cancel() {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()
	pending.Cancel()
}

// Close releases the flow.
func (r *Registration) Close() {
	r.Cancel()
}

func (r *Registration) scheduleLogin(email string) *PendingRedirect {
	delay := r.RedirectDelay
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}
	pending := schedule(delay, query("#loginLobby", "email", email), func(target string) {
		navigate(r.nav, target)
	})

	r.mu.Lock()
	r.pending = pending
	r.mu.Unlock()
	return pending
}
