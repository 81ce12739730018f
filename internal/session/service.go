// Package session holds the authentication state of the client and the
// operations that change it.
//
// Service combines the Identity and Lobby clients into complete operations
// (login, registration, activation, social login). Store is the observable
// state record built on top of it. CookieStore keeps the Lobby session
// cookie between CLI invocations.
package session

import (
	"context"
	"net/http"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby"
	"lobbyctl/pkg/logging"
)

const subsystem = "Session"

// Credentials are a login (email or account name) and password.
type Credentials struct {
	Login    string
	Password string
}

// LoginResult is the outcome of a login. When NeedsActivation is set the
// account must be activated with ActivationCode before it can log in.
type LoginResult struct {
	Account         *lobby.Account
	NeedsActivation bool
	ActivationCode  string
	Sign            string
}

// RegisterData are the inputs of a registration.
type RegisterData struct {
	Email      string
	Newsletter bool
	Locale     string
	Context    identity.Context
	Captcha    string
}

// RegisterResult is the outcome of a registration. When NeedsActivation is
// set the address already belongs to an unactivated account.
type RegisterResult struct {
	NeedsActivation bool
	ActivationCode  string
	Sign            string
}

// ActivationData are the inputs of an activation.
type ActivationData struct {
	Code           string
	Password       string
	Name           string
	ActivationCode string
	AcceptTerms    bool
	Captcha        string
}

// Service performs complete authentication operations.
type Service struct {
	identity *identity.Client
	lobby    *lobby.Client
	locale   string
}

// NewService creates a Service. locale is reported to the lobby when a
// session is established.
func NewService(identityClient *identity.Client, lobbyClient *lobby.Client, locale string) *Service {
	return &Service{identity: identityClient, lobby: lobbyClient, locale: locale}
}

// Login authenticates with Identity, exchanges the code with the Lobby and
// fetches the account. An unactivated account is not an error: the result
// carries the activation code instead.
func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	code, err := s.identity.AuthenticateLogin(ctx, creds.Login, creds.Password)
	if err != nil {
		if body := api.BodyOf(err); body != nil && body.Error == api.CodeIdentityNeedsActivation {
			logging.Info(subsystem, "Login requires activation")
			return &LoginResult{NeedsActivation: true, ActivationCode: body.Code, Sign: body.Sign}, nil
		}
		return nil, err
	}

	if err := s.Authorize(ctx, code); err != nil {
		return nil, err
	}
	return &LoginResult{Account: s.lobby.GetSession(ctx)}, nil
}

// Authorize exchanges code with the Lobby, reporting the locale.
func (s *Service) Authorize(ctx context.Context, code *identity.AuthCode) error {
	extra := map[string]any{}
	if s.locale != "" {
		extra["locale"] = s.locale
	}
	_, err := s.lobby.Authorize(ctx, code.Code, code.Verifier, extra)
	return err
}

// Register creates an account. A conflict is normalized to an
// api.CodeIdentityExists error.
func (s *Service) Register(ctx context.Context, data RegisterData) (*RegisterResult, error) {
	err := s.identity.Register(ctx, data.Email, identity.RegisterOptions{
		Newsletter: data.Newsletter,
		Locale:     data.Locale,
		Context:    data.Context,
		Captcha:    data.Captcha,
	})
	if err == nil {
		return &RegisterResult{}, nil
	}

	if body := api.BodyOf(err); body != nil && body.Error == api.CodeIdentityNeedsActivation {
		return &RegisterResult{NeedsActivation: true, ActivationCode: body.Code, Sign: body.Sign}, nil
	}
	if api.StatusOf(err) == http.StatusConflict || api.IsCode(err, api.CodeIdentityExists) {
		exists := api.NewCodeError(api.CodeIdentityExists)
		exists.Status = api.StatusOf(err)
		return nil, exists
	}
	return nil, err
}

// Activate activates an account and establishes its session. It returns the
// referral context stored with the registration, if any.
func (s *Service) Activate(ctx context.Context, data ActivationData) (string, error) {
	code, err := s.identity.Activate(ctx, data.Code, identity.ActivateOptions{
		Password:       data.Password,
		Name:           data.Name,
		ActivationCode: data.ActivationCode,
		AcceptTerms:    data.AcceptTerms,
		Captcha:        data.Captcha,
	})
	if err != nil {
		return "", err
	}
	if err := s.Authorize(ctx, code); err != nil {
		return "", err
	}
	return code.Context, nil
}

// ResendActivation asks for another activation mail and returns the end of
// the resend cooldown.
func (s *Service) ResendActivation(ctx context.Context, activationCode string) (time.Time, error) {
	return s.identity.ResendActivationEmail(ctx, activationCode)
}

// RequestPasswordRecovery sends a password reset mail. It always succeeds so
// callers cannot tell whether the login exists.
func (s *Service) RequestPasswordRecovery(ctx context.Context, login, locale string) {
	if locale == "" {
		locale = "en-US"
	}
	if err := s.lobby.PasswordChangeRequest(ctx, login, locale); err != nil {
		logging.Debug(subsystem, "Password recovery request failed: %v", err)
	}
}

// ConfirmPasswordChange sets a new password with the code from a reset mail.
func (s *Service) ConfirmPasswordChange(ctx context.Context, code, password string) error {
	return s.lobby.PasswordChangeConfirm(ctx, code, password)
}

// Logout ends the lobby session. Failures are ignored.
func (s *Service) Logout(ctx context.Context) {
	if err := s.lobby.Logout(ctx); err != nil {
		logging.Debug(subsystem, "Logout failed, continuing: %v", err)
	}
}

// Session returns the account of the current session or nil.
func (s *Service) Session(ctx context.Context) *lobby.Account {
	return s.lobby.GetSession(ctx)
}

// SocialLogin exchanges a social provider payload for a lobby session.
func (s *Service) SocialLogin(ctx context.Context, provider identity.Provider, payload map[string]any) error {
	code, err := s.identity.AuthenticateProvider(ctx, provider, payload)
	if err != nil {
		return err
	}
	return s.Authorize(ctx, code)
}
