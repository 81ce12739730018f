// Package identity is the client for the Identity service, which owns
// credentials and exchanges them (or social provider tokens) for single-use
// authorization codes bound to a PKCE verifier.
package identity

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/pkg/logging"
	"lobbyctl/pkg/pkce"
)

const subsystem = "Identity"

// Provider is a social login provider.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderApple    Provider = "apple"
)

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(name); p {
	case ProviderGoogle, ProviderFacebook, ProviderApple:
		return p, nil
	}
	return "", fmt.Errorf("unknown social provider %q", name)
}

// AuthCode is an authorization code together with the verifier that produced
// it. It must be handed to the Lobby authorize call exactly once and never
// stored.
type AuthCode struct {
	Code     string
	Verifier string
	Context  string
}

// Context is the referral context attached to a registration.
type Context struct {
	Server string `json:"server,omitempty"`
	Ad     string `json:"ad,omitempty"`
	UC     string `json:"uc,omitempty"`
}

// RegisterOptions are the optional registration inputs.
type RegisterOptions struct {
	Newsletter bool
	Locale     string
	Context    Context
	Captcha    string
}

// ActivateOptions are the optional inputs of an activation.
type ActivateOptions struct {
	Password       string
	Name           string
	ActivationCode string
	AcceptTerms    bool
	Captcha        string
}

// Client talks to the Identity service.
type Client struct {
	http     *api.Client
	clientID string
}

// New creates an Identity client using the OAuth client id registered for this application.
func New(httpClient *api.Client, clientID string) *Client {
	return &Client{http: httpClient, clientID: clientID}
}

type attestation struct {
	Captcha string `json:"Captcha,omitempty"`
}

type registerOptionsBody struct {
	Locale     string `json:"locale,omitempty"`
	Newsletter bool   `json:"newsletter"`
}

type registerRequest struct {
	Email       string              `json:"email"`
	Attestation *attestation        `json:"attestation,omitempty"`
	Options     registerOptionsBody `json:"options"`
	Context     *Context            `json:"context,omitempty"`
}

// Register creates an unactivated account for email. An existing account is
// reported as api.CodeIdentityExists; an unactivated one as
// api.CodeIdentityNeedsActivation with the activation code and signature in
// the error body.
func (c *Client) Register(ctx context.Context, email string, opts RegisterOptions) error {
	req := registerRequest{
		Email:   email,
		Options: registerOptionsBody{Locale: opts.Locale, Newsletter: opts.Newsletter},
	}
	if opts.Captcha != "" {
		req.Attestation = &attestation{Captcha: opts.Captcha}
	}
	if opts.Context != (Context{}) {
		ctxCopy := opts.Context
		req.Context = &ctxCopy
	}

	if err := c.http.Post(ctx, c.endpoint("/provider/login/register", nil), req, nil); err != nil {
		logging.Debug(subsystem, "Registration rejected: %s", api.Code(err))
		return err
	}
	logging.Info(subsystem, "Registration accepted")
	return nil
}

type codeResponse struct {
	Code    string `json:"code"`
	Context string `json:"context,omitempty"`
}

// AuthenticateLogin exchanges login and password for an authorization code.
// An unactivated account fails with api.CodeIdentityNeedsActivation; the
// caller decides whether to continue with Activate.
func (c *Client) AuthenticateLogin(ctx context.Context, login, password string) (*AuthCode, error) {
	pair, err := pkce.Generate()
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"login":                 login,
		"password":              password,
		"code_challenge":        pair.Challenge,
		"code_challenge_method": pair.Method,
	}

	var resp codeResponse
	if err := c.http.Post(ctx, c.endpoint("/provider/login", nil), body, &resp); err != nil {
		return nil, err
	}
	return &AuthCode{Code: resp.Code, Verifier: pair.Verifier}, nil
}

// Activate activates the account identified by activationCode and returns an
// authorization code for the new session.
func (c *Client) Activate(ctx context.Context, activationCode string, opts ActivateOptions) (*AuthCode, error) {
	pair, err := pkce.Generate()
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"code_challenge":        pair.Challenge,
		"code_challenge_method": pair.Method,
	}
	if opts.Password != "" {
		body["password"] = opts.Password
	}
	if opts.Name != "" {
		body["name"] = opts.Name
	}
	if opts.ActivationCode != "" {
		body["activationCode"] = opts.ActivationCode
	}
	if opts.AcceptTerms {
		body["acceptTermsAndConditions"] = true
	}
	if opts.Captcha != "" {
		body["attestation"] = attestation{Captcha: opts.Captcha}
	}

	var resp codeResponse
	endpoint := c.endpoint("/identity/activate", url.Values{"code": {activationCode}})
	if err := c.http.Post(ctx, endpoint, body, &resp); err != nil {
		return nil, err
	}
	logging.Info(subsystem, "Account activated")
	return &AuthCode{Code: resp.Code, Verifier: pair.Verifier, Context: resp.Context}, nil
}

type resendResponse struct {
	Cooldown int64 `json:"cooldown"`
}

// ResendActivationEmail asks for another activation mail. It returns the
// time until which further resends are refused.
func (c *Client) ResendActivationEmail(ctx context.Context, activationCode string) (time.Time, error) {
	var resp resendResponse
	endpoint := c.endpoint("/identity/activate/resend", url.Values{"code": {activationCode}})
	if err := c.http.Post(ctx, endpoint, nil, &resp); err != nil {
		return time.Time{}, err
	}
	return time.Unix(resp.Cooldown, 0), nil
}

// CooldownSeconds returns the whole seconds left until until, rounded up and
// never negative.
func CooldownSeconds(until, now time.Time) int {
	remaining := until.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}

// AuthenticateProvider exchanges a social provider payload (an id_token or
// access token with its metadata) for an authorization code.
func (c *Client) AuthenticateProvider(ctx context.Context, provider Provider, payload map[string]any) (*AuthCode, error) {
	if _, err := ParseProvider(string(provider)); err != nil {
		return nil, err
	}

	pair, err := pkce.Generate()
	if err != nil {
		return nil, err
	}

	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["code_challenge"] = pair.Challenge
	body["code_challenge_method"] = pair.Method

	var resp codeResponse
	if err := c.http.Post(ctx, c.endpoint("/provider/"+string(provider), nil), body, &resp); err != nil {
		return nil, err
	}
	logging.Info(subsystem, "Authenticated with %s", provider)
	return &AuthCode{Code: resp.Code, Verifier: pair.Verifier}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	q := url.Values{"client_id": {c.clientID}}
	for k, v := range query {
		q[k] = v
	}
	return path + "?" + q.Encode()
}
