package flows

import (
	"context"
	"net/url"

	"lobbyctl/internal/api"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/playflow"
	"lobbyctl/pkg/logging"
	"lobbyctl/pkg/pkce"
)

// SocialOrigin is the modal a social login was started from. It selects the
// generic error shown on failure.
type SocialOrigin int

const (
	FromLogin SocialOrigin = iota
	FromRegistration
)

// Error codes of the social error modal.
const (
	SocialMailPermission           = "mailPermission"
	SocialMailAlreadyUsed          = "mailAlreadyUsed"
	SocialGenericLogin             = "genericLogin"
	SocialGenericRegistration      = "genericRegistration"
	SocialPopupBlockedLogin        = "popupBlockedLogin"
	SocialPopupBlockedRegistration = "popupBlockedRegistration"
)

const (
	nonceLength = 16
	stateLength = 32
)

// Social completes a login through Google, Facebook or Apple.
type Social struct {
	auth    SocialAuthenticator
	session SessionRefresher
	play    PlayFlow
	nav     Navigator
	locale  string
	origin  SocialOrigin
}

// NewSocial creates the flow for one social button press.
func NewSocial(auth SocialAuthenticator, sess SessionRefresher, play PlayFlow, nav Navigator, locale string, origin SocialOrigin) *Social {
	return &Social{auth: auth, session: sess, play: play, nav: nav, locale: locale, origin: origin}
}

// Complete exchanges the provider's data for a session and runs the play
// flow with params. On failure it navigates to the matching modal and
// returns its target.
func (s *Social) Complete(ctx context.Context, provider identity.Provider, providerData map[string]any, captcha string, params url.Values) (*playflow.Outcome, string) {
	payload := make(map[string]any, len(providerData)+2)
	for k, v := range providerData {
		payload[k] = v
	}
	payload["options"] = map[string]any{"locale": s.locale}
	payload["attestation"] = map[string]any{"Captcha": captcha}

	if err := s.auth.SocialLogin(ctx, provider, payload); err != nil {
		target := SocialErrorTarget(err, s.origin)
		logging.Info(subsystem, "Social login via %s failed, showing %s", provider, target)
		navigate(s.nav, target)
		return nil, target
	}

	if s.session != nil {
		s.session.RefreshSession(ctx)
	}
	out := s.play.Run(ctx, params)
	return &out, ""
}

// Fail handles an error reported by the provider itself before any exchange
// took place, such as a blocked popup.
func (s *Social) Fail(code string) string {
	target := query("#errorSocial", "code", providerFailureCode(code, s.origin))
	navigate(s.nav, target)
	return target
}

// SocialErrorTarget maps a failed exchange to the modal that explains it.
func SocialErrorTarget(err error, origin SocialOrigin) string {
	switch api.Code(err) {
	case api.CodeIdentityNeedsActivation:
		code := ""
		if body := api.BodyOf(err); body != nil {
			code = body.Code
		}
		return query("#activationSocial", "code", code)
	case api.CodeNoEmailAddress:
		return query("#errorSocial", "code", SocialMailPermission)
	case api.CodeIdentityExists:
		return query("#errorSocial", "code", SocialMailAlreadyUsed)
	}
	if origin == FromRegistration {
		return query("#errorSocial", "code", SocialGenericRegistration)
	}
	return query("#errorSocial", "code", SocialGenericLogin)
}

func providerFailureCode(code string, origin SocialOrigin) string {
	blocked := code == api.CodePopupBlocked
	switch {
	case blocked && origin == FromRegistration:
		return SocialPopupBlockedRegistration
	case blocked:
		return SocialPopupBlockedLogin
	case origin == FromRegistration:
		return SocialGenericRegistration
	default:
		return SocialGenericLogin
	}
}

// NewNonce returns a nonce for a provider sign-in request.
func NewNonce() (string, error) {
	return pkce.RandomString(nonceLength, pkce.NonceAlphabet)
}

// NewState returns an anti-forgery state for the Apple sign-in request.
func NewState() (string, error) {
	return pkce.RandomString(stateLength, pkce.NonceAlphabet)
}

// GooglePayload is the provider data of a Google credential response.
func GooglePayload(credential string) map[string]any {
	return map[string]any{"credential": credential}
}

// FacebookPayload is the provider data of a Facebook login.
func FacebookPayload(accessToken string) map[string]any {
	return map[string]any{"accessToken": accessToken}
}

// ApplePayload is the provider data of an Apple sign-in. state must be the
// value sent with the sign-in request.
func ApplePayload(idToken, state string) map[string]any {
	return map[string]any{"id_token": idToken, "state": state}
}
