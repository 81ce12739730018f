package flows

import (
	"context"
	"strconv"
)

// PasswordRecovery asks for a password reset mail.
type PasswordRecovery struct {
	svc    AccountService
	nav    Navigator
	tr     translator
	locale string
}

// NewPasswordRecovery creates the recovery form.
func NewPasswordRecovery(svc AccountService, nav Navigator, tr Translator, locale string) *PasswordRecovery {
	return &PasswordRecovery{svc: svc, nav: nav, tr: translator{tr}, locale: locale}
}

// Submit requests the mail and returns the confirmation text. Whether the
// address belongs to an account is never revealed.
func (p *PasswordRecovery) Submit(ctx context.Context, email string) (string, error) {
	if msg := ValidateEmail(email); msg != "" {
		return "", p.tr.message(msg, nil)
	}
	p.svc.RequestPasswordRecovery(ctx, email, p.locale)
	return p.tr.T(MsgRecoverySent, nil) + " " + email, nil
}

// BackToLogin returns to the login modal.
func (p *PasswordRecovery) BackToLogin() {
	navigate(p.nav, "#loginLobby")
}

// SetNewPassword sets a new password with the code from a reset mail.
type SetNewPassword struct {
	svc  AccountService
	nav  Navigator
	tr   translator
	code string
}

// NewSetNewPassword creates the form for the reset code.
func NewSetNewPassword(svc AccountService, nav Navigator, tr Translator, code string) *SetNewPassword {
	return &SetNewPassword{svc: svc, nav: nav, tr: translator{tr}, code: code}
}

// Submit checks that both entries match and stores the password.
func (s *SetNewPassword) Submit(ctx context.Context, password, confirmation string) error {
	if password != confirmation {
		return s.tr.message(MsgPasswordsDoNotMatch, nil)
	}
	if len(password) < MinPasswordLength {
		return s.tr.message(MsgPasswordTooShort, map[string]string{"min": strconv.Itoa(MinPasswordLength)})
	}
	if err := s.svc.ConfirmPasswordChange(ctx, s.code, password); err != nil {
		return s.tr.inlineWithCode(err, MsgUnexpectedError)
	}
	return nil
}

// ToLogin moves on to the login after a successful change.
func (s *SetNewPassword) ToLogin() {
	navigate(s.nav, "#loginLobby")
}
