package flows

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby"
	"lobbyctl/internal/navigation"
	"lobbyctl/internal/session"
	"lobbyctl/pkg/logging"
)

// ActivationCodeLength is the number of digits in a mailed activation code.
const ActivationCodeLength = 6

// ActivationStep is a step of the activation modal.
type ActivationStep string

const (
	StepActivationCode ActivationStep = "activation"
	StepPassword       ActivationStep = "password"
	StepUsername       ActivationStep = "username"
	StepSuccess        ActivationStep = "success"
)

// ActivationDeps are the collaborators of an Activation.
type ActivationDeps struct {
	Service AccountService
	Profile Profile
	Session SessionRefresher
	Nav     Navigator
	Tr      Translator
	// Now defaults to time.Now.
	Now func() time.Time
}

// Activation walks a new account from the mailed code to a usable session:
// activation code, password, username, success.
type Activation struct {
	deps ActivationDeps
	tr   translator

	// code is the continuation code from the URL, not the mailed digits.
	code  string
	email string

	mu             sync.Mutex
	step           ActivationStep
	activationCode string
	expired        bool
	cooldownUntil  time.Time
	referral       string
	tagline        string
	info           *lobby.AccountInfo
}

// NewActivation starts an activation for the modal opened at loc. The code
// query parameter identifies the pending account; activationCode prefills
// the digits; email is shown when the link is signed.
func NewActivation(deps ActivationDeps, loc navigation.Location) *Activation {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	a := &Activation{
		deps: deps,
		tr:   translator{deps.Tr},
		code: loc.Get("code"),
		step: StepActivationCode,
	}
	if loc.Get("sign") != "" && loc.Get("email") != "" {
		a.email = loc.Get("email")
	}
	a.SetActivationCode(loc.Get("activationCode"))
	if tag, err := GenerateTagline(); err == nil {
		a.tagline = tag
	}
	return a
}

// Step returns the current step.
func (a *Activation) Step() ActivationStep {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.step
}

// CanClose reports whether the modal may be closed. Once the account is
// activated it must get a password and a name first.
func (a *Activation) CanClose() bool {
	step := a.Step()
	return step != StepPassword && step != StepUsername
}

// Email is the address the activation mail went to, when known.
func (a *Activation) Email() string {
	return a.email
}

// SetActivationCode stores the digits of raw, dropping anything else and
// keeping at most ActivationCodeLength digits.
func (a *Activation) SetActivationCode(raw string) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' && b.Len() < ActivationCodeLength {
			b.WriteRune(r)
		}
	}
	a.mu.Lock()
	a.activationCode = b.String()
	a.mu.Unlock()
}

// ActivationCode returns the digits entered so far.
func (a *Activation) ActivationCode() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activationCode
}

// DigitsMissing is how many digits the code still lacks.
func (a *Activation) DigitsMissing() int {
	return ActivationCodeLength - len(a.ActivationCode())
}

// Expired reports whether the service rejected the pending activation
// itself, in which case only starting again helps.
func (a *Activation) Expired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.expired
}

// Referral is the referral context stored with the registration.
func (a *Activation) Referral() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.referral
}

// SubmitCode activates the account with the entered digits and moves to the
// password step.
func (a *Activation) SubmitCode(ctx context.Context, captcha string) error {
	digits := a.ActivationCode()
	if len(digits) < ActivationCodeLength {
		return a.tr.message(MsgActivationDigits, map[string]string{"int": strconv.Itoa(ActivationCodeLength)})
	}

	referral, err := a.deps.Service.Activate(ctx, session.ActivationData{
		Code:           a.code,
		ActivationCode: digits,
		AcceptTerms:    true,
		Captcha:        captcha,
	})
	if err != nil {
		switch api.Code(err) {
		case api.CodeInvalidRequest:
			a.mu.Lock()
			a.expired = true
			a.mu.Unlock()
			return &InlineError{Message: a.tr.T(MsgIncorrectActivationCode, nil), Code: api.CodeInvalidRequest}
		case api.CodeInvalidActivationCode:
			return &InlineError{Message: a.tr.T(MsgIncorrectActivationCode, nil), Code: api.CodeInvalidActivationCode}
		default:
			return a.tr.inline(err, MsgUnexpectedErrorLower)
		}
	}

	logging.Info(subsystem, "Activation code accepted")
	a.mu.Lock()
	a.referral = referral
	a.step = StepPassword
	a.mu.Unlock()
	return nil
}

// StartAgain abandons the activation and returns to the registration form.
// Changing the email does the same.
func (a *Activation) StartAgain() {
	navigate(a.deps.Nav, "#registration")
}

// ResendCooldown is the number of seconds before another mail may be
// requested, or 0.
func (a *Activation) ResendCooldown() int {
	a.mu.Lock()
	until := a.cooldownUntil
	a.mu.Unlock()
	if until.IsZero() {
		return 0
	}
	return identity.CooldownSeconds(until, a.deps.Now())
}

// Resend asks for another activation mail. It does nothing while the
// cooldown runs.
func (a *Activation) Resend(ctx context.Context) error {
	if a.ResendCooldown() > 0 {
		return nil
	}
	until, err := a.deps.Service.ResendActivation(ctx, a.code)
	if err != nil {
		return a.tr.inline(err, MsgUnexpectedErrorLower)
	}
	a.mu.Lock()
	a.cooldownUntil = until
	a.mu.Unlock()
	return nil
}

// SubmitPassword sets the account password and moves to the username step.
func (a *Activation) SubmitPassword(ctx context.Context, password string) error {
	if err := a.checkPassword(password); err != nil {
		return err
	}
	if err := a.deps.Service.ConfirmPasswordChange(ctx, a.code, password); err != nil {
		return a.tr.inline(err, MsgUnexpectedErrorLower)
	}
	a.mu.Lock()
	a.step = StepUsername
	a.mu.Unlock()
	return nil
}

func (a *Activation) checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return a.tr.message(MsgPasswordTooShort, map[string]string{"min": strconv.Itoa(MinPasswordLength)})
	}
	if len(password) > MaxPasswordLength {
		return a.tr.message(MsgPasswordTooLong, map[string]string{"max": strconv.Itoa(MaxPasswordLength)})
	}
	return nil
}

// Tagline is the current tagline suggestion.
func (a *Activation) Tagline() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tagline
}

// SetTagline replaces the tagline with the user's own.
func (a *Activation) SetTagline(tagline string) {
	a.mu.Lock()
	a.tagline = strings.ToUpper(tagline)
	a.mu.Unlock()
}

// RegenerateTagline draws a new random tagline.
func (a *Activation) RegenerateTagline() (string, error) {
	tag, err := GenerateTagline()
	if err != nil {
		return "", err
	}
	a.SetTagline(tag)
	return tag, nil
}

// SubmitUsername stores "username#TAGLINE" as the account name, refreshes the
// session and finishes the activation.
func (a *Activation) SubmitUsername(ctx context.Context, username string) error {
	tagline := a.Tagline()
	if !lengthBetween(username, MinUsernameLength, MaxUsernameLength) {
		return a.tr.message(MsgAvatarNameLength, map[string]string{
			"min": strconv.Itoa(MinUsernameLength), "max": strconv.Itoa(MaxUsernameLength),
		})
	}
	if !lengthBetween(tagline, MinTaglineLength, MaxTaglineLength) {
		return a.tr.message(MsgTaglineLength, map[string]string{
			"min": strconv.Itoa(MinTaglineLength), "max": strconv.Itoa(MaxTaglineLength),
		})
	}

	if err := a.deps.Profile.SetName(ctx, FullName(username, tagline)); err != nil {
		return a.tr.inline(err, MsgUnexpectedErrorLower)
	}

	info, err := a.deps.Profile.AccountInfo(ctx)
	if err != nil {
		logFailure("load account info", err)
	}
	if a.deps.Session != nil {
		a.deps.Session.RefreshSession(ctx)
	}

	a.mu.Lock()
	a.info = info
	a.step = StepSuccess
	a.mu.Unlock()
	return nil
}

// AccountName is the name shown on the success step.
func (a *Activation) AccountName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.info == nil {
		return ""
	}
	return a.info.Name
}
