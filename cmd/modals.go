package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"lobbyctl/internal/cli"
	"lobbyctl/internal/flows"
	"lobbyctl/internal/i18n"
	"lobbyctl/internal/modal"
	"lobbyctl/internal/session"
	"lobbyctl/pkg/logging"
)

const (
	// maxDialogChanges bounds how many dialogs one invocation walks through.
	maxDialogChanges = 16
	// maxAttempts bounds the retries of one form.
	maxAttempts = 5
)

// dialogInput prefills the first attempt of a dialog from flags.
type dialogInput struct {
	email      string
	captcha    string
	newsletter bool
}

// drive runs the dialog of the current location and follows every
// navigation into the next dialog, until no dialog is open or the client
// was sent away from the lobby.
func (a *app) drive(ctx context.Context, in dialogInput) error {
	w := i18n.NewWatcher(a.catalog)
	if err := w.Start(); err != nil {
		logging.Debug("CLI", "Not watching translations: %v", err)
	} else {
		defer w.Stop()
	}

	for i := 0; i < maxDialogChanges; i++ {
		if target := a.nav.Redirected(); target != "" {
			a.say("Continue in your browser: %s", target)
			return nil
		}
		m := a.modals.Current()
		if !m.Open() {
			return nil
		}

		before := a.nav.Current().String()
		if err := a.runModal(ctx, m, in); err != nil {
			return err
		}
		in = dialogInput{}

		if a.nav.Redirected() == "" && a.nav.Current().String() == before {
			a.modals.Close()
		}
	}
	return errors.New("too many dialog changes")
}

func (a *app) runModal(ctx context.Context, m modal.Modal, in dialogInput) error {
	logging.Debug("CLI", "Opening dialog %s", m.Kind)
	switch m.Kind {
	case modal.Login:
		return a.runLogin(ctx, in)
	case modal.Registration:
		return a.runRegistration(ctx, in)
	case modal.Activation:
		return a.runActivation(ctx, in)
	case modal.ActivationSocial:
		return a.runActivationSocial(ctx, m.Param)
	case modal.ErrorSocial:
		return a.runErrorSocial(m.Param)
	case modal.PasswordRecovery:
		return a.runPasswordRecovery(ctx, in)
	case modal.SetNewPassword:
		return a.runSetNewPassword(ctx, m.Param)
	case modal.GoldTransfer:
		return a.runGoldTransfer(ctx, m.Param)
	case modal.CalendarGameworld:
		return a.showCalendarEntry(ctx, m.Param, true)
	case modal.ReferAFriend:
		return a.runReferAFriend()
	case modal.LanguageSelection:
		return a.runLanguageSelection("")
	}
	return fmt.Errorf("no dialog for %q", m.Kind)
}

// inlineMessage returns the text of a form error, or "" for other errors.
func inlineMessage(err error) string {
	var inline *flows.InlineError
	if errors.As(err, &inline) {
		return inline.Message
	}
	return ""
}

// formError prints a form error and reports whether the form may be
// retried. Errors that are not form errors are returned as is.
func (a *app) formError(err error) error {
	if msg := inlineMessage(err); msg != "" {
		a.say("%s", msg)
		return nil
	}
	return err
}

func (a *app) runLogin(ctx context.Context, in dialogInput) error {
	login := flows.NewLogin(a.store, a.play, a.nav, a.catalog)
	loc := a.nav.Current()

	a.session(ctx)
	if _, ok := login.Mount(ctx, loc); ok {
		return nil
	}
	if acc := a.store.Account(); acc != nil {
		a.say("Already logged in as %s", acc.Name)
		return nil
	}

	p, err := a.prompt()
	if err != nil {
		return err
	}

	name := in.email
	if name == "" {
		name = login.Prefill(loc)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if name, err = p.Line("Email or account name", name); err != nil {
			return err
		}
		password, err := p.Secret("Password")
		if err != nil {
			return err
		}

		var res *flows.LoginResult
		lastErr = a.progress.Run("Logging in...", func() error {
			var err error
			res, err = login.Submit(ctx, session.Credentials{Login: name, Password: password}, loc.Query)
			return err
		})
		if lastErr == nil {
			if acc := a.store.Account(); acc != nil && !res.Activation {
				a.say("Logged in as %s", acc.Name)
			}
			return nil
		}
		if err := a.formError(lastErr); err != nil {
			return err
		}
	}
	return &cli.AuthFailedError{Operation: "login", Reason: lastErr}
}

func (a *app) runRegistration(ctx context.Context, in dialogInput) error {
	p, err := a.prompt()
	if err != nil {
		return err
	}

	reg := flows.NewRegistration(a.store, a.nav, a.catalog, a.locale.Locale)
	defer reg.Close()

	a.say("By registering you accept the terms and conditions (%s)", flows.TermsURL(a.locale.Key))
	a.say("and the privacy policy (%s).", flows.PrivacyURL(a.locale.Key))

	email := in.email
	newsletter := in.newsletter
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if email, err = p.Line("Email", email); err != nil {
			return err
		}
		if attempt > 0 || !newsletter {
			if newsletter, err = p.Confirm("Receive the newsletter", newsletter); err != nil {
				return err
			}
		}

		var res *flows.RegistrationResult
		err = a.progress.Run("Registering...", func() error {
			var err error
			res, err = reg.Submit(ctx, flows.RegistrationInput{
				Email:      email,
				Newsletter: newsletter,
				Captcha:    in.captcha,
				Params:     a.nav.Current().Query,
			})
			return err
		})
		if err != nil {
			if err := a.formError(err); err != nil {
				return err
			}
			continue
		}

		switch {
		case res.Sent:
			a.say("We sent an activation mail to %s.", email)
			a.say(`Open the link from the mail with "lobbyctl open <link>" to continue.`)
		case res.Notice != "":
			a.say("%s", res.Notice)
			stay, err := p.Interrupt(ctx, "Press Enter to stay on the registration form.", res.Redirect.Done())
			if err != nil {
				reg.Cancel()
				return err
			}
			if stay && res.Redirect.Cancel() {
				continue
			}
		}
		return nil
	}
	return errors.New("registration was not completed")
}

func (a *app) runActivation(ctx context.Context, in dialogInput) error {
	p, err := a.prompt()
	if err != nil {
		return err
	}

	act := flows.NewActivation(flows.ActivationDeps{
		Service: a.service,
		Profile: a.lobby,
		Session: a.store,
		Nav:     a.nav,
		Tr:      a.catalog,
	}, a.nav.Current())
	if email := act.Email(); email != "" {
		a.say("We sent an activation code to %s.", email)
	}

	failures := 0
	for failures < maxAttempts {
		var err error
		switch act.Step() {
		case flows.StepActivationCode:
			err = a.activationCodeStep(ctx, p, act, in.captcha, failures > 0)
			if err != nil && act.Expired() {
				restart, err := a.restartActivation(p, err)
				if err != nil {
					return err
				}
				if restart {
					act.StartAgain()
					return nil
				}
				failures++
				continue
			}
		case flows.StepPassword:
			err = a.passwordStep(ctx, p, act)
		case flows.StepUsername:
			err = a.usernameStep(ctx, p, act)
		case flows.StepSuccess:
			return a.activationDone(ctx, act)
		}

		if err != nil {
			if err := a.formError(err); err != nil {
				return err
			}
			failures++
		}
	}
	return &cli.AuthFailedError{Operation: "activation", Reason: errors.New("too many failed attempts")}
}

func (a *app) activationCodeStep(ctx context.Context, p *cli.Prompter, act *flows.Activation, captcha string, retry bool) error {
	if retry || act.DigitsMissing() > 0 {
		for {
			v, err := p.Line(`Activation code from the mail (or "resend")`, act.ActivationCode())
			if err != nil {
				return err
			}
			if !strings.EqualFold(v, "resend") {
				act.SetActivationCode(v)
				break
			}
			if wait := act.ResendCooldown(); wait > 0 {
				a.say("You can request another mail in %d seconds.", wait)
				continue
			}
			if err := act.Resend(ctx); err != nil {
				return err
			}
			a.say("We sent you another mail.")
		}
	}
	return a.progress.Run("Activating...", func() error {
		return act.SubmitCode(ctx, captcha)
	})
}

// restartActivation shows why the code was refused and asks whether to enter
// the code again or to register anew.
func (a *app) restartActivation(p *cli.Prompter, cause error) (bool, error) {
	if err := a.formError(cause); err != nil {
		return false, err
	}
	choice, err := p.Choose("Continue with", []string{"Enter the code again", "Start again with a new registration"})
	if err != nil {
		return false, err
	}
	return choice == 1, nil
}

func (a *app) passwordStep(ctx context.Context, p *cli.Prompter, act *flows.Activation) error {
	password, err := p.Secret("Choose a password")
	if err != nil {
		return err
	}
	a.say("Password strength: %s", flows.StrengthLabel(flows.PasswordStrength(password)))
	return a.progress.Run("Saving password...", func() error {
		return act.SubmitPassword(ctx, password)
	})
}

func (a *app) usernameStep(ctx context.Context, p *cli.Prompter, act *flows.Activation) error {
	name, err := p.Required("Account name")
	if err != nil {
		return err
	}
	tagline, err := p.Line("Tagline", act.Tagline())
	if err != nil {
		return err
	}
	if tagline != act.Tagline() {
		act.SetTagline(tagline)
	}
	return a.progress.Run("Saving name...", func() error {
		return act.SubmitUsername(ctx, name)
	})
}

// activationDone greets the new account and continues into the gameworld
// the registration was made for, if any.
func (a *app) activationDone(ctx context.Context, act *flows.Activation) error {
	if name := act.AccountName(); name != "" {
		a.say("Welcome, %s!", name)
	} else {
		a.say("Your account is ready.")
	}

	params := a.nav.Current().Query
	if ref := act.Referral(); ref != "" {
		if q, err := url.ParseQuery(ref); err == nil {
			for k := range q {
				params.Set(k, q.Get(k))
			}
		}
	}
	if params.Get("server") != "" || params.Get("uc") != "" || params.Get("ad") != "" {
		a.play.Run(ctx, params)
	}
	return nil
}

func (a *app) runActivationSocial(ctx context.Context, code string) error {
	p, err := a.prompt()
	if err != nil {
		return err
	}

	act := flows.NewActivationSocial(a.service, a.catalog, code)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name, err := p.Required("Account name")
		if err != nil {
			return err
		}
		err = a.progress.Run("Activating...", func() error {
			return act.Submit(ctx, name)
		})
		if err == nil {
			a.store.RefreshSession(ctx)
			if acc := a.store.Account(); acc != nil {
				a.say("Logged in as %s", acc.Name)
			}
			a.play.Run(ctx, a.nav.Current().Query)
			return nil
		}
		if err := a.formError(err); err != nil {
			return err
		}
	}
	return &cli.AuthFailedError{Operation: "activation", Reason: errors.New("too many failed attempts")}
}

func (a *app) runErrorSocial(code string) error {
	a.say("%s", flows.ErrorSocialMessage(a.catalog, code))
	if code != flows.SocialMailPermission && code != flows.SocialMailAlreadyUsed {
		return nil
	}

	p, err := a.prompt()
	if err != nil {
		return err
	}
	ok, err := p.Confirm("Register with email instead", true)
	if err != nil {
		return err
	}
	if ok {
		flows.RegisterWithEmail(a.nav)
	}
	return nil
}

func (a *app) runPasswordRecovery(ctx context.Context, in dialogInput) error {
	p, err := a.prompt()
	if err != nil {
		return err
	}

	rec := flows.NewPasswordRecovery(a.service, a.nav, a.catalog, a.locale.Locale)
	email := in.email
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if email, err = p.Line("Email", email); err != nil {
			return err
		}
		var msg string
		err = a.progress.Run("Requesting mail...", func() error {
			var err error
			msg, err = rec.Submit(ctx, email)
			return err
		})
		if err == nil {
			a.say("%s", msg)
			return nil
		}
		if err := a.formError(err); err != nil {
			return err
		}
	}
	return errors.New("password recovery was not completed")
}

func (a *app) runSetNewPassword(ctx context.Context, code string) error {
	p, err := a.prompt()
	if err != nil {
		return err
	}

	set := flows.NewSetNewPassword(a.service, a.nav, a.catalog, code)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		password, err := p.Secret("New password")
		if err != nil {
			return err
		}
		confirmation, err := p.Secret("Repeat the new password")
		if err != nil {
			return err
		}
		err = a.progress.Run("Saving password...", func() error {
			return set.Submit(ctx, password, confirmation)
		})
		if err == nil {
			a.say("Your password was changed. You can log in now.")
			set.ToLogin()
			return nil
		}
		if err := a.formError(err); err != nil {
			return err
		}
	}
	return errors.New("password was not changed")
}

func (a *app) runReferAFriend() error {
	p, err := a.prompt()
	if err != nil {
		return err
	}
	a.say("You already play on this gameworld. Invites are for new players.")
	choice, err := p.Choose("Continue with", []string{"Register a new account", "Log in with another account"})
	if err != nil {
		return err
	}
	if choice == 1 {
		flows.ReferAFriend(a.nav, flows.ReferAFriendLogin)
	} else {
		flows.ReferAFriend(a.nav, flows.ReferAFriendRegister)
	}
	return nil
}
