package flows

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby"
)

// InvitationCodeLength is the length of a gameworld invitation code.
const InvitationCodeLength = 22

// AvatarRegistrar registers avatars on gameworlds.
type AvatarRegistrar interface {
	RegisterAvatar(ctx context.Context, req lobby.RegisterAvatarRequest) (string, error)
}

// Redirector performs full navigations away from the lobby.
type Redirector interface {
	Redirect(target string)
}

// RegistrationKeyJoin joins a calendar gameworld that requires an
// invitation code.
type RegistrationKeyJoin struct {
	lobby AvatarRegistrar
	nav   Redirector
	tr    translator
	entry lobby.CalendarEntry
	// Now defaults to time.Now.
	Now func() time.Time

	mu            sync.Mutex
	cooldownUntil time.Time
}

// NewRegistrationKeyJoin creates the invitation form for entry.
func NewRegistrationKeyJoin(l AvatarRegistrar, nav Redirector, tr Translator, entry lobby.CalendarEntry) *RegistrationKeyJoin {
	return &RegistrationKeyJoin{lobby: l, nav: nav, tr: translator{tr}, entry: entry, Now: time.Now}
}

// Cooldown is the number of seconds before the next attempt, or 0.
func (j *RegistrationKeyJoin) Cooldown() int {
	j.mu.Lock()
	until := j.cooldownUntil
	j.mu.Unlock()
	if until.IsZero() {
		return 0
	}
	return identity.CooldownSeconds(until, j.Now())
}

// Submit registers an avatar with invitationCode and redirects into the
// gameworld. The ad and uc parameters of params are passed on. It returns
// the redirect target.
func (j *RegistrationKeyJoin) Submit(ctx context.Context, invitationCode string, params url.Values) (string, error) {
	if j.entry.RegistrationKeyRequired || j.entry.Flags.RegistrationKeyRequired {
		if len(invitationCode) != InvitationCodeLength {
			return "", j.tr.message(MsgInvitationCodeLength, map[string]string{"INT": strconv.Itoa(InvitationCodeLength)})
		}
		if j.Cooldown() > 0 {
			return "", &InlineError{Message: j.tr.T("Invitation code cooldown", nil), Code: api.CodeTryAgain}
		}
	}

	redirectTo, err := j.lobby.RegisterAvatar(ctx, lobby.RegisterAvatarRequest{
		WUID:            j.entry.UUID,
		AdCode:          params.Get("ad"),
		InvitedBy:       params.Get("uc"),
		RegistrationKey: invitationCode,
	})
	if err != nil {
		if body := api.BodyOf(err); body != nil && body.Error == api.CodeTryAgain {
			j.startCooldown(body.At)
			return "", &InlineError{Message: j.tr.T("Invitation code cooldown", nil), Code: api.CodeTryAgain}
		}
		return "", j.tr.inline(err, MsgUnexpectedErrorLower)
	}

	target, err := lobby.ResolveRedirect(j.entry.GameworldURL(), redirectTo)
	if err != nil {
		return "", j.tr.inline(err, MsgUnexpectedErrorLower)
	}
	if j.nav != nil {
		j.nav.Redirect(target)
	}
	return target, nil
}

func (j *RegistrationKeyJoin) startCooldown(at string) {
	until, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		logFailure("parse cooldown", err)
		return
	}
	j.mu.Lock()
	j.cooldownUntil = until
	j.mu.Unlock()
}
