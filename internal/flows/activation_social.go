package flows

import (
	"context"
	"strconv"
	"sync"

	"lobbyctl/internal/session"
)

// ActivationSocial completes a registration started through a social
// provider: the player only picks an avatar name.
type ActivationSocial struct {
	svc  AccountService
	tr   translator
	code string

	mu   sync.Mutex
	done bool
}

// NewActivationSocial creates the flow for the continuation code issued by
// the social login.
func NewActivationSocial(svc AccountService, tr Translator, code string) *ActivationSocial {
	return &ActivationSocial{svc: svc, tr: translator{tr}, code: code}
}

// Submit activates the account with name and establishes the session.
func (a *ActivationSocial) Submit(ctx context.Context, name string) error {
	if !lengthBetween(name, MinUsernameLength, MaxUsernameLength) {
		return a.tr.message(MsgAvatarNameLength, map[string]string{
			"min": strconv.Itoa(MinUsernameLength), "max": strconv.Itoa(MaxUsernameLength),
		})
	}
	if _, err := a.svc.Activate(ctx, session.ActivationData{Code: a.code, Name: name}); err != nil {
		return a.tr.inlineWithCode(err, MsgUnexpectedError)
	}
	a.mu.Lock()
	a.done = true
	a.mu.Unlock()
	return nil
}

// Done reports whether the account is activated.
func (a *ActivationSocial) Done() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}
