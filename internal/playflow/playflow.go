// Package playflow decides where a player goes after logging in: into an
// existing avatar, into a freshly registered one, to the refer-a-friend
// notice, or to the lobby join page.
package playflow

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"lobbyctl/internal/lobby"
	"lobbyctl/internal/navigation"
	"lobbyctl/pkg/logging"
)

const subsystem = "PlayFlow"

// ReferAFriendHash is the modal shown when an invite link points to a
// gameworld the player already plays on.
const ReferAFriendHash = "#referAFriendForwarding"

// minInviteCodeLength is the shortest uc value accepted as an invite code.
const minInviteCodeLength = 20

// NullUUID is sent as the server of an ad-only join.
var NullUUID = uuid.Nil.String()

// Lobby is the part of the Lobby client the orchestrator uses.
type Lobby interface {
	Host() *url.URL
	GetMetadata(ctx context.Context) (*lobby.Metadata, error)
	AvatarOn(ctx context.Context, wuid string) (*lobby.Avatar, error)
	PlayAvatar(ctx context.Context, avatarUUID string) (string, error)
	RegisterAvatar(ctx context.Context, req lobby.RegisterAvatarRequest) (string, error)
}

// Navigator receives the single navigation the orchestrator performs.
type Navigator interface {
	Navigate(to string) (navigation.Location, error)
	Redirect(target string)
}

// OutcomeKind tells how the outcome is applied.
type OutcomeKind int

const (
	// Redirect is a full navigation away from the site.
	Redirect OutcomeKind = iota
	// Hash is a client-side modal change.
	Hash
)

func (k OutcomeKind) String() string {
	if k == Hash {
		return "hash"
	}
	return "redirect"
}

// Outcome is the navigation chosen by Run.
type Outcome struct {
	Kind   OutcomeKind
	Target string
}

// Orchestrator runs the play flow.
type Orchestrator struct {
	lobby Lobby
	nav   Navigator
}

// New creates an orchestrator. nav may be nil when the caller applies the
// outcome itself.
func New(l Lobby, nav Navigator) *Orchestrator {
	return &Orchestrator{lobby: l, nav: nav}
}

// DecodeInviteCode returns the gameworld reference carried by an invite
// code, or "" when uc is not an invite code. A well-formed UUID is returned
// in canonical form; other codes of sufficient length are used as is.
func DecodeInviteCode(uc string) string {
	if id, err := uuid.Parse(uc); err == nil {
		return id.String()
	}
	if len(uc) >= minInviteCodeLength {
		return uc
	}
	return ""
}

// Run computes the destination for params (the server, uc and ad query
// parameters), applies it to the navigator and returns it. Errors while
// looking up the gameworld or the avatar are swallowed; the join page is
// used instead.
func (o *Orchestrator) Run(ctx context.Context, params url.Values) Outcome {
	out := o.decide(ctx, params)
	logging.Info(subsystem, "Play flow outcome: %s", out.Kind)

	if o.nav != nil {
		if out.Kind == Hash {
			if _, err := o.nav.Navigate(out.Target); err != nil {
				logging.Warn(subsystem, "Navigation to %s failed: %v", out.Target, err)
			}
		} else {
			o.nav.Redirect(out.Target)
		}
	}
	return out
}

func (o *Orchestrator) decide(ctx context.Context, params url.Values) Outcome {
	server := params.Get("server")
	adCode := params.Get("ad")
	ucCode := params.Get("uc")

	var target, registrationKey string
	if ucCode != "" {
		if decoded := DecodeInviteCode(ucCode); decoded != "" {
			target = decoded
			registrationKey = ucCode
		}
	}
	if target == "" {
		target = server
	}

	host := o.lobby.Host()

	if target == "" {
		if adCode != "" {
			u := *host
			u.Path = "/account/join"
			u.RawQuery = "server=" + NullUUID + "&ad=" + url.QueryEscape(adCode)
			return redirect(u.String())
		}
		return redirect(host.String())
	}

	join := joinURL(host, params)

	dest, err := o.forGameworld(ctx, target, adCode, registrationKey, join)
	if err != nil {
		logging.Debug(subsystem, "Falling back to join page: %v", err)
		return redirect(join)
	}
	return dest
}

func (o *Orchestrator) forGameworld(ctx context.Context, target, adCode, registrationKey, join string) (Outcome, error) {
	md, err := o.lobby.GetMetadata(ctx)
	if err != nil {
		return Outcome{}, err
	}
	gw, ok := md.Gameworld(target)
	if !ok {
		return redirect(join), nil
	}

	avatar, err := o.lobby.AvatarOn(ctx, gw.UUID)
	if err != nil {
		return Outcome{}, err
	}

	switch {
	case avatar != nil && registrationKey != "":
		return Outcome{Kind: Hash, Target: ReferAFriendHash}, nil

	case avatar != nil:
		redirectTo, err := o.lobby.PlayAvatar(ctx, avatar.UUID)
		if err != nil {
			return Outcome{}, err
		}
		return resolved(gw.URL, redirectTo)

	case gw.RequiresRegistrationKey():
		return redirect(join), nil

	default:
		redirectTo, err := o.lobby.RegisterAvatar(ctx, lobby.RegisterAvatarRequest{
			WUID:            gw.UUID,
			AdCode:          adCode,
			RegistrationKey: registrationKey,
		})
		if err != nil {
			return Outcome{}, err
		}
		return resolved(gw.URL, redirectTo)
	}
}

func resolved(gameworldURL, redirectTo string) (Outcome, error) {
	target, err := lobby.ResolveRedirect(gameworldURL, redirectTo)
	if err != nil {
		return Outcome{}, err
	}
	return redirect(target), nil
}

func redirect(target string) Outcome {
	return Outcome{Kind: Redirect, Target: target}
}

func joinURL(host *url.URL, q url.Values) string {
	u := *host
	u.Path = "/account/join"
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}
