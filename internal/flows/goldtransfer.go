package flows

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"lobbyctl/internal/api"
	"lobbyctl/internal/lobby"
	"lobbyctl/pkg/logging"
)

// GoldTransferStep is a step of the gold transfer wizard.
type GoldTransferStep int

const (
	GTLVerify GoldTransferStep = iota
	GTLSearch
	GTLSelectGameworld
	GTLConfirm
	GTLDone
)

func (s GoldTransferStep) String() string {
	switch s {
	case GTLVerify:
		return "verify"
	case GTLSearch:
		return "search"
	case GTLSelectGameworld:
		return "selectGameworld"
	case GTLConfirm:
		return "confirm"
	case GTLDone:
		return "done"
	}
	return "unknown"
}

const (
	minGTLEmailLength = 5
	maxGTLEmailLength = 200
)

// GoldTransferLobby is the part of the lobby client the wizard uses.
type GoldTransferLobby interface {
	GTLVerifyOwnership(ctx context.Context, code, email string) (int, error)
	GTLFindTargets(ctx context.Context, code, email, name string) (*lobby.GTLTargets, error)
	GTLTransfer(ctx context.Context, code, email, targetAvatarID string) (lobby.TransferState, error)
	GetMetadata(ctx context.Context) (*lobby.Metadata, error)
}

// TransferTarget is an eligible gameworld and the avatar there that would
// receive the gold.
type TransferTarget struct {
	Gameworld lobby.Gameworld
	AvatarID  string
}

// GoldTransfer moves the gold of a closed account to an avatar on a running
// gameworld: verify ownership, search avatar, select gameworld, confirm.
type GoldTransfer struct {
	lobby GoldTransferLobby
	tr    translator
	code  string

	mu         sync.Mutex
	gameworlds []lobby.Gameworld
	verified   bool
	email      string
	amount     int
	name       string
	targets    *lobby.GTLTargets
	selected   *TransferTarget
	state      lobby.TransferState
}

// NewGoldTransfer starts the wizard for the transfer code c from the mail.
func NewGoldTransfer(l GoldTransferLobby, tr Translator, code string) *GoldTransfer {
	return &GoldTransfer{lobby: l, tr: translator{tr}, code: code}
}

// LoadGameworlds fetches the gameworld list used to describe targets.
// Failures leave the list empty.
func (g *GoldTransfer) LoadGameworlds(ctx context.Context) {
	meta, err := g.lobby.GetMetadata(ctx)
	if err != nil {
		logFailure("load gameworlds", err)
		return
	}
	g.mu.Lock()
	g.gameworlds = meta.Gameworlds
	g.mu.Unlock()
}

// Step returns the current step.
func (g *GoldTransfer) Step() GoldTransferStep {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case !g.verified:
		return GTLVerify
	case g.name == "":
		return GTLSearch
	case g.selected == nil:
		return GTLSelectGameworld
	case g.state == "":
		return GTLConfirm
	default:
		return GTLDone
	}
}

// Amount is the verified amount of gold.
func (g *GoldTransfer) Amount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.amount
}

// TargetName is the avatar name found by the search.
func (g *GoldTransfer) TargetName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

// Verify proves ownership of the closed account with its email address.
func (g *GoldTransfer) Verify(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !lengthBetween(email, minGTLEmailLength, maxGTLEmailLength) {
		return g.tr.message(MsgInvalidEmail, nil)
	}
	amount, err := g.lobby.GTLVerifyOwnership(ctx, g.code, email)
	if err != nil {
		return g.tr.inline(err, MsgUnexpectedError)
	}

	g.mu.Lock()
	g.verified = true
	g.email = email
	g.amount = amount
	g.mu.Unlock()
	logging.Info(subsystem, "Gold transfer ownership verified")
	return nil
}

// Search looks the avatar name up. With no match at all the error carries
// api.CodeNoAvatarWithThisName. When every match is excluded by the transfer
// rules the wizard stays on this step and notice explains why.
func (g *GoldTransfer) Search(ctx context.Context, name string) (notice string, err error) {
	if !lengthBetween(name, MinUsernameLength, MaxUsernameLength) {
		return "", g.tr.message(MsgAvatarNameLength, map[string]string{
			"min": strconv.Itoa(MinUsernameLength), "max": strconv.Itoa(MaxUsernameLength),
		})
	}

	g.mu.Lock()
	email := g.email
	g.mu.Unlock()

	targets, err := g.lobby.GTLFindTargets(ctx, g.code, email, name)
	if err != nil {
		return "", g.tr.inline(err, MsgUnexpectedError)
	}
	if len(targets.Targets) == 0 {
		return "", &InlineError{Message: g.tr.T(MsgNoAvatarWithThisName, nil), Code: api.CodeNoAvatarWithThisName}
	}
	if len(targets.TransferTargets) == 0 {
		return g.tr.T(MsgExcludedGameworlds, nil), nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.name = name
	g.targets = targets
	g.selected = nil
	if len(targets.TransferTargets) == 1 {
		for uuid, avatarID := range targets.TransferTargets {
			g.selected = &TransferTarget{Gameworld: g.gameworldLocked(uuid), AvatarID: avatarID}
		}
	}
	return "", nil
}

func (g *GoldTransfer) gameworldLocked(uuid string) lobby.Gameworld {
	for _, gw := range g.gameworlds {
		if gw.UUID == uuid {
			return gw
		}
	}
	return lobby.Gameworld{UUID: uuid, Name: uuid}
}

// HasExcludedTargets reports whether the name also exists on gameworlds the
// rules exclude from transfers.
func (g *GoldTransfer) HasExcludedTargets() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.targets != nil && len(g.targets.TransferTargets) < len(g.targets.Targets)
}

// Candidates lists the eligible gameworlds in lobby order. Gameworlds
// missing from the lobby list are appended by uuid.
func (g *GoldTransfer) Candidates() []TransferTarget {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.targets == nil {
		return nil
	}

	out := make([]TransferTarget, 0, len(g.targets.TransferTargets))
	seen := make(map[string]bool, len(g.targets.TransferTargets))
	for _, gw := range g.gameworlds {
		if avatarID, ok := g.targets.TransferTargets[gw.UUID]; ok {
			out = append(out, TransferTarget{Gameworld: gw, AvatarID: avatarID})
			seen[gw.UUID] = true
		}
	}
	for _, uuid := range g.targets.Targets {
		if avatarID, ok := g.targets.TransferTargets[uuid]; ok && !seen[uuid] {
			out = append(out, TransferTarget{Gameworld: lobby.Gameworld{UUID: uuid, Name: uuid}, AvatarID: avatarID})
			seen[uuid] = true
		}
	}
	return out
}

// Select picks the gameworld to transfer to.
func (g *GoldTransfer) Select(uuid string) error {
	for _, c := range g.Candidates() {
		if c.Gameworld.UUID == uuid {
			target := c
			g.mu.Lock()
			g.selected = &target
			g.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("gameworld %s is not a transfer target", uuid)
}

// Selected is the chosen target, or nil.
func (g *GoldTransfer) Selected() *TransferTarget {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selected == nil {
		return nil
	}
	target := *g.selected
	return &target
}

// CanChangeGameworld reports whether there was more than one eligible
// gameworld to choose from.
func (g *GoldTransfer) CanChangeGameworld() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.targets != nil && len(g.targets.TransferTargets) > 1
}

// ChangeAvatar returns to the search, discarding the search result and the
// selection.
func (g *GoldTransfer) ChangeAvatar() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.verified || g.state != "" {
		return
	}
	g.name = ""
	g.targets = nil
	g.selected = nil
}

// ChangeGameworld returns to the gameworld selection.
func (g *GoldTransfer) ChangeGameworld() {
	if !g.CanChangeGameworld() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == "" {
		g.selected = nil
	}
}

// Confirm performs the transfer to the selected avatar.
func (g *GoldTransfer) Confirm(ctx context.Context) error {
	g.mu.Lock()
	email, selected := g.email, g.selected
	g.mu.Unlock()
	if selected == nil {
		return fmt.Errorf("no transfer target selected")
	}

	state, err := g.lobby.GTLTransfer(ctx, g.code, email, selected.AvatarID)
	if err != nil {
		return g.tr.inline(err, MsgUnexpectedError)
	}
	if state == "" {
		state = lobby.TransferConsumed
	}

	g.mu.Lock()
	g.state = state
	g.mu.Unlock()
	logging.Info(subsystem, "Gold transfer finished: %s", state)
	return nil
}

// State is the outcome of the transfer once confirmed.
func (g *GoldTransfer) State() lobby.TransferState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// SuccessMessage describes the finished transfer.
func (g *GoldTransfer) SuccessMessage() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == "" || g.selected == nil {
		return ""
	}
	params := map[string]string{
		"amount": strconv.Itoa(g.amount),
		"avatar": g.name,
		"world":  g.selected.Gameworld.Name,
	}
	if g.state == lobby.TransferPending {
		return g.tr.T(MsgTransferPending, params)
	}
	return g.tr.T(MsgTransferConsumed, params)
}
