package flows_test

import (
	"context"
	"net/http"
	"testing"

	"lobbyctl/internal/api"
	"lobbyctl/internal/flows"
	"lobbyctl/internal/lobby"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gtlMetadata() *lobby.Metadata {
	return &lobby.Metadata{Gameworlds: []lobby.Gameworld{
		{UUID: "gw-1", Name: "Europe 1"},
		{UUID: "gw-2", Name: "Europe 2"},
		{UUID: "gw-3", Name: "Europe 3"},
	}}
}

func verifiedTransfer(t *testing.T, fake *fakeGTL) *flows.GoldTransfer {
	t.Helper()
	fake.amount = 250
	fake.metadata = gtlMetadata()
	g := flows.NewGoldTransfer(fake, nil, "gtl-code")
	g.LoadGameworlds(context.Background())
	require.NoError(t, g.Verify(context.Background(), "old@example.com"))
	assert.Equal(t, flows.GTLSearch, g.Step())
	assert.Equal(t, 250, g.Amount())
	return g
}

func TestGoldTransfer_SingleTargetSkipsSelection(t *testing.T) {
	fake := &fakeGTL{
		targets: &lobby.GTLTargets{Targets: []string{"gw-2", "gw-3"}, TransferTargets: map[string]string{"gw-2": "avatar-2"}},
		state:   lobby.TransferConsumed,
	}
	g := verifiedTransfer(t, fake)

	notice, err := g.Search(context.Background(), "Hero")
	require.NoError(t, err)
	assert.Empty(t, notice)
	assert.Equal(t, flows.GTLConfirm, g.Step())
	require.NotNil(t, g.Selected())
	assert.Equal(t, "Europe 2", g.Selected().Gameworld.Name)
	assert.Equal(t, "avatar-2", g.Selected().AvatarID)
	assert.True(t, g.HasExcludedTargets())
	assert.False(t, g.CanChangeGameworld())

	require.NoError(t, g.Confirm(context.Background()))
	assert.Equal(t, []string{"avatar-2"}, fake.transfers)
	assert.Equal(t, flows.GTLDone, g.Step())
	assert.Equal(t, "250 was transferred to the avatar Hero on the game world Europe 2.", g.SuccessMessage())
}

func TestGoldTransfer_MultipleTargets(t *testing.T) {
	fake := &fakeGTL{
		targets: &lobby.GTLTargets{
			Targets:         []string{"gw-3", "gw-1"},
			TransferTargets: map[string]string{"gw-3": "avatar-3", "gw-1": "avatar-1"},
		},
		state: lobby.TransferPending,
	}
	g := verifiedTransfer(t, fake)

	_, err := g.Search(context.Background(), "Hero")
	require.NoError(t, err)
	assert.Equal(t, flows.GTLSelectGameworld, g.Step())

	candidates := g.Candidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, "gw-1", candidates[0].Gameworld.UUID)
	assert.Equal(t, "gw-3", candidates[1].Gameworld.UUID)

	require.Error(t, g.Select("gw-2"))
	require.NoError(t, g.Select("gw-3"))
	assert.Equal(t, flows.GTLConfirm, g.Step())
	assert.True(t, g.CanChangeGameworld())

	g.ChangeGameworld()
	assert.Equal(t, flows.GTLSelectGameworld, g.Step())
	require.NoError(t, g.Select("gw-1"))

	require.NoError(t, g.Confirm(context.Background()))
	assert.Equal(t, lobby.TransferPending, g.State())
	assert.Equal(t, "To complete the transfer of 250, the avatar Hero has to complete the instructions received via IGM.", g.SuccessMessage())
}

func TestGoldTransfer_ChangeAvatarResets(t *testing.T) {
	fake := &fakeGTL{targets: &lobby.GTLTargets{Targets: []string{"gw-1"}, TransferTargets: map[string]string{"gw-1": "avatar-1"}}}
	g := verifiedTransfer(t, fake)

	_, err := g.Search(context.Background(), "Hero")
	require.NoError(t, err)
	assert.Equal(t, flows.GTLConfirm, g.Step())

	g.ChangeAvatar()
	assert.Equal(t, flows.GTLSearch, g.Step())
	assert.Nil(t, g.Selected())
	assert.Empty(t, g.TargetName())
	assert.Empty(t, g.Candidates())
}

func TestGoldTransfer_NoAvatar(t *testing.T) {
	fake := &fakeGTL{targets: &lobby.GTLTargets{Targets: []string{}}}
	g := verifiedTransfer(t, fake)

	_, err := g.Search(context.Background(), "Nobody")
	var inline *flows.InlineError
	require.ErrorAs(t, err, &inline)
	assert.Equal(t, api.CodeNoAvatarWithThisName, inline.Code)
	assert.Equal(t, flows.GTLSearch, g.Step())
	assert.Equal(t, 1, fake.finds)
	assert.Empty(t, fake.transfers)
}

func TestGoldTransfer_AllTargetsExcluded(t *testing.T) {
	fake := &fakeGTL{targets: &lobby.GTLTargets{Targets: []string{"gw-1"}, TransferTargets: map[string]string{}}}
	g := verifiedTransfer(t, fake)

	notice, err := g.Search(context.Background(), "Hero")
	require.NoError(t, err)
	assert.Equal(t, flows.MsgExcludedGameworlds, notice)
	assert.Equal(t, flows.GTLSearch, g.Step())
}

func TestGoldTransfer_VerifyErrors(t *testing.T) {
	fake := &fakeGTL{verifyErr: apiErr(http.StatusForbidden, "invalid_email", func(b *api.ErrorBody) { b.Message = "Wrong email" })}
	g := flows.NewGoldTransfer(fake, nil, "gtl-code")

	err := g.Verify(context.Background(), "a@b")
	require.Error(t, err)

	err = g.Verify(context.Background(), "old@example.com")
	var inline *flows.InlineError
	require.ErrorAs(t, err, &inline)
	assert.Equal(t, "Wrong email", inline.Message)
	assert.Equal(t, flows.GTLVerify, g.Step())
}

func TestGTLRulesURL(t *testing.T) {
	assert.Equal(t, "https://support.travian.com/de/support/solutions/articles/7000060364-gold-transfer", flows.GTLRulesURL("de"))
	assert.Contains(t, flows.GTLRulesURL(""), "/en/")
}

func TestLegalLinks(t *testing.T) {
	assert.Equal(t, "https://agb.traviangames.com/terms-de.pdf", flows.TermsURL("de-DE"))
	assert.Equal(t, "https://agb.traviangames.com/terms-de.pdf#row", flows.WithdrawalURL("de-DE"))
	assert.Equal(t, "https://agb.traviangames.com/privacy-en-TL.pdf", flows.PrivacyURL(""))
	assert.Equal(t, "https://support.travian.com/fr/support/solutions/articles/7000060364-gold-transfer", flows.GTLRulesURL("fr-FR"))
}
