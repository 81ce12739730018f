package flows_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"lobbyctl/internal/api"
	"lobbyctl/internal/flows"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby"
	"lobbyctl/internal/playflow"
	"lobbyctl/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_RunsPlayFlow(t *testing.T) {
	auth := &fakeAuthenticator{result: &session.LoginResult{Account: &lobby.Account{Name: "Player"}}}
	play := &fakePlayFlow{out: playflow.Outcome{Kind: playflow.Redirect, Target: "https://gw.example.com/play"}}
	nav := newNav(t, "/?server=gw-1&email=player@example.com#loginLobby")
	flow := flows.NewLogin(auth, play, nav, nil)

	assert.Equal(t, "player@example.com", flow.Prefill(nav.Current()))

	result, err := flow.Submit(context.Background(), session.Credentials{Login: "player@example.com", Password: "secret123"}, nav.Current().Query)
	require.NoError(t, err)
	require.NotNil(t, result.Outcome)
	assert.Equal(t, "https://gw.example.com/play", result.Outcome.Target)
	require.Len(t, play.runs, 1)
	assert.Equal(t, "gw-1", play.runs[0].Get("server"))
}

func TestLogin_NeedsActivation(t *testing.T) {
	auth := &fakeAuthenticator{result: &session.LoginResult{NeedsActivation: true, ActivationCode: "act-1", Sign: "sig"}}
	play := &fakePlayFlow{}
	nav := newNav(t, "/?ad=AD#loginLobby")
	flow := flows.NewLogin(auth, play, nav, nil)

	result, err := flow.Submit(context.Background(), session.Credentials{Login: "player+1@example.com", Password: "secret123"}, nil)
	require.NoError(t, err)
	assert.True(t, result.Activation)
	assert.Empty(t, play.runs)

	cur := nav.Current()
	assert.Equal(t, "#activation", cur.Hash)
	assert.Equal(t, "act-1", cur.Get("code"))
	assert.Equal(t, "player+1@example.com", cur.Get("email"))
	assert.Equal(t, "sig", cur.Get("sign"))
	assert.Equal(t, "AD", cur.Get("ad"))
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name  string
		creds session.Credentials
		err   error
		want  string
	}{
		{name: "missing login", creds: session.Credentials{Password: "x"}, want: flows.MsgEnterLogin},
		{name: "missing password", creds: session.Credentials{Login: "player"}, want: flows.MsgEnterPassword},
		{name: "bad credentials", creds: session.Credentials{Login: "player", Password: "x"}, err: apiErr(http.StatusUnauthorized, api.CodeInvalidCredentials, func(b *api.ErrorBody) { b.Message = "Wrong password" }), want: "Wrong password"},
		{name: "transport", creds: session.Credentials{Login: "player", Password: "x"}, err: errors.New("dial tcp: timeout"), want: flows.MsgUnexpectedError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthenticator{err: tt.err}
			flow := flows.NewLogin(auth, &fakePlayFlow{}, newNav(t, "/#loginLobby"), nil)

			_, err := flow.Submit(context.Background(), tt.creds, nil)
			var inline *flows.InlineError
			require.ErrorAs(t, err, &inline)
			assert.Equal(t, tt.want, inline.Message)
		})
	}
}

func TestLogin_Mount(t *testing.T) {
	t.Run("logged in with server runs play flow", func(t *testing.T) {
		play := &fakePlayFlow{}
		nav := newNav(t, "/?server=gw-1#loginLobby")
		flow := flows.NewLogin(&fakeAuthenticator{account: &lobby.Account{Name: "P"}}, play, nav, nil)

		_, ran := flow.Mount(context.Background(), nav.Current())
		assert.True(t, ran)
		assert.Len(t, play.runs, 1)
	})

	t.Run("logged in without target stays", func(t *testing.T) {
		play := &fakePlayFlow{}
		nav := newNav(t, "/#loginLobby")
		flow := flows.NewLogin(&fakeAuthenticator{account: &lobby.Account{Name: "P"}}, play, nav, nil)

		_, ran := flow.Mount(context.Background(), nav.Current())
		assert.False(t, ran)
	})

	t.Run("anonymous stays", func(t *testing.T) {
		play := &fakePlayFlow{}
		nav := newNav(t, "/?uc=UC#loginLobby")
		flow := flows.NewLogin(&fakeAuthenticator{}, play, nav, nil)

		_, ran := flow.Mount(context.Background(), nav.Current())
		assert.False(t, ran)
		assert.Empty(t, play.runs)
	})
}

func TestSocial_Complete(t *testing.T) {
	auth := &fakeSocial{}
	refresher := &fakeRefresher{}
	play := &fakePlayFlow{out: playflow.Outcome{Kind: playflow.Hash, Target: playflow.ReferAFriendHash}}
	nav := newNav(t, "/?uc=UC#loginLobby")
	flow := flows.NewSocial(auth, refresher, play, nav, "en-US", flows.FromLogin)

	out, target := flow.Complete(context.Background(), identity.ProviderFacebook, flows.FacebookPayload("fb-token"), "captcha", nav.Current().Query)
	require.NotNil(t, out)
	assert.Empty(t, target)
	assert.Equal(t, playflow.ReferAFriendHash, out.Target)

	assert.Equal(t, identity.ProviderFacebook, auth.provider)
	assert.Equal(t, "fb-token", auth.payload["accessToken"])
	assert.Equal(t, map[string]any{"locale": "en-US"}, auth.payload["options"])
	assert.Equal(t, map[string]any{"Captcha": "captcha"}, auth.payload["attestation"])
	assert.Equal(t, 1, refresher.refreshed)
	require.Len(t, play.runs, 1)
	assert.Equal(t, "UC", play.runs[0].Get("uc"))
}

func TestSocialErrorTarget(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		origin flows.SocialOrigin
		want   string
	}{
		{
			name: "needs activation",
			err:  apiErr(http.StatusForbidden, api.CodeIdentityNeedsActivation, func(b *api.ErrorBody) { b.Code = "soc-1" }),
			want: "?code=soc-1#activationSocial",
		},
		{name: "no email", err: apiErr(http.StatusBadRequest, api.CodeNoEmailAddress, nil), want: "?code=mailPermission#errorSocial"},
		{name: "mail used", err: apiErr(http.StatusConflict, api.CodeIdentityExists, nil), want: "?code=mailAlreadyUsed#errorSocial"},
		{name: "generic login", err: errors.New("boom"), origin: flows.FromLogin, want: "?code=genericLogin#errorSocial"},
		{name: "generic registration", err: errors.New("boom"), origin: flows.FromRegistration, want: "?code=genericRegistration#errorSocial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flows.SocialErrorTarget(tt.err, tt.origin))
		})
	}
}

func TestSocial_FailureNavigates(t *testing.T) {
	nav := newNav(t, "/#registration")
	flow := flows.NewSocial(&fakeSocial{err: apiErr(http.StatusBadRequest, api.CodeNoEmailAddress, nil)}, nil, &fakePlayFlow{}, nav, "en-US", flows.FromRegistration)

	out, target := flow.Complete(context.Background(), identity.ProviderGoogle, flows.GooglePayload("jwt"), "", nil)
	assert.Nil(t, out)
	assert.Equal(t, "?code=mailPermission#errorSocial", target)
	assert.Equal(t, "#errorSocial", nav.Current().Hash)
	assert.Equal(t, "mailPermission", nav.Current().Get("code"))

	assert.Equal(t, "?code=popupBlockedRegistration#errorSocial", flow.Fail(api.CodePopupBlocked))
	assert.Equal(t, "?code=genericRegistration#errorSocial", flow.Fail("closed"))

	login := flows.NewSocial(&fakeSocial{}, nil, &fakePlayFlow{}, nav, "en-US", flows.FromLogin)
	assert.Equal(t, "?code=popupBlockedLogin#errorSocial", login.Fail(api.CodePopupBlocked))
}

func TestNonceAndState(t *testing.T) {
	nonce, err := flows.NewNonce()
	require.NoError(t, err)
	assert.Len(t, nonce, 16)

	state, err := flows.NewState()
	require.NoError(t, err)
	assert.Len(t, state, 32)

	payload := flows.ApplePayload("id-token", state)
	assert.Equal(t, "id-token", payload["id_token"])
	assert.Equal(t, state, payload["state"])
}
