package cmd

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"lobbyctl/internal/cli"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby/lobbytest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "player",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestCheckIDToken(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, checkIDToken(signedToken(t, now.Add(time.Hour)), now))

	err := checkIDToken(signedToken(t, now.Add(-time.Minute)), now)
	require.Error(t, err)
	assert.Equal(t, cli.ExitCodeAuthFailed, cli.ExitCode(err))
	assert.Contains(t, err.Error(), "id token expired")

	assert.ErrorContains(t, checkIDToken("not-a-jwt", now), "malformed id token")
}

func TestSocialPayload(t *testing.T) {
	now := time.Now()
	valid := signedToken(t, now.Add(time.Hour))

	payload, err := socialPayload(identity.ProviderGoogle, valid, "", now)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"credential": valid}, payload)

	payload, err = socialPayload(identity.ProviderApple, valid, "state-1", now)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id_token": valid, "state": "state-1"}, payload)

	_, err = socialPayload(identity.ProviderApple, valid, "", now)
	assert.ErrorContains(t, err, "--state")

	payload, err = socialPayload(identity.ProviderFacebook, "opaque-access-token", "", now)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"accessToken": "opaque-access-token"}, payload)
}

func TestLogout_AlwaysTellsLobby(t *testing.T) {
	server := lobbytest.NewServer(t)
	server.Handle("POST /api/graphql", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2500 * time.Millisecond)
		lobbytest.WriteJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"session": nil}})
	})
	server.JSON("POST /api/auth/logout", http.StatusOK, map[string]bool{"success": true})

	a, _ := newTestApp(t, server, "", "")
	lobbyURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	a.cookies.SetCookies(lobbyURL, []*http.Cookie{{Name: "lobby_session", Value: "s1", Path: "/"}})
	require.True(t, a.cookies.HasCookies(lobbyURL))

	require.NoError(t, a.logout(context.Background()))

	assert.Len(t, server.CallsTo("/api/auth/logout"), 1)
	assert.Empty(t, server.CallsTo("/api/graphql"))
	assert.False(t, a.cookies.HasCookies(lobbyURL))
	assert.Nil(t, a.store.Account())
}
