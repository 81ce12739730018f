package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/cli"
	"lobbyctl/internal/config"
	"lobbyctl/internal/lobby"
	"lobbyctl/internal/lobby/lobbytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, server *lobbytest.Server, start, input string) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Lobby:           config.LobbyConfig{Host: server.URL},
		Identity:        config.IdentityConfig{Host: server.URL, ClientID: "client-1"},
		Locale:          config.DefaultLocale,
		LocalisationDir: t.TempDir(),
		HTTPTimeout:     5 * time.Second,
		SessionTimeout:  2 * time.Second,
	}
	var out bytes.Buffer
	a, err := buildApp(appOptions{
		cfg:     cfg,
		in:      strings.NewReader(input),
		out:     &out,
		cookies: t.TempDir(),
		start:   start,
		noSpin:  true,
	})
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a, &out
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name  string
		hash  string
		q     url.Values
		pairs []string
		want  string
	}{
		{name: "hash only", hash: "#loginLobby", want: "/#loginLobby"},
		{name: "preserved params first", hash: "#registration", q: url.Values{"ad": {"a1"}, "server": {"gw-1"}, "other": {"x"}}, want: "/?server=gw-1&ad=a1#registration"},
		{name: "pairs keep order", hash: "#activation", pairs: []string{"code", "c 1", "email", "", "sign", "s"}, want: "/?code=c+1&sign=s#activation"},
		{name: "no hash", q: url.Values{"uc": {"u1"}}, want: "/?uc=u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, location(tt.hash, tt.q, tt.pairs...))
		})
	}
}

func TestPlayParams(t *testing.T) {
	p := playParams{server: "gw-1", ad: "spring"}
	assert.Equal(t, url.Values{"server": {"gw-1"}, "ad": {"spring"}}, p.values())
	assert.Empty(t, playParams{}.values())
}

func TestDrive_LoginFailsAfterRetries(t *testing.T) {
	server := lobbytest.NewServer(t)
	server.Error("POST /provider/login", http.StatusUnauthorized, api.CodeInvalidCredentials, nil)

	input := strings.Repeat("player\nwrong-password\n", maxAttempts)
	a, _ := newTestApp(t, server, "/#loginLobby", input)

	err := a.drive(context.Background(), dialogInput{})
	require.Error(t, err)

	var failed *cli.AuthFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "login", failed.Operation)
	assert.Equal(t, cli.ExitCodeAuthFailed, cli.ExitCode(err))
	assert.Len(t, server.CallsTo("/provider/login"), maxAttempts)
	assert.Empty(t, server.CallsTo("/api/auth/code"))
}

func TestDrive_LoginSucceeds(t *testing.T) {
	server := lobbytest.NewServer(t)
	var authorized atomic.Bool
	server.JSON("POST /provider/login", http.StatusOK, map[string]string{"code": "auth-code"})
	server.Handle("POST /api/auth/code", func(w http.ResponseWriter, r *http.Request) {
		authorized.Store(true)
		lobbytest.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	server.Handle("POST /api/graphql", func(w http.ResponseWriter, r *http.Request) {
		if !authorized.Load() {
			lobbytest.WriteJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"session": nil}})
			return
		}
		lobbytest.WriteJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"session": map[string]any{"identity": map[string]string{"guid": "g1", "name": "Player"}},
		}})
	})

	a, out := newTestApp(t, server, "/#loginLobby", "player\nsecret123\n")

	require.NoError(t, a.drive(context.Background(), dialogInput{}))
	assert.Contains(t, out.String(), "Logged in as Player")
	assert.Contains(t, out.String(), "Continue in your browser: ")
	assert.Len(t, server.CallsTo("/api/auth/code"), 1)
	assert.NotNil(t, a.store.Account())
}

func TestDrive_RegistrationStaysWhenEnterPressed(t *testing.T) {
	server := lobbytest.NewServer(t)
	server.Error("POST /provider/login/register", http.StatusConflict, api.CodeIdentityExists, nil)

	a, out := newTestApp(t, server, "/#registration", "me@example.com\nn\n\n")

	start := time.Now()
	err := a.drive(context.Background(), dialogInput{})
	assert.ErrorIs(t, err, cli.ErrAborted)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Contains(t, out.String(), "Press Enter to stay on the registration form.")
	assert.NotContains(t, out.String(), "Email or account name")
	assert.Equal(t, "#registration", a.nav.Current().Hash)
	assert.Len(t, server.CallsTo("/provider/login/register"), 1)
}

func TestDrive_ExpiredActivationOffersChoice(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHash    string
		wantAttempt int
	}{
		{name: "enter the code again", input: "123456\n1\n654321\n", wantHash: "#activation", wantAttempt: 2},
		{name: "start again", input: "123456\n2\n", wantHash: "#registration", wantAttempt: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := lobbytest.NewServer(t)
			server.Error("POST /identity/activate", http.StatusBadRequest, api.CodeInvalidRequest, nil)

			a, out := newTestApp(t, server, "/?code=c1#activation", tt.input)

			err := a.drive(context.Background(), dialogInput{})
			assert.ErrorIs(t, err, cli.ErrAborted)
			assert.Contains(t, out.String(), "Start again with a new registration")
			assert.Equal(t, tt.wantHash, a.nav.Current().Hash)
			assert.Len(t, server.CallsTo("/identity/activate"), tt.wantAttempt)
		})
	}
}

func TestDrive_GoldTransfer(t *testing.T) {
	server := lobbytest.NewServer(t)
	server.JSON("GET /api/metadata", http.StatusOK, map[string]any{"gameworlds": []map[string]string{
		{"uuid": "gw-1", "name": "Europe 1"},
		{"uuid": "gw-2", "name": "Europe 2"},
	}})
	server.JSON("POST /api/gtl/verifyOwnership", http.StatusOK, map[string]int{"amount": 250})
	server.JSON("POST /api/gtl/findTargets", http.StatusOK, map[string]any{
		"targets":         []string{"gw-1", "gw-2"},
		"transferTargets": map[string]string{"gw-1": "av-1", "gw-2": "av-2"},
	})
	server.JSON("POST /api/gtl/transfer", http.StatusOK, map[string]string{"state": "consumed"})

	// email, avatar name, second gameworld, transfer
	input := "player@example.com\nHero\n2\n1\n"
	a, out := newTestApp(t, server, location("#gtl", nil, "c", "gtl-code"), input)

	require.NoError(t, a.drive(context.Background(), dialogInput{}))

	transfers := server.CallsTo("/api/gtl/transfer")
	require.Len(t, transfers, 1)
	assert.Equal(t, "av-2", transfers[0].Body["uuid"])
	assert.Equal(t, "gtl-code", transfers[0].Body["code"])
	assert.Contains(t, out.String(), "250 gold can be transferred.")
	assert.Contains(t, out.String(), "250 was transferred to the avatar Hero on the game world Europe 2.")
	assert.False(t, a.modals.Current().Open())
}

func TestDrive_NoDialog(t *testing.T) {
	server := lobbytest.NewServer(t)
	a, out := newTestApp(t, server, "/", "")

	require.NoError(t, a.drive(context.Background(), dialogInput{}))
	assert.Empty(t, out.String())
	assert.Empty(t, server.Calls())
}

func TestShowCalendarEntry(t *testing.T) {
	server := lobbytest.NewServer(t)
	server.JSON("GET /api/calendar", http.StatusOK, []map[string]any{{
		"_id":      "c1",
		"start":    1700000000,
		"metadata": map[string]any{"name": "Europe 3x", "speed": 3, "type": "normal"},
		"info":     map[string]any{"tribes": []int{1, 4, 3}},
	}})

	a, out := newTestApp(t, server, "", "")

	require.NoError(t, a.showCalendarEntry(context.Background(), "c1", false))
	text := out.String()
	assert.Contains(t, text, "Europe 3x\n")
	assert.Contains(t, text, "Start:    11/14/2023 22:13 (UTC)")
	assert.Contains(t, text, "Speed:    3x")
	assert.Contains(t, text, "Tribes:   roman, gaul")
	assert.Contains(t, text, "Action:   none")
	assert.NotContains(t, text, "URL:")

	err := a.showCalendarEntry(context.Background(), "missing", false)
	assert.ErrorContains(t, err, `"missing" is not in the calendar`)
}

func TestEntryStatus(t *testing.T) {
	now := time.Unix(2000, 0)
	assert.Equal(t, "announced", entryStatus(lobbyEntry("", 3000), now))
	assert.Equal(t, "created", entryStatus(lobbyEntry("gw-1", 3000), now))
	assert.Equal(t, "running", entryStatus(lobbyEntry("gw-1", 1000), now))

	closed := lobbyEntry("gw-1", 1000)
	closed.RegistrationClosed = true
	assert.Equal(t, "closed", entryStatus(closed, now))
}

func lobbyEntry(uuid string, start int64) lobby.CalendarEntry {
	return lobby.CalendarEntry{ID: "c-" + uuid, UUID: uuid, Start: start}
}
