package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby"
	"lobbyctl/internal/lobby/lobbytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *lobbytest.Server) {
	t.Helper()
	server := lobbytest.NewServer(t)

	identityHTTP, err := api.New(server.URL)
	require.NoError(t, err)
	lobbyHTTP, err := api.New(server.URL)
	require.NoError(t, err)

	return NewService(identity.New(identityHTTP, "client-1"), lobby.New(lobbyHTTP), "en-US"), server
}

func sessionData(name string) map[string]any {
	return map[string]any{"session": map[string]any{"identity": map[string]string{"guid": "g1", "name": name}}}
}

func TestService_Login(t *testing.T) {
	svc, server := newService(t)
	server.JSON("POST /provider/login", http.StatusOK, map[string]string{"code": "auth-code"})
	server.JSON("POST /api/auth/code", http.StatusOK, map[string]bool{"success": true})
	server.GraphQL("session", http.StatusOK, sessionData("Player"))

	result, err := svc.Login(context.Background(), Credentials{Login: "player", Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, result.Account)
	assert.Equal(t, "Player", result.Account.Name)

	authorize := server.CallsTo("/api/auth/code")[0]
	assert.Equal(t, "auth-code", authorize.Body["code"])
	assert.Equal(t, "en-US", authorize.Body["locale"])
	assert.NotEmpty(t, authorize.Body["code_verifier"])
}

func TestService_Login_NeedsActivation(t *testing.T) {
	svc, server := newService(t)
	server.Error("POST /provider/login", http.StatusForbidden, api.CodeIdentityNeedsActivation, map[string]string{"code": "act-1", "sign": "sig"})

	result, err := svc.Login(context.Background(), Credentials{Login: "player", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, result.NeedsActivation)
	assert.Equal(t, "act-1", result.ActivationCode)
	assert.Equal(t, "sig", result.Sign)
	assert.Empty(t, server.CallsTo("/identity/activate"))
	assert.Empty(t, server.CallsTo("/api/auth/code"))
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc, server := newService(t)
	server.Error("POST /provider/login", http.StatusUnauthorized, api.CodeInvalidCredentials, nil)

	_, err := svc.Login(context.Background(), Credentials{})
	require.Error(t, err)
	assert.True(t, api.IsCode(err, api.CodeInvalidCredentials))
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		code       string
		wantErr    string
		activation bool
	}{
		{name: "accepted", status: http.StatusOK},
		{name: "needs activation", status: http.StatusForbidden, code: api.CodeIdentityNeedsActivation, activation: true},
		{name: "exists by code", status: http.StatusBadRequest, code: api.CodeIdentityExists, wantErr: api.CodeIdentityExists},
		{name: "exists by status", status: http.StatusConflict, code: "whatever", wantErr: api.CodeIdentityExists},
		{name: "other", status: http.StatusBadRequest, code: "captcha_failed", wantErr: "captcha_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, server := newService(t)
			if tt.code == "" {
				server.JSON("POST /provider/login/register", tt.status, map[string]string{})
			} else {
				server.Error("POST /provider/login/register", tt.status, tt.code, map[string]string{"code": "act-1"})
			}

			result, err := svc.Register(context.Background(), RegisterData{Email: "player@example.com"})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, api.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.activation, result.NeedsActivation)
			if tt.activation {
				assert.Equal(t, "act-1", result.ActivationCode)
			}
		})
	}
}

func TestService_Activate(t *testing.T) {
	svc, server := newService(t)
	server.JSON("POST /identity/activate", http.StatusOK, map[string]string{"code": "auth-code", "context": "server=gw-1"})
	server.JSON("POST /api/auth/code", http.StatusOK, map[string]bool{"success": true})

	refCtx, err := svc.Activate(context.Background(), ActivationData{Code: "act-1", ActivationCode: "123456", AcceptTerms: true})
	require.NoError(t, err)
	assert.Equal(t, "server=gw-1", refCtx)

	activate := server.CallsTo("/identity/activate")[0]
	assert.Equal(t, "act-1", activate.Query.Get("code"))
	assert.Equal(t, true, activate.Body["acceptTermsAndConditions"])
	assert.Len(t, server.CallsTo("/api/auth/code"), 1)
}

func TestService_PasswordRecoveryAlwaysSucceeds(t *testing.T) {
	svc, server := newService(t)
	server.Error("PUT /api/identity/password", http.StatusNotFound, "unknown_login", nil)

	svc.RequestPasswordRecovery(context.Background(), "nobody@example.com", "")

	call := server.CallsTo("/api/identity/password")[0]
	assert.Equal(t, "en-US", call.Body["locale"])
}

func TestService_LogoutIgnoresErrors(t *testing.T) {
	svc, server := newService(t)
	server.Error("POST /api/auth/logout", http.StatusInternalServerError, "boom", nil)

	svc.Logout(context.Background())
	assert.Len(t, server.CallsTo("/api/auth/logout"), 1)
}

func TestService_ResendActivation(t *testing.T) {
	svc, server := newService(t)
	server.JSON("POST /identity/activate/resend", http.StatusOK, map[string]int64{"cooldown": 1700000030})

	until, err := svc.ResendActivation(context.Background(), "act-1")
	require.NoError(t, err)
	assert.Equal(t, 30, identity.CooldownSeconds(until, time.Unix(1700000000, 0)))
}

func TestService_SocialLogin(t *testing.T) {
	svc, server := newService(t)
	server.JSON("POST /provider/apple", http.StatusOK, map[string]string{"code": "auth-code"})
	server.JSON("POST /api/auth/code", http.StatusOK, map[string]bool{"success": true})

	require.NoError(t, svc.SocialLogin(context.Background(), identity.ProviderApple, map[string]any{"id_token": "tok"}))
	assert.Equal(t, "tok", server.CallsTo("/provider/apple")[0].Body["id_token"])
}
