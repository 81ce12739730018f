package flows_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"lobbyctl/internal/api"
	"lobbyctl/internal/identity"
	"lobbyctl/internal/lobby"
	"lobbyctl/internal/navigation"
	"lobbyctl/internal/playflow"
	"lobbyctl/internal/session"

	"github.com/stretchr/testify/require"
)

func newNav(t *testing.T, start string) *navigation.Navigator {
	t.Helper()
	nav, err := navigation.NewNavigator("https://lobby.example.com", start)
	require.NoError(t, err)
	return nav
}

func apiErr(status int, code string, mutate func(*api.ErrorBody)) error {
	e := api.NewCodeError(code)
	e.Status = status
	if mutate != nil {
		mutate(e.Body)
	}
	return e
}

type fakeRegistrar struct {
	result *session.RegisterResult
	err    error
	got    []session.RegisterData
}

func (f *fakeRegistrar) Register(ctx context.Context, data session.RegisterData) (*session.RegisterResult, error) {
	f.got = append(f.got, data)
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &session.RegisterResult{}, nil
	}
	return f.result, nil
}

type fakeAccountService struct {
	mu sync.Mutex

	activateRef string
	activateErr error
	activations []session.ActivationData

	resendUntil time.Time
	resendErr   error
	resends     int

	confirmErr error
	confirmed  []string

	recoveries []string
}

func (f *fakeAccountService) Activate(ctx context.Context, data session.ActivationData) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activations = append(f.activations, data)
	return f.activateRef, f.activateErr
}

func (f *fakeAccountService) ResendActivation(ctx context.Context, code string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resends++
	return f.resendUntil, f.resendErr
}

func (f *fakeAccountService) ConfirmPasswordChange(ctx context.Context, code, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, code+":"+password)
	return f.confirmErr
}

func (f *fakeAccountService) RequestPasswordRecovery(ctx context.Context, login, locale string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recoveries = append(f.recoveries, login+"|"+locale)
}

type fakeProfile struct {
	names   []string
	nameErr error
	info    *lobby.AccountInfo
}

func (f *fakeProfile) SetName(ctx context.Context, name string) error {
	f.names = append(f.names, name)
	return f.nameErr
}

func (f *fakeProfile) AccountInfo(ctx context.Context) (*lobby.AccountInfo, error) {
	return f.info, nil
}

type fakeRefresher struct{ refreshed int }

func (f *fakeRefresher) RefreshSession(ctx context.Context) { f.refreshed++ }

type fakePlayFlow struct {
	runs []url.Values
	out  playflow.Outcome
}

func (f *fakePlayFlow) Run(ctx context.Context, params url.Values) playflow.Outcome {
	f.runs = append(f.runs, params)
	return f.out
}

type fakeAuthenticator struct {
	account *lobby.Account
	result  *session.LoginResult
	err     error
	logins  []session.Credentials
}

func (f *fakeAuthenticator) Login(ctx context.Context, creds session.Credentials) (*session.LoginResult, error) {
	f.logins = append(f.logins, creds)
	return f.result, f.err
}

func (f *fakeAuthenticator) Account() *lobby.Account { return f.account }

type fakeSocial struct {
	err      error
	provider identity.Provider
	payload  map[string]any
}

func (f *fakeSocial) SocialLogin(ctx context.Context, provider identity.Provider, payload map[string]any) error {
	f.provider = provider
	f.payload = payload
	return f.err
}

type fakeGTL struct {
	amount    int
	verifyErr error
	targets   *lobby.GTLTargets
	findErr   error
	state     lobby.TransferState
	transfers []string
	metadata  *lobby.Metadata
	finds     int
}

func (f *fakeGTL) GTLVerifyOwnership(ctx context.Context, code, email string) (int, error) {
	return f.amount, f.verifyErr
}

func (f *fakeGTL) GTLFindTargets(ctx context.Context, code, email, name string) (*lobby.GTLTargets, error) {
	f.finds++
	return f.targets, f.findErr
}

func (f *fakeGTL) GTLTransfer(ctx context.Context, code, email, target string) (lobby.TransferState, error) {
	f.transfers = append(f.transfers, target)
	return f.state, nil
}

func (f *fakeGTL) GetMetadata(ctx context.Context) (*lobby.Metadata, error) {
	if f.metadata == nil {
		return &lobby.Metadata{}, nil
	}
	return f.metadata, nil
}

type fakeAvatarRegistrar struct {
	redirectTo string
	err        error
	got        []lobby.RegisterAvatarRequest
}

func (f *fakeAvatarRegistrar) RegisterAvatar(ctx context.Context, req lobby.RegisterAvatarRequest) (string, error) {
	f.got = append(f.got, req)
	return f.redirectTo, f.err
}

type fakeRedirector struct{ targets []string }

func (f *fakeRedirector) Redirect(target string) { f.targets = append(f.targets, target) }
