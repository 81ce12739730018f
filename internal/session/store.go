package session

import (
	"context"
	"sync"

	"lobbyctl/internal/lobby"
	"lobbyctl/pkg/logging"
)

// State is the authentication state. IsAuthenticated is true exactly when
// Account is non-nil.
type State struct {
	Account         *lobby.Account
	IsAuthenticated bool
	IsLoading       bool
}

// Backend performs the authentication operations the Store delegates to.
// *Service implements it.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Register(ctx context.Context, data RegisterData) (*RegisterResult, error)
	Logout(ctx context.Context)
	Session(ctx context.Context) *lobby.Account
}

// Store is the observable authentication state shared by every flow. Every
// write replaces the whole state and notifies subscribers. Overlapping
// operations are not serialized; the last one to finish wins.
type Store struct {
	backend Backend

	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextID      int
}

// NewStore creates a store in the loading state.
func NewStore(backend Backend) *Store {
	return &Store{
		backend:     backend,
		state:       State{IsLoading: true},
		subscribers: map[int]func(State){},
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Account returns the current account or nil.
func (s *Store) Account() *lobby.Account {
	return s.Snapshot().Account
}

// Subscribe registers fn to be called after every state change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Init establishes the initial state. With a non-nil initial account the
// store starts authenticated; otherwise the session is checked.
func (s *Store) Init(ctx context.Context, initial *lobby.Account) {
	if initial != nil {
		s.setAccount(initial, false)
		return
	}
	s.setAccount(s.backend.Session(ctx), false)
}

// Login authenticates with credentials. On failure the previous
// authentication state is kept and loading is cleared.
func (s *Store) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	s.setLoading(true)

	result, err := s.backend.Login(ctx, creds)
	if err == nil && result != nil && result.Account != nil {
		s.setAccount(result.Account, false)
	} else {
		s.setLoading(false)
	}
	return result, err
}

// Register starts a registration. It never changes the authentication state.
func (s *Store) Register(ctx context.Context, data RegisterData) (*RegisterResult, error) {
	s.setLoading(true)
	defer s.setLoading(false)
	return s.backend.Register(ctx, data)
}

// Logout ends the session. The store is anonymous afterwards whether or not
// the backend call succeeded.
func (s *Store) Logout(ctx context.Context) {
	s.backend.Logout(ctx)
	s.setAccount(nil, false)
}

// RefreshSession checks the session again and overwrites the state.
func (s *Store) RefreshSession(ctx context.Context) {
	s.setAccount(s.backend.Session(ctx), false)
}

// setAccount is the only write path that changes the account.
func (s *Store) setAccount(account *lobby.Account, loading bool) {
	s.replace(func(State) State {
		return State{Account: account, IsAuthenticated: account != nil, IsLoading: loading}
	})
}

func (s *Store) setLoading(loading bool) {
	s.replace(func(prev State) State {
		prev.IsLoading = loading
		return prev
	})
}

func (s *Store) replace(update func(State) State) {
	s.mu.Lock()
	s.state = update(s.state)
	next := s.state
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	logging.Debug(subsystem, "State changed: authenticated=%t loading=%t", next.IsAuthenticated, next.IsLoading)
	for _, fn := range subs {
		fn(next)
	}
}
