// Package session tracks the client's view of authentication: who is logged
// in, whether an auth operation is in flight, and the last auth error. The
// server owns the real session (an opaque cookie); this store reconciles that
// transient signal with the locally cached identity.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fttech/exchange-client/internal/exchange/api"
	"github.com/fttech/exchange-client/internal/exchange/identity"
)

// ErrBusy is returned when an auth operation is started while another is
// still pending. The store serializes auth operations itself rather than
// trusting callers to disable their controls.
var ErrBusy = errors.New("another authentication operation is in progress")

// AuthAPI is the slice of the gateway the store needs. Tests inject a fake.
type AuthAPI interface {
	CheckAuth(ctx context.Context) error
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Logout(ctx context.Context) error
}

type Identity struct {
	Username string
}

// State is a snapshot of the store. IsAuthenticated implies Identity != nil.
type State struct {
	Identity        *Identity
	IsAuthenticated bool
	IsLoading       bool
	LastError       string
}

type Store struct {
	api   AuthAPI
	cache identity.Cache
	log   zerolog.Logger

	mu      sync.Mutex
	state   State
	pending bool
}

func NewStore(authAPI AuthAPI, cache identity.Cache, log zerolog.Logger) *Store {
	s := &Store{
		api:   authAPI,
		cache: cache,
		log:   log.With().Str("component", "session_store").Logger(),
		state: State{IsLoading: true},
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.Identity != nil {
		id := *st.Identity
		st.Identity = &id
	}
	return st
}

// Check runs the liveness probe and reconciles it with the cached identity.
// A valid server session without a cached identity is inconsistent (it could
// belong to someone else) and fails closed. Probe failures are expected on
// cold start and never surface as a session error.
func (s *Store) Check(ctx context.Context) error {
	if err := s.begin(false); err != nil {
		return err
	}

	if err := s.api.CheckAuth(ctx); err != nil {
		s.log.Debug().Err(err).Msg("Auth check failed, treating as unauthenticated")
		s.cache.Clear()
		s.settle(func(st *State) {
			st.Identity = nil
			st.IsAuthenticated = false
		})
		return nil
	}

	username, ok := s.cache.Get()
	if !ok {
		s.log.Warn().Msg("Server session is valid but no identity is cached, failing closed")
		s.cache.Clear()
		s.settle(func(st *State) {
			st.Identity = nil
			st.IsAuthenticated = false
		})
		return nil
	}

	s.settle(func(st *State) {
		st.Identity = &Identity{Username: username}
		st.IsAuthenticated = true
		st.LastError = ""
	})
	return nil
}

// Login authenticates against the service. A success response must carry a
// username; its absence is a failure, not a degraded success.
func (s *Store) Login(ctx context.Context, credentials api.LoginRequest) error {
	if err := s.begin(true); err != nil {
		return err
	}

	resp, err := s.api.Login(ctx, credentials)
	if err != nil {
		s.settle(func(st *State) {
			st.Identity = nil
			st.IsAuthenticated = false
			st.LastError = loginErrorMessage(err)
		})
		return nil
	}

	if resp.Username == "" {
		s.settle(func(st *State) {
			st.Identity = nil
			st.IsAuthenticated = false
			st.LastError = "Login failed: Username not received."
		})
		return nil
	}

	s.cache.Set(resp.Username)
	s.settle(func(st *State) {
		st.Identity = &Identity{Username: resp.Username}
		st.IsAuthenticated = true
		st.LastError = ""
	})
	return nil
}

// Register creates an account. Registration and login are independent by
// contract with the service: success never flips authentication, and a
// registration failure is reported to the caller instead of occupying the
// session's auth error slot.
func (s *Store) Register(ctx context.Context, userData api.RegisterRequest) (string, error) {
	if err := s.begin(false); err != nil {
		return "", err
	}
	defer s.settle(func(st *State) {})

	resp, err := s.api.Register(ctx, userData)
	if err != nil {
		return "", errors.New(serverMessage(err))
	}
	if resp.Message == "" {
		return "", fmt.Errorf("registration succeeded but %w", api.ErrUnexpectedResponse)
	}
	return resp.Message, nil
}

// Logout clears the local session unconditionally. A remote logout failure
// is logged and swallowed; the user stops being authenticated either way.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.begin(false); err != nil {
		return err
	}

	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Remote logout failed, clearing local session anyway")
	}

	s.cache.Clear()
	s.settle(func(st *State) {
		st.Identity = nil
		st.IsAuthenticated = false
		st.LastError = ""
	})
	return nil
}

// ResetError clears the last error so a stale message does not linger into a
// fresh attempt. Idempotent.
func (s *Store) ResetError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastError = ""
}

// ForceSignOut applies the gateway's forced sign-out to the store: identity
// gone, not authenticated, no error (the redirect is the message).
func (s *Store) ForceSignOut() {
	s.cache.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Identity = nil
	s.state.IsAuthenticated = false
	s.state.IsLoading = false
	s.state.LastError = ""
}

// --- INTERNAL ---

func (s *Store) begin(resetError bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return ErrBusy
	}
	s.pending = true
	s.state.IsLoading = true
	if resetError {
		s.state.LastError = ""
	}
	return nil
}

// settle applies the operation's result and clears the loading flag in one
// critical section, so no reader observes a settled-but-stale window.
func (s *Store) settle(apply func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply(&s.state)
	s.state.IsLoading = false
	s.pending = false
}

func loginErrorMessage(err error) string {
	if errors.Is(err, api.ErrServiceUnavailable) {
		return "Login service is temporarily unavailable (503). Please try again later."
	}
	return serverMessage(err)
}

func serverMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
