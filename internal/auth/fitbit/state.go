package fitbit

import (
	"errors"
	"sync"
	"time"

	"github.com/pulsefit/pulsefit-server/internal/auth/pkce"
)

// stateTTL bounds how long a pending flow stays redeemable.
const stateTTL = 10 * time.Minute

// ErrInvalidOrExpiredState is returned when a callback presents a state value
// that was never issued, already consumed, or aged out.
var ErrInvalidOrExpiredState = errors.New("invalid or expired state parameter")

// FlowState is the transient record of one pending authorization flow,
// keyed by its state token. Held in memory only; restarts drop pending flows.
type FlowState struct {
	UserID       string
	CodeVerifier string
	IssuedAt     time.Time
}

// StateStore maps outstanding state tokens to their pending flows.
// Adequate for a single-process deployment only; a multi-instance setup
// needs a shared store with atomic get-and-delete.
type StateStore struct {
	mu      sync.Mutex
	entries map[string]FlowState
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{entries: make(map[string]FlowState)}
}

// Put stores a pending flow under its state token, first purging entries
// older than the TTL.
func (s *StateStore) Put(state string, fs FlowState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, v := range s.entries {
		if now.Sub(v.IssuedAt) > stateTTL {
			delete(s.entries, k)
		}
	}
	s.entries[state] = fs
}

// Consume atomically removes and returns the pending flow for state.
// Each state token is redeemable exactly once; a second presentation fails,
// which blocks authorization-code replay through a duplicated callback.
func (s *StateStore) Consume(state string) (FlowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, ok := s.entries[state]
	if !ok {
		return FlowState{}, ErrInvalidOrExpiredState
	}
	delete(s.entries, state)
	if time.Since(fs.IssuedAt) > stateTTL {
		return FlowState{}, ErrInvalidOrExpiredState
	}
	return fs, nil
}

// Flow ties PKCE generation, the state store and URL building together for
// the browser-facing flow endpoints.
type Flow struct {
	cfg    Config
	states *StateStore
}

// NewFlow creates a Flow for the given Fitbit application config.
func NewFlow(cfg Config) *Flow {
	return &Flow{cfg: cfg, states: NewStateStore()}
}

// Begin generates verifier/challenge/state, records the pending flow and
// returns the authorization URL the browser should be redirected to.
func (f *Flow) Begin(userID string, scopes []string) (authURL, state string, err error) {
	verifier, err := pkce.GenerateCodeVerifier()
	if err != nil {
		return "", "", err
	}
	state, err = pkce.GenerateState()
	if err != nil {
		return "", "", err
	}

	f.states.Put(state, FlowState{
		UserID:       userID,
		CodeVerifier: verifier,
		IssuedAt:     time.Now(),
	})

	return f.cfg.BuildAuthorizationURL(pkce.CodeChallenge(verifier), state, scopes), state, nil
}

// Consume validates and removes the pending flow for state.
func (f *Flow) Consume(state string) (FlowState, error) {
	return f.states.Consume(state)
}
