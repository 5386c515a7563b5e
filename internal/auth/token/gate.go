package token

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pulsefit/pulsefit-server/internal/auth/fitbit"
	"github.com/pulsefit/pulsefit-server/internal/db/models"
)

// ErrReconnectRequired means Fitbit rejected the stored refresh token; the
// user must redo the full authorization flow. The stale record is kept until
// the user explicitly disconnects or reconnects.
var ErrReconnectRequired = errors.New("fitbit refresh token rejected, reconnect required")

// Refresher is the slice of the OAuth client the gate needs.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*fitbit.TokenPayload, error)
}

// Gate hands out token records that stay valid for at least the ExpiresSoon
// window, refreshing transparently when needed. Fitbit refresh tokens are
// single-use, so refreshes for one user are serialized under a per-user lock:
// a caller that lost the race re-reads the record the winner persisted
// instead of burning the rotated refresh token a second time.
type Gate struct {
	store *Store
	oauth Refresher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGate creates a Gate over the given store and OAuth client.
func NewGate(store *Store, oauth Refresher) *Gate {
	return &Gate{
		store: store,
		oauth: oauth,
		locks: make(map[string]*sync.Mutex),
	}
}

func (g *Gate) userLock(userID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[userID] = l
	}
	return l
}

// Ensure returns a current token record for userID, refreshing first when
// the stored one is expired or expires within 5 minutes. Fails with
// ErrNotConnected when no record exists; no network call is made in that
// case.
func (g *Gate) Ensure(ctx context.Context, userID string) (*models.FitbitToken, error) {
	l := g.userLock(userID)
	l.Lock()
	defer l.Unlock()

	rec, err := g.store.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if !rec.IsExpired() && !rec.ExpiresSoon() {
		return rec, nil
	}
	return g.refreshLocked(ctx, userID, rec)
}

// ForceRefresh refreshes the record regardless of remaining validity, for
// the manual refresh endpoint.
func (g *Gate) ForceRefresh(ctx context.Context, userID string) (*models.FitbitToken, error) {
	l := g.userLock(userID)
	l.Lock()
	defer l.Unlock()

	rec, err := g.store.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	return g.refreshLocked(ctx, userID, rec)
}

func (g *Gate) refreshLocked(ctx context.Context, userID string, rec *models.FitbitToken) (*models.FitbitToken, error) {
	payload, err := g.oauth.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		var exchErr *fitbit.ExchangeError
		if errors.As(err, &exchErr) {
			// Provider rejected the refresh token itself. Keep the stale
			// record; disconnect stays an explicit user action.
			log.Printf("⚠️ Fitbit rejected refresh for user %s: %v", userID, err)
			return nil, fmt.Errorf("%w: %v", ErrReconnectRequired, err)
		}
		// Transport-level failure: transient, retryable by the caller.
		return nil, fmt.Errorf("refresh fitbit token: %w", err)
	}

	updated, err := g.store.ApplyRefresh(userID, payload)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Refreshed Fitbit token for user %s (expires %s)", userID, updated.ExpiresAt.Format(time.RFC3339))
	return updated, nil
}
