package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pulsefit/pulsefit-server/internal/auth/fitbit"
	"github.com/pulsefit/pulsefit-server/internal/db/models"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := database.AutoMigrate(&models.FitbitToken{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewStore(database)
}

// newRefreshServer stubs the Fitbit token endpoint and counts refresh calls.
func newRefreshServer(t *testing.T, status int, body string) (*fitbit.OAuthClient, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	client := fitbit.NewOAuthClient(fitbit.Config{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL})
	return client, &calls
}

const refreshedBody = `{
	"access_token": "at-new",
	"expires_in": 28800,
	"refresh_token": "rt-new",
	"scope": "activity heartrate",
	"token_type": "Bearer",
	"user_id": "ABC123"
}`

func seedToken(t *testing.T, store *Store, expiresIn time.Duration) {
	t.Helper()
	err := store.Upsert(&models.FitbitToken{
		UserID:       "u1",
		FitbitUserID: "ABC123",
		AccessToken:  "at-old",
		RefreshToken: "rt-old",
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(expiresIn),
		Scopes:       "activity",
	})
	if err != nil {
		t.Fatalf("seed token: %v", err)
	}
}

func TestGate_Ensure_ValidTokenPassesThrough(t *testing.T) {
	store := newTestStore(t)
	oauth, calls := newRefreshServer(t, http.StatusOK, refreshedBody)
	seedToken(t, store, time.Hour)

	gate := NewGate(store, oauth)
	rec, err := gate.Ensure(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if rec.AccessToken != "at-old" {
		t.Errorf("access token = %q, want the stored one", rec.AccessToken)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no refresh calls, got %d", calls.Load())
	}
}

func TestGate_Ensure_RefreshesExpiringToken(t *testing.T) {
	store := newTestStore(t)
	oauth, calls := newRefreshServer(t, http.StatusOK, refreshedBody)
	seedToken(t, store, 4*time.Minute) // expiresSoon, not yet expired

	gate := NewGate(store, oauth)
	rec, err := gate.Ensure(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("expected exactly 1 refresh call, got %d", calls.Load())
	}
	if rec.AccessToken != "at-new" {
		t.Errorf("access token = %q, want refreshed at-new", rec.AccessToken)
	}
	if rec.RefreshToken != "rt-new" {
		t.Errorf("refresh token = %q, want rotated rt-new", rec.RefreshToken)
	}

	// The refreshed credentials must be persisted, not just returned.
	stored, err := store.FindByUser("u1")
	if err != nil {
		t.Fatalf("reload record: %v", err)
	}
	if stored.AccessToken != "at-new" || stored.RefreshToken != "rt-new" {
		t.Errorf("persisted record not updated: %+v", stored)
	}
	if stored.Scopes != "activity heartrate" {
		t.Errorf("persisted scopes = %q, want refreshed scopes", stored.Scopes)
	}
	if !stored.ExpiresAt.After(time.Now().Add(7 * time.Hour)) {
		t.Errorf("persisted expiry %v not pushed out", stored.ExpiresAt)
	}
}

func TestGate_Ensure_NotConnected(t *testing.T) {
	store := newTestStore(t)
	oauth, calls := newRefreshServer(t, http.StatusOK, refreshedBody)

	gate := NewGate(store, oauth)
	_, err := gate.Ensure(context.Background(), "nobody")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("got %v, want ErrNotConnected", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network calls for unconnected user, got %d", calls.Load())
	}
}

func TestGate_Ensure_RefreshRejected(t *testing.T) {
	store := newTestStore(t)
	oauth, _ := newRefreshServer(t, http.StatusUnauthorized,
		`{"errors":[{"errorType":"invalid_token"}],"success":false}`)
	seedToken(t, store, -time.Minute)

	gate := NewGate(store, oauth)
	_, err := gate.Ensure(context.Background(), "u1")
	if !errors.Is(err, ErrReconnectRequired) {
		t.Fatalf("got %v, want ErrReconnectRequired", err)
	}

	// The stale record stays so the user can still see and disconnect it.
	stored, err := store.FindByUser("u1")
	if err != nil {
		t.Fatalf("record missing after failed refresh: %v", err)
	}
	if stored.RefreshToken != "rt-old" {
		t.Errorf("refresh token = %q, want untouched rt-old", stored.RefreshToken)
	}
}

func TestGate_Ensure_ConcurrentRefreshesSerialized(t *testing.T) {
	store := newTestStore(t)
	oauth, calls := newRefreshServer(t, http.StatusOK, refreshedBody)
	seedToken(t, store, 4*time.Minute)

	gate := NewGate(store, oauth)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = gate.Ensure(context.Background(), "u1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	// One refresh only: the losers re-read the record the winner persisted.
	if calls.Load() != 1 {
		t.Errorf("expected exactly 1 refresh call, got %d", calls.Load())
	}
}

func TestGate_ForceRefresh(t *testing.T) {
	store := newTestStore(t)
	oauth, calls := newRefreshServer(t, http.StatusOK, refreshedBody)
	seedToken(t, store, time.Hour) // still valid, refresh is forced anyway

	gate := NewGate(store, oauth)
	rec, err := gate.ForceRefresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("force refresh: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 refresh call, got %d", calls.Load())
	}
	if rec.AccessToken != "at-new" {
		t.Errorf("access token = %q, want at-new", rec.AccessToken)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	seedToken(t, store, time.Hour)

	if err := store.Delete("u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.FindByUser("u1"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("got %v, want ErrNotConnected after delete", err)
	}

	// Deleting again is a no-op, not an error.
	if err := store.Delete("u1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
