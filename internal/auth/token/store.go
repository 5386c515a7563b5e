// Package token persists Fitbit token records and gates provider access on
// their validity, refreshing transparently when a token is about to expire.
package token

import (
	"errors"

	"github.com/pulsefit/pulsefit-server/internal/auth/fitbit"
	"github.com/pulsefit/pulsefit-server/internal/db/models"
	"gorm.io/gorm"
)

// ErrNotConnected means the user has never connected a Fitbit account (or
// has disconnected it). Distinct from ErrReconnectRequired so callers can
// prompt "connect" rather than "your connection expired".
var ErrNotConnected = errors.New("no fitbit connection for user")

// Store is the durable token record store, one record per user.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindByUser loads the token record for userID. Returns ErrNotConnected when
// no record exists.
func (s *Store) FindByUser(userID string) (*models.FitbitToken, error) {
	var rec models.FitbitToken
	if err := s.db.First(&rec, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	return &rec, nil
}

// Upsert inserts or fully replaces the record keyed by rec.UserID.
func (s *Store) Upsert(rec *models.FitbitToken) error {
	return s.db.Save(rec).Error
}

// Delete removes the record on disconnect. Deleting an absent record is not
// an error.
func (s *Store) Delete(userID string) error {
	return s.db.Delete(&models.FitbitToken{}, "user_id = ?", userID).Error
}

// ApplyRefresh overwrites the rotating credential fields after a successful
// refresh and returns the updated record. The old refresh token is dead once
// the provider answered, so the rotated one must be persisted immediately.
func (s *Store) ApplyRefresh(userID string, p *fitbit.TokenPayload) (*models.FitbitToken, error) {
	rec, err := s.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	rec.AccessToken = p.AccessToken
	rec.ExpiresAt = p.ExpiresAt
	if p.RefreshToken != "" {
		rec.RefreshToken = p.RefreshToken
	}
	if p.Scope != "" {
		rec.Scopes = p.Scope
	}
	if p.TokenType != "" {
		rec.TokenType = p.TokenType
	}

	if err := s.db.Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// RecordFromPayload builds a full token record from a callback exchange
// result.
func RecordFromPayload(userID string, p *fitbit.TokenPayload) *models.FitbitToken {
	return &models.FitbitToken{
		UserID:       userID,
		FitbitUserID: p.FitbitUserID,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresAt:    p.ExpiresAt,
		Scopes:       p.Scope,
	}
}
