package models

import (
	"strings"
	"time"
)

// FitbitToken stores the Fitbit OAuth credentials for one application user.
// UserID is the primary key: at most one Fitbit connection per user.
type FitbitToken struct {
	UserID       string `gorm:"primaryKey"`
	FitbitUserID string
	AccessToken  string
	RefreshToken string
	TokenType    string `gorm:"default:Bearer"`
	ExpiresAt    time.Time
	Scopes       string // space-joined granted scopes, as returned by Fitbit
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired reports whether the access token is already past its expiry.
func (t *FitbitToken) IsExpired() bool {
	return !time.Now().Before(t.ExpiresAt)
}

// ExpiresSoon reports whether the access token expires within 5 minutes.
// Callers should refresh before using a token that expires soon.
func (t *FitbitToken) ExpiresSoon() bool {
	return !t.ExpiresAt.After(time.Now().Add(5 * time.Minute))
}

// ScopeList splits the stored scope string into individual scopes.
func (t *FitbitToken) ScopeList() []string {
	if t.Scopes == "" {
		return nil
	}
	return strings.Fields(t.Scopes)
}
