package models

import "time"

// User is an application account (not the Fitbit identity).
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"` // UUID
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"` // bcrypt
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
