package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pulsefit/pulsefit-server/internal/auth/session"
	"github.com/pulsefit/pulsefit-server/internal/db/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type credentialsRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterHandler creates an application account and signs the first session
// token for it.
func RegisterHandler(db *gorm.DB, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}
		if len(req.Password) < 8 {
			writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create account")
			return
		}

		user := models.User{
			ID:           uuid.New().String(),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			if strings.Contains(err.Error(), "UNIQUE") {
				writeError(w, http.StatusConflict, "email is already registered")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to create account")
			return
		}

		tok, err := sessions.Issue(&user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to sign session token")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"token": tok, "user": user})
	}
}

// LoginHandler verifies credentials and signs a session token.
func LoginHandler(db *gorm.DB, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		var user models.User
		err := db.First(&user, "email = ?", req.Email).Error
		if errors.Is(err, gorm.ErrRecordNotFound) ||
			(err == nil && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil) {
			// Same answer for unknown email and wrong password.
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}

		tok, err := sessions.Issue(&user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to sign session token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"token": tok, "user": user})
	}
}

// LogoutHandler exists for API symmetry; tokens are stateless, the client
// just discards its copy.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	}
}
