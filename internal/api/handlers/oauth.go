package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/pulsefit/pulsefit-server/internal/auth/fitbit"
	"github.com/pulsefit/pulsefit-server/internal/auth/token"
)

// BeginOAuthHandler starts the Fitbit authorization flow for a user and
// returns the consent URL the browser should open.
func BeginOAuthHandler(flow *fitbit.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string   `json:"userId"`
			Scopes []string `json:"scopes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}

		authURL, state, err := flow.Begin(req.UserID, req.Scopes)
		if err != nil {
			log.Printf("⚠️ Failed to initialize OAuth flow: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to initialize oauth flow")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"authUrl": authURL,
			"state":   state,
		})
	}
}

// OAuthCallbackHandler finishes the flow: validates the state, exchanges the
// code and persists the token record, then sends the browser back to the web
// app's success or error page.
func OAuthCallbackHandler(flow *fitbit.Flow, oauth *fitbit.OAuthClient, store *token.Store, clientURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if errParam := q.Get("error"); errParam != "" {
			redirectError(w, r, clientURL, "oauth error: "+errParam)
			return
		}
		code, state := q.Get("code"), q.Get("state")
		if code == "" || state == "" {
			redirectError(w, r, clientURL, "missing authorization code or state")
			return
		}

		// State must be consumed before the exchange: persisting tokens from
		// a forged callback would bind an attacker's Fitbit account.
		fs, err := flow.Consume(state)
		if err != nil {
			redirectError(w, r, clientURL, "invalid or expired state parameter")
			return
		}

		payload, err := oauth.ExchangeCode(r.Context(), code, fs.CodeVerifier)
		if err != nil {
			log.Printf("⚠️ Token exchange failed for user %s: %v", fs.UserID, err)
			redirectError(w, r, clientURL, "token exchange failed")
			return
		}

		if err := store.Upsert(token.RecordFromPayload(fs.UserID, payload)); err != nil {
			log.Printf("⚠️ Failed to save token record for user %s: %v", fs.UserID, err)
			redirectError(w, r, clientURL, "failed to save fitbit connection")
			return
		}

		log.Printf("✅ Fitbit account %s linked for user %s", payload.FitbitUserID, fs.UserID)
		http.Redirect(w, r, clientURL+"/oauth/success", http.StatusFound)
	}
}

func redirectError(w http.ResponseWriter, r *http.Request, clientURL, message string) {
	http.Redirect(w, r, clientURL+"/oauth/error?message="+url.QueryEscape(message), http.StatusFound)
}

// OAuthStatusHandler reports whether a user has a Fitbit connection and how
// fresh its access token is.
func OAuthStatusHandler(store *token.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		rec, err := store.FindByUser(userID)
		if errors.Is(err, token.ErrNotConnected) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"connected": false})
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check oauth status")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"connected":    true,
			"fitbitUserId": rec.FitbitUserID,
			"scopes":       rec.ScopeList(),
			"expiresAt":    rec.ExpiresAt,
			"isExpired":    rec.IsExpired(),
			"expiresSoon":  rec.ExpiresSoon(),
		})
	}
}

// DisconnectHandler removes a user's Fitbit connection.
func DisconnectHandler(store *token.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		if err := store.Delete(userID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to disconnect fitbit account")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Fitbit account disconnected successfully"})
	}
}

// ForceRefreshHandler refreshes a user's tokens immediately, regardless of
// remaining validity.
func ForceRefreshHandler(gate *token.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		rec, err := gate.ForceRefresh(r.Context(), userID)
		switch {
		case errors.Is(err, token.ErrNotConnected):
			writeError(w, http.StatusNotFound, "no fitbit connection found")
			return
		case errors.Is(err, token.ErrReconnectRequired):
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"error":             "Token refresh failed. Please reconnect your Fitbit account.",
				"reconnectRequired": true,
			})
			return
		case err != nil:
			writeError(w, http.StatusBadGateway, "fitbit is temporarily unavailable")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "Tokens refreshed successfully",
			"expiresAt": rec.ExpiresAt,
		})
	}
}
