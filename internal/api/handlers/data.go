package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsefit/pulsefit-server/internal/auth/token"
	"github.com/pulsefit/pulsefit-server/internal/resources/catalog"
	"github.com/pulsefit/pulsefit-server/internal/upstream"
)

// DataHandler proxies one catalogued Fitbit resource for a user. The token
// gate runs first, so the fetch always uses a token with headroom left.
func DataHandler(gate *token.Gate, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource := chi.URLParam(r, "resource")
		userID := chi.URLParam(r, "userID")

		res, ok := catalog.Lookup(resource)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown resource: "+resource)
			return
		}

		rec, err := gate.Ensure(r.Context(), userID)
		if err != nil {
			writeGateError(w, err)
			return
		}

		q := r.URL.Query()
		body, err := client.Request(r.Context(), rec.AccessToken, res.Endpoint(q.Get("date"), q.Get("period")))
		if err != nil {
			writeUpstreamError(w, resource, err)
			return
		}

		// Provider JSON is passed through unmodified.
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

// SummaryHandler returns the aggregated daily summary. Sub-fetch failures
// degrade gracefully: the response is still 200 with the failed sections
// named in its errors list.
func SummaryHandler(gate *token.Gate, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		date := r.URL.Query().Get("date")
		if date == "" {
			date = "today"
		}

		rec, err := gate.Ensure(r.Context(), userID)
		if err != nil {
			writeGateError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, client.DailySummary(r.Context(), rec.AccessToken, date))
	}
}

func writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrNotConnected):
		writeError(w, http.StatusNotFound, "No Fitbit connection found. Please connect your Fitbit account first.")
	case errors.Is(err, token.ErrReconnectRequired):
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error":             "Token refresh failed. Please reconnect your Fitbit account.",
			"reconnectRequired": true,
		})
	default:
		writeError(w, http.StatusBadGateway, "fitbit is temporarily unavailable")
	}
}

func writeUpstreamError(w http.ResponseWriter, resource string, err error) {
	var reqErr *upstream.RequestError
	if errors.As(err, &reqErr) {
		log.Printf("⚠️ Fitbit %s fetch failed: %d - %s", resource, reqErr.StatusCode, reqErr.Body)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":          "fitbit request failed",
			"resource":       resource,
			"providerStatus": reqErr.StatusCode,
		})
		return
	}
	writeError(w, http.StatusBadGateway, "fitbit is temporarily unavailable")
}
