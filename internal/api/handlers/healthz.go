package handlers

import (
	"net/http"

	"github.com/pulsefit/pulsefit-server/internal/version"
)

// HealthzHandler reports process liveness and the running build.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	}
}
