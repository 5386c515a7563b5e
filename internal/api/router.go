// Package api assembles the HTTP router from the handler and middleware
// packages.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/pulsefit/pulsefit-server/internal/api/handlers"
	"github.com/pulsefit/pulsefit-server/internal/api/middleware"
	"github.com/pulsefit/pulsefit-server/internal/auth/fitbit"
	"github.com/pulsefit/pulsefit-server/internal/auth/session"
	"github.com/pulsefit/pulsefit-server/internal/auth/token"
	"github.com/pulsefit/pulsefit-server/internal/logging"
	"github.com/pulsefit/pulsefit-server/internal/upstream"
)

// Deps collects everything the route tree needs. All fields are required.
type Deps struct {
	DB        *gorm.DB
	Flow      *fitbit.Flow
	OAuth     *fitbit.OAuthClient
	Store     *token.Store
	Gate      *token.Gate
	Upstream  *upstream.Client
	Sessions  *session.Manager
	ClientURL string
}

// NewRouter builds the full API surface.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.RequestID)

	r.Get("/healthz", handlers.HealthzHandler())

	r.Route("/api/v1", func(r chi.Router) {
		// Fitbit account linking. The callback must stay public, Fitbit's
		// redirect carries no session token.
		r.Route("/oauth/fitbit", func(r chi.Router) {
			r.Use(middleware.RateLimit(rate.Limit(20.0/60.0), 10))
			r.Post("/auth", handlers.BeginOAuthHandler(d.Flow))
			r.Get("/callback", handlers.OAuthCallbackHandler(d.Flow, d.OAuth, d.Store, d.ClientURL))
			r.Get("/status/{userID}", handlers.OAuthStatusHandler(d.Store))
			r.Delete("/disconnect/{userID}", handlers.DisconnectHandler(d.Store))
			r.Post("/refresh/{userID}", handlers.ForceRefreshHandler(d.Gate))
		})

		// Fitbit data reads.
		r.Route("/fitbit", func(r chi.Router) {
			r.Get("/summary/{userID}", handlers.SummaryHandler(d.Gate, d.Upstream))
			r.Get("/{resource}/{userID}", handlers.DataHandler(d.Gate, d.Upstream))
		})

		// Account auth, rate limited against credential stuffing.
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(rate.Limit(10.0/60.0), 5))
			r.Post("/register", handlers.RegisterHandler(d.DB, d.Sessions))
			r.Post("/login", handlers.LoginHandler(d.DB, d.Sessions))
			r.Post("/logout", handlers.LogoutHandler())
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.SessionAuth(d.Sessions))
			r.Get("/", handlers.ListUsersHandler(d.DB))
			r.Post("/", handlers.CreateUserHandler(d.DB))
			r.Get("/{userID}", handlers.GetUserHandler(d.DB))
			r.Put("/{userID}", handlers.UpdateUserHandler(d.DB))
			r.Delete("/{userID}", handlers.DeleteUserHandler(d.DB))
		})

		r.Route("/health-stats", func(r chi.Router) {
			r.Use(middleware.SessionAuth(d.Sessions))
			r.Get("/user/{userID}", handlers.ListHealthStatsHandler(d.DB))
			r.Post("/", handlers.CreateHealthStatHandler(d.DB))
			r.Get("/{id}", handlers.GetHealthStatHandler(d.DB))
			r.Put("/{id}", handlers.UpdateHealthStatHandler(d.DB))
			r.Delete("/{id}", handlers.DeleteHealthStatHandler(d.DB))
		})
	})

	return r
}
