package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pulsefit/pulsefit-server/internal/api"
	"github.com/pulsefit/pulsefit-server/internal/auth/fitbit"
	"github.com/pulsefit/pulsefit-server/internal/auth/session"
	"github.com/pulsefit/pulsefit-server/internal/auth/token"
	"github.com/pulsefit/pulsefit-server/internal/config"
	"github.com/pulsefit/pulsefit-server/internal/db"
	"github.com/pulsefit/pulsefit-server/internal/upstream"
	"github.com/pulsefit/pulsefit-server/internal/version"
)

func main() {
	cfg := config.MustLoad()

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	fitbitCfg := fitbit.Config{
		ClientID:     cfg.Fitbit.ClientID,
		ClientSecret: cfg.Fitbit.ClientSecret,
		RedirectURI:  cfg.Fitbit.RedirectURI,
	}

	oauthClient := fitbit.NewOAuthClient(fitbitCfg)
	store := token.NewStore(database)

	router := api.NewRouter(api.Deps{
		DB:        database,
		Flow:      fitbit.NewFlow(fitbitCfg),
		OAuth:     oauthClient,
		Store:     store,
		Gate:      token.NewGate(store, oauthClient),
		Upstream:  upstream.NewClient(""),
		Sessions:  session.NewManager(cfg.Session.JWTSecret, cfg.Session.TokenTTL),
		ClientURL: cfg.ClientURL,
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Printf("🚀 PulseFit server %s starting on http://%s (env: %s)", version.Version, addr, cfg.Env)
	log.Printf("🔌 API base: http://%s/api/v1", addr)
	log.Printf("🌐 Client redirects: %s", cfg.ClientURL)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
