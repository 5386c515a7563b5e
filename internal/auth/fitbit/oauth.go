// Package fitbit implements the Fitbit OAuth2 authorization-code flow with
// PKCE: building the consent URL, tracking pending flows and exchanging or
// refreshing tokens against the Fitbit token endpoint.
package fitbit

import (
	"golang.org/x/oauth2"
)

// Fitbit OAuth2 endpoints.
const (
	DefaultAuthURL  = "https://www.fitbit.com/oauth2/authorize"
	DefaultTokenURL = "https://api.fitbit.com/oauth2/token"
)

// DefaultScopes is requested when a flow does not name its own scopes.
var DefaultScopes = []string{
	"activity",
	"heartrate",
	"location",
	"nutrition",
	"oxygen_saturation",
	"profile",
	"respiratory_rate",
	"settings",
	"sleep",
	"social",
	"temperature",
	"weight",
}

// Config holds the registered Fitbit application identity. AuthURL and
// TokenURL default to the Fitbit production endpoints and are overridable
// for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
}

func (c Config) oauth2Config(scopes []string) *oauth2.Config {
	authURL := c.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
			// Fitbit requires client credentials via HTTP Basic
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// BuildAuthorizationURL composes the consent-screen redirect URL with the
// PKCE challenge and CSRF state. Pure URL construction, no network call.
func (c Config) BuildAuthorizationURL(codeChallenge, state string, scopes []string) string {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return c.oauth2Config(scopes).AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}
