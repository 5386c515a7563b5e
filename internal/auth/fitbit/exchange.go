package fitbit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// exchangeTimeout bounds every call to the Fitbit token endpoint.
const exchangeTimeout = 15 * time.Second

// TokenPayload is the normalized token endpoint response. ExpiresAt is
// already absolute (now + expires_in).
type TokenPayload struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string // space-joined granted scopes
	FitbitUserID string
	ExpiresAt    time.Time
}

// ExchangeError reports a non-2xx response from the token endpoint, keeping
// the provider's status and body for diagnostics.
type ExchangeError struct {
	Grant      string // "authorization_code" or "refresh_token"
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("fitbit %s grant failed: %d - %s", e.Grant, e.StatusCode, e.Body)
}

// OAuthClient talks to the Fitbit token endpoint with the application's
// Basic-auth client credentials.
type OAuthClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewOAuthClient creates a token endpoint client with a bounded timeout.
func NewOAuthClient(cfg Config) *OAuthClient {
	return &OAuthClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: exchangeTimeout},
	}
}

// ExchangeCode swaps an authorization code plus its PKCE verifier for an
// access/refresh token pair.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenPayload, error) {
	conf := c.cfg.oauth2Config(nil)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, wrapRetrieveError("authorization_code", err)
	}
	return payloadFromToken(tok), nil
}

// Refresh swaps a refresh token for a renewed pair. Fitbit rotates refresh
// tokens: the returned RefreshToken replaces the one passed in, and the old
// one is dead either way.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenPayload, error) {
	conf := c.cfg.oauth2Config(nil)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	// A seed token without an access token forces an immediate refresh grant.
	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, wrapRetrieveError("refresh_token", err)
	}
	return payloadFromToken(tok), nil
}

func wrapRetrieveError(grant string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &ExchangeError{Grant: grant, StatusCode: status, Body: string(re.Body)}
	}
	return fmt.Errorf("fitbit %s grant: %w", grant, err)
}

func payloadFromToken(tok *oauth2.Token) *TokenPayload {
	p := &TokenPayload{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		p.Scope = scope
	}
	if id, ok := tok.Extra("user_id").(string); ok {
		p.FitbitUserID = id
	}
	return p
}
