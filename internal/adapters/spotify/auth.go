package spotify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
)

// Scopes the pipeline uses or probes. The required set gates a run
// outright; playlist-read-private unlocks the previous-playlist lookup.
const (
	ScopeUserTopRead           = "user-top-read"
	ScopePlaylistModifyPrivate = "playlist-modify-private"
	ScopePlaylistModifyPublic  = "playlist-modify-public"
	ScopePlaylistReadPrivate   = "playlist-read-private"
	ScopeImageUpload           = "ugc-image-upload"
)

var requiredScopes = []string{
	ScopeUserTopRead,
	ScopePlaylistModifyPrivate,
	ScopePlaylistModifyPublic,
}

// Authenticator exchanges a long-lived refresh token for access tokens and
// tracks the scopes the grant carries. One authenticator serves one user.
type Authenticator struct {
	conf         *oauth2.Config
	refreshToken string

	mu     sync.Mutex
	token  *oauth2.Token
	scopes map[string]struct{}
}

// NewAuthenticator builds an authenticator against accountsURL. The URL is
// a parameter so tests can point it at a local server.
func NewAuthenticator(clientID, clientSecret, refreshToken, accountsURL string) *Authenticator {
	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  strings.TrimRight(accountsURL, "/") + "/api/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		refreshToken: refreshToken,
	}
}

// Token returns a valid access token, exchanging the refresh token when
// the cached one is missing or expired.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token.Valid() {
		return a.token.AccessToken, nil
	}

	src := a.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: a.refreshToken})
	token, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("spotify auth: refresh token exchange: %w", err)
	}
	a.token = token
	a.scopes = parseScopes(token)
	return token.AccessToken, nil
}

// Invalidate drops the cached token so the next call re-exchanges. Used
// when the API answers 401 despite a fresh-looking token.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	a.token = nil
	a.mu.Unlock()
}

// HasScope reports whether the last exchange granted the scope.
func (a *Authenticator) HasScope(scope string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.scopes[scope]
	return ok
}

// ValidateScopes exchanges a token if needed and checks the required set,
// returning ports.ErrMissingScope naming whatever is absent.
func (a *Authenticator) ValidateScopes(ctx context.Context) error {
	if _, err := a.Token(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	var missing []string
	for _, s := range requiredScopes {
		if _, ok := a.scopes[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("spotify auth: %w: %s", ports.ErrMissingScope, strings.Join(missing, ", "))
	}
	return nil
}

// parseScopes splits the space-separated scope field of a token response.
func parseScopes(token *oauth2.Token) map[string]struct{} {
	scopes := make(map[string]struct{})
	raw, _ := token.Extra("scope").(string)
	for _, s := range strings.Fields(raw) {
		scopes[strings.ToLower(s)] = struct{}{}
	}
	return scopes
}
