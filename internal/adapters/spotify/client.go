// Package spotify implements the catalog port against the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
	"github.com/henry-johnson/spotify-playlist-creator/internal/httpx"
)

// Client is the catalog adapter. It caches the listener's user ID and
// market after the first profile fetch so later calls can reuse them.
type Client struct {
	http    *httpx.Client
	auth    *Authenticator
	baseURL string
	logger  zerolog.Logger

	mu     sync.Mutex
	userID string
	market string
}

// compile-time interface assertion
var _ ports.Catalog = (*Client)(nil)

// NewClient constructs a catalog client against baseURL.
func NewClient(hc *httpx.Client, auth *Authenticator, baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		http:    hc,
		auth:    auth,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("adapter", "spotify").Logger(),
	}
}

// CanReadPrivatePlaylists reports whether the grant allows reading the
// listener's private playlists.
func (c *Client) CanReadPrivatePlaylists() bool {
	return c.auth.HasScope(ScopePlaylistReadPrivate)
}

// call performs one authorized API call, decoding the answer into out. A
// 401 invalidates the cached token and the call is retried once with a
// fresh one; a second 401 bubbles up.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		token, err := c.auth.Token(ctx)
		if err != nil {
			return err
		}

		header := make(http.Header)
		header.Set("Authorization", "Bearer "+token)

		err = c.http.DoJSON(ctx, httpx.Request{Method: method, URL: u, Header: header, Body: body}, out)
		if err == nil {
			return nil
		}
		if httpx.StatusCode(err) == http.StatusUnauthorized && attempt == 0 {
			c.logger.Warn().Str("path", path).Msg("access token rejected, exchanging a fresh one")
			c.auth.Invalidate()
			continue
		}
		return fmt.Errorf("spotify adapter: %s %s: %w", method, path, err)
	}
}

// currentUserID returns the cached user ID, fetching the profile first if
// no call has populated it yet.
func (c *Client) currentUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.userID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}

	user, err := c.Me(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// currentMarket returns the cached market, empty when unknown.
func (c *Client) currentMarket() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.market
}

// Me fetches the listener's profile and caches ID and market.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var wu userObject
	if err := c.call(ctx, http.MethodGet, "/me", nil, nil, &wu); err != nil {
		return domain.User{}, err
	}
	user, ok := mapUser(wu)
	if !ok {
		return domain.User{}, fmt.Errorf("spotify adapter: malformed profile record")
	}

	c.mu.Lock()
	c.userID = user.ID
	c.market = user.Market
	c.mu.Unlock()
	return user, nil
}
