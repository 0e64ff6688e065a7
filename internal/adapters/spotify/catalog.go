package spotify

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

// topTimeRange keeps the profile anchored to the last few weeks of
// listening, the window a weekly mix should reflect.
const topTimeRange = "short_term"

// TopTracks fetches the listener's most-played tracks for the short-term
// window. Malformed records are dropped, so fewer than limit may return.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	q := url.Values{}
	q.Set("time_range", topTimeRange)
	q.Set("limit", strconv.Itoa(limit))

	var page trackPage
	if err := c.call(ctx, http.MethodGet, "/me/top/tracks", q, nil, &page); err != nil {
		return nil, err
	}
	return mapTracks(page.Items), nil
}

// TopArtists fetches the listener's most-played artists for the same
// short-term window, genres included.
func (c *Client) TopArtists(ctx context.Context, limit int) ([]domain.Artist, error) {
	q := url.Values{}
	q.Set("time_range", topTimeRange)
	q.Set("limit", strconv.Itoa(limit))

	var page artistPage
	if err := c.call(ctx, http.MethodGet, "/me/top/artists", q, nil, &page); err != nil {
		return nil, err
	}
	return mapArtists(page.Items), nil
}

// SearchTracks runs a track search, scoped to the listener's market when
// the profile has been fetched.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))
	if market := c.currentMarket(); market != "" {
		q.Set("market", market)
	}

	var sr searchResponse
	if err := c.call(ctx, http.MethodGet, "/search", q, nil, &sr); err != nil {
		return nil, err
	}
	return mapTracks(sr.Tracks.Items), nil
}
