package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
	"github.com/henry-johnson/spotify-playlist-creator/internal/httpx"
)

const (
	playlistPageLimit = 50
	trackPageLimit    = 100
	addChunkSize      = 100

	// maxClearPages bounds the delete fallback so a playlist that keeps
	// reporting leftover tracks cannot loop forever.
	maxClearPages = 50
)

// FindPlaylistByName walks the listener's playlists looking for an exact
// name match owned by the listener. Returns ports.ErrPlaylistNotFound
// when no page contains one.
func (c *Client) FindPlaylistByName(ctx context.Context, name string) (domain.Playlist, error) {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return domain.Playlist{}, err
	}

	offset := 0
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(playlistPageLimit))
		q.Set("offset", strconv.Itoa(offset))

		var page playlistPage
		if err := c.call(ctx, http.MethodGet, "/me/playlists", q, nil, &page); err != nil {
			return domain.Playlist{}, err
		}
		for _, wp := range page.Items {
			if wp.Name == name && wp.Owner.ID == userID {
				return mapPlaylist(wp), nil
			}
		}
		if page.Next == "" || len(page.Items) == 0 {
			return domain.Playlist{}, ports.ErrPlaylistNotFound
		}
		offset += playlistPageLimit
	}
}

// PlaylistTracks fetches every track of a playlist, paging until the API
// reports no next page. Local files and deleted tracks are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	var tracks []domain.Track
	offset := 0
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(trackPageLimit))
		q.Set("offset", strconv.Itoa(offset))

		var page playlistTrackPage
		if err := c.call(ctx, http.MethodGet, "/playlists/"+playlistID+"/tracks", q, nil, &page); err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if t, ok := mapTrack(item.Track); ok {
				tracks = append(tracks, t)
			}
		}
		if page.Next == "" || len(page.Items) == 0 {
			return tracks, nil
		}
		offset += trackPageLimit
	}
}

// CreatePlaylist creates a private playlist for the listener.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (domain.Playlist, error) {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return domain.Playlist{}, err
	}

	body := map[string]any{
		"name":        name,
		"description": c.cleanDescription(description),
		"public":      false,
	}
	var wp playlistObject
	if err := c.call(ctx, http.MethodPost, "/users/"+userID+"/playlists", nil, body, &wp); err != nil {
		return domain.Playlist{}, err
	}
	if wp.ID == "" {
		return domain.Playlist{}, fmt.Errorf("spotify adapter: create playlist returned no id")
	}
	return mapPlaylist(wp), nil
}

// UpdatePlaylistDetails rewrites a playlist's name and description.
func (c *Client) UpdatePlaylistDetails(ctx context.Context, playlistID, name, description string) error {
	body := map[string]any{
		"name":        name,
		"description": c.cleanDescription(description),
	}
	return c.call(ctx, http.MethodPut, "/playlists/"+playlistID, nil, body, nil)
}

// ClearPlaylist empties a playlist. The fast path replaces the contents
// with an empty URI list; some API fronts reject one spelling of that
// endpoint, so a second is tried before falling back to paged deletes.
func (c *Client) ClearPlaylist(ctx context.Context, playlistID string) error {
	for _, suffix := range []string{"/tracks", "/items"} {
		err := c.call(ctx, http.MethodPut, "/playlists/"+playlistID+suffix, nil, map[string]any{"uris": []string{}}, nil)
		if err == nil {
			left, err := c.trackTotal(ctx, playlistID)
			if err != nil {
				return err
			}
			if left == 0 {
				return nil
			}
			c.logger.Warn().Int("remaining", left).Msg("replace-with-empty left tracks behind, deleting pages")
			break
		}
		if !httpx.IsFatal(err) {
			return err
		}
		c.logger.Warn().Str("endpoint", suffix).Msg("replace-with-empty rejected, trying next clear strategy")
	}
	return c.deleteAllTracks(ctx, playlistID)
}

// deleteAllTracks removes tracks page by page. Each pass re-reads the
// first page because deletions shift the remaining tracks forward.
func (c *Client) deleteAllTracks(ctx context.Context, playlistID string) error {
	for page := 0; page < maxClearPages; page++ {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(trackPageLimit))
		q.Set("offset", "0")

		var tp playlistTrackPage
		if err := c.call(ctx, http.MethodGet, "/playlists/"+playlistID+"/tracks", q, nil, &tp); err != nil {
			return err
		}
		if len(tp.Items) == 0 {
			return nil
		}

		refs := make([]map[string]string, 0, len(tp.Items))
		for _, item := range tp.Items {
			uri := item.Track.URI
			if uri == "" && item.Track.ID != "" {
				uri = trackURI(item.Track.ID)
			}
			if uri != "" {
				refs = append(refs, map[string]string{"uri": uri})
			}
		}
		if len(refs) == 0 {
			return nil
		}
		body := map[string]any{"tracks": refs}
		var snap snapshotResponse
		if err := c.call(ctx, http.MethodDelete, "/playlists/"+playlistID+"/tracks", nil, body, &snap); err != nil {
			return err
		}
		c.logger.Debug().Int("removed", len(refs)).Str("snapshot", snap.SnapshotID).Msg("delete page accepted")
	}
	return fmt.Errorf("spotify adapter: playlist %s still has tracks after %d delete pages", playlistID, maxClearPages)
}

// trackTotal reads just the track count of a playlist.
func (c *Client) trackTotal(ctx context.Context, playlistID string) (int, error) {
	q := url.Values{}
	q.Set("fields", "tracks.total")

	var out struct {
		Tracks struct {
			Total int `json:"total"`
		} `json:"tracks"`
	}
	if err := c.call(ctx, http.MethodGet, "/playlists/"+playlistID, q, nil, &out); err != nil {
		return 0, err
	}
	return out.Tracks.Total, nil
}

// AddTracks appends tracks in API-sized batches and returns how many were
// accepted. A batch answered with 403 falls back to the query-string form
// of the endpoint, then to one-by-one adds that skip forbidden tracks.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) (int, error) {
	added := 0
	for start := 0; start < len(trackIDs); start += addChunkSize {
		end := min(start+addChunkSize, len(trackIDs))
		n, err := c.addBatch(ctx, playlistID, trackIDs[start:end])
		added += n
		if err != nil {
			return added, err
		}
	}
	return added, nil
}

func (c *Client) addBatch(ctx context.Context, playlistID string, batch []string) (int, error) {
	uris := make([]string, len(batch))
	for i, id := range batch {
		uris[i] = trackURI(id)
	}
	path := "/playlists/" + playlistID + "/tracks"

	var snap snapshotResponse
	err := c.call(ctx, http.MethodPost, path, nil, map[string]any{"uris": uris}, &snap)
	if err == nil {
		c.logger.Debug().Int("batch", len(batch)).Str("snapshot", snap.SnapshotID).Msg("batch accepted")
		return len(batch), nil
	}
	if httpx.StatusCode(err) != http.StatusForbidden {
		return 0, err
	}

	c.logger.Warn().Int("batch", len(batch)).Msg("batch add rejected, retrying as query parameters")
	q := url.Values{}
	q.Set("uris", strings.Join(uris, ","))
	err = c.call(ctx, http.MethodPost, path, q, nil, nil)
	if err == nil {
		return len(batch), nil
	}
	if httpx.StatusCode(err) != http.StatusForbidden {
		return 0, err
	}

	c.logger.Warn().Msg("query-form add rejected, adding tracks one by one")
	added := 0
	for _, uri := range uris {
		q := url.Values{}
		q.Set("uris", uri)
		err := c.call(ctx, http.MethodPost, path, q, nil, nil)
		if err == nil {
			added++
			continue
		}
		if httpx.StatusCode(err) == http.StatusForbidden {
			c.logger.Warn().Str("uri", uri).Msg("track rejected, skipping")
			continue
		}
		return added, err
	}
	return added, nil
}

func trackURI(id string) string {
	return "spotify:track:" + id
}

// cleanDescription collapses whitespace runs (the API rejects newlines)
// and truncates to the 300-character description limit.
func (c *Client) cleanDescription(s string) string {
	out := strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(out) <= maxDescriptionRunes {
		return out
	}
	c.logger.Warn().Int("length", utf8.RuneCountInString(out)).Msg("description over API limit, truncating")
	runes := []rune(out)
	return string(runes[:maxDescriptionRunes-3]) + "..."
}

const maxDescriptionRunes = 300
