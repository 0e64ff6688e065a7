package ports

import (
	"context"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

// Catalog is the driven port for the music catalog and its playlist store.
// Implementations own authentication, paging, and rate-limit handling; the
// services behind this interface see clean domain values only.
type Catalog interface {
	// Me resolves the listener the credentials belong to.
	Me(ctx context.Context) (domain.User, error)

	// TopTracks returns the listener's short-term top tracks, most played
	// first.
	TopTracks(ctx context.Context, limit int) ([]domain.Track, error)

	// TopArtists returns the listener's short-term top artists.
	TopArtists(ctx context.Context, limit int) ([]domain.Artist, error)

	// SearchTracks runs one catalog search and returns up to limit tracks
	// in the catalog's own ranking order.
	SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error)

	// FindPlaylistByName locates a playlist owned by the listener with the
	// exact given name. Returns ErrPlaylistNotFound when no playlist
	// matches.
	FindPlaylistByName(ctx context.Context, name string) (domain.Playlist, error)

	// PlaylistTracks returns every track on the playlist, in order.
	PlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error)

	// CreatePlaylist creates a new private playlist.
	CreatePlaylist(ctx context.Context, name, description string) (domain.Playlist, error)

	// UpdatePlaylistDetails renames a playlist and replaces its description.
	UpdatePlaylistDetails(ctx context.Context, playlistID, name, description string) error

	// ClearPlaylist removes every track from the playlist.
	ClearPlaylist(ctx context.Context, playlistID string) error

	// AddTracks appends tracks to the playlist and returns how many the
	// catalog accepted.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) (int, error)

	// CanReadPrivatePlaylists reports whether the granted scopes allow
	// reading the listener's playlists. Without it, last week's playlist
	// cannot be looked up and runs fall back to top items.
	CanReadPrivatePlaylists() bool
}
