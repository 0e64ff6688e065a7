package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
)

const (
	defaultTopTrackLimit  = 15
	defaultTopArtistLimit = 10

	// minHistoryTracks is the floor below which a listener has too little
	// history to build a week on. Such users are skipped, never degraded.
	minHistoryTracks = 5

	// minPlaylistTracks is the floor for chaining off last week's playlist.
	minPlaylistTracks = 5
)

// ProfileResolver builds the listening profile and the familiarity
// snapshot one run works from.
type ProfileResolver struct {
	catalog ports.Catalog
	logger  zerolog.Logger

	topTrackLimit  int
	topArtistLimit int
}

// NewProfileResolver constructs a resolver. Non-positive limits fall back
// to the defaults.
func NewProfileResolver(catalog ports.Catalog, logger zerolog.Logger, topTracks, topArtists int) *ProfileResolver {
	if topTracks <= 0 {
		topTracks = defaultTopTrackLimit
	}
	if topArtists <= 0 {
		topArtists = defaultTopArtistLimit
	}
	return &ProfileResolver{
		catalog:        catalog,
		logger:         logger,
		topTrackLimit:  topTracks,
		topArtistLimit: topArtists,
	}
}

// Resolve fetches the listener, their short-term taste, and the source
// snapshot for the target week. Listeners with fewer than five top tracks
// get ports.ErrInsufficientHistory.
func (r *ProfileResolver) Resolve(ctx context.Context, target domain.PeriodKey) (domain.ListeningProfile, domain.SourceSnapshot, error) {
	user, err := r.catalog.Me(ctx)
	if err != nil {
		return domain.ListeningProfile{}, domain.SourceSnapshot{}, fmt.Errorf("resolve profile: %w", err)
	}

	topTracks, err := r.catalog.TopTracks(ctx, r.topTrackLimit)
	if err != nil {
		return domain.ListeningProfile{}, domain.SourceSnapshot{}, fmt.Errorf("resolve profile: top tracks: %w", err)
	}
	if len(topTracks) < minHistoryTracks {
		return domain.ListeningProfile{}, domain.SourceSnapshot{},
			ports.InsufficientHistoryError{TopTracks: len(topTracks), Required: minHistoryTracks}
	}

	topArtists, err := r.catalog.TopArtists(ctx, r.topArtistLimit)
	if err != nil {
		return domain.ListeningProfile{}, domain.SourceSnapshot{}, fmt.Errorf("resolve profile: top artists: %w", err)
	}

	profile := domain.ListeningProfile{User: user, TopTracks: topTracks, TopArtists: topArtists}
	return profile, r.resolveSnapshot(ctx, profile, target), nil
}

// resolveSnapshot prefers last week's playlist when the scope allows
// reading it and it holds enough tracks. Every failure on that path
// downgrades to the top-items snapshot; a missing playlist is the normal
// first-run case, not an error.
func (r *ProfileResolver) resolveSnapshot(ctx context.Context, profile domain.ListeningProfile, target domain.PeriodKey) domain.SourceSnapshot {
	if r.catalog.CanReadPrivatePlaylists() {
		previous := target.Previous()
		pl, err := r.catalog.FindPlaylistByName(ctx, previous.String())
		switch {
		case err == nil:
			tracks, err := r.catalog.PlaylistTracks(ctx, pl.ID)
			switch {
			case err != nil:
				r.logger.Warn().Err(err).Str("playlist", pl.ID).Msg("could not read last week's playlist, using top items")
			case len(tracks) < minPlaylistTracks:
				r.logger.Info().Int("tracks", len(tracks)).Str("week", previous.String()).Msg("last week's playlist too small, using top items")
			default:
				r.logger.Info().Int("tracks", len(tracks)).Str("week", previous.String()).Msg("chaining off last week's playlist")
				artists := domain.TopArtistsFromTracks(tracks, r.topArtistLimit)
				return domain.NewSourceSnapshot(domain.SnapshotFromPlaylist, tracks, artists)
			}
		case errors.Is(err, ports.ErrPlaylistNotFound):
			r.logger.Info().Str("week", previous.String()).Msg("no playlist for the previous week")
		default:
			r.logger.Warn().Err(err).Str("week", previous.String()).Msg("playlist lookup failed, using top items")
		}
	}
	return domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, profile.TopArtists)
}
