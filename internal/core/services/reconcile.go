package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
)

// PlaylistState reports what the reconciler did to the weekly playlist.
type PlaylistState string

const (
	PlaylistCreated     PlaylistState = "created"
	PlaylistRepopulated PlaylistState = "repopulated"
	PlaylistSkipped     PlaylistState = "skipped"
)

// PublishResult describes where a mix landed.
type PublishResult struct {
	State      PlaylistState
	PlaylistID string
	Added      int
}

// Reconciler makes the catalog hold exactly one playlist for the week with
// exactly the mix on it. Reruns converge on the same playlist instead of
// stacking copies, as long as the read scope allows finding it.
type Reconciler struct {
	catalog ports.Catalog
	logger  zerolog.Logger
}

// NewReconciler constructs a reconciler.
func NewReconciler(catalog ports.Catalog, logger zerolog.Logger) *Reconciler {
	return &Reconciler{catalog: catalog, logger: logger}
}

// Publish lands the mix on the week's playlist: an existing playlist is
// cleared and repopulated, a missing one is created. When the catalog
// accepts none of the tracks, the listener's top tracks go in once instead
// so the week never ends empty; if even those are rejected the run fails.
func (r *Reconciler) Publish(ctx context.Context, target domain.PeriodKey, trackIDs []string, description string) (PublishResult, error) {
	name := target.String()

	existing, found, err := r.find(ctx, name)
	if err != nil {
		return PublishResult{}, err
	}

	var result PublishResult
	if found {
		if err := r.catalog.ClearPlaylist(ctx, existing.ID); err != nil {
			return PublishResult{}, fmt.Errorf("clear playlist %s: %w", existing.ID, err)
		}
		if err := r.catalog.UpdatePlaylistDetails(ctx, existing.ID, name, description); err != nil {
			return PublishResult{}, fmt.Errorf("update playlist %s: %w", existing.ID, err)
		}
		result = PublishResult{State: PlaylistRepopulated, PlaylistID: existing.ID}
	} else {
		created, err := r.catalog.CreatePlaylist(ctx, name, description)
		if err != nil {
			return PublishResult{}, fmt.Errorf("create playlist %q: %w", name, err)
		}
		result = PublishResult{State: PlaylistCreated, PlaylistID: created.ID}
	}

	added, err := r.catalog.AddTracks(ctx, result.PlaylistID, trackIDs)
	if err != nil {
		return PublishResult{}, fmt.Errorf("add tracks to %s: %w", result.PlaylistID, err)
	}
	if added == 0 && len(trackIDs) > 0 {
		r.logger.Warn().Str("playlist", result.PlaylistID).Msg("catalog accepted none of the mix, falling back to top tracks")
		added, err = r.addTopTracks(ctx, result.PlaylistID, len(trackIDs))
		if err != nil {
			return PublishResult{}, err
		}
		if added == 0 {
			return PublishResult{}, fmt.Errorf("playlist %s: catalog rejected every track", result.PlaylistID)
		}
	}
	result.Added = added
	return result, nil
}

// find looks the playlist up when the read scope allows it. Without the
// scope every run creates a fresh playlist; the duplicates are the price
// of the missing grant and are called out in the log.
func (r *Reconciler) find(ctx context.Context, name string) (domain.Playlist, bool, error) {
	if !r.catalog.CanReadPrivatePlaylists() {
		r.logger.Warn().Str("name", name).Msg("playlist-read scope missing, creating without lookup; reruns will duplicate")
		return domain.Playlist{}, false, nil
	}
	pl, err := r.catalog.FindPlaylistByName(ctx, name)
	switch {
	case err == nil:
		return pl, true, nil
	case errors.Is(err, ports.ErrPlaylistNotFound):
		return domain.Playlist{}, false, nil
	default:
		return domain.Playlist{}, false, fmt.Errorf("find playlist %q: %w", name, err)
	}
}

// addTopTracks is the last resort after the mix was rejected wholesale.
func (r *Reconciler) addTopTracks(ctx context.Context, playlistID string, want int) (int, error) {
	tracks, err := r.catalog.TopTracks(ctx, want)
	if err != nil {
		return 0, fmt.Errorf("fallback top tracks: %w", err)
	}
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	added, err := r.catalog.AddTracks(ctx, playlistID, ids)
	if err != nil {
		return 0, fmt.Errorf("fallback add to %s: %w", playlistID, err)
	}
	return added, nil
}
