package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
)

// --- Fixtures ---

// week35 is the target week most tests plan; its predecessor is 2026-W34.
var week35 = domain.PeriodKey{Year: 2026, Week: 35}

func track(id string, artistIDs ...string) domain.Track {
	t := domain.Track{ID: id, Name: "Track " + id}
	for _, a := range artistIDs {
		t.ArtistIDs = append(t.ArtistIDs, a)
		t.ArtistNames = append(t.ArtistNames, "Artist "+a)
	}
	return t
}

func artist(id, name string, genres ...string) domain.Artist {
	return domain.Artist{ID: id, Name: name, Genres: genres}
}

// fiveTopTracks is enough history to clear the minimum.
func fiveTopTracks() []domain.Track {
	return []domain.Track{
		track("top1", "a1"),
		track("top2", "a1"),
		track("top3", "a2"),
		track("top4", "a3"),
		track("top5", "a4"),
	}
}

// --- Mocks ---

type fakePlaylist struct {
	pl     domain.Playlist
	tracks []domain.Track
}

// fakeCatalog is an in-memory catalog with scriptable responses. Searches
// may run concurrently, so the call log is guarded.
type fakeCatalog struct {
	user       domain.User
	topTracks  []domain.Track
	topArtists []domain.Artist
	canRead    bool

	meErr         error
	topTracksErr  error
	topArtistsErr error
	findErr       error
	tracksErr     error
	createErr     error
	clearErr      error
	addErr        error

	playlists     []*fakePlaylist
	searchResults map[string][]domain.Track
	searchErrs    map[string]error

	// addQueue scripts successive AddTracks acceptance counts; empty means
	// accept everything.
	addQueue []int

	mu          sync.Mutex
	searchCalls []string
	findCalls   []string
	cleared     []string
	createdIDs  []string
	nextID      int
}

var _ ports.Catalog = (*fakeCatalog)(nil)

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		user:          domain.User{ID: "user-1", DisplayName: "Henry Johnson", Market: "DE"},
		topTracks:     fiveTopTracks(),
		topArtists:    []domain.Artist{artist("a1", "Low Tide", "slowcore", "ambient"), artist("a2", "Marrow", "post-rock")},
		canRead:       true,
		searchResults: make(map[string][]domain.Track),
		searchErrs:    make(map[string]error),
	}
}

func (f *fakeCatalog) Me(ctx context.Context) (domain.User, error) {
	if f.meErr != nil {
		return domain.User{}, f.meErr
	}
	return f.user, nil
}

func (f *fakeCatalog) TopTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	if f.topTracksErr != nil {
		return nil, f.topTracksErr
	}
	if limit > 0 && limit < len(f.topTracks) {
		return f.topTracks[:limit], nil
	}
	return f.topTracks, nil
}

func (f *fakeCatalog) TopArtists(ctx context.Context, limit int) ([]domain.Artist, error) {
	if f.topArtistsErr != nil {
		return nil, f.topArtistsErr
	}
	if limit > 0 && limit < len(f.topArtists) {
		return f.topArtists[:limit], nil
	}
	return f.topArtists, nil
}

func (f *fakeCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	f.mu.Unlock()

	if err, ok := f.searchErrs[query]; ok {
		return nil, err
	}
	tracks := f.searchResults[query]
	if limit > 0 && limit < len(tracks) {
		return tracks[:limit], nil
	}
	return tracks, nil
}

func (f *fakeCatalog) FindPlaylistByName(ctx context.Context, name string) (domain.Playlist, error) {
	f.mu.Lock()
	f.findCalls = append(f.findCalls, name)
	f.mu.Unlock()

	if f.findErr != nil {
		return domain.Playlist{}, f.findErr
	}
	for _, p := range f.playlists {
		if p.pl.Name == name {
			return p.pl, nil
		}
	}
	return domain.Playlist{}, ports.ErrPlaylistNotFound
}

func (f *fakeCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	if f.tracksErr != nil {
		return nil, f.tracksErr
	}
	if p := f.playlistByID(playlistID); p != nil {
		return p.tracks, nil
	}
	return nil, ports.ErrPlaylistNotFound
}

func (f *fakeCatalog) CreatePlaylist(ctx context.Context, name, description string) (domain.Playlist, error) {
	if f.createErr != nil {
		return domain.Playlist{}, f.createErr
	}
	f.nextID++
	p := &fakePlaylist{pl: domain.Playlist{
		ID:          fmt.Sprintf("pl-%d", f.nextID),
		Name:        name,
		Description: description,
		OwnerID:     f.user.ID,
	}}
	f.playlists = append(f.playlists, p)
	f.createdIDs = append(f.createdIDs, p.pl.ID)
	return p.pl, nil
}

func (f *fakeCatalog) UpdatePlaylistDetails(ctx context.Context, playlistID, name, description string) error {
	p := f.playlistByID(playlistID)
	if p == nil {
		return ports.ErrPlaylistNotFound
	}
	p.pl.Name = name
	p.pl.Description = description
	return nil
}

func (f *fakeCatalog) ClearPlaylist(ctx context.Context, playlistID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	p := f.playlistByID(playlistID)
	if p == nil {
		return ports.ErrPlaylistNotFound
	}
	p.tracks = nil
	p.pl.TrackTotal = 0
	f.cleared = append(f.cleared, playlistID)
	return nil
}

func (f *fakeCatalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	accept := len(trackIDs)
	if len(f.addQueue) > 0 {
		accept = f.addQueue[0]
		f.addQueue = f.addQueue[1:]
		if accept > len(trackIDs) {
			accept = len(trackIDs)
		}
	}
	if p := f.playlistByID(playlistID); p != nil {
		for _, id := range trackIDs[:accept] {
			p.tracks = append(p.tracks, domain.Track{ID: id})
		}
		p.pl.TrackTotal = len(p.tracks)
	}
	return accept, nil
}

func (f *fakeCatalog) CanReadPrivatePlaylists() bool { return f.canRead }

func (f *fakeCatalog) playlistByID(id string) *fakePlaylist {
	for _, p := range f.playlists {
		if p.pl.ID == id {
			return p
		}
	}
	return nil
}

// seedPlaylist installs an existing playlist with tracks.
func (f *fakeCatalog) seedPlaylist(name string, tracks ...domain.Track) *fakePlaylist {
	f.nextID++
	p := &fakePlaylist{
		pl: domain.Playlist{
			ID:         fmt.Sprintf("pl-%d", f.nextID),
			Name:       name,
			OwnerID:    f.user.ID,
			TrackTotal: len(tracks),
		},
		tracks: tracks,
	}
	f.playlists = append(f.playlists, p)
	return p
}

// fakeCurator answers with scripted queries and description.
type fakeCurator struct {
	queries     []domain.DiscoveryQuery
	queriesErr  error
	description string
	descErr     error

	briefs []domain.CurationBrief
}

var _ ports.Curator = (*fakeCurator)(nil)

func (f *fakeCurator) SuggestQueries(ctx context.Context, brief domain.CurationBrief) ([]domain.DiscoveryQuery, error) {
	f.briefs = append(f.briefs, brief)
	if f.queriesErr != nil {
		return nil, f.queriesErr
	}
	return f.queries, nil
}

func (f *fakeCurator) WriteDescription(ctx context.Context, brief domain.CurationBrief) (string, error) {
	if f.descErr != nil {
		return "", f.descErr
	}
	return f.description, nil
}
