package spotify

import (
	"github.com/go-playground/validator/v10"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

// Wire types for the slice of the Web API this tool touches. Records that
// fail validation are dropped at the boundary instead of mapped, so a
// partially malformed page still yields its good rows.

var wireValidate = validator.New()

type trackObject struct {
	ID         string      `json:"id" validate:"required"`
	URI        string      `json:"uri"`
	Name       string      `json:"name" validate:"required"`
	Artists    []artistRef `json:"artists"`
	Album      albumRef    `json:"album"`
	Popularity int         `json:"popularity"`
}

type artistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumRef struct {
	ID string `json:"id"`
}

type artistObject struct {
	ID     string   `json:"id" validate:"required"`
	Name   string   `json:"name" validate:"required"`
	Genres []string `json:"genres"`
}

type userObject struct {
	ID          string `json:"id" validate:"required"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
}

type playlistObject struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       struct {
		ID string `json:"id"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type trackPage struct {
	Items []trackObject `json:"items"`
	Next  string        `json:"next"`
	Total int           `json:"total"`
}

type artistPage struct {
	Items []artistObject `json:"items"`
	Next  string         `json:"next"`
}

type playlistPage struct {
	Items []playlistObject `json:"items"`
	Next  string           `json:"next"`
	Total int              `json:"total"`
}

// playlistTrackPage wraps each track in an item envelope; local files and
// removed tracks arrive as null or zero-ID records and are dropped.
type playlistTrackPage struct {
	Items []struct {
		Track trackObject `json:"track"`
	} `json:"items"`
	Next  string `json:"next"`
	Total int    `json:"total"`
}

type searchResponse struct {
	Tracks trackPage `json:"tracks"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

func mapTrack(wt trackObject) (domain.Track, bool) {
	if err := wireValidate.Struct(wt); err != nil {
		return domain.Track{}, false
	}
	t := domain.Track{
		ID:         wt.ID,
		Name:       wt.Name,
		AlbumID:    wt.Album.ID,
		Popularity: wt.Popularity,
	}
	// IDs and names pair by index downstream, so both slices grow
	// together. An artist without an ID contributes neither.
	for _, a := range wt.Artists {
		if a.ID == "" {
			continue
		}
		t.ArtistIDs = append(t.ArtistIDs, a.ID)
		t.ArtistNames = append(t.ArtistNames, a.Name)
	}
	return t, true
}

func mapTracks(items []trackObject) []domain.Track {
	out := make([]domain.Track, 0, len(items))
	for _, wt := range items {
		if t, ok := mapTrack(wt); ok {
			out = append(out, t)
		}
	}
	return out
}

func mapArtist(wa artistObject) (domain.Artist, bool) {
	if err := wireValidate.Struct(wa); err != nil {
		return domain.Artist{}, false
	}
	return domain.Artist{ID: wa.ID, Name: wa.Name, Genres: wa.Genres}, true
}

func mapArtists(items []artistObject) []domain.Artist {
	out := make([]domain.Artist, 0, len(items))
	for _, wa := range items {
		if a, ok := mapArtist(wa); ok {
			out = append(out, a)
		}
	}
	return out
}

func mapUser(wu userObject) (domain.User, bool) {
	if err := wireValidate.Struct(wu); err != nil {
		return domain.User{}, false
	}
	return domain.User{ID: wu.ID, DisplayName: wu.DisplayName, Market: wu.Country}, true
}

func mapPlaylist(wp playlistObject) domain.Playlist {
	return domain.Playlist{
		ID:          wp.ID,
		Name:        wp.Name,
		Description: wp.Description,
		OwnerID:     wp.Owner.ID,
		TrackTotal:  wp.Tracks.Total,
	}
}
