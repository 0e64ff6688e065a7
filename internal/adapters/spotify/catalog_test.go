package spotify_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopTracksDropsMalformedRecords(t *testing.T) {
	srv, _ := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/top/tracks", r.URL.Path)
		assert.Equal(t, "short_term", r.URL.Query().Get("time_range"))
		assert.Equal(t, "15", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"items":[
			{"id":"t1","name":"Alpha","artists":[{"id":"a1","name":"Ann"},{"id":"a2","name":"Bo"}],"album":{"id":"al1"},"popularity":64},
			{"id":"","name":"missing id"},
			{"id":"t3","name":"Gamma","artists":[{"id":"a3","name":"Cee"}],"album":{"id":"al3"},"popularity":12}
		]}`)
	})
	client := newClient(srv)

	tracks, err := client.TopTracks(context.Background(), 15)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, []string{"a1", "a2"}, tracks[0].ArtistIDs)
	assert.Equal(t, []string{"Ann", "Bo"}, tracks[0].ArtistNames)
	assert.Equal(t, "al1", tracks[0].AlbumID)
	assert.Equal(t, 64, tracks[0].Popularity)
	assert.Equal(t, "t3", tracks[1].ID)
}

func TestTopTracksKeepsArtistPairsAligned(t *testing.T) {
	srv, _ := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"id":"t1","name":"Alpha","artists":[{"id":"a1","name":""},{"id":"","name":"Ghost"},{"id":"a3","name":"Cee"}],"album":{"id":"al1"}}
		]}`)
	})
	client := newClient(srv)

	tracks, err := client.TopTracks(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, []string{"a1", "a3"}, tracks[0].ArtistIDs)
	assert.Equal(t, []string{"", "Cee"}, tracks[0].ArtistNames,
		"names pair with IDs by index even when one is blank")
}

func TestTopArtistsCarriesGenres(t *testing.T) {
	srv, _ := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/top/artists", r.URL.Path)
		assert.Equal(t, "short_term", r.URL.Query().Get("time_range"))
		fmt.Fprint(w, `{"items":[
			{"id":"a1","name":"Ann","genres":["dream pop","shoegaze"]},
			{"id":"a2","name":"Bo","genres":[]}
		]}`)
	})
	client := newClient(srv)

	artists, err := client.TopArtists(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, artists, 2)
	assert.Equal(t, []string{"dream pop", "shoegaze"}, artists[0].Genres)
	assert.Empty(t, artists[1].Genres)
}

func TestSearchTracks(t *testing.T) {
	srv, _ := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, `genre:"shoegaze"`, r.URL.Query().Get("q"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		// No market until a profile has been fetched.
		assert.Empty(t, r.URL.Query().Get("market"))
		fmt.Fprint(w, `{"tracks":{"items":[
			{"id":"s1","name":"Found","artists":[{"id":"a9","name":"Nine"}],"album":{"id":"al9"},"popularity":33}
		]}}`)
	})
	client := newClient(srv)

	tracks, err := client.SearchTracks(context.Background(), `genre:"shoegaze"`, 5)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "s1", tracks[0].ID)
	assert.Equal(t, "Found", tracks[0].Name)
}

func TestSearchTracksEmptyResult(t *testing.T) {
	srv, _ := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tracks":{"items":[]}}`)
	})
	client := newClient(srv)

	tracks, err := client.SearchTracks(context.Background(), "nothing matches this", 5)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}
