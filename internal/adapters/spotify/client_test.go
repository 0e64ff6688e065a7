package spotify_test

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henry-johnson/spotify-playlist-creator/internal/httpx"
)

func TestMeCachesProfile(t *testing.T) {
	var meCalls atomic.Int32
	srv, _ := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me":
			meCalls.Add(1)
			fmt.Fprint(w, `{"id":"user-1","display_name":"Henry Johnson","country":"DE"}`)
		case "/search":
			assert.Equal(t, "DE", r.URL.Query().Get("market"))
			fmt.Fprint(w, `{"tracks":{"items":[]}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	client := newClient(srv)
	ctx := context.Background()

	user, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "Henry Johnson", user.DisplayName)
	assert.Equal(t, "DE", user.Market)

	// The cached market rides along on searches.
	_, err = client.SearchTracks(ctx, "test", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(1), meCalls.Load())
}

func TestRetriesOnceOnUnauthorized(t *testing.T) {
	var meCalls atomic.Int32
	srv, exchanges := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		if r.Header.Get("Authorization") == "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"id":"user-1","display_name":"Henry","country":"SE"}`)
	})
	client := newClient(srv)

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, int32(2), meCalls.Load())
	assert.Equal(t, int32(2), exchanges.Load())
}

func TestUnauthorizedTwiceSurfaces(t *testing.T) {
	srv, exchanges := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := newClient(srv)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httpx.StatusCode(err))
	assert.Equal(t, int32(2), exchanges.Load())
}

func TestMalformedProfileRejected(t *testing.T) {
	srv, _ := newServer(t, grantedScopes, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"display_name":"No ID"}`)
	})
	client := newClient(srv)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed profile")
}
