package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

func newTestAssembler(catalog *fakeCatalog, budgets domain.SlotBudgets) *Assembler {
	return NewAssembler(catalog, zerolog.Nop(), AssemblerConfig{Budgets: budgets},
		WithAnchorRand(rand.New(rand.NewPCG(7, 11))))
}

func rankedCandidates(n int) []domain.CandidateTrack {
	out := make([]domain.CandidateTrack, n)
	for i := range out {
		id := string(rune('a'+i)) + "-ranked"
		out[i] = domain.CandidateTrack{Track: track(id, "new-"+id), Provenance: domain.ProvenanceAI}
	}
	return out
}

func TestAssemble_RespectsSlotBudgets(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user, TopTracks: fiveTopTracks(), TopArtists: catalog.topArtists}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, profile.TopArtists)
	catalog.searchResults[`genre:"slowcore"`] = []domain.Track{track("fb1", "z1"), track("fb2", "z2"), track("fb3", "z3")}

	budgets := domain.SlotBudgets{AI: 3, Anchor: 2, Target: 7}
	mix := newTestAssembler(catalog, budgets).Assemble(context.Background(), rankedCandidates(10), profile, snapshot)

	counts := mix.Counts()
	assert.Equal(t, 3, counts.AI, "AI slot capped at its budget")
	assert.Equal(t, 2, counts.Anchor, "anchor slot capped at its budget")
	assert.LessOrEqual(t, mix.Len(), budgets.Target)
	assert.Equal(t, mix.Len(), counts.AI+counts.Anchor+counts.Fallback)
}

func TestAssemble_AITakesRankOrder(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, nil, nil)
	ranked := []domain.CandidateTrack{
		{Track: track("first", "n1"), Provenance: domain.ProvenanceAI},
		{Track: track("second", "n2"), Provenance: domain.ProvenanceAI},
		{Track: track("third", "n3"), Provenance: domain.ProvenanceAI},
	}

	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 2, Anchor: 0, Target: 2}).
		Assemble(context.Background(), ranked, profile, snapshot)

	assert.Equal(t, []string{"first", "second"}, mix.TrackIDs())
}

func TestAssemble_AnchorsAreExemptFromKnownFilter(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user, TopTracks: fiveTopTracks()}
	// Every snapshot track is by definition known; anchors must come from
	// them anyway.
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, nil)

	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 0, Anchor: 3, Target: 5}).
		Assemble(context.Background(), nil, profile, snapshot)

	require.Equal(t, 3, mix.Counts().Anchor)
	for _, id := range mix.TrackIDs() {
		assert.True(t, snapshot.KnownTrack(id), "anchors recur known tracks on purpose")
	}
}

func TestAssemble_AnchorShuffleIsSeeded(t *testing.T) {
	profile := domain.ListeningProfile{TopTracks: fiveTopTracks()}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, nil)
	budgets := domain.SlotBudgets{AI: 0, Anchor: 3, Target: 3}

	first := NewAssembler(newFakeCatalog(), zerolog.Nop(), AssemblerConfig{Budgets: budgets},
		WithAnchorRand(rand.New(rand.NewPCG(1, 2)))).
		Assemble(context.Background(), nil, profile, snapshot)
	second := NewAssembler(newFakeCatalog(), zerolog.Nop(), AssemblerConfig{Budgets: budgets},
		WithAnchorRand(rand.New(rand.NewPCG(1, 2)))).
		Assemble(context.Background(), nil, profile, snapshot)

	assert.Equal(t, first.TrackIDs(), second.TrackIDs(), "same seed, same sample")
}

func TestAssemble_FallbackFillsToTargetAndDedups(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user, TopTracks: fiveTopTracks(), TopArtists: catalog.topArtists}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, profile.TopArtists)

	// The genre searches return a known track, a duplicate of an AI pick,
	// and fresh material.
	catalog.searchResults[`genre:"slowcore"`] = []domain.Track{
		track("top1", "a1"),    // known: must be filtered
		track("ai-pick", "n1"), // already in the mix via the AI slot
		track("fresh1", "z1"),
		track("fresh2", "z2"),
	}
	catalog.searchResults[`genre:"ambient"`] = []domain.Track{track("fresh3", "z3")}
	catalog.searchResults[`genre:"post-rock"`] = []domain.Track{track("fresh4", "z4")}

	ranked := []domain.CandidateTrack{{Track: track("ai-pick", "n1"), Provenance: domain.ProvenanceAI}}
	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 1, Anchor: 0, Target: 4}).
		Assemble(context.Background(), ranked, profile, snapshot)

	got := mix.TrackIDs()
	assert.NotContains(t, got, "top1", "fallback never reintroduces known tracks")
	assert.Equal(t, 4, mix.Len(), "fallback tops the mix up to the target")
	assert.Equal(t, []string{"ai-pick", "fresh1", "fresh2", "fresh3"}, got)
	assert.Equal(t, 3, mix.Counts().Fallback)
}

func TestAssemble_FallbackSearchesGenresThenArtists(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user, TopTracks: fiveTopTracks(), TopArtists: catalog.topArtists}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, profile.TopArtists)

	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 0, Anchor: 0, Target: 10}).
		Assemble(context.Background(), nil, profile, snapshot)

	// No search returns anything, so every derived query is consumed.
	require.NotEmpty(t, catalog.searchCalls)
	var genres, artists []string
	for _, q := range catalog.searchCalls {
		switch {
		case strings.HasPrefix(q, "genre:"):
			genres = append(genres, q)
		case strings.HasPrefix(q, "artist:"):
			artists = append(artists, q)
		}
	}
	assert.Equal(t, []string{`genre:"slowcore"`, `genre:"ambient"`, `genre:"post-rock"`}, genres)
	assert.Contains(t, artists, `artist:"Low Tide"`)
	assert.Contains(t, artists, `artist:"Marrow"`)
	assert.Less(t, indexOf(catalog.searchCalls, `genre:"slowcore"`), indexOf(catalog.searchCalls, `artist:"Low Tide"`),
		"genre queries run before artist queries")
	// The mix stayed empty, so the final degradation republished the
	// snapshot tracks.
	assert.Equal(t, 5, mix.Len())
}

func TestAssemble_FallbackStopsAtTarget(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user, TopTracks: fiveTopTracks(), TopArtists: catalog.topArtists}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, profile.TopArtists)
	catalog.searchResults[`genre:"slowcore"`] = []domain.Track{
		track("f1", "z1"), track("f2", "z2"), track("f3", "z3"), track("f4", "z4"),
	}

	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 0, Anchor: 0, Target: 2}).
		Assemble(context.Background(), nil, profile, snapshot)

	assert.Equal(t, 2, mix.Len())
	assert.Len(t, catalog.searchCalls, 1, "a full mix stops the query consumption")
}

func TestAssemble_FallbackSearchFailuresAreSkipped(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user, TopTracks: fiveTopTracks(), TopArtists: catalog.topArtists}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, profile.TopArtists)
	catalog.searchErrs[`genre:"slowcore"`] = errors.New("still rate limited")
	catalog.searchResults[`genre:"ambient"`] = []domain.Track{track("survivor", "z1")}

	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 0, Anchor: 0, Target: 1}).
		Assemble(context.Background(), nil, profile, snapshot)

	assert.Equal(t, []string{"survivor"}, mix.TrackIDs())
}

func TestAssemble_EmptyAIStillProducesMix(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user, TopTracks: fiveTopTracks(), TopArtists: catalog.topArtists}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, profile.TopArtists)
	catalog.searchResults[`genre:"slowcore"`] = []domain.Track{track("fb1", "z1"), track("fb2", "z2")}

	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 15, Anchor: 2, Target: 10}).
		Assemble(context.Background(), nil, profile, snapshot)

	require.NotZero(t, mix.Len(), "a dead AI tier must not kill the mix")
	counts := mix.Counts()
	assert.Zero(t, counts.AI)
	assert.Equal(t, 2, counts.Anchor)
	assert.Equal(t, 2, counts.Fallback)
}

func TestAssemble_NothingAnywhereReusesSnapshot(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromPlaylist,
		[]domain.Track{track("old1", "a1"), track("old2", "a2")}, nil)

	// Anchor budget zero, no AI, no search hits: the mix would end empty,
	// so the snapshot itself is republished.
	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 5, Anchor: 0, Target: 10}).
		Assemble(context.Background(), nil, profile, snapshot)

	assert.ElementsMatch(t, []string{"old1", "old2"}, mix.TrackIDs())
}

func TestAssemble_NoDuplicateIDsAcrossSlots(t *testing.T) {
	catalog := newFakeCatalog()
	profile := domain.ListeningProfile{User: catalog.user, TopTracks: fiveTopTracks(), TopArtists: catalog.topArtists}
	snapshot := domain.NewSourceSnapshot(domain.SnapshotFromTopItems, profile.TopTracks, profile.TopArtists)
	// Fallback offers the same IDs the AI slot already placed plus overlap
	// with the anchors.
	catalog.searchResults[`genre:"slowcore"`] = []domain.Track{track("a-ranked", "x"), track("top2", "a1"), track("fbx", "z9")}

	mix := newTestAssembler(catalog, domain.SlotBudgets{AI: 2, Anchor: 5, Target: 12}).
		Assemble(context.Background(), rankedCandidates(2), profile, snapshot)

	seen := make(map[string]int)
	for _, id := range mix.TrackIDs() {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "track %s appears %d times", id, n)
	}
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
