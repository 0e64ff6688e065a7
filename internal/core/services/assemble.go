package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
)

const (
	defaultFallbackSearchLimit = 10
	defaultGenreQueryLimit     = 8
	defaultArtistQueryLimit    = 8
)

// AssemblerConfig sizes the assembly pass. Zero values fall back to the
// shipped defaults.
type AssemblerConfig struct {
	Budgets          domain.SlotBudgets
	FallbackLimit    int // results fetched per fallback search
	GenreQueryLimit  int
	ArtistQueryLimit int
}

func (c AssemblerConfig) withDefaults() AssemblerConfig {
	if c.Budgets.Target <= 0 {
		c.Budgets = domain.DefaultSlotBudgets()
	}
	if c.FallbackLimit <= 0 {
		c.FallbackLimit = defaultFallbackSearchLimit
	}
	if c.GenreQueryLimit <= 0 {
		c.GenreQueryLimit = defaultGenreQueryLimit
	}
	if c.ArtistQueryLimit <= 0 {
		c.ArtistQueryLimit = defaultArtistQueryLimit
	}
	return c
}

// Assembler turns ranked candidates into a publishable mix by filling the
// AI, anchor, and fallback slots in that order.
type Assembler struct {
	catalog ports.Catalog
	logger  zerolog.Logger
	cfg     AssemblerConfig

	// perm shuffles anchor picks; swapped for a seeded source in tests.
	perm func(n int) []int
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithAnchorRand shuffles anchors from rng instead of the global source.
func WithAnchorRand(rng *rand.Rand) AssemblerOption {
	return func(a *Assembler) {
		if rng != nil {
			a.perm = rng.Perm
		}
	}
}

// NewAssembler constructs an assembler.
func NewAssembler(catalog ports.Catalog, logger zerolog.Logger, cfg AssemblerConfig, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		catalog: catalog,
		logger:  logger,
		cfg:     cfg.withDefaults(),
		perm:    rand.Perm,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the mix for one run. Shortfalls shrink the mix rather
// than fail it; a run with zero candidates from every source falls back to
// republishing the snapshot tracks.
func (a *Assembler) Assemble(ctx context.Context, ranked []domain.CandidateTrack, profile domain.ListeningProfile, snapshot domain.SourceSnapshot) *domain.DiscoveryMix {
	mix := domain.NewDiscoveryMix(a.cfg.Budgets.Target)

	a.fillAI(mix, ranked)
	a.fillAnchors(mix, snapshot)
	a.fillFallback(ctx, mix, profile, snapshot)

	if mix.Len() == 0 {
		a.logger.Warn().Msg("no candidates from any source, reusing snapshot tracks")
		for _, t := range snapshot.Tracks {
			if mix.Remaining() <= 0 {
				break
			}
			mix.Add(t.ID, domain.ProvenanceAnchor)
		}
	}
	return mix
}

// fillAI places ranked discovery candidates up to the AI budget.
func (a *Assembler) fillAI(mix *domain.DiscoveryMix, ranked []domain.CandidateTrack) {
	budget := a.cfg.Budgets.AI
	for _, c := range ranked {
		if budget <= 0 {
			return
		}
		if mix.Add(c.Track.ID, domain.ProvenanceAI) {
			budget--
		}
	}
}

// fillAnchors sprinkles in a few familiar tracks, sampled uniformly from
// the snapshot. Anchors are deliberately exempt from the known-track
// filter; they only avoid colliding with what is already in the mix.
func (a *Assembler) fillAnchors(mix *domain.DiscoveryMix, snapshot domain.SourceSnapshot) {
	budget := min(a.cfg.Budgets.Anchor, mix.Remaining())
	if budget <= 0 || len(snapshot.Tracks) == 0 {
		return
	}
	for _, idx := range a.perm(len(snapshot.Tracks)) {
		if budget <= 0 {
			return
		}
		if mix.Add(snapshot.Tracks[idx].ID, domain.ProvenanceAnchor) {
			budget--
		}
	}
}

// fillFallback tops the mix up to the target with genre and artist
// searches derived from the profile. The query list is the ceiling: the
// slot keeps consuming it until the mix is full or queries run out.
func (a *Assembler) fillFallback(ctx context.Context, mix *domain.DiscoveryMix, profile domain.ListeningProfile, snapshot domain.SourceSnapshot) {
	for _, query := range a.fallbackQueries(profile, snapshot) {
		if mix.Remaining() <= 0 || ctx.Err() != nil {
			return
		}
		tracks, err := a.catalog.SearchTracks(ctx, query, a.cfg.FallbackLimit)
		if err != nil {
			a.logger.Warn().Err(err).Str("query", query).Msg("fallback search failed, moving on")
			continue
		}
		for _, t := range tracks {
			if mix.Remaining() <= 0 {
				break
			}
			if snapshot.KnownTrack(t.ID) {
				continue
			}
			mix.Add(t.ID, domain.ProvenanceFallback)
		}
	}
}

// fallbackQueries derives quoted genre searches from the profile and
// artist searches from the snapshot's briefing artists topped up with the
// current top artists, capped per kind and deduplicated first-seen.
func (a *Assembler) fallbackQueries(profile domain.ListeningProfile, snapshot domain.SourceSnapshot) []string {
	var queries []string
	for _, g := range profile.Genres(a.cfg.GenreQueryLimit) {
		queries = append(queries, fmt.Sprintf("genre:%q", g))
	}

	seen := make(map[string]struct{})
	count := 0
	for _, artist := range append(append([]domain.Artist{}, snapshot.Artists...), profile.TopArtists...) {
		if count >= a.cfg.ArtistQueryLimit {
			break
		}
		name := strings.TrimSpace(artist.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		queries = append(queries, fmt.Sprintf("artist:%q", name))
		count++
	}
	return queries
}
