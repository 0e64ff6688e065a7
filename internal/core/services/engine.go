package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
)

const (
	defaultMaxQueries  = 15
	defaultBriefGenres = 15

	// fallbackArtistNames caps how many artists the deterministic
	// description names.
	fallbackArtistNames = 5
)

// EngineConfig carries every knob one user's pipeline needs. Zero values
// fall back to the shipped defaults.
type EngineConfig struct {
	TopTrackLimit    int
	TopArtistLimit   int
	MaxQueries       int
	BriefGenreLimit  int
	AISearchLimit    int
	Concurrency      int
	Budgets          domain.SlotBudgets
	FallbackLimit    int
	GenreQueryLimit  int
	ArtistQueryLimit int
	DryRun           bool
}

// RunResult summarizes one user's finished run.
type RunResult struct {
	User       domain.User
	Week       domain.PeriodKey
	Origin     domain.SnapshotOrigin
	MixLen     int
	Counts     domain.SlotCounts
	State      PlaylistState
	PlaylistID string
	Added      int
}

// Engine runs the full weekly pipeline for one user: resolve the profile,
// ask for queries, search, rank, assemble, publish.
type Engine struct {
	curator    ports.Curator
	resolver   *ProfileResolver
	searcher   *Searcher
	assembler  *Assembler
	reconciler *Reconciler
	logger     zerolog.Logger

	maxQueries      int
	briefGenreLimit int
	dryRun          bool

	// now stamps descriptions; swapped for a fixed clock in tests.
	now func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces the description timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithAssemblerOptions forwards options to the engine's assembler.
func WithAssemblerOptions(opts ...AssemblerOption) EngineOption {
	return func(e *Engine) {
		for _, opt := range opts {
			opt(e.assembler)
		}
	}
}

// NewEngine wires the pipeline stages around one catalog and one curator.
func NewEngine(catalog ports.Catalog, curator ports.Curator, cfg EngineConfig, logger zerolog.Logger, opts ...EngineOption) *Engine {
	if cfg.MaxQueries <= 0 {
		cfg.MaxQueries = defaultMaxQueries
	}
	if cfg.BriefGenreLimit <= 0 {
		cfg.BriefGenreLimit = defaultBriefGenres
	}

	e := &Engine{
		curator:  curator,
		resolver: NewProfileResolver(catalog, logger, cfg.TopTrackLimit, cfg.TopArtistLimit),
		searcher: NewSearcher(catalog, logger, cfg.AISearchLimit, cfg.Concurrency),
		assembler: NewAssembler(catalog, logger, AssemblerConfig{
			Budgets:          cfg.Budgets,
			FallbackLimit:    cfg.FallbackLimit,
			GenreQueryLimit:  cfg.GenreQueryLimit,
			ArtistQueryLimit: cfg.ArtistQueryLimit,
		}),
		reconciler:      NewReconciler(catalog, logger),
		logger:          logger,
		maxQueries:      cfg.MaxQueries,
		briefGenreLimit: cfg.BriefGenreLimit,
		dryRun:          cfg.DryRun,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildAndPublish runs the pipeline for the target week. Curator failures
// degrade (no AI candidates, fallback description); catalog failures on
// the critical path abort the run.
func (e *Engine) BuildAndPublish(ctx context.Context, target domain.PeriodKey) (RunResult, error) {
	profile, snapshot, err := e.resolver.Resolve(ctx, target)
	if err != nil {
		return RunResult{}, err
	}
	logger := e.logger.With().Str("user", profile.User.ID).Str("week", target.String()).Logger()
	logger.Info().Str("origin", string(snapshot.Origin)).Int("source_tracks", len(snapshot.Tracks)).Msg("profile resolved")

	brief := domain.CurationBrief{
		Listener:     profile.User,
		SourceTracks: snapshot.Tracks,
		TopArtists:   snapshot.Artists,
		Genres:       profile.Genres(e.briefGenreLimit),
		SourceWeek:   target.Previous(),
		TargetWeek:   target,
		MaxQueries:   e.maxQueries,
	}

	queries, err := e.curator.SuggestQueries(ctx, brief)
	if err != nil {
		logger.Warn().Err(err).Msg("query suggestion failed, continuing without discovery candidates")
		queries = nil
	}
	candidates := e.searcher.Search(ctx, queries)
	ranked := RankCandidates(candidates, snapshot)
	logger.Info().Int("queries", len(queries)).Int("candidates", len(candidates)).Int("ranked", len(ranked)).Msg("discovery search complete")

	mix := e.assembler.Assemble(ctx, ranked, profile, snapshot)
	if mix.Len() == 0 {
		return RunResult{}, fmt.Errorf("assemble mix for %s: no tracks available", target)
	}

	result := RunResult{
		User:   profile.User,
		Week:   target,
		Origin: snapshot.Origin,
		MixLen: mix.Len(),
		Counts: mix.Counts(),
		State:  PlaylistSkipped,
	}
	if e.dryRun {
		logger.Info().Int("tracks", mix.Len()).Msg("dry run, skipping publication")
		return result, nil
	}

	published, err := e.reconciler.Publish(ctx, target, mix.TrackIDs(), e.describe(ctx, brief))
	if err != nil {
		return RunResult{}, err
	}
	result.State = published.State
	result.PlaylistID = published.PlaylistID
	result.Added = published.Added
	logger.Info().Str("playlist", published.PlaylistID).Str("state", string(published.State)).Int("added", published.Added).Msg("playlist published")
	return result, nil
}

// describe asks the curator for a blurb, falls back to the deterministic
// line, and stamps the creation time so reruns are visible on the playlist
// itself.
func (e *Engine) describe(ctx context.Context, brief domain.CurationBrief) string {
	text, err := e.curator.WriteDescription(ctx, brief)
	if err != nil {
		e.logger.Warn().Err(err).Msg("description failed, using fallback")
		text = fallbackDescription(brief)
	}
	return fmt.Sprintf("Created: %s UTC - %s", e.now().UTC().Format("2006-01-02 15:04"), text)
}

// fallbackDescription is the deterministic blurb used when the curator is
// unavailable.
func fallbackDescription(brief domain.CurationBrief) string {
	text := fmt.Sprintf("Weekly playlist for %s, based on %s listening", brief.TargetWeek, brief.SourceWeek)
	names := make([]string, 0, fallbackArtistNames)
	for _, a := range brief.TopArtists {
		if a.Name == "" {
			continue
		}
		names = append(names, a.Name)
		if len(names) == fallbackArtistNames {
			break
		}
	}
	if len(names) > 0 {
		text += ": " + strings.Join(names, ", ")
	}
	return text
}
