package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
	"github.com/henry-johnson/spotify-playlist-creator/internal/worker"
)

const (
	defaultAISearchLimit     = 5
	defaultSearchConcurrency = 4
)

// Searcher fans discovery queries out against the catalog.
type Searcher struct {
	catalog     ports.Catalog
	logger      zerolog.Logger
	limit       int
	concurrency int
}

// NewSearcher constructs a searcher. Non-positive limits fall back to the
// defaults.
func NewSearcher(catalog ports.Catalog, logger zerolog.Logger, limit, concurrency int) *Searcher {
	if limit <= 0 {
		limit = defaultAISearchLimit
	}
	if concurrency <= 0 {
		concurrency = defaultSearchConcurrency
	}
	return &Searcher{catalog: catalog, logger: logger, limit: limit, concurrency: concurrency}
}

// Search runs every query concurrently and flattens the hits in query
// order, each tagged with the query that surfaced it. Queries are
// independent units: a failed one is logged and skipped, never fatal.
func (s *Searcher) Search(ctx context.Context, queries []domain.DiscoveryQuery) []domain.CandidateTrack {
	if len(queries) == 0 {
		return nil
	}

	results := worker.Map(ctx, s.concurrency, queries, func(ctx context.Context, q domain.DiscoveryQuery) ([]domain.Track, error) {
		return s.catalog.SearchTracks(ctx, q.Text, s.limit)
	})

	var candidates []domain.CandidateTrack
	for i, res := range results {
		if res.Err != nil {
			s.logger.Warn().Err(res.Err).Str("query", queries[i].Text).Msg("discovery search failed, skipping query")
			continue
		}
		for _, track := range res.Value {
			candidates = append(candidates, domain.CandidateTrack{
				Track:       track,
				Provenance:  domain.ProvenanceAI,
				SourceQuery: queries[i].Text,
			})
		}
	}
	return candidates
}
