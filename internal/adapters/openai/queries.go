package openai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

type wireQuery struct {
	Query    string `json:"query" validate:"required"`
	Strategy string `json:"strategy" validate:"required,oneof=similar-artist genre-adjacent specific-track left-field"`
}

type queriesPayload struct {
	Queries []wireQuery `json:"queries"`
}

// SuggestQueries asks the model for discovery search queries grounded in
// the brief. Malformed entries are dropped, case-insensitive duplicates
// keep their first occurrence, and the result is capped at the brief's
// MaxQueries (falling back to the client default).
func (c *Client) SuggestQueries(ctx context.Context, brief domain.CurationBrief) ([]domain.DiscoveryQuery, error) {
	maxQueries := brief.MaxQueries
	if maxQueries <= 0 {
		maxQueries = c.maxQueries
	}

	content, err := c.complete(ctx, queriesSystemPrompt, renderQueriesPrompt(c.queriesTemplate, brief, maxQueries), c.queryTemp)
	if err != nil {
		return nil, fmt.Errorf("openai adapter: suggest queries: %w", err)
	}

	var payload queriesPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("openai adapter: decode queries: %w", err)
	}

	queries := make([]domain.DiscoveryQuery, 0, len(payload.Queries))
	seen := make(map[string]struct{}, len(payload.Queries))
	for _, wq := range payload.Queries {
		wq.Query = strings.TrimSpace(wq.Query)
		if err := wireValidate.Struct(wq); err != nil {
			c.logger.Warn().Str("query", wq.Query).Str("strategy", wq.Strategy).Msg("dropping malformed suggestion")
			continue
		}
		key := strings.ToLower(wq.Query)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		queries = append(queries, domain.DiscoveryQuery{
			Text:     wq.Query,
			Strategy: domain.QueryStrategy(wq.Strategy),
		})
		if len(queries) == maxQueries {
			break
		}
	}
	return queries, nil
}

// renderQueriesPrompt fills the template tokens from the brief.
func renderQueriesPrompt(tmpl string, brief domain.CurationBrief, maxQueries int) string {
	return strings.NewReplacer(
		"{{listener}}", brief.Listener.FirstName(),
		"{{artists}}", artistLines(brief.TopArtists),
		"{{tracks}}", trackLines(brief.SourceTracks),
		"{{genres}}", strings.Join(brief.Genres, ", "),
		"{{source_week}}", brief.SourceWeek.String(),
		"{{target_week}}", brief.TargetWeek.String(),
		"{{max_queries}}", strconv.Itoa(maxQueries),
	).Replace(tmpl)
}

// artistLines lists artists one per line with up to five genres each.
func artistLines(artists []domain.Artist) string {
	lines := make([]string, 0, len(artists))
	for _, a := range artists {
		line := "- " + a.Name
		if len(a.Genres) > 0 {
			genres := a.Genres
			if len(genres) > 5 {
				genres = genres[:5]
			}
			line += " (" + strings.Join(genres, ", ") + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// trackLines lists up to fifteen tracks one per line with their artists.
// Previous-playlist snapshots carry the whole playlist; the prompt only
// ever names the head of it.
func trackLines(tracks []domain.Track) string {
	if len(tracks) > 15 {
		tracks = tracks[:15]
	}
	lines := make([]string, 0, len(tracks))
	for _, t := range tracks {
		line := "- " + t.Name
		if len(t.ArtistNames) > 0 {
			line += " by " + strings.Join(t.ArtistNames, ", ")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
