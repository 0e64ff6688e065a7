package ports

import (
	"context"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

// Curator is the driven port for the AI assistant that shapes a run: it
// proposes discovery searches and writes the playlist blurb. Both calls are
// best-effort; callers degrade when they fail.
type Curator interface {
	// SuggestQueries proposes up to brief.MaxQueries catalog searches
	// tailored to the listener. The returned queries are validated and
	// deduplicated.
	SuggestQueries(ctx context.Context, brief domain.CurationBrief) ([]domain.DiscoveryQuery, error)

	// WriteDescription drafts a short playlist description for the run.
	WriteDescription(ctx context.Context, brief domain.CurationBrief) (string, error)
}
