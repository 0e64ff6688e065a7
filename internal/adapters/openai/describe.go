package openai

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

type descriptionPayload struct {
	Description string `json:"description"`
}

// WriteDescription asks the model for a short playlist description. The
// caller owns the fallback when this errors.
func (c *Client) WriteDescription(ctx context.Context, brief domain.CurationBrief) (string, error) {
	content, err := c.complete(ctx, descriptionSystemPrompt, renderDescriptionPrompt(c.descriptionTemplate, brief), c.descTemp)
	if err != nil {
		return "", fmt.Errorf("openai adapter: write description: %w", err)
	}

	var payload descriptionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return "", fmt.Errorf("openai adapter: decode description: %w", err)
	}
	description := strings.TrimSpace(payload.Description)
	if description == "" {
		return "", fmt.Errorf("openai adapter: model returned an empty description")
	}
	return description, nil
}

// renderDescriptionPrompt fills the template tokens from the brief.
func renderDescriptionPrompt(tmpl string, brief domain.CurationBrief) string {
	names := make([]string, 0, len(brief.TopArtists))
	for _, a := range brief.TopArtists {
		names = append(names, a.Name)
	}
	return strings.NewReplacer(
		"{{listener}}", brief.Listener.FirstName(),
		"{{artists}}", strings.Join(names, ", "),
		"{{genres}}", strings.Join(brief.Genres, ", "),
		"{{source_week}}", brief.SourceWeek.String(),
		"{{target_week}}", brief.TargetWeek.String(),
	).Replace(tmpl)
}
