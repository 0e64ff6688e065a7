package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/henry-johnson/spotify-playlist-creator/internal/adapters/openai"
	"github.com/henry-johnson/spotify-playlist-creator/internal/adapters/spotify"
	"github.com/henry-johnson/spotify-playlist-creator/internal/config"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
	"github.com/henry-johnson/spotify-playlist-creator/internal/core/services"
	"github.com/henry-johnson/spotify-playlist-creator/internal/httpx"
)

// newEngineBuilder binds a fresh catalog adapter per listener around one
// shared curator. The curator's circuit breaker is shared on purpose: once
// the provider is down, every later listener skips straight to fallbacks.
func newEngineBuilder(cfg *config.Config, prompts config.Prompts, users []config.UserCredentials, logger zerolog.Logger, dryRun bool) services.EngineBuilder {
	byName := make(map[string]config.UserCredentials, len(users))
	for _, u := range users {
		byName[u.Name] = u
	}

	curator := openai.NewClient(
		newHTTPClient(cfg.HTTP, logger),
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.APIKey,
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithMaxQueries(cfg.OpenAI.MaxQueries),
		openai.WithTemperatures(cfg.OpenAI.QueryTemp, cfg.OpenAI.DescriptionTemp),
		openai.WithPromptTemplates(prompts.Recommendations, prompts.Description),
		openai.WithLogger(logger),
	)

	engineCfg := services.EngineConfig{
		TopTrackLimit:  cfg.Spotify.TopTrackLimit,
		TopArtistLimit: cfg.Spotify.TopArtistLimit,
		MaxQueries:     cfg.OpenAI.MaxQueries,
		AISearchLimit:  cfg.Mix.SearchLimit,
		Concurrency:    cfg.Mix.SearchWorkers,
		Budgets: domain.SlotBudgets{
			AI:     cfg.Mix.AISlots,
			Anchor: cfg.Mix.AnchorSlots,
			Target: cfg.Mix.TargetLength,
		},
		FallbackLimit:    cfg.Mix.FallbackSearchLimit,
		GenreQueryLimit:  cfg.Mix.MaxGenreQueries,
		ArtistQueryLimit: cfg.Mix.MaxArtistQueries,
		DryRun:           dryRun,
	}

	return func(ctx context.Context, name string) (*services.Engine, error) {
		creds, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("no credentials for user %q", name)
		}

		auth := spotify.NewAuthenticator(creds.ClientID, creds.ClientSecret, creds.RefreshToken, cfg.Spotify.AccountsURL)
		if err := auth.ValidateScopes(ctx); err != nil {
			return nil, err
		}

		userLogger := logger.With().Str("user", name).Logger()
		catalog := spotify.NewClient(newHTTPClient(cfg.HTTP, userLogger), auth, cfg.Spotify.BaseURL, userLogger)
		return services.NewEngine(catalog, curator, engineCfg, userLogger), nil
	}
}

// newHTTPClient builds one outbound client from the HTTP tuning section.
// Each listener gets their own so request pacing tracks the per-token rate
// limits upstream applies.
func newHTTPClient(cfg config.HTTPConfig, logger zerolog.Logger) *httpx.Client {
	return httpx.New(
		httpx.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}),
		httpx.WithMaxAttempts(cfg.MaxAttempts),
		httpx.WithBackoff(time.Duration(cfg.BackoffMs)*time.Millisecond, time.Duration(cfg.MaxDelaySeconds)*time.Second),
		httpx.WithRateLimit(cfg.RequestsPerSecond, 1),
		httpx.WithLogger(logger),
		httpx.WithUserAgent("weeklymix"),
	)
}
