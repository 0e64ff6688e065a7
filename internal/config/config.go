// Package config loads the process configuration by layering package
// defaults, an optional YAML file, and environment variables, in that
// order of precedence. Nothing else in the repo reads the environment for
// tunables; one Config is built in main and passed down.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full configuration for one run of the tool.
type Config struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format" validate:"oneof=console json"`

	Spotify SpotifyConfig `koanf:"spotify"`
	OpenAI  OpenAIConfig  `koanf:"openai"`
	Mix     MixConfig     `koanf:"mix"`
	HTTP    HTTPConfig    `koanf:"http"`
	Prompts PromptsConfig `koanf:"prompts"`
}

// SpotifyConfig points the catalog adapter at Spotify. The flat credential
// fields cover the single-user setup; multi-user runs are discovered from
// SPOTIFY_USER_* variables instead (see DiscoverUsers).
type SpotifyConfig struct {
	BaseURL        string `koanf:"base_url" validate:"required,url"`
	AccountsURL    string `koanf:"accounts_url" validate:"required,url"`
	ClientID       string `koanf:"client_id"`
	ClientSecret   string `koanf:"client_secret"`
	RefreshToken   string `koanf:"refresh_token"`
	TopTrackLimit  int    `koanf:"top_track_limit" validate:"gt=0,lte=50"`
	TopArtistLimit int    `koanf:"top_artist_limit" validate:"gt=0,lte=50"`
}

// OpenAIConfig points the curator adapter at an OpenAI-compatible API.
type OpenAIConfig struct {
	BaseURL         string  `koanf:"base_url" validate:"required,url"`
	APIKey          string  `koanf:"api_key"`
	Model           string  `koanf:"model" validate:"required"`
	MaxQueries      int     `koanf:"max_queries" validate:"gt=0,lte=50"`
	QueryTemp       float64 `koanf:"query_temperature" validate:"gte=0,lte=2"`
	DescriptionTemp float64 `koanf:"description_temperature" validate:"gte=0,lte=2"`
}

// MixConfig sizes the assembled mix and its searches.
type MixConfig struct {
	AISlots             int `koanf:"ai_slots" validate:"gte=0"`
	AnchorSlots         int `koanf:"anchor_slots" validate:"gte=0"`
	TargetLength        int `koanf:"target_length" validate:"gt=0,lte=100"`
	SearchLimit         int `koanf:"search_limit" validate:"gt=0,lte=50"`
	FallbackSearchLimit int `koanf:"fallback_search_limit" validate:"gt=0,lte=50"`
	MaxGenreQueries     int `koanf:"max_genre_queries" validate:"gte=0"`
	MaxArtistQueries    int `koanf:"max_artist_queries" validate:"gte=0"`
	SearchWorkers       int `koanf:"search_workers" validate:"gt=0,lte=16"`
}

// HTTPConfig tunes the outbound request layer.
type HTTPConfig struct {
	MaxAttempts       int     `koanf:"max_attempts" validate:"gt=0,lte=10"`
	BackoffMs         int     `koanf:"backoff_ms" validate:"gt=0"`
	MaxDelaySeconds   int     `koanf:"max_delay_seconds" validate:"gt=0"`
	TimeoutSeconds    int     `koanf:"timeout_seconds" validate:"gt=0"`
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
}

// PromptsConfig optionally points at a directory of prompt template
// overrides.
type PromptsConfig struct {
	Dir string `koanf:"dir"`
}

// Default returns the configuration the tool ships with.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "console",
		Spotify: SpotifyConfig{
			BaseURL:        "https://api.spotify.com/v1",
			AccountsURL:    "https://accounts.spotify.com",
			TopTrackLimit:  15,
			TopArtistLimit: 10,
		},
		OpenAI: OpenAIConfig{
			BaseURL:         "https://api.openai.com/v1",
			Model:           "gpt-4o-mini",
			MaxQueries:      15,
			QueryTemp:       1.0,
			DescriptionTemp: 0.8,
		},
		Mix: MixConfig{
			AISlots:             15,
			AnchorSlots:         5,
			TargetLength:        28,
			SearchLimit:         5,
			FallbackSearchLimit: 10,
			MaxGenreQueries:     8,
			MaxArtistQueries:    8,
			SearchWorkers:       4,
		},
		HTTP: HTTPConfig{
			MaxAttempts:       3,
			BackoffMs:         500,
			MaxDelaySeconds:   60,
			TimeoutSeconds:    30,
			RequestsPerSecond: 0,
		},
	}
}

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. An empty path falls back to CONFIG_PATH; no file
// at all is fine.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints plus the cross-field mix invariant.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Mix.AISlots+c.Mix.AnchorSlots > c.Mix.TargetLength {
		return fmt.Errorf("config: ai_slots + anchor_slots (%d) exceed target_length (%d)",
			c.Mix.AISlots+c.Mix.AnchorSlots, c.Mix.TargetLength)
	}
	return nil
}

// envAliases maps the environment surface the tool has always honored onto
// config paths. Unknown variables are ignored so unrelated environment
// noise cannot leak in.
var envAliases = map[string]string{
	"LOG_LEVEL":  "log_level",
	"LOG_FORMAT": "log_format",

	"SPOTIFY_API_BASE_URL":  "spotify.base_url",
	"SPOTIFY_ACCOUNTS_URL":  "spotify.accounts_url",
	"SPOTIFY_CLIENT_ID":     "spotify.client_id",
	"SPOTIFY_CLIENT_SECRET": "spotify.client_secret",
	"SPOTIFY_REFRESH_TOKEN": "spotify.refresh_token",

	"OPENAI_BASE_URL": "openai.base_url",
	"OPENAI_API_KEY":  "openai.api_key",
	"OPENAI_MODEL":    "openai.model",

	"DISCOVERY_MAX_QUERIES":  "openai.max_queries",
	"DISCOVERY_TARGET_SIZE":  "mix.target_length",
	"DISCOVERY_AI_SLOTS":     "mix.ai_slots",
	"DISCOVERY_ANCHOR_SLOTS": "mix.anchor_slots",

	"HTTP_MAX_ATTEMPTS":        "http.max_attempts",
	"HTTP_BACKOFF_MS":          "http.backoff_ms",
	"HTTP_REQUESTS_PER_SECOND": "http.requests_per_second",

	"PROMPTS_DIR": "prompts.dir",
}

func envTransform(key string) string {
	if path, ok := envAliases[strings.ToUpper(key)]; ok {
		return path
	}
	return ""
}
