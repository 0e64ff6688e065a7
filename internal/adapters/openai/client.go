// Package openai implements the curator port against an OpenAI-compatible
// chat-completions endpoint. All calls ask for JSON output and flow through
// a circuit breaker so a dead provider fails fast across a multi-user run.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/ports"
	"github.com/henry-johnson/spotify-playlist-creator/internal/httpx"
)

const (
	defaultModel                  = "gpt-4o-mini"
	defaultMaxQueries             = 15
	defaultQueryTemperature       = 1.0
	defaultDescriptionTemperature = 0.8

	// breakerFailureThreshold opens the circuit after this many calls fail
	// back to back; later users in the run then skip straight to fallbacks.
	breakerFailureThreshold = 3
	breakerRecoveryTimeout  = time.Minute
)

var wireValidate = validator.New()

// Client talks to one chat-completions endpoint.
type Client struct {
	http       *httpx.Client
	baseURL    string
	apiKey     string
	model      string
	maxQueries int
	queryTemp  float64
	descTemp   float64

	queriesTemplate     string
	descriptionTemplate string

	logger  zerolog.Logger
	breaker *gobreaker.CircuitBreaker[*chatResponse]
}

// compile-time interface assertion
var _ ports.Curator = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxQueries caps how many queries a suggestion call may return when
// the brief does not say.
func WithMaxQueries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxQueries = n
		}
	}
}

// WithTemperatures sets the sampling temperatures for query suggestions
// and descriptions. Negative values keep the defaults.
func WithTemperatures(query, description float64) Option {
	return func(c *Client) {
		if query >= 0 {
			c.queryTemp = query
		}
		if description >= 0 {
			c.descTemp = description
		}
	}
}

// WithPromptTemplates replaces the built-in prompt templates. Empty
// strings keep the defaults, so partial overrides from disk work.
func WithPromptTemplates(queries, description string) Option {
	return func(c *Client) {
		if queries != "" {
			c.queriesTemplate = queries
		}
		if description != "" {
			c.descriptionTemplate = description
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l.With().Str("adapter", "openai").Logger() }
}

// NewClient constructs a curator client against baseURL.
func NewClient(hc *httpx.Client, baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		http:                hc,
		baseURL:             strings.TrimRight(baseURL, "/"),
		apiKey:              apiKey,
		model:               defaultModel,
		maxQueries:          defaultMaxQueries,
		queryTemp:           defaultQueryTemperature,
		descTemp:            defaultDescriptionTemperature,
		queriesTemplate:     defaultQueriesTemplate,
		descriptionTemplate: defaultDescriptionTemplate,
		logger:              zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	logger := c.logger
	c.breaker = gobreaker.NewCircuitBreaker[*chatResponse](gobreaker.Settings{
		Name:        "openai-chat",
		MaxRequests: 1,
		Timeout:     breakerRecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete runs one JSON-mode chat call through the breaker and returns
// the first choice's content.
func (c *Client) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	resp, err := c.breaker.Execute(func() (*chatResponse, error) {
		header := make(http.Header)
		header.Set("Authorization", "Bearer "+c.apiKey)

		var out chatResponse
		err := c.http.DoJSON(ctx, httpx.Request{
			Method: http.MethodPost,
			URL:    c.baseURL + "/chat/completions",
			Header: header,
			Body: chatRequest{
				Model: c.model,
				Messages: []chatMessage{
					{Role: "system", Content: system},
					{Role: "user", Content: user},
				},
				Temperature:    temperature,
				ResponseFormat: &responseFormat{Type: "json_object"},
			},
		}, &out)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("response carried no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
