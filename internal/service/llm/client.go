package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"formzen/internal/domain"
	"formzen/internal/metrics"
)

// TextGenerator is one provider's single-shot completion call
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Client sends prompts to the configured generation provider. It makes
// exactly one call per Complete and never retries.
type Client struct {
	provider      string
	model         string
	credentialKey string
	generator     TextGenerator
	logger        *slog.Logger
}

// NewClient wraps a generator. generator may be nil, in which case every
// Complete fails with a ConfigurationError naming credentialKey.
func NewClient(provider, model, credentialKey string, generator TextGenerator, logger *slog.Logger) *Client {
	return &Client{
		provider:      provider,
		model:         model,
		credentialKey: credentialKey,
		generator:     generator,
		logger:        logger,
	}
}

// Provider names the backing service
func (c *Client) Provider() string {
	return c.provider
}

// Model is the model id sent with every request
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt and returns the raw text output
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.generator == nil {
		return "", &domain.ConfigurationError{Setting: c.credentialKey}
	}

	start := time.Now()
	text, err := c.generator.Generate(ctx, c.model, prompt)
	elapsed := time.Since(start)
	metrics.GenerationDuration.WithLabelValues(c.provider).Observe(elapsed.Seconds())

	if err != nil {
		return "", &domain.UpstreamError{Service: c.provider, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.UpstreamError{Service: c.provider}
	}

	c.logger.Debug("generation completed",
		"provider", c.provider,
		"model", c.model,
		"duration_ms", elapsed.Milliseconds(),
		"chars", len(text),
	)

	return text, nil
}
