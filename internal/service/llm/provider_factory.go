package llm

import (
	"context"
	"fmt"
	"log/slog"

	"formzen/internal/config"

	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/openrouter"
)

// Supported generation providers
const (
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
)

// ProviderFactory builds the generation client for the configured provider
type ProviderFactory struct {
	config *config.Config
	logger *slog.Logger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, logger *slog.Logger) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
		logger: logger,
	}
}

// NewClient returns a client for cfg.GenerationProvider.
//
// A missing credential is not an error here: the client is returned without
// a generator so the server still starts and generation requests fail with
// a ConfigurationError.
func (f *ProviderFactory) NewClient(ctx context.Context) (*Client, error) {
	name := f.config.GenerationProvider
	model := f.config.GenerationModel

	var (
		key       string
		keyName   string
		generator TextGenerator
	)

	switch name {
	case ProviderGemini:
		key, keyName = f.config.GeminiAPIKey, "GEMINI_API_KEY"
		if key != "" {
			g, err := NewGeminiGenerator(ctx, key)
			if err != nil {
				return nil, err
			}
			generator = g
		}

	case ProviderAnthropic:
		key, keyName = f.config.AnthropicAPIKey, "ANTHROPIC_API_KEY"
		if key != "" {
			provider, err := anthropic.NewProvider(key)
			if err != nil {
				return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
			}
			generator = NewProviderGenerator(provider)
		}

	case ProviderOpenRouter:
		key, keyName = f.config.OpenRouterAPIKey, "OPENROUTER_API_KEY"
		if key != "" {
			provider, err := openrouter.NewProvider(key)
			if err != nil {
				return nil, fmt.Errorf("failed to create OpenRouter provider: %w", err)
			}
			generator = NewProviderGenerator(provider)
		}

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", name)
	}

	if generator == nil {
		f.logger.Warn(keyName+" not set - form generation disabled", "provider", name)
	} else {
		f.logger.Info("generation provider available", "name", name, "model", model)
	}

	return NewClient(name, model, keyName, generator, f.logger), nil
}
