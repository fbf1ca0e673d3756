package forms

import (
	"context"
	"errors"
	"log/slog"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/services"
	"formzen/internal/metrics"
)

// generationService implements the GenerationService interface
type generationService struct {
	gate      services.AccessGate
	completer services.Completer
	forms     services.FormService
	logger    *slog.Logger
}

// NewGenerationService creates the description -> draft form pipeline
func NewGenerationService(
	gate services.AccessGate,
	completer services.Completer,
	forms services.FormService,
	logger *slog.Logger,
) services.GenerationService {
	return &generationService{
		gate:      gate,
		completer: completer,
		forms:     forms,
		logger:    logger,
	}
}

// Validate rejects a blank or oversized description
func (s *generationService) Validate(req *services.GenerateFormRequest) error {
	_, err := BuildPrompt(req.Description)
	return err
}

// Generate checks quota, builds the prompt, calls the model once, validates
// its output and stores the result as a draft.
func (s *generationService) Generate(ctx context.Context, owner *models.User, req *services.GenerateFormRequest) (*models.Form, error) {
	if owner == nil {
		return nil, &domain.UnauthorizedError{Message: "start a session to generate forms"}
	}

	if err := s.gate.CheckGenerate(ctx, owner); err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(req.Description)
	if err != nil {
		return nil, err
	}

	provider := s.completer.Provider()
	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(provider, generationOutcome(err)).Inc()
		s.logger.Error("form generation failed",
			"provider", provider,
			"owner_id", owner.ID,
			"error", err,
		)
		return nil, err
	}

	content, err := ParseFormContent(raw)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(provider, generationOutcome(err)).Inc()
		// raw model output stays in server logs only
		s.logger.Error("generated content rejected",
			"provider", provider,
			"owner_id", owner.ID,
			"error", err,
			"raw", raw,
		)
		return nil, err
	}

	metrics.GenerationsTotal.WithLabelValues(provider, "ok").Inc()

	return s.forms.Create(ctx, owner, *content)
}

func generationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return "config_error"
	case errors.Is(err, domain.ErrParse):
		return "parse_error"
	case errors.Is(err, domain.ErrShape):
		return "shape_error"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	default:
		return "error"
	}
}
