package services

import (
	"context"

	"formzen/internal/domain/models"
)

// Completer is the black-box text generation function
type Completer interface {
	// Complete sends one prompt and returns the raw text output
	Complete(ctx context.Context, prompt string) (string, error)

	// Provider names the backing service ("gemini", "anthropic", ...)
	Provider() string
}

// Uploader stores one attachment and returns its resolved URL
type Uploader interface {
	Upload(ctx context.Context, field string, file models.Attachment) (*models.UploadedFile, error)
}
