package services

import (
	"context"

	"formzen/internal/domain/models"
)

// GenerateFormRequest is the natural-language description of a form
type GenerateFormRequest struct {
	Description string `json:"description"`
}

// ListSubmissionsRequest pages through a form's submissions
type ListSubmissionsRequest struct {
	FormID int64
	Limit  int
	Offset int
}

// FormService owns the draft -> published lifecycle of forms.
// Every operation takes the caller identity explicitly.
type FormService interface {
	// Create persists a validated draft for owner
	Create(ctx context.Context, owner *models.User, content models.FormContent) (*models.Form, error)

	// Publish marks the form published; only its owner may do so
	Publish(ctx context.Context, formID int64, requester *models.User) (*models.Form, error)

	// Get loads a form with no ownership check
	Get(ctx context.Context, formID int64) (*models.Form, error)

	// GetForOwner loads a form for its edit view
	GetForOwner(ctx context.Context, formID int64, requester *models.User) (*models.Form, error)

	// GetPublic loads a published form for respondents
	GetPublic(ctx context.Context, formID int64) (*models.Form, error)

	// GetByShareToken resolves a share link to its published form
	GetByShareToken(ctx context.Context, token string) (*models.Form, error)

	// List returns the owner's forms, newest first
	List(ctx context.Context, owner *models.User) ([]models.Form, error)

	// Dashboard aggregates drafts, published forms and recent submissions
	Dashboard(ctx context.Context, owner *models.User) (*models.Dashboard, error)

	// ListSubmissions returns submissions of a form owned by requester
	ListSubmissions(ctx context.Context, requester *models.User, req *ListSubmissionsRequest) ([]models.Submission, error)
}

// GenerationService turns a description into a stored draft form
type GenerationService interface {
	// Validate checks the request without touching quota or storage
	Validate(req *GenerateFormRequest) error

	Generate(ctx context.Context, owner *models.User, req *GenerateFormRequest) (*models.Form, error)
}

// SubmissionService collects respondent answers for published forms
type SubmissionService interface {
	// Submit validates values, uploads attachments and persists one submission.
	// values holds text inputs (multiple values per key allowed), files holds attachments.
	Submit(ctx context.Context, formID int64, values map[string][]string, files map[string]models.Attachment) (*models.Submission, error)
}
