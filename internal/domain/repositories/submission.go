package repositories

import (
	"context"

	"formzen/internal/domain/models"
)

// SubmissionRepository defines data access operations for submissions
type SubmissionRepository interface {
	// Create inserts a submission and fills ID and CreatedAt
	Create(ctx context.Context, submission *models.Submission) error

	// ListByForm retrieves submissions of a form, newest first
	ListByForm(ctx context.Context, formID int64, limit, offset int) ([]models.Submission, error)

	// CountByOwner counts submissions across all forms of an owner
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// RecentByOwner returns the latest submissions across an owner's forms
	RecentByOwner(ctx context.Context, ownerID string, limit int) ([]models.SubmissionWithForm, error)
}
