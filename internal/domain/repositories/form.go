package repositories

import (
	"context"

	"formzen/internal/domain/models"
)

// FormRepository defines data access operations for forms
type FormRepository interface {
	// Create inserts a new draft form and fills ID and timestamps
	Create(ctx context.Context, form *models.Form) error

	// GetByID retrieves a form by ID regardless of owner
	GetByID(ctx context.Context, id int64) (*models.Form, error)

	// GetByShareToken retrieves a form by its public share token
	GetByShareToken(ctx context.Context, token string) (*models.Form, error)

	// ListByOwner retrieves all forms of an owner, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]models.Form, error)

	// CountByOwner returns how many forms an owner has
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// Publish marks a form published and sets the share token if none exists.
	// Returns the updated form.
	Publish(ctx context.Context, id int64, shareToken string) (*models.Form, error)

	// IncrementSubmissions atomically adds one to the response counter
	IncrementSubmissions(ctx context.Context, id int64) error

	// TransferOwnership reassigns every form of fromOwner to toOwner
	TransferOwnership(ctx context.Context, fromOwner, toOwner string) (int64, error)
}
