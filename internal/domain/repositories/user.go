package repositories

import (
	"context"

	"formzen/internal/domain/models"
)

// UserRepository defines data access operations for identities
type UserRepository interface {
	// Create inserts a new identity (anonymous identities are created here)
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves an identity
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpsertNamed creates or refreshes a named identity from provider claims.
	// The stored subscription is never overwritten.
	UpsertNamed(ctx context.Context, user *models.User) error

	// UpdateProfile updates display name and image
	UpdateProfile(ctx context.Context, user *models.User) error

	// SetSubscription writes the entitlement tier (last write wins)
	SetSubscription(ctx context.Context, id string, tier models.Tier) error

	// Delete removes an identity
	Delete(ctx context.Context, id string) error
}
