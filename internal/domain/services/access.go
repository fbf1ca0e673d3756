package services

import (
	"context"

	"formzen/internal/domain/models"
)

// AccessGate resolves identities and decides entitlement.
type AccessGate interface {
	// ResolveNamed maps a verified provider session onto a stored identity
	ResolveNamed(ctx context.Context, claims *models.SessionClaims) (*models.User, error)

	// ResolveAnonymous loads the identity behind an anonymous session
	ResolveAnonymous(ctx context.Context, userID string) (*models.User, error)

	// EnsureIdentity returns current when non-nil; otherwise it creates an
	// anonymous identity and returns it with a new session token.
	EnsureIdentity(ctx context.Context, current *models.User) (*models.User, string, error)

	// EffectiveTier is the tier used for gating decisions
	EffectiveTier(user *models.User) models.Tier

	// IsUpgraded reports paid entitlement (never true for anonymous identities)
	IsUpgraded(user *models.User) bool

	// CheckGenerate denies generation once a free identity hits the form ceiling
	CheckGenerate(ctx context.Context, user *models.User) error

	// CheckPublish requires a resolved identity
	CheckPublish(ctx context.Context, user *models.User) error

	// Usage reports the caller's allowance
	Usage(ctx context.Context, user *models.User) (*models.Usage, error)
}

// UpdateProfileRequest updates the caller's display fields
type UpdateProfileRequest struct {
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// IdentityService covers account linking and profile edits
type IdentityService interface {
	// MergeIdentities moves everything owned by the anonymous identity to the
	// named one in a single transaction
	MergeIdentities(ctx context.Context, anonymous, named *models.User) (*models.MergeResult, error)

	// UpdateProfile changes name/image of a named identity
	UpdateProfile(ctx context.Context, user *models.User, req *UpdateProfileRequest) (*models.User, error)
}
