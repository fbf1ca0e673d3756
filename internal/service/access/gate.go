package access

import (
	"context"
	"log/slog"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
	"formzen/internal/domain/services"
	"formzen/internal/plans"

	"github.com/google/uuid"
)

// AnonymousName is the display name given to materialized anonymous identities
const AnonymousName = "Anonymous"

// SessionIssuer signs session tokens for anonymous identities
type SessionIssuer interface {
	IssueAnonymous(userID string) (string, error)
}

// gate implements the AccessGate interface
type gate struct {
	userRepo repositories.UserRepository
	formRepo repositories.FormRepository
	plans    *plans.Registry
	issuer   SessionIssuer
	logger   *slog.Logger
}

// NewGate creates the access gate
func NewGate(
	userRepo repositories.UserRepository,
	formRepo repositories.FormRepository,
	registry *plans.Registry,
	issuer SessionIssuer,
	logger *slog.Logger,
) services.AccessGate {
	return &gate{
		userRepo: userRepo,
		formRepo: formRepo,
		plans:    registry,
		issuer:   issuer,
		logger:   logger,
	}
}

// ResolveNamed upserts the identity behind a verified provider session
func (g *gate) ResolveNamed(ctx context.Context, claims *models.SessionClaims) (*models.User, error) {
	if claims == nil || claims.GetUserID() == "" {
		return nil, &domain.UnauthorizedError{Message: "session has no subject"}
	}

	user := &models.User{
		ID:   claims.GetUserID(),
		Name: claims.DisplayName(),
	}
	if claims.Email != "" {
		email := claims.Email
		user.Email = &email
	}
	if claims.Picture != "" {
		picture := claims.Picture
		user.Image = &picture
	}

	if err := g.userRepo.UpsertNamed(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ResolveAnonymous loads the identity referenced by an anonymous session
func (g *gate) ResolveAnonymous(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, &domain.UnauthorizedError{}
	}
	return g.userRepo.GetByID(ctx, userID)
}

// EnsureIdentity materializes an anonymous identity when the caller has none
func (g *gate) EnsureIdentity(ctx context.Context, current *models.User) (*models.User, string, error) {
	if current != nil {
		return current, "", nil
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         AnonymousName,
		Subscription: models.TierFree,
		IsAnonymous:  true,
	}
	if err := g.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := g.issuer.IssueAnonymous(user.ID)
	if err != nil {
		return nil, "", err
	}

	g.logger.Info("anonymous identity created", "user_id", user.ID)

	return user, token, nil
}

// EffectiveTier is the stored tier for named identities; anonymous
// identities are always FREE regardless of what is stored.
func (g *gate) EffectiveTier(user *models.User) models.Tier {
	if user == nil || user.IsAnonymous || !user.Subscription.IsPaid() {
		return models.TierFree
	}
	return user.Subscription
}

// IsUpgraded reports paid entitlement
func (g *gate) IsUpgraded(user *models.User) bool {
	return g.EffectiveTier(user).IsPaid()
}

// CheckGenerate enforces the free form ceiling
func (g *gate) CheckGenerate(ctx context.Context, user *models.User) error {
	if user == nil {
		return &domain.UnauthorizedError{}
	}
	if g.IsUpgraded(user) {
		return nil
	}

	count, err := g.formRepo.CountByOwner(ctx, user.ID)
	if err != nil {
		return err
	}

	limit := g.plans.FreeFormLimit()
	if count >= limit {
		g.logger.Info("generation quota reached",
			"user_id", user.ID,
			"forms", count,
			"limit", limit,
		)
		return &domain.QuotaExceededError{Limit: limit, Used: count}
	}

	return nil
}

// CheckPublish requires a resolved identity; ownership is checked by the
// form service.
func (g *gate) CheckPublish(ctx context.Context, user *models.User) error {
	if user == nil {
		return &domain.UnauthorizedError{Message: "sign in to publish forms"}
	}
	return nil
}

// Usage reports the caller's allowance
func (g *gate) Usage(ctx context.Context, user *models.User) (*models.Usage, error) {
	if user == nil {
		return nil, &domain.UnauthorizedError{}
	}

	count, err := g.formRepo.CountByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	usage := &models.Usage{
		Tier:       g.EffectiveTier(user),
		Upgraded:   g.IsUpgraded(user),
		TotalForms: count,
	}
	if !usage.Upgraded {
		limit := g.plans.FreeFormLimit()
		remaining := max(limit-count, 0)
		usage.Limit = &limit
		usage.Remaining = &remaining
	}

	return usage, nil
}
