package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"formzen/internal/cache"
	"formzen/internal/config"
	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
	"formzen/internal/domain/services"
	"formzen/internal/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// identityService implements the IdentityService interface
type identityService struct {
	userRepo  repositories.UserRepository
	formRepo  repositories.FormRepository
	txManager repositories.TransactionManager
	cache     cache.Cache
	logger    *slog.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	userRepo repositories.UserRepository,
	formRepo repositories.FormRepository,
	txManager repositories.TransactionManager,
	c cache.Cache,
	logger *slog.Logger,
) services.IdentityService {
	return &identityService{
		userRepo:  userRepo,
		formRepo:  formRepo,
		txManager: txManager,
		cache:     c,
		logger:    logger,
	}
}

// MergeIdentities links an anonymous identity into a named account. Forms
// move to the named identity, a higher paid tier held by the anonymous
// identity carries over, and the anonymous identity is deleted. All three
// steps commit together.
func (s *identityService) MergeIdentities(ctx context.Context, anonymous, named *models.User) (*models.MergeResult, error) {
	if anonymous == nil || named == nil {
		return nil, &domain.UnauthorizedError{Message: "both sessions are required to link accounts"}
	}
	if !anonymous.IsAnonymous {
		return nil, &domain.ValidationError{Message: "source identity is not anonymous"}
	}
	if named.IsAnonymous {
		return nil, &domain.ValidationError{Message: "target identity must be a named account"}
	}
	if anonymous.ID == named.ID {
		return nil, &domain.ValidationError{Message: "cannot link an identity to itself"}
	}

	result := &models.MergeResult{
		FromUserID: anonymous.ID,
		ToUserID:   named.ID,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		// reload both inside the transaction so a concurrent webhook is seen
		from, err := s.userRepo.GetByID(ctx, anonymous.ID)
		if err != nil {
			return fmt.Errorf("load anonymous identity: %w", err)
		}
		to, err := s.userRepo.GetByID(ctx, named.ID)
		if err != nil {
			return fmt.Errorf("load named identity: %w", err)
		}

		moved, err := s.formRepo.TransferOwnership(ctx, from.ID, to.ID)
		if err != nil {
			return err
		}
		result.FormsTransferred = moved

		if from.Subscription.IsPaid() && from.Subscription.Rank() > to.Subscription.Rank() {
			if err := s.userRepo.SetSubscription(ctx, to.ID, from.Subscription); err != nil {
				return err
			}
			tier := from.Subscription
			result.CarriedTier = &tier
		}

		return s.userRepo.Delete(ctx, from.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, cache.TagUserForms, cache.OwnerTag(anonymous.ID), cache.OwnerTag(named.ID)); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err)
	}
	metrics.IdentityMergesTotal.Inc()

	carried := ""
	if result.CarriedTier != nil {
		carried = string(*result.CarriedTier)
	}
	s.logger.Info("identities merged",
		"from_user_id", result.FromUserID,
		"to_user_id", result.ToUserID,
		"forms_transferred", result.FormsTransferred,
		"carried_tier", carried,
	)

	return result, nil
}

// UpdateProfile changes the display name and image of a named identity
func (s *identityService) UpdateProfile(ctx context.Context, user *models.User, req *services.UpdateProfileRequest) (*models.User, error) {
	if user == nil {
		return nil, &domain.UnauthorizedError{}
	}
	if user.IsAnonymous {
		return nil, &domain.ForbiddenError{Message: "sign in to edit your profile"}
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Image != nil {
		trimmed := strings.TrimSpace(*req.Image)
		if trimmed == "" {
			req.Image = nil
		} else {
			req.Image = &trimmed
		}
	}

	if err := s.validateProfile(req); err != nil {
		return nil, domain.NewValidationError("Invalid profile", err)
	}

	updated := *user
	updated.Name = req.Name
	updated.Image = req.Image

	if err := s.userRepo.UpdateProfile(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", user.ID)

	return &updated, nil
}

// validateProfile validates a profile update request
func (s *identityService) validateProfile(req *services.UpdateProfileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(config.MinProfileNameLength, config.MaxProfileNameLength),
		),
		validation.Field(&req.Image, is.URL),
	)
}
