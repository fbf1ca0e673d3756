package forms

import (
	"context"
	"log/slog"
	"time"

	"formzen/internal/cache"
	"formzen/internal/config"
	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
	"formzen/internal/domain/services"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// formService implements the FormService interface
type formService struct {
	formRepo       repositories.FormRepository
	submissionRepo repositories.SubmissionRepository
	cache          cache.Cache
	logger         *slog.Logger
}

// NewFormService creates a new form lifecycle service
func NewFormService(
	formRepo repositories.FormRepository,
	submissionRepo repositories.SubmissionRepository,
	c cache.Cache,
	logger *slog.Logger,
) services.FormService {
	return &formService{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		cache:          c,
		logger:         logger,
	}
}

// Create persists a new draft owned by owner
func (s *formService) Create(ctx context.Context, owner *models.User, content models.FormContent) (*models.Form, error) {
	if owner == nil {
		return nil, &domain.UnauthorizedError{Message: "sign in or start a session to create forms"}
	}
	if err := ValidateContent(&content); err != nil {
		return nil, err
	}

	now := time.Now()
	form := &models.Form{
		OwnerID:   owner.ID,
		Content:   content,
		Published: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.TagUserForms, cache.OwnerTag(owner.ID))

	s.logger.Info("form created",
		"id", form.ID,
		"owner_id", owner.ID,
		"fields", len(content.FormFields),
	)

	return form, nil
}

// Publish moves a draft to published. Publishing an already-published form
// succeeds and keeps its share token.
func (s *formService) Publish(ctx context.Context, formID int64, requester *models.User) (*models.Form, error) {
	if requester == nil {
		return nil, &domain.UnauthorizedError{Message: "sign in to publish forms"}
	}

	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	if !form.OwnedBy(requester.ID) {
		s.logger.Warn("publish denied",
			"form_id", formID,
			"requester_id", requester.ID,
		)
		return nil, &domain.ForbiddenError{Message: "you can only publish your own forms"}
	}

	if form.Published && form.ShareToken != nil {
		return form, nil
	}

	form, err = s.formRepo.Publish(ctx, formID, uuid.NewString())
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.TagUserForms, cache.OwnerTag(form.OwnerID), cache.FormTag(form.ID))

	s.logger.Info("form published",
		"id", form.ID,
		"owner_id", form.OwnerID,
	)

	return form, nil
}

// Get loads a form with no ownership check
func (s *formService) Get(ctx context.Context, formID int64) (*models.Form, error) {
	var cached models.Form
	if ok, err := s.cache.Get(ctx, cache.FormKey(formID), &cached); err != nil {
		s.logger.Warn("form cache read failed", "form_id", formID, "error", err)
	} else if ok {
		return &cached, nil
	}

	// a write to the form or an ownership move bumps one of these tags
	stamp, stampErr := s.cache.Stamp(ctx, cache.FormTag(formID), cache.TagUserForms)

	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	if stampErr != nil {
		s.logger.Warn("form cache stamp failed", "form_id", formID, "error", stampErr)
		return form, nil
	}
	if err := s.cache.Set(ctx, cache.FormKey(formID), form, stamp, cache.FormTag(formID), cache.OwnerTag(form.OwnerID)); err != nil {
		s.logger.Warn("form cache write failed", "form_id", formID, "error", err)
	}

	return form, nil
}

// GetForOwner loads a form for its edit view
func (s *formService) GetForOwner(ctx context.Context, formID int64, requester *models.User) (*models.Form, error) {
	if requester == nil {
		return nil, &domain.UnauthorizedError{}
	}

	form, err := s.Get(ctx, formID)
	if err != nil {
		return nil, err
	}

	if !form.OwnedBy(requester.ID) {
		return nil, &domain.ForbiddenError{Message: "you do not have access to this form"}
	}

	return form, nil
}

// GetPublic loads a published form for respondents
func (s *formService) GetPublic(ctx context.Context, formID int64) (*models.Form, error) {
	form, err := s.Get(ctx, formID)
	if err != nil {
		return nil, err
	}

	if !form.Published {
		return nil, &domain.NotPublishedError{FormID: formID}
	}

	return form, nil
}

// GetByShareToken resolves a share link
func (s *formService) GetByShareToken(ctx context.Context, token string) (*models.Form, error) {
	if token == "" {
		return nil, &domain.NotFoundError{Message: "shared form not found"}
	}

	form, err := s.formRepo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !form.Published {
		return nil, &domain.NotPublishedError{FormID: form.ID}
	}

	return form, nil
}

// List returns the owner's forms, newest first
func (s *formService) List(ctx context.Context, owner *models.User) ([]models.Form, error) {
	if owner == nil {
		return nil, &domain.UnauthorizedError{}
	}

	key := cache.OwnerFormsKey(owner.ID)
	var cached []models.Form
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("form list cache read failed", "owner_id", owner.ID, "error", err)
	} else if ok {
		return cached, nil
	}

	stamp, stampErr := s.cache.Stamp(ctx, cache.TagUserForms, cache.OwnerTag(owner.ID))

	forms, err := s.formRepo.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	if stampErr != nil {
		s.logger.Warn("form list cache stamp failed", "owner_id", owner.ID, "error", stampErr)
		return forms, nil
	}
	if err := s.cache.Set(ctx, key, forms, stamp, cache.TagUserForms, cache.OwnerTag(owner.ID)); err != nil {
		s.logger.Warn("form list cache write failed", "owner_id", owner.ID, "error", err)
	}

	return forms, nil
}

// Dashboard aggregates the owner's forms and submission activity. The three
// reads are independent and run concurrently.
func (s *formService) Dashboard(ctx context.Context, owner *models.User) (*models.Dashboard, error) {
	if owner == nil {
		return nil, &domain.UnauthorizedError{}
	}

	var (
		forms           []models.Form
		submissionCount int
		recent          []models.SubmissionWithForm
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forms, err = s.List(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		submissionCount, err = s.submissionRepo.CountByOwner(gctx, owner.ID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.submissionRepo.RecentByOwner(gctx, owner.ID, config.RecentSubmissionsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dashboard := &models.Dashboard{
		DraftForms:        []models.Form{},
		PublishedForms:    []models.Form{},
		SubmissionCount:   submissionCount,
		RecentSubmissions: recent,
	}
	for _, f := range forms {
		if f.Published {
			dashboard.PublishedForms = append(dashboard.PublishedForms, f)
		} else {
			dashboard.DraftForms = append(dashboard.DraftForms, f)
		}
	}
	dashboard.DraftCount = len(dashboard.DraftForms)
	dashboard.PublishedCount = len(dashboard.PublishedForms)

	return dashboard, nil
}

// ListSubmissions returns a page of a form's submissions, newest first
func (s *formService) ListSubmissions(ctx context.Context, requester *models.User, req *services.ListSubmissionsRequest) ([]models.Submission, error) {
	form, err := s.GetForOwner(ctx, req.FormID, requester)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = config.DefaultSubmissionsPageSize
	}
	if limit > config.MaxSubmissionsPageSize {
		limit = config.MaxSubmissionsPageSize
	}
	offset := max(req.Offset, 0)

	return s.submissionRepo.ListByForm(ctx, form.ID, limit, offset)
}

// invalidate drops cached reads. Failures are logged; the next TTL expiry
// clears whatever was missed.
func (s *formService) invalidate(ctx context.Context, tags ...string) {
	if err := s.cache.Invalidate(ctx, tags...); err != nil {
		s.logger.Warn("cache invalidation failed", "tags", tags, "error", err)
	}
}
