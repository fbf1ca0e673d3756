package forms

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"formzen/internal/cache"
	"formzen/internal/config"
	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
	"formzen/internal/domain/services"
	"formzen/internal/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// submissionService implements the SubmissionService interface
type submissionService struct {
	formRepo       repositories.FormRepository
	submissionRepo repositories.SubmissionRepository
	txManager      repositories.TransactionManager
	uploader       services.Uploader
	cache          cache.Cache
	logger         *slog.Logger
}

// NewSubmissionService creates a new submission collector
func NewSubmissionService(
	formRepo repositories.FormRepository,
	submissionRepo repositories.SubmissionRepository,
	txManager repositories.TransactionManager,
	uploader services.Uploader,
	c cache.Cache,
	logger *slog.Logger,
) services.SubmissionService {
	return &submissionService{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		txManager:      txManager,
		uploader:       uploader,
		cache:          c,
		logger:         logger,
	}
}

// Submit stores one response to a published form. Either the submission row
// and the counter increment are both persisted or nothing is.
func (s *submissionService) Submit(ctx context.Context, formID int64, values map[string][]string, files map[string]models.Attachment) (*models.Submission, error) {
	submission, err := s.submit(ctx, formID, values, files)
	metrics.SubmissionsTotal.WithLabelValues(submissionOutcome(err)).Inc()
	return submission, err
}

func (s *submissionService) submit(ctx context.Context, formID int64, values map[string][]string, files map[string]models.Attachment) (*models.Submission, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.Published {
		return nil, &domain.NotPublishedError{FormID: formID}
	}

	content, err := s.validateValues(form, values, files)
	if err != nil {
		return nil, err
	}

	// Uploads happen before anything is written so a failed upload leaves no row.
	for _, name := range sortedKeys(files) {
		file := files[name]
		if file.Empty() {
			if _, hasText := content[name]; !hasText {
				content[name] = ""
			}
			continue
		}

		uploaded, err := s.uploader.Upload(ctx, name, file)
		if err != nil {
			if errors.Is(err, domain.ErrConfiguration) {
				return nil, err
			}
			s.logger.Error("attachment upload failed",
				"form_id", formID,
				"field", name,
				"filename", file.Filename,
				"error", err,
			)
			return nil, &domain.UploadError{Field: name, Err: err}
		}
		content[name] = uploaded.URL
	}

	submission := &models.Submission{
		FormID:    formID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.submissionRepo.Create(ctx, submission); err != nil {
			return err
		}
		return s.formRepo.IncrementSubmissions(ctx, formID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, cache.TagUserForms, cache.OwnerTag(form.OwnerID), cache.FormTag(formID)); err != nil {
		s.logger.Warn("cache invalidation failed", "form_id", formID, "error", err)
	}

	s.logger.Info("submission stored",
		"id", submission.ID,
		"form_id", formID,
		"fields", len(content),
	)

	return submission, nil
}

// validateValues checks every form field, text value and attachment key and
// collects all violations. Repeated values for one key (checkbox groups) are
// joined with ", ".
func (s *submissionService) validateValues(form *models.Form, values map[string][]string, files map[string]models.Attachment) (map[string]string, error) {
	content := make(map[string]string, len(values)+len(files))
	fieldErrs := validation.Errors{}

	for _, name := range sortedKeys(values) {
		if _, ok := form.Content.FieldByName(name); !ok {
			fieldErrs[name] = errors.New("is not a field of this form")
			continue
		}

		parts := make([]string, 0, len(values[name]))
		for _, v := range values[name] {
			if v = strings.TrimSpace(v); v != "" {
				parts = append(parts, v)
			}
		}
		value := strings.Join(parts, ", ")

		// a filled attachment satisfies a text+file field left blank
		if value == "" && !files[name].Empty() {
			continue
		}

		fieldErrs[name] = validation.Validate(value,
			validation.Required.Error("cannot be blank"),
			validation.RuneLength(0, config.MaxSubmissionValueLength),
		)
		content[name] = value
	}

	// unchecked checkboxes and empty file inputs are absent from the body
	for _, field := range form.Content.FormFields {
		if field.HasInputType("checkbox") || field.HasInputType("file") {
			continue
		}
		if _, sent := values[field.Name]; !sent {
			fieldErrs[field.Name] = errors.New("cannot be blank")
		}
	}

	for _, name := range sortedKeys(files) {
		field, ok := form.Content.FieldByName(name)
		if !ok {
			fieldErrs[name] = errors.New("is not a field of this form")
			continue
		}
		if !field.HasInputType("file") && !files[name].Empty() {
			fieldErrs[name] = errors.New("does not accept file uploads")
		}
	}

	if err := fieldErrs.Filter(); err != nil {
		return nil, domain.NewValidationError("Please correct the highlighted fields", err)
	}

	return content, nil
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotPublished):
		return "not_published"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUpstream):
		return "upload_failed"
	default:
		return "error"
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
