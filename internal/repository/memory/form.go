package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
)

// FormRepository is the in-memory FormRepository
type FormRepository struct {
	store *Store
}

// NewFormRepository creates a form repository over store
func NewFormRepository(store *Store) repositories.FormRepository {
	return &FormRepository{store: store}
}

func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	s := r.store
	defer s.lockWrite(ctx)()

	if _, ok := s.users[form.OwnerID]; !ok {
		return fmt.Errorf("owner %s: %w", form.OwnerID, domain.ErrNotFound)
	}

	now := time.Now()
	form.ID = s.nextFormID
	s.nextFormID++
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	if form.UpdatedAt.IsZero() {
		form.UpdatedAt = now
	}
	s.forms[form.ID] = cloneForm(*form)
	return nil
}

func (r *FormRepository) GetByID(ctx context.Context, id int64) (*models.Form, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	form, ok := s.forms[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("form %d not found", id)}
	}
	f := cloneForm(form)
	return &f, nil
}

func (r *FormRepository) GetByShareToken(ctx context.Context, token string) (*models.Form, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, form := range s.forms {
		if form.ShareToken != nil && *form.ShareToken == token {
			f := cloneForm(form)
			return &f, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "shared form not found"}
}

func (r *FormRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Form, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	forms := []models.Form{}
	for _, form := range s.forms {
		if form.OwnerID == ownerID {
			forms = append(forms, cloneForm(form))
		}
	}
	sort.Slice(forms, func(i, j int) bool {
		if forms[i].CreatedAt.Equal(forms[j].CreatedAt) {
			return forms[i].ID > forms[j].ID
		}
		return forms[i].CreatedAt.After(forms[j].CreatedAt)
	})
	return forms, nil
}

func (r *FormRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, form := range s.forms {
		if form.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *FormRepository) Publish(ctx context.Context, id int64, shareToken string) (*models.Form, error) {
	s := r.store
	defer s.lockWrite(ctx)()

	form, ok := s.forms[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("form %d not found", id)}
	}
	form.Published = true
	if form.ShareToken == nil {
		token := shareToken
		form.ShareToken = &token
	}
	form.UpdatedAt = time.Now()
	s.forms[id] = form

	f := cloneForm(form)
	return &f, nil
}

func (r *FormRepository) IncrementSubmissions(ctx context.Context, id int64) error {
	s := r.store
	defer s.lockWrite(ctx)()

	form, ok := s.forms[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("form %d not found", id)}
	}
	form.Submissions++
	s.forms[id] = form
	return nil
}

func (r *FormRepository) TransferOwnership(ctx context.Context, fromOwner, toOwner string) (int64, error) {
	s := r.store
	defer s.lockWrite(ctx)()

	var moved int64
	for id, form := range s.forms {
		if form.OwnerID == fromOwner {
			form.OwnerID = toOwner
			form.UpdatedAt = time.Now()
			s.forms[id] = form
			moved++
		}
	}
	return moved, nil
}

// cloneForm copies the slices and pointers a caller could mutate
func cloneForm(f models.Form) models.Form {
	fields := make([]models.Field, len(f.Content.FormFields))
	for i, field := range f.Content.FormFields {
		field.InputTypes = append([]string(nil), field.InputTypes...)
		fields[i] = field
	}
	f.Content.FormFields = fields
	if f.ShareToken != nil {
		token := *f.ShareToken
		f.ShareToken = &token
	}
	return f
}
