package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"time"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
)

// SubmissionRepository is the in-memory SubmissionRepository
type SubmissionRepository struct {
	store *Store
}

// NewSubmissionRepository creates a submission repository over store
func NewSubmissionRepository(store *Store) repositories.SubmissionRepository {
	return &SubmissionRepository{store: store}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	s := r.store
	defer s.lockWrite(ctx)()

	if _, ok := s.forms[submission.FormID]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("form %d not found", submission.FormID)}
	}

	submission.ID = s.nextSubmitID
	s.nextSubmitID++
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now()
	}

	stored := *submission
	stored.Content = maps.Clone(submission.Content)
	s.submissions = append(s.submissions, stored)
	return nil
}

func (r *SubmissionRepository) ListByForm(ctx context.Context, formID int64, limit, offset int) ([]models.Submission, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []models.Submission{}
	for _, sub := range s.submissions {
		if sub.FormID == formID {
			sub.Content = maps.Clone(sub.Content)
			matched = append(matched, sub)
		}
	}
	sortNewestFirst(matched, func(i int) (time.Time, int64) { return matched[i].CreatedAt, matched[i].ID })

	return page(matched, limit, offset), nil
}

func (r *SubmissionRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, sub := range s.submissions {
		if form, ok := s.forms[sub.FormID]; ok && form.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *SubmissionRepository) RecentByOwner(ctx context.Context, ownerID string, limit int) ([]models.SubmissionWithForm, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := []models.SubmissionWithForm{}
	for _, sub := range s.submissions {
		form, ok := s.forms[sub.FormID]
		if !ok || form.OwnerID != ownerID {
			continue
		}
		sub.Content = maps.Clone(sub.Content)
		recent = append(recent, models.SubmissionWithForm{Submission: sub, FormTitle: form.Content.FormTitle})
	}
	sortNewestFirst(recent, func(i int) (time.Time, int64) { return recent[i].CreatedAt, recent[i].ID })

	return page(recent, limit, 0), nil
}

func sortNewestFirst[T any](items []T, key func(i int) (time.Time, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(i)
		tj, idj := key(j)
		if ti.Equal(tj) {
			return idi > idj
		}
		return ti.After(tj)
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
