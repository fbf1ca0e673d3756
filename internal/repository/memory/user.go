package memory

import (
	"context"
	"fmt"
	"time"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"
)

// UserRepository is the in-memory UserRepository
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository over store
func NewUserRepository(store *Store) repositories.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	s := r.store
	defer s.lockWrite(ctx)()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if user.Subscription == "" {
		user.Subscription = models.TierFree
	}
	s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}
	return &user, nil
}

func (r *UserRepository) UpsertNamed(ctx context.Context, user *models.User) error {
	s := r.store
	defer s.lockWrite(ctx)()

	now := time.Now()
	existing, ok := s.users[user.ID]
	if !ok {
		user.Subscription = models.TierFree
		user.IsAnonymous = false
		user.CreatedAt = now
		user.UpdatedAt = now
		s.users[user.ID] = *user
		return nil
	}

	existing.Email = user.Email
	if existing.Name == "" {
		existing.Name = user.Name
	}
	if existing.Image == nil {
		existing.Image = user.Image
	}
	existing.IsAnonymous = false
	existing.UpdatedAt = now
	s.users[user.ID] = existing
	*user = existing
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	s := r.store
	defer s.lockWrite(ctx)()

	existing, ok := s.users[user.ID]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", user.ID)}
	}
	existing.Name = user.Name
	existing.Image = user.Image
	existing.UpdatedAt = time.Now()
	s.users[user.ID] = existing
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *UserRepository) SetSubscription(ctx context.Context, id string, tier models.Tier) error {
	s := r.store
	defer s.lockWrite(ctx)()

	existing, ok := s.users[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}
	existing.Subscription = tier
	existing.UpdatedAt = time.Now()
	s.users[id] = existing
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	defer s.lockWrite(ctx)()

	if _, ok := s.users[id]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}
	delete(s.users, id)
	return nil
}
