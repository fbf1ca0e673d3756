package postgres

import (
	"context"
	"fmt"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new identity
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, image, subscription, is_anonymous, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, r.tables.Users)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Image,
		user.Subscription,
		user.IsAnonymous,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("user %s already exists", user.ID)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves an identity
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, image, subscription, is_anonymous, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Users)

	var user models.User
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Image,
		&user.Subscription,
		&user.IsAnonymous,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// UpsertNamed inserts a named identity or refreshes its profile fields.
// subscription is only written on insert.
func (r *PostgresUserRepository) UpsertNamed(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, image, subscription, is_anonymous, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = CASE WHEN %s.name = '' THEN EXCLUDED.name ELSE %s.name END,
		    image = COALESCE(%s.image, EXCLUDED.image),
		    is_anonymous = FALSE,
		    updated_at = NOW()
		RETURNING name, image, subscription, is_anonymous, created_at, updated_at
	`, r.tables.Users, r.tables.Users, r.tables.Users, r.tables.Users)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Image,
		models.TierFree,
	).Scan(&user.Name, &user.Image, &user.Subscription, &user.IsAnonymous, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// UpdateProfile updates display name and image
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, image = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Users)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, user.ID, user.Name, user.Image).Scan(&user.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", user.ID)}
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// SetSubscription writes the entitlement tier
func (r *PostgresUserRepository) SetSubscription(ctx context.Context, id string, tier models.Tier) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET subscription = $2, updated_at = NOW()
		WHERE id = $1
	`, r.tables.Users)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, tier)
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}

	return nil
}

// Delete removes an identity
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Users)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}

	return nil
}
