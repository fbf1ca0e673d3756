package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSubmissionRepository implements the SubmissionRepository interface
type PostgresSubmissionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(config *RepositoryConfig) repositories.SubmissionRepository {
	return &PostgresSubmissionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a submission
func (r *PostgresSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	content, err := json.Marshal(submission.Content)
	if err != nil {
		return fmt.Errorf("encode submission content: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (form_id, content, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Submissions)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		submission.FormID,
		content,
		submission.CreatedAt,
	).Scan(&submission.ID, &submission.CreatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("form %d not found", submission.FormID)}
		}
		return fmt.Errorf("create submission: %w", err)
	}

	return nil
}

// ListByForm retrieves submissions of a form, newest first
func (r *PostgresSubmissionRepository) ListByForm(ctx context.Context, formID int64, limit, offset int) ([]models.Submission, error) {
	query := fmt.Sprintf(`
		SELECT id, form_id, content, created_at
		FROM %s
		WHERE form_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, r.tables.Submissions)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, formID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	submissions := []models.Submission{}
	for rows.Next() {
		var (
			s       models.Submission
			content []byte
		)
		if err := rows.Scan(&s.ID, &s.FormID, &content, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal(content, &s.Content); err != nil {
			return nil, fmt.Errorf("decode submission %d: %w", s.ID, err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return submissions, nil
}

// CountByOwner counts submissions across all forms of an owner
func (r *PostgresSubmissionRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s s
		JOIN %s f ON f.id = s.form_id
		WHERE f.owner_id = $1
	`, r.tables.Submissions, r.tables.Forms)

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}

	return count, nil
}

// RecentByOwner returns the latest submissions across an owner's forms
func (r *PostgresSubmissionRepository) RecentByOwner(ctx context.Context, ownerID string, limit int) ([]models.SubmissionWithForm, error) {
	query := fmt.Sprintf(`
		SELECT s.id, s.form_id, s.content, s.created_at, f.content->>'formTitle'
		FROM %s s
		JOIN %s f ON f.id = s.form_id
		WHERE f.owner_id = $1
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2
	`, r.tables.Submissions, r.tables.Forms)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	defer rows.Close()

	recent := []models.SubmissionWithForm{}
	for rows.Next() {
		var (
			s       models.SubmissionWithForm
			content []byte
		)
		if err := rows.Scan(&s.ID, &s.FormID, &content, &s.CreatedAt, &s.FormTitle); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal(content, &s.Content); err != nil {
			return nil, fmt.Errorf("decode submission %d: %w", s.ID, err)
		}
		recent = append(recent, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return recent, nil
}
