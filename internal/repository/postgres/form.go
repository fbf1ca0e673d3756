package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFormRepository implements the FormRepository interface
type PostgresFormRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFormRepository creates a new form repository
func NewFormRepository(config *RepositoryConfig) repositories.FormRepository {
	return &PostgresFormRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const formColumns = "id, owner_id, content, published, submissions, share_token, created_at, updated_at"

// Create inserts a new draft form
func (r *PostgresFormRepository) Create(ctx context.Context, form *models.Form) error {
	content, err := json.Marshal(form.Content)
	if err != nil {
		return fmt.Errorf("encode form content: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, content, published, submissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Forms)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		form.OwnerID,
		content,
		form.Published,
		form.Submissions,
		form.CreatedAt,
		form.UpdatedAt,
	).Scan(&form.ID, &form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("owner %s: %w", form.OwnerID, domain.ErrNotFound)
		}
		return fmt.Errorf("create form: %w", err)
	}

	return nil
}

// GetByID retrieves a form by ID
func (r *PostgresFormRepository) GetByID(ctx context.Context, id int64) (*models.Form, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, formColumns, r.tables.Forms)

	form, err := scanForm(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("form %d not found", id)}
		}
		return nil, fmt.Errorf("get form: %w", err)
	}

	return form, nil
}

// GetByShareToken retrieves a form by its share token
func (r *PostgresFormRepository) GetByShareToken(ctx context.Context, token string) (*models.Form, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE share_token = $1`, formColumns, r.tables.Forms)

	form, err := scanForm(GetExecutor(ctx, r.pool).QueryRow(ctx, query, token))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: "shared form not found"}
		}
		return nil, fmt.Errorf("get form by share token: %w", err)
	}

	return form, nil
}

// ListByOwner retrieves all forms of an owner, newest first
func (r *PostgresFormRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Form, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, formColumns, r.tables.Forms)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	forms := []models.Form{}
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		forms = append(forms, *form)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forms: %w", err)
	}

	return forms, nil
}

// CountByOwner returns how many forms an owner has
func (r *PostgresFormRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE owner_id = $1`, r.tables.Forms)

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count forms: %w", err)
	}

	return count, nil
}

// Publish sets published and keeps an existing share token (COALESCE)
func (r *PostgresFormRepository) Publish(ctx context.Context, id int64, shareToken string) (*models.Form, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET published = TRUE,
		    share_token = COALESCE(share_token, $2),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, r.tables.Forms, formColumns)

	form, err := scanForm(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, shareToken))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("form %d not found", id)}
		}
		return nil, fmt.Errorf("publish form: %w", err)
	}

	return form, nil
}

// IncrementSubmissions adds one to the counter. The UPDATE takes a row lock,
// so concurrent submissions serialize here and none are lost.
func (r *PostgresFormRepository) IncrementSubmissions(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET submissions = submissions + 1
		WHERE id = $1
	`, r.tables.Forms)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment submissions: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("form %d not found", id)}
	}

	return nil
}

// TransferOwnership reassigns every form of fromOwner to toOwner
func (r *PostgresFormRepository) TransferOwnership(ctx context.Context, fromOwner, toOwner string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET owner_id = $2, updated_at = NOW()
		WHERE owner_id = $1
	`, r.tables.Forms)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, fromOwner, toOwner)
	if err != nil {
		return 0, fmt.Errorf("transfer forms: %w", err)
	}

	return result.RowsAffected(), nil
}

// scanForm reads one row in formColumns order
func scanForm(row pgx.Row) (*models.Form, error) {
	var (
		form    models.Form
		content []byte
	)
	err := row.Scan(
		&form.ID,
		&form.OwnerID,
		&content,
		&form.Published,
		&form.Submissions,
		&form.ShareToken,
		&form.CreatedAt,
		&form.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(content, &form.Content); err != nil {
		return nil, fmt.Errorf("decode form content: %w", err)
	}

	return &form, nil
}
