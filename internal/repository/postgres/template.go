package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
)

// PostgresTemplateRepository stores user templates; the block list is a JSONB column
type PostgresTemplateRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(config *RepositoryConfig) repositories.TemplateRepository {
	return &PostgresTemplateRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a user template
func (r *PostgresTemplateRepository) Create(ctx context.Context, tmpl *models.Template) error {
	if tmpl.UserID == nil {
		return fmt.Errorf("%w: template owner is required", domain.ErrValidation)
	}
	blocks, err := json.Marshal(tmpl.Blocks)
	if err != nil {
		return fmt.Errorf("marshal template blocks: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, description, blocks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Templates)

	createdAt := time.Now()
	if tmpl.CreatedAt != nil {
		createdAt = *tmpl.CreatedAt
	}

	_, err = GetExecutor(ctx, r.pool).Exec(ctx, query,
		tmpl.ID,
		*tmpl.UserID,
		tmpl.Name,
		tmpl.Description,
		blocks,
		createdAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("template %s: %w", tmpl.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's templates
func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id, userID string) (*models.Template, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, description, blocks, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Templates)

	tmpl, err := scanTemplate(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, wrapGetError(err, "template", id)
	}
	return tmpl, nil
}

// List returns the user's templates, oldest first
func (r *PostgresTemplateRepository) List(ctx context.Context, userID string) ([]models.Template, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, description, blocks, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at, id
	`, r.tables.Templates)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// Update overwrites name, description and blocks
func (r *PostgresTemplateRepository) Update(ctx context.Context, tmpl *models.Template) error {
	if tmpl.UserID == nil {
		return fmt.Errorf("template %s: %w", tmpl.ID, domain.ErrNotFound)
	}
	blocks, err := json.Marshal(tmpl.Blocks)
	if err != nil {
		return fmt.Errorf("marshal template blocks: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, blocks = $3
		WHERE id = $4 AND user_id = $5
	`, r.tables.Templates)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		tmpl.Name,
		tmpl.Description,
		blocks,
		tmpl.ID,
		*tmpl.UserID,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return requireAffected(tag, "template", tmpl.ID)
}

// Delete removes a user template
func (r *PostgresTemplateRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Templates)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireAffected(tag, "template", id)
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	var tmpl models.Template
	var userID string
	var blocks []byte
	var createdAt time.Time
	if err := row.Scan(&tmpl.ID, &userID, &tmpl.Name, &tmpl.Description, &blocks, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blocks, &tmpl.Blocks); err != nil {
		return nil, fmt.Errorf("unmarshal template blocks: %w", err)
	}
	if tmpl.Blocks == nil {
		tmpl.Blocks = []models.TemplateBlock{}
	}
	tmpl.UserID = &userID
	tmpl.CreatedAt = &createdAt
	return &tmpl, nil
}
