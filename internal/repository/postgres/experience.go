package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
)

// PostgresExperienceRepository implements the ExperienceRepository interface
type PostgresExperienceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewExperienceRepository creates a new experience repository
func NewExperienceRepository(config *RepositoryConfig) repositories.ExperienceRepository {
	return &PostgresExperienceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const experienceColumns = `id, user_id, title, content, category, source, document_id, created_at, updated_at`

// Create inserts an experience
func (r *PostgresExperienceRepository) Create(ctx context.Context, exp *models.Experience) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Experiences, experienceColumns)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		exp.ID,
		exp.UserID,
		exp.Title,
		exp.Content,
		exp.Category,
		string(exp.Source),
		exp.DocumentID,
		exp.CreatedAt,
		exp.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("experience %s: %w", exp.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create experience: %w", err)
	}
	return nil
}

// GetByID retrieves an experience owned by the user
func (r *PostgresExperienceRepository) GetByID(ctx context.Context, id, userID string) (*models.Experience, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND user_id = $2
	`, experienceColumns, r.tables.Experiences)

	exp, err := scanExperience(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, wrapGetError(err, "experience", id)
	}
	return exp, nil
}

// List returns matching experiences, most recently updated first. Empty filter fields match everything.
func (r *PostgresExperienceRepository) List(ctx context.Context, userID string, filter models.ExperienceFilter) ([]models.Experience, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		  AND ($2 = '' OR source = $2)
		  AND ($3 = '' OR category = $3)
		ORDER BY updated_at DESC
	`, experienceColumns, r.tables.Experiences)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, string(filter.Source), filter.Category)
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	defer rows.Close()

	exps := []models.Experience{}
	for rows.Next() {
		exp, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		exps = append(exps, *exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experiences: %w", err)
	}
	return exps, nil
}

// Update overwrites title, content and category
func (r *PostgresExperienceRepository) Update(ctx context.Context, exp *models.Experience) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, category = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`, r.tables.Experiences)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		exp.Title,
		exp.Content,
		exp.Category,
		exp.UpdatedAt,
		exp.ID,
		exp.UserID,
	)
	if err != nil {
		return fmt.Errorf("update experience: %w", err)
	}
	return requireAffected(tag, "experience", exp.ID)
}

// Delete removes an experience
func (r *PostgresExperienceRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Experiences)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete experience: %w", err)
	}
	return requireAffected(tag, "experience", id)
}

// Categories returns the distinct non-empty categories in use, sorted
func (r *PostgresExperienceRepository) Categories(ctx context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT category FROM %s
		WHERE user_id = $1 AND category IS NOT NULL AND category <> ''
		ORDER BY category
	`, r.tables.Experiences)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func scanExperience(row rowScanner) (*models.Experience, error) {
	var exp models.Experience
	var source string
	if err := row.Scan(
		&exp.ID,
		&exp.UserID,
		&exp.Title,
		&exp.Content,
		&exp.Category,
		&source,
		&exp.DocumentID,
		&exp.CreatedAt,
		&exp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	exp.Source = models.ExperienceSource(source)
	return &exp, nil
}
