package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
)

// PostgresProfileRepository stores the university and major fields per user
type PostgresProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(config *RepositoryConfig) repositories.ProfileRepository {
	return &PostgresProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get returns the stored profile or ErrNotFound
func (r *PostgresProfileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT user_id, university, major, created_at, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tables.UserProfiles)

	var p models.UserProfile
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.University,
		&p.Major,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, wrapGetError(err, "profile", userID)
	}
	return &p, nil
}

// Upsert creates or updates the profile row
func (r *PostgresProfileRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, university, major, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET university = EXCLUDED.university, major = EXCLUDED.major, updated_at = EXCLUDED.updated_at
	`, r.tables.UserProfiles)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query, p.ID, p.University, p.Major, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
