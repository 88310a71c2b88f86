package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, parent_id, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Folders)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ID,
		folder.UserID,
		folder.ParentID,
		folder.Name,
		folder.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, parent_id, name, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Folders)

	var folder models.Folder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedAt,
	)
	if err != nil {
		return nil, wrapGetError(err, "folder", id)
	}

	return &folder, nil
}

// List returns the user's folders by name, each with the number of documents filed in it
func (r *PostgresFolderRepository) List(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.user_id, f.parent_id, f.name, f.created_at, COUNT(d.id) AS document_count
		FROM %s f
		LEFT JOIN %s d ON d.folder_id = f.id
		WHERE f.user_id = $1
		GROUP BY f.id
		ORDER BY f.name, f.created_at
	`, r.tables.Folders, r.tables.Documents)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.ParentID, &f.Name, &f.CreatedAt, &f.DocumentCount); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2
		WHERE id = $3 AND user_id = $4
	`, r.tables.Folders)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.ID,
		folder.UserID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	return requireAffected(tag, "folder", folder.ID)
}

// Delete deletes a folder. Child folders move to the root via ON DELETE SET NULL.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Folders)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	return requireAffected(tag, "folder", id)
}
