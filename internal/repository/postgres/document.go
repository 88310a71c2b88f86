package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface.
// Blocks live in their own table and are always written as a full set.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts the document and its blocks in one transaction
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.inTx(ctx, func(exec repositories.DBTX) error {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, user_id, title, target_char_count, writing_mode, document_type, folder_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, r.tables.Documents)

		_, err := exec.Exec(ctx, query,
			doc.ID,
			doc.UserID,
			doc.Title,
			doc.TargetCharCount,
			string(doc.WritingMode),
			documentTypeParam(doc.DocumentType),
			doc.FolderID,
			doc.CreatedAt,
			doc.UpdatedAt,
		)
		if err != nil {
			if IsPgDuplicateError(err) {
				return fmt.Errorf("document %s: %w", doc.ID, domain.ErrConflict)
			}
			if IsPgForeignKeyError(err) {
				return fmt.Errorf("folder for document: %w", domain.ErrNotFound)
			}
			return fmt.Errorf("create document: %w", err)
		}

		return r.insertBlocks(ctx, exec, doc.ID, doc.Blocks)
	})
}

// GetByID retrieves a document with its blocks ordered by position
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, userID string) (*models.Document, error) {
	exec := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT id, user_id, title, target_char_count, writing_mode, document_type, folder_id, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Documents)

	var doc models.Document
	var mode string
	var docType *string
	err := exec.QueryRow(ctx, query, id, userID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.TargetCharCount,
		&mode,
		&docType,
		&doc.FolderID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, wrapGetError(err, "document", id)
	}
	doc.WritingMode = models.WritingMode(mode)
	doc.DocumentType = documentTypeValue(docType)

	blocks, err := r.listBlocks(ctx, exec, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Blocks = blocks

	return &doc, nil
}

// List returns one page of document summaries with content character counts
func (r *PostgresDocumentRepository) List(ctx context.Context, userID string, opts repositories.DocumentListOptions) ([]models.DocumentSummary, int, error) {
	exec := GetExecutor(ctx, r.pool)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE user_id = $1 AND ($2::text IS NULL OR folder_id = $2)
	`, r.tables.Documents)

	var total int
	if err := exec.QueryRow(ctx, countQuery, userID, opts.FolderID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT d.id, d.title, d.target_char_count, d.writing_mode, d.document_type, d.folder_id,
		       COALESCE(SUM(char_length(b.content)), 0) AS char_count,
		       d.created_at, d.updated_at
		FROM %s d
		LEFT JOIN %s b ON b.document_id = d.id
		WHERE d.user_id = $1 AND ($2::text IS NULL OR d.folder_id = $2)
		GROUP BY d.id
		ORDER BY d.updated_at DESC
		LIMIT $3 OFFSET $4
	`, r.tables.Documents, r.tables.Blocks)

	rows, err := exec.Query(ctx, query, userID, opts.FolderID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.DocumentSummary
	for rows.Next() {
		var s models.DocumentSummary
		var mode string
		var docType *string
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.TargetCharCount,
			&mode,
			&docType,
			&s.FolderID,
			&s.CharCount,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		s.WritingMode = models.WritingMode(mode)
		s.DocumentType = documentTypeValue(docType)
		docs = append(docs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, total, nil
}

// Update overwrites document metadata
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, target_char_count = $2, writing_mode = $3, document_type = $4,
		    folder_id = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, r.tables.Documents)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		doc.Title,
		doc.TargetCharCount,
		string(doc.WritingMode),
		documentTypeParam(doc.DocumentType),
		doc.FolderID,
		doc.UpdatedAt,
		doc.ID,
		doc.UserID,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder for document: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w", err)
	}

	return requireAffected(tag, "document", doc.ID)
}

// ReplaceBlocks deletes the document's blocks and inserts blocks in their place
func (r *PostgresDocumentRepository) ReplaceBlocks(ctx context.Context, documentID string, blocks []models.Block) error {
	return r.inTx(ctx, func(exec repositories.DBTX) error {
		query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.Blocks)
		if _, err := exec.Exec(ctx, query, documentID); err != nil {
			return fmt.Errorf("delete blocks: %w", err)
		}
		return r.insertBlocks(ctx, exec, documentID, blocks)
	})
}

// Delete removes the document; blocks cascade
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Documents)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	return requireAffected(tag, "document", id)
}

// DetachFolder moves the folder's documents back to the root
func (r *PostgresDocumentRepository) DetachFolder(ctx context.Context, folderID, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET folder_id = NULL
		WHERE folder_id = $1 AND user_id = $2
	`, r.tables.Documents)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, userID); err != nil {
		return fmt.Errorf("detach folder documents: %w", err)
	}
	return nil
}

func (r *PostgresDocumentRepository) insertBlocks(ctx context.Context, exec repositories.DBTX, documentID string, blocks []models.Block) error {
	if len(blocks) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, type, label, content, sort_order, target_char_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Blocks)

	batch := &pgx.Batch{}
	for _, b := range blocks {
		batch.Queue(query, b.ID, documentID, string(b.Type), b.Label, b.Content, b.Order, b.TargetCharCount)
	}

	results := exec.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range blocks {
		if _, err := results.Exec(); err != nil {
			if IsPgDuplicateError(err) {
				return fmt.Errorf("duplicate block id: %w", domain.ErrConflict)
			}
			return fmt.Errorf("insert block: %w", err)
		}
	}
	return nil
}

func (r *PostgresDocumentRepository) listBlocks(ctx context.Context, exec repositories.DBTX, documentID string) ([]models.Block, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, type, label, content, sort_order, target_char_count
		FROM %s
		WHERE document_id = $1
		ORDER BY sort_order, id
	`, r.tables.Blocks)

	rows, err := exec.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	blocks := []models.Block{}
	for rows.Next() {
		var b models.Block
		var blockType string
		if err := rows.Scan(&b.ID, &b.DocumentID, &blockType, &b.Label, &b.Content, &b.Order, &b.TargetCharCount); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		b.Type = models.BlockType(blockType)
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return blocks, nil
}

// inTx runs fn on the context transaction, or in a new one when there is none
func (r *PostgresDocumentRepository) inTx(ctx context.Context, fn func(exec repositories.DBTX) error) error {
	if tx := repositories.GetTx(ctx); tx != nil {
		return fn(tx)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

func documentTypeParam(t *models.DocumentType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

func documentTypeValue(s *string) *models.DocumentType {
	if s == nil {
		return nil
	}
	t := models.DocumentType(*s)
	return &t
}
