package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusworks/cmcs/internal/application/port"
	"github.com/campusworks/cmcs/internal/domain/entity"
	"github.com/campusworks/cmcs/internal/infrastructure/persistence/sqlite"
)

// DocumentRepository implements port.DocumentRepository. The foreign key on
// claim_id cascades deletes, so archiving a claim takes its documents along.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores document metadata for a claim
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (
			claim_id, file_name, file_path, file_size, mime_type, uploaded_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.executor(ctx).ExecContext(ctx, query,
		doc.ClaimID,
		doc.FileName,
		doc.FilePath,
		doc.FileSize,
		doc.MimeType,
		doc.UploadedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Int64("claim_id", doc.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	doc.ID = id
	return nil
}

// ListByClaimID retrieves all documents attached to a claim
func (r *DocumentRepository) ListByClaimID(ctx context.Context, claimID int64) ([]*entity.Document, error) {
	query := `
		SELECT id, claim_id, file_name, file_path, file_size, mime_type, uploaded_at
		FROM documents
		WHERE claim_id = ?
		ORDER BY uploaded_at ASC, id ASC
	`

	rows, err := r.executor(ctx).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		var doc entity.Document
		err := rows.Scan(
			&doc.ID,
			&doc.ClaimID,
			&doc.FileName,
			&doc.FilePath,
			&doc.FileSize,
			&doc.MimeType,
			&doc.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

func (r *DocumentRepository) executor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
