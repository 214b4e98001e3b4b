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

// HistoryRepository implements port.HistoryRepository. The claim_history
// table is append-only; this type deliberately exposes no update or delete.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a new audit record
func (r *HistoryRepository) Create(ctx context.Context, record *entity.ClaimHistory) error {
	query := `
		INSERT INTO claim_history (
			claim_id, status, changed_by, comments, action, changed_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.executor(ctx).ExecContext(ctx, query,
		record.ClaimID,
		string(record.Status),
		record.ChangedBy,
		record.Comments,
		record.Action,
		record.ChangedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// ListByClaimID retrieves a claim's audit trail oldest first; the id
// tiebreak preserves insertion order for same-timestamp records
func (r *HistoryRepository) ListByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error) {
	query := `
		SELECT id, claim_id, status, changed_by, comments, action, changed_at
		FROM claim_history
		WHERE claim_id = ?
		ORDER BY changed_at ASC, id ASC
	`

	rows, err := r.executor(ctx).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*entity.ClaimHistory
	for rows.Next() {
		var record entity.ClaimHistory
		var status string
		err := rows.Scan(
			&record.ID,
			&record.ClaimID,
			&status,
			&record.ChangedBy,
			&record.Comments,
			&record.Action,
			&record.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		record.Status = entity.Status(status)
		records = append(records, &record)
	}

	return records, rows.Err()
}

func (r *HistoryRepository) executor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
