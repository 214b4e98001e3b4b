package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/campusworks/cmcs/internal/application/port"
	"github.com/campusworks/cmcs/internal/domain/entity"
	"github.com/campusworks/cmcs/internal/infrastructure/persistence/sqlite"
)

// ClaimRepository implements port.ClaimRepository on SQLite. Hours and rates
// are stored as exact decimal strings, never floats.
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

const claimColumns = `
	id, lecturer_name, hours_worked, hourly_rate, notes,
	claim_month, claim_year, submission_date, submitted_at, status,
	verified_by, verified_at, verification_comments,
	approved_by, approved_at, approval_comments,
	rejected_by, rejected_at, rejection_reason
`

// Create inserts a new claim and backfills its assigned ID
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			lecturer_name, hours_worked, hourly_rate, notes,
			claim_month, claim_year, submission_date, submitted_at, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.executor(ctx).ExecContext(ctx, query,
		claim.LecturerName,
		claim.HoursWorked.String(),
		claim.HourlyRate.String(),
		claim.Notes,
		int(claim.ClaimMonth),
		claim.ClaimYear,
		claim.SubmissionDate,
		claim.SubmittedAt,
		string(claim.Status),
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	claim.ID = id
	return nil
}

// GetByID retrieves a claim; (nil, nil) when it does not exist
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	row := r.executor(ctx).QueryRowContext(ctx, query, id)
	claim, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

// Update persists the claim's status and stage stamps
func (r *ClaimRepository) Update(ctx context.Context, claim *entity.Claim) error {
	query := `
		UPDATE claims SET
			lecturer_name = ?, hours_worked = ?, hourly_rate = ?, notes = ?,
			claim_month = ?, claim_year = ?, submission_date = ?, status = ?,
			verified_by = ?, verified_at = ?, verification_comments = ?,
			approved_by = ?, approved_at = ?, approval_comments = ?,
			rejected_by = ?, rejected_at = ?, rejection_reason = ?
		WHERE id = ?
	`

	result, err := r.executor(ctx).ExecContext(ctx, query,
		claim.LecturerName,
		claim.HoursWorked.String(),
		claim.HourlyRate.String(),
		claim.Notes,
		int(claim.ClaimMonth),
		claim.ClaimYear,
		claim.SubmissionDate,
		string(claim.Status),
		nullString(claim.VerifiedBy),
		nullTime(claim.VerifiedAt),
		nullString(claim.VerificationComments),
		nullString(claim.ApprovedBy),
		nullTime(claim.ApprovedAt),
		nullString(claim.ApprovalComments),
		nullString(claim.RejectedBy),
		nullTime(claim.RejectedAt),
		nullString(claim.RejectionReason),
		claim.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update claim", zap.Int64("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to update claim: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("claim %d does not exist", claim.ID)
	}
	return nil
}

// ListByStatus returns claims in the given status, oldest submission first
// so approval queues are worked in order
func (r *ClaimRepository) ListByStatus(ctx context.Context, status entity.Status) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE status = ? ORDER BY submitted_at ASC, id ASC`
	return r.list(ctx, query, string(status))
}

// ListByLecturer returns the lecturer's claims, newest submission first
func (r *ClaimRepository) ListByLecturer(ctx context.Context, lecturerName string) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE lecturer_name = ? ORDER BY submission_date DESC, id DESC`
	return r.list(ctx, query, lecturerName)
}

// ListAll returns every claim in insertion order
func (r *ClaimRepository) ListAll(ctx context.Context) ([]*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims ORDER BY id ASC`
	return r.list(ctx, query)
}

func (r *ClaimRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Claim, error) {
	rows, err := r.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*entity.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(s scanner) (*entity.Claim, error) {
	var (
		claim                entity.Claim
		hours, rate          string
		month                int
		status               string
		verifiedBy           sql.NullString
		verifiedAt           sql.NullTime
		verificationComments sql.NullString
		approvedBy           sql.NullString
		approvedAt           sql.NullTime
		approvalComments     sql.NullString
		rejectedBy           sql.NullString
		rejectedAt           sql.NullTime
		rejectionReason      sql.NullString
	)

	err := s.Scan(
		&claim.ID,
		&claim.LecturerName,
		&hours,
		&rate,
		&claim.Notes,
		&month,
		&claim.ClaimYear,
		&claim.SubmissionDate,
		&claim.SubmittedAt,
		&status,
		&verifiedBy,
		&verifiedAt,
		&verificationComments,
		&approvedBy,
		&approvedAt,
		&approvalComments,
		&rejectedBy,
		&rejectedAt,
		&rejectionReason,
	)
	if err != nil {
		return nil, err
	}

	if claim.HoursWorked, err = decimal.NewFromString(hours); err != nil {
		return nil, fmt.Errorf("invalid hours_worked %q: %w", hours, err)
	}
	if claim.HourlyRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("invalid hourly_rate %q: %w", rate, err)
	}
	claim.ClaimMonth = time.Month(month)
	claim.Status = entity.Status(status)
	claim.VerifiedBy = verifiedBy.String
	claim.VerifiedAt = timePtr(verifiedAt)
	claim.VerificationComments = verificationComments.String
	claim.ApprovedBy = approvedBy.String
	claim.ApprovedAt = timePtr(approvedAt)
	claim.ApprovalComments = approvalComments.String
	claim.RejectedBy = rejectedBy.String
	claim.RejectedAt = timePtr(rejectedAt)
	claim.RejectionReason = rejectionReason.String

	return &claim, nil
}

func (r *ClaimRepository) executor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
