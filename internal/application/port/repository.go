package port

import (
	"context"

	"github.com/campusworks/cmcs/internal/domain/entity"
)

// ClaimRepository defines persistence operations for Claim.
// GetByID returns (nil, nil) when no claim exists; the service layer turns
// that into its NotFoundError.
type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim) error
	GetByID(ctx context.Context, id int64) (*entity.Claim, error)
	Update(ctx context.Context, claim *entity.Claim) error
	ListByStatus(ctx context.Context, status entity.Status) ([]*entity.Claim, error)
	ListByLecturer(ctx context.Context, lecturerName string) ([]*entity.Claim, error)
	ListAll(ctx context.Context) ([]*entity.Claim, error)
}

// DocumentRepository defines persistence operations for Document
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	ListByClaimID(ctx context.Context, claimID int64) ([]*entity.Document, error)
}

// HistoryRepository defines persistence operations for ClaimHistory.
// The trail is append-only: no update or delete is exposed, and ListByClaimID
// returns records oldest first (changed_at, then insertion order).
type HistoryRepository interface {
	Create(ctx context.Context, record *entity.ClaimHistory) error
	ListByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error)
}

// TransactionManager executes a function within a database transaction.
// Repository calls made with the provided context join the transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
