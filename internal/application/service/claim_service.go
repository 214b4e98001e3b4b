package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campusworks/cmcs/internal/application/port"
	"github.com/campusworks/cmcs/internal/domain/claims"
	"github.com/campusworks/cmcs/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ClaimService is the operation set exposed to the HTTP adapter. Submission
// runs the validation engine; approvals and rejections run the state machine.
// Every successful mutation appends exactly one audit record, committed in
// the same transaction as the claim itself.
type ClaimService interface {
	SubmitClaim(ctx context.Context, claim *entity.Claim) (int64, error)
	ApproveClaim(ctx context.Context, id int64, actor claims.Actor, comments string) error
	RejectClaim(ctx context.Context, id int64, actor claims.Actor, reason string) error
	GetClaimByID(ctx context.Context, id int64) (*entity.Claim, error)
	GetPendingClaims(ctx context.Context, role entity.Role) ([]*entity.Claim, error)
	GetClaimsByLecturer(ctx context.Context, lecturerName string) ([]*entity.Claim, error)
	GetClaimHistory(ctx context.Context, id int64) ([]*entity.ClaimHistory, error)
	AddDocument(ctx context.Context, doc *entity.Document) error
}

type claimServiceImpl struct {
	claimRepo   port.ClaimRepository
	documentRepo port.DocumentRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	validator   *claims.Validator
	machine     *claims.Machine
	now         func() time.Time
	logger      Logger

	// locks serializes the check-then-act span of Approve/Reject per claim ID
	locks sync.Map
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claimRepo port.ClaimRepository,
	documentRepo port.DocumentRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	validator *claims.Validator,
	machine *claims.Machine,
	now func() time.Time,
	logger Logger,
) ClaimService {
	if now == nil {
		now = time.Now
	}
	return &claimServiceImpl{
		claimRepo:    claimRepo,
		documentRepo: documentRepo,
		historyRepo:  historyRepo,
		txManager:    txManager,
		validator:    validator,
		machine:      machine,
		now:          now,
		logger:       logger,
	}
}

// SubmitClaim validates the candidate and, on success, stores it in PENDING
// together with its first audit record. Validation failure writes nothing.
func (s *claimServiceImpl) SubmitClaim(ctx context.Context, claim *entity.Claim) (int64, error) {
	now := s.now()
	if claim.SubmissionDate.IsZero() {
		claim.SubmissionDate = now
	}
	if claim.ClaimMonth == 0 || claim.ClaimYear == 0 {
		claim.ClaimMonth = claim.SubmissionDate.Month()
		claim.ClaimYear = claim.SubmissionDate.Year()
	}

	existing, err := s.claimRepo.ListByLecturer(ctx, claim.LecturerName)
	if err != nil {
		s.logger.Error("Failed to load existing claims", "error", err, "lecturer", claim.LecturerName)
		return 0, fmt.Errorf("load existing claims: %w", err)
	}

	if err := s.validator.Validate(claim, existing); err != nil {
		s.logger.Warn("Claim rejected by validation", "lecturer", claim.LecturerName, "reason", err.Error())
		return 0, err
	}

	claim.SubmittedAt = now
	claim.Status = entity.StatusPending

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Create(txCtx, claim); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}
		if err := s.historyRepo.Create(txCtx, claims.SubmissionHistory(claim, now)); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit claim", "error", err, "lecturer", claim.LecturerName)
		return 0, err
	}

	s.logger.Info("Claim submitted",
		"id", claim.ID,
		"lecturer", claim.LecturerName,
		"period", claim.Period(),
		"total_amount", claim.TotalAmount().StringFixed(2))
	return claim.ID, nil
}

// ApproveClaim advances the claim one stage: coordinator verification from
// PENDING, final manager approval from VERIFIED.
func (s *claimServiceImpl) ApproveClaim(ctx context.Context, id int64, actor claims.Actor, comments string) error {
	return s.transition(ctx, id, claims.ActionApprove, actor, comments)
}

// RejectClaim terminates the claim from either non-terminal stage. The reason
// is mandatory.
func (s *claimServiceImpl) RejectClaim(ctx context.Context, id int64, actor claims.Actor, reason string) error {
	return s.transition(ctx, id, claims.ActionReject, actor, reason)
}

func (s *claimServiceImpl) transition(ctx context.Context, id int64, action claims.Action, actor claims.Actor, note string) error {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load claim", "error", err, "id", id)
		return fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		s.logger.Warn("Claim not found", "id", id, "action", string(action))
		return &claims.NotFoundError{ClaimID: id}
	}

	record, err := s.machine.Fire(claim, action, actor, note)
	if err != nil {
		s.logger.Warn("Transition refused",
			"id", id, "action", string(action), "actor", actor.Name, "role", actor.Role.String(), "reason", err.Error())
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Update(txCtx, claim); err != nil {
			return fmt.Errorf("update claim: %w", err)
		}
		if err := s.historyRepo.Create(txCtx, record); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to persist transition", "error", err, "id", id, "action", string(action))
		return err
	}

	s.logger.Info("Claim transitioned",
		"id", id,
		"status", claim.Status.String(),
		"actor", actor.Name,
		"role", actor.Role.String(),
		"action", record.Action)
	return nil
}

// GetClaimByID retrieves a claim with its documents attached.
func (s *claimServiceImpl) GetClaimByID(ctx context.Context, id int64) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get claim", "error", err, "id", id)
		return nil, fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		return nil, &claims.NotFoundError{ClaimID: id}
	}
	docs, err := s.documentRepo.ListByClaimID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load documents", "error", err, "id", id)
		return nil, fmt.Errorf("load documents: %w", err)
	}
	claim.Documents = docs
	return claim, nil
}

// GetPendingClaims returns the approval queue for the actor's role: the
// PENDING bucket for coordinators, the VERIFIED bucket for managers and HR.
func (s *claimServiceImpl) GetPendingClaims(ctx context.Context, role entity.Role) ([]*entity.Claim, error) {
	var bucket entity.Status
	switch role {
	case entity.RoleCoordinator:
		bucket = entity.StatusPending
	case entity.RoleManager, entity.RoleHR:
		bucket = entity.StatusVerified
	default:
		return nil, &claims.StateError{Reason: fmt.Sprintf("role %q has no approval queue", role)}
	}

	list, err := s.claimRepo.ListByStatus(ctx, bucket)
	if err != nil {
		s.logger.Error("Failed to list pending claims", "error", err, "role", role.String())
		return nil, fmt.Errorf("list pending claims: %w", err)
	}
	return list, nil
}

// GetClaimsByLecturer returns the lecturer's claims, newest first.
func (s *claimServiceImpl) GetClaimsByLecturer(ctx context.Context, lecturerName string) ([]*entity.Claim, error) {
	list, err := s.claimRepo.ListByLecturer(ctx, lecturerName)
	if err != nil {
		s.logger.Error("Failed to list lecturer claims", "error", err, "lecturer", lecturerName)
		return nil, fmt.Errorf("list lecturer claims: %w", err)
	}
	return list, nil
}

// GetClaimHistory returns the claim's audit trail, oldest first.
func (s *claimServiceImpl) GetClaimHistory(ctx context.Context, id int64) ([]*entity.ClaimHistory, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		return nil, &claims.NotFoundError{ClaimID: id}
	}
	history, err := s.historyRepo.ListByClaimID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load claim history", "error", err, "id", id)
		return nil, fmt.Errorf("load claim history: %w", err)
	}
	return history, nil
}

// AddDocument attaches upload metadata to an existing claim.
func (s *claimServiceImpl) AddDocument(ctx context.Context, doc *entity.Document) error {
	claim, err := s.claimRepo.GetByID(ctx, doc.ClaimID)
	if err != nil {
		return fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		return &claims.NotFoundError{ClaimID: doc.ClaimID}
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = s.now()
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		s.logger.Error("Failed to add document", "error", err, "claim_id", doc.ClaimID)
		return fmt.Errorf("add document: %w", err)
	}
	s.logger.Info("Document added", "claim_id", doc.ClaimID, "file_name", doc.FileName)
	return nil
}

func (s *claimServiceImpl) lockFor(id int64) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
