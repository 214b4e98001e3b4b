package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/cmcs/internal/domain/claims"
	"github.com/campusworks/cmcs/internal/domain/entity"
)

// Mock implementations

type mockClaimRepo struct {
	claims map[int64]*entity.Claim
	nextID int64
	err    error
}

func newMockClaimRepo() *mockClaimRepo {
	return &mockClaimRepo{claims: make(map[int64]*entity.Claim)}
}

func (m *mockClaimRepo) Create(ctx context.Context, claim *entity.Claim) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	claim.ID = m.nextID
	stored := *claim
	m.claims[claim.ID] = &stored
	return nil
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	if m.err != nil {
		return nil, m.err
	}
	stored, ok := m.claims[id]
	if !ok {
		return nil, nil
	}
	clone := *stored
	return &clone, nil
}

func (m *mockClaimRepo) Update(ctx context.Context, claim *entity.Claim) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.claims[claim.ID]; !ok {
		return errors.New("claim does not exist")
	}
	stored := *claim
	m.claims[claim.ID] = &stored
	return nil
}

func (m *mockClaimRepo) ListByStatus(ctx context.Context, status entity.Status) ([]*entity.Claim, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*entity.Claim
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.claims[id]; ok && c.Status == status {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) ListByLecturer(ctx context.Context, lecturerName string) ([]*entity.Claim, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*entity.Claim
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.claims[id]; ok && c.LecturerName == lecturerName {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) ListAll(ctx context.Context) ([]*entity.Claim, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*entity.Claim
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.claims[id]; ok {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

type mockDocumentRepo struct {
	docs   []*entity.Document
	nextID int64
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	m.nextID++
	doc.ID = m.nextID
	m.docs = append(m.docs, doc)
	return nil
}

func (m *mockDocumentRepo) ListByClaimID(ctx context.Context, claimID int64) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range m.docs {
		if d.ClaimID == claimID {
			out = append(out, d)
		}
	}
	return out, nil
}

type mockHistoryRepo struct {
	records   []*entity.ClaimHistory
	createErr error
}

func (m *mockHistoryRepo) Create(ctx context.Context, record *entity.ClaimHistory) error {
	if m.createErr != nil {
		return m.createErr
	}
	record.ID = int64(len(m.records) + 1)
	m.records = append(m.records, record)
	return nil
}

func (m *mockHistoryRepo) ListByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error) {
	var out []*entity.ClaimHistory
	for _, r := range m.records {
		if r.ClaimID == claimID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Fixtures

var serviceClock = time.Date(2025, time.October, 20, 9, 0, 0, 0, time.UTC)

type fixture struct {
	claimRepo   *mockClaimRepo
	docRepo     *mockDocumentRepo
	historyRepo *mockHistoryRepo
	svc         ClaimService
}

func newFixture() *fixture {
	now := func() time.Time { return serviceClock }
	f := &fixture{
		claimRepo:   newMockClaimRepo(),
		docRepo:     &mockDocumentRepo{},
		historyRepo: &mockHistoryRepo{},
	}
	f.svc = NewClaimService(
		f.claimRepo,
		f.docRepo,
		f.historyRepo,
		&mockTxManager{},
		claims.NewValidator(claims.DefaultRules(), now),
		claims.NewMachine(now),
		now,
		nopLogger{},
	)
	return f
}

func octoberClaim(lecturer string) *entity.Claim {
	return &entity.Claim{
		LecturerName: lecturer,
		HoursWorked:  decimal.NewFromInt(10),
		HourlyRate:   decimal.NewFromInt(50),
		ClaimMonth:   time.October,
		ClaimYear:    2025,
	}
}

// Tests

func TestClaimService_FullApprovalScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, err := f.svc.SubmitClaim(ctx, octoberClaim("A"))
	require.NoError(t, err)
	require.NotZero(t, id)

	claim, err := f.svc.GetClaimByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, claim.Status)
	assert.True(t, claim.TotalAmount().Equal(decimal.NewFromInt(500)))
	assert.Equal(t, serviceClock, claim.SubmittedAt)

	// duplicate period is refused, naming the period
	_, err = f.svc.SubmitClaim(ctx, octoberClaim("A"))
	require.Error(t, err)
	assert.True(t, claims.IsValidation(err))
	assert.Contains(t, err.Error(), "October 2025")

	// coordinator verifies
	err = f.svc.ApproveClaim(ctx, id, claims.Actor{Name: "Carol", Role: entity.RoleCoordinator}, "")
	require.NoError(t, err)
	claim, _ = f.svc.GetClaimByID(ctx, id)
	assert.Equal(t, entity.StatusVerified, claim.Status)
	assert.Equal(t, "Carol", claim.VerifiedBy)

	// manager gives final approval
	err = f.svc.ApproveClaim(ctx, id, claims.Actor{Name: "Mark", Role: entity.RoleManager}, "within budget")
	require.NoError(t, err)
	claim, _ = f.svc.GetClaimByID(ctx, id)
	assert.Equal(t, entity.StatusApproved, claim.Status)
	assert.Equal(t, "Mark", claim.ApprovedBy)
	assert.True(t, claim.TotalAmount().Equal(decimal.NewFromInt(500)))

	// approved is terminal
	err = f.svc.RejectClaim(ctx, id, claims.Actor{Name: "Mark", Role: entity.RoleManager}, "changed my mind")
	require.Error(t, err)
	assert.True(t, claims.IsStateViolation(err))
}

func TestClaimService_AuditCompleteness(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, err := f.svc.SubmitClaim(ctx, octoberClaim("A"))
	require.NoError(t, err)
	require.NoError(t, f.svc.ApproveClaim(ctx, id, claims.Actor{Name: "Carol", Role: entity.RoleCoordinator}, ""))
	require.NoError(t, f.svc.ApproveClaim(ctx, id, claims.Actor{Name: "Mark", Role: entity.RoleManager}, ""))

	history, err := f.svc.GetClaimHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 3, "one audit record per successful call")

	assert.Equal(t, []string{"Submitted", "Coordinator Verified", "Manager Approved - Final"},
		[]string{history[0].Action, history[1].Action, history[2].Action})
	assert.Equal(t, []entity.Status{entity.StatusPending, entity.StatusVerified, entity.StatusApproved},
		[]entity.Status{history[0].Status, history[1].Status, history[2].Status})

	// replaying the trail reconstructs the current status
	claim, err := f.svc.GetClaimByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, claim.Status, history[len(history)-1].Status)
}

func TestClaimService_RejectionAudit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, err := f.svc.SubmitClaim(ctx, octoberClaim("A"))
	require.NoError(t, err)

	err = f.svc.RejectClaim(ctx, id, claims.Actor{Name: "Carol", Role: entity.RoleCoordinator}, "no timesheet attached")
	require.NoError(t, err)

	claim, _ := f.svc.GetClaimByID(ctx, id)
	assert.Equal(t, entity.StatusRejected, claim.Status)
	assert.Equal(t, "no timesheet attached", claim.RejectionReason)

	history, _ := f.svc.GetClaimHistory(ctx, id)
	require.Len(t, history, 2)
	assert.Equal(t, "Rejected", history[1].Action)
	assert.Equal(t, "no timesheet attached", history[1].Comments)
}

func TestClaimService_ValidationFailureWritesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	claim := octoberClaim("A")
	claim.HoursWorked = decimal.NewFromInt(250)

	_, err := f.svc.SubmitClaim(ctx, claim)
	require.Error(t, err)
	assert.True(t, claims.IsValidation(err))
	assert.Contains(t, err.Error(), "250")
	assert.Contains(t, err.Error(), "200")

	assert.Empty(t, f.claimRepo.claims)
	assert.Empty(t, f.historyRepo.records)
}

func TestClaimService_TransitionNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.svc.ApproveClaim(ctx, 42, claims.Actor{Name: "Carol", Role: entity.RoleCoordinator}, "")
	require.Error(t, err)
	assert.True(t, claims.IsNotFound(err))
	assert.Contains(t, err.Error(), "42")

	err = f.svc.RejectClaim(ctx, 42, claims.Actor{Name: "Carol", Role: entity.RoleCoordinator}, "reason")
	require.Error(t, err)
	assert.True(t, claims.IsNotFound(err))
}

func TestClaimService_PendingQueuesByRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	pendingID, err := f.svc.SubmitClaim(ctx, octoberClaim("A"))
	require.NoError(t, err)

	verified := octoberClaim("B")
	verifiedID, err := f.svc.SubmitClaim(ctx, verified)
	require.NoError(t, err)
	require.NoError(t, f.svc.ApproveClaim(ctx, verifiedID, claims.Actor{Name: "Carol", Role: entity.RoleCoordinator}, ""))

	queue, err := f.svc.GetPendingClaims(ctx, entity.RoleCoordinator)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pendingID, queue[0].ID)

	for _, role := range []entity.Role{entity.RoleManager, entity.RoleHR} {
		queue, err = f.svc.GetPendingClaims(ctx, role)
		require.NoError(t, err)
		require.Len(t, queue, 1, "role %s", role)
		assert.Equal(t, verifiedID, queue[0].ID)
	}

	_, err = f.svc.GetPendingClaims(ctx, entity.RoleLecturer)
	require.Error(t, err)
	assert.True(t, claims.IsStateViolation(err))
}

func TestClaimService_AddDocument(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.svc.AddDocument(ctx, &entity.Document{ClaimID: 99, FileName: "timesheet.pdf"})
	require.Error(t, err)
	assert.True(t, claims.IsNotFound(err))

	id, err := f.svc.SubmitClaim(ctx, octoberClaim("A"))
	require.NoError(t, err)

	doc := &entity.Document{ClaimID: id, FileName: "timesheet.pdf", FilePath: "uploads/timesheet.pdf"}
	require.NoError(t, f.svc.AddDocument(ctx, doc))
	assert.NotZero(t, doc.ID)
	assert.Equal(t, serviceClock, doc.UploadedAt)

	claim, err := f.svc.GetClaimByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, claim.Documents, 1)
	assert.Equal(t, "timesheet.pdf", claim.Documents[0].FileName)
}

func TestClaimService_HistoryInsertFailureSurfaces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.historyRepo.createErr = errors.New("disk full")

	_, err := f.svc.SubmitClaim(ctx, octoberClaim("A"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create history")
}
