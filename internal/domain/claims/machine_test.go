package claims

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/cmcs/internal/domain/entity"
)

var transitionClock = time.Date(2025, time.October, 20, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return transitionClock
}

func pendingClaim() *entity.Claim {
	return &entity.Claim{
		ID:           1,
		LecturerName: "A. Dlamini",
		HoursWorked:  decimal.NewFromInt(10),
		HourlyRate:   decimal.NewFromInt(50),
		ClaimMonth:   time.October,
		ClaimYear:    2025,
		Status:       entity.StatusPending,
	}
}

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine(fixedNow)
	claim := pendingClaim()

	record, err := m.Fire(claim, ActionApprove, Actor{Name: "Carol", Role: entity.RoleCoordinator}, "looks right")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusVerified, claim.Status)
	assert.Equal(t, "Carol", claim.VerifiedBy)
	require.NotNil(t, claim.VerifiedAt)
	assert.Equal(t, transitionClock, *claim.VerifiedAt)
	assert.Equal(t, "looks right", claim.VerificationComments)
	assert.Equal(t, "Coordinator Verified", record.Action)
	assert.Equal(t, entity.StatusVerified, record.Status)

	record, err = m.Fire(claim, ActionApprove, Actor{Name: "Mark", Role: entity.RoleManager}, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, claim.Status)
	assert.Equal(t, "Mark", claim.ApprovedBy)
	require.NotNil(t, claim.ApprovedAt)
	assert.Equal(t, "Approved", claim.ApprovalComments)
	assert.Equal(t, "Manager Approved - Final", record.Action)
	assert.Equal(t, entity.StatusApproved, record.Status)

	// derived amount is untouched by transitions
	assert.True(t, claim.TotalAmount().Equal(decimal.NewFromInt(500)))
}

func TestMachine_RejectFromPending(t *testing.T) {
	m := NewMachine(fixedNow)
	claim := pendingClaim()

	record, err := m.Fire(claim, ActionReject, Actor{Name: "Carol", Role: entity.RoleCoordinator}, "hours not on timesheet")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, claim.Status)
	assert.Equal(t, "Carol", claim.RejectedBy)
	assert.Equal(t, "hours not on timesheet", claim.RejectionReason)
	assert.Equal(t, "Rejected", record.Action)
}

func TestMachine_RejectFromVerified(t *testing.T) {
	m := NewMachine(fixedNow)
	claim := pendingClaim()
	claim.Status = entity.StatusVerified

	_, err := m.Fire(claim, ActionReject, Actor{Name: "Mark", Role: entity.RoleManager}, "budget exceeded")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, claim.Status)
	assert.Equal(t, "Mark", claim.RejectedBy)
}

func TestMachine_RejectRequiresReason(t *testing.T) {
	m := NewMachine(fixedNow)

	for _, status := range []entity.Status{entity.StatusPending, entity.StatusVerified} {
		claim := pendingClaim()
		claim.Status = status
		role := entity.RoleCoordinator
		if status == entity.StatusVerified {
			role = entity.RoleManager
		}

		_, err := m.Fire(claim, ActionReject, Actor{Name: "X", Role: role}, "   ")
		require.Error(t, err, "status %s", status)
		assert.True(t, IsStateViolation(err))
		assert.Contains(t, err.Error(), "rejection reason is required")
		assert.Equal(t, status, claim.Status, "claim must be unchanged on failure")
		assert.Empty(t, claim.RejectedBy)
	}
}

func TestMachine_RoleGating(t *testing.T) {
	tests := []struct {
		name   string
		status entity.Status
		action Action
		role   entity.Role
	}{
		{"manager cannot verify", entity.StatusPending, ActionApprove, entity.RoleManager},
		{"hr cannot verify", entity.StatusPending, ActionApprove, entity.RoleHR},
		{"coordinator cannot final-approve", entity.StatusVerified, ActionApprove, entity.RoleCoordinator},
		{"manager cannot reject pending", entity.StatusPending, ActionReject, entity.RoleManager},
		{"coordinator cannot reject verified", entity.StatusVerified, ActionReject, entity.RoleCoordinator},
		{"lecturer cannot approve", entity.StatusPending, ActionApprove, entity.RoleLecturer},
		{"lecturer cannot reject", entity.StatusVerified, ActionReject, entity.RoleLecturer},
	}

	m := NewMachine(fixedNow)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := pendingClaim()
			claim.Status = tt.status

			_, err := m.Fire(claim, tt.action, Actor{Name: "X", Role: tt.role}, "reason")
			require.Error(t, err)
			assert.True(t, IsStateViolation(err))
			assert.Equal(t, tt.status, claim.Status)
		})
	}
}

func TestMachine_TerminalStates(t *testing.T) {
	m := NewMachine(fixedNow)

	for _, status := range []entity.Status{entity.StatusApproved, entity.StatusRejected} {
		for _, action := range []Action{ActionApprove, ActionReject} {
			claim := pendingClaim()
			claim.Status = status

			_, err := m.Fire(claim, action, Actor{Name: "Mark", Role: entity.RoleManager}, "reason")
			require.Error(t, err, "%s/%s", status, action)
			assert.True(t, IsStateViolation(err))
			assert.Contains(t, err.Error(), "no further transitions")
			assert.Equal(t, status, claim.Status)
		}
	}
}

func TestMachine_CanFire(t *testing.T) {
	m := NewMachine(fixedNow)

	assert.True(t, m.CanFire(entity.StatusPending, ActionApprove, entity.RoleCoordinator))
	assert.True(t, m.CanFire(entity.StatusVerified, ActionApprove, entity.RoleManager))
	assert.True(t, m.CanFire(entity.StatusVerified, ActionApprove, entity.RoleHR))
	assert.False(t, m.CanFire(entity.StatusPending, ActionApprove, entity.RoleManager))
	assert.False(t, m.CanFire(entity.StatusApproved, ActionApprove, entity.RoleManager))
	assert.False(t, m.CanFire(entity.StatusRejected, ActionReject, entity.RoleCoordinator))
}

func TestSubmissionHistory(t *testing.T) {
	claim := pendingClaim()
	record := SubmissionHistory(claim, transitionClock)

	assert.Equal(t, claim.ID, record.ClaimID)
	assert.Equal(t, entity.StatusPending, record.Status)
	assert.Equal(t, claim.LecturerName, record.ChangedBy)
	assert.Equal(t, "Submitted", record.Action)
	assert.Equal(t, transitionClock, record.ChangedAt)
}
