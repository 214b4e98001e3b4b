package claims

import (
	"fmt"
	"strings"
	"time"

	"github.com/campusworks/cmcs/internal/domain/entity"
)

// Action is an event that can move a claim through the approval chain.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// Actor is the authenticated identity performing a transition. Credentials
// are checked upstream; the machine only gates on the role.
type Actor struct {
	Name string
	Role entity.Role
}

// Audit action labels, recorded verbatim in ClaimHistory.
const (
	actionLabelSubmitted = "Submitted"
	actionLabelVerified  = "Coordinator Verified"
	actionLabelApproved  = "Manager Approved - Final"
	actionLabelRejected  = "Rejected"
)

// transition is one permitted edge of the approval chain.
type transition struct {
	to             entity.Status
	roles          map[entity.Role]bool
	label          string
	defaultComment string
	reasonRequired bool
}

var (
	coordinatorStage = map[entity.Role]bool{entity.RoleCoordinator: true}
	managerStage     = map[entity.Role]bool{entity.RoleManager: true, entity.RoleHR: true}
)

// transitions is the full approval-chain table: exactly one linear happy path
// Pending -> Verified -> Approved, with Rejected as a side exit from either
// non-terminal state. Terminal states have no entries.
var transitions = map[entity.Status]map[Action]transition{
	entity.StatusPending: {
		ActionApprove: {
			to:             entity.StatusVerified,
			roles:          coordinatorStage,
			label:          actionLabelVerified,
			defaultComment: "Verified",
		},
		ActionReject: {
			to:             entity.StatusRejected,
			roles:          coordinatorStage,
			label:          actionLabelRejected,
			reasonRequired: true,
		},
	},
	entity.StatusVerified: {
		ActionApprove: {
			to:             entity.StatusApproved,
			roles:          managerStage,
			label:          actionLabelApproved,
			defaultComment: "Approved",
		},
		ActionReject: {
			to:             entity.StatusRejected,
			roles:          managerStage,
			label:          actionLabelRejected,
			reasonRequired: true,
		},
	},
}

// Machine executes approval-chain transitions against a claim in memory.
// Persisting the mutated claim together with the returned history record is
// the caller's job; the pair must be committed atomically.
type Machine struct {
	now func() time.Time
}

// NewMachine creates a machine with the given clock.
func NewMachine(now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{now: now}
}

// CanFire returns true if the action is permitted for the status and role.
func (m *Machine) CanFire(status entity.Status, action Action, role entity.Role) bool {
	t, ok := transitions[status][action]
	return ok && t.roles[role]
}

// Fire applies the action to the claim: it checks the transition table and the
// actor's role, stamps the relevant stage fields, updates the status, and
// returns the ClaimHistory record describing the change. On any *StateError
// the claim is left untouched.
func (m *Machine) Fire(claim *entity.Claim, action Action, actor Actor, note string) (*entity.ClaimHistory, error) {
	if claim.Status.IsTerminal() {
		return nil, &StateError{Reason: fmt.Sprintf(
			"claim %d is %s; no further transitions are permitted",
			claim.ID, claim.Status)}
	}

	t, ok := transitions[claim.Status][action]
	if !ok {
		return nil, &StateError{Reason: fmt.Sprintf(
			"action %s is not permitted while a claim is %s", action, claim.Status)}
	}
	if !actor.Role.IsValid() || actor.Role == entity.RoleLecturer {
		return nil, &StateError{Reason: fmt.Sprintf(
			"invalid approver role %q", actor.Role)}
	}
	if !t.roles[actor.Role] {
		return nil, m.wrongStageError(claim.Status, actor.Role)
	}

	note = strings.TrimSpace(note)
	if t.reasonRequired && note == "" {
		return nil, &StateError{Reason: "rejection reason is required"}
	}
	if note == "" {
		note = t.defaultComment
	}

	now := m.now()
	switch t.to {
	case entity.StatusVerified:
		claim.VerifiedBy = actor.Name
		claim.VerifiedAt = &now
		claim.VerificationComments = note
	case entity.StatusApproved:
		claim.ApprovedBy = actor.Name
		claim.ApprovedAt = &now
		claim.ApprovalComments = note
	case entity.StatusRejected:
		claim.RejectedBy = actor.Name
		claim.RejectedAt = &now
		claim.RejectionReason = note
	}
	claim.Status = t.to

	return &entity.ClaimHistory{
		ClaimID:   claim.ID,
		Status:    t.to,
		ChangedBy: actor.Name,
		Comments:  note,
		Action:    t.label,
		ChangedAt: now,
	}, nil
}

// wrongStageError explains which stage the claim is actually in when a
// legitimate approver acts out of turn.
func (m *Machine) wrongStageError(status entity.Status, role entity.Role) *StateError {
	switch status {
	case entity.StatusPending:
		return &StateError{Reason: fmt.Sprintf(
			"claim must be verified by a coordinator first; %s may not act on a pending claim", role)}
	case entity.StatusVerified:
		return &StateError{Reason: fmt.Sprintf(
			"claim is awaiting final approval by a manager; %s may not act on a verified claim", role)}
	default:
		return &StateError{Reason: fmt.Sprintf("invalid approver role %q", role)}
	}
}

// SubmissionHistory builds the audit record appended when a claim is first
// stored in Pending.
func SubmissionHistory(claim *entity.Claim, at time.Time) *entity.ClaimHistory {
	return &entity.ClaimHistory{
		ClaimID:   claim.ID,
		Status:    entity.StatusPending,
		ChangedBy: claim.LecturerName,
		Comments:  "Claim submitted",
		Action:    actionLabelSubmitted,
		ChangedAt: at,
	}
}
