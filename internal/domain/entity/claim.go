package entity

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Claim represents a lecturer's monthly hours-worked submission.
// The claim period is the explicit (ClaimMonth, ClaimYear) pair; SubmissionDate
// is when the lecturer dated the claim and feeds the future/staleness checks.
type Claim struct {
	ID           int64           `json:"id"`
	LecturerName string          `json:"lecturer_name"`
	HoursWorked  decimal.Decimal `json:"hours_worked"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	Notes        string          `json:"notes,omitempty"`
	ClaimMonth   time.Month      `json:"claim_month"`
	ClaimYear    int             `json:"claim_year"`

	SubmissionDate time.Time `json:"submission_date"`
	SubmittedAt    time.Time `json:"submitted_at"`
	Status         Status    `json:"status"`

	// Coordinator stage
	VerifiedBy           string     `json:"verified_by,omitempty"`
	VerifiedAt           *time.Time `json:"verified_at,omitempty"`
	VerificationComments string     `json:"verification_comments,omitempty"`

	// Manager stage
	ApprovedBy       string     `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	ApprovalComments string     `json:"approval_comments,omitempty"`

	// Rejection (terminal side exit)
	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	Documents []*Document `json:"documents,omitempty"`
}

// TotalAmount is always derived, never stored: hours worked times hourly rate.
func (c *Claim) TotalAmount() decimal.Decimal {
	return c.HoursWorked.Mul(c.HourlyRate)
}

// Period returns the human-readable claim period, e.g. "October 2025".
func (c *Claim) Period() string {
	return c.ClaimMonth.String() + " " + strconv.Itoa(c.ClaimYear)
}

// Document is metadata for an uploaded attachment owned by a claim.
// File content, type policy and encryption are handled outside this service.
type Document struct {
	ID         int64     `json:"id"`
	ClaimID    int64     `json:"claim_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ClaimHistory is one immutable audit record per status transition.
// Replaying a claim's history in order reconstructs its current status.
type ClaimHistory struct {
	ID        int64     `json:"id"`
	ClaimID   int64     `json:"claim_id"`
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	Comments  string    `json:"comments,omitempty"`
	Action    string    `json:"action"`
	ChangedAt time.Time `json:"changed_at"`
}
