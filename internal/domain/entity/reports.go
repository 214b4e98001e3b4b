package entity

import "github.com/shopspring/decimal"

// DashboardStats summarizes the claim set for the landing dashboard.
// PendingClaims counts claims still in flight (PENDING and VERIFIED).
type DashboardStats struct {
	TotalClaims        int             `json:"total_claims"`
	PendingClaims      int             `json:"pending_claims"`
	ApprovedClaims     int             `json:"approved_claims"`
	RejectedClaims     int             `json:"rejected_claims"`
	TotalClaimed       decimal.Decimal `json:"total_claimed"`
	AverageClaimAmount decimal.Decimal `json:"average_claim_amount"`
	RecentClaims       []*Claim        `json:"recent_claims"`
}

// Report holds counts and per-status amount buckets, either overall or
// restricted to one calendar month. Approved amounts cover fully approved
// claims only; verified-but-unapproved money is reported in its own bucket.
type Report struct {
	TotalClaims         int             `json:"total_claims"`
	PendingClaims       int             `json:"pending_claims"`
	VerifiedClaims      int             `json:"verified_claims"`
	ApprovedClaims      int             `json:"approved_claims"`
	RejectedClaims      int             `json:"rejected_claims"`
	TotalPendingAmount  decimal.Decimal `json:"total_pending_amount"`
	TotalVerifiedAmount decimal.Decimal `json:"total_verified_amount"`
	TotalApprovedAmount decimal.Decimal `json:"total_approved_amount"`
	TotalRejectedAmount decimal.Decimal `json:"total_rejected_amount"`
}

// LecturerReport is the per-lecturer grouping row, ordered by TotalAmount
// descending in report output.
type LecturerReport struct {
	LecturerName   string          `json:"lecturer_name"`
	TotalClaims    int             `json:"total_claims"`
	ApprovedClaims int             `json:"approved_claims"`
	RejectedClaims int             `json:"rejected_claims"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
}

// MonthlyBreakdownRow is one month's activity within a year; months with no
// claims are omitted from the breakdown.
type MonthlyBreakdownRow struct {
	Month         string          `json:"month"`
	ClaimsCount   int             `json:"claims_count"`
	ApprovedCount int             `json:"approved_count"`
	RejectedCount int             `json:"rejected_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// LecturerPayment is one payroll handoff row: approved money owed to a
// lecturer within a date window.
type LecturerPayment struct {
	LecturerName string          `json:"lecturer_name"`
	Amount       decimal.Decimal `json:"amount"`
}
