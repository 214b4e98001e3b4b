package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campusworks/cmcs/internal/application/port"
	"github.com/campusworks/cmcs/internal/domain/entity"
)

// ReportService derives read-side projections over the claim set. All methods
// are side-effect free and safe to call concurrently with writers: each call
// reads one committed snapshot of the claims table and computes in memory.
type ReportService interface {
	GetDashboardStats(ctx context.Context) (*entity.DashboardStats, error)
	GetOverallReport(ctx context.Context) (*entity.Report, error)
	GetMonthlyReport(ctx context.Context, year int, month time.Month) (*entity.Report, error)
	GetLecturerReports(ctx context.Context) ([]*entity.LecturerReport, error)
	GetMonthlyBreakdown(ctx context.Context, year int) ([]*entity.MonthlyBreakdownRow, error)
	GetApprovedClaimsBetween(ctx context.Context, start, end time.Time) ([]*entity.Claim, error)
	GetLecturerPaymentSummary(ctx context.Context, start, end time.Time) ([]*entity.LecturerPayment, error)
}

type reportServiceImpl struct {
	claimRepo    port.ClaimRepository
	recentClaims int
	logger       Logger
}

// NewReportService creates a new ReportService. recentClaims bounds the
// dashboard's most-recent list.
func NewReportService(claimRepo port.ClaimRepository, recentClaims int, logger Logger) ReportService {
	if recentClaims <= 0 {
		recentClaims = 5
	}
	return &reportServiceImpl{
		claimRepo:    claimRepo,
		recentClaims: recentClaims,
		logger:       logger,
	}
}

// GetDashboardStats summarizes the whole claim set. In-flight work (PENDING
// and VERIFIED) is surfaced as one pending bucket; the average is zero, not
// an error, on an empty set.
func (s *reportServiceImpl) GetDashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	all, err := s.claimRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load claims for dashboard", "error", err)
		return nil, fmt.Errorf("load claims: %w", err)
	}

	stats := &entity.DashboardStats{
		TotalClaims:        len(all),
		TotalClaimed:       decimal.Zero,
		AverageClaimAmount: decimal.Zero,
	}
	for _, c := range all {
		stats.TotalClaimed = stats.TotalClaimed.Add(c.TotalAmount())
		switch c.Status {
		case entity.StatusPending, entity.StatusVerified:
			stats.PendingClaims++
		case entity.StatusApproved:
			stats.ApprovedClaims++
		case entity.StatusRejected:
			stats.RejectedClaims++
		}
	}
	if len(all) > 0 {
		stats.AverageClaimAmount = stats.TotalClaimed.Div(decimal.NewFromInt(int64(len(all))))
	}

	recent := make([]*entity.Claim, len(all))
	copy(recent, all)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].SubmittedAt.After(recent[j].SubmittedAt)
	})
	if len(recent) > s.recentClaims {
		recent = recent[:s.recentClaims]
	}
	stats.RecentClaims = recent

	return stats, nil
}

// GetOverallReport returns counts and amount buckets across all claims.
func (s *reportServiceImpl) GetOverallReport(ctx context.Context) (*entity.Report, error) {
	all, err := s.claimRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load claims for report", "error", err)
		return nil, fmt.Errorf("load claims: %w", err)
	}
	return buildReport(all), nil
}

// GetMonthlyReport returns the same shape restricted to claims whose
// submission date falls in the given month. An empty window yields a zero
// report.
func (s *reportServiceImpl) GetMonthlyReport(ctx context.Context, year int, month time.Month) (*entity.Report, error) {
	all, err := s.claimRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load claims for monthly report", "error", err)
		return nil, fmt.Errorf("load claims: %w", err)
	}

	var filtered []*entity.Claim
	for _, c := range all {
		if c.SubmissionDate.Year() == year && c.SubmissionDate.Month() == month {
			filtered = append(filtered, c)
		}
	}
	return buildReport(filtered), nil
}

// GetLecturerReports groups claims per lecturer, ordered by total amount
// descending (name ascending on ties). An empty claim set yields an empty
// list.
func (s *reportServiceImpl) GetLecturerReports(ctx context.Context) ([]*entity.LecturerReport, error) {
	all, err := s.claimRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load claims for lecturer reports", "error", err)
		return nil, fmt.Errorf("load claims: %w", err)
	}

	byLecturer := make(map[string]*entity.LecturerReport)
	for _, c := range all {
		r, ok := byLecturer[c.LecturerName]
		if !ok {
			r = &entity.LecturerReport{
				LecturerName:   c.LecturerName,
				TotalAmount:    decimal.Zero,
				ApprovedAmount: decimal.Zero,
			}
			byLecturer[c.LecturerName] = r
		}
		r.TotalClaims++
		r.TotalAmount = r.TotalAmount.Add(c.TotalAmount())
		switch c.Status {
		case entity.StatusApproved:
			r.ApprovedClaims++
			r.ApprovedAmount = r.ApprovedAmount.Add(c.TotalAmount())
		case entity.StatusRejected:
			r.RejectedClaims++
		}
	}

	reports := make([]*entity.LecturerReport, 0, len(byLecturer))
	for _, r := range byLecturer {
		reports = append(reports, r)
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].TotalAmount.Equal(reports[j].TotalAmount) {
			return reports[i].TotalAmount.GreaterThan(reports[j].TotalAmount)
		}
		return reports[i].LecturerName < reports[j].LecturerName
	})
	return reports, nil
}

// GetMonthlyBreakdown lists per-month activity for a year, skipping months
// with no claims.
func (s *reportServiceImpl) GetMonthlyBreakdown(ctx context.Context, year int) ([]*entity.MonthlyBreakdownRow, error) {
	all, err := s.claimRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load claims for monthly breakdown", "error", err)
		return nil, fmt.Errorf("load claims: %w", err)
	}

	rows := make([]*entity.MonthlyBreakdownRow, 0, 12)
	for month := time.January; month <= time.December; month++ {
		var row *entity.MonthlyBreakdownRow
		for _, c := range all {
			if c.SubmissionDate.Year() != year || c.SubmissionDate.Month() != month {
				continue
			}
			if row == nil {
				row = &entity.MonthlyBreakdownRow{
					Month:       fmt.Sprintf("%s %d", month, year),
					TotalAmount: decimal.Zero,
				}
			}
			row.ClaimsCount++
			row.TotalAmount = row.TotalAmount.Add(c.TotalAmount())
			switch c.Status {
			case entity.StatusApproved:
				row.ApprovedCount++
			case entity.StatusRejected:
				row.RejectedCount++
			}
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// GetApprovedClaimsBetween lists fully approved claims dated within
// [start, end], ordered by lecturer then submission date, for payroll export
// by an external formatter.
func (s *reportServiceImpl) GetApprovedClaimsBetween(ctx context.Context, start, end time.Time) ([]*entity.Claim, error) {
	approved, err := s.claimRepo.ListByStatus(ctx, entity.StatusApproved)
	if err != nil {
		s.logger.Error("Failed to load approved claims", "error", err)
		return nil, fmt.Errorf("load approved claims: %w", err)
	}

	var filtered []*entity.Claim
	for _, c := range approved {
		if c.SubmissionDate.Before(start) || c.SubmissionDate.After(end) {
			continue
		}
		filtered = append(filtered, c)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].LecturerName != filtered[j].LecturerName {
			return filtered[i].LecturerName < filtered[j].LecturerName
		}
		return filtered[i].SubmissionDate.Before(filtered[j].SubmissionDate)
	})
	return filtered, nil
}

// GetLecturerPaymentSummary totals approved money per lecturer within
// [start, end], largest amount first.
func (s *reportServiceImpl) GetLecturerPaymentSummary(ctx context.Context, start, end time.Time) ([]*entity.LecturerPayment, error) {
	approved, err := s.GetApprovedClaimsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, c := range approved {
		totals[c.LecturerName] = totals[c.LecturerName].Add(c.TotalAmount())
	}

	payments := make([]*entity.LecturerPayment, 0, len(totals))
	for name, amount := range totals {
		payments = append(payments, &entity.LecturerPayment{LecturerName: name, Amount: amount})
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].Amount.Equal(payments[j].Amount) {
			return payments[i].Amount.GreaterThan(payments[j].Amount)
		}
		return payments[i].LecturerName < payments[j].LecturerName
	})
	return payments, nil
}

// buildReport computes the count and amount buckets for a claim slice.
func buildReport(list []*entity.Claim) *entity.Report {
	report := &entity.Report{
		TotalClaims:         len(list),
		TotalPendingAmount:  decimal.Zero,
		TotalVerifiedAmount: decimal.Zero,
		TotalApprovedAmount: decimal.Zero,
		TotalRejectedAmount: decimal.Zero,
	}
	for _, c := range list {
		amount := c.TotalAmount()
		switch c.Status {
		case entity.StatusPending:
			report.PendingClaims++
			report.TotalPendingAmount = report.TotalPendingAmount.Add(amount)
		case entity.StatusVerified:
			report.VerifiedClaims++
			report.TotalVerifiedAmount = report.TotalVerifiedAmount.Add(amount)
		case entity.StatusApproved:
			report.ApprovedClaims++
			report.TotalApprovedAmount = report.TotalApprovedAmount.Add(amount)
		case entity.StatusRejected:
			report.RejectedClaims++
			report.TotalRejectedAmount = report.TotalRejectedAmount.Add(amount)
		}
	}
	return report
}
