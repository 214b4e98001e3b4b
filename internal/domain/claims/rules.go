package claims

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campusworks/cmcs/internal/domain/entity"
)

// Rules holds the tunable constants of the validation engine.
type Rules struct {
	// MaxMonthlyHours is the hour ceiling per claim; equal-to-ceiling passes.
	MaxMonthlyHours decimal.Decimal
	// HighAmountThreshold flags (never blocks) claims whose total exceeds it.
	HighAmountThreshold decimal.Decimal
	// StaleAfterMonths rejects claims dated further back than this many months.
	StaleAfterMonths int
}

// DefaultRules returns the production defaults: 200 hours, R50 000 flag
// threshold, 3-month staleness window.
func DefaultRules() Rules {
	return Rules{
		MaxMonthlyHours:     decimal.NewFromInt(200),
		HighAmountThreshold: decimal.NewFromInt(50000),
		StaleAfterMonths:    3,
	}
}

// Validator runs the pre-submission checks. The clock is injected so the
// future-date and staleness rules are deterministic under test.
type Validator struct {
	rules Rules
	now   func() time.Time
}

// NewValidator creates a validator with the given rules and clock.
func NewValidator(rules Rules, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{rules: rules, now: now}
}

// Validate checks a candidate claim against the lecturer's existing claims.
// Rules run in order and the first blocking failure wins; the high-amount
// rule only annotates Notes and never blocks. A nil return means the claim
// may be stored.
func (v *Validator) Validate(claim *entity.Claim, existing []*entity.Claim) error {
	if err := v.checkDuplicatePeriod(claim, existing); err != nil {
		return err
	}
	if err := v.checkHourCeiling(claim); err != nil {
		return err
	}
	v.flagHighAmount(claim)
	if err := v.checkDates(claim); err != nil {
		return err
	}
	return nil
}

// checkDuplicatePeriod enforces one claim per lecturer per (month, year).
// The candidate's own ID is excluded so resubmitted updates pass.
func (v *Validator) checkDuplicatePeriod(claim *entity.Claim, existing []*entity.Claim) error {
	for _, other := range existing {
		if other.ID == claim.ID && claim.ID != 0 {
			continue
		}
		if other.LecturerName != claim.LecturerName {
			continue
		}
		if other.ClaimMonth == claim.ClaimMonth && other.ClaimYear == claim.ClaimYear {
			return &ValidationError{Reason: fmt.Sprintf(
				"a claim for %s already exists for %s; only one claim per month is allowed",
				claim.LecturerName, claim.Period())}
		}
	}
	return nil
}

func (v *Validator) checkHourCeiling(claim *entity.Claim) error {
	if claim.HoursWorked.GreaterThan(v.rules.MaxMonthlyHours) {
		return &ValidationError{Reason: fmt.Sprintf(
			"hours worked (%s) exceeds the maximum allowed monthly hours (%s)",
			claim.HoursWorked.String(), v.rules.MaxMonthlyHours.String())}
	}
	return nil
}

// flagHighAmount annotates suspiciously large claims for manual review.
func (v *Validator) flagHighAmount(claim *entity.Claim) {
	total := claim.TotalAmount()
	if total.GreaterThan(v.rules.HighAmountThreshold) {
		claim.Notes += fmt.Sprintf(
			" [FLAGGED: High amount - R%s requires additional verification]",
			total.StringFixed(2))
	}
}

func (v *Validator) checkDates(claim *entity.Claim) error {
	now := v.now()
	if claim.SubmissionDate.After(now) {
		return &ValidationError{Reason: "submission date cannot be in the future"}
	}
	cutoff := now.AddDate(0, -v.rules.StaleAfterMonths, 0)
	if claim.SubmissionDate.Before(cutoff) {
		return &ValidationError{Reason: fmt.Sprintf(
			"claims older than %d months cannot be submitted; please contact administration for assistance",
			v.rules.StaleAfterMonths)}
	}
	return nil
}
