package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaim_TotalAmount(t *testing.T) {
	claim := &Claim{
		HoursWorked: decimal.NewFromInt(10),
		HourlyRate:  decimal.NewFromInt(50),
	}
	assert.True(t, claim.TotalAmount().Equal(decimal.NewFromInt(500)))

	// fractional hours multiply exactly, no float drift
	claim = &Claim{
		HoursWorked: decimal.RequireFromString("7.5"),
		HourlyRate:  decimal.RequireFromString("123.45"),
	}
	assert.Equal(t, "925.875", claim.TotalAmount().String())
}

func TestClaim_Period(t *testing.T) {
	claim := &Claim{ClaimMonth: time.October, ClaimYear: 2025}
	assert.Equal(t, "October 2025", claim.Period())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusVerified.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusVerified, StatusApproved, StatusRejected} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Status("PAID").IsValid())
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("coordinator")
	require.NoError(t, err)
	assert.Equal(t, RoleCoordinator, role)

	role, err = ParseRole(" Manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)

	_, err = ParseRole("superuser")
	require.Error(t, err)

	_, err = ParseRole("")
	require.Error(t, err)
}
