package fines

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func returnedLoan(id uint, title string, due, returned time.Time) entities.Loan {
	r := returned
	return entities.Loan{
		ID:         id,
		Status:     entities.LoanStatusReturned,
		DueAt:      due,
		ReturnedAt: &r,
		Book:       entities.Book{Title: title},
	}
}

func TestDerivePayableFines_LateReturn(t *testing.T) {
	rate := decimal.RequireFromString("0.50")
	loans := []entities.Loan{
		returnedLoan(1, "Dune", day(2024, 1, 10), day(2024, 1, 15)),
	}

	payable := DerivePayableFines(loans, nil, rate)

	require.Len(t, payable, 1)
	assert.Equal(t, uint(1), payable[0].LoanID)
	assert.Equal(t, "Dune", payable[0].BookTitle)
	assert.Equal(t, 5, payable[0].DaysLate)
	assert.True(t, payable[0].Amount.Equal(decimal.RequireFromString("2.50")),
		"got %s", payable[0].Amount)
}

func TestDerivePayableFines_OnTimeReturnExcluded(t *testing.T) {
	rate := decimal.RequireFromString("0.50")
	loans := []entities.Loan{
		returnedLoan(1, "Dune", day(2024, 1, 10), day(2024, 1, 10)),
		returnedLoan(2, "Hyperion", day(2024, 1, 10), day(2024, 1, 5)),
	}

	payable := DerivePayableFines(loans, nil, rate)

	assert.Empty(t, payable)
}

func TestDerivePayableFines_TimeOfDayIgnored(t *testing.T) {
	rate := decimal.RequireFromString("1.00")
	due := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	returned := time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC)
	loans := []entities.Loan{returnedLoan(1, "Dune", due, returned)}

	payable := DerivePayableFines(loans, nil, rate)

	require.Len(t, payable, 1)
	assert.Equal(t, 1, payable[0].DaysLate)
}

func TestDerivePayableFines_ActiveAndLostExcluded(t *testing.T) {
	rate := decimal.RequireFromString("0.50")
	past := day(2024, 1, 1)
	returned := day(2024, 2, 1)
	loans := []entities.Loan{
		{ID: 1, Status: entities.LoanStatusActive, DueAt: past},
		{ID: 2, Status: entities.LoanStatusLost, DueAt: past, ReturnedAt: &returned},
		returnedLoan(3, "Dune", past, returned),
	}

	payable := DerivePayableFines(loans, nil, rate)

	require.Len(t, payable, 1)
	assert.Equal(t, uint(3), payable[0].LoanID)
}

func TestDerivePayableFines_PaidLoansExcluded(t *testing.T) {
	rate := decimal.RequireFromString("0.50")
	loans := []entities.Loan{
		returnedLoan(1, "Dune", day(2024, 1, 10), day(2024, 1, 15)),
		returnedLoan(2, "Hyperion", day(2024, 1, 10), day(2024, 1, 12)),
	}

	payable := DerivePayableFines(loans, map[uint]bool{1: true}, rate)

	require.Len(t, payable, 1)
	assert.Equal(t, uint(2), payable[0].LoanID)
}

func TestDerivePayableFines_PreservesLoanOrder(t *testing.T) {
	rate := decimal.RequireFromString("0.50")
	loans := []entities.Loan{
		returnedLoan(7, "First borrowed", day(2024, 1, 1), day(2024, 1, 5)),
		returnedLoan(3, "Second borrowed", day(2024, 2, 1), day(2024, 2, 5)),
		returnedLoan(9, "Third borrowed", day(2024, 3, 1), day(2024, 3, 5)),
	}

	payable := DerivePayableFines(loans, nil, rate)

	require.Len(t, payable, 3)
	assert.Equal(t, uint(7), payable[0].LoanID)
	assert.Equal(t, uint(3), payable[1].LoanID)
	assert.Equal(t, uint(9), payable[2].LoanID)
}

func TestDerivePayableFines_AmountRounding(t *testing.T) {
	rate := decimal.RequireFromString("0.333")
	loans := []entities.Loan{
		returnedLoan(1, "Dune", day(2024, 1, 10), day(2024, 1, 13)),
	}

	payable := DerivePayableFines(loans, nil, rate)

	require.Len(t, payable, 1)
	// 3 days * 0.333 = 0.999, rounds to 1.00
	assert.Equal(t, "1.00", payable[0].Amount.StringFixed(2))
}

func TestTotalAmount(t *testing.T) {
	payable := []PayableFine{
		{Amount: decimal.RequireFromString("2.50")},
		{Amount: decimal.RequireFromString("1.00")},
	}

	assert.Equal(t, "3.50", TotalAmount(payable).StringFixed(2))
	assert.True(t, TotalAmount(nil).IsZero())
}
