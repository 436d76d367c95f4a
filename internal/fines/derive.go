// Package fines implements fine derivation and payment.
//
// Payable fines are never pre-computed or stored: they are derived from the
// dates of returned loans on every read. A fine row is only inserted once a
// fine is actually paid (or, for lost books, recorded unpaid for later
// settlement). DerivePayableFines is a pure function so the derivation is
// testable without a database.
package fines

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// PayableFine is one entry of the derived payable view.
type PayableFine struct {
	LoanID     uint            `json:"loan_id"`
	BookTitle  string          `json:"book_title"`
	DueAt      time.Time       `json:"due_at"`
	ReturnedAt time.Time       `json:"returned_at"`
	DaysLate   int             `json:"days_late"`
	Amount     decimal.Decimal `json:"amount"`
}

// DerivePayableFines computes the payable set from a member's loans.
//
// A loan qualifies when it was returned strictly after its due date, counted
// in whole calendar days, and no paid fine row exists for it yet. Lost loans
// never qualify: their replacement fine is recorded at the moment they are
// marked lost. The result preserves the order of the input slice, which is
// the member's loan listing order.
func DerivePayableFines(loans []entities.Loan, paidLoanIDs map[uint]bool, ratePerDay decimal.Decimal) []PayableFine {
	out := make([]PayableFine, 0, len(loans))
	for _, loan := range loans {
		if loan.Status != entities.LoanStatusReturned || loan.ReturnedAt == nil {
			continue
		}
		if paidLoanIDs[loan.ID] {
			continue
		}

		daysLate := wholeDaysBetween(loan.DueAt, *loan.ReturnedAt)
		if daysLate <= 0 {
			// Returned on time, or clock skew produced equal/inverted
			// dates. Never a payable entry.
			continue
		}

		out = append(out, PayableFine{
			LoanID:     loan.ID,
			BookTitle:  loan.Book.Title,
			DueAt:      loan.DueAt,
			ReturnedAt: *loan.ReturnedAt,
			DaysLate:   daysLate,
			Amount:     ratePerDay.Mul(decimal.NewFromInt(int64(daysLate))).Round(2),
		})
	}
	return out
}

// TotalAmount sums the derived payable entries.
func TotalAmount(payable []PayableFine) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payable {
		total = total.Add(p.Amount)
	}
	return total
}

// wholeDaysBetween counts calendar days from a to b, ignoring the time of
// day on either side. Negative when b precedes a.
func wholeDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	aDay := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bDay := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay) / (24 * time.Hour))
}
