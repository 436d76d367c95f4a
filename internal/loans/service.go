// Package loans implements the loan return and borrow workflows.
//
// Every multi-table write runs inside a single database transaction. Status
// transitions are guarded by conditional updates whose affected-row count
// gates the commit, so concurrent requests can never double-apply.
package loans

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	booksdb "github.com/masonr9/CSC400Project-sub000/internal/database/books"
	finesdb "github.com/masonr9/CSC400Project-sub000/internal/database/fines"
	loansdb "github.com/masonr9/CSC400Project-sub000/internal/database/loans"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
)

var (
	// ErrLoanNotFound covers loans that don't exist, are not active, or
	// belong to another member. The caller sees one message for all three
	// so the workflow leaks nothing about other members' loans.
	ErrLoanNotFound = errors.New("loan not found or not active")

	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book is not available for borrowing")
	ErrFineAmountEmpty = errors.New("a replacement fine amount is required")
)

// Service implements the loan workflows over a shared GORM connection.
type Service struct {
	db     *gorm.DB
	policy *settingsstore.SettingsStore
}

func NewService(db *gorm.DB, policy *settingsstore.SettingsStore) *Service {
	return &Service{db: db, policy: policy}
}

// Return transitions an active loan owned by actorID to returned and
// restores the book's availability. Both writes commit together or not at
// all. No fine is created here; payable fines are derived lazily from the
// loan dates.
func (s *Service) Return(loanID, actorID uint) (string, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lr := loansdb.NewRepository(tx)

		loan, err := lr.GetLoanByID(loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return fmt.Errorf("load loan: %w", err)
		}
		if loan.UserID != actorID || loan.Status != entities.LoanStatusActive {
			return ErrLoanNotFound
		}

		rows, err := lr.MarkReturned(loanID, actorID, time.Now())
		if err != nil {
			return fmt.Errorf("mark returned: %w", err)
		}
		if rows == 0 {
			// Lost a race with another return request. Same outcome for
			// the caller as a stale identifier.
			return ErrLoanNotFound
		}

		if err := booksdb.NewRepository(tx).SetAvailable(loan.BookID, true); err != nil {
			return fmt.Errorf("restore availability: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return "Book returned. Thank you!", nil
}

// Borrow creates an active loan directly, bypassing the reservation queue.
// This is a staff action for walk-in lending. The availability claim is
// conditional so two concurrent borrows of the last copy cannot both
// succeed.
func (s *Service) Borrow(memberID, bookID uint) (string, error) {
	days := s.policy.LoanPeriodDays()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		br := booksdb.NewRepository(tx)

		book, err := br.GetBookByID(bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("load book: %w", err)
		}
		if !book.Available {
			return ErrBookUnavailable
		}

		now := time.Now()
		loan := &entities.Loan{
			UserID:     memberID,
			BookID:     bookID,
			BorrowedAt: now,
			DueAt:      now.Add(time.Duration(days) * 24 * time.Hour),
		}
		if err := loansdb.NewRepository(tx).CreateLoan(loan); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}

		rows, err := br.ClaimAvailable(bookID)
		if err != nil {
			return fmt.Errorf("claim availability: %w", err)
		}
		if rows == 0 {
			return ErrBookUnavailable
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Loan created. Due in %d days.", days), nil
}

// MarkLost records a lost book: the loan terminates, the book stays
// unavailable, and a replacement fine is recorded immediately with
// paid = false so it can be settled later from the fines history.
func (s *Service) MarkLost(loanID uint, fineAmount decimal.Decimal) (string, error) {
	if fineAmount.LessThanOrEqual(decimal.Zero) {
		return "", ErrFineAmountEmpty
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lr := loansdb.NewRepository(tx)

		loan, err := lr.GetLoanByID(loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return fmt.Errorf("load loan: %w", err)
		}
		if loan.Status != entities.LoanStatusActive {
			return ErrLoanNotFound
		}

		rows, err := lr.MarkLost(loanID, time.Now())
		if err != nil {
			return fmt.Errorf("mark lost: %w", err)
		}
		if rows == 0 {
			return ErrLoanNotFound
		}

		lid := loanID
		fine := &entities.Fine{
			UserID: loan.UserID,
			LoanID: &lid,
			Amount: fineAmount.Round(2),
			Paid:   false,
			Note:   "Replacement fee: " + loan.Book.Title,
		}
		if err := finesdb.NewRepository(tx).CreateFine(fine); err != nil {
			return fmt.Errorf("record replacement fine: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Loan marked lost. Replacement fine of $%s recorded.", fineAmount.Round(2).StringFixed(2)), nil
}
