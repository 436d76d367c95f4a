package fines

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/masonr9/CSC400Project-sub000/internal/database/fines"
	"github.com/masonr9/CSC400Project-sub000/internal/database/loans"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
)

var (
	// ErrNotPayable is returned when the requested loan has no payable
	// fine: it was returned on time, already paid, or does not belong to
	// the member.
	ErrNotPayable = errors.New("fine cannot be paid")
	// ErrNothingToPay is returned by PayAll when the payable set is empty.
	ErrNothingToPay = errors.New("no outstanding fines")
	// ErrFineNotFound is returned when a recorded fine does not exist or
	// is already settled.
	ErrFineNotFound = errors.New("fine not found or already paid")
)

// History is the recorded-fines view for a member.
type History struct {
	Fines       []entities.Fine
	UnpaidTotal decimal.Decimal
}

// Service derives and settles fines for members.
type Service struct {
	db     *gorm.DB
	policy *settingsstore.SettingsStore
}

func NewService(db *gorm.DB, policy *settingsstore.SettingsStore) *Service {
	return &Service{db: db, policy: policy}
}

// PayableForUser returns the member's derived payable fines in loan order.
func (s *Service) PayableForUser(userID uint) ([]PayableFine, error) {
	loanRepo := loans.NewRepository(s.db)
	fineRepo := fines.NewRepository(s.db)

	memberLoans, err := loanRepo.ListLoansForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	paid, err := fineRepo.PaidLoanIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid fines: %w", err)
	}
	return DerivePayableFines(memberLoans, paid, s.policy.FineRatePerDay()), nil
}

// Pay settles the derived fine for a single loan. The payable set is derived
// freshly so a concurrent payment of the same loan surfaces as ErrNotPayable
// rather than a duplicate row.
func (s *Service) Pay(userID, loanID uint) (string, error) {
	payable, err := s.PayableForUser(userID)
	if err != nil {
		return "", err
	}

	var target *PayableFine
	for i := range payable {
		if payable[i].LoanID == loanID {
			target = &payable[i]
			break
		}
	}
	if target == nil {
		return "", ErrNotPayable
	}

	fineRepo := fines.NewRepository(s.db)
	id := loanID
	fine := &entities.Fine{
		UserID: userID,
		LoanID: &id,
		Amount: target.Amount,
		Paid:   true,
		PaidAt: timePtr(time.Now()),
		Note:   fmt.Sprintf("Late return: %s (%d days)", target.BookTitle, target.DaysLate),
	}
	if err := fineRepo.CreateFine(fine); err != nil {
		return "", fmt.Errorf("failed to record fine payment: %w", err)
	}
	return fmt.Sprintf("Fine of $%s paid. Thank you!", target.Amount.StringFixed(2)), nil
}

// PayAll settles every derived fine for the member in a single transaction.
// Either all payments are recorded or none are.
func (s *Service) PayAll(userID uint) (string, error) {
	payable, err := s.PayableForUser(userID)
	if err != nil {
		return "", err
	}
	if len(payable) == 0 {
		return "", ErrNothingToPay
	}

	total := TotalAmount(payable)
	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		fineRepo := fines.NewRepository(tx)
		for _, p := range payable {
			id := p.LoanID
			fine := &entities.Fine{
				UserID: userID,
				LoanID: &id,
				Amount: p.Amount,
				Paid:   true,
				PaidAt: &now,
				Note:   fmt.Sprintf("Late return: %s (%d days)", p.BookTitle, p.DaysLate),
			}
			if err := fineRepo.CreateFine(fine); err != nil {
				return fmt.Errorf("failed to record payment for loan %d: %w", p.LoanID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("All fines paid ($%s). Thank you!", total.StringFixed(2)), nil
}

// HistoryForUser returns the member's recorded fines plus the total of any
// still-unpaid rows (lost-book replacement fees awaiting settlement).
func (s *Service) HistoryForUser(userID uint) (*History, error) {
	fineRepo := fines.NewRepository(s.db)
	recorded, err := fineRepo.ListFinesForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fines: %w", err)
	}
	unpaid, err := fineRepo.UnpaidTotal(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to total unpaid fines: %w", err)
	}
	return &History{Fines: recorded, UnpaidTotal: unpaid}, nil
}

// Settle marks a recorded unpaid fine (a lost-book replacement fee) as paid.
func (s *Service) Settle(fineID, userID uint) (string, error) {
	fineRepo := fines.NewRepository(s.db)
	fine, err := fineRepo.GetFineByID(fineID)
	if err != nil {
		return "", ErrFineNotFound
	}
	if fine.UserID != userID {
		return "", ErrFineNotFound
	}
	rows, err := fineRepo.MarkPaid(fineID, userID, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to settle fine: %w", err)
	}
	if rows == 0 {
		return "", ErrFineNotFound
	}
	return fmt.Sprintf("Fine of $%s paid. Thank you!", fine.Amount.StringFixed(2)), nil
}

// SettleRecorded is the staff variant of Settle: it settles a recorded
// unpaid fine regardless of which member owes it.
func (s *Service) SettleRecorded(fineID uint) (string, error) {
	fineRepo := fines.NewRepository(s.db)
	fine, err := fineRepo.GetFineByID(fineID)
	if err != nil {
		return "", ErrFineNotFound
	}
	return s.Settle(fineID, fine.UserID)
}

func timePtr(t time.Time) *time.Time { return &t }
