// Package reservations implements the reservation fulfillment workflow.
//
// The reservation state machine only moves forward:
//
//	pending --approve--> approved --fulfill--> fulfilled
//
// Cancellation is a hard delete and is only possible while pending. Each
// transition is a conditional update; the affected-row count is the commit
// gate for the fulfillment transaction.
package reservations

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	booksdb "github.com/masonr9/CSC400Project-sub000/internal/database/books"
	loansdb "github.com/masonr9/CSC400Project-sub000/internal/database/loans"
	reservationsdb "github.com/masonr9/CSC400Project-sub000/internal/database/reservations"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
)

var (
	ErrNotFound        = errors.New("reservation not found")
	ErrNotPending      = errors.New("reservation already approved/fulfilled or not found")
	ErrNotApproved     = errors.New("reservation must be approved before fulfillment")
	ErrBookOnLoan      = errors.New("book already has an active loan")
	ErrAlreadyReserved = errors.New("you already have an open reservation for this book")
	ErrCannotCancel    = errors.New("only pending reservations can be cancelled")
	ErrBookNotFound    = errors.New("book not found")

	// ErrConflict reports a fulfillment race: another request advanced the
	// reservation between our precondition check and our update.
	ErrConflict = errors.New("reservation was modified by another request")
)

// Service implements the reservation workflows.
type Service struct {
	db     *gorm.DB
	policy *settingsstore.SettingsStore
}

func NewService(db *gorm.DB, policy *settingsstore.SettingsStore) *Service {
	return &Service{db: db, policy: policy}
}

// Reserve places a pending reservation for a member. A member may hold at
// most one pending or approved reservation per book.
func (s *Service) Reserve(memberID, bookID uint) (string, error) {
	rr := reservationsdb.NewRepository(s.db)

	if _, err := booksdb.NewRepository(s.db).GetBookByID(bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrBookNotFound
		}
		return "", fmt.Errorf("load book: %w", err)
	}

	open, err := rr.HasOpenReservation(memberID, bookID)
	if err != nil {
		return "", fmt.Errorf("check open reservations: %w", err)
	}
	if open {
		return "", ErrAlreadyReserved
	}

	reservation := &entities.Reservation{
		UserID:     memberID,
		BookID:     bookID,
		ReservedAt: time.Now(),
	}
	if err := rr.CreateReservation(reservation); err != nil {
		return "", fmt.Errorf("create reservation: %w", err)
	}
	return "Reservation placed. A librarian will review it shortly.", nil
}

// Cancel hard-deletes a pending reservation owned by actorID. Approved and
// fulfilled reservations cannot be cancelled.
func (s *Service) Cancel(reservationID, actorID uint) (string, error) {
	rows, err := reservationsdb.NewRepository(s.db).DeletePending(reservationID, actorID)
	if err != nil {
		return "", fmt.Errorf("cancel reservation: %w", err)
	}
	if rows == 0 {
		return "", ErrCannotCancel
	}
	return "Reservation cancelled.", nil
}

// Approve transitions pending -> approved. The single conditional update is
// the whole operation: when two librarians race, exactly one sees a
// non-zero row count and the other gets ErrNotPending.
func (s *Service) Approve(reservationID uint) (string, error) {
	rows, err := reservationsdb.NewRepository(s.db).MarkApproved(reservationID)
	if err != nil {
		return "", fmt.Errorf("approve reservation: %w", err)
	}
	if rows == 0 {
		return "", ErrNotPending
	}
	return "Reservation approved.", nil
}

// Fulfill converts an approved reservation into an active loan.
//
// Preconditions, checked in order before any write: the reservation exists;
// its status is exactly approved; no other loan on the same book is active.
// The effect is atomic: create the loan, advance the reservation, flip the
// book's availability. The reservation update's affected-row count is the
// commit gate; zero rows rolls the whole transaction back.
func (s *Service) Fulfill(reservationID uint) (string, error) {
	reservation, err := reservationsdb.NewRepository(s.db).GetReservationByID(reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load reservation: %w", err)
	}
	if reservation.Status != entities.ReservationStatusApproved {
		return "", ErrNotApproved
	}

	onLoan, err := loansdb.NewRepository(s.db).HasActiveLoanForBook(reservation.BookID)
	if err != nil {
		return "", fmt.Errorf("check active loans: %w", err)
	}
	if onLoan {
		return "", ErrBookOnLoan
	}

	days := s.policy.LoanPeriodDays()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		loan := &entities.Loan{
			UserID:     reservation.UserID,
			BookID:     reservation.BookID,
			BorrowedAt: now,
			DueAt:      now.Add(time.Duration(days) * 24 * time.Hour),
		}
		if err := loansdb.NewRepository(tx).CreateLoan(loan); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}

		rows, err := reservationsdb.NewRepository(tx).MarkFulfilled(reservationID)
		if err != nil {
			return fmt.Errorf("mark fulfilled: %w", err)
		}
		if rows == 0 {
			// A concurrent fulfiller won; discard our loan.
			return ErrConflict
		}

		rows, err = booksdb.NewRepository(tx).ClaimAvailable(reservation.BookID)
		if err != nil {
			return fmt.Errorf("claim availability: %w", err)
		}
		if rows == 0 {
			// A walk-in borrow claimed the book between our precondition
			// check and this write.
			return ErrBookOnLoan
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrBookOnLoan) {
			return "", err
		}
		return "", fmt.Errorf("fulfillment failed: %w", err)
	}
	return fmt.Sprintf("Reservation fulfilled. Due in %d days.", days), nil
}
