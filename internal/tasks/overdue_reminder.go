package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/notify"
)

// LoanLoader provides the loan lookup the reminder processor needs.
type LoanLoader interface {
	GetLoanByID(id uint) (*entities.Loan, error)
}

// UserLoader resolves the borrower's address.
type UserLoader interface {
	GetUserByID(id uint) (*entities.User, error)
}

// SendOverdueReminderTask emails a member about one overdue loan. The
// scheduler enqueues one task per overdue loan so a single bad address
// cannot block the rest of the scan.
type SendOverdueReminderTask struct {
	LoanID uint `json:"loan_id"`
}

// Config returns the queue configuration for overdue reminder tasks.
func (t SendOverdueReminderTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_overdue_reminder",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueReminderProcessor creates a processor function for
// SendOverdueReminderTask.
func OverdueReminderProcessor(loans LoanLoader, users UserLoader, mailer notify.Mailer) backlite.QueueProcessor[SendOverdueReminderTask] {
	return func(ctx context.Context, task SendOverdueReminderTask) error {
		if mailer == nil {
			return fmt.Errorf("mailer not configured")
		}

		loan, err := loans.GetLoanByID(task.LoanID)
		if err != nil {
			return fmt.Errorf("load loan %d: %w", task.LoanID, err)
		}

		// The loan may have been returned between the scan and this run.
		if loan.Status != entities.LoanStatusActive || !loan.IsOverdue(time.Now()) {
			log.Printf("[TASK] Loan %d no longer overdue, skipping reminder", task.LoanID)
			return nil
		}

		user, err := users.GetUserByID(loan.UserID)
		if err != nil {
			return fmt.Errorf("load user %d: %w", loan.UserID, err)
		}

		daysOverdue := int(time.Since(loan.DueAt).Hours() / 24)
		subject := fmt.Sprintf("Overdue: %q was due on %s", loan.Book.Title, loan.DueAt.Format("January 2, 2006"))
		body := fmt.Sprintf(
			"Hello %s,\n\nYour loan of %q was due on %s (%d day(s) ago). "+
				"Please return it to avoid further late fees.\n\nThe Library",
			user.Username, loan.Book.Title, loan.DueAt.Format("January 2, 2006"), daysOverdue)

		if err := mailer.Send(user.Email, subject, body); err != nil {
			return fmt.Errorf("send reminder for loan %d: %w", task.LoanID, err)
		}

		log.Printf("[TASK] Sent overdue reminder for loan %d to %s", task.LoanID, user.Email)
		return nil
	}
}

// NewOverdueReminderQueue creates a backlite queue for overdue reminders.
func NewOverdueReminderQueue(loans LoanLoader, users UserLoader, mailer notify.Mailer) backlite.Queue {
	return backlite.NewQueue(OverdueReminderProcessor(loans, users, mailer))
}
