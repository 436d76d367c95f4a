// Package loans provides database operations for the loan ledger.
//
// Status transitions use conditional updates ("UPDATE ... WHERE id = ? AND
// status = ?") and report the affected-row count so that callers can detect
// lost races and gate their transactions on it.
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// Repository handles all loan ledger database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loan repository. Pass the transaction handle
// from gorm.DB.Transaction to run writes atomically with other repositories.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateLoan inserts a new active loan row.
func (r *Repository) CreateLoan(loan *entities.Loan) error {
	loan.Status = entities.LoanStatusActive
	return r.db.Create(loan).Error
}

// GetLoanByID retrieves a loan with its book.
func (r *Repository) GetLoanByID(id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.Preload("Book").First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListLoansForUser returns a user's loans in borrow order. The derived fine
// view relies on this order, so keep it stable.
func (r *Repository) ListLoansForUser(userID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("borrowed_at ASC, id ASC").
		Find(&loans).Error
	return loans, err
}

// ListAllLoans returns every loan with user and book preloaded, newest first.
func (r *Repository) ListAllLoans(limit, offset int) ([]entities.Loan, int64, error) {
	var loans []entities.Loan
	var total int64

	if err := r.db.Model(&entities.Loan{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Preload("User").Preload("Book").Order("borrowed_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&loans).Error
	return loans, total, err
}

// HasActiveLoanForBook reports whether any active loan references the book.
func (r *Repository) HasActiveLoanForBook(bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("book_id = ? AND status = ?", bookID, entities.LoanStatusActive).
		Count(&count).Error
	return count > 0, err
}

// MarkReturned transitions an active loan owned by userID to returned and
// stamps the return date. Returns the number of rows changed: zero means the
// loan does not exist, is not active, or belongs to someone else.
func (r *Repository) MarkReturned(loanID, userID uint, returnedAt time.Time) (int64, error) {
	result := r.db.Model(&entities.Loan{}).
		Where("id = ? AND user_id = ? AND status = ?", loanID, userID, entities.LoanStatusActive).
		Updates(map[string]any{
			"status":      entities.LoanStatusReturned,
			"returned_at": returnedAt,
		})
	return result.RowsAffected, result.Error
}

// MarkLost transitions an active loan to lost. The book stays unavailable.
// Returns the number of rows changed.
func (r *Repository) MarkLost(loanID uint, lostAt time.Time) (int64, error) {
	result := r.db.Model(&entities.Loan{}).
		Where("id = ? AND status = ?", loanID, entities.LoanStatusActive).
		Updates(map[string]any{
			"status":      entities.LoanStatusLost,
			"returned_at": lostAt,
		})
	return result.RowsAffected, result.Error
}

// ListOverdueActive returns active loans past their due date as of now,
// with user and book preloaded for reminder delivery.
func (r *Repository) ListOverdueActive(now time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("User").Preload("Book").
		Where("status = ? AND due_at < ?", entities.LoanStatusActive, now).
		Order("due_at ASC").
		Find(&loans).Error
	return loans, err
}

// CountActive returns the number of currently active loans.
func (r *Repository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("status = ?", entities.LoanStatusActive).
		Count(&count).Error
	return count, err
}
