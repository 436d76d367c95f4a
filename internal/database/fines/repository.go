// Package fines provides database operations for recorded fines.
//
// Only recorded fines live here. The payable set is derived from loan dates
// at read time by the fines service and is never persisted until paid.
package fines

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// Repository handles all fine database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new fines repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateFine inserts a recorded fine row.
func (r *Repository) CreateFine(fine *entities.Fine) error {
	return r.db.Create(fine).Error
}

// GetFineByID retrieves a single recorded fine.
func (r *Repository) GetFineByID(id uint) (*entities.Fine, error) {
	var fine entities.Fine
	err := r.db.Preload("Loan").Preload("Loan.Book").First(&fine, id).Error
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

// ListFinesForUser returns every recorded fine for a user, newest first.
// This is the audit-trail history view, independent of the derived payable
// computation.
func (r *Repository) ListFinesForUser(userID uint) ([]entities.Fine, error) {
	var fines []entities.Fine
	err := r.db.Preload("Loan").Preload("Loan.Book").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&fines).Error
	return fines, err
}

// ListAllFines returns recorded fines across all users for the staff view.
func (r *Repository) ListAllFines(limit, offset int) ([]entities.Fine, int64, error) {
	var fines []entities.Fine
	var total int64

	if err := r.db.Model(&entities.Fine{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Preload("User").Preload("Loan").Preload("Loan.Book").
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&fines).Error
	return fines, total, err
}

// PaidLoanIDs returns the set of loan IDs for which the user already has a
// paid fine row. Loans in this set never reappear in the payable view.
func (r *Repository) PaidLoanIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.Model(&entities.Fine{}).
		Where("user_id = ? AND paid = ? AND loan_id IS NOT NULL", userID, true).
		Pluck("loan_id", &ids).Error
	if err != nil {
		return nil, err
	}

	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// UnpaidTotal sums the recorded-but-unpaid fines for a user (lost-book
// fines awaiting settlement).
func (r *Repository) UnpaidTotal(userID uint) (decimal.Decimal, error) {
	var fines []entities.Fine
	err := r.db.Where("user_id = ? AND paid = ?", userID, false).Find(&fines).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, f := range fines {
		total = total.Add(f.Amount)
	}
	return total, nil
}

// MarkPaid settles a recorded unpaid fine. The paid predicate prevents
// double settlement; zero rows means already paid or not found.
func (r *Repository) MarkPaid(fineID, userID uint, paidAt time.Time) (int64, error) {
	result := r.db.Model(&entities.Fine{}).
		Where("id = ? AND user_id = ? AND paid = ?", fineID, userID, false).
		Updates(map[string]interface{}{"paid": true, "paid_at": paidAt})
	return result.RowsAffected, result.Error
}
