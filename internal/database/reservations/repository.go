// Package reservations provides database operations for the reservation queue.
package reservations

import (
	"time"

	"gorm.io/gorm"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// Repository handles all reservation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateReservation inserts a new pending reservation.
func (r *Repository) CreateReservation(reservation *entities.Reservation) error {
	reservation.Status = entities.ReservationStatusPending
	if reservation.ReservedAt.IsZero() {
		reservation.ReservedAt = time.Now()
	}
	return r.db.Create(reservation).Error
}

// GetReservationByID retrieves a reservation with its book.
func (r *Repository) GetReservationByID(id uint) (*entities.Reservation, error) {
	var reservation entities.Reservation
	err := r.db.Preload("Book").First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// HasOpenReservation reports whether the user already holds a pending or
// approved reservation for the book.
func (r *Repository) HasOpenReservation(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Reservation{}).
		Where("user_id = ? AND book_id = ? AND status IN ?",
			userID, bookID,
			[]entities.ReservationStatus{entities.ReservationStatusPending, entities.ReservationStatusApproved}).
		Count(&count).Error
	return count > 0, err
}

// ListReservationsForUser returns a user's reservations, newest first.
func (r *Repository) ListReservationsForUser(userID uint) ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("reserved_at DESC, id DESC").
		Find(&reservations).Error
	return reservations, err
}

// ListOpenReservations returns pending and approved reservations for the
// librarian queue, oldest first so they are handled in request order.
func (r *Repository) ListOpenReservations() ([]entities.Reservation, error) {
	var reservations []entities.Reservation
	err := r.db.Preload("User").Preload("Book").
		Where("status IN ?",
			[]entities.ReservationStatus{entities.ReservationStatusPending, entities.ReservationStatusApproved}).
		Order("reserved_at ASC, id ASC").
		Find(&reservations).Error
	return reservations, err
}

// MarkApproved transitions pending -> approved. The status predicate makes
// the update safe under concurrent approvals: only one request sees a
// non-zero row count.
func (r *Repository) MarkApproved(reservationID uint) (int64, error) {
	result := r.db.Model(&entities.Reservation{}).
		Where("id = ? AND status = ?", reservationID, entities.ReservationStatusPending).
		Update("status", entities.ReservationStatusApproved)
	return result.RowsAffected, result.Error
}

// MarkFulfilled transitions approved -> fulfilled. Callers run this inside
// the fulfillment transaction and roll back when zero rows change, so a
// concurrent fulfiller can never double-create a loan.
func (r *Repository) MarkFulfilled(reservationID uint) (int64, error) {
	result := r.db.Model(&entities.Reservation{}).
		Where("id = ? AND status = ?", reservationID, entities.ReservationStatusApproved).
		Update("status", entities.ReservationStatusFulfilled)
	return result.RowsAffected, result.Error
}

// DeletePending removes a reservation that is still pending and owned by
// userID. Returns the number of rows deleted.
func (r *Repository) DeletePending(reservationID, userID uint) (int64, error) {
	result := r.db.
		Where("id = ? AND user_id = ? AND status = ?",
			reservationID, userID, entities.ReservationStatusPending).
		Delete(&entities.Reservation{})
	return result.RowsAffected, result.Error
}
