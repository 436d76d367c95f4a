// Package books provides database operations for the catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(42)
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// ErrBookOnLoan is returned when deleting a book that is currently borrowed.
var ErrBookOnLoan = errors.New("book has an active loan")

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook adds a new book to the catalog. New books are available.
func (r *Repository) CreateBook(book *entities.Book) error {
	book.Available = true
	return r.db.Create(book).Error
}

// GetBookByID retrieves a single book.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook saves catalog metadata changes. The availability flag is owned
// by the loan and reservation workflows and is deliberately not written here.
func (r *Repository) UpdateBook(book *entities.Book) error {
	return r.db.Model(&entities.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]any{
			"title":            book.Title,
			"author":           book.Author,
			"genre":            book.Genre,
			"language":         book.Language,
			"isbn":             book.ISBN,
			"publication_year": book.PublicationYear,
			"summary":          book.Summary,
		}).Error
}

// DeleteBook removes a book from the catalog. A book with an active loan
// cannot be deleted.
func (r *Repository) DeleteBook(id uint) error {
	var active int64
	err := r.db.Model(&entities.Loan{}).
		Where("book_id = ? AND status = ?", id, entities.LoanStatusActive).
		Count(&active).Error
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrBookOnLoan
	}
	return r.db.Delete(&entities.Book{}, id).Error
}

// ListBooks returns catalog entries, newest first, optionally filtered by a
// case-insensitive title/author/genre substring match.
func (r *Repository) ListBooks(search string, limit, offset int) ([]entities.Book, int64, error) {
	var books []entities.Book
	var total int64

	query := r.db.Model(&entities.Book{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR genre LIKE ?", pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Order("created_at DESC").Find(&books).Error
	return books, total, err
}

// SetAvailable flips the availability flag. Only the loan and reservation
// workflows should call this, inside their transactions.
func (r *Repository) SetAvailable(bookID uint, available bool) error {
	return r.db.Model(&entities.Book{}).
		Where("id = ?", bookID).
		Update("available", available).Error
}

// ClaimAvailable conditionally flips available true -> false and returns
// the affected-row count. Zero rows means the book was already claimed by a
// concurrent borrow and the caller must roll back.
func (r *Repository) ClaimAvailable(bookID uint) (int64, error) {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND available = ?", bookID, true).
		Update("available", false)
	return result.RowsAffected, result.Error
}

// CountBooks returns the catalog size and how many titles are available.
func (r *Repository) CountBooks() (total, available int64, err error) {
	if err = r.db.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&entities.Book{}).Where("available = ?", true).Count(&available).Error
	return total, available, err
}
