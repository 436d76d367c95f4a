package loans

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/masonr9/CSC400Project-sub000/internal/config"
	settingsrepo "github.com/masonr9/CSC400Project-sub000/internal/database/settings"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
)

func setupTestService(t *testing.T) (*gorm.DB, *Service, func()) {
	dbPath := "./test_loans_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Loan{},
		&entities.Fine{},
		&entities.Setting{},
	)
	require.NoError(t, err)

	policy := settingsstore.New(settingsrepo.NewRepository(db), config.Library{
		LoanPeriodDays: 14,
		FineRatePerDay: "0.50",
	})
	svc := NewService(db, policy)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, svc, cleanup
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	user := &entities.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestBook(t *testing.T, db *gorm.DB, title string, available bool) *entities.Book {
	book := &entities.Book{Title: title, Author: "Test Author", Available: available}
	require.NoError(t, db.Create(book).Error)
	// The default:true tag makes GORM drop a zero-value false on insert, so
	// apply the requested availability explicitly.
	require.NoError(t, db.Model(book).Update("available", available).Error)
	return book
}

func createActiveLoan(t *testing.T, db *gorm.DB, userID, bookID uint) *entities.Loan {
	now := time.Now()
	loan := &entities.Loan{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      now.AddDate(0, 0, 14),
		Status:     entities.LoanStatusActive,
	}
	require.NoError(t, db.Create(loan).Error)
	return loan
}

func TestService_Return(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	book := createTestBook(t, db, "Dune", false)
	loan := createActiveLoan(t, db, user.ID, book.ID)

	msg, err := svc.Return(loan.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book returned. Thank you!", msg)

	var updated entities.Loan
	db.First(&updated, loan.ID)
	assert.Equal(t, entities.LoanStatusReturned, updated.Status)
	assert.NotNil(t, updated.ReturnedAt)

	var updatedBook entities.Book
	db.First(&updatedBook, book.ID)
	assert.True(t, updatedBook.Available)
}

func TestService_Return_Twice(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	book := createTestBook(t, db, "Dune", false)
	loan := createActiveLoan(t, db, user.ID, book.ID)

	_, err := svc.Return(loan.ID, user.ID)
	require.NoError(t, err)

	_, err = svc.Return(loan.ID, user.ID)
	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestService_Return_NotOwner(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	book := createTestBook(t, db, "Dune", false)
	loan := createActiveLoan(t, db, owner.ID, book.ID)

	_, err := svc.Return(loan.ID, other.ID)

	// Same error as a missing loan so nothing leaks about other members.
	assert.ErrorIs(t, err, ErrLoanNotFound)

	var updated entities.Loan
	db.First(&updated, loan.ID)
	assert.Equal(t, entities.LoanStatusActive, updated.Status)
}

func TestService_Return_UnknownLoan(t *testing.T) {
	_, svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.Return(999, 1)

	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestService_Borrow(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	book := createTestBook(t, db, "Dune", true)

	msg, err := svc.Borrow(user.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loan created. Due in 14 days.", msg)

	var loan entities.Loan
	require.NoError(t, db.Where("user_id = ? AND book_id = ?", user.ID, book.ID).First(&loan).Error)
	assert.Equal(t, entities.LoanStatusActive, loan.Status)
	assert.WithinDuration(t, loan.BorrowedAt.AddDate(0, 0, 14), loan.DueAt, time.Minute)

	var updatedBook entities.Book
	db.First(&updatedBook, book.ID)
	assert.False(t, updatedBook.Available)
}

func TestService_Borrow_Unavailable(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	book := createTestBook(t, db, "Dune", false)

	_, err := svc.Borrow(user.ID, book.ID)
	assert.ErrorIs(t, err, ErrBookUnavailable)

	// The transaction rolled back: no loan row survived.
	var count int64
	db.Model(&entities.Loan{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestService_Borrow_UnknownBook(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")

	_, err := svc.Borrow(user.ID, 999)

	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestService_Borrow_UsesConfiguredLoanPeriod(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	require.NoError(t, settingsrepo.NewRepository(db).SetSetting(entities.SettingKeyLoanPeriodDays, "7"))

	user := createTestUser(t, db, "member")
	book := createTestBook(t, db, "Dune", true)

	msg, err := svc.Borrow(user.ID, book.ID)

	require.NoError(t, err)
	assert.Equal(t, "Loan created. Due in 7 days.", msg)
}

func TestService_MarkLost(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	book := createTestBook(t, db, "Dune", false)
	loan := createActiveLoan(t, db, user.ID, book.ID)

	msg, err := svc.MarkLost(loan.ID, decimal.RequireFromString("25.00"))
	require.NoError(t, err)
	assert.Contains(t, msg, "25.00")

	var updated entities.Loan
	db.First(&updated, loan.ID)
	assert.Equal(t, entities.LoanStatusLost, updated.Status)

	// Book stays unavailable.
	var updatedBook entities.Book
	db.First(&updatedBook, book.ID)
	assert.False(t, updatedBook.Available)

	// The replacement fine is recorded unpaid.
	var fine entities.Fine
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&fine).Error)
	assert.False(t, fine.Paid)
	assert.Equal(t, "25.00", fine.Amount.StringFixed(2))
	assert.Equal(t, "Replacement fee: Dune", fine.Note)
}

func TestService_MarkLost_ZeroAmount(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	book := createTestBook(t, db, "Dune", false)
	loan := createActiveLoan(t, db, user.ID, book.ID)

	_, err := svc.MarkLost(loan.ID, decimal.Zero)

	assert.ErrorIs(t, err, ErrFineAmountEmpty)
}

func TestService_MarkLost_AlreadyReturned(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	book := createTestBook(t, db, "Dune", false)
	loan := createActiveLoan(t, db, user.ID, book.ID)

	_, err := svc.Return(loan.ID, user.ID)
	require.NoError(t, err)

	_, err = svc.MarkLost(loan.ID, decimal.RequireFromString("25.00"))
	assert.ErrorIs(t, err, ErrLoanNotFound)
}
