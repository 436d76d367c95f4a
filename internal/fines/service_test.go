package fines

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
	dbPath := "./test_fines_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

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

func createLateLoan(t *testing.T, db *gorm.DB, userID uint, title string, daysLate int) *entities.Loan {
	book := &entities.Book{Title: title, Author: "Test Author"}
	require.NoError(t, db.Create(book).Error)

	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	returned := due.AddDate(0, 0, daysLate)
	loan := &entities.Loan{
		UserID:     userID,
		BookID:     book.ID,
		BorrowedAt: due.AddDate(0, 0, -14),
		DueAt:      due,
		ReturnedAt: &returned,
		Status:     entities.LoanStatusReturned,
	}
	require.NoError(t, db.Create(loan).Error)
	return loan
}

func TestService_PayableForUser(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	createLateLoan(t, db, user.ID, "Dune", 5)
	createLateLoan(t, db, user.ID, "Hyperion", 0)

	payable, err := svc.PayableForUser(user.ID)

	require.NoError(t, err)
	require.Len(t, payable, 1)
	assert.Equal(t, "Dune", payable[0].BookTitle)
	assert.Equal(t, "2.50", payable[0].Amount.StringFixed(2))
}

func TestService_Pay(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	loan := createLateLoan(t, db, user.ID, "Dune", 5)

	msg, err := svc.Pay(user.ID, loan.ID)
	require.NoError(t, err)
	assert.Contains(t, msg, "2.50")

	// A paid row was recorded with the derived amount.
	var fine entities.Fine
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&fine).Error)
	assert.True(t, fine.Paid)
	require.NotNil(t, fine.LoanID)
	assert.Equal(t, loan.ID, *fine.LoanID)
	assert.Equal(t, "2.50", fine.Amount.StringFixed(2))
	assert.NotNil(t, fine.PaidAt)

	// The loan leaves the payable view.
	payable, err := svc.PayableForUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, payable)

	// Paying again is rejected rather than recorded twice.
	_, err = svc.Pay(user.ID, loan.ID)
	assert.ErrorIs(t, err, ErrNotPayable)
}

func TestService_Pay_OnTimeLoan(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	loan := createLateLoan(t, db, user.ID, "Dune", 0)

	_, err := svc.Pay(user.ID, loan.ID)

	assert.ErrorIs(t, err, ErrNotPayable)
}

func TestService_Pay_OtherUsersLoan(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	loan := createLateLoan(t, db, owner.ID, "Dune", 5)

	_, err := svc.Pay(other.ID, loan.ID)

	assert.ErrorIs(t, err, ErrNotPayable)
}

func TestService_PayAll(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	createLateLoan(t, db, user.ID, "Dune", 5)
	createLateLoan(t, db, user.ID, "Hyperion", 2)

	msg, err := svc.PayAll(user.ID)
	require.NoError(t, err)
	assert.Contains(t, msg, "3.50")

	var count int64
	db.Model(&entities.Fine{}).Where("user_id = ? AND paid = ?", user.ID, true).Count(&count)
	assert.Equal(t, int64(2), count)

	payable, err := svc.PayableForUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, payable)
}

func TestService_PayAll_NothingOutstanding(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")

	_, err := svc.PayAll(user.ID)

	assert.ErrorIs(t, err, ErrNothingToPay)
}

func TestService_HistoryForUser(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	loan := createLateLoan(t, db, user.ID, "Dune", 5)

	_, err := svc.Pay(user.ID, loan.ID)
	require.NoError(t, err)

	// An unpaid lost-book fee shows up in the unpaid total.
	require.NoError(t, db.Create(&entities.Fine{
		UserID: user.ID,
		Amount: decimal.RequireFromString("25.00"),
		Paid:   false,
		Note:   "Replacement fee: Neuromancer",
	}).Error)

	history, err := svc.HistoryForUser(user.ID)

	require.NoError(t, err)
	assert.Len(t, history.Fines, 2)
	assert.Equal(t, "25.00", history.UnpaidTotal.StringFixed(2))
}

func TestService_Settle(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, db, "member")
	fine := &entities.Fine{
		UserID: user.ID,
		Amount: decimal.RequireFromString("25.00"),
		Paid:   false,
		Note:   "Replacement fee: Neuromancer",
	}
	require.NoError(t, db.Create(fine).Error)

	msg, err := svc.Settle(fine.ID, user.ID)
	require.NoError(t, err)
	assert.Contains(t, msg, "25.00")

	var updated entities.Fine
	db.First(&updated, fine.ID)
	assert.True(t, updated.Paid)

	history, err := svc.HistoryForUser(user.ID)
	require.NoError(t, err)
	assert.True(t, history.UnpaidTotal.IsZero())

	// Second settlement is rejected.
	_, err = svc.Settle(fine.ID, user.ID)
	assert.ErrorIs(t, err, ErrFineNotFound)
}

func TestService_Settle_WrongUser(t *testing.T) {
	db, svc, cleanup := setupTestService(t)
	defer cleanup()

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	fine := &entities.Fine{
		UserID: owner.ID,
		Amount: decimal.RequireFromString("25.00"),
	}
	require.NoError(t, db.Create(fine).Error)

	_, err := svc.Settle(fine.ID, other.ID)

	assert.ErrorIs(t, err, ErrFineNotFound)
}
