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

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

func setupRepo(t *testing.T) (*Repository, func()) {
	dbPath := "./test_fines_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Book{}, &entities.Loan{}, &entities.Fine{}))

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func recordFine(t *testing.T, repo *Repository, userID uint, loanID *uint, amount string, paid bool) *entities.Fine {
	t.Helper()
	fine := &entities.Fine{
		UserID: userID,
		LoanID: loanID,
		Amount: decimal.RequireFromString(amount),
		Paid:   paid,
	}
	if paid {
		now := time.Now()
		fine.PaidAt = &now
	}
	require.NoError(t, repo.CreateFine(fine))
	return fine
}

func loanID(id uint) *uint { return &id }

func TestPaidLoanIDs(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	recordFine(t, repo, 1, loanID(10), "2.50", true)
	recordFine(t, repo, 1, loanID(11), "1.00", false) // unpaid, not in the set
	recordFine(t, repo, 1, nil, "25.00", true)        // no loan attached
	recordFine(t, repo, 2, loanID(12), "3.00", true)  // other user

	set, err := repo.PaidLoanIDs(1)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{10: true}, set)
}

func TestUnpaidTotal(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	recordFine(t, repo, 1, loanID(10), "2.50", false)
	recordFine(t, repo, 1, nil, "25.00", false)
	recordFine(t, repo, 1, loanID(11), "4.00", true) // paid, excluded
	recordFine(t, repo, 2, loanID(12), "9.00", false)

	total, err := repo.UnpaidTotal(1)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("27.50")), "got %s", total)
}

func TestMarkPaid(t *testing.T) {
	t.Run("settles an unpaid fine", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		fine := recordFine(t, repo, 1, nil, "25.00", false)

		rows, err := repo.MarkPaid(fine.ID, 1, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		got, err := repo.GetFineByID(fine.ID)
		require.NoError(t, err)
		assert.True(t, got.Paid)
		assert.NotNil(t, got.PaidAt)
	})

	t.Run("cannot settle twice", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		fine := recordFine(t, repo, 1, nil, "25.00", false)

		rows, err := repo.MarkPaid(fine.ID, 1, time.Now())
		require.NoError(t, err)
		require.Equal(t, int64(1), rows)

		rows, err = repo.MarkPaid(fine.ID, 1, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	t.Run("cannot settle someone else's fine", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		fine := recordFine(t, repo, 1, nil, "25.00", false)

		rows, err := repo.MarkPaid(fine.ID, 2, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}

func TestListFinesForUser(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	recordFine(t, repo, 1, loanID(10), "2.50", true)
	recordFine(t, repo, 1, nil, "25.00", false)
	recordFine(t, repo, 2, loanID(12), "3.00", true)

	fines, err := repo.ListFinesForUser(1)
	require.NoError(t, err)
	assert.Len(t, fines, 2)
}

func TestListAllFines(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		recordFine(t, repo, uint(i+1), nil, "1.00", false)
	}

	fines, total, err := repo.ListAllFines(2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, fines, 2)
}
