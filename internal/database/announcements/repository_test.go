package announcements

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

func setupRepo(t *testing.T) (*Repository, func()) {
	dbPath := "./test_announcements_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Announcement{}))

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestSetPublished(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	a := &entities.Announcement{AuthorID: 1, Title: "Closed Monday", Body: "Holiday."}
	require.NoError(t, repo.CreateAnnouncement(a))

	rows, err := repo.SetPublished(a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// Publishing again is a no-op, and the row count says so
	rows, err = repo.SetPublished(a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = repo.SetPublished(a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestListPublished(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	draft := &entities.Announcement{AuthorID: 1, Title: "Draft", Body: "Not yet."}
	live := &entities.Announcement{AuthorID: 1, Title: "Live", Body: "Out there."}
	require.NoError(t, repo.CreateAnnouncement(draft))
	require.NoError(t, repo.CreateAnnouncement(live))
	_, err := repo.SetPublished(live.ID, true)
	require.NoError(t, err)

	published, err := repo.ListPublished(10)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "Live", published[0].Title)

	all, err := repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteAnnouncement(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	a := &entities.Announcement{AuthorID: 1, Title: "Oops", Body: "Wrong info."}
	require.NoError(t, repo.CreateAnnouncement(a))

	require.NoError(t, repo.DeleteAnnouncement(a.ID))

	_, err := repo.GetAnnouncementByID(a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
