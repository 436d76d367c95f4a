package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/database"
	announcementsdb "github.com/masonr9/CSC400Project-sub000/internal/database/announcements"
	auditdb "github.com/masonr9/CSC400Project-sub000/internal/database/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

func setupAnnouncementsTest(t *testing.T) (*database.Database, *AnnouncementsController, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_announcements_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	auditor := audit.NewService(auditdb.NewRepository(db.DB))
	// nil task client: publishing must still work when the queue is disabled
	controller := NewAnnouncementsController(announcementsdb.NewRepository(db.DB), nil, auditor, nil)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, controller, cleanup
}

func TestAnnouncementsController_PublicPage(t *testing.T) {
	db, controller, cleanup := setupAnnouncementsTest(t)
	defer cleanup()

	seedUser(t, db, 1)
	require.NoError(t, db.DB.Create(&entities.Announcement{AuthorID: 1, Title: "Holiday hours", Body: "Closed Monday", Published: true}).Error)
	require.NoError(t, db.DB.Create(&entities.Announcement{AuthorID: 1, Title: "Draft", Body: "Not yet"}).Error)

	router := gin.New()
	router.GET("/announcements", controller.PublicPage)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/announcements?format=json", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestAnnouncementsController_Create(t *testing.T) {
	db, controller, cleanup := setupAnnouncementsTest(t)
	defer cleanup()

	seedUser(t, db, 1)

	router := gin.New()
	router.Use(asUser(1, entities.UserRoleAdmin))
	router.POST("/manage/announcements", controller.Create)

	form := url.Values{}
	form.Set("title", "New arrivals")
	form.Set("body", "Fresh titles on the shelf this week.")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/manage/announcements", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)

	var saved entities.Announcement
	require.NoError(t, db.DB.First(&saved, "title = ?", "New arrivals").Error)
	assert.False(t, saved.Published)
	assert.Equal(t, uint(1), saved.AuthorID)
}

func TestAnnouncementsController_Publish(t *testing.T) {
	t.Run("marks the announcement published", func(t *testing.T) {
		db, controller, cleanup := setupAnnouncementsTest(t)
		defer cleanup()

		seedUser(t, db, 1)
		require.NoError(t, db.DB.Create(&entities.Announcement{AuthorID: 1, Title: "News", Body: "Body"}).Error)

		router := gin.New()
		router.Use(asUser(1, entities.UserRoleAdmin))
		router.POST("/manage/announcements/:id/publish", controller.Publish)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/manage/announcements/1/publish", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)

		var updated entities.Announcement
		require.NoError(t, db.DB.First(&updated, 1).Error)
		assert.True(t, updated.Published)
	})

	t.Run("publishing twice bounces back", func(t *testing.T) {
		db, controller, cleanup := setupAnnouncementsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Announcement{AuthorID: 1, Title: "News", Body: "Body", Published: true}).Error)

		router := gin.New()
		router.Use(asUser(1, entities.UserRoleAdmin))
		router.POST("/manage/announcements/:id/publish", controller.Publish)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/manage/announcements/1/publish", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
	})

	t.Run("unknown announcement is a 404", func(t *testing.T) {
		_, controller, cleanup := setupAnnouncementsTest(t)
		defer cleanup()

		router := gin.New()
		router.Use(asUser(1, entities.UserRoleAdmin))
		router.POST("/manage/announcements/:id/publish", controller.Publish)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/manage/announcements/42/publish", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAnnouncementsController_Delete(t *testing.T) {
	db, controller, cleanup := setupAnnouncementsTest(t)
	defer cleanup()

	require.NoError(t, db.DB.Create(&entities.Announcement{AuthorID: 1, Title: "Old news", Body: "Body", Published: true}).Error)

	router := gin.New()
	router.Use(asUser(1, entities.UserRoleAdmin))
	router.POST("/manage/announcements/:id/delete", controller.Delete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/manage/announcements/1/delete", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)

	var count int64
	db.DB.Model(&entities.Announcement{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
