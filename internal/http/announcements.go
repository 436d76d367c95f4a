package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/tasks"
)

// AnnouncementStore wraps the announcement repository for the controller.
type AnnouncementStore interface {
	CreateAnnouncement(a *entities.Announcement) error
	GetAnnouncementByID(id uint) (*entities.Announcement, error)
	SetPublished(id uint, published bool) (int64, error)
	DeleteAnnouncement(id uint) error
	ListPublished(limit int) ([]entities.Announcement, error)
	ListAll() ([]entities.Announcement, error)
}

type AnnouncementsController struct {
	store      AnnouncementStore
	taskClient *tasks.Client
	auditor    *audit.Service
	sessions   *auth.SessionManager
}

func NewAnnouncementsController(store AnnouncementStore, taskClient *tasks.Client, auditor *audit.Service, sessions *auth.SessionManager) *AnnouncementsController {
	return &AnnouncementsController{
		store:      store,
		taskClient: taskClient,
		auditor:    auditor,
		sessions:   sessions,
	}
}

// PublicPage lists published announcements. Reachable without a session so
// the login page can link to it.
// GET /announcements
func (ac *AnnouncementsController) PublicPage(c *gin.Context) {
	published, err := ac.store.ListPublished(20)
	if err != nil {
		respondInternalError(c, err, "list announcements")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"announcements": published, "count": len(published)})
		return
	}

	renderPage(c, ac.sessions, http.StatusOK, "announcements", gin.H{
		"Announcements": published,
	})
}

// ManagePage lists every announcement, drafts included.
// GET /manage/announcements (admin)
func (ac *AnnouncementsController) ManagePage(c *gin.Context) {
	all, err := ac.store.ListAll()
	if err != nil {
		respondInternalError(c, err, "list announcements")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"announcements": all, "count": len(all)})
		return
	}

	renderPage(c, ac.sessions, http.StatusOK, "manage-announcements", gin.H{
		"Announcements": all,
	})
}

// Create stores a new draft announcement.
// POST /manage/announcements (admin)
func (ac *AnnouncementsController) Create(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	body := strings.TrimSpace(c.PostForm("body"))
	if title == "" || body == "" {
		respondBadRequest(c, "title and body are required")
		return
	}

	announcement := &entities.Announcement{
		AuthorID: GetUserID(c),
		Title:    title,
		Body:     body,
	}
	if err := ac.store.CreateAnnouncement(announcement); err != nil {
		respondInternalError(c, err, "create announcement")
		return
	}

	ac.auditor.LogAnnouncement(GetUserID(c), "announcement_created", title, announcement.ID)
	flashSuccess(c, ac.sessions, "Announcement \""+title+"\" saved as a draft.")
	c.Redirect(http.StatusSeeOther, "/manage/announcements")
}

// Publish makes an announcement visible and enqueues the member email
// broadcast. The broadcast is best-effort: an enqueue failure softens the
// flash message but never unpublishes.
// POST /manage/announcements/:id/publish (admin)
func (ac *AnnouncementsController) Publish(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	announcement, err := ac.store.GetAnnouncementByID(id)
	if err != nil {
		respondNotFound(c, "announcement")
		return
	}

	rows, err := ac.store.SetPublished(id, true)
	if err != nil {
		respondInternalError(c, err, "publish announcement")
		return
	}
	if rows == 0 {
		flashError(c, ac.sessions, "Announcement is already published.")
		c.Redirect(http.StatusSeeOther, "/manage/announcements")
		return
	}

	ac.auditor.LogAnnouncement(GetUserID(c), "announcement_published", announcement.Title, id)

	msg := "Announcement \"" + announcement.Title + "\" published."
	if ac.taskClient != nil {
		task := tasks.BroadcastAnnouncementTask{
			AnnouncementID: id,
			BatchID:        uuid.NewString(),
		}
		if _, err := ac.taskClient.Add(task).Save(); err != nil {
			log.Printf("Failed to enqueue announcement broadcast %d: %v", id, err)
			msg += " Email broadcast could not be scheduled."
		} else {
			msg += " Members will be emailed shortly."
		}
	}

	flashSuccess(c, ac.sessions, msg)
	c.Redirect(http.StatusSeeOther, "/manage/announcements")
}

// Delete removes an announcement, draft or published.
// POST /manage/announcements/:id/delete (admin)
func (ac *AnnouncementsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	announcement, err := ac.store.GetAnnouncementByID(id)
	if err != nil {
		respondNotFound(c, "announcement")
		return
	}

	if err := ac.store.DeleteAnnouncement(id); err != nil {
		respondInternalError(c, err, "delete announcement")
		return
	}

	ac.auditor.LogAnnouncement(GetUserID(c), "announcement_deleted", announcement.Title, id)
	flashSuccess(c, ac.sessions, "Announcement \""+announcement.Title+"\" deleted.")
	c.Redirect(http.StatusSeeOther, "/manage/announcements")
}
