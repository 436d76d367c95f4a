package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

type AuditController struct {
	auditor  *audit.Service
	sessions *auth.SessionManager
}

func NewAuditController(auditor *audit.Service, sessions *auth.SessionManager) *AuditController {
	return &AuditController{auditor: auditor, sessions: sessions}
}

// EventTypeOption feeds the event-type filter dropdown.
type EventTypeOption struct {
	Value string
	Label string
}

func auditEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventLoan), Label: "Loans"},
		{Value: string(entities.AuditEventReservation), Label: "Reservations"},
		{Value: string(entities.AuditEventFine), Label: "Fines"},
		{Value: string(entities.AuditEventCatalog), Label: "Catalog"},
		{Value: string(entities.AuditEventAnnouncement), Label: "Announcements"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
		{Value: string(entities.AuditEventSettings), Label: "Settings"},
	}
}

// LogPage renders the audit trail, optionally filtered by event type or
// member.
// GET /manage/audit (librarian)
func (ac *AuditController) LogPage(c *gin.Context) {
	limit, offset, page := parsePagination(c, 25)
	eventType := c.Query("type")
	memberID, _ := strconv.ParseUint(c.Query("user_id"), 10, 32)

	var events []entities.AuditEvent
	var total int64
	var err error
	if eventType != "" {
		events, total, err = ac.auditor.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.auditor.GetEvents(uint(memberID), limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"events":      events,
			"page":        page,
			"total_pages": totalPages,
			"total":       total,
		})
		return
	}

	renderPage(c, ac.sessions, http.StatusOK, "audit", gin.H{
		"Events":      events,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"TotalEvents": total,
		"EventType":   eventType,
		"EventTypes":  auditEventTypes(),
	})
}
