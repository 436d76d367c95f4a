// Package audit records who did what across the loan, reservation, fine,
// catalog and announcement workflows.
package audit

import (
	"encoding/json"
	"log"
	"time"

	auditrepo "github.com/masonr9/CSC400Project-sub000/internal/database/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

const maxErrorLen = 500

// Service writes audit events without blocking the request that triggered
// them. A failed write is logged and dropped; auditing never fails a
// workflow action.
type Service struct {
	repo *auditrepo.Repository
}

func NewService(repo *auditrepo.Repository) *Service {
	return &Service{repo: repo}
}

// record persists the event in the background.
func (s *Service) record(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// outcome fills the status fields from the workflow result.
func outcome(event *entities.AuditEvent, err error) *entities.AuditEvent {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxErrorLen)
	} else {
		event.Status = entities.AuditStatusSuccess
	}
	return event
}

// LogLoan records a borrow, return or lost-book action against a loan.
func (s *Service) LogLoan(userID uint, action, description string, loanID uint, err error) {
	s.record(outcome(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventLoan,
		Action:      action,
		Description: description,
		EntityType:  "loan",
		EntityID:    &loanID,
	}, err))
}

// LogReservation records a reservation lifecycle action.
func (s *Service) LogReservation(userID uint, action, description string, reservationID uint, err error) {
	s.record(outcome(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReservation,
		Action:      action,
		Description: description,
		EntityType:  "reservation",
		EntityID:    &reservationID,
	}, err))
}

// LogFine records a fine payment or settlement. The amount, when known,
// goes into the metadata as a decimal string.
func (s *Service) LogFine(userID uint, action, description, amount string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventFine,
		Action:      action,
		Description: description,
		EntityType:  "fine",
	}
	if amount != "" {
		if md, e := json.Marshal(map[string]string{"amount": amount}); e == nil {
			event.Metadata = string(md)
		}
	}
	s.record(outcome(event, err))
}

// LogCatalog records a book create, update or delete by staff.
func (s *Service) LogCatalog(userID uint, action, title string, bookID uint) {
	s.record(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventCatalog,
		Action:      action,
		Description: title,
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAnnouncement records an announcement lifecycle action by staff.
func (s *Service) LogAnnouncement(userID uint, action, title string, announcementID uint) {
	s.record(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAnnouncement,
		Action:      action,
		Description: title,
		EntityType:  "announcement",
		EntityID:    &announcementID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records logins, account changes and other security-relevant
// actions along with the client address.
func (s *Service) LogAuth(userID uint, action, ipAddr string, success bool) {
	status := entities.AuditStatusSuccess
	if !success {
		status = entities.AuditStatusFailed
	}
	s.record(&entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    status,
	})
}

// LogSettings records a lending-policy or maintenance-mode change.
func (s *Service) LogSettings(userID uint, action, description string) {
	s.record(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	})
}

// GetEvents returns a page of the trail, optionally scoped to one user.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// GetEventsByType returns a page of events of one type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// DeleteOldEvents prunes the trail past the retention window.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(retention)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
