package entities

import "time"

type AuditEventType string

// Event types partition the trail by workflow, one per area of the system
// that records activity.
const (
	AuditEventLoan         AuditEventType = "loan"
	AuditEventReservation  AuditEventType = "reservation"
	AuditEventFine         AuditEventType = "fine"
	AuditEventCatalog      AuditEventType = "catalog"
	AuditEventAnnouncement AuditEventType = "announcement"
	AuditEventAuth         AuditEventType = "auth"
	AuditEventSettings     AuditEventType = "settings"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one append-only record of a workflow action, successful or
// not. EntityType/EntityID point at the loan, reservation, fine or book the
// action touched; Metadata carries action-specific details as JSON.
type AuditEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	EventType AuditEventType `gorm:"index;size:50" json:"event_type"`
	// Action is the specific operation, like "loan_return" or
	// "reservation_fulfill".
	Action      string      `gorm:"size:100" json:"action"`
	Description string      `gorm:"size:500" json:"description"`
	EntityType  string      `gorm:"size:50" json:"entity_type"`
	EntityID    *uint       `gorm:"index" json:"entity_id,omitempty"`
	Status      AuditStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string      `gorm:"size:500" json:"error_msg,omitempty"`
	Metadata    string      `gorm:"type:text" json:"metadata,omitempty"`
	IPAddress   string      `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
