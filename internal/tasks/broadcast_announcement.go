package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/notify"
)

// AnnouncementLoader provides the announcement lookup for broadcasts.
type AnnouncementLoader interface {
	GetAnnouncementByID(id uint) (*entities.Announcement, error)
}

// MemberEmailLister returns the addresses of every active member.
type MemberEmailLister interface {
	ListMemberEmails() ([]string, error)
}

// BroadcastAnnouncementTask emails a published announcement to all members.
// BatchID ties the log lines of one broadcast together across retries.
type BroadcastAnnouncementTask struct {
	AnnouncementID uint   `json:"announcement_id"`
	BatchID        string `json:"batch_id"`
}

// Config returns the queue configuration for announcement broadcasts.
func (t BroadcastAnnouncementTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "broadcast_announcement",
		MaxAttempts: 2,
		Backoff:     10 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BroadcastAnnouncementProcessor creates a processor function for
// BroadcastAnnouncementTask. Individual delivery failures are logged and
// skipped; the task only fails when the announcement cannot be loaded or is
// no longer published.
func BroadcastAnnouncementProcessor(announcements AnnouncementLoader, members MemberEmailLister, mailer notify.Mailer) backlite.QueueProcessor[BroadcastAnnouncementTask] {
	return func(ctx context.Context, task BroadcastAnnouncementTask) error {
		if mailer == nil {
			return fmt.Errorf("mailer not configured")
		}

		announcement, err := announcements.GetAnnouncementByID(task.AnnouncementID)
		if err != nil {
			return fmt.Errorf("load announcement %d: %w", task.AnnouncementID, err)
		}
		if !announcement.Published {
			log.Printf("[TASK] Announcement %d unpublished, skipping broadcast %s",
				task.AnnouncementID, task.BatchID)
			return nil
		}

		emails, err := members.ListMemberEmails()
		if err != nil {
			return fmt.Errorf("list member emails: %w", err)
		}

		subject := "Library announcement: " + announcement.Title
		sent, failed := 0, 0
		for _, email := range emails {
			if err := mailer.Send(email, subject, announcement.Body); err != nil {
				log.Printf("[TASK] Broadcast %s: delivery to %s failed: %v", task.BatchID, email, err)
				failed++
				continue
			}
			sent++
		}

		log.Printf("[TASK] Broadcast %s for announcement %d: %d sent, %d failed",
			task.BatchID, task.AnnouncementID, sent, failed)
		return nil
	}
}

// NewBroadcastAnnouncementQueue creates a backlite queue for broadcasts.
func NewBroadcastAnnouncementQueue(announcements AnnouncementLoader, members MemberEmailLister, mailer notify.Mailer) backlite.Queue {
	return backlite.NewQueue(BroadcastAnnouncementProcessor(announcements, members, mailer))
}
