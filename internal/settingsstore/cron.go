package settingsstore

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// ValidateCronSchedule validates a cron schedule string.
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a schedule.
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 8 * * *":
		return "Daily at 08:00"
	case "0 * * * *":
		return "Every hour at :00"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the schedule fires next.
func GetNextRunTime(schedule string) (*time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}

// ReminderLastRunAt returns when the overdue reminder scan last completed,
// nil if it has never run.
func (s *SettingsStore) ReminderLastRunAt() *time.Time {
	value := s.repo.GetValue(entities.SettingKeyReminderLastRunAt, "")
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// SetReminderLastRunAt records a completed overdue reminder scan.
func (s *SettingsStore) SetReminderLastRunAt(t time.Time) error {
	return s.repo.SetSetting(entities.SettingKeyReminderLastRunAt, t.Format(time.RFC3339))
}
