package entities

import "time"

// Setting is one admin-editable key/value pair. Values here override the
// file-based config defaults, so lending policy changes take effect without
// a restart.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Keys the application reads. Anything else in the table is ignored.
const (
	SettingKeyLoanPeriodDays     = "loan_period_days"
	SettingKeyFineRatePerDay     = "fine_rate_per_day"
	SettingKeyMaintenanceMode    = "maintenance_mode"
	SettingKeyMaintenanceMessage = "maintenance_message"
	SettingKeyReminderLastRunAt  = "reminder_last_run_at"
)
