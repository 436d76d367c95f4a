// Package settingsstore resolves lending policy and maintenance state.
//
// Priority: database > config default. Admins edit the database values at
// runtime; the config values seed the defaults.
package settingsstore

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/database/settings"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

type SettingsStore struct {
	repo     *settings.Repository
	defaults config.Library
}

func New(repo *settings.Repository, defaults config.Library) *SettingsStore {
	return &SettingsStore{repo: repo, defaults: defaults}
}

// LoanPeriodDays returns the configured loan period in whole days.
func (s *SettingsStore) LoanPeriodDays() int {
	days := s.repo.GetInt(entities.SettingKeyLoanPeriodDays, s.defaults.LoanPeriodDays)
	if days <= 0 {
		days = 14
	}
	return days
}

// LoanPeriod returns the loan period as a duration.
func (s *SettingsStore) LoanPeriod() time.Duration {
	return time.Duration(s.LoanPeriodDays()) * 24 * time.Hour
}

// FineRatePerDay returns the per-day late fee. A malformed stored value
// falls back to the config default, then to zero.
func (s *SettingsStore) FineRatePerDay() decimal.Decimal {
	raw := s.repo.GetValue(entities.SettingKeyFineRatePerDay, s.defaults.FineRatePerDay)
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		rate, err = decimal.NewFromString(s.defaults.FineRatePerDay)
		if err != nil {
			return decimal.Zero
		}
	}
	return rate
}

// MaintenanceMode reports whether the system is in maintenance mode and the
// banner message to show.
func (s *SettingsStore) MaintenanceMode() (bool, string) {
	enabled := s.repo.GetBool(entities.SettingKeyMaintenanceMode, false)
	if !enabled {
		return false, ""
	}
	message := s.repo.GetValue(entities.SettingKeyMaintenanceMessage,
		"The library system is under maintenance. Borrowing is temporarily disabled.")
	return true, message
}

func (s *SettingsStore) SetLoanPeriodDays(days int) error {
	return s.repo.SetSetting(entities.SettingKeyLoanPeriodDays, strconv.Itoa(days))
}

func (s *SettingsStore) SetFineRatePerDay(rate decimal.Decimal) error {
	return s.repo.SetSetting(entities.SettingKeyFineRatePerDay, rate.StringFixed(2))
}

func (s *SettingsStore) SetMaintenanceMode(enabled bool, message string) error {
	if err := s.repo.SetSetting(entities.SettingKeyMaintenanceMode, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	return s.repo.SetSetting(entities.SettingKeyMaintenanceMessage, message)
}
