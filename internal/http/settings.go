package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/scheduler"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
)

type SettingsController struct {
	settings  *settingsstore.SettingsStore
	reminders *scheduler.OverdueReminderScheduler
	reminderC config.Reminders
	auditor   *audit.Service
	sessions  *auth.SessionManager
}

func NewSettingsController(settings *settingsstore.SettingsStore, reminders *scheduler.OverdueReminderScheduler, reminderCfg config.Reminders, auditor *audit.Service, sessions *auth.SessionManager) *SettingsController {
	return &SettingsController{
		settings:  settings,
		reminders: reminders,
		reminderC: reminderCfg,
		auditor:   auditor,
		sessions:  sessions,
	}
}

// SettingsPage renders the lending policy and maintenance controls.
// GET /manage/settings (admin)
func (sc *SettingsController) SettingsPage(c *gin.Context) {
	maintenanceOn, maintenanceMsg := sc.settings.MaintenanceMode()

	lastRun := ""
	if t := sc.settings.ReminderLastRunAt(); t != nil {
		lastRun = t.Format("Jan 2, 2006 15:04")
	}
	nextRun := ""
	if sc.reminders != nil {
		if t := sc.reminders.GetNextRunTime(); t != nil {
			nextRun = t.Format("Jan 2, 2006 15:04")
		}
	}

	data := gin.H{
		"LoanPeriodDays":     sc.settings.LoanPeriodDays(),
		"FineRatePerDay":     sc.settings.FineRatePerDay().StringFixed(2),
		"MaintenanceMode":    maintenanceOn,
		"MaintenanceMessage": maintenanceMsg,
		"ReminderEnabled":    sc.reminderC.Enabled,
		"ReminderSchedule":   settingsstore.GetCronDescription(sc.reminderC.Schedule),
		"ReminderLastRunAt":  lastRun,
		"ReminderNextRunAt":  nextRun,
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, data)
		return
	}
	renderPage(c, sc.sessions, http.StatusOK, "settings", data)
}

// UpdatePolicy saves the loan period and fine rate.
// POST /manage/settings/policy (admin)
func (sc *SettingsController) UpdatePolicy(c *gin.Context) {
	days, err := strconv.Atoi(c.PostForm("loan_period_days"))
	if err != nil || days < 1 || days > 365 {
		flashError(c, sc.sessions, "Loan period must be between 1 and 365 days.")
		c.Redirect(http.StatusSeeOther, "/manage/settings")
		return
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("fine_rate_per_day")))
	if err != nil || rate.IsNegative() {
		flashError(c, sc.sessions, "Fine rate must be a non-negative amount.")
		c.Redirect(http.StatusSeeOther, "/manage/settings")
		return
	}

	if err := sc.settings.SetLoanPeriodDays(days); err != nil {
		respondInternalError(c, err, "save loan period")
		return
	}
	if err := sc.settings.SetFineRatePerDay(rate); err != nil {
		respondInternalError(c, err, "save fine rate")
		return
	}

	sc.auditor.LogSettings(GetUserID(c), "policy_updated",
		"loan period "+strconv.Itoa(days)+"d, fine rate $"+rate.StringFixed(2)+"/day")
	flashSuccess(c, sc.sessions, "Lending policy updated.")
	c.Redirect(http.StatusSeeOther, "/manage/settings")
}

// UpdateMaintenance toggles maintenance mode. While active, members cannot
// perform write actions; staff are unaffected so they can turn it back off.
// POST /manage/settings/maintenance (admin)
func (sc *SettingsController) UpdateMaintenance(c *gin.Context) {
	enabled := c.PostForm("enabled") == "true" || c.PostForm("enabled") == "on"
	message := strings.TrimSpace(c.PostForm("message"))

	if err := sc.settings.SetMaintenanceMode(enabled, message); err != nil {
		respondInternalError(c, err, "save maintenance mode")
		return
	}

	action := "maintenance_disabled"
	flash := "Maintenance mode disabled."
	if enabled {
		action = "maintenance_enabled"
		flash = "Maintenance mode enabled. Member write actions are blocked."
	}
	sc.auditor.LogSettings(GetUserID(c), action, message)
	flashSuccess(c, sc.sessions, flash)
	c.Redirect(http.StatusSeeOther, "/manage/settings")
}

// RunReminderScan triggers the overdue reminder scan immediately.
// POST /manage/settings/reminders/run (admin)
func (sc *SettingsController) RunReminderScan(c *gin.Context) {
	if sc.reminders == nil {
		flashError(c, sc.sessions, "Overdue reminders are not enabled.")
		c.Redirect(http.StatusSeeOther, "/manage/settings")
		return
	}

	sc.reminders.RunNow()
	sc.auditor.LogSettings(GetUserID(c), "reminder_scan_triggered", "")
	flashSuccess(c, sc.sessions, "Overdue reminder scan started.")
	c.Redirect(http.StatusSeeOther, "/manage/settings")
}
