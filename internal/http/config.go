package http

import (
	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/database"
	"github.com/masonr9/CSC400Project-sub000/internal/fines"
	"github.com/masonr9/CSC400Project-sub000/internal/loans"
	"github.com/masonr9/CSC400Project-sub000/internal/maintenance"
	"github.com/masonr9/CSC400Project-sub000/internal/reservations"
	"github.com/masonr9/CSC400Project-sub000/internal/scheduler"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
	"github.com/masonr9/CSC400Project-sub000/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Auditor  *audit.Service
	Settings *settingsstore.SettingsStore

	// Workflow services
	LoanService        *loans.Service
	ReservationService *reservations.Service
	FineService        *fines.Service

	// Controller stores (repository-backed)
	CatalogStore      CatalogStore
	LoanStore         LoanStore
	ReservationStore  ReservationStore
	FineStore         FineStore
	AnnouncementStore AnnouncementStore
	UserStore         UserStore

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Maintenance mode
	MaintenanceMiddleware *maintenance.Middleware

	// Background work (optional)
	TaskClient        *tasks.Client
	ReminderScheduler *scheduler.OverdueReminderScheduler
	ReminderConfig    config.Reminders

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
