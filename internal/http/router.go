package http

import (
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so the session context set by the
	// session middleware is preserved on the replaced request.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(cfg.AuthMiddleware.Handler())

	// Maintenance mode blocks member writes while staff keep working.
	if cfg.MaintenanceMiddleware != nil {
		router.Use(cfg.MaintenanceMiddleware.Handler())
	}

	funcMap := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return "$" + d.StringFixed(2)
		},
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"overdue": func(l entities.Loan) bool {
			return l.IsOverdue(time.Now())
		},
		"subtract": func(a, b int) int {
			return a - b
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseGlob(cfg.TemplatesPath + "/*.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)
	router.Static("/static", cfg.StaticPath)

	// Login, logout and first-run setup
	authController, err := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.TemplatesPath, cfg.AuthConfig)
	if err != nil {
		return nil, err
	}
	authController.RegisterRoutes(router)

	health := NewHealthController(cfg.Database, cfg.Version)
	catalog := NewCatalogController(cfg.CatalogStore, cfg.Auditor, cfg.SessionManager)
	loans := NewLoansController(cfg.LoanService, cfg.LoanStore, cfg.Auditor, cfg.SessionManager)
	reservations := NewReservationsController(cfg.ReservationService, cfg.ReservationStore, cfg.Auditor, cfg.SessionManager)
	fines := NewFinesController(cfg.FineService, cfg.FineStore, cfg.Auditor, cfg.SessionManager)
	announcements := NewAnnouncementsController(cfg.AnnouncementStore, cfg.TaskClient, cfg.Auditor, cfg.SessionManager)
	users := NewUsersController(cfg.AuthService, cfg.UserStore, cfg.Auditor, cfg.SessionManager)
	settings := NewSettingsController(cfg.Settings, cfg.ReminderScheduler, cfg.ReminderConfig, cfg.Auditor, cfg.SessionManager)
	auditLog := NewAuditController(cfg.Auditor, cfg.SessionManager)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Published announcements are readable without a session
	router.GET("/announcements", announcements.PublicPage)

	// Member-facing pages; the auth middleware already redirects anonymous
	// visitors to /login for everything not explicitly public.
	router.GET("/", catalog.BooksPage)
	router.GET("/books/:id", catalog.BookPage)

	router.GET("/loans", loans.MyLoansPage)
	router.POST("/loans/:id/return", loans.Return)

	router.GET("/reservations", reservations.MyReservationsPage)
	router.POST("/reservations", reservations.Reserve)
	router.POST("/reservations/:id/cancel", reservations.Cancel)

	router.GET("/fines", fines.MyFinesPage)
	router.POST("/fines/loans/:id/pay", fines.Pay)
	router.POST("/fines/pay-all", fines.PayAll)
	router.POST("/fines/:id/settle", fines.Settle)

	// Desk operations for librarians and admins
	staff := router.Group("/manage", cfg.AuthMiddleware.RequireStaff())
	{
		staff.POST("/books", catalog.CreateBook)
		staff.POST("/books/:id", catalog.UpdateBook)
		staff.POST("/books/:id/delete", catalog.DeleteBook)

		staff.GET("/loans", loans.AllLoansPage)
		staff.POST("/loans", loans.Borrow)
		staff.POST("/loans/:id/lost", loans.MarkLost)

		staff.GET("/reservations", reservations.PendingPage)
		staff.POST("/reservations/:id/approve", reservations.Approve)
		staff.POST("/reservations/:id/fulfill", reservations.Fulfill)

		staff.GET("/fines", fines.AllFinesPage)
		staff.POST("/fines/:id/settle", fines.SettleRecorded)

		staff.GET("/audit", auditLog.LogPage)
	}

	// Administration
	admin := router.Group("/manage", cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin))
	{
		admin.GET("/announcements", announcements.ManagePage)
		admin.POST("/announcements", announcements.Create)
		admin.POST("/announcements/:id/publish", announcements.Publish)
		admin.POST("/announcements/:id/delete", announcements.Delete)

		admin.GET("/users", users.ListPage)
		admin.POST("/users", users.Create)
		admin.POST("/users/:id/role", users.ChangeRole)
		admin.POST("/users/:id/deactivate", users.Deactivate)

		admin.GET("/settings", settings.SettingsPage)
		admin.POST("/settings/policy", settings.UpdatePolicy)
		admin.POST("/settings/maintenance", settings.UpdateMaintenance)
		admin.POST("/settings/reminders/run", settings.RunReminderScan)
	}

	return router, nil
}
