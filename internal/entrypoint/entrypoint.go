package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/database"
	announcementsdb "github.com/masonr9/CSC400Project-sub000/internal/database/announcements"
	auditdb "github.com/masonr9/CSC400Project-sub000/internal/database/audit"
	booksdb "github.com/masonr9/CSC400Project-sub000/internal/database/books"
	finesdb "github.com/masonr9/CSC400Project-sub000/internal/database/fines"
	loansdb "github.com/masonr9/CSC400Project-sub000/internal/database/loans"
	reservationsdb "github.com/masonr9/CSC400Project-sub000/internal/database/reservations"
	settingsdb "github.com/masonr9/CSC400Project-sub000/internal/database/settings"
	usersdb "github.com/masonr9/CSC400Project-sub000/internal/database/users"
	"github.com/masonr9/CSC400Project-sub000/internal/fines"
	http_controllers "github.com/masonr9/CSC400Project-sub000/internal/http"
	"github.com/masonr9/CSC400Project-sub000/internal/loans"
	"github.com/masonr9/CSC400Project-sub000/internal/maintenance"
	"github.com/masonr9/CSC400Project-sub000/internal/notify"
	"github.com/masonr9/CSC400Project-sub000/internal/reservations"
	"github.com/masonr9/CSC400Project-sub000/internal/scheduler"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
	"github.com/masonr9/CSC400Project-sub000/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	booksRepo := booksdb.NewRepository(db.DB)
	loansRepo := loansdb.NewRepository(db.DB)
	reservationsRepo := reservationsdb.NewRepository(db.DB)
	finesRepo := finesdb.NewRepository(db.DB)
	announcementsRepo := announcementsdb.NewRepository(db.DB)
	usersRepo := usersdb.NewRepository(db.DB)
	settingsRepo := settingsdb.NewRepository(db.DB)
	auditRepo := auditdb.NewRepository(db.DB)

	// The settings store layers admin-editable overrides on top of the
	// configured lending policy defaults
	settingsStore := settingsstore.New(settingsRepo, cfg.Library)
	auditor := audit.NewService(auditRepo)

	// Workflow services
	loanService := loans.NewService(db.DB, settingsStore)
	reservationService := reservations.NewService(db.DB, settingsStore)
	fineService := fines.NewService(db.DB, settingsStore)

	mailer := notify.NewMailer(cfg.SMTP)
	if cfg.SMTP.Host == "" {
		log.Printf("WARNING: SMTP host is not set. Reminder and announcement emails will be logged instead of sent. Set 'SMTP_HOST' to enable delivery.")
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewOverdueReminderQueue(loansRepo, usersRepo, mailer),
			tasks.NewBroadcastAnnouncementQueue(announcementsRepo, usersRepo, mailer),
			tasks.NewCleanupAuditEventsQueue(auditRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Overdue reminder scheduler (needs the task queue to enqueue into)
	var reminderScheduler *scheduler.OverdueReminderScheduler
	if taskClient != nil {
		reminderScheduler = scheduler.NewOverdueReminderScheduler(loansRepo, settingsStore, taskClient, cfg.Reminders)
		if err := reminderScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start reminder scheduler: %v", err)
		}
	}

	// Nightly audit log cleanup, enqueued as a task so failures retry
	var housekeeping *cron.Cron
	if taskClient != nil && cfg.Audit.RetentionDays > 0 {
		housekeeping = cron.New()
		_, err := housekeeping.AddFunc("30 3 * * *", func() {
			_, err := taskClient.Add(tasks.CleanupAuditEventsTask{RetentionDays: cfg.Audit.RetentionDays}).Save()
			if err != nil {
				log.Printf("Failed to enqueue audit cleanup: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule audit cleanup: %v", err)
		}
		housekeeping.Start()
	}

	// Authentication
	authService := auth.NewService(db.DB, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, _ := authService.HasUsers()
	if !hasUsers {
		log.Printf("No users found. Visit /setup to create an administrator account.")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:              db,
		Auditor:               auditor,
		Settings:              settingsStore,
		LoanService:           loanService,
		ReservationService:    reservationService,
		FineService:           fineService,
		CatalogStore:          booksRepo,
		LoanStore:             loansRepo,
		ReservationStore:      reservationsRepo,
		FineStore:             finesRepo,
		AnnouncementStore:     announcementsRepo,
		UserStore:             usersRepo,
		AuthService:           authService,
		AuthMiddleware:        authMiddleware,
		SessionManager:        sessionManager,
		AuthConfig:            cfg.Auth,
		CSRFSecret:            csrfSecret,
		SecureCookies:         cfg.Auth.SecureCookies,
		MaintenanceMiddleware: maintenance.NewMiddleware(settingsStore),
		TaskClient:            taskClient,
		ReminderScheduler:     reminderScheduler,
		ReminderConfig:        cfg.Reminders,
		TemplatesPath:         cfg.UI.TemplatesPath,
		StaticPath:            cfg.UI.StaticPath,
		Version:               version,
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	onShutdown := func(ctx context.Context) {
		if housekeeping != nil {
			<-housekeeping.Stop().Done()
		}
		if reminderScheduler != nil {
			reminderScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
