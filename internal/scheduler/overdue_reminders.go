// Package scheduler runs the periodic overdue-loan scan.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/settingsstore"
	"github.com/masonr9/CSC400Project-sub000/internal/tasks"
)

// OverdueLister scans for active loans past their due date.
type OverdueLister interface {
	ListOverdueActive(now time.Time) ([]entities.Loan, error)
}

// OverdueReminderScheduler scans for overdue loans on a cron schedule and
// enqueues one reminder task per loan. The tasks own the actual delivery,
// so a slow SMTP relay never blocks the scan.
type OverdueReminderScheduler struct {
	loans         OverdueLister
	settingsStore *settingsstore.SettingsStore
	taskClient    *tasks.Client
	cfg           config.Reminders

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isScanning bool
	cancelFunc context.CancelFunc
}

// NewOverdueReminderScheduler creates a new scheduler instance.
func NewOverdueReminderScheduler(loans OverdueLister, settingsStore *settingsstore.SettingsStore, taskClient *tasks.Client, cfg config.Reminders) *OverdueReminderScheduler {
	return &OverdueReminderScheduler{
		loans:         loans,
		settingsStore: settingsStore,
		taskClient:    taskClient,
		cfg:           cfg,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if reminders are enabled.
func (s *OverdueReminderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Overdue reminder scheduler: disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runScan()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder scan: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(s.cfg.Schedule)
	log.Printf("Overdue reminder scheduler: started with schedule '%s' (%s). Next run: %v",
		s.cfg.Schedule,
		settingsstore.GetCronDescription(s.cfg.Schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running scan.
func (s *OverdueReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Overdue reminder scheduler: stopped")
}

// RunNow triggers an immediate scan.
func (s *OverdueReminderScheduler) RunNow() {
	go s.runScan()
}

// IsRunning returns whether the scheduler is active.
func (s *OverdueReminderScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next scan will occur.
func (s *OverdueReminderScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runScan finds overdue active loans and enqueues one reminder task each.
func (s *OverdueReminderScheduler) runScan() {
	s.mu.Lock()
	if s.isScanning {
		s.mu.Unlock()
		log.Printf("Overdue reminder scan: skipped (already scanning)")
		return
	}
	s.isScanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isScanning = false
		s.mu.Unlock()
	}()

	startTime := time.Now()
	overdue, err := s.loans.ListOverdueActive(startTime)
	if err != nil {
		log.Printf("Overdue reminder scan: failed to list overdue loans: %v", err)
		return
	}

	if len(overdue) == 0 {
		log.Printf("Overdue reminder scan: no overdue loans")
		_ = s.settingsStore.SetReminderLastRunAt(startTime)
		return
	}

	enqueued := 0
	for _, loan := range overdue {
		_, err := s.taskClient.Add(tasks.SendOverdueReminderTask{LoanID: loan.ID}).Save()
		if err != nil {
			log.Printf("Overdue reminder scan: failed to enqueue reminder for loan %d: %v", loan.ID, err)
			continue
		}
		enqueued++
	}

	log.Printf("Overdue reminder scan: enqueued %d reminder(s) for %d overdue loan(s) in %v",
		enqueued, len(overdue), time.Since(startTime).Round(time.Millisecond))
	_ = s.settingsStore.SetReminderLastRunAt(startTime)
}
