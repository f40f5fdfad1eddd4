package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/nsac-scraper/internal/model"
)

// Trigger is what the schedule fires; *Runner satisfies it.
type Trigger interface {
	Trigger(triggeredBy string) (*model.Run, error)
}

// Scheduler fires periodic scrapes on a cron expression.
type Scheduler struct {
	cron    *cron.Cron
	trigger Trigger
	spec    string
	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
	logger  *log.Logger
}

// NewScheduler returns a scheduler for spec. An empty spec disables scheduling.
func NewScheduler(spec string, trigger Trigger, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		trigger: trigger,
		spec:    strings.TrimSpace(spec),
		logger:  logger.WithPrefix("scheduler"),
	}
}

// Start registers the schedule and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.spec == "" {
		s.logger.Info("no scrape schedule configured")
		return nil
	}

	schedule := NormalizeSchedule(s.spec)
	entryID, err := s.cron.AddFunc(schedule, s.fire)
	if err != nil {
		return fmt.Errorf("invalid cron expression '%s': %w", s.spec, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started", "schedule", s.spec)
	return nil
}

func (s *Scheduler) fire() {
	run, err := s.trigger.Trigger("schedule")
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		s.logger.Info("scrape already running, skipping scheduled run")
	case err != nil:
		s.logger.Error("scheduled scrape could not start", "err", err)
	default:
		s.logger.Debug("scheduled scrape started", "run_id", run.ID)
	}
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.running = false
	s.logger.Info("scheduler stopped")
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRun returns the next scheduled scrape, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if entry.Next.IsZero() {
		return nil
	}
	return &entry.Next
}

// NormalizeSchedule expands shortcuts and adds a seconds field to 5-field expressions.
func NormalizeSchedule(schedule string) string {
	switch schedule {
	case "@hourly":
		return "0 0 * * * *"
	case "@daily":
		return "0 0 0 * * *"
	case "@weekly":
		return "0 0 0 * * 0"
	case "@monthly":
		return "0 0 0 1 * *"
	}

	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}
