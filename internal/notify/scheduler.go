package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerConfig holds the two job cadences.
type SchedulerConfig struct {
	// DailyHour/DailyMinute is the local time of the daily digest.
	DailyHour   int
	DailyMinute int
	// ReturnInterval is the return-reminder polling cadence. It must not
	// exceed the eligibility window width.
	ReturnInterval time.Duration
	// CheckInterval is how often the daily trigger is evaluated.
	CheckInterval time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		DailyHour:      7,
		DailyMinute:    0,
		ReturnInterval: 5 * time.Minute,
		CheckInterval:  30 * time.Second,
	}
}

// Scheduler drives the two periodic jobs. It is constructed once at the
// composition root, started once and stopped once at shutdown; the jobs
// share no state beyond the store they read.
type Scheduler struct {
	config  SchedulerConfig
	service *Service
	loc     *time.Location
	log     zerolog.Logger

	mu          sync.Mutex
	lastRunDate string // YYYY-MM-DD of the last daily run
	running     bool
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

func NewScheduler(config SchedulerConfig, service *Service, loc *time.Location, log zerolog.Logger) *Scheduler {
	if config.ReturnInterval <= 0 {
		config.ReturnInterval = 5 * time.Minute
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = 30 * time.Second
	}
	return &Scheduler{
		config:  config,
		service: service,
		loc:     loc,
		log:     log,
		stopCh:  make(chan struct{}),
	}
}

// Start launches both job loops. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info().
		Str("daily_time", time.Date(2000, 1, 1, s.config.DailyHour, s.config.DailyMinute, 0, 0, time.UTC).Format("15:04")).
		Dur("return_interval", s.config.ReturnInterval).
		Msg("scheduler started")

	s.wg.Add(2)
	go s.dailyLoop(ctx)
	go s.returnLoop(ctx)
}

// Stop halts both loops and waits for in-flight ticks to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) dailyLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkDaily(ctx)
		}
	}
}

// checkDaily fires the daily job when the local clock passes the trigger
// time, at most once per civil day.
func (s *Scheduler) checkDaily(ctx context.Context) {
	now := time.Now().In(s.loc)
	today := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	s.mu.Unlock()

	if alreadyRan {
		return
	}
	if now.Hour() != s.config.DailyHour || now.Minute() != s.config.DailyMinute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = today
	s.mu.Unlock()

	s.service.RunDaily(ctx)
}

func (s *Scheduler) returnLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.ReturnInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.service.RunReturn(ctx)
		}
	}
}

// RunDailyNow forces an immediate daily tick, bypassing the time check.
func (s *Scheduler) RunDailyNow(ctx context.Context) {
	s.log.Info().Msg("manual daily run triggered")
	s.service.RunDaily(ctx)
}

// RunReturnNow forces an immediate return-reminder tick.
func (s *Scheduler) RunReturnNow(ctx context.Context) {
	s.log.Info().Msg("manual return run triggered")
	s.service.RunReturn(ctx)
}

// IsRunning reports whether the scheduler loops are active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
