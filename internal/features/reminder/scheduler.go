package reminder

import (
	"context"
	"fmt"
	"sync"

	"go-approvals/internal/clock"
	"go-approvals/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler runs the engine on a cron schedule. Overlapping cycles are
// skipped, never queued.
type Scheduler struct {
	engine *Engine
	spec   string
	clock  clock.Clock
	logger *zap.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
	last      *CycleReport
}

func NewScheduler(cfg *config.Config, engine *Engine, clk clock.Clock, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		engine: engine,
		spec:   cfg.ReminderSchedule,
		clock:  clk,
		logger: logger.Named("scheduler"),
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return fmt.Errorf("scheduler already started")
	}

	cl := cronLogger{s.logger.Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(s.spec, s.runScheduled); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.spec, err)
	}

	s.logger.Info("starting reminder scheduler", zap.String("schedule", s.spec))
	c.Start()
	s.scheduler = c
	return nil
}

// Stop waits for a running cycle to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow runs one cycle at the scheduler's clock.
func (s *Scheduler) RunNow(ctx context.Context) (CycleReport, error) {
	report, err := s.engine.RunCycle(ctx, s.clock())
	if err == nil {
		s.mu.Lock()
		s.last = &report
		s.mu.Unlock()
	}
	return report, err
}

// LastReport returns the latest successful cycle, or nil before the first.
func (s *Scheduler) LastReport() *CycleReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

func (s *Scheduler) runScheduled() {
	if _, err := s.RunNow(context.Background()); err != nil {
		s.logger.Error("reminder cycle failed", zap.Error(err))
	}
}

// RegisterScheduler ties the scheduler to the application lifecycle.
func RegisterScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
