// Package job runs collection on a cron schedule.
package job

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultCronSpec = "0 6 * * *"

// RunFunc performs one scheduled run
type RunFunc func(context.Context) error

// Scheduler runs a function on a cron expression. A tick that fires while
// the previous run is still active is skipped.
type Scheduler struct {
	cronExpr string
	logger   *zap.Logger
	cron     *cron.Cron
	runFunc  RunFunc
	parent   context.Context
	mu       sync.Mutex
	running  bool
}

// NewScheduler builds a scheduler. An empty expression means daily at 06:00.
func NewScheduler(spec string, runFunc RunFunc, logger *zap.Logger) *Scheduler {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = defaultCronSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cronExpr: spec, logger: logger, runFunc: runFunc}
}

// Start starts the scheduler and returns the function that stops it.
// The scheduler also stops when parent is cancelled.
func (s *Scheduler) Start(parent context.Context) (context.CancelFunc, error) {
	if s == nil {
		return func() {}, nil
	}
	s.parent = parent
	c := cron.New()
	id, err := c.AddFunc(s.cronExpr, s.runOnce)
	if err != nil {
		s.logger.Error("failed to register cron job", zap.String("cron", s.cronExpr), zap.Error(err))
		return func() {}, err
	}
	s.cron = c
	c.Start()
	s.logger.Info("job scheduler started", zap.String("cron", s.cronExpr), zap.Time("next", c.Entry(id).Next))

	var once sync.Once
	stop := func() {
		once.Do(func() {
			ctx := s.cron.Stop()
			<-ctx.Done()
			s.logger.Info("job scheduler stopped")
		})
	}

	go func() {
		<-parent.Done()
		stop()
	}()

	return stop, nil
}

// Next returns the next scheduled run, or the zero time before Start
func (s *Scheduler) Next() time.Time {
	if s == nil || s.cron == nil {
		return time.Time{}
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() {
	if s.runFunc == nil {
		s.logger.Warn("run function not configured")
		return
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous collection still running, skip current schedule")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	runCtx := context.Background()
	if s.parent != nil {
		if s.parent.Err() != nil {
			s.logger.Info("scheduler context cancelled, skip collection")
			return
		}
		runCtx = s.parent
	}

	start := time.Now()
	err := s.runFunc(runCtx)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error("scheduled collection failed", zap.Duration("duration", elapsed), zap.Error(err))
		return
	}
	s.logger.Info("scheduled collection completed", zap.Duration("duration", elapsed))
}
