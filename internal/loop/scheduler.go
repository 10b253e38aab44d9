package loop

import (
	"context"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/smazurov/rgbnode/internal/logging"
)

// DefaultInterval is the pause between loop iterations.
const DefaultInterval = time.Millisecond

// Scheduler calls its tasks in registration order once per tick.
type Scheduler struct {
	interval time.Duration
	clk      clock.WithTicker
	tasks    []task
	onStop   []func()
	logger   *slog.Logger
}

type task struct {
	name string
	run  func()
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock replaces the real clock.
func WithClock(clk clock.WithTicker) SchedulerOption {
	return func(s *Scheduler) {
		s.clk = clk
	}
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(interval time.Duration, opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		interval: interval,
		clk:      clock.RealClock{},
		logger:   logging.GetLogger("loop"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a task. Tasks must not block.
func (s *Scheduler) Add(name string, run func()) {
	s.tasks = append(s.tasks, task{name: name, run: run})
}

// OnStop registers fn to run on the loop goroutine after the last
// iteration, in registration order.
func (s *Scheduler) OnStop(fn func()) {
	s.onStop = append(s.onStop, fn)
}

// Tasks lists task names in run order.
func (s *Scheduler) Tasks() []string {
	names := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		names[i] = t.name
	}
	return names
}

// RunOnce runs every task once.
func (s *Scheduler) RunOnce() {
	for _, t := range s.tasks {
		t.run()
	}
}

// Run ticks until ctx ends, then runs the stop hooks.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := s.clk.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Loop started", "interval", s.interval, "tasks", s.Tasks())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Loop stopping")
			for _, fn := range s.onStop {
				fn()
			}
			return
		case <-ticker.C():
			s.RunOnce()
		}
	}
}
