package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts standard 5-field expressions and descriptors such
// as @hourly or @every 30m.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler emits a Trigger on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	triggers chan Trigger
	logger   *slog.Logger
}

// NewScheduler parses spec and prepares a scheduler. It does not run until
// Start is called.
func NewScheduler(spec string, logger *slog.Logger) (*Scheduler, error) {
	sched, err := scheduleParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithParser(scheduleParser)),
		schedule: sched,
		triggers: make(chan Trigger, 1),
		logger:   logger,
	}
	s.cron.Schedule(sched, cron.FuncJob(s.fire))
	return s, nil
}

// Triggers returns the channel of scheduled triggers.
func (s *Scheduler) Triggers() <-chan Trigger { return s.triggers }

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time { return s.schedule.Next(t) }

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "next", s.Next(time.Now()))
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// fire queues a trigger unless one is already waiting.
func (s *Scheduler) fire() {
	select {
	case s.triggers <- Trigger{Reason: ReasonSchedule, At: time.Now()}:
	default:
		s.logger.Debug("Scheduled recompile already pending")
	}
}
