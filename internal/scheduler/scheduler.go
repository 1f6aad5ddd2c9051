package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultInterval is the dispatch pass period when none is configured.
const DefaultInterval = 60 * time.Second

// Processor defines the behavior required by Scheduler.
type Processor interface {
	ProcessDueEvents(ctx context.Context) error
}

// Options configures Scheduler.
type Options struct {
	Interval time.Duration
	Location *time.Location
	Logger   zerolog.Logger
}

// Scheduler drives periodic dispatch passes on a cron "@every" schedule.
// A pass still running when the next one fires is skipped, never overlapped.
type Scheduler struct {
	processor Processor
	interval  time.Duration
	location  *time.Location
	logger    zerolog.Logger

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	cancel  context.CancelFunc
	// initial tracks the pass Start fires outside cron's own bookkeeping.
	initial *sync.WaitGroup
}

// ErrAlreadyRunning is emitted when start is called twice.
var ErrAlreadyRunning = errors.New("scheduler already running")

// ErrNotRunning is emitted when trying to stop an idle scheduler.
var ErrNotRunning = errors.New("scheduler not running")

// New builds a scheduler.
func New(processor Processor, opts Options) *Scheduler {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		processor: processor,
		interval:  interval,
		location:  loc,
		logger:    opts.Logger.With().Str("component", "scheduler").Logger(),
	}
}

// Interval reports the configured pass period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start begins the background loop and runs one pass immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)

	logger := cronLogger{logger: s.logger}
	job := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).
		Then(cron.FuncJob(func() { s.execute(loopCtx) }))

	c := cron.New(cron.WithLocation(s.location), cron.WithLogger(logger))
	if _, err := c.AddJob(fmt.Sprintf("@every %s", s.interval), job); err != nil {
		cancel()
		return fmt.Errorf("schedule dispatch pass: %w", err)
	}

	initial := &sync.WaitGroup{}
	s.cron = c
	s.cancel = cancel
	s.initial = initial
	s.running = true

	c.Start()
	// Shares the skip guard with the scheduled entry.
	initial.Add(1)
	go func() {
		defer initial.Done()
		job.Run()
	}()

	s.logger.Info().Dur("interval", s.interval).Str("tz", s.location.String()).Msg("scheduler started")
	return nil
}

// Stop cancels the loop and waits for a running pass to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	c, cancel, initial := s.cron, s.cancel, s.initial
	s.cron, s.cancel, s.initial = nil, nil, nil
	s.running = false
	s.mu.Unlock()

	cancel()
	<-c.Stop().Done()
	initial.Wait()
	s.logger.Info().Msg("scheduler stopped")
	return nil
}

// IsRunning reports the scheduler state.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce executes a single pass synchronously, whether or not the loop is
// running.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.processor.ProcessDueEvents(ctx)
}

func (s *Scheduler) execute(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.processor.ProcessDueEvents(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error().Err(err).Msg("scheduler iteration failed")
	}
}

// cronLogger routes cron's internal logging to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
