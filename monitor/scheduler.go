package monitor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is the probe-and-update operation run for one site.
type Job func(ctx context.Context, siteID int) error

// RunResult describes what RunNow did with a manual trigger.
type RunResult int

const (
	RunNotFound RunResult = iota
	RunStarted
	// RunMerged means a run for the site was already in flight. The trigger
	// is absorbed by that run rather than queued behind it.
	RunMerged
)

type task struct {
	entry   cron.EntryID
	run     cron.Job
	cancel  context.CancelFunc
	running atomic.Bool
}

// Scheduler runs one recurring job per site on its own interval. Each site's
// job is wrapped with SkipIfStillRunning so a slow probe never overlaps with
// the next tick or a manual run for the same site; a panic or error in one
// site's job is logged and leaves every schedule in place.
type Scheduler struct {
	cron   *cron.Cron
	job    Job
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	tasks map[int]*task
}

func NewScheduler(job Job, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger{logger: logger})),
		job:    job,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[int]*task),
	}
}

// Run starts the underlying cron loop. Tasks may be added before or after.
func (s *Scheduler) Run() {
	s.cron.Start()
}

// Start replaces any task for siteID, runs the job once immediately and then
// every interval until stopped.
func (s *Scheduler) Start(siteID int, interval time.Duration) {
	s.mu.Lock()
	s.stopLocked(siteID)

	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{cancel: cancel}
	wrapped := cron.NewChain(
		cron.Recover(cronLogger{logger: s.logger}),
		cron.SkipIfStillRunning(cronLogger{logger: s.logger}),
	).Then(cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		t.running.Store(true)
		defer t.running.Store(false)
		if err := s.job(ctx, siteID); err != nil {
			s.logger.Error("site check failed", "site_id", siteID, "err", err)
		}
	}))

	t.run = wrapped
	t.entry = s.cron.Schedule(cron.Every(interval), wrapped)
	s.tasks[siteID] = t
	s.mu.Unlock()

	s.logger.Debug("scheduled site", "site_id", siteID, "interval", interval.String())

	go wrapped.Run()
}

// RunNow triggers an out-of-band run for siteID through the same chain as
// the scheduled ticks. When a run is already in flight the trigger is merged
// into it and nothing new is started.
func (s *Scheduler) RunNow(siteID int) RunResult {
	s.mu.Lock()
	t, ok := s.tasks[siteID]
	s.mu.Unlock()
	if !ok {
		return RunNotFound
	}

	if t.running.Load() {
		return RunMerged
	}

	go t.run.Run()
	return RunStarted
}

// Stop cancels the task for siteID, including any probe in flight. Returns
// whether a task was active.
func (s *Scheduler) Stop(siteID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(siteID)
}

// StopAll cancels every task and returns how many were active.
func (s *Scheduler) StopAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stopped := 0
	for id := range s.tasks {
		if s.stopLocked(id) {
			stopped++
		}
	}
	return stopped
}

// Shutdown cancels every task context and waits for jobs dispatched by cron
// to return.
func (s *Scheduler) Shutdown() {
	s.StopAll()
	s.cancel()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Active(siteID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[siteID]
	return ok
}

func (s *Scheduler) stopLocked(siteID int) bool {
	t, ok := s.tasks[siteID]
	if !ok {
		return false
	}
	t.cancel()
	s.cron.Remove(t.entry)
	delete(s.tasks, siteID)
	return true
}

// cronLogger routes cron's internal logging through slog. Cron reports every
// wake-up at info, which is debug noise for this process.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"err", err}, keysAndValues...)...)
}
