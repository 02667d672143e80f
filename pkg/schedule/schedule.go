// Package schedule runs the mirror's periodic jobs on robfig/cron.
//
//	s := schedule.New(logger.L)
//	s.Add("backup", "@every 30m", func(ctx context.Context) { mirror.Backup(ctx, disk) })
//	s.Add("low-stock", "*/5 * * * *", sweep)
//	s.Start(ctx)
//	defer s.Stop()
//
// Specs are standard 5-field cron expressions or descriptors such as
// @hourly and @every 90s. A run still in progress makes the next one skip.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is a scheduled job body. ctx is cancelled when the scheduler stops.
type Task func(ctx context.Context)

// Entry describes one registered job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

type job struct {
	name string
	spec string
	id   cron.EntryID
}

// Scheduler owns a cron runner and the jobs registered on it.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger

	mu     sync.Mutex
	jobs   []job
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "schedule")
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{log}),
			cron.SkipIfStillRunning(cronLogger{log}),
		)),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers task under name. An empty spec disables the job and is not
// an error.
func (s *Scheduler) Add(name, spec string, task Task) error {
	if spec == "" {
		s.log.Info("job disabled", "job", name)
		return nil
	}

	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		s.log.Debug("job running", "job", name)
		task(s.context())
		s.log.Debug("job finished", "job", name, "took", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule: %s: bad spec %q: %w", name, spec, err)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, job{name: name, spec: spec, id: id})
	s.mu.Unlock()
	return nil
}

// Start runs the scheduler in the background until ctx is done or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-parent.Done():
		}
	}()

	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.Entries()))
}

// Stop cancels running jobs' context and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Entries lists the registered jobs with their next and previous run.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.jobs))
	for _, j := range s.jobs {
		e := s.cron.Entry(j.id)
		out = append(out, Entry{Name: j.name, Spec: j.spec, Next: e.Next, Prev: e.Prev})
	}
	return out
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ log *slog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
