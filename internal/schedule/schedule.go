// Package schedule runs sync passes on cron schedules. A job whose previous
// run is still going is skipped for that tick, so one profile never has two
// passes touching its tree at once.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Func is one scheduled unit of work. ctx is canceled when the runner stops.
type Func func(ctx context.Context) error

// Job binds a cron expression to a named Func.
type Job struct {
	Run  Func
	Name string
	Spec string // standard 5-field cron expression or a descriptor like "@hourly"
}

// Entry describes a registered job.
type Entry struct {
	Next time.Time
	Prev time.Time
	Name string
	Spec string
}

// Runner owns a cron scheduler and the jobs registered on it.
type Runner struct {
	ctx  context.Context //nolint:containedctx // jobs need the runner's lifetime, set by Run
	cron *cron.Cron
	log  *slog.Logger
	ids  map[string]cron.EntryID
	jobs map[string]Job
	mu   sync.RWMutex
}

// New creates a Runner. A nil logger discards.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cl := cronLogger{log: logger}
	return &Runner{
		ctx: context.Background(),
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:  logger,
		ids:  make(map[string]cron.EntryID),
		jobs: make(map[string]Job),
	}
}

// Add registers job. Names must be unique and the expression must parse.
func (r *Runner) Add(job Job) error {
	if job.Name == "" {
		return errors.New("schedule: job has no name")
	}
	if job.Run == nil {
		return fmt.Errorf("schedule: job %s has no func", job.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.jobs[job.Name]; dup {
		return fmt.Errorf("schedule: job %s already registered", job.Name)
	}

	id, err := r.cron.AddJob(job.Spec, cron.FuncJob(func() { r.fire(job) }))
	if err != nil {
		return fmt.Errorf("schedule: job %s: invalid cron %q: %w", job.Name, job.Spec, err)
	}
	r.ids[job.Name] = id
	r.jobs[job.Name] = job
	r.log.Debug("job scheduled", "job", job.Name, "cron", job.Spec)
	return nil
}

// Entries returns the registered jobs sorted by name. Next is zero until Run
// has started the scheduler.
func (r *Runner) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.jobs))
	for name, job := range r.jobs {
		ce := r.cron.Entry(r.ids[name])
		out = append(out, Entry{Name: name, Spec: job.Spec, Next: ce.Next, Prev: ce.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run starts the scheduler and blocks until ctx is done. It then stops
// scheduling and waits for running jobs, whose ctx is canceled too.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if len(r.jobs) == 0 {
		r.mu.Unlock()
		return errors.New("schedule: no jobs registered")
	}
	r.ctx = ctx
	r.mu.Unlock()

	r.cron.Start()
	for _, e := range r.Entries() {
		r.log.Info("job next run", "job", e.Name, "cron", e.Spec, "next", e.Next.Format(time.RFC3339))
	}

	<-ctx.Done()
	r.log.Info("scheduler stopping, waiting for running jobs")
	<-r.cron.Stop().Done()
	return nil
}

func (r *Runner) fire(job Job) {
	r.mu.RLock()
	ctx := r.ctx
	r.mu.RUnlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	r.log.Info("job started", "job", job.Name)
	if err := job.Run(ctx); err != nil {
		r.log.Error("job failed", "job", job.Name, "error", err, "took", time.Since(start).Round(time.Millisecond))
		return
	}
	r.log.Info("job finished", "job", job.Name, "took", time.Since(start).Round(time.Millisecond))
}

// cronLogger routes cron's own messages (skips, panics) to slog.
type cronLogger struct {
	log *slog.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	// cron reports every wake-up at Info; keep those at Debug except skips.
	if msg == "skip" {
		l.log.Warn("job still running, tick skipped", keysAndValues...)
		return
	}
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
