package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teemow/meetsync/internal/logging"
)

// DefaultSpec runs every half hour during working hours on weekdays
const DefaultSpec = "*/30 8-20 * * 1-5"

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name implements Job
func (j JobFunc) Name() string { return j.JobName }

// Run implements Job
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// CronScheduler runs jobs on five-field cron schedules. A tick that fires
// while the previous run of the same job is still executing is skipped.
type CronScheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	logger  logging.Logger
	mu      sync.Mutex
	entries map[string]cron.EntryID
	ctx     context.Context
}

// NewCronScheduler creates a scheduler in the given location.
func NewCronScheduler(loc *time.Location, logger logging.Logger) *CronScheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
		parser:  parser,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}
}

// Validate reports whether spec is a valid five-field cron expression.
func (c *CronScheduler) Validate(spec string) error {
	if _, err := c.parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// AddJob schedules job. A job name can only be scheduled once.
func (c *CronScheduler) AddJob(job Job, spec string) error {
	name := job.Name()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[name]; ok {
		return fmt.Errorf("job %s already scheduled", name)
	}
	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		c.logger.Error("schedule job failed", logging.Job(name), "spec", spec, logging.Err(err))
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	c.entries[name] = entryID
	c.logger.Info("job scheduled", logging.Job(name), "spec", spec)
	return nil
}

// Next returns the next time job runs, or the zero time when it is unknown.
func (c *CronScheduler) Next(name string) time.Time {
	c.mu.Lock()
	id, ok := c.entries[name]
	c.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return c.cron.Entry(id).Next
}

// Start begins running jobs. Runs receive ctx.
func (c *CronScheduler) Start(ctx context.Context) {
	if ctx != nil {
		c.mu.Lock()
		c.ctx = ctx
		c.mu.Unlock()
	}
	c.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *CronScheduler) runContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			c.logger.Info("job skipped: still running", logging.Job(job.Name()), "spec", spec)
			return
		}
		defer running.Store(false)

		start := time.Now()
		c.logger.Info("job started", logging.Job(job.Name()), "spec", spec)
		err := job.Run(c.runContext())
		elapsed := time.Since(start)
		if err != nil {
			c.logger.Error("job finished", logging.Job(job.Name()), logging.Err(err), logging.Duration(elapsed))
			return
		}
		c.logger.Info("job finished", logging.Job(job.Name()), logging.Duration(elapsed))
	}
}
