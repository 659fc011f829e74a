package meetings

import (
	"time"

	"github.com/google/uuid"

	"github.com/teemow/meetsync/internal/instrumentation"
	"github.com/teemow/meetsync/internal/logging"
)

// Option configures a Reconciler or Ingestor
type Option func(*settings)

type settings struct {
	logger  logging.Logger
	metrics *instrumentation.Metrics
	now     func() time.Time
	newID   func() string
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: logging.DefaultLogger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records run and item metrics.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(s *settings) {
		s.metrics = metrics
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithRunIDs overrides the run id generator.
func WithRunIDs(newID func() string) Option {
	return func(s *settings) {
		s.newID = newID
	}
}
