package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/meetsync/internal/calendar"
	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/ical"
	"github.com/teemow/meetsync/internal/instrumentation"
	"github.com/teemow/meetsync/internal/logging"
	"github.com/teemow/meetsync/internal/meetings"
	"github.com/teemow/meetsync/internal/notion"
)

// ServerContext holds the clients shared by long-running commands
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Config
	metrics  *instrumentation.Metrics
	logger   logging.Logger
	store    meetings.Store
	source   meetings.Source
	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext
type Option func(*ServerContext)

// WithMetrics sets the metrics passed to every client.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithLogger sets the logger passed to every client.
func WithLogger(l logging.Logger) Option {
	return func(sc *ServerContext) {
		if l != nil {
			sc.logger = l
		}
	}
}

// WithStore sets the document store instead of creating one from config.
func WithStore(s meetings.Store) Option {
	return func(sc *ServerContext) {
		sc.store = s
	}
}

// WithSource sets the calendar source instead of creating one from config.
func WithSource(s meetings.Source) Option {
	return func(sc *ServerContext) {
		sc.source = s
	}
}

// NewServerContext creates a new server context. Clients are created on
// first use so that a partially configured environment can still serve
// the features it has settings for.
func NewServerContext(ctx context.Context, cfg *config.Config, opts ...Option) (*ServerContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		cfg:    cfg,
		logger: logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the configuration
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Metrics returns the metrics, which may be nil
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Logger returns the logger
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// Store returns the document store, creating it on first use.
func (sc *ServerContext) Store() (meetings.Store, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.store != nil {
		return sc.store, nil
	}
	client, err := notion.NewClientFromConfig(sc.cfg, sc.metrics)
	if err != nil {
		return nil, err
	}
	sc.store = client
	return client, nil
}

// Source returns the calendar source, creating it on first use.
func (sc *ServerContext) Source() (meetings.Source, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.source != nil {
		return sc.source, nil
	}
	src, err := NewSource(sc.ctx, sc.cfg, sc.metrics, sc.logger)
	if err != nil {
		return nil, err
	}
	sc.source = src
	return src, nil
}

// Reconciler returns a reconciler over the document store.
func (sc *ServerContext) Reconciler() (*meetings.Reconciler, error) {
	store, err := sc.Store()
	if err != nil {
		return nil, err
	}
	return meetings.NewReconciler(store, sc.cfg, sc.meetingOptions()...), nil
}

// Ingestor returns an ingestor from the calendar source into the document store.
func (sc *ServerContext) Ingestor() (*meetings.Ingestor, error) {
	store, err := sc.Store()
	if err != nil {
		return nil, err
	}
	source, err := sc.Source()
	if err != nil {
		return nil, err
	}
	return meetings.NewIngestor(store, source, sc.cfg, sc.meetingOptions()...), nil
}

func (sc *ServerContext) meetingOptions() []meetings.Option {
	return []meetings.Option{
		meetings.WithLogger(sc.logger),
		meetings.WithMetrics(sc.metrics),
	}
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}

// NewSource creates the calendar source the configuration selects: the
// iCalendar feed when CALENDAR_ICS_URL is set, Google Calendar otherwise.
func NewSource(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics, logger logging.Logger) (meetings.Source, error) {
	if cfg.CalendarICSURL.IsSet() {
		return ical.NewClientFromConfig(cfg, metrics, logger)
	}
	client, err := calendar.NewClientFromConfig(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return client, nil
}
