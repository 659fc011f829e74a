package capture

import (
	"context"
	"errors"
	"time"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/logging"
	"github.com/teemow/meetsync/internal/notion"
)

// Timestamp layouts used in page titles and content
const (
	dateLayout      = "2006-01-02"
	minuteLayout    = "2006-01-02 15:04"
	secondLayout    = "2006-01-02 15:04:05"
	clockLayout     = "15:04"
	previewLength   = 100
	journalPreview  = 50
	taskTitleProp   = "Task"
	journalTitleFmt = "Journal - %s"
)

// ErrNoContent is returned when neither text nor clipboard content is available
var ErrNoContent = errors.New("no content to dump")

// Store is the subset of the document store the capture actions use.
// *notion.Client satisfies it.
type Store interface {
	CreatePage(ctx context.Context, parentID, title, content string) (*notion.Page, error)
	CreateDatabaseRow(ctx context.Context, databaseID string, properties notion.Properties, children []notion.Block) (*notion.Page, error)
	AppendToPage(ctx context.Context, pageID, content string) (*notion.BlockList, error)
	Search(ctx context.Context, query string) (*notion.QueryResult, error)
}

// Service runs the quick capture actions
type Service struct {
	store     Store
	cfg       *config.Config
	now       func() time.Time
	clipboard func(ctx context.Context) (string, error)
	logger    logging.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithClipboard overrides how clipboard text is read.
func WithClipboard(read func(ctx context.Context) (string, error)) Option {
	return func(s *Service) {
		s.clipboard = read
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service. store may be nil when only query mode
// items are rendered.
func NewService(store Store, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store:     store,
		cfg:       cfg,
		now:       time.Now,
		clipboard: ReadClipboard,
		logger:    logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	t := s.now()
	if s.cfg != nil && s.cfg.Location != nil {
		t = t.In(s.cfg.Location)
	}
	return t
}

func (s *Service) requireStore() error {
	if s.store != nil {
		return nil
	}
	if err := config.Require(s.cfg.NotionToken); err != nil {
		return err
	}
	return errors.New("document store not available")
}
