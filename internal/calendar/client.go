package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/google"
	"github.com/teemow/meetsync/internal/instrumentation"
	"github.com/teemow/meetsync/internal/logging"
	"github.com/teemow/meetsync/internal/meetings"
)

// MaxResults is the largest number of events read for one range
const MaxResults = 50

// Options configures a Client
type Options struct {
	// CalendarID is the calendar to read (default: "primary")
	CalendarID string

	// Location is used for range boundaries (default: time.Local)
	Location *time.Location

	Metrics *instrumentation.Metrics
	Logger  logging.Logger
}

// Client wraps the Google Calendar service and implements meetings.Source
type Client struct {
	svc        *calendar.Service
	calendarID string
	location   *time.Location
	metrics    *instrumentation.Metrics
	logger     logging.Logger
}

var _ meetings.Source = (*Client)(nil)

// NewClient creates a new Calendar client authorized with the token from provider.
func NewClient(ctx context.Context, conf *oauth2.Config, provider google.TokenProvider, opts Options) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	httpClient, err := google.NewHTTPClient(ctx, conf, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return NewClientWithService(svc, opts), nil
}

// NewClientFromConfig creates a Client from the credentials and token files named in cfg.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics, logger logging.Logger) (*Client, error) {
	conf, err := google.LoadOAuthConfig(cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, conf, google.NewFileTokenProvider(cfg.GoogleTokenFile), Options{
		CalendarID: cfg.GoogleCalendarID,
		Location:   cfg.Location,
		Metrics:    metrics,
		Logger:     logger,
	})
}

// NewClientWithService creates a Client around an existing service.
func NewClientWithService(svc *calendar.Service, opts Options) *Client {
	c := &Client{
		svc:        svc,
		calendarID: opts.CalendarID,
		location:   opts.Location,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if c.calendarID == "" {
		c.calendarID = config.DefaultGoogleCalendarID
	}
	if c.location == nil {
		c.location = time.Local
	}
	if c.logger == nil {
		c.logger = logging.DefaultLogger()
	}
	return c
}

// CalendarID returns the calendar this client reads
func (c *Client) CalendarID() string {
	return c.calendarID
}

// EventsForRange lists the single occurrences between the start of start's
// day and the end of end's day, ordered by start time. Cancelled occurrences
// are included so that cancellations reach the meetings database.
func (c *Client) EventsForRange(ctx context.Context, start, end time.Time) ([]meetings.RawEvent, error) {
	timeMin := dayStart(start.In(c.location))
	timeMax := dayEnd(end.In(c.location))

	began := time.Now()
	ctx, span := instrumentation.StartRemoteSpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationListEvents, c.calendarID)
	defer span.End()

	events, err := c.svc.Events.List(c.calendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		ShowDeleted(true).
		OrderBy("startTime").
		MaxResults(MaxResults).
		Do()
	if err != nil {
		err = fmt.Errorf("failed to fetch Google Calendar events: %w", err)
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordRemoteOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationListEvents, instrumentation.StatusError, time.Since(began))
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	c.metrics.RecordRemoteOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationListEvents, instrumentation.StatusSuccess, time.Since(began))

	raw := make([]meetings.RawEvent, 0, len(events.Items))
	for _, item := range events.Items {
		ev, err := toRawEvent(item)
		if err != nil {
			c.logger.Warn("Failed to process event",
				logging.Service(instrumentation.ServiceCalendar),
				logging.EventID(item.Id),
				logging.Err(err))
			continue
		}
		raw = append(raw, ev)
	}
	return raw, nil
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
