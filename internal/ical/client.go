package ical

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/instrumentation"
	"github.com/teemow/meetsync/internal/logging"
	"github.com/teemow/meetsync/internal/meetings"
)

// maxFeedSize bounds how much of a feed is read
const maxFeedSize = 10 << 20

// Client reads meetings from an iCalendar feed. The feed is either an
// http(s) URL or a local file path.
type Client struct {
	source     string
	httpClient *http.Client
	location   *time.Location
	metrics    *instrumentation.Metrics
	logger     logging.Logger
}

var _ meetings.Source = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for remote feeds.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLocation sets the zone used for floating times and day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithMetrics records a remote operation metric for each fetch.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger for skipped events.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client for the feed at source.
func NewClient(source string, opts ...Option) *Client {
	c := &Client{
		source: source,
		httpClient: &http.Client{
			Timeout:   config.DefaultHTTPClientTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		location: time.Local,
		logger:   logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a Client for the configured feed. It fails
// with a *config.MissingError when no feed is configured.
func NewClientFromConfig(cfg *config.Config, metrics *instrumentation.Metrics, logger logging.Logger) (*Client, error) {
	if err := config.Require(cfg.CalendarICSURL); err != nil {
		return nil, err
	}
	return NewClient(cfg.CalendarICSURL.String(),
		WithLocation(cfg.Location),
		WithMetrics(metrics),
		WithLogger(logger)), nil
}

// EventsForRange fetches the feed and returns the occurrences between the
// start of start's day and the end of end's day, ordered by start time.
func (c *Client) EventsForRange(ctx context.Context, start, end time.Time) ([]meetings.RawEvent, error) {
	data, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	s := start.In(c.location)
	e := end.In(c.location)
	w := Window{
		Start: time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, c.location),
		End:   time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, c.location).AddDate(0, 0, 1),
	}

	events, warnings, err := Parse(bytes.NewReader(data), w, c.location)
	if err != nil {
		return nil, err
	}
	for _, warning := range warnings {
		c.logger.Warn(warning, logging.Service(instrumentation.ServiceICal))
	}
	return events, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	began := time.Now()
	ctx, span := instrumentation.StartRemoteSpan(ctx, instrumentation.ServiceICal, instrumentation.OperationFetchFeed, "")
	defer span.End()

	data, err := c.read(ctx)
	if err == nil {
		err = validateFormat(data)
	}

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordRemoteOperation(ctx, instrumentation.ServiceICal, instrumentation.OperationFetchFeed, status, time.Since(began))

	return data, err
}

func (c *Client) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(c.source, "http://") && !strings.HasPrefix(c.source, "https://") {
		f, err := os.Open(strings.TrimPrefix(c.source, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to open calendar file: %w", err)
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxFeedSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calendar feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

func validateFormat(data []byte) error {
	body := strings.TrimSpace(string(data))
	upper := strings.ToUpper(body)
	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return fmt.Errorf("received HTML instead of iCalendar data - check if URL requires authentication")
	}
	if !strings.HasPrefix(upper, "BEGIN:VCALENDAR") {
		preview := body
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return fmt.Errorf("invalid iCalendar format - expected BEGIN:VCALENDAR, got: %s", preview)
	}
	return nil
}
