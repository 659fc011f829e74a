package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/instrumentation"
)

// APIVersion is sent as the Notion-Version header on every request.
const APIVersion = "2022-06-28"

// DefaultBaseURL is the public API endpoint
const DefaultBaseURL = "https://api.notion.com/v1"

// Client talks to the document store over HTTP/JSON. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *instrumentation.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithMetrics records one remote operation metric per call.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a Client authenticating with a bearer token.
func NewClient(token string, opts ...Option) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: config.DefaultHTTPClientTimeout,
			Transport: &oauth2.Transport{
				Source: src,
				Base:   otelhttp.NewTransport(http.DefaultTransport),
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a Client from cfg. It fails with a
// *config.MissingError when no token is configured.
func NewClientFromConfig(cfg *config.Config, metrics *instrumentation.Metrics) (*Client, error) {
	if err := config.Require(cfg.NotionToken); err != nil {
		return nil, err
	}
	return NewClient(cfg.NotionToken.String(), WithBaseURL(cfg.NotionAPIURL), WithMetrics(metrics)), nil
}

// CreatePage creates a page under a parent page. A non-empty content
// becomes a single paragraph block.
func (c *Client) CreatePage(ctx context.Context, parentID, title, content string) (*Page, error) {
	var children []Block
	if content != "" {
		children = []Block{Paragraph(content)}
	}
	return c.CreatePageWithChildren(ctx, parentID, title, children)
}

// CreatePageWithChildren creates a page under a parent page holding the given blocks.
func (c *Client) CreatePageWithChildren(ctx context.Context, parentID, title string, children []Block) (*Page, error) {
	body := map[string]any{
		"parent":     map[string]string{"page_id": parentID},
		"properties": Properties{"title": Title(title)},
	}
	if len(children) > 0 {
		body["children"] = children
	}

	var page Page
	if err := c.do(ctx, instrumentation.OperationCreatePage, parentID, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, err
	}
	if page.ID == "" {
		return nil, ErrMissingID
	}
	return &page, nil
}

// CreateDatabaseRow creates a row in a database.
func (c *Client) CreateDatabaseRow(ctx context.Context, databaseID string, properties Properties, children []Block) (*Page, error) {
	body := map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": properties,
	}
	if len(children) > 0 {
		body["children"] = children
	}

	var page Page
	if err := c.do(ctx, instrumentation.OperationCreatePage, databaseID, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, err
	}
	if page.ID == "" {
		return nil, ErrMissingID
	}
	return &page, nil
}

// AppendToPage appends content as a paragraph block.
func (c *Client) AppendToPage(ctx context.Context, pageID, content string) (*BlockList, error) {
	body := map[string]any{"children": []Block{Paragraph(content)}}

	var blocks BlockList
	if err := c.do(ctx, instrumentation.OperationAppend, pageID, http.MethodPatch, "/blocks/"+url.PathEscape(pageID)+"/children", body, &blocks); err != nil {
		return nil, err
	}
	return &blocks, nil
}

// QueryDatabase returns the rows of a database matching filter, ordered by sorts.
// Both may be empty. Only the first result page is returned.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter Filter, sorts []Sort) (*QueryResult, error) {
	body := map[string]any{}
	if filter != nil {
		body["filter"] = filter
	}
	if len(sorts) > 0 {
		body["sorts"] = sorts
	}

	var result QueryResult
	if err := c.do(ctx, instrumentation.OperationQuery, databaseID, http.MethodPost, "/databases/"+url.PathEscape(databaseID)+"/query", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProperties sets the given properties. Properties not named are untouched.
func (c *Client) UpdateProperties(ctx context.Context, pageID string, properties Properties) (*Page, error) {
	body := map[string]any{"properties": properties}

	var page Page
	if err := c.do(ctx, instrumentation.OperationUpdate, pageID, http.MethodPatch, "/pages/"+url.PathEscape(pageID), body, &page); err != nil {
		return nil, err
	}
	if page.ID == "" {
		return nil, ErrMissingID
	}
	return &page, nil
}

// GetPage retrieves a page with its properties.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, instrumentation.OperationGetPage, pageID, http.MethodGet, "/pages/"+url.PathEscape(pageID), nil, &page); err != nil {
		return nil, err
	}
	if page.ID == "" {
		return nil, ErrMissingID
	}
	return &page, nil
}

// ListChildren returns the immediate child blocks of a page or block.
// Only the first listing page is read; nested children are not followed.
func (c *Client) ListChildren(ctx context.Context, blockID string) ([]Block, error) {
	var blocks BlockList
	if err := c.do(ctx, instrumentation.OperationListChildren, blockID, http.MethodGet, "/blocks/"+url.PathEscape(blockID)+"/children", nil, &blocks); err != nil {
		return nil, err
	}
	return blocks.Results, nil
}

// DuplicatePage creates a new page under parentID holding a copy of the
// template's child blocks.
func (c *Client) DuplicatePage(ctx context.Context, templateID, newTitle, parentID string) (*Page, error) {
	children, err := c.ListChildren(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", templateID, err)
	}
	return c.CreatePageWithChildren(ctx, parentID, newTitle, children)
}

// Search returns pages matching query, most recently edited first.
func (c *Client) Search(ctx context.Context, query string) (*QueryResult, error) {
	body := map[string]any{
		"query":  query,
		"filter": map[string]string{"value": "page", "property": "object"},
		"sort":   Sort{Timestamp: "last_edited_time", Direction: Descending},
	}

	var result QueryResult
	if err := c.do(ctx, instrumentation.OperationSearch, "", http.MethodPost, "/search", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PageURL returns the browser URL of a page.
func PageURL(pageID string) string {
	return "https://www.notion.so/" + strings.ReplaceAll(pageID, "-", "")
}

// do performs one request and records a span and metric for it.
func (c *Client) do(ctx context.Context, operation, resourceID, method, path string, body, out any) error {
	start := time.Now()
	ctx, span := instrumentation.StartRemoteSpan(ctx, instrumentation.ServiceNotion, operation, resourceID)
	defer span.End()

	err := c.roundTrip(ctx, method, path, body, out)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordRemoteOperation(ctx, instrumentation.ServiceNotion, operation, status, time.Since(start))

	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
