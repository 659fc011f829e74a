package meeting_tools

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/meetings"
	"github.com/teemow/meetsync/internal/notion"
	"github.com/teemow/meetsync/internal/server"
)

// fakeStore answers every query with rows and records nothing else.
type fakeStore struct {
	rows    []notion.Page
	filters []notion.Filter
}

func (s *fakeStore) QueryDatabase(_ context.Context, _ string, filter notion.Filter, _ []notion.Sort) (*notion.QueryResult, error) {
	s.filters = append(s.filters, filter)
	return &notion.QueryResult{Results: s.rows}, nil
}

func (s *fakeStore) CreateDatabaseRow(context.Context, string, notion.Properties, []notion.Block) (*notion.Page, error) {
	return &notion.Page{ID: "row"}, nil
}

func (s *fakeStore) UpdateProperties(_ context.Context, pageID string, _ notion.Properties) (*notion.Page, error) {
	return &notion.Page{ID: pageID}, nil
}

func (s *fakeStore) GetPage(_ context.Context, pageID string) (*notion.Page, error) {
	return &notion.Page{ID: pageID}, nil
}

func (s *fakeStore) ListChildren(context.Context, string) ([]notion.Block, error) {
	return nil, nil
}

func (s *fakeStore) CreatePageWithChildren(context.Context, string, string, []notion.Block) (*notion.Page, error) {
	return &notion.Page{ID: "note"}, nil
}

type fakeSource struct {
	events []meetings.RawEvent
}

func (s fakeSource) EventsForRange(context.Context, time.Time, time.Time) ([]meetings.RawEvent, error) {
	return s.events, nil
}

func configured(t *testing.T) *config.Config {
	t.Helper()
	env := map[string]string{
		config.EnvNotionToken:          "secret",
		config.EnvMeetingsDatabaseID:   "db",
		config.EnvMeetingTemplatePage:  "tpl",
		config.EnvMeetingNotesParentID: "parent",
		config.EnvTimezone:             "UTC",
	}
	cfg, err := config.FromLookup(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func newServerContext(t *testing.T, cfg *config.Config, opts ...server.Option) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func meetingRow(id, title, eventID string) notion.Page {
	return notion.Page{
		ID: id,
		Properties: notion.Properties{
			meetings.PropName:          notion.Title(title),
			meetings.PropDate:          notion.Date(time.Now().UTC().Format("2006-01-02"), ""),
			meetings.PropStatus:        notion.Select(meetings.StatusScheduled),
			meetings.PropGoogleEventID: notion.RichText(eventID),
		},
	}
}

func TestRegisterMeetingTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	sc := newServerContext(t, configured(t))
	assert.NoError(t, RegisterMeetingTools(s, sc))
}

func TestHandleFind(t *testing.T) {
	store := &fakeStore{rows: []notion.Page{meetingRow("page-1", "Planning", "ev1")}}
	sc := newServerContext(t, configured(t), server.WithStore(store))

	res, err := handleFind(context.Background(), request(map[string]interface{}{"eventId": "ev1"}), sc)
	require.NoError(t, err)
	assert.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "Meeting: Planning")
	assert.Contains(t, text, "ID: page-1")
	assert.Contains(t, text, "Status: Scheduled")
	require.Len(t, store.filters, 1)
	assert.Equal(t, notion.RichTextEquals(meetings.PropGoogleEventID, "ev1"), store.filters[0])
}

func TestHandleFind_NotFound(t *testing.T) {
	sc := newServerContext(t, configured(t), server.WithStore(&fakeStore{}))

	res, err := handleFind(context.Background(), request(map[string]interface{}{"eventId": "ev1"}), sc)
	require.NoError(t, err)
	assert.Equal(t, "No meeting found for event ev1", resultText(t, res))
}

func TestHandleFind_MissingArgument(t *testing.T) {
	sc := newServerContext(t, configured(t), server.WithStore(&fakeStore{}))

	res, err := handleFind(context.Background(), request(map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleReconcile(t *testing.T) {
	store := &fakeStore{rows: []notion.Page{meetingRow("page-1", "Planning", "ev1")}}
	sc := newServerContext(t, configured(t), server.WithStore(store))

	res, err := handleReconcile(context.Background(), request(map[string]interface{}{"mode": "today"}), sc)
	require.NoError(t, err)
	assert.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "Meetings found: 1")
	assert.Contains(t, text, "Meeting notes created: 1")
}

func TestHandleReconcile_InvalidMode(t *testing.T) {
	sc := newServerContext(t, configured(t), server.WithStore(&fakeStore{}))

	res, err := handleReconcile(context.Background(), request(map[string]interface{}{"mode": "month"}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleReconcile_NotConfigured(t *testing.T) {
	cfg := configured(t)
	cfg.MeetingTemplatePage = config.NewSetting(config.EnvMeetingTemplatePage, "")
	sc := newServerContext(t, cfg, server.WithStore(&fakeStore{}))

	res, err := handleReconcile(context.Background(), request(nil), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), config.EnvMeetingTemplatePage)
}

func TestHandleIngest(t *testing.T) {
	start := time.Now().UTC()
	source := fakeSource{events: []meetings.RawEvent{
		{ID: "ev1", Summary: "Planning", Status: "confirmed", Start: meetings.EventTime{DateTime: &start}},
	}}
	sc := newServerContext(t, configured(t), server.WithStore(&fakeStore{}), server.WithSource(source))

	res, err := handleIngest(context.Background(), request(map[string]interface{}{"mode": "today"}), sc)
	require.NoError(t, err)
	assert.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "Events found: 1")
	assert.Contains(t, text, "Meetings created: 1")
}
