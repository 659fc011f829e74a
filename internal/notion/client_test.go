package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsync/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// newTestServer answers every request with status and response and records what it received.
func newTestServer(t *testing.T, status int, response string) (*Client, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	recorded := func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
	return NewClient("secret-token", WithBaseURL(srv.URL)), recorded
}

func TestClient_Headers(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "page", "id": "p1"}`)

	_, err := client.GetPage(context.Background(), "p1")
	require.NoError(t, err)

	require.Len(t, requests(), 1)
	req := requests()[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/pages/p1", req.Path)
	assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
	assert.Equal(t, APIVersion, req.Header.Get("Notion-Version"))
}

func TestClient_CreatePage(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "page", "id": "new-page"}`)

	page, err := client.CreatePage(context.Background(), "parent-1", "Notes", "first line")
	require.NoError(t, err)
	assert.Equal(t, "new-page", page.ID)

	req := requests()[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/pages", req.Path)
	assert.Equal(t, map[string]any{"page_id": "parent-1"}, req.Body["parent"])

	children, ok := req.Body["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 1)
	assert.Equal(t, "paragraph", children[0].(map[string]any)["type"])
}

func TestClient_CreatePage_NoContent(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "page", "id": "new-page"}`)

	_, err := client.CreatePage(context.Background(), "parent-1", "Notes", "")
	require.NoError(t, err)

	_, hasChildren := requests()[0].Body["children"]
	assert.False(t, hasChildren)
}

func TestClient_CreateDatabaseRow(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "page", "id": "row-1"}`)

	page, err := client.CreateDatabaseRow(context.Background(), "db-1", Properties{"Task": Title("Buy milk")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "row-1", page.ID)

	req := requests()[0]
	assert.Equal(t, map[string]any{"database_id": "db-1"}, req.Body["parent"])
	assert.Contains(t, req.Body["properties"], "Task")
}

func TestClient_MissingID(t *testing.T) {
	client, _ := newTestServer(t, http.StatusOK, `{"object": "error", "status": 400, "message": "validation failed"}`)
	ctx := context.Background()

	_, err := client.CreatePage(ctx, "parent-1", "Notes", "")
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = client.CreateDatabaseRow(ctx, "db-1", Properties{}, nil)
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = client.UpdateProperties(ctx, "p1", Properties{"Notes Generated": Checkbox(true)})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestClient_APIError(t *testing.T) {
	client, _ := newTestServer(t, http.StatusNotFound, `{"object": "error", "status": 404, "code": "object_not_found", "message": "Could not find database"}`)

	_, err := client.QueryDatabase(context.Background(), "db-1", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "object_not_found", apiErr.Code)
	assert.Equal(t, "Could not find database", apiErr.Message)
}

func TestClient_APIError_NoBody(t *testing.T) {
	client, _ := newTestServer(t, http.StatusBadGateway, ``)

	_, err := client.GetPage(context.Background(), "p1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_QueryDatabase(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "list", "results": [{"object": "page", "id": "row-1"}, {"object": "page", "id": "row-2"}]}`)

	result, err := client.QueryDatabase(context.Background(), "db-1",
		And(DateOnOrAfter("Date", "2025-01-06"), SelectDoesNotEqual("Status", "Completed")),
		[]Sort{{Property: "Date", Direction: Ascending}},
	)
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "row-2", result.Results[1].ID)

	req := requests()[0]
	assert.Equal(t, "/databases/db-1/query", req.Path)
	assert.Contains(t, req.Body, "filter")
	assert.Equal(t, []any{map[string]any{"property": "Date", "direction": "ascending"}}, req.Body["sorts"])
}

func TestClient_QueryDatabase_NoFilter(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "list", "results": []}`)

	result, err := client.QueryDatabase(context.Background(), "db-1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Results)

	assert.Empty(t, requests()[0].Body)
}

func TestClient_UpdateProperties(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "page", "id": "row-1"}`)

	_, err := client.UpdateProperties(context.Background(), "row-1", Properties{
		"Notes Generated":   Checkbox(true),
		"Meeting Note Page": Relation("note-1"),
	})
	require.NoError(t, err)

	req := requests()[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/pages/row-1", req.Path)
	props := req.Body["properties"].(map[string]any)
	assert.Len(t, props, 2)
}

func TestClient_AppendToPage(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "list", "results": [{"object": "block", "id": "b1", "type": "paragraph", "paragraph": {"rich_text": []}}]}`)

	blocks, err := client.AppendToPage(context.Background(), "page-1", "hello")
	require.NoError(t, err)
	require.Len(t, blocks.Results, 1)

	req := requests()[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/blocks/page-1/children", req.Path)
}

func TestClient_ListChildren(t *testing.T) {
	client, _ := newTestServer(t, http.StatusOK, `{"object": "list", "results": [
		{"object": "block", "id": "b1", "type": "heading_2", "heading_2": {"rich_text": [{"plain_text": "Agenda"}]}},
		{"object": "block", "id": "b2", "type": "to_do", "to_do": {"rich_text": [], "checked": false}}
	]}`)

	blocks, err := client.ListChildren(context.Background(), "template")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "heading_2", blocks[0].Type)
	assert.Equal(t, "Agenda", blocks[0].PlainText())
	assert.Equal(t, "to_do", blocks[1].Type)
}

func TestClient_DuplicatePage(t *testing.T) {
	var (
		mu      sync.Mutex
		created map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/blocks/template/children":
			_, _ = io.WriteString(w, `{"object": "list", "results": [
				{"object": "block", "id": "b1", "type": "heading_2", "heading_2": {"rich_text": [{"type": "text", "text": {"content": "Agenda"}}]}}
			]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/pages":
			mu.Lock()
			_ = json.NewDecoder(r.Body).Decode(&created)
			mu.Unlock()
			_, _ = io.WriteString(w, `{"object": "page", "id": "copy-1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient("token", WithBaseURL(srv.URL))
	page, err := client.DuplicatePage(context.Background(), "template", "Standup - 2025-01-06", "notes-parent")
	require.NoError(t, err)
	assert.Equal(t, "copy-1", page.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]any{"page_id": "notes-parent"}, created["parent"])
	children := created["children"].([]any)
	require.Len(t, children, 1)
	child := children[0].(map[string]any)
	assert.Equal(t, "heading_2", child["type"])
	assert.NotContains(t, child, "id")
}

func TestClient_DuplicatePage_TemplateError(t *testing.T) {
	client, _ := newTestServer(t, http.StatusNotFound, `{"code": "object_not_found", "message": "no template"}`)

	_, err := client.DuplicatePage(context.Background(), "template", "x", "parent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template")
}

func TestClient_Search(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"object": "list", "results": [{"object": "page", "id": "j1"}]}`)

	result, err := client.Search(context.Background(), "Journal - 2025-01-06")
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	req := requests()[0]
	assert.Equal(t, "/search", req.Path)
	assert.Equal(t, "Journal - 2025-01-06", req.Body["query"])
	assert.Equal(t, map[string]any{"value": "page", "property": "object"}, req.Body["filter"])
	assert.Equal(t, map[string]any{"timestamp": "last_edited_time", "direction": "descending"}, req.Body["sort"])
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient("token", WithBaseURL(srv.URL))
	_, err := client.GetPage(context.Background(), "p1")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestNewClientFromConfig(t *testing.T) {
	cfg, err := config.FromLookup(func(string) (string, bool) { return "", false })
	require.NoError(t, err)

	_, err = NewClientFromConfig(cfg, nil)
	assert.ErrorIs(t, err, config.ErrNotConfigured)

	cfg.NotionToken = config.NewSetting(config.EnvNotionToken, "tok")
	client, err := NewClientFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultNotionAPIURL, client.baseURL)
}
