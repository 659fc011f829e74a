package meetings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/logging"
	"github.com/teemow/meetsync/internal/notion"
)

type propertyUpdate struct {
	PageID     string
	Properties notion.Properties
}

type createdPage struct {
	ID       string
	ParentID string
	Title    string
	Children []notion.Block
}

// fakeStore is an in-memory document store. Queries return the rows of a
// database in insertion order; only Google Event ID equality filters are evaluated.
type fakeStore struct {
	mu sync.Mutex

	pages     map[string]*notion.Page
	databases map[string][]string
	children  map[string][]notion.Block
	nextID    int

	queryErr    error
	createErr   error
	createNoID  bool
	updateErrs  map[string]error
	getPageErrs map[string]error

	queries      []notion.Filter
	sorts        [][]notion.Sort
	updates      []propertyUpdate
	created      []createdPage
	rowsCreated  int
	listChildren int
	getPages     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages:       map[string]*notion.Page{},
		databases:   map[string][]string{},
		children:    map[string][]notion.Block{},
		updateErrs:  map[string]error{},
		getPageErrs: map[string]error{},
	}
}

func (s *fakeStore) addRow(databaseID string, page notion.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := page
	s.pages[p.ID] = &p
	s.databases[databaseID] = append(s.databases[databaseID], p.ID)
}

func (s *fakeStore) addPage(id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[id] = &notion.Page{ID: id, Properties: notion.Properties{"title": notion.Title(title)}}
}

func (s *fakeStore) page(id string) *notion.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[id]
}

func (s *fakeStore) QueryDatabase(_ context.Context, databaseID string, filter notion.Filter, sorts []notion.Sort) (*notion.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, filter)
	s.sorts = append(s.sorts, sorts)
	if s.queryErr != nil {
		return nil, s.queryErr
	}

	result := &notion.QueryResult{Object: "list", Results: []notion.Page{}}
	for _, id := range s.databases[databaseID] {
		page := s.pages[id]
		if !matches(page, filter) {
			continue
		}
		result.Results = append(result.Results, copyPage(page))
	}
	return result, nil
}

func matches(page *notion.Page, filter notion.Filter) bool {
	cond, ok := filter["rich_text"].(map[string]string)
	if !ok {
		return true
	}
	prop, _ := filter["property"].(string)
	return page.Properties.PlainText(prop) == cond["equals"]
}

func (s *fakeStore) CreateDatabaseRow(_ context.Context, databaseID string, properties notion.Properties, _ []notion.Block) (*notion.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	page := &notion.Page{ID: fmt.Sprintf("row-%d", s.nextID), Properties: notion.Properties{}}
	for k, v := range properties {
		page.Properties[k] = v
	}
	s.pages[page.ID] = page
	s.databases[databaseID] = append(s.databases[databaseID], page.ID)
	s.rowsCreated++
	return &notion.Page{ID: page.ID}, nil
}

func (s *fakeStore) UpdateProperties(_ context.Context, pageID string, properties notion.Properties) (*notion.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateErrs[pageID]; err != nil {
		return nil, err
	}
	page, ok := s.pages[pageID]
	if !ok {
		return nil, &notion.APIError{Status: 404, Code: "object_not_found", Message: "page not found"}
	}
	s.updates = append(s.updates, propertyUpdate{PageID: pageID, Properties: properties})
	if page.Properties == nil {
		page.Properties = notion.Properties{}
	}
	for k, v := range properties {
		page.Properties[k] = v
	}
	return &notion.Page{ID: pageID}, nil
}

func (s *fakeStore) GetPage(_ context.Context, pageID string) (*notion.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getPages++
	if err := s.getPageErrs[pageID]; err != nil {
		return nil, err
	}
	page, ok := s.pages[pageID]
	if !ok {
		return nil, &notion.APIError{Status: 404, Code: "object_not_found", Message: "page not found"}
	}
	p := copyPage(page)
	return &p, nil
}

func (s *fakeStore) ListChildren(_ context.Context, blockID string) ([]notion.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listChildren++
	blocks, ok := s.children[blockID]
	if !ok {
		return nil, &notion.APIError{Status: 404, Code: "object_not_found", Message: "block not found"}
	}
	return blocks, nil
}

func (s *fakeStore) CreatePageWithChildren(_ context.Context, parentID, title string, children []notion.Block) (*notion.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createNoID {
		return &notion.Page{}, nil
	}
	s.nextID++
	id := fmt.Sprintf("note-%d", s.nextID)
	s.pages[id] = &notion.Page{ID: id, Properties: notion.Properties{"title": notion.Title(title)}}
	s.created = append(s.created, createdPage{ID: id, ParentID: parentID, Title: title, Children: children})
	return &notion.Page{ID: id}, nil
}

func copyPage(page *notion.Page) notion.Page {
	p := *page
	p.Properties = notion.Properties{}
	for k, v := range page.Properties {
		p.Properties[k] = v
	}
	return p
}

var errBoom = errors.New("boom")

const (
	testDatabaseID = "meetings-db"
	testTemplateID = "template"
	testParentID   = "notes-parent"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	env := map[string]string{
		config.EnvNotionToken:          "token",
		config.EnvMeetingsDatabaseID:   testDatabaseID,
		config.EnvMeetingTemplatePage:  testTemplateID,
		config.EnvMeetingNotesParentID: testParentID,
		config.EnvTimezone:             "UTC",
	}
	cfg, err := config.FromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func quietLogger() logging.Logger {
	return logging.Discard()
}

func testOptions() []Option {
	ids := 0
	return []Option{
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC) }),
		WithRunIDs(func() string {
			ids++
			return fmt.Sprintf("run-%d", ids)
		}),
	}
}

// meetingRow builds a stored meeting row. An empty noteID leaves the relation empty.
func meetingRow(id, title, date, status string, notesGenerated bool, noteID string) notion.Page {
	props := notion.Properties{
		PropName:           notion.Title(title),
		PropDate:           notion.Date(date, ""),
		PropNotesGenerated: notion.Checkbox(notesGenerated),
	}
	if status != "" {
		props[PropStatus] = notion.Select(status)
	}
	if noteID != "" {
		props[PropMeetingNotePage] = notion.Relation(noteID)
	}
	return notion.Page{Object: "page", ID: id, Properties: props}
}
