package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teemow/meetsync/internal/notion"
)

// Meeting statuses as stored in the meetings database
const (
	StatusScheduled = "Scheduled"
	StatusCancelled = "Cancelled"
	StatusCompleted = "Completed"
)

// Property names of a meeting row
const (
	PropName            = "Name"
	PropTitle           = "Title"
	PropDate            = "Date"
	PropStatus          = "Status"
	PropGoogleEventID   = "Google Event ID"
	PropDescription     = "Description"
	PropLocation        = "Location"
	PropNotesGenerated  = "Notes Generated"
	PropMeetingNotePage = "Meeting Note Page"
)

const (
	// DefaultTitle is used when an event or row has no title
	DefaultTitle = "Untitled Meeting"

	// MaxDescriptionLength is the longest description the store accepts
	MaxDescriptionLength = 2000

	// CancelledSuffix is appended to the title of a note whose meeting was cancelled
	CancelledSuffix = "(Cancelled)"

	dateLayout = "2006-01-02"
)

var (
	// ErrNoStart is returned by Normalize for events without start information.
	// Such events are dropped without a warning.
	ErrNoStart = errors.New("event has no start")

	// ErrMissingTitle is recorded for rows with neither a Name nor a Title property
	ErrMissingTitle = errors.New("no title property found")

	// ErrMissingDate is recorded for rows without a Date value
	ErrMissingDate = errors.New("no date found")
)

// Source yields calendar events for a date range, ordered by start time,
// with recurring events expanded into single occurrences.
type Source interface {
	EventsForRange(ctx context.Context, start, end time.Time) ([]RawEvent, error)
}

// Store is the subset of the document store the meetings flows use.
// *notion.Client satisfies it.
type Store interface {
	QueryDatabase(ctx context.Context, databaseID string, filter notion.Filter, sorts []notion.Sort) (*notion.QueryResult, error)
	CreateDatabaseRow(ctx context.Context, databaseID string, properties notion.Properties, children []notion.Block) (*notion.Page, error)
	UpdateProperties(ctx context.Context, pageID string, properties notion.Properties) (*notion.Page, error)
	GetPage(ctx context.Context, pageID string) (*notion.Page, error)
	ListChildren(ctx context.Context, blockID string) ([]notion.Block, error)
	CreatePageWithChildren(ctx context.Context, parentID, title string, children []notion.Block) (*notion.Page, error)
}

// EventTime is either a timestamp or an all-day date (YYYY-MM-DD)
type EventTime struct {
	DateTime *time.Time
	Date     string
}

// IsZero reports whether neither a timestamp nor a date is set.
func (t EventTime) IsZero() bool {
	return t.DateTime == nil && t.Date == ""
}

// Attendee is one invited participant
type Attendee struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	ResponseStatus string `json:"response_status"`
}

// RawEvent is a calendar event as delivered by a Source
type RawEvent struct {
	ID          string
	Summary     string
	Status      string // confirmed, tentative, cancelled
	Start       EventTime
	End         EventTime
	Description string
	Location    string
	Attendees   []Attendee
}

// Candidate is a normalized calendar event, produced fresh for every run
type Candidate struct {
	ExternalID  string     `json:"external_id"`
	Title       string     `json:"title"`
	Date        time.Time  `json:"date"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	AllDay      bool       `json:"all_day"`
	Status      string     `json:"status"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}

// Record is the view of a meeting row the reconciler works on
type Record struct {
	PageID         string `json:"page_id"`
	Title          string `json:"title"`
	Date           string `json:"date"`
	Status         string `json:"status"`
	NotesGenerated bool   `json:"notes_generated"`
	NotePageID     string `json:"note_page_id,omitempty"`
	ExternalID     string `json:"external_id,omitempty"`
}

// RecordFromPage extracts a Record from a meeting row. It fails with
// ErrMissingTitle or ErrMissingDate when the row lacks those properties; the
// returned Record still carries the note flags and the external ID then.
func RecordFromPage(page notion.Page) (Record, error) {
	rec := Record{
		PageID:         page.ID,
		Status:         page.Properties.SelectName(PropStatus),
		NotesGenerated: page.Properties.Checkbox(PropNotesGenerated),
		NotePageID:     page.Properties.FirstRelationID(PropMeetingNotePage),
		ExternalID:     page.Properties.PlainText(PropGoogleEventID),
	}
	if rec.Status == "" {
		rec.Status = StatusScheduled
	}

	title, ok := page.Properties.PlainTitle(PropName)
	if !ok {
		title, ok = page.Properties.PlainTitle(PropTitle)
	}
	if !ok {
		return rec, fmt.Errorf("meeting %s: %w", page.ID, ErrMissingTitle)
	}
	if title == "" {
		title = DefaultTitle
	}
	rec.Title = title

	rec.Date = page.Properties.DateStart(PropDate)
	if rec.Date == "" {
		return rec, fmt.Errorf("meeting '%s': %w", rec.Title, ErrMissingDate)
	}

	return rec, nil
}

// Range is an inclusive range of calendar days
type Range struct {
	Mode  string
	Start time.Time
	End   time.Time
}

// Sync modes
const (
	ModeToday = "today"
	ModeWeek  = "week"
)

// Today is the range covering the day of now.
func Today(now time.Time) Range {
	day := startOfDay(now)
	return Range{Mode: ModeToday, Start: day, End: day}
}

// Week is the range from the day of now through the following six days.
func Week(now time.Time) Range {
	day := startOfDay(now)
	return Range{Mode: ModeWeek, Start: day, End: day.AddDate(0, 0, 6)}
}

// RangeForMode returns Today for "today" and Week for "week" or "".
func RangeForMode(mode string, now time.Time) (Range, error) {
	switch mode {
	case ModeToday:
		return Today(now), nil
	case ModeWeek, "":
		return Week(now), nil
	}
	return Range{}, fmt.Errorf("unknown sync mode %q, must be %q or %q", mode, ModeToday, ModeWeek)
}

// StartDate returns the first day as YYYY-MM-DD.
func (r Range) StartDate() string {
	return r.Start.Format(dateLayout)
}

// EndDate returns the last day as YYYY-MM-DD.
func (r Range) EndDate() string {
	return r.End.Format(dateLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
