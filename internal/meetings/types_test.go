package meetings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsync/internal/notion"
)

func TestRanges(t *testing.T) {
	now := time.Date(2025, 1, 6, 17, 45, 0, 0, time.UTC)

	today := Today(now)
	assert.Equal(t, ModeToday, today.Mode)
	assert.Equal(t, "2025-01-06", today.StartDate())
	assert.Equal(t, "2025-01-06", today.EndDate())

	week := Week(now)
	assert.Equal(t, ModeWeek, week.Mode)
	assert.Equal(t, "2025-01-06", week.StartDate())
	assert.Equal(t, "2025-01-12", week.EndDate())
}

func TestRangeForMode(t *testing.T) {
	now := time.Date(2025, 1, 6, 17, 45, 0, 0, time.UTC)

	r, err := RangeForMode("today", now)
	require.NoError(t, err)
	assert.Equal(t, ModeToday, r.Mode)

	r, err = RangeForMode("", now)
	require.NoError(t, err)
	assert.Equal(t, ModeWeek, r.Mode)

	_, err = RangeForMode("month", now)
	assert.Error(t, err)
}

func TestRecordFromPage(t *testing.T) {
	rec, err := RecordFromPage(meetingRow("row-1", "Standup", "2025-01-06", StatusCancelled, true, "note-1"))
	require.NoError(t, err)

	assert.Equal(t, Record{
		PageID:         "row-1",
		Title:          "Standup",
		Date:           "2025-01-06",
		Status:         StatusCancelled,
		NotesGenerated: true,
		NotePageID:     "note-1",
	}, rec)
}

func TestRecordFromPage_Defaults(t *testing.T) {
	rec, err := RecordFromPage(notion.Page{ID: "row-1", Properties: notion.Properties{
		PropName: {Type: "title", Title: []notion.RichTextItem{}},
		PropDate: notion.Date("2025-01-06", ""),
	}})
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, rec.Title)
	assert.Equal(t, StatusScheduled, rec.Status)
	assert.False(t, rec.NotesGenerated)
	assert.Empty(t, rec.NotePageID)
}

func TestRecordFromPage_Errors(t *testing.T) {
	_, err := RecordFromPage(notion.Page{ID: "row-1", Properties: notion.Properties{}})
	assert.ErrorIs(t, err, ErrMissingTitle)

	rec, err := RecordFromPage(notion.Page{ID: "row-1", Properties: notion.Properties{PropName: notion.Title("Standup")}})
	assert.ErrorIs(t, err, ErrMissingDate)
	assert.Equal(t, "Standup", rec.Title)
}

func TestRecordFromPage_ErrorKeepsFlags(t *testing.T) {
	row := meetingRow("row-1", "Standup", "2025-01-06", StatusCancelled, true, "note-1")
	delete(row.Properties, PropName)

	rec, err := RecordFromPage(row)
	require.ErrorIs(t, err, ErrMissingTitle)
	assert.True(t, rec.NotesGenerated)
	assert.Equal(t, "note-1", rec.NotePageID)
	assert.Equal(t, StatusCancelled, rec.Status)
}
