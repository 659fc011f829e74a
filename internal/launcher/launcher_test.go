package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/meetings"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Action(`✅ Create task: say "hi" & <go>`, "Press Enter", `say "hi"`)))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Equal(t,
		`{"items":[{"title":"✅ Create task: say \"hi\" & <go>","subtitle":"Press Enter","arg":"say \"hi\"","valid":true}]}`+"\n",
		out)
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf))
	assert.Equal(t, `{"items":[]}`+"\n", buf.String())
}

func TestWrite_HintOmitsArg(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Hint("Add task to Notion", "Type your task and press Enter")))
	assert.Equal(t, `{"items":[{"title":"Add task to Notion","subtitle":"Type your task and press Enter","valid":false}]}`+"\n", buf.String())
}

func TestConfigNeeded(t *testing.T) {
	err := fmt.Errorf("task: %w", &config.MissingError{Keys: []string{"TASK_DATABASE_ID"}})

	item, ok := ConfigNeeded(err)
	require.True(t, ok)
	assert.Equal(t, "Configuration needed", item.Title)
	assert.Equal(t, "Set TASK_DATABASE_ID in workflow settings", item.Subtitle)
	assert.False(t, item.Valid)

	_, ok = ConfigNeeded(errors.New("boom"))
	assert.False(t, ok)
}

func TestErrorItem(t *testing.T) {
	item := ErrorItem(errors.New("boom"))
	assert.Equal(t, "❌ Error", item.Title)
	assert.Equal(t, "boom", item.Subtitle)

	item = ErrorItem(&config.MissingError{Keys: []string{"A", "B"}})
	assert.Equal(t, "Set A or B in workflow settings", item.Subtitle)
}

func TestStatusLines(t *testing.T) {
	var buf bytes.Buffer
	Succeed(&buf, "Task '%s' created successfully", "Buy milk")
	Fail(&buf, errors.New("unauthorized"))
	Failf(&buf, "No content to dump")

	assert.Equal(t, "✅ Task 'Buy milk' created successfully\n❌ Error: unauthorized\n❌ No content to dump\n", buf.String())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "line one line two", Preview("line one\nline two", 100))
	assert.Equal(t, "ääääa...", Preview("ääääabc", 5))
}

func TestModeFromQuery(t *testing.T) {
	assert.Equal(t, "today", ModeFromQuery("sync Today"))
	assert.Equal(t, "week", ModeFromQuery(""))
	assert.Equal(t, "week", ModeFromQuery("anything"))

	item := NotesSyncItem("today")
	assert.Equal(t, "🔄 Sync Meeting Notes (today)", item.Title)
	assert.Equal(t, "today", item.Arg)
	assert.True(t, item.Valid)

	item = IngestItem("")
	assert.Equal(t, "week", item.Arg)
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	WriteStats(&buf, &meetings.Stats{
		MeetingsFound:    3,
		NotesCreated:     1,
		CancelledUpdated: 1,
		Skipped:          1,
		Errors:           []string{"Meeting 'X': No date found"},
	})

	assert.Equal(t, strings.Join([]string{
		"✅ Meeting sync completed!",
		"   Meetings found: 3",
		"   Meeting notes created: 1",
		"   Cancelled meetings updated: 1",
		"   Skipped: 1",
		"   Errors: 1",
		"   • Meeting 'X': No date found",
		"",
	}, "\n"), buf.String())
}

func TestWriteStats_NoErrors(t *testing.T) {
	var buf bytes.Buffer
	WriteStats(&buf, &meetings.Stats{})
	assert.NotContains(t, buf.String(), "Errors")
}

func TestWriteIngestStats(t *testing.T) {
	var buf bytes.Buffer
	WriteIngestStats(&buf, &meetings.IngestStats{
		Found:                4,
		Created:              2,
		Updated:              1,
		Dropped:              1,
		PendingNotes:         2,
		PendingCancellations: 0,
		Warnings:             []string{"Failed to process event x: bad time"},
	})

	out := buf.String()
	assert.Contains(t, out, "✅ Calendar sync completed!\n")
	assert.Contains(t, out, "   Events found: 4\n")
	assert.Contains(t, out, "   Meetings created: 2\n")
	assert.Contains(t, out, "   Meetings updated: 1\n")
	assert.Contains(t, out, "   Events dropped: 1\n")
	assert.Contains(t, out, "   Notes pending: 2\n")
	assert.Contains(t, out, "   Warnings: 1\n   ⚠ Failed to process event x: bad time\n")
	assert.NotContains(t, out, "Errors")
}
