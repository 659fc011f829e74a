package launcher

import (
	"fmt"
	"io"
	"strings"

	"github.com/teemow/meetsync/internal/meetings"
)

// ModeFromQuery picks "today" when the query mentions it, else "week".
func ModeFromQuery(query string) string {
	if strings.Contains(strings.ToLower(query), meetings.ModeToday) {
		return meetings.ModeToday
	}
	return meetings.ModeWeek
}

// NotesSyncItem offers a reconciliation run for the mode in query.
func NotesSyncItem(query string) Item {
	mode := ModeFromQuery(query)
	return Action(fmt.Sprintf("🔄 Sync Meeting Notes (%s)", mode),
		"Press Enter to sync meeting notes from calendar", mode)
}

// IngestItem offers a calendar ingestion run for the mode in query.
func IngestItem(query string) Item {
	mode := ModeFromQuery(query)
	return Action(fmt.Sprintf("📅 Sync Calendar to Meetings Database (%s)", mode),
		"Press Enter to copy calendar events into the meetings database", mode)
}

// WriteStats prints the outcome of a reconciliation run.
func WriteStats(w io.Writer, stats *meetings.Stats) {
	fmt.Fprintln(w, "✅ Meeting sync completed!")
	fmt.Fprintf(w, "   Meetings found: %d\n", stats.MeetingsFound)
	fmt.Fprintf(w, "   Meeting notes created: %d\n", stats.NotesCreated)
	fmt.Fprintf(w, "   Cancelled meetings updated: %d\n", stats.CancelledUpdated)
	fmt.Fprintf(w, "   Skipped: %d\n", stats.Skipped)
	writeList(w, "Errors", "•", stats.Errors)
}

// WriteIngestStats prints the outcome of a calendar ingestion run.
func WriteIngestStats(w io.Writer, stats *meetings.IngestStats) {
	fmt.Fprintln(w, "✅ Calendar sync completed!")
	fmt.Fprintf(w, "   Events found: %d\n", stats.Found)
	fmt.Fprintf(w, "   Meetings created: %d\n", stats.Created)
	fmt.Fprintf(w, "   Meetings updated: %d\n", stats.Updated)
	if stats.Dropped > 0 {
		fmt.Fprintf(w, "   Events dropped: %d\n", stats.Dropped)
	}
	fmt.Fprintf(w, "   Notes pending: %d\n", stats.PendingNotes)
	fmt.Fprintf(w, "   Cancellations pending: %d\n", stats.PendingCancellations)
	writeList(w, "Warnings", "⚠", stats.Warnings)
	writeList(w, "Errors", "•", stats.Errors)
}

func writeList(w io.Writer, label, bullet string, entries []string) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(w, "   %s: %d\n", label, len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "   %s %s\n", bullet, e)
	}
}
