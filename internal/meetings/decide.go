package meetings

import (
	"context"
	"fmt"
	"strings"
)

// Action is what a run does with one meeting
type Action int

const (
	// ActionSkip leaves the meeting untouched
	ActionSkip Action = iota

	// ActionCreateNote clones the template into a new note and links it
	ActionCreateNote

	// ActionMarkCancelled renames the linked note with the cancelled suffix
	ActionMarkCancelled
)

// String returns the action name used in logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionCreateNote:
		return "create_note"
	case ActionMarkCancelled:
		return "mark_cancelled"
	default:
		return "skip"
	}
}

// Decide maps the stored state of a meeting to the action a run takes.
//
//	status     notesGenerated  noteExists  titleMarked  action
//	Cancelled  any             yes         no           ActionMarkCancelled
//	Cancelled  any             yes         yes          ActionSkip
//	Cancelled  any             no          -            ActionSkip
//	Scheduled  false           -           -            ActionCreateNote
//	Scheduled  true            -           -            ActionSkip
//	other      -               -           -            ActionSkip
func Decide(status string, notesGenerated, noteExists, titleMarked bool) Action {
	switch status {
	case StatusCancelled:
		if noteExists && !titleMarked {
			return ActionMarkCancelled
		}
		return ActionSkip
	case StatusScheduled:
		if !notesGenerated {
			return ActionCreateNote
		}
		return ActionSkip
	default:
		return ActionSkip
	}
}

// NextAction decides what a reconciliation does with rec. Cancelling renames
// only the linked note, so a cancelled row whose own title is unmarked is
// checked against the note's title, read from store.
func NextAction(ctx context.Context, store Store, rec Record) (Action, error) {
	marked := IsMarkedCancelled(rec.Title)
	if rec.Status == StatusCancelled && rec.NotePageID != "" && !marked {
		note, err := store.GetPage(ctx, rec.NotePageID)
		if err != nil {
			return ActionSkip, fmt.Errorf("failed to read meeting note %s: %w", rec.NotePageID, err)
		}
		marked = IsMarkedCancelled(note.Title())
	}
	return Decide(rec.Status, rec.NotesGenerated, rec.NotePageID != "", marked), nil
}

// IsMarkedCancelled reports whether title already carries the cancelled suffix.
func IsMarkedCancelled(title string) bool {
	return strings.HasSuffix(strings.TrimSpace(title), CancelledSuffix)
}

// CancelledTitle returns title with the cancelled suffix.
func CancelledTitle(title string) string {
	return title + " " + CancelledSuffix
}
