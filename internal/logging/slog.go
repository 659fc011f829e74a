package logging

import (
	"io"
	"log/slog"
	"time"
)

// Attribute keys shared by all meetsync log records.
const (
	KeyService  = "service"
	KeyRunID    = "run_id"
	KeyDatabase = "database_id"
	KeyPage     = "page_id"
	KeyMeeting  = "meeting"
	KeyEventID  = "event_id"
	KeyDuration = "duration"
	KeyStatus   = "status"
	KeyError    = "error"
	KeyTool     = "tool"
	KeyJob      = "job"
)

// NewLogger returns a text logger on w. Without debug only warnings and
// errors pass, so launcher output on stdout stays clean.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if debug {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func Service(name string) slog.Attr      { return slog.String(KeyService, name) }
func RunID(id string) slog.Attr          { return slog.String(KeyRunID, id) }
func Database(id string) slog.Attr       { return slog.String(KeyDatabase, id) }
func Page(id string) slog.Attr           { return slog.String(KeyPage, id) }
func Meeting(title string) slog.Attr     { return slog.String(KeyMeeting, title) }
func EventID(id string) slog.Attr        { return slog.String(KeyEventID, id) }
func Tool(name string) slog.Attr         { return slog.String(KeyTool, name) }
func Status(status string) slog.Attr     { return slog.String(KeyStatus, status) }
func Job(name string) slog.Attr          { return slog.String(KeyJob, name) }
func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

// Err returns the error attribute. A nil err yields an empty group, which
// handlers drop, so Err(maybeNil) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}
