package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/instrumentation"
	"github.com/teemow/meetsync/internal/logging"
	"github.com/teemow/meetsync/internal/notion"
)

// Reconciler generates notes for scheduled meetings and marks the notes of
// cancelled meetings, working on rows already stored in the meetings database.
//
// A run mutates rows one at a time. Two runs over the same range in different
// processes can both create a note for the same row.
type Reconciler struct {
	store  Store
	cloner *TemplateCloner
	cfg    *config.Config
	settings
}

// NewReconciler creates a Reconciler.
func NewReconciler(store Store, cfg *config.Config, opts ...Option) *Reconciler {
	return &Reconciler{
		store:    store,
		cloner:   NewTemplateCloner(store, DefaultTemplateCacheTTL),
		cfg:      cfg,
		settings: newSettings(opts),
	}
}

// Run reconciles every meeting in r whose status is not Completed. Only a
// missing configuration or a failed query fails the run; row failures are
// collected in Stats.Errors.
func (rc *Reconciler) Run(ctx context.Context, r Range) (*Stats, error) {
	if err := rc.cfg.RequireMeetings(); err != nil {
		return nil, err
	}

	stats := &Stats{RunID: rc.newID(), Mode: r.Mode}
	start := rc.now()

	ctx, span := instrumentation.StartRunSpan(ctx, instrumentation.FlowReconcile, stats.RunID)
	defer span.End()

	rc.logger.Debug("Starting meeting reconciliation",
		logging.RunID(stats.RunID),
		logging.Database(rc.cfg.MeetingsDatabaseID.String()),
		"start", r.StartDate(),
		"end", r.EndDate())

	result, err := rc.store.QueryDatabase(ctx, rc.cfg.MeetingsDatabaseID.String(), meetingsFilter(r), []notion.Sort{
		{Property: PropDate, Direction: notion.Ascending},
	})
	if err != nil {
		err = fmt.Errorf("sync failed: %w", err)
		instrumentation.SetSpanError(span, err)
		rc.metrics.RecordRun(ctx, instrumentation.FlowReconcile, instrumentation.StatusError, rc.now().Sub(start))
		rc.logger.Error("Meeting reconciliation failed", logging.RunID(stats.RunID), logging.Err(err))
		return nil, err
	}

	stats.MeetingsFound = len(result.Results)
	for _, page := range result.Results {
		rc.reconcileRow(ctx, page, stats)
	}

	instrumentation.SetSpanSuccess(span)
	rc.metrics.RecordRun(ctx, instrumentation.FlowReconcile, instrumentation.StatusSuccess, rc.now().Sub(start))
	rc.logger.Info("Meeting reconciliation completed",
		logging.RunID(stats.RunID),
		"meetings_found", stats.MeetingsFound,
		"notes_created", stats.NotesCreated,
		"cancelled_updated", stats.CancelledUpdated,
		"skipped", stats.Skipped,
		"errors", len(stats.Errors))

	return stats, nil
}

func (rc *Reconciler) reconcileRow(ctx context.Context, page notion.Page, stats *Stats) {
	rec, err := RecordFromPage(page)
	switch {
	case errors.Is(err, ErrMissingTitle):
		rc.rowFailed(ctx, stats, page.ID, fmt.Sprintf("Meeting %s: No title property found", page.ID), err)
		return
	case errors.Is(err, ErrMissingDate):
		rc.rowFailed(ctx, stats, page.ID, fmt.Sprintf("Meeting '%s': No date found", rec.Title), err)
		return
	case err != nil:
		rc.rowFailed(ctx, stats, page.ID, fmt.Sprintf("Error processing meeting: %v", err), err)
		return
	}

	action, err := NextAction(ctx, rc.store, rec)
	if err != nil {
		rc.rowFailed(ctx, stats, page.ID, fmt.Sprintf("Error processing meeting: %v", err), err)
		return
	}
	switch action {
	case ActionMarkCancelled:
		_, err := rc.store.UpdateProperties(ctx, rec.NotePageID, notion.Properties{
			"title": notion.Title(CancelledTitle(rec.Title)),
		})
		if err != nil {
			rc.rowFailed(ctx, stats, page.ID, fmt.Sprintf("Error processing meeting: %v", err), err)
			return
		}
		stats.CancelledUpdated++

	case ActionCreateNote:
		day, err := noteDate(rec.Date)
		if err != nil {
			rc.rowFailed(ctx, stats, page.ID, fmt.Sprintf("Error processing meeting: %v", err), err)
			return
		}
		noteTitle := fmt.Sprintf("%s - %s", rec.Title, day)

		noteID, err := rc.cloner.Clone(ctx, rc.cfg.MeetingTemplatePage.String(), noteTitle, rc.cfg.MeetingNotesParentID.String())
		if err != nil {
			rc.rowFailed(ctx, stats, page.ID, fmt.Sprintf("Failed to create note for '%s': %v", rec.Title, err), err)
			return
		}

		_, err = rc.store.UpdateProperties(ctx, rec.PageID, notion.Properties{
			PropNotesGenerated:  notion.Checkbox(true),
			PropMeetingNotePage: notion.Relation(noteID),
		})
		if err != nil {
			rc.rowFailed(ctx, stats, page.ID, fmt.Sprintf("Error processing meeting: %v", err), err)
			return
		}
		stats.NotesCreated++

	default:
		stats.Skipped++
	}

	rc.metrics.RecordItem(ctx, instrumentation.FlowReconcile, action.String())
	rc.logger.Debug("Meeting reconciled",
		logging.RunID(stats.RunID),
		logging.Page(page.ID),
		logging.Meeting(rec.Title),
		"action", action.String())
}

func (rc *Reconciler) rowFailed(ctx context.Context, stats *Stats, pageID, msg string, err error) {
	stats.AddError(msg)
	rc.metrics.RecordItemError(ctx, instrumentation.FlowReconcile)
	rc.logger.Warn("Meeting row failed", logging.RunID(stats.RunID), logging.Page(pageID), logging.Err(err))
}

// meetingsFilter selects rows dated within r whose status is not Completed.
func meetingsFilter(r Range) notion.Filter {
	return notion.And(
		notion.DateOnOrAfter(PropDate, r.StartDate()),
		notion.DateOnOrBefore(PropDate, r.EndDate()),
		notion.SelectDoesNotEqual(PropStatus, StatusCompleted),
	)
}

// noteDate formats the date of a stored Date value as YYYY-MM-DD, keeping
// the offset the value was stored with.
func noteDate(value string) (string, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(dateLayout), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", fmt.Errorf("invalid meeting date %q", value)
	}
	return t.Format(dateLayout), nil
}
