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

// ErrNoSource is returned by SyncRange when no calendar source is configured
var ErrNoSource = errors.New("no calendar source configured")

// Ingestor mirrors calendar events into the meetings database. Rows are
// identified by the Google Event ID property, never by their page id.
type Ingestor struct {
	store  Store
	source Source
	cfg    *config.Config
	settings
}

// NewIngestor creates an Ingestor. source may be nil when only
// SyncCalendarEventsToDatabase is used.
func NewIngestor(store Store, source Source, cfg *config.Config, opts ...Option) *Ingestor {
	return &Ingestor{
		store:    store,
		source:   source,
		cfg:      cfg,
		settings: newSettings(opts),
	}
}

// FindMeetingByGoogleID returns the first row whose Google Event ID equals
// externalID, or nil when there is none.
func (in *Ingestor) FindMeetingByGoogleID(ctx context.Context, externalID string) (*notion.Page, error) {
	if err := in.cfg.RequireIngest(); err != nil {
		return nil, err
	}

	result, err := in.store.QueryDatabase(ctx, in.cfg.MeetingsDatabaseID.String(), notion.RichTextEquals(PropGoogleEventID, externalID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to look up meeting %s: %w", externalID, err)
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}

// SyncCalendarEventsToDatabase updates the row of every candidate that
// already has one and creates rows for the rest. Candidate failures are
// collected in IngestStats.Errors.
func (in *Ingestor) SyncCalendarEventsToDatabase(ctx context.Context, candidates []Candidate) (*IngestStats, error) {
	if err := in.cfg.RequireIngest(); err != nil {
		return nil, err
	}

	stats := &IngestStats{RunID: in.newID(), Found: len(candidates)}
	start := in.now()

	ctx, span := instrumentation.StartRunSpan(ctx, instrumentation.FlowIngest, stats.RunID)
	defer span.End()

	for _, c := range candidates {
		in.ingest(ctx, c, stats)
	}

	instrumentation.SetSpanSuccess(span)
	in.metrics.RecordRun(ctx, instrumentation.FlowIngest, instrumentation.StatusSuccess, in.now().Sub(start))
	in.logger.Info("Calendar ingestion completed",
		logging.RunID(stats.RunID),
		"created", stats.Created,
		"updated", stats.Updated,
		"errors", len(stats.Errors))

	return stats, nil
}

// SyncRange reads the events of r from the source, normalizes them and
// syncs them into the database.
func (in *Ingestor) SyncRange(ctx context.Context, r Range) (*IngestStats, error) {
	if in.source == nil {
		return nil, ErrNoSource
	}
	if err := in.cfg.RequireIngest(); err != nil {
		return nil, err
	}

	events, err := in.source.EventsForRange(ctx, r.Start, endOfDay(r.End))
	if err != nil {
		in.metrics.RecordRun(ctx, instrumentation.FlowIngest, instrumentation.StatusError, 0)
		return nil, fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	batch := NormalizeAll(events, in.cfg.Location)
	for _, w := range batch.Warnings {
		in.logger.Warn("Skipping calendar event", "warning", w)
	}

	stats, err := in.SyncCalendarEventsToDatabase(ctx, batch.Candidates)
	if err != nil {
		return nil, err
	}
	stats.Found = len(events)
	stats.Dropped = batch.Dropped
	stats.Warnings = batch.Warnings
	return stats, nil
}

func (in *Ingestor) ingest(ctx context.Context, c Candidate, stats *IngestStats) {
	if c.ExternalID == "" {
		in.candidateFailed(ctx, stats, c, errors.New("event has no id"))
		return
	}

	existing, err := in.FindMeetingByGoogleID(ctx, c.ExternalID)
	if err != nil {
		in.candidateFailed(ctx, stats, c, err)
		return
	}

	props := CandidateProperties(c)
	var action Action
	if existing != nil {
		if _, err := in.store.UpdateProperties(ctx, existing.ID, props); err != nil {
			in.candidateFailed(ctx, stats, c, err)
			return
		}
		stats.Updated++
		in.metrics.RecordItem(ctx, instrumentation.FlowIngest, "updated")

		// The stored note flags decide what the next reconciliation does with
		// the new status. A row that lacked its title or date was repaired by
		// the update above, so only the flags are taken from it.
		rec, err := RecordFromPage(*existing)
		if err != nil {
			in.logger.Debug("Meeting row was incomplete before update",
				logging.RunID(stats.RunID), logging.Page(existing.ID), logging.Err(err))
		}
		rec.Title, rec.Status = c.Title, c.Status

		action, err = NextAction(ctx, in.store, rec)
		if err != nil {
			in.logger.Warn("Could not predict next reconciliation",
				logging.RunID(stats.RunID), logging.EventID(c.ExternalID), logging.Err(err))
		}
	} else {
		if _, err := in.store.CreateDatabaseRow(ctx, in.cfg.MeetingsDatabaseID.String(), props, nil); err != nil {
			in.candidateFailed(ctx, stats, c, err)
			return
		}
		stats.Created++
		in.metrics.RecordItem(ctx, instrumentation.FlowIngest, "created")
		action = Decide(c.Status, false, false, false)
	}

	switch action {
	case ActionCreateNote:
		stats.PendingNotes++
	case ActionMarkCancelled:
		stats.PendingCancellations++
	}

	in.logger.Debug("Meeting ingested",
		logging.RunID(stats.RunID),
		logging.EventID(c.ExternalID),
		logging.Meeting(c.Title),
		"next_action", action.String())
}

func (in *Ingestor) candidateFailed(ctx context.Context, stats *IngestStats, c Candidate, err error) {
	stats.AddError(fmt.Sprintf("Failed to sync '%s': %v", c.Title, err))
	in.metrics.RecordItemError(ctx, instrumentation.FlowIngest)
	in.logger.Warn("Calendar event failed", logging.RunID(stats.RunID), logging.EventID(c.ExternalID), logging.Err(err))
}

// CandidateProperties returns the full property set written for a candidate.
// Notes Generated and Meeting Note Page are never written here.
func CandidateProperties(c Candidate) notion.Properties {
	date := notion.Date(c.Start.Format(dateLayout), "")
	if !c.AllDay {
		date = notion.Date(c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339))
	}
	return notion.Properties{
		PropName:          notion.Title(c.Title),
		PropDate:          date,
		PropStatus:        notion.Select(c.Status),
		PropGoogleEventID: notion.RichText(c.ExternalID),
		PropDescription:   notion.RichText(c.Description),
		PropLocation:      notion.RichText(c.Location),
	}
}
