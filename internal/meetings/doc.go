// Package meetings keeps a meetings database in sync with a calendar and
// generates meeting notes from a template.
//
// Two flows share one decision table (Decide):
//
//   - The Ingestor reads calendar events from a Source, normalizes them into
//     Candidates and creates or updates one database row per event, keyed by
//     the event id stored in the "Google Event ID" property.
//   - The Reconciler queries the rows dated within a Range and, per row,
//     clones the note template for scheduled meetings without notes, or
//     renames the linked note of cancelled meetings.
//
// Both flows are sequential. A failing row or event is recorded in the run's
// stats and processing continues; only missing configuration or a failed
// initial query or fetch fails a run.
package meetings
