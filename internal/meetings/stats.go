package meetings

// Stats summarizes one reconciliation run. Errors holds one message per
// failed row in processing order; a run with errors still succeeded.
type Stats struct {
	RunID            string   `json:"run_id"`
	Mode             string   `json:"mode"`
	MeetingsFound    int      `json:"meetings_found"`
	NotesCreated     int      `json:"notes_created"`
	CancelledUpdated int      `json:"cancelled_updated"`
	Skipped          int      `json:"skipped"`
	Errors           []string `json:"errors"`
}

// AddError appends a row failure.
func (s *Stats) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// IngestStats summarizes one calendar ingestion run.
type IngestStats struct {
	RunID   string `json:"run_id"`
	Found   int    `json:"events_found"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Dropped int    `json:"dropped"`

	// PendingNotes and PendingCancellations count rows the next
	// reconciliation will act on.
	PendingNotes         int `json:"pending_notes"`
	PendingCancellations int `json:"pending_cancellations"`

	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors"`
}

// AddError appends a candidate failure.
func (s *IngestStats) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}
