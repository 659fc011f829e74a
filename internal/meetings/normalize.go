package meetings

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MapStatus maps a calendar event status to a meeting status. confirmed,
// tentative and any unrecognized value map to Scheduled.
func MapStatus(eventStatus string) string {
	if strings.EqualFold(strings.TrimSpace(eventStatus), "cancelled") {
		return StatusCancelled
	}
	return StatusScheduled
}

// Normalize maps a raw calendar event to a Candidate. Dates are interpreted
// in loc, which defaults to time.Local. It returns ErrNoStart when the event
// carries no start information.
func Normalize(ev RawEvent, loc *time.Location) (Candidate, error) {
	if loc == nil {
		loc = time.Local
	}
	if ev.Start.IsZero() {
		return Candidate{}, ErrNoStart
	}

	c := Candidate{
		ExternalID:  ev.ID,
		Title:       strings.TrimSpace(ev.Summary),
		Status:      MapStatus(ev.Status),
		Description: truncate(ev.Description, MaxDescriptionLength),
		Location:    ev.Location,
		Attendees:   normalizeAttendees(ev.Attendees),
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}

	if ev.Start.DateTime != nil {
		c.Start = ev.Start.DateTime.In(loc)
	} else {
		day, err := time.ParseInLocation(dateLayout, ev.Start.Date, loc)
		if err != nil {
			return Candidate{}, fmt.Errorf("invalid start date %q: %w", ev.Start.Date, err)
		}
		c.Start = day
		c.AllDay = true
	}
	c.Date = startOfDay(c.Start)

	switch {
	case ev.End.DateTime != nil:
		c.End = ev.End.DateTime.In(loc)
	case ev.End.Date != "":
		day, err := time.ParseInLocation(dateLayout, ev.End.Date, loc)
		if err != nil {
			return Candidate{}, fmt.Errorf("invalid end date %q: %w", ev.End.Date, err)
		}
		c.End = endOfDay(day)
	case c.AllDay:
		c.End = endOfDay(c.Start)
	default:
		c.End = c.Start.Add(time.Hour)
	}

	return c, nil
}

// Batch is the result of normalizing a list of events
type Batch struct {
	Candidates []Candidate

	// Dropped counts events without start information
	Dropped int

	// Warnings holds one message per event that failed to normalize
	Warnings []string
}

// NormalizeAll normalizes every event. A failing event is recorded as a
// warning and never stops the rest of the batch.
func NormalizeAll(events []RawEvent, loc *time.Location) Batch {
	var batch Batch
	for _, ev := range events {
		c, err := Normalize(ev, loc)
		switch {
		case errors.Is(err, ErrNoStart):
			batch.Dropped++
		case err != nil:
			id := ev.ID
			if id == "" {
				id = "unknown"
			}
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("Failed to process event %s: %v", id, err))
		default:
			batch.Candidates = append(batch.Candidates, c)
		}
	}
	return batch
}

func normalizeAttendees(in []Attendee) []Attendee {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attendee, 0, len(in))
	for _, a := range in {
		if a.Name == "" {
			a.Name = a.Email
		}
		if a.ResponseStatus == "" {
			a.ResponseStatus = "needsAction"
		}
		out = append(out, a)
	}
	return out
}

// truncate shortens s to at most limit characters without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
