package calendar

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/meetsync/internal/meetings"
)

// toRawEvent converts a Google Calendar event to a meetings.RawEvent
func toRawEvent(event *calendar.Event) (meetings.RawEvent, error) {
	if event == nil {
		return meetings.RawEvent{}, fmt.Errorf("nil event")
	}

	ev := meetings.RawEvent{
		ID:          event.Id,
		Summary:     event.Summary,
		Status:      event.Status,
		Description: event.Description,
		Location:    event.Location,
	}

	var err error
	if ev.Start, err = toEventTime(event.Start); err != nil {
		return meetings.RawEvent{}, fmt.Errorf("invalid start: %w", err)
	}
	if ev.End, err = toEventTime(event.End); err != nil {
		return meetings.RawEvent{}, fmt.Errorf("invalid end: %w", err)
	}

	// Attendees
	for _, att := range event.Attendees {
		if att == nil {
			continue
		}
		a := meetings.Attendee{
			Email:          att.Email,
			Name:           att.DisplayName,
			ResponseStatus: att.ResponseStatus,
		}
		if a.Name == "" {
			a.Name = a.Email
		}
		if a.ResponseStatus == "" {
			a.ResponseStatus = "needsAction"
		}
		ev.Attendees = append(ev.Attendees, a)
	}

	return ev, nil
}

func toEventTime(dt *calendar.EventDateTime) (meetings.EventTime, error) {
	if dt == nil {
		return meetings.EventTime{}, nil
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return meetings.EventTime{}, err
		}
		return meetings.EventTime{DateTime: &t}, nil
	}
	return meetings.EventTime{Date: dt.Date}, nil
}
