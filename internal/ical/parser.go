package ical

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/teemow/meetsync/internal/meetings"
)

const (
	dateLayout         = "2006-01-02"
	instanceTimeUTC    = "20060102T150405Z"
	instanceDateLayout = "20060102"
)

// Window is the half-open interval of time events must overlap
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) overlaps(start, end time.Time) bool {
	if end.IsZero() || !end.After(start) {
		return !start.Before(w.Start) && start.Before(w.End)
	}
	return start.Before(w.End) && end.After(w.Start)
}

// span is one concrete occurrence before it becomes a RawEvent
type span struct {
	start  time.Time
	end    time.Time
	allDay bool
}

// Parse decodes every calendar in r and returns the occurrences overlapping
// w, ordered by start. Recurring events are expanded; an occurrence replaced
// by a RECURRENCE-ID override is taken from the override instead.
func Parse(r io.Reader, w Window, loc *time.Location) ([]meetings.RawEvent, []string, error) {
	if loc == nil {
		loc = time.Local
	}

	var components []*goical.Component
	dec := goical.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode calendar: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name == goical.CompEvent {
				components = append(components, comp)
			}
		}
	}

	// Overrides replace single occurrences of a series
	overridden := make(map[string]bool)
	for _, comp := range components {
		rid := comp.Props.Get(goical.PropRecurrenceID)
		if rid == nil {
			continue
		}
		t, err := rid.DateTime(loc)
		if err != nil {
			continue
		}
		overridden[overrideKey(uidOf(comp), t)] = true
	}

	type occurrence struct {
		start time.Time
		event meetings.RawEvent
	}
	var found []occurrence
	var warnings []string

	for _, comp := range components {
		uid := uidOf(comp)

		base, err := spanOf(comp, loc)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to process event %s: %v", orUnknown(uid), err))
			continue
		}
		if uid == "" && !base.start.IsZero() {
			// Feeds without UIDs still need a stable identity across runs
			uid = base.start.UTC().Format(instanceTimeUTC) + "-" + text(comp, goical.PropSummary)
		}

		if comp.Props.Get(goical.PropRecurrenceID) != nil {
			if base.start.IsZero() || !w.overlaps(base.start, base.end) {
				continue
			}
			rid, _ := comp.Props.Get(goical.PropRecurrenceID).DateTime(loc)
			found = append(found, occurrence{base.start, toRawEvent(comp, instanceID(uid, rid, base.allDay), base)})
			continue
		}

		var set *rrule.Set
		if !base.start.IsZero() {
			set, err = comp.RecurrenceSet(loc)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Failed to process event %s: %v", orUnknown(uid), err))
				continue
			}
		}

		if set == nil {
			// Events without a start are passed on so the normalizer drops them
			if base.start.IsZero() || w.overlaps(base.start, base.end) {
				found = append(found, occurrence{base.start, toRawEvent(comp, uid, base)})
			}
			continue
		}

		length := base.end.Sub(base.start)
		if length < 0 {
			length = 0
		}
		for _, start := range set.Between(w.Start.Add(-length), w.End, true) {
			if overridden[overrideKey(uid, start)] {
				continue
			}
			occ := span{start: start, allDay: base.allDay}
			if !base.end.IsZero() {
				occ.end = start.Add(length)
			}
			if !w.overlaps(occ.start, occ.end) {
				continue
			}
			found = append(found, occurrence{start, toRawEvent(comp, instanceID(uid, start, base.allDay), occ)})
		}
	}

	slices.SortStableFunc(found, func(a, b occurrence) int {
		return a.start.Compare(b.start)
	})

	events := make([]meetings.RawEvent, 0, len(found))
	for _, o := range found {
		events = append(events, o.event)
	}
	return events, warnings, nil
}

func spanOf(comp *goical.Component, loc *time.Location) (span, error) {
	var s span

	start := comp.Props.Get(goical.PropDateTimeStart)
	if start == nil {
		return s, nil
	}
	t, err := start.DateTime(loc)
	if err != nil {
		return s, fmt.Errorf("invalid DTSTART %q: %w", start.Value, err)
	}
	s.start = t
	s.allDay = isDate(start)

	if end := comp.Props.Get(goical.PropDateTimeEnd); end != nil {
		t, err := end.DateTime(loc)
		if err != nil {
			return s, fmt.Errorf("invalid DTEND %q: %w", end.Value, err)
		}
		s.end = t
	}
	return s, nil
}

func isDate(prop *goical.Prop) bool {
	return prop.ValueType() == goical.ValueDate || len(strings.TrimSpace(prop.Value)) == len(instanceDateLayout)
}

func toRawEvent(comp *goical.Component, id string, s span) meetings.RawEvent {
	ev := meetings.RawEvent{
		ID:          id,
		Summary:     text(comp, goical.PropSummary),
		Status:      strings.ToLower(text(comp, goical.PropStatus)),
		Description: text(comp, goical.PropDescription),
		Location:    text(comp, goical.PropLocation),
		Attendees:   attendees(comp),
	}

	if s.start.IsZero() {
		return ev
	}
	if s.allDay {
		ev.Start = meetings.EventTime{Date: s.start.Format(dateLayout)}
		if !s.end.IsZero() {
			ev.End = meetings.EventTime{Date: s.end.Format(dateLayout)}
		}
		return ev
	}

	start := s.start
	ev.Start = meetings.EventTime{DateTime: &start}
	if !s.end.IsZero() {
		end := s.end
		ev.End = meetings.EventTime{DateTime: &end}
	}
	return ev
}

// partStat maps iCalendar PARTSTAT values to calendar response statuses
var partStat = map[string]string{
	"ACCEPTED":     "accepted",
	"DECLINED":     "declined",
	"TENTATIVE":    "tentative",
	"NEEDS-ACTION": "needsAction",
}

func attendees(comp *goical.Component) []meetings.Attendee {
	var out []meetings.Attendee
	for _, prop := range comp.Props.Values(goical.PropAttendee) {
		email := prop.Value
		if i := strings.Index(strings.ToLower(email), "mailto:"); i >= 0 {
			email = email[i+len("mailto:"):]
		}
		a := meetings.Attendee{
			Email:          email,
			Name:           prop.Params.Get(goical.ParamCommonName),
			ResponseStatus: partStat[strings.ToUpper(prop.Params.Get(goical.ParamParticipationStatus))],
		}
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

func text(comp *goical.Component, name string) string {
	v, err := comp.Props.Text(name)
	if err != nil {
		if p := comp.Props.Get(name); p != nil {
			return p.Value
		}
		return ""
	}
	return v
}

func uidOf(comp *goical.Component) string {
	return text(comp, goical.PropUID)
}

func overrideKey(uid string, t time.Time) string {
	return uid + "|" + t.UTC().Format(time.RFC3339)
}

func instanceID(uid string, start time.Time, allDay bool) string {
	if uid == "" {
		return ""
	}
	if allDay {
		return uid + "_" + start.Format(instanceDateLayout)
	}
	return uid + "_" + start.UTC().Format(instanceTimeUTC)
}

func orUnknown(id string) string {
	if id == "" {
		return "unknown"
	}
	return id
}
