// Package ical reads meetings from an iCalendar (RFC 5545) feed.
//
// The feed is fetched over HTTP or read from a local file, decoded with
// go-ical, and recurring events are expanded with rrule-go into single
// occurrences within the requested day range. Occurrence identifiers are
// the event UID followed by the occurrence start, so they stay stable
// across runs. Client implements meetings.Source and can stand in for the
// Google Calendar source when CALENDAR_ICS_URL is set.
package ical
