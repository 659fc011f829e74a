package google

import calendar "google.golang.org/api/calendar/v3"

// CalendarScopes are the OAuth scopes requested by google-auth.
// The calendar is only ever read.
var CalendarScopes = []string{
	calendar.CalendarReadonlyScope,
}
