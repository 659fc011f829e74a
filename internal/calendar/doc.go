// Package calendar reads meetings from the Google Calendar API.
//
// Client implements meetings.Source. It lists the single occurrences of a
// calendar within a day range (recurring events expanded by the API, at most
// MaxResults per range) and converts them to meetings.RawEvent values.
// Events whose timestamps cannot be parsed are logged and skipped.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClientFromConfig(ctx, cfg, nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// List this week's meetings
//	now := time.Now()
//	events, err := client.EventsForRange(ctx, now, now.AddDate(0, 0, 6))
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
