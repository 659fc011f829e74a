package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/notion"
)

// meetingNoteBody is the outline of an ad-hoc meeting note
const meetingNoteBody = `# Attendees
- 

# Agenda
- 

# Notes


# Action Items
- [ ] 

# Next Steps
- 

---
Created: %s`

// MeetingTitle returns the title of an ad-hoc meeting note.
func (s *Service) MeetingTitle(topic string) string {
	ts := s.clock().Format(minuteLayout)
	if topic = strings.TrimSpace(topic); topic != "" {
		return fmt.Sprintf("Meeting: %s - %s", topic, ts)
	}
	return fmt.Sprintf("Meeting - %s", ts)
}

// MeetingItem describes the meeting note that pressing Enter will create.
func (s *Service) MeetingItem(query string) launcher.Item {
	if err := config.Require(s.cfg.MeetingNotesParentID); err != nil {
		item, _ := launcher.ConfigNeeded(err)
		return item
	}
	subtitle := "Create timestamped meeting note"
	if q := strings.TrimSpace(query); q != "" {
		subtitle = "Create meeting note: " + q
	}
	return launcher.Action("📝 "+subtitle, "Press Enter to create in Notion", s.MeetingTitle(query))
}

// CreateMeetingNote creates a note page with the meeting outline under the
// meeting notes parent. An empty title gets a timestamped one.
func (s *Service) CreateMeetingNote(ctx context.Context, title string) (*notion.Page, error) {
	if err := config.Require(s.cfg.MeetingNotesParentID); err != nil {
		return nil, err
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = s.MeetingTitle("")
	}

	body := fmt.Sprintf(meetingNoteBody, s.clock().Format(secondLayout))
	page, err := s.store.CreatePage(ctx, s.cfg.MeetingNotesParentID.String(), title, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting note: %w", err)
	}
	return page, nil
}
