package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/logging"
)

// JournalResult tells whether an entry started a new journal page
type JournalResult struct {
	Date    string
	PageID  string
	Created bool
}

// JournalTitle returns the title of the journal page for date (YYYY-MM-DD).
func JournalTitle(date string) string {
	return fmt.Sprintf(journalTitleFmt, date)
}

// JournalItem describes the entry that pressing Enter will add.
func (s *Service) JournalItem(query string) launcher.Item {
	if err := config.Require(s.cfg.DailyJournalParentID); err != nil {
		item, _ := launcher.ConfigNeeded(err)
		return item
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return launcher.Hint("Add to daily journal", "Type your journal entry and press Enter")
	}
	today := s.clock().Format(dateLayout)
	preview := []rune(query)
	if len(preview) > journalPreview {
		preview = preview[:journalPreview]
	}
	return launcher.Action(fmt.Sprintf("📔 Add to journal (%s)", today),
		fmt.Sprintf("Entry: %s...", string(preview)), query)
}

// AddJournalEntry appends a timestamped entry to today's journal page,
// creating the page under the journal parent when none exists yet.
func (s *Service) AddJournalEntry(ctx context.Context, entry string) (*JournalResult, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, fmt.Errorf("journal entry cannot be empty")
	}
	if err := config.Require(s.cfg.DailyJournalParentID); err != nil {
		return nil, err
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	now := s.clock()
	today := now.Format(dateLayout)
	title := JournalTitle(today)
	line := fmt.Sprintf("**%s** - %s", now.Format(clockLayout), entry)

	found, err := s.store.Search(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to search for today's journal: %w", err)
	}
	for _, page := range found.Results {
		if page.Title() != title {
			continue
		}
		if _, err := s.store.AppendToPage(ctx, page.ID, line); err != nil {
			return nil, fmt.Errorf("failed to append to journal: %w", err)
		}
		s.logger.Debug("Appended journal entry", logging.Page(page.ID))
		return &JournalResult{Date: today, PageID: page.ID}, nil
	}

	content := fmt.Sprintf("# Daily Journal - %s\n\n%s", today, line)
	page, err := s.store.CreatePage(ctx, s.cfg.DailyJournalParentID.String(), title, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}
	s.logger.Debug("Created journal page", logging.Page(page.ID))
	return &JournalResult{Date: today, PageID: page.ID, Created: true}, nil
}
