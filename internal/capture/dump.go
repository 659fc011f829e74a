package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/logging"
)

// DumpItem describes what pressing Enter will append to the info dump page.
// Typed text wins over the clipboard.
func (s *Service) DumpItem(ctx context.Context, query string) launcher.Item {
	if err := config.Require(s.cfg.InfoDumpPageID); err != nil {
		item, _ := launcher.ConfigNeeded(err)
		return item
	}

	content, source := strings.TrimSpace(query), "typed text"
	if content == "" {
		content, source = s.readClipboard(ctx), "clipboard"
	}
	if strings.TrimSpace(content) == "" {
		return launcher.Hint("No content to dump", "Type something or copy text to clipboard first")
	}

	return launcher.Action(fmt.Sprintf("📝 Dump %s to Notion", source),
		"Preview: "+launcher.Preview(content, previewLength), content)
}

// Dump appends content, or the clipboard when content is blank, to the info
// dump page under a timestamp line. It returns ErrNoContent when both are empty.
func (s *Service) Dump(ctx context.Context, content string) error {
	if err := config.Require(s.cfg.InfoDumpPageID); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		content = s.readClipboard(ctx)
	}
	if strings.TrimSpace(content) == "" {
		return ErrNoContent
	}
	if err := s.requireStore(); err != nil {
		return err
	}

	text := fmt.Sprintf("[%s]\n%s", s.clock().Format(secondLayout), content)
	if _, err := s.store.AppendToPage(ctx, s.cfg.InfoDumpPageID.String(), text); err != nil {
		return fmt.Errorf("failed to dump: %w", err)
	}
	return nil
}

func (s *Service) readClipboard(ctx context.Context) string {
	if s.clipboard == nil {
		return ""
	}
	text, err := s.clipboard(ctx)
	if err != nil {
		s.logger.Warn("Failed to read clipboard", logging.Err(err))
		return ""
	}
	return text
}
