package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/notion"
)

// TaskItem describes the task that pressing Enter will create.
func (s *Service) TaskItem(query string) launcher.Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return launcher.Hint("Add task to Notion", "Type your task and press Enter")
	}
	if err := config.Require(s.cfg.TaskDatabaseID); err != nil {
		item, _ := launcher.ConfigNeeded(err)
		return item
	}
	return launcher.Action(fmt.Sprintf("✅ Create task: %s", query), "Press Enter to add to your task database", query)
}

// CreateTask adds a row titled title to the task database.
func (s *Service) CreateTask(ctx context.Context, title string) (*notion.Page, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("task title cannot be empty")
	}
	if err := config.Require(s.cfg.TaskDatabaseID); err != nil {
		return nil, err
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	page, err := s.store.CreateDatabaseRow(ctx, s.cfg.TaskDatabaseID.String(),
		notion.Properties{taskTitleProp: notion.Title(title)}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return page, nil
}
