package capture

import (
	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/notion"
)

// HomePageURL returns the URL of the command center page, falling back to
// the info dump page.
func (s *Service) HomePageURL() (string, error) {
	for _, setting := range []config.Setting{s.cfg.CommandCenterPageID, s.cfg.InfoDumpPageID} {
		if id, ok := setting.Value(); ok {
			return notion.PageURL(id), nil
		}
	}
	return "", &config.MissingError{Keys: []string{config.EnvCommandCenterPageID, config.EnvInfoDumpPageID}}
}

// OpenItem offers to open the home page.
func (s *Service) OpenItem() launcher.Item {
	url, err := s.HomePageURL()
	if err != nil {
		item, _ := launcher.ConfigNeeded(err)
		return item
	}
	return launcher.Action("🏠 Open Notion Command Center", "Press Enter to open your main page", url)
}
