// Package logging holds the slog setup shared by meetsync commands and
// flows.
//
// Records go to stderr as text; stdout is reserved for launcher output and
// the MCP stdio transport. Components take a Logger and tag records with the
// attribute helpers so keys stay uniform:
//
//	logger := logging.NewSlogAdapter(nil).With(logging.RunID(stats.RunID))
//	logger.Info("note created", logging.Meeting(title), logging.Page(pageID))
package logging
