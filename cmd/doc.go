// Package cmd implements the command-line interface for meetsync.
//
// This package provides the following commands:
//   - notes: Create meeting notes for upcoming meetings and mark cancelled ones
//   - ingest: Copy calendar events into the meetings database
//   - task, journal, dump, meeting, open: Quick capture into Notion
//   - google-auth: Authorize Google Calendar access once
//   - watch: Run ingest and notes on a cron schedule
//   - serve: Start the MCP server on stdio
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// Launcher-facing commands print one line of launcher JSON without their
// action flag and ✅/❌ status lines with it. Reported failures keep the exit
// code at 0; logs go to stderr.
package cmd
