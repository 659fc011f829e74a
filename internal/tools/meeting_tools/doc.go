// Package meeting_tools provides MCP tools for the meeting sync flows.
//
// Available tools:
//   - meetings_reconcile: Create notes for upcoming meetings and mark cancelled ones
//   - meetings_ingest: Copy calendar events into the meetings database
//   - meetings_find: Look up the database row of a calendar event
package meeting_tools
