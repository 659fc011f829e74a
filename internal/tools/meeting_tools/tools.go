package meeting_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/meetings"
	"github.com/teemow/meetsync/internal/server"
	"github.com/teemow/meetsync/internal/tools/common"
)

// Tool names
const (
	ToolReconcile = "meetings_reconcile"
	ToolIngest    = "meetings_ingest"
	ToolFind      = "meetings_find"
)

// RegisterMeetingTools registers the meeting sync tools with the MCP server
func RegisterMeetingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	reconcileTool := mcp.NewTool(ToolReconcile,
		mcp.WithDescription("Create meeting notes for upcoming meetings in the meetings database and mark notes of cancelled meetings"),
		mcp.WithString("mode",
			mcp.Description("Range to reconcile: 'today' or 'week' (today and the next six days, default)"),
			mcp.Enum(meetings.ModeToday, meetings.ModeWeek),
		),
	)
	s.AddTool(reconcileTool, common.InstrumentedToolHandler(ToolReconcile, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleReconcile(ctx, request, sc)
	}))

	ingestTool := mcp.NewTool(ToolIngest,
		mcp.WithDescription("Copy calendar events into the meetings database, creating or updating one row per event"),
		mcp.WithString("mode",
			mcp.Description("Range to ingest: 'today' or 'week' (today and the next six days, default)"),
			mcp.Enum(meetings.ModeToday, meetings.ModeWeek),
		),
	)
	s.AddTool(ingestTool, common.InstrumentedToolHandler(ToolIngest, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleIngest(ctx, request, sc)
	}))

	findTool := mcp.NewTool(ToolFind,
		mcp.WithDescription("Find the meetings database row for a calendar event"),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The calendar event ID"),
		),
	)
	s.AddTool(findTool, common.InstrumentedToolHandler(ToolFind, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleFind(ctx, request, sc)
	}))

	return nil
}

func rangeFromRequest(request mcp.CallToolRequest, sc *server.ServerContext) (meetings.Range, error) {
	now := time.Now()
	if loc := sc.Config().Location; loc != nil {
		now = now.In(loc)
	}
	return meetings.RangeForMode(common.StringArg(request, "mode", meetings.ModeWeek), now)
}

func handleReconcile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	r, err := rangeFromRequest(request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rc, err := sc.Reconciler()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create reconciler: %v", err)), nil
	}

	stats, err := rc.Run(ctx, r)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	launcher.WriteStats(&b, stats)
	return mcp.NewToolResultText(b.String()), nil
}

func handleIngest(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	r, err := rangeFromRequest(request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in, err := sc.Ingestor()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create ingestor: %v", err)), nil
	}

	stats, err := in.SyncRange(ctx, r)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	launcher.WriteIngestStats(&b, stats)
	return mcp.NewToolResultText(b.String()), nil
}

func handleFind(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	eventID := common.StringArg(request, "eventId", "")
	if eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	store, err := sc.Store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// The finder needs no calendar source
	in := meetings.NewIngestor(store, nil, sc.Config(), meetings.WithLogger(sc.Logger()))

	page, err := in.FindMeetingByGoogleID(ctx, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search meetings: %v", err)), nil
	}
	if page == nil {
		return mcp.NewToolResultText(fmt.Sprintf("No meeting found for event %s", eventID)), nil
	}

	rec, err := meetings.RecordFromPage(*page)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Meeting row is incomplete: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", rec.Title)
	fmt.Fprintf(&b, "ID: %s\n", rec.PageID)
	fmt.Fprintf(&b, "Date: %s\n", rec.Date)
	fmt.Fprintf(&b, "Status: %s\n", rec.Status)
	fmt.Fprintf(&b, "Notes Generated: %t\n", rec.NotesGenerated)
	if rec.NotePageID != "" {
		fmt.Fprintf(&b, "Meeting Note: %s\n", rec.NotePageID)
	}
	return mcp.NewToolResultText(b.String()), nil
}
