// Package mcptools exposes the journey snapshot to MCP clients as
// read-only tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/elyxlabs/journeyboard/internal/engagement"
	"github.com/elyxlabs/journeyboard/internal/metrics"
	"github.com/elyxlabs/journeyboard/internal/store"
	"github.com/elyxlabs/journeyboard/internal/timeline"
)

// Dependencies holds everything the tool handlers need.
type Dependencies struct {
	Store     *store.Store
	Collector *metrics.Collector
	Logger    *slog.Logger
}

// NewServer creates an MCP server with all journey tools registered.
func NewServer(version string, deps *Dependencies) *server.MCPServer {
	s := server.NewMCPServer(
		"journeyboard",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTools(journeyTools(deps)...)
	return s
}

// Serve runs the server on stdio and blocks until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func journeyTools(deps *Dependencies) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("journey_summary",
				mcp.WithDescription("Engagement summary of the coaching journey: message totals by role, engagement ratio, per-expert and per-month volumes"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				snap, res := deps.snapshot(ctx)
				if res != nil {
					return res, nil
				}

				start := time.Now()
				summary := engagement.Summarize(snap.Messages)
				deps.Collector.RecordTiming(metrics.OpEngagement, time.Since(start))

				return jsonToolResult(summary)
			},
		},
		{
			Tool: mcp.NewTool("list_events",
				mcp.WithDescription("List all journey events in chronological order"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				snap, res := deps.snapshot(ctx)
				if res != nil {
					return res, nil
				}

				start := time.Now()
				ordered, err := timeline.OrderEvents(snap.Events)
				deps.Collector.RecordTiming(metrics.OpOrderEvents, time.Since(start))
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("event log contains a malformed date: %v", err)), nil
				}

				return jsonToolResult(ordered)
			},
		},
		{
			Tool: mcp.NewTool("get_event",
				mcp.WithDescription("Get one journey event by id"),
				mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id, err := req.RequireString("event_id")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}

				snap, res := deps.snapshot(ctx)
				if res != nil {
					return res, nil
				}

				event, ok := timeline.FindEvent(snap.Events, id)
				if !ok {
					return mcp.NewToolResultError(fmt.Sprintf("event %q not found; use list_events to see valid ids", id)), nil
				}

				return jsonToolResult(event)
			},
		},
		{
			Tool: mcp.NewTool("event_sources",
				mcp.WithDescription("Get the source conversation for an event: the messages that justify it, in chronological order"),
				mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id, err := req.RequireString("event_id")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}

				snap, res := deps.snapshot(ctx)
				if res != nil {
					return res, nil
				}

				event, ok := timeline.FindEvent(snap.Events, id)
				if !ok {
					return mcp.NewToolResultError(fmt.Sprintf("event %q not found; use list_events to see valid ids", id)), nil
				}

				start := time.Now()
				resolved, missing := timeline.Resolve(event, snap.Messages)
				deps.Collector.RecordTiming(metrics.OpResolve, time.Since(start))

				return jsonToolResult(map[string]any{
					"event":       event,
					"messages":    resolved,
					"missing_ids": missing,
				})
			},
		},
		{
			Tool: mcp.NewTool("expert_messages",
				mcp.WithDescription("Message volume per care-team expert, descending by count"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				snap, res := deps.snapshot(ctx)
				if res != nil {
					return res, nil
				}

				start := time.Now()
				counts := engagement.MessagesPerExpert(snap.Messages)
				deps.Collector.RecordTiming(metrics.OpEngagement, time.Since(start))

				return jsonToolResult(counts)
			},
		},
		{
			Tool: mcp.NewTool("monthly_initiations",
				mcp.WithDescription("Member-initiated message counts per YYYY-MM month"),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				snap, res := deps.snapshot(ctx)
				if res != nil {
					return res, nil
				}

				start := time.Now()
				counts, excluded := engagement.InitiationsPerMonth(snap.Messages)
				deps.Collector.RecordTiming(metrics.OpEngagement, time.Since(start))

				return jsonToolResult(map[string]any{
					"months":   counts,
					"excluded": excluded,
				})
			},
		},
	}
}

// snapshot fetches the current snapshot, returning a tool error result the
// handler can hand back directly so the client sees the failure.
func (d *Dependencies) snapshot(ctx context.Context) (*store.Snapshot, *mcp.CallToolResult) {
	snap, err := d.Store.Snapshot(ctx)
	if err != nil {
		if d.Logger != nil {
			d.Logger.Error("snapshot unavailable", "error", err)
		}
		return nil, mcp.NewToolResultError(fmt.Sprintf("journey data unavailable: %v", err))
	}
	return snap, nil
}

func jsonToolResult(data any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
