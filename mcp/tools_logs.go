package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerLogTools registers logcat tools
func (s *MCPServer) registerLogTools() {
	// log_dump - Fetch recent log entries
	s.server.AddTool(
		mcp.NewTool("log_dump",
			mcp.WithDescription("Fetch recent logcat entries from the selected device, optionally filtered by tag and minimum priority"),
			mcp.WithString("tag",
				mcp.Description("Only include entries with this tag (optional)"),
			),
			mcp.WithString("priority",
				mcp.Description("Minimum priority: V, D, I, W, E, or F (default: V)"),
			),
			mcp.WithNumber("max_lines",
				mcp.Description("Maximum number of lines to fetch (default: 100)"),
			),
			mcp.WithBoolean("clear_first",
				mcp.Description("Clear the log buffer before reading (default: false)"),
			),
			mcp.WithString("since",
				mcp.Description("Only include entries after this time, e.g. '01-04 12:00:00.000' (optional)"),
			),
		),
		s.handleLogDump,
	)

	// log_search - Search recent log entries
	s.server.AddTool(
		mcp.NewTool("log_search",
			mcp.WithDescription("Search the last 1000 log lines for a term, matching against message and tag"),
			mcp.WithString("term",
				mcp.Required(),
				mcp.Description("Case-insensitive search term"),
			),
			mcp.WithString("tag",
				mcp.Description("Restrict the search to this tag (optional)"),
			),
			mcp.WithString("priority",
				mcp.Description("Minimum priority: V, D, I, W, E, or F (default: V)"),
			),
			mcp.WithNumber("max_results",
				mcp.Description("Maximum matches to return (default: 50)"),
			),
		),
		s.handleLogSearch,
	)

	// log_monitor_start - Start continuous log monitoring
	s.server.AddTool(
		mcp.NewTool("log_monitor_start",
			mcp.WithDescription("Start a background logcat monitor on the selected device. The monitor counts matching entries and can write them to a file until log_monitor_stop"),
			mcp.WithString("tag",
				mcp.Description("Only monitor entries with this tag (optional)"),
			),
			mcp.WithString("priority",
				mcp.Description("Minimum priority: V, D, I, W, E, or F (default: V)"),
			),
			mcp.WithString("output_file",
				mcp.Description("Write monitored lines to this file in the output directory (optional)"),
			),
		),
		s.handleLogMonitorStart,
	)

	// log_monitor_stop - Stop log monitoring
	s.server.AddTool(
		mcp.NewTool("log_monitor_stop",
			mcp.WithDescription("Stop a background log monitor and report how many entries it processed"),
			mcp.WithString("monitor_id",
				mcp.Description("Monitor ID from log_monitor_start; omit or pass 'all' to stop every monitor"),
			),
		),
		s.handleLogMonitorStop,
	)

	// log_monitor_list - List active monitors
	s.server.AddTool(
		mcp.NewTool("log_monitor_list",
			mcp.WithDescription("List currently running log monitors"),
		),
		s.handleLogMonitorList,
	)
}

// Tool handlers

func (s *MCPServer) handleLogDump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "get_logcat")
	defer cancel()

	args := request.GetArguments()
	result, err := s.app.GetLogcat(ctx,
		argString(args, "tag"),
		argString(args, "priority"),
		argInt(args, "max_lines", 0),
		argBool(args, "clear_first", false),
		argString(args, "since"))
	if err != nil {
		return errorResult("logcat dump", err), nil
	}

	if result.EntriesCount == 0 {
		return textResult("No log entries matched the filters"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fetched %d log entries", result.EntriesCount)
	if result.FilterApplied.Tag != "" {
		fmt.Fprintf(&b, " for tag %q", result.FilterApplied.Tag)
	}
	return jsonResult(b.String(), result), nil
}

func (s *MCPServer) handleLogSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "search_logs")
	defer cancel()

	args := request.GetArguments()
	term := argString(args, "term")
	if term == "" {
		return nil, fmt.Errorf("term is required")
	}

	result, err := s.app.SearchLogs(ctx, term,
		argString(args, "tag"),
		argString(args, "priority"),
		argInt(args, "max_results", 0))
	if err != nil {
		return errorResult("log search", err), nil
	}

	if result.MatchesFound == 0 {
		return textResult(fmt.Sprintf("No log entries matched %q", term)), nil
	}
	return jsonResult(fmt.Sprintf("Found %d entries matching %q", result.MatchesFound, term), result), nil
}

func (s *MCPServer) handleLogMonitorStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "start_log_monitoring")
	defer cancel()

	args := request.GetArguments()
	result, err := s.app.StartLogMonitoring(ctx,
		argString(args, "tag"),
		argString(args, "priority"),
		argString(args, "output_file"))
	if err != nil {
		return errorResult("log monitor start", err), nil
	}

	summary := fmt.Sprintf("Log monitoring started\nStop it with log_monitor_stop using monitor_id %q", result.MonitorID)
	return jsonResult(summary, result), nil
}

func (s *MCPServer) handleLogMonitorStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "stop_log_monitoring")
	defer cancel()

	args := request.GetArguments()
	result, err := s.app.StopLogMonitoring(ctx, argString(args, "monitor_id"))
	if err != nil {
		return errorResult("log monitor stop", err), nil
	}

	summary := fmt.Sprintf("Monitor %s stopped after processing %d entries", result.MonitorID, result.EntriesProcessed)
	if result.OutputFile != "" {
		summary += fmt.Sprintf("\nOutput written to %s", result.OutputFile)
	}
	return jsonResult(summary, result), nil
}

func (s *MCPServer) handleLogMonitorList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	monitors := s.app.ListActiveMonitors()
	if len(monitors) == 0 {
		return textResult("No active log monitors"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d active monitor(s):\n\n", len(monitors))
	for i, m := range monitors {
		fmt.Fprintf(&b, "%d. %s (priority %s), running %.1fs, %d entries\n",
			i+1, m.MonitorID, m.Priority, m.DurationSeconds, m.EntriesProcessed)
	}
	return jsonResult(b.String(), monitors), nil
}
