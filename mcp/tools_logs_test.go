package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

// ==================== log_dump ====================

func TestHandleLogDump_Success(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.GetLogcatResult = LogcatResult{
		Success:      true,
		Action:       "get_logcat",
		EntriesCount: 3,
		Entries: []types.LogEntry{
			{Level: types.LogInfo, Tag: "ActivityManager", Message: "Displayed com.example/.Main"},
		},
		FilterApplied: types.LogFilter{Tag: "ActivityManager"},
	}
	server := NewMCPServer(mock)

	result, err := server.handleLogDump(context.Background(),
		makeToolRequest(map[string]interface{}{"tag": "ActivityManager", "max_lines": float64(50)}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "Fetched 3 log entries") {
		t.Errorf("Summary should state the entry count, got: %s", text)
	}
	if !strings.Contains(text, `"ActivityManager"`) {
		t.Error("Summary should mention the tag filter")
	}

	call := mock.Calls[0]
	if call.Args[0] != "ActivityManager" || call.Args[2] != 50 {
		t.Errorf("GetLogcat called with %+v", call.Args)
	}
}

func TestHandleLogDump_NoEntries(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.GetLogcatResult = LogcatResult{Success: true, Action: "get_logcat"}
	server := NewMCPServer(mock)

	result, err := server.handleLogDump(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "No log entries") {
		t.Error("Result should state that nothing matched")
	}
}

func TestHandleLogDump_Error(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.GetLogcatError = ErrNoDevices
	server := NewMCPServer(mock)

	result, err := server.handleLogDump(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("App error should set IsError")
	}
}

// ==================== log_search ====================

func TestHandleLogSearch_Success(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.SearchLogsResult = LogSearchResult{
		Success:      true,
		SearchTerm:   "crash",
		MatchesFound: 2,
		Entries: []types.LogEntry{
			{Level: types.LogError, Tag: "AndroidRuntime", Message: "FATAL EXCEPTION", MatchReason: []string{"message"}},
		},
	}
	server := NewMCPServer(mock)

	result, err := server.handleLogSearch(context.Background(),
		makeToolRequest(map[string]interface{}{"term": "crash"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), `Found 2 entries matching "crash"`) {
		t.Errorf("Summary should state the match count, got: %s", getTextContent(result))
	}
}

func TestHandleLogSearch_RequiresTerm(t *testing.T) {
	mock := NewMockAndroidApp()
	server := NewMCPServer(mock)

	_, err := server.handleLogSearch(context.Background(), makeToolRequest(nil))
	if err == nil {
		t.Error("Missing term should be an error")
	}
}

func TestHandleLogSearch_NoMatches(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.SearchLogsResult = LogSearchResult{Success: true, SearchTerm: "nothing"}
	server := NewMCPServer(mock)

	result, err := server.handleLogSearch(context.Background(),
		makeToolRequest(map[string]interface{}{"term": "nothing"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "No log entries matched") {
		t.Error("Result should state that nothing matched")
	}
}

// ==================== log_monitor_start / stop / list ====================

func TestHandleLogMonitorStart_Success(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.StartMonitoringResult = MonitorStartResult{
		Success:   true,
		MonitorID: "logmon_device1_1700000000",
	}
	server := NewMCPServer(mock)

	result, err := server.handleLogMonitorStart(context.Background(),
		makeToolRequest(map[string]interface{}{"tag": "MyApp"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "logmon_device1_1700000000") {
		t.Error("Summary should include the monitor id")
	}
	if !strings.Contains(text, "log_monitor_stop") {
		t.Error("Summary should point at log_monitor_stop")
	}
}

func TestHandleLogMonitorStop_Success(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.StopMonitoringResult = MonitorStopResult{
		Success:          true,
		MonitorID:        "logmon_device1_1700000000",
		EntriesProcessed: 42,
		OutputFile:       "/tmp/monitor.log",
	}
	server := NewMCPServer(mock)

	result, err := server.handleLogMonitorStop(context.Background(),
		makeToolRequest(map[string]interface{}{"monitor_id": "logmon_device1_1700000000"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "42 entries") {
		t.Errorf("Summary should state the entry count, got: %s", text)
	}
	if !strings.Contains(text, "/tmp/monitor.log") {
		t.Error("Summary should name the output file")
	}
}

func TestHandleLogMonitorList(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.ListActiveMonitorsResult = []MonitorSummary{
		{MonitorID: "logmon_1", Priority: "W", DurationSeconds: 30.5, EntriesProcessed: 7},
	}
	server := NewMCPServer(mock)

	result, err := server.handleLogMonitorList(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "logmon_1 (priority W)") {
		t.Errorf("Result should list the monitor, got: %s", getTextContent(result))
	}
}

func TestHandleLogMonitorList_Empty(t *testing.T) {
	mock := NewMockAndroidApp()
	server := NewMCPServer(mock)

	result, err := server.handleLogMonitorList(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "No active log monitors") {
		t.Error("Result should state that no monitors run")
	}
}
