package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

// ============================================================================
// Logcat access and background log monitoring
// ============================================================================

const (
	logcatDefaultLines   = 100
	logSearchWindowLines = 1000
	logSearchMaxResults  = 50
	monitorStopWait      = 5 * time.Second
)

// logcatLinePattern matches threadtime format with milliseconds:
// "01-04 12:34:56.789  1234  5678 D Tag: message"
var logcatLinePattern = regexp.MustCompile(`(\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\.\d{3})\s+(\d+)\s+(\d+)\s+([VDIWEF])\s+([^:]+):\s*(.*)`)

// logcatLineNoMillisPattern is the fallback for buffers emitted without
// fractional seconds.
var logcatLineNoMillisPattern = regexp.MustCompile(`(\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s+(\d+)\s+(\d+)\s+([VDIWEF])\s+([^:]+):\s*(.*)`)

// parseLogcatLine extracts a structured entry from one threadtime line.
// Lines that do not match either pattern return ok=false and should be
// skipped rather than treated as errors.
func parseLogcatLine(line string) (types.LogEntry, bool) {
	layout := "2006-01-02 15:04:05.000"
	m := logcatLinePattern.FindStringSubmatch(line)
	if m == nil {
		layout = "2006-01-02 15:04:05"
		m = logcatLineNoMillisPattern.FindStringSubmatch(line)
	}
	if m == nil {
		return types.LogEntry{}, false
	}

	// Logcat omits the year; assume the current one.
	stamp := fmt.Sprintf("%d-%s", time.Now().Year(), m[1])
	ts, err := time.ParseInLocation(layout, stamp, time.Local)
	if err != nil {
		ts = time.Time{}
	}

	pid, _ := strconv.Atoi(m[2])
	tid, _ := strconv.Atoi(m[3])

	return types.LogEntry{
		Timestamp: ts,
		Level:     types.LogLevel(m[4]),
		Tag:       strings.TrimSpace(m[5]),
		PID:       pid,
		TID:       tid,
		Message:   m[6],
		RawLine:   line,
	}, true
}

// buildLogcatCommand assembles the device-side logcat invocation. The tail
// pipe runs on the device shell so only the trailing lines cross the wire.
func buildLogcatCommand(tagFilter, priority string, maxLines int, sinceTime string) string {
	parts := []string{"shell", "logcat", "-v", "threadtime"}
	if sinceTime != "" {
		parts = append(parts, "-t", fmt.Sprintf("'%s'", sinceTime))
	}
	if tagFilter != "" {
		parts = append(parts, "-s", tagFilter)
	}
	if priority != "" && priority != string(types.LogVerbose) {
		parts = append(parts, fmt.Sprintf("*:%s", priority))
	}
	parts = append(parts, "-d")
	if maxLines > 0 {
		parts = append(parts, "|", "tail", "-n", strconv.Itoa(maxLines))
	}
	return "-s {device} " + strings.Join(parts, " ")
}

// GetLogcat returns recent log entries from the selected device, optionally
// filtered by tag and minimum priority.
func (a *App) GetLogcat(ctx context.Context, tagFilter, priority string, maxLines int, clearFirst bool, sinceTime string) (types.LogcatResult, error) {
	result := types.LogcatResult{Action: "get_logcat"}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	if maxLines <= 0 {
		maxLines = logcatDefaultLines
	}
	if priority == "" {
		priority = string(types.LogVerbose)
	}
	priority = strings.ToUpper(priority)
	if !types.ValidLogLevel(priority) {
		err := NewError(ErrInvalidParameter, fmt.Sprintf("invalid log priority %q", priority), nil)
		result.Error = err.Error()
		return result, err
	}
	result.FilterApplied = types.LogFilter{
		Tag:       tagFilter,
		Priority:  priority,
		MaxLines:  maxLines,
		SinceTime: sinceTime,
	}

	timer := StartOperation("logcat", "get_logcat")
	defer timer.End()

	if clearFirst {
		if _, err := a.ExecuteADB(ctx, deviceID, "-s {device} logcat -c"); err != nil {
			LogWarn("logcat").Err(err).Str("device", deviceID).Msg("failed to clear logcat buffer")
		}
	}

	cmdResult, err := a.ExecuteADB(ctx, deviceID, buildLogcatCommand(tagFilter, priority, maxLines, sinceTime))
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	if !cmdResult.Success {
		serr := NewError(ErrADBExecution, "logcat command failed", fmt.Errorf("%s", cmdResult.Stderr))
		result.Error = serr.Error()
		return result, serr
	}

	for _, line := range strings.Split(cmdResult.Stdout, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if entry, ok := parseLogcatLine(line); ok {
			result.Entries = append(result.Entries, entry)
		}
	}

	result.Success = true
	result.EntriesCount = len(result.Entries)
	LogDebug("logcat").
		Str("device", deviceID).
		Int("entries", result.EntriesCount).
		Str("priority", priority).
		Msg("logcat retrieved")
	return result, nil
}

// ClearLogcat empties the device log buffer.
func (a *App) ClearLogcat(ctx context.Context) (types.CommandResult, error) {
	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		return types.CommandResult{Success: false, Error: err.Error()}, err
	}
	return a.ExecuteADB(ctx, deviceID, "-s {device} logcat -c")
}

// logMonitorSession tracks one background logcat stream.
type logMonitorSession struct {
	cmd              *exec.Cmd
	deviceID         string
	tagFilter        string
	priority         string
	outputFile       string
	startTime        time.Time
	entriesProcessed atomic.Int64
	done             chan struct{}
}

// StartLogMonitoring launches a continuous logcat reader for the selected
// device. The stream runs until StopLogMonitoring or shutdown; entries are
// counted and optionally appended to a file under the output directory.
func (a *App) StartLogMonitoring(ctx context.Context, tagFilter, priority, outputFile string) (types.MonitorStartResult, error) {
	result := types.MonitorStartResult{Action: "start_log_monitoring"}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	if priority == "" {
		priority = string(types.LogVerbose)
	}
	priority = strings.ToUpper(priority)
	if !types.ValidLogLevel(priority) {
		serr := NewError(ErrInvalidParameter, fmt.Sprintf("invalid log priority %q", priority), nil)
		result.Error = serr.Error()
		return result, serr
	}

	monitorID := fmt.Sprintf("logmon_%s_%d", deviceID, time.Now().Unix())

	// Fresh buffer so the monitor only sees new entries.
	if _, err := a.ExecuteADB(ctx, deviceID, "-s {device} logcat -c"); err != nil {
		LogWarn("logcat").Err(err).Str("device", deviceID).Msg("failed to clear buffer before monitoring")
	}

	args := []string{"-s", deviceID, "logcat", "-v", "threadtime"}
	if tagFilter != "" {
		args = append(args, "-s", tagFilter)
	}
	if priority != string(types.LogVerbose) {
		args = append(args, fmt.Sprintf("*:%s", priority))
	}

	// The monitor outlives the tool call that started it.
	cmd := a.newADBCommand(context.Background(), args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		serr := NewError(ErrLogMonitorStart, "failed to open logcat pipe", err)
		result.Error = serr.Error()
		return result, serr
	}

	var out *os.File
	if outputFile != "" {
		outputFile = filepath.Join(a.cfg.OutputDir, filepath.Base(outputFile))
		out, err = os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			serr := NewError(ErrStorageInsufficient, "failed to open monitor output file", err)
			result.Error = serr.Error()
			return result, serr
		}
	}

	if err := cmd.Start(); err != nil {
		if out != nil {
			out.Close()
		}
		serr := NewError(ErrLogMonitorStart, "failed to start logcat process", err)
		result.Error = serr.Error()
		return result, serr
	}

	session := &logMonitorSession{
		cmd:        cmd,
		deviceID:   deviceID,
		tagFilter:  tagFilter,
		priority:   priority,
		outputFile: outputFile,
		startTime:  time.Now(),
		done:       make(chan struct{}),
	}

	if !a.reserveMonitor(monitorID, session) {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		go cmd.Wait()
		if out != nil {
			out.Close()
		}
		serr := NewError(ErrResourceUnavailable, fmt.Sprintf("monitor %s already running", monitorID), nil)
		result.Error = serr.Error()
		return result, serr
	}

	go func() {
		defer close(session.done)
		if out != nil {
			defer out.Close()
		}
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if _, ok := parseLogcatLine(line); !ok {
				continue
			}
			session.entriesProcessed.Add(1)
			if out != nil {
				fmt.Fprintln(out, line)
			}
		}
		cmd.Wait()
	}()

	result.Success = true
	result.MonitorID = monitorID
	result.TagFilter = tagFilter
	result.Priority = priority
	result.OutputFile = outputFile
	if cmd.Process != nil {
		result.ProcessID = cmd.Process.Pid
	}
	LogInfo("logcat").
		Str("monitor_id", monitorID).
		Str("device", deviceID).
		Str("priority", priority).
		Msg("log monitoring started")
	return result, nil
}

// reserveMonitor claims an ID for a new monitor session. The existence
// check and the insert share one critical section, so two concurrent
// starts cannot both register the same ID; the loser must tear down
// its own process.
func (a *App) reserveMonitor(monitorID string, session *logMonitorSession) bool {
	a.monitorsMu.Lock()
	defer a.monitorsMu.Unlock()
	if _, exists := a.activeMonitors[monitorID]; exists {
		return false
	}
	a.activeMonitors[monitorID] = session
	return true
}

// StopLogMonitoring stops one monitor, or all of them when monitorID is
// empty or "all".
func (a *App) StopLogMonitoring(ctx context.Context, monitorID string) (types.MonitorStopResult, error) {
	result := types.MonitorStopResult{Action: "stop_monitoring"}

	if monitorID == "" || monitorID == "all" {
		stopped := a.stopAllMonitors()
		result.Success = true
		result.MonitorID = "all"
		result.EntriesProcessed = stopped
		return result, nil
	}
	result.MonitorID = monitorID

	a.monitorsMu.Lock()
	session, ok := a.activeMonitors[monitorID]
	if ok {
		delete(a.activeMonitors, monitorID)
	}
	remaining := make([]string, 0, len(a.activeMonitors))
	for id := range a.activeMonitors {
		remaining = append(remaining, id)
	}
	a.monitorsMu.Unlock()

	if !ok {
		serr := NewError(ErrResourceUnavailable, fmt.Sprintf("no active monitor with ID %s", monitorID), nil)
		result.Error = serr.Error()
		result.ActiveMonitors = remaining
		return result, serr
	}

	stopMonitorProcess(session)

	result.Success = true
	result.DurationSeconds = time.Since(session.startTime).Seconds()
	result.EntriesProcessed = session.entriesProcessed.Load()
	result.OutputFile = session.outputFile
	result.ActiveMonitors = remaining
	LogInfo("logcat").
		Str("monitor_id", monitorID).
		Int64("entries", result.EntriesProcessed).
		Msg("log monitoring stopped")
	return result, nil
}

// stopMonitorProcess terminates the logcat process, escalating to Kill
// if it does not exit within monitorStopWait.
func stopMonitorProcess(session *logMonitorSession) {
	if session.cmd.Process != nil {
		session.cmd.Process.Signal(syscall.SIGTERM)
	}
	select {
	case <-session.done:
	case <-time.After(monitorStopWait):
		if session.cmd.Process != nil {
			session.cmd.Process.Kill()
		}
		<-session.done
	}
}

// stopAllMonitors tears down every active monitor and returns the total
// entries processed across them. Used by StopLogMonitoring("all") and
// shutdown.
func (a *App) stopAllMonitors() int64 {
	a.monitorsMu.Lock()
	sessions := make(map[string]*logMonitorSession, len(a.activeMonitors))
	for id, s := range a.activeMonitors {
		sessions[id] = s
	}
	a.activeMonitors = make(map[string]*logMonitorSession)
	a.monitorsMu.Unlock()

	var total int64
	for id, session := range sessions {
		stopMonitorProcess(session)
		total += session.entriesProcessed.Load()
		LogInfo("logcat").Str("monitor_id", id).Msg("log monitor stopped during shutdown")
	}
	return total
}

// ListActiveMonitors reports currently running log monitors.
func (a *App) ListActiveMonitors() []types.MonitorSummary {
	a.monitorsMu.Lock()
	defer a.monitorsMu.Unlock()

	summaries := make([]types.MonitorSummary, 0, len(a.activeMonitors))
	for id, s := range a.activeMonitors {
		summaries = append(summaries, types.MonitorSummary{
			MonitorID:        id,
			DurationSeconds:  time.Since(s.startTime).Seconds(),
			TagFilter:        s.tagFilter,
			Priority:         s.priority,
			EntriesProcessed: s.entriesProcessed.Load(),
			OutputFile:       s.outputFile,
		})
	}
	return summaries
}

// SearchLogs scans the tail of the log buffer for a term, matching against
// both message and tag. The search is case-insensitive.
func (a *App) SearchLogs(ctx context.Context, searchTerm, tagFilter, priority string, maxResults int) (types.LogSearchResult, error) {
	result := types.LogSearchResult{Action: "search_logs", SearchTerm: searchTerm}

	if strings.TrimSpace(searchTerm) == "" {
		serr := NewError(ErrMissingParameter, "search term must not be empty", nil)
		result.Error = serr.Error()
		return result, serr
	}
	if maxResults <= 0 {
		maxResults = logSearchMaxResults
	}

	logs, err := a.GetLogcat(ctx, tagFilter, priority, logSearchWindowLines, false, "")
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.SearchParameters = logs.FilterApplied

	needle := strings.ToLower(searchTerm)
	for _, entry := range logs.Entries {
		var reasons []string
		if strings.Contains(strings.ToLower(entry.Message), needle) {
			reasons = append(reasons, "message")
		}
		if strings.Contains(strings.ToLower(entry.Tag), needle) {
			reasons = append(reasons, "tag")
		}
		if len(reasons) == 0 {
			continue
		}
		entry.MatchReason = reasons
		result.Entries = append(result.Entries, entry)
		if len(result.Entries) >= maxResults {
			break
		}
	}

	result.Success = true
	result.MatchesFound = len(result.Entries)
	LogDebug("logcat").
		Str("term", searchTerm).
		Int("matches", result.MatchesFound).
		Msg("log search completed")
	return result, nil
}
