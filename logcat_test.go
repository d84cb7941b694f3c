package main

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

func TestParseLogcatLine(t *testing.T) {
	line := "01-04 12:34:56.789  1234  5678 D ActivityManager: Start proc 9012 for service"
	entry, ok := parseLogcatLine(line)
	if !ok {
		t.Fatal("expected line to parse")
	}
	if entry.Level != types.LogDebug {
		t.Errorf("Level = %q, want D", entry.Level)
	}
	if entry.Tag != "ActivityManager" {
		t.Errorf("Tag = %q", entry.Tag)
	}
	if entry.PID != 1234 || entry.TID != 5678 {
		t.Errorf("PID/TID = %d/%d, want 1234/5678", entry.PID, entry.TID)
	}
	if entry.Message != "Start proc 9012 for service" {
		t.Errorf("Message = %q", entry.Message)
	}
	if entry.RawLine != line {
		t.Errorf("RawLine = %q", entry.RawLine)
	}
	if entry.Timestamp.Year() != time.Now().Year() {
		t.Errorf("Timestamp year = %d, want current", entry.Timestamp.Year())
	}
	if entry.Timestamp.Nanosecond() != 789_000_000 {
		t.Errorf("Timestamp millis = %d", entry.Timestamp.Nanosecond())
	}
}

func TestParseLogcatLineNoMillis(t *testing.T) {
	entry, ok := parseLogcatLine("12-31 23:59:59  1  2 W Zygote: boot taking too long")
	if !ok {
		t.Fatal("expected fallback pattern to parse")
	}
	if entry.Level != types.LogWarn {
		t.Errorf("Level = %q, want W", entry.Level)
	}
	if entry.Tag != "Zygote" {
		t.Errorf("Tag = %q", entry.Tag)
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected a parsed timestamp")
	}
}

func TestParseLogcatLineRejectsGarbage(t *testing.T) {
	lines := []string{
		"",
		"--------- beginning of main",
		"not a log line at all",
	}
	for _, line := range lines {
		if _, ok := parseLogcatLine(line); ok {
			t.Errorf("expected %q to be rejected", line)
		}
	}
}

func TestBuildLogcatCommand(t *testing.T) {
	cmd := buildLogcatCommand("MyTag", "W", 50, "")
	for _, want := range []string{"-s {device}", "shell logcat", "-v threadtime", "-s MyTag", "*:W", "-d", "| tail -n 50"} {
		if !strings.Contains(cmd, want) {
			t.Errorf("command %q missing %q", cmd, want)
		}
	}
}

func TestBuildLogcatCommandVerboseNoFilterSpec(t *testing.T) {
	cmd := buildLogcatCommand("", string(types.LogVerbose), 10, "")
	if strings.Contains(cmd, "*:V") {
		t.Errorf("verbose priority should not add a filter spec: %q", cmd)
	}
}

func TestBuildLogcatCommandSince(t *testing.T) {
	cmd := buildLogcatCommand("", "", 0, "01-04 12:00:00.000")
	if !strings.Contains(cmd, "-t '01-04 12:00:00.000'") {
		t.Errorf("command %q missing since clause", cmd)
	}
	if strings.Contains(cmd, "tail") {
		t.Errorf("maxLines 0 should not add a tail pipe: %q", cmd)
	}
}

func TestReserveMonitorSingleWinner(t *testing.T) {
	app := NewApp(DefaultConfig(), "test")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if app.reserveMonitor("logmon_emulator-5554_1700000000", &logMonitorSession{}) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Errorf("reserveMonitor winners = %d, want 1", got)
	}
	if len(app.activeMonitors) != 1 {
		t.Errorf("activeMonitors has %d entries, want 1", len(app.activeMonitors))
	}
}
