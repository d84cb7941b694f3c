package main

import (
	"os"
	"path/filepath"
	"time"
)

// ========================================
// Server configuration
// ========================================

// Config holds runtime configuration for the server. Values come from
// CLI flags with environment variable fallbacks; everything has a
// working default so the server runs with no configuration at all.
type Config struct {
	// ADBPath overrides adb discovery. Empty means look up "adb" on PATH.
	ADBPath string

	// OutputDir is where pulled screenshots and recordings land.
	OutputDir string

	// DeviceDumpPath is the on-device location for UI hierarchy dumps.
	DeviceDumpPath string

	// DeviceMediaDir is the on-device staging directory for captures.
	DeviceMediaDir string

	// HealthPolicy decides how individual health checks combine into a
	// verdict: "all", "any" or "quorum".
	HealthPolicy string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFile enables the rotating JSON log file when non-empty.
	LogFile string
}

// DefaultConfig returns the zero-configuration defaults
func DefaultConfig() Config {
	outputDir, err := os.Getwd()
	if err != nil {
		outputDir = os.TempDir()
	}
	return Config{
		OutputDir:      outputDir,
		DeviceDumpPath: "/sdcard/window_dump.xml",
		DeviceMediaDir: "/sdcard",
		HealthPolicy:   HealthPolicyAll,
		LogLevel:       "info",
	}
}

// Health check combination policies.
const (
	HealthPolicyAll    = "all"    // every check must pass
	HealthPolicyAny    = "any"    // at least one check must pass
	HealthPolicyQuorum = "quorum" // more than half must pass
)

// ValidHealthPolicy reports whether p names a known policy
func ValidHealthPolicy(p string) bool {
	switch p {
	case HealthPolicyAll, HealthPolicyAny, HealthPolicyQuorum:
		return true
	}
	return false
}

// ConfigDirName is the per-user directory for persisted settings.
const ConfigDirName = "android-mcp-server"

// DefaultLogFilePath returns the default rotating log location
func DefaultLogFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ConfigDirName, "logs", "android-mcp.log")
}

// ========================================
// Per-tool timeout budget
// ========================================

// toolTimeouts is the per-tool total time budget. A tool not listed
// here gets defaultToolTimeout. The budget is started once at the tool
// boundary; sub-operations carve stage budgets out of what remains.
var toolTimeouts = map[string]time.Duration{
	// Device management
	"device_list":   15 * time.Second,
	"device_select": 10 * time.Second,
	"device_info":   20 * time.Second,
	"device_health": 20 * time.Second,

	// UI inspection
	"get_ui_layout":       10 * time.Second,
	"get_screen_elements": 10 * time.Second,
	"find_elements":       8 * time.Second,

	// Interaction
	"tap_screen":        5 * time.Second,
	"long_press_screen": 10 * time.Second,
	"tap_element":       10 * time.Second,
	"swipe_screen":      15 * time.Second,
	"swipe_direction":   15 * time.Second,
	"input_text":        20 * time.Second,
	"press_key":         10 * time.Second,

	// Media
	"take_screenshot":        8 * time.Second,
	"start_screen_recording": 15 * time.Second,
	"stop_screen_recording":  20 * time.Second,

	// Logs
	"get_logcat":           10 * time.Second,
	"search_logs":          15 * time.Second,
	"start_log_monitoring": 10 * time.Second,
	"stop_log_monitoring":  15 * time.Second,
}

const defaultToolTimeout = 30 * time.Second

// ToolTimeout returns the total budget for a named tool
func ToolTimeout(tool string) time.Duration {
	if d, ok := toolTimeouts[tool]; ok {
		return d
	}
	return defaultToolTimeout
}
