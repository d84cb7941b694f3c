package types

import "time"

// LogLevel is an Android logcat priority.
type LogLevel string

const (
	LogVerbose LogLevel = "V"
	LogDebug   LogLevel = "D"
	LogInfo    LogLevel = "I"
	LogWarn    LogLevel = "W"
	LogError   LogLevel = "E"
	LogFatal   LogLevel = "F"
	LogSilent  LogLevel = "S"
)

// ValidLogLevel reports whether p is one of the logcat priority letters.
func ValidLogLevel(p string) bool {
	switch LogLevel(p) {
	case LogVerbose, LogDebug, LogInfo, LogWarn, LogError, LogFatal, LogSilent:
		return true
	}
	return false
}

// LogEntry is a parsed logcat line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Tag       string    `json:"tag"`
	PID       int       `json:"pid"`
	TID       int       `json:"tid"`
	Message   string    `json:"message"`
	RawLine   string    `json:"-"`
	// MatchReason is populated by log search ("message", "tag").
	MatchReason []string `json:"match_reason,omitempty"`
}

// MonitorSummary describes an active log monitoring session.
type MonitorSummary struct {
	MonitorID        string  `json:"monitor_id"`
	DurationSeconds  float64 `json:"duration_seconds"`
	TagFilter        string  `json:"tag_filter,omitempty"`
	Priority         string  `json:"priority"`
	EntriesProcessed int64   `json:"entries_processed"`
	OutputFile       string  `json:"output_file,omitempty"`
}

// RecordingSummary describes an active screen recording session.
type RecordingSummary struct {
	RecordingID     string  `json:"recording_id"`
	Filename        string  `json:"filename"`
	DurationSeconds float64 `json:"duration_seconds"`
	TimeLimit       int     `json:"time_limit"`
	DevicePath      string  `json:"device_path"`
}
