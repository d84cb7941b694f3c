package types

// LogFilter records which filters produced a logcat result.
type LogFilter struct {
	Tag       string `json:"tag,omitempty"`
	Priority  string `json:"priority"`
	MaxLines  int    `json:"max_lines"`
	SinceTime string `json:"since_time,omitempty"`
}

// LogcatResult is a parsed logcat dump.
type LogcatResult struct {
	Success       bool       `json:"success"`
	Action        string     `json:"action"` // "get_logcat"
	EntriesCount  int        `json:"entries_count"`
	Entries       []LogEntry `json:"entries"`
	FilterApplied LogFilter  `json:"filter_applied"`
	Error         string     `json:"error,omitempty"`
	Details       string     `json:"details,omitempty"`
}

// MonitorStartResult reports a newly started log monitor.
type MonitorStartResult struct {
	Success    bool   `json:"success"`
	Action     string `json:"action"` // "start_log_monitoring"
	MonitorID  string `json:"monitor_id"`
	TagFilter  string `json:"tag_filter,omitempty"`
	Priority   string `json:"priority"`
	OutputFile string `json:"output_file,omitempty"`
	ProcessID  int    `json:"process_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MonitorStopResult reports a stopped log monitor.
type MonitorStopResult struct {
	Success          bool     `json:"success"`
	Action           string   `json:"action"` // "stop_monitoring"
	MonitorID        string   `json:"monitor_id"`
	DurationSeconds  float64  `json:"duration_seconds,omitempty"`
	EntriesProcessed int64    `json:"entries_processed"`
	OutputFile       string   `json:"output_file,omitempty"`
	ActiveMonitors   []string `json:"active_monitors,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// LogSearchResult is the outcome of searching recent logs.
type LogSearchResult struct {
	Success          bool       `json:"success"`
	Action           string     `json:"action"` // "search_logs"
	SearchTerm       string     `json:"search_term"`
	MatchesFound     int        `json:"matches_found"`
	Entries          []LogEntry `json:"entries"`
	SearchParameters LogFilter  `json:"search_parameters"`
	Error            string     `json:"error,omitempty"`
}
