package types

// ScreenshotResult reports a screen capture.
type ScreenshotResult struct {
	Success       bool   `json:"success"`
	Action        string `json:"action"` // "screenshot"
	Filename      string `json:"filename"`
	DevicePath    string `json:"device_path"`
	Format        string `json:"format"`
	LocalPath     string `json:"local_path,omitempty"`
	FileSizeBytes int64  `json:"file_size_bytes,omitempty"`
	FileSizeHuman string `json:"file_size,omitempty"`
	PullFailed    bool   `json:"pull_failed,omitempty"`
	PullError     string `json:"pull_error,omitempty"`
	Error         string `json:"error,omitempty"`
	Details       string `json:"details,omitempty"`
}

// RecordingStartResult reports a newly started screen recording.
type RecordingStartResult struct {
	Success     bool   `json:"success"`
	Action      string `json:"action"` // "start_recording"
	RecordingID string `json:"recording_id"`
	Filename    string `json:"filename"`
	DevicePath  string `json:"device_path"`
	TimeLimit   int    `json:"time_limit"`
	BitRate     string `json:"bit_rate,omitempty"`
	SizeLimit   string `json:"size_limit,omitempty"`
	ProcessID   int    `json:"process_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RecordingStopResult reports a stopped screen recording.
type RecordingStopResult struct {
	Success         bool    `json:"success"`
	Action          string  `json:"action"` // "stop_recording"
	RecordingID     string  `json:"recording_id"`
	Filename        string  `json:"filename,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	DevicePath      string  `json:"device_path,omitempty"`
	LocalPath       string  `json:"local_path,omitempty"`
	FileSizeBytes   int64   `json:"file_size_bytes,omitempty"`
	FileSizeHuman   string  `json:"file_size,omitempty"`
	PullFailed      bool    `json:"pull_failed,omitempty"`
	PullError       string  `json:"pull_error,omitempty"`
	// OrphanedDevicePath is set when the recording file may have been
	// left behind on the device after a failed stop.
	OrphanedDevicePath string   `json:"orphaned_device_path,omitempty"`
	ActiveRecordings   []string `json:"active_recordings,omitempty"`
	Error              string   `json:"error,omitempty"`
}
