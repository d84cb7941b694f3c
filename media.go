package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/docker/go-units"
	"github.com/jaye773/android-mcp-server/pkg/types"
)

// ========================================
// Media capture
// ========================================

// recordingSession tracks one running screenrecord process
type recordingSession struct {
	cmd        *exec.Cmd
	deviceID   string
	filename   string
	devicePath string
	localPath  string
	startTime  time.Time
	timeLimit  int
	done       chan struct{} // closed when the process exits
}

// sanitizeMediaFilename rejects names that would escape the staging
// directories on either side.
func sanitizeMediaFilename(filename string) error {
	if filename == "" {
		return nil
	}
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return fmt.Errorf("filename %q must not contain path separators", filename)
	}
	return nil
}

// TakeScreenshot captures the screen, pulls the image into the output
// directory and removes the device-side copy.
func (a *App) TakeScreenshot(ctx context.Context, filename string, pullToLocal bool, format string) types.ScreenshotResult {
	if format != "png" && format != "jpg" {
		format = "png"
	}
	if err := sanitizeMediaFilename(filename); err != nil {
		return types.ScreenshotResult{Action: "screenshot", Error: err.Error()}
	}

	if filename == "" {
		filename = fmt.Sprintf("screenshot_%s.%s", time.Now().Format("20060102_150405"), format)
	}
	if !strings.HasSuffix(filename, "."+format) {
		filename += "." + format
	}

	devicePath := a.cfg.DeviceMediaDir + "/" + filename
	localPath := filepath.Join(a.cfg.OutputDir, filename)

	res := types.ScreenshotResult{
		Action:     "screenshot",
		Filename:   filename,
		DevicePath: devicePath,
		Format:     format,
	}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	capture, err := a.ExecuteADB(ctx, deviceID,
		fmt.Sprintf("-s {device} shell screencap -p %s", devicePath))
	if err != nil || !capture.Success {
		res.Error = "Screenshot capture failed"
		res.Details = strings.TrimSpace(capture.Stderr)
		return res
	}
	res.Success = true

	if pullToLocal {
		size, pullErr := a.pullDeviceFile(ctx, deviceID, devicePath, localPath)
		if pullErr != nil {
			// Keep the device-side copy so it can still be retrieved
			// manually after a failed pull.
			res.PullFailed = true
			res.PullError = pullErr.Error()
		} else {
			res.LocalPath = localPath
			res.FileSizeBytes = size
			res.FileSizeHuman = units.HumanSize(float64(size))

			// Device-side copy is staging only
			if _, err := a.ExecuteADB(ctx, deviceID, fmt.Sprintf("-s {device} shell rm %s", devicePath)); err != nil {
				LogWarn("media").Str("path", devicePath).Err(err).Msg("failed to remove device-side screenshot")
			}
		}
	}

	LogInfo("media").Str("device", deviceID).Str("file", filename).Bool("pulled", pullToLocal).Msg("screenshot captured")
	return res
}

// pullDeviceFile copies a device file to the host and returns its size
func (a *App) pullDeviceFile(ctx context.Context, deviceID, devicePath, localPath string) (int64, error) {
	result, err := a.ExecuteADB(ctx, deviceID,
		fmt.Sprintf("-s {device} pull %s %s", shellQuote(devicePath), shellQuote(localPath)))
	if err != nil {
		return 0, err
	}
	if !result.Success {
		return 0, NewError(ErrMediaPullFailed,
			fmt.Sprintf("pull failed: %s", strings.TrimSpace(result.Stderr)), nil)
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return 0, NewError(ErrMediaPullFailed, "pulled file missing on host", err)
	}
	return info.Size(), nil
}

// StartRecording begins a screenrecord session on the device. The
// process runs detached from the tool call; StopRecording (or the
// device-side time limit) ends it.
func (a *App) StartRecording(ctx context.Context, filename string, timeLimit int, bitRate, sizeLimit string) types.RecordingStartResult {
	if err := sanitizeMediaFilename(filename); err != nil {
		return types.RecordingStartResult{Action: "start_recording", Error: err.Error()}
	}

	if filename == "" {
		filename = fmt.Sprintf("recording_%s.mp4", time.Now().Format("20060102_150405"))
	}
	if !strings.HasSuffix(filename, ".mp4") {
		filename += ".mp4"
	}
	if timeLimit <= 0 || timeLimit > 180 {
		timeLimit = 180
	}

	res := types.RecordingStartResult{
		Action:    "start_recording",
		Filename:  filename,
		TimeLimit: timeLimit,
		BitRate:   bitRate,
		SizeLimit: sizeLimit,
	}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	devicePath := a.cfg.DeviceMediaDir + "/" + filename
	res.DevicePath = devicePath
	recordingID := fmt.Sprintf("%s_%s", deviceID, filename)

	// Fast duplicate check before spawning; reserveRecording below is
	// the authoritative claim.
	a.recordingsMu.Lock()
	if _, exists := a.activeRecordings[recordingID]; exists {
		a.recordingsMu.Unlock()
		res.Error = fmt.Sprintf("recording %s is already active", recordingID)
		return res
	}
	a.recordingsMu.Unlock()

	args := []string{"-s", deviceID, "shell", "screenrecord"}
	if bitRate != "" {
		args = append(args, "--bit-rate", bitRate)
	}
	if sizeLimit != "" {
		args = append(args, "--size", sizeLimit)
	}
	args = append(args, "--time-limit", strconv.Itoa(timeLimit), devicePath)

	// Plain background context: the recording must outlive this tool call
	cmd := a.newADBCommand(context.Background(), args...)
	if err := cmd.Start(); err != nil {
		res.Error = fmt.Sprintf("failed to start recording: %v", err)
		return res
	}

	session := &recordingSession{
		cmd:        cmd,
		deviceID:   deviceID,
		filename:   filename,
		devicePath: devicePath,
		localPath:  filepath.Join(a.cfg.OutputDir, filename),
		startTime:  time.Now(),
		timeLimit:  timeLimit,
		done:       make(chan struct{}),
	}
	go func() {
		_ = cmd.Wait()
		close(session.done)
	}()

	if !a.reserveRecording(recordingID, session) {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		res.Error = fmt.Sprintf("recording %s is already active", recordingID)
		return res
	}

	res.Success = true
	res.RecordingID = recordingID
	res.ProcessID = cmd.Process.Pid
	LogInfo("media").Str("recording_id", recordingID).Int("time_limit", timeLimit).Msg("screen recording started")
	return res
}

// reserveRecording claims an ID for a new session. The existence check
// and the insert share one critical section, so two concurrent starts
// cannot both register the same ID; the loser must kill its own
// screenrecord process.
func (a *App) reserveRecording(recordingID string, session *recordingSession) bool {
	a.recordingsMu.Lock()
	defer a.recordingsMu.Unlock()
	if _, exists := a.activeRecordings[recordingID]; exists {
		return false
	}
	a.activeRecordings[recordingID] = session
	return true
}

// StopRecording ends a recording session and pulls the file. The
// session entry is removed no matter how the stop goes, so a wedged
// process can never block future recordings.
func (a *App) StopRecording(ctx context.Context, recordingID string, pullToLocal bool) types.RecordingStopResult {
	res := types.RecordingStopResult{Action: "stop_recording", RecordingID: recordingID}

	a.recordingsMu.Lock()
	session, ok := a.activeRecordings[recordingID]
	if !ok {
		active := make([]string, 0, len(a.activeRecordings))
		for id := range a.activeRecordings {
			active = append(active, id)
		}
		a.recordingsMu.Unlock()
		res.Error = fmt.Sprintf("recording %s not found", recordingID)
		res.ActiveRecordings = active
		return res
	}
	delete(a.activeRecordings, recordingID)
	a.recordingsMu.Unlock()

	res.Filename = session.filename
	res.DevicePath = session.devicePath

	// SIGTERM lets screenrecord finalize the mp4 moov atom
	if session.cmd.Process != nil {
		_ = session.cmd.Process.Signal(syscall.SIGTERM)
	}

	select {
	case <-session.done:
	case <-time.After(10 * time.Second):
		if session.cmd.Process != nil {
			_ = session.cmd.Process.Kill()
		}
		res.Error = "recording stop timed out - force killed"
		res.OrphanedDevicePath = session.devicePath
		LogWarn("media").
			Str("recording_id", recordingID).
			Str("device_path", session.devicePath).
			Msg("recording force killed, device-side file may be orphaned")
		return res
	}

	res.Success = true
	res.DurationSeconds = time.Since(session.startTime).Seconds()

	if pullToLocal {
		// Give the device a moment to flush the file
		sleepCtx(ctx, 2*time.Second)

		size, err := a.pullDeviceFile(ctx, session.deviceID, session.devicePath, session.localPath)
		if err != nil {
			res.PullFailed = true
			res.PullError = err.Error()
			res.OrphanedDevicePath = session.devicePath
			LogWarn("media").
				Str("recording_id", recordingID).
				Str("device_path", session.devicePath).
				Err(err).
				Msg("recording pull failed, device-side file left in place")
		} else {
			res.LocalPath = session.localPath
			res.FileSizeBytes = size
			res.FileSizeHuman = units.HumanSize(float64(size))

			if _, err := a.ExecuteADB(ctx, session.deviceID,
				fmt.Sprintf("-s {device} shell rm %s", session.devicePath)); err != nil {
				LogWarn("media").Str("path", session.devicePath).Err(err).Msg("failed to remove device-side recording")
			}
		}
	}

	LogInfo("media").
		Str("recording_id", recordingID).
		Float64("duration_s", res.DurationSeconds).
		Msg("screen recording stopped")
	return res
}

// StopAllRecordings stops every active session
func (a *App) StopAllRecordings(ctx context.Context, pullToLocal bool) []types.RecordingStopResult {
	a.recordingsMu.Lock()
	ids := make([]string, 0, len(a.activeRecordings))
	for id := range a.activeRecordings {
		ids = append(ids, id)
	}
	a.recordingsMu.Unlock()

	results := make([]types.RecordingStopResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, a.StopRecording(ctx, id, pullToLocal))
	}
	return results
}

// ListActiveRecordings returns a summary of each running session
func (a *App) ListActiveRecordings() []types.RecordingSummary {
	a.recordingsMu.Lock()
	defer a.recordingsMu.Unlock()

	summaries := make([]types.RecordingSummary, 0, len(a.activeRecordings))
	for id, session := range a.activeRecordings {
		summaries = append(summaries, types.RecordingSummary{
			RecordingID:     id,
			Filename:        session.filename,
			DurationSeconds: time.Since(session.startTime).Seconds(),
			TimeLimit:       session.timeLimit,
			DevicePath:      session.devicePath,
		})
	}
	return summaries
}

// stopAllRecordings is the shutdown path: kill processes without
// pulling files, but flag what stays behind on the device.
func (a *App) stopAllRecordings(ctx context.Context) {
	a.recordingsMu.Lock()
	sessions := make(map[string]*recordingSession, len(a.activeRecordings))
	for id, s := range a.activeRecordings {
		sessions[id] = s
	}
	a.activeRecordings = make(map[string]*recordingSession)
	a.recordingsMu.Unlock()

	for id, session := range sessions {
		if session.cmd.Process != nil {
			_ = session.cmd.Process.Kill()
		}
		LogWarn("media").
			Str("recording_id", id).
			Str("device_path", session.devicePath).
			Msg("recording terminated at shutdown, device-side file may remain")
	}
}
