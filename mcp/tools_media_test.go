package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// ==================== screen_screenshot ====================

func TestHandleScreenshot_ReturnsImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screen.png")
	if err := os.WriteFile(path, []byte("not-really-a-png"), 0o644); err != nil {
		t.Fatal(err)
	}

	mock := NewMockAndroidApp()
	mock.TakeScreenshotResult = ScreenshotResult{
		Success:       true,
		Action:        "screenshot",
		Filename:      "screen.png",
		Format:        "png",
		LocalPath:     path,
		FileSizeHuman: "16B",
	}
	server := NewMCPServer(mock)

	result, err := server.handleScreenshot(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	hasImage := false
	for _, c := range result.Content {
		if img, ok := c.(mcp.ImageContent); ok {
			hasImage = true
			if img.MIMEType != "image/png" {
				t.Errorf("MIME type = %s, want image/png", img.MIMEType)
			}
		}
	}
	if !hasImage {
		t.Error("Result should include the image inline")
	}

	text := getTextContent(result)
	if !strings.Contains(text, "screen.png") || !strings.Contains(text, "16B") {
		t.Errorf("Summary should name the file and size, got: %s", text)
	}
}

func TestHandleScreenshot_PullFailed(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.TakeScreenshotResult = ScreenshotResult{
		Success:    true,
		Filename:   "screen.png",
		DevicePath: "/sdcard/screen.png",
		PullFailed: true,
		PullError:  "device disconnected during pull",
	}
	server := NewMCPServer(mock)

	result, err := server.handleScreenshot(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "pull failed") {
		t.Error("Summary should warn about the failed pull")
	}
	if !strings.Contains(text, "/sdcard/screen.png") {
		t.Error("Summary should name the device path")
	}
}

func TestHandleScreenshot_Failure(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.TakeScreenshotResult = ScreenshotResult{Success: false, Error: "screencap failed"}
	server := NewMCPServer(mock)

	result, err := server.handleScreenshot(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Failed screenshot should set IsError")
	}
}

// ==================== record_start ====================

func TestHandleRecordStart_Success(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.StartRecordingResult = RecordingStartResult{
		Success:     true,
		RecordingID: "rec_abc123",
		Filename:    "demo.mp4",
		TimeLimit:   180,
	}
	server := NewMCPServer(mock)

	result, err := server.handleRecordStart(context.Background(),
		makeToolRequest(map[string]interface{}{"filename": "demo.mp4", "time_limit": float64(180)}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "rec_abc123") {
		t.Error("Summary should include the recording id")
	}
	if !strings.Contains(text, "record_stop") {
		t.Error("Summary should point at record_stop")
	}

	call := mock.Calls[0]
	if call.Args[0] != "demo.mp4" || call.Args[1] != 180 {
		t.Errorf("StartRecording called with %+v", call.Args)
	}
}

// ==================== record_stop ====================

func TestHandleRecordStop_Success(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.StopRecordingResult = RecordingStopResult{
		Success:         true,
		RecordingID:     "rec_abc123",
		DurationSeconds: 12.5,
		LocalPath:       "/tmp/demo.mp4",
		FileSizeHuman:   "2.4MB",
	}
	server := NewMCPServer(mock)

	result, err := server.handleRecordStop(context.Background(),
		makeToolRequest(map[string]interface{}{"recording_id": "rec_abc123"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "stopped after 12.5s") {
		t.Errorf("Summary should state the duration, got: %s", text)
	}
	if !strings.Contains(text, "/tmp/demo.mp4") {
		t.Error("Summary should name the local file")
	}
}

func TestHandleRecordStop_OrphanedFile(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.StopRecordingResult = RecordingStopResult{
		Success:            true,
		RecordingID:        "rec_abc123",
		OrphanedDevicePath: "/sdcard/demo.mp4",
	}
	server := NewMCPServer(mock)

	result, err := server.handleRecordStop(context.Background(),
		makeToolRequest(map[string]interface{}{"recording_id": "rec_abc123"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "still be on the device at /sdcard/demo.mp4") {
		t.Error("Summary should warn about the orphaned device file")
	}
}

func TestHandleRecordStop_RequiresID(t *testing.T) {
	mock := NewMockAndroidApp()
	server := NewMCPServer(mock)

	_, err := server.handleRecordStop(context.Background(), makeToolRequest(nil))
	if err == nil {
		t.Error("Missing recording_id should be an error")
	}
}

// ==================== record_list ====================

func TestHandleRecordList(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.ListActiveRecordingsResult = []RecordingSummary{
		{RecordingID: "rec_1", Filename: "a.mp4", DurationSeconds: 5.2, TimeLimit: 180},
	}
	server := NewMCPServer(mock)

	result, err := server.handleRecordList(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "rec_1 (a.mp4)") {
		t.Errorf("Result should list the recording, got: %s", getTextContent(result))
	}
}

func TestHandleRecordList_Empty(t *testing.T) {
	mock := NewMockAndroidApp()
	server := NewMCPServer(mock)

	result, err := server.handleRecordList(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "No active recordings") {
		t.Error("Result should state that nothing is recording")
	}
}
