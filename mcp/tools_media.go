package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerMediaTools registers screenshot and recording tools
func (s *MCPServer) registerMediaTools() {
	// screen_screenshot - Take a screenshot
	s.server.AddTool(
		mcp.NewTool("screen_screenshot",
			mcp.WithDescription("Take a screenshot of the selected device and return it as a base64 PNG image along with file metadata"),
			mcp.WithString("filename",
				mcp.Description("Filename for the screenshot (default: timestamped)"),
			),
			mcp.WithBoolean("pull",
				mcp.Description("Pull the screenshot to the local output directory (default: true)"),
			),
			mcp.WithString("format",
				mcp.Description("Image format: png or jpg (default: png)"),
			),
		),
		s.handleScreenshot,
	)

	// record_start - Start a screen recording
	s.server.AddTool(
		mcp.NewTool("record_start",
			mcp.WithDescription("Start recording the device screen with screenrecord. The recording runs in the background until record_stop or the time limit"),
			mcp.WithString("filename",
				mcp.Description("Filename for the recording (default: timestamped .mp4)"),
			),
			mcp.WithNumber("time_limit",
				mcp.Description("Maximum recording length in seconds, up to 180 (default: 180)"),
			),
			mcp.WithString("bit_rate",
				mcp.Description("Video bit rate, e.g. 4M (optional)"),
			),
			mcp.WithString("size_limit",
				mcp.Description("Video resolution, e.g. 1280x720 (optional)"),
			),
		),
		s.handleRecordStart,
	)

	// record_stop - Stop a screen recording
	s.server.AddTool(
		mcp.NewTool("record_stop",
			mcp.WithDescription("Stop an active screen recording and pull the video file from the device"),
			mcp.WithString("recording_id",
				mcp.Required(),
				mcp.Description("Recording ID returned by record_start"),
			),
			mcp.WithBoolean("pull",
				mcp.Description("Pull the video to the local output directory (default: true)"),
			),
		),
		s.handleRecordStop,
	)

	// record_list - List active recordings
	s.server.AddTool(
		mcp.NewTool("record_list",
			mcp.WithDescription("List currently active screen recordings"),
		),
		s.handleRecordList,
	)
}

// Tool handlers

func (s *MCPServer) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "take_screenshot")
	defer cancel()

	args := request.GetArguments()
	result := s.app.TakeScreenshot(ctx,
		argString(args, "filename"),
		argBool(args, "pull", true),
		argString(args, "format"))
	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("Screenshot failed: %s", result.Error), result), nil
	}

	contents := []mcp.Content{}

	// Return the image inline when it was pulled locally
	if result.LocalPath != "" {
		if imageData, err := os.ReadFile(result.LocalPath); err == nil {
			mime := "image/png"
			if result.Format == "jpg" {
				mime = "image/jpeg"
			}
			contents = append(contents, mcp.NewImageContent(base64.StdEncoding.EncodeToString(imageData), mime))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Screenshot captured: %s", result.Filename)
	if result.LocalPath != "" {
		fmt.Fprintf(&b, "\nSaved to: %s (%s)", result.LocalPath, result.FileSizeHuman)
	} else {
		fmt.Fprintf(&b, "\nDevice path: %s", result.DevicePath)
	}
	if result.PullFailed {
		fmt.Fprintf(&b, "\nWarning: pull failed (%s); file remains on the device", result.PullError)
	}
	contents = append(contents, mcp.NewTextContent(b.String()))

	return &mcp.CallToolResult{Content: contents}, nil
}

func (s *MCPServer) handleRecordStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "start_screen_recording")
	defer cancel()

	args := request.GetArguments()
	result := s.app.StartRecording(ctx,
		argString(args, "filename"),
		argInt(args, "time_limit", 0),
		argString(args, "bit_rate"),
		argString(args, "size_limit"))
	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("Recording start failed: %s", result.Error), result), nil
	}

	summary := fmt.Sprintf("Recording started: %s (limit %ds)\nStop it with record_stop using recording_id %q",
		result.Filename, result.TimeLimit, result.RecordingID)
	return jsonResult(summary, result), nil
}

func (s *MCPServer) handleRecordStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "stop_screen_recording")
	defer cancel()

	args := request.GetArguments()
	recordingID := argString(args, "recording_id")
	if recordingID == "" {
		return nil, fmt.Errorf("recording_id is required")
	}

	result := s.app.StopRecording(ctx, recordingID, argBool(args, "pull", true))
	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("Recording stop failed: %s", result.Error), result), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recording stopped after %.1fs", result.DurationSeconds)
	if result.LocalPath != "" {
		fmt.Fprintf(&b, "\nSaved to: %s (%s)", result.LocalPath, result.FileSizeHuman)
	}
	if result.OrphanedDevicePath != "" {
		fmt.Fprintf(&b, "\nWarning: the video may still be on the device at %s", result.OrphanedDevicePath)
	}
	return jsonResult(b.String(), result), nil
}

func (s *MCPServer) handleRecordList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordings := s.app.ListActiveRecordings()
	if len(recordings) == 0 {
		return textResult("No active recordings"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d active recording(s):\n\n", len(recordings))
	for i, r := range recordings {
		fmt.Fprintf(&b, "%d. %s (%s), running %.1fs of %ds\n",
			i+1, r.RecordingID, r.Filename, r.DurationSeconds, r.TimeLimit)
	}
	return jsonResult(b.String(), recordings), nil
}
