// Package mcp exposes Android device automation over the Model Context
// Protocol. External AI clients (like Claude Desktop) drive adb-backed
// operations through the tools registered here.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

// Type aliases from shared types package
// This avoids code duplication and ensures type consistency
type (
	Device           = types.Device
	DeviceInfo       = types.DeviceInfo
	ScreenSize       = types.ScreenSize
	HealthReport     = types.HealthReport
	HealthCheck      = types.HealthCheck
	ForegroundApp    = types.ForegroundApp
	Selection        = types.Selection
	Point            = types.Point
	FindCriteria     = types.FindCriteria
	UIElement        = types.UIElement
	ScreenElement    = types.ScreenElement
	LayoutResult     = types.LayoutResult
	TapResult        = types.TapResult
	ElementTapResult = types.ElementTapResult
	SwipeResult      = types.SwipeResult
	TextInputResult  = types.TextInputResult
	KeyPressResult   = types.KeyPressResult

	ScreenshotResult     = types.ScreenshotResult
	RecordingStartResult = types.RecordingStartResult
	RecordingStopResult  = types.RecordingStopResult
	RecordingSummary     = types.RecordingSummary

	LogcatResult       = types.LogcatResult
	LogSearchResult    = types.LogSearchResult
	MonitorStartResult = types.MonitorStartResult
	MonitorStopResult  = types.MonitorStopResult
	MonitorSummary     = types.MonitorSummary
)

// AndroidApp defines the methods the MCP server needs from the main App.
// This allows loose coupling between MCP and the main application.
type AndroidApp interface {
	// Device Management
	ListDevices(ctx context.Context) ([]Device, error)
	SelectDevice(ctx context.Context, deviceID string) (Selection, error)
	AutoSelectDevice(ctx context.Context) (Selection, error)
	GetDeviceInfo(ctx context.Context, deviceID string) (DeviceInfo, error)
	GetScreenSize(ctx context.Context, deviceID string) (ScreenSize, error)
	GetForegroundApp(ctx context.Context, deviceID string) (ForegroundApp, error)
	CheckDeviceHealth(ctx context.Context, deviceID string) (HealthReport, error)

	// UI Inspection
	GetUILayout(ctx context.Context, compressed, includeInvisible bool) LayoutResult
	ListScreenElements(ctx context.Context, includeAll bool) ([]ScreenElement, error)
	FindElements(ctx context.Context, criteria FindCriteria) []UIElement
	FindBestElement(ctx context.Context, criteria FindCriteria) *UIElement

	// Screen Interaction
	Tap(ctx context.Context, x, y int) TapResult
	LongPress(ctx context.Context, x, y, durationMS int) TapResult
	TapElement(ctx context.Context, criteria FindCriteria, index int) ElementTapResult
	Swipe(ctx context.Context, startX, startY, endX, endY, durationMS int) SwipeResult
	SwipeDirection(ctx context.Context, direction string, distance int, start *Point, durationMS int) SwipeResult
	InputText(ctx context.Context, text string, clearExisting, submit bool) TextInputResult
	PressKey(ctx context.Context, keycode string) KeyPressResult

	// Media Capture
	TakeScreenshot(ctx context.Context, filename string, pullToLocal bool, format string) ScreenshotResult
	StartRecording(ctx context.Context, filename string, timeLimit int, bitRate, sizeLimit string) RecordingStartResult
	StopRecording(ctx context.Context, recordingID string, pullToLocal bool) RecordingStopResult
	ListActiveRecordings() []RecordingSummary

	// Logs
	GetLogcat(ctx context.Context, tagFilter, priority string, maxLines int, clearFirst bool, sinceTime string) (LogcatResult, error)
	SearchLogs(ctx context.Context, searchTerm, tagFilter, priority string, maxResults int) (LogSearchResult, error)
	StartLogMonitoring(ctx context.Context, tagFilter, priority, outputFile string) (MonitorStartResult, error)
	StopLogMonitoring(ctx context.Context, monitorID string) (MonitorStopResult, error)
	ListActiveMonitors() []MonitorSummary

	// Utility
	ToolBudget(ctx context.Context, tool string) (context.Context, context.CancelFunc)
	Version() string
}

// MCPServer wraps the MCP server around an AndroidApp
type MCPServer struct {
	app       AndroidApp
	server    *server.MCPServer
	stdio     *server.StdioServer
	mu        sync.Mutex
	isRunning bool
}

// NewMCPServer creates a new MCP server for Android automation
func NewMCPServer(app AndroidApp) *MCPServer {
	mcpServer := server.NewMCPServer(
		"android-mcp-server",
		app.Version(),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	s := &MCPServer{
		app:    app,
		server: mcpServer,
	}

	s.registerTools()
	s.registerResources()

	return s
}

// registerTools registers all MCP tools
func (s *MCPServer) registerTools() {
	// Device Management Tools
	s.registerDeviceTools()

	// UI Inspection Tools
	s.registerUITools()

	// Screen Interaction Tools
	s.registerInputTools()

	// Media Capture Tools
	s.registerMediaTools()

	// Log Tools
	s.registerLogTools()
}

// registerResources registers all MCP resources
func (s *MCPServer) registerResources() {
	// Device list resource
	s.server.AddResource(
		mcp.NewResource(
			"device://list",
			"Connected Android devices",
			mcp.WithMIMEType("application/json"),
		),
		s.handleDevicesResource,
	)

	// Device info resource template
	s.server.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"device://{deviceId}",
			"Device information",
		),
		s.handleDeviceInfoResource,
	)
}

// withToolTimeout scopes the request context to the named tool's
// deadline budget. Every handler enters through this.
func (s *MCPServer) withToolTimeout(ctx context.Context, tool string) (context.Context, context.CancelFunc) {
	return s.app.ToolBudget(ctx, tool)
}

// Start starts the MCP server (blocking - for CLI mode)
// This method blocks until the server shuts down
func (s *MCPServer) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("MCP server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	return s.run()
}

// run runs the MCP server (blocking)
func (s *MCPServer) run() error {
	s.stdio = server.NewStdioServer(s.server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		<-sigChan
		cancel()
	}()

	// stdout carries the protocol; anything human-readable goes to stderr
	fmt.Fprintln(os.Stderr, "[MCP] Android MCP server started")
	err := s.stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[MCP] Server error: %v\n", err)
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	return err
}

// Stop stops the MCP server
func (s *MCPServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// The server stops when stdin is closed or the context is cancelled
	s.isRunning = false
}

// IsRunning returns whether the MCP server is running
func (s *MCPServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
