package mcp

import (
	"context"
	"errors"
	"sync"
)

// Common errors for tests
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrNoDevices      = errors.New("no devices connected")
)

// MockCall records a method call for verification
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockAndroidApp is a mock implementation of AndroidApp for testing
type MockAndroidApp struct {
	mu    sync.Mutex
	Calls []MockCall

	// Device Management
	ListDevicesResult      []Device
	ListDevicesError       error
	SelectDeviceResult     Selection
	SelectDeviceError      error
	AutoSelectResult       Selection
	AutoSelectError        error
	GetDeviceInfoResult    DeviceInfo
	GetDeviceInfoError     error
	GetScreenSizeResult    ScreenSize
	GetScreenSizeError     error
	GetForegroundAppResult ForegroundApp
	GetForegroundAppError  error
	CheckHealthResult      HealthReport
	CheckHealthError       error

	// UI Inspection
	GetUILayoutResult        LayoutResult
	ListScreenElementsResult []ScreenElement
	ListScreenElementsError  error
	FindElementsResult       []UIElement
	FindBestElementResult    *UIElement

	// Screen Interaction
	TapResult        TapResult
	LongPressResult  TapResult
	TapElementResult ElementTapResult
	SwipeResult      SwipeResult
	SwipeDirResult   SwipeResult
	InputTextResult  TextInputResult
	PressKeyResult   KeyPressResult

	// Media Capture
	TakeScreenshotResult       ScreenshotResult
	StartRecordingResult       RecordingStartResult
	StopRecordingResult        RecordingStopResult
	ListActiveRecordingsResult []RecordingSummary

	// Logs
	GetLogcatResult          LogcatResult
	GetLogcatError           error
	SearchLogsResult         LogSearchResult
	SearchLogsError          error
	StartMonitoringResult    MonitorStartResult
	StartMonitoringError     error
	StopMonitoringResult     MonitorStopResult
	StopMonitoringError      error
	ListActiveMonitorsResult []MonitorSummary

	VersionResult string
}

// NewMockAndroidApp creates a mock with sensible defaults
func NewMockAndroidApp() *MockAndroidApp {
	return &MockAndroidApp{
		VersionResult: "test",
	}
}

// SampleDevice returns a ready device entry for tests
func SampleDevice(id string) Device {
	return Device{
		ID:     id,
		Status: "device",
		Properties: map[string]string{
			"model":   "Pixel_7",
			"product": "panther",
		},
	}
}

// SetupWithDevices configures the mock with connected devices
func (m *MockAndroidApp) SetupWithDevices(devices ...Device) {
	m.ListDevicesResult = devices
	if len(devices) > 0 {
		m.SelectDeviceResult = Selection{Selected: devices[0], Reason: "requested"}
		m.AutoSelectResult = Selection{Selected: devices[0], Reason: "first_physical"}
	}
}

// recordCall appends a call record under the mutex
func (m *MockAndroidApp) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// CallCount returns how many times the named method was called
func (m *MockAndroidApp) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Device Management

func (m *MockAndroidApp) ListDevices(ctx context.Context) ([]Device, error) {
	m.recordCall("ListDevices")
	return m.ListDevicesResult, m.ListDevicesError
}

func (m *MockAndroidApp) SelectDevice(ctx context.Context, deviceID string) (Selection, error) {
	m.recordCall("SelectDevice", deviceID)
	return m.SelectDeviceResult, m.SelectDeviceError
}

func (m *MockAndroidApp) AutoSelectDevice(ctx context.Context) (Selection, error) {
	m.recordCall("AutoSelectDevice")
	return m.AutoSelectResult, m.AutoSelectError
}

func (m *MockAndroidApp) GetDeviceInfo(ctx context.Context, deviceID string) (DeviceInfo, error) {
	m.recordCall("GetDeviceInfo", deviceID)
	return m.GetDeviceInfoResult, m.GetDeviceInfoError
}

func (m *MockAndroidApp) GetScreenSize(ctx context.Context, deviceID string) (ScreenSize, error) {
	m.recordCall("GetScreenSize", deviceID)
	return m.GetScreenSizeResult, m.GetScreenSizeError
}

func (m *MockAndroidApp) GetForegroundApp(ctx context.Context, deviceID string) (ForegroundApp, error) {
	m.recordCall("GetForegroundApp", deviceID)
	return m.GetForegroundAppResult, m.GetForegroundAppError
}

func (m *MockAndroidApp) CheckDeviceHealth(ctx context.Context, deviceID string) (HealthReport, error) {
	m.recordCall("CheckDeviceHealth", deviceID)
	return m.CheckHealthResult, m.CheckHealthError
}

// UI Inspection

func (m *MockAndroidApp) GetUILayout(ctx context.Context, compressed, includeInvisible bool) LayoutResult {
	m.recordCall("GetUILayout", compressed, includeInvisible)
	return m.GetUILayoutResult
}

func (m *MockAndroidApp) ListScreenElements(ctx context.Context, includeAll bool) ([]ScreenElement, error) {
	m.recordCall("ListScreenElements", includeAll)
	return m.ListScreenElementsResult, m.ListScreenElementsError
}

func (m *MockAndroidApp) FindElements(ctx context.Context, criteria FindCriteria) []UIElement {
	m.recordCall("FindElements", criteria)
	return m.FindElementsResult
}

func (m *MockAndroidApp) FindBestElement(ctx context.Context, criteria FindCriteria) *UIElement {
	m.recordCall("FindBestElement", criteria)
	return m.FindBestElementResult
}

// Screen Interaction

func (m *MockAndroidApp) Tap(ctx context.Context, x, y int) TapResult {
	m.recordCall("Tap", x, y)
	return m.TapResult
}

func (m *MockAndroidApp) LongPress(ctx context.Context, x, y, durationMS int) TapResult {
	m.recordCall("LongPress", x, y, durationMS)
	return m.LongPressResult
}

func (m *MockAndroidApp) TapElement(ctx context.Context, criteria FindCriteria, index int) ElementTapResult {
	m.recordCall("TapElement", criteria, index)
	return m.TapElementResult
}

func (m *MockAndroidApp) Swipe(ctx context.Context, startX, startY, endX, endY, durationMS int) SwipeResult {
	m.recordCall("Swipe", startX, startY, endX, endY, durationMS)
	return m.SwipeResult
}

func (m *MockAndroidApp) SwipeDirection(ctx context.Context, direction string, distance int, start *Point, durationMS int) SwipeResult {
	m.recordCall("SwipeDirection", direction, distance, start, durationMS)
	return m.SwipeDirResult
}

func (m *MockAndroidApp) InputText(ctx context.Context, text string, clearExisting, submit bool) TextInputResult {
	m.recordCall("InputText", text, clearExisting, submit)
	return m.InputTextResult
}

func (m *MockAndroidApp) PressKey(ctx context.Context, keycode string) KeyPressResult {
	m.recordCall("PressKey", keycode)
	return m.PressKeyResult
}

// Media Capture

func (m *MockAndroidApp) TakeScreenshot(ctx context.Context, filename string, pullToLocal bool, format string) ScreenshotResult {
	m.recordCall("TakeScreenshot", filename, pullToLocal, format)
	return m.TakeScreenshotResult
}

func (m *MockAndroidApp) StartRecording(ctx context.Context, filename string, timeLimit int, bitRate, sizeLimit string) RecordingStartResult {
	m.recordCall("StartRecording", filename, timeLimit, bitRate, sizeLimit)
	return m.StartRecordingResult
}

func (m *MockAndroidApp) StopRecording(ctx context.Context, recordingID string, pullToLocal bool) RecordingStopResult {
	m.recordCall("StopRecording", recordingID, pullToLocal)
	return m.StopRecordingResult
}

func (m *MockAndroidApp) ListActiveRecordings() []RecordingSummary {
	m.recordCall("ListActiveRecordings")
	return m.ListActiveRecordingsResult
}

// Logs

func (m *MockAndroidApp) GetLogcat(ctx context.Context, tagFilter, priority string, maxLines int, clearFirst bool, sinceTime string) (LogcatResult, error) {
	m.recordCall("GetLogcat", tagFilter, priority, maxLines, clearFirst, sinceTime)
	return m.GetLogcatResult, m.GetLogcatError
}

func (m *MockAndroidApp) SearchLogs(ctx context.Context, searchTerm, tagFilter, priority string, maxResults int) (LogSearchResult, error) {
	m.recordCall("SearchLogs", searchTerm, tagFilter, priority, maxResults)
	return m.SearchLogsResult, m.SearchLogsError
}

func (m *MockAndroidApp) StartLogMonitoring(ctx context.Context, tagFilter, priority, outputFile string) (MonitorStartResult, error) {
	m.recordCall("StartLogMonitoring", tagFilter, priority, outputFile)
	return m.StartMonitoringResult, m.StartMonitoringError
}

func (m *MockAndroidApp) StopLogMonitoring(ctx context.Context, monitorID string) (MonitorStopResult, error) {
	m.recordCall("StopLogMonitoring", monitorID)
	return m.StopMonitoringResult, m.StopMonitoringError
}

func (m *MockAndroidApp) ListActiveMonitors() []MonitorSummary {
	m.recordCall("ListActiveMonitors")
	return m.ListActiveMonitorsResult
}

// Utility

func (m *MockAndroidApp) ToolBudget(ctx context.Context, tool string) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

func (m *MockAndroidApp) Version() string {
	return m.VersionResult
}
