package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jaye773/android-mcp-server/pkg/settings"
)

// App is the server core. It owns the adb binary, the device
// selection, and the book-keeping for long-running device work
// (screen recordings, log monitors). All exported methods are safe
// for concurrent use; tool calls arrive on independent goroutines.
type App struct {
	ctx     context.Context
	cfg     Config
	adbPath string
	version string

	// settings persists the pinned device across runs
	settings *settings.Store

	// Device selection
	selectedDevice string
	deviceMu       sync.RWMutex

	// Active screen recordings, keyed {device}_{filename}
	activeRecordings map[string]*recordingSession
	recordingsMu     sync.Mutex

	// Active logcat monitors, keyed logmon_{device}_{timestamp}
	activeMonitors map[string]*logMonitorSession
	monitorsMu     sync.Mutex
}

// NewApp creates a new App instance
func NewApp(cfg Config, version string) *App {
	return &App{
		cfg:              cfg,
		version:          version,
		activeRecordings: make(map[string]*recordingSession),
		activeMonitors:   make(map[string]*logMonitorSession),
	}
}

// Startup resolves the adb binary, prepares output directories and
// restores the previously pinned device. Called once before the MCP
// transport starts accepting requests.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	adbPath, err := resolveADBPath(a.cfg.ADBPath)
	if err != nil {
		return err
	}
	a.adbPath = adbPath

	verCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := a.newADBCommand(verCtx, "version").CombinedOutput()
	if err != nil {
		return NewError(ErrSystemInitFailed,
			fmt.Sprintf("adb at %s is not runnable: %s", adbPath, strings.TrimSpace(string(out))), err)
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0755); err != nil {
		return NewError(ErrSystemInitFailed, "failed to create output directory", err)
	}

	store, err := settings.Open(settings.Config{AppName: ConfigDirName})
	if err != nil {
		// Settings are a convenience; run without persistence.
		LogWarn("app").Err(err).Msg("settings store unavailable, device pinning disabled")
	} else {
		a.settings = store
		if pinned := store.PinnedDevice(); pinned != "" {
			a.deviceMu.Lock()
			a.selectedDevice = pinned
			a.deviceMu.Unlock()
			LogInfo("app").Str("device", pinned).Msg("restored pinned device")
		}
	}

	LogInfo("app").
		Str("adb", adbPath).
		Str("version", a.version).
		Str("output_dir", a.cfg.OutputDir).
		Msg("app initialized")
	return nil
}

// Shutdown stops active recordings and monitors and persists settings
func (a *App) Shutdown(ctx context.Context) {
	a.stopAllRecordings(ctx)
	a.stopAllMonitors()

	if a.settings != nil {
		if err := a.settings.Close(); err != nil {
			LogWarn("app").Err(err).Msg("failed to persist settings")
		}
	}
	LogInfo("app").Msg("app shut down")
}

// Version returns the server version string
func (a *App) Version() string {
	return a.version
}

// ToolBudget scopes ctx to the named tool's deadline budget. Tool
// handlers call this once on entry; all nested stages consume the
// same budget.
func (a *App) ToolBudget(ctx context.Context, tool string) (context.Context, context.CancelFunc) {
	return StartToolBudget(ctx, tool)
}

// currentDevice returns the selected device ID, or "" when none
func (a *App) currentDevice() string {
	a.deviceMu.RLock()
	defer a.deviceMu.RUnlock()
	return a.selectedDevice
}

// setCurrentDevice records the selection and pins it for future runs
func (a *App) setCurrentDevice(deviceID string) {
	a.deviceMu.Lock()
	a.selectedDevice = deviceID
	a.deviceMu.Unlock()

	if a.settings != nil {
		a.settings.SetPinnedDevice(deviceID)
		a.settings.TouchDevice(deviceID, time.Now().Unix())
	}
}
