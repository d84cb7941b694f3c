package main

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

// deviceIDPattern validates deviceId formats:
// - USB serials: "1234567890ABCDEF", "emulator-5554"
// - wireless devices: "192.168.1.100:5555"
// - mDNS devices: "adb-xxxxx._adb-tls-connect._tcp."
var deviceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._:\-]+$`)

// ValidateDeviceID checks that a device ID is safe to splice into an
// adb command line.
func ValidateDeviceID(deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("device ID cannot be empty")
	}
	if len(deviceID) > 256 {
		return fmt.Errorf("device ID too long (max 256 characters)")
	}
	if !deviceIDPattern.MatchString(deviceID) {
		return fmt.Errorf("invalid device ID format: contains illegal characters")
	}
	dangerousPatterns := []string{";", "&&", "||", "|", "`", "$", "(", ")", "{", "}", "<", ">", "!", "'", "\"", "\\"}
	for _, p := range dangerousPatterns {
		if strings.Contains(deviceID, p) {
			return fmt.Errorf("invalid device ID format: contains dangerous character %q", p)
		}
	}
	return nil
}

// ========================================
// Device listing and selection
// ========================================

// ListDevices returns every device adb currently knows about,
// regardless of state.
func (a *App) ListDevices(ctx context.Context) ([]types.Device, error) {
	result, err := a.ExecuteADBTimeout(ctx, "", cmdDevicesList, 10*time.Second)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, NewError(ErrADBDaemon,
			fmt.Sprintf("adb devices failed: %s", strings.TrimSpace(result.Stderr)), nil)
	}
	return parseDeviceList(result.Stdout), nil
}

// parseDeviceList parses `adb devices -l` output
func parseDeviceList(output string) []types.Device {
	var devices []types.Device

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices attached") || strings.HasPrefix(line, "*") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		dev := types.Device{
			ID:         fields[0],
			Status:     fields[1],
			Properties: make(map[string]string),
		}
		// Trailing key:value pairs: product, model, device, transport_id
		for _, field := range fields[2:] {
			if k, v, ok := strings.Cut(field, ":"); ok {
				dev.Properties[k] = v
			}
		}
		devices = append(devices, dev)
	}
	return devices
}

// SelectDevice makes deviceID the target of subsequent operations.
// The device must currently be connected and authorized.
func (a *App) SelectDevice(ctx context.Context, deviceID string) (types.Selection, error) {
	if err := ValidateDeviceID(deviceID); err != nil {
		return types.Selection{}, NewError(ErrInvalidParameter, "invalid device ID", err)
	}

	devices, err := a.ListDevices(ctx)
	if err != nil {
		return types.Selection{}, err
	}

	for _, dev := range devices {
		if dev.ID != deviceID {
			continue
		}
		switch dev.Status {
		case "device":
			a.setCurrentDevice(deviceID)
			LogInfo("device").Str("device", deviceID).Msg("device selected")
			return types.Selection{Selected: dev, Reason: "manual_selection"}, nil
		case "unauthorized":
			return types.Selection{}, Errorf(ErrDeviceUnauthorized,
				"device %s is unauthorized; accept the debugging prompt on the device", deviceID)
		case "offline":
			return types.Selection{}, Errorf(ErrDeviceOffline,
				"device %s is offline", deviceID)
		default:
			return types.Selection{}, Errorf(ErrDeviceNotResponsive,
				"device %s is in state %q, not ready", deviceID, dev.Status)
		}
	}

	return types.Selection{}, Errorf(ErrDeviceNotFound,
		"device %s is not connected (%d devices available)", deviceID, len(devices))
}

// AutoSelectDevice picks a target device without user input.
//
// Priority:
//  1. previously selected device, if still connected and ready
//  2. first physical device in "device" state
//  3. first emulator in "device" state
//  4. error listing whatever was found
func (a *App) AutoSelectDevice(ctx context.Context) (types.Selection, error) {
	devices, err := a.ListDevices(ctx)
	if err != nil {
		return types.Selection{}, err
	}
	if len(devices) == 0 {
		return types.Selection{}, NewError(ErrNoDevicesFound, DefaultMessage(ErrNoDevicesFound), nil)
	}

	sel, err := chooseDevice(devices, a.currentDevice())
	if err != nil {
		return types.Selection{}, err
	}

	if sel.Reason != "previous_selection" {
		a.setCurrentDevice(sel.Selected.ID)
		LogInfo("device").
			Str("device", sel.Selected.ID).
			Str("reason", sel.Reason).
			Msg("device auto-selected")
	}
	return sel, nil
}

// chooseDevice applies the auto-selection priority to a device list
func chooseDevice(devices []types.Device, previous string) (types.Selection, error) {
	if previous != "" {
		for _, dev := range devices {
			if dev.ID == previous && dev.Status == "device" {
				return types.Selection{Selected: dev, Reason: "previous_selection"}, nil
			}
		}
	}

	for _, dev := range devices {
		if dev.Status == "device" && !dev.IsEmulator() {
			return types.Selection{Selected: dev, Reason: "first_physical"}, nil
		}
	}

	for _, dev := range devices {
		if dev.Status == "device" && dev.IsEmulator() {
			return types.Selection{Selected: dev, Reason: "first_emulator"}, nil
		}
	}

	states := make([]string, 0, len(devices))
	for _, dev := range devices {
		states = append(states, fmt.Sprintf("%s (%s)", dev.ID, dev.Status))
	}
	return types.Selection{}, Errorf(ErrDeviceNotResponsive,
		"no devices in ready state: %s", strings.Join(states, ", "))
}

// requireDevice returns the device to operate on, auto-selecting when
// nothing is selected yet.
func (a *App) requireDevice(ctx context.Context) (string, error) {
	if dev := a.currentDevice(); dev != "" {
		return dev, nil
	}
	sel, err := a.AutoSelectDevice(ctx)
	if err != nil {
		return "", err
	}
	return sel.Selected.ID, nil
}

// ========================================
// Device health
// ========================================

// CheckDeviceHealth runs connectivity, screen-state and UI-service
// probes against the device and combines them according to the
// configured policy (all / any / quorum).
func (a *App) CheckDeviceHealth(ctx context.Context, deviceID string) (types.HealthReport, error) {
	if deviceID == "" {
		deviceID = a.currentDevice()
	}
	if deviceID == "" {
		return types.HealthReport{}, Errorf(ErrDeviceNotFound, "no device selected")
	}

	checks := []struct {
		name    string
		command string
		passed  func(out string) bool
	}{
		{
			name:    "connectivity",
			command: "-s {device} shell echo connected",
			passed: func(out string) bool {
				return strings.Contains(strings.ToLower(out), "connected")
			},
		},
		{
			name:    "screen_state",
			command: "-s {device} shell dumpsys power | grep 'Display Power'",
			passed: func(out string) bool {
				return strings.Contains(out, "state=ON")
			},
		},
		{
			name:    "ui_service",
			command: "-s {device} shell service check uiautomator",
			passed: func(out string) bool {
				// "Service uiautomator: found" or "not found"; the
				// service only registers while a dump is running, so
				// a response at all means the service manager works.
				return strings.Contains(out, "Service uiautomator")
			},
		},
	}

	report := types.HealthReport{
		DeviceID: deviceID,
		Policy:   a.cfg.HealthPolicy,
		Checks:   make(map[string]types.HealthCheck, len(checks)),
	}

	passedCount := 0
	for _, check := range checks {
		result, err := a.ExecuteADBTimeout(ctx, deviceID, check.command, StageBudget(ctx, 0.4, 10*time.Second))
		out := strings.TrimSpace(result.Stdout)
		ok := err == nil && result.Success && check.passed(out)
		if ok {
			passedCount++
		}
		report.Checks[check.name] = types.HealthCheck{Passed: ok, Details: out}
	}

	switch a.cfg.HealthPolicy {
	case HealthPolicyAny:
		report.Healthy = passedCount > 0
	case HealthPolicyQuorum:
		report.Healthy = passedCount*2 > len(checks)
	default:
		report.Healthy = passedCount == len(checks)
	}

	return report, nil
}

// ========================================
// Device information
// ========================================

// propLinePattern matches getprop output lines: [key]: [value]
var propLinePattern = regexp.MustCompile(`^\[([^\]]+)\]:\s*\[(.*)\]$`)

// GetDeviceInfo collects identity and version details from getprop
func (a *App) GetDeviceInfo(ctx context.Context, deviceID string) (types.DeviceInfo, error) {
	if deviceID == "" {
		var err error
		deviceID, err = a.requireDevice(ctx)
		if err != nil {
			return types.DeviceInfo{}, err
		}
	}

	result, err := a.ExecuteADB(ctx, deviceID, cmdDeviceProps)
	if err != nil {
		return types.DeviceInfo{}, err
	}
	if !result.Success {
		return types.DeviceInfo{}, NewError(ErrADBCommandFailed,
			fmt.Sprintf("getprop failed: %s", strings.TrimSpace(result.Stderr)), nil)
	}

	properties := make(map[string]string)
	for _, line := range strings.Split(result.Stdout, "\n") {
		if m := propLinePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			properties[m[1]] = m[2]
		}
	}

	getOr := func(key, fallback string) string {
		if v := properties[key]; v != "" {
			return v
		}
		return fallback
	}

	return types.DeviceInfo{
		DeviceID:       deviceID,
		Model:          getOr("ro.product.model", "Unknown"),
		Manufacturer:   getOr("ro.product.manufacturer", "Unknown"),
		AndroidVersion: getOr("ro.build.version.release", "Unknown"),
		APILevel:       getOr("ro.build.version.sdk", "Unknown"),
		Serial:         getOr("ro.serialno", deviceID),
		Properties:     properties,
	}, nil
}

// GetScreenSize reads the display dimensions via wm size
func (a *App) GetScreenSize(ctx context.Context, deviceID string) (types.ScreenSize, error) {
	if deviceID == "" {
		var err error
		deviceID, err = a.requireDevice(ctx)
		if err != nil {
			return types.ScreenSize{}, err
		}
	}

	result, err := a.ExecuteADB(ctx, deviceID, "-s {device} shell wm size")
	if err != nil {
		return types.ScreenSize{}, err
	}
	if !result.Success {
		return types.ScreenSize{}, NewError(ErrADBCommandFailed,
			fmt.Sprintf("wm size failed: %s", strings.TrimSpace(result.Stderr)), nil)
	}

	size, err := parseScreenSize(result.Stdout)
	if err != nil {
		return types.ScreenSize{}, NewError(ErrADBCommandFailed, err.Error(), nil)
	}
	return size, nil
}

// parseScreenSize parses output like "Physical size: 1080x2340".
// When an override is active, the override line wins.
func parseScreenSize(output string) (types.ScreenSize, error) {
	parse := func(line string) (types.ScreenSize, bool) {
		_, sizePart, ok := strings.Cut(line, ":")
		if !ok {
			return types.ScreenSize{}, false
		}
		w, h, ok := strings.Cut(strings.TrimSpace(sizePart), "x")
		if !ok {
			return types.ScreenSize{}, false
		}
		width, err1 := strconv.Atoi(strings.TrimSpace(w))
		height, err2 := strconv.Atoi(strings.TrimSpace(h))
		if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
			return types.ScreenSize{}, false
		}
		return types.ScreenSize{Width: width, Height: height}, true
	}

	var physical types.ScreenSize
	havePhysical := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Override size") {
			if size, ok := parse(line); ok {
				return size, nil
			}
		}
		if strings.HasPrefix(line, "Physical size") {
			if size, ok := parse(line); ok {
				physical = size
				havePhysical = true
			}
		}
	}
	if havePhysical {
		return physical, nil
	}
	return types.ScreenSize{}, fmt.Errorf("could not parse screen size from: %s", strings.TrimSpace(output))
}

// foregroundAppPattern extracts package/activity tokens from dumpsys
var foregroundAppPattern = regexp.MustCompile(`([a-zA-Z0-9_.]+)/([a-zA-Z0-9_.$]+)`)

// GetForegroundApp detects the package and activity currently in the
// foreground. Several dumpsys sources are tried because the layout
// varies across Android versions.
func (a *App) GetForegroundApp(ctx context.Context, deviceID string) (types.ForegroundApp, error) {
	if deviceID == "" {
		var err error
		deviceID, err = a.requireDevice(ctx)
		if err != nil {
			return types.ForegroundApp{}, err
		}
	}

	commands := []string{
		"-s {device} shell dumpsys window | grep -E 'mCurrentFocus|mFocusedApp'",
		"-s {device} shell dumpsys activity activities | grep mResumedActivity",
		"-s {device} shell dumpsys activity | grep mResumedActivity",
	}

	for _, cmd := range commands {
		result, err := a.ExecuteADBTimeout(ctx, deviceID, cmd, StageBudget(ctx, 0.4, 5*time.Second))
		if err != nil || !result.Success {
			continue
		}
		out := strings.TrimSpace(result.Stdout)
		if m := foregroundAppPattern.FindStringSubmatch(out); m != nil {
			return types.ForegroundApp{
				Package:  m[1],
				Activity: m[2],
				Source:   cmd,
				Raw:      out,
			}, nil
		}
	}

	return types.ForegroundApp{}, Errorf(ErrADBCommandFailed, "unable to detect foreground app")
}
