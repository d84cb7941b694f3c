package types

import "strings"

// Device represents one entry from `adb devices -l`.
type Device struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"` // "device", "offline", "unauthorized"
	Properties map[string]string `json:"properties,omitempty"`
}

// IsEmulator reports whether the device ID looks like an emulator serial.
func (d Device) IsEmulator() bool {
	return strings.Contains(d.ID, "emulator")
}

// DeviceInfo contains detailed device information parsed from getprop.
type DeviceInfo struct {
	DeviceID       string            `json:"deviceId"`
	Model          string            `json:"model"`
	Manufacturer   string            `json:"manufacturer"`
	AndroidVersion string            `json:"androidVersion"`
	APILevel       string            `json:"apiLevel"`
	Serial         string            `json:"serial"`
	Properties     map[string]string `json:"properties,omitempty"`
}

// ScreenSize is the device display resolution in pixels.
type ScreenSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HealthCheck is the outcome of a single device probe.
type HealthCheck struct {
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// HealthReport aggregates the individual device probes.
type HealthReport struct {
	DeviceID string                 `json:"deviceId"`
	Healthy  bool                   `json:"healthy"`
	Policy   string                 `json:"policy"` // "all", "any", or "quorum"
	Checks   map[string]HealthCheck `json:"checks"`
}

// ForegroundApp identifies the currently focused package/activity.
type ForegroundApp struct {
	Package  string `json:"package"`
	Activity string `json:"activity,omitempty"`
	Source   string `json:"source"`
	Raw      string `json:"raw"`
}

// Selection describes the outcome of device auto-selection.
type Selection struct {
	Selected Device `json:"selected"`
	Reason   string `json:"reason"` // "previous_selection", "first_physical", "first_emulator"
}
