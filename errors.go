package main

import (
	"errors"
	"fmt"
	"strings"
)

// ========================================
// Error taxonomy
// ========================================

// ErrorCode is a stable, category-prefixed identifier for a failure
// class. Codes are part of the tool response format, so clients can
// branch on them.
type ErrorCode string

const (
	// System level (1000-1099)
	ErrSystemInitFailed  ErrorCode = "SYSTEM_1000"
	ErrComponentInit     ErrorCode = "SYSTEM_1001"
	ErrDependencyMissing ErrorCode = "SYSTEM_1002"

	// Device connection (1100-1199)
	ErrNoDevicesFound      ErrorCode = "DEVICE_1100"
	ErrDeviceNotFound      ErrorCode = "DEVICE_1101"
	ErrDeviceOffline       ErrorCode = "DEVICE_1102"
	ErrDeviceUnauthorized  ErrorCode = "DEVICE_1103"
	ErrDeviceLost          ErrorCode = "DEVICE_1104"
	ErrDeviceNotResponsive ErrorCode = "DEVICE_1105"
	ErrADBDaemon           ErrorCode = "DEVICE_1106"

	// ADB commands (1200-1299)
	ErrADBCommandFailed    ErrorCode = "ADB_1200"
	ErrADBTimeout          ErrorCode = "ADB_1201"
	ErrADBPermissionDenied ErrorCode = "ADB_1202"
	ErrADBInvalidCommand   ErrorCode = "ADB_1203"
	ErrADBExecution        ErrorCode = "ADB_1204"

	// UI inspection and interaction (1300-1399)
	ErrUIDumpFailed         ErrorCode = "UI_1300"
	ErrElementNotFound      ErrorCode = "UI_1301"
	ErrElementNotClickable  ErrorCode = "UI_1302"
	ErrUIServiceUnavailable ErrorCode = "UI_1303"
	ErrCoordinateOutOfRange ErrorCode = "UI_1304"

	// Media capture (1400-1499)
	ErrScreenshotFailed     ErrorCode = "MEDIA_1400"
	ErrRecordingStartFailed ErrorCode = "MEDIA_1401"
	ErrRecordingStopFailed  ErrorCode = "MEDIA_1402"
	ErrMediaPullFailed      ErrorCode = "MEDIA_1403"
	ErrStorageInsufficient  ErrorCode = "MEDIA_1404"

	// Input (1500-1599)
	ErrTextInputFailed ErrorCode = "INPUT_1500"
	ErrKeyEventFailed  ErrorCode = "INPUT_1501"
	ErrTouchFailed     ErrorCode = "INPUT_1502"
	ErrGestureFailed   ErrorCode = "INPUT_1503"

	// Log monitoring (1600-1699)
	ErrLogcatAccessDenied ErrorCode = "LOG_1600"
	ErrLogMonitorStart    ErrorCode = "LOG_1601"
	ErrLogFilterInvalid   ErrorCode = "LOG_1602"

	// Validation (1700-1799)
	ErrInvalidParameter    ErrorCode = "VALIDATION_1700"
	ErrMissingParameter    ErrorCode = "VALIDATION_1701"
	ErrParameterOutOfRange ErrorCode = "VALIDATION_1702"

	// Generic (1800-1899)
	ErrUnknown             ErrorCode = "GENERIC_1800"
	ErrOperationCancelled  ErrorCode = "GENERIC_1801"
	ErrResourceUnavailable ErrorCode = "GENERIC_1802"
)

// ServerError is the error type returned by App operations. It carries
// a stable code plus recovery suggestions suitable for surfacing in a
// tool response.
type ServerError struct {
	Code        ErrorCode
	Message     string
	Cause       error
	Suggestions []string
}

// Error implements the error interface
func (e *ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As
func (e *ServerError) Unwrap() error {
	return e.Cause
}

// RecoverySuggestions lets callers in other packages read the
// suggestion list through an interface assertion.
func (e *ServerError) RecoverySuggestions() []string {
	return e.Suggestions
}

// NewError creates a ServerError with recovery suggestions derived
// from the code and the error text.
func NewError(code ErrorCode, message string, cause error) *ServerError {
	return &ServerError{
		Code:        code,
		Message:     message,
		Cause:       cause,
		Suggestions: RecoverySuggestions(code, message, cause),
	}
}

// Errorf is NewError with a formatted message and no cause
func Errorf(code ErrorCode, format string, args ...interface{}) *ServerError {
	return NewError(code, fmt.Sprintf(format, args...), nil)
}

// CodeOf extracts the error code from err, or ErrUnknown
func CodeOf(err error) ErrorCode {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrUnknown
}

// SuggestionsOf extracts recovery suggestions from err, if any
func SuggestionsOf(err error) []string {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Suggestions
	}
	return nil
}

// defaultMessages supplies a message when the caller passes none.
var defaultMessages = map[ErrorCode]string{
	ErrNoDevicesFound:   "No Android devices found. Connect a device and ensure USB debugging is enabled.",
	ErrDeviceOffline:    "Selected device is offline or disconnected.",
	ErrADBTimeout:       "ADB command timed out. Device may be unresponsive.",
	ErrUIDumpFailed:     "Failed to extract UI layout from device.",
	ErrElementNotFound:  "UI element could not be found on screen.",
	ErrScreenshotFailed: "Failed to capture device screenshot.",
	ErrInvalidParameter: "One or more parameters are invalid.",
}

// DefaultMessage returns the canned message for a code
func DefaultMessage(code ErrorCode) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Operation failed with error: %s", code)
}

// recoveryTable maps error codes to base recovery suggestions.
var recoveryTable = map[ErrorCode][]string{
	ErrNoDevicesFound: {
		"Connect an Android device via USB",
		"Enable USB debugging in Developer Options",
		"Check ADB drivers installation",
		"Run 'adb devices' to verify connection",
	},
	ErrDeviceNotFound: {
		"Check device connection",
		"Verify device ID is correct",
		"Run 'adb devices' to list available devices",
		"Reconnect the device",
	},
	ErrDeviceOffline: {
		"Reconnect the USB cable",
		"Restart ADB daemon: 'adb kill-server && adb start-server'",
		"Check device authorization dialog",
		"Verify device is unlocked",
	},
	ErrDeviceLost: {
		"Check USB connection stability",
		"Restart ADB daemon",
		"Verify device is not in sleep mode",
		"Reconnect the device",
	},
	ErrADBCommandFailed: {
		"Retry the adb command",
		"Check device responsiveness",
		"Verify ADB daemon is running",
		"Restart ADB server if needed",
	},
	ErrADBTimeout: {
		"Check device responsiveness",
		"Restart the device if frozen",
		"Increase timeout value",
		"Check USB connection stability",
	},
	ErrADBPermissionDenied: {
		"Enable root access if required",
		"Check file/directory permissions",
		"Verify ADB is authorized on device",
		"Run command with appropriate permissions",
	},
	ErrADBDaemon: {
		"Restart ADB daemon",
		"Kill and restart ADB server",
		"Check ADB installation",
		"Verify ADB daemon is running properly",
	},
	ErrUIDumpFailed: {
		"Ensure UIAutomator service is running",
		"Check device screen is unlocked",
		"Verify accessibility permissions",
		"Restart the device if necessary",
	},
	ErrElementNotFound: {
		"Wait longer for element to appear",
		"Check UI element selector",
		"Verify app is in expected state",
		"Update element locator strategy",
	},
	ErrScreenshotFailed: {
		"Check device storage space",
		"Verify screenshot permissions",
		"Ensure device screen is on",
		"Try alternative screenshot method",
	},
}

var genericRecovery = []string{
	"Check device connection and status",
	"Verify ADB is working properly",
	"Restart the operation",
}

// RecoverySuggestions returns the base suggestions for a code, with
// contextual suggestions prepended when the error text mentions
// timeouts, permissions or storage.
func RecoverySuggestions(code ErrorCode, message string, cause error) []string {
	base, ok := recoveryTable[code]
	if !ok {
		base = genericRecovery
	}

	text := strings.ToLower(message)
	if cause != nil {
		text += " " + strings.ToLower(cause.Error())
	}

	var contextual []string
	if strings.Contains(text, "timeout") || strings.Contains(text, "timed out") {
		contextual = append(contextual,
			"Increase timeout value",
			"Check device responsiveness")
	}
	if strings.Contains(text, "permission") || strings.Contains(text, "denied") {
		contextual = append(contextual,
			"Check application permissions",
			"Enable required permissions in device settings")
	}
	if strings.Contains(text, "storage") || strings.Contains(text, "space") {
		contextual = append(contextual,
			"Free up device storage space",
			"Clear application cache")
	}

	if len(contextual) == 0 {
		out := make([]string, len(base))
		copy(out, base)
		return out
	}
	return append(contextual, base...)
}
