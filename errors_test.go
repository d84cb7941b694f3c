package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestServerErrorFormatting(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewError(ErrADBCommandFailed, "dumpsys failed", cause)

	msg := err.Error()
	if !strings.Contains(msg, "[ADB_1200]") {
		t.Errorf("Error() = %q, missing code", msg)
	}
	if !strings.Contains(msg, "dumpsys failed") || !strings.Contains(msg, "exit status 1") {
		t.Errorf("Error() = %q, missing message or cause", msg)
	}

	bare := NewError(ErrNoDevicesFound, "no devices", nil)
	if strings.Contains(bare.Error(), "<nil>") {
		t.Errorf("Error() without cause = %q", bare.Error())
	}
}

func TestServerErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewError(ErrADBTimeout, "slow device", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	err := Errorf(ErrDeviceNotFound, "no device %q", "abc")
	if CodeOf(err) != ErrDeviceNotFound {
		t.Errorf("CodeOf = %s", CodeOf(err))
	}

	wrapped := fmt.Errorf("context: %w", err)
	if CodeOf(wrapped) != ErrDeviceNotFound {
		t.Error("CodeOf should see through wrapping")
	}

	if CodeOf(errors.New("plain")) != ErrUnknown {
		t.Error("plain errors map to ErrUnknown")
	}
}

func TestSuggestionsOf(t *testing.T) {
	err := NewError(ErrNoDevicesFound, "", nil)
	sugs := SuggestionsOf(err)
	if len(sugs) == 0 {
		t.Fatal("expected suggestions for ErrNoDevicesFound")
	}
	if sugs[0] != "Connect an Android device via USB" {
		t.Errorf("first suggestion = %q", sugs[0])
	}

	if SuggestionsOf(errors.New("plain")) != nil {
		t.Error("plain errors carry no suggestions")
	}
}

func TestRecoverySuggestionsContextual(t *testing.T) {
	sugs := RecoverySuggestions(ErrADBCommandFailed, "command timed out waiting for device", nil)
	if sugs[0] != "Increase timeout value" {
		t.Errorf("timeout context should prepend timeout advice, got %q", sugs[0])
	}

	sugs = RecoverySuggestions(ErrScreenshotFailed, "write failed", errors.New("no space left on device"))
	if sugs[0] != "Free up device storage space" {
		t.Errorf("storage context should prepend storage advice, got %q", sugs[0])
	}

	sugs = RecoverySuggestions(ErrADBPermissionDenied, "access denied", nil)
	if sugs[0] != "Check application permissions" {
		t.Errorf("permission context should prepend permission advice, got %q", sugs[0])
	}
}

func TestRecoverySuggestionsGenericFallback(t *testing.T) {
	sugs := RecoverySuggestions(ErrUnknown, "something odd", nil)
	if len(sugs) != len(genericRecovery) {
		t.Fatalf("got %d suggestions, want generic set", len(sugs))
	}
}

func TestDefaultMessage(t *testing.T) {
	if msg := DefaultMessage(ErrNoDevicesFound); !strings.Contains(msg, "USB debugging") {
		t.Errorf("DefaultMessage = %q", msg)
	}
	if msg := DefaultMessage(ErrGestureFailed); !strings.Contains(msg, string(ErrGestureFailed)) {
		t.Errorf("unknown codes fall back to a generic line, got %q", msg)
	}
}
