package main

import (
	"strings"
	"testing"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

func TestValidateDeviceID(t *testing.T) {
	valid := []string{
		"1234567890ABCDEF",
		"emulator-5554",
		"192.168.1.100:5555",
		"adb-xxxxx._adb-tls-connect._tcp.",
	}
	for _, id := range valid {
		if err := ValidateDeviceID(id); err != nil {
			t.Errorf("ValidateDeviceID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{
		"",
		"device; rm -rf /",
		"device`id`",
		"device$(whoami)",
		"device|cat",
		"device id",
		strings.Repeat("a", 257),
	}
	for _, id := range invalid {
		if err := ValidateDeviceID(id); err == nil {
			t.Errorf("ValidateDeviceID(%q) = nil, want error", id)
		}
	}
}

func TestParseDeviceList(t *testing.T) {
	output := `List of devices attached
emulator-5554	device product:sdk_gphone64_x86_64 model:sdk_gphone64_x86_64 device:emu64x transport_id:1
1A2B3C4D	unauthorized transport_id:2
192.168.1.42:5555	offline
* daemon started successfully

`
	devices := parseDeviceList(output)
	if len(devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(devices))
	}

	if devices[0].ID != "emulator-5554" || devices[0].Status != "device" {
		t.Errorf("unexpected first device: %+v", devices[0])
	}
	if devices[0].Properties["model"] != "sdk_gphone64_x86_64" {
		t.Errorf("model property not parsed: %v", devices[0].Properties)
	}
	if !devices[0].IsEmulator() {
		t.Error("emulator-5554 should be recognized as an emulator")
	}

	if devices[1].Status != "unauthorized" {
		t.Errorf("expected unauthorized, got %q", devices[1].Status)
	}
	if devices[2].ID != "192.168.1.42:5555" || devices[2].Status != "offline" {
		t.Errorf("unexpected third device: %+v", devices[2])
	}
}

func TestParseDeviceListEmpty(t *testing.T) {
	if devices := parseDeviceList("List of devices attached\n\n"); len(devices) != 0 {
		t.Errorf("expected no devices, got %d", len(devices))
	}
}

func TestChooseDevicePriority(t *testing.T) {
	physical := types.Device{ID: "1A2B3C4D", Status: "device"}
	emulator := types.Device{ID: "emulator-5554", Status: "device"}
	offline := types.Device{ID: "DEAD00", Status: "offline"}

	tests := []struct {
		name       string
		devices    []types.Device
		previous   string
		wantID     string
		wantReason string
		wantErr    bool
	}{
		{
			name:       "previous selection wins",
			devices:    []types.Device{physical, emulator},
			previous:   "emulator-5554",
			wantID:     "emulator-5554",
			wantReason: "previous_selection",
		},
		{
			name:       "physical preferred over emulator",
			devices:    []types.Device{emulator, physical},
			previous:   "",
			wantID:     "1A2B3C4D",
			wantReason: "first_physical",
		},
		{
			name:       "emulator when no physical",
			devices:    []types.Device{offline, emulator},
			previous:   "",
			wantID:     "emulator-5554",
			wantReason: "first_emulator",
		},
		{
			name:       "stale previous falls through to physical",
			devices:    []types.Device{physical},
			previous:   "gone-device",
			wantID:     "1A2B3C4D",
			wantReason: "first_physical",
		},
		{
			name:       "previous offline is not reused",
			devices:    []types.Device{offline, emulator},
			previous:   "DEAD00",
			wantID:     "emulator-5554",
			wantReason: "first_emulator",
		},
		{
			name:    "nothing ready",
			devices: []types.Device{offline},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := chooseDevice(tt.devices, tt.previous)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sel.Selected.ID != tt.wantID {
				t.Errorf("selected %q, want %q", sel.Selected.ID, tt.wantID)
			}
			if sel.Reason != tt.wantReason {
				t.Errorf("reason %q, want %q", sel.Reason, tt.wantReason)
			}
		})
	}
}

func TestParseScreenSize(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    types.ScreenSize
		wantErr bool
	}{
		{
			name:   "physical only",
			output: "Physical size: 1080x2340\n",
			want:   types.ScreenSize{Width: 1080, Height: 2340},
		},
		{
			name:   "override wins",
			output: "Physical size: 1080x2340\nOverride size: 720x1560\n",
			want:   types.ScreenSize{Width: 720, Height: 1560},
		},
		{
			name:    "garbage",
			output:  "error: no devices found",
			wantErr: true,
		},
		{
			name:    "malformed dimensions",
			output:  "Physical size: 1080xABC",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScreenSize(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestForegroundAppPattern(t *testing.T) {
	line := "mCurrentFocus=Window{abc123 u0 com.android.settings/com.android.settings.Settings}"
	m := foregroundAppPattern.FindStringSubmatch(line)
	if m == nil {
		t.Fatal("pattern did not match dumpsys focus line")
	}
	if m[1] != "com.android.settings" {
		t.Errorf("package = %q", m[1])
	}
	if m[2] != "com.android.settings.Settings" {
		t.Errorf("activity = %q", m[2])
	}
}
