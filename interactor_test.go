package main

import (
	"strings"
	"testing"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"hello", "'hello'"},
		{"hello world", "'hello world'"},
		{"it's", `'it'"'"'s'`},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInputTextCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "-s {device} shell input text 'hello'"},
		{"hi&bye", "-s {device} shell input text 'hi&bye'"},
		{`say "hi" $(now)`, `-s {device} shell input text 'say "hi" $(now)'`},
		{"it's", `-s {device} shell input text 'it'"'"'s'`},
	}
	for _, tt := range tests {
		if got := inputTextCommand(tt.in); got != tt.want {
			t.Errorf("inputTextCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// Single quotes already neutralize metacharacters on the device
	// shell; a backslash inside them would be typed into the field.
	if got := inputTextCommand("hi&bye"); strings.Contains(got, `\`) {
		t.Errorf("inputTextCommand added backslash escaping: %q", got)
	}
}

func TestHasNonASCII(t *testing.T) {
	if hasNonASCII("plain ascii 123!") {
		t.Error("ASCII text flagged as unicode")
	}
	if !hasNonASCII("héllo") {
		t.Error("accented text not flagged")
	}
	if !hasNonASCII("日本語") {
		t.Error("CJK text not flagged")
	}
}

func TestKeyNameMapping(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"back", "KEYCODE_BACK"},
		{"home", "KEYCODE_HOME"},
		{"enter", "KEYCODE_ENTER"},
		{"delete", "KEYCODE_DEL"},
		{"del", "KEYCODE_DEL"},
		{"volume_up", "KEYCODE_VOLUME_UP"},
	}
	for _, tt := range tests {
		got, ok := keyNameMap[tt.name]
		if !ok || got != tt.want {
			t.Errorf("keyNameMap[%q] = %q (%v), want %q", tt.name, got, ok, tt.want)
		}
	}
}

func TestValidKeycode(t *testing.T) {
	valid := []string{"KEYCODE_BACK", "KEYCODE_VOLUME_UP", "KEYCODE_0", "4", "66", "CAMERA", "APP_SWITCH"}
	for _, k := range valid {
		if !validKeycode(k) {
			t.Errorf("validKeycode(%q) = false, want true", k)
		}
	}

	invalid := []string{"", "KEYCODE_", "KEYCODE_back", "KEYCODE_BACK; rm", "back", "-1", "4x", "_CAMERA", "CAMERA; rm"}
	for _, k := range invalid {
		if validKeycode(k) {
			t.Errorf("validKeycode(%q) = true, want false", k)
		}
	}
}

func TestSwipeVector(t *testing.T) {
	size := types.ScreenSize{Width: 1080, Height: 1920}

	tests := []struct {
		name      string
		direction string
		distance  int
		start     *types.Point
		wantSX    int
		wantSY    int
		wantEX    int
		wantEY    int
		wantDist  int
	}{
		// default distance is a third of the smaller dimension
		{"up default", "up", 0, nil, 540, 960, 540, 600, 360},
		{"down default", "down", 0, nil, 540, 960, 540, 1320, 360},
		{"left default", "left", 0, nil, 540, 960, 180, 960, 360},
		{"right default", "right", 0, nil, 540, 960, 900, 960, 360},
		{"explicit distance", "up", 500, nil, 540, 960, 540, 460, 500},
		{"explicit start", "down", 100, &types.Point{X: 200, Y: 300}, 200, 300, 200, 400, 100},
	}
	for _, tt := range tests {
		sx, sy, ex, ey, dist := swipeVector(tt.direction, tt.distance, tt.start, size)
		if sx != tt.wantSX || sy != tt.wantSY || ex != tt.wantEX || ey != tt.wantEY || dist != tt.wantDist {
			t.Errorf("%s: swipeVector = (%d,%d)->(%d,%d) dist %d, want (%d,%d)->(%d,%d) dist %d",
				tt.name, sx, sy, ex, ey, dist, tt.wantSX, tt.wantSY, tt.wantEX, tt.wantEY, tt.wantDist)
		}
	}
}
