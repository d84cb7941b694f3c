package main

import (
	"reflect"
	"testing"
)

func TestSplitCommandArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"devices -l", []string{"devices", "-l"}},
		{"-s abc shell ls", []string{"-s", "abc", "shell", "ls"}},
		{`push "my file.txt" /sdcard/`, []string{"push", "my file.txt", "/sdcard/"}},
		{"input text 'hello world'", []string{"input", "text", "hello world"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{"", nil},
	}

	for _, tt := range tests {
		if got := splitCommandArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitCommandArgs(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestAdbArgsKeepsShellRemainderIntact(t *testing.T) {
	// Everything after "shell " must stay one argument so device-side
	// pipes run on the device, not the host.
	got := adbArgs("-s emulator-5554 shell logcat -d | tail -n 50")
	want := []string{"-s", "emulator-5554", "shell", "logcat -d | tail -n 50"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("adbArgs = %#v, want %#v", got, want)
	}
}

func TestAdbArgsWithoutShell(t *testing.T) {
	got := adbArgs("-s abc pull /sdcard/file.png /tmp/file.png")
	want := []string{"-s", "abc", "pull", "/sdcard/file.png", "/tmp/file.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("adbArgs = %#v, want %#v", got, want)
	}
}

func TestAdbArgsShellQuoting(t *testing.T) {
	got := adbArgs("-s abc shell input text 'hello world'")
	want := []string{"-s", "abc", "shell", "input text 'hello world'"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("adbArgs = %#v, want %#v", got, want)
	}
}
