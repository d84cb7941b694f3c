package main

import (
	"strings"
	"testing"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

const sampleDumpXML = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" content-desc="" clickable="false" enabled="true" focusable="false" scrollable="false" displayed="true" bounds="[0,0][1080,2340]">
    <node index="0" text="Settings" resource-id="com.android.settings:id/title" class="android.widget.TextView" content-desc="" clickable="true" enabled="true" focusable="true" scrollable="false" displayed="true" bounds="[48,120][400,180]"/>
    <node index="1" text="" resource-id="" class="android.widget.ImageView" content-desc="Search" clickable="true" enabled="true" focusable="true" scrollable="false" displayed="false" bounds="[900,120][1032,180]">
      <node index="0" text="hidden child" resource-id="" class="android.widget.TextView" content-desc="" clickable="false" enabled="true" focusable="false" scrollable="false" displayed="true" bounds="[910,130][1020,170]"/>
    </node>
  </node>
</hierarchy>`

func TestParseUIHierarchyDirect(t *testing.T) {
	result := parseUIHierarchy(sampleDumpXML, false)
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}
	if result.ParseStrategy != "direct" {
		t.Errorf("strategy = %q, want direct", result.ParseStrategy)
	}

	// The invisible ImageView subtree is skipped entirely, including
	// its visible child.
	if len(result.Elements) != 2 {
		t.Fatalf("got %d elements, want 2: %+v", len(result.Elements), result.Elements)
	}
	if result.Elements[1].Text != "Settings" {
		t.Errorf("second element text = %q", result.Elements[1].Text)
	}
	if result.Stats.ClickableElements != 1 {
		t.Errorf("clickable count = %d, want 1", result.Stats.ClickableElements)
	}
}

func TestParseUIHierarchyIncludeInvisible(t *testing.T) {
	result := parseUIHierarchy(sampleDumpXML, true)
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}
	if len(result.Elements) != 4 {
		t.Errorf("got %d elements, want 4", len(result.Elements))
	}
}

func TestParseUIHierarchyRecoversFromControlChars(t *testing.T) {
	// A control character in an attribute breaks the direct parse; the
	// cleaned strategy strips it.
	dirty := strings.Replace(sampleDumpXML, `text="Settings"`, "text=\"Set\x01tings\"", 1)
	result := parseUIHierarchy(dirty, false)
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}
	if result.ParseStrategy == "direct" {
		t.Error("expected a recovery strategy, got direct")
	}
}

func TestParseUIHierarchyUnescapedAmpersand(t *testing.T) {
	dirty := strings.Replace(sampleDumpXML, `text="Settings"`, `text="Tom & Jerry"`, 1)
	result := parseUIHierarchy(dirty, false)
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}
	found := false
	for _, el := range result.Elements {
		if strings.Contains(el.Text, "Tom") {
			found = true
		}
	}
	if !found {
		t.Error("element with repaired text not found")
	}
}

func TestParseUIHierarchyRejectsGarbage(t *testing.T) {
	for _, content := range []string{
		"",
		"ERROR: could not get idle state.",
		"java.lang.RuntimeException: something broke",
	} {
		result := parseUIHierarchy(content, false)
		if result.Success {
			t.Errorf("parse of %q should fail", content)
		}
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in   string
		want types.Bounds
	}{
		{"[0,0][1080,2340]", types.Bounds{Left: 0, Top: 0, Right: 1080, Bottom: 2340}},
		{"[48,120][400,180]", types.Bounds{Left: 48, Top: 120, Right: 400, Bottom: 180}},
		// Inverted coordinates are swapped back into order
		{"[400,180][48,120]", types.Bounds{Left: 48, Top: 120, Right: 400, Bottom: 180}},
		// Negatives clamp to zero
		{"[-10,-5][100,200]", types.Bounds{Left: 0, Top: 0, Right: 100, Bottom: 200}},
		// Malformed input yields the zero rectangle
		{"not bounds", types.Bounds{}},
		{"", types.Bounds{}},
		{"[1,2][3]", types.Bounds{}},
	}

	for _, tt := range tests {
		if got := ParseBounds(tt.in); got != tt.want {
			t.Errorf("ParseBounds(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestBoundsGeometry(t *testing.T) {
	b := ParseBounds("[100,200][300,600]")
	cx, cy := b.Center()
	if cx != 200 || cy != 400 {
		t.Errorf("center = (%d,%d), want (200,400)", cx, cy)
	}
	if b.Width() != 200 || b.Height() != 400 {
		t.Errorf("size = %dx%d, want 200x400", b.Width(), b.Height())
	}
}

func TestShortClassName(t *testing.T) {
	if got := shortClassName("android.widget.TextView"); got != "TextView" {
		t.Errorf("shortClassName = %q", got)
	}
	if got := shortClassName("Button"); got != "Button" {
		t.Errorf("shortClassName = %q", got)
	}
}
