package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

func sampleLayout() LayoutResult {
	return LayoutResult{
		Success: true,
		Elements: []UIElement{
			{Text: "Settings", Class: "android.widget.TextView", Bounds: "[0,0][200,100]", Clickable: "true", Enabled: "true"},
			{Text: "", Class: "android.widget.FrameLayout", Bounds: "[0,0][1080,2400]", Enabled: "true"},
		},
		Stats:         types.LayoutStats{TotalElements: 2, ClickableElements: 1},
		ParseStrategy: "direct",
		XMLDump:       "<hierarchy/>",
	}
}

// ==================== ui_layout ====================

func TestHandleUILayout_Success(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.GetUILayoutResult = sampleLayout()
	server := NewMCPServer(mock)

	result, err := server.handleUILayout(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "2 element(s)") {
		t.Errorf("Result should report the element count, got: %s", text)
	}
	if !strings.Contains(text, "direct") {
		t.Error("Result should name the parse strategy")
	}
	if strings.Contains(text, "<hierarchy/>") {
		t.Error("Raw XML dump should be stripped from the response")
	}
}

func TestHandleUILayout_PassesFlags(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.GetUILayoutResult = sampleLayout()
	server := NewMCPServer(mock)

	_, err := server.handleUILayout(context.Background(),
		makeToolRequest(map[string]interface{}{"compressed": true, "include_invisible": true}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(mock.Calls) == 0 {
		t.Fatal("GetUILayout should be called")
	}
	call := mock.Calls[0]
	if call.Method != "GetUILayout" || call.Args[0] != true || call.Args[1] != true {
		t.Errorf("GetUILayout called with %+v, want both flags true", call)
	}
}

func TestHandleUILayout_Failure(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.GetUILayoutResult = LayoutResult{
		Success:             false,
		Error:               "uiautomator dump failed",
		RecoveryAttempts:    []string{"retried with compressed dump"},
		RecoverySuggestions: []string{"Unlock the device screen"},
	}
	server := NewMCPServer(mock)

	result, err := server.handleUILayout(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Failed extraction should set IsError")
	}

	text := getTextContent(result)
	if !strings.Contains(text, "uiautomator dump failed") {
		t.Error("Result should carry the error message")
	}
	if !strings.Contains(text, "Unlock the device screen") {
		t.Error("Result should list recovery suggestions")
	}
}

// ==================== ui_elements ====================

func TestHandleUIElements_Success(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.ListScreenElementsResult = []ScreenElement{
		{
			Type:        "Button",
			Text:        "Save",
			Coordinates: types.ElementFrame{X: 100, Y: 200, Width: 200, Height: 100},
			Clickable:   true,
		},
	}
	server := NewMCPServer(mock)

	result, err := server.handleUIElements(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, `Button "Save"`) {
		t.Errorf("Result should describe the element, got: %s", text)
	}
	if !strings.Contains(text, "(200,250)") {
		t.Error("Result should include the tap center")
	}
	if !strings.Contains(text, "[clickable]") {
		t.Error("Clickable elements should be flagged")
	}
}

func TestHandleUIElements_Empty(t *testing.T) {
	mock := NewMockAndroidApp()
	server := NewMCPServer(mock)

	result, err := server.handleUIElements(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "No meaningful elements") {
		t.Error("Result should state that nothing was found")
	}
}

// ==================== ui_find ====================

func TestHandleUIFind_RequiresCriteria(t *testing.T) {
	mock := NewMockAndroidApp()
	server := NewMCPServer(mock)

	_, err := server.handleUIFind(context.Background(), makeToolRequest(nil))
	if err == nil {
		t.Error("Empty criteria should be rejected")
	}
}

func TestHandleUIFind_All(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.FindElementsResult = []UIElement{
		{Text: "Wi-Fi", Class: "android.widget.TextView"},
		{Text: "Wi-Fi preferences", Class: "android.widget.TextView"},
	}
	server := NewMCPServer(mock)

	result, err := server.handleUIFind(context.Background(),
		makeToolRequest(map[string]interface{}{"text": "wi-fi"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(getTextContent(result), "Found 2 matching") {
		t.Error("Result should report the match count")
	}

	call := mock.Calls[0]
	criteria := call.Args[0].(FindCriteria)
	if criteria.Text != "wi-fi" {
		t.Errorf("criteria.Text = %q", criteria.Text)
	}
	if !criteria.EnabledOnly {
		t.Error("enabled_only should default to true")
	}
}

func TestHandleUIFind_Best(t *testing.T) {
	mock := NewMockAndroidApp()
	mock.FindBestElementResult = &UIElement{
		Text: "Save", Class: "android.widget.Button", Bounds: "[0,0][100,50]",
	}
	server := NewMCPServer(mock)

	result, err := server.handleUIFind(context.Background(),
		makeToolRequest(map[string]interface{}{"text": "save", "best": true}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "Best match") {
		t.Error("Result should label the best match")
	}
	if mock.CallCount("FindBestElement") != 1 {
		t.Error("best flag should route to FindBestElement")
	}
	if mock.CallCount("FindElements") != 0 {
		t.Error("FindElements should not be called in best mode")
	}
}

func TestHandleUIFind_NoMatches(t *testing.T) {
	mock := NewMockAndroidApp()
	server := NewMCPServer(mock)

	result, err := server.handleUIFind(context.Background(),
		makeToolRequest(map[string]interface{}{"text": "nonexistent"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "No elements matched") {
		t.Error("Result should state that nothing matched")
	}
}
