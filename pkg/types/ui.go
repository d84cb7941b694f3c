package types

import "fmt"

// Bounds is a screen rectangle in pixel coordinates. Invariant: Left<=Right,
// Top<=Bottom, all values >=0 (enforced during parsing).
type Bounds struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() (int, int) {
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

// Width returns the horizontal extent.
func (b Bounds) Width() int { return b.Right - b.Left }

// Height returns the vertical extent.
func (b Bounds) Height() int { return b.Bottom - b.Top }

// String renders the Android bounds format "[l,t][r,b]".
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", b.Left, b.Top, b.Right, b.Bottom)
}

// UIElement is one flattened node from a uiautomator dump. Boolean attributes
// keep their on-wire "true"/"false" string form so results round-trip exactly
// as the dump reported them.
type UIElement struct {
	Text        string `json:"text"`
	ResourceID  string `json:"resource-id"`
	Class       string `json:"class"`
	ContentDesc string `json:"content-desc"`
	Bounds      string `json:"bounds"`
	Clickable   string `json:"clickable"`
	Enabled     string `json:"enabled"`
	Focusable   string `json:"focusable"`
	Scrollable  string `json:"scrollable"`
	Displayed   string `json:"displayed"`
}

// LayoutStats summarizes a parsed UI dump.
type LayoutStats struct {
	TotalElements     int `json:"total_elements"`
	ClickableElements int `json:"clickable_elements"`
}

// LayoutResult is the outcome of a UI layout extraction.
type LayoutResult struct {
	Success             bool        `json:"success"`
	Elements            []UIElement `json:"elements,omitempty"`
	XMLDump             string      `json:"xml_dump,omitempty"`
	Stats               LayoutStats `json:"stats"`
	ParseStrategy       string      `json:"parse_strategy,omitempty"`
	Warnings            []string    `json:"warnings,omitempty"`
	Error               string      `json:"error,omitempty"`
	RecoveryAttempts    []string    `json:"recovery_attempts,omitempty"`
	RecoverySuggestions []string    `json:"recovery_suggestions,omitempty"`
}

// ScreenElement is the LLM-friendly view of an interactive element.
type ScreenElement struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	Label       string       `json:"label"`
	Identifier  string       `json:"identifier"`
	Coordinates ElementFrame `json:"coordinates"`
	Clickable   bool         `json:"clickable,omitempty"`
	Enabled     bool         `json:"enabled,omitempty"`
	Focusable   bool         `json:"focusable,omitempty"`
	Scrollable  bool         `json:"scrollable,omitempty"`
}

// ElementFrame is an origin+size rectangle.
type ElementFrame struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}
