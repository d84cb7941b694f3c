package types

// Point is a screen coordinate in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TapResult reports a tap or long press.
type TapResult struct {
	Success     bool   `json:"success"`
	Action      string `json:"action"` // "tap" or "long_press"
	Coordinates Point  `json:"coordinates"`
	DurationMS  int    `json:"duration_ms,omitempty"`
	Details     string `json:"details,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ElementTapResult reports a tap resolved through an element search.
type ElementTapResult struct {
	TapResult
	Element                     *UIElement `json:"element,omitempty"`
	IndexUsed                   int        `json:"index_used"`
	TotalFound                  int        `json:"total_found"`
	ElementsFoundWithoutFilters int        `json:"elements_found_without_filters,omitempty"`
}

// SwipeResult reports a swipe gesture.
type SwipeResult struct {
	Success    bool        `json:"success"`
	Action     string      `json:"action"` // "swipe"
	Start      Point       `json:"start"`
	End        Point       `json:"end"`
	DurationMS int         `json:"duration_ms"`
	Direction  string      `json:"direction,omitempty"`
	Distance   int         `json:"distance,omitempty"`
	ScreenSize *ScreenSize `json:"screen_size,omitempty"`
	Details    string      `json:"details,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// TextInputResult reports a text injection.
type TextInputResult struct {
	Success      bool     `json:"success"`
	Action       string   `json:"action"` // "text_input"
	Text         string   `json:"text"`
	ClearedFirst bool     `json:"cleared_first"`
	Submitted    bool     `json:"submitted"`
	HasUnicode   bool     `json:"has_unicode"`
	Warnings     []string `json:"warnings,omitempty"`
	Details      string   `json:"details,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// KeyPressResult reports a key event.
type KeyPressResult struct {
	Success       bool   `json:"success"`
	Action        string `json:"action"` // "key_press"
	Keycode       string `json:"keycode"`
	OriginalInput string `json:"original_input"`
	Details       string `json:"details,omitempty"`
	Error         string `json:"error,omitempty"`
}
