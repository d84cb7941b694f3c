package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

// ========================================
// Screen interaction
// ========================================

// Tap sends a tap at the given coordinates
func (a *App) Tap(ctx context.Context, x, y int) types.TapResult {
	res := types.TapResult{Action: "tap", Coordinates: types.Point{X: x, Y: y}}
	if x < 0 || y < 0 {
		res.Error = fmt.Sprintf("coordinates out of range: (%d, %d)", x, y)
		return res
	}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	result, err := a.ExecuteADB(ctx, deviceID, fmt.Sprintf(cmdTapTemplate, x, y))
	if err != nil {
		res.Error = fmt.Sprintf("tap failed: %v", err)
		return res
	}

	res.Success = result.Success
	if result.Success {
		res.Details = "Tap executed"
	} else {
		res.Details = strings.TrimSpace(result.Stderr)
	}
	return res
}

// LongPress holds a touch at the given coordinates. Implemented as a
// zero-distance swipe, which is what input offers.
func (a *App) LongPress(ctx context.Context, x, y, durationMS int) types.TapResult {
	res := types.TapResult{Action: "long_press", Coordinates: types.Point{X: x, Y: y}, DurationMS: durationMS}
	if durationMS <= 0 {
		durationMS = 1000
		res.DurationMS = durationMS
	}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	result, err := a.ExecuteADB(ctx, deviceID, fmt.Sprintf(cmdSwipeTemplate, x, y, x, y, durationMS))
	if err != nil {
		res.Error = fmt.Sprintf("long press failed: %v", err)
		return res
	}

	res.Success = result.Success
	if result.Success {
		res.Details = "Long press executed"
	} else {
		res.Details = strings.TrimSpace(result.Stderr)
	}
	return res
}

// TapElement locates an element by criteria and taps its center.
// Index picks among multiple matches. When the filtered search comes
// up empty, a second unfiltered search feeds the error diagnostics so
// the caller learns whether relaxing filters would help.
func (a *App) TapElement(ctx context.Context, criteria FindCriteria, index int) types.ElementTapResult {
	res := types.ElementTapResult{TapResult: types.TapResult{Action: "tap"}}

	if criteria.Empty() {
		res.Error = "no search criteria provided; set text, resource_id or content_desc"
		return res
	}

	elements := a.FindElements(ctx, criteria)
	if len(elements) == 0 {
		relaxed := criteria
		relaxed.ClickableOnly = false
		relaxed.EnabledOnly = false
		relaxed.ScrollableOnly = false

		all := a.FindElements(ctx, relaxed)
		if len(all) == 0 {
			res.Error = "Element not found. Verify the text, resource_id, or content_desc is correct"
			return res
		}

		nonClickable := 0
		disabled := 0
		for _, el := range all {
			if el.Clickable == "false" {
				nonClickable++
			}
			if el.Enabled == "false" {
				disabled++
			}
		}

		var details []string
		if criteria.ClickableOnly && nonClickable > 0 {
			details = append(details, fmt.Sprintf("found %d non-clickable element(s)", nonClickable))
		}
		if criteria.EnabledOnly && disabled > 0 {
			details = append(details, fmt.Sprintf("found %d disabled element(s)", disabled))
		}

		msg := "Element found but doesn't match filters"
		if len(details) > 0 {
			msg += ": " + strings.Join(details, ", ")
		}
		msg += ". Try with clickable_only=false or enabled_only=false"

		res.Error = msg
		res.ElementsFoundWithoutFilters = len(all)
		return res
	}

	if index < 0 || index >= len(elements) {
		res.Error = fmt.Sprintf("index %d out of range, found %d elements", index, len(elements))
		res.TotalFound = len(elements)
		return res
	}

	element := elements[index]
	x, y := ElementCenter(element)

	tap := a.Tap(ctx, x, y)
	res.TapResult = tap
	res.Element = &element
	res.IndexUsed = index
	res.TotalFound = len(elements)
	return res
}

// Swipe drags between two coordinate points
func (a *App) Swipe(ctx context.Context, startX, startY, endX, endY, durationMS int) types.SwipeResult {
	res := types.SwipeResult{
		Action:     "swipe",
		Start:      types.Point{X: startX, Y: startY},
		End:        types.Point{X: endX, Y: endY},
		DurationMS: durationMS,
	}
	if durationMS <= 0 {
		durationMS = 300
		res.DurationMS = durationMS
	}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	result, err := a.ExecuteADB(ctx, deviceID,
		fmt.Sprintf(cmdSwipeTemplate, startX, startY, endX, endY, durationMS))
	if err != nil {
		res.Error = fmt.Sprintf("swipe failed: %v", err)
		return res
	}

	res.Success = result.Success
	if result.Success {
		res.Details = "Swipe executed"
	} else {
		res.Details = strings.TrimSpace(result.Stderr)
	}
	return res
}

// SwipeDirection swipes up/down/left/right from a start point
// (default screen center) over a distance (default one third of the
// smaller screen dimension).
func (a *App) SwipeDirection(ctx context.Context, direction string, distance int, start *types.Point, durationMS int) types.SwipeResult {
	direction = strings.ToLower(direction)
	switch direction {
	case "up", "down", "left", "right":
	default:
		return types.SwipeResult{
			Action:    "swipe",
			Direction: direction,
			Error:     fmt.Sprintf("invalid direction %q, use: up, down, left, right", direction),
		}
	}

	size, err := a.GetScreenSize(ctx, "")
	if err != nil {
		return types.SwipeResult{
			Action:    "swipe",
			Direction: direction,
			Error:     fmt.Sprintf("could not get screen dimensions: %v", err),
		}
	}

	startX, startY, endX, endY, dist := swipeVector(direction, distance, start, size)

	res := a.Swipe(ctx, startX, startY, endX, endY, durationMS)
	res.Direction = direction
	res.Distance = dist
	res.ScreenSize = &size
	return res
}

// swipeVector resolves the coordinates for a directional swipe. The
// start point defaults to screen center and the distance to one third
// of the smaller screen dimension.
func swipeVector(direction string, distance int, start *types.Point, size types.ScreenSize) (startX, startY, endX, endY, dist int) {
	startX, startY = size.Width/2, size.Height/2
	if start != nil {
		startX, startY = start.X, start.Y
	}
	dist = distance
	if dist <= 0 {
		dist = min(size.Width, size.Height) / 3
	}

	endX, endY = startX, startY
	switch direction {
	case "up":
		endY = startY - dist
	case "down":
		endY = startY + dist
	case "left":
		endX = startX - dist
	case "right":
		endX = startX + dist
	}
	return startX, startY, endX, endY, dist
}

// ========================================
// Text and key input
// ========================================

// shellQuote single-quotes s for the device shell
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// hasNonASCII reports whether text contains characters above 0x7F
func hasNonASCII(text string) bool {
	for _, r := range text {
		if r > 127 {
			return true
		}
	}
	return false
}

// InputText types text into the focused field. clearExisting wipes
// the field first; submit presses enter afterwards.
func (a *App) InputText(ctx context.Context, text string, clearExisting, submit bool) types.TextInputResult {
	res := types.TextInputResult{
		Action:       "text_input",
		Text:         text,
		ClearedFirst: clearExisting,
	}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	if clearExisting {
		if clear := a.clearTextField(ctx, deviceID); !clear {
			LogWarn("input").Msg("failed to clear text field before input")
		}
	}

	if hasNonASCII(text) {
		res.HasUnicode = true
		res.Warnings = append(res.Warnings,
			"Text contains non-ASCII characters. Standard Android text input may have limitations with Unicode. Consider using a specialized Unicode input method if text appears incorrectly.")
	}

	result, err := a.ExecuteADB(ctx, deviceID, inputTextCommand(text))
	if err != nil {
		res.Error = fmt.Sprintf("text input failed: %v", err)
		return res
	}
	res.Success = result.Success

	if submit && result.Success {
		submitRes := a.PressKey(ctx, "enter")
		res.Submitted = submitRes.Success
		if !submitRes.Success {
			LogWarn("input").Str("error", submitRes.Error).Msg("text input succeeded but submit failed")
		}
	}

	switch {
	case !result.Success:
		res.Details = strings.TrimSpace(result.Stderr)
	case res.Submitted:
		res.Details = "Text input successful and submitted"
	case submit:
		res.Details = "Text input successful but submit failed"
	default:
		res.Details = "Text input successful"
	}
	return res
}

// inputTextCommand builds the device-side input invocation. The whole
// shell remainder reaches the device as one argument, so the device
// shell is the only parser; single-quoting alone is correct, and any
// backslash escaping inside the quotes would be typed literally.
func inputTextCommand(text string) string {
	return fmt.Sprintf("-s {device} shell input text %s", shellQuote(text))
}

// keyNameMap translates friendly key names to Android keycodes
var keyNameMap = map[string]string{
	"back":        "KEYCODE_BACK",
	"home":        "KEYCODE_HOME",
	"menu":        "KEYCODE_MENU",
	"enter":       "KEYCODE_ENTER",
	"space":       "KEYCODE_SPACE",
	"delete":      "KEYCODE_DEL",
	"del":         "KEYCODE_DEL",
	"tab":         "KEYCODE_TAB",
	"escape":      "KEYCODE_ESCAPE",
	"volume_up":   "KEYCODE_VOLUME_UP",
	"volume_down": "KEYCODE_VOLUME_DOWN",
}

// PressKey sends a key event. keycode is a friendly name ("back"), a
// full keycode name ("KEYCODE_BACK") or a numeric code.
func (a *App) PressKey(ctx context.Context, keycode string) types.KeyPressResult {
	res := types.KeyPressResult{Action: "key_press", OriginalInput: keycode}

	actual := keycode
	if mapped, ok := keyNameMap[strings.ToLower(keycode)]; ok {
		actual = mapped
	}
	res.Keycode = actual

	if !validKeycode(actual) {
		res.Error = fmt.Sprintf("invalid keycode %q", keycode)
		return res
	}

	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	result, err := a.ExecuteADB(ctx, deviceID,
		fmt.Sprintf("-s {device} shell input keyevent %s", actual))
	if err != nil {
		res.Error = fmt.Sprintf("key press failed: %v", err)
		return res
	}

	res.Success = result.Success
	if result.Success {
		res.Details = fmt.Sprintf("Key %s pressed", actual)
	} else {
		res.Details = strings.TrimSpace(result.Stderr)
	}
	return res
}

// validKeycode accepts KEYCODE_* names, bare uppercase names like
// CAMERA or APP_SWITCH (forwarded to adb unchanged) and bare numbers.
func validKeycode(keycode string) bool {
	if keycode == "" {
		return false
	}
	if name := strings.TrimPrefix(keycode, "KEYCODE_"); name != keycode {
		return name != "" && wellFormedKeyName(name)
	}

	allDigits := true
	for _, r := range keycode {
		if r < '0' || r > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}

	return keycode[0] >= 'A' && keycode[0] <= 'Z' && wellFormedKeyName(keycode)
}

// wellFormedKeyName reports whether s contains only uppercase letters,
// digits and underscores.
func wellFormedKeyName(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// clearTextField empties the focused field via long-press select-all
// plus delete. Best effort; not every field supports it.
func (a *App) clearTextField(ctx context.Context, deviceID string) bool {
	sel, err := a.ExecuteADB(ctx, deviceID, "-s {device} shell input keyevent --longpress KEYCODE_A")
	if err != nil || !sel.Success {
		return false
	}
	del, err := a.ExecuteADB(ctx, deviceID, "-s {device} shell input keyevent KEYCODE_DEL")
	return err == nil && del.Success
}
