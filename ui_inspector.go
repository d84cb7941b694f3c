package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

// ========================================
// UI layout extraction
// ========================================

const uiDumpMaxRetries = 3

// xmlNode mirrors one node of the uiautomator dump
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
}

func (n *xmlNode) attr(name, fallback string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return fallback
}

// parseStrategy is one attempt at turning dump output into a tree.
// Strategies are tried in order; each must be a pure transformation of
// the input so retries stay deterministic.
type parseStrategy struct {
	name      string
	transform func(string) string
}

var parseStrategies = []parseStrategy{
	{name: "direct", transform: func(s string) string { return s }},
	{name: "cleaned", transform: cleanXMLContent},
	{name: "escaped", transform: escapeXMLAttributes},
}

// GetUILayout extracts the full UI hierarchy of the current screen.
// Failures are reported inside the result rather than as an error so
// the caller gets recovery detail in one shape.
func (a *App) GetUILayout(ctx context.Context, compressed, includeInvisible bool) types.LayoutResult {
	deviceID, err := a.requireDevice(ctx)
	if err != nil {
		return types.LayoutResult{
			Success:             false,
			Error:               err.Error(),
			RecoverySuggestions: SuggestionsOf(err),
		}
	}

	timer := StartOperation("ui", "get_ui_layout").AddDetail("device", deviceID)

	var recoveryAttempts []string
	var lastError string

	for attempt := 0; attempt < uiDumpMaxRetries; attempt++ {
		if attempt > 0 {
			sleepCtx(ctx, time.Second)
		}

		dumpCmd := cmdUIDump
		if compressed {
			dumpCmd = cmdUIDumpCompressed
		}

		result, err := a.ExecuteADBTimeout(ctx, deviceID, dumpCmd, StageBudget(ctx, 0.5, 30*time.Second))
		if err != nil || !result.Success {
			msg := classifyDumpFailure(result, err)
			lastError = msg
			if attempt < uiDumpMaxRetries-1 {
				recoveryAttempts = append(recoveryAttempts,
					fmt.Sprintf("Attempt %d: %s - retrying with compression=%v", attempt+1, msg, !compressed))
				// A different compression mode sometimes dodges
				// uiautomator crashes on heavy screens.
				compressed = !compressed
				continue
			}
			timer.EndWithError(fmt.Errorf("%s", msg))
			return types.LayoutResult{
				Success:          false,
				Error:            msg,
				RecoveryAttempts: recoveryAttempts,
				RecoverySuggestions: []string{
					"Ensure device is unlocked and USB debugging is enabled",
					"Try disconnecting and reconnecting the device",
					"Check if UIAutomator service is running",
					"Restart ADB server: 'adb kill-server && adb start-server'",
				},
			}
		}

		xmlContent := a.pullUIDump(ctx, deviceID)
		if xmlContent == "" {
			lastError = "failed to retrieve UI dump file from device"
			if attempt < uiDumpMaxRetries-1 {
				recoveryAttempts = append(recoveryAttempts,
					fmt.Sprintf("Attempt %d: failed to retrieve UI dump - retrying", attempt+1))
				continue
			}
			timer.EndWithError(fmt.Errorf("%s", lastError))
			return types.LayoutResult{
				Success:          false,
				Error:            "Failed to retrieve UI dump file from device",
				RecoveryAttempts: recoveryAttempts,
				RecoverySuggestions: []string{
					"Check if /sdcard/ is accessible on the device",
					"Ensure sufficient storage space on device",
					"Verify ADB shell access is working",
					"Try manually running: adb shell uiautomator dump",
				},
			}
		}

		layout := parseUIHierarchy(xmlContent, includeInvisible)
		if !layout.Success {
			lastError = layout.Error
			if attempt < uiDumpMaxRetries-1 {
				recoveryAttempts = append(recoveryAttempts,
					fmt.Sprintf("Attempt %d: %s - retrying", attempt+1, layout.Error))
				continue
			}
			layout.RecoveryAttempts = recoveryAttempts
			timer.EndWithError(fmt.Errorf("%s", layout.Error))
			return layout
		}

		layout.RecoveryAttempts = recoveryAttempts
		timer.AddDetail("elements", layout.Stats.TotalElements).End()
		return layout
	}

	return types.LayoutResult{
		Success:          false,
		Error:            fmt.Sprintf("UI layout extraction failed after %d attempts: %s", uiDumpMaxRetries, lastError),
		RecoveryAttempts: recoveryAttempts,
		RecoverySuggestions: []string{
			"Check device connection and ADB status",
			"Ensure device is unlocked and responsive",
			"Try restarting the target application",
			"Restart ADB: 'adb kill-server && adb start-server'",
		},
	}
}

// classifyDumpFailure maps uiautomator stderr to a specific message
func classifyDumpFailure(result types.CommandResult, err error) string {
	stderr := strings.ToLower(result.Stderr)
	switch {
	case strings.Contains(stderr, "uiautomator") && strings.Contains(stderr, "not found"):
		return "UIAutomator service not available. Try enabling developer options."
	case strings.Contains(stderr, "permission denied"):
		return "Permission denied. Check ADB permissions and USB debugging."
	case strings.Contains(stderr, "device offline"):
		return "Device offline. Reconnect device and try again."
	case err != nil:
		return fmt.Sprintf("UI dump command failed: %v", err)
	default:
		return fmt.Sprintf("UI dump command failed: %s", strings.TrimSpace(result.Stderr))
	}
}

// pullUIDump reads the dump file off the device, retrying while the
// file is still being written. Returns "" when no usable content
// could be fetched.
func (a *App) pullUIDump(ctx context.Context, deviceID string) string {
	const maxAttempts = 3
	dumpPath := a.cfg.DeviceDumpPath

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			sleepCtx(ctx, 500*time.Millisecond)
		}

		checkCmd := fmt.Sprintf("-s {device} shell test -f %s && echo exists || echo missing", dumpPath)
		check, err := a.ExecuteADBTimeout(ctx, deviceID, checkCmd, StageBudget(ctx, 0.3, 10*time.Second))
		if err == nil && check.Success && strings.Contains(check.Stdout, "missing") {
			LogWarn("ui").Int("attempt", attempt+1).Str("path", dumpPath).Msg("UI dump file not found yet")
			continue
		}

		result, err := a.ExecuteADBTimeout(ctx, deviceID,
			fmt.Sprintf("-s {device} shell cat %s", dumpPath), StageBudget(ctx, 0.5, 10*time.Second))
		if err != nil || !result.Success {
			LogWarn("ui").Int("attempt", attempt+1).Msg("failed to read UI dump file")
			continue
		}

		content := strings.TrimSpace(result.Stdout)
		if content == "" {
			continue
		}
		if !strings.HasPrefix(content, "<") || !strings.HasSuffix(content, ">") {
			LogWarn("ui").Int("attempt", attempt+1).Msg("UI dump content appears malformed")
			continue
		}
		if len(content) < 100 {
			LogWarn("ui").Int("attempt", attempt+1).Int("length", len(content)).Msg("UI dump content too short")
			continue
		}
		return content
	}
	return ""
}

// dumpErrorIndicators are failure markers uiautomator sometimes prints
// instead of (or into) the XML output.
var dumpErrorIndicators = []struct {
	marker  string
	message string
}{
	{"java.lang.runtimeexception", "UIAutomator runtime error occurred"},
	{"permission denied", "Permission denied - check device permissions"},
	{"device not found", "Device connection lost"},
	{"uiautomator not found", "UIAutomator service not available"},
}

// parseUIHierarchy turns dump XML into a flattened element list,
// falling back through the parse strategies in order.
func parseUIHierarchy(xmlContent string, includeInvisible bool) types.LayoutResult {
	xmlContent = strings.TrimSpace(xmlContent)
	if xmlContent == "" {
		return types.LayoutResult{
			Success: false,
			Error:   "Empty XML content received",
			RecoverySuggestions: []string{
				"Check if UIAutomator dump command executed successfully",
				"Ensure device screen is active and not in sleep mode",
				"Try refreshing the UI dump",
			},
		}
	}
	if !strings.HasPrefix(xmlContent, "<") {
		return types.LayoutResult{
			Success: false,
			Error:   "XML content does not start with valid XML tag",
			RecoverySuggestions: []string{
				"Check if ADB shell command output is being captured correctly",
				"Verify device file system permissions",
				"Try running UIAutomator dump manually",
			},
		}
	}

	lower := strings.ToLower(xmlContent)
	for _, ind := range dumpErrorIndicators {
		if strings.Contains(lower, ind.marker) {
			return types.LayoutResult{
				Success: false,
				Error:   fmt.Sprintf("%s: %q found in output", ind.message, ind.marker),
				RecoverySuggestions: []string{
					"Check device connection and ADB status",
					"Ensure UIAutomator service is running",
					"Try restarting the target application",
					"Enable developer options and USB debugging",
				},
			}
		}
	}

	var lastErr error
	for _, strategy := range parseStrategies {
		var root xmlNode
		if err := xml.Unmarshal([]byte(strategy.transform(xmlContent)), &root); err != nil {
			lastErr = err
			LogWarn("ui").Str("strategy", strategy.name).Err(err).Msg("XML parsing failed")
			continue
		}

		var elements []types.UIElement
		flattenNode(&root, includeInvisible, &elements)

		result := types.LayoutResult{
			Success:       true,
			Elements:      elements,
			XMLDump:       xmlContent,
			ParseStrategy: strategy.name,
			Stats:         calculateStats(elements),
		}
		if strategy.name != "direct" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("XML parsing succeeded using %q strategy", strategy.name))
		}
		return result
	}

	return types.LayoutResult{
		Success: false,
		Error:   fmt.Sprintf("XML parsing failed with all recovery strategies. Last error: %v", lastErr),
		RecoverySuggestions: []string{
			"The XML content appears to be malformed or corrupted",
			"Try refreshing the UI dump",
			"Check if the target app is still running and responsive",
			"Restart the app and try again",
		},
	}
}

// flattenNode walks the tree depth-first, appending every node (or
// every visible node) to out in document order.
func flattenNode(node *xmlNode, includeInvisible bool, out *[]types.UIElement) {
	displayed := strings.EqualFold(node.attr("displayed", "true"), "true")
	if displayed || includeInvisible {
		// The synthetic <hierarchy> root has no class attribute and
		// carries no usable geometry.
		if node.XMLName.Local != "hierarchy" {
			*out = append(*out, types.UIElement{
				Text:        node.attr("text", ""),
				ResourceID:  node.attr("resource-id", ""),
				Class:       node.attr("class", ""),
				ContentDesc: node.attr("content-desc", ""),
				Bounds:      node.attr("bounds", "[0,0][0,0]"),
				Clickable:   strings.ToLower(node.attr("clickable", "false")),
				Enabled:     strings.ToLower(node.attr("enabled", "true")),
				Focusable:   strings.ToLower(node.attr("focusable", "false")),
				Scrollable:  strings.ToLower(node.attr("scrollable", "false")),
				Displayed:   strings.ToLower(node.attr("displayed", "true")),
			})
		}
	} else {
		// Invisible subtree is skipped entirely
		return
	}

	for i := range node.Children {
		flattenNode(&node.Children[i], includeInvisible, out)
	}
}

func calculateStats(elements []types.UIElement) types.LayoutStats {
	stats := types.LayoutStats{TotalElements: len(elements)}
	for _, el := range elements {
		if el.Clickable == "true" {
			stats.ClickableElements++
		}
	}
	return stats
}

// controlCharPattern matches bytes that are illegal inside XML 1.0
var controlCharPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// dirtyTextAttrPattern matches text attributes polluted with control bytes
var dirtyTextAttrPattern = regexp.MustCompile(`text="[^"]*[\x00-\x08\x0B\x0C\x0E-\x1F\x7F][^"]*"`)
var dirtyDescAttrPattern = regexp.MustCompile(`content-desc="[^"]*[\x00-\x08\x0B\x0C\x0E-\x1F\x7F][^"]*"`)

// cleanXMLContent strips control bytes and blanks out attribute values
// that still contain them.
func cleanXMLContent(content string) string {
	cleaned := dirtyTextAttrPattern.ReplaceAllString(content, `text=""`)
	cleaned = dirtyDescAttrPattern.ReplaceAllString(cleaned, `content-desc=""`)
	return controlCharPattern.ReplaceAllString(cleaned, "")
}

// textAttrPattern captures text-bearing attributes for re-escaping
var textAttrPattern = regexp.MustCompile(`(text|content-desc)="([^"]*)"`)

// escapeXMLAttributes re-escapes raw markup characters that apps
// occasionally leak into text attributes.
func escapeXMLAttributes(content string) string {
	return textAttrPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := textAttrPattern.FindStringSubmatch(match)
		value := m[2]
		// Unescape first so already-valid entities do not double up
		value = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", "\"", "&apos;", "'").Replace(value)
		value = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;", "'", "&apos;").Replace(value)
		return m[1] + `="` + value + `"`
	})
}

// ========================================
// Bounds parsing
// ========================================

// boundsPattern matches the Android bounds format "[l,t][r,b]"
var boundsPattern = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// ParseBounds parses "[left,top][right,bottom]". Inverted rectangles
// are normalized by swapping, negative coordinates clamp to zero, and
// anything unparseable collapses to the zero rectangle.
func ParseBounds(boundsStr string) types.Bounds {
	m := boundsPattern.FindStringSubmatch(strings.TrimSpace(boundsStr))
	if m == nil {
		if boundsStr != "" {
			LogWarn("ui").Str("bounds", boundsStr).Msg("failed to parse bounds")
		}
		return types.Bounds{}
	}

	left, _ := strconv.Atoi(m[1])
	top, _ := strconv.Atoi(m[2])
	right, _ := strconv.Atoi(m[3])
	bottom, _ := strconv.Atoi(m[4])

	if left > right {
		left, right = right, left
	}
	if top > bottom {
		top, bottom = bottom, top
	}
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	return types.Bounds{
		Left:   clamp(left),
		Top:    clamp(top),
		Right:  clamp(right),
		Bottom: clamp(bottom),
	}
}

// ListScreenElements returns the interactive elements of the current
// screen in a compact, coordinate-first shape.
func (a *App) ListScreenElements(ctx context.Context, includeAll bool) ([]types.ScreenElement, error) {
	layout := a.GetUILayout(ctx, false, false)
	if !layout.Success {
		return nil, NewError(ErrUIDumpFailed, layout.Error, nil)
	}

	var out []types.ScreenElement
	for _, el := range layout.Elements {
		interactive := el.Clickable == "true" || el.Scrollable == "true" || el.Focusable == "true"
		hasContent := el.Text != "" || el.ContentDesc != ""
		if !includeAll && !interactive && !hasContent {
			continue
		}

		bounds := ParseBounds(el.Bounds)
		out = append(out, types.ScreenElement{
			Type:       shortClassName(el.Class),
			Text:       el.Text,
			Label:      el.ContentDesc,
			Identifier: el.ResourceID,
			Coordinates: types.ElementFrame{
				X:      bounds.Left,
				Y:      bounds.Top,
				Width:  bounds.Width(),
				Height: bounds.Height(),
			},
			Clickable:  el.Clickable == "true",
			Enabled:    el.Enabled == "true",
			Focusable:  el.Focusable == "true",
			Scrollable: el.Scrollable == "true",
		})
	}
	return out, nil
}

// shortClassName trims "android.widget.Button" to "Button"
func shortClassName(class string) string {
	if idx := strings.LastIndex(class, "."); idx >= 0 {
		return class[idx+1:]
	}
	return class
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
