package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerInputTools registers screen interaction tools
func (s *MCPServer) registerInputTools() {
	// input_tap - Tap at coordinates
	s.server.AddTool(
		mcp.NewTool("input_tap",
			mcp.WithDescription("Tap the screen at the given pixel coordinates"),
			mcp.WithNumber("x",
				mcp.Required(),
				mcp.Description("X coordinate in pixels"),
			),
			mcp.WithNumber("y",
				mcp.Required(),
				mcp.Description("Y coordinate in pixels"),
			),
			mcp.WithNumber("duration_ms",
				mcp.Description("Press duration in milliseconds; values > 0 perform a long press (default: 0)"),
			),
		),
		s.handleInputTap,
	)

	// input_tap_element - Tap an element found by criteria
	s.server.AddTool(
		mcp.NewTool("input_tap_element",
			mcp.WithDescription("Find a UI element by text, resource ID, class, or content description and tap its center"),
			mcp.WithString("text",
				mcp.Description("Text to match"),
			),
			mcp.WithString("resource_id",
				mcp.Description("Resource ID to match"),
			),
			mcp.WithString("class_name",
				mcp.Description("Widget class name to match"),
			),
			mcp.WithString("content_desc",
				mcp.Description("Content description to match"),
			),
			mcp.WithBoolean("clickable_only",
				mcp.Description("Only consider clickable elements (default: false)"),
			),
			mcp.WithBoolean("enabled_only",
				mcp.Description("Only consider enabled elements (default: true)"),
			),
			mcp.WithBoolean("exact_match",
				mcp.Description("Require exact matches (default: false)"),
			),
			mcp.WithNumber("index",
				mcp.Description("Which match to tap when several elements match (default: 0)"),
			),
		),
		s.handleInputTapElement,
	)

	// input_swipe - Swipe between coordinates
	s.server.AddTool(
		mcp.NewTool("input_swipe",
			mcp.WithDescription("Swipe from one screen coordinate to another"),
			mcp.WithNumber("start_x", mcp.Required(), mcp.Description("Start X coordinate")),
			mcp.WithNumber("start_y", mcp.Required(), mcp.Description("Start Y coordinate")),
			mcp.WithNumber("end_x", mcp.Required(), mcp.Description("End X coordinate")),
			mcp.WithNumber("end_y", mcp.Required(), mcp.Description("End Y coordinate")),
			mcp.WithNumber("duration_ms",
				mcp.Description("Swipe duration in milliseconds (default: 300)"),
			),
		),
		s.handleInputSwipe,
	)

	// input_swipe_direction - Swipe in a named direction
	s.server.AddTool(
		mcp.NewTool("input_swipe_direction",
			mcp.WithDescription("Swipe up, down, left, or right. Starts from the screen center unless coordinates are given; distance defaults to a third of the smaller screen dimension"),
			mcp.WithString("direction",
				mcp.Required(),
				mcp.Description("Swipe direction: up, down, left, or right"),
			),
			mcp.WithNumber("distance",
				mcp.Description("Swipe distance in pixels (default: min(width,height)/3)"),
			),
			mcp.WithNumber("start_x",
				mcp.Description("Start X coordinate (default: screen center)"),
			),
			mcp.WithNumber("start_y",
				mcp.Description("Start Y coordinate (default: screen center)"),
			),
			mcp.WithNumber("duration_ms",
				mcp.Description("Swipe duration in milliseconds (default: 300)"),
			),
		),
		s.handleInputSwipeDirection,
	)

	// input_text - Type text
	s.server.AddTool(
		mcp.NewTool("input_text",
			mcp.WithDescription("Type text into the currently focused input field. ASCII is typed directly; non-ASCII characters may be dropped by the device keyboard"),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Text to type"),
			),
			mcp.WithBoolean("clear_existing",
				mcp.Description("Clear the field before typing (default: false)"),
			),
			mcp.WithBoolean("submit",
				mcp.Description("Press enter after typing (default: false)"),
			),
		),
		s.handleInputText,
	)

	// input_key - Press a key
	s.server.AddTool(
		mcp.NewTool("input_key",
			mcp.WithDescription("Press a device key by name (back, home, menu, enter, space, delete, tab, escape, volume_up, volume_down) or by KEYCODE_* constant or numeric code"),
			mcp.WithString("keycode",
				mcp.Required(),
				mcp.Description("Key name, KEYCODE_* constant, or numeric keycode"),
			),
		),
		s.handleInputKey,
	)
}

// Tool handlers

func (s *MCPServer) handleInputTap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	x := argInt(args, "x", -1)
	y := argInt(args, "y", -1)
	if x < 0 || y < 0 {
		return nil, fmt.Errorf("x and y coordinates are required and must be non-negative")
	}

	durationMS := argInt(args, "duration_ms", 0)

	var result TapResult
	if durationMS > 0 {
		ctx, cancel := s.withToolTimeout(ctx, "long_press_screen")
		defer cancel()
		result = s.app.LongPress(ctx, x, y, durationMS)
	} else {
		ctx, cancel := s.withToolTimeout(ctx, "tap_screen")
		defer cancel()
		result = s.app.Tap(ctx, x, y)
	}

	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("%s at (%d,%d) failed: %s", result.Action, x, y, result.Error), result), nil
	}
	return jsonResult(fmt.Sprintf("Performed %s at (%d,%d)", result.Action, x, y), result), nil
}

func (s *MCPServer) handleInputTapElement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "tap_element")
	defer cancel()

	args := request.GetArguments()
	criteria := criteriaFromArgs(args)
	if criteria.Empty() {
		return nil, fmt.Errorf("at least one of text, resource_id, class_name, or content_desc is required")
	}

	index := argInt(args, "index", 0)
	result := s.app.TapElement(ctx, criteria, index)
	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("Element tap failed: %s", result.Error), result), nil
	}

	summary := fmt.Sprintf("Tapped element %d of %d at (%d,%d)",
		result.IndexUsed+1, result.TotalFound, result.Coordinates.X, result.Coordinates.Y)
	return jsonResult(summary, result), nil
}

func (s *MCPServer) handleInputSwipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "swipe_screen")
	defer cancel()

	args := request.GetArguments()
	startX := argInt(args, "start_x", -1)
	startY := argInt(args, "start_y", -1)
	endX := argInt(args, "end_x", -1)
	endY := argInt(args, "end_y", -1)
	if startX < 0 || startY < 0 || endX < 0 || endY < 0 {
		return nil, fmt.Errorf("start_x, start_y, end_x, and end_y are required and must be non-negative")
	}

	result := s.app.Swipe(ctx, startX, startY, endX, endY, argInt(args, "duration_ms", 0))
	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("Swipe failed: %s", result.Error), result), nil
	}

	summary := fmt.Sprintf("Swiped from (%d,%d) to (%d,%d) over %dms",
		result.Start.X, result.Start.Y, result.End.X, result.End.Y, result.DurationMS)
	return jsonResult(summary, result), nil
}

func (s *MCPServer) handleInputSwipeDirection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "swipe_direction")
	defer cancel()

	args := request.GetArguments()
	direction := argString(args, "direction")
	if direction == "" {
		return nil, fmt.Errorf("direction is required")
	}

	var start *Point
	if x, y := argInt(args, "start_x", -1), argInt(args, "start_y", -1); x >= 0 && y >= 0 {
		start = &Point{X: x, Y: y}
	}

	result := s.app.SwipeDirection(ctx, direction, argInt(args, "distance", 0), start, argInt(args, "duration_ms", 0))
	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("Swipe %s failed: %s", direction, result.Error), result), nil
	}

	summary := fmt.Sprintf("Swiped %s %dpx from (%d,%d)",
		result.Direction, result.Distance, result.Start.X, result.Start.Y)
	return jsonResult(summary, result), nil
}

func (s *MCPServer) handleInputText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "input_text")
	defer cancel()

	args := request.GetArguments()
	text := argString(args, "text")
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	result := s.app.InputText(ctx, text,
		argBool(args, "clear_existing", false),
		argBool(args, "submit", false))
	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("Text input failed: %s", result.Error), result), nil
	}

	summary := fmt.Sprintf("Typed %d character(s)", len(result.Text))
	if result.Submitted {
		summary += " and pressed enter"
	}
	return jsonResult(summary, result), nil
}

func (s *MCPServer) handleInputKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "press_key")
	defer cancel()

	args := request.GetArguments()
	keycode := argString(args, "keycode")
	if keycode == "" {
		return nil, fmt.Errorf("keycode is required")
	}

	result := s.app.PressKey(ctx, keycode)
	if !result.Success {
		return jsonErrorResult(fmt.Sprintf("Key press %q failed: %s", keycode, result.Error), result), nil
	}
	return jsonResult(fmt.Sprintf("Pressed %s", result.Keycode), result), nil
}
