package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerUITools registers UI inspection tools
func (s *MCPServer) registerUITools() {
	// ui_layout - Extract the full UI hierarchy
	s.server.AddTool(
		mcp.NewTool("ui_layout",
			mcp.WithDescription("Extract the current UI hierarchy of the selected device as a flat element list with bounds, text, and interaction attributes"),
			mcp.WithBoolean("compressed",
				mcp.Description("Use compressed uiautomator dump output (default: false)"),
			),
			mcp.WithBoolean("include_invisible",
				mcp.Description("Include elements whose displayed attribute is false (default: false)"),
			),
		),
		s.handleUILayout,
	)

	// ui_elements - List meaningful screen elements
	s.server.AddTool(
		mcp.NewTool("ui_elements",
			mcp.WithDescription("List the interactive or labeled elements on the current screen in a compact, readable form with tap coordinates"),
			mcp.WithBoolean("include_all",
				mcp.Description("Include non-interactive elements that carry text or a description (default: false)"),
			),
		),
		s.handleUIElements,
	)

	// ui_find - Find elements by criteria
	s.server.AddTool(
		mcp.NewTool("ui_find",
			mcp.WithDescription("Find UI elements on the current screen matching text, resource ID, class name, or content description"),
			mcp.WithString("text",
				mcp.Description("Text to match (case-insensitive substring unless exact_match)"),
			),
			mcp.WithString("resource_id",
				mcp.Description("Resource ID to match (case-sensitive substring)"),
			),
			mcp.WithString("class_name",
				mcp.Description("Widget class name to match"),
			),
			mcp.WithString("content_desc",
				mcp.Description("Content description to match"),
			),
			mcp.WithBoolean("clickable_only",
				mcp.Description("Only return clickable elements (default: false)"),
			),
			mcp.WithBoolean("enabled_only",
				mcp.Description("Only return enabled elements (default: true)"),
			),
			mcp.WithBoolean("exact_match",
				mcp.Description("Require exact case-sensitive matches (default: false)"),
			),
			mcp.WithBoolean("best",
				mcp.Description("Return only the highest-scoring match (default: false)"),
			),
		),
		s.handleUIFind,
	)
}

// Tool handlers

func (s *MCPServer) handleUILayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "get_ui_layout")
	defer cancel()

	args := request.GetArguments()
	compressed := argBool(args, "compressed", false)
	includeInvisible := argBool(args, "include_invisible", false)

	layout := s.app.GetUILayout(ctx, compressed, includeInvisible)
	if !layout.Success {
		return layoutErrorResult(layout), nil
	}

	summary := fmt.Sprintf("Extracted %d element(s) (%d clickable) using %s parse strategy",
		layout.Stats.TotalElements, layout.Stats.ClickableElements, layout.ParseStrategy)
	if len(layout.Warnings) > 0 {
		summary += "\nWarnings: " + strings.Join(layout.Warnings, "; ")
	}

	// The raw XML dump can be very large; elements carry everything needed
	layout.XMLDump = ""
	return jsonResult(summary, layout), nil
}

func (s *MCPServer) handleUIElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "get_screen_elements")
	defer cancel()

	args := request.GetArguments()
	includeAll := argBool(args, "include_all", false)

	elements, err := s.app.ListScreenElements(ctx, includeAll)
	if err != nil {
		return errorResult("screen element listing", err), nil
	}

	if len(elements) == 0 {
		return textResult("No meaningful elements found on the current screen"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d element(s):\n\n", len(elements))
	for i, el := range elements {
		label := el.Text
		if label == "" {
			label = el.Label
		}
		cx := el.Coordinates.X + el.Coordinates.Width/2
		cy := el.Coordinates.Y + el.Coordinates.Height/2
		fmt.Fprintf(&b, "%d. %s %q at (%d,%d)", i+1, el.Type, label, cx, cy)
		if el.Clickable {
			b.WriteString(" [clickable]")
		}
		b.WriteString("\n")
	}

	return jsonResult(b.String(), elements), nil
}

func (s *MCPServer) handleUIFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "find_elements")
	defer cancel()

	args := request.GetArguments()
	criteria := criteriaFromArgs(args)
	if criteria.Empty() {
		return nil, fmt.Errorf("at least one of text, resource_id, class_name, or content_desc is required")
	}

	if argBool(args, "best", false) {
		el := s.app.FindBestElement(ctx, criteria)
		if el == nil {
			return textResult("No element matched the criteria"), nil
		}
		return jsonResult(fmt.Sprintf("Best match: %s %q at %s", el.Class, el.Text, el.Bounds), el), nil
	}

	elements := s.app.FindElements(ctx, criteria)
	if len(elements) == 0 {
		return textResult("No elements matched the criteria"), nil
	}
	return jsonResult(fmt.Sprintf("Found %d matching element(s)", len(elements)), elements), nil
}

// criteriaFromArgs builds search criteria from tool arguments
func criteriaFromArgs(args map[string]interface{}) FindCriteria {
	return FindCriteria{
		Text:           argString(args, "text"),
		ResourceID:     argString(args, "resource_id"),
		ClassName:      argString(args, "class_name"),
		ContentDesc:    argString(args, "content_desc"),
		ClickableOnly:  argBool(args, "clickable_only", false),
		EnabledOnly:    argBool(args, "enabled_only", true),
		ScrollableOnly: argBool(args, "scrollable_only", false),
		ExactMatch:     argBool(args, "exact_match", false),
	}
}

// layoutErrorResult renders a failed layout extraction with its
// recovery attempts and suggestions.
func layoutErrorResult(layout LayoutResult) *mcp.CallToolResult {
	var b strings.Builder
	fmt.Fprintf(&b, "UI layout extraction failed: %s", layout.Error)
	if len(layout.RecoveryAttempts) > 0 {
		b.WriteString("\n\nRecovery attempts:")
		for _, a := range layout.RecoveryAttempts {
			fmt.Fprintf(&b, "\n- %s", a)
		}
	}
	if len(layout.RecoverySuggestions) > 0 {
		b.WriteString("\n\nRecovery suggestions:")
		for _, sg := range layout.RecoverySuggestions {
			fmt.Fprintf(&b, "\n- %s", sg)
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(b.String()),
		},
		IsError: true,
	}
}
