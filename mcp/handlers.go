package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Argument extraction helpers. mcp-go delivers JSON arguments as
// map[string]interface{}, so numbers arrive as float64.

func argString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func argBool(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func argInt(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// textResult wraps a plain text payload
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// jsonResult renders a human summary line followed by the structured
// payload, so clients get both narration and machine-readable data.
func jsonResult(summary string, payload interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return textResult(fmt.Sprintf("%s\n(failed to serialize details: %v)", summary, err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(summary),
			mcp.NewTextContent(fmt.Sprintf("```json\n%s\n```", string(data))),
		},
	}
}

// jsonErrorResult is jsonResult with the IsError flag set; used for
// operations that report failure inside their result struct.
func jsonErrorResult(summary string, payload interface{}) *mcp.CallToolResult {
	result := jsonResult(summary, payload)
	result.IsError = true
	return result
}

// suggester is satisfied by the app's error type; asserting the
// interface avoids importing the root package.
type suggester interface {
	RecoverySuggestions() []string
}

// errorResult converts an App error into an IsError tool result,
// including recovery suggestions when the error carries them.
func errorResult(action string, err error) *mcp.CallToolResult {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed: %v", action, err)
	var sg suggester
	if errors.As(err, &sg) {
		if suggestions := sg.RecoverySuggestions(); len(suggestions) > 0 {
			b.WriteString("\n\nRecovery suggestions:")
			for _, s := range suggestions {
				fmt.Fprintf(&b, "\n- %s", s)
			}
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(b.String()),
		},
		IsError: true,
	}
}
