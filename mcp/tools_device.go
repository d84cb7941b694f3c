package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerDeviceTools registers device management tools
func (s *MCPServer) registerDeviceTools() {
	// device_list - List connected devices
	s.server.AddTool(
		mcp.NewTool("device_list",
			mcp.WithDescription("List all connected Android devices with their connection state and properties"),
		),
		s.handleDeviceList,
	)

	// device_select - Select the active device
	s.server.AddTool(
		mcp.NewTool("device_select",
			mcp.WithDescription("Select the device that subsequent tools operate on. Without a device_id the best available device is chosen automatically: the previously used device first, then physical devices, then emulators."),
			mcp.WithString("device_id",
				mcp.Description("Device ID to select; omit for automatic selection"),
			),
		),
		s.handleDeviceSelect,
	)

	// device_info - Get device information
	s.server.AddTool(
		mcp.NewTool("device_info",
			mcp.WithDescription("Get detailed information about a device: model, Android version, SDK level, screen size, and the current foreground app"),
			mcp.WithString("device_id",
				mcp.Description("Device ID to get information for; omit to use the selected device"),
			),
		),
		s.handleDeviceInfo,
	)

	// device_health - Check device readiness
	s.server.AddTool(
		mcp.NewTool("device_health",
			mcp.WithDescription("Run connectivity, screen state, and UI service health checks against a device"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("Device ID to check"),
			),
		),
		s.handleDeviceHealth,
	)
}

// Tool handlers

func (s *MCPServer) handleDeviceList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "device_list")
	defer cancel()

	devices, err := s.app.ListDevices(ctx)
	if err != nil {
		return errorResult("device listing", err), nil
	}

	if len(devices) == 0 {
		return textResult("No devices connected"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d device(s):\n\n", len(devices))
	for i, d := range devices {
		kind := "physical"
		if d.IsEmulator() {
			kind = "emulator"
		}
		fmt.Fprintf(&b, "%d. %s [%s] (%s)\n", i+1, d.ID, d.Status, kind)
		if model, ok := d.Properties["model"]; ok {
			fmt.Fprintf(&b, "   Model: %s\n", model)
		}
	}

	return jsonResult(b.String(), devices), nil
}

func (s *MCPServer) handleDeviceSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "device_select")
	defer cancel()

	args := request.GetArguments()
	deviceID := argString(args, "device_id")

	var (
		selection Selection
		err       error
	)
	if deviceID == "" {
		selection, err = s.app.AutoSelectDevice(ctx)
	} else {
		selection, err = s.app.SelectDevice(ctx, deviceID)
	}
	if err != nil {
		return errorResult("device selection", err), nil
	}

	summary := fmt.Sprintf("Selected device %s (%s)", selection.Selected.ID, selection.Reason)
	return jsonResult(summary, selection), nil
}

func (s *MCPServer) handleDeviceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "device_info")
	defer cancel()

	args := request.GetArguments()
	deviceID := argString(args, "device_id")

	// Empty device_id falls through to the selected device.
	info, err := s.app.GetDeviceInfo(ctx, deviceID)
	if err != nil {
		return errorResult("device info", err), nil
	}
	if deviceID == "" {
		deviceID = info.DeviceID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Device: %s\n\n", deviceID)
	fmt.Fprintf(&b, "Model: %s\n", info.Model)
	fmt.Fprintf(&b, "Manufacturer: %s\n", info.Manufacturer)
	fmt.Fprintf(&b, "Android Version: %s\n", info.AndroidVersion)
	fmt.Fprintf(&b, "API Level: %s\n", info.APILevel)

	// Screen size and foreground app are best-effort extras
	if size, err := s.app.GetScreenSize(ctx, deviceID); err == nil {
		fmt.Fprintf(&b, "Screen: %dx%d\n", size.Width, size.Height)
	}
	if fg, err := s.app.GetForegroundApp(ctx, deviceID); err == nil && fg.Package != "" {
		fmt.Fprintf(&b, "Foreground App: %s", fg.Package)
		if fg.Activity != "" {
			fmt.Fprintf(&b, "/%s", fg.Activity)
		}
		b.WriteString("\n")
	}

	return jsonResult(b.String(), info), nil
}

func (s *MCPServer) handleDeviceHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := s.withToolTimeout(ctx, "device_health")
	defer cancel()

	args := request.GetArguments()
	deviceID := argString(args, "device_id")
	if deviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}

	report, err := s.app.CheckDeviceHealth(ctx, deviceID)
	if err != nil {
		return errorResult("device health check", err), nil
	}

	verdict := "healthy"
	if !report.Healthy {
		verdict = "NOT healthy"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Device %s is %s (policy: %s)\n", deviceID, verdict, report.Policy)
	for name, check := range report.Checks {
		status := "PASS"
		if !check.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "- %s: %s (%s)\n", name, status, check.Details)
	}

	return jsonResult(b.String(), report), nil
}
