package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/jaye773/android-mcp-server/pkg/types"
)

// ========================================
// ADB command execution
// ========================================

// Command templates. {device} is replaced with the target device ID at
// execution time; everything after "shell " travels to adb as a single
// argument so device-side pipes and quoting survive intact.
const (
	cmdDevicesList      = "devices -l"
	cmdDeviceProps      = "-s {device} shell getprop"
	cmdUIDump           = "-s {device} shell uiautomator dump"
	cmdUIDumpCompressed = "-s {device} shell uiautomator dump --compressed"
	cmdTapTemplate      = "-s {device} shell input tap %d %d"
	cmdSwipeTemplate    = "-s {device} shell input swipe %d %d %d %d %d"
	cmdKeyTemplate      = "-s {device} shell input keyevent %d"
)

// resolveADBPath locates the adb binary, honoring a config override
func resolveADBPath(override string) (string, error) {
	if override != "" {
		info, err := os.Stat(override)
		if err != nil {
			return "", NewError(ErrDependencyMissing,
				fmt.Sprintf("configured adb path %q is not usable", override), err)
		}
		if info.IsDir() {
			return "", Errorf(ErrDependencyMissing,
				"configured adb path %q is a directory", override)
		}
		return override, nil
	}
	path, err := exec.LookPath("adb")
	if err != nil {
		return "", NewError(ErrDependencyMissing,
			"adb not found on PATH; install Android platform-tools", err)
	}
	return path, nil
}

// newADBCommand builds an exec.Cmd for adb with proxy variables
// scrubbed from the environment. Some adb builds route TCP traffic
// through HTTP proxies and break wireless devices.
func (a *App) newADBCommand(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, a.adbPath, args...)

	env := os.Environ()
	newEnv := make([]string, 0, len(env))
	proxyVars := []string{"HTTP_PROXY", "HTTPS_PROXY", "ALL_PROXY", "NO_PROXY", "http_proxy", "https_proxy", "all_proxy", "no_proxy"}

	for _, e := range env {
		isProxy := false
		for _, v := range proxyVars {
			if strings.HasPrefix(e, v+"=") {
				isProxy = true
				break
			}
		}
		if !isProxy {
			newEnv = append(newEnv, e)
		}
	}
	cmd.Env = newEnv
	return cmd
}

// splitCommandArgs tokenizes a command string, honoring single and
// double quotes. Quotes group words; they do not appear in the output
// tokens.
func splitCommandArgs(command string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	inToken := false

	for _, r := range command {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				args = append(args, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		args = append(args, current.String())
	}
	return args
}

// adbArgs converts a command template into the argv passed to adb.
// The remainder after "shell " stays a single argument, so the device
// shell interprets pipes and redirects rather than the host.
func adbArgs(command string) []string {
	if idx := strings.Index(command, "shell "); idx >= 0 {
		head := splitCommandArgs(command[:idx])
		return append(append(head, "shell"), strings.TrimSpace(command[idx+len("shell "):]))
	}
	return splitCommandArgs(command)
}

// ExecuteADB runs one adb command, resolving the {device} placeholder
// against deviceID and clamping the run time to the remaining tool
// budget. The result always carries stdout/stderr/returncode; err is
// non-nil only for failures the caller cannot read out of the result.
func (a *App) ExecuteADB(ctx context.Context, deviceID, command string) (types.CommandResult, error) {
	return a.executeADB(ctx, deviceID, command, RemainingBudget(ctx))
}

// ExecuteADBTimeout is ExecuteADB with an explicit cap on the run
// time. The effective timeout never exceeds the remaining tool budget.
func (a *App) ExecuteADBTimeout(ctx context.Context, deviceID, command string, timeout time.Duration) (types.CommandResult, error) {
	if rem := RemainingBudget(ctx); timeout > rem {
		timeout = rem
	}
	if timeout < deadlineFloor {
		timeout = deadlineFloor
	}
	return a.executeADB(ctx, deviceID, command, timeout)
}

func (a *App) executeADB(ctx context.Context, deviceID, command string, timeout time.Duration) (types.CommandResult, error) {
	result := types.CommandResult{Command: command}

	if strings.Contains(command, "{device}") {
		if deviceID == "" {
			return result, Errorf(ErrDeviceNotFound, "command requires a device but none is selected")
		}
		if err := ValidateDeviceID(deviceID); err != nil {
			return result, NewError(ErrInvalidParameter, "invalid device ID", err)
		}
		command = strings.ReplaceAll(command, "{device}", deviceID)
		result.Command = command
	}

	command = strings.TrimSpace(command)
	if command == "" {
		return result, Errorf(ErrADBInvalidCommand, "empty adb command")
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := a.newADBCommand(runCtx, adbArgs(command)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// SIGTERM first so adb can clean up device-side children, hard
	// kill one second later.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Success = err == nil
	if cmd.ProcessState != nil {
		result.ReturnCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			result.Error = fmt.Sprintf("command timed out after %s", time.Since(start).Round(time.Millisecond))
			return result, NewError(ErrADBTimeout, result.Error, err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is a result, not a transport failure;
			// callers inspect Success and Stderr.
			return result, nil
		}
		result.Error = err.Error()
		return result, NewError(ErrADBExecution, "adb execution failed", err)
	}

	return result, nil
}

// RestartADBServer restarts the host adb daemon, the standard remedy
// for a wedged device list.
func (a *App) RestartADBServer(ctx context.Context) error {
	_ = a.newADBCommand(ctx, "kill-server").Run()
	time.Sleep(500 * time.Millisecond)

	out, err := a.newADBCommand(ctx, "start-server").CombinedOutput()
	if err != nil {
		return NewError(ErrADBDaemon,
			fmt.Sprintf("failed to start adb server: %s", strings.TrimSpace(string(out))), err)
	}
	LogInfo("adb").Msg("adb server restarted")
	return nil
}
