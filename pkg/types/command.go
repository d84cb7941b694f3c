package types

// CommandResult is the structured outcome of a single adb invocation.
// Immutable once returned; Error is set only on spawn/timeout failures.
type CommandResult struct {
	Success    bool   `json:"success"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ReturnCode int    `json:"returncode"`
	Command    string `json:"command"`
	Error      string `json:"error,omitempty"`
}
