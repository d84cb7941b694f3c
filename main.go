package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaye773/android-mcp-server/mcp"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	cfg := DefaultConfig()
	logLevel := "info"
	logFile := ""

	root := &cobra.Command{
		Use:          "android-mcp-server",
		Short:        "MCP server exposing adb-backed Android device automation",
		Long:         "android-mcp-server speaks the Model Context Protocol over stdio and lets MCP clients inspect, tap, type on, record, and read logs from connected Android devices through adb.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, logLevel, logFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.ADBPath, "adb-path", "", "path to the adb binary (default: search PATH)")
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for pulled screenshots, recordings, and monitor output")
	flags.StringVar(&cfg.HealthPolicy, "health-policy", cfg.HealthPolicy, "health check combination policy: all, any, or quorum")
	flags.StringVar(&logLevel, "log-level", logLevel, "log level: trace, debug, info, warn, or error")
	flags.StringVar(&logFile, "log-file", "", "also write logs to this file (default: none)")

	root.AddCommand(&cobra.Command{
		Use:   "restart-adb",
		Short: "Restart the host adb daemon and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestartADB(cfg, logLevel, logFile)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// logConfigFor builds the logger configuration from the CLI flags.
// The file sink is enabled only when a path was given.
func logConfigFor(logLevel, logFile string) LogConfig {
	cfg := DefaultLogConfig()
	cfg.Level = ParseLogLevel(logLevel)
	if logFile != "" {
		cfg.File = true
		cfg.FilePath = logFile
	}
	return cfg
}

// runRestartADB kills and restarts the host adb server, the usual
// remedy for a wedged device list.
func runRestartADB(cfg Config, logLevel, logFile string) error {
	if err := InitLogger(logConfigFor(logLevel, logFile)); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
	}
	defer CloseLogger()

	app := NewApp(cfg, version)
	ctx := context.Background()
	if err := app.Startup(ctx); err != nil {
		return err
	}
	defer app.Shutdown(ctx)

	return app.RestartADBServer(ctx)
}

func run(cfg Config, logLevel, logFile string) error {
	if !ValidHealthPolicy(cfg.HealthPolicy) {
		return fmt.Errorf("invalid health policy %q (want all, any, or quorum)", cfg.HealthPolicy)
	}
	cfg.LogLevel = logLevel
	cfg.LogFile = logFile

	// stdout belongs to the MCP transport; logging stays on stderr
	// and the optional file.
	if err := InitLogger(logConfigFor(logLevel, logFile)); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
	}
	defer CloseLogger()

	app := NewApp(cfg, version)
	ctx := context.Background()
	if err := app.Startup(ctx); err != nil {
		LogError("main").Err(err).Msg("startup failed")
		return err
	}
	defer app.Shutdown(ctx)

	server := mcp.NewMCPServer(app)
	return server.Start()
}
