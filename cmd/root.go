package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartfactory/llmops-console/internal/api"
	"github.com/smartfactory/llmops-console/internal/auth"
	"github.com/smartfactory/llmops-console/internal/config"
)

const version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "llmops-console",
	Short: "LLMOps Console - admin console for the Smart Factory monitoring backend",
	Long: `LLMOps Console is the terminal admin surface for the Smart Factory
LLM monitoring platform: traces, sessions, evaluators, judge templates,
evaluation logs, gold-set datasets, and the audit trail.

Key commands:
  llmops-console console    Start the interactive console (default)
  llmops-console login      Sign in with the corporate identity provider
  llmops-console logout     Clear the stored session
  llmops-console audit      Export audit logs to CSV
  llmops-console datasets   Trigger dataset evaluation runs`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to llmops.yml (defaults to the working directory)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := 1
		if exitErr, ok := err.(ExitError); ok {
			code = exitErr.Code
			err = exitErr.Err
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
}

type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return "exit"
	}
	return e.Err.Error()
}

// runtime bundles the pieces every subcommand assembles from config.
type runtime struct {
	cfg    *config.ProjectConfig
	logger *slog.Logger
	client *api.Client
	gate   *auth.Gate
	close  func()
}

// setup loads config and wires the shared components. fallback is where log
// output goes when no log file is configured; the interactive console passes
// io.Discard so slog never writes over the UI.
func setup(fallback io.Writer) (*runtime, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, ExitError{Code: 2, Err: err}
	}

	logger, closeLog, err := newLogger(cfg, fallback)
	if err != nil {
		return nil, ExitError{Code: 2, Err: err}
	}

	client := api.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutMS)*time.Millisecond, logger)
	store := auth.NewSessionStore(cfg.Auth.SessionFile)
	flow := auth.NewDeviceFlow(cfg.Auth.ClientID, cfg.Auth.Authority, cfg.Auth.Scopes)
	gate := auth.NewGate(store, flow, logger)

	return &runtime{cfg: cfg, logger: logger, client: client, gate: gate, close: closeLog}, nil
}

func newLogger(cfg *config.ProjectConfig, fallback io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	w := fallback
	closeLog := func() {}
	if cfg.Log.Path != "" {
		f, err := os.OpenFile(cfg.Log.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeLog = func() { _ = f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeLog, nil
}
