package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/prapprover/internal/adapter/driven/ghcli"
	"github.com/ericfisherdev/prapprover/internal/application"
	"github.com/ericfisherdev/prapprover/internal/config"
)

// Exit codes returned by Execute.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

var listenAddr string

var rootCmd = &cobra.Command{
	Use:           "prapprover",
	Short:         "Review and merge GitHub pull requests through the gh CLI",
	Long:          "prapprover serves a small web UI and JSON API that relay review, approve and merge actions to the locally authenticated gh CLI.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.PersistentFlags().StringVar(&listenAddr, "addr", "", "listen address (overrides PRAPPROVER_LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(diagnoseCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		return ExitFailure
	}
	return ExitSuccess
}

// loadConfig reads the environment and installs the process-wide logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newLogger writes JSON lines in production and plain text elsewhere.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newRelayService(cfg *config.Config, logger *slog.Logger) *application.RelayService {
	runner := ghcli.NewExecRunner(cfg.ToolTimeout, logger)
	return application.NewRelayService(ghcli.NewClient(runner, logger), logger)
}
