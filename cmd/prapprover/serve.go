package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/prapprover/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/prapprover/internal/adapter/driving/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"environment", cfg.Environment,
		"frontend_url", cfg.FrontendURL,
		"tool_timeout", cfg.ToolTimeout,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay := newRelayService(cfg, logger)

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(relay, cfg.Environment, logger))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(relay, cfg.Environment, logger))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.ApplyMiddleware(mux, cfg.FrontendURL, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout(cfg.ToolTimeout),
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// writeTimeout bounds a response by the gh timeout plus rendering slack.
// Without a gh timeout, responses are unbounded.
func writeTimeout(toolTimeout time.Duration) time.Duration {
	if toolTimeout <= 0 {
		return 0
	}
	return toolTimeout + 30*time.Second
}
