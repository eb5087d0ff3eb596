package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/chatflow/internal/cli"
	httpAdapter "github.com/aretw0/chatflow/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves flows and conversations as a JSON API over HTTP: stateless turns on
/flows/{id}/run, persisted conversations on /conversations, SSE state diffs and
Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		app, err := cli.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := []httpAdapter.Option{
			httpAdapter.WithSessions(app.Sessions),
			httpAdapter.WithLogger(logger),
		}
		if app.Registry != nil {
			opts = append(opts, httpAdapter.WithMetrics(app.Registry))
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(app.Engine, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting chatflow server", "addr", srv.Addr, "source", cfg.Flows.Source, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("chatflow server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides server.addr)")
}
