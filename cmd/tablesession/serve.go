package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/tablesession/internal/cli"
	httpadapter "github.com/aretw0/tablesession/pkg/adapters/http"
	"github.com/aretw0/tablesession/pkg/collector"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session HTTP API and run scheduled garbage collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
		}
		logger := cli.NewLogger(cfg)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		backend, err := cli.OpenBackend(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := backend.Close(); err != nil {
				logger.Warn("Failed to close backend", "err", err)
			}
		}()

		gcStore, err := backend.NewStore()
		if err != nil {
			return err
		}
		gc := collector.New(gcStore,
			collector.WithSchedule(cfg.GCSchedule),
			collector.WithMaxAge(cfg.MaxLifetime),
			collector.WithTimeout(cfg.GCTimeout),
			collector.WithLogger(logger),
		)
		if err := gc.Start(); err != nil {
			return err
		}

		handler := httpadapter.NewHandler(
			func() (ports.Handler, error) { return backend.NewStore() },
			httpadapter.WithGatherer(backend.Registry),
			httpadapter.WithLogger(logger),
		)
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		var serveErr error
		select {
		case <-ctx.Done():
			if sig := ctx.Signal(); sig != nil {
				logger.Info("Shutting down", "signal", sig.String())
			}
		case serveErr = <-errCh:
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = errors.Join(serveErr, fmt.Errorf("shutdown http server: %w", err))
		}
		if err := gc.Stop(shutdownCtx); err != nil {
			serveErr = errors.Join(serveErr, fmt.Errorf("stop collector: %w", err))
		}
		return serveErr
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (defaults to the configured http_addr)")
	rootCmd.AddCommand(serveCmd)
}
