package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/casewatch/internal/config"
	"github.com/okian/casewatch/pkg/logger"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the refresh engine and the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

// runServe runs the engine, the HTTP server and the system metrics loop
// until ctx is canceled or one of them fails.
func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := newService(cfg, newSource(cfg))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if err := svc.Start(gctx); err != nil {
		return err
	}
	defer svc.Stop()

	srv := newHTTPServer(cfg.Addr, newMux(gctx, cfg, svc))

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		runSystemMetricsUpdater(gctx, systemMetricsInterval)
		return nil
	})

	err = g.Wait()
	log.Info(context.WithoutCancel(ctx), "server stopped")
	return err
}
