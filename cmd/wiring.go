package main

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/okian/casewatch/internal/adapters/http/api"
	"github.com/okian/casewatch/internal/adapters/http/swagger"
	"github.com/okian/casewatch/internal/adapters/source"
	app "github.com/okian/casewatch/internal/app"
	"github.com/okian/casewatch/internal/config"
	"github.com/okian/casewatch/pkg/logger"
	"github.com/okian/casewatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newSource(cfg *config.Config) *source.HTTPSource {
	return source.NewHTTPSource(cfg.SourceURL,
		source.WithTimeout(cfg.SourceTimeout),
		source.WithNameField(cfg.NameField),
		source.WithMetricField(cfg.MetricField),
		source.WithSecondaryFields(cfg.SecondaryFields),
		source.WithMetaFields(cfg.MetaFields),
	)
}

func newService(cfg *config.Config, src source.Source, opts ...app.Option) (*app.Service, error) {
	base := []app.Option{
		app.WithLogger(logger.Named("engine")),
		app.WithSource(src),
		app.WithTopN(cfg.TopN),
		app.WithPinnedKey(cfg.PinnedKey),
		app.WithRefreshInterval(cfg.RefreshInterval),
		app.WithImmediateRefresh(cfg.ImmediateRefresh),
		app.WithMetricField(cfg.MetricField),
		app.WithSecondaryFields(cfg.SecondaryFields),
	}
	return app.New(append(base, opts...)...)
}

func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()

	// Register API docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	api.NewServer(svc, svc,
		api.WithMaxViewLimit(cfg.MaxViewLimit),
		api.WithRefreshInterval(cfg.ManualRefreshInterval),
	).Register(ctx, mux)

	return mux
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// runSystemMetricsUpdater updates system metrics until ctx is done.
func runSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
