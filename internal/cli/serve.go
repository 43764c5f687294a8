package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/patient-table/internal/config"
	"github.com/jwalitptl/patient-table/internal/handler"
	patienthandler "github.com/jwalitptl/patient-table/internal/handler/patient"
	"github.com/jwalitptl/patient-table/internal/middleware"
	"github.com/jwalitptl/patient-table/internal/router"
	"github.com/jwalitptl/patient-table/internal/service/patient"
	"github.com/jwalitptl/patient-table/pkg/logger"
	"github.com/jwalitptl/patient-table/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand runs the HTTP API until SIGINT or SIGTERM.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the patient table API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: cfg.Log.TimeFormat,
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry, "patients", "table")

	store, err := newStore(cfg, log, patient.WithRecorder(m))
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandler(registry)
	patientH := patienthandler.NewHandler(store, log)
	r := router.NewRouter(h, patientH, registry, log.Zerolog(), routerConfig(cfg))
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.ServerTimeout(),
		WriteTimeout: cfg.ServerTimeout(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	seedErr := make(chan error, 1)
	go func() {
		started := time.Now()
		patients, err := newLoader(cfg).Load(ctx)
		if err != nil {
			seedErr <- err
			return
		}
		patientH.Initialize(patients)
		m.ObserveSeedLoad(started, len(patients))
		h.SetReady()
		log.Info("seed dataset loaded", "records", len(patients))
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case err := <-seedErr:
		if !errors.Is(err, context.Canceled) {
			log.Error(err, "failed to load seed dataset")
			runErr = fmt.Errorf("failed to load seed dataset: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return runErr
}

func routerConfig(cfg *config.Config) router.RouterConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.Security.AllowedOrigins

	rc := router.RouterConfig{
		CORSConfig:     cors,
		Security:       middleware.DefaultSecurityConfig(),
		SizeLimit:      middleware.DefaultSizeLimitConfig(),
		MetricsPrefix:  "patients_http",
		MetricsEnabled: cfg.Monitoring.PrometheusEnabled,
		MetricsPath:    cfg.Monitoring.MetricsPath,
	}
	if cfg.RateLimit.Enabled {
		rc.RateLimit = &middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		}
	}
	return rc
}
